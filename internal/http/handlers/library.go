package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tattoovision/internal/i18n"
)

func (a *App) ListDesigns(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"items": a.Studio.Designs(r.Context())})
}

func (a *App) GetDesign(w http.ResponseWriter, r *http.Request) {
	design, err := a.Studio.Design(r.Context(), chi.URLParam(r, "designID"))
	if err != nil {
		a.fail(w, r, err, i18n.MsgNotFound, nil)
		return
	}
	a.json(w, http.StatusOK, design)
}

// DeleteDesign is idempotent: unknown ids also answer 204.
func (a *App) DeleteDesign(w http.ResponseWriter, r *http.Request) {
	if err := a.Studio.RemoveDesign(r.Context(), chi.URLParam(r, "designID")); err != nil {
		a.fail(w, r, err, "", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
