package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tattoovision/internal/domain"
	"tattoovision/internal/i18n"
	"tattoovision/internal/middleware"
)

type refineRequest struct {
	Notes                 string `json:"notes"`
	ReferenceImage        string `json:"referenceImage"`
	ReferenceImageDataURI string `json:"referenceImageDataUri"`
}

type saveResponse struct {
	Design  domain.TattooDesign `json:"design"`
	Message string              `json:"message"`
}

func (a *App) CreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := a.Studio.CreateSession(r.Context(), middleware.LocaleFromContext(r.Context()))
	if err != nil {
		a.fail(w, r, err, "", nil)
		return
	}
	a.json(w, http.StatusCreated, session)
}

func (a *App) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := a.Studio.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		a.fail(w, r, err, i18n.MsgSessionNotFound, nil)
		return
	}
	a.json(w, http.StatusOK, session)
}

func (a *App) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := a.Studio.DeleteSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		a.fail(w, r, err, "", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerationRequest
	if !a.decode(w, r, &req) {
		return
	}
	session, err := a.Studio.Generate(r.Context(), chi.URLParam(r, "sessionID"), middleware.LocaleFromContext(r.Context()), req)
	if err != nil {
		a.fail(w, r, err, i18n.MsgSessionNotFound, nil)
		return
	}
	a.json(w, http.StatusOK, session)
}

func (a *App) GenerateImage(w http.ResponseWriter, r *http.Request) {
	index, ok := proposalIndex(r)
	if !ok {
		a.error(w, r, http.StatusNotFound, "not_found", i18n.MsgProposalOutOfRange)
		return
	}
	session, err := a.Studio.GenerateImage(r.Context(), chi.URLParam(r, "sessionID"), index)
	if err != nil {
		a.fail(w, r, err, i18n.MsgSessionNotFound, session)
		return
	}
	a.json(w, http.StatusOK, session)
}

func (a *App) Refine(w http.ResponseWriter, r *http.Request) {
	index, ok := proposalIndex(r)
	if !ok {
		a.error(w, r, http.StatusNotFound, "not_found", i18n.MsgProposalOutOfRange)
		return
	}
	var req refineRequest
	if !a.decode(w, r, &req) {
		return
	}
	reference := req.ReferenceImage
	if reference == "" {
		reference = req.ReferenceImageDataURI
	}
	session, err := a.Studio.Refine(r.Context(), chi.URLParam(r, "sessionID"), index, middleware.LocaleFromContext(r.Context()), domain.RefinementRequest{
		Notes:          req.Notes,
		ReferenceImage: reference,
	})
	if err != nil {
		a.fail(w, r, err, i18n.MsgSessionNotFound, nil)
		return
	}
	a.json(w, http.StatusOK, session)
}

func (a *App) Save(w http.ResponseWriter, r *http.Request) {
	index, ok := proposalIndex(r)
	if !ok {
		a.error(w, r, http.StatusNotFound, "not_found", i18n.MsgProposalOutOfRange)
		return
	}
	design, err := a.Studio.Save(r.Context(), chi.URLParam(r, "sessionID"), index)
	if err != nil {
		a.fail(w, r, err, i18n.MsgSessionNotFound, nil)
		return
	}
	a.json(w, http.StatusCreated, saveResponse{
		Design:  design,
		Message: i18n.T(middleware.LocaleFromContext(r.Context()), i18n.MsgDesignSaved),
	})
}
