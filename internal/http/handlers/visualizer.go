package handlers

import (
	"net/http"
)

type visualizeRequest struct {
	TattooImage string `json:"tattooImage"`
	BodyImage   string `json:"bodyImage"`
}

// Placement composes the tattoo over the body photo without calling a model.
func (a *App) Placement(w http.ResponseWriter, r *http.Request) {
	var req visualizeRequest
	if !a.decode(w, r, &req) {
		return
	}
	result, err := a.Studio.Placement(req.TattooImage, req.BodyImage)
	if err != nil {
		a.fail(w, r, err, "", nil)
		return
	}
	a.json(w, http.StatusOK, result)
}

func (a *App) ARPreview(w http.ResponseWriter, r *http.Request) {
	var req visualizeRequest
	if !a.decode(w, r, &req) {
		return
	}
	uri, err := a.Studio.PreviewOnBody(r.Context(), req.TattooImage, req.BodyImage)
	if err != nil {
		a.fail(w, r, err, "", nil)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"imageDataUri": uri})
}
