package handlers

import (
	"net/http"

	"tattoovision/internal/infra"
)

type healthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Provider string `json:"provider,omitempty"`
	Library  string `json:"library,omitempty"`
	Sessions string `json:"sessions,omitempty"`
}

// Health reports liveness and which backends this instance was started with.
// It never calls the design provider.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Service: infra.ServiceName}
	if a.Config != nil {
		resp.Provider = a.Config.DesignProvider
		resp.Library = a.Config.LibraryBackend
		resp.Sessions = a.Config.SessionBackend
	}
	a.json(w, http.StatusOK, resp)
}
