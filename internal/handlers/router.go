package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter registers every route. Fixed paths come before the catch-all
// /{index} so that /health and friends are never parsed as indices.
func NewRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes (no auth required)
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	// Auth routes
	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/setup-required", h.CheckSetupRequired).Methods(http.MethodGet)
	auth.HandleFunc("/setup", h.Setup).Methods(http.MethodPost)
	auth.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	auth.HandleFunc("/logout", h.Logout).Methods(http.MethodPost)
	auth.HandleFunc("/check", h.CheckAuth).Methods(http.MethodGet)
	auth.HandleFunc("/password", h.ChangePassword).Methods(http.MethodPost)
	auth.HandleFunc("/keepalive", h.Keepalive).Methods(http.MethodPost)

	// Culling API
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", h.GetStatus).Methods(http.MethodGet)
	api.HandleFunc("/viewport", h.SetViewport).Methods(http.MethodPost)
	api.HandleFunc("/catalog", h.GetCatalog).Methods(http.MethodGet)
	api.HandleFunc("/catalog/open", h.OpenCatalog).Methods(http.MethodPost)
	api.HandleFunc("/catalog/summary", h.GetSummary).Methods(http.MethodGet)
	api.HandleFunc("/catalog/export", h.Export).Methods(http.MethodPost)
	api.HandleFunc("/catalog/{index}/vote", h.Vote).Methods(http.MethodPost)

	// Image delivery
	r.HandleFunc("/{index}", h.GetImage).Methods(http.MethodGet, http.MethodHead).Name("image")

	return r
}
