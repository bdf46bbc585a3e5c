package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"photo-culler/internal/catalog"
	"photo-culler/internal/logging"
)

// OpenRequest selects the directory to cull.
type OpenRequest struct {
	Path string `json:"path"`
}

// VoteRequest records a decision for one photo.
type VoteRequest struct {
	Status string `json:"status"`
}

// VoteResponse echoes the stored decision.
type VoteResponse struct {
	Index uint64       `json:"index"`
	Item  catalog.Item `json:"item"`
}

// CatalogResponse describes the loaded directory.
type CatalogResponse struct {
	catalog.Snapshot
	Summary catalog.Summary `json:"summary"`
}

// ExportResponse reports where the manifest was written.
type ExportResponse struct {
	Path     string            `json:"path"`
	Manifest *catalog.Manifest `json:"manifest"`
}

// OpenCatalog loads a directory, replacing the current catalog.
func (h *Handlers) OpenCatalog(w http.ResponseWriter, r *http.Request) {
	var req OpenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	path := strings.TrimSpace(req.Path)
	if path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}

	if err := h.catalog.Open(r.Context(), path); err != nil {
		logging.Warn("Failed to open %s: %v", path, err)
		http.Error(w, "Failed to open directory: "+err.Error(), http.StatusBadRequest)
		return
	}
	h.title.Reset()

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.catalogResponse())
}

// GetCatalog lists the loaded photos with their decisions.
func (h *Handlers) GetCatalog(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.catalogResponse())
}

func (h *Handlers) catalogResponse() CatalogResponse {
	snap := h.catalog.Snapshot()
	summary := catalog.Summary{Total: len(snap.Items)}
	for _, item := range snap.Items {
		switch item.Status {
		case catalog.StatusKeep:
			summary.Keep++
		case catalog.StatusDelete:
			summary.Delete++
		default:
			summary.Pending++
		}
	}
	return CatalogResponse{Snapshot: snap, Summary: summary}
}

// GetSummary returns counts per status.
func (h *Handlers) GetSummary(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.catalog.Summary())
}

// Vote marks the photo at index as keep or delete.
func (h *Handlers) Vote(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.ParseUint(mux.Vars(r)["index"], 10, 64)
	if err != nil {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return
	}

	var req VoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	status, err := catalog.ParseStatus(req.Status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.catalog.Vote(r.Context(), index, status)
	switch {
	case errors.Is(err, catalog.ErrIndexOutOfRange):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, catalog.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		logging.Error("Vote on %d failed: %v", index, err)
		http.Error(w, "Failed to record vote", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, VoteResponse{Index: index, Item: item})
}

// Export writes the decisions manifest into the source directory.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	manifest, path, err := h.catalog.Export(r.Context())
	if errors.Is(err, catalog.ErrNotLoaded) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		logging.Error("Export failed: %v", err)
		http.Error(w, "Failed to export decisions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, ExportResponse{Path: path, Manifest: manifest})
}
