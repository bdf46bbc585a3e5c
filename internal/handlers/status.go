package handlers

import (
	"net/http"
	"time"

	"photo-culler/internal/cache"
	"photo-culler/internal/memory"
	"photo-culler/internal/prefetch"
)

// ViewportRequest is the client's current display area in pixels.
type ViewportRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ViewportResponse reports the box results will be fitted to.
type ViewportResponse struct {
	Width     int `json:"width"`
	Height    int `json:"height"`
	MaxWidth  int `json:"maxWidth"`
	MaxHeight int `json:"maxHeight"`
}

// StatusResponse is the live view of the delivery pipeline.
type StatusResponse struct {
	Title      string           `json:"title"`
	Current    *CurrentImage    `json:"current,omitempty"`
	SourceDir  string           `json:"sourceDir"`
	Generation string           `json:"generation"`
	Items      int              `json:"items"`
	Backend    string           `json:"backend"`
	Viewport   ViewportResponse `json:"viewport"`
	Cache      cache.Stats      `json:"cache"`
	CachedKeys []uint64         `json:"cachedIndices"`
	Prefetch   prefetch.Stats   `json:"prefetch"`
	Memory     memory.Stats     `json:"memory"`
	Uptime     string           `json:"uptime"`
}

// CurrentImage is the most recently served photo.
type CurrentImage struct {
	Index uint64 `json:"index"`
	Name  string `json:"name"`
}

// SetViewport records the display area results are fitted to. The size is
// capped at the configured maximum.
func (h *Handlers) SetViewport(w http.ResponseWriter, r *http.Request) {
	var req ViewportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.viewport.Set(req.Width, req.Height); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.viewportResponse())
}

func (h *Handlers) viewportResponse() ViewportResponse {
	width, height := h.viewport.Bounds()
	maxWidth, maxHeight := h.viewport.Max()
	return ViewportResponse{Width: width, Height: height, MaxWidth: maxWidth, MaxHeight: maxHeight}
}

// GetStatus returns the window title and pipeline statistics.
func (h *Handlers) GetStatus(w http.ResponseWriter, _ *http.Request) {
	snap := h.catalog.Snapshot()

	response := StatusResponse{
		Title:      h.title.Title(),
		SourceDir:  snap.SourceDir,
		Generation: snap.Generation,
		Items:      len(snap.Items),
		Backend:    h.backend,
		Viewport:   h.viewportResponse(),
		Cache:      h.cache.Stats(),
		CachedKeys: h.cache.Keys(),
		Memory:     h.memory.GetStats(),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
	}
	if h.scheduler != nil {
		response.Prefetch = h.scheduler.Stats()
	}
	if index, name, ok := h.title.Current(); ok {
		response.Current = &CurrentImage{Index: index, Name: name}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, response)
}
