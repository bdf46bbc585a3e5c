package handlers

import (
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gorilla/mux"

	"photo-culler/internal/delivery"
	"photo-culler/internal/logging"
	"photo-culler/internal/mediatypes"
)

// exposedHeaders lets browser clients read the image metadata cross-origin.
const exposedHeaders = "X-Image-Width, X-Image-Height, X-Image-Format, X-Catalog-Generation, X-Cache"

// GetImage serves the photo at the index in the path. Raw results are
// interleaved RGBA8 described by X-Image-Width and X-Image-Height; clients
// that prefer image/png get the same pixels PNG-encoded.
func (h *Handlers) GetImage(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["index"]

	d, err := h.orchestrator.Deliver(r.Context(), raw)
	if err != nil {
		writeDeliveryError(w, r, err)
		return
	}

	result := d.Result
	header := w.Header()
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Expose-Headers", exposedHeaders)
	header.Set("Cache-Control", "no-store")
	header.Set("X-Image-Width", strconv.Itoa(result.Width))
	header.Set("X-Image-Height", strconv.Itoa(result.Height))
	header.Set("X-Catalog-Generation", h.catalog.Generation())
	if d.CacheHit {
		header.Set("X-Cache", "hit")
	} else {
		header.Set("X-Cache", "miss")
	}

	if result.IsRaw() && acceptsPNG(r) {
		h.writePNG(w, r, d)
		return
	}

	header.Set("X-Image-Format", result.Format)
	if result.IsRaw() {
		header.Set("Content-Type", mediatypes.RawPixelsMimeType)
	} else {
		header.Set("Content-Type", mediatypes.MimeTypeForFormat(result.Format))
	}
	header.Set("Content-Length", strconv.Itoa(len(result.Pixels)))
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(result.Pixels); err != nil {
		logging.Debug("Client went away while sending index %d: %v", d.Index, err)
	}
}

func (h *Handlers) writePNG(w http.ResponseWriter, r *http.Request, d *delivery.Delivery) {
	result := d.Result
	img := &image.NRGBA{
		Pix:    result.Pixels,
		Stride: result.Width * 4,
		Rect:   image.Rect(0, 0, result.Width, result.Height),
	}

	w.Header().Set("X-Image-Format", "png")
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}
	if err := imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestSpeed)); err != nil {
		logging.Debug("PNG encode of index %d failed: %v", d.Index, err)
	}
}

// acceptsPNG reports whether the client asked for image/png explicitly.
func acceptsPNG(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if strings.EqualFold(mediaType, "image/png") {
			return true
		}
	}
	return false
}

func writeDeliveryError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logging.Debug("Request for %s cancelled: %v", r.URL.Path, err)
		return
	}

	status := delivery.StatusCode(err)
	if status >= http.StatusInternalServerError {
		logging.Error("Delivery of %s failed: %v", r.URL.Path, err)
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	http.Error(w, err.Error(), status)
}
