package handlers

import (
	"bytes"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func setSmallViewport(t *testing.T, s *testServer) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/viewport", ViewportRequest{Width: 32, Height: 24})
	if rec.Code != http.StatusOK {
		t.Fatalf("set viewport = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDeliveryScenario(t *testing.T) {
	s := newTestServer(t, serverOptions{images: 10})
	setSmallViewport(t, s)

	rec := s.do(t, http.MethodGet, "/0", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /0 = %d: %s", rec.Code, rec.Body.String())
	}

	width, _ := strconv.Atoi(rec.Header().Get("X-Image-Width"))
	height, _ := strconv.Atoi(rec.Header().Get("X-Image-Height"))
	if width != 32 || height != 24 {
		t.Errorf("dimensions = %dx%d, want 32x24", width, height)
	}
	if got := rec.Body.Len(); got != width*height*4 {
		t.Errorf("body = %d bytes, want %d", got, width*height*4)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/octet-stream" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("X-Image-Format"); got != "rgba8" {
		t.Errorf("X-Image-Format = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("X-Cache"); got != "miss" {
		t.Errorf("X-Cache = %q, want miss", got)
	}
	if got := rec.Header().Get("X-Catalog-Generation"); got != s.catalog.Generation() {
		t.Errorf("X-Catalog-Generation = %q, want %q", got, s.catalog.Generation())
	}

	s.waitCached(t, 1, 2, 3, 4, 5)
	if s.cache.Contains(0) {
		t.Error("the served index must not be cached")
	}
	if s.cache.Len() != 5 {
		t.Errorf("cache holds %d entries, want 5", s.cache.Len())
	}

	rec = s.do(t, http.MethodGet, "/1", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("X-Cache") != "hit" {
		t.Errorf("GET /1 = %d, X-Cache %q; want a cache hit", rec.Code, rec.Header().Get("X-Cache"))
	}
	if s.cache.Contains(1) {
		t.Error("a cache hit must consume the entry")
	}
}

func TestDeliveryErrors(t *testing.T) {
	s := newTestServer(t, serverOptions{images: 10})

	tests := []struct {
		path string
		want int
	}{
		{"/999", http.StatusNotFound},
		{"/10", http.StatusNotFound},
		{"/abc", http.StatusBadRequest},
		{"/-1", http.StatusBadRequest},
		{"/1.5", http.StatusBadRequest},
		{"/99999999999999999999999", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, tt.path, nil)
			if rec.Code != tt.want {
				t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.want)
			}
			if rec.Header().Get("X-Image-Width") != "" {
				t.Error("error responses must not carry image headers")
			}
		})
	}

	if s.cache.Len() != 0 {
		t.Errorf("failed requests changed the cache: %v", s.cache.Keys())
	}
}

func TestDeliveryDecodeError(t *testing.T) {
	s := newTestServer(t, serverOptions{images: 2})
	path := filepath.Join(s.dir, "IMG_0001.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	if rec := s.do(t, http.MethodGet, "/1", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("GET corrupt image = %d, want 400", rec.Code)
	}
}

func TestDeliveryMissingFile(t *testing.T) {
	s := newTestServer(t, serverOptions{images: 2})
	if err := os.Remove(filepath.Join(s.dir, "IMG_0000.png")); err != nil {
		t.Fatal(err)
	}

	if rec := s.do(t, http.MethodGet, "/0", nil); rec.Code != http.StatusNotFound {
		t.Errorf("GET removed file = %d, want 404", rec.Code)
	}
}

func TestRepeatedRequestRecomputes(t *testing.T) {
	s := newTestServer(t, serverOptions{images: 10})
	setSmallViewport(t, s)

	first := s.do(t, http.MethodGet, "/9", nil)
	second := s.do(t, http.MethodGet, "/9", nil)

	for i, rec := range []int{first.Code, second.Code} {
		if rec != http.StatusOK {
			t.Fatalf("request %d = %d", i+1, rec)
		}
	}
	if first.Header().Get("X-Cache") != "miss" || second.Header().Get("X-Cache") != "miss" {
		t.Errorf("X-Cache = %q, %q; both requests must recompute",
			first.Header().Get("X-Cache"), second.Header().Get("X-Cache"))
	}
	if !bytes.Equal(first.Body.Bytes(), second.Body.Bytes()) {
		t.Error("recomputed pixels differ")
	}
}

func TestPassthroughServesSourceBytes(t *testing.T) {
	s := newTestServer(t, serverOptions{images: 1})

	rec := s.do(t, http.MethodGet, "/0", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /0 = %d", rec.Code)
	}

	source, err := os.ReadFile(filepath.Join(s.dir, "IMG_0000.png"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(rec.Body.Bytes(), source) {
		t.Error("an image inside the bounds must be served unchanged")
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", got)
	}
	if got := rec.Header().Get("X-Image-Format"); got != "png" {
		t.Errorf("X-Image-Format = %q, want png", got)
	}
	if rec.Header().Get("X-Image-Width") != "64" || rec.Header().Get("X-Image-Height") != "48" {
		t.Errorf("dimensions = %sx%s, want 64x48",
			rec.Header().Get("X-Image-Width"), rec.Header().Get("X-Image-Height"))
	}
}

func TestPNGNegotiation(t *testing.T) {
	s := newTestServer(t, serverOptions{images: 1})
	setSmallViewport(t, s)

	req := httptest.NewRequest(http.MethodGet, "/0", nil)
	req.Header.Set("Accept", "image/png")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /0 = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", got)
	}

	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 24 {
		t.Errorf("PNG dimensions = %dx%d, want 32x24", b.Dx(), b.Dy())
	}
}

func TestHeadImage(t *testing.T) {
	s := newTestServer(t, serverOptions{images: 1})

	rec := s.do(t, http.MethodHead, "/0", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("HEAD /0 = %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("HEAD wrote %d body bytes", rec.Body.Len())
	}
	if rec.Header().Get("X-Image-Width") != "64" {
		t.Errorf("X-Image-Width = %q", rec.Header().Get("X-Image-Width"))
	}
}

func TestOpenPurgesCache(t *testing.T) {
	s := newTestServer(t, serverOptions{images: 4, window: 2})
	setSmallViewport(t, s)

	s.do(t, http.MethodGet, "/0", nil)
	s.waitCached(t, 1, 2)

	other := t.TempDir()
	writePNG(t, filepath.Join(other, "a.png"), 1)

	rec := s.do(t, http.MethodPost, "/api/catalog/open", OpenRequest{Path: other})
	if rec.Code != http.StatusOK {
		t.Fatalf("open = %d: %s", rec.Code, rec.Body.String())
	}
	if s.cache.Len() != 0 {
		t.Errorf("cache after reload = %v, want empty", s.cache.Keys())
	}
	if s.handlers.title.Title() != AppName {
		t.Errorf("title after reload = %q", s.handlers.title.Title())
	}

	if rec := s.do(t, http.MethodGet, "/1", nil); rec.Code != http.StatusNotFound {
		t.Errorf("GET /1 after reload to a single image = %d, want 404", rec.Code)
	}
}
