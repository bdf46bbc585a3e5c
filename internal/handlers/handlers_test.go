package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"photo-culler/internal/cache"
	"photo-culler/internal/catalog"
	"photo-culler/internal/database"
	"photo-culler/internal/delivery"
	"photo-culler/internal/prefetch"
	"photo-culler/internal/resize"
)

type testServer struct {
	handlers  *Handlers
	router    http.Handler
	db        *database.Database
	catalog   *catalog.Catalog
	cache     *cache.ResultCache
	scheduler *prefetch.Scheduler
	dir       string
}

type serverOptions struct {
	images      int
	authEnabled bool
	window      int
}

// writePNG writes a 64x48 image whose red channel encodes i.
func writePNG(t *testing.T, path string, i int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(i * 20), G: uint8(x * 4), B: uint8(y * 5), A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func newTestServer(t *testing.T, opts serverOptions) *testServer {
	t.Helper()
	ctx := context.Background()

	db, err := database.New(ctx, filepath.Join(t.TempDir(), database.FileName))
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	dir := t.TempDir()
	for i := 0; i < opts.images; i++ {
		writePNG(t, filepath.Join(dir, fmt.Sprintf("IMG_%04d.png", i)), i)
	}

	cat := catalog.New(db)
	results, err := cache.New(cache.DefaultCapacity)
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}
	cat.OnReload(func(string) { results.Purge() })

	if opts.images > 0 {
		if err := cat.Open(ctx, dir); err != nil {
			t.Fatalf("catalog.Open() error = %v", err)
		}
	}

	resizer, err := resize.NewNative(resize.DefaultFilter)
	if err != nil {
		t.Fatalf("NewNative() error = %v", err)
	}
	viewport, err := delivery.NewViewport(delivery.DefaultMaxWidth, delivery.DefaultMaxHeight)
	if err != nil {
		t.Fatal(err)
	}

	producer := delivery.NewProducer(cat, resizer, viewport, nil)
	scheduler := prefetch.New(prefetch.Config{Window: opts.window, Workers: 2}, producer, results, nil)
	scheduler.Start()
	t.Cleanup(scheduler.Stop)

	title := NewTitleTracker(cat)
	orchestrator := delivery.NewOrchestrator(producer, results, scheduler, title.OnServed)

	h := New(Deps{
		DB:           db,
		Catalog:      cat,
		Cache:        results,
		Orchestrator: orchestrator,
		Scheduler:    scheduler,
		Viewport:     viewport,
		Title:        title,
		Backend:      resize.BackendNative,
		AuthEnabled:  opts.authEnabled,
	})

	return &testServer{
		handlers:  h,
		router:    h.AuthMiddleware(NewRouter(h)),
		db:        db,
		catalog:   cat,
		cache:     results,
		scheduler: scheduler,
		dir:       dir,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// waitCached polls until every index is cached or the deadline passes.
func (s *testServer) waitCached(t *testing.T, indices ...uint64) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		all := true
		for _, i := range indices {
			if !s.cache.Contains(i) {
				all = false
				break
			}
		}
		if all {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("indices %v not cached in time; cached: %v", indices, s.cache.Keys())
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestRouterPrefersFixedRoutes(t *testing.T) {
	s := newTestServer(t, serverOptions{images: 1})

	for _, path := range []string{"/health", "/healthz", "/livez", "/readyz", "/version"} {
		rec := s.do(t, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
		if rec.Header().Get("X-Image-Width") != "" {
			t.Errorf("GET %s was routed to image delivery", path)
		}
	}
}

func TestTitleTracker(t *testing.T) {
	tracker := NewTitleTracker(counterFunc(func() int { return 10 }))

	if got := tracker.Title(); got != AppName {
		t.Errorf("initial title = %q, want %q", got, AppName)
	}
	if _, _, ok := tracker.Current(); ok {
		t.Error("Current() reported an image before any delivery")
	}

	tracker.OnServed(2, "IMG_0002.jpg")

	if got, want := tracker.Title(), "IMG_0002.jpg (3/10) - Photo Culler"; got != want {
		t.Errorf("title = %q, want %q", got, want)
	}
	index, name, ok := tracker.Current()
	if !ok || index != 2 || name != "IMG_0002.jpg" {
		t.Errorf("Current() = %d, %q, %v", index, name, ok)
	}

	tracker.Reset()
	if got := tracker.Title(); got != AppName {
		t.Errorf("title after Reset = %q", got)
	}
}

type counterFunc func() int

func (f counterFunc) Len() int { return f() }

func TestAcceptsPNG(t *testing.T) {
	tests := []struct {
		accept string
		want   bool
	}{
		{"", false},
		{"*/*", false},
		{"image/png", true},
		{"image/webp, image/PNG;q=0.9", true},
		{"application/octet-stream", false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/0", nil)
		req.Header.Set("Accept", tt.accept)
		if got := acceptsPNG(req); got != tt.want {
			t.Errorf("acceptsPNG(%q) = %v, want %v", tt.accept, got, tt.want)
		}
	}
}

func TestVersionEndpoint(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec := s.do(t, http.MethodGet, "/version", nil)

	var info map[string]string
	decodeBody(t, rec, &info)
	if info["version"] == "" || info["goVersion"] == "" {
		t.Errorf("version response = %v", info)
	}
}

func TestHealthReportsDegradedDatabase(t *testing.T) {
	s := newTestServer(t, serverOptions{images: 2})

	rec := s.do(t, http.MethodGet, "/health", nil)
	var health HealthResponse
	decodeBody(t, rec, &health)
	if health.Status != statusHealthy || health.Items != 2 {
		t.Errorf("health = %+v", health)
	}

	s.db.Close()

	rec = s.do(t, http.MethodGet, "/health", nil)
	decodeBody(t, rec, &health)
	if health.Status != statusDegraded {
		t.Errorf("status with closed database = %q, want degraded", health.Status)
	}

	if rec := s.do(t, http.MethodGet, "/readyz", nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz with closed database = %d, want 503", rec.Code)
	}
}

func TestLivenessHead(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec := s.do(t, http.MethodHead, "/livez", nil)
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Errorf("HEAD /livez = %d with %d body bytes", rec.Code, rec.Body.Len())
	}
}

func TestStatusEndpoint(t *testing.T) {
	s := newTestServer(t, serverOptions{images: 3, window: 1})

	if rec := s.do(t, http.MethodGet, "/1", nil); rec.Code != http.StatusOK {
		t.Fatalf("GET /1 = %d", rec.Code)
	}
	s.waitCached(t, 2)

	rec := s.do(t, http.MethodGet, "/api/status", nil)
	var status StatusResponse
	decodeBody(t, rec, &status)

	if status.Title != "IMG_0001.png (2/3) - Photo Culler" {
		t.Errorf("title = %q", status.Title)
	}
	if status.Current == nil || status.Current.Index != 1 {
		t.Errorf("current = %+v", status.Current)
	}
	if status.Items != 3 || status.Backend != resize.BackendNative {
		t.Errorf("status = %+v", status)
	}
	if status.Cache.Capacity != cache.DefaultCapacity {
		t.Errorf("cache capacity = %d", status.Cache.Capacity)
	}
	if status.Prefetch.Window != 1 || status.Prefetch.Produced < 1 {
		t.Errorf("prefetch stats = %+v", status.Prefetch)
	}
	if !slices.Contains(status.CachedKeys, 2) {
		t.Errorf("cachedIndices = %v, want 2 present", status.CachedKeys)
	}
}

func TestViewportEndpoint(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		want       ViewportResponse
	}{
		{
			name:       "within cap",
			body:       ViewportRequest{Width: 1280, Height: 720},
			wantStatus: http.StatusOK,
			want:       ViewportResponse{Width: 1280, Height: 720, MaxWidth: 1920, MaxHeight: 1080},
		},
		{
			name:       "capped",
			body:       ViewportRequest{Width: 3840, Height: 2160},
			wantStatus: http.StatusOK,
			want:       ViewportResponse{Width: 1920, Height: 1080, MaxWidth: 1920, MaxHeight: 1080},
		},
		{
			name:       "zero rejected",
			body:       ViewportRequest{Width: 0, Height: 720},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not json",
			body:       "nope",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/viewport", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var got ViewportResponse
			decodeBody(t, rec, &got)
			if got != tt.want {
				t.Errorf("viewport = %+v, want %+v", got, tt.want)
			}
		})
	}
}
