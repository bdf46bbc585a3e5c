package delivery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"photo-culler/internal/catalog"
	"photo-culler/internal/resize"
)

// fakeCatalog resolves indices to "img<i>.jpg" below n.
type fakeCatalog struct {
	n int
}

func (f *fakeCatalog) Resolve(index uint64) (string, string, error) {
	if index >= uint64(f.n) {
		return "", "", fmt.Errorf("%w: %d", catalog.ErrIndexOutOfRange, index)
	}
	name := fmt.Sprintf("img%d.jpg", index)
	return "/photos/" + name, name, nil
}

// fakeResizer records the bounds it was asked for.
type fakeResizer struct {
	mu     sync.Mutex
	err    error
	bounds [][2]int
}

func (f *fakeResizer) Fit(data []byte, maxWidth, maxHeight int) (*resize.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bounds = append(f.bounds, [2]int{maxWidth, maxHeight})
	if f.err != nil {
		return nil, f.err
	}
	return &resize.Result{Pixels: data, Width: maxWidth, Height: maxHeight, Format: resize.FormatRGBA}, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[uint64]*resize.Result
}

func (f *fakeCache) GetAndRemove(index uint64) (*resize.Result, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.entries[index]
	delete(f.entries, index)
	return r, ok
}

type fakeScheduler struct {
	mu    sync.Mutex
	froms []uint64
}

func (f *fakeScheduler) Schedule(from uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.froms = append(f.froms, from)
}

type fixture struct {
	resizer   *fakeResizer
	cache     *fakeCache
	scheduler *fakeScheduler
	viewport  *Viewport
	served    []string
	reads     map[string]int
	readErr   error
	orch      *Orchestrator
}

func newFixture(t *testing.T, n int) *fixture {
	t.Helper()

	viewport, err := NewViewport(DefaultMaxWidth, DefaultMaxHeight)
	if err != nil {
		t.Fatal(err)
	}

	f := &fixture{
		resizer:   &fakeResizer{},
		cache:     &fakeCache{entries: map[uint64]*resize.Result{}},
		scheduler: &fakeScheduler{},
		viewport:  viewport,
		reads:     map[string]int{},
	}

	read := func(path string) ([]byte, error) {
		f.reads[path]++
		if f.readErr != nil {
			return nil, f.readErr
		}
		return []byte(path), nil
	}

	producer := NewProducer(&fakeCatalog{n: n}, f.resizer, viewport, read)
	f.orch = NewOrchestrator(producer, f.cache, f.scheduler, func(index uint64, name string) {
		f.served = append(f.served, fmt.Sprintf("%d:%s", index, name))
	})
	return f
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		raw     string
		want    uint64
		wantErr bool
	}{
		{"0", 0, false},
		{"42", 42, false},
		{"007", 7, false},
		{"18446744073709551615", ^uint64(0), false},
		{"18446744073709551616", 0, true},
		{"", 0, true},
		{"abc", 0, true},
		{"-1", 0, true},
		{"+1", 0, true},
		{" 1", 0, true},
		{"1.5", 0, true},
		{"0x10", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseIndex(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseIndex(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidIndex) {
				t.Errorf("error %v should match ErrInvalidIndex", err)
			}
			if got != tt.want {
				t.Errorf("ParseIndex(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestKindStatusCodes(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindInvalidIndex, http.StatusBadRequest},
		{KindIndexOutOfRange, http.StatusNotFound},
		{KindFileRead, http.StatusNotFound},
		{KindDecode, http.StatusBadRequest},
		{KindResize, http.StatusBadRequest},
		{Kind(0), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := tt.kind.StatusCode(); got != tt.want {
			t.Errorf("%v.StatusCode() = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestDeliverMissProducesAndSchedules(t *testing.T) {
	f := newFixture(t, 10)

	d, err := f.orch.Deliver(context.Background(), "3")
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if d.CacheHit || d.Index != 3 || d.Name != "img3.jpg" {
		t.Errorf("delivery = %+v", d)
	}
	if d.Result.Width != DefaultMaxWidth || d.Result.Height != DefaultMaxHeight {
		t.Errorf("resized to %dx%d, want the default cap", d.Result.Width, d.Result.Height)
	}
	if diff := cmp.Diff([]uint64{4}, f.scheduler.froms); diff != "" {
		t.Errorf("scheduled mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"3:img3.jpg"}, f.served); diff != "" {
		t.Errorf("served mismatch (-want +got):\n%s", diff)
	}
}

func TestDeliverHitConsumesCache(t *testing.T) {
	f := newFixture(t, 10)
	cached := &resize.Result{Pixels: []byte{1, 2, 3, 4}, Width: 1, Height: 1, Format: resize.FormatRGBA}
	f.cache.entries[5] = cached

	d, err := f.orch.Deliver(context.Background(), "5")
	if err != nil {
		t.Fatal(err)
	}
	if !d.CacheHit || d.Result != cached || d.Name != "img5.jpg" {
		t.Errorf("delivery = %+v, want cache hit with the cached result", d)
	}
	if f.reads["/photos/img5.jpg"] != 0 {
		t.Error("cache hit should not read the file")
	}

	d, err = f.orch.Deliver(context.Background(), "5")
	if err != nil {
		t.Fatal(err)
	}
	if d.CacheHit {
		t.Error("second request should miss: entries are consumed on read")
	}
	if diff := cmp.Diff([]uint64{6, 6}, f.scheduler.froms); diff != "" {
		t.Errorf("scheduled mismatch (-want +got):\n%s", diff)
	}
}

func TestDeliverRepeatedMissRecomputes(t *testing.T) {
	f := newFixture(t, 10)

	for i := 0; i < 2; i++ {
		if _, err := f.orch.Deliver(context.Background(), "2"); err != nil {
			t.Fatal(err)
		}
	}
	if got := f.reads["/photos/img2.jpg"]; got != 2 {
		t.Errorf("file read %d times, want 2", got)
	}
	if len(f.cache.entries) != 0 {
		t.Error("foreground results must not be cached")
	}
}

func TestDeliverErrors(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		readErr    error
		resizeErr  error
		wantKind   Kind
		wantStatus int
		sentinel   error
	}{
		{"not a number", "abc", nil, nil, KindInvalidIndex, 400, ErrInvalidIndex},
		{"out of range", "999", nil, nil, KindIndexOutOfRange, 404, ErrIndexOutOfRange},
		{"read failure", "1", errors.New("permission denied"), nil, KindFileRead, 404, ErrFileRead},
		{"decode failure", "1", nil, &resize.Error{Kind: resize.KindDecode, Err: errors.New("bad")}, KindDecode, 400, ErrDecode},
		{"resize failure", "1", nil, &resize.Error{Kind: resize.KindResize, Err: errors.New("bad")}, KindResize, 400, ErrResize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 10)
			f.readErr = tt.readErr
			f.resizer.err = tt.resizeErr

			_, err := f.orch.Deliver(context.Background(), tt.raw)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := KindOf(err); got != tt.wantKind {
				t.Errorf("kind = %v, want %v", got, tt.wantKind)
			}
			if got := StatusCode(err); got != tt.wantStatus {
				t.Errorf("status = %d, want %d", got, tt.wantStatus)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("error %v should match %v", err, tt.sentinel)
			}
			if len(f.scheduler.froms) != 0 {
				t.Error("failed deliveries must not schedule prefetch")
			}
			if len(f.served) != 0 {
				t.Error("failed deliveries must not call the served hook")
			}
		})
	}
}

func TestDeliverHookPanicIsContained(t *testing.T) {
	f := newFixture(t, 3)
	f.orch.onServed = func(uint64, string) { panic("window closed") }

	d, err := f.orch.Deliver(context.Background(), "0")
	if err != nil {
		t.Fatalf("a panicking hook should not fail delivery: %v", err)
	}
	if d.Name != "img0.jpg" {
		t.Errorf("Name = %q", d.Name)
	}
}

func TestDeliverUsesViewportBounds(t *testing.T) {
	f := newFixture(t, 3)

	if err := f.viewport.Set(800, 600); err != nil {
		t.Fatal(err)
	}
	if _, err := f.orch.Deliver(context.Background(), "0"); err != nil {
		t.Fatal(err)
	}
	if err := f.viewport.Set(4000, 3000); err != nil {
		t.Fatal(err)
	}
	if _, err := f.orch.Deliver(context.Background(), "1"); err != nil {
		t.Fatal(err)
	}

	want := [][2]int{{800, 600}, {1920, 1080}}
	if diff := cmp.Diff(want, f.resizer.bounds); diff != "" {
		t.Errorf("bounds mismatch (-want +got):\n%s", diff)
	}
}

func TestViewport(t *testing.T) {
	if _, err := NewViewport(0, 1080); err == nil {
		t.Error("zero cap should be rejected")
	}

	v, err := NewViewport(1920, 1080)
	if err != nil {
		t.Fatal(err)
	}

	if w, h := v.Bounds(); w != 1920 || h != 1080 {
		t.Errorf("default bounds = %dx%d", w, h)
	}
	if err := v.Set(1280, 2000); err != nil {
		t.Fatal(err)
	}
	if w, h := v.Bounds(); w != 1280 || h != 1080 {
		t.Errorf("bounds = %dx%d, want 1280x1080", w, h)
	}
	for _, bad := range [][2]int{{0, 10}, {10, -1}, {1 << 21, 10}} {
		if err := v.Set(bad[0], bad[1]); err == nil {
			t.Errorf("Set(%d, %d) should fail", bad[0], bad[1])
		}
	}
	v.Reset()
	if w, h := v.Bounds(); w != 1920 || h != 1080 {
		t.Errorf("bounds after Reset = %dx%d", w, h)
	}
}
