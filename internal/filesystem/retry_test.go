package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"
	"time"
)

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", config.MaxRetries)
	}
	if config.InitialBackoff != 50*time.Millisecond {
		t.Errorf("InitialBackoff = %v, want 50ms", config.InitialBackoff)
	}
	if config.MaxBackoff != 500*time.Millisecond {
		t.Errorf("MaxBackoff = %v, want 500ms", config.MaxBackoff)
	}
	if config.VolumeResolver != nil {
		t.Error("VolumeResolver should be nil by default")
	}
}

func TestIsNFSStaleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"ESTALE error", syscall.ESTALE, true},
		{"wrapped ESTALE", &os.PathError{Op: "open", Path: "/x", Err: syscall.ESTALE}, true},
		{"ENOENT error", syscall.ENOENT, false},
		{"generic error", os.ErrNotExist, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNFSStaleError(tt.err); got != tt.want {
				t.Errorf("isNFSStaleError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVolumeResolver_Resolve(t *testing.T) {
	vr := NewVolumeResolver(map[string]string{
		"source":   "/photos",
		"database": "/database",
		"nested":   "/photos/raw",
		"empty":    "",
	})

	tests := []struct {
		path string
		want string
	}{
		{"/photos/a.jpg", "source"},
		{"/photos", "source"},
		{"/photos/raw/b.nef", "nested"},
		{"/database/culler.db", "database"},
		{"/photosx/c.jpg", "unknown"},
		{"/tmp/other", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := vr.Resolve(tt.path); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestVolumeResolver_NilResolver(t *testing.T) {
	var vr *VolumeResolver
	if got := vr.Resolve("/photos/a.jpg"); got != "unknown" {
		t.Errorf("nil resolver returned %q, want unknown", got)
	}
}

func TestRetryConfig_ResolveVolume(t *testing.T) {
	SetDefaultVolumeResolver(NewVolumeResolver(map[string]string{"source": "/photos"}))
	defer SetDefaultVolumeResolver(nil)

	config := DefaultRetryConfig()
	if got := config.resolveVolume("/photos/a.jpg"); got != "source" {
		t.Errorf("default resolver: got %q, want source", got)
	}

	config.VolumeResolver = NewVolumeResolver(map[string]string{"override": "/photos"})
	if got := config.resolveVolume("/photos/a.jpg"); got != "override" {
		t.Errorf("config resolver: got %q, want override", got)
	}
}

type recordingObserver struct {
	mu         sync.Mutex
	operations []string
	stale      int
	attempts   int
	successes  int
	failures   int
}

func (r *recordingObserver) ObserveOperation(volume, operation string, _ float64, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.operations = append(r.operations, volume+":"+operation)
}

func (r *recordingObserver) ObserveRetryAttempt(string, string) {
	r.mu.Lock()
	r.attempts++
	r.mu.Unlock()
}

func (r *recordingObserver) ObserveRetrySuccess(string, string) {
	r.mu.Lock()
	r.successes++
	r.mu.Unlock()
}

func (r *recordingObserver) ObserveRetryFailure(string, string) {
	r.mu.Lock()
	r.failures++
	r.mu.Unlock()
}

func (r *recordingObserver) ObserveRetryDuration(string, string, float64) {}

func (r *recordingObserver) ObserveStaleError(string, string) {
	r.mu.Lock()
	r.stale++
	r.mu.Unlock()
}

func TestReadFileWithRetry_Success(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jpg")
	if err := os.WriteFile(path, []byte("jpegdata"), 0o600); err != nil {
		t.Fatal(err)
	}

	obs := &recordingObserver{}
	SetObserver(obs)
	defer SetObserver(nil)

	var hooked int
	SetBytesReadHook(func(n int) { hooked += n })
	defer SetBytesReadHook(nil)

	config := DefaultRetryConfig()
	config.VolumeResolver = NewVolumeResolver(map[string]string{"source": dir})

	data, err := ReadFileWithRetry(path, config)
	if err != nil {
		t.Fatalf("ReadFileWithRetry failed: %v", err)
	}
	if string(data) != "jpegdata" {
		t.Errorf("data = %q, want jpegdata", data)
	}
	if hooked != len("jpegdata") {
		t.Errorf("bytes hook saw %d, want %d", hooked, len("jpegdata"))
	}
	if len(obs.operations) != 1 || obs.operations[0] != "source:read" {
		t.Errorf("operations = %v, want [source:read]", obs.operations)
	}
}

func TestReadFileWithRetry_NotExist(t *testing.T) {
	var hooked bool
	SetBytesReadHook(func(int) { hooked = true })
	defer SetBytesReadHook(nil)

	_, err := ReadFileWithRetry(filepath.Join(t.TempDir(), "missing.jpg"), DefaultRetryConfig())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
	if hooked {
		t.Error("bytes hook should not run on failure")
	}
}

func TestStatAndReadDirWithRetry(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.jpg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	info, err := StatWithRetry(filepath.Join(dir, "a.jpg"), DefaultRetryConfig())
	if err != nil {
		t.Fatalf("StatWithRetry failed: %v", err)
	}
	if info.Size() != 1 {
		t.Errorf("Size = %d, want 1", info.Size())
	}

	entries, err := ReadDirWithRetry(dir, DefaultRetryConfig())
	if err != nil {
		t.Fatalf("ReadDirWithRetry failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}
}

func TestWithRetry_StaleThenSuccess(t *testing.T) {
	obs := &recordingObserver{}
	SetObserver(obs)
	defer SetObserver(nil)

	config := RetryConfig{MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}

	calls := 0
	got, err := withRetry("read", "/photos/a.jpg", config, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, syscall.ESTALE
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 || calls != 3 {
		t.Errorf("got %d after %d calls, want 42 after 3", got, calls)
	}
	if obs.stale != 2 || obs.attempts != 2 || obs.successes != 1 || obs.failures != 0 {
		t.Errorf("observer = stale %d attempts %d successes %d failures %d",
			obs.stale, obs.attempts, obs.successes, obs.failures)
	}
}

func TestWithRetry_ExhaustsBudget(t *testing.T) {
	obs := &recordingObserver{}
	SetObserver(obs)
	defer SetObserver(nil)

	config := RetryConfig{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}

	calls := 0
	_, err := withRetry("stat", "/photos/a.jpg", config, func() (struct{}, error) {
		calls++
		return struct{}{}, syscall.ESTALE
	})
	if !errors.Is(err, syscall.ESTALE) {
		t.Errorf("expected ESTALE, got %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if obs.failures != 1 {
		t.Errorf("failures = %d, want 1", obs.failures)
	}
}

func TestWithRetry_NonStaleFailsFast(t *testing.T) {
	calls := 0
	_, err := withRetry("read", "/photos/a.jpg", DefaultRetryConfig(), func() (int, error) {
		calls++
		return 0, syscall.EACCES
	})
	if !errors.Is(err, syscall.EACCES) {
		t.Errorf("expected EACCES, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
