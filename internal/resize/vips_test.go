package resize

import (
	"bytes"
	"errors"
	"testing"
)

func TestVipsFit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping libvips test in short mode")
	}
	if err := InitVips(); err != nil {
		t.Skipf("libvips not available: %v", err)
	}

	v := NewVips()

	small := encodePNG(t, gradient(40, 20))
	result, err := v.Fit(small, 1920, 1080)
	if err != nil {
		t.Fatalf("Fit small: %v", err)
	}
	if !bytes.Equal(result.Pixels, small) || result.Format != "png" {
		t.Errorf("small image should pass through as png, got format %q", result.Format)
	}

	large := encodePNG(t, gradient(400, 300))
	result, err = v.Fit(large, 200, 200)
	if err != nil {
		t.Fatalf("Fit large: %v", err)
	}
	if result.Width != 200 || result.Height != 150 || !result.IsRaw() {
		t.Errorf("got %dx%d %s, want 200x150 %s", result.Width, result.Height, result.Format, FormatRGBA)
	}
	if len(result.Pixels) != 200*150*4 {
		t.Errorf("pixel buffer is %d bytes", len(result.Pixels))
	}

	if _, err := v.Fit([]byte("nope"), 100, 100); !errors.Is(err, ErrDecode) {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestVipsInvalidBounds(t *testing.T) {
	if _, err := NewVips().Fit(nil, 0, 10); !errors.Is(err, ErrResize) {
		t.Errorf("expected resize error, got %v", err)
	}
}
