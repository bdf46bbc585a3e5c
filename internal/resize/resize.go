package resize

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// FormatRGBA marks a Result whose Pixels are interleaved 8-bit RGBA.
const FormatRGBA = "rgba8"

// MaxSourcePixels bounds the decoded size of a source image. Larger inputs
// are rejected as undecodable instead of allocating gigabytes of pixels.
const MaxSourcePixels = 250_000_000

// Result is the output of a resize. It is never modified after it is
// returned, so it may be shared between goroutines.
type Result struct {
	// Pixels is either raw RGBA8 (Format == FormatRGBA) or the untouched
	// source bytes (fast path).
	Pixels []byte
	Width  int
	Height int
	// Format is FormatRGBA or the decoder's name for the source format
	// ("jpeg", "png", ...).
	Format string
}

// IsRaw reports whether Pixels holds raw RGBA8 pixels.
func (r *Result) IsRaw() bool {
	return r.Format == FormatRGBA
}

// Resizer fits encoded images into a bounding box.
type Resizer interface {
	Fit(data []byte, maxWidth, maxHeight int) (*Result, error)
}

// Kind classifies resize failures.
type Kind int

const (
	// KindDecode means the input bytes are not a decodable image.
	KindDecode Kind = iota + 1
	// KindResize means the scaling step failed.
	KindResize
)

func (k Kind) String() string {
	switch k {
	case KindDecode:
		return "decode"
	case KindResize:
		return "resize"
	default:
		return "unknown"
	}
}

// Sentinel errors for errors.Is checks against *Error values.
var (
	ErrDecode = errors.New("image decode failed")
	ErrResize = errors.New("image resize failed")
)

// Error is returned by every Resizer implementation.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Kind == KindDecode {
		return fmt.Sprintf("decode image: %v", e.Err)
	}
	return fmt.Sprintf("resize image: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrDecode:
		return e.Kind == KindDecode
	case ErrResize:
		return e.Kind == KindResize
	}
	return false
}

func decodeError(err error) error {
	return &Error{Kind: KindDecode, Err: err}
}

func resizeError(err error) error {
	return &Error{Kind: KindResize, Err: err}
}

// TargetSize returns the dimensions an image of width x height is scaled to
// so that it fits maxWidth x maxHeight, and the scale factor used. A scale of
// 1 or more means the image already fits and width, height are returned
// unchanged.
func TargetSize(width, height, maxWidth, maxHeight int) (int, int, float64) {
	scale := math.Min(float64(maxWidth)/float64(width), float64(maxHeight)/float64(height))
	if scale >= 1 {
		return width, height, scale
	}

	w := max(1, int(math.Round(float64(width)*scale)))
	h := max(1, int(math.Round(float64(height)*scale)))
	return w, h, scale
}

func checkBounds(maxWidth, maxHeight int) error {
	if maxWidth <= 0 || maxHeight <= 0 {
		return resizeError(fmt.Errorf("invalid bounds %dx%d", maxWidth, maxHeight))
	}
	return nil
}

func checkSource(width, height int) error {
	if width <= 0 || height <= 0 {
		return decodeError(fmt.Errorf("invalid source dimensions %dx%d", width, height))
	}
	if int64(width)*int64(height) > MaxSourcePixels {
		return decodeError(fmt.Errorf("source %dx%d exceeds %d pixels", width, height, MaxSourcePixels))
	}
	return nil
}

// Backend names accepted by New.
const (
	BackendNative = "native"
	BackendVips   = "vips"
)

// New returns the resizer for backend. An unknown backend is an error; a
// vips backend that cannot start falls back to Native and reports the
// backend actually in use.
func New(backend, filter string) (Resizer, string, error) {
	native, err := NewNative(filter)
	if err != nil {
		return nil, "", err
	}

	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendNative:
		return native, BackendNative, nil
	case BackendVips:
		if err := InitVips(); err != nil {
			return native, BackendNative, nil
		}
		return NewVips(), BackendVips, nil
	default:
		return nil, "", fmt.Errorf("unknown resize backend %q", backend)
	}
}
