package resize

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"time"

	// Decoders beyond the jpeg/png/gif set imaging registers.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"photo-culler/internal/metrics"
)

// Native resizes in pure Go.
type Native struct {
	filter draw.Interpolator
	name   string
}

// NewNative returns a Native resizer using the named filter.
func NewNative(filter string) (*Native, error) {
	interp, err := ParseFilter(filter)
	if err != nil {
		return nil, err
	}
	if filter == "" {
		filter = DefaultFilter
	}
	return &Native{filter: interp, name: filter}, nil
}

// Filter returns the configured filter name.
func (n *Native) Filter() string {
	return n.name
}

// Fit implements Resizer.
func (n *Native) Fit(data []byte, maxWidth, maxHeight int) (result *Result, err error) {
	start := time.Now()
	path := "scaled"
	defer func() {
		if err != nil {
			metrics.ResizeErrorsTotal.WithLabelValues(BackendNative, errorKind(err)).Inc()
			return
		}
		metrics.ResizeDuration.WithLabelValues(BackendNative, path).Observe(time.Since(start).Seconds())
	}()

	if err := checkBounds(maxWidth, maxHeight); err != nil {
		return nil, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, decodeError(err)
	}
	if err := checkSource(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, decodeError(err)
	}

	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	dstW, dstH, scale := TargetSize(width, height, maxWidth, maxHeight)
	if scale >= 1 {
		path = "passthrough"
		return &Result{Pixels: data, Width: width, Height: height, Format: format}, nil
	}

	pixels, err := n.scale(img, dstW, dstH)
	if err != nil {
		return nil, resizeError(err)
	}

	return &Result{Pixels: pixels, Width: dstW, Height: dstH, Format: FormatRGBA}, nil
}

func (n *Native) scale(img image.Image, width, height int) (pixels []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("resampling panicked: %v", r)
		}
	}()

	src := imaging.Clone(img)
	premultiply(src.Pix)

	// Same memory, reinterpreted as premultiplied.
	pre := &image.RGBA{Pix: src.Pix, Stride: src.Stride, Rect: src.Rect}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	n.filter.Scale(dst, dst.Rect, pre, pre.Rect, draw.Src, nil)

	unpremultiply(dst.Pix)
	return dst.Pix, nil
}

// premultiply scales each colour channel by its alpha, in place.
func premultiply(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		a := uint32(pix[i+3])
		switch a {
		case 0xff:
			continue
		case 0:
			pix[i], pix[i+1], pix[i+2] = 0, 0, 0
			continue
		}
		pix[i] = uint8((uint32(pix[i])*a + 127) / 255)
		pix[i+1] = uint8((uint32(pix[i+1])*a + 127) / 255)
		pix[i+2] = uint8((uint32(pix[i+2])*a + 127) / 255)
	}
}

// unpremultiply reverses premultiply, in place.
func unpremultiply(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		a := uint32(pix[i+3])
		switch a {
		case 0xff:
			continue
		case 0:
			pix[i], pix[i+1], pix[i+2] = 0, 0, 0
			continue
		}
		pix[i] = uint8(min(255, (uint32(pix[i])*255+a/2)/a))
		pix[i+1] = uint8(min(255, (uint32(pix[i+1])*255+a/2)/a))
		pix[i+2] = uint8(min(255, (uint32(pix[i+2])*255+a/2)/a))
	}
}

func errorKind(err error) string {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind.String()
	}
	return "unknown"
}
