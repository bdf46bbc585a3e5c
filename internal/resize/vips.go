package resize

import (
	"fmt"
	"sync"
	"time"

	"github.com/davidbyttow/govips/v2/vips"

	"photo-culler/internal/logging"
	"photo-culler/internal/metrics"
)

var (
	vipsInitialized bool
	vipsInitMutex   sync.Mutex
	vipsAvailable   bool
)

// InitVips starts libvips. It is safe to call more than once.
func InitVips() (err error) {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("libvips startup failed: %v", r)
			logging.Warn("%v, falling back to native resizing", err)
		}
	}()

	vips.LoggingSettings(vipsLogHandler(logging.GetLevel()))

	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
	})

	vipsInitialized = true
	vipsAvailable = true
	logging.Info("libvips initialized successfully (version: %s)", vips.Version)
	return nil
}

// vipsLogHandler routes libvips messages into the application log at a
// verbosity matching the application level.
func vipsLogHandler(level logging.LogLevel) (func(string, vips.LogLevel, string), vips.LogLevel) {
	switch level {
	case logging.LevelDebug:
		return func(domain string, lvl vips.LogLevel, msg string) {
			switch lvl {
			case vips.LogLevelError, vips.LogLevelCritical:
				logging.Error("[%s] %s", domain, msg)
			case vips.LogLevelWarning:
				logging.Warn("[%s] %s", domain, msg)
			default:
				logging.Debug("[%s] %s", domain, msg)
			}
		}, vips.LogLevelInfo
	case logging.LevelInfo:
		return func(domain string, lvl vips.LogLevel, msg string) {
			switch lvl {
			case vips.LogLevelError, vips.LogLevelCritical:
				logging.Error("[%s] %s", domain, msg)
			case vips.LogLevelWarning:
				logging.Warn("[%s] %s", domain, msg)
			}
		}, vips.LogLevelWarning
	case logging.LevelWarn:
		return func(domain string, lvl vips.LogLevel, msg string) {
			if lvl >= vips.LogLevelError {
				logging.Error("[%s] %s", domain, msg)
			}
		}, vips.LogLevelError
	default:
		return func(domain string, lvl vips.LogLevel, msg string) {
			if lvl >= vips.LogLevelCritical {
				logging.Error("[%s] %s", domain, msg)
			}
		}, vips.LogLevelCritical
	}
}

// ShutdownVips releases libvips. libvips cannot be restarted afterwards.
func ShutdownVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		vipsAvailable = false
		logging.Info("libvips shutdown complete")
	}
}

// IsVipsAvailable returns whether libvips is initialized and available
func IsVipsAvailable() bool {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()
	return vipsAvailable
}

// Vips resizes through libvips. InitVips must have succeeded first.
type Vips struct{}

// NewVips returns a libvips-backed resizer.
func NewVips() *Vips {
	return &Vips{}
}

// Fit implements Resizer.
func (v *Vips) Fit(data []byte, maxWidth, maxHeight int) (result *Result, err error) {
	start := time.Now()
	path := "scaled"
	defer func() {
		if err != nil {
			metrics.ResizeErrorsTotal.WithLabelValues(BackendVips, errorKind(err)).Inc()
			return
		}
		metrics.ResizeDuration.WithLabelValues(BackendVips, path).Observe(time.Since(start).Seconds())
	}()

	if err := checkBounds(maxWidth, maxHeight); err != nil {
		return nil, err
	}
	if !IsVipsAvailable() {
		return nil, resizeError(fmt.Errorf("libvips not available"))
	}

	ref, err := vips.NewImageFromBuffer(data)
	if err != nil {
		return nil, decodeError(err)
	}
	defer ref.Close()

	width, height := ref.Width(), ref.Height()
	if err := checkSource(width, height); err != nil {
		return nil, err
	}

	dstW, dstH, scale := TargetSize(width, height, maxWidth, maxHeight)
	if scale >= 1 {
		path = "passthrough"
		return &Result{Pixels: data, Width: width, Height: height, Format: vips.ImageTypes[ref.Format()]}, nil
	}

	if err := ref.ToColorSpace(vips.InterpretationSRGB); err != nil {
		return nil, decodeError(err)
	}
	if !ref.HasAlpha() {
		if err := ref.AddAlpha(); err != nil {
			return nil, resizeError(err)
		}
	}
	if err := ref.PremultiplyAlpha(); err != nil {
		return nil, resizeError(err)
	}
	if err := ref.ResizeWithVScale(float64(dstW)/float64(width), float64(dstH)/float64(height), vips.KernelLanczos3); err != nil {
		return nil, resizeError(err)
	}
	if err := ref.UnpremultiplyAlpha(); err != nil {
		return nil, resizeError(err)
	}
	if err := ref.Cast(vips.BandFormatUchar); err != nil {
		return nil, resizeError(err)
	}

	pixels, err := ref.ToBytes()
	if err != nil {
		return nil, resizeError(err)
	}

	outW, outH := ref.Width(), ref.Height()
	if ref.Bands() != 4 || len(pixels) != outW*outH*4 {
		return nil, resizeError(fmt.Errorf("unexpected output %dx%d with %d bands (%d bytes)",
			outW, outH, ref.Bands(), len(pixels)))
	}

	return &Result{Pixels: pixels, Width: outW, Height: outH, Format: FormatRGBA}, nil
}
