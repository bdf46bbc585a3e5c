package delivery

import (
	"fmt"
	"time"

	"photo-culler/internal/filesystem"
	"photo-culler/internal/logging"
	"photo-culler/internal/resize"
)

// Resolver maps a catalog position to a file.
type Resolver interface {
	Resolve(index uint64) (path, name string, err error)
}

// Bounds reports the box results are fitted to.
type Bounds interface {
	Bounds() (width, height int)
}

// ReadFunc reads a whole file.
type ReadFunc func(path string) ([]byte, error)

// Producer runs the resolve, read and resize pipeline for one index. It is
// shared by foreground delivery and prefetch workers.
type Producer struct {
	resolver Resolver
	read     ReadFunc
	resizer  resize.Resizer
	bounds   Bounds
}

// NewProducer creates a Producer. A nil read function reads through the
// filesystem package with NFS retries.
func NewProducer(resolver Resolver, resizer resize.Resizer, bounds Bounds, read ReadFunc) *Producer {
	if read == nil {
		cfg := filesystem.DefaultRetryConfig()
		read = func(path string) ([]byte, error) {
			return filesystem.ReadFileWithRetry(path, cfg)
		}
	}
	return &Producer{
		resolver: resolver,
		read:     read,
		resizer:  resizer,
		bounds:   bounds,
	}
}

// Produce resolves, reads and resizes the image at index. It returns the
// result and the file's display name. Errors are *Error values.
func (p *Producer) Produce(index uint64) (*resize.Result, string, error) {
	start := time.Now()

	path, name, err := p.resolver.Resolve(index)
	if err != nil {
		return nil, "", &Error{Kind: KindIndexOutOfRange, Index: index, Err: err}
	}

	data, err := p.read(path)
	if err != nil {
		return nil, name, &Error{Kind: KindFileRead, Index: index, Err: fmt.Errorf("read %s: %w", name, err)}
	}

	maxWidth, maxHeight := p.bounds.Bounds()
	result, err := p.resizer.Fit(data, maxWidth, maxHeight)
	if err != nil {
		return nil, name, classify(index, fmt.Errorf("%s: %w", name, err))
	}

	logging.Debug("Produced %s (index %d): %dx%d %s in %v",
		name, index, result.Width, result.Height, result.Format, time.Since(start))

	return result, name, nil
}
