package delivery

import (
	"fmt"
	"sync/atomic"
)

// Default bounds every result is capped at.
const (
	DefaultMaxWidth  = 1920
	DefaultMaxHeight = 1080
)

// Viewport holds the display area most recently reported by the client.
type Viewport struct {
	maxWidth  int
	maxHeight int
	size      atomic.Uint64 // width<<32 | height, zero when unset
}

// NewViewport creates a viewport capped at maxWidth x maxHeight.
func NewViewport(maxWidth, maxHeight int) (*Viewport, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, fmt.Errorf("invalid viewport cap %dx%d", maxWidth, maxHeight)
	}
	return &Viewport{maxWidth: maxWidth, maxHeight: maxHeight}, nil
}

// Set records the client's display size.
func (v *Viewport) Set(width, height int) error {
	if width <= 0 || height <= 0 || width > 1<<20 || height > 1<<20 {
		return fmt.Errorf("invalid viewport %dx%d", width, height)
	}
	v.size.Store(uint64(width)<<32 | uint64(height))
	return nil
}

// Reset forgets the reported size.
func (v *Viewport) Reset() {
	v.size.Store(0)
}

// Bounds returns the box results are fitted to: the reported size capped
// at the maximum, or the maximum when nothing was reported.
func (v *Viewport) Bounds() (int, int) {
	packed := v.size.Load()
	if packed == 0 {
		return v.maxWidth, v.maxHeight
	}
	width, height := int(packed>>32), int(packed&0xffffffff)
	return min(width, v.maxWidth), min(height, v.maxHeight)
}

// Max returns the cap.
func (v *Viewport) Max() (int, int) {
	return v.maxWidth, v.maxHeight
}
