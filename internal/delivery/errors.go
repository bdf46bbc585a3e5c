package delivery

import (
	"errors"
	"fmt"
	"net/http"

	"photo-culler/internal/catalog"
	"photo-culler/internal/resize"
)

// Kind classifies delivery failures.
type Kind int

const (
	// KindInvalidIndex means the index string is not a non-negative integer.
	KindInvalidIndex Kind = iota + 1
	// KindIndexOutOfRange means the index is past the end of the catalog.
	KindIndexOutOfRange
	// KindFileRead means the source file could not be read.
	KindFileRead
	// KindDecode means the source bytes are not a decodable image.
	KindDecode
	// KindResize means scaling failed.
	KindResize
)

func (k Kind) String() string {
	switch k {
	case KindInvalidIndex:
		return "invalid_index"
	case KindIndexOutOfRange:
		return "index_out_of_range"
	case KindFileRead:
		return "file_read"
	case KindDecode:
		return "decode"
	case KindResize:
		return "resize"
	default:
		return "unknown"
	}
}

// StatusCode returns the HTTP status reported for the kind.
func (k Kind) StatusCode() int {
	switch k {
	case KindIndexOutOfRange, KindFileRead:
		return http.StatusNotFound
	case KindInvalidIndex, KindDecode, KindResize:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidIndex    = errors.New("invalid index")
	ErrIndexOutOfRange = catalog.ErrIndexOutOfRange
	ErrFileRead        = errors.New("file read failed")
	ErrDecode          = resize.ErrDecode
	ErrResize          = resize.ErrResize
)

// Error is returned by every delivery failure.
type Error struct {
	Kind  Kind
	Index uint64
	Err   error
}

func (e *Error) Error() string {
	if e.Kind == KindInvalidIndex {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s at index %d: %v", e.Kind, e.Index, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidIndex:
		return e.Kind == KindInvalidIndex
	case ErrFileRead:
		return e.Kind == KindFileRead
	}
	return false
}

// KindOf returns the Kind of err, or 0 when err is not a delivery error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

// StatusCode returns the HTTP status for err.
func StatusCode(err error) int {
	return KindOf(err).StatusCode()
}

// classify wraps a failure from the production pipeline.
func classify(index uint64, err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}

	kind := KindFileRead
	switch {
	case errors.Is(err, catalog.ErrIndexOutOfRange):
		kind = KindIndexOutOfRange
	case errors.Is(err, resize.ErrDecode):
		kind = KindDecode
	case errors.Is(err, resize.ErrResize):
		kind = KindResize
	}
	return &Error{Kind: kind, Index: index, Err: err}
}
