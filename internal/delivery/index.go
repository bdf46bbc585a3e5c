package delivery

import (
	"fmt"
	"strconv"
)

// ParseIndex parses a catalog position. Only plain base-10 digits are
// accepted: no sign, no whitespace, no prefix.
func ParseIndex(raw string) (uint64, error) {
	if raw == "" {
		return 0, &Error{Kind: KindInvalidIndex, Err: fmt.Errorf("empty index")}
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, &Error{Kind: KindInvalidIndex, Err: fmt.Errorf("%q is not a non-negative integer", raw)}
		}
	}

	index, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, &Error{Kind: KindInvalidIndex, Err: fmt.Errorf("%q: %w", raw, err)}
	}
	return index, nil
}
