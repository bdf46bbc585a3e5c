package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Status is the culling decision for one photo.
type Status int

const (
	// StatusPending means no decision has been made yet.
	StatusPending Status = iota
	// StatusKeep marks a photo to keep.
	StatusKeep
	// StatusDelete marks a photo for deletion.
	StatusDelete
)

// ErrInvalidTransition is returned when a vote targets a status that
// cannot be voted for.
var ErrInvalidTransition = errors.New("invalid status transition")

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusKeep:
		return "keep"
	case StatusDelete:
		return "delete"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ParseStatus converts a status name to a Status.
func ParseStatus(name string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pending":
		return StatusPending, nil
	case "keep":
		return StatusKeep, nil
	case "delete":
		return StatusDelete, nil
	default:
		return StatusPending, fmt.Errorf("unknown status %q", name)
	}
}

// Vote returns the status that results from voting target. Any status may
// move to Keep or Delete; nothing moves back to Pending.
func (s Status) Vote(target Status) (Status, error) {
	switch target {
	case StatusKeep, StatusDelete:
		return target, nil
	default:
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, target)
	}
}

// MarshalJSON encodes the status by name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status name.
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseStatus(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
