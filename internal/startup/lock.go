package startup

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"

	"photo-culler/internal/logging"
)

// ErrAlreadyRunning is returned when another server holds the instance lock.
var ErrAlreadyRunning = errors.New("another instance is using this database directory")

// InstanceLock keeps a second server from opening the same database.
type InstanceLock struct {
	lock *flock.Flock
}

// AcquireInstanceLock takes a non-blocking exclusive lock on path.
func AcquireInstanceLock(path string) (*InstanceLock, error) {
	lock := flock.New(path)

	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (lock file %s)", ErrAlreadyRunning, path)
	}

	logging.Debug("  Acquired instance lock %s", path)
	return &InstanceLock{lock: lock}, nil
}

// Release drops the lock. It is safe to call on a nil lock.
func (l *InstanceLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
