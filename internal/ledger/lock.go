package ledger

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"exifheal/internal/config"
)

// ErrLocked indicates another scan or apply run holds the ledger lock.
var ErrLocked = errors.New("another exifheal run is already in progress")

// RunLock serializes scan and apply runs against one state directory.
// It guards the ledger only; media files are never locked.
type RunLock struct {
	lock *flock.Flock
}

// AcquireRunLock takes the exclusive run lock, failing fast with ErrLocked
// when it is held elsewhere.
func AcquireRunLock(cfg *config.Config) (*RunLock, error) {
	lockPath := filepath.Join(cfg.Paths.StateDir, "exifheal.lock")
	lock := flock.New(lockPath)

	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return &RunLock{lock: lock}, nil
}

// Release drops the run lock.
func (l *RunLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
