package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

// InstanceGuard holds the single-instance file lock.
type InstanceGuard struct {
	lock *flock.Flock
}

// AcquireSingleInstance takes an exclusive lock on <dir>/<appName>.lock.
// The OS drops the lock when the holding process exits, so a crashed
// instance never blocks the next launch.
func AcquireSingleInstance(dir, appName string) (*InstanceGuard, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("acquire instance lock: %w", err)
	}

	lock := flock.New(filepath.Join(dir, slug(appName)+".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return nil, ErrAlreadyRunning
	}
	return &InstanceGuard{lock: lock}, nil
}

// Release frees the single instance lock. The lock file stays on disk.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.lock == nil {
		return nil
	}
	lock := guard.lock
	guard.lock = nil
	if err := lock.Unlock(); err != nil {
		return fmt.Errorf("release instance lock: %w", err)
	}
	return nil
}

// Path returns the lock file location.
func (guard *InstanceGuard) Path() string {
	if guard == nil || guard.lock == nil {
		return ""
	}
	return guard.lock.Path()
}
