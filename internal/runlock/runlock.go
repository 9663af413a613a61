// Package runlock keeps two segprep runs from writing the same output tree
// and hands out the run id that tags their logs.
package runlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"segprep/internal/dataset"
)

// FileName is the lock file created in the guarded directory.
const FileName = ".segprep.lock"

// Lock is an exclusive advisory lock on an output directory.
type Lock struct {
	path  string
	lock  *flock.Flock
	runID string
}

// Acquire creates dir if needed and takes its lock without blocking. A lock
// held by another process is reported as dataset.ErrLocked.
func Acquire(dir, runID string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, FileName)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, dataset.Wrap(dataset.ErrLocked, "", "acquire lock", fmt.Sprintf("%s is in use by another segprep run", dir), nil)
	}
	return &Lock{path: path, lock: fl, runID: runID}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// RunID returns the id of the run holding the lock.
func (l *Lock) RunID() string { return l.runID }

// Release unlocks and removes the lock file.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	_ = os.Remove(l.path)
	return nil
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}
