// Package projectlock provides an exclusive, cross-process file lock so two
// scanners or watchers on the same project data directory never run
// concurrently.
package projectlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockFileName = ".rewindex.lock"

// Lock wraps a gofrs/flock exclusive lock scoped to one project's data
// directory.
type Lock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// New creates a Lock for the given data directory. The lock file is
// created at <dataDir>/.rewindex.lock.
func New(dataDir string) *Lock {
	path := filepath.Join(dataDir, lockFileName)
	return &Lock{path: path, flock: flock.New(path)}
}

// Lock acquires the exclusive lock, blocking until it is available.
func (l *Lock) Lock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	if err := l.flock.Lock(); err != nil {
		return fmt.Errorf("acquire project lock: %w", err)
	}
	l.locked = true
	return nil
}

// TryLock attempts to acquire the lock without blocking. It reports
// whether the lock was acquired.
func (l *Lock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, fmt.Errorf("create lock directory: %w", err)
	}
	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("acquire project lock: %w", err)
	}
	if acquired {
		l.locked = true
	}
	return acquired, nil
}

// Unlock releases the lock. Safe to call multiple times or when unlocked.
func (l *Lock) Unlock() error {
	if !l.locked {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("release project lock: %w", err)
	}
	l.locked = false
	return nil
}

// Path returns the lock file's path.
func (l *Lock) Path() string {
	return l.path
}

// Locked reports whether this Lock currently holds the lock.
func (l *Lock) Locked() bool {
	return l.locked
}
