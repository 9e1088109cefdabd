// Package lock prevents two addrbin runs from writing into the same input
// tree at once, using an exclusive lock file at the tree root.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrLockHeld is returned when another run already holds the tree lock.
var ErrLockHeld = errors.New("input tree is locked by another run")

// LockFileName is the name of the lock file created at the tree root.
const LockFileName = ".addrbin.lock"

// RunLock is an exclusive per-tree lock. The lock file is created with
// O_EXCL so exactly one process can hold it; it records the holder's PID for
// diagnostics.
type RunLock struct {
	path string
	held bool
}

// NewRunLock creates a lock for the given input tree. The lock is not
// acquired until AcquireOrFail is called.
func NewRunLock(root string) *RunLock {
	return &RunLock{path: filepath.Join(root, LockFileName)}
}

// AcquireOrFail takes the lock or fails immediately with ErrLockHeld if
// another run holds it.
func (l *RunLock) AcquireOrFail() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			holder, readErr := os.ReadFile(l.path)
			if readErr == nil && len(holder) > 0 {
				return fmt.Errorf("%w (pid %s)", ErrLockHeld, string(holder))
			}
			return ErrLockHeld
		}
		return fmt.Errorf("failed to create lock file %s: %w", l.path, err)
	}
	fmt.Fprintf(f, "%d", os.Getpid())
	if err := f.Close(); err != nil {
		os.Remove(l.path)
		return fmt.Errorf("failed to write lock file %s: %w", l.path, err)
	}
	l.held = true
	return nil
}

// Release removes the lock file. Releasing an unheld lock is a no-op.
func (l *RunLock) Release() error {
	if !l.held {
		return nil
	}
	l.held = false
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file %s: %w", l.path, err)
	}
	return nil
}

// Held reports whether this process currently holds the lock.
func (l *RunLock) Held() bool {
	return l.held
}
