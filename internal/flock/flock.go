// Package flock provides an exclusive advisory lock used to serialize
// configuration commits within and across processes.
package flock

import (
	"fmt"
	"os"
)

// A Lock holds an exclusive advisory lock on a sibling lock file.
type Lock struct {
	f *os.File
}

// Acquire takes an exclusive advisory lock guarding the document at path.
// It blocks until the lock is available. The lock is taken on a sibling
// "<path>.lock" file so the document itself is never held open for locking.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := lockFile(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	return &Lock{f: f}, nil
}

// Release drops the lock. The lock file itself is left in place; removing
// it would race with concurrent acquirers.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	err := unlockFile(l.f)
	closeErr := l.f.Close()
	l.f = nil
	if err != nil {
		return err
	}
	return closeErr
}
