package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

const (
	lockRetries    = 60
	lockRetryDelay = 25 * time.Millisecond
)

// acquireFileLock takes the advisory lock guarding a data file by
// exclusively creating its lock file. Another process holding the lock
// shows up as fs.ErrExist; we poll until it releases or the retry budget
// runs out, at which point the caller gets a fatal timeout.
func acquireFileLock(lockPath string) error {
	for attempt := 0; attempt < lockRetries; attempt++ {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			return f.Close()
		}
		if !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("storage: acquire lock %s: %w", lockPath, err)
		}
		time.Sleep(lockRetryDelay)
	}
	return fmt.Errorf("storage: lock timeout for %s", lockPath)
}

// releaseFileLock removes the lock file. The lock already being gone is
// tolerated so release can run unconditionally on every exit path.
func releaseFileLock(lockPath string) error {
	if err := os.Remove(lockPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: release lock %s: %w", lockPath, err)
	}
	return nil
}
