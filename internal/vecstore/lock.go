package vecstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// lockRetryInterval is how long a writer waits before retrying a held file lock.
const lockRetryInterval = 10 * time.Millisecond

// lockPath returns the advisory lock file guarding the store file at path.
func lockPath(path string) string {
	return path + ".lock"
}

// acquireFileLock blocks until it holds the lock file for path or ctx ends.
// The lock serializes writers across processes sharing the store file.
func acquireFileLock(ctx context.Context, path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating store directory: %w", ErrPersistenceWrite, err)
	}
	f, err := os.OpenFile(lockPath(path), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: opening lock file: %w", ErrPersistenceWrite, err)
	}

	for {
		ok, err := tryLockFile(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: locking store: %w", ErrPersistenceWrite, err)
		}
		if ok {
			return f, nil
		}

		select {
		case <-ctx.Done():
			f.Close()
			return nil, fmt.Errorf("waiting for store file lock: %w", ctx.Err())
		case <-time.After(lockRetryInterval):
		}
	}
}

func releaseFileLock(f *os.File) {
	unlockFile(f)
	f.Close()
}

// sameFileState reports whether two stat results describe the same file
// content as far as this package writes it. Nil means the file did not exist.
func sameFileState(a, b os.FileInfo) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return os.SameFile(a, b) && a.Size() == b.Size() && a.ModTime().Equal(b.ModTime())
}

// statFile returns the file's info, or nil if it does not exist.
func statFile(path string) (os.FileInfo, error) {
	fi, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return fi, err
}
