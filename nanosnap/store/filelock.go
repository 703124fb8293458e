package store

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// Constants for file locking
const (
	lockTimeout    = 3 * time.Second
	lockMaxRetries = 3
	lockRetryDelay = 100 * time.Millisecond
)

// FileLock defines the interface for cross-process file locking
type FileLock interface {
	// TryLockContext attempts to acquire an exclusive lock, retrying until ctx is done
	TryLockContext(ctx context.Context, retryInterval time.Duration) (bool, error)

	// Unlock releases the lock
	Unlock() error
}

// FileLockFactory creates FileLock instances
type FileLockFactory interface {
	// New creates a new FileLock for the given lock file path
	New(path string) FileLock
}

// FlockFactory is the default factory, backed by github.com/gofrs/flock
type FlockFactory struct{}

// New implements FileLockFactory.New
func (FlockFactory) New(path string) FileLock {
	return flock.New(path)
}

// withLock runs fn while holding the lock, retrying acquisition a few times
func withLock(ctx context.Context, lock FileLock, fn func() error) error {
	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	if err := acquireLock(ctx, lock); err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	return fn()
}

// acquireLock attempts to acquire an exclusive file lock with retry logic
func acquireLock(ctx context.Context, lock FileLock) error {
	for i := 0; i < lockMaxRetries; i++ {
		locked, err := lock.TryLockContext(ctx, lockRetryDelay)
		if err != nil {
			return fmt.Errorf("failed to acquire lock: %w", err)
		}
		if locked {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}

	return fmt.Errorf("failed to acquire lock after %d attempts", lockMaxRetries)
}
