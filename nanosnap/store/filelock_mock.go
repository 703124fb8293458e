package store

import (
	"context"
	"sync"
	"time"
)

// MockFileLock provides a mock implementation of FileLock for testing
type MockFileLock struct {
	mu       sync.Mutex
	isLocked bool

	// LockError and UnlockError are returned by the next lock/unlock calls when set
	LockError   error
	UnlockError error

	// For tracking lock attempts
	LockAttempts   int
	UnlockAttempts int
}

// TryLockContext implements FileLock.TryLockContext
func (m *MockFileLock) TryLockContext(ctx context.Context, retryInterval time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LockAttempts++
	if m.LockError != nil {
		return false, m.LockError
	}
	if m.isLocked {
		return false, nil
	}
	m.isLocked = true
	return true, nil
}

// Unlock implements FileLock.Unlock
func (m *MockFileLock) Unlock() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UnlockAttempts++
	if m.UnlockError != nil {
		return m.UnlockError
	}
	m.isLocked = false
	return nil
}

// IsLocked returns whether the lock is currently held
func (m *MockFileLock) IsLocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isLocked
}

// MockFileLockFactory hands out one MockFileLock per path
type MockFileLockFactory struct {
	mu    sync.Mutex
	locks map[string]*MockFileLock

	// DefaultLockError is injected into every lock created afterwards
	DefaultLockError error
}

// NewMockFileLockFactory creates a new mock factory
func NewMockFileLockFactory() *MockFileLockFactory {
	return &MockFileLockFactory{
		locks: make(map[string]*MockFileLock),
	}
}

// New implements FileLockFactory.New
func (f *MockFileLockFactory) New(path string) FileLock {
	f.mu.Lock()
	defer f.mu.Unlock()

	if lock, exists := f.locks[path]; exists {
		return lock
	}
	lock := &MockFileLock{LockError: f.DefaultLockError}
	f.locks[path] = lock
	return lock
}

// GetLock returns the mock lock for a path, nil if none was created
func (f *MockFileLockFactory) GetLock(path string) *MockFileLock {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.locks[path]
}
