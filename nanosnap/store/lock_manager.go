package store

import "sync"

// operationType defines whether an operation is read or write
type operationType int

const (
	// readOperation may run concurrently with other reads
	readOperation operationType = iota

	// writeOperation excludes every other operation
	writeOperation
)

// lockManager centralizes the in-process locking of a Store so every
// operation takes the right kind of lock and releases it on return.
// Parallel subtests may capture snapshots concurrently.
type lockManager struct {
	mu sync.RWMutex
}

// execute runs fn holding a read or write lock depending on opType
func (lm *lockManager) execute(opType operationType, fn func()) {
	switch opType {
	case readOperation:
		lm.mu.RLock()
		defer lm.mu.RUnlock()
	case writeOperation:
		lm.mu.Lock()
		defer lm.mu.Unlock()
	}
	fn()
}
