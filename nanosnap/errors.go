package nanosnap

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when a session operation is called in
	// a state that does not allow it, e.g. a snapshot after Persist
	ErrInvalidTransition = errors.New("nanosnap: invalid session state transition")

	// ErrStoreUnavailable reports that no snapshot store was loaded, either
	// because Load was never called or because loading failed
	ErrStoreUnavailable = errors.New("nanosnap: snapshot store unavailable")

	// ErrMismatch is matched by every *MismatchError
	ErrMismatch = errors.New("nanosnap: snapshot mismatch")

	// ErrUnsupportedValue is returned for captured values that cannot be
	// stored as JSON; nothing is recorded for them
	ErrUnsupportedValue = errors.New("nanosnap: value cannot be stored as JSON")
)

// MismatchError reports a recomputed value that differs from its baseline.
// The baseline is left untouched.
type MismatchError struct {
	Key      string
	Expected any
	Value    any
	// Diff lists the difference as "-expected +value" lines
	Diff string
}

// Error implements the error interface
func (e *MismatchError) Error() string {
	return fmt.Sprintf("snapshot difference at %q\n%s", e.Key, e.Diff)
}

// Unwrap allows errors.Is(err, ErrMismatch)
func (e *MismatchError) Unwrap() error {
	return ErrMismatch
}

// PersistError reports a failure to write the finalized store at the end of a run
type PersistError struct {
	Layout string
	Path   string
	Err    error
}

// Error implements the error interface
func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist snapshots (%s layout at %s): %v", e.Layout, e.Path, e.Err)
}

// Unwrap returns the underlying write error
func (e *PersistError) Unwrap() error {
	return e.Err
}

func transitionError(op string, from SessionState) error {
	return fmt.Errorf("%w: cannot %s in state %s", ErrInvalidTransition, op, from)
}
