// Package nanosnap records values captured by tests and verifies them on later runs.
//
// The first run of a test accepts every captured value as its baseline.
// Later runs recompute the value, serialize it the same way and compare it
// with the baseline, failing the test with a diff when they differ.
//
// A Session owns one run:
//
//	Idle --Load--> Loaded --Snapshot--> Running --Persist--> Finalized
//
// Wire it into a test binary with Run from TestMain and call Match from tests:
//
//	func TestMain(m *testing.M) {
//		os.Exit(nanosnap.Run(m, types.Config{SnapshotPath: "__snapshots__"}))
//	}
//
//	func TestGreeting(t *testing.T) {
//		nanosnap.Match(t, render("world"))
//	}
package nanosnap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/arthur-debert/nanosnap/internal/buildinfo"
	"github.com/arthur-debert/nanosnap/nanosnap/compare"
	"github.com/arthur-debert/nanosnap/nanosnap/naming"
	"github.com/arthur-debert/nanosnap/nanosnap/serialize"
	"github.com/arthur-debert/nanosnap/nanosnap/store"
	"github.com/arthur-debert/nanosnap/types"
	"github.com/google/uuid"
)

// SessionState is the lifecycle phase of a Session
type SessionState int

const (
	// StateIdle is a new session; nothing has been loaded
	StateIdle SessionState = iota
	// StateLoaded follows Load
	StateLoaded
	// StateRunning follows the first snapshot taken after Load
	StateRunning
	// StateFinalized follows Persist; the session accepts no more snapshots
	StateFinalized
)

// String returns the string representation of the SessionState
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoaded:
		return "loaded"
	case StateRunning:
		return "running"
	case StateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Session drives snapshot recording and verification for one run
type Session struct {
	mu sync.Mutex

	cfg        types.Config
	layout     store.Layout
	layoutOpts []store.Option
	names      *naming.Generator
	logger     *slog.Logger
	runID      string

	state SessionState
	// nil until a successful Load; a nil store turns snapshots into no-ops
	store *store.Store
}

// NewSession creates an idle session for cfg.
// An empty cfg.Version defaults to the build version of this module.
func NewSession(cfg types.Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Format, _ = types.ParseFormat(string(cfg.Format))
	if cfg.Version == "" {
		cfg.Version = buildinfo.Current()
	}

	s := &Session{
		cfg:   cfg,
		names: naming.NewGenerator(),
		runID: uuid.NewString(),
		state: StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("run_id", s.runID)

	if s.layout == nil {
		layoutOpts := append([]store.Option{store.WithLogger(s.logger)}, s.layoutOpts...)
		s.layout = store.NewLayout(cfg.Format, cfg.SnapshotPath, layoutOpts...)
	}
	return s, nil
}

// Load reads the persisted snapshots. A missing source yields an empty store.
// Any other load failure is logged and leaves the store unavailable, so the
// run neither verifies nor overwrites the unreadable snapshots.
// The only error returned is ErrInvalidTransition.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return transitionError("load", s.state)
	}
	s.state = StateLoaded

	state, err := s.layout.Load(ctx)
	var partial *store.PartialLoadError
	switch {
	case err == nil:
	case errors.As(err, &partial) && state != nil:
		s.logger.Warn("some snapshots could not be loaded",
			"layout", s.layout.Name(),
			"skipped", partial.Skipped,
			"error", err)
	default:
		s.logger.Warn("failed to load snapshots, snapshot checks are disabled for this run",
			"layout", s.layout.Name(),
			"path", s.layout.Path(),
			"error", err)
		return nil
	}

	s.store = store.FromState(state)
	s.logger.Info("snapshots loaded",
		"count", s.store.Len(),
		"layout", s.layout.Name(),
		"path", s.layout.Path(),
		"version", state.Version)
	return nil
}

// Snapshot checks value against the baseline of the next key for identity.
// It returns value unchanged so calls can be chained. A missing baseline is
// recorded as a copy in its JSON form; a differing one yields a
// *MismatchError and stays as it was. Values JSON cannot represent yield
// ErrUnsupportedValue and are not recorded.
// Without a loaded store the call is a no-op.
func (s *Session) Snapshot(identity types.Identity, value any, opts ...SnapshotOption) (any, error) {
	o := newSnapshotOptions(opts)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateFinalized {
		return value, transitionError("snapshot", s.state)
	}

	key := s.names.Key(identity, o.name)
	if s.store == nil {
		s.logger.Debug("snapshot skipped, no store loaded", "key", key.String())
		return value, nil
	}
	s.state = StateRunning

	mode := serialize.ModeFor(o.asJSON)
	s.logger.Debug("snapshot",
		"key", key.String(),
		"discriminator", key.Discriminator(),
		"mode", mode.String())

	// the stored copy must not follow later changes to value
	canonical, err := compare.Detach(serialize.Canonical(value, mode))
	if err != nil {
		s.logger.Warn("snapshot value rejected", "key", key.String(), "error", err)
		return value, fmt.Errorf("%w: %q: %v", ErrUnsupportedValue, key.String(), err)
	}

	expected, ok := s.store.Get(key)
	if !ok {
		s.store.Put(key, canonical)
		return value, nil
	}

	result := compare.Compare(expected, canonical)
	if result.Match {
		return value, nil
	}

	s.logger.Warn("snapshot mismatch", "key", key.String(), "diff", result.Diff)
	return value, &MismatchError{
		Key:      key.String(),
		Expected: expected,
		Value:    canonical,
		Diff:     result.Diff,
	}
}

// Lookup returns a copy of the baseline stored under key.
// It fails with ErrStoreUnavailable when no store is loaded.
func (s *Session) Lookup(key types.Key) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return nil, false, ErrStoreUnavailable
	}
	v, ok := s.store.Get(key)
	if !ok {
		return nil, false, nil
	}
	return compare.Normalize(v), true, nil
}

// Persist finalizes the store with the configured version and saves it.
// Persisting an idle session writes nothing. Write failures are returned
// as *PersistError; the session is finalized either way.
func (s *Session) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	if prev == StateFinalized {
		return transitionError("persist", prev)
	}
	s.state = StateFinalized

	if prev == StateIdle {
		s.logger.Debug("session was never loaded, nothing to persist")
		return nil
	}
	if s.store == nil {
		s.logger.Warn("snapshot store unavailable, snapshots not saved", "path", s.layout.Path())
		return nil
	}

	final := s.store.Finalize(s.cfg.Version)
	s.logger.Info("saving snapshots",
		"count", final.Len(),
		"layout", s.layout.Name(),
		"path", s.layout.Path(),
		"version", final.Version)

	if err := s.layout.Save(ctx, final); err != nil {
		return &PersistError{Layout: s.layout.Name(), Path: s.layout.Path(), Err: err}
	}
	return nil
}

// State returns the current lifecycle state
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Len returns the number of snapshots held, 0 without a store
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return 0
	}
	return s.store.Len()
}

// RunID identifies this run in log records
func (s *Session) RunID() string {
	return s.runID
}

// Config returns the session configuration with defaults applied
func (s *Session) Config() types.Config {
	return s.cfg
}
