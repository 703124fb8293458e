package nanosnap

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/arthur-debert/nanosnap/types"
)

// TB is the part of testing.TB that snapshot matching needs
type TB interface {
	Helper()
	Name() string
	Errorf(format string, args ...any)
}

var (
	defaultMu      sync.RWMutex
	defaultSession *Session
)

// runner is satisfied by *testing.M
type runner interface {
	Run() int
}

// Run loads snapshots, runs the tests of m and persists the snapshots,
// returning the exit code for os.Exit. Call it from TestMain. A persist
// failure turns a passing run into a failing one.
func Run(m *testing.M, cfg types.Config, opts ...Option) int {
	return run(m, os.Stderr, cfg, opts...)
}

func run(m runner, stderr io.Writer, cfg types.Config, opts ...Option) int {
	s, err := NewSession(cfg, opts...)
	if err != nil {
		fmt.Fprintf(stderr, "nanosnap: %v\n", err)
		return 1
	}

	ctx := context.Background()
	if err := s.Load(ctx); err != nil {
		fmt.Fprintf(stderr, "nanosnap: %v\n", err)
		return 1
	}

	setDefault(s)
	defer setDefault(nil)

	code := m.Run()
	if err := s.Persist(ctx); err != nil {
		fmt.Fprintf(stderr, "nanosnap: %v\n", err)
		if code == 0 {
			code = 1
		}
	}
	return code
}

func setDefault(s *Session) {
	defaultMu.Lock()
	defaultSession = s
	defaultMu.Unlock()
}

// Default returns the session installed by Run, nil outside of it
func Default() *Session {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultSession
}

// Match checks value against its baseline in the session installed by Run.
// Without one it returns value and checks nothing.
func Match(t TB, value any, opts ...SnapshotOption) any {
	t.Helper()
	s := Default()
	if s == nil {
		return value
	}
	return s.Match(t, value, opts...)
}

// Match checks value against the baseline of the next key for t,
// reporting a mismatch through t.Errorf. It returns value unchanged.
func (s *Session) Match(t TB, value any, opts ...SnapshotOption) any {
	t.Helper()
	v, err := s.Snapshot(types.IdentityFromName(t.Name()), value, opts...)
	if err != nil {
		t.Errorf("%v", err)
	}
	return v
}
