// Package testutil provides snapshot fixtures and assertions shared by tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/arthur-debert/nanosnap/nanosnap/store"
	"github.com/arthur-debert/nanosnap/types"
)

// FixtureVersion is the version stamp of testdata/snapshots.js
const FixtureVersion = "1.4.0"

// FixtureData gives named access to the records of the fixture document
type FixtureData struct {
	// Dir holds a private copy of the fixture document
	Dir   string
	State *store.State

	// Keys of well known records
	CartEmpty     string
	CartItems     string
	CartTotal     string
	GreetingFirst string
	Greeting      string
	MenuHTML      string
	MenuDOM       string
	Settings      string
}

// Get returns the record stored under key
func (f *FixtureData) Get(key string) (any, bool) {
	v, ok := f.State.Records[key]
	return v, ok
}

// Config returns a session config pointing at the fixture directory
func (f *FixtureData) Config(format types.Format) types.Config {
	return types.Config{SnapshotPath: f.Dir, Format: format, Version: FixtureVersion}
}

// LoadFixture copies testdata/snapshots.js into a temporary directory and
// loads it with the monolithic layout
func LoadFixture(t testing.TB) *FixtureData {
	t.Helper()

	data, err := os.ReadFile(fixturePath())
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, store.DocumentFile), data, 0644); err != nil {
		t.Fatalf("failed to copy fixture: %v", err)
	}

	state, err := store.NewMonolithic(dir).Load(context.Background())
	if err != nil {
		t.Fatalf("failed to load fixture: %v", err)
	}

	return &FixtureData{
		Dir:           dir,
		State:         state,
		CartEmpty:     "TestCart empty 1",
		CartItems:     "TestCart items 1",
		CartTotal:     "TestCart items total",
		GreetingFirst: "TestGreeting 1",
		Greeting:      "TestGreeting 2",
		MenuHTML:      "TestMenu render 1",
		MenuDOM:       "TestMenu render dom",
		Settings:      "TestSettings defaults 1",
	}
}

// WriteMonolithic saves records as a monolithic document in dir
func WriteMonolithic(t testing.TB, dir string, records map[string]any, version string) string {
	t.Helper()
	return writeLayout(t, store.NewMonolithic(dir), records, version)
}

// WriteSplit saves records as an index with one shard per record in dir
func WriteSplit(t testing.TB, dir string, records map[string]any, version string) string {
	t.Helper()
	return writeLayout(t, store.NewSplit(dir), records, version)
}

func writeLayout(t testing.TB, layout store.Layout, records map[string]any, version string) string {
	t.Helper()
	state := store.NewState()
	state.Version = version
	for k, v := range records {
		state.Records[k] = v
	}
	if err := layout.Save(context.Background(), state); err != nil {
		t.Fatalf("failed to write %s fixture: %v", layout.Name(), err)
	}
	return layout.Path()
}

// MockLayout returns a layout for format backed by an in-memory file system
// and mock locks, so tests can inspect every file the layout touches
func MockLayout(format types.Format, dir string) (store.Layout, *store.MockFileSystem, *store.MockFileLockFactory) {
	fs := store.NewMockFileSystem()
	locks := store.NewMockFileLockFactory()
	layout := store.NewLayout(format, dir, store.WithFileSystem(fs), store.WithFileLockFactory(locks))
	return layout, fs, locks
}

// fixturePath resolves testdata/snapshots.js from this source file, so the
// fixture loads from any package directory
func fixturePath() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return filepath.Join("..", "testdata", store.DocumentFile)
	}
	return filepath.Join(filepath.Dir(file), "..", "testdata", store.DocumentFile)
}
