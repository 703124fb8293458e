package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newMockSplit() (*Split, *MockFileSystem, *MockFileLockFactory) {
	mockFS := NewMockFileSystem()
	mockLocks := NewMockFileLockFactory()
	return NewSplit("snaps", WithFileSystem(mockFS), WithFileLockFactory(mockLocks)), mockFS, mockLocks
}

func readIndexFile(t *testing.T, mockFS *MockFileSystem) Index {
	t.Helper()
	content, ok := mockFS.GetFileContent("snaps/index.json")
	if !ok {
		t.Fatal("index was not written")
	}
	var index Index
	if err := json.Unmarshal(content, &index); err != nil {
		t.Fatalf("invalid index: %v", err)
	}
	return index
}

func TestShardFileName(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"TestLogin form 1", "TestLoginform1.json"},
		{"TestA - sub 2", "TestAsub2.json"},
		{"TestÉté 1", "Testt1.json"},
		{"snake_case 1", "snake_case1.json"},
	}
	for _, tt := range tests {
		if got := ShardFileName(tt.key); got != tt.want {
			t.Errorf("ShardFileName(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestSplitSave(t *testing.T) {
	ctx := context.Background()
	layout, mockFS, mockLocks := newMockSplit()

	state := &State{Version: "1.0.0", Records: map[string]any{
		"TestA 1":   map[string]any{"tagName": "div"},
		"TestA b-c": "plain",
		"TestB 1":   []any{1.0, "two"},
	}}
	if err := layout.Save(ctx, state); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// K shards plus one index
	wantFiles := []string{
		"snaps/TestA1.json",
		"snaps/TestAbc.json",
		"snaps/TestB1.json",
		"snaps/index.json",
	}
	if diff := cmp.Diff(wantFiles, mockFS.Files()); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}

	index := readIndexFile(t, mockFS)
	wantIndex := Index{Version: "1.0.0", Snapshots: []string{"TestA1.json", "TestAbc.json", "TestB1.json"}}
	if diff := cmp.Diff(wantIndex, index); diff != "" {
		t.Errorf("index mismatch (-want +got):\n%s", diff)
	}

	shard, _ := mockFS.GetFileContent("snaps/TestAbc.json")
	var records map[string]any
	if err := json.Unmarshal(shard, &records); err != nil {
		t.Fatalf("invalid shard: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"TestA b-c": "plain"}, records); diff != "" {
		t.Errorf("shard mismatch (-want +got):\n%s", diff)
	}

	lock := mockLocks.GetLock("snaps/index.json.lock")
	if lock == nil || lock.LockAttempts != 1 || lock.IsLocked() {
		t.Errorf("expected one released lock acquisition, got %+v", lock)
	}

	loaded, err := layout.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(state, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitSaveEmpty(t *testing.T) {
	layout, mockFS, _ := newMockSplit()
	if err := layout.Save(context.Background(), &State{Version: "1.0.0", Records: map[string]any{}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	content, _ := mockFS.GetFileContent("snaps/index.json")
	want := "{\n  \"__version\": \"1.0.0\",\n  \"snapshots\": []\n}\n"
	if string(content) != want {
		t.Errorf("index = %q, want %q", content, want)
	}
}

func TestSplitSaveCollidingNames(t *testing.T) {
	ctx := context.Background()
	layout, mockFS, _ := newMockSplit()

	state := &State{Records: map[string]any{"a b 1": 1.0, "ab 1": 2.0, "a-b 1": 3.0}}
	if err := layout.Save(ctx, state); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	index := readIndexFile(t, mockFS)
	wantShards := []string{"ab1.json", "ab1_2.json", "ab1_3.json"}
	if diff := cmp.Diff(wantShards, index.Snapshots); diff != "" {
		t.Errorf("index mismatch (-want +got):\n%s", diff)
	}

	// one record per shard, in key order
	wantContent := map[string]string{
		"ab1.json":   "{\n  \"a b 1\": 1\n}\n",
		"ab1_2.json": "{\n  \"a-b 1\": 3\n}\n",
		"ab1_3.json": "{\n  \"ab 1\": 2\n}\n",
	}
	for name, want := range wantContent {
		content, ok := mockFS.GetFileContent("snaps/" + name)
		if !ok {
			t.Errorf("shard %s not written", name)
			continue
		}
		if string(content) != want {
			t.Errorf("shard %s = %q, want %q", name, content, want)
		}
	}
	if got := len(mockFS.Files()); got != len(state.Records)+1 {
		t.Errorf("wrote %d files, want %d: %v", got, len(state.Records)+1, mockFS.Files())
	}

	loaded, err := layout.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(state.Records, loaded.Records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitSuffixDoesNotShadowNaturalName(t *testing.T) {
	ctx := context.Background()
	layout, mockFS, _ := newMockSplit()

	// "ab1_2" sanitizes to the suffixed name of the second "ab1" collision
	state := &State{Records: map[string]any{"a b 1": "x", "ab 1": "y", "ab1_2": "z"}}
	if err := layout.Save(ctx, state); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	index := readIndexFile(t, mockFS)
	if len(index.Snapshots) != 3 {
		t.Fatalf("index lists %d shards, want 3: %v", len(index.Snapshots), index.Snapshots)
	}
	loaded, err := layout.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(state.Records, loaded.Records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitDirectoryMoves(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	dir := filepath.Join(root, "snaps")

	state := &State{Version: "1.0.0", Records: map[string]any{"TestA 1": "a", "TestB 1": []any{1.0}}}
	if err := NewSplit(dir).Save(ctx, state); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, IndexFile))
	if err != nil {
		t.Fatalf("index not written: %v", err)
	}
	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		t.Fatalf("invalid index: %v", err)
	}
	if diff := cmp.Diff([]string{"TestA1.json", "TestB1.json"}, index.Snapshots); diff != "" {
		t.Errorf("index entries should be bare file names (-want +got):\n%s", diff)
	}

	moved := filepath.Join(root, "moved")
	if err := os.Rename(dir, moved); err != nil {
		t.Fatalf("rename: %v", err)
	}
	layout := NewSplit(moved)
	loaded, err := layout.Load(ctx)
	if err != nil {
		t.Fatalf("Load() after move error = %v", err)
	}
	if diff := cmp.Diff(state, loaded); diff != "" {
		t.Errorf("state mismatch after move (-want +got):\n%s", diff)
	}

	// the lock file stays behind and is not mistaken for a shard
	if _, err := os.Stat(filepath.Join(moved, IndexFile+".lock")); err != nil {
		t.Errorf("expected the index lock file to remain: %v", err)
	}
	orphans, err := layout.OrphanedShards(ctx)
	if err != nil || len(orphans) != 0 {
		t.Errorf("OrphanedShards() = %v, %v; want none", orphans, err)
	}
}

func TestSplitLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("missing index is empty", func(t *testing.T) {
		layout, _, _ := newMockSplit()
		state, err := layout.Load(ctx)
		if err != nil || state.Len() != 0 {
			t.Errorf("Load() = %+v, %v; want empty state", state, err)
		}
	})

	t.Run("empty index is empty", func(t *testing.T) {
		layout, mockFS, _ := newMockSplit()
		_ = mockFS.WriteFile("snaps/index.json", []byte("  \n"), 0644)
		state, err := layout.Load(ctx)
		if err != nil || state.Len() != 0 {
			t.Errorf("Load() = %+v, %v; want empty state", state, err)
		}
	})

	t.Run("corrupt index", func(t *testing.T) {
		layout, mockFS, _ := newMockSplit()
		_ = mockFS.WriteFile("snaps/index.json", []byte("{not json"), 0644)
		if _, err := layout.Load(ctx); !errors.Is(err, ErrParse) {
			t.Errorf("Load() error = %v, want ErrParse", err)
		}
	})

	t.Run("later shards win", func(t *testing.T) {
		layout, mockFS, _ := newMockSplit()
		_ = mockFS.WriteFile("snaps/index.json", []byte(`{"__version":"2","snapshots":["one.json","two.json"]}`), 0644)
		_ = mockFS.WriteFile("snaps/one.json", []byte(`{"k 1": "first"}`), 0644)
		_ = mockFS.WriteFile("snaps/two.json", []byte(`{"k 1": "second"}`), 0644)

		state, err := layout.Load(ctx)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		want := &State{Version: "2", Records: map[string]any{"k 1": "second"}}
		if diff := cmp.Diff(want, state); diff != "" {
			t.Errorf("Load() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("entries relative to the working directory", func(t *testing.T) {
		layout, mockFS, _ := newMockSplit()
		_ = mockFS.WriteFile("snaps/index.json", []byte(`{"snapshots":["snaps/TestA1.json"]}`), 0644)
		_ = mockFS.WriteFile("snaps/TestA1.json", []byte(`{"TestA 1": true}`), 0644)

		state, err := layout.Load(ctx)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if diff := cmp.Diff(map[string]any{"TestA 1": true}, state.Records); diff != "" {
			t.Errorf("records mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing and corrupt shards are skipped", func(t *testing.T) {
		layout, mockFS, _ := newMockSplit()
		_ = mockFS.WriteFile("snaps/index.json", []byte(`{"snapshots":["Gone.json","Bad.json","Ok.json"]}`), 0644)
		_ = mockFS.WriteFile("snaps/Bad.json", []byte(`[`), 0644)
		_ = mockFS.WriteFile("snaps/Ok.json", []byte(`{"Ok 1": "kept"}`), 0644)

		state, err := layout.Load(ctx)
		var partial *PartialLoadError
		if !errors.As(err, &partial) {
			t.Fatalf("Load() error = %v, want *PartialLoadError", err)
		}
		if diff := cmp.Diff([]string{"Gone.json", "Bad.json"}, partial.Skipped); diff != "" {
			t.Errorf("skipped mismatch (-want +got):\n%s", diff)
		}
		if !errors.Is(err, fs.ErrNotExist) || !errors.Is(err, ErrParse) {
			t.Errorf("partial error should wrap each cause, got %v", err)
		}
		if diff := cmp.Diff(map[string]any{"Ok 1": "kept"}, state.Records); diff != "" {
			t.Errorf("records mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unreadable shard is skipped", func(t *testing.T) {
		layout, mockFS, _ := newMockSplit()
		_ = mockFS.WriteFile("snaps/index.json", []byte(`{"snapshots":["Locked.json"]}`), 0644)
		_ = mockFS.WriteFile("snaps/Locked.json", []byte(`{}`), 0644)
		mockFS.ReadFileErrors["snaps/Locked.json"] = fs.ErrPermission

		state, err := layout.Load(ctx)
		if !errors.Is(err, fs.ErrPermission) {
			t.Errorf("Load() error = %v, want permission error", err)
		}
		if state == nil || state.Len() != 0 {
			t.Errorf("expected empty state alongside the error, got %+v", state)
		}
	})
}

func TestSplitSaveErrors(t *testing.T) {
	ctx := context.Background()
	state := &State{Records: map[string]any{"a 1": 1.0}}

	t.Run("write failure", func(t *testing.T) {
		layout, mockFS, _ := newMockSplit()
		mockFS.WriteFileError = errors.New("disk full")

		if err := layout.Save(ctx, state); !errors.Is(err, mockFS.WriteFileError) {
			t.Errorf("Save() error = %v, want disk full", err)
		}
		if mockFS.FileExists("snaps/index.json") {
			t.Error("index written although a shard failed")
		}
	})

	t.Run("lock failure", func(t *testing.T) {
		layout, mockFS, mockLocks := newMockSplit()
		mockLocks.DefaultLockError = errors.New("locked elsewhere")

		if err := layout.Save(ctx, state); !errors.Is(err, mockLocks.DefaultLockError) {
			t.Errorf("Save() error = %v, want lock error", err)
		}
		if mockFS.Writes != 0 {
			t.Errorf("expected no writes, got %d", mockFS.Writes)
		}
	})
}

func TestSplitOrphanedShards(t *testing.T) {
	ctx := context.Background()

	t.Run("no directory", func(t *testing.T) {
		layout, _, _ := newMockSplit()
		orphans, err := layout.OrphanedShards(ctx)
		if err != nil || len(orphans) != 0 {
			t.Errorf("OrphanedShards() = %v, %v; want none", orphans, err)
		}
	})

	t.Run("lists unreferenced shards only", func(t *testing.T) {
		layout, mockFS, _ := newMockSplit()
		if err := layout.Save(ctx, &State{Records: map[string]any{"TestA 1": 1.0}}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		_ = mockFS.WriteFile("snaps/TestOld1.json", []byte(`{}`), 0644)
		_ = mockFS.WriteFile("snaps/Another1.json", []byte(`{}`), 0644)
		_ = mockFS.WriteFile("snaps/notes.txt", []byte(`keep`), 0644)
		_ = mockFS.WriteFile("snaps/index.json.lock", nil, 0644)
		_ = mockFS.WriteFile("snaps/TestA1.json.tmp", nil, 0644)
		_ = mockFS.WriteFile("snaps/.hidden.json", nil, 0644)

		orphans, err := layout.OrphanedShards(ctx)
		if err != nil {
			t.Fatalf("OrphanedShards() error = %v", err)
		}
		if diff := cmp.Diff([]string{"Another1.json", "TestOld1.json"}, orphans); diff != "" {
			t.Errorf("orphans mismatch (-want +got):\n%s", diff)
		}

		for _, name := range orphans {
			if err := layout.RemoveShard(name); err != nil {
				t.Fatalf("RemoveShard(%q) error = %v", name, err)
			}
		}
		orphans, _ = layout.OrphanedShards(ctx)
		if len(orphans) != 0 {
			t.Errorf("orphans left after removal: %v", orphans)
		}
	})

	t.Run("remove refuses non-shard names", func(t *testing.T) {
		layout, _, _ := newMockSplit()
		for _, name := range []string{"index.json", "../x.json", "notes.txt"} {
			if err := layout.RemoveShard(name); err == nil {
				t.Errorf("RemoveShard(%q) succeeded", name)
			}
		}
	})
}
