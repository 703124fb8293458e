package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/arthur-debert/nanosnap/types"
	"github.com/google/go-cmp/cmp"
)

func TestStore(t *testing.T) {
	key := types.NewKey(types.Identity{"TestLogin"}, "1")

	t.Run("new copies its input", func(t *testing.T) {
		records := map[string]any{"TestLogin 1": "a"}
		s := New(records)
		records["TestLogin 1"] = "changed"

		got, ok := s.Get(key)
		if !ok || got != "a" {
			t.Errorf("Get() = %v, %v; want a, true", got, ok)
		}
	})

	t.Run("get on empty store", func(t *testing.T) {
		s := New(nil)
		if _, ok := s.Get(key); ok {
			t.Error("expected no record in an empty store")
		}
		if s.Len() != 0 {
			t.Errorf("Len() = %d, want 0", s.Len())
		}
	})

	t.Run("put inserts and overwrites", func(t *testing.T) {
		s := New(nil)
		s.Put(key, 1)
		s.Put(key, 2)

		got, _ := s.Get(key)
		if got != 2 {
			t.Errorf("Get() = %v, want 2", got)
		}
		if s.Len() != 1 {
			t.Errorf("Len() = %d, want 1", s.Len())
		}
	})

	t.Run("keys are sorted", func(t *testing.T) {
		s := New(map[string]any{"b": 1, "a": 2, "c": 3})
		if diff := cmp.Diff([]string{"a", "b", "c"}, s.Keys()); diff != "" {
			t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("from nil state", func(t *testing.T) {
		if FromState(nil).Len() != 0 {
			t.Error("expected empty store")
		}
	})
}

func TestStoreFinalize(t *testing.T) {
	loaded := &State{Version: "0.9.0", Records: map[string]any{
		"TestA 1": "<div></div>",
		"TestA 2": map[string]any{"tagName": "div"},
	}}
	s := FromState(loaded)

	state := s.Finalize("1.0.0")
	if state.Version != "1.0.0" {
		t.Errorf("Version = %q, want 1.0.0", state.Version)
	}
	if diff := cmp.Diff(loaded.Records, state.Records); diff != "" {
		t.Errorf("finalize without put changed records (-want +got):\n%s", diff)
	}

	// the finalized state is detached from the store
	s.Put(types.Key{"TestA", "3"}, true)
	if state.Len() != 2 {
		t.Errorf("finalized state grew to %d records", state.Len())
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := New(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := types.NewKey(types.Identity{"TestParallel"}, fmt.Sprint(i))
			s.Put(key, i)
			if _, ok := s.Get(key); !ok {
				t.Errorf("record %d missing after put", i)
			}
		}(i)
	}
	wg.Wait()

	if s.Len() != 20 {
		t.Errorf("Len() = %d, want 20", s.Len())
	}
}

func TestStateNilSafe(t *testing.T) {
	var s *State
	if s.Len() != 0 || s.Keys() != nil {
		t.Error("nil state should be empty")
	}
}

func TestNewLayout(t *testing.T) {
	if _, ok := NewLayout(types.FormatJSON, "snaps").(*Split); !ok {
		t.Error("json format should select the split layout")
	}
	for _, f := range []types.Format{types.FormatDefault, types.FormatJS} {
		if _, ok := NewLayout(f, "snaps").(*Monolithic); !ok {
			t.Errorf("format %q should select the monolithic layout", f)
		}
	}
}
