package testutil

import (
	"errors"
	"testing"

	"github.com/arthur-debert/nanosnap/nanosnap"
	"github.com/arthur-debert/nanosnap/nanosnap/store"
	"github.com/google/go-cmp/cmp"
)

// AssertSnapshotCount checks that the state holds the expected number of records
func AssertSnapshotCount(t testing.TB, state *store.State, expected int, context ...string) {
	t.Helper()
	if state.Len() != expected {
		ctx := ""
		if len(context) > 0 {
			ctx = " " + context[0]
		}
		t.Errorf("expected %d snapshots%s, got %d", expected, ctx, state.Len())
	}
}

// AssertRecord verifies that key is stored with the expected value
func AssertRecord(t testing.TB, state *store.State, key string, expected any) {
	t.Helper()
	if state == nil {
		t.Errorf("record %q: state is nil", key)
		return
	}
	got, ok := state.Records[key]
	if !ok {
		t.Errorf("record %q not found", key)
		return
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("record %q mismatch (-want +got):\n%s", key, diff)
	}
}

// AssertNoRecord verifies that key is not stored
func AssertNoRecord(t testing.TB, state *store.State, key string) {
	t.Helper()
	if _, ok := state.Records[key]; ok {
		t.Errorf("record %q should not be stored", key)
	}
}

// AssertMismatch verifies that err reports a snapshot difference at key
func AssertMismatch(t testing.TB, err error, key string) *nanosnap.MismatchError {
	t.Helper()
	var mismatch *nanosnap.MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected *MismatchError, got %v", err)
	}
	if mismatch.Key != key {
		t.Errorf("mismatch key = %q, want %q", mismatch.Key, key)
	}
	if mismatch.Diff == "" {
		t.Error("mismatch diff should not be empty")
	}
	return mismatch
}

// AssertReloads loads layout and checks it reproduces want exactly
func AssertReloads(t testing.TB, layout store.Layout, want *store.State) {
	t.Helper()
	got, err := layout.Load(t.Context())
	if err != nil {
		t.Fatalf("reload %s: %v", layout.Name(), err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("reloaded %s state mismatch (-want +got):\n%s", layout.Name(), diff)
	}
}
