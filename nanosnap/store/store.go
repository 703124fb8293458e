// Package store holds snapshot baselines in memory and persists them.
//
// A Store is the in-memory map from joined snapshot keys to canonical values.
// It is filled once from a Layout at the start of a run, read and extended
// while tests execute, and handed back to the Layout as a State at the end.
//
// Two layouts exist:
//   - Monolithic writes every record into one generated document, snapshots.js
//   - Split writes index.json plus one small JSON shard file per record
//
// Both present the same contract, so callers never care which one is active.
//
// Loads and saves hold a flock lock on a sibling file named after the
// document or index (snapshots.js.lock, index.json.lock). Lock files stay in
// the snapshot directory after the run; removing them while another process
// may hold them would break the lock, so ignore them in version control:
//
//	__snapshots__/*.lock
package store

import (
	"sort"

	"github.com/arthur-debert/nanosnap/types"
)

// VersionField is the reserved document field holding the version stamp
const VersionField = "__version"

// State is the full set of records of a run plus the version stamp.
// Loaded states carry the version found on disk; finalized states carry
// the version of the tool that produced them.
type State struct {
	Version string
	Records map[string]any
}

// NewState creates an empty state
func NewState() *State {
	return &State{Records: make(map[string]any)}
}

// Len returns the number of records
func (s *State) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// Keys returns the record keys in sorted order
func (s *State) Keys() []string {
	if s == nil {
		return nil
	}
	return sortedKeys(s.Records)
}

// Store is the in-memory snapshot repository of one run
type Store struct {
	lm      lockManager
	records map[string]any
}

// New creates a store seeded with a copy of records, which may be nil
func New(records map[string]any) *Store {
	s := &Store{records: make(map[string]any, len(records))}
	for k, v := range records {
		s.records[k] = v
	}
	return s
}

// FromState creates a store seeded with the records of a loaded state
func FromState(state *State) *Store {
	if state == nil {
		return New(nil)
	}
	return New(state.Records)
}

// Get returns the baseline stored under key
func (s *Store) Get(key types.Key) (any, bool) {
	var (
		v  any
		ok bool
	)
	s.lm.execute(readOperation, func() {
		v, ok = s.records[key.String()]
	})
	return v, ok
}

// Put inserts or overwrites the value stored under key
func (s *Store) Put(key types.Key, value any) {
	s.lm.execute(writeOperation, func() {
		s.records[key.String()] = value
	})
}

// Len returns the number of records
func (s *Store) Len() int {
	var n int
	s.lm.execute(readOperation, func() {
		n = len(s.records)
	})
	return n
}

// Keys returns the record keys in sorted order
func (s *Store) Keys() []string {
	var keys []string
	s.lm.execute(readOperation, func() {
		keys = sortedKeys(s.records)
	})
	return keys
}

// Finalize returns a copy of the records stamped with version.
// This is the only place a version stamp is attached.
func (s *Store) Finalize(version string) *State {
	state := &State{Version: version}
	s.lm.execute(readOperation, func() {
		state.Records = make(map[string]any, len(s.records))
		for k, v := range s.records {
			state.Records[k] = v
		}
	})
	return state
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
