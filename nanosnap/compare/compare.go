// Package compare decides whether a recomputed value still matches its baseline.
//
// Both values are normalized through a JSON round trip before comparison so a
// Go struct captured in this run compares equal to the map it was stored as.
// The diff itself is produced by go-cmp.
package compare

import (
	"encoding/json"
	"reflect"

	"github.com/google/go-cmp/cmp"
)

// Result is the outcome of a comparison: a match, or a mismatch with a diff
type Result struct {
	Match bool
	// Diff describes the difference as "-expected +value" lines.
	// Empty when Match is true.
	Diff string
}

// Matched returns a matching Result
func Matched() Result {
	return Result{Match: true}
}

// Mismatch returns a mismatching Result carrying the diff
func Mismatch(diff string) Result {
	return Result{Diff: diff}
}

// Compare compares a stored baseline with a newly serialized value
func Compare(expected, value any) Result {
	exp := Normalize(expected)
	got := Normalize(value)

	diff := cmp.Diff(exp, got, cmp.Exporter(func(reflect.Type) bool { return true }))
	if diff == "" {
		return Matched()
	}
	return Mismatch(diff)
}

// Normalize converts v to the shape encoding/json decodes it into:
// map[string]any, []any, string, float64, bool or nil.
// Values that cannot be marshalled are returned unchanged.
func Normalize(v any) any {
	out, err := Detach(v)
	if err != nil {
		return v
	}
	return out
}

// Detach returns a fresh copy of v in the shape encoding/json decodes it
// into. The copy shares no memory with v, so later changes to v do not
// reach it. Values encoding/json rejects (NaN, infinities, funcs,
// channels) fail here rather than when the snapshots are written.
func Detach(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
