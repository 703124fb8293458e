package store

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeDocumentLiteral(t *testing.T) {
	src := `// snapshots recorded by hand
'use strict';
module.exports = {
  __version: '1.0.0',
  'TestA 1': '<div>hi</div>',
  "TestA 2": {
    tagName: 'div',
    childNodes: [1, -2.5, +3, true, null, undefined, ` + "`x`" + `,],
  },
  10: false,
};
`
	want := &State{
		Version: "1.0.0",
		Records: map[string]any{
			"TestA 1": "<div>hi</div>",
			"TestA 2": map[string]any{
				"tagName":    "div",
				"childNodes": []any{1.0, -2.5, 3.0, true, nil, nil, "x"},
			},
			"10": false,
		},
	}

	got, err := DecodeDocument([]byte(src))
	if err != nil {
		t.Fatalf("DecodeDocument() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DecodeDocument() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeDocumentRejectsCode(t *testing.T) {
	tests := map[string]string{
		"call":             "module.exports = { a: run() }",
		"other target":     "exports.a = 1",
		"side effect":      "process.exit(1)",
		"function":         "module.exports = { a: function() { return 1 } }",
		"substitution":     "module.exports = { a: `${x}` }",
		"computed key":     "module.exports = { [k]: 1 }",
		"declaration":      "var x = 1; module.exports = { a: x }",
		"negated string":   "module.exports = { a: -'1' }",
		"compound assign":  "module.exports += 1",
		"syntax error":     "module.exports = {{",
		"shorthand getter": "module.exports = { get a() { return 1 } }",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeDocument([]byte(src))
			if !errors.Is(err, ErrParse) {
				t.Errorf("DecodeDocument(%q) error = %v, want ErrParse", src, err)
			}
		})
	}
}

func TestDecodeDocumentNoAssignment(t *testing.T) {
	got, err := DecodeDocument([]byte("// nothing recorded yet\n"))
	if err != nil {
		t.Fatalf("DecodeDocument() error = %v", err)
	}
	if got.Len() != 0 {
		t.Errorf("expected empty state, got %d records", got.Len())
	}
}
