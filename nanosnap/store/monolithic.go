package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// DocumentFile is the monolithic snapshot document inside the snapshot directory
	DocumentFile = "snapshots.js"

	exportsSymbol = "module.exports"
)

// Monolithic persists every record in one generated document:
//
//	module.exports = {
//	  "__version": "1.2.0",
//	  "TestLogin form 1": "<form>...</form>"
//	}
//
// The document is decoded as data, never evaluated.
type Monolithic struct {
	base
}

// NewMonolithic creates a monolithic layout rooted at dir
func NewMonolithic(dir string, opts ...Option) *Monolithic {
	return &Monolithic{base: newBase(dir, opts)}
}

// Name implements Layout.Name
func (m *Monolithic) Name() string {
	return "monolithic"
}

// Path implements Layout.Path
func (m *Monolithic) Path() string {
	return filepath.Join(m.dir, DocumentFile)
}

// Load implements Layout.Load
func (m *Monolithic) Load(ctx context.Context) (*State, error) {
	path := m.Path()

	// Check if file exists; a first run has no document yet
	ok, err := m.exists(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !ok {
		return NewState(), nil
	}

	var state *State
	err = withLock(ctx, m.lockFor(path), func() error {
		data, found, err := m.readExisting(path)
		if err != nil {
			return err
		}
		if !found {
			state = NewState()
			return nil
		}
		state, err = DecodeDocument(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// Save implements Layout.Save
func (m *Monolithic) Save(ctx context.Context, state *State) error {
	data, err := EncodeDocument(state)
	if err != nil {
		return err
	}
	if err := m.ensureDir(); err != nil {
		return err
	}

	path := m.Path()
	return withLock(ctx, m.lockFor(path), func() error {
		return m.writeAtomic(path, data)
	})
}

// EncodeDocument renders a state as a monolithic snapshot document.
// Keys are sorted, so equal states encode to identical bytes.
func EncodeDocument(state *State) ([]byte, error) {
	doc := make(map[string]any, state.Len()+1)
	if state != nil {
		for k, v := range state.Records {
			doc[k] = v
		}
		doc[VersionField] = state.Version
	}

	data, err := marshalJSON(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshots: %w", err)
	}
	return append([]byte(exportsSymbol+" = "), data...), nil
}

// DecodeDocument parses a monolithic snapshot document.
// An empty document, or one exporting null or undefined, holds no snapshots.
// Documents that are not strict JSON after the export assignment are read
// with a JavaScript parser that accepts literal values only.
func DecodeDocument(data []byte) (*State, error) {
	text := strings.TrimSpace(strings.TrimPrefix(string(data), "\ufeff"))
	if text == "" {
		return NewState(), nil
	}

	raw, err := decodeExportedJSON(text)
	if err != nil {
		raw, err = parseLiteralDocument(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
	}
	return stateFromDocument(raw)
}

// decodeExportedJSON handles the format this package writes:
// an optional "module.exports =" followed by a JSON value
func decodeExportedJSON(text string) (any, error) {
	body := text
	if rest, ok := strings.CutPrefix(body, exportsSymbol); ok {
		rest = strings.TrimSpace(rest)
		if !strings.HasPrefix(rest, "=") {
			return nil, errors.New("expected assignment to " + exportsSymbol)
		}
		body = strings.TrimSpace(rest[1:])
	}
	body = strings.TrimSpace(strings.TrimSuffix(body, ";"))
	if body == "undefined" {
		return nil, nil
	}

	var raw any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func stateFromDocument(raw any) (*State, error) {
	state := NewState()
	if raw == nil {
		return state, nil
	}
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an object, got %T", ErrParse, raw)
	}

	for k, v := range doc {
		if k == VersionField {
			if s, ok := v.(string); ok {
				state.Version = s
			} else if v != nil {
				state.Version = fmt.Sprint(v)
			}
			continue
		}
		state.Records[k] = v
	}
	return state, nil
}
