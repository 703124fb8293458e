// Package serialize normalizes captured values into their canonical, comparable form.
//
// A captured value is either Plain data, which is stored as-is, or an Element:
// a structured UI fragment that cannot be stored directly. Elements have two
// renderings. ModeDefault renders HTML markup for the monolithic snapshot
// document, ModeJSON renders a DOM-like tree of maps and slices that survives
// a trip through encoding/json unchanged.
package serialize

import (
	"golang.org/x/net/html"
)

// Mode selects the rendering used for elements
type Mode int

const (
	// ModeDefault renders elements to HTML markup
	ModeDefault Mode = iota

	// ModeJSON renders elements to a JSON-safe DOM tree
	ModeJSON
)

// ModeFor returns ModeJSON when asJSON is set, ModeDefault otherwise
func ModeFor(asJSON bool) Mode {
	if asJSON {
		return ModeJSON
	}
	return ModeDefault
}

// String returns the string representation of the Mode
func (m Mode) String() string {
	switch m {
	case ModeJSON:
		return "json"
	default:
		return "default"
	}
}

// Value is a captured value. The set of implementations is closed:
// Plain and Element.
type Value interface {
	captured()
}

// Plain wraps data that is stored and compared as-is
type Plain struct {
	V any
}

func (Plain) captured()   {}
func (Element) captured() {}

// Classify wraps a raw captured value in the matching Value variant.
// Elements and html nodes become Element, everything else is Plain.
func Classify(v any) Value {
	switch x := v.(type) {
	case *Element:
		if x == nil {
			return Plain{V: nil}
		}
		return *x
	case *Plain:
		if x == nil {
			return Plain{V: nil}
		}
		return *x
	case Value:
		return x
	case *html.Node:
		if x == nil {
			return Plain{V: nil}
		}
		return NewElement(x)
	case []*html.Node:
		return NewElement(x...)
	default:
		return Plain{V: v}
	}
}

// Serialize returns the canonical form of v for the given mode.
// Repeated calls on an unchanged value return identical output.
func Serialize(v Value, mode Mode) any {
	switch x := v.(type) {
	case Plain:
		return x.V
	case Element:
		if mode == ModeJSON {
			return x.DOM()
		}
		return x.HTML()
	default:
		return v
	}
}

// Canonical classifies and serializes a raw value in one step
func Canonical(v any, mode Mode) any {
	return Serialize(Classify(v), mode)
}
