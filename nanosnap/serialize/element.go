package serialize

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is a structured UI fragment: one or more html node trees
type Element struct {
	nodes []*html.Node
}

// NewElement wraps already parsed nodes. Nil nodes are dropped.
func NewElement(nodes ...*html.Node) Element {
	kept := make([]*html.Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			kept = append(kept, n)
		}
	}
	return Element{nodes: kept}
}

// ParseElement parses markup as the content of a <body> element
func ParseElement(markup string) (Element, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return Element{}, fmt.Errorf("failed to parse element markup: %w", err)
	}
	return NewElement(nodes...), nil
}

// MustParseElement is like ParseElement but panics on error
func MustParseElement(markup string) Element {
	el, err := ParseElement(markup)
	if err != nil {
		panic(err)
	}
	return el
}

// Nodes returns the root nodes of the element
func (e Element) Nodes() []*html.Node {
	return e.nodes
}

// Len returns the number of root nodes
func (e Element) Len() int {
	return len(e.nodes)
}

// HTML renders the element to markup, root nodes concatenated in order
func (e Element) HTML() string {
	var buf bytes.Buffer
	for _, n := range e.nodes {
		// Render only fails when the writer fails; bytes.Buffer does not.
		_ = html.Render(&buf, n)
	}
	return buf.String()
}

// DOM renders the element to a tree of map[string]any, []any and string.
// A single root renders to its map, several roots to a slice.
func (e Element) DOM() any {
	if len(e.nodes) == 1 {
		if m := domNode(e.nodes[0]); m != nil {
			return m
		}
	}
	roots := make([]any, 0, len(e.nodes))
	for _, n := range e.nodes {
		if m := domNode(n); m != nil {
			roots = append(roots, m)
		}
	}
	return roots
}

// domNode renders one node. Whitespace-only text nodes render to nil
// so that markup indentation does not show up in the snapshot.
func domNode(n *html.Node) map[string]any {
	switch n.Type {
	case html.ElementNode:
		m := map[string]any{"tagName": strings.ToLower(n.Data)}
		if len(n.Attr) > 0 {
			attrs := make(map[string]any, len(n.Attr))
			for _, a := range n.Attr {
				name := a.Key
				if a.Namespace != "" {
					name = a.Namespace + ":" + a.Key
				}
				attrs[name] = a.Val
			}
			m["attributes"] = attrs
		}
		if children := domChildren(n); len(children) > 0 {
			m["childNodes"] = children
		}
		return m
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return nil
		}
		return map[string]any{"nodeName": "#text", "nodeValue": n.Data}
	case html.CommentNode:
		return map[string]any{"nodeName": "#comment", "nodeValue": n.Data}
	case html.DoctypeNode:
		return map[string]any{"nodeName": "#doctype", "nodeValue": n.Data}
	case html.DocumentNode:
		m := map[string]any{"nodeName": "#document"}
		if children := domChildren(n); len(children) > 0 {
			m["childNodes"] = children
		}
		return m
	default:
		return nil
	}
}

func domChildren(n *html.Node) []any {
	var children []any
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if m := domNode(c); m != nil {
			children = append(children, m)
		}
	}
	return children
}
