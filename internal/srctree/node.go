// Package srctree defines the concrete-syntax-tree contract consumed by the
// model builder and the providers that produce it.
//
// Trees use the tag vocabulary of the tree-sitter C++ grammar
// (translation_unit, declaration, field_declaration, struct_specifier, ...).
// Anonymous tokens ("{", "}", ";", "...") appear as nodes whose Tag equals
// their text. Nodes the producer had to invent to recover from a syntax error
// are tagged MISSING; unparsable regions are tagged ERROR.
package srctree

import (
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"

	"pyglue-generator/internal/common"
)

// Special tags.
const (
	TagError   = "ERROR"
	TagMissing = "MISSING"
)

// Node is one element of the syntax tree.
type Node struct {
	Tag      string          `json:"tag"`
	Text     string          `json:"text,omitempty"`
	Start    common.Position `json:"start"`
	End      common.Position `json:"end"`
	Children []*Node         `json:"children,omitempty"`
}

// Span returns the node's source range.
func (n *Node) Span() common.Span {
	return common.Span{Start: n.Start, End: n.End}
}

// Is reports whether the node carries one of the given tags.
func (n *Node) Is(tags ...string) bool {
	if n == nil {
		return false
	}

	for _, t := range tags {
		if n.Tag == t {
			return true
		}
	}

	return false
}

// Child returns the first direct child with one of the given tags, or nil.
func (n *Node) Child(tags ...string) *Node {
	if n == nil {
		return nil
	}

	for _, c := range n.Children {
		if c.Is(tags...) {
			return c
		}
	}

	return nil
}

// ChildrenOf returns every direct child with one of the given tags.
func (n *Node) ChildrenOf(tags ...string) []*Node {
	if n == nil {
		return nil
	}

	var out []*Node

	for _, c := range n.Children {
		if c.Is(tags...) {
			out = append(out, c)
		}
	}

	return out
}

// Find returns the first node in pre-order (including n) with one of the tags.
func (n *Node) Find(tags ...string) *Node {
	if n == nil {
		return nil
	}

	if n.Is(tags...) {
		return n
	}

	for _, c := range n.Children {
		if found := c.Find(tags...); found != nil {
			return found
		}
	}

	return nil
}

// HasDefect reports whether the subtree contains an ERROR or MISSING node.
func (n *Node) HasDefect() bool {
	return n.Find(TagError, TagMissing) != nil
}

// Decode reads a JSON encoded tree.
func Decode(r io.Reader) (*Node, error) {
	var root Node

	dec := json.NewDecoder(r)
	if err := dec.Decode(&root); err != nil {
		return nil, errors.Wrap(err, "decoding syntax tree")
	}

	if root.Tag == "" {
		return nil, errors.New("decoding syntax tree: root node has no tag")
	}

	return &root, nil
}
