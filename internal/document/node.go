// Package document provides helpers for working with OpenAPI documents held
// as yaml.v3 node trees. Node trees keep the source key order, accept both
// YAML and JSON input, and carry line information for diagnostics.
package document

import (
	"iter"

	"gopkg.in/yaml.v3"
)

// Root unwraps a DocumentNode and resolves aliases, returning the top-level
// content node. It returns nil for an empty document.
func Root(n *yaml.Node) *yaml.Node {
	n = Deref(n)
	if n == nil {
		return nil
	}
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return nil
		}
		return Deref(n.Content[0])
	}
	return n
}

// Deref follows alias nodes to the anchored node they point at.
func Deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// IsMapping reports whether n is a mapping node.
func IsMapping(n *yaml.Node) bool {
	n = Deref(n)
	return n != nil && n.Kind == yaml.MappingNode
}

// IsSequence reports whether n is a sequence node.
func IsSequence(n *yaml.Node) bool {
	n = Deref(n)
	return n != nil && n.Kind == yaml.SequenceNode
}

// Lookup returns the value stored under key in mapping node n, or nil when n
// is not a mapping or the key is absent.
func Lookup(n *yaml.Node, key string) *yaml.Node {
	n = Deref(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return Deref(n.Content[i+1])
		}
	}
	return nil
}

// Has reports whether mapping node n contains key.
func Has(n *yaml.Node, key string) bool {
	n = Deref(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return true
		}
	}
	return false
}

// String returns the scalar value under key, or "" when missing or not a scalar.
func String(n *yaml.Node, key string) string {
	v := Lookup(n, key)
	if v == nil || v.Kind != yaml.ScalarNode {
		return ""
	}
	return v.Value
}

// Strings returns the scalar items of the sequence stored under key.
func Strings(n *yaml.Node, key string) []string {
	v := Lookup(n, key)
	if v == nil || v.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]string, 0, len(v.Content))
	for _, item := range v.Content {
		item = Deref(item)
		if item != nil && item.Kind == yaml.ScalarNode {
			out = append(out, item.Value)
		}
	}
	return out
}

// Pairs iterates over the key/value pairs of a mapping node in source order.
// Values are alias-resolved.
func Pairs(n *yaml.Node) iter.Seq2[string, *yaml.Node] {
	return func(yield func(string, *yaml.Node) bool) {
		n = Deref(n)
		if n == nil || n.Kind != yaml.MappingNode {
			return
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			if !yield(n.Content[i].Value, Deref(n.Content[i+1])) {
				return
			}
		}
	}
}

// Items iterates over the elements of a sequence node.
func Items(n *yaml.Node) iter.Seq2[int, *yaml.Node] {
	return func(yield func(int, *yaml.Node) bool) {
		n = Deref(n)
		if n == nil || n.Kind != yaml.SequenceNode {
			return
		}
		for i, item := range n.Content {
			if !yield(i, Deref(item)) {
				return
			}
		}
	}
}

// Keys returns the keys of a mapping node in source order.
func Keys(n *yaml.Node) []string {
	var keys []string
	for k := range Pairs(n) {
		keys = append(keys, k)
	}
	return keys
}

// NewMapping returns an empty block-style mapping node.
func NewMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

// NewSequence returns an empty block-style sequence node.
func NewSequence() *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
}

// NewString returns a string scalar node.
func NewString(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// Append adds key/value to the end of mapping node m.
func Append(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, NewString(key), value)
}

// Clone returns a deep copy of n. Aliases are expanded and anchors dropped so
// that a copied subtree never depends on an anchor defined outside of it.
func Clone(n *yaml.Node) *yaml.Node {
	n = Deref(n)
	if n == nil {
		return nil
	}
	out := *n
	out.Anchor = ""
	out.Alias = nil
	if len(n.Content) > 0 {
		out.Content = make([]*yaml.Node, len(n.Content))
		for i, c := range n.Content {
			out.Content[i] = Clone(c)
		}
	}
	return &out
}

// Block returns a deep copy of n with flow style cleared, so that documents
// read from JSON serialize as block YAML.
func Block(n *yaml.Node) *yaml.Node {
	out := Clone(n)
	clearFlow(out)
	return out
}

func clearFlow(n *yaml.Node) {
	if n == nil {
		return
	}
	n.Style &^= yaml.FlowStyle
	for _, c := range n.Content {
		clearFlow(c)
	}
}
