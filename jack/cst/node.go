// Package cst holds the concrete syntax tree produced by the parser, the
// builder the parser uses to assemble it, and a cursor for walking it.
//
// Nodes are immutable once the builder has finished them. Every byte of
// the input belongs to the span of the root, and children are ordered by
// position and never overlap.
package cst

import (
	"iter"

	"github.com/jreyes33/jackparse/jack/token"
)

// ErrorKind is the kind of nodes holding input the parser had to skip.
const ErrorKind = "ERROR"

type Node struct {
	kind     string
	field    string
	span     token.Span
	children []*Node
	tok      *token.Token
	named    bool
	missing  bool
}

func (n *Node) Kind() string {
	return n.kind
}

// Field is the name the parent gives this child, or "".
func (n *Node) Field() string {
	return n.field
}

func (n *Node) Span() token.Span {
	return n.span
}

// IsNamed reports whether the node stands for a rule or a named token
// class rather than a fixed keyword or symbol.
func (n *Node) IsNamed() bool {
	return n.named
}

func (n *Node) IsError() bool {
	return n.kind == ErrorKind
}

// IsMissing reports whether the node was inserted by error recovery in
// place of something the input lacked. Missing nodes are zero-width.
func (n *Node) IsMissing() bool {
	return n.missing
}

// HasError reports whether the node or any descendant is an error or
// missing node.
func (n *Node) HasError() bool {
	if n.IsError() || n.missing {
		return true
	}
	for _, child := range n.children {
		if child.HasError() {
			return true
		}
	}
	return false
}

func (n *Node) IsLeaf() bool {
	return n.tok != nil
}

// Token returns the token of a leaf, or nil.
func (n *Node) Token() *token.Token {
	return n.tok
}

// Text returns the literal of a leaf, or "".
func (n *Node) Text() string {
	if n.tok != nil {
		return n.tok.Literal
	}
	return ""
}

func (n *Node) ChildCount() int {
	return len(n.children)
}

// Child returns the i-th child, or nil when i is out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

func (n *Node) Children() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, child := range n.children {
			if !yield(child) {
				return
			}
		}
	}
}

func (n *Node) NamedChildren() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, child := range n.children {
			if child.named && !yield(child) {
				return
			}
		}
	}
}

// ChildByField returns the first child with the given field name.
func (n *Node) ChildByField(name string) *Node {
	for _, child := range n.children {
		if child.field == name {
			return child
		}
	}
	return nil
}

func (n *Node) FirstChildOfKind(kind string) *Node {
	for _, child := range n.children {
		if child.kind == kind {
			return child
		}
	}
	return nil
}

func (n *Node) ChildrenOfKind(kind string) []*Node {
	var result []*Node
	for _, child := range n.children {
		if child.kind == kind {
			result = append(result, child)
		}
	}
	return result
}

// Walk yields n and its descendants in pre-order.
func (n *Node) Walk() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		n.walk(yield)
	}
}

func (n *Node) walk(yield func(*Node) bool) bool {
	if !yield(n) {
		return false
	}
	for _, child := range n.children {
		if !child.walk(yield) {
			return false
		}
	}
	return true
}
