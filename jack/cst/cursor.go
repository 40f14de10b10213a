package cst

import (
	"errors"
	"fmt"
)

// ErrNavigation matches every *NavigationError.
var ErrNavigation = errors.New("invalid cursor movement")

// NavigationError reports a cursor movement that would leave the tree.
type NavigationError struct {
	Op   string // movement attempted
	Kind string // kind of the node the cursor stayed on
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("cursor: %s from %s: %v", e.Op, e.Kind, ErrNavigation)
}

func (e *NavigationError) Is(target error) bool {
	return target == ErrNavigation
}

type cursorFrame struct {
	node  *Node
	index int // position among the parent's children
}

// Cursor walks a tree without parent pointers by keeping the path from
// the root to the current node. A failed movement leaves it in place.
type Cursor struct {
	root  *Node
	stack []cursorFrame
}

func NewCursor(root *Node) *Cursor {
	c := &Cursor{root: root}
	c.Reset()
	return c
}

// Reset moves the cursor back to the root.
func (c *Cursor) Reset() {
	c.stack = append(c.stack[:0], cursorFrame{node: c.root, index: -1})
}

func (c *Cursor) top() cursorFrame {
	return c.stack[len(c.stack)-1]
}

func (c *Cursor) Node() *Node {
	return c.top().node
}

func (c *Cursor) FieldName() string {
	return c.top().node.field
}

// Depth is 0 at the root.
func (c *Cursor) Depth() int {
	return len(c.stack) - 1
}

func (c *Cursor) fail(op string) error {
	return &NavigationError{Op: op, Kind: c.Node().kind}
}

func (c *Cursor) FirstChild() error {
	n := c.Node()
	if len(n.children) == 0 {
		return c.fail("first child")
	}
	c.stack = append(c.stack, cursorFrame{node: n.children[0], index: 0})
	return nil
}

func (c *Cursor) Parent() error {
	if len(c.stack) == 1 {
		return c.fail("parent")
	}
	c.stack = c.stack[:len(c.stack)-1]
	return nil
}

func (c *Cursor) NextSibling() error {
	return c.sibling("next sibling", 1)
}

func (c *Cursor) PrevSibling() error {
	return c.sibling("previous sibling", -1)
}

func (c *Cursor) sibling(op string, delta int) error {
	if len(c.stack) == 1 {
		return c.fail(op)
	}
	parent := c.stack[len(c.stack)-2].node
	i := c.top().index + delta
	if i < 0 || i >= len(parent.children) {
		return c.fail(op)
	}
	c.stack[len(c.stack)-1] = cursorFrame{node: parent.children[i], index: i}
	return nil
}
