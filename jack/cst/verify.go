package cst

import (
	"errors"
	"fmt"
)

var ErrSpan = errors.New("inconsistent span")

// Verify checks the span invariants of the tree under root: every span is
// well formed, children lie within their parent, and siblings are ordered
// without overlap. Zero-width siblings may share a position.
func Verify(root *Node) error {
	return verify(root, "")
}

func verify(n *Node, path string) error {
	path += "/" + n.kind
	s := n.span
	if s.End.Offset < s.Start.Offset {
		return fmt.Errorf("%w: %s ends before it starts (%s)", ErrSpan, path, s)
	}
	if n.tok != nil && s.Len() != len(n.tok.Literal) {
		return fmt.Errorf("%w: %s covers %d bytes but holds %q", ErrSpan, path, s.Len(), n.tok.Literal)
	}
	if n.missing && !s.IsEmpty() {
		return fmt.Errorf("%w: missing node %s is not zero-width", ErrSpan, path)
	}
	for i, child := range n.children {
		if !s.Contains(child.span) {
			return fmt.Errorf("%w: %s [%s] escapes its parent [%s]", ErrSpan, path+"/"+child.kind, child.span, s)
		}
		if i > 0 {
			prev := n.children[i-1]
			if prev.span.End.Offset > child.span.Start.Offset {
				return fmt.Errorf("%w: %s [%s] overlaps %s [%s]", ErrSpan,
					path+"/"+child.kind, child.span, prev.kind, prev.span)
			}
		}
		if err := verify(child, path); err != nil {
			return err
		}
	}
	return nil
}
