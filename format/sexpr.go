package format

import (
	"io"

	"github.com/jreyes33/jackparse/jack/cst"
)

// SExprEncoder writes the named structure of a tree on one line, the way
// tree-sitter prints syntax trees.
type SExprEncoder struct {
	w    io.Writer
	tree *cst.Tree
}

func NewSExprEncoder(w io.Writer) *SExprEncoder {
	return &SExprEncoder{w: w}
}

func (e *SExprEncoder) Encode(tree *cst.Tree) error {
	e.tree = tree
	return write(e.w, e)
}

func (e *SExprEncoder) MarshalText() ([]byte, error) {
	return []byte(e.tree.Root.SExpr() + "\n"), nil
}

// TreeEncoder writes every node of a tree on its own line, indented by
// depth, optionally with its span.
type TreeEncoder struct {
	w         io.Writer
	tree      *cst.Tree
	positions bool
}

func NewTreeEncoder(w io.Writer, positions bool) *TreeEncoder {
	return &TreeEncoder{w: w, positions: positions}
}

func (e *TreeEncoder) Encode(tree *cst.Tree) error {
	e.tree = tree
	return write(e.w, e)
}

func (e *TreeEncoder) MarshalText() ([]byte, error) {
	if e.positions {
		return []byte(e.tree.Root.StringWithPositions()), nil
	}
	return []byte(e.tree.Root.String()), nil
}
