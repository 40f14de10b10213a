package format

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jreyes33/jackparse/jack/cst"
	"github.com/jreyes33/jackparse/jack/parser"
	"github.com/jreyes33/jackparse/jack/token"
)

var ErrNotFormattable = errors.New("tree has syntax errors")

// lineItems are the nodes that always start on a line of their own.
var lineItems = map[string]bool{
	"class_declaration":          true,
	"class_variable_declaration": true,
	"function_declaration":       true,
	"var_declaration":            true,
	"statement":                  true,
}

// JackPrettyPrinter reprints a syntax tree as Jack source: one declaration
// or statement per line, blocks indented, single spaces between tokens
// except where punctuation binds. Comments in the tree are kept, as are
// single blank lines between items.
type JackPrettyPrinter struct {
	w           io.Writer
	indent      int
	indentStr   string
	atLineStart bool
	pending     int // newlines owed before the next text
	wrote       bool
	lastLine    int // source line of the last token written
	prev        *cst.Node
	glue        bool // suppress the space before the next token
	err         error
}

func NewJackPrettyPrinter(w io.Writer) *JackPrettyPrinter {
	return &JackPrettyPrinter{
		w:           w,
		indentStr:   "    ",
		atLineStart: true,
	}
}

// Print writes the source for tree. Trees with error or missing nodes are
// refused since their text is not Jack.
func (p *JackPrettyPrinter) Print(tree *cst.Tree) error {
	if tree.Root.HasError() {
		return fmt.Errorf("%w: %d errors", ErrNotFormattable, max(1, tree.ErrorCount()))
	}
	p.printNode(tree.Root)
	if p.wrote {
		p.write("\n")
	}
	return p.err
}

func (p *JackPrettyPrinter) printNode(n *cst.Node) {
	if n.IsLeaf() {
		p.printLeaf(n)
		return
	}
	for child := range n.Children() {
		if lineItems[child.Kind()] {
			p.printItem(child)
			continue
		}
		p.printNode(child)
		if n.Kind() == "unary_expression" && child.Field() == "operator" {
			p.glue = true
		}
	}
}

func (p *JackPrettyPrinter) printItem(n *cst.Node) {
	p.newline()
	p.keepBlankLine(n)
	p.printNode(n)
	p.newline()
}

func (p *JackPrettyPrinter) printLeaf(n *cst.Node) {
	if n.Kind() == "comment" {
		p.printComment(n)
		return
	}
	lit := n.Text()
	if lit == "}" && !n.IsNamed() {
		p.indent--
		p.newline()
	}
	if p.pending == 0 && !p.atLineStart && p.spaceBefore(n) {
		p.write(" ")
	}
	p.text(lit)
	p.prev = n
	p.lastLine = n.Span().End.Line
	p.glue = false
	if lit == "{" && !n.IsNamed() {
		p.indent++
		p.newline()
	}
}

// spaceBefore reports whether a space separates the previous token on the
// line from n.
func (p *JackPrettyPrinter) spaceBefore(n *cst.Node) bool {
	if p.glue || p.prev == nil {
		return false
	}
	if !n.IsNamed() {
		switch n.Text() {
		case ",", ";", ")", "]", ".":
			return false
		case "(", "[":
			if p.prev.Kind() == "identifier" {
				return false
			}
		}
	}
	if !p.prev.IsNamed() {
		switch p.prev.Text() {
		case "(", "[", ".":
			return false
		}
	}
	return true
}

// keepBlankLine preserves one blank line before n when the source had any.
func (p *JackPrettyPrinter) keepBlankLine(n *cst.Node) {
	if p.lastLine > 0 && n.Span().Start.Line > p.lastLine+1 {
		p.pending = 2
	}
}

func (p *JackPrettyPrinter) newline() {
	p.pending = max(p.pending, 1)
}

func (p *JackPrettyPrinter) text(s string) {
	if p.pending > 0 && p.wrote {
		p.write(strings.Repeat("\n", p.pending))
		p.atLineStart = true
	}
	p.pending = 0
	if p.atLineStart {
		p.write(strings.Repeat(p.indentStr, max(0, p.indent)))
		p.atLineStart = false
	}
	p.write(s)
	p.wrote = true
}

func (p *JackPrettyPrinter) write(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

// Pretty reprints tree as Jack source.
func Pretty(tree *cst.Tree) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewJackPrettyPrinter(&buf).Print(tree); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PrettySource parses src with its comments and reprints it.
func PrettySource(src []byte, filename string) ([]byte, error) {
	opts := []parser.Option{parser.WithComments()}
	if filename != "" {
		opts = append(opts, parser.WithFile(filename))
	}
	tree, err := parser.Parse(src, opts...)
	if err != nil {
		return nil, err
	}
	return Pretty(tree)
}

func isLineComment(n *cst.Node) bool {
	tok := n.Token()
	return tok != nil && tok.Kind == token.LineComment
}
