package cst

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jreyes33/jackparse/jack/token"
)

func pos(offset int) token.Position {
	return token.Position{Offset: offset, Line: 1, Column: offset + 1}
}

func tok(kind token.Kind, lit string, offset int) token.Token {
	return token.Token{
		Kind:    kind,
		Literal: lit,
		Span:    token.Span{Start: pos(offset), End: pos(offset + len(lit))},
	}
}

// buildSum builds the tree for "a + b * c" wrapped in an expression,
// using checkpoints the way precedence climbing does.
func buildSum() *Node {
	b := NewBuilder()
	b.StartNode("expression", "", pos(0))

	cp := b.Checkpoint()
	b.Token(tok(token.Identifier, "a", 0), "identifier", true, "")
	b.StartNodeAt(cp, "binary_expression", "")
	b.SetChildField("left")
	b.Token(tok(token.Symbol, "+", 2), "+", false, "operator")

	inner := b.Checkpoint()
	b.Token(tok(token.Identifier, "b", 4), "identifier", true, "")
	b.StartNodeAt(inner, "binary_expression", "")
	b.SetChildField("left")
	b.Token(tok(token.Symbol, "*", 6), "*", false, "operator")
	b.Token(tok(token.Identifier, "c", 8), "identifier", true, "right")
	b.FinishNode(pos(9))

	b.SetChildField("right")
	b.FinishNode(pos(9))
	return b.Finish(token.Span{Start: pos(0), End: pos(9)})
}

func TestBuilderCheckpoint(t *testing.T) {
	root := buildSum()
	assert.Equal(t,
		"(expression (binary_expression left: (identifier) right: (binary_expression left: (identifier) right: (identifier))))",
		root.SExpr())
	require.NoError(t, Verify(root))

	bin := root.Child(0)
	assert.Equal(t, 0, bin.Span().Start.Offset)
	assert.Equal(t, 9, bin.Span().End.Offset)
	assert.Equal(t, "+", bin.ChildByField("operator").Text())
	assert.Equal(t, 4, bin.ChildByField("right").Span().Start.Offset)
}

func TestBuilderMissingAndEmpty(t *testing.T) {
	b := NewBuilder()
	b.StartNode("program", "", pos(0))
	b.StartNode("class_declaration", "", pos(0))
	b.Token(tok(token.Keyword, "class", 0), "class", false, "")
	b.Missing("identifier", true, "name", b.Frontier())
	b.StartNode("class_body", "body", pos(6))
	b.Token(tok(token.Symbol, "{", 6), "{", false, "")
	b.StartNode("statements", "", pos(8))
	b.FinishNode(pos(7))
	b.Token(tok(token.Symbol, "}", 8), "}", false, "")
	b.FinishNode(pos(9))
	b.FinishNode(pos(9))
	root := b.Finish(token.Span{Start: pos(0), End: pos(9)})

	require.NoError(t, Verify(root))
	assert.Equal(t, "(program (class_declaration name: (MISSING identifier) body: (class_body (statements))))", root.SExpr())

	class := root.Child(0)
	name := class.ChildByField("name")
	require.NotNil(t, name)
	assert.True(t, name.IsMissing())
	assert.Equal(t, 5, name.Span().Start.Offset)
	assert.True(t, name.Span().IsEmpty())
	assert.True(t, root.HasError())

	stmts := class.ChildByField("body").FirstChildOfKind("statements")
	require.NotNil(t, stmts)
	assert.Equal(t, 8, stmts.Span().Start.Offset, "empty node sits at the next token")
	assert.True(t, stmts.Span().IsEmpty())
}

func TestFinishClosesOpenNodes(t *testing.T) {
	b := NewBuilder()
	b.StartNode("program", "", pos(0))
	b.StartNode("class_declaration", "", pos(0))
	b.Token(tok(token.Keyword, "class", 0), "class", false, "")
	root := b.Finish(token.Span{Start: pos(0), End: pos(12)})

	assert.Equal(t, 0, b.Depth())
	assert.Equal(t, 12, root.Span().End.Offset)
	assert.Equal(t, 5, root.Child(0).Span().End.Offset)
	require.NoError(t, Verify(root))
}

func TestSExprMissingAnonymous(t *testing.T) {
	b := NewBuilder()
	b.StartNode("return_statement", "", pos(0))
	b.Token(tok(token.Keyword, "return", 0), "return", false, "")
	b.Missing(";", false, "", pos(6))
	root := b.Finish(token.Span{Start: pos(0), End: pos(6)})
	assert.Equal(t, `(return_statement (MISSING ";"))`, root.SExpr())
}

func TestSExprError(t *testing.T) {
	b := NewBuilder()
	b.StartNode("statements", "", pos(0))
	b.StartNode(ErrorKind, "", pos(0))
	b.Token(tok(token.Identifier, "foo", 0), "identifier", true, "")
	b.Token(tok(token.Symbol, ";", 3), ";", false, "")
	b.FinishNode(pos(4))
	root := b.Finish(token.Span{Start: pos(0), End: pos(4)})
	assert.Equal(t, "(statements (ERROR (identifier)))", root.SExpr())
	assert.True(t, root.Child(0).IsError())
}

func TestString(t *testing.T) {
	root := buildSum()
	want := "expression\n" +
		"  binary_expression\n" +
		"    left: identifier \"a\"\n" +
		"    operator: +\n" +
		"    right: binary_expression\n" +
		"      left: identifier \"b\"\n" +
		"      operator: *\n" +
		"      right: identifier \"c\"\n"
	assert.Equal(t, want, root.String())
	assert.Contains(t, root.StringWithPositions(), "expression [1:1-1:10]")
}

func TestIterators(t *testing.T) {
	root := buildSum()
	var kinds []string
	for n := range root.Walk() {
		kinds = append(kinds, n.Kind())
	}
	assert.Equal(t, []string{
		"expression", "binary_expression", "identifier", "+",
		"binary_expression", "identifier", "*", "identifier",
	}, kinds)

	bin := root.Child(0)
	assert.Len(t, slices.Collect(bin.Children()), 3)
	assert.Len(t, slices.Collect(bin.NamedChildren()), 2)
	assert.Nil(t, bin.Child(3))
	assert.Nil(t, bin.Child(-1))
}

func TestCursor(t *testing.T) {
	root := buildSum()
	c := NewCursor(root)
	assert.Equal(t, 0, c.Depth())

	require.NoError(t, c.FirstChild())
	require.NoError(t, c.FirstChild())
	assert.Equal(t, "identifier", c.Node().Kind())
	assert.Equal(t, "left", c.FieldName())
	assert.Equal(t, 2, c.Depth())

	require.NoError(t, c.NextSibling())
	assert.Equal(t, "+", c.Node().Kind())
	require.NoError(t, c.NextSibling())
	assert.Equal(t, "right", c.FieldName())

	err := c.NextSibling()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNavigation)
	var navErr *NavigationError
	require.True(t, errors.As(err, &navErr))
	assert.Equal(t, "next sibling", navErr.Op)
	assert.Equal(t, "binary_expression", c.Node().Kind(), "failed move keeps the position")

	require.NoError(t, c.PrevSibling())
	require.NoError(t, c.PrevSibling())
	assert.ErrorIs(t, c.PrevSibling(), ErrNavigation)

	require.NoError(t, c.Parent())
	require.NoError(t, c.Parent())
	assert.ErrorIs(t, c.Parent(), ErrNavigation)
	assert.ErrorIs(t, c.NextSibling(), ErrNavigation)
	assert.Same(t, root, c.Node())

	require.NoError(t, c.FirstChild())
	c.Reset()
	assert.Same(t, root, c.Node())
}

func TestCursorLeaf(t *testing.T) {
	leaf := buildSum().Child(0).Child(0)
	c := NewCursor(leaf)
	err := c.FirstChild()
	assert.ErrorIs(t, err, ErrNavigation)
	assert.EqualError(t, err, "cursor: first child from identifier: invalid cursor movement")
}

func TestVerifyDetectsOverlap(t *testing.T) {
	b := NewBuilder()
	b.StartNode("statements", "", pos(0))
	b.Token(tok(token.Identifier, "abc", 0), "identifier", true, "")
	b.Token(tok(token.Identifier, "bc", 1), "identifier", true, "")
	root := b.Finish(token.Span{Start: pos(0), End: pos(3)})
	err := Verify(root)
	require.ErrorIs(t, err, ErrSpan)
	assert.Contains(t, err.Error(), "overlaps")
}

func TestMarshalJSON(t *testing.T) {
	data, err := json.Marshal(buildSum())
	require.NoError(t, err)

	var got struct {
		Kind     string `json:"kind"`
		Children []struct {
			Kind     string `json:"kind"`
			Children []struct {
				Field string `json:"field"`
				Text  string `json:"text"`
			} `json:"children"`
		} `json:"children"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "expression", got.Kind)
	require.Len(t, got.Children, 1)
	require.Len(t, got.Children[0].Children, 3)
	assert.Equal(t, "left", got.Children[0].Children[0].Field)
	assert.Equal(t, "a", got.Children[0].Children[0].Text)
	assert.Equal(t, "+", got.Children[0].Children[1].Text)
}

func TestTree(t *testing.T) {
	tree := &Tree{
		Root:   buildSum(),
		Source: []byte("a + b * c"),
		Diagnostics: []Diagnostic{
			{Span: token.Span{Start: pos(6)}, Message: "second", Severity: SeverityWarning, Code: LexError},
			{Span: token.Span{Start: pos(2)}, Message: "first", Severity: SeverityError, Code: SyntaxError},
		},
	}
	SortDiagnostics(tree.Diagnostics)
	assert.Equal(t, "first", tree.Diagnostics[0].Message)
	assert.Equal(t, 1, tree.ErrorCount())
	assert.True(t, tree.HasErrors())
	assert.Equal(t, "b * c", tree.Text(tree.Root.Child(0).ChildByField("right")))
	assert.Equal(t, "1:3: error: first", tree.Diagnostics[0].String())
}
