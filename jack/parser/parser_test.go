package parser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jreyes33/jackparse/jack/cst"
	"github.com/jreyes33/jackparse/jack/grammar"
	"github.com/jreyes33/jackparse/jack/lexer"
	"github.com/jreyes33/jackparse/jack/token"
)

func parse(t *testing.T, src string, opts ...Option) *cst.Tree {
	t.Helper()
	tree, err := Parse([]byte(src), opts...)
	require.NoError(t, err)
	require.NotNil(t, tree.Root)
	require.NoError(t, cst.Verify(tree.Root))
	assert.Equal(t, 0, tree.Root.Span().Start.Offset)
	assert.Equal(t, len(src), tree.Root.Span().End.Offset)
	return tree
}

// body wraps statements in a class with a single function.
func body(statements string) string {
	return "class Main {\n  function void f() {\n    " + statements + "\n  }\n}\n"
}

func find(n *cst.Node, kind string) *cst.Node {
	for c := range n.Walk() {
		if c.Kind() == kind {
			return c
		}
	}
	return nil
}

func readTestdata(t *testing.T) map[string][]byte {
	t.Helper()
	paths, err := filepath.Glob(filepath.Join("testdata", "*.jack"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)
	files := make(map[string][]byte, len(paths))
	for _, path := range paths {
		src, err := os.ReadFile(path)
		require.NoError(t, err)
		files[filepath.Base(path)] = src
	}
	return files
}

func TestParseTestdata(t *testing.T) {
	for name, src := range readTestdata(t) {
		t.Run(name, func(t *testing.T) {
			tree := parse(t, string(src), WithFile(name))
			assert.Empty(t, tree.Diagnostics)
			assert.False(t, tree.Root.HasError(), tree.Root.SExpr())
			assert.Equal(t, "program", tree.Root.Kind())
			assert.NotNil(t, find(tree.Root, "class_declaration"))
		})
	}
}

func TestParseIsLossless(t *testing.T) {
	for name, src := range readTestdata(t) {
		t.Run(name, func(t *testing.T) {
			tree := parse(t, string(src), WithComments())
			offset := 0
			for n := range tree.Walk() {
				if !n.IsLeaf() {
					continue
				}
				s := n.Span()
				gap := string(src[offset:s.Start.Offset])
				assert.Empty(t, strings.TrimSpace(gap), "unexpected text before %s", s.Start)
				assert.Equal(t, string(src[s.Start.Offset:s.End.Offset]), n.Text())
				offset = s.End.Offset
			}
			assert.Empty(t, strings.TrimSpace(string(src[offset:])))
		})
	}
}

func TestParseShapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  string
		want  string
	}{
		{
			name:  "empty class",
			input: "class Main { }",
			kind:  "program",
			want:  "(program (class_declaration name: (identifier) body: (class_body)))",
		},
		{
			name:  "class variables",
			input: "class Main { field int x, y; static Array a; }",
			kind:  "class_body",
			want: "(class_body (class_variable_declaration (type) name: (identifier) name: (identifier))" +
				" (class_variable_declaration (type (identifier)) name: (identifier)))",
		},
		{
			name:  "parameters",
			input: "class Main { method void f(int a, Foo b) { return; } }",
			kind:  "parameter_list",
			want:  "(parameter_list (parameter (type) name: (identifier)) (parameter (type (identifier)) name: (identifier)))",
		},
		{
			name:  "precedence",
			input: body("let x = 1 + 2 * 3;"),
			kind:  "let_statement",
			want: "(let_statement name: (identifier) value: (expression (binary_expression" +
				" left: (term (integer_constant))" +
				" right: (binary_expression left: (term (integer_constant)) right: (term (integer_constant))))))",
		},
		{
			name:  "unary binds tighter",
			input: body("let x = -y * 2;"),
			kind:  "expression",
			want: "(expression (binary_expression left: (term (unary_expression operand: (term (identifier))))" +
				" right: (term (integer_constant))))",
		},
		{
			name:  "array access",
			input: body("let a[i] = a[i + 1];"),
			kind:  "let_statement",
			want: "(let_statement name: (identifier) index: (expression (term (identifier)))" +
				" value: (expression (term (array_access name: (identifier) index: (expression" +
				" (binary_expression left: (term (identifier)) right: (term (integer_constant))))))))",
		},
		{
			name:  "method call",
			input: body("do Output.printInt(1, x);"),
			kind:  "do_statement",
			want: "(do_statement (subroutine_call object: (identifier) name: (identifier) arguments: (expression_list" +
				" (expression (term (integer_constant))) (expression (term (identifier))))))",
		},
		{
			name:  "empty arguments",
			input: body("do draw();"),
			kind:  "do_statement",
			want:  "(do_statement (subroutine_call name: (identifier) arguments: (expression_list)))",
		},
		{
			name:  "if else",
			input: body("if (x) { } else { return; }"),
			kind:  "if_statement",
			want: "(if_statement condition: (expression (term (identifier))) consequence: (statements)" +
				" alternative: (else_clause (statements (statement (return_statement)))))",
		},
		{
			name:  "keyword constant",
			input: body("return true;"),
			kind:  "return_statement",
			want:  "(return_statement value: (expression (term (keyword_constant))))",
		},
		{
			name:  "parenthesized",
			input: body(`return ("a");`),
			kind:  "return_statement",
			want: "(return_statement value: (expression (term (parenthesized_expression" +
				" (expression (term (string_constant)))))))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := parse(t, tt.input)
			assert.Empty(t, tree.Diagnostics)
			n := find(tree.Root, tt.kind)
			require.NotNil(t, n, tree.Root.SExpr())
			assert.Equal(t, tt.want, n.SExpr())
		})
	}
}

func TestOperatorTables(t *testing.T) {
	src := []byte(body("let x = 1 + 2 * 3;"))

	strict, err := New(grammar.JackStrict()).Parse(src)
	require.NoError(t, err)
	assert.Equal(t,
		"(expression (binary_expression left: (binary_expression left: (term (integer_constant))"+
			" right: (term (integer_constant))) right: (term (integer_constant))))",
		find(strict.Root, "expression").SExpr())

	tree, err := New(grammar.Jack()).Parse(src)
	require.NoError(t, err)
	assert.NotEqual(t, find(strict.Root, "expression").SExpr(), find(tree.Root, "expression").SExpr())
}

func TestOperatorField(t *testing.T) {
	tree := parse(t, body("let x = a < b;"))
	bin := find(tree.Root, "binary_expression")
	require.NotNil(t, bin)
	op := bin.ChildByField("operator")
	require.NotNil(t, op)
	assert.Equal(t, "<", op.Text())
	assert.False(t, op.IsNamed())
	assert.Equal(t, "a", bin.ChildByField("left").FirstChildOfKind("identifier").Text())
}

func TestParseComments(t *testing.T) {
	src := "// lead\nclass Main { /* in */ }\n"

	tree := parse(t, src, WithComments())
	assert.Equal(t, "(program (comment) (class_declaration name: (identifier) body: (class_body (comment))))",
		tree.Root.SExpr())
	assert.Empty(t, tree.Diagnostics)

	tree = parse(t, src)
	assert.Equal(t, "(program (class_declaration name: (identifier) body: (class_body)))", tree.Root.SExpr())
}

func TestParseEmptyInput(t *testing.T) {
	for _, input := range []string{"", "  \n\t", "// only a comment\n/* and another */"} {
		tree, err := Parse([]byte(input), WithFile("Empty.jack"))
		assert.Nil(t, tree)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrEmptyInput))
		var empty *EmptyInputError
		require.ErrorAs(t, err, &empty)
		assert.Equal(t, "Empty.jack", empty.File)
		assert.Contains(t, err.Error(), "Empty.jack")
	}
}

func TestParseLexErrors(t *testing.T) {
	tree := parse(t, "@")
	require.Len(t, tree.Diagnostics, 1)
	assert.Equal(t, cst.LexError, tree.Diagnostics[0].Code)
	assert.Equal(t, "(program (ERROR))", tree.Root.SExpr())

	tree = parse(t, body("let x = 1; @"))
	require.Len(t, tree.Diagnostics, 1)
	assert.Equal(t, cst.LexError, tree.Diagnostics[0].Code)
	assert.Equal(t, cst.SeverityError, tree.Diagnostics[0].Severity)
	bad := find(tree.Root, cst.ErrorKind)
	require.NotNil(t, bad)
	assert.Equal(t, "@", bad.Text())
	assert.True(t, tree.HasErrors())
}

func TestParseUnterminatedString(t *testing.T) {
	tree := parse(t, body(`let s = "abc;`))
	codes := map[cst.Code]int{}
	for _, d := range tree.Diagnostics {
		codes[d.Code]++
	}
	assert.Equal(t, 1, codes[cst.LexError])
	assert.Equal(t, 1, codes[cst.SyntaxError])
}

func TestIntegerRange(t *testing.T) {
	src := body("let x = 32767; let y = 40000;")
	tree := parse(t, src)
	require.Len(t, tree.Diagnostics, 1)
	d := tree.Diagnostics[0]
	assert.Equal(t, cst.SeverityWarning, d.Severity)
	assert.Equal(t, "40000", src[d.Span.Start.Offset:d.Span.End.Offset])
	assert.False(t, tree.HasErrors())
}

func TestDiagnosticPositions(t *testing.T) {
	tree := parse(t, "class {\n}\n", WithFile("Main.jack"))
	require.Len(t, tree.Diagnostics, 1)
	d := tree.Diagnostics[0]
	assert.Equal(t, "Main.jack", d.Span.Start.File)
	assert.Equal(t, 1, d.Span.Start.Line)
	assert.Equal(t, 7, d.Span.Start.Column)
	assert.True(t, strings.HasPrefix(d.String(), "Main.jack:1:7: error: "), d.String())
}

type tokenSlice struct {
	toks []token.Token
}

func (s *tokenSlice) Next() token.Token {
	tok := s.toks[0]
	if len(s.toks) > 1 {
		s.toks = s.toks[1:]
	}
	return tok
}

func TestParseTokens(t *testing.T) {
	src := []byte("class Main { }")
	var toks []token.Token
	for tok := range lexer.Tokenize(grammar.Jack(), src) {
		toks = append(toks, tok)
	}

	tree, err := New(grammar.Jack()).ParseTokens(&tokenSlice{toks: toks})
	require.NoError(t, err)
	assert.Nil(t, tree.Source)
	assert.Equal(t, "(program (class_declaration name: (identifier) body: (class_body)))", tree.Root.SExpr())
	assert.Equal(t, "Main", tree.Text(find(tree.Root, "identifier")))
}

func TestParserReuse(t *testing.T) {
	p := New(grammar.Jack())
	first, err := p.Parse([]byte(body("let x = ;")))
	require.NoError(t, err)
	second, err := p.Parse([]byte(body("let x = 1;")))
	require.NoError(t, err)
	third, err := p.Parse([]byte(body("let x = ;")))
	require.NoError(t, err)

	assert.Len(t, first.Diagnostics, 1)
	assert.Empty(t, second.Diagnostics)
	assert.Equal(t, first.Root.SExpr(), third.Root.SExpr())
	assert.Equal(t, first.Diagnostics, third.Diagnostics)
}

func TestConcurrentParses(t *testing.T) {
	files := readTestdata(t)
	want := make(map[string]string, len(files))
	for name, src := range files {
		want[name] = parse(t, string(src)).Root.SExpr()
	}

	var wg sync.WaitGroup
	got := make([]map[string]string, 8)
	for i := range got {
		got[i] = make(map[string]string, len(files))
		wg.Add(1)
		go func(out map[string]string) {
			defer wg.Done()
			p := New(grammar.Jack())
			for name, src := range files {
				tree, err := p.Parse(src)
				if err != nil {
					out[name] = err.Error()
					continue
				}
				out[name] = tree.Root.SExpr()
			}
		}(got[i])
	}
	wg.Wait()

	for _, out := range got {
		assert.Equal(t, want, out)
	}
}

func countNodes(tree *cst.Tree) int {
	n := 0
	for range tree.Walk() {
		n++
	}
	return n
}

func TestNodeCountIsLinear(t *testing.T) {
	size := func(statements int) int {
		return countNodes(parse(t, body(strings.Repeat("let x = a[i] + 1;\n", statements))))
	}
	base, one, two := size(0), size(100), size(200)
	assert.Equal(t, one-base, two-one)
}

func nested(depth int) string {
	return body("return " + strings.Repeat("(", depth) + "1" + strings.Repeat(")", depth) + ";")
}

func TestDeepNesting(t *testing.T) {
	tree := parse(t, nested(200))
	assert.Empty(t, tree.Diagnostics)
}

func TestMaxDepth(t *testing.T) {
	tree := parse(t, nested(60), WithMaxDepth(40))
	require.Len(t, tree.Diagnostics, 1)
	assert.Contains(t, tree.Diagnostics[0].Message, "maximum depth of 40")
	assert.True(t, tree.Root.HasError())
}
