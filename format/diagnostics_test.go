package format

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jreyes33/jackparse/jack/cst"
	"github.com/jreyes33/jackparse/jack/parser"
	"github.com/jreyes33/jackparse/jack/token"
)

func TestParseColorMode(t *testing.T) {
	for name, want := range map[string]ColorMode{"": ColorAuto, "auto": ColorAuto, "always": ColorAlways, "never": ColorNever} {
		got, err := ParseColorMode(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseColorMode("sometimes")
	require.ErrorIs(t, err, ErrUnknownColorMode)
	assert.Equal(t, "never", ColorNever.String())
}

func TestDiagnosticPrinter(t *testing.T) {
	tree := mustParse(t, missingExpression, parser.WithFile("Main.jack"))

	var buf bytes.Buffer
	p := NewDiagnosticPrinter(&buf, ColorNever)
	require.NoError(t, p.Print(tree))
	assert.Equal(t,
		"Main.jack:3:13: error: expected expression, found ';'\n"+
			"    let x = ;\n"+
			"            ^\n",
		buf.String())

	buf.Reset()
	require.NoError(t, p.Summary(1, 1, 0))
	assert.Equal(t, "1 file, 1 error, 0 warnings\n", buf.String())
}

func TestDiagnosticPrinterSpanWidth(t *testing.T) {
	src := "class Main {\n  function void f() {\n    foo bar;\n  }\n}\n"
	tree := mustParse(t, src)

	var buf bytes.Buffer
	require.NoError(t, NewDiagnosticPrinter(&buf, ColorNever).Print(tree))
	out := buf.String()
	assert.Contains(t, out, `3:5: error: unexpected identifier "foo", expected statement`+"\n")
	assert.Contains(t, out, "    foo bar;\n    ^~~~~~~~\n")
}

func TestDiagnosticPrinterWithoutSource(t *testing.T) {
	d := cst.Diagnostic{
		Span: token.Span{
			Start: token.Position{File: "A.jack", Offset: 4, Line: 1, Column: 5},
			End:   token.Position{File: "A.jack", Offset: 5, Line: 1, Column: 6},
		},
		Message:  "something odd",
		Severity: cst.SeverityWarning,
	}
	var buf bytes.Buffer
	require.NoError(t, NewDiagnosticPrinter(&buf, ColorNever).PrintDiagnostic(d, nil))
	assert.Equal(t, "A.jack:1:5: warning: something odd\n", buf.String())
}

func TestDiagnosticPrinterColor(t *testing.T) {
	tree := mustParse(t, missingExpression)

	var buf bytes.Buffer
	require.NoError(t, NewDiagnosticPrinter(&buf, ColorAlways).Print(tree))
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "expected expression")

	buf.Reset()
	require.NoError(t, NewDiagnosticPrinter(&buf, ColorAuto).Print(tree))
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestCaretPadding(t *testing.T) {
	assert.Equal(t, "\t  ", caretPadding("\tlet x", 4))
	assert.Equal(t, "", caretPadding("let", 1))
}
