package format

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jreyes33/jackparse/jack/cst"
	"github.com/jreyes33/jackparse/jack/parser"
)

const missingExpression = "class Main {\n  function void f() {\n    let x = ;\n  }\n}\n"

func mustParse(t *testing.T, src string, opts ...parser.Option) *cst.Tree {
	t.Helper()
	tree, err := parser.Parse([]byte(src), opts...)
	require.NoError(t, err)
	return tree
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"json", "sexp", "tree", "yaml"}, Names())
}

func TestNewEncoderUnknown(t *testing.T) {
	_, err := NewEncoder("xml", &bytes.Buffer{}, Options{})
	require.ErrorIs(t, err, ErrUnknownFormat)
	assert.Contains(t, err.Error(), `"xml"`)
}

func TestSExprEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewEncoder("sexp", &buf, Options{})
	require.NoError(t, err)
	require.NoError(t, enc.Encode(mustParse(t, "class Main { }")))
	assert.Equal(t, "(program (class_declaration name: (identifier) body: (class_body)))\n", buf.String())
}

func TestTreeEncoder(t *testing.T) {
	tree := mustParse(t, "class Main { }")

	var buf bytes.Buffer
	require.NoError(t, NewTreeEncoder(&buf, false).Encode(tree))
	assert.Equal(t, "program\n"+
		"  class_declaration\n"+
		"    class\n"+
		"    name: identifier \"Main\"\n"+
		"    body: class_body\n"+
		"      {\n"+
		"      }\n", buf.String())

	buf.Reset()
	require.NoError(t, NewTreeEncoder(&buf, true).Encode(tree))
	assert.Contains(t, buf.String(), "program [1:1-1:15]\n")
}

func TestJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	tree := mustParse(t, missingExpression, parser.WithFile("Main.jack"))
	require.NoError(t, NewJSONEncoder(&buf, true).Encode(tree))

	var doc struct {
		File string `json:"file"`
		Root struct {
			Kind string `json:"kind"`
			Span struct {
				End struct {
					Offset int `json:"offset"`
				} `json:"end"`
			} `json:"span"`
		} `json:"root"`
		Diagnostics []struct {
			Line     int    `json:"line"`
			Column   int    `json:"column"`
			Severity string `json:"severity"`
			Code     string `json:"code"`
		} `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "Main.jack", doc.File)
	assert.Equal(t, "program", doc.Root.Kind)
	assert.Equal(t, len(missingExpression), doc.Root.Span.End.Offset)
	require.Len(t, doc.Diagnostics, 1)
	assert.Equal(t, 3, doc.Diagnostics[0].Line)
	assert.Equal(t, 13, doc.Diagnostics[0].Column)
	assert.Equal(t, "error", doc.Diagnostics[0].Severity)
	assert.Equal(t, "SyntaxError", doc.Diagnostics[0].Code)
}

func TestJSONEncoderWithoutPositions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONEncoder(&buf, false).Encode(mustParse(t, "class Main { }")))
	assert.NotContains(t, buf.String(), `"span"`)
	assert.NotContains(t, buf.String(), `"diagnostics"`)
}

func TestYAMLEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLEncoder(&buf, false).Encode(mustParse(t, missingExpression)))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	root, ok := doc["root"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "program", root["kind"])
	diags, ok := doc["diagnostics"].([]any)
	require.True(t, ok)
	assert.Len(t, diags, 1)
	assert.Contains(t, buf.String(), "missing: true")
}
