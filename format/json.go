package format

import (
	"bytes"
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jreyes33/jackparse/jack/cst"
)

type document struct {
	File        string           `json:"file,omitempty" yaml:"file,omitempty"`
	Root        any              `json:"root" yaml:"root"`
	Diagnostics []jsonDiagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

type jsonDiagnostic struct {
	Line      int    `json:"line" yaml:"line"`
	Column    int    `json:"column" yaml:"column"`
	EndLine   int    `json:"endLine" yaml:"end_line"`
	EndColumn int    `json:"endColumn" yaml:"end_column"`
	Severity  string `json:"severity" yaml:"severity"`
	Code      string `json:"code" yaml:"code"`
	Message   string `json:"message" yaml:"message"`
}

func buildDocument(tree *cst.Tree, positions bool) document {
	doc := document{
		File: tree.Root.Span().Start.File,
		Root: tree.Root.Export(positions),
	}
	for _, d := range tree.Diagnostics {
		doc.Diagnostics = append(doc.Diagnostics, jsonDiagnostic{
			Line:      d.Span.Start.Line,
			Column:    d.Span.Start.Column,
			EndLine:   d.Span.End.Line,
			EndColumn: d.Span.End.Column,
			Severity:  d.Severity.String(),
			Code:      string(d.Code),
			Message:   d.Message,
		})
	}
	return doc
}

type JSONEncoder struct {
	w         io.Writer
	tree      *cst.Tree
	positions bool
}

func NewJSONEncoder(w io.Writer, positions bool) *JSONEncoder {
	return &JSONEncoder{w: w, positions: positions}
}

func (e *JSONEncoder) Encode(tree *cst.Tree) error {
	e.tree = tree
	return write(e.w, e)
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	data, err := json.MarshalIndent(buildDocument(e.tree, e.positions), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

type YAMLEncoder struct {
	w         io.Writer
	tree      *cst.Tree
	positions bool
}

func NewYAMLEncoder(w io.Writer, positions bool) *YAMLEncoder {
	return &YAMLEncoder{w: w, positions: positions}
}

func (e *YAMLEncoder) Encode(tree *cst.Tree) error {
	e.tree = tree
	return write(e.w, e)
}

func (e *YAMLEncoder) MarshalText() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(buildDocument(e.tree, e.positions)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
