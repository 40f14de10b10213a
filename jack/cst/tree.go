package cst

import (
	"fmt"
	"iter"
	"slices"

	"github.com/jreyes33/jackparse/jack/token"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

var severityNames = map[Severity]string{
	SeverityError:   "error",
	SeverityWarning: "warning",
	SeverityInfo:    "info",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Code classifies a diagnostic.
type Code string

const (
	LexError    Code = "LexError"
	SyntaxError Code = "SyntaxError"
)

type Diagnostic struct {
	Span     token.Span `json:"-" yaml:"-"`
	Message  string     `json:"message" yaml:"message"`
	Severity Severity   `json:"severity" yaml:"severity"`
	Code     Code       `json:"code" yaml:"code"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Span.Start, d.Severity, d.Message)
}

// SortDiagnostics orders diagnostics by source position, keeping the
// report order of diagnostics at the same offset.
func SortDiagnostics(ds []Diagnostic) {
	slices.SortStableFunc(ds, func(a, b Diagnostic) int {
		return a.Span.Start.Offset - b.Span.Start.Offset
	})
}

// Tree is the result of one parse.
type Tree struct {
	Root        *Node
	Diagnostics []Diagnostic
	Source      []byte
}

func (t *Tree) Walk() iter.Seq[*Node] {
	return t.Root.Walk()
}

// HasErrors reports whether any diagnostic has error severity.
func (t *Tree) HasErrors() bool {
	return t.ErrorCount() > 0
}

func (t *Tree) ErrorCount() int {
	n := 0
	for _, d := range t.Diagnostics {
		if d.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Text returns the source covered by n, or "" when the tree was built
// without its source.
func (t *Tree) Text(n *Node) string {
	s := n.Span()
	if t.Source == nil || s.End.Offset > len(t.Source) {
		return n.Text()
	}
	return string(t.Source[s.Start.Offset:s.End.Offset])
}

// Cursor returns a cursor positioned on the root.
func (t *Tree) Cursor() *Cursor {
	return NewCursor(t.Root)
}
