// Package token defines the lexical vocabulary shared by the lexer, the
// grammar table and the concrete syntax tree.
package token

import "fmt"

type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is a half-open byte range [Start.Offset, End.Offset).
type Span struct {
	Start Position
	End   Position
}

func (s Span) Len() int {
	return s.End.Offset - s.Start.Offset
}

func (s Span) IsEmpty() bool {
	return s.End.Offset == s.Start.Offset
}

// Contains reports whether o lies entirely within s.
func (s Span) Contains(o Span) bool {
	return s.Start.Offset <= o.Start.Offset && o.End.Offset <= s.End.Offset
}

func (s Span) String() string {
	return s.Start.String() + "-" + s.End.String()
}

type Kind int

const (
	EOF Kind = iota
	Error
	Whitespace
	LineComment
	BlockComment

	Identifier
	Keyword
	Integer
	String
	Symbol
)

var kindNames = map[Kind]string{
	EOF:          "EOF",
	Error:        "Error",
	Whitespace:   "Whitespace",
	LineComment:  "LineComment",
	BlockComment: "BlockComment",
	Identifier:   "Identifier",
	Keyword:      "Keyword",
	Integer:      "Integer",
	String:       "String",
	Symbol:       "Symbol",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

type Token struct {
	Kind    Kind
	Span    Span
	Literal string
}

// IsTrivia reports whether the token carries no syntactic meaning.
func (t Token) IsTrivia() bool {
	switch t.Kind {
	case Whitespace, LineComment, BlockComment:
		return true
	}
	return false
}

func (t Token) IsComment() bool {
	return t.Kind == LineComment || t.Kind == BlockComment
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s %q", t.Span.Start, t.Kind, t.Literal)
}
