// Package grammar describes a language as data: rules, productions,
// operator precedence and the synchronization set used by error recovery.
//
// A Table is built once from a Spec, validated, and then shared read-only
// by any number of parsers. Built-in tables for Jack are available through
// Jack, JackStrict and Lookup.
package grammar

import (
	"fmt"
	"strings"

	"github.com/jreyes33/jackparse/jack/token"
)

// Assoc is the associativity of a binary operator rule.
type Assoc int

const (
	Left Assoc = iota
	Right
)

func (a Assoc) String() string {
	if a == Right {
		return "right"
	}
	return "left"
}

// Quantifier says how many times a symbol may occur at its position.
type Quantifier int

const (
	One Quantifier = iota
	Optional
	Many
)

// Symbol is one element of a production: a terminal, matched against a
// single token, or a reference to another rule.
type Symbol struct {
	Kind  token.Kind // terminal class when Rule is empty
	Text  string     // lexeme, for Keyword and Symbol terminals
	Rule  string
	Quant Quantifier
	Field string // field name given to the resulting node
	Alias string // node kind replacing the default one
}

func Keyword(text string) Symbol {
	return Symbol{Kind: token.Keyword, Text: text}
}

func Punct(text string) Symbol {
	return Symbol{Kind: token.Symbol, Text: text}
}

// Token matches any token of the given class, such as token.Identifier.
func Token(kind token.Kind) Symbol {
	return Symbol{Kind: kind}
}

func Ref(rule string) Symbol {
	return Symbol{Rule: rule}
}

func (s Symbol) InField(name string) Symbol {
	s.Field = name
	return s
}

func (s Symbol) Opt() Symbol {
	s.Quant = Optional
	return s
}

func (s Symbol) Many() Symbol {
	s.Quant = Many
	return s
}

func (s Symbol) As(kind string) Symbol {
	s.Alias = kind
	return s
}

func (s Symbol) IsTerminal() bool {
	return s.Rule == ""
}

// Matches reports whether a terminal symbol accepts tok.
func (s Symbol) Matches(tok token.Token) bool {
	return s.IsTerminal() && terminalOf(tok) == s.terminal()
}

func (s Symbol) terminal() terminal {
	return terminal{kind: s.Kind, text: s.Text}
}

func (s Symbol) String() string {
	var base string
	switch {
	case !s.IsTerminal():
		base = strings.TrimPrefix(s.Rule, "_")
	default:
		base = s.terminal().String()
	}
	switch s.Quant {
	case Optional:
		return base + "?"
	case Many:
		return base + "*"
	}
	return base
}

type Production struct {
	Symbols []Symbol
}

func Seq(symbols ...Symbol) Production {
	return Production{Symbols: symbols}
}

func (p Production) String() string {
	parts := make([]string, len(p.Symbols))
	for i, sym := range p.Symbols {
		parts[i] = sym.String()
	}
	return strings.Join(parts, " ")
}

// Rule is a named nonterminal.
//
// Three shapes are recognised. A plain rule lists alternative productions.
// An expression rule sets Operand and lists only references to operator
// rules; it is parsed by precedence climbing over the operand. An operator
// rule has a Precedence above zero and productions of the form
// `expr OP expr`, where expr is the expression rule that references it.
type Rule struct {
	Name         string
	Alternatives []Production
	Precedence   int
	Assoc        Assoc
	Node         string // node kind, defaults to Name
	Inline       bool   // children are spliced into the parent; no node of its own
	Operand      string
}

// Kind is the node kind produced for the rule.
func (r *Rule) Kind() string {
	if r.Node != "" {
		return r.Node
	}
	return r.Name
}

func (r *Rule) IsExpression() bool {
	return r.Operand != ""
}

func (r *Rule) IsOperator() bool {
	return r.Precedence > 0
}

// Operator is a binary operator derived from an operator rule.
type Operator struct {
	Text          string
	Precedence    int
	Assoc         Assoc
	Node          string
	LeftField     string
	OperatorField string
	RightField    string

	kind token.Kind
}

// SyncSet holds the lexemes error recovery synchronizes on. Stop tokens
// end a skip and are left for the parser; Consume tokens are skipped too.
type SyncSet struct {
	Stop    []string
	Consume []string
}

// Spec is the input to New.
type Spec struct {
	Name  string
	Start string
	Rules []Rule
	Sync  SyncSet
	// Check inspects every consumed token and returns a warning message
	// when the token is suspicious.
	Check func(token.Token) (string, bool)
}

// terminal identifies what a single token must look like to match.
type terminal struct {
	kind token.Kind
	text string
}

func terminalOf(tok token.Token) terminal {
	switch tok.Kind {
	case token.Keyword, token.Symbol:
		return terminal{kind: tok.Kind, text: tok.Literal}
	}
	return terminal{kind: tok.Kind}
}

func (t terminal) String() string {
	if t.text != "" {
		return "'" + t.text + "'"
	}
	if name, ok := leafKinds[t.kind]; ok {
		return name
	}
	return strings.ToLower(t.kind.String())
}

var leafKinds = map[token.Kind]string{
	token.Identifier:   "identifier",
	token.Integer:      "integer_constant",
	token.String:       "string_constant",
	token.LineComment:  "comment",
	token.BlockComment: "comment",
}

// Describe renders tok the way diagnostics refer to it.
func Describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of input"
	case token.Keyword, token.Symbol:
		return "'" + tok.Literal + "'"
	case token.Identifier:
		return fmt.Sprintf("identifier %q", tok.Literal)
	}
	return terminalOf(tok).String() + " " + tok.Literal
}
