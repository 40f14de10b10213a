// Package lexer turns Jack source bytes into a lazy stream of tokens.
package lexer

import (
	"fmt"
	"iter"
	"unicode/utf8"

	"github.com/jreyes33/jackparse/jack/token"
)

// Vocabulary supplies the grammar-specific parts of lexing. A
// *grammar.Table satisfies it.
type Vocabulary interface {
	IsKeyword(word string) bool
	// MatchSymbol returns the length of the longest symbol that prefixes
	// input, or 0.
	MatchSymbol(input []byte) int
}

type Option func(*Lexer)

func WithFile(path string) Option {
	return func(l *Lexer) {
		l.file = path
	}
}

type Lexer struct {
	vocab  Vocabulary
	input  []byte
	file   string
	pos    int
	line   int
	column int
}

func New(vocab Vocabulary, input []byte, opts ...Option) *Lexer {
	l := &Lexer{
		vocab:  vocab,
		input:  input,
		line:   1,
		column: 1,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tokenize is a shorthand for New(vocab, input, opts...).All().
func Tokenize(vocab Vocabulary, input []byte, opts ...Option) iter.Seq[token.Token] {
	return New(vocab, input, opts...).All()
}

// All yields every remaining token, ending with EOF.
func (l *Lexer) All() iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		for {
			tok := l.Next()
			if !yield(tok) || tok.Kind == token.EOF {
				return
			}
		}
	}
}

func (l *Lexer) Position() token.Position {
	return token.Position{
		File:   l.file,
		Offset: l.pos,
		Line:   l.line,
		Column: l.column,
	}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) advance() {
	if l.atEnd() {
		return
	}
	ch := l.input[l.pos]
	l.pos++
	switch {
	case ch == '\n':
		l.line++
		l.column = 1
	case ch == '\r' && l.peek() != '\n':
		l.line++
		l.column = 1
	default:
		l.column++
	}
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

// Next returns the next token. Once the input is exhausted every call
// returns EOF positioned at the end of the input.
func (l *Lexer) Next() token.Token {
	start := l.Position()

	if l.atEnd() {
		return token.Token{Kind: token.EOF, Span: token.Span{Start: start, End: start}}
	}

	ch := l.peek()

	switch {
	case isSpace(ch):
		return l.scanWhitespace(start)
	case ch == '/' && l.peekN(1) == '/':
		return l.scanLineComment(start)
	case ch == '/' && l.peekN(1) == '*':
		return l.scanBlockComment(start)
	case isLetter(ch):
		return l.scanIdentOrKeyword(start)
	case isDigit(ch):
		return l.scanInteger(start)
	case ch == '"':
		return l.scanString(start)
	}

	if n := l.vocab.MatchSymbol(l.input[l.pos:]); n > 0 {
		l.advanceN(n)
		return l.token(token.Symbol, start)
	}

	// Consume a whole rune so error spans stay on character boundaries.
	_, width := utf8.DecodeRune(l.input[l.pos:])
	l.advanceN(width)
	return l.token(token.Error, start)
}

func (l *Lexer) scanWhitespace(start token.Position) token.Token {
	for isSpace(l.peek()) && !l.atEnd() {
		l.advance()
	}
	return l.token(token.Whitespace, start)
}

func (l *Lexer) scanLineComment(start token.Position) token.Token {
	l.advanceN(2)
	for !l.atEnd() && l.peek() != '\n' && l.peek() != '\r' {
		l.advance()
	}
	return l.token(token.LineComment, start)
}

func (l *Lexer) scanBlockComment(start token.Position) token.Token {
	l.advanceN(2)
	for !l.atEnd() {
		if l.peek() == '*' && l.peekN(1) == '/' {
			l.advanceN(2)
			return l.token(token.BlockComment, start)
		}
		l.advance()
	}
	return l.token(token.Error, start)
}

func (l *Lexer) scanIdentOrKeyword(start token.Position) token.Token {
	for isLetter(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}
	tok := l.token(token.Identifier, start)
	if l.vocab.IsKeyword(tok.Literal) {
		tok.Kind = token.Keyword
	}
	return tok
}

func (l *Lexer) scanInteger(start token.Position) token.Token {
	for isDigit(l.peek()) {
		l.advance()
	}
	return l.token(token.Integer, start)
}

func (l *Lexer) scanString(start token.Position) token.Token {
	l.advance()
	for !l.atEnd() {
		switch l.peek() {
		case '"':
			l.advance()
			return l.token(token.String, start)
		case '\n', '\r':
			return l.token(token.Error, start)
		}
		l.advance()
	}
	return l.token(token.Error, start)
}

func (l *Lexer) token(kind token.Kind, start token.Position) token.Token {
	end := l.Position()
	return token.Token{
		Kind:    kind,
		Span:    token.Span{Start: start, End: end},
		Literal: string(l.input[start.Offset:end.Offset]),
	}
}

// Describe explains why tok is an Error token.
func Describe(tok token.Token) string {
	switch {
	case len(tok.Literal) >= 2 && tok.Literal[:2] == "/*":
		return "unterminated comment"
	case len(tok.Literal) >= 1 && tok.Literal[0] == '"':
		return "unterminated string constant"
	}
	return fmt.Sprintf("unrecognized character %q", tok.Literal)
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
