package parser

import (
	"fmt"

	"github.com/jreyes33/jackparse/jack/cst"
	"github.com/jreyes33/jackparse/jack/grammar"
	"github.com/jreyes33/jackparse/jack/token"
)

// recover is called when the next token cannot start sym. It adds exactly
// one synthetic node and one diagnostic, and reports whether sym should
// be tried again at the new position.
//
// At end of input the symbol is marked missing and every open frame
// unwinds to the root. If the token fits what follows sym, sym is marked
// missing and parsing goes on. Otherwise tokens are skipped into an error
// node until one starts sym, fits what follows, or belongs to the
// synchronization set; if the production still cannot continue, frames
// unwind to the nearest one that accepts the token.
func (p *Parser) recover(sym grammar.Symbol) bool {
	la := p.peek(0)
	if la.Span.Start.Offset == p.owing && p.follows(la) {
		// Already reported when the stop token was first seen.
		p.missing(sym)
		return false
	}
	expected := expectation(sym)
	forced := la.Span.Start.Offset == p.lastFail
	p.lastFail = la.Span.Start.Offset

	if la.Kind == token.EOF {
		p.missing(sym)
		p.syntaxError(la.Span, "unexpected end of input, expected %s", expected)
		p.log.Debugf("%s: end of input while expecting %s", la.Span.Start, expected)
		p.unwindTo(0)
		return false
	}

	if !forced && p.follows(la) {
		p.missing(sym)
		p.syntaxError(la.Span, "expected %s, found %s", expected, grammar.Describe(la))
		p.log.Debugf("%s: inserted missing %s", la.Span.Start, expected)
		return false
	}

	skipped, span := p.skip(sym, forced)
	if skipped == 0 {
		p.missing(sym)
		p.syntaxError(la.Span, "expected %s, found %s", expected, grammar.Describe(la))
	} else {
		p.syntaxError(span, "unexpected %s, expected %s", grammar.Describe(la), expected)
		p.log.Debugf("%s: skipped %d tokens while expecting %s", la.Span.Start, skipped, expected)
	}

	next := p.peek(0)
	switch {
	case next.Kind == token.EOF:
		p.unwindTo(0)
		return false
	case p.table.StartsSymbol(sym, next):
		return true
	case p.follows(next):
		return false
	case p.owes(next):
		p.owing = next.Span.Start.Offset
		return false
	}

	target := p.target(next)
	p.log.Debugf("%s: unwinding from depth %d to %d", next.Span.Start, len(p.frames)-1, target)
	p.unwindTo(target)
	return false
}

// skip moves tokens into an error node until one starts sym, fits the
// follow context, or is a stop token. A consume token is skipped and ends
// the run. When forced, the first token is skipped unconditionally.
func (p *Parser) skip(sym grammar.Symbol, forced bool) (int, token.Span) {
	n := 0
	for {
		la := p.peek(0)
		if la.Kind == token.EOF {
			break
		}
		key := syncKey(la)
		if n > 0 || !forced {
			if p.table.StartsSymbol(sym, la) || p.follows(la) || p.stopsAt(la) {
				break
			}
		}
		if n == 0 {
			p.startNode(cst.ErrorKind, "")
		}
		p.consume(grammar.Symbol{})
		n++
		if p.syncSkip[key] {
			break
		}
	}
	if n == 0 {
		return 0, token.Span{}
	}
	return n, p.finishNode().Span()
}

// stopsAt reports whether tok is a stop token some open frame can use.
// Stop tokens nobody accepts are skipped like any other.
func (p *Parser) stopsAt(tok token.Token) bool {
	if !p.syncStop[syncKey(tok)] {
		return false
	}
	for k := range p.frames {
		if ok, _ := p.frameAccepts(k, tok); ok {
			return true
		}
	}
	return false
}

// owes reports whether tok is a stop token the top frame reaches through
// required terminals and nullable symbols only. The frame then stays open
// and the terminals before tok are marked missing without further
// diagnostics.
func (p *Parser) owes(tok token.Token) bool {
	if !p.syncStop[syncKey(tok)] || len(p.frames) == 0 {
		return false
	}
	f := p.frames[len(p.frames)-1]
	if f.prod == nil {
		return false
	}
	for _, s := range f.prod.Symbols[f.index+1:] {
		switch {
		case s.IsTerminal() && s.Matches(tok):
			return true
		case s.IsTerminal() && s.Quant == grammar.One, p.table.NullableSymbol(s):
			continue
		}
		return false
	}
	return false
}

// deferred reports whether junk met by the repetition at index i of frame
// f is better left to a nullable rule later in the production, such as the
// statements after the variable declarations of a subroutine body.
func (p *Parser) deferred(f, i int) bool {
	fr := p.frames[f]
	if fr.prod == nil {
		return false
	}
	for _, s := range fr.prod.Symbols[i+1:] {
		if !p.table.NullableSymbol(s) {
			return false
		}
		if !s.IsTerminal() {
			return true
		}
	}
	return false
}

// stray reports whether the next token is junk inside a repetition: it
// neither continues the enclosing frames nor is a stop token they can use.
func (p *Parser) stray() bool {
	la := p.peek(0)
	return la.Kind != token.EOF && !p.quiet && !p.follows(la) && !p.stopsAt(la)
}

// expectation names sym for a diagnostic, without its quantifier.
func expectation(sym grammar.Symbol) string {
	sym.Quant = grammar.One
	return sym.String()
}

func syncKey(tok token.Token) string {
	switch tok.Kind {
	case token.Keyword, token.Symbol:
		return tok.Literal
	}
	return ""
}

// frameAccepts reports whether tok can come next in frame k once the
// child it is parsing is done, and whether the rest of the frame can be
// empty.
func (p *Parser) frameAccepts(k int, tok token.Token) (ok, nullable bool) {
	f := p.frames[k]
	if f.prod == nil {
		return p.table.Infix(f.rule.Name, tok) != nil, true
	}
	current := f.prod.Symbols[f.index]
	if current.Quant == grammar.Many && p.table.StartsSymbol(current, tok) {
		return true, false
	}
	return p.table.Accepts(f.prod.Symbols[f.index+1:], tok)
}

// follows reports whether tok can come next if the symbol the top frame
// is parsing were skipped. Empty remainders let enclosing frames decide.
func (p *Parser) follows(tok token.Token) bool {
	for k := len(p.frames) - 1; k >= 0; k-- {
		ok, nullable := p.frameAccepts(k, tok)
		if ok {
			return true
		}
		if !nullable {
			return false
		}
	}
	return tok.Kind == token.EOF
}

// target finds the innermost frame that can continue with tok, or the root.
func (p *Parser) target(tok token.Token) int {
	for k := len(p.frames) - 1; k > 0; k-- {
		if ok, _ := p.frameAccepts(k, tok); ok {
			return k
		}
	}
	return 0
}

// missing adds a zero-width node for sym right after the last thing built.
func (p *Parser) missing(sym grammar.Symbol) {
	kind, named := p.symbolKind(sym)
	at := p.b.Frontier()
	if p.prevEnd.Offset > at.Offset {
		at = p.prevEnd
	}
	p.b.Missing(kind, named, sym.Field, at)
}

func (p *Parser) symbolKind(sym grammar.Symbol) (string, bool) {
	if sym.Alias != "" {
		return sym.Alias, true
	}
	if sym.IsTerminal() {
		return p.table.LeafKind(token.Token{Kind: sym.Kind, Literal: sym.Text})
	}
	rule := p.table.Rule(sym.Rule)
	if rule.Inline && len(rule.Alternatives[0].Symbols) > 0 {
		return p.symbolKind(rule.Alternatives[0].Symbols[0])
	}
	return rule.Kind(), true
}

func (p *Parser) syntaxError(span token.Span, format string, args ...any) {
	p.diagnose(cst.Diagnostic{
		Span:     span,
		Message:  fmt.Sprintf(format, args...),
		Severity: cst.SeverityError,
		Code:     cst.SyntaxError,
	})
}
