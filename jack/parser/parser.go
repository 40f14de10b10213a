package parser

import (
	"github.com/tliron/commonlog"

	"github.com/jreyes33/jackparse/jack/cst"
	"github.com/jreyes33/jackparse/jack/grammar"
	"github.com/jreyes33/jackparse/jack/lexer"
	"github.com/jreyes33/jackparse/jack/token"
)

// TokenSource yields tokens one at a time. After the last token it must
// keep returning EOF. A *lexer.Lexer is a TokenSource.
type TokenSource interface {
	Next() token.Token
}

type lookahead struct {
	tok    token.Token
	trivia []token.Token // whitespace, comments and lexer errors before tok
}

// frame is a rule being parsed. prod is nil for expression rules.
type frame struct {
	rule  *grammar.Rule
	prod  *grammar.Production
	index int
}

// Parser interprets a grammar table over a token stream. A Parser may be
// reused for several inputs in sequence but not concurrently; separate
// Parsers sharing one table can run in parallel.
type Parser struct {
	table    *grammar.Table
	file     string
	comments bool
	maxDepth int
	syncStop map[string]bool
	syncSkip map[string]bool
	log      commonlog.Logger

	src      TokenSource
	b        *cst.Builder
	la       [2]lookahead
	nla      int
	prevEnd  token.Position
	frames   []frame
	unwind   int // index of the frame being unwound to, or -1
	consumed int
	lastFail int // offset of the last recovery
	owing    int // offset of a stop token the top frame still expects, or -1
	quiet    bool
	diags    []cst.Diagnostic
}

func New(table *grammar.Table, opts ...Option) *Parser {
	p := &Parser{
		table:    table,
		maxDepth: DefaultMaxDepth,
		log:      commonlog.GetLogger("jack.parser"),
	}
	sync := table.Sync()
	p.setSync(sync.Stop, sync.Consume)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses src with the Jack grammar.
func Parse(src []byte, opts ...Option) (*cst.Tree, error) {
	return New(grammar.Jack(), opts...).Parse(src)
}

func (p *Parser) setSync(stop, consume []string) {
	p.syncStop = make(map[string]bool, len(stop))
	for _, s := range stop {
		p.syncStop[s] = true
	}
	p.syncSkip = make(map[string]bool, len(consume))
	for _, s := range consume {
		p.syncSkip[s] = true
	}
}

// Parse tokenizes and parses src. Malformed input yields a tree with
// error nodes and diagnostics; the only error is *EmptyInputError.
func (p *Parser) Parse(src []byte) (*cst.Tree, error) {
	tree, err := p.ParseTokens(lexer.New(p.table, src, lexer.WithFile(p.file)))
	if err != nil {
		return nil, err
	}
	tree.Source = src
	return tree, nil
}

// ParseTokens parses the tokens of ts. The root spans from the origin to
// the end of the EOF token.
func (p *Parser) ParseTokens(ts TokenSource) (*cst.Tree, error) {
	p.reset(ts)
	defer p.release()

	first := p.entry(0)
	if first.tok.Kind == token.EOF && !hasLexError(first.trivia) {
		return nil, &EmptyInputError{File: p.file}
	}

	root := p.parseRoot()
	cst.SortDiagnostics(p.diags)
	return &cst.Tree{Root: root, Diagnostics: p.diags}, nil
}

func (p *Parser) reset(ts TokenSource) {
	p.src = ts
	p.b = cst.NewBuilder()
	p.la = [2]lookahead{}
	p.nla = 0
	p.prevEnd = token.Position{File: p.file, Line: 1, Column: 1}
	p.frames = p.frames[:0]
	p.unwind = -1
	p.consumed = 0
	p.lastFail = -1
	p.owing = -1
	p.quiet = false
	p.diags = nil
}

func (p *Parser) release() {
	p.src = nil
	p.b = nil
	p.la = [2]lookahead{}
	p.nla = 0
	clear(p.frames)
	p.frames = p.frames[:0]
	p.diags = nil
}

func hasLexError(trivia []token.Token) bool {
	for _, tok := range trivia {
		if tok.Kind == token.Error {
			return true
		}
	}
	return false
}

func (p *Parser) fill(n int) {
	for p.nla < n {
		var trivia []token.Token
		for {
			tok := p.src.Next()
			if tok.IsTrivia() || tok.Kind == token.Error {
				trivia = append(trivia, tok)
				continue
			}
			p.la[p.nla] = lookahead{tok: tok, trivia: trivia}
			p.nla++
			break
		}
	}
}

func (p *Parser) entry(i int) lookahead {
	p.fill(i + 1)
	return p.la[i]
}

func (p *Parser) peek(i int) token.Token {
	return p.entry(i).tok
}

// advance removes the next significant token from the lookahead after
// flushing the trivia in front of it into the open node.
func (p *Parser) advance() token.Token {
	p.fill(1)
	next := p.la[0]
	p.la[0], p.la[1] = p.la[1], lookahead{}
	p.nla--
	p.flushTrivia(next.trivia)
	return next.tok
}

func (p *Parser) flushTrivia(trivia []token.Token) {
	for _, tok := range trivia {
		switch {
		case tok.Kind == token.Error:
			p.b.Token(tok, cst.ErrorKind, true, "")
			p.diagnose(cst.Diagnostic{
				Span:     tok.Span,
				Message:  lexer.Describe(tok),
				Severity: cst.SeverityError,
				Code:     cst.LexError,
			})
		case tok.IsComment() && p.comments:
			kind, named := p.table.LeafKind(tok)
			p.b.Token(tok, kind, named, "")
		}
	}
}

// startNode opens a node at the next significant token. Trivia before
// that token stays with the enclosing node.
func (p *Parser) startNode(kind, field string) {
	p.fill(1)
	p.flushTrivia(p.la[0].trivia)
	p.la[0].trivia = nil
	p.b.StartNode(kind, field, p.la[0].tok.Span.Start)
}

func (p *Parser) finishNode() *cst.Node {
	return p.b.FinishNode(p.prevEnd)
}

// consume adds the next token as a leaf named after sym.
func (p *Parser) consume(sym grammar.Symbol) {
	tok := p.advance()
	kind, named := p.table.LeafKind(tok)
	if sym.Alias != "" {
		kind, named = sym.Alias, true
	}
	p.b.Token(tok, kind, named, sym.Field)
	p.prevEnd = tok.Span.End
	p.consumed++
	if msg, bad := p.table.Check(tok); bad {
		p.diagnose(cst.Diagnostic{
			Span:     tok.Span,
			Message:  msg,
			Severity: cst.SeverityWarning,
			Code:     cst.LexError,
		})
	}
}

func (p *Parser) diagnose(d cst.Diagnostic) {
	p.diags = append(p.diags, d)
}

func (p *Parser) choose(rule *grammar.Rule) *grammar.Production {
	if prods := p.table.Resolve(rule.Name, p.peek(0), p.peek(1)); len(prods) > 0 {
		return prods[0]
	}
	return &rule.Alternatives[0]
}

func (p *Parser) parseRoot() *cst.Node {
	rule := p.table.Rule(p.table.Start())
	origin := p.prevEnd
	p.b.StartNode(rule.Kind(), "", origin)

	for {
		before := p.consumed
		p.frames = append(p.frames[:0], frame{rule: rule, prod: p.choose(rule)})
		p.parseProduction()
		p.frames = p.frames[:0]
		p.unwind = -1

		la := p.peek(0)
		if la.Kind == token.EOF {
			break
		}
		if p.consumed == before || !p.table.Starts(rule.Name, la) {
			p.skipStray(rule)
		}
		p.quiet = false
	}

	eof := p.advance()
	return p.b.Finish(token.Span{Start: origin, End: eof.Span.End})
}

// skipStray wraps tokens that cannot start the root rule in an error node.
func (p *Parser) skipStray(root *grammar.Rule) {
	first := p.peek(0)
	p.startNode(cst.ErrorKind, "")
	p.consume(grammar.Symbol{})
	for {
		la := p.peek(0)
		if la.Kind == token.EOF || p.table.Starts(root.Name, la) {
			break
		}
		p.consume(grammar.Symbol{})
	}
	n := p.finishNode()
	if p.quiet {
		return
	}
	p.syntaxError(n.Span(), "unexpected %s", grammar.Describe(first))
}

func nodeKind(rule *grammar.Rule, sym grammar.Symbol) string {
	if sym.Alias != "" {
		return sym.Alias
	}
	return rule.Kind()
}

func (p *Parser) parseRule(rule *grammar.Rule, sym grammar.Symbol) {
	if len(p.frames) >= p.maxDepth {
		p.tooDeep()
		return
	}
	if rule.IsExpression() {
		p.parseExpression(rule, sym)
		return
	}

	prod := p.choose(rule)
	if !rule.Inline {
		p.startNode(nodeKind(rule, sym), sym.Field)
	}
	p.frames = append(p.frames, frame{rule: rule, prod: prod})
	p.parseProduction()
	p.frames = p.frames[:len(p.frames)-1]
	if !rule.Inline {
		p.finishNode()
	}
}

// parseProduction walks the symbols of the top frame's production.
func (p *Parser) parseProduction() {
	f := len(p.frames) - 1
	symbols := p.frames[f].prod.Symbols
	for i, sym := range symbols {
		p.frames[f].index = i
		switch sym.Quant {
		case grammar.One:
			p.parseSymbol(sym)
		case grammar.Optional:
			if p.table.StartsSymbol(sym, p.peek(0)) {
				p.parseSymbol(sym)
			}
		case grammar.Many:
			for {
				if !p.table.StartsSymbol(sym, p.peek(0)) {
					if p.stray() && !p.deferred(f, i) && p.recover(sym) {
						continue
					}
					break
				}
				before := p.consumed
				p.parseSymbol(sym)
				if p.abandon(f) {
					return
				}
				if p.consumed == before {
					break
				}
			}
		}
		if p.abandon(f) {
			return
		}
	}
}

// parseSymbol parses one occurrence of sym, recovering as often as
// recovery asks to retry.
func (p *Parser) parseSymbol(sym grammar.Symbol) {
	for {
		la := p.peek(0)
		if sym.IsTerminal() {
			if sym.Matches(la) {
				p.consume(sym)
				return
			}
		} else if p.table.Starts(sym.Rule, la) || p.table.Nullable(sym.Rule) {
			p.parseRule(p.table.Rule(sym.Rule), sym)
			return
		}
		if !p.recover(sym) {
			return
		}
	}
}

// abandon reports whether frame f has to stop because recovery is
// unwinding to a frame below it. Reaching the target ends the unwind.
func (p *Parser) abandon(f int) bool {
	switch {
	case p.unwind < 0:
		return false
	case p.unwind < f:
		return true
	}
	p.unwind = -1
	return false
}

func (p *Parser) unwindTo(k int) {
	if k < len(p.frames)-1 {
		p.unwind = k
	}
}

func (p *Parser) tooDeep() {
	la := p.peek(0)
	p.syntaxError(la.Span, "nesting exceeds the maximum depth of %d", p.maxDepth)
	p.log.Debugf("%s: depth limit reached, unwinding to the root", la.Span.Start)
	p.quiet = true
	p.unwindTo(0)
}
