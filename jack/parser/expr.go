package parser

import (
	"github.com/jreyes33/jackparse/jack/grammar"
)

// parseExpression parses an expression rule by precedence climbing over
// its operand, using the table's binary operators.
func (p *Parser) parseExpression(rule *grammar.Rule, sym grammar.Symbol) {
	p.startNode(nodeKind(rule, sym), sym.Field)
	p.frames = append(p.frames, frame{rule: rule})
	f := len(p.frames) - 1
	p.parseBinary(rule, f, 0)
	p.frames = p.frames[:f]
	p.finishNode()
}

// parseBinary parses an operand followed by operators binding at least
// as tightly as minPrec. Each operator wraps everything parsed so far at
// this level as its left operand.
func (p *Parser) parseBinary(rule *grammar.Rule, f, minPrec int) {
	cp := p.b.Checkpoint()
	p.parseSymbol(grammar.Ref(rule.Operand))
	for !p.abandon(f) {
		op := p.table.Infix(rule.Name, p.peek(0))
		if op == nil || op.Precedence < minPrec {
			return
		}
		p.b.StartNodeAt(cp, op.Node, "")
		p.b.SetChildField(op.LeftField)
		p.consume(grammar.Symbol{Field: op.OperatorField})

		next := op.Precedence + 1
		if op.Assoc == grammar.Right {
			next = op.Precedence
		}
		p.parseBinary(rule, f, next)
		p.b.SetChildField(op.RightField)
		p.finishNode()
	}
}
