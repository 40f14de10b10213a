package cst

import (
	"slices"

	"github.com/jreyes33/jackparse/jack/token"
)

// Builder assembles a tree bottom-up from a stream of start, leaf and
// finish events. Nodes are attached to their parent as soon as they are
// started, so the order of events is the order of children.
type Builder struct {
	stack []*Node
	root  *Node
}

// Checkpoint marks a position among the children of the open node. A
// later StartNodeAt can wrap everything added after it.
type Checkpoint struct {
	depth int
	index int
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Depth is the number of open nodes.
func (b *Builder) Depth() int {
	return len(b.stack)
}

func (b *Builder) current() *Node {
	if len(b.stack) == 0 {
		panic("cst: no open node")
	}
	return b.stack[len(b.stack)-1]
}

func (b *Builder) attach(n *Node) {
	if len(b.stack) == 0 {
		if b.root != nil {
			panic("cst: tree already has a root")
		}
		b.root = n
		return
	}
	parent := b.current()
	parent.children = append(parent.children, n)
}

// StartNode opens a node at start. The first node started becomes the root.
func (b *Builder) StartNode(kind, field string, start token.Position) {
	n := &Node{
		kind:  kind,
		field: field,
		span:  token.Span{Start: start, End: start},
		named: true,
	}
	b.attach(n)
	b.stack = append(b.stack, n)
}

// Token adds a leaf for tok to the open node.
func (b *Builder) Token(tok token.Token, kind string, named bool, field string) {
	b.attach(&Node{
		kind:  kind,
		field: field,
		span:  tok.Span,
		tok:   &tok,
		named: named,
	})
}

// Missing adds a zero-width placeholder for something the input lacks.
func (b *Builder) Missing(kind string, named bool, field string, at token.Position) {
	b.attach(&Node{
		kind:    kind,
		field:   field,
		span:    token.Span{Start: at, End: at},
		named:   named,
		missing: true,
	})
}

func (b *Builder) Checkpoint() Checkpoint {
	return Checkpoint{depth: len(b.stack), index: len(b.current().children)}
}

// StartNodeAt opens a node that adopts every child added to the open node
// since cp. Only the adopted children are moved.
func (b *Builder) StartNodeAt(cp Checkpoint, kind, field string) {
	if cp.depth != len(b.stack) {
		panic("cst: checkpoint belongs to another node")
	}
	parent := b.current()
	adopted := slices.Clone(parent.children[cp.index:])
	start := b.Frontier()
	if len(adopted) > 0 {
		start = adopted[0].span.Start
	}
	n := &Node{
		kind:     kind,
		field:    field,
		span:     token.Span{Start: start, End: start},
		children: adopted,
		named:    true,
	}
	parent.children = append(parent.children[:cp.index], n)
	b.stack = append(b.stack, n)
}

// SetChildField names the most recently added child of the open node.
func (b *Builder) SetChildField(field string) {
	if field == "" {
		return
	}
	n := b.current()
	if len(n.children) == 0 {
		return
	}
	n.children[len(n.children)-1].field = field
}

// Frontier is the position just after the last child of the open node,
// or its start when it has none.
func (b *Builder) Frontier() token.Position {
	n := b.current()
	pos := n.span.Start
	if len(n.children) > 0 {
		if last := n.children[len(n.children)-1].span.End; last.Offset > pos.Offset {
			pos = last
		}
	}
	return pos
}

// FinishNode closes the open node. Its span ends at end, widened as
// needed to cover its children.
func (b *Builder) FinishNode(end token.Position) *Node {
	n := b.current()
	b.stack = b.stack[:len(b.stack)-1]
	n.span = cover(token.Span{Start: n.span.Start, End: end}, n.children)
	return n
}

// Finish closes every open node and gives the root the span s.
func (b *Builder) Finish(s token.Span) *Node {
	for len(b.stack) > 1 {
		b.FinishNode(b.Frontier())
	}
	if len(b.stack) == 1 {
		b.stack = b.stack[:0]
	}
	if b.root == nil {
		return nil
	}
	b.root.span = cover(s, b.root.children)
	return b.root
}

func cover(s token.Span, children []*Node) token.Span {
	if s.End.Offset < s.Start.Offset {
		s.End = s.Start
	}
	if len(children) == 0 {
		return s
	}
	if first := children[0].span.Start; first.Offset < s.Start.Offset {
		s.Start = first
	}
	if last := children[len(children)-1].span.End; last.Offset > s.End.Offset {
		s.End = last
	}
	return s
}
