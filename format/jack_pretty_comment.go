package format

import (
	"github.com/jreyes33/jackparse/jack/cst"
)

// printComment keeps a comment that shares a line with the previous token
// on that line and puts any other comment on a line of its own.
func (p *JackPrettyPrinter) printComment(n *cst.Node) {
	s := n.Span()
	if p.lastLine > 0 && s.Start.Line == p.lastLine {
		// Owed newlines are still unwritten, so this lands on the
		// previous token's line.
		p.write(" " + n.Text())
		if p.pending == 0 && !isLineComment(n) {
			p.prev = n
		}
	} else {
		p.newline()
		p.keepBlankLine(n)
		p.text(n.Text())
		p.newline()
	}
	p.lastLine = s.End.Line
	if isLineComment(n) {
		p.newline()
	}
}
