package parser

import (
	"github.com/tliron/commonlog"
)

// DefaultMaxDepth bounds the number of nested rules being parsed at once.
const DefaultMaxDepth = 2048

type Option func(*Parser)

// WithFile stamps positions and diagnostics with path.
func WithFile(path string) Option {
	return func(p *Parser) {
		p.file = path
	}
}

// WithComments keeps comments in the tree as comment leaves.
func WithComments() Option {
	return func(p *Parser) {
		p.comments = true
	}
}

func WithMaxDepth(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxDepth = n
		}
	}
}

// WithSyncSet replaces the table's synchronization set. Recovery stops
// before a stop lexeme and skips through a consume lexeme.
func WithSyncSet(stop, consume []string) Option {
	return func(p *Parser) {
		p.setSync(stop, consume)
	}
}

func WithLogger(log commonlog.Logger) Option {
	return func(p *Parser) {
		p.log = log
	}
}
