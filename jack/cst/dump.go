package cst

import (
	"strconv"
	"strings"
)

// String renders every node, one per line, indented by depth.
func (n *Node) String() string {
	var sb strings.Builder
	n.writeIndent(&sb, 0, false)
	return sb.String()
}

func (n *Node) StringWithPositions() string {
	var sb strings.Builder
	n.writeIndent(&sb, 0, true)
	return sb.String()
}

func (n *Node) writeIndent(sb *strings.Builder, indent int, showPositions bool) {
	sb.WriteString(strings.Repeat("  ", indent))
	if n.field != "" {
		sb.WriteString(n.field)
		sb.WriteString(": ")
	}
	if n.missing {
		sb.WriteString("MISSING ")
	}
	sb.WriteString(n.kind)
	if showPositions {
		sb.WriteString(" [")
		sb.WriteString(n.span.String())
		sb.WriteString("]")
	}
	if n.tok != nil && (n.named || n.IsError()) {
		sb.WriteString(" ")
		sb.WriteString(strconv.Quote(n.tok.Literal))
	}
	sb.WriteString("\n")

	for _, child := range n.children {
		child.writeIndent(sb, indent+1, showPositions)
	}
}

// SExpr renders the named structure of the tree as an S-expression, in the
// format tree-sitter prints syntax trees:
//
//	(program (class_declaration name: (identifier) body: (class_body)))
//
// Anonymous nodes are left out unless they are missing.
func (n *Node) SExpr() string {
	var sb strings.Builder
	n.writeSExpr(&sb)
	return sb.String()
}

func (n *Node) writeSExpr(sb *strings.Builder) {
	sb.WriteString("(")
	switch {
	case n.missing && n.named:
		sb.WriteString("MISSING ")
		sb.WriteString(n.kind)
	case n.missing:
		sb.WriteString("MISSING ")
		sb.WriteString(strconv.Quote(n.kind))
	default:
		sb.WriteString(n.kind)
	}
	for _, child := range n.children {
		if !child.named && !child.missing {
			continue
		}
		sb.WriteString(" ")
		if child.field != "" {
			sb.WriteString(child.field)
			sb.WriteString(": ")
		}
		child.writeSExpr(sb)
	}
	sb.WriteString(")")
}
