// Package parser builds concrete syntax trees for Jack programs by
// interpreting a grammar table.
//
// # Overview
//
// The parser is table-driven: it knows nothing about Jack itself. Every
// decision comes from a *grammar.Table, so the same code parses the
// standard grammar and variants such as grammar.JackStrict.
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Input     │────▶│   Lexer     │────▶│   Parser    │
//	│  (bytes)    │     │  (tokens)   │     │   (CST)     │
//	└─────────────┘     └─────────────┘     └─────────────┘
//	                                               │
//	                                               ▼
//	                                        ┌─────────────┐
//	                                        │  Grammar    │
//	                                        │  Table      │
//	                                        └─────────────┘
//
// Rules are parsed by recursive descent with two tokens of lookahead.
// Expression rules are parsed by precedence climbing over the table's
// binary operators, so "1 + 2 * 3" groups the way the chosen table says.
//
// # Trees
//
// The result is a *cst.Tree. Every significant token appears as a leaf,
// the root spans the whole input and every node's span covers its
// children. Whitespace never appears in the tree; comments appear only
// with WithComments.
//
// # Error Recovery
//
// Parse never fails on malformed input. Each problem adds one diagnostic
// and one synthetic node:
//
//   - A MISSING leaf or node when the next token fits what comes after
//     the expected symbol, as in "let x = ;".
//   - An ERROR node holding skipped tokens otherwise. Skipping stops
//     before a token the enclosing rules can use and after a ";".
//   - At end of input, MISSING nodes close every open rule.
//
// Lexer errors become ERROR leaves with a lex diagnostic. Integer
// constants above 32767 produce a warning.
//
//	(program (class_declaration name: (identifier) body: (class_body
//	  (function_declaration name: (identifier) parameters: (parameter_list)
//	    body: (subroutine_body (statements (statement
//	      (let_statement name: (identifier) value: (MISSING expression)))))))))
//
// # Example Usage
//
//	tree, err := parser.Parse(src, parser.WithFile("Main.jack"))
//	if errors.Is(err, parser.ErrEmptyInput) {
//	    return
//	}
//	for _, d := range tree.Diagnostics {
//	    fmt.Println(d)
//	}
//	fmt.Println(tree.Root.SExpr())
//
// A Parser is not safe for concurrent use. Tables are immutable and can
// be shared by any number of parsers.
package parser
