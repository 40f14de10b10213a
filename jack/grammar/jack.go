package grammar

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/jreyes33/jackparse/jack/token"
)

var ErrUnknownGrammar = errors.New("unknown grammar")

const maxJackInteger = 32767

var (
	jackTable = sync.OnceValue(func() *Table {
		return MustNew(JackSpec(cLikeOperators()))
	})
	jackStrictTable = sync.OnceValue(func() *Table {
		spec := JackSpec(flatOperators())
		spec.Name = "jack-strict"
		return MustNew(spec)
	})
)

// Jack returns the Jack grammar with conventional operator precedence:
// * and / bind tighter than + and -, then comparisons, then =, & and |.
func Jack() *Table {
	return jackTable()
}

// JackStrict returns the Jack grammar as the language definition states
// it: all binary operators share one level and group left to right.
func JackStrict() *Table {
	return jackStrictTable()
}

var builtins = map[string]func() *Table{
	"jack":        Jack,
	"jack-strict": JackStrict,
}

// Lookup returns a built-in table by name.
func Lookup(name string) (*Table, error) {
	build, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %v)", ErrUnknownGrammar, name, Names())
	}
	return build(), nil
}

// Names lists the built-in table names.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func binary(expr string, ops ...string) []Production {
	prods := make([]Production, len(ops))
	for i, op := range ops {
		prods[i] = Seq(
			Ref(expr).InField("left"),
			Punct(op).InField("operator"),
			Ref(expr).InField("right"),
		)
	}
	return prods
}

func operatorRule(name string, prec int, ops ...string) Rule {
	return Rule{
		Name:         name,
		Node:         "binary_expression",
		Precedence:   prec,
		Assoc:        Left,
		Alternatives: binary("expression", ops...),
	}
}

func cLikeOperators() []Rule {
	return []Rule{
		operatorRule("_or", 1, "|"),
		operatorRule("_and", 2, "&"),
		operatorRule("_equality", 3, "="),
		operatorRule("_relational", 4, "<", ">"),
		operatorRule("_additive", 5, "+", "-"),
		operatorRule("_multiplicative", 6, "*", "/"),
	}
}

func flatOperators() []Rule {
	return []Rule{
		operatorRule("_binary", 1, "+", "-", "*", "/", "&", "|", "<", ">", "="),
	}
}

func checkInteger(tok token.Token) (string, bool) {
	if tok.Kind != token.Integer {
		return "", false
	}
	n, err := strconv.Atoi(tok.Literal)
	if err == nil && n <= maxJackInteger {
		return "", false
	}
	return fmt.Sprintf("integer constant %s is out of range (0..%d)", tok.Literal, maxJackInteger), true
}

// JackSpec returns the Jack rules with the given operator rules plugged
// into expression.
func JackSpec(operators []Rule) Spec {
	ident := Token(token.Identifier)
	typ := Ref("type")

	exprAlts := make([]Production, len(operators))
	for i, op := range operators {
		exprAlts[i] = Seq(Ref(op.Name))
	}

	rules := []Rule{
		{Name: "program", Alternatives: []Production{
			Seq(Ref("class_declaration").Many()),
		}},
		{Name: "class_declaration", Alternatives: []Production{
			Seq(Keyword("class"), ident.InField("name"), Ref("class_body").InField("body")),
		}},
		{Name: "class_body", Alternatives: []Production{
			Seq(Punct("{"), Ref("_class_member").Many(), Punct("}")),
		}},
		{Name: "_class_member", Inline: true, Alternatives: []Production{
			Seq(Ref("class_variable_declaration")),
			Seq(Ref("function_declaration")),
		}},
		{Name: "class_variable_declaration", Alternatives: []Production{
			Seq(Ref("_class_variable_scope"), typ, ident.InField("name"), Ref("_more_names").Many(), Punct(";")),
		}},
		{Name: "_class_variable_scope", Inline: true, Alternatives: []Production{
			Seq(Keyword("static")),
			Seq(Keyword("field")),
		}},
		{Name: "_more_names", Inline: true, Alternatives: []Production{
			Seq(Punct(","), ident.InField("name")),
		}},
		{Name: "type", Alternatives: []Production{
			Seq(Keyword("int")),
			Seq(Keyword("char")),
			Seq(Keyword("boolean")),
			Seq(ident),
		}},
		{Name: "function_declaration", Alternatives: []Production{
			Seq(
				Ref("_subroutine_kind"),
				Ref("_return_type"),
				ident.InField("name"),
				Ref("parameter_list").InField("parameters"),
				Ref("subroutine_body").InField("body"),
			),
		}},
		{Name: "_subroutine_kind", Inline: true, Alternatives: []Production{
			Seq(Keyword("constructor")),
			Seq(Keyword("function")),
			Seq(Keyword("method")),
		}},
		{Name: "_return_type", Inline: true, Alternatives: []Production{
			Seq(Keyword("void")),
			Seq(typ),
		}},
		{Name: "parameter_list", Alternatives: []Production{
			Seq(Punct("("), Ref("_parameters").Opt(), Punct(")")),
		}},
		{Name: "_parameters", Inline: true, Alternatives: []Production{
			Seq(Ref("parameter"), Ref("_more_parameters").Many()),
		}},
		{Name: "_more_parameters", Inline: true, Alternatives: []Production{
			Seq(Punct(","), Ref("parameter")),
		}},
		{Name: "parameter", Alternatives: []Production{
			Seq(typ, ident.InField("name")),
		}},
		{Name: "subroutine_body", Alternatives: []Production{
			Seq(Punct("{"), Ref("var_declaration").Many(), Ref("statements"), Punct("}")),
		}},
		{Name: "var_declaration", Alternatives: []Production{
			Seq(Keyword("var"), typ, ident.InField("name"), Ref("_more_names").Many(), Punct(";")),
		}},
		{Name: "statements", Alternatives: []Production{
			Seq(Ref("statement").Many()),
		}},
		{Name: "statement", Alternatives: []Production{
			Seq(Ref("let_statement")),
			Seq(Ref("if_statement")),
			Seq(Ref("while_statement")),
			Seq(Ref("do_statement")),
			Seq(Ref("return_statement")),
		}},
		{Name: "let_statement", Alternatives: []Production{
			Seq(
				Keyword("let"),
				ident.InField("name"),
				Ref("_index").Opt(),
				Punct("="),
				Ref("expression").InField("value"),
				Punct(";"),
			),
		}},
		{Name: "_index", Inline: true, Alternatives: []Production{
			Seq(Punct("["), Ref("expression").InField("index"), Punct("]")),
		}},
		{Name: "if_statement", Alternatives: []Production{
			Seq(
				Keyword("if"),
				Punct("("), Ref("expression").InField("condition"), Punct(")"),
				Punct("{"), Ref("statements").InField("consequence"), Punct("}"),
				Ref("else_clause").Opt().InField("alternative"),
			),
		}},
		{Name: "else_clause", Alternatives: []Production{
			Seq(Keyword("else"), Punct("{"), Ref("statements"), Punct("}")),
		}},
		{Name: "while_statement", Alternatives: []Production{
			Seq(
				Keyword("while"),
				Punct("("), Ref("expression").InField("condition"), Punct(")"),
				Punct("{"), Ref("statements").InField("body"), Punct("}"),
			),
		}},
		{Name: "do_statement", Alternatives: []Production{
			Seq(Keyword("do"), Ref("subroutine_call"), Punct(";")),
		}},
		{Name: "return_statement", Alternatives: []Production{
			Seq(Keyword("return"), Ref("expression").Opt().InField("value"), Punct(";")),
		}},
		{Name: "expression", Operand: "term", Alternatives: exprAlts},
		{Name: "term", Alternatives: []Production{
			Seq(Token(token.Integer)),
			Seq(Token(token.String)),
			Seq(Ref("keyword_constant")),
			Seq(ident),
			Seq(Ref("array_access")),
			Seq(Ref("subroutine_call")),
			Seq(Ref("parenthesized_expression")),
			Seq(Ref("unary_expression")),
		}},
		{Name: "keyword_constant", Alternatives: []Production{
			Seq(Keyword("true")),
			Seq(Keyword("false")),
			Seq(Keyword("null")),
			Seq(Keyword("this")),
		}},
		{Name: "array_access", Alternatives: []Production{
			Seq(ident.InField("name"), Punct("["), Ref("expression").InField("index"), Punct("]")),
		}},
		{Name: "subroutine_call", Alternatives: []Production{
			Seq(ident.InField("name"), Punct("("), Ref("expression_list").InField("arguments"), Punct(")")),
			Seq(
				ident.InField("object"), Punct("."), ident.InField("name"),
				Punct("("), Ref("expression_list").InField("arguments"), Punct(")"),
			),
		}},
		{Name: "expression_list", Alternatives: []Production{
			Seq(Ref("_expressions").Opt()),
		}},
		{Name: "_expressions", Inline: true, Alternatives: []Production{
			Seq(Ref("expression"), Ref("_more_expressions").Many()),
		}},
		{Name: "_more_expressions", Inline: true, Alternatives: []Production{
			Seq(Punct(","), Ref("expression")),
		}},
		{Name: "parenthesized_expression", Alternatives: []Production{
			Seq(Punct("("), Ref("expression"), Punct(")")),
		}},
		{Name: "unary_expression", Alternatives: []Production{
			Seq(Punct("-").InField("operator"), Ref("term").InField("operand")),
			Seq(Punct("~").InField("operator"), Ref("term").InField("operand")),
		}},
	}
	rules = append(rules, operators...)

	return Spec{
		Name:  "jack",
		Start: "program",
		Rules: rules,
		Sync: SyncSet{
			Stop: []string{
				"}", "class", "constructor", "function", "method", "field", "static",
				"var", "let", "do", "if", "while", "return",
			},
			Consume: []string{";"},
		},
		Check: checkInteger,
	}
}
