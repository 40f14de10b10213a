package grammar

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/exp/ebnf"

	"github.com/jreyes33/jackparse/jack/token"
)

// lexical productions for the token classes, in the order they are emitted
var lexical = []struct {
	name  string
	needs []token.Kind
	body  string
}{
	{"identifier", []token.Kind{token.Identifier}, `letter { letter | digit }`},
	{"integer_constant", []token.Kind{token.Integer}, `digit { digit }`},
	{"string_constant", []token.Kind{token.String}, `"\"" { character } "\""`},
	{"letter", []token.Kind{token.Identifier}, `"a" … "z" | "A" … "Z" | "_"`},
	{"digit", []token.Kind{token.Identifier, token.Integer}, `"0" … "9"`},
	{"character", []token.Kind{token.String}, `" " … "!" | "#" … "~"`},
}

// EBNF renders the table in the notation of golang.org/x/exp/ebnf.
// Nonterminals are written in CamelCase so the EBNF package treats them as
// non-lexical productions. Operator rules are folded into their
// expression rule.
func (t *Table) EBNF() string {
	return t.ebnf
}

// WriteEBNF writes the rendered grammar to w.
func (t *Table) WriteEBNF(w io.Writer) error {
	_, err := io.WriteString(w, t.ebnf)
	return err
}

// Verify checks the rendered grammar with ebnf.Verify: every production
// must be defined and reachable from the start rule.
func (t *Table) Verify() error {
	return VerifyEBNF(t.name+".ebnf", strings.NewReader(t.ebnf), ProductionName(t.start))
}

// VerifyEBNF parses an EBNF grammar from r and verifies it from start. An
// empty start only checks the syntax.
func VerifyEBNF(filename string, r io.Reader, start string) error {
	g, err := ebnf.Parse(filename, r)
	if err != nil {
		return fmt.Errorf("parse ebnf: %w", err)
	}
	if start == "" {
		return nil
	}
	if err := ebnf.Verify(g, start); err != nil {
		return fmt.Errorf("verify ebnf: %w", err)
	}
	return nil
}

// ProductionName converts a rule name such as class_declaration to the
// EBNF production name ClassDeclaration.
func ProductionName(rule string) string {
	var sb strings.Builder
	for _, part := range strings.Split(rule, "_") {
		if part == "" {
			continue
		}
		sb.WriteString(strings.ToUpper(part[:1]))
		sb.WriteString(part[1:])
	}
	return sb.String()
}

func (t *Table) render() string {
	var sb strings.Builder
	used := make(map[token.Kind]bool)
	for _, r := range t.order {
		if r.IsOperator() {
			continue
		}
		body := t.renderRule(r, used)
		if body == "" {
			fmt.Fprintf(&sb, "%s = .\n", ProductionName(r.Name))
			continue
		}
		fmt.Fprintf(&sb, "%s = %s .\n", ProductionName(r.Name), body)
	}

	first := true
	for _, lex := range lexical {
		needed := false
		for _, k := range lex.needs {
			needed = needed || used[k]
		}
		if !needed {
			continue
		}
		if first {
			sb.WriteString("\n")
			first = false
		}
		fmt.Fprintf(&sb, "%s = %s .\n", lex.name, lex.body)
	}
	return sb.String()
}

func (t *Table) renderRule(r *Rule, used map[token.Kind]bool) string {
	if r.IsExpression() {
		operand := ProductionName(r.Operand)
		ops := t.Operators(r.Name)
		if len(ops) == 0 {
			return operand
		}
		texts := make([]string, len(ops))
		for i, op := range ops {
			texts[i] = strconv.Quote(op.Text)
		}
		return fmt.Sprintf("%s { ( %s ) %s }", operand, strings.Join(texts, " | "), operand)
	}

	var alts []string
	hasEmpty := false
	for _, alt := range r.Alternatives {
		if len(alt.Symbols) == 0 {
			hasEmpty = true
			continue
		}
		parts := make([]string, len(alt.Symbols))
		for i, sym := range alt.Symbols {
			parts[i] = renderSymbol(sym, used)
		}
		alts = append(alts, strings.Join(parts, " "))
	}
	body := strings.Join(alts, " | ")
	if hasEmpty && body != "" {
		return "[ " + body + " ]"
	}
	return body
}

func renderSymbol(sym Symbol, used map[token.Kind]bool) string {
	var base string
	switch {
	case !sym.IsTerminal():
		base = ProductionName(sym.Rule)
	case sym.Text != "":
		base = strconv.Quote(sym.Text)
	default:
		used[sym.Kind] = true
		base = leafKinds[sym.Kind]
	}
	switch sym.Quant {
	case Optional:
		return "[ " + base + " ]"
	case Many:
		return "{ " + base + " }"
	}
	return base
}
