package grammar

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jreyes33/jackparse/jack/token"
)

var ErrInvalidGrammar = errors.New("invalid grammar")

// Table is a validated, immutable grammar. All methods are safe for
// concurrent use.
type Table struct {
	name  string
	start string
	rules map[string]*Rule
	order []*Rule

	first    map[string]seqSet
	first1   map[string]map[terminal]bool
	nullable map[string]bool
	altFirst map[string][]seqSet
	infix    map[string]map[string]*Operator

	keywords map[string]bool
	symbols  []string // longest first
	sync     SyncSet
	check    func(token.Token) (string, bool)
	ebnf     string
}

// New validates spec and builds a table from it. All problems found are
// reported together, each wrapping ErrInvalidGrammar.
func New(spec Spec) (*Table, error) {
	t := &Table{
		name:     spec.Name,
		start:    spec.Start,
		rules:    make(map[string]*Rule, len(spec.Rules)),
		first:    make(map[string]seqSet),
		first1:   make(map[string]map[terminal]bool),
		nullable: make(map[string]bool),
		altFirst: make(map[string][]seqSet),
		infix:    make(map[string]map[string]*Operator),
		keywords: make(map[string]bool),
		sync: SyncSet{
			Stop:    slices.Clone(spec.Sync.Stop),
			Consume: slices.Clone(spec.Sync.Consume),
		},
		check: spec.Check,
	}
	if t.name == "" {
		t.name = "grammar"
	}

	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidGrammar}, args...)...))
	}

	for i := range spec.Rules {
		r := cloneRule(spec.Rules[i])
		if r.Name == "" {
			invalid("rule %d has no name", i)
			continue
		}
		if _, dup := t.rules[r.Name]; dup {
			invalid("rule %q defined twice", r.Name)
			continue
		}
		t.rules[r.Name] = r
		t.order = append(t.order, r)
	}
	if t.start == "" {
		invalid("no start rule")
	} else if r, ok := t.rules[t.start]; !ok {
		invalid("start rule %q is not defined", t.start)
	} else if r.Inline || r.IsOperator() || r.IsExpression() {
		invalid("start rule %q must be a plain rule", t.start)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	for _, r := range t.order {
		for _, msg := range t.checkRule(r) {
			invalid("rule %q: %s", r.Name, msg)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	t.collectVocabulary()
	t.computeFirst()

	for _, r := range t.order {
		for _, msg := range t.checkLookahead(r) {
			invalid("rule %q: %s", r.Name, msg)
		}
	}
	for _, name := range t.leftRecursive() {
		invalid("rule %q is left-recursive", name)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	t.ebnf = t.render()
	if err := t.Verify(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGrammar, err)
	}
	return t, nil
}

// MustNew is like New but panics on an invalid spec. It is meant for
// grammars compiled into the program.
func MustNew(spec Spec) *Table {
	t, err := New(spec)
	if err != nil {
		panic(err)
	}
	return t
}

func cloneRule(r Rule) *Rule {
	alts := make([]Production, len(r.Alternatives))
	for i, alt := range r.Alternatives {
		alts[i] = Production{Symbols: slices.Clone(alt.Symbols)}
	}
	r.Alternatives = alts
	return &r
}

func (t *Table) checkRule(r *Rule) []string {
	var problems []string
	switch {
	case r.IsOperator():
		if r.IsExpression() || r.Inline {
			problems = append(problems, "an operator rule cannot be inline or an expression rule")
		}
		for i, alt := range r.Alternatives {
			if msg := t.checkOperator(alt); msg != "" {
				problems = append(problems, fmt.Sprintf("alternative %d: %s", i, msg))
			}
		}
		if len(r.Alternatives) == 0 {
			problems = append(problems, "operator rule has no alternatives")
		}
		return problems

	case r.IsExpression():
		operand, ok := t.rules[r.Operand]
		if !ok {
			return []string{fmt.Sprintf("operand %q is not defined", r.Operand)}
		}
		if operand.IsOperator() || operand.Inline {
			problems = append(problems, fmt.Sprintf("operand %q must be a plain rule", r.Operand))
		}
		ops := make(map[string]*Operator)
		for i, alt := range r.Alternatives {
			if len(alt.Symbols) != 1 || alt.Symbols[0].IsTerminal() || alt.Symbols[0].Quant != One {
				problems = append(problems, fmt.Sprintf("alternative %d must reference a single operator rule", i))
				continue
			}
			op, ok := t.rules[alt.Symbols[0].Rule]
			if !ok || !op.IsOperator() {
				problems = append(problems, fmt.Sprintf("alternative %d: %q is not an operator rule", i, alt.Symbols[0].Rule))
				continue
			}
			for _, p := range op.Alternatives {
				if len(p.Symbols) != 3 || p.Symbols[0].Rule != r.Name || p.Symbols[2].Rule != r.Name {
					problems = append(problems, fmt.Sprintf("operator rule %q does not combine %q operands", op.Name, r.Name))
					continue
				}
				mid := p.Symbols[1]
				if _, dup := ops[mid.Text]; dup {
					problems = append(problems, fmt.Sprintf("operator %q defined twice", mid.Text))
					continue
				}
				ops[mid.Text] = &Operator{
					Text:          mid.Text,
					Precedence:    op.Precedence,
					Assoc:         op.Assoc,
					Node:          op.Kind(),
					LeftField:     p.Symbols[0].Field,
					OperatorField: mid.Field,
					RightField:    p.Symbols[2].Field,
					kind:          mid.Kind,
				}
			}
		}
		t.infix[r.Name] = ops
		return problems
	}

	if len(r.Alternatives) == 0 {
		problems = append(problems, "no alternatives")
	}
	for i, alt := range r.Alternatives {
		for j, sym := range alt.Symbols {
			if msg := t.checkSymbol(sym); msg != "" {
				problems = append(problems, fmt.Sprintf("alternative %d, symbol %d: %s", i, j, msg))
			}
		}
	}
	return problems
}

func (t *Table) checkOperator(p Production) string {
	if len(p.Symbols) != 3 {
		return "operator productions have the form `expr OP expr`"
	}
	left, op, right := p.Symbols[0], p.Symbols[1], p.Symbols[2]
	if left.IsTerminal() || right.IsTerminal() || left.Rule != right.Rule {
		return "operands must reference the same expression rule"
	}
	if target, ok := t.rules[left.Rule]; !ok || !target.IsExpression() {
		return fmt.Sprintf("%q is not an expression rule", left.Rule)
	}
	if !op.IsTerminal() || (op.Kind != token.Symbol && op.Kind != token.Keyword) || op.Text == "" {
		return "the operator must be a keyword or symbol terminal"
	}
	if left.Quant != One || op.Quant != One || right.Quant != One {
		return "operator productions cannot use quantifiers"
	}
	return ""
}

func (t *Table) checkSymbol(sym Symbol) string {
	if sym.IsTerminal() {
		switch sym.Kind {
		case token.Keyword, token.Symbol:
			if sym.Text == "" {
				return fmt.Sprintf("%s terminal without text", sym.Kind)
			}
		case token.Identifier, token.Integer, token.String:
			if sym.Text != "" {
				return fmt.Sprintf("%s terminal cannot fix its text", sym.Kind)
			}
		default:
			return fmt.Sprintf("%s cannot be a terminal", sym.Kind)
		}
		return ""
	}
	target, ok := t.rules[sym.Rule]
	switch {
	case !ok:
		return fmt.Sprintf("undefined rule %q", sym.Rule)
	case target.IsOperator():
		return fmt.Sprintf("operator rule %q can only be referenced by its expression rule", sym.Rule)
	case target.Inline && (sym.Field != "" || sym.Alias != ""):
		return fmt.Sprintf("inline rule %q cannot carry a field or alias", sym.Rule)
	}
	return ""
}

// checkLookahead rejects alternatives that two tokens of lookahead cannot
// tell apart, and repetitions of symbols that may match nothing.
func (t *Table) checkLookahead(r *Rule) []string {
	var problems []string
	for _, alt := range r.Alternatives {
		for _, sym := range alt.Symbols {
			if sym.Quant != One && !sym.IsTerminal() && t.nullable[sym.Rule] {
				problems = append(problems, fmt.Sprintf("%s repeats a rule that can match nothing", sym))
			}
		}
	}
	sets := t.altFirst[r.Name]
	for i := 0; i < len(sets); i++ {
		for j := i + 1; j < len(sets); j++ {
			for q := range sets[i] {
				if sets[j].has(q) {
					problems = append(problems, fmt.Sprintf("alternatives %d and %d both start with %s", i, j, q))
					break
				}
			}
		}
	}
	return problems
}

// leftRecursive finds rules that can reach themselves without consuming a
// token. Operator rules are excluded; expression rules recurse through
// them by precedence climbing.
func (t *Table) leftRecursive() []string {
	edges := make(map[string][]string)
	for _, r := range t.order {
		if r.IsOperator() {
			continue
		}
		if r.IsExpression() {
			edges[r.Name] = []string{r.Operand}
			continue
		}
		for _, alt := range r.Alternatives {
			for _, sym := range alt.Symbols {
				if sym.IsTerminal() {
					break
				}
				edges[r.Name] = append(edges[r.Name], sym.Rule)
				if sym.Quant == One && !t.nullable[sym.Rule] {
					break
				}
			}
		}
	}

	var found []string
	for _, r := range t.order {
		seen := map[string]bool{}
		stack := slices.Clone(edges[r.Name])
		for len(stack) > 0 {
			name := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if name == r.Name {
				found = append(found, r.Name)
				break
			}
			if seen[name] {
				continue
			}
			seen[name] = true
			stack = append(stack, edges[name]...)
		}
	}
	return found
}

func (t *Table) collectVocabulary() {
	symbols := make(map[string]bool)
	for _, r := range t.order {
		for _, alt := range r.Alternatives {
			for _, sym := range alt.Symbols {
				if !sym.IsTerminal() {
					continue
				}
				switch sym.Kind {
				case token.Keyword:
					t.keywords[sym.Text] = true
				case token.Symbol:
					symbols[sym.Text] = true
				}
			}
		}
	}
	for s := range symbols {
		t.symbols = append(t.symbols, s)
	}
	slices.SortFunc(t.symbols, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
}

func (t *Table) Name() string {
	return t.name
}

func (t *Table) Start() string {
	return t.start
}

// Rule returns the named rule, or nil. The result must not be modified.
func (t *Table) Rule(name string) *Rule {
	return t.rules[name]
}

// Rules returns every rule in declaration order.
func (t *Table) Rules() []*Rule {
	return slices.Clone(t.order)
}

func (t *Table) IsKeyword(word string) bool {
	return t.keywords[word]
}

// MatchSymbol returns the length of the longest symbol that prefixes input.
func (t *Table) MatchSymbol(input []byte) int {
	for _, s := range t.symbols {
		if len(input) >= len(s) && string(input[:len(s)]) == s {
			return len(s)
		}
	}
	return 0
}

// Starts reports whether tok can be the first token of rule.
func (t *Table) Starts(rule string, tok token.Token) bool {
	return t.first1[rule][terminalOf(tok)]
}

// Nullable reports whether rule can match the empty token sequence.
func (t *Table) Nullable(rule string) bool {
	return t.nullable[rule]
}

func (t *Table) StartsSymbol(sym Symbol, tok token.Token) bool {
	if sym.IsTerminal() {
		return sym.Matches(tok)
	}
	return t.Starts(sym.Rule, tok)
}

func (t *Table) NullableSymbol(sym Symbol) bool {
	return sym.Quant != One || (!sym.IsTerminal() && t.nullable[sym.Rule])
}

// Accepts reports whether tok can start the symbol sequence, and whether
// the whole sequence can match nothing.
func (t *Table) Accepts(symbols []Symbol, tok token.Token) (ok, nullable bool) {
	for _, sym := range symbols {
		if t.StartsSymbol(sym, tok) {
			return true, false
		}
		if !t.NullableSymbol(sym) {
			return false, false
		}
	}
	return false, true
}

// Resolve returns the alternatives of rule applicable to the lookahead,
// best first: a two-token match, then an alternative that ends after
// la1, then one that only shares la1, then one that matches nothing.
func (t *Table) Resolve(rule string, la1, la2 token.Token) []*Production {
	r := t.rules[rule]
	if r == nil || r.IsExpression() || r.IsOperator() {
		return nil
	}
	a, b := terminalOf(la1), terminalOf(la2)
	type ranked struct {
		prod *Production
		rank int
	}
	var candidates []ranked
	for i, set := range t.altFirst[rule] {
		best := -1
		for q := range set {
			rank := -1
			switch {
			case q.n == 2 && q.a == a && q.b == b:
				rank = 3
			case q.n == 1 && q.a == a:
				rank = 2
			case q.n == 2 && q.a == a:
				rank = 1
			case q.n == 0:
				rank = 0
			}
			best = max(best, rank)
		}
		if best >= 0 {
			candidates = append(candidates, ranked{&r.Alternatives[i], best})
		}
	}
	slices.SortStableFunc(candidates, func(x, y ranked) int {
		return cmp.Compare(y.rank, x.rank)
	})
	prods := make([]*Production, len(candidates))
	for i, c := range candidates {
		prods[i] = c.prod
	}
	return prods
}

// Infix returns the binary operator tok denotes inside the expression
// rule, or nil.
func (t *Table) Infix(rule string, tok token.Token) *Operator {
	if tok.Kind != token.Symbol && tok.Kind != token.Keyword {
		return nil
	}
	op := t.infix[rule][tok.Literal]
	if op == nil || op.kind != tok.Kind {
		return nil
	}
	return op
}

// Operators lists the binary operators of an expression rule, loosest
// binding first.
func (t *Table) Operators(rule string) []*Operator {
	ops := make([]*Operator, 0, len(t.infix[rule]))
	for _, op := range t.infix[rule] {
		ops = append(ops, op)
	}
	slices.SortFunc(ops, func(a, b *Operator) int {
		if c := cmp.Compare(a.Precedence, b.Precedence); c != 0 {
			return c
		}
		return strings.Compare(a.Text, b.Text)
	})
	return ops
}

func (t *Table) Sync() SyncSet {
	return SyncSet{
		Stop:    slices.Clone(t.sync.Stop),
		Consume: slices.Clone(t.sync.Consume),
	}
}

// LeafKind returns the node kind for a token leaf. Keywords and symbols
// are anonymous leaves named by their lexeme.
func (t *Table) LeafKind(tok token.Token) (kind string, named bool) {
	if name, ok := leafKinds[tok.Kind]; ok {
		return name, true
	}
	return tok.Literal, false
}

// Check runs the table's lexical lint on tok.
func (t *Table) Check(tok token.Token) (string, bool) {
	if t.check == nil {
		return "", false
	}
	return t.check(tok)
}
