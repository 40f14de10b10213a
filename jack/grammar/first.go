package grammar

import (
	"strings"
)

// seq is a terminal string of length at most two.
type seq struct {
	n    int
	a, b terminal
}

var epsilon = seq{}

func (q seq) String() string {
	switch q.n {
	case 0:
		return "ε"
	case 1:
		return q.a.String()
	}
	return q.a.String() + " " + q.b.String()
}

// join concatenates two sequences and truncates the result to two terminals.
func join(p, q seq) seq {
	switch {
	case p.n == 2 || q.n == 0:
		return p
	case p.n == 0:
		return q
	}
	return seq{n: 2, a: p.a, b: q.a}
}

type seqSet map[seq]struct{}

func (s seqSet) add(q seq) bool {
	if _, ok := s[q]; ok {
		return false
	}
	s[q] = struct{}{}
	return true
}

func (s seqSet) addAll(o seqSet) bool {
	changed := false
	for q := range o {
		if s.add(q) {
			changed = true
		}
	}
	return changed
}

func (s seqSet) has(q seq) bool {
	_, ok := s[q]
	return ok
}

func concat(x, y seqSet) seqSet {
	out := make(seqSet)
	for p := range x {
		if p.n == 2 {
			out.add(p)
			continue
		}
		for q := range y {
			out.add(join(p, q))
		}
	}
	return out
}

func (s seqSet) String() string {
	parts := make([]string, 0, len(s))
	for q := range s {
		parts = append(parts, q.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// computeFirst fills t.first with the FIRST2 set of every rule and
// t.altFirst with the set of every alternative. Sets only grow, so the
// iteration reaches a fixpoint.
func (t *Table) computeFirst() {
	for _, r := range t.order {
		t.first[r.Name] = make(seqSet)
	}
	for changed := true; changed; {
		changed = false
		for _, r := range t.order {
			if r.IsOperator() {
				continue
			}
			if t.first[r.Name].addAll(t.ruleFirst(r)) {
				changed = true
			}
		}
	}

	for _, r := range t.order {
		if r.IsOperator() || r.IsExpression() {
			continue
		}
		sets := make([]seqSet, len(r.Alternatives))
		for i, alt := range r.Alternatives {
			sets[i] = t.symbolsFirst(alt.Symbols)
		}
		t.altFirst[r.Name] = sets
	}

	for name, set := range t.first {
		heads := make(map[terminal]bool)
		for q := range set {
			if q.n > 0 {
				heads[q.a] = true
			}
		}
		t.first1[name] = heads
		t.nullable[name] = set.has(epsilon)
	}
}

func (t *Table) ruleFirst(r *Rule) seqSet {
	if r.IsExpression() {
		tail := seqSet{epsilon: {}}
		for _, op := range t.infix[r.Name] {
			tail.add(seq{n: 1, a: terminal{kind: op.kind, text: op.Text}})
		}
		return concat(t.first[r.Operand], tail)
	}
	out := make(seqSet)
	for _, alt := range r.Alternatives {
		out.addAll(t.symbolsFirst(alt.Symbols))
	}
	return out
}

func (t *Table) symbolsFirst(symbols []Symbol) seqSet {
	acc := seqSet{epsilon: {}}
	for _, sym := range symbols {
		acc = concat(acc, t.symbolFirst(sym))
	}
	return acc
}

func (t *Table) symbolFirst(sym Symbol) seqSet {
	var base seqSet
	if sym.IsTerminal() {
		base = seqSet{seq{n: 1, a: sym.terminal()}: {}}
	} else {
		base = t.first[sym.Rule]
	}
	switch sym.Quant {
	case Optional:
		out := seqSet{epsilon: {}}
		out.addAll(base)
		return out
	case Many:
		out := seqSet{epsilon: {}}
		out.addAll(base)
		out.addAll(concat(base, base))
		return out
	}
	return base
}
