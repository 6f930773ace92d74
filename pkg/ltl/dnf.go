package ltl

import (
	"slices"
	"strings"
)

// Clause is one conjunction of a disjunctive normal form, kept sorted by key.
type Clause []*Formula

// Key is the canonical key of the clause.
func (c Clause) Key() string {
	keys := make([]string, len(c))
	for i, f := range c {
		keys[i] = f.key
	}
	return strings.Join(keys, " & ")
}

// Formula returns the conjunction of the clause members.
func (c Clause) Formula() *Formula {
	return And(c...)
}

// DNF expands f into its disjunctive normal form over the top-level & and |
// operators. Temporal sub-formulas are treated as literals. The clauses are
// deduplicated and sorted.
func DNF(f *Formula) []Clause {
	switch f.op {
	case OpOr:
		var out []Clause
		for _, k := range f.kids {
			out = append(out, DNF(k)...)
		}
		return normalizeClauses(out)
	case OpAnd:
		acc := []Clause{{}}
		for _, k := range f.kids {
			sub := DNF(k)
			next := make([]Clause, 0, len(acc)*len(sub))
			for _, a := range acc {
				for _, b := range sub {
					c := make(Clause, 0, len(a)+len(b))
					c = append(c, a...)
					c = append(c, b...)
					next = append(next, c)
				}
			}
			acc = next
		}
		return normalizeClauses(acc)
	}
	return []Clause{{f}}
}

func normalizeClauses(cs []Clause) []Clause {
	seen := make(map[string]bool, len(cs))
	out := make([]Clause, 0, len(cs))
	for _, c := range cs {
		c = sortClause(c)
		k := c.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	slices.SortFunc(out, compareClauses)
	return out
}

func sortClause(c Clause) Clause {
	c = slices.Clone(c)
	slices.SortFunc(c, func(a, b *Formula) int { return strings.Compare(a.key, b.key) })
	return slices.CompactFunc(c, func(a, b *Formula) bool { return a.key == b.key })
}

func compareClauses(a, b Clause) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := strings.Compare(a[i].key, b[i].key); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}
