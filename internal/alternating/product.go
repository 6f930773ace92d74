package alternating

import (
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/tela/pkg/acceptance"
)

// Product combines one edge from every operand in all possible ways. The
// combined edge carries the conjunction of the labels and the union of the
// targets; its marks are the union of the operand marks when keepMarks is
// set and empty otherwise. Identical operands are considered once and the
// result is a sorted set of interned edges. Edges labelled false are kept.
func (a *Automaton) Product(operands [][]EdgeID, keepMarks bool) []EdgeID {
	seen := make(map[string]bool, len(operands))
	var sets [][]EdgeID
	for _, op := range operands {
		op = slices.Clone(op)
		slices.Sort(op)
		op = slices.Compact(op)
		k := operandKey(op)
		if seen[k] {
			continue
		}
		seen[k] = true
		sets = append(sets, op)
	}

	acc := []Edge{{Label: a.dict.True(), Targets: StateSet{}}}
	for _, op := range sets {
		if len(op) == 0 {
			return nil
		}
		next := make([]Edge, 0, len(acc)*len(op))
		index := make(map[string]bool, len(acc)*len(op))
		for _, left := range acc {
			for _, id := range op {
				right := a.edges[id]
				e := Edge{
					Label:   a.dict.And(left.Label, right.Label),
					Targets: left.Targets.Union(right.Targets),
				}
				if keepMarks {
					e.Marks = left.Marks.Union(right.Marks)
				}
				k := edgeKey(e.Label, e.Targets, e.Marks)
				if index[k] {
					continue
				}
				index[k] = true
				next = append(next, e)
			}
		}
		acc = next
	}

	out := make([]EdgeID, 0, len(acc))
	for _, e := range acc {
		out = append(out, a.intern(e.Label, e.Targets, e.Marks))
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// product2 is the product of two single edges.
func (a *Automaton) product2(x, y EdgeID, keepMarks bool) EdgeID {
	ex, ey := a.edges[x], a.edges[y]
	var marks acceptance.Marks
	if keepMarks {
		marks = ex.Marks.Union(ey.Marks)
	}
	return a.intern(a.dict.And(ex.Label, ey.Label), ex.Targets.Union(ey.Targets), marks)
}

func operandKey(op []EdgeID) string {
	parts := make([]string, len(op))
	for i, id := range op {
		parts[i] = strconv.Itoa(int(id))
	}
	return strings.Join(parts, ",")
}
