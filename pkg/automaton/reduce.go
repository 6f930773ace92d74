package automaton

import (
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/tela/pkg/acceptance"
	"github.com/aretw0/tela/pkg/label"
)

// Reduce runs the reduction passes in order: edge merging, equivalent state
// merging at the given level, unreachable state removal and mark
// compaction. Running it twice changes nothing.
func (a *Automaton) Reduce(eqLevel int) {
	a.MergeEdges()
	if eqLevel > 0 {
		a.MergeEquivalentStates(eqLevel)
	}
	a.RemoveUnreachable()
	a.CompactMarks()
}

type edgeGroup struct {
	dst   State
	marks acceptance.Marks
}

// MergeEdges joins the edges sharing source, destination and marks into
// one edge labelled by the disjunction of their labels.
func (a *Automaton) MergeEdges() {
	for s, es := range a.out {
		var order []edgeGroup
		labels := make(map[edgeGroup]label.Label, len(es))
		for _, e := range es {
			g := edgeGroup{dst: e.Dst, marks: e.Marks}
			if l, ok := labels[g]; ok {
				labels[g] = a.dict.Or(l, e.Label)
				continue
			}
			order = append(order, g)
			labels[g] = e.Label
		}
		merged := make([]Edge, 0, len(order))
		for _, g := range order {
			if a.dict.IsFalse(labels[g]) {
				continue
			}
			merged = append(merged, Edge{Src: State(s), Dst: g.dst, Label: labels[g], Marks: g.marks})
		}
		a.out[s] = merged
	}
}

// MergeEquivalentStates merges states with identical outgoing edges until
// no two states match. At level 1 edges must match exactly; at level 2 a
// self-loop of one state matches a self-loop of the other. It reports
// whether anything was merged.
func (a *Automaton) MergeEquivalentStates(level int) bool {
	changed := false
	gone := make([]bool, len(a.out))
	for {
		a.MergeEdges()
		rep := make([]State, len(a.out))
		bySig := make(map[string]State, len(a.out))
		merged := false
		for s := range a.out {
			rep[s] = State(s)
			if gone[s] {
				continue
			}
			sig := a.signature(State(s), level)
			if r, ok := bySig[sig]; ok {
				rep[s] = r
				merged = true
				continue
			}
			bySig[sig] = State(s)
		}
		if !merged {
			return changed
		}
		changed = true
		for s, es := range a.out {
			if rep[s] != State(s) {
				a.out[s] = nil
				gone[s] = true
				continue
			}
			for i := range es {
				es[i].Dst = rep[es[i].Dst]
			}
		}
		a.init = rep[a.init]
	}
}

func (a *Automaton) signature(s State, level int) string {
	parts := make([]string, 0, len(a.out[s]))
	for _, e := range a.out[s] {
		dst := strconv.Itoa(int(e.Dst))
		if level >= 2 && e.Dst == s {
			dst = "self"
		}
		parts = append(parts, dst+"/"+strconv.Itoa(e.Label.ID())+"/"+strconv.FormatUint(uint64(e.Marks), 10))
	}
	slices.Sort(parts)
	return strings.Join(parts, ";")
}

// RemoveUnreachable drops the states the initial state does not reach.
// The remaining states keep their relative order.
func (a *Automaton) RemoveUnreachable() {
	if len(a.out) == 0 {
		return
	}
	reach := make([]bool, len(a.out))
	reach[a.init] = true
	queue := []State{a.init}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, e := range a.out[s] {
			if !reach[e.Dst] {
				reach[e.Dst] = true
				queue = append(queue, e.Dst)
			}
		}
	}

	renum := make([]State, len(a.out))
	var names []string
	var out [][]Edge
	for s := range a.out {
		renum[s] = -1
		if reach[s] {
			renum[s] = State(len(names))
			names = append(names, a.names[s])
			out = append(out, a.out[s])
		}
	}
	if len(names) == len(a.names) {
		return
	}
	for s, es := range out {
		for i := range es {
			es[i].Src = State(s)
			es[i].Dst = renum[es[i].Dst]
		}
	}
	a.names = names
	a.out = out
	a.init = renum[a.init]
}

// CompactMarks renumbers the marks carried by edges densely from zero and
// restricts the condition to them.
func (a *Automaton) CompactMarks() {
	used := a.UsedMarks()
	rename := make(map[acceptance.Mark]acceptance.Mark, used.Len())
	for i, m := range used.Slice() {
		rename[m] = acceptance.Mark(i)
	}
	for _, es := range a.out {
		for i := range es {
			es[i].Marks = es[i].Marks.Map(rename)
		}
	}
	a.cond = a.cond.Restrict(used).Rename(rename)
	a.numMarks = used.Len()
}
