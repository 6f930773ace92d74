package subset

import (
	"fmt"
	"slices"

	"github.com/aretw0/tela/internal/alternating"
	"github.com/aretw0/tela/pkg/acceptance"
)

// maxLoopSets bounds the distinct mark sets of one state's self-loops that
// classify enumerates. Beyond it a state is judged in the general form.
const maxLoopSets = 10

// loop is the acceptance of the runs whose branch ends up looping forever
// in one alternating state.
//
// Such a branch only ever sees the marks of the state's self-loops, so the
// alternating condition restricted to those marks (local) decides it. On
// the nondeterministic side the loop marks are renamed per state (refined),
// because two states may share a mark while their branches are judged
// independently. The exit mark is visited whenever the configuration could
// drop the state: either it is absent from the destination, or one of its
// non-looping edges fits in the destination under the same letter. Seeing
// exit infinitely often lets every branch of the state be cut.
type loop struct {
	state   alternating.StateID
	local   acceptance.Condition
	refined map[acceptance.Mark]acceptance.Mark
	exit    acceptance.Mark
	term    acceptance.Condition
}

// loopKind summarizes local over every combination of self-loops a branch
// can repeat forever.
type loopKind int

const (
	loopMixed  loopKind = iota
	loopAlways          // every combination is accepting
	loopNever           // no combination is accepting
)

func classify(local acceptance.Condition, sets []acceptance.Marks) loopKind {
	switch {
	case local.IsTrue():
		return loopAlways
	case local.IsFalse():
		return loopNever
	case len(sets) > maxLoopSets:
		return loopMixed
	}
	accepting, rejecting := false, false
	for bits := 1; bits < 1<<len(sets); bits++ {
		var inf acceptance.Marks
		for i, s := range sets {
			if bits&(1<<i) != 0 {
				inf = inf.Union(s)
			}
		}
		if local.Eval(inf) {
			accepting = true
		} else {
			rejecting = true
		}
		if accepting && rejecting {
			return loopMixed
		}
	}
	if rejecting {
		return loopNever
	}
	return loopAlways
}

// bounded reports, for every state, whether it can only be entered a
// finite number of times along a run: no looping state reaches it through
// another state.
func bounded(slaa *alternating.Automaton) []bool {
	n := slaa.NumStates()
	succ := make([]alternating.StateSet, n)
	looping := make([]bool, n)
	for q := range n {
		for _, id := range slaa.Edges(alternating.StateID(q)) {
			e := slaa.Edge(id)
			succ[q] = succ[q].Union(e.Targets)
			if e.Targets.Contains(alternating.StateID(q)) {
				looping[q] = true
			}
		}
	}

	out := make([]bool, n)
	for q := range out {
		out[q] = true
	}
	for p := range n {
		if !looping[p] {
			continue
		}
		seen := make([]bool, n)
		queue := succ[p].Without(alternating.StateID(p))
		for len(queue) > 0 {
			q := queue[0]
			queue = queue[1:]
			if seen[q] {
				continue
			}
			seen[q] = true
			out[q] = false
			queue = append(queue, succ[q]...)
		}
	}
	return out
}

// loops computes the per-state acceptance terms of slaa and allocates the
// marks of the nondeterministic automaton for them.
func (c *constructor) loops(alloc *acceptance.Allocator) ([]*loop, error) {
	cond := c.slaa.Condition()
	condMarks := cond.Marks()
	fin := bounded(c.slaa)

	var out []*loop
	for q := range c.slaa.NumStates() {
		id := alternating.StateID(q)
		var sets []acceptance.Marks
		var marks acceptance.Marks
		for _, eid := range c.slaa.Edges(id) {
			e := c.slaa.Edge(eid)
			if !e.Targets.Contains(id) {
				continue
			}
			m := e.Marks.Intersect(condMarks)
			marks = marks.Union(m)
			if !slices.Contains(sets, m) {
				sets = append(sets, m)
			}
		}
		if len(sets) == 0 {
			continue
		}

		l := &loop{state: id, local: cond.Restrict(marks), exit: acceptance.NoMark}
		kind := classify(l.local, sets)
		switch {
		case kind == loopAlways:
			continue
		case kind == loopNever && c.cfg.FinToInf:
			if err := l.allocExit(alloc); err != nil {
				return nil, err
			}
			l.term = acceptance.Inf(l.exit)
		case fin[q] && l.local.Eval(0):
			if err := l.allocRefined(alloc); err != nil {
				return nil, err
			}
			l.term = l.local.Rename(l.refined)
		default:
			if err := l.allocExit(alloc); err != nil {
				return nil, err
			}
			if err := l.allocRefined(alloc); err != nil {
				return nil, err
			}
			l.term = acceptance.Or(acceptance.Inf(l.exit), l.local.Rename(l.refined))
		}
		out = append(out, l)
	}
	return out, nil
}

func (l *loop) allocExit(alloc *acceptance.Allocator) error {
	m, err := alloc.Add()
	if err != nil {
		return fmt.Errorf("exit mark of state %d: %w", l.state, err)
	}
	l.exit = m
	return nil
}

func (l *loop) allocRefined(alloc *acceptance.Allocator) error {
	used := l.local.Marks()
	l.refined = make(map[acceptance.Mark]acceptance.Mark, used.Len())
	for _, m := range used.Slice() {
		r, err := alloc.Add()
		if err != nil {
			return fmt.Errorf("loop mark %d of state %d: %w", m, l.state, err)
		}
		l.refined[m] = r
	}
	return nil
}

// loopMarks returns the refined marks visited when q takes e.
func (l *loop) loopMarks(e alternating.Edge) acceptance.Marks {
	if l == nil || l.refined == nil || !e.Targets.Contains(l.state) {
		return 0
	}
	return e.Marks.Map(l.refined)
}
