package automaton

import (
	"errors"
	"fmt"

	"github.com/aretw0/tela/pkg/acceptance"
)

// ErrNotDeterministic is returned by Complement for automata with
// overlapping outgoing labels.
var ErrNotDeterministic = errors.New("automaton is not deterministic")

// Complete adds a rejecting sink for the letters some state cannot read.
// The sink carries a fresh mark that the condition requires to be seen
// finitely often and must fit in maxMarks. It reports whether a sink was
// needed.
func (a *Automaton) Complete(maxMarks int) (bool, error) {
	type gap struct {
		s State
		e Edge
	}
	var gaps []gap
	for s, es := range a.out {
		covered := a.dict.False()
		for _, e := range es {
			covered = a.dict.Or(covered, e.Label)
		}
		if !a.dict.IsTrue(covered) {
			gaps = append(gaps, gap{s: State(s), e: Edge{Label: a.dict.Not(covered)}})
		}
	}
	if len(gaps) == 0 {
		return false, nil
	}
	if maxMarks > acceptance.MaxMarks {
		maxMarks = acceptance.MaxMarks
	}
	if a.numMarks >= maxMarks {
		return false, fmt.Errorf("%w: no room for the sink mark within %d", acceptance.ErrTooManyMarks, maxMarks)
	}

	k := acceptance.Mark(a.numMarks)
	sink := a.AddState("sink")
	for _, g := range gaps {
		a.AddEdge(g.s, sink, g.e.Label, 0)
	}
	a.AddEdge(sink, sink, a.dict.True(), acceptance.MarksOf(k))
	a.numMarks++
	a.cond = acceptance.And(a.cond, acceptance.Fin(k))
	return true, nil
}

// Complement returns an automaton accepting exactly the words a rejects.
// a must be deterministic; it is left untouched. maxMarks bounds the marks
// of the result.
func (a *Automaton) Complement(maxMarks int) (*Automaton, error) {
	if !a.IsDeterministic() {
		return nil, ErrNotDeterministic
	}
	c := a.Clone()
	if _, err := c.Complete(maxMarks); err != nil {
		return nil, err
	}
	c.cond = c.cond.Negate()
	return c, nil
}
