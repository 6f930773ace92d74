package automaton

import (
	"slices"

	"github.com/aretw0/tela/pkg/acceptance"
	"github.com/aretw0/tela/pkg/label"
)

// State identifies a state of an Automaton.
type State int

// Edge is a transition from Src to Dst.
type Edge struct {
	Src   State
	Dst   State
	Label label.Label
	Marks acceptance.Marks
}

// Automaton is a nondeterministic automaton with transition-based
// Emerson-Lei acceptance and a single initial state.
type Automaton struct {
	dict     *label.Dict
	name     string
	names    []string
	out      [][]Edge
	init     State
	numMarks int
	cond     acceptance.Condition
}

// New returns an empty automaton over the propositions of dict.
func New(dict *label.Dict) *Automaton {
	return &Automaton{dict: dict, cond: acceptance.True()}
}

// Dict returns the label dictionary.
func (a *Automaton) Dict() *label.Dict { return a.dict }

// Name is the automaton name, usually the translated formula.
func (a *Automaton) Name() string { return a.name }

// SetName sets the automaton name.
func (a *Automaton) SetName(name string) { a.name = name }

// AddState appends a state and returns its id.
func (a *Automaton) AddState(name string) State {
	a.names = append(a.names, name)
	a.out = append(a.out, nil)
	return State(len(a.names) - 1)
}

// AddEdge appends an edge.
func (a *Automaton) AddEdge(src, dst State, l label.Label, marks acceptance.Marks) {
	a.out[src] = append(a.out[src], Edge{Src: src, Dst: dst, Label: l, Marks: marks})
}

// NumStates returns the number of states.
func (a *Automaton) NumStates() int { return len(a.names) }

// NumEdges returns the number of edges.
func (a *Automaton) NumEdges() int {
	n := 0
	for _, es := range a.out {
		n += len(es)
	}
	return n
}

// StateName returns the human-readable name of s.
func (a *Automaton) StateName(s State) string { return a.names[s] }

// Edges returns the edges leaving s in insertion order.
func (a *Automaton) Edges(s State) []Edge { return slices.Clone(a.out[s]) }

// SetEdges replaces the edges leaving s.
func (a *Automaton) SetEdges(s State, es []Edge) { a.out[s] = slices.Clone(es) }

// Init returns the initial state.
func (a *Automaton) Init() State { return a.init }

// SetInit sets the initial state.
func (a *Automaton) SetInit(s State) { a.init = s }

// NumMarks returns the number of acceptance marks.
func (a *Automaton) NumMarks() int { return a.numMarks }

// Condition returns the acceptance condition.
func (a *Automaton) Condition() acceptance.Condition { return a.cond }

// SetAcceptance sets the number of marks and the condition over them.
func (a *Automaton) SetAcceptance(numMarks int, cond acceptance.Condition) {
	a.numMarks = numMarks
	a.cond = cond
}

// UsedMarks collects the marks carried by some edge.
func (a *Automaton) UsedMarks() acceptance.Marks {
	var used acceptance.Marks
	for _, es := range a.out {
		for _, e := range es {
			used = used.Union(e.Marks)
		}
	}
	return used
}

// IsDeterministic reports whether the labels leaving every state are
// pairwise disjoint.
func (a *Automaton) IsDeterministic() bool {
	for _, es := range a.out {
		seen := a.dict.False()
		for _, e := range es {
			if !a.dict.IsFalse(a.dict.And(seen, e.Label)) {
				return false
			}
			seen = a.dict.Or(seen, e.Label)
		}
	}
	return true
}

// Clone returns a deep copy sharing the label dictionary.
func (a *Automaton) Clone() *Automaton {
	c := *a
	c.names = slices.Clone(a.names)
	c.out = make([][]Edge, len(a.out))
	for i, es := range a.out {
		c.out[i] = slices.Clone(es)
	}
	return &c
}
