package alternating

import (
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/tela/pkg/acceptance"
	"github.com/aretw0/tela/pkg/label"
	"github.com/aretw0/tela/pkg/ltl"
)

// EdgeID identifies an edge in the edge table of an Automaton.
type EdgeID int

// Edge is an alternating edge: under Label, move to every state of Targets
// and visit Marks.
type Edge struct {
	Label   label.Label
	Targets StateSet
	Marks   acceptance.Marks
}

// Domination records that runs through Dominated can be traded for runs
// through Dominant. Strength 2 is the stronger relation.
type Domination struct {
	Dominant  StateID
	Dominated StateID
	Strength  int
}

// Automaton is a self-loop alternating automaton whose states are formulas.
type Automaton struct {
	dict    *label.Dict
	formula *ltl.Formula

	states []*ltl.Formula
	index  map[string]StateID
	out    [][]EdgeID

	edges     []Edge
	edgeIndex map[string]EdgeID

	inits []StateSet
	doms  []Domination

	acc   *acceptance.Model
	alloc *acceptance.Allocator
}

func newAutomaton(f *ltl.Formula, dict *label.Dict, maxMarks int) *Automaton {
	return &Automaton{
		dict:      dict,
		formula:   f,
		index:     make(map[string]StateID),
		edgeIndex: make(map[string]EdgeID),
		acc:       acceptance.NewModel(),
		alloc:     acceptance.NewAllocator(maxMarks),
	}
}

// Dict returns the label dictionary the automaton was built with.
func (a *Automaton) Dict() *label.Dict { return a.dict }

// Formula returns the translated formula.
func (a *Automaton) Formula() *ltl.Formula { return a.formula }

// NumStates returns the number of states.
func (a *Automaton) NumStates() int { return len(a.states) }

// NumEdges counts the edges leaving all states.
func (a *Automaton) NumEdges() int {
	n := 0
	for _, es := range a.out {
		n += len(es)
	}
	return n
}

// State returns the formula of state id.
func (a *Automaton) State(id StateID) *ltl.Formula { return a.states[id] }

// Lookup returns the state of formula f, if any.
func (a *Automaton) Lookup(f *ltl.Formula) (StateID, bool) {
	id, ok := a.index[f.Key()]
	return id, ok
}

// Edges returns the sorted edge ids leaving state id.
func (a *Automaton) Edges(id StateID) []EdgeID { return slices.Clone(a.out[id]) }

// Edge returns the edge with the given id.
func (a *Automaton) Edge(id EdgeID) Edge { return a.edges[id] }

// Inits returns the initial configurations.
func (a *Automaton) Inits() []StateSet { return slices.Clone(a.inits) }

// Dominations returns the recorded domination triples.
func (a *Automaton) Dominations() []Domination { return slices.Clone(a.doms) }

// Acceptance returns the acceptance model.
func (a *Automaton) Acceptance() *acceptance.Model { return a.acc }

// NumMarks returns the number of allocated marks.
func (a *Automaton) NumMarks() int { return a.alloc.Count() }

// Condition is the acceptance condition of the alternating automaton.
func (a *Automaton) Condition() acceptance.Condition { return a.acc.Condition() }

func (a *Automaton) newState(f *ltl.Formula) StateID {
	id := StateID(len(a.states))
	a.states = append(a.states, f)
	a.index[f.Key()] = id
	a.out = append(a.out, nil)
	return id
}

// intern returns the id of the edge (l, targets, marks), creating it if it
// is new.
func (a *Automaton) intern(l label.Label, targets StateSet, marks acceptance.Marks) EdgeID {
	key := edgeKey(l, targets, marks)
	if id, ok := a.edgeIndex[key]; ok {
		return id
	}
	id := EdgeID(len(a.edges))
	a.edges = append(a.edges, Edge{Label: l, Targets: targets, Marks: marks})
	a.edgeIndex[key] = id
	return id
}

func (a *Automaton) addEdge(s StateID, e EdgeID) {
	out := a.out[s]
	i, found := slices.BinarySearch(out, e)
	if found {
		return
	}
	a.out[s] = slices.Insert(out, i, e)
}

func (a *Automaton) addNewEdge(s StateID, l label.Label, targets StateSet, marks acceptance.Marks) {
	a.addEdge(s, a.intern(l, targets, marks))
}

func (a *Automaton) dominate(dominant, dominated StateID, strength int) {
	d := Domination{Dominant: dominant, Dominated: dominated, Strength: strength}
	if !slices.Contains(a.doms, d) {
		a.doms = append(a.doms, d)
	}
}

// PruneUnreachable removes the states no initial configuration reaches.
// Surviving states keep their relative order.
func (a *Automaton) PruneUnreachable() {
	reach := make([]bool, len(a.states))
	var queue []StateID
	for _, init := range a.inits {
		for _, s := range init {
			if !reach[s] {
				reach[s] = true
				queue = append(queue, s)
			}
		}
	}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, e := range a.out[s] {
			for _, t := range a.edges[e].Targets {
				if !reach[t] {
					reach[t] = true
					queue = append(queue, t)
				}
			}
		}
	}

	renum := make([]StateID, len(a.states))
	n := 0
	for s := range a.states {
		renum[s] = NoState
		if reach[s] {
			renum[s] = StateID(n)
			n++
		}
	}
	if n == len(a.states) {
		return
	}
	remap := func(ss StateSet) StateSet {
		out := make(StateSet, len(ss))
		for i, s := range ss {
			out[i] = renum[s]
		}
		return out
	}

	old := *a
	a.states = nil
	a.out = nil
	a.index = make(map[string]StateID)
	a.edges = nil
	a.edgeIndex = make(map[string]EdgeID)
	for s, f := range old.states {
		if renum[s] == NoState {
			continue
		}
		a.newState(f)
	}
	for s := range old.states {
		if renum[s] == NoState {
			continue
		}
		for _, e := range old.out[s] {
			edge := old.edges[e]
			a.addNewEdge(renum[s], edge.Label, remap(edge.Targets), edge.Marks)
		}
	}
	a.inits = make([]StateSet, len(old.inits))
	for i, init := range old.inits {
		a.inits[i] = remap(init)
	}
	a.doms = nil
	for _, d := range old.doms {
		if renum[d.Dominant] != NoState && renum[d.Dominated] != NoState {
			a.dominate(renum[d.Dominant], renum[d.Dominated], d.Strength)
		}
	}
}

func edgeKey(l label.Label, targets StateSet, marks acceptance.Marks) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(l.ID()))
	sb.WriteByte('|')
	for i, t := range targets {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(int(t)))
	}
	sb.WriteByte('|')
	sb.WriteString(strconv.FormatUint(uint64(marks), 10))
	return sb.String()
}
