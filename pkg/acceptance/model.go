package acceptance

import (
	"slices"
)

// Descriptor records the marks owned by one translated sub-formula.
// Fin or Inf may be NoMark. FinDisj is an ordered set of disjunctive
// Fin marks.
type Descriptor struct {
	Fin     Mark
	Inf     Mark
	FinDisj []Mark
}

// AddDisj appends m to the disjunctive group unless present.
func (d *Descriptor) AddDisj(m Mark) {
	if !slices.Contains(d.FinDisj, m) {
		d.FinDisj = append(d.FinDisj, m)
	}
}

// Term is the contribution of d to the acceptance condition.
func (d *Descriptor) Term() Condition {
	fin, inf := True(), False()
	if d.Fin != NoMark {
		fin = Fin(d.Fin)
	}
	if d.Inf != NoMark {
		inf = Inf(d.Inf)
	}
	base := Or(fin, inf)
	if len(d.FinDisj) == 0 {
		return base
	}
	terms := make([]Condition, len(d.FinDisj))
	for i, m := range d.FinDisj {
		terms[i] = And(Fin(m), base)
	}
	return Or(terms...)
}

// Model is the acceptance model of an alternating automaton: one
// descriptor per sub-formula key plus the registry of Inf marks.
type Model struct {
	entries  map[string]*Descriptor
	infMarks Marks
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{entries: make(map[string]*Descriptor)}
}

// Entry returns the descriptor of key, creating an empty one on first use.
func (m *Model) Entry(key string) *Descriptor {
	d, ok := m.entries[key]
	if !ok {
		d = &Descriptor{Fin: NoMark, Inf: NoMark}
		m.entries[key] = d
	}
	return d
}

// Lookup returns the descriptor of key if it exists.
func (m *Model) Lookup(key string) (*Descriptor, bool) {
	d, ok := m.entries[key]
	return d, ok
}

// Empty reports whether no descriptor was created yet.
func (m *Model) Empty() bool { return len(m.entries) == 0 }

// Len returns the number of descriptors.
func (m *Model) Len() int { return len(m.entries) }

// Keys lists the descriptor keys in sorted order.
func (m *Model) Keys() []string {
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// RememberInf registers m as an Inf mark.
func (m *Model) RememberInf(mk Mark) { m.infMarks = m.infMarks.With(mk) }

// InfMarks returns the registered Inf marks.
func (m *Model) InfMarks() Marks { return m.infMarks }

// Condition materializes the conjunction of all descriptor terms, in key
// order.
func (m *Model) Condition() Condition {
	keys := m.Keys()
	terms := make([]Condition, 0, len(keys))
	for _, k := range keys {
		terms = append(terms, m.entries[k].Term())
	}
	return And(terms...)
}
