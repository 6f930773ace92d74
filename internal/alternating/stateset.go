package alternating

import (
	"slices"
	"strconv"
	"strings"
)

// StateID identifies a state of the alternating automaton.
type StateID int

// NoState marks a reference to a state that does not exist (anymore).
const NoState StateID = -1

// StateSet is a sorted set of states without duplicates.
type StateSet []StateID

// NewStateSet builds a set from ids in any order.
func NewStateSet(ids ...StateID) StateSet {
	s := slices.Clone(ids)
	slices.Sort(s)
	return slices.Compact(s)
}

// Contains reports whether id is in s.
func (s StateSet) Contains(id StateID) bool {
	_, ok := slices.BinarySearch(s, id)
	return ok
}

// Includes reports whether o ⊆ s.
func (s StateSet) Includes(o StateSet) bool {
	i := 0
	for _, id := range o {
		for i < len(s) && s[i] < id {
			i++
		}
		if i == len(s) || s[i] != id {
			return false
		}
	}
	return true
}

// Equal reports whether s and o hold the same states.
func (s StateSet) Equal(o StateSet) bool { return slices.Equal(s, o) }

// Union returns s ∪ o.
func (s StateSet) Union(o StateSet) StateSet {
	out := make(StateSet, 0, len(s)+len(o))
	i, j := 0, 0
	for i < len(s) && j < len(o) {
		switch {
		case s[i] < o[j]:
			out = append(out, s[i])
			i++
		case s[i] > o[j]:
			out = append(out, o[j])
			j++
		default:
			out = append(out, s[i])
			i++
			j++
		}
	}
	out = append(out, s[i:]...)
	return append(out, o[j:]...)
}

// With returns s ∪ {id}.
func (s StateSet) With(id StateID) StateSet {
	return s.Union(StateSet{id})
}

// Without returns s ∖ {id}.
func (s StateSet) Without(id StateID) StateSet {
	return s.Minus(StateSet{id})
}

// Minus returns s ∖ o.
func (s StateSet) Minus(o StateSet) StateSet {
	out := make(StateSet, 0, len(s))
	for _, id := range s {
		if !o.Contains(id) {
			out = append(out, id)
		}
	}
	return out
}

// String renders s as "{0,3}".
func (s StateSet) String() string {
	parts := make([]string, len(s))
	for i, id := range s {
		parts[i] = strconv.Itoa(int(id))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
