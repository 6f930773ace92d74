package alternating_test

import (
	"errors"
	"testing"

	"github.com/aretw0/tela/internal/alternating"
	"github.com/aretw0/tela/pkg/acceptance"
	"github.com/aretw0/tela/pkg/domain"
	"github.com/aretw0/tela/pkg/label"
	"github.com/aretw0/tela/pkg/ltl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, input string, cfg domain.Config, opts ...alternating.Option) *alternating.Automaton {
	t.Helper()
	a, err := alternating.Build(ltl.Normalize(ltl.MustParse(input)), cfg, opts...)
	require.NoError(t, err)
	return a
}

func state(t *testing.T, a *alternating.Automaton, input string) alternating.StateID {
	t.Helper()
	id, ok := a.Lookup(ltl.Normalize(ltl.MustParse(input)))
	require.True(t, ok, "no state for %s", input)
	return id
}

func ap(t *testing.T, d *label.Dict, name string) label.Label {
	t.Helper()
	l, err := d.AP(name, false)
	require.NoError(t, err)
	return l
}

func edges(a *alternating.Automaton, s alternating.StateID) []alternating.Edge {
	var out []alternating.Edge
	for _, id := range a.Edges(s) {
		out = append(out, a.Edge(id))
	}
	return out
}

func hasEdge(a *alternating.Automaton, s alternating.StateID, l label.Label, targets alternating.StateSet, marks acceptance.Marks) bool {
	for _, e := range edges(a, s) {
		if a.Dict().Equal(e.Label, l) && e.Targets.Equal(targets) && e.Marks == marks {
			return true
		}
	}
	return false
}

func TestBuild_Constants(t *testing.T) {
	cfg := domain.DefaultConfig()

	tru := build(t, "true", cfg)
	require.Equal(t, 1, tru.NumStates())
	require.Len(t, tru.Inits(), 1)
	es := edges(tru, 0)
	require.Len(t, es, 1)
	assert.True(t, tru.Dict().IsTrue(es[0].Label))
	assert.Empty(t, es[0].Targets)

	fls := build(t, "false", cfg)
	require.Equal(t, 1, fls.NumStates())
	assert.Empty(t, fls.Edges(0))
}

func TestBuild_Memoized(t *testing.T) {
	a := build(t, "(a U b) & X (a U b)", domain.DefaultConfig())

	u := state(t, a, "a U b")
	x := state(t, a, "X (a U b)")
	es := edges(a, x)
	require.Len(t, es, 1)
	assert.Equal(t, alternating.StateSet{u}, es[0].Targets, "the until is translated once and shared")
	assert.Equal(t, "(a U b)", a.State(u).Key())
}

func TestBuild_ClassicalUntil(t *testing.T) {
	a := build(t, "a U b", domain.DefaultConfig())
	d := a.Dict()

	require.Equal(t, 1, a.NumStates(), "operand states are unreachable and pruned")
	u := state(t, a, "a U b")
	assert.Len(t, a.Edges(u), 2)
	assert.True(t, hasEdge(a, u, ap(t, d, "a"), alternating.StateSet{u}, acceptance.MarksOf(0)))
	assert.True(t, hasEdge(a, u, ap(t, d, "b"), alternating.StateSet{}, 0))

	assert.Equal(t, "Fin(0)", a.Condition().String())
	assert.Equal(t, 1, a.NumMarks())

	cfg := domain.DefaultConfig()
	cfg.FinToInf = false
	plain := build(t, "a U b", cfg)
	assert.Equal(t, "Fin(0)", plain.Condition().String())
	assert.Equal(t, 1, plain.NumMarks(), "the alternating automaton does not depend on FinToInf")
}

func TestBuild_GlobalFinMark(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.GMergeLevel = 0
	a := build(t, "(a U b) & (c U d)", cfg)

	assert.Equal(t, 1, a.NumMarks(), "every until shares mark 0")
	assert.Equal(t, "Fin(0)", a.Condition().String())
	for s := alternating.StateID(0); int(s) < a.NumStates(); s++ {
		for _, e := range edges(a, s) {
			assert.True(t, e.Marks == 0 || e.Marks == acceptance.MarksOf(0))
		}
	}
}

func TestBuild_DisjunctionCollapse(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.SingleInitState = true

	var events []domain.Event
	a := build(t, "G F a | G F b", cfg, alternating.WithObserver(func(e domain.Event) {
		events = append(events, e)
	}))

	require.Equal(t, 1, a.NumStates())
	d, ok := a.Acceptance().Lookup(a.State(0).Key())
	require.True(t, ok)
	require.Len(t, d.FinDisj, 2)
	require.NotEqual(t, acceptance.NoMark, d.Fin, "the disjunction owns a Fin mark")
	assert.Equal(t, 7, a.NumMarks(), "two untils with a Fin and an Inf mark each, then the disjunction")
	assert.Equal(t, acceptance.MarksOf(d.Fin+1, d.Fin+2), acceptance.MarksOf(d.FinDisj...),
		"the disjunctive block follows the Fin mark")

	first, second := d.FinDisj[0], d.FinDisj[1]
	withFirst, withSecond := 0, 0
	for _, e := range edges(a, 0) {
		assert.Equal(t, alternating.StateSet{0}, e.Targets, "every loop is folded into the disjunction")
		assert.False(t, e.Marks.Has(first) && e.Marks.Has(second))
		assert.False(t, e.Marks.Has(d.Fin), "no edge carries the Fin mark of a disjunction")
		if e.Marks.Has(first) {
			withFirst++
		}
		if e.Marks.Has(second) {
			withSecond++
		}
	}
	assert.Equal(t, 2, withFirst)
	assert.Equal(t, 2, withSecond)

	var types []domain.EventType
	for _, e := range events {
		types = append(types, e.Type)
	}
	assert.Contains(t, types, domain.EventDisjunctionMerged)
	assert.Contains(t, types, domain.EventGloballyLoop)
}

func TestBuild_NoCollapseOnDifferentLoopLabels(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.SingleInitState = true
	a := build(t, "G a | G b", cfg)

	d, ok := a.Acceptance().Lookup(a.State(0).Key())
	assert.False(t, ok && len(d.FinDisj) > 0)
	assert.Equal(t, 0, a.NumMarks())
}

func TestBuild_Mergeability(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		level     int
		mergeable bool
	}{
		{"loop entails left", "(a | b) U G a", 2, true},
		{"loop violates left", "a U G b", 2, false},
		{"boolean right operand", "a U b", 2, false},
		{"temporal left operand", "(X a) U G a", 2, false},
		{"merging disabled", "(a | b) U G a", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.DefaultConfig()
			cfg.UMergeLevel = tt.level

			merged := false
			a := build(t, tt.input, cfg, alternating.WithObserver(func(e domain.Event) {
				if e.Type == domain.EventMergeableUntil {
					merged = true
				}
			}))
			assert.Equal(t, tt.mergeable, merged)

			u := state(t, a, tt.input)
			right, ok := a.Lookup(ltl.Normalize(ltl.MustParse(tt.input)).Child(1))
			if tt.mergeable {
				// the right operand's loop now returns to the until
				assert.True(t, hasEdge(a, u, ap(t, a.Dict(), "a"), alternating.StateSet{u}, 0))
				return
			}
			if ok {
				for _, e := range edges(a, right) {
					found := false
					for _, ue := range edges(a, u) {
						if ue.Targets.Equal(e.Targets) && a.Dict().Equal(ue.Label, e.Label) {
							found = true
						}
					}
					assert.True(t, found, "right operand edges are copied unchanged")
				}
			}
		})
	}
}

func TestBuild_MergedUntilDisjunctiveMarks(t *testing.T) {
	a := build(t, "a U (G a | G (a & F b))", domain.DefaultConfig())

	u := state(t, a, "a U (G a | G (a & F b))")
	d, ok := a.Acceptance().Lookup(a.State(u).Key())
	require.True(t, ok)
	require.Len(t, d.FinDisj, 2, "both clauses loop, so each gets a disjunctive mark")
	for _, e := range edges(a, u) {
		if e.Targets.Contains(u) && !e.Marks.Has(d.Fin) {
			assert.Equal(t, 1, e.Marks.Intersect(acceptance.MarksOf(d.FinDisj...)).Len(),
				"a merged loop carries the mark of the other clause only")
		}
	}
}

func TestBuild_GlobalDisjunctiveBlock(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.GMergeLevel = 0
	a := build(t, "c U (d & F (G a | G b))", cfg)

	owner, ok := a.Acceptance().Lookup(ltl.Normalize(ltl.MustParse("c U (d & F (G a | G b))")).Key())
	require.True(t, ok)
	assert.Equal(t, acceptance.Mark(0), owner.Fin)
	assert.Equal(t, []acceptance.Mark{1, 2}, owner.FinDisj,
		"the block of a nested until belongs to the global descriptor")
	assert.Equal(t, 1, a.Acceptance().Len())
	assert.Equal(t, 3, a.NumMarks())
}

func TestBuild_DisjunctionWithoutLoops(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.SingleInitState = true

	merged := false
	a := build(t, "X a | X b", cfg, alternating.WithObserver(func(e domain.Event) {
		if e.Type == domain.EventDisjunctionMerged {
			merged = true
		}
	}))
	assert.True(t, merged, "disjuncts without loops have equal loop labels")
	assert.Equal(t, 3, a.NumMarks())
	for s := alternating.StateID(0); int(s) < a.NumStates(); s++ {
		for _, e := range edges(a, s) {
			assert.True(t, e.Marks.IsEmpty())
		}
	}
}

func TestBuild_Next(t *testing.T) {
	a := build(t, "X (a | G b)", domain.DefaultConfig())
	x := state(t, a, "X (a | G b)")
	assert.Len(t, a.Edges(x), 2, "one universal edge per clause")

	cfg := domain.DefaultConfig()
	cfg.NextSingleSucc = true
	single := build(t, "X (a | G b)", cfg)
	x = state(t, single, "X (a | G b)")
	es := edges(single, x)
	require.Len(t, es, 1)
	assert.Equal(t, alternating.StateSet{state(t, single, "a | G b")}, es[0].Targets)
}

func TestBuild_InitialConfigurations(t *testing.T) {
	a := build(t, "a U b | X c", domain.DefaultConfig())
	assert.Len(t, a.Inits(), 2)

	cfg := domain.DefaultConfig()
	cfg.SingleInitState = true
	single := build(t, "a U b | X c", cfg)
	require.Len(t, single.Inits(), 1)
	assert.Len(t, single.Inits()[0], 1)
}

func TestBuild_Dominations(t *testing.T) {
	a := build(t, "G (a U b) & X (a U b)", domain.DefaultConfig())
	g := state(t, a, "G (a U b)")
	u := state(t, a, "a U b")
	assert.Contains(t, a.Dominations(), alternating.Domination{Dominant: g, Dominated: u, Strength: 2})
}

func TestBuild_TooManyMarks(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.MaxMarks = 2
	_, err := alternating.Build(ltl.Normalize(ltl.MustParse("G F a & G F b")), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTooManyMarks))
	assert.True(t, errors.Is(err, acceptance.ErrTooManyMarks))
}

func TestBuild_Malformed(t *testing.T) {
	_, err := alternating.Build(ltl.MustParse("F a"), domain.DefaultConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedFormula))

	cfg := domain.DefaultConfig()
	cfg.EqLevel = 7
	_, err = alternating.Build(ltl.MustParse("a"), cfg)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
}
