package acceptance_test

import (
	"errors"
	"testing"

	"github.com/aretw0/tela/pkg/acceptance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarks(t *testing.T) {
	s := acceptance.MarksOf(3, 0, acceptance.NoMark, 31)
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Has(31))
	assert.False(t, s.Has(acceptance.NoMark))
	assert.Equal(t, []acceptance.Mark{0, 3, 31}, s.Slice())
	assert.Equal(t, "{0 3 31}", s.String())
	assert.Equal(t, "{0 31}", s.Without(3).String())
	assert.Equal(t, "{1 2}", s.Map(map[acceptance.Mark]acceptance.Mark{0: 1, 3: 2}).String())
	assert.True(t, acceptance.Marks(0).IsEmpty())
}

func TestAllocator_Budget(t *testing.T) {
	a := acceptance.NewAllocator(4)

	m, err := a.Add()
	require.NoError(t, err)
	assert.Equal(t, acceptance.Mark(0), m)

	first, err := a.AddN(3)
	require.NoError(t, err)
	assert.Equal(t, acceptance.Mark(1), first)
	assert.Equal(t, 4, a.Count())

	_, err = a.Add()
	require.Error(t, err)
	assert.True(t, errors.Is(err, acceptance.ErrTooManyMarks))
	assert.Equal(t, 4, a.Count(), "a failed allocation must not consume marks")

	assert.Equal(t, acceptance.MaxMarks, acceptance.NewAllocator(0).Limit())
	assert.Equal(t, acceptance.MaxMarks, acceptance.NewAllocator(99).Limit())
}

func TestCondition_Simplification(t *testing.T) {
	f0, i1 := acceptance.Fin(0), acceptance.Inf(1)

	assert.True(t, acceptance.And().IsTrue())
	assert.True(t, acceptance.Or().IsFalse())
	assert.True(t, acceptance.And(f0, acceptance.False()).IsFalse())
	assert.True(t, acceptance.Or(f0, acceptance.True()).IsTrue())
	assert.Equal(t, "Fin(0)", acceptance.And(f0, acceptance.True(), f0).String())
	assert.Equal(t, "Fin(0) & Inf(1)", acceptance.And(f0, acceptance.And(i1)).String())
	assert.Equal(t, "Fin(2) & (Fin(0) | Inf(1))",
		acceptance.And(acceptance.Fin(2), acceptance.Or(f0, i1)).String())
}

func TestCondition_RestrictRenameNegate(t *testing.T) {
	c := acceptance.And(acceptance.Or(acceptance.Fin(0), acceptance.Inf(3)), acceptance.Fin(5))

	assert.Equal(t, "Fin(0) | Inf(3)", c.Restrict(acceptance.MarksOf(0, 3)).String())
	assert.Equal(t, "Fin(0) & Fin(5)", c.Restrict(acceptance.MarksOf(0, 5)).String())
	assert.True(t, c.Restrict(0).IsTrue())

	renamed := c.Rename(map[acceptance.Mark]acceptance.Mark{0: 0, 3: 1, 5: 2})
	assert.Equal(t, "(Fin(0) | Inf(1)) & Fin(2)", renamed.String())
	assert.Equal(t, acceptance.MarksOf(0, 1, 2), renamed.Marks())

	assert.Equal(t, "(Inf(0) & Fin(3)) | Inf(5)", c.Negate().String())
}

func TestCondition_Eval(t *testing.T) {
	c := acceptance.And(acceptance.Or(acceptance.Fin(0), acceptance.Inf(1)), acceptance.Fin(2))
	neg := c.Negate()

	for inf := acceptance.Marks(0); inf < 8; inf++ {
		assert.NotEqual(t, c.Eval(inf), neg.Eval(inf), "negation must flip every run, inf=%s", inf)
	}
	assert.True(t, c.Eval(0))
	assert.True(t, c.Eval(acceptance.MarksOf(0, 1)))
	assert.False(t, c.Eval(acceptance.MarksOf(0)))
	assert.False(t, c.Eval(acceptance.MarksOf(1, 2)))
}

func TestModel_Condition(t *testing.T) {
	m := acceptance.NewModel()
	assert.True(t, m.Empty())
	assert.True(t, m.Condition().IsTrue())

	u := m.Entry("(a U b)")
	u.Fin = 0

	g := m.Entry("(false R (a U b))")
	g.Fin = acceptance.NoMark

	or := m.Entry("(G F a | G F b)")
	or.AddDisj(1)
	or.AddDisj(2)
	or.AddDisj(2)

	require.Equal(t, []string{"(G F a | G F b)", "(a U b)", "(false R (a U b))"}, m.Keys())
	assert.Equal(t, "(Fin(1) | Fin(2)) & Fin(0)", m.Condition().String())

	u.Inf = 3
	m.RememberInf(3)
	assert.Equal(t, "(Fin(1) | Fin(2)) & (Fin(0) | Inf(3))", m.Condition().String())
	assert.Equal(t, acceptance.MarksOf(3), m.InfMarks())

	d, ok := m.Lookup("(a U b)")
	require.True(t, ok)
	assert.Same(t, u, d)
}
