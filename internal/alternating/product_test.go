package alternating_test

import (
	"testing"

	"github.com/aretw0/tela/internal/alternating"
	"github.com/aretw0/tela/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_Properties(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.UMergeLevel = 0
	a := build(t, "X ((a U b) & (c U d))", cfg)

	x := a.Edge(a.Edges(state(t, a, "X ((a U b) & (c U d))"))[0])
	require.Len(t, x.Targets, 2, "X targets both conjuncts universally")
	left := a.Edges(state(t, a, "a U b"))
	right := a.Edges(state(t, a, "c U d"))
	require.NotEmpty(t, left)
	require.NotEmpty(t, right)

	for _, keep := range []bool{true, false} {
		product := a.Product([][]alternating.EdgeID{left, right}, keep)
		assert.LessOrEqual(t, len(product), len(left)*len(right))
		assert.IsIncreasing(t, product)

		for _, id := range product {
			e := a.Edge(id)
			found := false
			for _, l := range left {
				for _, r := range right {
					el, er := a.Edge(l), a.Edge(r)
					if !e.Targets.Equal(el.Targets.Union(er.Targets)) {
						continue
					}
					if !a.Dict().Equal(e.Label, a.Dict().And(el.Label, er.Label)) {
						continue
					}
					if keep && e.Marks != el.Marks.Union(er.Marks) {
						continue
					}
					found = true
				}
			}
			assert.True(t, found, "every product edge comes from one pair of operand edges")
			if !keep {
				assert.True(t, e.Marks.IsEmpty())
			}
		}
	}
}

func TestProduct_Degenerate(t *testing.T) {
	a := build(t, "a U b", domain.DefaultConfig())
	u := a.Edges(state(t, a, "a U b"))

	assert.Equal(t, a.Product([][]alternating.EdgeID{u}, true), a.Product([][]alternating.EdgeID{u, u}, true),
		"identical operands are considered once")
	assert.Empty(t, a.Product([][]alternating.EdgeID{u, nil}, true))

	same := a.Product([][]alternating.EdgeID{u}, true)
	assert.ElementsMatch(t, u, same, "a single operand is its own product")
}

func TestStateSet(t *testing.T) {
	s := alternating.NewStateSet(3, 1, 3, 0)
	assert.Equal(t, alternating.StateSet{0, 1, 3}, s)
	assert.True(t, s.Contains(1))
	assert.False(t, s.Contains(2))
	assert.True(t, s.Includes(alternating.StateSet{0, 3}))
	assert.False(t, s.Includes(alternating.StateSet{2}))
	assert.True(t, s.Includes(nil))
	assert.Equal(t, alternating.StateSet{0, 1, 2, 3}, s.With(2))
	assert.Equal(t, alternating.StateSet{0, 3}, s.Without(1))
	assert.Equal(t, alternating.StateSet{1}, s.Minus(alternating.StateSet{0, 3, 7}))
	assert.Equal(t, "{0,1,3}", s.String())
	assert.Equal(t, "{}", alternating.StateSet{}.String())
}
