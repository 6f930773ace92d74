package tela_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/tela"
	"github.com/aretw0/tela/pkg/adapters/memory"
	"github.com/aretw0/tela/pkg/domain"
	"github.com/aretw0/tela/pkg/ltl"
	"github.com/aretw0/tela/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidConfig(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.EqLevel = 7
	cfg.UMergeLevel = -1
	_, err := tela.New(tela.WithConfig(cfg))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
	assert.Contains(t, err.Error(), "eq_level")
	assert.Contains(t, err.Error(), "u_merge_level")
}

func TestTranslate_ClassicalUntil(t *testing.T) {
	tr, err := tela.New()
	require.NoError(t, err)

	res, err := tr.Translate(context.Background(), "a U b")
	require.NoError(t, err)
	assert.Equal(t, "a U b", res.Formula.String())
	require.NotNil(t, res.SLAA)
	assert.Equal(t, 2, res.NA.NumStates())
	assert.Equal(t, tela.PassBasic, res.Stats.Pass, "the complement of !(a U b) needs a sink")
	assert.Equal(t, "Inf(0)", res.Stats.Acceptance)
	assert.Equal(t, "a U b", res.NA.Name())
}

func TestTranslate_Properties(t *testing.T) {
	inputs := []string{
		"true",
		"false",
		"a",
		"G a",
		"F a",
		"X a",
		"a R b",
		"G F a -> G F b",
		"(a U b) & (c U d)",
		"F (a & X G !b)",
		"G (a -> F b)",
	}
	for _, negation := range []bool{false, true} {
		cfg := domain.DefaultConfig()
		cfg.TryNegation = negation
		tr, err := tela.New(tela.WithConfig(cfg))
		require.NoError(t, err)

		for _, input := range inputs {
			t.Run(input, func(t *testing.T) {
				res, err := tr.Translate(context.Background(), input)
				require.NoError(t, err)
				na := res.NA
				assert.Equal(t, res.Stats.States, na.NumStates())
				assert.Equal(t, res.Stats.Marks, na.NumMarks())
				assert.True(t, na.Condition().Marks().Intersect(na.UsedMarks()) == na.Condition().Marks(),
					"the condition only mentions marks on edges")
				assert.Equal(t, res.Formula.String(), na.Name())
				if !negation {
					assert.Equal(t, tela.PassBasic, res.Stats.Pass)
				}
			})
		}
	}
}

func TestTranslate_SyntaxError(t *testing.T) {
	tr, err := tela.New()
	require.NoError(t, err)
	_, err = tr.Translate(context.Background(), "a U")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ltl.ErrSyntax))
}

func TestTranslate_TooManyMarks(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.MaxMarks = 1
	tr, err := tela.New(tela.WithConfig(cfg))
	require.NoError(t, err)

	_, err = tr.Translate(context.Background(), "G F a & G F b & G F c")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTooManyMarks))
}

func TestTranslate_Canceled(t *testing.T) {
	tr, err := tela.New()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = tr.Translate(ctx, "a U b")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMergeable(t *testing.T) {
	tr, err := tela.New()
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := tr.Mergeable(ctx, "(a | b) U G a", domain.EventMergeableUntil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tr.Mergeable(ctx, "a U G b", domain.EventMergeableUntil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAlternating(t *testing.T) {
	var events []domain.Event
	tr, err := tela.New(tela.WithObserver(func(e domain.Event) { events = append(events, e) }))
	require.NoError(t, err)

	res, err := tr.Alternating(context.Background(), "(a | b) U G a")
	require.NoError(t, err)
	assert.Nil(t, res.NA)
	assert.Equal(t, res.SLAA.NumStates(), res.Stats.SLAAStates)
	assert.Equal(t, res.Events, events)
}

func TestRender_Formats(t *testing.T) {
	tr, err := tela.New()
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name     string
		req      domain.Request
		contains []string
	}{
		{"default is HOA of the NA", domain.Request{Formula: "a U b"}, []string{"HOA: v1", "Acceptance: 1 Inf(0)"}},
		{"SLAA only", domain.Request{Formula: "a U b", Phase: domain.PhaseSLAA}, []string{"univ-branch"}},
		{"both phases", domain.Request{Formula: "a U b", Phase: domain.PhaseBoth}, []string{"univ-branch", "--END--\nHOA: v1"}},
		{"dot", domain.Request{Formula: "a U b", Format: domain.FormatDOT}, []string{"digraph"}},
		{"mermaid", domain.Request{Formula: "a U b", Format: domain.FormatMermaid}, []string{"graph LR"}},
		{"summary", domain.Request{Formula: "a U b", Format: domain.FormatSummary}, []string{"# `a U b`", "| NA | 2 |"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tr.Render(ctx, tt.req)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, resp.Output, want)
			}
			assert.False(t, resp.Cached)
		})
	}
}

func TestRender_InvalidRequests(t *testing.T) {
	tr, err := tela.New()
	require.NoError(t, err)
	ctx := context.Background()

	_, err = tr.Render(ctx, domain.Request{Formula: "a", Format: "svg"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	_, err = tr.Render(ctx, domain.Request{Formula: "a", Phase: 4})
	assert.ErrorIs(t, err, domain.ErrUnsupportedPhase)

	bad := domain.DefaultConfig()
	bad.MaxMarks = 0
	_, err = tr.Render(ctx, domain.Request{Formula: "a", Config: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestRender_RequestConfigOverrides(t *testing.T) {
	tr, err := tela.New()
	require.NoError(t, err)
	ctx := context.Background()

	cfg := domain.DefaultConfig()
	cfg.FinToInf = false
	resp, err := tr.Render(ctx, domain.Request{Formula: "a U b", Config: &cfg})
	require.NoError(t, err)
	assert.Contains(t, resp.Output, "Acceptance: 1 Fin(0)")
}

func TestRender_Cache(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	cache := memory.NewCache()

	tr, err := tela.New(
		tela.WithCache(cache),
		tela.WithLocker(memory.NewLocker(), 0),
		tela.WithMetrics(metrics),
	)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := tr.Render(ctx, domain.Request{Formula: "a U b"})
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, cache.Len())

	// the key is computed on the normalized formula
	second, err := tr.Render(ctx, domain.Request{Formula: "(a) U (b)"})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Output, second.Output)
	assert.Equal(t, first.Stats, second.Stats)

	_, err = tr.Render(ctx, domain.Request{Formula: "a U b", Format: domain.FormatDOT})
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	count, err := testutil.GatherAndCount(reg, "tela_cache_lookups_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "hit and miss series")
	require.NoError(t, tr.Close())
}

// countingCache counts the entries written to the cache.
type countingCache struct {
	*memory.Cache
	mu   sync.Mutex
	sets int
}

func (c *countingCache) Set(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
	return c.Cache.Set(ctx, key, value)
}

func TestRender_ConcurrentMissesTranslateOnce(t *testing.T) {
	cache := &countingCache{Cache: memory.NewCache()}
	tr, err := tela.New(
		tela.WithCache(cache),
		tela.WithLocker(memory.NewLocker(), 0),
	)
	require.NoError(t, err)

	var wg sync.WaitGroup
	outputs := make([]string, 8)
	for i := range outputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := tr.Render(context.Background(), domain.Request{Formula: "G F a"})
			if assert.NoError(t, err) {
				outputs[i] = resp.Output
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, cache.sets)
	for _, out := range outputs {
		assert.True(t, strings.HasPrefix(out, "HOA: v1"))
		assert.Equal(t, outputs[0], out)
	}
}
