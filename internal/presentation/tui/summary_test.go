package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/tela/internal/presentation/tui"
	"github.com/aretw0/tela/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary(t *testing.T) {
	stats := domain.Stats{
		SLAAStates: 1, SLAAEdges: 2,
		States: 2, Edges: 3,
		Marks: 1, Acceptance: "Inf(0)",
		Pass: "basic",
	}
	out := tui.Summary("a U b", stats, []domain.Event{{Type: domain.EventMergeableUntil, Formula: "a U b"}})

	assert.Contains(t, out, "# `a U b`")
	assert.Contains(t, out, "| SLAA | 1 | 2 |")
	assert.Contains(t, out, "| NA | 2 | 3 |")
	assert.Contains(t, out, "`1 Inf(0)`")
	assert.Contains(t, out, "**pass**: basic")
	assert.Contains(t, out, "**deterministic**: false")
	assert.Contains(t, out, "- mergeable_until: `a U b`")
}

func TestSummary_NoEvents(t *testing.T) {
	out := tui.Summary("G a", domain.Stats{Acceptance: "t"}, nil)
	assert.NotContains(t, out, "Construction")
	assert.NotContains(t, out, "**pass**")
}

func TestRenderer(t *testing.T) {
	render, err := tui.NewRenderer()
	require.NoError(t, err)
	out, err := render("# title\n\nbody")
	require.NoError(t, err)
	assert.Contains(t, out, "title")
	assert.Contains(t, out, "body")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|_|")
}
