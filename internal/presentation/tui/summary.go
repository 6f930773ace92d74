// Package tui renders human oriented reports of a translation.
package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/tela/pkg/domain"
)

// Summary returns a Markdown report of a translation of formula. Events
// may be nil.
func Summary(formula string, stats domain.Stats, events []domain.Event) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# `%s`\n\n", formula)

	sb.WriteString("| | states | edges |\n|---|---|---|\n")
	fmt.Fprintf(&sb, "| SLAA | %d | %d |\n", stats.SLAAStates, stats.SLAAEdges)
	fmt.Fprintf(&sb, "| NA | %d | %d |\n\n", stats.States, stats.Edges)

	fmt.Fprintf(&sb, "- **acceptance**: `%d %s`\n", stats.Marks, stats.Acceptance)
	if stats.Pass != "" {
		fmt.Fprintf(&sb, "- **pass**: %s\n", stats.Pass)
	}
	fmt.Fprintf(&sb, "- **deterministic**: %t\n", stats.Deterministic)

	if len(events) > 0 {
		sb.WriteString("\n## Construction\n\n")
		for _, e := range events {
			fmt.Fprintf(&sb, "- %s: `%s`\n", e.Type, e.Formula)
		}
	}
	return sb.String()
}
