package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/tela/internal/alternating"
	"github.com/aretw0/tela/pkg/automaton"
)

// DotNA produces a Graphviz digraph of a nondeterministic automaton. The
// acceptance condition is the graph label.
func DotNA(a *automaton.Automaton) string {
	var sb strings.Builder
	d := a.Dict()

	fmt.Fprintf(&sb, "digraph %s {\n", strconv.Quote(a.Name()))
	sb.WriteString("  rankdir=LR\n")
	fmt.Fprintf(&sb, "  label=%s\n", strconv.Quote(fmt.Sprintf("[%d] %s", a.NumMarks(), a.Condition())))
	sb.WriteString("  labelloc=\"t\"\n")
	sb.WriteString("  node [shape=\"circle\"]\n")
	sb.WriteString("  I [label=\"\", style=invis, width=0]\n")
	fmt.Fprintf(&sb, "  I -> %d\n", a.Init())

	for s := 0; s < a.NumStates(); s++ {
		fmt.Fprintf(&sb, "  %d [label=%s]\n", s, strconv.Quote(a.StateName(automaton.State(s))))
	}
	for s := 0; s < a.NumStates(); s++ {
		for _, e := range a.Edges(automaton.State(s)) {
			fmt.Fprintf(&sb, "  %d -> %d [label=%s]\n", s, e.Dst, strconv.Quote(edgeLabel(d, e.Label, e.Marks)))
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

// DotSLAA produces a Graphviz digraph of an alternating automaton. Edges
// with several targets split at a point node.
func DotSLAA(a *alternating.Automaton) string {
	var sb strings.Builder
	d := a.Dict()

	fmt.Fprintf(&sb, "digraph %s {\n", strconv.Quote(a.Formula().String()))
	sb.WriteString("  rankdir=LR\n")
	fmt.Fprintf(&sb, "  label=%s\n", strconv.Quote(fmt.Sprintf("[%d] %s", a.NumMarks(), a.Condition())))
	sb.WriteString("  labelloc=\"t\"\n")
	sb.WriteString("  node [shape=\"box\", style=\"rounded\"]\n")

	for i, set := range a.Inits() {
		fmt.Fprintf(&sb, "  I%d [label=\"\", style=invis, width=0]\n", i)
		for _, s := range set {
			fmt.Fprintf(&sb, "  I%d -> %d\n", i, s)
		}
	}
	for s := 0; s < a.NumStates(); s++ {
		fmt.Fprintf(&sb, "  %d [label=%s]\n", s, strconv.Quote(a.State(alternating.StateID(s)).String()))
	}

	sinkUsed := false
	junction := 0
	for s := 0; s < a.NumStates(); s++ {
		for _, eid := range a.Edges(alternating.StateID(s)) {
			e := a.Edge(eid)
			text := strconv.Quote(edgeLabel(d, e.Label, e.Marks))
			switch len(e.Targets) {
			case 0:
				sinkUsed = true
				fmt.Fprintf(&sb, "  %d -> T [label=%s]\n", s, text)
			case 1:
				fmt.Fprintf(&sb, "  %d -> %d [label=%s]\n", s, e.Targets[0], text)
			default:
				fmt.Fprintf(&sb, "  E%d [shape=point]\n", junction)
				fmt.Fprintf(&sb, "  %d -> E%d [label=%s, arrowhead=none]\n", s, junction, text)
				for _, t := range e.Targets {
					fmt.Fprintf(&sb, "  E%d -> %d\n", junction, t)
				}
				junction++
			}
		}
	}
	if sinkUsed {
		sb.WriteString("  T [label=\"true\", shape=plaintext]\n")
	}
	sb.WriteString("}\n")
	return sb.String()
}
