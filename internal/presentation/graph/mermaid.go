package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/tela/internal/alternating"
	"github.com/aretw0/tela/pkg/acceptance"
	"github.com/aretw0/tela/pkg/automaton"
	"github.com/aretw0/tela/pkg/label"
)

// Overlay highlights states of a rendered automaton.
type Overlay struct {
	// Marked are drawn as visited, e.g. the states of an accepting lasso.
	Marked []string
	// Current is drawn as the active state.
	Current string
}

// MermaidNA produces a Mermaid flowchart of a nondeterministic automaton.
// The initial state is drawn as a circle, every other state as a rounded
// box; edge labels carry the letter and the marks.
func MermaidNA(a *automaton.Automaton, overlay *Overlay) string {
	var sb strings.Builder
	d := a.Dict()
	sb.WriteString("graph LR\n")

	for s := 0; s < a.NumStates(); s++ {
		st := automaton.State(s)
		opener, closer := "(", ")"
		if st == a.Init() {
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", stateID(s), opener, escape(a.StateName(st)), closer)
	}
	for s := 0; s < a.NumStates(); s++ {
		for _, e := range a.Edges(automaton.State(s)) {
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", stateID(s), escape(edgeLabel(d, e.Label, e.Marks)), stateID(int(e.Dst)))
		}
	}

	if overlay != nil {
		names := make(map[string]int, a.NumStates())
		for s := 0; s < a.NumStates(); s++ {
			names[a.StateName(automaton.State(s))] = s
		}
		writeOverlay(&sb, overlay, func(name string) (string, bool) {
			s, ok := names[name]
			return stateID(s), ok
		})
	}
	return sb.String()
}

// MermaidSLAA produces a Mermaid flowchart of an alternating automaton.
// Edges with several targets fan out from a small junction node; edges with
// none end in a "true" node.
func MermaidSLAA(a *alternating.Automaton) string {
	var sb strings.Builder
	d := a.Dict()
	sb.WriteString("graph LR\n")

	inits := make(map[alternating.StateID]bool)
	for _, set := range a.Inits() {
		for _, s := range set {
			inits[s] = true
		}
	}
	for s := 0; s < a.NumStates(); s++ {
		id := alternating.StateID(s)
		opener, closer := "(", ")"
		if inits[id] {
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", stateID(s), opener, escape(a.State(id).String()), closer)
	}

	sinkUsed := false
	junction := 0
	for s := 0; s < a.NumStates(); s++ {
		for _, eid := range a.Edges(alternating.StateID(s)) {
			e := a.Edge(eid)
			text := escape(edgeLabel(d, e.Label, e.Marks))
			switch len(e.Targets) {
			case 0:
				sinkUsed = true
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> T\n", stateID(s), text)
			case 1:
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", stateID(s), text, stateID(int(e.Targets[0])))
			default:
				j := fmt.Sprintf("j%d", junction)
				junction++
				fmt.Fprintf(&sb, "    %s((\"&\"))\n", j)
				fmt.Fprintf(&sb, "    %s -- \"%s\" --- %s\n", stateID(s), text, j)
				for _, t := range e.Targets {
					fmt.Fprintf(&sb, "    %s --> %s\n", j, stateID(int(t)))
				}
			}
		}
	}
	if sinkUsed {
		sb.WriteString("    T[\"true\"]\n")
	}
	return sb.String()
}

func writeOverlay(sb *strings.Builder, overlay *Overlay, resolve func(string) (string, bool)) {
	sb.WriteString("\n    %% Overlay Styles\n")
	// black text stays readable on both light and dark themes
	sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

	seen := make(map[string]bool)
	for _, name := range overlay.Marked {
		id, ok := resolve(name)
		if ok && !seen[id] {
			seen[id] = true
			fmt.Fprintf(sb, "    class %s visited;\n", id)
		}
	}
	if id, ok := resolve(overlay.Current); ok && overlay.Current != "" {
		fmt.Fprintf(sb, "    class %s current;\n", id)
	}
}

func stateID(s int) string {
	return fmt.Sprintf("s%d", s)
}

func edgeLabel(d *label.Dict, l label.Label, m acceptance.Marks) string {
	text := d.Format(l)
	if !m.IsEmpty() {
		text += " " + m.String()
	}
	return text
}

// escape replaces the characters Mermaid cannot hold inside quoted labels.
func escape(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.ReplaceAll(s, "{", "#123;")
	s = strings.ReplaceAll(s, "}", "#125;")
	return s
}
