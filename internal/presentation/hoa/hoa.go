// Package hoa writes automata in the Hanoi Omega-Automata format, version 1.
package hoa

import (
	"fmt"
	"strings"

	"github.com/aretw0/tela/internal/alternating"
	"github.com/aretw0/tela/pkg/acceptance"
	"github.com/aretw0/tela/pkg/automaton"
	"github.com/aretw0/tela/pkg/label"
)

// Tool is written in the tool header.
const Tool = "tela"

// NA renders a nondeterministic automaton.
func NA(a *automaton.Automaton) string {
	var sb strings.Builder
	d := a.Dict()

	header(&sb, a.Name(), a.NumStates(), d)
	fmt.Fprintf(&sb, "Start: %d\n", a.Init())
	acc(&sb, a.NumMarks(), a.Condition())
	props := []string{"trans-labels", "explicit-labels", "trans-acc"}
	if a.IsDeterministic() {
		props = append(props, "deterministic")
	}
	fmt.Fprintf(&sb, "properties: %s\n", strings.Join(props, " "))

	sb.WriteString("--BODY--\n")
	for s := 0; s < a.NumStates(); s++ {
		st := automaton.State(s)
		fmt.Fprintf(&sb, "State: %d %s\n", s, quote(a.StateName(st)))
		for _, e := range a.Edges(st) {
			fmt.Fprintf(&sb, "[%s] %d%s\n", d.FormatIndexed(e.Label), e.Dst, marks(e.Marks))
		}
	}
	sb.WriteString("--END--\n")
	return sb.String()
}

// SLAA renders a self-loop alternating automaton. Edges with no target are
// redirected to an extra state named "true" that loops on every letter and
// sees every Inf mark of the condition, so runs reaching it stay accepting.
func SLAA(a *alternating.Automaton) string {
	var sb strings.Builder
	d := a.Dict()
	cond := a.Condition()

	sink := -1
	for _, init := range a.Inits() {
		if len(init) == 0 {
			sink = a.NumStates()
		}
	}
	for s := 0; s < a.NumStates() && sink < 0; s++ {
		for _, id := range a.Edges(alternating.StateID(s)) {
			if len(a.Edge(id).Targets) == 0 {
				sink = a.NumStates()
				break
			}
		}
	}
	states := a.NumStates()
	if sink >= 0 {
		states++
	}

	header(&sb, a.Formula().String(), states, d)
	for _, init := range a.Inits() {
		fmt.Fprintf(&sb, "Start: %s\n", targets(init, sink))
	}
	acc(&sb, a.NumMarks(), cond)
	sb.WriteString("properties: trans-labels explicit-labels trans-acc univ-branch\n")

	sb.WriteString("--BODY--\n")
	for s := 0; s < a.NumStates(); s++ {
		id := alternating.StateID(s)
		fmt.Fprintf(&sb, "State: %d %s\n", s, quote(a.State(id).String()))
		for _, eid := range a.Edges(id) {
			e := a.Edge(eid)
			fmt.Fprintf(&sb, "[%s] %s%s\n", d.FormatIndexed(e.Label), targets(e.Targets, sink), marks(e.Marks))
		}
	}
	if sink >= 0 {
		fmt.Fprintf(&sb, "State: %d \"true\"\n", sink)
		fmt.Fprintf(&sb, "[t] %d%s\n", sink, marks(cond.InfMarks()))
	}
	sb.WriteString("--END--\n")
	return sb.String()
}

func header(sb *strings.Builder, name string, states int, d *label.Dict) {
	sb.WriteString("HOA: v1\n")
	fmt.Fprintf(sb, "tool: %s\n", quote(Tool))
	if name != "" {
		fmt.Fprintf(sb, "name: %s\n", quote(name))
	}
	fmt.Fprintf(sb, "States: %d\n", states)
	aps := d.APs()
	fmt.Fprintf(sb, "AP: %d", len(aps))
	for _, ap := range aps {
		sb.WriteString(" " + quote(ap))
	}
	sb.WriteString("\n")
}

func acc(sb *strings.Builder, n int, cond acceptance.Condition) {
	fmt.Fprintf(sb, "Acceptance: %d %s\n", n, cond)
}

func targets(set alternating.StateSet, sink int) string {
	if len(set) == 0 {
		return fmt.Sprint(sink)
	}
	parts := make([]string, len(set))
	for i, s := range set {
		parts[i] = fmt.Sprint(s)
	}
	return strings.Join(parts, "&")
}

func marks(m acceptance.Marks) string {
	if m.IsEmpty() {
		return ""
	}
	return " " + m.String()
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
