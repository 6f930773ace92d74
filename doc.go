/*
Package tela translates Linear Temporal Logic formulas into automata over
infinite words with generic Emerson-Lei acceptance.

The translation runs in two steps. The formula, in negation normal form, is
first turned into a self-loop alternating automaton (SLAA) whose states are
subformulas and whose acceptance condition uses both Fin and Inf marks. The
configurations of that automaton are then explored to build a
nondeterministic automaton (NA), which is reduced by merging parallel edges
and equivalent states.

# Usage

	tr, err := tela.New(tela.WithConfig(domain.DefaultConfig()))
	if err != nil {
		log.Fatal(err)
	}
	res, err := tr.Translate(ctx, "G F a -> G F b")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Stats.States, res.Stats.Acceptance)

Render serializes the result in HOA, DOT, Mermaid or a Markdown summary and
optionally caches it through a ports.Cache, so the same Translator can back
the HTTP API and the MCP tool.

# Negation

When Config.TryNegation is set, the negated formula is translated as well.
If its automaton is deterministic it is complemented and replaces the direct
result when it is smaller. Running out of acceptance marks in one of the two
passes is not fatal as long as the other one succeeds.
*/
package tela
