package tela_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/tela"
	"github.com/aretw0/tela/pkg/domain"
)

// ExampleTranslator_Translate translates the classical until and prints the
// size and acceptance of the nondeterministic automaton.
func ExampleTranslator_Translate() {
	tr, err := tela.New()
	if err != nil {
		log.Fatal(err)
	}

	res, err := tr.Translate(context.Background(), "a U b")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Stats.States, res.Stats.Acceptance)
	// Output: 2 Inf(0)
}

// ExampleTranslator_Render renders the alternating automaton of a formula in
// the HOA format, using the ltl3ba preset.
func ExampleTranslator_Render() {
	cfg := domain.DefaultConfig()
	if err := cfg.ApplyPreset("ltl3ba"); err != nil {
		log.Fatal(err)
	}
	tr, err := tela.New(tela.WithConfig(cfg))
	if err != nil {
		log.Fatal(err)
	}

	resp, err := tr.Render(context.Background(), domain.Request{
		Formula: "G a",
		Phase:   domain.PhaseSLAA,
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(resp.Output)
	// Output:
	// HOA: v1
	// tool: "tela"
	// name: "false R a"
	// States: 1
	// AP: 1 "a"
	// Start: 0
	// Acceptance: 0 t
	// properties: trans-labels explicit-labels trans-acc univ-branch
	// --BODY--
	// State: 0 "false R a"
	// [0] 0
	// --END--
}
