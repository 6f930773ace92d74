package cli

import (
	"fmt"

	"github.com/aretw0/tela/pkg/domain"
	"github.com/spf13/cobra"
)

// AddConfigFlags registers the translation options on cmd. Their defaults
// are only documentation: ConfigFromFlags applies the flags the user set.
func AddConfigFlags(cmd *cobra.Command) {
	d := domain.DefaultConfig()
	f := cmd.Flags()
	f.StringP("act-like", "a", "", "Preset to start from: none, ltl2ba or ltl3ba")
	f.BoolP("disj-merging", "d", d.DisjMerging, "Merge the loops of disjunctions")
	f.IntP("u-merge", "F", d.UMergeLevel, "Until merging: 0 none, 1 minimize NA, 2 minimize SLAA, 3 only states without looping alternating edges")
	f.IntP("g-merge", "G", d.GMergeLevel, "G merging: 0 none, 1 temporal argument, 2 conjunction of temporal formulas")
	f.BoolP("single-init", "i", d.SingleInitState, "Build a single initial state")
	f.BoolP("next-single-succ", "X", d.NextSingleSucc, "Translate X f with a single edge")
	f.BoolP("negation", "n", d.TryNegation, "Also translate the negation and keep its complement when smaller")
	f.BoolP("fin-to-inf", "t", d.FinToInf, "Rewrite eliminable Fin marks into Inf marks")
	f.IntP("eq-level", "e", d.EqLevel, "State merging: 0 none, 1 identical, 2 identical up to self-loops")
	f.Int("max-marks", d.MaxMarks, "Maximal number of acceptance marks")
}

// ConfigFromFlags applies the preset flag, then every explicitly set
// option flag, to base.
func ConfigFromFlags(cmd *cobra.Command, base domain.Config) (domain.Config, error) {
	cfg := base
	f := cmd.Flags()

	if f.Changed("act-like") {
		name, _ := f.GetString("act-like")
		if err := cfg.ApplyPreset(name); err != nil {
			return base, err
		}
	}

	bools := map[string]*bool{
		"disj-merging":     &cfg.DisjMerging,
		"single-init":      &cfg.SingleInitState,
		"next-single-succ": &cfg.NextSingleSucc,
		"negation":         &cfg.TryNegation,
		"fin-to-inf":       &cfg.FinToInf,
	}
	for name, dst := range bools {
		if f.Changed(name) {
			v, err := f.GetBool(name)
			if err != nil {
				return base, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
			}
			*dst = v
		}
	}
	ints := map[string]*int{
		"u-merge":   &cfg.UMergeLevel,
		"g-merge":   &cfg.GMergeLevel,
		"eq-level":  &cfg.EqLevel,
		"max-marks": &cfg.MaxMarks,
	}
	for name, dst := range ints {
		if f.Changed(name) {
			v, err := f.GetInt(name)
			if err != nil {
				return base, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
			}
			*dst = v
		}
	}

	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}
