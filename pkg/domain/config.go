package domain

import (
	"fmt"

	"github.com/aretw0/tela/pkg/acceptance"
	"go.uber.org/multierr"
)

// Config selects the optimizations applied by the translation pipeline.
// The zero value is not useful; start from DefaultConfig.
type Config struct {
	// DisjMerging folds the loops of disjuncts with equal loop labels into
	// the disjunction state.
	DisjMerging bool `yaml:"disj_merging" json:"disj_merging" mapstructure:"disj_merging"`
	// UMergeLevel: 0 no merge, 1 merge that minimizes the NA, 2 merge that
	// minimizes the SLAA, 3 merge only states without looping alternating
	// edges.
	UMergeLevel int `yaml:"u_merge_level" json:"u_merge_level" mapstructure:"u_merge_level"`
	// GMergeLevel: 0 no merge (one global Fin mark), 1 merge G of a single
	// temporal formula, 2 merge G of a conjunction of temporal formulas.
	GMergeLevel int `yaml:"g_merge_level" json:"g_merge_level" mapstructure:"g_merge_level"`
	// SingleInitState builds one initial configuration instead of one per
	// DNF clause of the input.
	SingleInitState bool `yaml:"single_init_state" json:"single_init_state" mapstructure:"single_init_state"`
	// NextSingleSucc translates X f with a single edge to f.
	NextSingleSucc bool `yaml:"next_single_succ" json:"next_single_succ" mapstructure:"next_single_succ"`
	// TryNegation also translates the negated formula and keeps the
	// complement when it is deterministic and smaller.
	TryNegation bool `yaml:"try_negation" json:"try_negation" mapstructure:"try_negation"`
	// FinToInf rewrites eliminable Fin marks into Inf marks during the
	// subset construction.
	FinToInf bool `yaml:"fin_to_inf" json:"fin_to_inf" mapstructure:"fin_to_inf"`
	// EqLevel: 0 no state merging, 1 identical signatures, 2 identical
	// signatures up to self-loops.
	EqLevel int `yaml:"eq_level" json:"eq_level" mapstructure:"eq_level"`
	// MaxMarks bounds the acceptance marks of one translation.
	MaxMarks int `yaml:"max_marks" json:"max_marks" mapstructure:"max_marks"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		DisjMerging:     true,
		UMergeLevel:     2,
		GMergeLevel:     2,
		SingleInitState: false,
		NextSingleSucc:  false,
		TryNegation:     true,
		FinToInf:        true,
		EqLevel:         2,
		MaxMarks:        acceptance.MaxMarks,
	}
}

// Presets mimic the translators the construction descends from.
var Presets = map[string]func(*Config){
	"none": func(*Config) {},
	// ltl2ba: no negation attempt, ltl2ba's simple equivalence check.
	"ltl2ba": func(c *Config) {
		c.TryNegation = false
		c.EqLevel = 1
	},
	// ltl3ba: no negation attempt, one initial state, X with one successor.
	"ltl3ba": func(c *Config) {
		c.TryNegation = false
		c.SingleInitState = true
		c.NextSingleSucc = true
	},
}

// ApplyPreset applies the named preset to c.
func (c *Config) ApplyPreset(name string) error {
	p, ok := Presets[name]
	if !ok {
		return fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, name)
	}
	p(c)
	return nil
}

// Validate reports every out-of-range field at once.
func (c Config) Validate() error {
	var err error
	if c.UMergeLevel < 0 || c.UMergeLevel > 3 {
		err = multierr.Append(err, fmt.Errorf("%w: u_merge_level must be in 0..3, got %d", ErrInvalidConfig, c.UMergeLevel))
	}
	if c.GMergeLevel < 0 || c.GMergeLevel > 2 {
		err = multierr.Append(err, fmt.Errorf("%w: g_merge_level must be in 0..2, got %d", ErrInvalidConfig, c.GMergeLevel))
	}
	if c.EqLevel < 0 || c.EqLevel > 2 {
		err = multierr.Append(err, fmt.Errorf("%w: eq_level must be in 0..2, got %d", ErrInvalidConfig, c.EqLevel))
	}
	if c.MaxMarks < 1 || c.MaxMarks > acceptance.MaxMarks {
		err = multierr.Append(err, fmt.Errorf("%w: max_marks must be in 1..%d, got %d", ErrInvalidConfig, acceptance.MaxMarks, c.MaxMarks))
	}
	return err
}
