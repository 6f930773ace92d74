package tela

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/tela/internal/alternating"
	"github.com/aretw0/tela/internal/subset"
	"github.com/aretw0/tela/pkg/automaton"
	"github.com/aretw0/tela/pkg/domain"
	"github.com/aretw0/tela/pkg/ltl"
	"github.com/aretw0/tela/pkg/observability"
	"github.com/aretw0/tela/pkg/ports"
	"go.uber.org/multierr"
)

// Version is the translator version reported by the CLI and the HOA tool
// header consumers.
const Version = "0.1.0"

// Pass names reported in Stats.Pass.
const (
	PassBasic    = "basic"
	PassNegation = "neg"
)

// Translator is the high-level entry point of the library. It is safe for
// concurrent use: every translation owns its label dictionary and automata.
type Translator struct {
	cfg      domain.Config
	logger   *slog.Logger
	observer domain.Observer
	cache    ports.Cache
	locker   ports.DistributedLocker
	metrics  *observability.Metrics
	lockTTL  time.Duration
}

// Option defines a functional option for configuring the Translator.
type Option func(*Translator)

// WithConfig replaces the default configuration.
func WithConfig(cfg domain.Config) Option {
	return func(t *Translator) {
		t.cfg = cfg
	}
}

// WithLogger sets a custom structured logger for the translator.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Translator) {
		t.logger = logger
	}
}

// WithObserver registers a callback for construction events.
func WithObserver(obs domain.Observer) Option {
	return func(t *Translator) {
		t.observer = obs
	}
}

// WithCache stores rendered automata so repeated requests skip the
// translation.
func WithCache(c ports.Cache) Option {
	return func(t *Translator) {
		t.cache = c
	}
}

// WithLocker serializes translations of the same request across
// translators sharing a cache. It has no effect without WithCache.
func WithLocker(l ports.DistributedLocker, ttl time.Duration) Option {
	return func(t *Translator) {
		t.locker = l
		t.lockTTL = ttl
	}
}

// WithMetrics records translations and cache lookups.
func WithMetrics(m *observability.Metrics) Option {
	return func(t *Translator) {
		t.metrics = m
	}
}

// New initializes a Translator. The configuration is validated once here.
func New(opts ...Option) (*Translator, error) {
	t := &Translator{
		cfg:     domain.DefaultConfig(),
		lockTTL: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.cfg.Validate(); err != nil {
		return nil, err
	}
	if t.logger == nil {
		t.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return t, nil
}

// Config returns the configuration used when a request carries none.
func (t *Translator) Config() domain.Config {
	return t.cfg
}

// Result is a finished translation.
type Result struct {
	// Formula is the normalized input.
	Formula *ltl.Formula
	// SLAA is the alternating automaton of Formula. It is nil when only the
	// negation could be translated.
	SLAA *alternating.Automaton
	// NA is the reduced nondeterministic automaton recognizing Formula,
	// possibly the complement of the automaton of its negation.
	NA     *automaton.Automaton
	Stats  domain.Stats
	Events []domain.Event
}

// Translate parses input and produces its nondeterministic automaton.
func (t *Translator) Translate(ctx context.Context, input string) (*Result, error) {
	return t.translate(ctx, input, t.cfg)
}

// Alternating parses input and produces only its alternating automaton.
func (t *Translator) Alternating(ctx context.Context, input string) (*Result, error) {
	return t.alternating(ctx, input, t.cfg)
}

// Mergeable reports whether building the alternating automaton of input
// takes the merge decision of the given kind: EventMergeableUntil for an
// until with a looping right-hand clause, EventGloballyLoop for a G that
// folds a loop of its argument.
func (t *Translator) Mergeable(ctx context.Context, input string, kind domain.EventType) (bool, error) {
	res, err := t.Alternating(ctx, input)
	if err != nil {
		return false, err
	}
	for _, e := range res.Events {
		if e.Type == kind {
			return true, nil
		}
	}
	return false, nil
}

// Close releases the cache when it holds connections.
func (t *Translator) Close() error {
	var err error
	if c, ok := t.cache.(io.Closer); ok {
		err = multierr.Append(err, c.Close())
	}
	return err
}

func parse(input string) (*ltl.Formula, error) {
	f, err := ltl.Parse(input)
	if err != nil {
		return nil, err
	}
	return ltl.Normalize(f), nil
}

// recorder forwards events to the observer and the metrics, collecting
// them into events unless it is nil.
func (t *Translator) recorder(events *[]domain.Event) domain.Observer {
	return func(e domain.Event) {
		if events != nil {
			*events = append(*events, e)
		}
		if t.observer != nil {
			t.observer(e)
		}
		if t.metrics != nil {
			t.metrics.Observer()(e)
		}
	}
}

func (t *Translator) alternating(ctx context.Context, input string, cfg domain.Config) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := parse(input)
	if err != nil {
		return nil, err
	}
	res := &Result{Formula: f}
	res.SLAA, err = alternating.Build(f, cfg,
		alternating.WithLogger(t.logger),
		alternating.WithObserver(t.recorder(&res.Events)),
	)
	if err != nil {
		return nil, err
	}
	res.Stats = domain.Stats{
		SLAAStates: res.SLAA.NumStates(),
		SLAAEdges:  res.SLAA.NumEdges(),
		Marks:      res.SLAA.NumMarks(),
		Acceptance: res.SLAA.Condition().String(),
	}
	return res, nil
}

type pass struct {
	slaa *alternating.Automaton
	na   *automaton.Automaton
}

func (t *Translator) run(f *ltl.Formula, cfg domain.Config, obs domain.Observer) (*pass, error) {
	slaa, err := alternating.Build(f, cfg, alternating.WithLogger(t.logger), alternating.WithObserver(obs))
	if err != nil {
		return nil, err
	}
	na, err := subset.Determinize(slaa, cfg, subset.WithLogger(t.logger))
	if err != nil {
		return nil, err
	}
	return &pass{slaa: slaa, na: na}, nil
}

func (t *Translator) translate(ctx context.Context, input string, cfg domain.Config) (res *Result, err error) {
	start := time.Now()
	defer func() {
		if t.metrics == nil {
			return
		}
		var stats domain.Stats
		if res != nil {
			stats = res.Stats
		}
		t.metrics.ObserveTranslation(stats, time.Since(start), err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := parse(input)
	if err != nil {
		return nil, err
	}
	res = &Result{Formula: f}
	basic, basicErr := t.run(f, cfg, t.recorder(&res.Events))
	if basicErr != nil && !errors.Is(basicErr, domain.ErrTooManyMarks) {
		return nil, basicErr
	}

	var neg *pass
	var negErr error
	if cfg.TryNegation {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		neg, negErr = t.negation(f, cfg, t.recorder(nil))
		if negErr != nil && !errors.Is(negErr, domain.ErrTooManyMarks) {
			return nil, negErr
		}
		if negErr != nil {
			t.logger.Debug("negation pass skipped", "err", negErr)
		}
	}

	winner, name := basic, PassBasic
	switch {
	case basic == nil && neg == nil:
		if negErr != nil {
			return nil, multierr.Combine(basicErr, negErr)
		}
		return nil, basicErr
	case basic == nil:
		winner, name = neg, PassNegation
	case neg != nil && smaller(neg.na, basic.na):
		winner, name = neg, PassNegation
	}

	if basic != nil {
		res.SLAA = basic.slaa
	}
	res.NA = winner.na
	res.Stats = domain.Stats{
		SLAAStates:    winner.slaa.NumStates(),
		SLAAEdges:     winner.slaa.NumEdges(),
		States:        winner.na.NumStates(),
		Edges:         winner.na.NumEdges(),
		Marks:         winner.na.NumMarks(),
		Acceptance:    winner.na.Condition().String(),
		Pass:          name,
		Deterministic: winner.na.IsDeterministic(),
	}
	t.logger.Debug("translation finished",
		"formula", f.String(),
		"pass", name,
		"states", res.Stats.States,
		"marks", res.Stats.Marks,
	)
	return res, nil
}

// negation translates !f and complements the result. It returns nil
// without error when the automaton of !f is not deterministic.
func (t *Translator) negation(f *ltl.Formula, cfg domain.Config, obs domain.Observer) (*pass, error) {
	p, err := t.run(ltl.Normalize(ltl.Not(f)), cfg, obs)
	if err != nil {
		return nil, err
	}
	if !p.na.IsDeterministic() {
		return nil, nil
	}
	comp, err := p.na.Complement(cfg.MaxMarks)
	if err != nil {
		return nil, fmt.Errorf("complement of negation: %w", err)
	}
	comp.SetName(f.String())
	p.na = comp
	return p, nil
}

// smaller orders automata by states, then edges.
func smaller(a, b *automaton.Automaton) bool {
	if a.NumStates() != b.NumStates() {
		return a.NumStates() < b.NumStates()
	}
	return a.NumEdges() < b.NumEdges()
}
