// Package subset turns a self-loop alternating automaton into a
// nondeterministic automaton by exploring sets of alternating states.
package subset

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/aretw0/tela/internal/alternating"
	"github.com/aretw0/tela/pkg/acceptance"
	"github.com/aretw0/tela/pkg/automaton"
	"github.com/aretw0/tela/pkg/domain"
	"github.com/aretw0/tela/pkg/label"
)

// Option configures Determinize.
type Option func(*constructor)

// WithLogger sets the logger used for the construction summary.
func WithLogger(logger *slog.Logger) Option {
	return func(c *constructor) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type constructor struct {
	cfg    domain.Config
	logger *slog.Logger
	slaa   *alternating.Automaton
	dict   *label.Dict
	na     *automaton.Automaton

	// byState holds the loop of every looping state with an acceptance
	// term, nil elsewhere.
	byState []*loop
	exits   []*loop

	sets  []alternating.StateSet
	index map[string]automaton.State
}

// Determinize builds the automaton whose states are the configurations of
// slaa reachable from its initial configurations, then reduces it. When
// slaa has several initial configurations an extra state named "init"
// takes the edges of all of them.
//
// The acceptance condition is a conjunction with one term per looping
// state of slaa. A branch stuck in a state q is judged on the self-loops
// of q only. With FinToInf set, a state whose self-loops can never be
// repeated forever contributes a single Inf mark seen whenever q could be
// dropped. The marks of the result must fit in cfg.MaxMarks.
func Determinize(slaa *alternating.Automaton, cfg domain.Config, opts ...Option) (*automaton.Automaton, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	inits := slaa.Inits()
	if len(inits) == 0 {
		return nil, fmt.Errorf("%w: alternating automaton has no initial configuration", domain.ErrInvariant)
	}

	c := &constructor{
		cfg:     cfg,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		slaa:    slaa,
		dict:    slaa.Dict(),
		na:      automaton.New(slaa.Dict()),
		byState: make([]*loop, slaa.NumStates()),
		index:   make(map[string]automaton.State),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.na.SetName(slaa.Formula().String())

	alloc := acceptance.NewAllocator(cfg.MaxMarks)
	loops, err := c.loops(alloc)
	if err != nil {
		return nil, err
	}
	terms := make([]acceptance.Condition, 0, len(loops))
	for _, l := range loops {
		c.byState[l.state] = l
		if l.exit != acceptance.NoMark {
			c.exits = append(c.exits, l)
		}
		terms = append(terms, l.term)
	}

	c.explore(inits)
	c.na.SetAcceptance(alloc.Count(), acceptance.And(terms...))

	c.na.MergeEdges()
	c.na.RemoveUnreachable()
	c.na.Reduce(cfg.EqLevel)

	c.logger.Debug("nondeterministic automaton built",
		"formula", c.na.Name(),
		"configurations", len(c.sets),
		"loop_terms", len(loops),
		"states", c.na.NumStates(),
		"edges", c.na.NumEdges(),
		"marks", c.na.NumMarks(),
		"acceptance", c.na.Condition().String(),
	)
	return c.na, nil
}

// stateFor returns the state of set, reporting whether it was just added.
func (c *constructor) stateFor(set alternating.StateSet) (automaton.State, bool) {
	key := set.String()
	if s, ok := c.index[key]; ok {
		return s, false
	}
	s := c.na.AddState(key)
	c.sets = append(c.sets, set)
	c.index[key] = s
	return s, true
}

func (c *constructor) explore(inits []alternating.StateSet) {
	var queue, starts []automaton.State
	for _, set := range inits {
		if s, fresh := c.stateFor(set); fresh {
			queue = append(queue, s)
			starts = append(starts, s)
		}
	}

	for len(queue) > 0 {
		src := queue[0]
		queue = queue[1:]
		for _, st := range c.successors(c.sets[src]) {
			dst, fresh := c.stateFor(st.targets)
			if fresh {
				queue = append(queue, dst)
			}
			c.na.AddEdge(src, dst, st.label, st.marks)
		}
	}

	if len(starts) == 1 {
		c.na.SetInit(starts[0])
		return
	}
	first := c.na.AddState("init")
	for _, s := range starts {
		for _, e := range c.na.Edges(s) {
			c.na.AddEdge(first, e.Dst, e.Label, e.Marks)
		}
	}
	c.na.SetInit(first)
}

// step is one move of a whole configuration.
type step struct {
	label   label.Label
	targets alternating.StateSet
	marks   acceptance.Marks
}

func (s step) key() string {
	return strconv.Itoa(s.label.ID()) + "|" + s.targets.String() + "|" + strconv.FormatUint(uint64(s.marks), 10)
}

// successors combines one edge of every state of set in all possible ways.
// Combinations labelled false are dropped. The empty configuration moves
// to itself under true.
func (c *constructor) successors(set alternating.StateSet) []step {
	acc := []step{{label: c.dict.True(), targets: alternating.StateSet{}}}
	for _, q := range set {
		l := c.byState[q]
		next := make([]step, 0, len(acc))
		seen := make(map[string]bool, len(acc))
		for _, left := range acc {
			for _, id := range c.slaa.Edges(q) {
				e := c.slaa.Edge(id)
				lb := c.dict.And(left.label, e.Label)
				if c.dict.IsFalse(lb) {
					continue
				}
				st := step{
					label:   lb,
					targets: left.targets.Union(e.Targets),
					marks:   left.marks.Union(l.loopMarks(e)),
				}
				if k := st.key(); !seen[k] {
					seen[k] = true
					next = append(next, st)
				}
			}
		}
		acc = next
	}
	for i := range acc {
		for _, l := range c.exits {
			if !acc[i].targets.Contains(l.state) || c.escapes(l.state, acc[i].targets, acc[i].label) {
				acc[i].marks = acc[i].marks.With(l.exit)
			}
		}
	}
	return acc
}

// escapes reports whether owner has a non-looping edge whose targets are
// already in dst and whose label holds whenever l does.
func (c *constructor) escapes(owner alternating.StateID, dst alternating.StateSet, l label.Label) bool {
	for _, id := range c.slaa.Edges(owner) {
		f := c.slaa.Edge(id)
		if !f.Targets.Contains(owner) && dst.Includes(f.Targets) && c.dict.Implies(l, f.Label) {
			return true
		}
	}
	return false
}
