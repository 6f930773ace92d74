package alternating

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/tela/pkg/acceptance"
	"github.com/aretw0/tela/pkg/domain"
	"github.com/aretw0/tela/pkg/label"
	"github.com/aretw0/tela/pkg/ltl"
)

// Option configures a build.
type Option func(*builder)

// WithLogger sets the logger used for construction decisions.
func WithLogger(logger *slog.Logger) Option {
	return func(b *builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithObserver registers a callback for construction events.
func WithObserver(obs domain.Observer) Option {
	return func(b *builder) {
		b.observer = obs
	}
}

type builder struct {
	cfg      domain.Config
	logger   *slog.Logger
	observer domain.Observer
	a        *Automaton

	// global-mark mode (GMergeLevel == 0)
	maxUDisjSize int
	globalKey    string
	globalDisj   acceptance.Mark
}

// Build translates a formula in negation normal form into a self-loop
// alternating automaton. Every call owns a fresh automaton, label
// dictionary and mark allocator, so a failed build leaves nothing behind.
func Build(f *ltl.Formula, cfg domain.Config, opts ...Option) (*Automaton, error) {
	if !ltl.IsNormal(f) {
		return nil, fmt.Errorf("%w: %s is not in negation normal form", domain.ErrMalformedFormula, f)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	aps := ltl.APs(f)
	dict, err := label.NewDict(len(aps))
	if err != nil {
		return nil, err
	}
	for _, ap := range aps {
		if _, err := dict.Register(ap); err != nil {
			return nil, err
		}
	}

	b := &builder{
		cfg:          cfg,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		a:            newAutomaton(f, dict, cfg.MaxMarks),
		maxUDisjSize: maxUDisjSize(f),
		globalDisj:   acceptance.NoMark,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With("formula", f.String())

	if cfg.SingleInitState {
		s, err := b.translate(f)
		if err != nil {
			return nil, err
		}
		b.a.inits = append(b.a.inits, StateSet{s})
	} else {
		for _, clause := range ltl.DNF(f) {
			init := make([]StateID, 0, len(clause))
			for _, g := range clause {
				s, err := b.translate(g)
				if err != nil {
					return nil, err
				}
				init = append(init, s)
			}
			b.a.inits = append(b.a.inits, NewStateSet(init...))
		}
	}

	b.a.PruneUnreachable()
	b.logger.Debug("alternating automaton built",
		"states", b.a.NumStates(),
		"edges", b.a.NumEdges(),
		"marks", b.a.NumMarks(),
	)
	return b.a, nil
}

func (b *builder) notify(t domain.EventType, f *ltl.Formula) {
	if b.observer != nil {
		b.observer(domain.Event{Type: t, Formula: f.String()})
	}
}

// translate returns the state of f, building it on first request.
func (b *builder) translate(f *ltl.Formula) (StateID, error) {
	if id, ok := b.a.index[f.Key()]; ok {
		return id, nil
	}
	a := b.a
	id := a.newState(f)

	var err error
	switch {
	case f.IsTrue():
		a.addNewEdge(id, a.dict.True(), StateSet{}, 0)
	case f.IsFalse():
	case f.IsBoolean():
		var l label.Label
		l, err = a.dict.FromFormula(f)
		if err == nil {
			a.addNewEdge(id, l, StateSet{}, 0)
		}
	case f.Is(ltl.OpAnd):
		err = b.conjunction(id, f)
	case f.Is(ltl.OpOr):
		err = b.disjunction(id, f)
	case f.Is(ltl.OpNext):
		err = b.next(id, f)
	case f.Is(ltl.OpRelease):
		err = b.release(id, f)
	case f.Is(ltl.OpUntil):
		err = b.until(id, f)
	default:
		err = fmt.Errorf("%w: operator %s", domain.ErrMalformedFormula, f.Op())
	}
	if err != nil {
		return NoState, err
	}
	return id, nil
}

func (b *builder) translateAll(fs []*ltl.Formula) (StateSet, error) {
	ids := make([]StateID, len(fs))
	for i, g := range fs {
		id, err := b.translate(g)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return NewStateSet(ids...), nil
}

func (b *builder) conjunction(id StateID, f *ltl.Formula) error {
	operands := make([][]EdgeID, 0, f.Len())
	for _, g := range f.Children() {
		s, err := b.translate(g)
		if err != nil {
			return err
		}
		operands = append(operands, b.a.out[s])
	}
	for _, e := range b.a.Product(operands, true) {
		b.a.addEdge(id, e)
	}
	return nil
}

func (b *builder) disjunction(id StateID, f *ltl.Formula) error {
	a := b.a
	kids := f.Children()
	states := make([]StateID, len(kids))
	edges := make([][]EdgeID, len(kids))

	sameLabels, loopsNotAlternating := true, true
	loopLabel := a.dict.False()
	for i, g := range kids {
		s, err := b.translate(g)
		if err != nil {
			return err
		}
		states[i] = s
		edges[i] = a.Edges(s)

		if !b.cfg.DisjMerging || !sameLabels {
			continue
		}
		this := a.dict.False()
		for _, e := range edges[i] {
			edge := a.edges[e]
			if !edge.Targets.Contains(s) {
				continue
			}
			this = a.dict.Or(this, edge.Label)
			if len(edge.Targets) > 1 {
				loopsNotAlternating = false
				break
			}
		}
		if i == 0 {
			loopLabel = this
		} else {
			sameLabels = a.dict.Equal(loopLabel, this)
		}
	}

	merge := b.cfg.DisjMerging && b.cfg.GMergeLevel > 0 && sameLabels && loopsNotAlternating
	if !merge {
		for _, es := range edges {
			for _, e := range es {
				a.addEdge(id, e)
			}
		}
		return nil
	}

	// the descriptor owns a Fin mark that no edge carries
	fin, err := a.alloc.Add()
	if err != nil {
		return err
	}
	first, err := a.alloc.AddN(len(kids))
	if err != nil {
		return err
	}
	d := a.acc.Entry(f.Key())
	d.Fin = fin
	for i := range kids {
		d.AddDisj(first + acceptance.Mark(i))
	}
	for i, es := range edges {
		for _, e := range es {
			edge := a.edges[e]
			if !edge.Targets.Contains(states[i]) {
				a.addEdge(id, e)
				continue
			}
			marks := edge.Marks
			for j := range kids {
				if j != i {
					marks = marks.With(first + acceptance.Mark(j))
				}
			}
			a.addNewEdge(id, edge.Label, edge.Targets.Without(states[i]).With(id), marks)
		}
	}
	b.logger.Debug("disjunction merged", "state", f.String(), "disj_marks", len(kids))
	b.notify(domain.EventDisjunctionMerged, f)
	return nil
}

func (b *builder) next(id StateID, f *ltl.Formula) error {
	a := b.a
	if b.cfg.NextSingleSucc {
		s, err := b.translate(f.Child(0))
		if err != nil {
			return err
		}
		a.addNewEdge(id, a.dict.True(), StateSet{s}, 0)
		return nil
	}
	for _, clause := range ltl.DNF(f.Child(0)) {
		targets, err := b.translateAll(clause)
		if err != nil {
			return err
		}
		a.addNewEdge(id, a.dict.True(), targets, 0)
	}
	return nil
}

func (b *builder) release(id StateID, f *ltl.Formula) error {
	a := b.a
	// the left operand is translated even when unused so that the state
	// numbering does not depend on the merge level
	left, err := b.translate(f.Child(0))
	if err != nil {
		return err
	}
	right, err := b.translate(f.Child(1))
	if err != nil {
		return err
	}

	clauses := ltl.DNF(f.Child(1))
	globally := b.cfg.GMergeLevel > 0 && f.Child(0).IsFalse() && len(clauses) == 1 &&
		(b.cfg.GMergeLevel == 2 || len(clauses[0]) == 1)
	if !globally {
		loop := a.intern(a.dict.True(), StateSet{id}, 0)
		for _, re := range a.Edges(right) {
			for _, le := range a.Edges(left) {
				a.addEdge(id, a.product2(re, le, false))
			}
			a.addEdge(id, a.product2(re, loop, false))
		}
		return nil
	}

	a.dominate(id, right, 2)
	operands := make([][]EdgeID, 0, len(clauses[0]))
	for _, phi := range clauses[0] {
		ps, err := b.translate(phi)
		if err != nil {
			return err
		}
		a.dominate(id, ps, 2)

		var folded []EdgeID
		if phi.Is(ltl.OpUntil) {
			d := a.acc.Entry(phi.Key())
			for _, e := range a.Edges(ps) {
				edge := a.edges[e]
				targets, marks := edge.Targets, edge.Marks
				if targets.Contains(ps) {
					targets = targets.Without(ps)
					b.notify(domain.EventGloballyLoop, f)
				} else {
					if d.Inf == acceptance.NoMark {
						inf, err := a.alloc.Add()
						if err != nil {
							return err
						}
						d.Inf = inf
						a.acc.RememberInf(inf)
					}
					marks = acceptance.MarksOf(d.Inf)
				}
				folded = append(folded, a.intern(edge.Label, targets.With(id), marks))
			}
		} else {
			for _, e := range a.Edges(ps) {
				edge := a.edges[e]
				if edge.Targets.Contains(ps) {
					b.notify(domain.EventGloballyLoop, f)
				}
				folded = append(folded, a.intern(edge.Label, edge.Targets.Without(ps).With(id), edge.Marks))
			}
		}
		operands = append(operands, folded)
	}
	for _, e := range a.Product(operands, true) {
		a.addEdge(id, e)
	}
	b.logger.Debug("globally merged", "state", f.String(), "conjuncts", len(clauses[0]))
	return nil
}

func (b *builder) until(id StateID, f *ltl.Formula) error {
	a := b.a
	var fin acceptance.Mark
	if b.cfg.GMergeLevel > 0 {
		m, err := a.alloc.Add()
		if err != nil {
			return err
		}
		d := a.acc.Entry(f.Key())
		d.Fin = m
		fin = m
	} else {
		if a.acc.Empty() {
			m, err := a.alloc.Add()
			if err != nil {
				return err
			}
			if m != 0 {
				return fmt.Errorf("%w: global Fin mark is %d, expected 0", domain.ErrInvariant, m)
			}
			a.acc.Entry(f.Key()).Fin = 0
			b.globalKey = f.Key()
		}
		fin = 0
	}

	left, err := b.translate(f.Child(0))
	if err != nil {
		return err
	}
	right, err := b.translate(f.Child(1))
	if err != nil {
		return err
	}

	if b.cfg.UMergeLevel > 0 {
		ok, err := b.mergeable(f)
		if err != nil {
			return err
		}
		if ok {
			return b.mergedUntil(id, f, right, fin)
		}
	}

	for _, e := range a.Edges(right) {
		a.addEdge(id, e)
	}
	loop := a.intern(a.dict.True(), StateSet{id}, 0)
	for _, le := range a.Edges(left) {
		p := a.edges[a.product2(le, loop, true)]
		a.addNewEdge(id, p.Label, p.Targets, acceptance.MarksOf(fin))
	}
	return nil
}

// clauseStates translates one clause of the right operand of an until and
// returns the conjunction state, the states of the clause members and
// whether the level-3 restriction allows merging through it.
func (b *builder) clauseStates(clause ltl.Clause) (StateID, StateSet, bool, error) {
	ps, err := b.translate(clause.Formula())
	if err != nil {
		return NoState, nil, false, err
	}
	members, err := b.translateAll(clause)
	if err != nil {
		return NoState, nil, false, err
	}
	merge := true
	if b.cfg.UMergeLevel == 3 {
		for _, e := range b.a.out[ps] {
			targets := b.a.edges[e].Targets
			if targets.Contains(ps) && len(targets) >= 2 {
				merge = false
				break
			}
		}
	}
	return ps, members, merge, nil
}

func (b *builder) qualifies(targets, members StateSet, merge bool) bool {
	if b.cfg.UMergeLevel == 1 {
		return targets.Equal(members)
	}
	return merge && targets.Includes(members)
}

func (b *builder) mergedUntil(id StateID, f *ltl.Formula, right StateID, fin acceptance.Mark) error {
	a := b.a
	alpha, err := a.dict.FromFormula(f.Child(0))
	if err != nil {
		return err
	}
	a.addNewEdge(id, alpha, StateSet{id}, acceptance.MarksOf(fin))
	a.dominate(right, id, 1)

	clauses := ltl.DNF(f.Child(1))
	disj, width := acceptance.NoMark, 0
	if len(clauses) > 1 {
		looping := 0
		for _, clause := range clauses {
			ps, members, merge, err := b.clauseStates(clause)
			if err != nil {
				return err
			}
			a.dominate(ps, id, 1)
			for _, e := range a.out[ps] {
				if b.qualifies(a.edges[e].Targets, members, merge) {
					looping++
					break
				}
			}
		}
		if looping > 1 {
			if disj, width, err = b.untilDisjMarks(f, len(clauses)); err != nil {
				return err
			}
		}
	}

	for i, clause := range clauses {
		ps, members, merge, err := b.clauseStates(clause)
		if err != nil {
			return err
		}
		for _, e := range a.Edges(ps) {
			edge := a.edges[e]
			if !b.qualifies(edge.Targets, members, merge) {
				a.addNewEdge(id, edge.Label, edge.Targets, 0)
				continue
			}
			marks := edge.Marks
			if disj != acceptance.NoMark {
				own := disj + acceptance.Mark(i)
				for m := disj; m < disj+acceptance.Mark(width); m++ {
					if m != own {
						marks = marks.With(m)
					}
				}
			}
			a.addNewEdge(id, edge.Label, edge.Targets.Minus(members).With(id), marks)
		}
	}
	b.logger.Debug("until merged", "state", f.String(), "clauses", len(clauses), "disj_marks", width)
	return nil
}

// untilDisjMarks allocates the disjunctive Fin marks of a merged until and
// registers them with the owning descriptor. In global-mark mode a single
// block sized for the widest until is shared by all of them and belongs to
// the global descriptor, whichever until allocated it.
func (b *builder) untilDisjMarks(f *ltl.Formula, n int) (acceptance.Mark, int, error) {
	a := b.a
	if b.cfg.GMergeLevel > 0 {
		first, err := a.alloc.AddN(n)
		if err != nil {
			return acceptance.NoMark, 0, err
		}
		d := a.acc.Entry(f.Key())
		for i := 0; i < n; i++ {
			d.AddDisj(first + acceptance.Mark(i))
		}
		return first, n, nil
	}

	if b.globalDisj == acceptance.NoMark {
		first, err := a.alloc.AddN(b.maxUDisjSize)
		if err != nil {
			return acceptance.NoMark, 0, err
		}
		if first != 1 {
			return acceptance.NoMark, 0, fmt.Errorf("%w: disjunctive Fin marks start at %d, expected 1", domain.ErrInvariant, first)
		}
		b.globalDisj = first
		d := a.acc.Entry(b.globalKey)
		for i := 0; i < b.maxUDisjSize; i++ {
			d.AddDisj(first + acceptance.Mark(i))
		}
	}
	return b.globalDisj, b.maxUDisjSize, nil
}

// mergeable reports whether the until f can loop back into itself from the
// right operand: the left operand must be a state formula entailed by the
// label of every edge that stays inside a clause of the right operand.
func (b *builder) mergeable(f *ltl.Formula) (bool, error) {
	if f.Child(1).IsBoolean() || !f.Child(0).IsBoolean() {
		return false, nil
	}
	a := b.a
	alpha, err := a.dict.FromFormula(f.Child(0))
	if err != nil {
		return false, err
	}
	loops := false
	for _, clause := range ltl.DNF(f.Child(1)) {
		ps, err := b.translate(clause.Formula())
		if err != nil {
			return false, err
		}
		members, err := b.translateAll(clause)
		if err != nil {
			return false, err
		}
		for _, e := range a.out[ps] {
			edge := a.edges[e]
			if !edge.Targets.Includes(members) {
				continue
			}
			loops = true
			if !a.dict.Implies(edge.Label, alpha) {
				return false, nil
			}
		}
	}
	if loops {
		b.notify(domain.EventMergeableUntil, f)
	}
	return true, nil
}

func maxUDisjSize(f *ltl.Formula) int {
	if f.IsBoolean() {
		return 1
	}
	size := 1
	if f.Is(ltl.OpUntil) && f.Child(0).IsBoolean() && !f.Child(1).IsBoolean() {
		size = len(ltl.DNF(f.Child(1)))
	}
	for _, g := range f.Children() {
		size = max(size, maxUDisjSize(g))
	}
	return size
}
