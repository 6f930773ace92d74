package acceptance

import (
	"strconv"
	"strings"
)

// Kind is the node type of a Condition.
type Kind uint8

const (
	KindTrue Kind = iota
	KindFalse
	KindFin
	KindInf
	KindAnd
	KindOr
)

// Condition is an Emerson-Lei acceptance formula over Fin and Inf atoms.
// Conditions are immutable values; the constructors simplify constants,
// flatten nested operators and drop duplicate operands.
type Condition struct {
	kind Kind
	mark Mark
	args []Condition
}

// True is the condition accepting every run.
func True() Condition { return Condition{kind: KindTrue} }

// False is the condition accepting no run.
func False() Condition { return Condition{kind: KindFalse} }

// Fin holds when m is visited finitely often.
func Fin(m Mark) Condition { return Condition{kind: KindFin, mark: m} }

// Inf holds when m is visited infinitely often.
func Inf(m Mark) Condition { return Condition{kind: KindInf, mark: m} }

// And returns the conjunction of cs.
func And(cs ...Condition) Condition { return junction(KindAnd, cs) }

// Or returns the disjunction of cs.
func Or(cs ...Condition) Condition { return junction(KindOr, cs) }

func junction(kind Kind, cs []Condition) Condition {
	unit, zero := KindTrue, KindFalse
	if kind == KindOr {
		unit, zero = KindFalse, KindTrue
	}
	var args []Condition
	seen := make(map[string]bool)
	var add func(c Condition) bool
	add = func(c Condition) bool {
		switch c.kind {
		case zero:
			return false
		case unit:
			return true
		case kind:
			for _, a := range c.args {
				if !add(a) {
					return false
				}
			}
			return true
		}
		k := c.String()
		if !seen[k] {
			seen[k] = true
			args = append(args, c)
		}
		return true
	}
	for _, c := range cs {
		if !add(c) {
			return Condition{kind: zero}
		}
	}
	switch len(args) {
	case 0:
		return Condition{kind: unit}
	case 1:
		return args[0]
	}
	return Condition{kind: kind, args: args}
}

// Kind returns the node type of c.
func (c Condition) Kind() Kind { return c.kind }

// Mark returns the mark of a Fin or Inf atom.
func (c Condition) Mark() Mark { return c.mark }

// Args returns the operands of a conjunction or disjunction.
func (c Condition) Args() []Condition {
	out := make([]Condition, len(c.args))
	copy(out, c.args)
	return out
}

// IsTrue reports whether c is the constant true.
func (c Condition) IsTrue() bool { return c.kind == KindTrue }

// IsFalse reports whether c is the constant false.
func (c Condition) IsFalse() bool { return c.kind == KindFalse }

// Marks returns the marks mentioned by c.
func (c Condition) Marks() Marks {
	switch c.kind {
	case KindFin, KindInf:
		return MarksOf(c.mark)
	case KindAnd, KindOr:
		var s Marks
		for _, a := range c.args {
			s = s.Union(a.Marks())
		}
		return s
	}
	return 0
}

// InfMarks returns the marks appearing in Inf atoms of c.
func (c Condition) InfMarks() Marks {
	switch c.kind {
	case KindInf:
		return MarksOf(c.mark)
	case KindAnd, KindOr:
		var s Marks
		for _, a := range c.args {
			s = s.Union(a.InfMarks())
		}
		return s
	}
	return 0
}

// Restrict replaces atoms over marks outside used by their value on runs
// that never see them: Fin becomes true and Inf becomes false.
func (c Condition) Restrict(used Marks) Condition {
	return c.transform(func(a Condition) Condition {
		if used.Has(a.mark) {
			return a
		}
		if a.kind == KindFin {
			return True()
		}
		return False()
	})
}

// Rename maps every mark through m. Atoms over marks missing from m are
// left untouched.
func (c Condition) Rename(m map[Mark]Mark) Condition {
	return c.transform(func(a Condition) Condition {
		if v, ok := m[a.mark]; ok {
			a.mark = v
		}
		return a
	})
}

// Negate returns the dual condition: Fin and Inf swap, & and | swap.
func (c Condition) Negate() Condition {
	switch c.kind {
	case KindTrue:
		return False()
	case KindFalse:
		return True()
	case KindFin:
		return Inf(c.mark)
	case KindInf:
		return Fin(c.mark)
	}
	args := make([]Condition, len(c.args))
	for i, a := range c.args {
		args[i] = a.Negate()
	}
	if c.kind == KindAnd {
		return Or(args...)
	}
	return And(args...)
}

// Eval decides c for a run whose infinitely often visited marks are inf.
func (c Condition) Eval(inf Marks) bool {
	switch c.kind {
	case KindTrue:
		return true
	case KindFin:
		return !inf.Has(c.mark)
	case KindInf:
		return inf.Has(c.mark)
	case KindAnd:
		for _, a := range c.args {
			if !a.Eval(inf) {
				return false
			}
		}
		return true
	case KindOr:
		for _, a := range c.args {
			if a.Eval(inf) {
				return true
			}
		}
	}
	return false
}

func (c Condition) transform(atom func(Condition) Condition) Condition {
	switch c.kind {
	case KindFin, KindInf:
		return atom(c)
	case KindAnd, KindOr:
		args := make([]Condition, len(c.args))
		for i, a := range c.args {
			args[i] = a.transform(atom)
		}
		return junction(c.kind, args)
	}
	return c
}

// String renders c in HOA syntax, e.g. "Fin(0) & (Fin(1) | Inf(2))".
func (c Condition) String() string {
	switch c.kind {
	case KindTrue:
		return "t"
	case KindFalse:
		return "f"
	case KindFin:
		return "Fin(" + strconv.FormatUint(uint64(c.mark), 10) + ")"
	case KindInf:
		return "Inf(" + strconv.FormatUint(uint64(c.mark), 10) + ")"
	}
	sep := " & "
	if c.kind == KindOr {
		sep = " | "
	}
	parts := make([]string, len(c.args))
	for i, a := range c.args {
		s := a.String()
		if a.kind == KindAnd || a.kind == KindOr {
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, sep)
}
