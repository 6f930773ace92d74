package ltl

import (
	"regexp"
	"slices"
	"strings"
)

// Op identifies the kind of a formula node.
type Op uint8

const (
	OpTrue Op = iota
	OpFalse
	OpAP
	OpNot
	OpAnd
	OpOr
	OpNext
	OpUntil
	OpRelease
	OpEventually
	OpGlobally
	OpWeakUntil
	OpStrongRelease
	OpImplies
	OpEquiv
	OpXor
)

var opNames = map[Op]string{
	OpTrue:          "true",
	OpFalse:         "false",
	OpAP:            "ap",
	OpNot:           "!",
	OpAnd:           "&",
	OpOr:            "|",
	OpNext:          "X",
	OpUntil:         "U",
	OpRelease:       "R",
	OpEventually:    "F",
	OpGlobally:      "G",
	OpWeakUntil:     "W",
	OpStrongRelease: "M",
	OpImplies:       "->",
	OpEquiv:         "<->",
	OpXor:           "xor",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return "?"
}

// Formula is an immutable LTL formula node.
// Two formulas are the same formula iff their keys are equal; constructors
// flatten, deduplicate and sort the operands of & and | so that the key is
// canonical.
type Formula struct {
	op      Op
	name    string
	kids    []*Formula
	key     string
	boolean bool
}

var (
	tt = &Formula{op: OpTrue, key: "true", boolean: true}
	ff = &Formula{op: OpFalse, key: "false", boolean: true}
)

var plainName = regexp.MustCompile(`^[a-z_][a-zA-Z0-9_.]*$`)

// Op returns the operator of f.
func (f *Formula) Op() Op { return f.op }

// Is reports whether the operator of f is one of ops.
func (f *Formula) Is(ops ...Op) bool {
	return slices.Contains(ops, f.op)
}

// Name returns the proposition name of an atomic proposition.
func (f *Formula) Name() string { return f.name }

// Len returns the number of operands.
func (f *Formula) Len() int { return len(f.kids) }

// Child returns the i-th operand.
func (f *Formula) Child(i int) *Formula { return f.kids[i] }

// Children returns a copy of the operands.
func (f *Formula) Children() []*Formula { return slices.Clone(f.kids) }

// Key is the canonical textual form of f, used for hash-consing.
func (f *Formula) Key() string { return f.key }

// IsTrue reports whether f is the constant true.
func (f *Formula) IsTrue() bool { return f.op == OpTrue }

// IsFalse reports whether f is the constant false.
func (f *Formula) IsFalse() bool { return f.op == OpFalse }

// IsBoolean reports whether f contains no temporal operator.
func (f *Formula) IsBoolean() bool { return f.boolean }

// Equal compares two formulas structurally.
func (f *Formula) Equal(g *Formula) bool { return f.key == g.key }

// String renders f without the outermost parentheses.
func (f *Formula) String() string {
	if len(f.key) > 1 && f.key[0] == '(' && f.key[len(f.key)-1] == ')' && (f.op == OpAnd || f.op == OpOr || len(f.kids) == 2) {
		return f.key[1 : len(f.key)-1]
	}
	return f.key
}

// True returns the constant true.
func True() *Formula { return tt }

// False returns the constant false.
func False() *Formula { return ff }

// AP returns the atomic proposition called name.
func AP(name string) *Formula {
	key := name
	if !plainName.MatchString(name) || isKeyword(name) {
		key = `"` + strings.ReplaceAll(name, `"`, `\"`) + `"`
	}
	return &Formula{op: OpAP, name: name, key: key, boolean: true}
}

// Not returns the negation of f. Double negations and constants fold.
func Not(f *Formula) *Formula {
	switch f.op {
	case OpTrue:
		return ff
	case OpFalse:
		return tt
	case OpNot:
		return f.kids[0]
	}
	var key string
	if f.op == OpAP || f.op == OpNot || len(f.kids) == 1 {
		key = "!" + f.key
	} else {
		key = "!" + wrap(f.key)
	}
	return &Formula{op: OpNot, kids: []*Formula{f}, key: key, boolean: f.boolean}
}

// And returns the conjunction of fs.
func And(fs ...*Formula) *Formula {
	return nary(OpAnd, fs)
}

// Or returns the disjunction of fs.
func Or(fs ...*Formula) *Formula {
	return nary(OpOr, fs)
}

func nary(op Op, fs []*Formula) *Formula {
	unit, zero := tt, ff
	sep := " & "
	if op == OpOr {
		unit, zero = ff, tt
		sep = " | "
	}

	seen := make(map[string]bool, len(fs))
	var kids []*Formula
	var add func(g *Formula) bool
	add = func(g *Formula) bool {
		switch {
		case g.key == zero.key:
			return false
		case g.key == unit.key:
			return true
		case g.op == op:
			for _, k := range g.kids {
				if !add(k) {
					return false
				}
			}
			return true
		}
		if !seen[g.key] {
			seen[g.key] = true
			kids = append(kids, g)
		}
		return true
	}
	for _, g := range fs {
		if !add(g) {
			return zero
		}
	}

	switch len(kids) {
	case 0:
		return unit
	case 1:
		return kids[0]
	}

	slices.SortFunc(kids, func(a, b *Formula) int { return strings.Compare(a.key, b.key) })
	keys := make([]string, len(kids))
	boolean := true
	for i, k := range kids {
		keys[i] = k.key
		boolean = boolean && k.boolean
	}
	return &Formula{op: op, kids: kids, key: "(" + strings.Join(keys, sep) + ")", boolean: boolean}
}

// X returns "next f".
func X(f *Formula) *Formula {
	if f.op == OpTrue || f.op == OpFalse {
		return f
	}
	return unary(OpNext, f)
}

// F returns "eventually f".
func F(f *Formula) *Formula {
	if f.op == OpTrue || f.op == OpFalse {
		return f
	}
	return unary(OpEventually, f)
}

// G returns "globally f".
func G(f *Formula) *Formula {
	if f.op == OpTrue || f.op == OpFalse {
		return f
	}
	return unary(OpGlobally, f)
}

// U returns "a until b".
func U(a, b *Formula) *Formula {
	switch {
	case b.op == OpTrue || b.op == OpFalse:
		return b
	case a.op == OpFalse || a.key == b.key:
		return b
	}
	return binary(OpUntil, a, b)
}

// R returns "a release b".
func R(a, b *Formula) *Formula {
	switch {
	case b.op == OpTrue || b.op == OpFalse:
		return b
	case a.op == OpTrue || a.key == b.key:
		return b
	}
	return binary(OpRelease, a, b)
}

// W returns "a weak-until b".
func W(a, b *Formula) *Formula {
	switch {
	case b.op == OpTrue:
		return tt
	case a.op == OpFalse || a.key == b.key:
		return b
	}
	return binary(OpWeakUntil, a, b)
}

// M returns "a strong-release b".
func M(a, b *Formula) *Formula {
	switch {
	case b.op == OpFalse:
		return ff
	case a.op == OpTrue || a.key == b.key:
		return b
	}
	return binary(OpStrongRelease, a, b)
}

// Implies returns "a -> b".
func Implies(a, b *Formula) *Formula { return binary(OpImplies, a, b) }

// Equiv returns "a <-> b".
func Equiv(a, b *Formula) *Formula { return binary(OpEquiv, a, b) }

// Xor returns "a xor b".
func Xor(a, b *Formula) *Formula { return binary(OpXor, a, b) }

func unary(op Op, f *Formula) *Formula {
	return &Formula{op: op, kids: []*Formula{f}, key: op.String() + " " + f.key}
}

func binary(op Op, a, b *Formula) *Formula {
	boolean := false
	if op == OpImplies || op == OpEquiv || op == OpXor {
		boolean = a.boolean && b.boolean
	}
	return &Formula{
		op:      op,
		kids:    []*Formula{a, b},
		key:     "(" + a.key + " " + op.String() + " " + b.key + ")",
		boolean: boolean,
	}
}

func wrap(s string) string {
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		return s
	}
	return "(" + s + ")"
}

// APs lists the atomic propositions of f in order of first occurrence.
func APs(f *Formula) []string {
	var out []string
	seen := make(map[string]bool)
	var walk func(g *Formula)
	walk = func(g *Formula) {
		if g.op == OpAP {
			if !seen[g.name] {
				seen[g.name] = true
				out = append(out, g.name)
			}
			return
		}
		for _, k := range g.kids {
			walk(k)
		}
	}
	walk(f)
	return out
}

// Size counts the nodes of f.
func Size(f *Formula) int {
	n := 1
	for _, k := range f.kids {
		n += Size(k)
	}
	return n
}
