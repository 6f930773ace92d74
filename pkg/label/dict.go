package label

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/tela/pkg/ltl"
	"github.com/dalzilio/rudd"
)

var (
	// ErrNotBoolean is returned when a temporal formula is converted to a label.
	ErrNotBoolean = errors.New("formula is not boolean")
	// ErrCapacity is returned when more propositions are registered than
	// the dictionary was created for.
	ErrCapacity = errors.New("dictionary capacity exceeded")
)

// kernel is the part of the rudd API the dictionary relies on.
type kernel interface {
	Error() string
	Varnum() int
	True() rudd.Node
	False() rudd.Node
	Ithvar(i int) rudd.Node
	NIthvar(i int) rudd.Node
	Not(n rudd.Node) rudd.Node
	And(n ...rudd.Node) rudd.Node
	Or(n ...rudd.Node) rudd.Node
	Imp(n1, n2 rudd.Node) rudd.Node
	Equal(n1, n2 rudd.Node) bool
	Allsat(f func([]int) error, n rudd.Node) error
}

// Label is a boolean function over the atomic propositions of a Dict.
// Labels of the same Dict compare equal iff their IDs are equal.
type Label struct {
	node rudd.Node
}

// ID identifies the function denoted by l inside its Dict.
func (l Label) ID() int {
	if l.node == nil {
		return 0
	}
	return *l.node
}

// Dict owns a BDD and the ordered registry of atomic propositions.
// A Dict is not safe for concurrent use; every translation owns one.
type Dict struct {
	bdd   kernel
	aps   []string
	index map[string]int
}

// NewDict creates a dictionary with room for capacity propositions. The
// number of BDD variables is fixed at creation.
func NewDict(capacity int) (*Dict, error) {
	if capacity < 1 {
		capacity = 1
	}
	b, err := rudd.New(capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bdd: %w", err)
	}
	return &Dict{bdd: b, index: make(map[string]int)}, nil
}

// Register returns the variable of the proposition name, allocating it on
// first use. Registration order is the order of APs.
func (d *Dict) Register(name string) (int, error) {
	if v, ok := d.index[name]; ok {
		return v, nil
	}
	v := len(d.aps)
	if v >= d.bdd.Varnum() {
		return 0, fmt.Errorf("failed to register proposition %q: %w (%d)", name, ErrCapacity, d.bdd.Varnum())
	}
	d.aps = append(d.aps, name)
	d.index[name] = v
	return v, nil
}

// APs returns the registered propositions in registration order.
func (d *Dict) APs() []string {
	out := make([]string, len(d.aps))
	copy(out, d.aps)
	return out
}

// True returns the constant true label.
func (d *Dict) True() Label { return Label{d.bdd.True()} }

// False returns the constant false label.
func (d *Dict) False() Label { return Label{d.bdd.False()} }

// AP returns the label of a registered proposition, negated if neg is set.
func (d *Dict) AP(name string, neg bool) (Label, error) {
	v, err := d.Register(name)
	if err != nil {
		return Label{}, err
	}
	if neg {
		return Label{d.bdd.NIthvar(v)}, nil
	}
	return Label{d.bdd.Ithvar(v)}, nil
}

// And returns the conjunction of ls.
func (d *Dict) And(ls ...Label) Label {
	return Label{d.bdd.And(nodes(ls)...)}
}

// Or returns the disjunction of ls.
func (d *Dict) Or(ls ...Label) Label {
	return Label{d.bdd.Or(nodes(ls)...)}
}

// Not returns the complement of l.
func (d *Dict) Not(l Label) Label {
	return Label{d.bdd.Not(l.node)}
}

// Equal reports whether a and b denote the same function.
func (d *Dict) Equal(a, b Label) bool {
	return d.bdd.Equal(a.node, b.node)
}

// Implies reports whether a entails b.
func (d *Dict) Implies(a, b Label) bool {
	return d.bdd.Equal(d.bdd.Imp(a.node, b.node), d.bdd.True())
}

// IsFalse reports whether l is unsatisfiable.
func (d *Dict) IsFalse(l Label) bool {
	return d.bdd.Equal(l.node, d.bdd.False())
}

// IsTrue reports whether l is valid.
func (d *Dict) IsTrue(l Label) bool {
	return d.bdd.Equal(l.node, d.bdd.True())
}

// FromFormula converts a boolean formula, registering its propositions in
// order of occurrence.
func (d *Dict) FromFormula(f *ltl.Formula) (Label, error) {
	switch f.Op() {
	case ltl.OpTrue:
		return d.True(), nil
	case ltl.OpFalse:
		return d.False(), nil
	case ltl.OpAP:
		return d.AP(f.Name(), false)
	case ltl.OpNot:
		if f.Child(0).Is(ltl.OpAP) {
			return d.AP(f.Child(0).Name(), true)
		}
		l, err := d.FromFormula(f.Child(0))
		if err != nil {
			return Label{}, err
		}
		return d.Not(l), nil
	case ltl.OpAnd, ltl.OpOr, ltl.OpImplies, ltl.OpEquiv, ltl.OpXor:
		ls := make([]Label, f.Len())
		for i := range ls {
			l, err := d.FromFormula(f.Child(i))
			if err != nil {
				return Label{}, err
			}
			ls[i] = l
		}
		switch f.Op() {
		case ltl.OpAnd:
			return d.And(ls...), nil
		case ltl.OpOr:
			return d.Or(ls...), nil
		case ltl.OpImplies:
			return d.Or(d.Not(ls[0]), ls[1]), nil
		case ltl.OpEquiv:
			return d.Or(d.And(ls[0], ls[1]), d.And(d.Not(ls[0]), d.Not(ls[1]))), nil
		default:
			return d.Or(d.And(ls[0], d.Not(ls[1])), d.And(d.Not(ls[0]), ls[1])), nil
		}
	}
	return Label{}, fmt.Errorf("%w: %s", ErrNotBoolean, f)
}

// Cubes enumerates l as a disjunction of cubes. Each cube maps a variable
// index to 0 (negative), 1 (positive) or -1 (absent).
func (d *Dict) Cubes(l Label) ([][]int, error) {
	var out [][]int
	err := d.bdd.Allsat(func(assignment []int) error {
		cube := make([]int, len(d.aps))
		for i := range cube {
			cube[i] = -1
			if i < len(assignment) {
				cube[i] = assignment[i]
			}
		}
		out = append(out, cube)
		return nil
	}, l.node)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Format renders l with proposition names, e.g. "(a & !b) | c".
func (d *Dict) Format(l Label) string {
	return d.render(l, func(v int) string { return d.aps[v] }, " & ", "true", "false")
}

// FormatIndexed renders l with variable indexes as in the HOA format, e.g.
// "(0&!1) | 2".
func (d *Dict) FormatIndexed(l Label) string {
	return d.render(l, strconv.Itoa, "&", "t", "f")
}

func (d *Dict) render(l Label, name func(int) string, and, tru, fls string) string {
	if d.IsTrue(l) {
		return tru
	}
	if d.IsFalse(l) {
		return fls
	}
	cubes, err := d.Cubes(l)
	if err != nil {
		return fls
	}
	terms := make([]string, 0, len(cubes))
	for _, cube := range cubes {
		var lits []string
		for v, val := range cube {
			switch val {
			case 1:
				lits = append(lits, name(v))
			case 0:
				lits = append(lits, "!"+name(v))
			}
		}
		if len(lits) == 0 {
			return tru
		}
		terms = append(terms, strings.Join(lits, and))
	}
	if len(terms) == 1 {
		return terms[0]
	}
	for i, t := range terms {
		if strings.Contains(t, "&") {
			terms[i] = "(" + t + ")"
		}
	}
	return strings.Join(terms, " | ")
}

func nodes(ls []Label) []rudd.Node {
	out := make([]rudd.Node, len(ls))
	for i, l := range ls {
		out[i] = l.node
	}
	return out
}
