package acceptance

import (
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// MaxMarks is the hard bound on the number of acceptance marks.
const MaxMarks = 32

// ErrTooManyMarks is returned when a translation needs more marks than its
// budget allows.
var ErrTooManyMarks = errors.New("too many acceptance marks")

// Mark is an acceptance mark index.
type Mark uint

// NoMark stands for an absent mark in a Descriptor.
const NoMark = ^Mark(0)

// Marks is a set of marks below MaxMarks.
type Marks uint32

// MarksOf builds a set from individual marks. NoMark is ignored.
func MarksOf(ms ...Mark) Marks {
	var s Marks
	for _, m := range ms {
		s = s.With(m)
	}
	return s
}

// Has reports whether m is in s.
func (s Marks) Has(m Mark) bool {
	return m < MaxMarks && s&(1<<m) != 0
}

// With returns s with m added.
func (s Marks) With(m Mark) Marks {
	if m >= MaxMarks {
		return s
	}
	return s | 1<<m
}

// Without returns s with m removed.
func (s Marks) Without(m Mark) Marks {
	if m >= MaxMarks {
		return s
	}
	return s &^ (1 << m)
}

// Union returns s ∪ o.
func (s Marks) Union(o Marks) Marks { return s | o }

// Intersect returns s ∩ o.
func (s Marks) Intersect(o Marks) Marks { return s & o }

// Len returns the number of marks in s.
func (s Marks) Len() int { return bits.OnesCount32(uint32(s)) }

// IsEmpty reports whether s has no marks.
func (s Marks) IsEmpty() bool { return s == 0 }

// Slice lists the marks of s in increasing order.
func (s Marks) Slice() []Mark {
	out := make([]Mark, 0, s.Len())
	for v := uint32(s); v != 0; v &= v - 1 {
		out = append(out, Mark(bits.TrailingZeros32(v)))
	}
	return out
}

// Map renames every mark of s through m. Marks missing from m are dropped.
func (s Marks) Map(m map[Mark]Mark) Marks {
	var out Marks
	for _, k := range s.Slice() {
		if v, ok := m[k]; ok {
			out = out.With(v)
		}
	}
	return out
}

// String renders s the way HOA does, e.g. "{0 2}".
func (s Marks) String() string {
	parts := make([]string, 0, s.Len())
	for _, m := range s.Slice() {
		parts = append(parts, strconv.FormatUint(uint64(m), 10))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Allocator hands out marks from a single increasing counter.
type Allocator struct {
	next  Mark
	limit int
}

// NewAllocator returns an allocator that fails past limit marks. A limit
// outside 1..MaxMarks means MaxMarks.
func NewAllocator(limit int) *Allocator {
	if limit <= 0 || limit > MaxMarks {
		limit = MaxMarks
	}
	return &Allocator{limit: limit}
}

// Add allocates one mark.
func (a *Allocator) Add() (Mark, error) {
	return a.AddN(1)
}

// AddN allocates n consecutive marks and returns the first one.
func (a *Allocator) AddN(n int) (Mark, error) {
	if n < 1 {
		return NoMark, fmt.Errorf("cannot allocate %d marks", n)
	}
	if int(a.next)+n > a.limit {
		return NoMark, fmt.Errorf("%w: need %d, limit is %d", ErrTooManyMarks, int(a.next)+n, a.limit)
	}
	first := a.next
	a.next += Mark(n)
	return first, nil
}

// Count returns the number of marks allocated so far.
func (a *Allocator) Count() int { return int(a.next) }

// Limit returns the mark budget.
func (a *Allocator) Limit() int { return a.limit }
