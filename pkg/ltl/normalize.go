package ltl

// Normalize rewrites f into negation normal form over the core operators
// true, false, ap, !ap, &, |, X, U and R. F, G, W, M, ->, <-> and xor are
// unabbreviated on the way.
func Normalize(f *Formula) *Formula {
	return nnf(f, false)
}

// IsNormal reports whether f only uses the core operators with negations
// applied to atomic propositions.
func IsNormal(f *Formula) bool {
	switch f.op {
	case OpTrue, OpFalse, OpAP:
		return true
	case OpNot:
		return f.kids[0].op == OpAP
	case OpAnd, OpOr, OpNext, OpUntil, OpRelease:
		for _, k := range f.kids {
			if !IsNormal(k) {
				return false
			}
		}
		return true
	}
	return false
}

func nnf(f *Formula, neg bool) *Formula {
	switch f.op {
	case OpTrue:
		if neg {
			return ff
		}
		return tt
	case OpFalse:
		if neg {
			return tt
		}
		return ff
	case OpAP:
		if neg {
			return Not(f)
		}
		return f
	case OpNot:
		return nnf(f.kids[0], !neg)
	case OpAnd, OpOr:
		kids := make([]*Formula, len(f.kids))
		for i, k := range f.kids {
			kids[i] = nnf(k, neg)
		}
		if (f.op == OpAnd) != neg {
			return And(kids...)
		}
		return Or(kids...)
	case OpNext:
		return X(nnf(f.kids[0], neg))
	case OpUntil:
		a, b := nnf(f.kids[0], neg), nnf(f.kids[1], neg)
		if neg {
			return R(a, b)
		}
		return U(a, b)
	case OpRelease:
		a, b := nnf(f.kids[0], neg), nnf(f.kids[1], neg)
		if neg {
			return U(a, b)
		}
		return R(a, b)
	case OpEventually:
		a := nnf(f.kids[0], neg)
		if neg {
			return R(ff, a)
		}
		return U(tt, a)
	case OpGlobally:
		a := nnf(f.kids[0], neg)
		if neg {
			return U(tt, a)
		}
		return R(ff, a)
	case OpWeakUntil:
		// a W b = b R (a | b)
		a, b := nnf(f.kids[0], neg), nnf(f.kids[1], neg)
		if neg {
			return U(b, And(a, b))
		}
		return R(b, Or(a, b))
	case OpStrongRelease:
		// a M b = b U (a & b)
		a, b := nnf(f.kids[0], neg), nnf(f.kids[1], neg)
		if neg {
			return R(b, Or(a, b))
		}
		return U(b, And(a, b))
	case OpImplies:
		if neg {
			return And(nnf(f.kids[0], false), nnf(f.kids[1], true))
		}
		return Or(nnf(f.kids[0], true), nnf(f.kids[1], false))
	case OpEquiv, OpXor:
		a, b := f.kids[0], f.kids[1]
		if (f.op == OpXor) != neg {
			return Or(And(nnf(a, false), nnf(b, true)), And(nnf(a, true), nnf(b, false)))
		}
		return Or(And(nnf(a, false), nnf(b, false)), And(nnf(a, true), nnf(b, true)))
	}
	return f
}
