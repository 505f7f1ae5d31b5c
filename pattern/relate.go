package pattern

import "github.com/eaburns/swc/types"

// Covers returns whether p matches every non-null value of type t,
// disregarding any guard on p.
// A ProductPattern covers no type, since it does not match null components
// and it may fail its accessor calls.
func Covers(p Pattern, t types.Type) bool {
	if HasInvalid(p) {
		return false
	}
	switch p := p.(type) {
	case *TypePattern:
		return types.IsSubtype(types.Erasure(t), types.Erasure(p.T))
	case *ProductPattern:
		return false
	case *AlternativePattern:
		for _, alt := range p.Alts {
			if Covers(alt, t) {
				return true
			}
		}
		return false
	default:
		panic("impossible")
	}
}

// Dominates returns whether p matches every value that q matches,
// so that a q following p is unreachable.
// Type parameterization is ignored.
// Guards are not considered; callers must not use guarded patterns as p.
func Dominates(p, q Pattern) bool {
	if HasInvalid(p) || HasInvalid(q) {
		return false
	}
	if q, ok := q.(*AlternativePattern); ok {
		for _, alt := range q.Alts {
			if !Dominates(p, alt) {
				return false
			}
		}
		return true
	}
	switch p := p.(type) {
	case *TypePattern:
		return types.IsSubtype(types.Erasure(q.Type()), types.Erasure(p.T))
	case *ProductPattern:
		q, ok := q.(*ProductPattern)
		if !ok || p.Record().Class != q.Record().Class || len(p.Subs) != len(q.Subs) {
			return false
		}
		for i := range p.Subs {
			if !Dominates(p.Subs[i], q.Subs[i]) {
				return false
			}
		}
		return true
	case *AlternativePattern:
		for _, alt := range p.Alts {
			if Dominates(alt, q) {
				return true
			}
		}
		return false
	default:
		panic("impossible")
	}
}

// HasInvalid returns whether p or any of its sub-patterns failed to resolve.
func HasInvalid(p Pattern) bool {
	if types.IsInvalid(p.Type()) {
		return true
	}
	switch p := p.(type) {
	case *ProductPattern:
		for _, sub := range p.Subs {
			if HasInvalid(sub) {
				return true
			}
		}
	case *AlternativePattern:
		for _, alt := range p.Alts {
			if HasInvalid(alt) {
				return true
			}
		}
	}
	return false
}
