package types

import "fmt"

// Identical returns whether a and b are the same type.
func Identical(a, b Type) bool {
	switch a := a.(type) {
	case *Basic:
		b, ok := b.(*Basic)
		return ok && a.Kind == b.Kind
	case *Ref:
		b, ok := b.(*Ref)
		if !ok || a.Class != b.Class || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !Identical(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	case *Var:
		b, ok := b.(*Var)
		return ok && a.Parm == b.Parm
	case *Wildcard:
		b, ok := b.(*Wildcard)
		return ok && (a == b || Identical(a.Bound, b.Bound))
	case *NullType:
		_, ok := b.(*NullType)
		return ok
	case *InvalidType:
		_, ok := b.(*InvalidType)
		return ok
	case nil:
		return b == nil
	default:
		panic(fmt.Sprintf("impossible Type type: %T", a))
	}
}

// Subst returns t with type parameters replaced according to sub.
func Subst(sub map[*TypeParm]Type, t Type) Type {
	switch t := t.(type) {
	case *Ref:
		if len(t.Args) == 0 {
			return t
		}
		copy := &Ref{Class: t.Class, Args: make([]Type, len(t.Args))}
		for i, a := range t.Args {
			copy.Args[i] = Subst(sub, a)
		}
		return copy
	case *Var:
		if s, ok := sub[t.Parm]; ok {
			return s
		}
		return t
	case *Wildcard:
		return &Wildcard{Bound: Subst(sub, t.Bound)}
	default:
		return t
	}
}

func parmMap(r *Ref) map[*TypeParm]Type {
	if len(r.Args) != len(r.Class.Parms) {
		return nil
	}
	m := make(map[*TypeParm]Type, len(r.Args))
	for i, p := range r.Class.Parms {
		m[p] = r.Args[i]
	}
	return m
}

// Erasure returns t with all type arguments removed
// and type variables replaced by the erasure of their bounds.
func Erasure(t Type) Type {
	switch t := t.(type) {
	case *Ref:
		if len(t.Args) == 0 {
			return t
		}
		return &Ref{Class: t.Class}
	case *Var:
		return Erasure(t.Parm.Bound)
	case *Wildcard:
		return Erasure(t.Bound)
	default:
		return t
	}
}

// AsSuper returns the supertype of t declared by class c,
// with type arguments substituted; or nil if c is not a supertype of t.
// A raw t yields a raw supertype.
func AsSuper(t Type, c *Class) *Ref {
	switch t := t.(type) {
	case *Ref:
		if t.Class == c {
			return t
		}
		sub := parmMap(t)
		for _, s := range t.Class.Supers {
			var super Type = s
			if sub != nil {
				super = Subst(sub, s)
			} else if len(t.Class.Parms) > 0 {
				super = Erasure(s)
			}
			if r := AsSuper(super, c); r != nil {
				return r
			}
		}
		return nil
	case *Var:
		return AsSuper(t.Parm.Bound, c)
	case *Wildcard:
		return AsSuper(t.Bound, c)
	default:
		return nil
	}
}

// IsSubtype returns whether s is a subtype of t.
// Primitive types are subtypes only of themselves;
// there is no widening, boxing, or unboxing.
// An invalid type is a subtype and supertype of everything.
func IsSubtype(s, t Type) bool {
	if IsInvalid(s) || IsInvalid(t) {
		return true
	}
	switch t := t.(type) {
	case *Basic:
		s, ok := s.(*Basic)
		return ok && s.Kind == t.Kind
	case *NullType:
		_, ok := s.(*NullType)
		return ok
	case *Wildcard:
		return s == Type(t)
	case *Var:
		if s, ok := s.(*Var); ok && s.Parm == t.Parm {
			return true
		}
		_, ok := s.(*NullType)
		return ok
	case *Ref:
		switch s := s.(type) {
		case *NullType:
			return true
		case *Var:
			return IsSubtype(s.Parm.Bound, t)
		case *Wildcard:
			return IsSubtype(s.Bound, t)
		case *Ref:
			sup := AsSuper(s, t.Class)
			if sup == nil {
				return false
			}
			if len(t.Args) == 0 || len(sup.Args) == 0 {
				return true
			}
			for i := range t.Args {
				if !containsArg(t.Args[i], sup.Args[i]) {
					return false
				}
			}
			return true
		default:
			return false
		}
	default:
		panic(fmt.Sprintf("impossible Type type: %T", t))
	}
}

func containsArg(t, s Type) bool {
	if w, ok := t.(*Wildcard); ok {
		return IsSubtype(s, w.Bound)
	}
	return Identical(s, t)
}

// Castable returns whether a value of static type s may be tested
// at runtime for type t; that is, whether some value could have both types.
func Castable(s, t Type) bool {
	if IsInvalid(s) || IsInvalid(t) {
		return true
	}
	sb, tb := AsBasic(s), AsBasic(t)
	switch {
	case sb != nil || tb != nil:
		return sb != nil && tb != nil && sb.Kind == tb.Kind
	case s == Type(Null) || t == Type(Null):
		return true
	}
	sc, tc := ClassOf(Erasure(s)), ClassOf(Erasure(t))
	if sc == nil || tc == nil {
		return true
	}
	return castableClass(sc, tc)
}

func castableClass(a, b *Class) bool {
	ra, rb := &Ref{Class: a}, &Ref{Class: b}
	if AsSuper(ra, b) != nil || AsSuper(rb, a) != nil {
		return true
	}
	switch {
	case a.Sealed:
		for _, p := range a.Permits {
			if castableClass(p, b) {
				return true
			}
		}
		return false
	case b.Sealed:
		return castableClass(b, a)
	case a.IsInterface() && b.IsInterface():
		return true
	case a.IsInterface():
		return !b.Leaf()
	case b.IsInterface():
		return !a.Leaf()
	default:
		return false
	}
}

// ComponentTypes returns the component types of a record type,
// with type arguments substituted.
// The components of a raw record type are erased.
func ComponentTypes(r *Ref) []Type {
	sub := parmMap(r)
	ts := make([]Type, len(r.Class.Components))
	for i, c := range r.Class.Components {
		switch {
		case sub != nil:
			ts[i] = Subst(sub, c.Type)
		case len(r.Class.Parms) > 0:
			ts[i] = Erasure(c.Type)
		default:
			ts[i] = c.Type
		}
	}
	return ts
}
