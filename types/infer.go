package types

// InferArgs infers the type arguments of generic class c
// when a value of static type t is tested against c,
// for example by a record pattern naming a raw generic record.
//
// The arguments are found by unifying the supertype of c
// that corresponds to t with t itself.
// Parameters that are not determined become wildcards bounded by the parameter bound.
// InferArgs returns false if c and t are unrelated
// or their arguments cannot be unified.
func InferArgs(c *Class, t Type) (*Ref, bool) {
	if len(c.Parms) == 0 {
		return &Ref{Class: c}, true
	}
	switch t := t.(type) {
	case *Var:
		return InferArgs(c, t.Parm.Bound)
	case *Wildcard:
		return InferArgs(c, t.Bound)
	case *InvalidType:
		return wildcards(c, nil), true
	case *Ref:
		return inferRef(c, t)
	default:
		return nil, false
	}
}

func inferRef(c *Class, t *Ref) (*Ref, bool) {
	vars := &Ref{Class: c, Args: make([]Type, len(c.Parms))}
	for i, p := range c.Parms {
		vars.Args[i] = &Var{Parm: p}
	}
	sup := AsSuper(vars, t.Class)
	if sup == nil {
		if down := AsSuper(t, c); down != nil && len(down.Args) > 0 {
			return down, true
		}
		if castableClass(c, t.Class) {
			return wildcards(c, nil), true
		}
		return nil, false
	}
	if len(t.Args) == 0 || len(sup.Args) != len(t.Args) {
		return wildcards(c, nil), true
	}
	parms := make(map[*TypeParm]bool, len(c.Parms))
	for _, p := range c.Parms {
		parms[p] = true
	}
	bind := make(map[*TypeParm]Type)
	for i := range sup.Args {
		if !unify(parms, bind, sup.Args[i], t.Args[i]) {
			return nil, false
		}
	}
	return wildcards(c, bind), true
}

func wildcards(c *Class, bind map[*TypeParm]Type) *Ref {
	r := &Ref{Class: c, Args: make([]Type, len(c.Parms))}
	for i, p := range c.Parms {
		if b, ok := bind[p]; ok {
			r.Args[i] = b
		} else {
			r.Args[i] = &Wildcard{Bound: p.Bound}
		}
	}
	return r
}

// unify binds parms so that pattern a is identical to b.
// Wildcards in b bind nothing.
func unify(parms map[*TypeParm]bool, bind map[*TypeParm]Type, a, b Type) bool {
	if _, ok := b.(*Wildcard); ok {
		return true
	}
	switch a := a.(type) {
	case *Var:
		if !parms[a.Parm] {
			return Identical(a, b)
		}
		if prev, ok := bind[a.Parm]; ok {
			return Identical(prev, b)
		}
		bind[a.Parm] = b
		return true
	case *Ref:
		b, ok := b.(*Ref)
		if !ok || a.Class != b.Class || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !unify(parms, bind, a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	default:
		return Identical(a, b)
	}
}
