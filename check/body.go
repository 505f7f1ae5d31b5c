package check

import (
	"github.com/eaburns/swc/diag"
	"github.com/eaburns/swc/types"
)

func (r *resolver) checkBodies(sw *Switch) {
	if !sw.Arrow {
		r.checkFallthrough(sw)
	}
	if !sw.IsExpr {
		return
	}
	if len(sw.Cases) == 0 {
		r.diags.Report(diag.EmptyOrNoResultSwitchExpression, sw, "switch expression has no cases")
		sw.Invalid = true
		return
	}
	for i, c := range sw.Cases {
		switch {
		case sw.Arrow && len(c.Body.Stmts) == 0:
			r.diags.Report(diag.EmptyOrNoResultSwitchExpression, c, "switch expression case has an empty body")
			sw.Invalid = true
		case sw.Arrow && c.Body.CompletesNormally():
			r.diags.Report(diag.EmptyOrNoResultSwitchExpression, c,
				"switch expression case completes without providing a value")
			sw.Invalid = true
		case !sw.Arrow && i == len(sw.Cases)-1 && c.Body.CompletesNormally():
			r.diags.Report(diag.EmptyOrNoResultSwitchExpression, c,
				"switch expression completes without providing a value")
			sw.Invalid = true
		}
	}
	if sw.Invalid {
		return
	}
	r.resultType(sw)
}

// checkFallthrough reports colon-form cases with pattern bindings
// that can be reached by falling through the previous case.
func (r *resolver) checkFallthrough(sw *Switch) {
	for i, c := range sw.Cases {
		if i == 0 || !sw.Cases[i-1].Body.CompletesNormally() {
			continue
		}
		if names := c.Bindings(); len(names) > 0 {
			r.diags.Report(diag.IllegalFallthroughAcrossPatternCase, c,
				"illegal fall-through to a pattern binding %s", names[0]).
				Note(sw.Cases[i-1], "previous case")
		}
	}
}

// resultType sets the type of a switch expression from the types of its yields.
//
// Primitive numeric results are promoted to the widest of them.
// Boolean results must all be boolean.
// Reference results have the nearest common superclass as their type.
// A primitive mixed with references is boxed;
// the box must be a subtype of some reference result.
func (r *resolver) resultType(sw *Switch) {
	var yields []Stmt
	for _, c := range sw.Cases {
		for _, s := range c.Body.Stmts {
			if s.Kind == Yield && s.Type != nil {
				yields = append(yields, s)
			}
		}
	}
	if len(yields) == 0 {
		return
	}
	var prims, refs []Stmt
	for _, y := range yields {
		if types.AsBasic(y.Type) != nil {
			prims = append(prims, y)
		} else {
			refs = append(refs, y)
		}
	}
	switch {
	case len(refs) == 0:
		t, bad := promote(prims)
		if bad != nil {
			r.diags.Report(diag.IncompatibleResultExpressionTypes, bad,
				"incompatible result type %s", bad.Type).
				Note(prims[0], "%s", prims[0].Type)
			return
		}
		sw.ResultType = t
	case len(prims) == 0:
		sw.ResultType = r.commonSuper(refs)
	default:
		t, bad := promote(prims)
		if bad == nil {
			if box := r.u.BoxType(t); allUnbox(refs, t) {
				sw.ResultType = t
				return
			} else if lub := r.commonSuper(refs); types.IsSubtype(box, lub) {
				sw.ResultType = lub
				return
			}
			bad = &prims[0]
		}
		r.diags.Report(diag.IncompatibleResultExpressionTypes, bad,
			"incompatible result type %s", bad.Type).
			Note(refs[0], "%s", refs[0].Type)
	}
}

func allUnbox(refs []Stmt, t *types.Basic) bool {
	for _, s := range refs {
		if b := types.Unbox(s.Type); b == nil || b.Kind != t.Kind {
			return false
		}
	}
	return true
}

// promote returns the promoted type of primitive results,
// or the first result that cannot be promoted with the others.
func promote(prims []Stmt) (*types.Basic, *Stmt) {
	t := types.AsBasic(prims[0].Type)
	for i := range prims[1:] {
		s := &prims[i+1]
		b := types.AsBasic(s.Type)
		switch {
		case b.Kind == t.Kind:
		case b.Kind == types.Boolean || t.Kind == types.Boolean:
			return nil, s
		case b.Kind == types.Char && t.Kind < types.Int || t.Kind == types.Char && b.Kind < types.Int:
			t = types.Prim(types.Int)
		case b.Kind > t.Kind:
			t = b
		}
	}
	return t, nil
}

// commonSuper returns the nearest superclass common to all reference results.
func (r *resolver) commonSuper(refs []Stmt) types.Type {
	lub := types.Erasure(refs[0].Type)
	for _, s := range refs[1:] {
		lub = r.join(lub, types.Erasure(s.Type))
	}
	return lub
}

func (r *resolver) join(a, b types.Type) types.Type {
	switch {
	case types.IsSubtype(a, b):
		return b
	case types.IsSubtype(b, a):
		return a
	}
	ac := types.ClassOf(a)
	if ac == nil {
		return r.u.ObjectType()
	}
	for _, s := range ac.Supers {
		if j := r.join(types.Erasure(s), b); !types.Identical(j, r.u.ObjectType()) {
			return j
		}
	}
	return r.u.ObjectType()
}
