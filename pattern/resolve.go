package pattern

import (
	"github.com/eaburns/swc/diag"
	"github.com/eaburns/swc/types"
)

// Resolve resolves p against the static type t of the value it tests,
// setting the resolved types of p and its sub-patterns.
// Problems are reported to diags; resolution always completes,
// leaving types.Invalid on patterns that fail to resolve.
func Resolve(diags *diag.List, p Pattern, t types.Type) {
	if g := p.GuardOf(); g != nil && g.Const != nil && !*g.Const {
		diags.Report(diag.GuardAlwaysFalse, g, "guard is always false; %s never matches", p)
	}
	resolve(diags, p, t)
}

func resolve(diags *diag.List, p Pattern, t types.Type) {
	switch p := p.(type) {
	case *TypePattern:
		resolveTypePattern(diags, p, t)
	case *ProductPattern:
		resolveProductPattern(diags, p, t)
	case *AlternativePattern:
		p.T = t
		for _, alt := range p.Alts {
			resolve(diags, alt, t)
			if names := Bindings(alt); len(names) > 0 {
				diags.Report(diag.AlternativePatternBindsNames, alt,
					"alternative %s binds %s; alternatives may not bind names", alt, names[0])
			}
		}
	default:
		panic("impossible")
	}
}

func resolveTypePattern(diags *diag.List, p *TypePattern, t types.Type) {
	if p.Declared == nil {
		p.T = t
		if w, ok := t.(*types.Wildcard); ok {
			p.T = w.Bound
		}
		return
	}
	p.T = p.Declared
	if !Applicable(t, p.Declared) {
		diags.Report(diag.PatternTypeMismatch, p,
			"pattern type %s is not applicable to %s", p.Declared, t)
	}
}

func resolveProductPattern(diags *diag.List, p *ProductPattern, t types.Type) {
	p.T = types.Invalid
	decl, ok := p.Declared.(*types.Ref)
	switch {
	case types.IsInvalid(p.Declared):
		break
	case !ok || decl.Class.Kind != types.RecordDecl:
		diags.Report(diag.PatternTypeMismatch, p, "%s is not a record type", p.Declared)
	case !Applicable(t, decl):
		diags.Report(diag.PatternTypeMismatch, p,
			"pattern type %s is not applicable to %s", p.Declared, t)
	case decl.Raw():
		inferred, ok := types.InferArgs(decl.Class, t)
		if !ok {
			diags.Report(diag.CannotInferProductPatternParameterization, p,
				"cannot infer type arguments of %s from %s", decl, t)
			break
		}
		p.T = inferred
	default:
		p.T = decl
	}

	var comps []types.Type
	if r := p.Record(); r != nil {
		comps = types.ComponentTypes(r)
		if len(comps) != len(p.Subs) {
			diags.Report(diag.ProductPatternSignatureMismatch, p,
				"%s has %d components, pattern has %d", r.Class.Name, len(comps), len(p.Subs)).
				Note(r.Class, "%s declared", r.Class.Name)
			p.T = types.Invalid
		}
	}
	for i, sub := range p.Subs {
		var ct types.Type = types.Invalid
		if i < len(comps) {
			ct = comps[i]
		}
		resolve(diags, sub, ct)
	}
}

// Applicable returns whether a pattern of type declared
// may test a value of static type t.
// Primitive-ness must agree: there is no boxing, unboxing,
// widening, or narrowing across a pattern.
// Reference types must be castable.
func Applicable(t, declared types.Type) bool {
	if types.IsInvalid(t) || types.IsInvalid(declared) {
		return true
	}
	tb, db := types.AsBasic(t), types.AsBasic(declared)
	if (tb == nil) != (db == nil) {
		return false
	}
	if tb != nil {
		return tb.Kind == db.Kind
	}
	return types.Castable(t, declared)
}
