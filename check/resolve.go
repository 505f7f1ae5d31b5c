package check

import (
	"io"

	"github.com/eaburns/swc/diag"
	"github.com/eaburns/swc/loc"
	"github.com/eaburns/swc/pattern"
	"github.com/eaburns/swc/types"
)

// An Option configures resolution.
type Option func(*resolver)

// PatternMatching enables or disables pattern and null labels
// on switches with integral, boolean, text, or enumeration selectors,
// and switches on other reference types.
// It is enabled by default.
func PatternMatching(b bool) Option {
	return func(r *resolver) { r.patterns = b }
}

// PrimitivePatterns enables switches on long, float, and double selectors.
// It is disabled by default.
func PrimitivePatterns(b bool) Option {
	return func(r *resolver) { r.primitives = b }
}

// Trace writes a trace of resolution to w.
// Locations are resolved against files, if any.
func Trace(w io.Writer, files loc.Files) Option {
	return func(r *resolver) { r.tr = &tracer{w: w, files: files} }
}

type resolver struct {
	u          *types.Universe
	diags      *diag.List
	patterns   bool
	primitives bool
	tr         *tracer
}

// Resolve resolves a switch, setting its derived fields
// and reporting diagnostics to diags.
//
// Resolve may be called more than once on the same switch;
// derived state is reset first, so each call gives the same result.
func Resolve(u *types.Universe, sw *Switch, diags *diag.List, opts ...Option) {
	r := &resolver{u: u, diags: diags, patterns: true}
	for _, opt := range opts {
		opt(r)
	}
	r.resolve(sw)
}

func (r *resolver) resolve(sw *Switch) {
	tr := r.tr.item("resolve %s at %v", sw, sw.L)
	defer tr.done()

	reset(sw)
	if sw.Kind = r.classify(sw); sw.Invalid {
		tr.trace("invalid selector")
		return
	}
	tr.trace("selector kind %s", sw.Kind)
	if r.checkForms(sw); sw.Invalid {
		tr.trace("mixed case forms")
		return
	}
	r.resolveLabels(sw)
	r.checkDominance(sw)
	sw.TotalPattern = totalPattern(sw)
	sw.Exhaustive = r.exhaustive(sw)
	tr.trace("exhaustive %v", sw.Exhaustive)
	sw.Strategy = strategy(sw)
	tr.trace("strategy %s", sw.Strategy)
	r.checkBodies(sw)
}

func reset(sw *Switch) {
	sw.Kind = InvalidSelector
	sw.Strategy = IntStrategy
	sw.Arrow = false
	sw.Exhaustive = false
	sw.TotalPattern = nil
	sw.QualifiedEnum = false
	sw.Default = nil
	sw.Entries = nil
	sw.ResultType = nil
	sw.Invalid = false
	for i, c := range sw.Cases {
		c.Index = i
	}
}

func (r *resolver) classify(sw *Switch) SelectorKind {
	t := sw.Selector
	if types.IsInvalid(t) {
		r.diags.Report(diag.UnresolvedSelectorType, sw, "cannot resolve the selector type")
		sw.Invalid = true
		return InvalidSelector
	}
	if b := types.Unbox(t); b != nil {
		switch b.Kind {
		case types.Byte, types.Short, types.Char, types.Int:
			return Integral
		case types.Boolean:
			return Boolean
		}
		_, boxed := t.(*types.Ref)
		if r.primitives || boxed && r.patterns {
			return Reference
		}
		r.diags.Report(diag.IncorrectSwitchType, sw, "cannot switch on a value of type %s", t)
		sw.Invalid = true
		return InvalidSelector
	}
	var kind SelectorKind
	switch c := types.ClassOf(types.Erasure(t)); {
	case t == types.Type(types.Null) || c == nil:
		r.diags.Report(diag.IncorrectSwitchType, sw, "cannot switch on a value of type %s", t)
		sw.Invalid = true
		return InvalidSelector
	case c.Text:
		kind = Text
	case c.Kind == types.EnumDecl:
		kind = Enum
	default:
		kind = Reference
	}
	if kind == Reference && !r.patterns {
		r.diags.Report(diag.IncorrectSwitchType, sw,
			"cannot switch on a value of type %s without pattern matching", t)
		sw.Invalid = true
		return InvalidSelector
	}
	return kind
}

func (r *resolver) checkForms(sw *Switch) {
	if len(sw.Cases) == 0 {
		return
	}
	sw.Arrow = sw.Cases[0].Arrow
	for _, c := range sw.Cases[1:] {
		if c.Arrow != sw.Arrow {
			r.diags.Report(diag.MixedCaseBodyForms, c,
				"cannot mix arrow and colon case forms").
				Note(sw.Cases[0], "first case")
			sw.Invalid = true
			return
		}
	}
}

func (r *resolver) resolveLabels(sw *Switch) {
	tr := r.tr.item("resolve labels")
	defer tr.done()

	var defaultLabel *pattern.Default
	for _, c := range sw.Cases {
		for _, l := range c.Labels {
			switch l := l.(type) {
			case *pattern.Default:
				if defaultLabel != nil {
					r.diags.Report(diag.DuplicateLabel, l, "duplicate default label").
						Note(defaultLabel, "previous")
					continue
				}
				defaultLabel = l
				sw.Default = c
				continue
			case *pattern.Constant:
				r.resolveConstant(sw, l)
			case *pattern.EnumConstant:
				r.resolveEnumConstant(sw, l)
			case *pattern.Null:
				r.resolveNull(sw, l)
			case pattern.Pattern:
				r.resolvePattern(sw, l)
			default:
				panic("impossible")
			}
			e := &Entry{Label: l, Case: c, Index: len(sw.Entries)}
			tr.trace("entry %d: %s", e.Index, l)
			sw.Entries = append(sw.Entries, e)
		}
	}
}

func (r *resolver) resolveConstant(sw *Switch, c *pattern.Constant) {
	v := c.Value
	ok := true
	switch sw.Kind {
	case Integral:
		if v.Kind != pattern.IntValue && v.Kind != pattern.CharValue {
			ok = false
			break
		}
		min, max := types.Unbox(sw.Selector).Kind.Range()
		if v.Int < min || v.Int > max {
			r.diags.Report(diag.ConstantTypeMismatch, c,
				"constant %s overflows %s", v, types.Unbox(sw.Selector))
			return
		}
	case Boolean:
		ok = v.Kind == pattern.BoolValue
	case Text:
		ok = v.Kind == pattern.TextValue
	default:
		ok = false
	}
	if !ok {
		r.diags.Report(diag.ConstantTypeMismatch, c,
			"constant %s of type %s is not compatible with selector type %s",
			v, v.Type(r.u), sw.Selector)
	}
}

func (r *resolver) resolveEnumConstant(sw *Switch, e *pattern.EnumConstant) {
	e.Class, e.Ordinal = nil, -1
	var class *types.Class
	switch {
	case e.Qualifier != "":
		class = r.u.Lookup(e.Qualifier)
		if class == nil || class.Kind != types.EnumDecl {
			r.diags.Report(diag.UnknownEnumConstant, e, "%s is not an enumeration", e.Qualifier)
			return
		}
		if !types.Castable(sw.Selector, &types.Ref{Class: class}) {
			r.diags.Report(diag.ConstantTypeMismatch, e,
				"%s is not compatible with selector type %s", e, sw.Selector)
			return
		}
	case sw.Kind == Enum:
		class = types.ClassOf(types.Erasure(sw.Selector))
	default:
		r.diags.Report(diag.UnknownEnumConstant, e,
			"%s must be qualified when the selector type %s is not an enumeration", e.Name, sw.Selector)
		return
	}
	ord := class.Ordinal(e.Name)
	if ord < 0 {
		r.diags.Report(diag.UnknownEnumConstant, e, "%s has no constant %s", class.Name, e.Name).
			Note(class, "%s declared", class.Name)
		return
	}
	e.Class, e.Ordinal = class, ord
	if sw.Kind != Enum {
		sw.QualifiedEnum = true
	}
}

func (r *resolver) resolveNull(sw *Switch, n *pattern.Null) {
	switch {
	case types.AsBasic(sw.Selector) != nil:
		r.diags.Report(diag.IllegalPatternForSelector, n,
			"null label with primitive selector type %s", sw.Selector)
	case !r.patterns:
		r.diags.Report(diag.IllegalPatternForSelector, n, "null label requires pattern matching")
	}
}

func (r *resolver) resolvePattern(sw *Switch, p pattern.Pattern) {
	if !r.patterns {
		r.diags.Report(diag.IllegalPatternForSelector, p,
			"pattern %s requires pattern matching", p)
	}
	pattern.Resolve(r.diags, p, sw.Selector)
}

// totalPattern returns the first unguarded pattern covering the selector type.
// There is none if the switch has a default.
func totalPattern(sw *Switch) pattern.Pattern {
	if sw.Default != nil {
		return nil
	}
	for _, e := range sw.Entries {
		p, ok := e.Label.(pattern.Pattern)
		if ok && pattern.Unguarded(p) && pattern.Covers(p, sw.Selector) {
			return p
		}
	}
	return nil
}

func strategy(sw *Switch) Strategy {
	constsOnly := true
	for _, e := range sw.Entries {
		switch e.Label.(type) {
		case *pattern.Constant:
		case *pattern.EnumConstant:
			if sw.Kind != Enum {
				constsOnly = false
			}
		default:
			constsOnly = false
		}
	}
	switch {
	case !constsOnly:
		return PatternStrategy
	case sw.Kind == Integral || sw.Kind == Boolean || sw.Kind == Enum:
		return IntStrategy
	case sw.Kind == Text:
		return TextStrategy
	default:
		return PatternStrategy
	}
}
