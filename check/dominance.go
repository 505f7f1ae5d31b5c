package check

import (
	"github.com/eaburns/swc/diag"
	"github.com/eaburns/swc/pattern"
	"github.com/eaburns/swc/types"
)

type enumKey struct {
	class   *types.Class
	ordinal int
}

// checkDominance reports labels that duplicate or are dominated by an earlier label.
//
// A guarded pattern never dominates, but a guarded pattern
// may itself be dominated by an earlier unguarded pattern.
// Constants are checked for duplicates whether or not
// the switch has guarded patterns.
// A default label dominates later unguarded patterns and null labels;
// constants may follow a default.
func (r *resolver) checkDominance(sw *Switch) {
	tr := r.tr.item("check dominance")
	defer tr.done()

	var (
		dflt     *pattern.Default
		null     *pattern.Null
		consts   = make(map[pattern.Value]*pattern.Constant)
		enums    = make(map[enumKey]*pattern.EnumConstant)
		patterns []pattern.Pattern
	)
	for _, c := range sw.Cases {
		for _, l := range c.Labels {
			switch l := l.(type) {
			case *pattern.Default:
				if dflt == nil {
					dflt = l
				}
			case *pattern.Constant:
				k := l.Value
				if k.Kind == pattern.CharValue {
					k.Kind = pattern.IntValue
				}
				if prev, ok := consts[k]; ok {
					r.diags.Report(diag.DuplicateLabel, l, "duplicate case label %s", l).
						Note(prev, "previous")
					continue
				}
				consts[k] = l
				r.checkConstDominated(patterns, l, r.constType(l.Value))
			case *pattern.EnumConstant:
				if l.Ordinal < 0 {
					continue
				}
				k := enumKey{class: l.Class, ordinal: l.Ordinal}
				if prev, ok := enums[k]; ok {
					r.diags.Report(diag.DuplicateLabel, l, "duplicate case label %s", l).
						Note(prev, "previous")
					continue
				}
				enums[k] = l
				r.checkConstDominated(patterns, l, &types.Ref{Class: l.Class})
			case *pattern.Null:
				if null != nil {
					r.diags.Report(diag.DuplicateLabel, l, "duplicate null label").
						Note(null, "previous")
					continue
				}
				null = l
				if dflt != nil {
					r.diags.Report(diag.PatternDominated, l, "null label is dominated by a preceding default").
						Note(dflt, "default")
				}
			case pattern.Pattern:
				if prev := dominator(patterns, l); prev != nil {
					tr.trace("%s dominated by %s", l, prev)
					r.diags.Report(diag.PatternDominated, l, "%s is dominated by a preceding case label", l).
						Note(prev, "%s", prev)
				} else if dflt != nil && pattern.Unguarded(l) {
					r.diags.Report(diag.PatternDominated, l, "%s is dominated by a preceding default", l).
						Note(dflt, "default")
				}
				if pattern.Unguarded(l) {
					patterns = append(patterns, l)
				}
			}
		}
	}
}

func dominator(patterns []pattern.Pattern, p pattern.Pattern) pattern.Pattern {
	for _, prev := range patterns {
		if pattern.Dominates(prev, p) {
			return prev
		}
	}
	return nil
}

func (r *resolver) checkConstDominated(patterns []pattern.Pattern, l pattern.Label, t types.Type) {
	for _, prev := range patterns {
		if pattern.Covers(prev, t) {
			r.diags.Report(diag.PatternDominated, l, "%s is dominated by a preceding case label", l).
				Note(prev, "%s", prev)
			return
		}
	}
}

// constType returns the boxed type of a constant value.
func (r *resolver) constType(v pattern.Value) types.Type {
	t := v.Type(r.u)
	if b := types.AsBasic(t); b != nil {
		return r.u.BoxType(b)
	}
	return t
}
