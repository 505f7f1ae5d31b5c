package check

import (
	"github.com/eaburns/swc/diag"
	"github.com/eaburns/swc/pattern"
	"github.com/eaburns/swc/types"
)

// exhaustive returns whether the labels of sw match every selector value,
// reporting a diagnostic if they do not.
// It must be called after labels are resolved and TotalPattern is set.
func (r *resolver) exhaustive(sw *Switch) bool {
	tr := r.tr.item("check exhaustiveness")
	defer tr.done()

	trueFalse := hasTrueAndFalse(sw)
	switch {
	case sw.Default != nil:
		if trueFalse {
			r.diags.Report(diag.DefaultPlusTrueAndFalse, defaultLabel(sw.Default),
				"default label with both true and false labels")
		}
		tr.trace("default label")
		return true
	case sw.TotalPattern != nil:
		tr.trace("total pattern %s", sw.TotalPattern)
		return true
	}
	var ok bool
	switch sw.Kind {
	case Boolean:
		ok = trueFalse
	case Enum:
		ok = r.enumExhaustive(sw)
	case Reference:
		ok = r.coversSelector(sw)
	}
	if !ok {
		r.reportNotExhaustive(sw)
	}
	return ok
}

func defaultLabel(c *Case) pattern.Label {
	for _, l := range c.Labels {
		if d, ok := l.(*pattern.Default); ok {
			return d
		}
	}
	panic("impossible")
}

func hasTrueAndFalse(sw *Switch) bool {
	if sw.Kind != Boolean {
		return false
	}
	var t, f bool
	for _, e := range sw.Entries {
		c, ok := e.Label.(*pattern.Constant)
		if !ok || c.Value.Kind != pattern.BoolValue {
			continue
		}
		if c.Value.Int != 0 {
			t = true
		} else {
			f = true
		}
	}
	return t && f
}

// enumExhaustive returns whether every constant of the selector enumeration is labeled.
// Traditional enumeration switch statements report each missing constant.
func (r *resolver) enumExhaustive(sw *Switch) bool {
	class := types.ClassOf(types.Erasure(sw.Selector))
	ords := make(map[int]bool)
	for _, e := range sw.Entries {
		if ec, ok := e.Label.(*pattern.EnumConstant); ok && ec.Class == class {
			ords[ec.Ordinal] = true
		}
	}
	ok := true
	for i, name := range class.Constants {
		if ords[i] {
			continue
		}
		ok = false
		if !sw.IsExpr && !enhanced(sw) {
			r.diags.Report(diag.MissingEnumConstantCase, sw,
				"the enum constant %s needs a corresponding case label", name)
		}
	}
	return ok
}

// coversSelector returns whether the unguarded patterns
// and enumeration constants of sw cover the selector type.
func (r *resolver) coversSelector(sw *Switch) bool {
	cv := &coverage{enums: make(map[*types.Class]map[int]bool)}
	var rows []row
	for _, e := range sw.Entries {
		switch l := e.Label.(type) {
		case pattern.Pattern:
			if pattern.Unguarded(l) {
				rows = append(rows, row{l})
			}
		case *pattern.EnumConstant:
			if l.Class == nil {
				continue
			}
			if cv.enums[l.Class] == nil {
				cv.enums[l.Class] = make(map[int]bool)
			}
			cv.enums[l.Class][l.Ordinal] = true
		}
	}
	root := buildPosition([]types.Type{sw.Selector}, rows)
	tr := r.tr.item("coverage tree")
	tr.trace("%s", root)
	tr.done()
	return cv.positionCovered(root)
}

// enhanced returns whether sw needs the enhanced switch semantics:
// it has pattern or null labels,
// or its selector type is not integral, text, or an enumeration.
func enhanced(sw *Switch) bool {
	if sw.Kind == Boolean || sw.Kind == Reference {
		return true
	}
	for _, e := range sw.Entries {
		switch e.Label.(type) {
		case pattern.Pattern, *pattern.Null:
			return true
		}
	}
	return false
}

func (r *resolver) reportNotExhaustive(sw *Switch) {
	switch {
	case sw.IsExpr:
		r.diags.Report(diag.EnhancedSwitchMissingDefaultCase, sw,
			"switch expression does not cover all possible input values")
	case enhanced(sw):
		r.diags.Report(diag.EnhancedSwitchMissingDefaultCase, sw,
			"switch statement does not cover all possible input values")
	default:
		r.diags.Report(diag.MissingDefaultCase, sw, "switch has no default case")
	}
}
