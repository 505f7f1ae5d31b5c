package diag

import "fmt"

// Kind is a category of switch diagnostic.
// Each kind has a host-configurable Severity.
type Kind int

const (
	MissingDefaultCase Kind = iota
	EnhancedSwitchMissingDefaultCase
	DuplicateLabel
	PatternDominated
	IllegalFallthroughAcrossPatternCase
	EmptyOrNoResultSwitchExpression
	IncompatibleResultExpressionTypes
	MixedCaseBodyForms
	ProductPatternSignatureMismatch
	CannotInferProductPatternParameterization
	UnresolvedSelectorType
	IncorrectSwitchType
	IllegalPatternForSelector
	PatternTypeMismatch
	ConstantTypeMismatch
	UnknownEnumConstant
	MissingEnumConstantCase
	DefaultPlusTrueAndFalse
	AlternativePatternBindsNames
	GuardAlwaysFalse

	nKinds
)

var kindNames = [nKinds]string{
	MissingDefaultCase:                        "MissingDefaultCase",
	EnhancedSwitchMissingDefaultCase:          "EnhancedSwitchMissingDefaultCase",
	DuplicateLabel:                            "DuplicateLabel",
	PatternDominated:                          "PatternDominatedByEarlierLabel",
	IllegalFallthroughAcrossPatternCase:       "IllegalFallthroughAcrossPatternCase",
	EmptyOrNoResultSwitchExpression:           "EmptyOrNoResultSwitchExpression",
	IncompatibleResultExpressionTypes:         "IncompatibleResultExpressionTypes",
	MixedCaseBodyForms:                        "MixedCaseBodyForms",
	ProductPatternSignatureMismatch:           "ProductPatternSignatureMismatch",
	CannotInferProductPatternParameterization: "CannotInferProductPatternParameterization",
	UnresolvedSelectorType:                    "UnresolvedSelectorType",
	IncorrectSwitchType:                       "IncorrectSwitchType",
	IllegalPatternForSelector:                 "IllegalPatternForSelector",
	PatternTypeMismatch:                       "PatternTypeMismatch",
	ConstantTypeMismatch:                      "ConstantTypeMismatch",
	UnknownEnumConstant:                       "UnknownEnumConstant",
	MissingEnumConstantCase:                   "MissingEnumConstantCase",
	DefaultPlusTrueAndFalse:                   "DefaultPlusTrueAndFalse",
	AlternativePatternBindsNames:              "AlternativePatternBindsNames",
	GuardAlwaysFalse:                          "GuardAlwaysFalse",
}

func (k Kind) String() string {
	if k < 0 || k >= nKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds returns all diagnostic kinds.
func Kinds() []Kind {
	ks := make([]Kind, nKinds)
	for i := range ks {
		ks[i] = Kind(i)
	}
	return ks
}

// ParseKind returns the Kind with the given name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}

// Severity is how a diagnostic is reported.
type Severity int

const (
	Ignore Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Ignore:
		return "ignore"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ParseSeverity parses a severity name.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "ignore":
		return Ignore, nil
	case "warning":
		return Warning, nil
	case "error":
		return Error, nil
	default:
		return 0, fmt.Errorf("unknown severity %q", s)
	}
}

var defaultSeverities = [nKinds]Severity{
	MissingDefaultCase:                        Ignore,
	EnhancedSwitchMissingDefaultCase:          Error,
	DuplicateLabel:                            Error,
	PatternDominated:                          Error,
	IllegalFallthroughAcrossPatternCase:       Error,
	EmptyOrNoResultSwitchExpression:           Error,
	IncompatibleResultExpressionTypes:         Error,
	MixedCaseBodyForms:                        Error,
	ProductPatternSignatureMismatch:           Error,
	CannotInferProductPatternParameterization: Error,
	UnresolvedSelectorType:                    Error,
	IncorrectSwitchType:                       Error,
	IllegalPatternForSelector:                 Error,
	PatternTypeMismatch:                       Error,
	ConstantTypeMismatch:                      Error,
	UnknownEnumConstant:                       Error,
	MissingEnumConstantCase:                   Ignore,
	DefaultPlusTrueAndFalse:                   Error,
	AlternativePatternBindsNames:              Error,
	GuardAlwaysFalse:                          Warning,
}
