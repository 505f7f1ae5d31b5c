// Package check resolves switch constructs against their selector type.
//
// Resolution classifies the selector, resolves each case label,
// reports dominated and duplicate labels,
// determines whether the labels are exhaustive,
// and chooses the dispatch strategy used to generate code.
package check

import (
	"fmt"

	"github.com/eaburns/swc/loc"
	"github.com/eaburns/swc/pattern"
	"github.com/eaburns/swc/types"
)

// A Switch is a multi-way branch on the value of a selector.
type Switch struct {
	// Name identifies the switch in output; it may be empty.
	Name string

	// Selector is the static type of the selector expression.
	Selector types.Type

	// IsExpr is whether the switch is an expression yielding a value.
	IsExpr bool

	Cases []*Case
	L     loc.Loc

	// The remaining fields are set by Resolve.

	Kind     SelectorKind
	Strategy Strategy

	// Arrow is whether the cases use the arrow form.
	// Arrow cases do not fall through.
	Arrow bool

	// Exhaustive is whether every possible selector value
	// is matched by some label.
	Exhaustive bool

	// TotalPattern is the first unguarded pattern that matches
	// every non-null selector value, or nil.
	// Any later such pattern is dominated by it.
	TotalPattern pattern.Pattern

	// QualifiedEnum is whether some label is an enumeration constant
	// of a class other than the selector's,
	// requiring a descriptor-based runtime lookup.
	QualifiedEnum bool

	// Default is the case with the default label, or nil.
	Default *Case

	// Entries are the non-default label elements in source order.
	// Entry i has dispatch index i.
	Entries []*Entry

	// ResultType is the type of a switch expression.
	ResultType types.Type

	// Invalid is set if the switch could not be analyzed.
	// An invalid switch has no type and no code is generated for it.
	Invalid bool
}

func (sw *Switch) Loc() loc.Loc { return sw.L }

func (sw *Switch) String() string {
	if sw.Name != "" {
		return sw.Name
	}
	return fmt.Sprintf("switch (%s)", sw.Selector)
}

// HasNull returns whether some case has a null label.
func (sw *Switch) HasNull() bool {
	for _, e := range sw.Entries {
		if _, ok := e.Label.(*pattern.Null); ok {
			return true
		}
	}
	return false
}

// A Case is a list of labels and the statements they select.
type Case struct {
	Labels []pattern.Label
	Arrow  bool
	Body   Body
	L      loc.Loc

	// Index is the position of the case in its switch; set by Resolve.
	Index int
}

func (c *Case) Loc() loc.Loc { return c.L }

// IsDefault returns whether the case has a default label.
func (c *Case) IsDefault() bool {
	for _, l := range c.Labels {
		if _, ok := l.(*pattern.Default); ok {
			return true
		}
	}
	return false
}

// Bindings returns the names bound by the patterns of the case.
func (c *Case) Bindings() []string {
	var names []string
	for _, l := range c.Labels {
		if p, ok := l.(pattern.Pattern); ok {
			names = append(names, pattern.Bindings(p)...)
		}
	}
	return names
}

// An Entry is a non-default label element with its dispatch index.
type Entry struct {
	Label pattern.Label
	Case  *Case
	Index int
}

// Body is the statements of a case.
// Statements are opaque except for how they complete.
type Body struct {
	Stmts []Stmt
}

// CompletesNormally returns whether control can reach the end of the body.
func (b Body) CompletesNormally() bool {
	return len(b.Stmts) == 0 || b.Stmts[len(b.Stmts)-1].Kind == Plain
}

// StmtKind is how a statement completes.
type StmtKind int

const (
	Plain StmtKind = iota
	Break
	Yield
	Return
	Throw
	Continue
)

func (k StmtKind) String() string {
	switch k {
	case Plain:
		return "stmt"
	case Break:
		return "break"
	case Yield:
		return "yield"
	case Return:
		return "return"
	case Throw:
		return "throw"
	case Continue:
		return "continue"
	default:
		panic(fmt.Sprintf("impossible StmtKind %d", int(k)))
	}
}

// A Stmt is a statement of a case body.
type Stmt struct {
	Kind StmtKind

	// Text is the source of a Plain statement.
	Text string

	// Type is the type of the value of a Yield.
	Type types.Type

	L loc.Loc
}

func (s Stmt) Loc() loc.Loc { return s.L }

func (s Stmt) String() string {
	switch s.Kind {
	case Plain:
		return s.Text
	case Yield:
		if s.Type == nil {
			return "yield"
		}
		return "yield " + s.Type.String()
	default:
		return s.Kind.String()
	}
}

// SelectorKind classifies a selector type.
type SelectorKind int

const (
	InvalidSelector SelectorKind = iota
	Integral
	Boolean
	Enum
	Text
	Reference
)

func (k SelectorKind) String() string {
	switch k {
	case InvalidSelector:
		return "invalid"
	case Integral:
		return "integral"
	case Boolean:
		return "boolean"
	case Enum:
		return "enum"
	case Text:
		return "text"
	case Reference:
		return "reference"
	default:
		panic(fmt.Sprintf("impossible SelectorKind %d", int(k)))
	}
}

// Strategy is the dispatch strategy of a switch.
type Strategy int

const (
	// IntStrategy dispatches on an integer key:
	// an integral value, a boolean, or an enumeration ordinal.
	IntStrategy Strategy = iota
	// TextStrategy dispatches on the hash of a text value,
	// then on text equality.
	TextStrategy
	// PatternStrategy dispatches by a restartable runtime classification.
	PatternStrategy
)

func (s Strategy) String() string {
	switch s {
	case IntStrategy:
		return "INT"
	case TextStrategy:
		return "TEXT"
	case PatternStrategy:
		return "PATTERN"
	default:
		panic(fmt.Sprintf("impossible Strategy %d", int(s)))
	}
}
