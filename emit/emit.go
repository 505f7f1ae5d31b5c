// Package emit is the instruction target of switch dispatch code.
//
// The target is a stack machine with named temporaries.
// Value operations push and pop an operand stack;
// branches transfer control to labels placed in the instruction sequence.
// Program is an Emitter that records the instructions it is given.
package emit

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/eaburns/swc/types"
)

// An Emitter receives the instructions of dispatch code.
type Emitter interface {
	// NewLabel returns a new, unplaced label.
	NewLabel() *Label
	// Place places a label at the current position.
	Place(*Label)
	// BranchIfFalse pops a boolean and branches if it is false.
	BranchIfFalse(*Label)
	// BranchAlways branches unconditionally.
	BranchAlways(*Label)

	// Pending returns the number of values on the operand stack
	// when the dispatch code begins.
	Pending() int
	// SpillStack pops len(ts) values into ts; ts[0] is the deepest value.
	SpillStack(ts []Temp)
	// RestoreStack pushes the values of ts, ts[0] first.
	RestoreStack(ts []Temp)

	// Selector pushes the value of the selector expression.
	Selector()
	// Load pushes the value of a temporary.
	Load(Temp)
	// Store pops a value into a temporary.
	Store(Temp)
	// Const pushes an integer constant.
	Const(int64)
	// Dup pushes a copy of the top value.
	Dup()
	// Pop discards the top value.
	Pop()

	// Eq pops two integers and pushes whether they are equal.
	Eq()
	// TextEquals pops a text value and pushes whether it equals s.
	TextEquals(s string)
	// Hash pops a text value and pushes its TextHash.
	Hash()
	// OrdinalLookup pops an enumeration constant and pushes its ordinal.
	OrdinalLookup(*types.Class)
	// NullCheck faults with NullPointer if the top value is null.
	// The value is not popped.
	NullCheck()

	// Classify pops a restart index and a value,
	// and pushes the index of the first label at or after the restart index
	// that matches the value.
	// It pushes -1 if the value is null and len(labels) if no label matches.
	// If enum is non-nil, enumeration constant labels of enum
	// are matched by ordinal.
	Classify(enum *types.Class, labels []ClassLabel)
	// TableSwitch pops an integer key and branches to targets[key-lo],
	// or to dflt if the key is out of range.
	TableSwitch(lo int64, targets []*Label, dflt *Label)

	// TypeGuard pops a value and pushes whether it is an instance of t.
	// Null is an instance of no type.
	TypeGuard(t types.Type)
	// CallAccessor pops a record value and pushes the value of the component.
	CallAccessor(record *types.Class, c types.Component)
	// Protect begins a region whose exceptions branch to handler.
	// The operand stack is empty on entry to the handler.
	Protect(handler *Label)
	// EndProtect ends the innermost protected region.
	EndProtect()
	// ThrowStructuredFailure faults with the given kind.
	ThrowStructuredFailure(FailureKind)

	// Guard evaluates a guard expression and pushes its boolean result.
	Guard(expr string)
	// Body executes the statements of a case.
	Body(c int, text string)
}

// A Label is a position in an instruction sequence.
type Label struct {
	N int
}

func (l *Label) String() string { return fmt.Sprintf("L%d", l.N) }

// A Temp is a named temporary variable.
type Temp string

// FailureKind is the kind of a runtime fault raised by dispatch code.
type FailureKind int

const (
	// MatchFailure is raised when no label of an exhaustive switch matches.
	MatchFailure FailureKind = iota
	// IncompatibleClassChange is MatchFailure for targets
	// that predate structured match failures.
	IncompatibleClassChange
	// AccessorFailure is raised when a record accessor called
	// by a product pattern throws.
	AccessorFailure
	// NullPointer is raised on a null selector with no null label.
	NullPointer
	// Exception is an exception thrown outside of a protected region.
	Exception
)

func (k FailureKind) String() string {
	switch k {
	case MatchFailure:
		return "MatchFailure"
	case IncompatibleClassChange:
		return "IncompatibleClassChange"
	case AccessorFailure:
		return "AccessorFailure"
	case NullPointer:
		return "NullPointer"
	case Exception:
		return "Exception"
	default:
		panic(fmt.Sprintf("impossible FailureKind %d", int(k)))
	}
}

// ClassLabelKind is the kind of a ClassLabel.
type ClassLabelKind int

const (
	// NullLabel matches nothing; null values classify as -1.
	NullLabel ClassLabelKind = iota
	TypeLabel
	EnumLabel
	IntLabel
	TextLabel
)

// A ClassLabel is one label of a Classify instruction.
type ClassLabel struct {
	Kind ClassLabelKind

	// Types are the types of a TypeLabel.
	// A value matches if it is an instance of any of them.
	Types []types.Type

	// Enum, Name, and Ordinal identify the constant of an EnumLabel.
	Enum    *types.Class
	Name    string
	Ordinal int

	// Int is the value of an IntLabel.
	Int int64

	// Text is the value of a TextLabel.
	Text string
}

func (l ClassLabel) String() string {
	switch l.Kind {
	case NullLabel:
		return "null"
	case TypeLabel:
		var ss []string
		for _, t := range l.Types {
			ss = append(ss, t.String())
		}
		return strings.Join(ss, "|")
	case EnumLabel:
		return l.Enum.Name + "." + l.Name
	case IntLabel:
		return fmt.Sprintf("%d", l.Int)
	case TextLabel:
		return fmt.Sprintf("%q", l.Text)
	default:
		panic(fmt.Sprintf("impossible ClassLabelKind %d", int(l.Kind)))
	}
}

// TextHash returns the hash of a text value:
// the polynomial s[0]*31^(n-1) + ... + s[n-1]
// over the UTF-16 code units of s, in 32-bit arithmetic.
func TextHash(s string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(c)
	}
	return h
}
