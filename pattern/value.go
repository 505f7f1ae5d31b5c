package pattern

import (
	"strconv"

	"github.com/eaburns/swc/types"
)

// ValueKind is the kind of a constant value.
type ValueKind int

const (
	IntValue ValueKind = iota
	CharValue
	BoolValue
	TextValue
)

// A Value is a compile-time constant.
// Integer, character, and boolean values are held in Int;
// boolean true is 1.
type Value struct {
	Kind ValueKind
	Int  int64
	Text string
}

// IntVal returns an integer Value.
func IntVal(n int64) Value { return Value{Kind: IntValue, Int: n} }

// CharVal returns a character Value.
func CharVal(r rune) Value { return Value{Kind: CharValue, Int: int64(r)} }

// BoolVal returns a boolean Value.
func BoolVal(b bool) Value {
	if b {
		return Value{Kind: BoolValue, Int: 1}
	}
	return Value{Kind: BoolValue}
}

// TextVal returns a text Value.
func TextVal(s string) Value { return Value{Kind: TextValue, Text: s} }

func (v Value) String() string {
	switch v.Kind {
	case IntValue:
		return strconv.FormatInt(v.Int, 10)
	case CharValue:
		return strconv.QuoteRune(rune(v.Int))
	case BoolValue:
		return strconv.FormatBool(v.Int != 0)
	case TextValue:
		return strconv.Quote(v.Text)
	default:
		panic("impossible")
	}
}

// Type returns the static type of the constant.
func (v Value) Type(u *types.Universe) types.Type {
	switch v.Kind {
	case IntValue:
		return types.Prim(types.Int)
	case CharValue:
		return types.Prim(types.Char)
	case BoolValue:
		return types.Prim(types.Boolean)
	case TextValue:
		return u.StringType()
	default:
		panic("impossible")
	}
}

// Key returns the integer dispatch key of an integer, character, or boolean value.
func (v Value) Key() int64 {
	if v.Kind == TextValue {
		panic("impossible text key")
	}
	return v.Int
}
