package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/eaburns/swc/types"
)

// A Val is a runtime value.
// It is one of Prim, Text, Null, or *Obj.
type Val interface {
	String() string
	isVal()
}

func (Prim) isVal() {}
func (Text) isVal() {}
func (Null) isVal() {}
func (*Obj) isVal() {}

// A Prim is a primitive value.
// When a Prim is used as a reference it is an instance of its box class.
type Prim struct {
	Kind types.Kind

	// N is the value of integral, character, and boolean kinds.
	N int64

	// F is the value of float and double kinds.
	F float64
}

func (p Prim) String() string {
	switch p.Kind {
	case types.Char:
		return strconv.QuoteRune(rune(p.N))
	case types.Boolean:
		return strconv.FormatBool(p.N != 0)
	case types.Float, types.Double:
		return strconv.FormatFloat(p.F, 'g', -1, 64)
	default:
		return strconv.FormatInt(p.N, 10)
	}
}

// A Text is a value of the text class.
type Text string

func (t Text) String() string { return strconv.Quote(string(t)) }

// Null is the null reference.
type Null struct{}

func (Null) String() string { return "null" }

// An Obj is an instance of a declared class.
type Obj struct {
	Class *types.Class

	// Ordinal is the ordinal of an enumeration constant.
	Ordinal int

	// Fields are the component values of a record, in declaration order.
	Fields []Val

	// Throws is the name of an accessor that throws when called.
	Throws string
}

func (o *Obj) String() string {
	switch {
	case o.Class.Kind == types.EnumDecl:
		if o.Ordinal >= 0 && o.Ordinal < len(o.Class.Constants) {
			return o.Class.Name + "." + o.Class.Constants[o.Ordinal]
		}
		return fmt.Sprintf("%s.#%d", o.Class.Name, o.Ordinal)
	case o.Class.Kind == types.RecordDecl:
		var s strings.Builder
		s.WriteString(o.Class.Name)
		s.WriteRune('(')
		for i, f := range o.Fields {
			if i > 0 {
				s.WriteString(", ")
			}
			s.WriteString(f.String())
		}
		s.WriteRune(')')
		return s.String()
	default:
		return o.Class.Name
	}
}
