// Package types is the resolved type model that switch analysis runs against.
//
// Types are produced by a resolver (in this repository, the fixture parser)
// and are immutable once analysis begins.
package types

import (
	"fmt"
	"strings"

	"github.com/eaburns/swc/loc"
)

// Type is a resolved type.
// It is one of *Basic, *Ref, *Var, *Wildcard, *NullType, or *InvalidType.
type Type interface {
	String() string
	isType()
}

func (*Basic) isType()       {}
func (*Ref) isType()         {}
func (*Var) isType()         {}
func (*Wildcard) isType()    {}
func (*NullType) isType()    {}
func (*InvalidType) isType() {}

// Kind is the kind of a primitive type.
type Kind int

const (
	Byte Kind = iota
	Short
	Char
	Int
	Long
	Float
	Double
	Boolean
)

var kindNames = [...]string{
	Byte:    "byte",
	Short:   "short",
	Char:    "char",
	Int:     "int",
	Long:    "long",
	Float:   "float",
	Double:  "double",
	Boolean: "boolean",
}

func (k Kind) String() string { return kindNames[k] }

// Integral returns whether the kind is an integer or character kind.
func (k Kind) Integral() bool { return k <= Long }

// Range returns the inclusive value range of an integral kind.
func (k Kind) Range() (int64, int64) {
	switch k {
	case Byte:
		return -1 << 7, 1<<7 - 1
	case Short:
		return -1 << 15, 1<<15 - 1
	case Char:
		return 0, 1<<16 - 1
	case Int:
		return -1 << 31, 1<<31 - 1
	case Long:
		return -1 << 63, 1<<63 - 1
	default:
		panic(fmt.Sprintf("impossible non-integral kind %s", k))
	}
}

// Basic is a primitive type.
type Basic struct {
	Kind Kind
}

var basics = func() [Boolean + 1]*Basic {
	var bs [Boolean + 1]*Basic
	for k := range bs {
		bs[k] = &Basic{Kind: Kind(k)}
	}
	return bs
}()

// Prim returns the primitive type of the given kind.
func Prim(k Kind) *Basic { return basics[k] }

func (b *Basic) String() string { return b.Kind.String() }

// ClassKind distinguishes the flavors of reference type declarations.
type ClassKind int

const (
	ClassDecl ClassKind = iota
	InterfaceDecl
	RecordDecl
	EnumDecl
)

func (k ClassKind) String() string {
	switch k {
	case ClassDecl:
		return "class"
	case InterfaceDecl:
		return "interface"
	case RecordDecl:
		return "record"
	case EnumDecl:
		return "enum"
	default:
		panic(fmt.Sprintf("impossible class kind %d", int(k)))
	}
}

// Class is a reference type declaration.
type Class struct {
	Name     string
	Kind     ClassKind
	Abstract bool
	Final    bool
	Sealed   bool

	// Parms are the type parameters of a generic declaration.
	Parms []*TypeParm

	// Supers are the direct supertypes.
	// They may mention Parms.
	Supers []*Ref

	// Permits are the permitted direct subtypes of a Sealed declaration.
	Permits []*Class

	// Components are the components of a RecordDecl, in order.
	// Component types may mention Parms.
	Components []Component

	// Constants are the constant names of an EnumDecl, in ordinal order.
	Constants []string

	// Unboxed is the primitive kind of a wrapper class, or nil.
	Unboxed *Basic

	// Text is set for the string class.
	Text bool

	L loc.Loc
}

func (c *Class) Loc() loc.Loc { return c.L }

// IsInterface returns whether c is an interface declaration.
func (c *Class) IsInterface() bool { return c.Kind == InterfaceDecl }

// Closed returns whether c has direct instances only of its permitted subtypes.
// That is, c is sealed and either abstract or an interface.
func (c *Class) Closed() bool {
	return c.Sealed && (c.Abstract || c.IsInterface())
}

// Leaf returns whether c can have no subtypes.
func (c *Class) Leaf() bool {
	return c.Final || c.Kind == RecordDecl || c.Kind == EnumDecl
}

// Ordinal returns the ordinal of the named enum constant, or -1.
func (c *Class) Ordinal(name string) int {
	for i, n := range c.Constants {
		if n == name {
			return i
		}
	}
	return -1
}

// Component is a component of a record declaration.
type Component struct {
	Name string
	Type Type

	// Accessor is the name of the accessor method.
	Accessor string
}

// TypeParm is a type parameter of a generic declaration.
type TypeParm struct {
	Name  string
	Bound Type
}

// Ref is a reference to a class type.
// If Args is empty and Class is generic, the reference is raw.
type Ref struct {
	Class *Class
	Args  []Type
}

// Raw returns whether r is a raw reference to a generic class.
func (r *Ref) Raw() bool { return len(r.Class.Parms) > 0 && len(r.Args) == 0 }

func (r *Ref) String() string {
	if len(r.Args) == 0 {
		return r.Class.Name
	}
	var s strings.Builder
	s.WriteString(r.Class.Name)
	s.WriteRune('<')
	for i, a := range r.Args {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(a.String())
	}
	s.WriteRune('>')
	return s.String()
}

// Var is a use of a type parameter.
type Var struct {
	Parm *TypeParm
}

func (v *Var) String() string { return v.Parm.Name }

// Wildcard is an unknown type argument with an upper bound.
type Wildcard struct {
	Bound Type
}

func (*Wildcard) String() string { return "?" }

// NullType is the type of the null literal.
type NullType struct{}

func (*NullType) String() string { return "null" }

// Null is the null type.
var Null = &NullType{}

// InvalidType is the type of something that failed to resolve.
// It is compatible with every type so that errors do not cascade.
type InvalidType struct{}

func (*InvalidType) String() string { return "<invalid>" }

// Invalid is the invalid type.
var Invalid = &InvalidType{}

// IsInvalid returns whether t is nil or Invalid.
func IsInvalid(t Type) bool {
	_, ok := t.(*InvalidType)
	return t == nil || ok
}

// ClassOf returns the class of a class type, or nil.
func ClassOf(t Type) *Class {
	if r, ok := t.(*Ref); ok {
		return r.Class
	}
	return nil
}

// AsBasic returns t as a primitive type, or nil.
func AsBasic(t Type) *Basic {
	b, _ := t.(*Basic)
	return b
}
