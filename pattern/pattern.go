// Package pattern is the model of switch case labels and patterns.
package pattern

import (
	"strings"

	"github.com/eaburns/swc/loc"
	"github.com/eaburns/swc/types"
)

// A Label is one element of a case label.
// It is one of *Constant, *EnumConstant, *Null, *Default,
// *TypePattern, *ProductPattern, or *AlternativePattern.
type Label interface {
	loc.Locer
	String() string
	isLabel()
}

// A Pattern is a Label that tests the runtime type and shape of a value.
// It is one of *TypePattern, *ProductPattern, or *AlternativePattern.
type Pattern interface {
	Label

	// Type returns the resolved type of the pattern,
	// or nil if the pattern is not yet resolved.
	Type() types.Type

	// GuardOf returns the guard of the pattern, or nil.
	// Only patterns directly in a case label are guarded.
	GuardOf() *Guard

	isPattern()
}

func (*Constant) isLabel()           {}
func (*EnumConstant) isLabel()       {}
func (*Null) isLabel()               {}
func (*Default) isLabel()            {}
func (*TypePattern) isLabel()        {}
func (*ProductPattern) isLabel()     {}
func (*AlternativePattern) isLabel() {}

func (*TypePattern) isPattern()        {}
func (*ProductPattern) isPattern()     {}
func (*AlternativePattern) isPattern() {}

// A Constant is a literal constant label.
type Constant struct {
	Value Value
	L     loc.Loc
}

func (c *Constant) Loc() loc.Loc   { return c.L }
func (c *Constant) String() string { return c.Value.String() }

// An EnumConstant is a reference to an enumeration constant.
type EnumConstant struct {
	Name string

	// Qualifier is the enumeration name if the reference is qualified.
	Qualifier string

	// Class and Ordinal are set by resolution.
	// Ordinal is -1 if the constant is unresolved.
	Class   *types.Class
	Ordinal int

	L loc.Loc
}

func (e *EnumConstant) Loc() loc.Loc { return e.L }

func (e *EnumConstant) String() string {
	if e.Qualifier != "" {
		return e.Qualifier + "." + e.Name
	}
	return e.Name
}

// Null is the null label.
type Null struct {
	L loc.Loc
}

func (n *Null) Loc() loc.Loc { return n.L }
func (*Null) String() string { return "null" }

// Default is the default label.
type Default struct {
	L loc.Loc
}

func (d *Default) Loc() loc.Loc { return d.L }
func (*Default) String() string { return "default" }

// A Guard is a boolean condition attached to a case pattern.
type Guard struct {
	// Expr is the source text of the guard expression.
	Expr string

	// Const is non-nil if the guard is a constant expression.
	Const *bool

	L loc.Loc
}

func (g *Guard) Loc() loc.Loc { return g.L }

func (g *Guard) String() string {
	if g.Const != nil {
		if *g.Const {
			return "true"
		}
		return "false"
	}
	return g.Expr
}

// A TypePattern tests the type of a value and binds it to a name.
//
// If Declared is nil, the pattern is a var or unnamed pattern
// whose type is inferred from context;
// such a pattern matches every value of its context type.
type TypePattern struct {
	// Name is the bound name.
	// It is empty for the unnamed pattern _.
	Name     string
	Declared types.Type
	Guard    *Guard

	// T is set by resolution.
	T types.Type

	L loc.Loc
}

func (p *TypePattern) Loc() loc.Loc     { return p.L }
func (p *TypePattern) Type() types.Type { return p.T }
func (p *TypePattern) GuardOf() *Guard  { return p.Guard }
func (p *TypePattern) String() string   { return guarded(p.Guard, p.buildString) }

func (p *TypePattern) buildString(s *strings.Builder) {
	switch {
	case p.Declared == nil && p.Name == "":
		s.WriteRune('_')
		return
	case p.Declared == nil:
		s.WriteString("var")
	default:
		s.WriteString(p.Declared.String())
	}
	s.WriteRune(' ')
	if p.Name == "" {
		s.WriteRune('_')
	} else {
		s.WriteString(p.Name)
	}
}

// A ProductPattern deconstructs a record value component by component.
type ProductPattern struct {
	// Declared is the record type as written.
	// If it is a raw generic record type,
	// its type arguments are inferred during resolution.
	Declared types.Type
	Subs     []Pattern
	Guard    *Guard

	// T is set by resolution.
	// It is types.Invalid if the pattern does not resolve.
	T types.Type

	L loc.Loc
}

func (p *ProductPattern) Loc() loc.Loc     { return p.L }
func (p *ProductPattern) Type() types.Type { return p.T }
func (p *ProductPattern) GuardOf() *Guard  { return p.Guard }
func (p *ProductPattern) String() string   { return guarded(p.Guard, p.buildString) }

func (p *ProductPattern) buildString(s *strings.Builder) {
	s.WriteString(p.Declared.String())
	s.WriteRune('(')
	for i, sub := range p.Subs {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(sub.String())
	}
	s.WriteRune(')')
}

// Record returns the resolved record type, or nil if unresolved or invalid.
func (p *ProductPattern) Record() *types.Ref {
	r, _ := p.T.(*types.Ref)
	return r
}

// An AlternativePattern matches if any of its alternatives match.
// Its alternatives bind no names.
type AlternativePattern struct {
	Alts  []Pattern
	Guard *Guard

	// T is set by resolution; it is the static type of the context.
	T types.Type

	L loc.Loc
}

func (p *AlternativePattern) Loc() loc.Loc     { return p.L }
func (p *AlternativePattern) Type() types.Type { return p.T }
func (p *AlternativePattern) GuardOf() *Guard  { return p.Guard }
func (p *AlternativePattern) String() string   { return guarded(p.Guard, p.buildString) }

func (p *AlternativePattern) buildString(s *strings.Builder) {
	for i, alt := range p.Alts {
		if i > 0 {
			s.WriteString(" | ")
		}
		s.WriteString(alt.String())
	}
}

func guarded(g *Guard, build func(*strings.Builder)) string {
	var s strings.Builder
	build(&s)
	if g != nil {
		s.WriteString(" when ")
		s.WriteString(g.String())
	}
	return s.String()
}

// Unguarded returns whether p has no guard or a constant true guard.
func Unguarded(p Pattern) bool {
	g := p.GuardOf()
	return g == nil || g.Const != nil && *g.Const
}

// Bindings returns the names bound by p, in order.
// An AlternativePattern binds no names.
func Bindings(p Pattern) []string {
	switch p := p.(type) {
	case *TypePattern:
		if p.Name == "" {
			return nil
		}
		return []string{p.Name}
	case *ProductPattern:
		var names []string
		for _, sub := range p.Subs {
			names = append(names, Bindings(sub)...)
		}
		return names
	case *AlternativePattern:
		return nil
	default:
		panic("impossible")
	}
}
