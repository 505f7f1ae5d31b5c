package types

import "fmt"

// Universe is a set of class declarations,
// including the predeclared root, string, and wrapper classes.
type Universe struct {
	Object *Class
	String *Class

	boxes   [Boolean + 1]*Class
	classes map[string]*Class
	order   []*Class
}

var boxNames = [...]string{
	Byte:    "Byte",
	Short:   "Short",
	Char:    "Character",
	Int:     "Integer",
	Long:    "Long",
	Float:   "Float",
	Double:  "Double",
	Boolean: "Boolean",
}

// NewUniverse returns a Universe containing only the predeclared classes.
func NewUniverse() *Universe {
	u := &Universe{classes: make(map[string]*Class)}
	u.Object = &Class{Name: "Object"}
	u.add(u.Object)
	u.String = &Class{Name: "String", Final: true, Text: true}
	u.add(u.String)
	number := &Class{Name: "Number", Abstract: true}
	u.add(number)
	for k := range u.boxes {
		c := &Class{Name: boxNames[k], Final: true, Unboxed: Prim(Kind(k))}
		if Kind(k) != Boolean && Kind(k) != Char {
			c.Supers = []*Ref{{Class: number}}
		}
		u.boxes[k] = c
		u.add(c)
	}
	return u
}

// Declare adds a class declaration to the Universe.
// A class with no supertypes gets the root class as its supertype.
// Declare returns an error if the name is already declared.
func (u *Universe) Declare(c *Class) error {
	if prev, ok := u.classes[c.Name]; ok && prev != c {
		return fmt.Errorf("%s redeclared", c.Name)
	}
	u.add(c)
	return nil
}

func (u *Universe) add(c *Class) {
	if _, ok := u.classes[c.Name]; ok {
		return
	}
	if c != u.Object && len(c.Supers) == 0 {
		c.Supers = []*Ref{{Class: u.Object}}
	}
	u.classes[c.Name] = c
	u.order = append(u.order, c)
}

// Lookup returns the named class, or nil.
func (u *Universe) Lookup(name string) *Class { return u.classes[name] }

// Classes returns all classes in declaration order.
func (u *Universe) Classes() []*Class { return u.order }

// Box returns the wrapper class of a primitive kind.
func (u *Universe) Box(k Kind) *Class { return u.boxes[k] }

// BoxType returns the reference type of the wrapper class of b.
func (u *Universe) BoxType(b *Basic) *Ref { return &Ref{Class: u.boxes[b.Kind]} }

// ObjectType returns a reference to the root class.
func (u *Universe) ObjectType() *Ref { return &Ref{Class: u.Object} }

// StringType returns a reference to the string class.
func (u *Universe) StringType() *Ref { return &Ref{Class: u.String} }

// Unbox returns the primitive type of t if t is primitive or a wrapper class.
func Unbox(t Type) *Basic {
	switch t := t.(type) {
	case *Basic:
		return t
	case *Ref:
		return t.Class.Unboxed
	default:
		return nil
	}
}
