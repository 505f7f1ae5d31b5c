package parser

import (
	"fmt"
	"strconv"

	"github.com/eaburns/swc/emit/interp"
	"github.com/eaburns/swc/types"
)

// ParseValue parses a runtime value of the classes in u.
//
// A value is null, an integer, character, string, or boolean literal,
// an enumeration constant Color.RED, a record Circle(1),
// or an instance of another class written as its name.
// A record or class instance may be followed by throws accessor,
// naming an accessor that throws when called.
// Integer components of records are converted to the component's primitive type.
func ParseValue(u *types.Universe, src string) (interp.Val, error) {
	toks, bad := lex(src)
	if bad >= 0 {
		return nil, fmt.Errorf("value %q: bad token at offset %d", src, bad)
	}
	p := &valueParser{u: u, toks: toks}
	v, err := p.value()
	if err != nil {
		return nil, fmt.Errorf("value %q: %w", src, err)
	}
	if t := p.toks[p.i]; t.kind != tEOF {
		return nil, fmt.Errorf("value %q: unexpected %q", src, t.text)
	}
	return v, nil
}

type valueParser struct {
	u    *types.Universe
	toks []token
	i    int
}

func (p *valueParser) next() token { t := p.toks[p.i]; p.i++; return t }

func (p *valueParser) at(kind tokKind, text string) bool {
	t := p.toks[p.i]
	return t.kind == kind && t.text == text
}

func (p *valueParser) value() (interp.Val, error) {
	t := p.next()
	switch t.kind {
	case tInt:
		n, err := strconv.ParseInt(t.text, 10, 32)
		if err != nil {
			return nil, err
		}
		return interp.Prim{Kind: types.Int, N: n}, nil
	case tChar:
		r, ok := unquoteChar(t.text)
		if !ok {
			return nil, fmt.Errorf("bad character %s", t.text)
		}
		return interp.Prim{Kind: types.Char, N: int64(r)}, nil
	case tString:
		s, err := strconv.Unquote(t.text)
		if err != nil {
			return nil, fmt.Errorf("bad string %s", t.text)
		}
		return interp.Text(s), nil
	case tIdent:
		switch t.text {
		case "null":
			return interp.Null{}, nil
		case "true":
			return interp.Prim{Kind: types.Boolean, N: 1}, nil
		case "false":
			return interp.Prim{Kind: types.Boolean}, nil
		}
		return p.object(t)
	default:
		return nil, fmt.Errorf("unexpected %q", t.text)
	}
}

func (p *valueParser) object(name token) (interp.Val, error) {
	c := p.u.Lookup(name.text)
	if c == nil {
		return nil, fmt.Errorf("undefined: %s", name.text)
	}
	if c.Kind == types.EnumDecl {
		if !p.at(tPunct, ".") {
			return nil, fmt.Errorf("%s constant expected", c.Name)
		}
		p.next()
		k := p.next()
		ord := c.Ordinal(k.text)
		if ord < 0 {
			return nil, fmt.Errorf("%s has no constant %s", c.Name, k.text)
		}
		return &interp.Obj{Class: c, Ordinal: ord}, nil
	}
	if c.Abstract || c.IsInterface() || c.Unboxed != nil || c.Text {
		return nil, fmt.Errorf("cannot instantiate %s", c.Name)
	}
	o := &interp.Obj{Class: c, Ordinal: -1}
	if c.Kind == types.RecordDecl {
		fields, err := p.fields(c)
		if err != nil {
			return nil, err
		}
		o.Fields = fields
	}
	if p.at(tIdent, "throws") {
		p.next()
		acc := p.next()
		if acc.kind != tIdent {
			return nil, fmt.Errorf("accessor name expected after throws")
		}
		o.Throws = acc.text
	}
	return o, nil
}

func (p *valueParser) fields(c *types.Class) ([]interp.Val, error) {
	if !p.at(tPunct, "(") {
		return nil, fmt.Errorf("%s components expected", c.Name)
	}
	p.next()
	var fields []interp.Val
	for !p.at(tPunct, ")") {
		if len(fields) > 0 {
			if !p.at(tPunct, ",") {
				return nil, fmt.Errorf("\",\" or \")\" expected")
			}
			p.next()
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		fields = append(fields, v)
	}
	p.next()
	if len(fields) != len(c.Components) {
		return nil, fmt.Errorf("%s has %d components, got %d", c.Name, len(c.Components), len(fields))
	}
	for i, comp := range c.Components {
		prim, ok := fields[i].(interp.Prim)
		b := types.AsBasic(comp.Type)
		if !ok || b == nil || b.Kind == prim.Kind {
			continue
		}
		switch {
		case prim.Kind == types.Boolean || b.Kind == types.Boolean:
			return nil, fmt.Errorf("%s component %s is %s, got %s", c.Name, comp.Name, b, prim)
		case b.Kind == types.Float || b.Kind == types.Double:
			fields[i] = interp.Prim{Kind: b.Kind, F: float64(prim.N)}
		default:
			fields[i] = interp.Prim{Kind: b.Kind, N: prim.N}
		}
	}
	return fields, nil
}
