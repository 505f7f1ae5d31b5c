// Package parser parses switch fixture files.
//
// A fixture file declares classes and the switches to analyze:
//
//	sealed interface Shape permits Circle, Square
//	record Circle(double r) implements Shape
//	final class Square implements Shape
//	enum Color { RED, GREEN, BLUE }
//
//	switch expr area (Shape) {
//	case Circle(var r) when "r > 0" -> yield double;
//	case Circle c -> yield int;
//	case Square s -> { "log(s)"; yield int; }
//	}
//
// Statements are opaque: a quoted string is a statement
// that completes normally, and the keywords break, yield Type,
// return, throw, and continue complete abruptly.
package parser

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/eaburns/peggy/peg"
	"github.com/eaburns/swc/check"
	"github.com/eaburns/swc/loc"
	"github.com/eaburns/swc/pattern"
	"github.com/eaburns/swc/types"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// A File is a parsed fixture file.
type File struct {
	P      string
	Text   string
	NLs    []int
	Length int

	// Universe holds the predeclared classes and the file's declarations.
	Universe *types.Universe

	// Switches are the switches of the file in source order.
	Switches []*check.Switch
}

func (f *File) Path() string     { return f.P }
func (f *File) Len() int         { return f.Length }
func (f *File) NewLines() []int  { return f.NLs }
func (f *File) Files() loc.Files { return loc.Files{f} }

// ParseFile parses the fixture file at path.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, string(data))
}

// Parse parses fixture source text.
// The path is used only for error messages.
func Parse(path, src string) (file *File, err error) {
	file = &File{P: path, Text: src, Length: len(src), Universe: types.NewUniverse()}
	for i, r := range src {
		if r == '\n' {
			file.NLs = append(file.NLs, i)
		}
	}
	toks, bad := lex(src)
	if bad >= 0 {
		return nil, parseError{path: path, text: src, fail: &peg.Fail{
			Name: "File",
			Kids: []*peg.Fail{{Pos: bad, Want: "token"}},
		}}
	}
	p := &parser{
		file:    file,
		u:       file.Universe,
		toks:    toks,
		pending: make(map[string]*types.Class),
		used:    make(map[*types.Class]loc.Loc),
	}
	defer func() {
		switch r := recover().(type) {
		case nil:
		case syntaxError:
			file, err = nil, parseError{path: path, text: src, fail: p.failTree()}
		case semanticError:
			file, err = nil, r
		default:
			panic(r)
		}
	}()
	p.parseFile()
	p.checkDecls()
	return file, nil
}

type parseError struct {
	path string
	text string
	fail *peg.Fail
}

// Tree returns the failure tree of a syntax error.
func (err parseError) Tree() *peg.Fail { return err.fail }

func (err parseError) Error() string {
	e := peg.SimpleError(err.text, err.fail)
	e.FilePath = err.path
	return e.Error()
}

type semanticError struct {
	loc loc.Location
	msg string
}

func (err semanticError) Error() string { return fmt.Sprintf("%s: %s", err.loc, err.msg) }

type syntaxError struct{}

type parser struct {
	file *File
	u    *types.Universe
	toks []token
	i    int

	// pending are classes referenced before their declaration.
	pending map[string]*types.Class
	// used is the first reference to each pending class.
	used map[*types.Class]loc.Loc
	// scope are the type parameters of the class being declared.
	scope map[string]*types.TypeParm
	// refs are parameterized references, checked once all classes are declared.
	refs []typeRef
	// wants are the tokens expected at the failing token.
	wants []string
}

type typeRef struct {
	ref *types.Ref
	l   loc.Loc
}

func (p *parser) tok() token   { return p.toks[p.i] }
func (p *parser) next() token  { t := p.toks[p.i]; p.i++; return t }
func (p *parser) peek() token  { return p.toks[min(p.i+1, len(p.toks)-1)] }
func (p *parser) start() int   { return p.tok().pos }
func (p *parser) prevEnd() int { return p.toks[p.i-1].end }

func (p *parser) span(start int) loc.Loc { return loc.Loc{start + 1, p.prevEnd() + 1} }

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func (p *parser) atPunct(s string) bool { return p.tok().kind == tPunct && p.tok().text == s }
func (p *parser) atWord(s string) bool  { return p.tok().kind == tIdent && p.tok().text == s }

func (p *parser) fail(wants ...string) {
	p.wants = wants
	panic(syntaxError{})
}

func (p *parser) failTree() *peg.Fail {
	root := &peg.Fail{Name: "File"}
	pos := p.tok().pos
	for _, w := range p.wants {
		root.Kids = append(root.Kids, &peg.Fail{Pos: pos, Want: w})
	}
	return root
}

func (p *parser) errorf(l loc.Loc, f string, vs ...interface{}) {
	panic(semanticError{loc: p.file.Files().Location(l), msg: fmt.Sprintf(f, vs...)})
}

func (p *parser) punct(s string) token {
	if !p.atPunct(s) {
		p.fail(strconv.Quote(s))
	}
	return p.next()
}

func (p *parser) word(s string) token {
	if !p.atWord(s) {
		p.fail(strconv.Quote(s))
	}
	return p.next()
}

func (p *parser) ident() token {
	if p.tok().kind != tIdent || keywords[p.tok().text] {
		p.fail("identifier")
	}
	return p.next()
}

var keywords = map[string]bool{
	"case": true, "default": true, "switch": true, "null": true,
	"true": true, "false": true, "var": true, "when": true,
	"yield": true, "break": true, "return": true, "throw": true, "continue": true,
}

var prims = map[string]types.Kind{
	"byte":    types.Byte,
	"short":   types.Short,
	"char":    types.Char,
	"int":     types.Int,
	"long":    types.Long,
	"float":   types.Float,
	"double":  types.Double,
	"boolean": types.Boolean,
}

func (p *parser) parseFile() {
	for p.tok().kind != tEOF {
		if p.atWord("switch") {
			p.file.Switches = append(p.file.Switches, p.switchDecl())
		} else {
			p.classDecl()
		}
	}
}

// class looks up the class named by tok,
// or returns a placeholder to be filled in by its declaration.
func (p *parser) class(tok token) *types.Class {
	if c := p.u.Lookup(tok.text); c != nil {
		return c
	}
	c, ok := p.pending[tok.text]
	if !ok {
		c = &types.Class{Name: tok.text}
		p.pending[tok.text] = c
		p.used[c] = loc.Loc{tok.pos + 1, tok.end + 1}
	}
	return c
}

func (p *parser) classDecl() {
	start := p.start()
	var sealed, nonSealed, abstract, final bool
mods:
	for {
		switch {
		case p.atWord("sealed"):
			sealed = true
		case p.atWord("non-sealed"):
			nonSealed = true
		case p.atWord("abstract"):
			abstract = true
		case p.atWord("final"):
			final = true
		default:
			break mods
		}
		p.next()
	}
	var k types.ClassKind
	switch {
	case p.atWord("class"):
		k = types.ClassDecl
	case p.atWord("interface"):
		k = types.InterfaceDecl
	case p.atWord("record"):
		k = types.RecordDecl
	case p.atWord("enum"):
		k = types.EnumDecl
	default:
		p.fail(`"class"`, `"interface"`, `"record"`, `"enum"`, `"switch"`)
	}
	p.next()
	name := p.ident()
	if p.u.Lookup(name.text) != nil {
		p.errorf(loc.Loc{name.pos + 1, name.end + 1}, "%s redeclared", name.text)
	}
	c := p.class(name)
	c.Kind = k
	c.Sealed = sealed
	c.Abstract = abstract
	c.Final = final
	if sealed && (nonSealed || final) {
		p.errorf(p.span(start), "%s cannot be both sealed and non-sealed or final", c.Name)
	}

	p.scope = make(map[string]*types.TypeParm)
	defer func() { p.scope = nil }()
	if p.atPunct("<") {
		c.Parms = p.typeParms()
	}
	if k == types.RecordDecl {
		c.Components = p.components()
	}
	if p.atWord("extends") {
		p.next()
		c.Supers = append(c.Supers, p.supers()...)
	}
	if p.atWord("implements") {
		p.next()
		c.Supers = append(c.Supers, p.supers()...)
	}
	if p.atWord("permits") {
		if !sealed {
			p.errorf(p.span(start), "%s has permits but is not sealed", c.Name)
		}
		p.next()
		for {
			c.Permits = append(c.Permits, p.class(p.ident()))
			if !p.atPunct(",") {
				break
			}
			p.next()
		}
	}
	if k == types.EnumDecl {
		c.Constants = p.constants()
	}
	c.L = p.span(start)
	delete(p.pending, c.Name)
	if err := p.u.Declare(c); err != nil {
		p.errorf(c.L, "%s", err)
	}
}

func (p *parser) typeParms() []*types.TypeParm {
	p.punct("<")
	var parms []*types.TypeParm
	for {
		parm := &types.TypeParm{Name: p.ident().text, Bound: p.u.ObjectType()}
		p.scope[parm.Name] = parm
		if p.atWord("extends") {
			p.next()
			parm.Bound = p.typ()
		}
		parms = append(parms, parm)
		if !p.atPunct(",") {
			break
		}
		p.next()
	}
	p.punct(">")
	return parms
}

func (p *parser) components() []types.Component {
	p.punct("(")
	var comps []types.Component
	for !p.atPunct(")") {
		if len(comps) > 0 {
			p.punct(",")
		}
		t := p.typ()
		name := p.ident().text
		comps = append(comps, types.Component{Name: name, Type: t, Accessor: name})
	}
	p.punct(")")
	return comps
}

func (p *parser) supers() []*types.Ref {
	var refs []*types.Ref
	for {
		start := p.start()
		r, ok := p.typ().(*types.Ref)
		if !ok {
			p.errorf(p.span(start), "supertype must be a class type")
		}
		refs = append(refs, r)
		if !p.atPunct(",") {
			return refs
		}
		p.next()
	}
}

func (p *parser) constants() []string {
	p.punct("{")
	var names []string
	for !p.atPunct("}") {
		if len(names) > 0 {
			p.punct(",")
		}
		names = append(names, p.ident().text)
	}
	p.punct("}")
	return names
}

func (p *parser) typ() types.Type {
	start := p.start()
	name := p.tok()
	if name.kind != tIdent {
		p.fail("type")
	}
	p.next()
	if k, ok := prims[name.text]; ok {
		return types.Prim(k)
	}
	if parm, ok := p.scope[name.text]; ok {
		return &types.Var{Parm: parm}
	}
	if keywords[name.text] {
		p.i--
		p.fail("type")
	}
	ref := &types.Ref{Class: p.class(name)}
	if !p.atPunct("<") {
		return ref
	}
	p.next()
	for {
		ref.Args = append(ref.Args, p.typeArg())
		if !p.atPunct(",") {
			break
		}
		p.next()
	}
	p.punct(">")
	p.refs = append(p.refs, typeRef{ref: ref, l: p.span(start)})
	return ref
}

func (p *parser) typeArg() types.Type {
	if !p.atPunct("?") {
		return p.typ()
	}
	p.next()
	w := &types.Wildcard{Bound: p.u.ObjectType()}
	if p.atWord("extends") {
		p.next()
		w.Bound = p.typ()
	}
	return w
}

// checkDecls checks the declarations once all are parsed.
func (p *parser) checkDecls() {
	names := maps.Keys(p.pending)
	slices.Sort(names)
	for _, name := range names {
		p.errorf(p.used[p.pending[name]], "undefined: %s", name)
	}
	for _, r := range p.refs {
		if len(r.ref.Args) != len(r.ref.Class.Parms) {
			p.errorf(r.l, "%s has %d type arguments, want %d",
				r.ref.Class.Name, len(r.ref.Args), len(r.ref.Class.Parms))
		}
	}
	for _, c := range p.u.Classes() {
		for _, m := range c.Permits {
			if !extends(m, c) {
				p.errorf(m.L, "%s is permitted by %s but does not extend it", m.Name, c.Name)
			}
		}
		for _, s := range c.Supers {
			if s.Class.Sealed && !permits(s.Class, c) {
				p.errorf(c.L, "%s extends sealed %s but is not permitted", c.Name, s.Class.Name)
			}
		}
	}
}

func extends(c, super *types.Class) bool {
	for _, s := range c.Supers {
		if s.Class == super {
			return true
		}
	}
	return false
}

func permits(c, sub *types.Class) bool {
	for _, p := range c.Permits {
		if p == sub {
			return true
		}
	}
	return false
}

func (p *parser) switchDecl() *check.Switch {
	start := p.start()
	p.word("switch")
	sw := &check.Switch{}
	if p.atWord("expr") {
		p.next()
		sw.IsExpr = true
	}
	if !p.atPunct("(") {
		sw.Name = p.ident().text
	}
	p.punct("(")
	sw.Selector = p.typ()
	p.punct(")")
	p.punct("{")
	for !p.atPunct("}") {
		sw.Cases = append(sw.Cases, p.caseClause())
	}
	p.punct("}")
	sw.L = p.span(start)
	return sw
}

func (p *parser) caseClause() *check.Case {
	start := p.start()
	c := &check.Case{}
	switch {
	case p.atWord("default"):
		d := p.next()
		c.Labels = []pattern.Label{&pattern.Default{L: loc.Loc{d.pos + 1, d.end + 1}}}
	case p.atWord("case"):
		p.next()
		c.Labels = p.labels()
	default:
		p.fail(`"case"`, `"default"`, `"}"`)
	}
	if p.atWord("when") {
		p.next()
		g := p.guard()
		var n int
		for _, l := range c.Labels {
			switch l := l.(type) {
			case *pattern.TypePattern:
				l.Guard = g
			case *pattern.ProductPattern:
				l.Guard = g
			case *pattern.AlternativePattern:
				l.Guard = g
			default:
				continue
			}
			n++
		}
		if n == 0 {
			p.errorf(g.L, "guard on a case with no pattern")
		}
	}
	switch {
	case p.atPunct("->"):
		p.next()
		c.Arrow = true
		c.Body = p.arrowBody()
	case p.atPunct(":"):
		p.next()
		c.Body = p.colonBody()
	default:
		p.fail(`"->"`, `":"`, `","`, `"when"`)
	}
	c.L = p.span(start)
	return c
}

func (p *parser) guard() *pattern.Guard {
	t := p.tok()
	l := loc.Loc{t.pos + 1, t.end + 1}
	switch {
	case p.atWord("true") || p.atWord("false"):
		p.next()
		b := t.text == "true"
		return &pattern.Guard{Expr: t.text, Const: &b, L: l}
	case t.kind == tString:
		p.next()
		s, err := strconv.Unquote(t.text)
		if err != nil {
			p.errorf(l, "bad guard: %s", err)
		}
		return &pattern.Guard{Expr: s, L: l}
	default:
		p.fail(`"true"`, `"false"`, "string")
		panic("unreachable")
	}
}

func (p *parser) labels() []pattern.Label {
	var ls []pattern.Label
	for {
		ls = append(ls, p.label())
		if !p.atPunct(",") {
			return ls
		}
		p.next()
	}
}

func (p *parser) label() pattern.Label {
	t := p.tok()
	l := loc.Loc{t.pos + 1, t.end + 1}
	switch {
	case t.kind == tInt:
		p.next()
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			p.errorf(l, "bad integer: %s", err)
		}
		return &pattern.Constant{Value: pattern.IntVal(n), L: l}
	case t.kind == tChar:
		p.next()
		r, ok := unquoteChar(t.text)
		if !ok {
			p.errorf(l, "bad character literal %s", t.text)
		}
		return &pattern.Constant{Value: pattern.CharVal(r), L: l}
	case t.kind == tString:
		p.next()
		s, err := strconv.Unquote(t.text)
		if err != nil {
			p.errorf(l, "bad string literal: %s", err)
		}
		return &pattern.Constant{Value: pattern.TextVal(s), L: l}
	case p.atWord("true") || p.atWord("false"):
		p.next()
		return &pattern.Constant{Value: pattern.BoolVal(t.text == "true"), L: l}
	case p.atWord("null"):
		p.next()
		return &pattern.Null{L: l}
	case p.atWord("default"):
		p.next()
		return &pattern.Default{L: l}
	case t.kind != tIdent:
		p.fail("label")
	}
	if p.peek().kind == tPunct && p.peek().text == "." {
		p.next()
		p.next()
		name := p.ident()
		return &pattern.EnumConstant{
			Name:      name.text,
			Qualifier: t.text,
			Ordinal:   -1,
			L:         p.span(t.pos),
		}
	}
	if p.bareName() {
		p.next()
		return &pattern.EnumConstant{Name: t.text, Ordinal: -1, L: l}
	}
	return p.alternatives()
}

// bareName returns whether the current identifier stands alone as a label.
func (p *parser) bareName() bool {
	if _, ok := prims[p.tok().text]; ok || p.tok().text == "_" {
		return false
	}
	switch n := p.peek(); {
	case n.kind == tPunct:
		return n.text == "," || n.text == "->" || n.text == ":"
	case n.kind == tIdent:
		return n.text == "when"
	}
	return false
}

func (p *parser) alternatives() pattern.Pattern {
	start := p.start()
	first := p.pattern()
	if !p.atPunct("|") {
		return first
	}
	alts := []pattern.Pattern{first}
	for p.atPunct("|") {
		p.next()
		alts = append(alts, p.pattern())
	}
	return &pattern.AlternativePattern{Alts: alts, L: p.span(start)}
}

func (p *parser) pattern() pattern.Pattern {
	start := p.start()
	switch {
	case p.atWord("_"):
		p.next()
		return &pattern.TypePattern{L: p.span(start)}
	case p.atWord("var"):
		p.next()
		return &pattern.TypePattern{Name: p.binding(), L: p.span(start)}
	}
	t := p.typ()
	if !p.atPunct("(") {
		return &pattern.TypePattern{Name: p.binding(), Declared: t, L: p.span(start)}
	}
	p.next()
	prod := &pattern.ProductPattern{Declared: t}
	for !p.atPunct(")") {
		if len(prod.Subs) > 0 {
			p.punct(",")
		}
		prod.Subs = append(prod.Subs, p.alternatives())
	}
	p.punct(")")
	prod.L = p.span(start)
	return prod
}

// binding returns a bound name, or "" for _.
func (p *parser) binding() string {
	if p.atWord("_") {
		p.next()
		return ""
	}
	return p.ident().text
}

func (p *parser) arrowBody() check.Body {
	if !p.atPunct("{") {
		return check.Body{Stmts: []check.Stmt{p.stmt()}}
	}
	p.next()
	var b check.Body
	for !p.atPunct("}") {
		b.Stmts = append(b.Stmts, p.stmt())
	}
	p.next()
	return b
}

func (p *parser) colonBody() check.Body {
	var b check.Body
	for !p.atWord("case") && !p.atWord("default") && !p.atPunct("}") {
		b.Stmts = append(b.Stmts, p.stmt())
	}
	return b
}

var stmtKinds = map[string]check.StmtKind{
	"break":    check.Break,
	"yield":    check.Yield,
	"return":   check.Return,
	"throw":    check.Throw,
	"continue": check.Continue,
}

func (p *parser) stmt() check.Stmt {
	start := p.start()
	t := p.tok()
	var s check.Stmt
	switch k, ok := stmtKinds[t.text]; {
	case t.kind == tString:
		p.next()
		text, err := strconv.Unquote(t.text)
		if err != nil {
			p.errorf(loc.Loc{t.pos + 1, t.end + 1}, "bad statement: %s", err)
		}
		s = check.Stmt{Kind: check.Plain, Text: text}
	case t.kind == tIdent && ok:
		p.next()
		s = check.Stmt{Kind: k}
		if k == check.Yield {
			s.Type = p.yieldType()
		}
	default:
		p.fail("statement")
	}
	p.punct(";")
	s.L = p.span(start)
	return s
}

func (p *parser) yieldType() types.Type {
	if p.atWord("null") {
		p.next()
		return types.Null
	}
	return p.typ()
}

// String returns the names of the classes declared by the file.
func (f *File) String() string {
	var s strings.Builder
	for _, c := range f.Universe.Classes() {
		if c.L == (loc.Loc{}) {
			continue
		}
		if s.Len() > 0 {
			s.WriteString(", ")
		}
		s.WriteString(c.Name)
	}
	return s.String()
}
