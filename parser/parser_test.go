package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/eaburns/swc/check"
	"github.com/eaburns/swc/pattern"
	"github.com/eaburns/swc/types"
	"github.com/google/go-cmp/cmp"
)

func TestParseDecls(t *testing.T) {
	const src = `
		sealed interface Shape permits Circle, Square
		record Circle(double r) implements Shape
		non-sealed class Square implements Shape
		final class Sub extends Square
		record Box<T extends Number>(T value, String name)
		enum Color { RED, GREEN, BLUE }
		abstract class Base
	`
	f, err := Parse("test.sw", src)
	if err != nil {
		t.Fatalf("Parse failed: %s", err)
	}
	u := f.Universe
	shape := u.Lookup("Shape")
	if shape == nil || !shape.Sealed || !shape.IsInterface() || !shape.Closed() {
		t.Fatalf("Shape=%+v, want a sealed interface", shape)
	}
	var permits []string
	for _, p := range shape.Permits {
		permits = append(permits, p.Name)
	}
	if diff := cmp.Diff([]string{"Circle", "Square"}, permits); diff != "" {
		t.Errorf("Shape permits: %s", diff)
	}
	if c := u.Lookup("Circle"); c.Kind != types.RecordDecl || !c.Leaf() ||
		len(c.Components) != 1 || c.Components[0].Type.String() != "double" {
		t.Errorf("Circle=%+v", c)
	}
	if c := u.Lookup("Sub"); !c.Final || c.Supers[0].Class != u.Lookup("Square") {
		t.Errorf("Sub=%+v", c)
	}
	box := u.Lookup("Box")
	if len(box.Parms) != 1 || box.Parms[0].Bound.String() != "Number" {
		t.Errorf("Box parms=%v", box.Parms)
	}
	var comps []string
	for _, c := range box.Components {
		comps = append(comps, c.Type.String()+" "+c.Name)
	}
	if diff := cmp.Diff([]string{"T value", "String name"}, comps); diff != "" {
		t.Errorf("Box components: %s", diff)
	}
	if c := u.Lookup("Color"); c.Kind != types.EnumDecl || c.Ordinal("BLUE") != 2 {
		t.Errorf("Color=%+v", c)
	}
	if c := u.Lookup("Base"); !c.Abstract || c.Supers[0].Class != u.Object {
		t.Errorf("Base=%+v", c)
	}
	if got := f.String(); got != "Shape, Circle, Square, Sub, Box, Color, Base" {
		t.Errorf("String()=%q", got)
	}
}

func TestParseLabels(t *testing.T) {
	tests := []struct {
		label string
		want  []string
	}{
		{label: "1", want: []string{"*pattern.Constant 1"}},
		{label: "-5, 7", want: []string{"*pattern.Constant -5", "*pattern.Constant 7"}},
		{label: "'x'", want: []string{"*pattern.Constant 'x'"}},
		{label: `"abc"`, want: []string{`*pattern.Constant "abc"`}},
		{label: "true", want: []string{"*pattern.Constant true"}},
		{label: "null, default", want: []string{"*pattern.Null null", "*pattern.Default default"}},
		{label: "RED", want: []string{"*pattern.EnumConstant RED"}},
		{label: "Color.RED", want: []string{"*pattern.EnumConstant Color.RED"}},
		{label: "_", want: []string{"*pattern.TypePattern _"}},
		{label: "var x", want: []string{"*pattern.TypePattern var x"}},
		{label: "var _", want: []string{"*pattern.TypePattern _"}},
		{label: "Integer i", want: []string{"*pattern.TypePattern Integer i"}},
		{label: "int _", want: []string{"*pattern.TypePattern int _"}},
		{label: "Box<String> b", want: []string{"*pattern.TypePattern Box<String> b"}},
		{label: "Box<?> b", want: []string{"*pattern.TypePattern Box<?> b"}},
		{label: "Box(var v)", want: []string{"*pattern.ProductPattern Box(var v)"}},
		{label: "Circle()", want: []string{"*pattern.ProductPattern Circle()"}},
		{
			label: "Pair(Box(String s), _)",
			want:  []string{"*pattern.ProductPattern Pair(Box(String s), _)"},
		},
		{
			label: "Circle _ | Square _",
			want:  []string{"*pattern.AlternativePattern Circle _ | Square _"},
		},
		{
			label: `Circle c when "c.r() > 0"`,
			want:  []string{"*pattern.TypePattern Circle c when c.r() > 0"},
		},
		{
			label: "Circle c, Square s when false",
			want: []string{
				"*pattern.TypePattern Circle c when false",
				"*pattern.TypePattern Square s when false",
			},
		},
	}
	const decls = `
		sealed interface Shape permits Circle, Square
		record Circle(double r) implements Shape
		final class Square implements Shape
		record Box<T>(T value)
		record Pair<A, B>(A first, B second)
		enum Color { RED, GREEN }
	`
	for _, test := range tests {
		test := test
		t.Run(test.label, func(t *testing.T) {
			t.Parallel()
			src := decls + "switch (Object) { case " + test.label + " -> break; }"
			f, err := Parse("test.sw", src)
			if err != nil {
				t.Fatalf("Parse failed: %s", err)
			}
			var got []string
			for _, l := range f.Switches[0].Cases[0].Labels {
				got = append(got, labelString(l))
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func labelString(l pattern.Label) string { return fmt.Sprintf("%T %s", l, l) }

func TestParseSwitch(t *testing.T) {
	const src = `
		enum Color { RED, GREEN }
		switch expr pick (Color) {
		case RED:
			"x++";
			yield int;
		default:
			throw;
		}
		switch (int) {
		case 1 -> { "a"; break; }
		case 2 -> return;
		}
	`
	f, err := Parse("test.sw", src)
	if err != nil {
		t.Fatalf("Parse failed: %s", err)
	}
	if len(f.Switches) != 2 {
		t.Fatalf("got %d switches, want 2", len(f.Switches))
	}
	sw := f.Switches[0]
	if sw.Name != "pick" || !sw.IsExpr || sw.Selector.String() != "Color" {
		t.Errorf("switch=%s expr=%v selector=%s", sw.Name, sw.IsExpr, sw.Selector)
	}
	got := bodies(sw)
	want := []string{"x++; yield int", "throw"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("colon bodies: %s", diff)
	}
	sw = f.Switches[1]
	if sw.IsExpr || sw.Name != "" || !sw.Cases[0].Arrow {
		t.Errorf("switch=%q expr=%v arrow=%v", sw.Name, sw.IsExpr, sw.Cases[0].Arrow)
	}
	got = bodies(sw)
	want = []string{"a; break", "return"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("arrow bodies: %s", diff)
	}
	if l := f.Files().Location(sw.L).String(); !strings.HasPrefix(l, "test.sw:10.3-") {
		t.Errorf("switch location=%s", l)
	}
}

func bodies(sw *check.Switch) []string {
	var bs []string
	for _, c := range sw.Cases {
		var ss []string
		for _, s := range c.Body.Stmts {
			ss = append(ss, s.String())
		}
		bs = append(bs, strings.Join(ss, "; "))
	}
	return bs
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "undefined class",
			src:  "switch (Foo) {}",
			want: "test.sw:1.9-12: undefined: Foo",
		},
		{
			name: "redeclared",
			src:  "class A\nclass A",
			want: "test.sw:2.7-8: A redeclared",
		},
		{
			name: "predeclared",
			src:  "class String",
			want: "String redeclared",
		},
		{
			name: "permits without sealed",
			src:  "interface I permits A\nfinal class A implements I",
			want: "I has permits but is not sealed",
		},
		{
			name: "not permitted",
			src:  "sealed interface I permits A\nfinal class A implements I\nfinal class B implements I",
			want: "B extends sealed I but is not permitted",
		},
		{
			name: "permitted but not extending",
			src:  "sealed interface I permits A\nfinal class A",
			want: "A is permitted by I but does not extend it",
		},
		{
			name: "type argument count",
			src:  "record Box<T>(T v)\nswitch (Box<String, String>) {}",
			want: "Box has 2 type arguments, want 1",
		},
		{
			name: "guard without pattern",
			src:  `switch (int) { case 1 when "x" -> break; }`,
			want: "guard on a case with no pattern",
		},
		{
			name: "missing arrow",
			src:  "switch (int) { case 1 break; }",
			want: `"->"`,
		},
		{
			name: "missing semicolon",
			src:  "switch (int) { case 1 -> break }",
			want: `";"`,
		},
		{
			name: "bad token",
			src:  "switch (int) { case 1 -> # }",
			want: "token",
		},
		{
			name: "bad declaration",
			src:  "struct S",
			want: `"class"`,
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse("test.sw", test.src)
			if err == nil {
				t.Fatalf("Parse succeeded, want error containing %q", test.want)
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("got error %q, want it to contain %q", err, test.want)
			}
		})
	}
}

func TestParseErrorTree(t *testing.T) {
	_, err := Parse("test.sw", "switch (int) {")
	perr, ok := err.(parseError)
	if !ok {
		t.Fatalf("got error %v (%T), want a parseError", err, err)
	}
	var wants []string
	for _, k := range perr.Tree().Kids {
		wants = append(wants, k.Want)
	}
	if diff := cmp.Diff([]string{`"case"`, `"default"`, `"}"`}, wants); diff != "" {
		t.Error(diff)
	}
}
