package check

import (
	"strings"
	"testing"

	"github.com/eaburns/swc/pattern"
	"github.com/eaburns/swc/types"
)

type coverUniverse struct {
	*types.Universe
	shape, circle, square   *types.Class
	top, mid, leaf, sibling *types.Class
}

// newCoverUniverse declares:
//
//	sealed interface Shape permits Circle, Square
//	record Circle(double r) implements Shape
//	final class Square implements Shape
//	sealed interface Top permits Mid, Sibling
//	sealed abstract class Mid implements Top permits Leaf
//	final class Leaf extends Mid
//	final class Sibling implements Top
func newCoverUniverse(t *testing.T) coverUniverse {
	u := coverUniverse{Universe: types.NewUniverse()}
	u.shape = &types.Class{Name: "Shape", Kind: types.InterfaceDecl, Sealed: true}
	u.circle = &types.Class{
		Name:       "Circle",
		Kind:       types.RecordDecl,
		Supers:     []*types.Ref{{Class: u.shape}},
		Components: []types.Component{{Name: "r", Type: types.Prim(types.Double), Accessor: "r"}},
	}
	u.square = &types.Class{Name: "Square", Final: true, Supers: []*types.Ref{{Class: u.shape}}}
	u.shape.Permits = []*types.Class{u.circle, u.square}

	u.top = &types.Class{Name: "Top", Kind: types.InterfaceDecl, Sealed: true}
	u.mid = &types.Class{Name: "Mid", Abstract: true, Sealed: true, Supers: []*types.Ref{{Class: u.top}}}
	u.leaf = &types.Class{Name: "Leaf", Final: true, Supers: []*types.Ref{{Class: u.mid}}}
	u.sibling = &types.Class{Name: "Sibling", Final: true, Supers: []*types.Ref{{Class: u.top}}}
	u.top.Permits = []*types.Class{u.mid, u.sibling}
	u.mid.Permits = []*types.Class{u.leaf}

	for _, c := range []*types.Class{u.shape, u.circle, u.square, u.top, u.mid, u.leaf, u.sibling} {
		if err := u.Declare(c); err != nil {
			t.Fatalf("Declare(%s) failed: %s", c.Name, err)
		}
	}
	return u
}

func typePattern(name string, c *types.Class) *pattern.TypePattern {
	r := &types.Ref{Class: c}
	return &pattern.TypePattern{Name: name, Declared: r, T: r}
}

func TestCoverageTree(t *testing.T) {
	u := newCoverUniverse(t)
	double := types.Prim(types.Double)
	circle := &types.Ref{Class: u.circle}
	rows := []row{
		{&pattern.ProductPattern{
			Declared: circle,
			Subs:     []pattern.Pattern{&pattern.TypePattern{Name: "r", Declared: double, T: double}},
			T:        circle,
		}},
		{typePattern("s", u.square)},
	}
	root := buildPosition([]types.Type{&types.Ref{Class: u.shape}}, rows)
	const want = "Shape: Circle (1) {\n" +
		"\tdouble: double (1)\n" +
		"}\n" +
		"Shape: Square (1)\n" +
		"Shape: Shape (0)"
	if got := root.String(); got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
	cv := &coverage{}
	if !cv.positionCovered(root) {
		t.Errorf("Circle(double r), Square s do not cover Shape")
	}
	root = buildPosition([]types.Type{&types.Ref{Class: u.shape}}, rows[:1])
	if cv.positionCovered(root) {
		t.Errorf("Circle(double r) covers Shape")
	}
}

func TestCoverageTreeRemainingPositions(t *testing.T) {
	u := newCoverUniverse(t)
	shape, top := &types.Ref{Class: u.shape}, &types.Ref{Class: u.top}
	rows := []row{
		{typePattern("c", u.circle), typePattern("t", u.top)},
		{typePattern("s", u.square), typePattern("l", u.leaf)},
	}
	root := buildPosition([]types.Type{shape, top}, rows)
	const want = "Shape: Circle (1)\n" +
		"\tTop: Top (1)\n" +
		"Shape: Square (1)\n" +
		"\tTop: Leaf (1)\n" +
		"\tTop: Sibling (0)\n" +
		"\tTop: Top (0)\n" +
		"Shape: Shape (0)"
	if got := root.String(); got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
	cv := &coverage{}
	if cv.positionCovered(root) {
		t.Errorf("covered, want not covered: Square is missing Sibling")
	}
	rows = append(rows, row{typePattern("s", u.square), typePattern("b", u.sibling)})
	root = buildPosition([]types.Type{shape, top}, rows)
	if !cv.positionCovered(root) {
		t.Errorf("not covered, want covered")
	}
}

func TestTypeCovered(t *testing.T) {
	u := newCoverUniverse(t)
	ref := func(c *types.Class) types.Type { return &types.Ref{Class: c} }
	tests := []struct {
		name   string
		t      types.Type
		listed []types.Type
		want   bool
	}{
		{name: "listed", t: ref(u.square), listed: []types.Type{ref(u.square)}, want: true},
		{name: "supertype listed", t: ref(u.square), listed: []types.Type{u.ObjectType()}, want: true},
		{name: "nothing listed", t: ref(u.top), want: false},
		{name: "all leaves", t: ref(u.top), listed: []types.Type{ref(u.leaf), ref(u.sibling)}, want: true},
		{name: "closed member", t: ref(u.top), listed: []types.Type{ref(u.mid), ref(u.sibling)}, want: true},
		{name: "missing leaf", t: ref(u.top), listed: []types.Type{ref(u.leaf)}, want: false},
		{name: "unsealed", t: u.ObjectType(), listed: []types.Type{ref(u.top)}, want: false},
		{name: "primitive", t: types.Prim(types.Int), listed: []types.Type{types.Prim(types.Int)}, want: true},
	}
	for _, test := range tests {
		cv := &coverage{}
		if got := cv.typeCovered(test.t, test.listed); got != test.want {
			t.Errorf("%s: typeCovered(%s, %v)=%v, want %v", test.name, test.t, test.listed, got, test.want)
		}
	}
}

func TestCoverageTreeWideRecord(t *testing.T) {
	u := newCoverUniverse(t)
	const width = 24
	var comps []types.Type
	wild := make(row, width)
	for i := 0; i < width; i++ {
		comps = append(comps, &types.Ref{Class: u.top})
	}
	root := buildPosition(comps, []row{wild})
	if got := strings.Count(root.String(), "\n") + 1; got != width {
		t.Errorf("got %d shapes for %d wildcard positions, want %d:\n%s", got, width, width, root)
	}
	cv := &coverage{}
	if !cv.positionCovered(root) {
		t.Errorf("wildcards do not cover every position")
	}

	// A narrower pattern at one position splits only that position.
	narrow := make(row, width)
	narrow[0] = typePattern("l", u.leaf)
	root = buildPosition(comps, []row{narrow})
	if got := strings.Count(root.String(), "\n") + 1; got != width+2 {
		t.Errorf("got %d shapes, want %d:\n%s", got, width+2, root)
	}
	if cv.positionCovered(root) {
		t.Errorf("Leaf at the first position covers Top")
	}
}

func TestNestedEnumPositions(t *testing.T) {
	u := newCoverUniverse(t)
	node := &types.Class{Name: "Node", Kind: types.InterfaceDecl, Sealed: true}
	bit := &types.Class{
		Name:      "Bit",
		Kind:      types.EnumDecl,
		Constants: []string{"ZERO", "ONE"},
		Supers:    []*types.Ref{{Class: node}},
	}
	wrap := &types.Class{Name: "Wrap", Kind: types.RecordDecl, Supers: []*types.Ref{{Class: node}}}
	wrap.Components = []types.Component{{Name: "n", Type: &types.Ref{Class: node}, Accessor: "n"}}
	node.Permits = []*types.Class{bit, wrap}
	for _, c := range []*types.Class{node, bit, wrap} {
		if err := u.Declare(c); err != nil {
			t.Fatalf("Declare(%s) failed: %s", c.Name, err)
		}
	}
	wrapRef := &types.Ref{Class: wrap}
	rows := []row{{&pattern.ProductPattern{
		Declared: wrapRef,
		Subs:     []pattern.Pattern{typePattern("w", wrap)},
		T:        wrapRef,
	}}}
	root := buildPosition([]types.Type{&types.Ref{Class: node}}, rows)
	cv := &coverage{enums: map[*types.Class]map[int]bool{bit: {0: true, 1: true}}}
	if cv.positionCovered(root) {
		t.Errorf("constants labeled at the selector cover Wrap(Bit)")
	}
	rows = append(rows, row{&pattern.ProductPattern{
		Declared: wrapRef,
		Subs:     []pattern.Pattern{typePattern("b", bit)},
		T:        wrapRef,
	}})
	root = buildPosition([]types.Type{&types.Ref{Class: node}}, rows)
	if !cv.positionCovered(root) {
		t.Errorf("Bit constants, Wrap(Wrap w), Wrap(Bit b) do not cover Node")
	}
}
