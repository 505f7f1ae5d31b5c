package emit

import (
	"testing"

	"github.com/eaburns/swc/types"
)

func TestTextHash(t *testing.T) {
	tests := []struct {
		text string
		want int32
	}{
		{text: "", want: 0},
		{text: "a", want: 97},
		{text: "abc", want: 96354},
		{text: "FB", want: 2236},
		{text: "Ea", want: 2236},
		{text: "hello", want: 99162322},
		{text: "hello, world", want: -640608884},
		{text: "é", want: 233},
		{text: "😀", want: 1772899},
	}
	for _, test := range tests {
		if got := TextHash(test.text); got != test.want {
			t.Errorf("TextHash(%q)=%d, want %d", test.text, got, test.want)
		}
	}
}

func TestProgramString(t *testing.T) {
	u := types.NewUniverse()
	color := &types.Class{Name: "Color", Kind: types.EnumDecl, Constants: []string{"RED", "GREEN"}}
	if err := u.Declare(color); err != nil {
		t.Fatalf("Declare failed: %s", err)
	}
	var p Program
	p.Name = "test"
	top, end := p.NewLabel(), p.NewLabel()
	p.Selector()
	p.NullCheck()
	p.Store("$0")
	p.Place(top)
	p.Load("$0")
	p.Const(0)
	p.Classify(color, []ClassLabel{
		{Kind: NullLabel},
		{Kind: EnumLabel, Enum: color, Name: "GREEN", Ordinal: 1},
		{Kind: TypeLabel, Types: []types.Type{u.StringType(), u.BoxType(types.Prim(types.Int))}},
		{Kind: IntLabel, Int: 5},
		{Kind: TextLabel, Text: "x"},
	})
	p.TableSwitch(-1, []*Label{top, end}, end)
	p.Load("$0")
	p.TextEquals("x")
	p.BranchIfFalse(end)
	p.Body(0, "a; break")
	p.BranchAlways(end)
	p.Place(end)
	p.ThrowStructuredFailure(MatchFailure)

	const want = `test:
	selector
	nullcheck
	store $0
L0:
	load $0
	const 0
	classify enum Color [null, Color.GREEN, String|Integer, 5, "x"]
	table -1 [L0, L1] default L1
	load $0
	texteq "x"
	ifnot L1
	body 0 {a; break}
	goto L1
L1:
	throw MatchFailure
`
	if got := p.String(); got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
	labels := p.Labels()
	if labels[top] != 3 || labels[end] != 13 {
		t.Errorf("Labels()=%v, want L0 at 3 and L1 at 13", labels)
	}
}
