package emit

import (
	"strings"

	"github.com/eaburns/swc/types"
)

// A Program is an Emitter that records its instructions.
type Program struct {
	Name   string
	Instrs []Instr

	// Stack is the number of values pending on the operand stack
	// when the program begins.
	Stack int

	labels int
}

func (p *Program) String() string { return p.buildString(new(strings.Builder)).String() }

// Labels returns the instruction index of each placed label.
func (p *Program) Labels() map[*Label]int {
	ls := make(map[*Label]int)
	for i, instr := range p.Instrs {
		if pl, ok := instr.(*Place); ok {
			ls[pl.Label] = i
		}
	}
	return ls
}

func (p *Program) add(instr Instr) { p.Instrs = append(p.Instrs, instr) }

func (p *Program) NewLabel() *Label {
	p.labels++
	return &Label{N: p.labels - 1}
}

func (p *Program) Place(l *Label)         { p.add(&Place{Label: l}) }
func (p *Program) BranchIfFalse(l *Label) { p.add(&BranchIfFalse{Dst: l}) }
func (p *Program) BranchAlways(l *Label)  { p.add(&Branch{Dst: l}) }
func (p *Program) Pending() int           { return p.Stack }

func (p *Program) SpillStack(ts []Temp) {
	p.add(&Spill{Temps: append([]Temp{}, ts...)})
}

func (p *Program) RestoreStack(ts []Temp) {
	p.add(&Restore{Temps: append([]Temp{}, ts...)})
}

func (p *Program) Selector()           { p.add(&Selector{}) }
func (p *Program) Load(t Temp)         { p.add(&Load{Temp: t}) }
func (p *Program) Store(t Temp)        { p.add(&Store{Temp: t}) }
func (p *Program) Const(n int64)       { p.add(&Const{Value: n}) }
func (p *Program) Dup()                { p.add(&Dup{}) }
func (p *Program) Pop()                { p.add(&Pop{}) }
func (p *Program) Eq()                 { p.add(&Eq{}) }
func (p *Program) TextEquals(s string) { p.add(&TextEquals{Text: s}) }
func (p *Program) Hash()               { p.add(&Hash{}) }
func (p *Program) NullCheck()          { p.add(&NullCheck{}) }

func (p *Program) OrdinalLookup(c *types.Class) { p.add(&OrdinalLookup{Enum: c}) }

func (p *Program) Classify(enum *types.Class, labels []ClassLabel) {
	p.add(&Classify{Enum: enum, Labels: append([]ClassLabel{}, labels...)})
}

func (p *Program) TableSwitch(lo int64, targets []*Label, dflt *Label) {
	p.add(&TableSwitch{Lo: lo, Targets: append([]*Label{}, targets...), Default: dflt})
}

func (p *Program) TypeGuard(t types.Type) { p.add(&TypeGuard{Type: t}) }

func (p *Program) CallAccessor(r *types.Class, c types.Component) {
	p.add(&CallAccessor{Record: r, Component: c})
}

func (p *Program) Protect(handler *Label)               { p.add(&Protect{Handler: handler}) }
func (p *Program) EndProtect()                          { p.add(&EndProtect{}) }
func (p *Program) ThrowStructuredFailure(k FailureKind) { p.add(&Throw{Kind: k}) }
func (p *Program) Guard(expr string)                    { p.add(&Guard{Expr: expr}) }
func (p *Program) Body(c int, text string)              { p.add(&Body{Case: c, Text: text}) }

// An Instr is a recorded instruction.
type Instr interface {
	String() string
	buildString(*strings.Builder) *strings.Builder
	isInstr()
}

func (*Place) isInstr()         {}
func (*BranchIfFalse) isInstr() {}
func (*Branch) isInstr()        {}
func (*Spill) isInstr()         {}
func (*Restore) isInstr()       {}
func (*Selector) isInstr()      {}
func (*Load) isInstr()          {}
func (*Store) isInstr()         {}
func (*Const) isInstr()         {}
func (*Dup) isInstr()           {}
func (*Pop) isInstr()           {}
func (*Eq) isInstr()            {}
func (*TextEquals) isInstr()    {}
func (*Hash) isInstr()          {}
func (*OrdinalLookup) isInstr() {}
func (*NullCheck) isInstr()     {}
func (*Classify) isInstr()      {}
func (*TableSwitch) isInstr()   {}
func (*TypeGuard) isInstr()     {}
func (*CallAccessor) isInstr()  {}
func (*Protect) isInstr()       {}
func (*EndProtect) isInstr()    {}
func (*Throw) isInstr()         {}
func (*Guard) isInstr()         {}
func (*Body) isInstr()          {}

type Place struct{ Label *Label }

type BranchIfFalse struct{ Dst *Label }

type Branch struct{ Dst *Label }

type Spill struct{ Temps []Temp }

type Restore struct{ Temps []Temp }

type Selector struct{}

type Load struct{ Temp Temp }

type Store struct{ Temp Temp }

type Const struct{ Value int64 }

type Dup struct{}

type Pop struct{}

type Eq struct{}

type TextEquals struct{ Text string }

type Hash struct{}

type OrdinalLookup struct{ Enum *types.Class }

type NullCheck struct{}

type Classify struct {
	// Enum is the enumeration of an enum-aware classification, or nil.
	Enum   *types.Class
	Labels []ClassLabel
}

type TableSwitch struct {
	Lo      int64
	Targets []*Label
	Default *Label
}

type TypeGuard struct{ Type types.Type }

type CallAccessor struct {
	Record    *types.Class
	Component types.Component
}

type Protect struct{ Handler *Label }

type EndProtect struct{}

type Throw struct{ Kind FailureKind }

type Guard struct{ Expr string }

type Body struct {
	// Case is the index of the case in its switch.
	Case int
	Text string
}
