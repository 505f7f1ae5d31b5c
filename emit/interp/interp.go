// Package interp interprets recorded dispatch programs.
package interp

import (
	"fmt"
	"io"

	"github.com/eaburns/swc/emit"
	"github.com/eaburns/swc/types"
)

// maxSteps bounds the instructions executed by one Run.
const maxSteps = 1 << 20

type Interp struct {
	Universe *types.Universe

	// Guard evaluates a guard expression in the environment
	// of bound names and temporaries.
	// If Guard is nil, every guard is false.
	Guard func(expr string, env map[emit.Temp]Val) bool

	// Trace, if non-nil, receives a line for each executed instruction.
	Trace io.Writer
}

// New returns an Interp for values of classes in u.
func New(u *types.Universe) *Interp {
	return &Interp{Universe: u}
}

// Result is the outcome of running a program.
type Result struct {
	// Bodies are the indices of the case bodies executed, in order.
	Bodies []int

	// Fault is the fault that ended the program, or nil.
	Fault *Fault

	// Env is the final value of each temporary.
	Env map[emit.Temp]Val

	// Stack is the operand stack at the end of the program.
	Stack []Val
}

// A Fault is a runtime failure raised by a program.
type Fault struct {
	Kind emit.FailureKind
	// Cause is the value or accessor that caused the fault, if any.
	Cause string
}

func (f *Fault) Error() string {
	if f.Cause == "" {
		return f.Kind.String()
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Cause)
}

type machine struct {
	*Interp
	prog     *emit.Program
	labels   map[*emit.Label]int
	sel      Val
	pc       int
	stack    []Val
	handlers []*emit.Label
	res      *Result
}

// Run runs a program with the given selector value.
// The pending values are on the operand stack when the program begins.
//
// Run panics if the program is malformed.
func (interp *Interp) Run(p *emit.Program, sel Val, pending ...Val) *Result {
	if len(pending) != p.Stack {
		panic(fmt.Sprintf("%s: got %d pending values, expected %d", p.Name, len(pending), p.Stack))
	}
	m := &machine{
		Interp: interp,
		prog:   p,
		labels: p.Labels(),
		sel:    sel,
		stack:  append([]Val{}, pending...),
		res:    &Result{Env: make(map[emit.Temp]Val)},
	}
	for n := 0; m.pc < len(p.Instrs) && m.res.Fault == nil; n++ {
		if n == maxSteps {
			panic(fmt.Sprintf("%s: exceeded %d steps", p.Name, maxSteps))
		}
		m.step()
	}
	m.res.Stack = m.stack
	return m.res
}

func (m *machine) step() {
	instr := m.prog.Instrs[m.pc]
	if m.Trace != nil {
		fmt.Fprintf(m.Trace, "%03d %-30s %v\n", m.pc, instr, m.stack)
	}
	m.pc++

	switch instr := instr.(type) {
	case *emit.Place:
	case *emit.BranchIfFalse:
		if !m.popBool() {
			m.jump(instr.Dst)
		}
	case *emit.Branch:
		m.jump(instr.Dst)
	case *emit.Spill:
		for i := len(instr.Temps) - 1; i >= 0; i-- {
			m.res.Env[instr.Temps[i]] = m.pop()
		}
	case *emit.Restore:
		for _, t := range instr.Temps {
			m.push(m.load(t))
		}
	case *emit.Selector:
		m.push(m.sel)
	case *emit.Load:
		m.push(m.load(instr.Temp))
	case *emit.Store:
		m.res.Env[instr.Temp] = m.pop()
	case *emit.Const:
		m.push(Prim{Kind: types.Long, N: instr.Value})
	case *emit.Dup:
		v := m.pop()
		m.push(v)
		m.push(v)
	case *emit.Pop:
		m.pop()
	case *emit.Eq:
		y, x := m.popInt(), m.popInt()
		m.pushBool(x == y)
	case *emit.TextEquals:
		m.pushBool(m.popText() == instr.Text)
	case *emit.Hash:
		m.push(Prim{Kind: types.Int, N: int64(emit.TextHash(m.popText()))})
	case *emit.OrdinalLookup:
		switch v := m.pop().(type) {
		case Null:
			m.fault(emit.NullPointer, "ordinal of null")
		case *Obj:
			if v.Class != instr.Enum {
				panic(fmt.Sprintf("ordinal %s of %s", instr.Enum.Name, v))
			}
			m.push(Prim{Kind: types.Int, N: int64(v.Ordinal)})
		default:
			panic(fmt.Sprintf("ordinal of %T", v))
		}
	case *emit.NullCheck:
		if _, ok := m.peek().(Null); ok {
			m.fault(emit.NullPointer, "selector")
		}
	case *emit.Classify:
		restart := m.popInt()
		v := m.pop()
		m.push(Prim{Kind: types.Int, N: int64(m.classify(v, int(restart), instr.Labels))})
	case *emit.TableSwitch:
		k := m.popInt() - instr.Lo
		if k < 0 || k >= int64(len(instr.Targets)) {
			m.jump(instr.Default)
		} else {
			m.jump(instr.Targets[k])
		}
	case *emit.TypeGuard:
		m.pushBool(m.instanceOf(m.pop(), instr.Type))
	case *emit.CallAccessor:
		m.callAccessor(instr.Record, instr.Component)
	case *emit.Protect:
		m.handlers = append(m.handlers, instr.Handler)
	case *emit.EndProtect:
		if len(m.handlers) == 0 {
			panic("endprotect outside of a protected region")
		}
		m.handlers = m.handlers[:len(m.handlers)-1]
	case *emit.Throw:
		m.fault(instr.Kind, "")
	case *emit.Guard:
		m.pushBool(m.Guard != nil && m.Guard(instr.Expr, m.res.Env))
	case *emit.Body:
		m.res.Bodies = append(m.res.Bodies, instr.Case)
	default:
		panic(fmt.Sprintf("impossible Instr type: %T", instr))
	}
}

// classify returns the index of the first label at or after restart
// that matches v, -1 if v is null, or len(labels) if none match.
func (m *machine) classify(v Val, restart int, labels []emit.ClassLabel) int {
	if _, ok := v.(Null); ok {
		return -1
	}
	for i := restart; i < len(labels); i++ {
		if m.matches(v, labels[i]) {
			return i
		}
	}
	return len(labels)
}

func (m *machine) matches(v Val, l emit.ClassLabel) bool {
	switch l.Kind {
	case emit.NullLabel:
		return false
	case emit.TypeLabel:
		for _, t := range l.Types {
			if m.instanceOf(v, t) {
				return true
			}
		}
		return false
	case emit.EnumLabel:
		o, ok := v.(*Obj)
		return ok && o.Class == l.Enum && o.Ordinal == l.Ordinal
	case emit.IntLabel:
		p, ok := v.(Prim)
		return ok && p.Kind != types.Float && p.Kind != types.Double && p.N == l.Int
	case emit.TextLabel:
		t, ok := v.(Text)
		return ok && string(t) == l.Text
	default:
		panic(fmt.Sprintf("impossible ClassLabelKind %d", int(l.Kind)))
	}
}

func (m *machine) instanceOf(v Val, t types.Type) bool {
	var vt types.Type
	switch v := v.(type) {
	case Null:
		return false
	case Prim:
		if b := types.AsBasic(t); b != nil {
			return b.Kind == v.Kind
		}
		vt = m.Universe.BoxType(types.Prim(v.Kind))
	case Text:
		vt = m.Universe.StringType()
	case *Obj:
		vt = &types.Ref{Class: v.Class}
	default:
		panic(fmt.Sprintf("impossible Val type: %T", v))
	}
	if types.AsBasic(t) != nil {
		return false
	}
	return types.IsSubtype(vt, types.Erasure(t))
}

func (m *machine) callAccessor(r *types.Class, c types.Component) {
	v := m.pop()
	o, ok := v.(*Obj)
	if !ok {
		if _, null := v.(Null); null {
			m.fault(emit.NullPointer, c.Accessor+"() of null")
			return
		}
		panic(fmt.Sprintf("%s.%s() of %s", r.Name, c.Accessor, v))
	}
	if o.Throws == c.Accessor {
		m.throw(o.Class.Name + "." + c.Accessor + "()")
		return
	}
	for i, comp := range o.Class.Components {
		if comp.Accessor == c.Accessor {
			m.push(o.Fields[i])
			return
		}
	}
	panic(fmt.Sprintf("%s has no accessor %s", o, c.Accessor))
}

// throw raises an exception, branching to the innermost handler
// with an empty operand stack.
func (m *machine) throw(cause string) {
	n := len(m.handlers)
	if n == 0 {
		m.fault(emit.Exception, cause)
		return
	}
	h := m.handlers[n-1]
	m.handlers = m.handlers[:n-1]
	m.stack = m.stack[:0]
	m.jump(h)
}

func (m *machine) fault(k emit.FailureKind, cause string) {
	m.res.Fault = &Fault{Kind: k, Cause: cause}
}

func (m *machine) jump(l *emit.Label) {
	pc, ok := m.labels[l]
	if !ok {
		panic(fmt.Sprintf("%s: label %s is not placed", m.prog.Name, l))
	}
	m.pc = pc
}

func (m *machine) load(t emit.Temp) Val {
	v, ok := m.res.Env[t]
	if !ok {
		panic(fmt.Sprintf("%s: load of unset temporary %s", m.prog.Name, t))
	}
	return v
}

func (m *machine) push(v Val) { m.stack = append(m.stack, v) }

func (m *machine) peek() Val {
	if len(m.stack) == 0 {
		panic(fmt.Sprintf("%s: stack underflow at %d", m.prog.Name, m.pc-1))
	}
	return m.stack[len(m.stack)-1]
}

func (m *machine) pop() Val {
	v := m.peek()
	m.stack = m.stack[:len(m.stack)-1]
	return v
}

func (m *machine) pushBool(b bool) {
	if b {
		m.push(Prim{Kind: types.Boolean, N: 1})
	} else {
		m.push(Prim{Kind: types.Boolean})
	}
}

func (m *machine) popBool() bool {
	p, ok := m.pop().(Prim)
	if !ok || p.Kind != types.Boolean {
		panic(fmt.Sprintf("%s: want a boolean at %d", m.prog.Name, m.pc-1))
	}
	return p.N != 0
}

func (m *machine) popInt() int64 {
	p, ok := m.pop().(Prim)
	if !ok || p.Kind == types.Float || p.Kind == types.Double {
		panic(fmt.Sprintf("%s: want an integer at %d", m.prog.Name, m.pc-1))
	}
	return p.N
}

func (m *machine) popText() string {
	switch v := m.pop().(type) {
	case Text:
		return string(v)
	default:
		panic(fmt.Sprintf("%s: want text at %d, got %s", m.prog.Name, m.pc-1, v))
	}
}
