package dispatch

import (
	"fmt"
	"strings"
)

// State is a state of the dispatch state machine.
//
// Pattern dispatch moves from Start to Classify,
// then to an Entry whose TypeGuard and AccessorChain states
// either reach a Body or restart at Classify.
// A Body ends in Break or Fallthrough to the next Body.
// End and Fault are terminal.
// Integer and text dispatch move from Start directly to a Body.
type State int

const (
	Start State = iota
	Classify
	Entry
	TypeGuard
	AccessorChain
	Body
	Break
	Fallthrough
	End
	Fault
)

func (s State) String() string {
	switch s {
	case Start:
		return "Start"
	case Classify:
		return "Classify"
	case Entry:
		return "Entry"
	case TypeGuard:
		return "TypeGuard"
	case AccessorChain:
		return "AccessorChain"
	case Body:
		return "Body"
	case Break:
		return "Break"
	case Fallthrough:
		return "Fallthrough"
	case End:
		return "End"
	case Fault:
		return "Fault"
	default:
		panic(fmt.Sprintf("impossible State %d", int(s)))
	}
}

// state traces entering a state.
func (g *generator) state(s State, f string, vs ...interface{}) {
	if g.trace == nil {
		return
	}
	line := strings.Repeat("\t", g.depth) + s.String()
	if detail := fmt.Sprintf(f, vs...); detail != "" {
		line += " " + detail
	}
	fmt.Fprintln(g.trace, line)
}
