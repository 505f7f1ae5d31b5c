package emit

import (
	"fmt"
	"strings"
)

func (r *Place) String() string         { return r.buildString(new(strings.Builder)).String() }
func (r *BranchIfFalse) String() string { return r.buildString(new(strings.Builder)).String() }
func (r *Branch) String() string        { return r.buildString(new(strings.Builder)).String() }
func (r *Spill) String() string         { return r.buildString(new(strings.Builder)).String() }
func (r *Restore) String() string       { return r.buildString(new(strings.Builder)).String() }
func (r *Selector) String() string      { return r.buildString(new(strings.Builder)).String() }
func (r *Load) String() string          { return r.buildString(new(strings.Builder)).String() }
func (r *Store) String() string         { return r.buildString(new(strings.Builder)).String() }
func (r *Const) String() string         { return r.buildString(new(strings.Builder)).String() }
func (r *Dup) String() string           { return r.buildString(new(strings.Builder)).String() }
func (r *Pop) String() string           { return r.buildString(new(strings.Builder)).String() }
func (r *Eq) String() string            { return r.buildString(new(strings.Builder)).String() }
func (r *TextEquals) String() string    { return r.buildString(new(strings.Builder)).String() }
func (r *Hash) String() string          { return r.buildString(new(strings.Builder)).String() }
func (r *OrdinalLookup) String() string { return r.buildString(new(strings.Builder)).String() }
func (r *NullCheck) String() string     { return r.buildString(new(strings.Builder)).String() }
func (r *Classify) String() string      { return r.buildString(new(strings.Builder)).String() }
func (r *TableSwitch) String() string   { return r.buildString(new(strings.Builder)).String() }
func (r *TypeGuard) String() string     { return r.buildString(new(strings.Builder)).String() }
func (r *CallAccessor) String() string  { return r.buildString(new(strings.Builder)).String() }
func (r *Protect) String() string       { return r.buildString(new(strings.Builder)).String() }
func (r *EndProtect) String() string    { return r.buildString(new(strings.Builder)).String() }
func (r *Throw) String() string         { return r.buildString(new(strings.Builder)).String() }
func (r *Guard) String() string         { return r.buildString(new(strings.Builder)).String() }
func (r *Body) String() string          { return r.buildString(new(strings.Builder)).String() }

func (p *Program) buildString(s *strings.Builder) *strings.Builder {
	if p.Name != "" {
		fmt.Fprintf(s, "%s:\n", p.Name)
	}
	for _, instr := range p.Instrs {
		if _, ok := instr.(*Place); !ok {
			s.WriteRune('\t')
		}
		instr.buildString(s)
		s.WriteRune('\n')
	}
	return s
}

func (r *Place) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "%s:", r.Label)
	return s
}

func (r *BranchIfFalse) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "ifnot %s", r.Dst)
	return s
}

func (r *Branch) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "goto %s", r.Dst)
	return s
}

func (r *Spill) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("spill")
	buildTemps(r.Temps, s)
	return s
}

func (r *Restore) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("restore")
	buildTemps(r.Temps, s)
	return s
}

func buildTemps(ts []Temp, s *strings.Builder) {
	for _, t := range ts {
		s.WriteRune(' ')
		s.WriteString(string(t))
	}
}

func (*Selector) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("selector")
	return s
}

func (r *Load) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "load %s", r.Temp)
	return s
}

func (r *Store) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "store %s", r.Temp)
	return s
}

func (r *Const) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "const %d", r.Value)
	return s
}

func (*Dup) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("dup")
	return s
}

func (*Pop) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("pop")
	return s
}

func (*Eq) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("eq")
	return s
}

func (r *TextEquals) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "texteq %q", r.Text)
	return s
}

func (*Hash) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("hash")
	return s
}

func (r *OrdinalLookup) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "ordinal %s", r.Enum.Name)
	return s
}

func (*NullCheck) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("nullcheck")
	return s
}

func (r *Classify) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("classify")
	if r.Enum != nil {
		fmt.Fprintf(s, " enum %s", r.Enum.Name)
	}
	s.WriteString(" [")
	for i, l := range r.Labels {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(l.String())
	}
	s.WriteRune(']')
	return s
}

func (r *TableSwitch) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "table %d [", r.Lo)
	for i, l := range r.Targets {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(l.String())
	}
	fmt.Fprintf(s, "] default %s", r.Default)
	return s
}

func (r *TypeGuard) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "instanceof %s", r.Type)
	return s
}

func (r *CallAccessor) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "call %s.%s()", r.Record.Name, r.Component.Accessor)
	return s
}

func (r *Protect) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "protect %s", r.Handler)
	return s
}

func (*EndProtect) buildString(s *strings.Builder) *strings.Builder {
	s.WriteString("endprotect")
	return s
}

func (r *Throw) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "throw %s", r.Kind)
	return s
}

func (r *Guard) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "guard %q", r.Expr)
	return s
}

func (r *Body) buildString(s *strings.Builder) *strings.Builder {
	fmt.Fprintf(s, "body %d", r.Case)
	if r.Text != "" {
		fmt.Fprintf(s, " {%s}", r.Text)
	}
	return s
}
