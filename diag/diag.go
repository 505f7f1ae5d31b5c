// Package diag has the diagnostics reported by switch analysis.
package diag

import (
	"fmt"
	"strings"

	"github.com/eaburns/swc/loc"
)

// A Diagnostic is a located message of a given Kind.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Msg      string
	L        loc.Loc
	Notes    []Note
}

// A Note is supplementary information attached to a Diagnostic.
type Note struct {
	Msg string
	L   loc.Loc
}

func (d *Diagnostic) Error() string { return d.Msg }
func (d *Diagnostic) Loc() loc.Loc  { return d.L }

// Note appends a note to the Diagnostic and returns the Diagnostic.
// If locer is non-nil, the note refers to its location.
func (d *Diagnostic) Note(locer loc.Locer, f string, vs ...interface{}) *Diagnostic {
	n := Note{Msg: fmt.Sprintf(f, vs...)}
	if locer != nil {
		n.L = locer.Loc()
	}
	d.Notes = append(d.Notes, n)
	return d
}

// Format returns the Diagnostic as a multi-line string,
// with locations resolved against files.
// Notes are indented by a tab beneath the message.
func (d *Diagnostic) Format(files loc.Files) string {
	var s strings.Builder
	if l := location(files, d.L); l != "" {
		s.WriteString(l)
		s.WriteString(": ")
	}
	s.WriteString(d.Severity.String())
	s.WriteString(": ")
	s.WriteString(d.Msg)
	for _, n := range d.Notes {
		s.WriteString("\n\t")
		s.WriteString(n.Msg)
		if l := location(files, n.L); l != "" {
			s.WriteString(" (")
			s.WriteString(l)
			s.WriteRune(')')
		}
	}
	return s.String()
}

func location(files loc.Files, l loc.Loc) string {
	if l == (loc.Loc{}) || len(files) == 0 {
		return ""
	}
	return files.Location(l).String()
}

// List collects diagnostics, applying a Config.
type List struct {
	Config *Config
	Diags  []*Diagnostic
}

// Report adds a diagnostic of kind k at the location of locer
// and returns it so that notes can be attached.
// If k is configured as Ignore, the Diagnostic is returned
// but not recorded.
func (l *List) Report(k Kind, locer loc.Locer, f string, vs ...interface{}) *Diagnostic {
	d := &Diagnostic{
		Kind:     k,
		Severity: l.Config.Severity(k),
		Msg:      fmt.Sprintf(f, vs...),
	}
	if locer != nil {
		d.L = locer.Loc()
	}
	if d.Severity != Ignore {
		l.Diags = append(l.Diags, d)
	}
	return d
}

// Errors returns the number of recorded diagnostics with Error severity.
func (l *List) Errors() int {
	var n int
	for _, d := range l.Diags {
		if d.Severity == Error {
			n++
		}
	}
	return n
}

// Has returns whether a diagnostic of kind k was recorded.
func (l *List) Has(k Kind) bool {
	for _, d := range l.Diags {
		if d.Kind == k {
			return true
		}
	}
	return false
}

// Kinds returns the kinds of the recorded diagnostics, in report order.
func (l *List) Kinds() []Kind {
	var ks []Kind
	for _, d := range l.Diags {
		ks = append(ks, d.Kind)
	}
	return ks
}
