package check

import (
	"fmt"
	"io"
	"strings"

	"github.com/eaburns/swc/loc"
)

const traceIndent = "\t"

var bullets = []string{"•", "◦", "▸", "▹"}

// tracer writes an indented, bulleted outline of resolution decisions.
// A nil *tracer traces nothing.
type tracer struct {
	w      io.Writer
	files  loc.Files
	indent string
	bullet int
}

type traceItem struct {
	tr     *tracer
	indent string
	bullet int
}

// item starts a new nested trace item.
// The caller must call done when the item's work is finished.
func (tr *tracer) item(f string, vs ...interface{}) *traceItem {
	if tr == nil {
		return nil
	}
	it := &traceItem{tr: tr, indent: tr.indent, bullet: tr.bullet}
	tr.indent += traceIndent
	tr.bullet++
	it.trace(f, vs...)
	return it
}

func (it *traceItem) done() {
	if it == nil {
		return
	}
	it.tr.indent = strings.TrimSuffix(it.tr.indent, traceIndent)
	it.tr.bullet--
}

// trace writes a line in the item.
// loc.Loc arguments are printed as locations.
func (it *traceItem) trace(f string, vs ...interface{}) {
	if it == nil {
		return
	}
	for i := range vs {
		l, ok := vs[i].(loc.Loc)
		if !ok || len(it.tr.files) == 0 {
			continue
		}
		vs[i] = it.tr.files.Location(l)
	}
	s := fmt.Sprintf(f, vs...)
	s = strings.TrimSuffix(s, "\n")
	s = strings.ReplaceAll(s, "\n", "\n"+it.indent+"  ")
	if it.bullet >= 0 {
		s = bullets[it.bullet%len(bullets)] + " " + s
		it.bullet = -1
	} else {
		s = "  " + s
	}
	fmt.Fprintln(it.tr.w, it.indent+s)
}
