// Package dispatch generates the dispatch code of resolved switches.
//
// A switch with the INT strategy branches on an integer key
// through a dense table or a sorted chain of comparisons.
// A switch with the TEXT strategy branches on the hash of its selector
// and then tests text equality within each hash bucket.
// A switch with the PATTERN strategy classifies its selector at runtime;
// when a matched entry's nested patterns or guard fail,
// classification restarts at the next entry.
package dispatch

import (
	"fmt"
	"io"
	"strings"

	"github.com/eaburns/swc/check"
	"github.com/eaburns/swc/emit"
	"github.com/eaburns/swc/pattern"
	"github.com/eaburns/swc/types"
	"golang.org/x/exp/slices"
)

// Target describes the platform that generated code runs on.
type Target struct {
	// Level is the language level of the target.
	// Targets before level 21 have no structured match failure.
	Level int

	// MaxTableSpan is the largest key span of a dense table.
	// Keys spanning more than MaxTableSpan use compare chains.
	MaxTableSpan int64
}

// DefaultTarget is the Target used if none is given.
var DefaultTarget = Target{Level: 21, MaxTableSpan: 1 << 12}

// An Option configures code generation.
type Option func(*generator)

// WithTarget sets the target of generated code.
func WithTarget(t Target) Option {
	return func(g *generator) {
		g.target = t
		if g.target.MaxTableSpan <= 0 {
			g.target.MaxTableSpan = DefaultTarget.MaxTableSpan
		}
	}
}

// Trace writes the dispatch states of generated code to w.
func Trace(w io.Writer) Option {
	return func(g *generator) { g.trace = w }
}

type generator struct {
	sw     *check.Switch
	e      emit.Emitter
	target Target
	trace  io.Writer
	depth  int

	// temps is the number of temporaries allocated by this generator.
	temps int

	end     *emit.Label
	bodies  []*emit.Label
	fail    *emit.Label
	handler *emit.Label
	drops   []drop
}

// A drop pops a duplicated value and branches to a failure label.
type drop struct {
	label, fail *emit.Label
}

// Generate emits the dispatch code of a resolved switch to e.
// It returns an error if the switch is invalid or has unresolved patterns.
func Generate(sw *check.Switch, e emit.Emitter, opts ...Option) error {
	if sw.Invalid {
		return fmt.Errorf("%s: cannot generate code for an invalid switch", sw)
	}
	for _, ent := range sw.Entries {
		if p, ok := ent.Label.(pattern.Pattern); ok && (p.Type() == nil || pattern.HasInvalid(p)) {
			return fmt.Errorf("%s: cannot generate code for unresolved pattern %s", sw, p)
		}
	}
	g := &generator{sw: sw, e: e, target: DefaultTarget}
	for _, opt := range opts {
		opt(g)
	}
	g.end = e.NewLabel()
	for range sw.Cases {
		g.bodies = append(g.bodies, e.NewLabel())
	}
	g.state(Start, "%s %s", sw, sw.Strategy)
	switch sw.Strategy {
	case check.IntStrategy:
		g.intSwitch()
	case check.TextStrategy:
		g.textSwitch()
	case check.PatternStrategy:
		g.patternSwitch()
	default:
		panic(fmt.Sprintf("impossible Strategy %d", int(sw.Strategy)))
	}
	return nil
}

func (g *generator) temp() emit.Temp {
	g.temps++
	return emit.Temp(fmt.Sprintf("$%d", g.temps-1))
}

// defaultTarget returns the label reached when no entry matches.
func (g *generator) defaultTarget() *emit.Label {
	sw := g.sw
	switch {
	case sw.Default != nil:
		return g.bodies[sw.Default.Index]
	case sw.Strategy == check.PatternStrategy || sw.Kind == check.Enum && sw.IsExpr:
		g.fail = g.e.NewLabel()
		return g.fail
	default:
		return g.end
	}
}

func (g *generator) failureKind() emit.FailureKind {
	if g.target.Level >= 21 {
		return emit.MatchFailure
	}
	return emit.IncompatibleClassChange
}

func (g *generator) intSwitch() {
	sw, e := g.sw, g.e
	key := g.temp()
	e.Selector()
	switch {
	case sw.Kind == check.Enum:
		e.NullCheck()
		e.OrdinalLookup(types.ClassOf(types.Erasure(sw.Selector)))
	case types.AsBasic(sw.Selector) == nil:
		e.NullCheck()
	}
	e.Store(key)
	dflt := g.defaultTarget()

	var keys []caseKey
	for _, ent := range sw.Entries {
		switch l := ent.Label.(type) {
		case *pattern.Constant:
			if l.Value.Kind != pattern.TextValue {
				keys = append(keys, caseKey{key: l.Value.Key(), n: ent.Case.Index})
			}
		case *pattern.EnumConstant:
			if l.Ordinal >= 0 {
				keys = append(keys, caseKey{key: int64(l.Ordinal), n: ent.Case.Index})
			}
		}
	}
	keys = sortKeys(keys)
	g.keySwitch(key, keys, func(k caseKey) *emit.Label { return g.bodies[k.n] }, dflt)
	g.failure()
	g.emitBodies()
	e.Place(g.end)
	g.state(End, "")
}

func (g *generator) textSwitch() {
	sw, e := g.sw, g.e
	sel, hash := g.temp(), g.temp()
	e.Selector()
	e.NullCheck()
	e.Store(sel)
	e.Load(sel)
	e.Hash()
	e.Store(hash)
	dflt := g.defaultTarget()

	type text struct {
		text string
		n    int
	}
	var buckets [][]text
	var keys []caseKey
	index := make(map[int32]int)
	seen := make(map[string]bool)
	for _, ent := range sw.Entries {
		c, ok := ent.Label.(*pattern.Constant)
		if !ok || c.Value.Kind != pattern.TextValue || seen[c.Value.Text] {
			continue
		}
		seen[c.Value.Text] = true
		h := emit.TextHash(c.Value.Text)
		b, ok := index[h]
		if !ok {
			b = len(buckets)
			index[h] = b
			buckets = append(buckets, nil)
			keys = append(keys, caseKey{key: int64(h), n: b})
		}
		buckets[b] = append(buckets[b], text{text: c.Value.Text, n: ent.Case.Index})
	}
	keys = sortKeys(keys)
	labels := make([]*emit.Label, len(buckets))
	for i := range labels {
		labels[i] = e.NewLabel()
	}
	g.keySwitch(hash, keys, func(k caseKey) *emit.Label { return labels[k.n] }, dflt)
	for _, k := range keys {
		e.Place(labels[k.n])
		for _, t := range buckets[k.n] {
			next := e.NewLabel()
			e.Load(sel)
			e.TextEquals(t.text)
			e.BranchIfFalse(next)
			e.BranchAlways(g.bodies[t.n])
			e.Place(next)
		}
		e.BranchAlways(dflt)
	}
	g.failure()
	g.emitBodies()
	e.Place(g.end)
	g.state(End, "")
}

// A caseKey is an integer key and the index of its target.
type caseKey struct {
	key int64
	n   int
}

// sortKeys sorts keys by key, keeping only the first of equal keys.
func sortKeys(keys []caseKey) []caseKey {
	slices.SortStableFunc(keys, func(a, b caseKey) bool { return a.key < b.key })
	return slices.CompactFunc(keys, func(a, b caseKey) bool { return a.key == b.key })
}

// keySwitch branches on the integer in t to the target of the matching key,
// or to dflt if no key matches.
// keys must be sorted and unique.
func (g *generator) keySwitch(t emit.Temp, keys []caseKey, target func(caseKey) *emit.Label, dflt *emit.Label) {
	e := g.e
	if n := len(keys); n > 0 {
		lo, hi := keys[0].key, keys[n-1].key
		span := hi - lo
		if float64(n)*2.5 > float64(span) && span <= g.target.MaxTableSpan {
			targets := make([]*emit.Label, span+1)
			for i := range targets {
				targets[i] = dflt
			}
			for _, k := range keys {
				targets[k.key-lo] = target(k)
			}
			e.Load(t)
			e.TableSwitch(lo, targets, dflt)
			return
		}
	}
	for _, k := range keys {
		next := e.NewLabel()
		e.Load(t)
		e.Const(k.key)
		e.Eq()
		e.BranchIfFalse(next)
		e.BranchAlways(target(k))
		e.Place(next)
	}
	e.BranchAlways(dflt)
}

func (g *generator) patternSwitch() {
	sw, e := g.sw, g.e
	var spilled []emit.Temp
	for i := 0; i < e.Pending(); i++ {
		spilled = append(spilled, g.temp())
	}
	if len(spilled) > 0 {
		e.SpillStack(spilled)
	}
	sel, restart := g.temp(), g.temp()
	e.Selector()
	if !sw.HasNull() {
		e.NullCheck()
	}
	e.Store(sel)
	e.Const(0)
	e.Store(restart)

	top := e.NewLabel()
	e.Place(top)
	var enum *types.Class
	if sw.Kind == check.Enum {
		enum = types.ClassOf(types.Erasure(sw.Selector))
	}
	labels := make([]emit.ClassLabel, len(sw.Entries))
	for i, ent := range sw.Entries {
		labels[i] = classLabel(ent.Label)
	}
	g.state(Classify, "%d entries", len(labels))
	e.Load(sel)
	e.Load(restart)
	e.Classify(enum, labels)

	dflt := g.defaultTarget()
	null := dflt
	entries := make([]*emit.Label, len(sw.Entries))
	for i, ent := range sw.Entries {
		entries[i] = e.NewLabel()
		if _, ok := ent.Label.(*pattern.Null); ok && null == dflt {
			null = entries[i]
		}
	}
	targets := append([]*emit.Label{null}, entries...)
	targets = append(targets, dflt)
	e.TableSwitch(-1, targets, dflt)

	for i, ent := range sw.Entries {
		e.Place(entries[i])
		g.depth++
		g.state(Entry, "%d: %s", i, ent.Label)
		p, ok := ent.Label.(pattern.Pattern)
		if !ok {
			e.BranchAlways(g.bodies[ent.Case.Index])
			g.depth--
			continue
		}
		next := e.NewLabel()
		_, alt := p.(*pattern.AlternativePattern)
		g.match(p, sel, sw.Selector, !alt, next)
		if guard := p.GuardOf(); guard != nil && !pattern.Unguarded(p) {
			if guard.Const != nil {
				e.BranchAlways(next)
			} else {
				e.Guard(guard.Expr)
				e.BranchIfFalse(next)
				e.BranchAlways(g.bodies[ent.Case.Index])
			}
		} else {
			e.BranchAlways(g.bodies[ent.Case.Index])
		}
		g.flushDrops()
		e.Place(next)
		e.Const(int64(i + 1))
		e.Store(restart)
		e.BranchAlways(top)
		g.depth--
	}
	if g.handler != nil {
		e.Place(g.handler)
		g.state(Fault, "%s", emit.AccessorFailure)
		e.ThrowStructuredFailure(emit.AccessorFailure)
	}
	g.failure()
	g.emitBodies()
	e.Place(g.end)
	if len(spilled) > 0 {
		e.RestoreStack(spilled)
	}
	g.state(End, "")
}

// match emits code that branches to fail unless the value in v,
// of static type t, matches p.
// If checked, the value is known to be an instance of p's type.
// Names bound by p are stored in temporaries of the same name.
func (g *generator) match(p pattern.Pattern, v emit.Temp, t types.Type, checked bool, fail *emit.Label) {
	e := g.e
	switch p := p.(type) {
	case *pattern.TypePattern:
		guard := !checked && !pattern.Covers(p, t)
		if guard {
			g.state(TypeGuard, "%s", p.T)
		}
		switch {
		case guard && p.Name != "":
			l := e.NewLabel()
			g.drops = append(g.drops, drop{label: l, fail: fail})
			e.Load(v)
			e.Dup()
			e.TypeGuard(p.T)
			e.BranchIfFalse(l)
			e.Store(emit.Temp(p.Name))
		case guard:
			e.Load(v)
			e.TypeGuard(p.T)
			e.BranchIfFalse(fail)
		case p.Name != "":
			e.Load(v)
			e.Store(emit.Temp(p.Name))
		}
	case *pattern.ProductPattern:
		rec := p.Record()
		if !checked {
			g.state(TypeGuard, "%s", rec)
			e.Load(v)
			e.TypeGuard(types.Erasure(rec))
			e.BranchIfFalse(fail)
		}
		cts := types.ComponentTypes(rec)
		for i, sub := range p.Subs {
			c := rec.Class.Components[i]
			g.state(AccessorChain, "%s.%s()", rec.Class.Name, c.Accessor)
			if g.handler == nil {
				g.handler = e.NewLabel()
			}
			ct := g.temp()
			e.Protect(g.handler)
			e.Load(v)
			e.CallAccessor(rec.Class, c)
			e.EndProtect()
			e.Store(ct)
			g.match(sub, ct, cts[i], false, fail)
		}
	case *pattern.AlternativePattern:
		ok := e.NewLabel()
		for i, alt := range p.Alts {
			next := fail
			if i < len(p.Alts)-1 {
				next = e.NewLabel()
			}
			g.match(alt, v, t, false, next)
			e.BranchAlways(ok)
			if next != fail {
				e.Place(next)
			}
		}
		e.Place(ok)
	default:
		panic("impossible")
	}
}

// flushDrops emits the blocks that discard a duplicated value
// before branching to the next entry.
func (g *generator) flushDrops() {
	for _, d := range g.drops {
		g.e.Place(d.label)
		g.e.Pop()
		g.e.BranchAlways(d.fail)
	}
	g.drops = g.drops[:0]
}

// classLabel returns the classification label of an entry.
func classLabel(l pattern.Label) emit.ClassLabel {
	switch l := l.(type) {
	case *pattern.Null:
		return emit.ClassLabel{Kind: emit.NullLabel}
	case *pattern.Constant:
		if l.Value.Kind == pattern.TextValue {
			return emit.ClassLabel{Kind: emit.TextLabel, Text: l.Value.Text}
		}
		return emit.ClassLabel{Kind: emit.IntLabel, Int: l.Value.Key()}
	case *pattern.EnumConstant:
		if l.Ordinal < 0 {
			return emit.ClassLabel{Kind: emit.NullLabel}
		}
		return emit.ClassLabel{Kind: emit.EnumLabel, Enum: l.Class, Name: l.Name, Ordinal: l.Ordinal}
	case pattern.Pattern:
		return emit.ClassLabel{Kind: emit.TypeLabel, Types: topTypes(l)}
	default:
		panic("impossible")
	}
}

func topTypes(p pattern.Pattern) []types.Type {
	if alt, ok := p.(*pattern.AlternativePattern); ok {
		var ts []types.Type
		for _, a := range alt.Alts {
			ts = append(ts, topTypes(a)...)
		}
		return ts
	}
	return []types.Type{types.Erasure(p.Type())}
}

func (g *generator) failure() {
	if g.fail == nil {
		return
	}
	g.e.Place(g.fail)
	g.state(Fault, "%s", g.failureKind())
	g.e.ThrowStructuredFailure(g.failureKind())
}

func (g *generator) emitBodies() {
	sw := g.sw
	for i, c := range sw.Cases {
		g.e.Place(g.bodies[i])
		g.state(Body, "case %d", i)
		var stmts []string
		for _, s := range c.Body.Stmts {
			stmts = append(stmts, s.String())
		}
		g.e.Body(i, strings.Join(stmts, "; "))
		if c.Body.CompletesNormally() && !sw.Arrow && i < len(sw.Cases)-1 {
			g.state(Fallthrough, "case %d", i+1)
			continue
		}
		g.state(Break, "")
		g.e.BranchAlways(g.end)
	}
}
