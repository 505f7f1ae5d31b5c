package check

import (
	"fmt"
	"strings"

	"github.com/eaburns/swc/pattern"
	"github.com/eaburns/swc/types"
	"golang.org/x/exp/slices"
)

// A coverage tree records which shapes a set of patterns matches
// at each component position of the values they test.
//
// A position node has one shape node per distinct pattern type at the position,
// ordered narrowest first.
// If some pattern at the position is narrower than the position type,
// there is also one shape node per concrete member of a sealed position type.
// Each shape node matched by some pattern owns the position node that follows it,
// built from just the patterns that match every value of the shape;
// or, if patterns deconstruct the shape,
// a nested root whose positions are the shape's components
// followed by the remaining positions.
// Nodes are never shared.
type rootNode struct {
	T     *types.Ref
	First *positionNode
}

type positionNode struct {
	T      types.Type
	Shapes []*shapeNode
}

type shapeNode struct {
	T types.Type

	// Rows is the number of pattern rows reaching the shape.
	Rows int

	Next   *positionNode
	Nested *rootNode
}

// A row is the sequence of patterns at the remaining positions
// of one matching path. A nil pattern matches anything.
type row []pattern.Pattern

// head returns the first pattern of the row,
// or nil if it matches anything.
// A pattern that failed to resolve matches anything,
// so that resolution errors do not cascade.
func (rw row) head() pattern.Pattern {
	if rw[0] == nil || pattern.HasInvalid(rw[0]) {
		return nil
	}
	return rw[0]
}

// buildPosition returns the coverage tree for rows over positions ts.
// It returns nil if there are no positions.
func buildPosition(ts []types.Type, rows []row) *positionNode {
	if len(ts) == 0 {
		return nil
	}
	rows = splitAlternatives(rows)
	pos := &positionNode{T: ts[0]}
	for _, st := range shapeTypes(ts[0], rows) {
		pos.Shapes = append(pos.Shapes, buildShape(st, ts, rows))
	}
	return pos
}

func splitAlternatives(rows []row) []row {
	var split []row
	for _, rw := range rows {
		alt, ok := rw.head().(*pattern.AlternativePattern)
		if !ok {
			split = append(split, rw)
			continue
		}
		var alts []row
		for _, p := range alt.Alts {
			alts = append(alts, append(row{p}, rw[1:]...))
		}
		split = append(split, splitAlternatives(alts)...)
	}
	return split
}

func buildShape(st types.Type, ts []types.Type, rows []row) *shapeNode {
	shape := &shapeNode{T: st}
	var matched []row
	var rec *types.Ref
	for _, rw := range rows {
		switch p := rw.head().(type) {
		case nil:
			matched = append(matched, rw)
		case *pattern.TypePattern:
			if types.IsSubtype(st, types.Erasure(p.T)) {
				matched = append(matched, rw)
			}
		case *pattern.ProductPattern:
			if types.ClassOf(st) == p.Record().Class {
				matched = append(matched, rw)
				if rec == nil {
					rec = p.Record()
				}
			}
		}
	}
	shape.Rows = len(matched)
	if len(matched) == 0 {
		return shape
	}
	if rec == nil {
		var rest []row
		for _, rw := range matched {
			rest = append(rest, rw[1:])
		}
		shape.Next = buildPosition(ts[1:], rest)
		return shape
	}
	comps := types.ComponentTypes(rec)
	var expanded []row
	for _, rw := range matched {
		var x row
		if p, ok := rw.head().(*pattern.ProductPattern); ok {
			x = append(x, p.Subs...)
		} else {
			x = make(row, len(comps))
		}
		expanded = append(expanded, append(x, rw[1:]...))
	}
	nested := append(append([]types.Type{}, comps...), ts[1:]...)
	shape.Nested = &rootNode{T: rec, First: buildPosition(nested, expanded)}
	return shape
}

// shapeTypes returns the shapes of position type t:
// its erasure, the types of the patterns at the head of rows,
// and, if some of those are narrower than t,
// the concrete members of t's sealed closure,
// ordered narrowest first.
func shapeTypes(t types.Type, rows []row) []types.Type {
	var ts []types.Type
	add := func(s types.Type) {
		s = types.Erasure(s)
		for _, t := range ts {
			if types.Identical(s, t) {
				return
			}
		}
		ts = append(ts, s)
	}
	add(t)
	var narrower bool
	for _, rw := range rows {
		if p := rw.head(); p != nil {
			add(p.Type())
			narrower = narrower || !types.IsSubtype(types.Erasure(t), types.Erasure(p.Type()))
		}
	}
	if c := types.ClassOf(types.Erasure(t)); narrower && c != nil && c.Sealed {
		for _, m := range closure(c) {
			if !m.Closed() {
				add(&types.Ref{Class: m})
			}
		}
	}
	subs := make([]int, len(ts))
	for i := range ts {
		for j := range ts {
			if i != j && types.IsSubtype(ts[j], ts[i]) {
				subs[i]++
			}
		}
	}
	order := make([]int, len(ts))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(i, j int) bool {
		if subs[i] != subs[j] {
			return subs[i] < subs[j]
		}
		return ts[i].String() < ts[j].String()
	})
	sorted := make([]types.Type, len(ts))
	for i, o := range order {
		sorted[i] = ts[o]
	}
	return sorted
}

// closure returns c and the transitive closure of its permitted subtypes,
// in breadth-first order.
func closure(c *types.Class) []*types.Class {
	seen := map[*types.Class]bool{c: true}
	members := []*types.Class{c}
	for i := 0; i < len(members); i++ {
		for _, p := range members[i].Permits {
			if !seen[p] {
				seen[p] = true
				members = append(members, p)
			}
		}
	}
	return members
}

// coverage decides whether coverage trees cover their types.
type coverage struct {
	// enums are the ordinals of each enumeration
	// labeled at the selector position.
	enums map[*types.Class]map[int]bool
}

func (cv *coverage) positionCovered(pos *positionNode) bool {
	if pos == nil {
		return true
	}
	var complete []types.Type
	for _, s := range pos.Shapes {
		if cv.shapeComplete(s) {
			complete = append(complete, s.T)
		}
	}
	return cv.typeCovered(pos.T, complete)
}

// shapeComplete returns whether the positions following s are covered.
// Enumeration constants label only the selector position,
// so the following positions are covered by patterns alone.
func (cv *coverage) shapeComplete(s *shapeNode) bool {
	var inner coverage
	switch {
	case s.Rows == 0:
		return false
	case s.Nested != nil:
		return inner.positionCovered(s.Nested.First)
	default:
		return inner.positionCovered(s.Next)
	}
}

// typeCovered returns whether the listed types cover every value of t.
//
// If t is a subtype of a listed type, it is covered.
// Otherwise, if t is sealed, its permitted closure is covered by fixed point:
// a member is covered if it is a subtype of a listed type
// or an enumeration with all constants labeled;
// a closed member is covered if all of its permitted subtypes are covered;
// and a leaf member is covered if all of its sealed supertypes
// in the closure are covered.
func (cv *coverage) typeCovered(t types.Type, listed []types.Type) bool {
	et := types.Erasure(t)
	for _, l := range listed {
		if types.IsSubtype(et, l) {
			return true
		}
	}
	c := types.ClassOf(et)
	switch {
	case c == nil:
		return false
	case !c.Sealed:
		return cv.enumCovered(c)
	}
	members := closure(c)
	covered := make(map[*types.Class]bool, len(members))
	for _, m := range members {
		if cv.enumCovered(m) {
			covered[m] = true
			continue
		}
		mt := &types.Ref{Class: m}
		for _, l := range listed {
			if types.IsSubtype(mt, l) {
				covered[m] = true
				break
			}
		}
	}
	for changed := true; changed; {
		changed = false
		for _, m := range members {
			if covered[m] {
				continue
			}
			switch {
			case m.Closed() && allCovered(m.Permits, covered):
				covered[m] = true
				changed = true
			case m.Leaf():
				sups := sealedSupers(m, members)
				if len(sups) > 0 && allCovered(sups, covered) {
					covered[m] = true
					changed = true
				}
			}
		}
	}
	return covered[c]
}

func (cv *coverage) enumCovered(c *types.Class) bool {
	if c.Kind != types.EnumDecl {
		return false
	}
	ords := cv.enums[c]
	for i := range c.Constants {
		if !ords[i] {
			return false
		}
	}
	return true
}

func allCovered(cs []*types.Class, covered map[*types.Class]bool) bool {
	for _, c := range cs {
		if !covered[c] {
			return false
		}
	}
	return true
}

// sealedSupers returns the direct sealed supertypes of m among members.
func sealedSupers(m *types.Class, members []*types.Class) []*types.Class {
	var sups []*types.Class
	for _, s := range m.Supers {
		if s.Class.Sealed && slices.Contains(members, s.Class) {
			sups = append(sups, s.Class)
		}
	}
	return sups
}

func (pos *positionNode) String() string {
	var s strings.Builder
	pos.buildString(0, &s)
	return s.String()
}

func (pos *positionNode) buildString(depth int, s *strings.Builder) {
	if pos == nil {
		return
	}
	for _, shape := range pos.Shapes {
		if s.Len() > 0 {
			s.WriteRune('\n')
		}
		s.WriteString(strings.Repeat("\t", depth))
		fmt.Fprintf(s, "%s: %s (%d)", pos.T, shape.T, shape.Rows)
		if shape.Nested != nil {
			s.WriteString(" {")
			shape.Nested.First.buildString(depth+1, s)
			s.WriteRune('\n')
			s.WriteString(strings.Repeat("\t", depth))
			s.WriteRune('}')
			continue
		}
		shape.Next.buildString(depth+1, s)
	}
}
