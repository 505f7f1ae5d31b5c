// Package loc tracks source locations of switch constructs and their labels.
package loc

import "fmt"

// Loc is a half-open byte span [Loc[0], Loc[1]) into a set of files,
// offset by 1 so that the zero value indicates no location.
type Loc [2]int

// Loc returns l; it lets a Loc be used as a Locer.
func (l Loc) Loc() Loc { return l }

// Join returns the smallest Loc spanning both a and b.
// If either is the zero Loc, the other is returned.
func Join(a, b Loc) Loc {
	switch {
	case a == Loc{}:
		return b
	case b == Loc{}:
		return a
	}
	if b[0] < a[0] {
		a[0] = b[0]
	}
	if b[1] > a[1] {
		a[1] = b[1]
	}
	return a
}

// A Locer is anything with a source location.
type Locer interface {
	Loc() Loc
}

// A Location is a human-readable file position.
// The zero value indicates no location.
type Location struct {
	Path string
	Line [2]int
	Col  [2]int
}

func (l Location) String() string {
	switch {
	case l == Location{}:
		return ""
	case l.Line[0] == l.Line[1] && l.Col[0] == l.Col[1]:
		return fmt.Sprintf("%s:%d.%d", l.Path, l.Line[0], l.Col[0])
	case l.Line[0] == l.Line[1]:
		return fmt.Sprintf("%s:%d.%d-%d", l.Path, l.Line[0], l.Col[0], l.Col[1])
	default:
		return fmt.Sprintf("%s:%d.%d-%d.%d", l.Path, l.Line[0], l.Col[0], l.Line[1], l.Col[1])
	}
}

// File describes a source file by its path, length, and newline offsets.
type File interface {
	Path() string
	Len() int
	NewLines() []int
}

// Files is an ordered set of files sharing one Loc space.
// The Loc space of each file begins where the previous one ends.
type Files []File

// Len returns the total length of all files.
func (fs Files) Len() int {
	var n int
	for _, f := range fs {
		n += f.Len()
	}
	return n
}

// Location returns the Location of l.
// The zero Loc yields the zero Location.
func (fs Files) Location(l Loc) Location {
	switch {
	case l == Loc{}:
		return Location{}
	case len(fs) == 0:
		panic("no files")
	case l[0] < 1 || l[1]-1 > fs.Len():
		panic(fmt.Sprintf("Loc %v out of range [1, %d]", l, fs.Len()+1))
	case l[0] > l[1]:
		panic(fmt.Sprintf("bad Loc %v", l))
	}
	p0, l0, c0 := fs.position(l[0])
	p1, l1, c1 := fs.position(l[1])
	if p0 != p1 {
		panic("multi-file Loc")
	}
	return Location{Path: p0, Line: [2]int{l0, l1}, Col: [2]int{c0, c1}}
}

// position returns the path, 1-based line, and 1-based column of offset q.
func (fs Files) position(q int) (string, int, int) {
	q--
	var f File
	var base int
	for i := range fs {
		f = fs[i]
		n := f.Len()
		if q < base+n || q == base+n && i == len(fs)-1 {
			break
		}
		base += n
	}
	line, lineStart := 1, base-1
	for _, nl := range f.NewLines() {
		if base+nl >= q {
			break
		}
		lineStart = base + nl
		line++
	}
	return f.Path(), line, q - lineStart
}
