// Package space is the finite homotopy model every other package reasons
// about. A Space is a finite set of labelled points partitioned into
// connected components; each component records the orders of its homotopy
// groups π₁…π_d. Two points are identified exactly when they share a
// component.
//
// Spaces are immutable once built. All constructions return fresh spaces.
package space

import (
	"fmt"
	"strings"

	"trunckernel/internal/grade"
)

// Component is a connected component: its homotopy profile lists the orders
// of π₁, π₂, ... with trailing trivial groups trimmed.
type Component struct {
	Homotopy []int
}

// Space is a finite model of a type.
type Space struct {
	name   string
	points []string
	index  map[string]int
	comp   []int
	comps  []Component
}

// Builder assembles a Space.
type Builder struct {
	name   string
	points []string
	comp   []int
	comps  []Component
	seen   map[string]bool
	err    error
}

// NewBuilder starts a space with the given display name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name, seen: make(map[string]bool)}
}

// Component adds a component with the given homotopy group orders and
// returns its id.
func (b *Builder) Component(homotopy ...int) int {
	for i, order := range homotopy {
		if order < 1 && b.err == nil {
			b.err = fmt.Errorf("%w: %s: π%d has order %d", ErrMalformed, b.name, i+1, order)
		}
	}
	b.comps = append(b.comps, Component{Homotopy: trimProfile(homotopy)})
	return len(b.comps) - 1
}

// Point adds a labelled point to component c.
func (b *Builder) Point(label string, c int) *Builder {
	switch {
	case b.err != nil:
	case label == "":
		b.err = fmt.Errorf("%w: %s: empty point label", ErrMalformed, b.name)
	case b.seen[label]:
		b.err = fmt.Errorf("%w: %s: duplicate point %q", ErrMalformed, b.name, label)
	case c < 0 || c >= len(b.comps):
		b.err = fmt.Errorf("%w: %s: point %q in unknown component %d", ErrMalformed, b.name, label, c)
	default:
		b.seen[label] = true
		b.points = append(b.points, label)
		b.comp = append(b.comp, c)
	}
	return b
}

// Build validates and freezes the space. Every component must be inhabited.
func (b *Builder) Build() (*Space, error) {
	if b.err != nil {
		return nil, b.err
	}
	inhabited := make([]bool, len(b.comps))
	for _, c := range b.comp {
		inhabited[c] = true
	}
	for c, ok := range inhabited {
		if !ok {
			return nil, fmt.Errorf("%w: %s: component %d has no points", ErrMalformed, b.name, c)
		}
	}

	s := &Space{
		name:   b.name,
		points: append([]string(nil), b.points...),
		index:  make(map[string]int, len(b.points)),
		comp:   append([]int(nil), b.comp...),
		comps:  make([]Component, len(b.comps)),
	}
	for i, p := range s.points {
		s.index[p] = i
	}
	for i, c := range b.comps {
		s.comps[i] = Component{Homotopy: append([]int(nil), c.Homotopy...)}
	}
	return s, nil
}

// Must panics on a build error. Intended for fixed literals in tests and
// package-level values.
func Must(s *Space, err error) *Space {
	if err != nil {
		panic(err)
	}
	return s
}

// Discrete builds a set whose points are pairwise distinct components.
// Duplicate labels are ignored.
func Discrete(name string, labels ...string) *Space {
	b := NewBuilder(name)
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if seen[l] {
			continue
		}
		seen[l] = true
		b.Point(l, b.Component())
	}
	return Must(b.Build())
}

// Empty is the space with no points.
func Empty() *Space { return Discrete("Empty") }

// Unit is the one-point space.
func Unit() *Space { return Discrete("Unit", "tt") }

// Bool is the two-point set.
func Bool() *Space { return Discrete("Bool", "false", "true") }

// Fin is the n-point set {0, ..., n-1}.
func Fin(n int) *Space {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprint(i)
	}
	return Discrete(fmt.Sprintf("Fin%d", n), labels...)
}

// Name returns the display name.
func (s *Space) Name() string { return s.name }

// Points returns the labels in their stable order.
func (s *Space) Points() []string { return append([]string(nil), s.points...) }

// Len is the number of points.
func (s *Space) Len() int { return len(s.points) }

// Has reports whether p is a point of s.
func (s *Space) Has(p string) bool {
	_, ok := s.index[p]
	return ok
}

// ComponentOf returns the component of p, or -1 when p is not a point.
func (s *Space) ComponentOf(p string) int {
	i, ok := s.index[p]
	if !ok {
		return -1
	}
	return s.comp[i]
}

// NumComponents is the number of connected components.
func (s *Space) NumComponents() int { return len(s.comps) }

// Profile returns the homotopy profile of component c.
func (s *Space) Profile(c int) []int {
	return append([]int(nil), s.comps[c].Homotopy...)
}

// Representative returns the first point of component c.
func (s *Space) Representative(c int) string {
	for i, p := range s.points {
		if s.comp[i] == c {
			return p
		}
	}
	return ""
}

// PointsOf lists the points of component c.
func (s *Space) PointsOf(c int) []string {
	var out []string
	for i, p := range s.points {
		if s.comp[i] == c {
			out = append(out, p)
		}
	}
	return out
}

// Same reports whether x and y are identified.
func (s *Space) Same(x, y string) bool {
	cx, cy := s.ComponentOf(x), s.ComponentOf(y)
	return cx >= 0 && cx == cy
}

// Level is the least grade at which s is truncated.
func (s *Space) Level() grade.Grade {
	depth := 0
	for _, c := range s.comps {
		if len(c.Homotopy) > depth {
			depth = len(c.Homotopy)
		}
	}
	if depth > 0 {
		return grade.Grade(depth)
	}
	switch len(s.comps) {
	case 0:
		return grade.MinusOne
	case 1:
		return grade.MinusTwo
	}
	return grade.Zero
}

// IsTrunc reports whether s satisfies the truncation predicate at n.
func (s *Space) IsTrunc(n grade.Grade) bool { return s.Level().Leq(n) }

// Inhabited reports whether s has a point.
func (s *Space) Inhabited() bool { return len(s.points) > 0 }

// Identical reports structural equality: same labels in the same order,
// same partition and the same profiles. Names are ignored.
func (s *Space) Identical(o *Space) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil || len(s.points) != len(o.points) || len(s.comps) != len(o.comps) {
		return false
	}
	for i := range s.points {
		if s.points[i] != o.points[i] || s.comp[i] != o.comp[i] {
			return false
		}
	}
	for i := range s.comps {
		if !sameProfile(s.comps[i].Homotopy, o.comps[i].Homotopy) {
			return false
		}
	}
	return true
}

func (s *Space) String() string {
	var sb strings.Builder
	sb.WriteString(s.name)
	sb.WriteString(" {")
	for c := range s.comps {
		if c > 0 {
			sb.WriteString(" |")
		}
		sb.WriteString(" ")
		sb.WriteString(strings.Join(s.PointsOf(c), " "))
		if h := s.comps[c].Homotopy; len(h) > 0 {
			fmt.Fprintf(&sb, " π%v", h)
		}
	}
	sb.WriteString(" }")
	return sb.String()
}

func trimProfile(h []int) []int {
	end := len(h)
	for end > 0 && h[end-1] == 1 {
		end--
	}
	return append([]int(nil), h[:end]...)
}

func sameProfile(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// mulProfile is the profile of a product of components.
func mulProfile(a, b []int) []int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]int, n)
	for i := range out {
		x, y := 1, 1
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		out[i] = x * y
	}
	return trimProfile(out)
}
