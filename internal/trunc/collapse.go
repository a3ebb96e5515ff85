// Package trunc implements graded truncation: Collapse(n, A) and its single
// introduction form, and the eliminators Induct and Reduce.
//
// A collapsed type is opaque. Elements are produced only by Intro and are
// observed only by elimination. That the carrier is truncated at its grade
// is posited by Truncated rather than derived.
package trunc

import (
	"errors"
	"fmt"

	"trunckernel/internal/grade"
	"trunckernel/internal/logging"
	"trunckernel/internal/space"
)

var (
	// ErrNotAPoint is returned when Intro is given something outside the source.
	ErrNotAPoint = space.ErrNotAPoint
	// ErrInadmissibleMotive is returned when a motive is not truncated at
	// the collapse grade.
	ErrInadmissibleMotive = errors.New("motive is not admissible at this grade")
	// ErrOutsideFiber is returned when a handler leaves the motive.
	ErrOutsideFiber = errors.New("handler value is outside the motive fiber")
	// ErrForeignElem is returned for elements of another collapsed type.
	ErrForeignElem = errors.New("element belongs to another collapsed type")
)

// center labels the point of a -2 collapse of an empty type.
const center = "*"

// Type is CollapsedType(n, A).
type Type struct {
	grade   grade.Grade
	source  *space.Space
	carrier *space.Space
}

// Elem is an element of a collapsed type. The representative is private.
type Elem struct {
	of  *Type
	rep string
}

// Collapse builds Tr(n, A).
func Collapse(n grade.Grade, a *space.Space) *Type {
	t := &Type{grade: n, source: a, carrier: buildCarrier(n, a)}
	logging.Collapse("collapse %s at grade %s: %d points, %d components",
		a.Name(), n, t.carrier.Len(), t.carrier.NumComponents())
	return t
}

// Label is the carrier label of the image of a.
func Label(a string) string { return "|" + a + "|" }

func buildCarrier(n grade.Grade, a *space.Space) *space.Space {
	b := space.NewBuilder(fmt.Sprintf("Tr(%s, %s)", n, a.Name()))
	switch {
	case n == grade.MinusTwo:
		c := b.Component()
		if !a.Inhabited() {
			b.Point(center, c)
		}
		for _, p := range a.Points() {
			b.Point(Label(p), c)
		}
	case n == grade.MinusOne:
		if a.Inhabited() {
			c := b.Component()
			for _, p := range a.Points() {
				b.Point(Label(p), c)
			}
		}
	default:
		keep := int(n)
		ids := make([]int, a.NumComponents())
		for c := range ids {
			h := a.Profile(c)
			if n.IsFinite() && len(h) > keep {
				h = h[:keep]
			}
			ids[c] = b.Component(h...)
		}
		for _, p := range a.Points() {
			b.Point(Label(p), ids[a.ComponentOf(p)])
		}
	}
	return space.Must(b.Build())
}

// Grade is the collapse grade.
func (t *Type) Grade() grade.Grade { return t.grade }

// Source is A.
func (t *Type) Source() *space.Space { return t.source }

// Carrier is the space underlying Tr(n, A).
func (t *Type) Carrier() *space.Space { return t.carrier }

// Truncated is the axiom that the carrier is truncated at the collapse grade.
func (t *Type) Truncated() space.TruncWitness {
	return space.Posit(t.carrier, t.grade)
}

// Intro is the introduction form |a|.
func (t *Type) Intro(a string) (Elem, error) {
	if !t.source.Has(a) {
		return Elem{}, fmt.Errorf("intro into %s: %w: %q", t.carrier.Name(), ErrNotAPoint, a)
	}
	return Elem{of: t, rep: a}, nil
}

// Elems enumerates the elements of the collapsed type, one per carrier
// point, in carrier order.
func (t *Type) Elems() []Elem {
	pts := t.carrier.Points()
	out := make([]Elem, 0, len(pts))
	for _, p := range pts {
		out = append(out, t.elemAt(p))
	}
	return out
}

// Find returns the element whose carrier label is p.
func (t *Type) Find(p string) (Elem, error) {
	if !t.carrier.Has(p) {
		return Elem{}, fmt.Errorf("%w: %q in %s", ErrNotAPoint, p, t.carrier.Name())
	}
	return t.elemAt(p), nil
}

func (t *Type) elemAt(p string) Elem {
	if p == center && !t.source.Inhabited() {
		return Elem{of: t, rep: ""}
	}
	return Elem{of: t, rep: p[1 : len(p)-1]}
}

// Label is the carrier point of x.
func (x Elem) Label() string {
	if x.rep == "" {
		return center
	}
	return Label(x.rep)
}

// Of is the collapsed type x belongs to.
func (x Elem) Of() *Type { return x.of }

// Valid reports whether x was produced by a collapsed type.
func (x Elem) Valid() bool { return x.of != nil }

func (x Elem) String() string { return x.Label() }

// Same reports whether x and y are identified in the carrier.
func Same(x, y Elem) bool {
	if x.of == nil || y.of == nil || x.of != y.of {
		return false
	}
	return x.of.carrier.Same(x.Label(), y.Label())
}

func (t *Type) owns(x Elem) error {
	if x.of != t {
		return fmt.Errorf("%w: %s is not an element of %s", ErrForeignElem, x, t.carrier.Name())
	}
	return nil
}
