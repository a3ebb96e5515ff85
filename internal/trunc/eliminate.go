package trunc

import (
	"fmt"

	"trunckernel/internal/grade"
	"trunckernel/internal/logging"
	"trunckernel/internal/space"
)

// Motive is a family of spaces over a collapsed type.
type Motive func(x Elem) *space.Space

// Handler supplies the value at |a| for each source point a.
type Handler func(a string) string

// AdmissibleMotive is a motive together with evidence that each of its
// fibers is truncated at the collapse grade.
type AdmissibleMotive struct {
	t       *Type
	motive  Motive
	fibers  map[string]space.TruncWitness
	checked bool
}

// Admit checks the motive pointwise.
func Admit(t *Type, motive Motive) (AdmissibleMotive, error) {
	fibers := make(map[string]space.TruncWitness, t.carrier.Len())
	for _, x := range t.Elems() {
		fib := motive(x)
		if fib == nil {
			return AdmissibleMotive{}, fmt.Errorf("%w: no fiber over %s", ErrInadmissibleMotive, x)
		}
		w, err := space.CheckTrunc(fib, t.grade)
		if err != nil {
			return AdmissibleMotive{}, fmt.Errorf("%w: fiber over %s: %v", ErrInadmissibleMotive, x, err)
		}
		fibers[x.Label()] = w
	}
	return AdmissibleMotive{t: t, motive: motive, fibers: fibers, checked: true}, nil
}

// Constant is the non-dependent motive x ↦ X, admitted from a witness for X.
func Constant(t *Type, w space.TruncWitness) (AdmissibleMotive, error) {
	if !w.Valid() {
		return AdmissibleMotive{}, fmt.Errorf("%w: missing witness", ErrInadmissibleMotive)
	}
	if !w.Grade().Leq(t.grade) {
		return AdmissibleMotive{}, fmt.Errorf("%w: %s is only known at grade %s, collapse is at %s",
			ErrInadmissibleMotive, w.Space().Name(), w.Grade(), t.grade)
	}
	w, _ = w.Weaken(t.grade)
	x := w.Space()
	fibers := make(map[string]space.TruncWitness, t.carrier.Len())
	for _, p := range t.carrier.Points() {
		fibers[p] = w
	}
	return AdmissibleMotive{
		t:       t,
		motive:  func(Elem) *space.Space { return x },
		fibers:  fibers,
		checked: true,
	}, nil
}

// Type is the collapsed type the motive lives over.
func (m AdmissibleMotive) Type() *Type { return m.t }

// Fiber is the motive at x.
func (m AdmissibleMotive) Fiber(x Elem) *space.Space { return m.motive(x) }

// Witness is the admissibility evidence at x.
func (m AdmissibleMotive) Witness(x Elem) space.TruncWitness { return m.fibers[x.Label()] }

// Section is a total dependent function Π(x : Tr(n, A)), P(x).
type Section struct {
	motive  AdmissibleMotive
	handler Handler
}

// Induct is the dependent eliminator.
func Induct(m AdmissibleMotive, handler Handler) (*Section, error) {
	if !m.checked {
		return nil, fmt.Errorf("%w: motive was not admitted", ErrInadmissibleMotive)
	}
	logging.Collapse("induct over %s", m.t.carrier.Name())
	return &Section{motive: m, handler: handler}, nil
}

// Apply evaluates the section. On |a| it is handler(a) on the nose.
func (s *Section) Apply(x Elem) (string, error) {
	t := s.motive.t
	if err := t.owns(x); err != nil {
		return "", err
	}
	fib := s.motive.Fiber(x)
	if x.rep == "" {
		// Center of a -2 collapse of an empty type: the fiber is contractible.
		return s.motive.Witness(x).Center()
	}
	v := s.handler(x.rep)
	if !fib.Has(v) {
		return "", fmt.Errorf("%w: %q not in %s over %s", ErrOutsideFiber, v, fib.Name(), x)
	}
	return v, nil
}

// Reduce is the non-dependent eliminator Tr(n, A) → X for X truncated at
// a grade ≤ n, where X is w.Space(). Reduce(t, w, f)(|a|) = f(a).
func Reduce(t *Type, w space.TruncWitness, f Handler) (space.Map, error) {
	m, err := Constant(t, w)
	if err != nil {
		return space.Map{}, err
	}
	x := w.Space()
	var centerValue string
	if !t.source.Inhabited() && t.grade == grade.MinusTwo {
		if centerValue, err = m.Witness(Elem{of: t}).Center(); err != nil {
			return space.Map{}, fmt.Errorf("reduce %s: %w", t.carrier.Name(), err)
		}
	}
	return space.NewMap("rec", t.carrier, x, func(p string) string {
		e := t.elemAt(p)
		if e.rep == "" {
			return centerValue
		}
		return f(e.rep)
	})
}
