package modality

import (
	"fmt"

	"trunckernel/internal/grade"
	"trunckernel/internal/space"
)

// Rec is the non-dependent eliminator O A → X for modal X, derived from
// Induct with the constant motive.
func Rec(m Modality, r Reflection, w space.TruncWitness, handler Handler) (space.Map, error) {
	if !w.Valid() {
		return space.Map{}, fmt.Errorf("%w: rec needs evidence that the target is modal", ErrNotModal)
	}
	x := w.Space()
	sec, err := m.Induct(r, func(string) *space.Space { return x }, handler)
	if err != nil {
		return space.Map{}, err
	}
	var failed error
	f, err := space.NewMap("rec", r.Carrier(), x, func(p string) string {
		v, err := sec(p)
		if err != nil && failed == nil {
			failed = err
		}
		return v
	})
	if failed != nil {
		return space.Map{}, failed
	}
	return f, err
}

// Functor lifts f : A → B to O f : O A → O B, with O f(η a) = η(f a).
func Functor(m Modality, f space.Map) (space.Map, error) {
	rA, rB := m.Reflect(f.Dom()), m.Reflect(f.Cod())
	unitB, err := m.Unit(rB)
	if err != nil {
		return space.Map{}, err
	}
	wB, err := m.ReflectionInModal(rB)
	if err != nil {
		return space.Map{}, err
	}
	g, err := Rec(m, rA, wB, func(a string) string { return unitB.At(f.At(a)) })
	if err != nil {
		return space.Map{}, fmt.Errorf("lift %s through %s: %w", f.Name(), m.Name(), err)
	}
	return g.Named(m.Name() + "(" + f.Name() + ")"), nil
}

// UnitIsEquivIfModal: when A is modal, η : A → O A is an equivalence whose
// inverse is the extension of the identity.
func UnitIsEquivIfModal(m Modality, r Reflection, w space.TruncWitness) (space.Equiv, error) {
	if err := w.For(r.Source()); err != nil {
		return space.Equiv{}, err
	}
	unit, err := m.Unit(r)
	if err != nil {
		return space.Equiv{}, err
	}
	back, err := Rec(m, r, w, func(a string) string { return a })
	if err != nil {
		return space.Equiv{}, err
	}
	return space.NewEquiv(unit, back.Named(unit.Name()+"⁻¹"))
}

// Idempotent: O A ≃ O (O A), via the unit of O A.
func Idempotent(m Modality, a *space.Space) (space.Equiv, error) {
	r1 := m.Reflect(a)
	w1, err := m.ReflectionInModal(r1)
	if err != nil {
		return space.Equiv{}, err
	}
	r2 := m.Reflect(r1.Carrier())
	return UnitIsEquivIfModal(m, r2, w1)
}

// PreservesProduct: O(A × B) ≃ O A × O B. The inverse is built by
// induction in each variable separately, which needs function
// extensionality.
func PreservesProduct(m Modality, fe space.FunExt, a, b *space.Space) (space.Equiv, error) {
	if err := space.RequireFunExt(fe, "products of reflections"); err != nil {
		return space.Equiv{}, err
	}
	rA, rB := m.Reflect(a), m.Reflect(b)
	rAB := m.Reflect(space.Product(a, b))
	uA, err := m.Unit(rA)
	if err != nil {
		return space.Equiv{}, err
	}
	uB, err := m.Unit(rB)
	if err != nil {
		return space.Equiv{}, err
	}
	uAB, err := m.Unit(rAB)
	if err != nil {
		return space.Equiv{}, err
	}

	target := space.Product(rA.Carrier(), rB.Carrier())
	wT, err := m.InModal(target)
	if err != nil {
		return space.Equiv{}, fmt.Errorf("product of reflections is not modal: %w", err)
	}
	halves := make(map[string][2]string, a.Len()*b.Len())
	for _, x := range a.Points() {
		for _, y := range b.Points() {
			halves[space.Pair(x, y)] = [2]string{x, y}
		}
	}
	to, err := Rec(m, rAB, wT, func(p string) string {
		h := halves[p]
		return space.Pair(uA.At(h[0]), uB.At(h[1]))
	})
	if err != nil {
		return space.Equiv{}, err
	}

	wAB, err := m.ReflectionInModal(rAB)
	if err != nil {
		return space.Equiv{}, err
	}
	table := make(map[string]string, target.Len())
	var failed error
	for _, y := range rB.Carrier().Points() {
		gy, err := Rec(m, rA, wAB, func(x string) string {
			inner, err := Rec(m, rB, wAB, func(z string) string { return uAB.At(space.Pair(x, z)) })
			if err != nil {
				failed = err
				return ""
			}
			return inner.At(y)
		})
		if failed != nil {
			return space.Equiv{}, failed
		}
		if err != nil {
			return space.Equiv{}, err
		}
		for _, x := range rA.Carrier().Points() {
			table[space.Pair(x, y)] = gy.At(x)
		}
	}
	from, err := space.MapOf("pair⁻¹", target, rAB.Carrier(), table)
	if err != nil {
		return space.Equiv{}, err
	}
	return space.NewEquiv(to.Named("pair"), from)
}

// IsConnected reports whether O A is contractible.
func IsConnected(m Modality, a *space.Space) (space.TruncWitness, error) {
	w, err := space.CheckTrunc(m.Reflect(a).Carrier(), grade.MinusTwo)
	if err != nil {
		return space.TruncWitness{}, fmt.Errorf("%w: %s under %s: %v", ErrNotConnected, a.Name(), m.Name(), err)
	}
	return w, nil
}

// ConnectedMap is evidence that every fiber of f is connected.
type ConnectedMap struct {
	f        space.Map
	modality string
	fibers   map[string]space.TruncWitness
}

// ModalMap is evidence that every fiber of f is modal.
type ModalMap struct {
	f        space.Map
	modality string
	fibers   map[string]space.TruncWitness
}

// Map is the map the evidence is about.
func (c ConnectedMap) Map() space.Map { return c.f }

// Map is the map the evidence is about.
func (d ModalMap) Map() space.Map { return d.f }

// IsConnectedMap checks every fiber.
func IsConnectedMap(m Modality, f space.Map) (ConnectedMap, error) {
	fibers := make(map[string]space.TruncWitness, f.Cod().Len())
	for _, b := range f.Cod().Points() {
		fib, err := space.Fiber(f, b)
		if err != nil {
			return ConnectedMap{}, err
		}
		w, err := IsConnected(m, fib)
		if err != nil {
			return ConnectedMap{}, fmt.Errorf("%s over %q: %w", f.Name(), b, err)
		}
		fibers[b] = w
	}
	return ConnectedMap{f: f, modality: m.Name(), fibers: fibers}, nil
}

// ConnectedMapFromFibers assembles evidence from per-fiber contractibility
// witnesses for O(fib_f(b)).
func ConnectedMapFromFibers(m Modality, f space.Map, fibers map[string]space.TruncWitness) (ConnectedMap, error) {
	out := make(map[string]space.TruncWitness, len(fibers))
	for _, b := range f.Cod().Points() {
		w, ok := fibers[b]
		if !ok {
			return ConnectedMap{}, fmt.Errorf("%w: %s has no evidence over %q", ErrNotConnected, f.Name(), b)
		}
		if w.Grade() != grade.MinusTwo {
			return ConnectedMap{}, fmt.Errorf("%w: evidence over %q is at grade %s", ErrNotConnected, b, w.Grade())
		}
		fib, err := space.Fiber(f, b)
		if err != nil {
			return ConnectedMap{}, err
		}
		if err := w.For(m.Reflect(fib).Carrier()); err != nil {
			return ConnectedMap{}, fmt.Errorf("evidence over %q: %w", b, err)
		}
		out[b] = w
	}
	return ConnectedMap{f: f, modality: m.Name(), fibers: out}, nil
}

// IsModalMap checks that every fiber lies in the subuniverse.
func IsModalMap(m Modality, f space.Map) (ModalMap, error) {
	fibers := make(map[string]space.TruncWitness, f.Cod().Len())
	for _, b := range f.Cod().Points() {
		fib, err := space.Fiber(f, b)
		if err != nil {
			return ModalMap{}, err
		}
		w, err := m.InModal(fib)
		if err != nil {
			return ModalMap{}, fmt.Errorf("%w: %s over %q: %v", ErrNotModal, f.Name(), b, err)
		}
		fibers[b] = w
	}
	return ModalMap{f: f, modality: m.Name(), fibers: fibers}, nil
}

// ModalMapFromFibers assembles evidence from per-fiber witnesses at the
// modality's grade or finer.
func ModalMapFromFibers(m Modality, f space.Map, fibers map[string]space.TruncWitness) (ModalMap, error) {
	out := make(map[string]space.TruncWitness, len(fibers))
	for _, b := range f.Cod().Points() {
		w, ok := fibers[b]
		if !ok {
			return ModalMap{}, fmt.Errorf("%w: %s has no evidence over %q", ErrNotModal, f.Name(), b)
		}
		fib, err := space.Fiber(f, b)
		if err != nil {
			return ModalMap{}, err
		}
		if err := w.For(fib); err != nil {
			return ModalMap{}, fmt.Errorf("evidence over %q: %w", b, err)
		}
		if g, ok := m.(Grader); ok {
			if w, err = w.Weaken(g.Grade()); err != nil {
				return ModalMap{}, fmt.Errorf("%w: over %q: %v", ErrNotModal, b, err)
			}
		}
		out[b] = w
	}
	return ModalMap{f: f, modality: m.Name(), fibers: out}, nil
}

// ConnectedModalMapIsEquiv: a map that is both connected and modal is an
// equivalence. Each fiber is modal, hence equivalent to its reflection,
// which is contractible.
func ConnectedModalMapIsEquiv(m Modality, c ConnectedMap, d ModalMap) (space.Equiv, error) {
	if c.modality != m.Name() || d.modality != m.Name() {
		return space.Equiv{}, fmt.Errorf("%w: evidence from %s and %s used with %s", space.ErrWitnessMismatch, c.modality, d.modality, m.Name())
	}
	if !space.Equal(c.f, d.f) {
		return space.Equiv{}, fmt.Errorf("%w: connected evidence is for %s, modal evidence for %s", space.ErrWitnessMismatch, c.f.Name(), d.f.Name())
	}
	for _, b := range c.f.Cod().Points() {
		w := d.fibers[b]
		e, err := UnitIsEquivIfModal(m, m.Reflect(w.Space()), w)
		if err != nil {
			return space.Equiv{}, fmt.Errorf("fiber over %q: %w", b, err)
		}
		if _, err := space.CheckTrunc(e.To().Dom(), grade.MinusTwo); err != nil {
			return space.Equiv{}, fmt.Errorf("fiber over %q: %w", b, err)
		}
	}
	return space.IsEquiv(c.f)
}
