// Package bridge relates a space to its collapse: a truncated space is
// equivalent to its own collapse, and collapse is functorial on maps and
// equivalences.
package bridge

import (
	"errors"
	"fmt"

	"trunckernel/internal/grade"
	"trunckernel/internal/modality"
	"trunckernel/internal/space"
	"trunckernel/internal/trunc"
)

// ErrLawViolated is returned when a functor law fails to hold on the nose.
var ErrLawViolated = errors.New("functor law violated")

func intro(t *trunc.Type) (space.Map, error) {
	return space.NewMap("intro", t.Source(), t.Carrier(), trunc.Label)
}

// Invert is the map Tr(n, A) → A available when A is already truncated at
// n. It sends |a| to a.
func Invert(n grade.Grade, a *space.Space, w space.TruncWitness) (space.Map, error) {
	return invert(trunc.Collapse(n, a), w)
}

func invert(t *trunc.Type, w space.TruncWitness) (space.Map, error) {
	if err := w.For(t.Source()); err != nil {
		return space.Map{}, err
	}
	if !w.Grade().Leq(t.Grade()) {
		return space.Map{}, fmt.Errorf("%w: %s is known at %s, collapse is at %s",
			space.ErrNotTruncated, t.Source().Name(), w.Grade(), t.Grade())
	}
	back, err := trunc.Reduce(t, w, func(a string) string { return a })
	if err != nil {
		return space.Map{}, err
	}
	return back.Named("intro⁻¹"), nil
}

// CollapseIsEquiv: A ≃ Tr(n, A) whenever A is truncated at n. The forward
// map is the introduction form.
func CollapseIsEquiv(n grade.Grade, a *space.Space, w space.TruncWitness) (space.Equiv, error) {
	t := trunc.Collapse(n, a)
	back, err := invert(t, w)
	if err != nil {
		return space.Equiv{}, err
	}
	to, err := intro(t)
	if err != nil {
		return space.Equiv{}, err
	}
	return space.NewEquiv(to, back)
}

// TruncFromEquiv is the converse: if intro is an equivalence then A is
// truncated at n, since it is equivalent to a truncated carrier.
func TruncFromEquiv(n grade.Grade, a *space.Space, e space.Equiv) (space.TruncWitness, error) {
	t := trunc.Collapse(n, a)
	want, err := intro(t)
	if err != nil {
		return space.TruncWitness{}, err
	}
	if !space.Equal(e.To(), want) {
		return space.TruncWitness{}, fmt.Errorf("%w: forward map %s is not intro into %s",
			space.ErrWitnessMismatch, e.To().Name(), t.Carrier().Name())
	}
	return space.CheckTrunc(a, n)
}

// Functor lifts f : A → B to Tr(n, f) : Tr(n, A) → Tr(n, B).
func Functor(n grade.Grade, f space.Map) (space.Map, error) {
	ta, tb := trunc.Collapse(n, f.Dom()), trunc.Collapse(n, f.Cod())
	g, err := trunc.Reduce(ta, tb.Truncated(), func(a string) string { return trunc.Label(f.At(a)) })
	if err != nil {
		return space.Map{}, fmt.Errorf("lift %s: %w", f.Name(), err)
	}
	return g.Named(fmt.Sprintf("Tr(%s, %s)", n, f.Name())), nil
}

// FunctorPreservesIdentity checks Tr(n, id) = id exactly.
func FunctorPreservesIdentity(n grade.Grade, a *space.Space) error {
	got, err := Functor(n, space.Identity(a))
	if err != nil {
		return err
	}
	if !space.Equal(got, space.Identity(got.Dom())) {
		return fmt.Errorf("%w: %s is not the identity", ErrLawViolated, got.Name())
	}
	return nil
}

// FunctorPreservesComposition checks Tr(n, g ∘ f) = Tr(n, g) ∘ Tr(n, f)
// exactly.
func FunctorPreservesComposition(n grade.Grade, g, f space.Map) error {
	gf, err := space.Compose(g, f)
	if err != nil {
		return err
	}
	lhs, err := Functor(n, gf)
	if err != nil {
		return err
	}
	tg, err := Functor(n, g)
	if err != nil {
		return err
	}
	tf, err := Functor(n, f)
	if err != nil {
		return err
	}
	rhs, err := space.Compose(tg, tf)
	if err != nil {
		return err
	}
	if !space.Equal(lhs, rhs) {
		return fmt.Errorf("%w: %s differs from %s", ErrLawViolated, lhs.Name(), rhs.Name())
	}
	return nil
}

// LiftEquiv lifts an equivalence through the collapse.
func LiftEquiv(n grade.Grade, e space.Equiv) (space.Equiv, error) {
	to, err := Functor(n, e.To())
	if err != nil {
		return space.Equiv{}, err
	}
	from, err := Functor(n, e.From())
	if err != nil {
		return space.Equiv{}, err
	}
	return space.NewEquiv(to, from)
}

// ProductEquiv: Tr(n, A × B) ≃ Tr(n, A) × Tr(n, B). Finite grades go through
// the modality; at ∞ the collapse only relabels, so the forward map is
// inverted directly.
func ProductEquiv(fe space.FunExt, n grade.Grade, a, b *space.Space) (space.Equiv, error) {
	if err := space.RequireFunExt(fe, "collapse of a product"); err != nil {
		return space.Equiv{}, err
	}
	if n.IsFinite() {
		m, err := modality.ForGrade(n)
		if err != nil {
			return space.Equiv{}, err
		}
		return modality.PreservesProduct(m, fe, a, b)
	}

	ta, tb := trunc.Collapse(n, a), trunc.Collapse(n, b)
	tab := trunc.Collapse(n, space.Product(a, b))
	target := space.Product(ta.Carrier(), tb.Carrier())
	w, err := space.CheckTrunc(target, n)
	if err != nil {
		return space.Equiv{}, err
	}
	halves := make(map[string][2]string, a.Len()*b.Len())
	for _, x := range a.Points() {
		for _, y := range b.Points() {
			halves[space.Pair(x, y)] = [2]string{x, y}
		}
	}
	to, err := trunc.Reduce(tab, w, func(p string) string {
		h := halves[p]
		return space.Pair(trunc.Label(h[0]), trunc.Label(h[1]))
	})
	if err != nil {
		return space.Equiv{}, err
	}
	return space.IsEquiv(to.Named("pair"))
}
