// Package prop is the vocabulary of propositional truncation: mere
// existence, disjunction, surjections and embeddings.
package prop

import (
	"errors"
	"fmt"

	"trunckernel/internal/grade"
	"trunckernel/internal/modality"
	"trunckernel/internal/space"
	"trunckernel/internal/trunc"
)

var (
	// ErrNotSurjective is returned when some fiber is not merely inhabited.
	ErrNotSurjective = errors.New("not surjective")
	// ErrNotEmbedding is returned when some fiber is not a proposition.
	ErrNotEmbedding = errors.New("not an embedding")
)

func mere() *modality.Truncation {
	m, err := modality.ForGrade(grade.MinusOne)
	if err != nil {
		panic(err)
	}
	return m
}

// Merely is ‖A‖, the collapse of A at -1.
func Merely(a *space.Space) *trunc.Type {
	return mere().Collapse(a)
}

// HExists is ‖Σ(x : X), P(x)‖.
func HExists(x *space.Space, p space.Family) (*trunc.Type, error) {
	sigma, err := space.Sigma("Σ "+x.Name(), x, p)
	if err != nil {
		return nil, err
	}
	return Merely(sigma), nil
}

// HOr is ‖P + Q‖.
func HOr(p, q *space.Space) *trunc.Type {
	return Merely(space.Sum(p, q))
}

// ContrFromInhabitedSubsingleton: a proposition that merely holds is
// contractible. The mere element is eliminated into A itself, which is
// admissible because A is a proposition.
func ContrFromInhabitedSubsingleton(a *space.Space, w space.TruncWitness, m trunc.Elem) (space.TruncWitness, error) {
	if err := w.For(a); err != nil {
		return space.TruncWitness{}, err
	}
	if !m.Valid() || m.Of().Grade() != grade.MinusOne || !m.Of().Source().Identical(a) {
		return space.TruncWitness{}, fmt.Errorf("%w: element is not of ‖%s‖", space.ErrWitnessMismatch, a.Name())
	}
	get, err := trunc.Reduce(m.Of(), w, func(x string) string { return x })
	if err != nil {
		return space.TruncWitness{}, err
	}
	if _, err := get.Apply(m.Label()); err != nil {
		return space.TruncWitness{}, err
	}
	return space.CheckTrunc(a, grade.MinusTwo)
}

// Surjection is evidence that every fiber of a map is merely inhabited.
type Surjection struct {
	f      space.Map
	merely map[string]trunc.Elem
}

// Map is the surjective map.
func (s Surjection) Map() space.Map { return s.f }

// IsSurjection searches every fiber for a mere element.
func IsSurjection(f space.Map) (Surjection, error) {
	return BuildSurjection(f, func(b string) (trunc.Elem, error) {
		fib, err := space.Fiber(f, b)
		if err != nil {
			return trunc.Elem{}, err
		}
		elems := Merely(fib).Elems()
		if len(elems) == 0 {
			return trunc.Elem{}, fmt.Errorf("%w: %s misses %q", ErrNotSurjective, f.Name(), b)
		}
		return elems[0], nil
	})
}

// BuildSurjection assembles evidence from a pointwise proof that each fiber
// merely holds.
func BuildSurjection(f space.Map, proof func(b string) (trunc.Elem, error)) (Surjection, error) {
	merely := make(map[string]trunc.Elem, f.Cod().Len())
	for _, b := range f.Cod().Points() {
		e, err := proof(b)
		if err != nil {
			return Surjection{}, err
		}
		fib, err := space.Fiber(f, b)
		if err != nil {
			return Surjection{}, err
		}
		if !e.Valid() || e.Of().Grade() != grade.MinusOne || !e.Of().Source().Identical(fib) {
			return Surjection{}, fmt.Errorf("%w: proof over %q is not an element of ‖%s‖", ErrNotSurjective, b, fib.Name())
		}
		merely[b] = e
	}
	return Surjection{f: f, merely: merely}, nil
}

// Connected turns the mere elements into contractibility evidence: each
// ‖fib_f(b)‖ is a proposition that holds, so it is contractible.
func (s Surjection) Connected() (modality.ConnectedMap, error) {
	m := mere()
	fibers := make(map[string]space.TruncWitness, len(s.merely))
	for b, e := range s.merely {
		carrier := e.Of().Carrier()
		inhabits, err := Merely(carrier).Intro(e.Label())
		if err != nil {
			return modality.ConnectedMap{}, err
		}
		w, err := ContrFromInhabitedSubsingleton(carrier, e.Of().Truncated(), inhabits)
		if err != nil {
			return modality.ConnectedMap{}, fmt.Errorf("fiber over %q: %w", b, err)
		}
		fibers[b] = w
	}
	return modality.ConnectedMapFromFibers(m, s.f, fibers)
}

// Embedding is evidence that every fiber of a map is a proposition.
type Embedding struct {
	f      space.Map
	fibers map[string]space.TruncWitness
}

// Map is the embedding.
func (e Embedding) Map() space.Map { return e.f }

// IsEmbedding checks that every fiber is a proposition.
func IsEmbedding(f space.Map) (Embedding, error) {
	fibers := make(map[string]space.TruncWitness, f.Cod().Len())
	for _, b := range f.Cod().Points() {
		fib, err := space.Fiber(f, b)
		if err != nil {
			return Embedding{}, err
		}
		w, err := space.CheckTrunc(fib, grade.MinusOne)
		if err != nil {
			return Embedding{}, fmt.Errorf("%w: %s over %q: %v", ErrNotEmbedding, f.Name(), b, err)
		}
		fibers[b] = w
	}
	return Embedding{f: f, fibers: fibers}, nil
}

// SurjectionEmbeddingIsEquiv: a surjective embedding is an equivalence.
func SurjectionEmbeddingIsEquiv(s Surjection, e Embedding) (space.Equiv, error) {
	if !space.Equal(s.f, e.f) {
		return space.Equiv{}, fmt.Errorf("%w: surjection is for %s, embedding for %s",
			space.ErrWitnessMismatch, s.f.Name(), e.f.Name())
	}
	m := mere()
	c, err := s.Connected()
	if err != nil {
		return space.Equiv{}, err
	}
	d, err := modality.ModalMapFromFibers(m, e.f, e.fibers)
	if err != nil {
		return space.Equiv{}, err
	}
	return modality.ConnectedModalMapIsEquiv(m, c, d)
}
