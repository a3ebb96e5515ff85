package modality

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"trunckernel/internal/grade"
	"trunckernel/internal/space"
	"trunckernel/internal/trunc"
)

// reflectCacheSize bounds the reflections a Truncation keeps alive.
const reflectCacheSize = 256

// Truncation is the n-truncation modality. Recent reflections are memoized
// per source space so that repeated reflection yields the same collapsed
// type; the least recently used one is dropped once the memo is full.
type Truncation struct {
	n     grade.Grade
	mu    sync.Mutex
	cache *lru.Cache[*space.Space, *trunc.Type]
}

func newTruncation(n grade.Grade) *Truncation {
	cache, _ := lru.New[*space.Space, *trunc.Type](reflectCacheSize)
	return &Truncation{n: n, cache: cache}
}

// Name identifies the modality.
func (m *Truncation) Name() string { return fmt.Sprintf("Tr%s", m.n) }

// Grade is the truncation grade.
func (m *Truncation) Grade() grade.Grade { return m.n }

// Reflect returns Tr(n, A).
func (m *Truncation) Reflect(a *space.Space) Reflection {
	return m.Collapse(a)
}

// Collapse is Reflect with its concrete result type.
func (m *Truncation) Collapse(a *space.Space) *trunc.Type {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.cache.Get(a); ok {
		return t
	}
	t := trunc.Collapse(m.n, a)
	m.cache.Add(a, t)
	return t
}

func (m *Truncation) own(r Reflection) (*trunc.Type, error) {
	t, ok := r.(*trunc.Type)
	if !ok || t.Grade() != m.n {
		return nil, fmt.Errorf("%w: %s", ErrForeignReflection, m.Name())
	}
	return t, nil
}

// InModal checks the truncation predicate.
func (m *Truncation) InModal(a *space.Space) (space.TruncWitness, error) {
	return space.CheckTrunc(a, m.n)
}

// ReflectionInModal is the posited truncatedness of the carrier.
func (m *Truncation) ReflectionInModal(r Reflection) (space.TruncWitness, error) {
	t, err := m.own(r)
	if err != nil {
		return space.TruncWitness{}, err
	}
	return t.Truncated(), nil
}

// Unit is a ↦ |a|.
func (m *Truncation) Unit(r Reflection) (space.Map, error) {
	t, err := m.own(r)
	if err != nil {
		return space.Map{}, err
	}
	return space.NewMap("|-|", t.Source(), t.Carrier(), trunc.Label)
}

// InModalIsProp holds because truncatedness of a fixed space at a fixed
// grade has at most one witness up to identification.
func (m *Truncation) InModalIsProp(fe space.FunExt, w1, w2 space.TruncWitness) error {
	if err := space.RequireFunExt(fe, "IsTrunc is a proposition"); err != nil {
		return err
	}
	if !w1.Valid() || !w2.Valid() {
		return fmt.Errorf("%w: empty witness", space.ErrWitnessMismatch)
	}
	if err := w2.For(w1.Space()); err != nil {
		return err
	}
	if w1.Grade() != m.n || w2.Grade() != m.n {
		return fmt.Errorf("%w: witnesses at %s and %s, modality at %s", space.ErrWitnessMismatch, w1.Grade(), w2.Grade(), m.n)
	}
	return nil
}

// Induct delegates to the elimination engine.
func (m *Truncation) Induct(r Reflection, motive Motive, handler Handler) (Section, error) {
	t, err := m.own(r)
	if err != nil {
		return nil, err
	}
	am, err := trunc.Admit(t, func(x trunc.Elem) *space.Space { return motive(x.Label()) })
	if err != nil {
		return nil, err
	}
	sec, err := trunc.Induct(am, trunc.Handler(handler))
	if err != nil {
		return nil, err
	}
	return func(x string) (string, error) {
		e, err := t.Find(x)
		if err != nil {
			return "", err
		}
		return sec.Apply(e)
	}, nil
}

// ComputationLaw evaluates the section on |a| and compares with handler(a).
func (m *Truncation) ComputationLaw(r Reflection, motive Motive, handler Handler, a string) error {
	t, err := m.own(r)
	if err != nil {
		return err
	}
	sec, err := m.Induct(r, motive, handler)
	if err != nil {
		return err
	}
	x, err := t.Intro(a)
	if err != nil {
		return err
	}
	got, err := sec(x.Label())
	if err != nil {
		return err
	}
	if want := handler(a); got != want {
		return fmt.Errorf("%w: %s at %s gave %q, want %q", ErrComputationLaw, m.Name(), x, got, want)
	}
	return nil
}

// PathsInModal closes the predicate under identification types.
func (m *Truncation) PathsInModal(w space.TruncWitness, x, y string) (space.TruncWitness, error) {
	if w.Valid() && w.Grade() != m.n {
		return space.TruncWitness{}, fmt.Errorf("%w: witness at %s, modality at %s", space.ErrWitnessMismatch, w.Grade(), m.n)
	}
	pw, err := space.PathsTrunc(w, x, y)
	if err != nil {
		return space.TruncWitness{}, err
	}
	return pw.Weaken(m.n)
}
