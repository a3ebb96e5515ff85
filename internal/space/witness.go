package space

import (
	"fmt"

	"trunckernel/internal/grade"
)

// TruncWitness is evidence that a space satisfies the truncation predicate
// at a grade. The zero value witnesses nothing.
type TruncWitness struct {
	space   *Space
	grade   grade.Grade
	posited bool
}

// CheckTrunc derives a witness by inspecting the space.
func CheckTrunc(s *Space, n grade.Grade) (TruncWitness, error) {
	if !s.IsTrunc(n) {
		return TruncWitness{}, fmt.Errorf("%w: %s has level %s, wanted %s", ErrNotTruncated, s.name, s.Level(), n)
	}
	return TruncWitness{space: s, grade: n}, nil
}

// Posit records truncatedness as an accepted axiom, without inspection.
// Only the collapse primitive posits; everything else derives.
func Posit(s *Space, n grade.Grade) TruncWitness {
	return TruncWitness{space: s, grade: n, posited: true}
}

// Space is the space the witness speaks about.
func (w TruncWitness) Space() *Space { return w.space }

// Grade is the grade witnessed.
func (w TruncWitness) Grade() grade.Grade { return w.grade }

// Posited reports whether the witness came from an axiom.
func (w TruncWitness) Posited() bool { return w.posited }

// Valid reports whether the witness is not the zero value.
func (w TruncWitness) Valid() bool { return w.space != nil }

// For checks that w speaks about s.
func (w TruncWitness) For(s *Space) error {
	if !w.Valid() {
		return fmt.Errorf("%w: empty witness for %s", ErrWitnessMismatch, s.name)
	}
	if !w.space.Identical(s) {
		return fmt.Errorf("%w: witness for %s used for %s", ErrWitnessMismatch, w.space.name, s.name)
	}
	return nil
}

// Weaken moves the witness up to a coarser grade.
func (w TruncWitness) Weaken(n grade.Grade) (TruncWitness, error) {
	if !w.grade.Leq(n) {
		return TruncWitness{}, fmt.Errorf("%w: cannot weaken grade %s to %s", ErrNotTruncated, w.grade, n)
	}
	w.grade = n
	return w, nil
}

// Center returns the center of a contractible space.
func (w TruncWitness) Center() (string, error) {
	if !w.Valid() || w.grade != grade.MinusTwo {
		return "", fmt.Errorf("%w: center needs a contractibility witness", ErrNotTruncated)
	}
	if !w.space.Inhabited() {
		return "", fmt.Errorf("%w: %s has no center", ErrNotTruncated, w.space.name)
	}
	return w.space.points[0], nil
}

func (w TruncWitness) String() string {
	if !w.Valid() {
		return "IsTrunc(?)"
	}
	tag := ""
	if w.posited {
		tag = " [posited]"
	}
	return fmt.Sprintf("IsTrunc(%s, %s)%s", w.grade, w.space.name, tag)
}

// PathsTrunc closes the predicate under identification types: if s is
// truncated at n then so is x = y, and at n-1 when n > -2.
func PathsTrunc(w TruncWitness, x, y string) (TruncWitness, error) {
	if !w.Valid() {
		return TruncWitness{}, fmt.Errorf("%w: empty witness", ErrWitnessMismatch)
	}
	p, err := Paths(w.space, x, y)
	if err != nil {
		return TruncWitness{}, err
	}
	n := w.grade
	if pred, err := n.Pred(); err == nil {
		n = pred
	}
	if !w.posited {
		return CheckTrunc(p, n)
	}
	return Posit(p, n), nil
}

// FunExt is the ambient function-extensionality capability. A nil FunExt
// means the capability is unavailable.
type FunExt interface {
	funExt()
}

type funExtToken struct{}

func (funExtToken) funExt() {}

// Extensionality grants function extensionality.
var Extensionality FunExt = funExtToken{}

// RequireFunExt fails when fe is absent.
func RequireFunExt(fe FunExt, op string) error {
	if fe == nil {
		return fmt.Errorf("%w: %s", ErrFunExtRequired, op)
	}
	return nil
}
