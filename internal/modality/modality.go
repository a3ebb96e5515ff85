// Package modality presents truncation as a reflective modality.
//
// Modality is the minimal interface a reflective subuniverse must supply.
// Everything in derived.go is written against that interface only:
// functoriality, idempotence, products, connectivity and the
// connected/modal factorization come for free once the eight methods exist.
//
// Truncation is the only implementation; Registry builds one per finite
// grade. The infinite grade has no instance (see ErrUnsupportedGrade).
package modality

import (
	"errors"

	"trunckernel/internal/grade"
	"trunckernel/internal/space"
)

var (
	// ErrUnsupportedGrade is returned for the infinite grade. Finite and
	// infinite truncation are not unified into one modality family.
	ErrUnsupportedGrade = errors.New("no modality instance for this grade")
	// ErrForeignReflection is returned when a reflection was produced by a
	// different modality.
	ErrForeignReflection = errors.New("reflection belongs to another modality")
	// ErrNotConnected is returned when a space or map is not connected.
	ErrNotConnected = errors.New("not connected")
	// ErrNotModal is returned when a map has a fiber outside the subuniverse.
	ErrNotModal = errors.New("not modal")
	// ErrComputationLaw is returned when induction fails to compute on units.
	ErrComputationLaw = errors.New("computation law violated")
)

// Reflection is O A together with the data needed to talk about its unit.
type Reflection interface {
	Source() *space.Space
	Carrier() *space.Space
}

// Motive is a family over the points of a reflection's carrier.
type Motive func(x string) *space.Space

// Handler gives the value of an induction at the unit of each source point.
type Handler func(a string) string

// Section is a total dependent function over a reflection's carrier.
type Section func(x string) (string, error)

// Modality is the eight-field reflective-subuniverse contract.
type Modality interface {
	// Name identifies the modality in logs and errors.
	Name() string
	// Reflect is the reflector A ↦ O A.
	Reflect(a *space.Space) Reflection
	// InModal decides the subuniverse predicate, producing evidence.
	InModal(a *space.Space) (space.TruncWitness, error)
	// ReflectionInModal: O A always lies in the subuniverse.
	ReflectionInModal(r Reflection) (space.TruncWitness, error)
	// Unit is η : A → O A.
	Unit(r Reflection) (space.Map, error)
	// InModalIsProp: any two pieces of evidence for the same space are
	// equal. Requires function extensionality.
	InModalIsProp(fe space.FunExt, w1, w2 space.TruncWitness) error
	// Induct eliminates out of O A into a motive whose fibers are modal.
	Induct(r Reflection, motive Motive, handler Handler) (Section, error)
	// ComputationLaw checks Induct(r, motive, handler)(η a) = handler(a).
	ComputationLaw(r Reflection, motive Motive, handler Handler, a string) error
	// PathsInModal: identification types of modal spaces are modal.
	PathsInModal(w space.TruncWitness, x, y string) (space.TruncWitness, error)
}

// Grader is implemented by modalities indexed by a grade.
type Grader interface {
	Grade() grade.Grade
}
