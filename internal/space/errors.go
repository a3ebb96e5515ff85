package space

import "errors"

var (
	ErrMalformed        = errors.New("malformed space")
	ErrNotAPoint        = errors.New("not a point of the space")
	ErrNotAMap          = errors.New("function does not respect identification")
	ErrNotComposable    = errors.New("maps are not composable")
	ErrNotEquiv         = errors.New("map is not an equivalence")
	ErrNotTruncated     = errors.New("space is not truncated at the requested grade")
	ErrWitnessMismatch  = errors.New("witness does not belong to this space")
	ErrFunExtRequired   = errors.New("function extensionality is required")
	ErrIncoherentFamily = errors.New("family is not constant along identifications")
)
