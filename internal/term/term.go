// Package term is the small type language goals are written in:
// base names, Tr(n, A), products, sums, arrows and identity types.
package term

import (
	"errors"
	"fmt"

	"trunckernel/internal/grade"
	"trunckernel/internal/space"
	"trunckernel/internal/trunc"
)

var (
	// ErrSyntax is returned by Parse.
	ErrSyntax = errors.New("syntax error")
	// ErrNotModelled is returned by Eval for formers the finite model lacks.
	ErrNotModelled = errors.New("not modelled")
	// ErrUnbound is returned by Eval for names missing from the environment.
	ErrUnbound = errors.New("unbound name")
)

// Term is a type expression.
type Term interface {
	fmt.Stringer
	isTerm()
}

// Base is a named type.
type Base struct{ Name string }

// Tr is Tr(n, Body).
type Tr struct {
	Grade grade.Grade
	Body  Term
}

// Prod is Left * Right.
type Prod struct{ Left, Right Term }

// Sum is Left + Right.
type Sum struct{ Left, Right Term }

// Arrow is Dom -> Cod.
type Arrow struct{ Dom, Cod Term }

// Id is the identity type over a term.
type Id struct{ Over Term }

func (Base) isTerm()  {}
func (Tr) isTerm()    {}
func (Prod) isTerm()  {}
func (Sum) isTerm()   {}
func (Arrow) isTerm() {}
func (Id) isTerm()    {}

func (t Base) String() string  { return String(t) }
func (t Tr) String() string    { return String(t) }
func (t Prod) String() string  { return String(t) }
func (t Sum) String() string   { return String(t) }
func (t Arrow) String() string { return String(t) }
func (t Id) String() string    { return String(t) }

const (
	precArrow = iota
	precSum
	precProd
	precAtom
)

// String prints t with the fewest parentheses Parse needs.
func String(t Term) string { return format(t, precArrow) }

func format(t Term, prec int) string {
	var s string
	var own int
	switch t := t.(type) {
	case Base:
		return t.Name
	case Tr:
		return fmt.Sprintf("Tr(%s, %s)", t.Grade, format(t.Body, precArrow))
	case Id:
		return fmt.Sprintf("Id(%s)", format(t.Over, precArrow))
	case Prod:
		s, own = format(t.Left, precProd)+" * "+format(t.Right, precAtom), precProd
	case Sum:
		s, own = format(t.Left, precSum)+" + "+format(t.Right, precProd), precSum
	case Arrow:
		s, own = format(t.Dom, precSum)+" -> "+format(t.Cod, precArrow), precArrow
	default:
		return fmt.Sprintf("<%T>", t)
	}
	if own < prec {
		return "(" + s + ")"
	}
	return s
}

// Builtins is the environment of standard spaces.
func Builtins() map[string]*space.Space {
	return map[string]*space.Space{
		"Empty": space.Empty(),
		"Unit":  space.Unit(),
		"Bool":  space.Bool(),
	}
}

// Eval interprets t in the finite model.
func Eval(t Term, env map[string]*space.Space) (*space.Space, error) {
	switch t := t.(type) {
	case Base:
		s, ok := env[t.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnbound, t.Name)
		}
		return s, nil
	case Tr:
		body, err := Eval(t.Body, env)
		if err != nil {
			return nil, err
		}
		return trunc.Collapse(t.Grade, body).Carrier(), nil
	case Prod:
		l, r, err := evalPair(t.Left, t.Right, env)
		if err != nil {
			return nil, err
		}
		return space.Product(l, r), nil
	case Sum:
		l, r, err := evalPair(t.Left, t.Right, env)
		if err != nil {
			return nil, err
		}
		return space.Sum(l, r), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotModelled, String(t))
}

func evalPair(l, r Term, env map[string]*space.Space) (*space.Space, *space.Space, error) {
	ls, err := Eval(l, env)
	if err != nil {
		return nil, nil, err
	}
	rs, err := Eval(r, env)
	if err != nil {
		return nil, nil, err
	}
	return ls, rs, nil
}
