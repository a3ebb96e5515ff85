// Package grade defines truncation levels: -2, -1, 0, 1, ... and an infinite
// sentinel that sits above every finite grade.
package grade

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Grade is a truncation level.
type Grade int

const (
	// MinusTwo is the contractible level, the least grade.
	MinusTwo Grade = -2
	// MinusOne is the subsingleton (proposition) level.
	MinusOne Grade = -1
	// Zero is the set level.
	Zero Grade = 0
	// One is the groupoid level.
	One Grade = 1
	// Infinity is the top sentinel; collapsing at Infinity forgets nothing.
	Infinity Grade = 1 << 30
)

// ErrInvalidGrade is returned for unparseable or out-of-range grades.
var ErrInvalidGrade = errors.New("invalid grade")

// New validates n as a finite grade.
func New(n int) (Grade, error) {
	if n < int(MinusTwo) || Grade(n) >= Infinity {
		return 0, fmt.Errorf("%w: %d", ErrInvalidGrade, n)
	}
	return Grade(n), nil
}

// IsFinite reports whether g is not the infinite sentinel.
func (g Grade) IsFinite() bool { return g < Infinity }

// Succ returns g+1. The successor of Infinity is Infinity.
func (g Grade) Succ() Grade {
	if !g.IsFinite() {
		return Infinity
	}
	return g + 1
}

// Pred returns g-1. There is nothing below MinusTwo.
func (g Grade) Pred() (Grade, error) {
	if g <= MinusTwo {
		return 0, fmt.Errorf("%w: no grade below %s", ErrInvalidGrade, g)
	}
	if !g.IsFinite() {
		return Infinity, nil
	}
	return g - 1, nil
}

// Compare returns -1, 0 or 1.
func (g Grade) Compare(h Grade) int {
	switch {
	case g < h:
		return -1
	case g > h:
		return 1
	}
	return 0
}

// Leq reports g <= h. A coarser (larger) grade is a weaker collapse.
func (g Grade) Leq(h Grade) bool { return g <= h }

// Min returns the smaller grade.
func Min(a, b Grade) Grade {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger grade.
func Max(a, b Grade) Grade {
	if a > b {
		return a
	}
	return b
}

// Range lists the finite grades in [lo, hi], in increasing order.
func Range(lo, hi Grade) []Grade {
	if hi > Infinity-1 {
		hi = Infinity - 1
	}
	var out []Grade
	for g := lo; g <= hi; g++ {
		out = append(out, g)
	}
	return out
}

func (g Grade) String() string {
	if !g.IsFinite() {
		return "inf"
	}
	return strconv.Itoa(int(g))
}

// Parse reads a grade. Accepts integers >= -2, "inf"/"∞", and the aliases
// "contr", "prop" and "set".
func Parse(s string) (Grade, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inf", "infinity", "∞":
		return Infinity, nil
	case "contr":
		return MinusTwo, nil
	case "prop":
		return MinusOne, nil
	case "set":
		return Zero, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidGrade, s)
	}
	return New(n)
}

// MarshalYAML writes a grade the way Parse reads it.
func (g Grade) MarshalYAML() (interface{}, error) {
	if !g.IsFinite() {
		return "inf", nil
	}
	return int(g), nil
}

// UnmarshalYAML accepts both integer and string forms.
func (g *Grade) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: expected a scalar at line %d", ErrInvalidGrade, value.Line)
	}
	parsed, err := Parse(value.Value)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
