package space

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trunckernel/internal/grade"
)

// circleLike is one point with π₁ of order 3.
func circleLike(t *testing.T) *Space {
	t.Helper()
	b := NewBuilder("C3")
	b.Point("base", b.Component(3))
	s, err := b.Build()
	require.NoError(t, err)
	return s
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name  string
		space *Space
		want  grade.Grade
	}{
		{"unit is contractible", Unit(), grade.MinusTwo},
		{"empty is a proposition", Empty(), grade.MinusOne},
		{"bool is a set", Bool(), grade.Zero},
		{"fin3 is a set", Fin(3), grade.Zero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.space.Level())
		})
	}

	assert.Equal(t, grade.One, circleLike(t).Level())

	b := NewBuilder("identified")
	c := b.Component()
	b.Point("x", c).Point("y", c)
	s, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, grade.MinusTwo, s.Level(), "two identified points form a contractible space")
	assert.True(t, s.Same("x", "y"))
}

func TestBuilderRejectsMalformed(t *testing.T) {
	b := NewBuilder("dup")
	c := b.Component()
	b.Point("x", c).Point("x", c)
	_, err := b.Build()
	assert.ErrorIs(t, err, ErrMalformed)

	b = NewBuilder("hollow")
	b.Component()
	_, err = b.Build()
	assert.ErrorIs(t, err, ErrMalformed)

	b = NewBuilder("bad order")
	b.Point("x", b.Component(0))
	_, err = b.Build()
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestTruncPredicateIsMonotone(t *testing.T) {
	s := circleLike(t)
	for _, n := range grade.Range(grade.MinusTwo, 4) {
		assert.Equal(t, n >= grade.One, s.IsTrunc(n), "grade %s", n)
	}
	assert.True(t, s.IsTrunc(grade.Infinity))

	w, err := CheckTrunc(Bool(), grade.Zero)
	require.NoError(t, err)
	w2, err := w.Weaken(grade.One)
	require.NoError(t, err)
	assert.Equal(t, grade.One, w2.Grade())
	_, err = w.Weaken(grade.MinusOne)
	assert.ErrorIs(t, err, ErrNotTruncated)

	_, err = CheckTrunc(Bool(), grade.MinusOne)
	assert.ErrorIs(t, err, ErrNotTruncated)
}

func TestPaths(t *testing.T) {
	p, err := Paths(Bool(), "true", "false")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Len())

	p, err = Paths(Bool(), "true", "true")
	require.NoError(t, err)
	assert.Equal(t, grade.MinusTwo, p.Level())

	loops, err := Paths(circleLike(t), "base", "base")
	require.NoError(t, err)
	assert.Equal(t, 3, loops.NumComponents())
	assert.Equal(t, grade.Zero, loops.Level())

	_, err = Paths(Bool(), "true", "maybe")
	assert.ErrorIs(t, err, ErrNotAPoint)
}

func TestPathsTruncClosure(t *testing.T) {
	s := circleLike(t)
	w, err := CheckTrunc(s, grade.One)
	require.NoError(t, err)
	pw, err := PathsTrunc(w, "base", "base")
	require.NoError(t, err)
	assert.Equal(t, grade.Zero, pw.Grade())
	assert.False(t, pw.Posited())
}

func TestProductAndSum(t *testing.T) {
	p := Product(Bool(), Fin(3))
	assert.Equal(t, 6, p.Len())
	assert.Equal(t, grade.Zero, p.Level())
	assert.True(t, p.Has(Pair("true", "2")))

	pc := Product(circleLike(t), circleLike(t))
	assert.Equal(t, []int{9}, pc.Profile(0))

	s := Sum(Unit(), Unit())
	assert.Equal(t, grade.Zero, s.Level(), "a sum of propositions need not be a proposition")
	assert.True(t, s.Has(Inl("tt")))
	assert.True(t, s.Has(Inr("tt")))
}

func TestMaps(t *testing.T) {
	not, err := MapOf("not", Bool(), Bool(), map[string]string{"true": "false", "false": "true"})
	require.NoError(t, err)

	twice, err := Compose(not, not)
	require.NoError(t, err)
	assert.True(t, Equal(twice, Identity(Bool())))

	_, err = NewMap("escape", Bool(), Bool(), func(string) string { return "maybe" })
	assert.ErrorIs(t, err, ErrNotAPoint)

	b := NewBuilder("pair")
	c := b.Component()
	b.Point("x", c).Point("y", c)
	joined := Must(b.Build())
	_, err = MapOf("split", joined, Bool(), map[string]string{"x": "true", "y": "false"})
	assert.ErrorIs(t, err, ErrNotAMap)

	_, err = Compose(not, Identity(Unit()))
	assert.ErrorIs(t, err, ErrNotComposable)
}

func TestIsEquiv(t *testing.T) {
	not, err := MapOf("not", Bool(), Bool(), map[string]string{"true": "false", "false": "true"})
	require.NoError(t, err)
	e, err := IsEquiv(not)
	require.NoError(t, err)
	assert.True(t, Equal(e.From(), not))

	collapse, err := Constant(Bool(), Unit(), "tt")
	require.NoError(t, err)
	_, err = IsEquiv(collapse)
	assert.ErrorIs(t, err, ErrNotEquiv)

	// A map that kills π₁ is not an equivalence even though it is bijective
	// on components.
	kill, err := Constant(circleLike(t), Unit(), "tt")
	require.NoError(t, err)
	_, err = IsEquiv(kill)
	assert.True(t, errors.Is(err, ErrNotEquiv))
}

func TestFiber(t *testing.T) {
	dom := Fin(3)
	cod := Fin(2)
	f, err := MapOf("f", dom, cod, map[string]string{"0": "0", "1": "0", "2": "1"})
	require.NoError(t, err)

	fib0, err := Fiber(f, "0")
	require.NoError(t, err)
	assert.Equal(t, 2, fib0.Len())
	assert.Equal(t, grade.Zero, fib0.Level())

	fib1, err := Fiber(f, "1")
	require.NoError(t, err)
	assert.Equal(t, grade.MinusTwo, fib1.Level())

	_, err = Fiber(f, "7")
	assert.ErrorIs(t, err, ErrNotAPoint)
}

func TestSigmaRejectsIncoherentFamily(t *testing.T) {
	b := NewBuilder("pair")
	c := b.Component()
	b.Point("x", c).Point("y", c)
	joined := Must(b.Build())

	_, err := Sigma("bad", joined, func(p string) *Space {
		if p == "x" {
			return Unit()
		}
		return Bool()
	})
	assert.ErrorIs(t, err, ErrIncoherentFamily)
}

func TestFunExtCapability(t *testing.T) {
	assert.ErrorIs(t, RequireFunExt(nil, "product law"), ErrFunExtRequired)
	assert.NoError(t, RequireFunExt(Extensionality, "product law"))
}

func TestWitnessFor(t *testing.T) {
	w, err := CheckTrunc(Bool(), grade.Zero)
	require.NoError(t, err)
	assert.NoError(t, w.For(Bool()), "structurally equal spaces share witnesses")
	assert.ErrorIs(t, w.For(Fin(3)), ErrWitnessMismatch)
	assert.ErrorIs(t, TruncWitness{}.For(Bool()), ErrWitnessMismatch)

	cw, err := CheckTrunc(Unit(), grade.MinusTwo)
	require.NoError(t, err)
	center, err := cw.Center()
	require.NoError(t, err)
	assert.Equal(t, "tt", center)
}
