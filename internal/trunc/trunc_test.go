package trunc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trunckernel/internal/grade"
	"trunckernel/internal/space"
)

func groupoid(t *testing.T) *space.Space {
	t.Helper()
	b := space.NewBuilder("G")
	c := b.Component(2, 3)
	d := b.Component()
	b.Point("x", c).Point("y", c).Point("z", d)
	s, err := b.Build()
	require.NoError(t, err)
	return s
}

func TestCarrierShapes(t *testing.T) {
	g := groupoid(t)
	tests := []struct {
		n     grade.Grade
		comps int
		level grade.Grade
	}{
		{grade.MinusTwo, 1, grade.MinusTwo},
		{grade.MinusOne, 1, grade.MinusTwo},
		{grade.Zero, 2, grade.Zero},
		{grade.One, 2, grade.One},
		{grade.Infinity, 2, grade.Grade(2)},
	}
	for _, tt := range tests {
		t.Run(tt.n.String(), func(t *testing.T) {
			tr := Collapse(tt.n, g)
			assert.Equal(t, tt.comps, tr.Carrier().NumComponents())
			assert.Equal(t, tt.level, tr.Carrier().Level())
			assert.True(t, tr.Carrier().IsTrunc(tt.n), "the posited axiom agrees with the model")
			assert.True(t, tr.Truncated().Posited())
		})
	}
}

func TestCollapseOfEmpty(t *testing.T) {
	prop := Collapse(grade.MinusOne, space.Empty())
	assert.Equal(t, 0, prop.Carrier().Len())

	contr := Collapse(grade.MinusTwo, space.Empty())
	require.Len(t, contr.Elems(), 1)
	assert.Equal(t, "*", contr.Elems()[0].Label())
}

func TestIntro(t *testing.T) {
	tr := Collapse(grade.Zero, space.Bool())
	x, err := tr.Intro("true")
	require.NoError(t, err)
	assert.Equal(t, "|true|", x.String())
	assert.Same(t, tr, x.Of())

	_, err = tr.Intro("maybe")
	assert.ErrorIs(t, err, ErrNotAPoint)
}

func TestReduceComputationLaw(t *testing.T) {
	for _, n := range []grade.Grade{grade.Zero, grade.One, grade.Infinity} {
		tr := Collapse(n, space.Bool())
		w, err := space.CheckTrunc(space.Bool(), grade.Zero)
		require.NoError(t, err)

		not := func(a string) string {
			if a == "true" {
				return "false"
			}
			return "true"
		}
		rec, err := Reduce(tr, w, not)
		require.NoError(t, err)
		for _, a := range space.Bool().Points() {
			x, err := tr.Intro(a)
			require.NoError(t, err)
			got, err := rec.Apply(x.Label())
			require.NoError(t, err)
			assert.Equal(t, not(a), got, "grade %s, point %s", n, a)
		}
	}
}

func TestReduceConstantTrueIntoProp(t *testing.T) {
	// Tr(-1, Bool) eliminated into the proposition "true is inhabited".
	truth := space.Discrete("True", "true")
	w, err := space.CheckTrunc(truth, grade.MinusOne)
	require.NoError(t, err)

	tr := Collapse(grade.MinusOne, space.Bool())
	rec, err := Reduce(tr, w, func(string) string { return "true" })
	require.NoError(t, err)

	for _, a := range []string{"false", "true"} {
		x, err := tr.Intro(a)
		require.NoError(t, err)
		assert.Equal(t, "true", rec.At(x.Label()))
	}
}

func TestReduceRejectsCoarserTarget(t *testing.T) {
	tr := Collapse(grade.MinusOne, space.Bool())
	w, err := space.CheckTrunc(space.Bool(), grade.Zero)
	require.NoError(t, err)
	_, err = Reduce(tr, w, func(a string) string { return a })
	assert.ErrorIs(t, err, ErrInadmissibleMotive)

	_, err = Reduce(tr, space.TruncWitness{}, func(a string) string { return a })
	assert.ErrorIs(t, err, ErrInadmissibleMotive)
}

func TestInduct(t *testing.T) {
	tr := Collapse(grade.Zero, space.Fin(3))
	motive := func(x Elem) *space.Space {
		return space.Discrete("P"+x.Label(), x.Label(), "other")
	}
	m, err := Admit(tr, motive)
	require.NoError(t, err)

	sec, err := Induct(m, func(a string) string { return Label(a) })
	require.NoError(t, err)
	for _, a := range space.Fin(3).Points() {
		x, err := tr.Intro(a)
		require.NoError(t, err)
		got, err := sec.Apply(x)
		require.NoError(t, err)
		assert.Equal(t, Label(a), got)
	}

	bad, err := Induct(m, func(string) string { return "nowhere" })
	require.NoError(t, err)
	x, err := tr.Intro("0")
	require.NoError(t, err)
	_, err = bad.Apply(x)
	assert.ErrorIs(t, err, ErrOutsideFiber)

	other := Collapse(grade.Zero, space.Fin(3))
	y, err := other.Intro("0")
	require.NoError(t, err)
	_, err = sec.Apply(y)
	assert.ErrorIs(t, err, ErrForeignElem)
}

func TestAdmitRejectsCoarseMotive(t *testing.T) {
	tr := Collapse(grade.MinusOne, space.Bool())
	_, err := Admit(tr, func(Elem) *space.Space { return space.Bool() })
	assert.ErrorIs(t, err, ErrInadmissibleMotive)

	_, err = Induct(AdmissibleMotive{}, func(a string) string { return a })
	assert.ErrorIs(t, err, ErrInadmissibleMotive)
}

func TestInductOnCenter(t *testing.T) {
	tr := Collapse(grade.MinusTwo, space.Empty())
	m, err := Admit(tr, func(Elem) *space.Space { return space.Unit() })
	require.NoError(t, err)
	sec, err := Induct(m, func(string) string { return "unused" })
	require.NoError(t, err)
	got, err := sec.Apply(tr.Elems()[0])
	require.NoError(t, err)
	assert.Equal(t, "tt", got)
}

func TestSame(t *testing.T) {
	g := groupoid(t)
	set := Collapse(grade.Zero, g)
	x, _ := set.Intro("x")
	y, _ := set.Intro("y")
	z, _ := set.Intro("z")
	assert.True(t, Same(x, y))
	assert.False(t, Same(x, z))

	prop := Collapse(grade.MinusOne, g)
	px, _ := prop.Intro("x")
	pz, _ := prop.Intro("z")
	assert.True(t, Same(px, pz))
	assert.False(t, Same(x, px), "elements of different collapses are never identified")
}
