package mangle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trunckernel/internal/grade"
	"trunckernel/internal/term"
)

var testEnv = map[string]grade.Grade{
	"Bool": grade.Zero,
	"Unit": grade.MinusTwo,
	"S1":   grade.One,
}

func derive(t *testing.T, p Problem) *Derivation {
	t.Helper()
	c, err := NewClosure(DefaultConfig(), grade.Grade(3))
	require.NoError(t, err)
	if p.Env == nil {
		p.Env = testEnv
	}
	d, err := c.Derive(context.Background(), p)
	require.NoError(t, err)
	return d
}

func TestClosureLemmas(t *testing.T) {
	tests := []struct {
		name   string
		target string
		funext bool
		holds  []grade.Grade
		fails  []grade.Grade
	}{
		{"env and monotone", "Bool", false, []grade.Grade{0, 1, 3, grade.Infinity}, []grade.Grade{-1}},
		{"collapse axiom", "Tr(-1, Bool)", false, []grade.Grade{-1, 0}, []grade.Grade{-2}},
		{"collapse keeps finer body", "Tr(1, Unit)", false, []grade.Grade{-2, 1}, nil},
		{"product", "Bool * Unit", false, []grade.Grade{0}, []grade.Grade{-1}},
		{"sum of sets", "Bool + Bool", false, []grade.Grade{0}, []grade.Grade{-1}},
		{"sum of props is not a prop", "Tr(-1, Bool) + Tr(-1, Bool)", false, []grade.Grade{0}, []grade.Grade{-1}},
		{"paths drop a grade", "Id(S1)", false, []grade.Grade{0}, []grade.Grade{-1}},
		{"paths of contractible", "Id(Unit)", false, []grade.Grade{-2}, nil},
		{"arrow with funext", "S1 -> Bool", true, []grade.Grade{0}, []grade.Grade{-1}},
		{"arrow without funext", "S1 -> Bool", false, []grade.Grade{grade.Infinity}, []grade.Grade{0, 3}},
		{"unknown base", "Nat", false, []grade.Grade{grade.Infinity}, []grade.Grade{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := term.MustParse(tt.target)
			d := derive(t, Problem{FunExt: tt.funext, Target: target})
			for _, n := range tt.holds {
				assert.True(t, d.IsTrunc(target, n), "is_trunc(%s, %s)", tt.target, n)
			}
			for _, n := range tt.fails {
				assert.False(t, d.IsTrunc(target, n), "is_trunc(%s, %s)", tt.target, n)
			}
		})
	}
}

func TestClosureLevel(t *testing.T) {
	target := term.MustParse("Tr(-1, Unit * Unit)")
	d := derive(t, Problem{Target: target})
	level, ok := d.Level(target)
	require.True(t, ok)
	assert.Equal(t, grade.MinusTwo, level)

	_, ok = d.Level(term.MustParse("Bool"))
	assert.False(t, ok, "terms outside the problem have no level")
}

func TestClosureHigherGradesAreMaterialized(t *testing.T) {
	target := term.MustParse("Id(Tr(7, S1))")
	d := derive(t, Problem{Target: target})
	assert.True(t, d.IsTrunc(target, grade.Grade(0)))
	assert.True(t, d.IsTrunc(target, grade.Grade(6)))
}

func TestClosureLargeGrades(t *testing.T) {
	big := grade.Grade(536870911)
	p := Problem{
		Env: map[string]grade.Grade{"Bool": grade.Zero, "Big": grade.Grade(1000000)},
		Hyps: []Hyp{
			{Name: "h", Type: term.Tr{Grade: big, Body: term.Base{Name: "Bool"}}},
		},
		Target: term.MustParse("Bool"),
	}
	d := derive(t, p)
	n, ok := d.Strippable("h")
	require.True(t, ok)
	assert.Equal(t, big, n)
	assert.Less(t, d.Stats().PredicateCounts["grade"], 64, "only grades near the ones mentioned are materialized")

	target := term.MustParse("Id(Id(Big))")
	d = derive(t, Problem{Env: p.Env, Target: target})
	level, ok := d.Level(target)
	require.True(t, ok)
	assert.Equal(t, grade.Grade(999998), level)
	assert.True(t, d.IsTrunc(target, grade.Grade(999999)))
	assert.False(t, d.IsTrunc(target, grade.Grade(999997)))
}

func TestStrippable(t *testing.T) {
	p := Problem{
		Hyps: []Hyp{
			{Name: "h", Type: term.MustParse("Tr(-1, Bool * Bool)")},
			{Name: "k", Type: term.MustParse("Tr(0, S1)")},
			{Name: "plain", Type: term.MustParse("Bool")},
		},
		Target: term.MustParse("Tr(-1, Bool)"),
	}
	d := derive(t, p)

	n, ok := d.Strippable("h")
	require.True(t, ok)
	assert.Equal(t, grade.MinusOne, n)

	n, ok = d.Strippable("k")
	require.True(t, ok)
	assert.Equal(t, grade.Zero, n)

	_, ok = d.Strippable("plain")
	assert.False(t, ok)
	_, ok = d.Obligation("plain")
	assert.False(t, ok)
}

func TestObligation(t *testing.T) {
	d := derive(t, Problem{
		Hyps:   []Hyp{{Name: "h", Type: term.MustParse("Tr(-1, Bool)")}},
		Target: term.MustParse("Bool"),
	})
	_, ok := d.Strippable("h")
	assert.False(t, ok)
	n, ok := d.Obligation("h")
	require.True(t, ok)
	assert.Equal(t, grade.MinusOne, n)
}

func TestExplain(t *testing.T) {
	target := term.MustParse("Bool * Id(S1)")
	d := derive(t, Problem{Target: target})

	p := d.Explain(target, grade.One)
	require.NotNil(t, p)
	assert.Equal(t, "/prod", p.Rule)
	require.Len(t, p.Premises, 2)
	assert.Equal(t, "/monotone", p.Premises[0].Rule)
	assert.Equal(t, "/env", p.Premises[0].Premises[0].Rule)

	out := p.Render()
	assert.Contains(t, out, "is_trunc(Bool * Id(S1), 1) [prod]")
	assert.Contains(t, out, "is_trunc(S1, 1) [env]")

	assert.Nil(t, d.Explain(target, grade.MinusOne))
}

func TestDeriveHonoursContext(t *testing.T) {
	c, err := NewClosure(DefaultConfig(), grade.Zero)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Derive(ctx, Problem{Target: term.MustParse("Bool")})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = c.Derive(context.Background(), Problem{})
	assert.Error(t, err)
}

func TestClosureReuse(t *testing.T) {
	c, err := NewClosure(DefaultConfig(), grade.Grade(2))
	require.NoError(t, err)

	first, err := c.Derive(context.Background(), Problem{Env: testEnv, Target: term.MustParse("Bool")})
	require.NoError(t, err)
	second, err := c.Derive(context.Background(), Problem{Env: testEnv, Target: term.MustParse("S1")})
	require.NoError(t, err)

	assert.True(t, first.IsTrunc(term.MustParse("Bool"), grade.Zero))
	assert.False(t, second.IsTrunc(term.MustParse("Bool"), grade.Zero), "facts from the previous round are cleared")
	assert.True(t, second.IsTrunc(term.MustParse("S1"), grade.One))
}
