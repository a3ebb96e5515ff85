package term

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trunckernel/internal/grade"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Term
	}{
		{"Bool", Base{"Bool"}},
		{"Tr(-1, Bool * Bool)", Tr{grade.MinusOne, Prod{Base{"Bool"}, Base{"Bool"}}}},
		{"A + B * C", Sum{Base{"A"}, Prod{Base{"B"}, Base{"C"}}}},
		{"A -> B -> C", Arrow{Base{"A"}, Arrow{Base{"B"}, Base{"C"}}}},
		{"(A -> B) -> C", Arrow{Arrow{Base{"A"}, Base{"B"}}, Base{"C"}}},
		{"Tr(inf, Id(S1))", Tr{grade.Infinity, Id{Base{"S1"}}}},
		{"Tr(prop, A + B)", Tr{grade.MinusOne, Sum{Base{"A"}, Base{"B"}}}},
		{"A × B → Tr(∞, C)", Arrow{Prod{Base{"A"}, Base{"B"}}, Tr{grade.Infinity, Base{"C"}}}},
		{"Tr", Base{"Tr"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "A +", "Tr(-3, A)", "Tr(0 A)", "(A", "A B", "A - B", "A $ B"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			assert.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func TestStringReparses(t *testing.T) {
	for _, in := range []string{
		"Tr(-1, Bool * Bool)",
		"(A + B) * C",
		"A * (B * C)",
		"A + (B + C)",
		"(A -> B) -> Tr(0, A + B)",
		"Id(A -> B)",
	} {
		t.Run(in, func(t *testing.T) {
			parsed := MustParse(in)
			assert.Equal(t, in, String(parsed))
			if diff := cmp.Diff(parsed, MustParse(String(parsed))); diff != "" {
				t.Errorf("reparse mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEval(t *testing.T) {
	env := Builtins()

	s, err := Eval(MustParse("Tr(-1, Bool * Bool)"), env)
	require.NoError(t, err)
	assert.Equal(t, grade.MinusTwo, s.Level())
	assert.Equal(t, 4, s.Len())

	s, err = Eval(MustParse("Bool + Unit"), env)
	require.NoError(t, err)
	assert.Equal(t, 3, s.NumComponents())

	_, err = Eval(MustParse("Bool -> Bool"), env)
	assert.ErrorIs(t, err, ErrNotModelled)
	_, err = Eval(MustParse("Tr(0, Id(Bool))"), env)
	assert.ErrorIs(t, err, ErrNotModelled)
	_, err = Eval(MustParse("Nat"), env)
	assert.ErrorIs(t, err, ErrUnbound)
}
