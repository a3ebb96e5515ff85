package space

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trunckernel/internal/grade"
)

func TestLoadSpaceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: A
components:
  - {homotopy: [2], points: [a, b]}
  - {points: [c]}
`), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "A", s.Name())
	assert.Equal(t, 2, s.NumComponents())
	assert.True(t, s.Same("a", "b"))
	assert.False(t, s.Same("a", "c"))
	assert.Equal(t, grade.One, s.Level())
}

func TestEncodeRoundTrip(t *testing.T) {
	b := NewBuilder("G")
	b.Point("x", b.Component(2, 3))
	b.Point("y", b.Component())
	s, err := b.Build()
	require.NoError(t, err)

	data, err := Encode(s)
	require.NoError(t, err)
	back, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, s.Identical(back), "decoded:\n%s", data)
	assert.Equal(t, "G", back.Name())
}

func TestDecodeMalformed(t *testing.T) {
	for name, src := range map[string]string{
		"not yaml":        "name: [",
		"no name":         "components: [{points: [a]}]",
		"empty component": "name: A\ncomponents: [{points: []}]",
		"duplicate point": "name: A\ncomponents: [{points: [a]}, {points: [a]}]",
		"zero order":      "name: A\ncomponents: [{homotopy: [0], points: [a]}]",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(src))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}
