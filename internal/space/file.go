package space

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML form of a space.
type File struct {
	Name       string          `yaml:"name"`
	Components []ComponentFile `yaml:"components"`
}

// ComponentFile is one component of a space file.
type ComponentFile struct {
	Homotopy []int    `yaml:"homotopy,omitempty,flow"`
	Points   []string `yaml:"points,flow"`
}

// Load reads a space file.
func Load(path string) (*Space, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read space: %w", err)
	}
	return Decode(data)
}

// Decode parses and builds a space from YAML.
func Decode(data []byte) (*Space, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if f.Name == "" {
		return nil, fmt.Errorf("%w: space file has no name", ErrMalformed)
	}
	b := NewBuilder(f.Name)
	for _, cf := range f.Components {
		c := b.Component(cf.Homotopy...)
		for _, p := range cf.Points {
			b.Point(p, c)
		}
	}
	return b.Build()
}

// Encode writes s in the form Decode reads.
func Encode(s *Space) ([]byte, error) {
	f := File{Name: s.name}
	for c := range s.comps {
		f.Components = append(f.Components, ComponentFile{
			Homotopy: s.Profile(c),
			Points:   s.PointsOf(c),
		})
	}
	return yaml.Marshal(f)
}
