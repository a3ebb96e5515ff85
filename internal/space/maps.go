package space

import (
	"fmt"
)

// Map is a function between spaces that respects identification: points in
// the same component land in the same component.
type Map struct {
	name string
	dom  *Space
	cod  *Space
	img  []string
}

// NewMap tabulates fn over dom and validates the result.
func NewMap(name string, dom, cod *Space, fn func(string) string) (Map, error) {
	img := make([]string, len(dom.points))
	for i, p := range dom.points {
		q := fn(p)
		if !cod.Has(q) {
			return Map{}, fmt.Errorf("%w: %s sends %q to %q, not in %s", ErrNotAPoint, name, p, q, cod.name)
		}
		img[i] = q
	}

	target := make(map[int]int, len(dom.comps))
	for i, q := range img {
		c := dom.comp[i]
		d := cod.ComponentOf(q)
		if prev, ok := target[c]; ok && prev != d {
			return Map{}, fmt.Errorf("%w: %s splits component of %q", ErrNotAMap, name, dom.points[i])
		}
		target[c] = d
	}
	return Map{name: name, dom: dom, cod: cod, img: img}, nil
}

// MapOf builds a map from an explicit table. Missing entries are an error.
func MapOf(name string, dom, cod *Space, table map[string]string) (Map, error) {
	for _, p := range dom.points {
		if _, ok := table[p]; !ok {
			return Map{}, fmt.Errorf("%w: %s has no image for %q", ErrNotAPoint, name, p)
		}
	}
	return NewMap(name, dom, cod, func(p string) string { return table[p] })
}

// Identity is the identity map of s.
func Identity(s *Space) Map {
	return Map{name: "id", dom: s, cod: s, img: s.Points()}
}

// Constant sends every point of dom to q.
func Constant(dom, cod *Space, q string) (Map, error) {
	return NewMap("const_"+q, dom, cod, func(string) string { return q })
}

// Name returns the display name.
func (f Map) Name() string { return f.name }

// Named returns f under a new display name.
func (f Map) Named(name string) Map {
	f.name = name
	return f
}

// Dom is the domain.
func (f Map) Dom() *Space { return f.dom }

// Cod is the codomain.
func (f Map) Cod() *Space { return f.cod }

// Apply evaluates f at a.
func (f Map) Apply(a string) (string, error) {
	i, ok := f.dom.index[a]
	if !ok {
		return "", fmt.Errorf("%w: %q in %s", ErrNotAPoint, a, f.dom.name)
	}
	return f.img[i], nil
}

// At evaluates f at a, returning "" when a is not in the domain.
func (f Map) At(a string) string {
	q, _ := f.Apply(a)
	return q
}

// ComponentImage is the component of the codomain that component c of the
// domain lands in.
func (f Map) ComponentImage(c int) int {
	return f.cod.ComponentOf(f.img[indexOfComponent(f.dom, c)])
}

// Compose returns g ∘ f.
func Compose(g, f Map) (Map, error) {
	if !f.cod.Identical(g.dom) {
		return Map{}, fmt.Errorf("%w: %s ends in %s, %s starts in %s", ErrNotComposable, f.name, f.cod.name, g.name, g.dom.name)
	}
	img := make([]string, len(f.img))
	for i, q := range f.img {
		img[i] = g.img[g.dom.index[q]]
	}
	return Map{name: g.name + "∘" + f.name, dom: f.dom, cod: g.cod, img: img}, nil
}

// Equal is strict, label-wise equality of maps with identical ends.
func Equal(f, g Map) bool {
	if !f.dom.Identical(g.dom) || !f.cod.Identical(g.cod) {
		return false
	}
	for i := range f.img {
		if f.img[i] != g.img[i] {
			return false
		}
	}
	return true
}

// Homotopic reports f ~ g: pointwise identified images.
func Homotopic(f, g Map) bool {
	if !f.dom.Identical(g.dom) || !f.cod.Identical(g.cod) {
		return false
	}
	for i := range f.img {
		if !f.cod.Same(f.img[i], g.img[i]) {
			return false
		}
	}
	return true
}

// IsInjective reports whether f is injective on components.
func (f Map) IsInjective() bool {
	seen := make(map[int]int, len(f.dom.comps))
	for c := range f.dom.comps {
		d := f.ComponentImage(c)
		if prev, ok := seen[d]; ok && prev != c {
			return false
		}
		seen[d] = c
	}
	return true
}

func (f Map) String() string {
	return fmt.Sprintf("%s : %s -> %s", f.name, f.dom.name, f.cod.name)
}

func indexOfComponent(s *Space, c int) int {
	for i, d := range s.comp {
		if d == c {
			return i
		}
	}
	return -1
}

// Equiv is a map together with a two-sided inverse up to identification.
// The components it pairs must carry equal homotopy profiles.
type Equiv struct {
	to   Map
	from Map
}

// NewEquiv checks that from is an inverse of to.
func NewEquiv(to, from Map) (Equiv, error) {
	if !to.dom.Identical(from.cod) || !to.cod.Identical(from.dom) {
		return Equiv{}, fmt.Errorf("%w: %s and %s do not have opposite ends", ErrNotEquiv, to.name, from.name)
	}
	there, err := Compose(from, to)
	if err != nil {
		return Equiv{}, err
	}
	back, err := Compose(to, from)
	if err != nil {
		return Equiv{}, err
	}
	if !Homotopic(there, Identity(to.dom)) || !Homotopic(back, Identity(to.cod)) {
		return Equiv{}, fmt.Errorf("%w: %s is not inverse to %s", ErrNotEquiv, from.name, to.name)
	}
	for c := range to.dom.comps {
		d := to.ComponentImage(c)
		if !sameProfile(to.dom.comps[c].Homotopy, to.cod.comps[d].Homotopy) {
			return Equiv{}, fmt.Errorf("%w: %s changes the homotopy of component %d", ErrNotEquiv, to.name, c)
		}
	}
	return Equiv{to: to, from: from}, nil
}

// IsEquiv constructs an inverse for f when one exists. Exact preimages are
// preferred so that label-bijective maps round-trip on the nose.
func IsEquiv(f Map) (Equiv, error) {
	exact := make(map[string]string, len(f.img))
	for i, q := range f.img {
		if _, ok := exact[q]; !ok {
			exact[q] = f.dom.points[i]
		}
	}
	compPre := make(map[int]string, len(f.cod.comps))
	for c := range f.dom.comps {
		d := f.ComponentImage(c)
		if _, ok := compPre[d]; ok {
			return Equiv{}, fmt.Errorf("%w: %s identifies two components", ErrNotEquiv, f.name)
		}
		compPre[d] = f.dom.Representative(c)
	}
	if len(compPre) != len(f.cod.comps) {
		return Equiv{}, fmt.Errorf("%w: %s misses a component of %s", ErrNotEquiv, f.name, f.cod.name)
	}

	inv, err := NewMap(f.name+"⁻¹", f.cod, f.dom, func(b string) string {
		if a, ok := exact[b]; ok {
			return a
		}
		return compPre[f.cod.ComponentOf(b)]
	})
	if err != nil {
		return Equiv{}, err
	}
	return NewEquiv(f, inv)
}

// To is the forward map.
func (e Equiv) To() Map { return e.to }

// From is the inverse map.
func (e Equiv) From() Map { return e.from }

// Inverse swaps the directions.
func (e Equiv) Inverse() Equiv { return Equiv{to: e.from, from: e.to} }

// ComposeEquiv returns g ∘ f.
func ComposeEquiv(g, f Equiv) (Equiv, error) {
	to, err := Compose(g.to, f.to)
	if err != nil {
		return Equiv{}, err
	}
	from, err := Compose(f.from, g.from)
	if err != nil {
		return Equiv{}, err
	}
	return NewEquiv(to, from)
}
