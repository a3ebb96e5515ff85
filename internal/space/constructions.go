package space

import (
	"fmt"
)

// Pair is the label of a point of a product or dependent sum.
func Pair(x, y string) string { return "(" + x + ", " + y + ")" }

// Inl and Inr label the two halves of a sum.
func Inl(x string) string { return "inl " + x }
func Inr(y string) string { return "inr " + y }

// Product is A × B. Components pair up and their profiles multiply.
func Product(a, b *Space) *Space {
	bld := NewBuilder("(" + a.name + " * " + b.name + ")")
	ids := make([][]int, len(a.comps))
	for i := range a.comps {
		ids[i] = make([]int, len(b.comps))
		for j := range b.comps {
			ids[i][j] = bld.Component(mulProfile(a.comps[i].Homotopy, b.comps[j].Homotopy)...)
		}
	}
	for i, x := range a.points {
		for j, y := range b.points {
			bld.Point(Pair(x, y), ids[a.comp[i]][b.comp[j]])
		}
	}
	return Must(bld.Build())
}

// ProductMap is f × g.
func ProductMap(f, g Map) Map {
	prod := Product(f.dom, g.dom)
	target := Product(f.cod, g.cod)
	img := make([]string, 0, len(prod.points))
	for i := range f.dom.points {
		for j := range g.dom.points {
			img = append(img, Pair(f.img[i], g.img[j]))
		}
	}
	return Map{name: f.name + "×" + g.name, dom: prod, cod: target, img: img}
}

// Sum is the disjoint union A + B.
func Sum(a, b *Space) *Space {
	bld := NewBuilder("(" + a.name + " + " + b.name + ")")
	for i := range a.comps {
		bld.Component(a.comps[i].Homotopy...)
	}
	for j := range b.comps {
		bld.Component(b.comps[j].Homotopy...)
	}
	for i, x := range a.points {
		bld.Point(Inl(x), a.comp[i])
	}
	for j, y := range b.points {
		bld.Point(Inr(y), len(a.comps)+b.comp[j])
	}
	return Must(bld.Build())
}

// Paths is the identification type x = y in s. Points of different
// components have no paths; otherwise there is one component per element of
// π₁ and each carries the remaining profile shifted down by one.
func Paths(s *Space, x, y string) (*Space, error) {
	cx, cy := s.ComponentOf(x), s.ComponentOf(y)
	if cx < 0 {
		return nil, fmt.Errorf("%w: %q in %s", ErrNotAPoint, x, s.name)
	}
	if cy < 0 {
		return nil, fmt.Errorf("%w: %q in %s", ErrNotAPoint, y, s.name)
	}
	bld := NewBuilder(x + " = " + y)
	if cx != cy {
		return bld.Build()
	}
	h := s.comps[cx].Homotopy
	loops, rest := 1, []int(nil)
	if len(h) > 0 {
		loops, rest = h[0], h[1:]
	}
	for i := 0; i < loops; i++ {
		bld.Point(fmt.Sprintf("%s=%s#%d", x, y, i), bld.Component(rest...))
	}
	return bld.Build()
}

// Family is a type family over the points of a space.
type Family func(point string) *Space

// Sigma is the dependent sum Σ(a : A), P(a). Fibers over identified points
// must have the same shape; the total space is untwisted.
func Sigma(name string, a *Space, fam Family) (*Space, error) {
	fibers := make([]*Space, len(a.points))
	for i, p := range a.points {
		fibers[i] = fam(p)
		if fibers[i] == nil {
			return nil, fmt.Errorf("%w: no fiber over %q", ErrIncoherentFamily, p)
		}
	}

	bld := NewBuilder(name)
	ids := make([][]int, len(a.comps))
	for c := range a.comps {
		ref := fibers[indexOfComponent(a, c)]
		ids[c] = make([]int, len(ref.comps))
		for d := range ref.comps {
			ids[c][d] = bld.Component(mulProfile(a.comps[c].Homotopy, ref.comps[d].Homotopy)...)
		}
	}
	for i, p := range a.points {
		c := a.comp[i]
		ref := fibers[indexOfComponent(a, c)]
		fib := fibers[i]
		if !sameShape(ref, fib) {
			return nil, fmt.Errorf("%w: fibers over %q and %q differ", ErrIncoherentFamily, a.Representative(c), p)
		}
		for j, q := range fib.points {
			bld.Point(Pair(p, q), ids[c][fib.comp[j]])
		}
	}
	return bld.Build()
}

// Fiber is fib_f(b) = Σ(a : dom f), f(a) = b.
func Fiber(f Map, b string) (*Space, error) {
	if !f.cod.Has(b) {
		return nil, fmt.Errorf("%w: %q in %s", ErrNotAPoint, b, f.cod.name)
	}
	var failed error
	fib, err := Sigma("fib_"+f.name+"("+b+")", f.dom, func(a string) *Space {
		p, err := Paths(f.cod, f.At(a), b)
		if err != nil {
			failed = err
			return nil
		}
		return p
	})
	if failed != nil {
		return nil, failed
	}
	return fib, err
}

// sameShape compares component counts and profiles, ignoring labels.
func sameShape(a, b *Space) bool {
	if len(a.comps) != len(b.comps) {
		return false
	}
	for i := range a.comps {
		if !sameProfile(a.comps[i].Homotopy, b.comps[i].Homotopy) {
			return false
		}
	}
	return true
}
