package d3

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
)

// Box is a 3d bounding box.
type Box r3.Box

// NewBox creates a 3d box with a given center and size.
func NewBox(center, size r3.Vec) Box {
	half := r3.Scale(0.5, size)
	return Box{Min: r3.Sub(center, half), Max: r3.Add(center, half)}
}

// Equals test the equality of 3d boxes.
func (a Box) Equals(b Box, tol float64) bool {
	return EqualWithin(a.Min, b.Min, tol) && EqualWithin(a.Max, b.Max, tol)
}

// Size returns the size of a 3d box.
func (a Box) Size() r3.Vec {
	return r3.Sub(a.Max, a.Min)
}

// Center returns the center of a 3d box.
func (a Box) Center() r3.Vec {
	return r3.Add(a.Min, r3.Scale(0.5, a.Size()))
}

// Volume returns the product of the box side lengths.
func (a Box) Volume() float64 {
	sz := a.Size()
	return sz.X * sz.Y * sz.Z
}

// Contains checks if the 3d box contains the given vector (considering bounds as inside).
func (a Box) Contains(v r3.Vec) bool {
	return a.Min.X <= v.X && a.Min.Y <= v.Y && a.Min.Z <= v.Z &&
		v.X <= a.Max.X && v.Y <= a.Max.Y && v.Z <= a.Max.Z
}

// Cells returns the inclusive range of cell indices of side length res
// overlapped by the box. Indices are not clipped to any grid.
func (a Box) Cells(res float64) (lo, hi Index) {
	lo = Index{
		int(math.Floor(a.Min.X / res)),
		int(math.Floor(a.Min.Y / res)),
		int(math.Floor(a.Min.Z / res)),
	}
	hi = Index{
		int(math.Floor(a.Max.X / res)),
		int(math.Floor(a.Max.Y / res)),
		int(math.Floor(a.Max.Z / res)),
	}
	return lo, hi
}

// Random returns a random point within a bounding box drawn from rnd.
func (a Box) Random(rnd *rand.Rand) r3.Vec {
	return r3.Vec{
		X: randomRange(rnd, a.Min.X, a.Max.X),
		Y: randomRange(rnd, a.Min.Y, a.Max.Y),
		Z: randomRange(rnd, a.Min.Z, a.Max.Z),
	}
}

// randomRange returns a random float64 [a,b)
func randomRange(rnd *rand.Rand, a, b float64) float64 {
	return a + (b-a)*rnd.Float64()
}
