package shape

import (
	"math"

	"gonum.org/v1/gonum/mathext"
)

type ellipsoid struct{}

func (*ellipsoid) Init() {}

func (*ellipsoid) Radius(volume, _, bOverA, cOverA float64) float64 {
	return math.Cbrt(0.75 / math.Pi * volume / (bOverA * cOverA))
}

func (*ellipsoid) Inside(a1, a2, a3 float64) float64 {
	return 1 - a1*a1 - a2*a2 - a3*a3
}

// superEllipsoid is |x|^n + |y|^n + |z|^n <= 1.
type superEllipsoid struct {
	n float64
}

func (s *superEllipsoid) Init() { s.n = 2 }

func (s *superEllipsoid) Radius(volume, omega3, bOverA, cOverA float64) float64 {
	s.n = superEllipsoidTable().nearest(omega3)
	n := s.n
	beta1 := mathext.Beta(1/n, 1/n)
	beta2 := mathext.Beta(2/n, 1/n)
	return math.Cbrt(volume * 1.5 / (bOverA * cOverA) * n * n / 4 / (beta1 * beta2))
}

func (s *superEllipsoid) Inside(a1, a2, a3 float64) float64 {
	n := s.n
	return 1 - math.Pow(math.Abs(a1), n) - math.Pow(math.Abs(a2), n) - math.Pow(math.Abs(a3), n)
}

// cubeOctahedron is the intersection of the unit cube with the octahedron
// |x|+|y|+|z| <= s. The fitted range s in [2, 3] runs from the
// cuboctahedron to the cube.
type cubeOctahedron struct {
	s float64
}

func (c *cubeOctahedron) Init() { c.s = 2 }

func (c *cubeOctahedron) Radius(volume, omega3, bOverA, cOverA float64) float64 {
	c.s = cubeOctahedronTable().nearest(omega3)
	return math.Cbrt(volume / (bOverA * cOverA * cubeOctahedronVolume(c.s)))
}

func (c *cubeOctahedron) Inside(a1, a2, a3 float64) float64 {
	a1, a2, a3 = math.Abs(a1), math.Abs(a2), math.Abs(a3)
	cube := 1 - math.Max(a1, math.Max(a2, a3))
	oct := (c.s - a1 - a2 - a3) / c.s
	return math.Min(cube, oct)
}

// cubeOctahedronVolume is the volume of the unit-scale body.
func cubeOctahedronVolume(s float64) float64 {
	if s >= 2 {
		t := 3 - s
		return 8 - 4*t*t*t/3
	}
	t := s - 1
	return 4*s*s*s/3 - 4*t*t*t
}

// cylinder has its axis along the local x direction with half length r1
// and an elliptical cross section of semi-axes r2, r3.
type cylinder struct{}

func (*cylinder) Init() {}

func (*cylinder) Radius(volume, _, bOverA, cOverA float64) float64 {
	return math.Cbrt(volume / (2 * math.Pi * bOverA * cOverA))
}

func (*cylinder) Inside(a1, a2, a3 float64) float64 {
	return math.Min(1-math.Abs(a1), 1-a2*a2-a3*a3)
}

// unknown is the no-op fallback: it has no extent and only its center is inside.
type unknown struct{}

func (unknown) Init() {}

func (unknown) Radius(_, _, _, _ float64) float64 { return 0 }

func (unknown) Inside(a1, a2, a3 float64) float64 {
	if a1 == 0 && a2 == 0 && a3 == 0 {
		return 1
	}
	return -1
}
