package orient

import (
	"math"
)

const sqrtHalf = 0.7071067811865476

// cubicOps are the 24 proper rotations of the cubic point group m-3m.
var cubicOps = []Quat{
	{Real: 1},
	// 180° about the cube axes.
	{Imag: 1}, {Jmag: 1}, {Kmag: 1},
	// ±90° about the cube axes.
	{Real: sqrtHalf, Imag: sqrtHalf}, {Real: sqrtHalf, Jmag: sqrtHalf}, {Real: sqrtHalf, Kmag: sqrtHalf},
	{Real: sqrtHalf, Imag: -sqrtHalf}, {Real: sqrtHalf, Jmag: -sqrtHalf}, {Real: sqrtHalf, Kmag: -sqrtHalf},
	// 180° about the face diagonals.
	{Imag: sqrtHalf, Jmag: sqrtHalf}, {Imag: -sqrtHalf, Jmag: sqrtHalf},
	{Jmag: sqrtHalf, Kmag: sqrtHalf}, {Jmag: -sqrtHalf, Kmag: sqrtHalf},
	{Imag: sqrtHalf, Kmag: sqrtHalf}, {Imag: -sqrtHalf, Kmag: sqrtHalf},
	// ±120° about the body diagonals.
	{Real: 0.5, Imag: 0.5, Jmag: 0.5, Kmag: 0.5}, {Real: 0.5, Imag: -0.5, Jmag: -0.5, Kmag: -0.5},
	{Real: 0.5, Imag: 0.5, Jmag: -0.5, Kmag: 0.5}, {Real: 0.5, Imag: -0.5, Jmag: 0.5, Kmag: -0.5},
	{Real: 0.5, Imag: -0.5, Jmag: 0.5, Kmag: 0.5}, {Real: 0.5, Imag: 0.5, Jmag: -0.5, Kmag: -0.5},
	{Real: 0.5, Imag: -0.5, Jmag: -0.5, Kmag: 0.5}, {Real: 0.5, Imag: 0.5, Jmag: 0.5, Kmag: -0.5},
}

// hexagonalOps returns the 12 proper rotations of 6/mmm: six about c and
// six diads in the basal plane.
func hexagonalOps() []Quat {
	ops := make([]Quat, 0, 12)
	for k := 0; k < 6; k++ {
		s, c := math.Sincos(float64(k) * math.Pi / 6)
		ops = append(ops, Quat{Real: c, Kmag: s})
	}
	for k := 0; k < 6; k++ {
		s, c := math.Sincos(float64(k) * math.Pi / 6)
		ops = append(ops, Quat{Imag: c, Jmag: s})
	}
	return ops
}

var (
	cubic = newGroup(Cubic, cubicOps, binning{
		dims:  [3]int{18, 18, 18},
		halfs: [3]float64{math.Pi / 4, math.Pi / 4, math.Pi / 4},
	}, 62.8)
	hexagonal = newGroup(Hexagonal, hexagonalOps(), binning{
		dims:  [3]int{36, 36, 12},
		halfs: [3]float64{math.Pi / 2, math.Pi / 2, math.Pi / 6},
	}, 93.84)
)

func newGroup(c Class, ops []Quat, b binning, maxAngle float64) *Group {
	g := &Group{
		class:    c,
		ops:      ops,
		bins:     b.init(),
		maxAngle: maxAngle,
	}
	// Rodrigues form of the operators. A zero scalar part is a 180°
	// rotation whose Rodrigues vector lies at infinity along the axis.
	for _, s := range ops {
		v := [3]float64{s.Imag, s.Jmag, s.Kmag}
		if math.Abs(s.Real) < 1e-12 {
			g.rodOps = append(g.rodOps, rodOp{v: v, inf: true})
			continue
		}
		g.rodOps = append(g.rodOps, rodOp{v: [3]float64{v[0] / s.Real, v[1] / s.Real, v[2] / s.Real}})
	}
	return g
}
