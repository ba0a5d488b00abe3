package orient

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// zeroAngle is the resolution of acos near 1 in radians; smaller
// disorientations are reported as exactly zero.
const zeroAngle = 1e-7

// Misorientation returns the raw misorientation conj(q1)*q2 which
// rotates the crystal frame of q1 onto that of q2.
func Misorientation(q1, q2 Quat) Quat {
	return quat.Mul(quat.Conj(q1), q2)
}

// Compose returns the symmetry-equivalent misorientations s*conj(q1)*q2
// for every operator s of the group.
func (g *Group) Compose(q1, q2 Quat) []Quat {
	dq := Misorientation(q1, q2)
	out := make([]Quat, len(g.ops))
	for i, s := range g.ops {
		out[i] = quat.Mul(s, dq)
	}
	return out
}

// MinimumDisorientation returns the smallest rotation angle in degrees
// relating q1 to q2 under the group's symmetry and the axis of that rotation
// expressed in the crystal frame of q1. A zero angle reports axis (0,0,1).
func (g *Group) MinimumDisorientation(q1, q2 Quat) (angle float64, axis r3.Vec) {
	dq := Normalize(Misorientation(q1, q2))
	wmax := g.maxScalar(dq)
	angle = 2 * math.Acos(clampUnit(wmax))
	if angle < zeroAngle {
		return 0, r3.Vec{Z: 1}
	}
	// Locate an equivalent carrying wmax to read off the axis.
	best := dq
	bestW := -1.0
	for _, s := range g.ops {
		e := quat.Mul(s, dq)
		w := math.Abs(e.Real)
		if w > bestW {
			best, bestW = e, w
		}
		if w >= wmax-1e-12 {
			best = e
			break
		}
	}
	_, axis = QuatToAxisAngle(best)
	return angle * 180 / math.Pi, axis
}

// DisorientationAngle returns the minimum disorientation angle between
// q1 and q2 in radians.
func (g *Group) DisorientationAngle(q1, q2 Quat) float64 {
	dq := Normalize(Misorientation(q1, q2))
	return 2 * math.Acos(clampUnit(g.maxScalar(dq)))
}

// maxScalar returns the largest |scalar part| over the orbit s*dq.
func (g *Group) maxScalar(dq Quat) float64 {
	switch g.class {
	case Cubic:
		return cubicMaxScalar(dq)
	case Hexagonal:
		wmax := 0.0
		for _, s := range g.ops {
			// Scalar part of s*dq.
			w := math.Abs(s.Real*dq.Real - s.Imag*dq.Imag - s.Jmag*dq.Jmag - s.Kmag*dq.Kmag)
			if w > wmax {
				wmax = w
			}
		}
		return wmax
	}
	panic("unreachable: group of unsupported class")
}

// cubicMaxScalar evaluates the cubic fundamental zone boundaries in closed form.
// Scalar parts of the cubic orbit are a single component, the sum of two
// components over √2 or the sum of all four over 2.
func cubicMaxScalar(dq Quat) float64 {
	n := [4]float64{math.Abs(dq.Real), math.Abs(dq.Imag), math.Abs(dq.Jmag), math.Abs(dq.Kmag)}
	sort.Float64s(n[:])
	wmax := n[3]
	if w := (n[2] + n[3]) * sqrtHalf; w > wmax {
		wmax = w
	}
	if w := (n[0] + n[1] + n[2] + n[3]) / 2; w > wmax {
		wmax = w
	}
	return wmax
}
