package orient

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

const fzTol = 1e-12

// ReduceQuat returns the member of the symmetry-equivalent orbit q*s
// closest to the identity, with non-negative scalar part. ReduceQuat is idempotent.
func (g *Group) ReduceQuat(q Quat) Quat {
	q = Normalize(q)
	best := q
	bestW := math.Abs(q.Real)
	for _, s := range g.ops[1:] {
		e := quat.Mul(q, s)
		if w := math.Abs(e.Real); w > bestW+fzTol {
			best, bestW = e, w
		}
	}
	if best.Real < 0 {
		best = quat.Scale(-1, best)
	}
	return best
}

// InFundamentalZone reports whether q is its own orbit representative.
func (g *Group) InFundamentalZone(q Quat) bool {
	q = Normalize(q)
	w0 := math.Abs(q.Real)
	for _, s := range g.ops[1:] {
		if math.Abs(quat.Mul(q, s).Real) > w0+fzTol {
			return false
		}
	}
	return true
}

// ReduceRodrigues maps the Rodrigues vector r into the fundamental zone by
// composing it with every symmetry operator and keeping the candidate nearest
// the origin. Operators at infinity (180° rotations) are composed with the
// limiting form of the Rodrigues product.
func (g *Group) ReduceRodrigues(r r3.Vec) r3.Vec {
	best := r
	bestD := r3.Norm2(r)
	for _, op := range g.rodOps[1:] {
		s := r3.Vec{X: op.v[0], Y: op.v[1], Z: op.v[2]}
		var c r3.Vec
		if op.inf {
			// lim t->inf of (r + t s + r×(t s)) / (1 - t r·s)
			den := -r3.Dot(r, s)
			if den == 0 {
				continue // candidate at infinity.
			}
			c = r3.Scale(1/den, r3.Add(s, r3.Cross(r, s)))
		} else {
			den := 1 - r3.Dot(r, s)
			if den == 0 {
				continue
			}
			c = r3.Scale(1/den, r3.Add(r3.Add(r, s), r3.Cross(r, s)))
		}
		if d := r3.Norm2(c); d < bestD*(1-fzTol) {
			best, bestD = c, d
		}
	}
	return best
}
