package orient

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Euler holds Bunge (ZXZ) Euler angles in radians.
type Euler struct {
	Phi1, Phi, Phi2 float64
}

// Degrees returns the angles converted to degrees.
func (e Euler) Degrees() [3]float64 {
	const k = 180 / math.Pi
	return [3]float64{e.Phi1 * k, e.Phi * k, e.Phi2 * k}
}

// clampUnit clamps x to [-1, 1] so that floating point overshoot
// never reaches acos or asin.
func clampUnit(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}

// EulerToQuat returns the orientation R = Rz(phi1) Rx(Phi) Rz(phi2).
func EulerToQuat(e Euler) Quat {
	sum := (e.Phi1 + e.Phi2) / 2
	diff := (e.Phi1 - e.Phi2) / 2
	s, c := math.Sincos(e.Phi / 2)
	return Quat{
		Real: c * math.Cos(sum),
		Imag: s * math.Cos(diff),
		Jmag: s * math.Sin(diff),
		Kmag: c * math.Sin(sum),
	}
}

// QuatToEuler is the inverse of EulerToQuat. Angles are wrapped to [0, 2π).
func QuatToEuler(q Quat) Euler {
	q = Normalize(q)
	sum := math.Atan2(q.Kmag, q.Real)
	diff := math.Atan2(q.Jmag, q.Imag)
	phi := 2 * math.Atan2(math.Hypot(q.Imag, q.Jmag), math.Hypot(q.Real, q.Kmag))
	return Euler{
		Phi1: wrapAngle(sum + diff),
		Phi:  phi,
		Phi2: wrapAngle(sum - diff),
	}
}

func wrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// Normalize returns q scaled to unit norm. The zero quaternion maps to identity.
func Normalize(q Quat) Quat {
	n := quat.Abs(q)
	if n == 0 || math.IsNaN(n) {
		return Quat{Real: 1}
	}
	return quat.Scale(1/n, q)
}

// FromAxisAngle returns the rotation by angle radians about axis.
func FromAxisAngle(angle float64, axis r3.Vec) Quat {
	return Quat(r3.NewRotation(angle, axis))
}

// QuatToAxisAngle returns the rotation angle in radians in [0, π] and
// the unit rotation axis. The identity rotation reports axis (0,0,1).
func QuatToAxisAngle(q Quat) (angle float64, axis r3.Vec) {
	q = Normalize(q)
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	angle = 2 * math.Acos(clampUnit(q.Real))
	v := r3.Vec{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
	n := r3.Norm(v)
	if n < 1e-15 || angle == 0 {
		return 0, r3.Vec{Z: 1}
	}
	return angle, r3.Scale(1/n, v)
}

// QuatToRodrigues returns axis*tan(angle/2). A 180° rotation has no
// finite Rodrigues vector and yields infinite components.
func QuatToRodrigues(q Quat) r3.Vec {
	v := r3.Vec{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
	if q.Real == 0 {
		return r3.Scale(math.Inf(1), v)
	}
	return r3.Scale(1/q.Real, v)
}

// RodriguesToQuat is the inverse of QuatToRodrigues with non-negative scalar part.
func RodriguesToQuat(r r3.Vec) Quat {
	w := 1 / math.Sqrt(1+r3.Norm2(r))
	return Quat{Real: w, Imag: r.X * w, Jmag: r.Y * w, Kmag: r.Z * w}
}

// RodriguesToEuler converts a Rodrigues vector to Bunge Euler angles
// using the closed form
//
//	tan((phi1+phi2)/2) = r3
//	tan((phi1-phi2)/2) = r2/r1
//	tan(Phi/2) = |(r1,r2)| / sqrt(1+r3²)
func RodriguesToEuler(r r3.Vec) Euler {
	sum := math.Atan(r.Z)
	diff := math.Atan2(r.Y, r.X)
	phi := 2 * math.Atan(math.Hypot(r.X, r.Y)/math.Sqrt(1+r.Z*r.Z))
	return Euler{
		Phi1: wrapAngle(sum + diff),
		Phi:  phi,
		Phi2: wrapAngle(sum - diff),
	}
}

// QuatToMatrix returns the row-major rotation matrix of q mapping
// crystal coordinates to sample coordinates.
func QuatToMatrix(q Quat) [9]float64 {
	q = Normalize(q)
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return [9]float64{
		1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y),
		2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x),
		2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y),
	}
}

// EulerToMatrix is a shorthand for QuatToMatrix(EulerToQuat(e)).
func EulerToMatrix(e Euler) [9]float64 {
	return QuatToMatrix(EulerToQuat(e))
}
