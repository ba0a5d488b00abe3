package d3

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Frame is a rigid body frame: a rotation from local to world axes
// followed by a translation to Origin.
// The zero value of Frame is the identity frame.
type Frame struct {
	// The rotation is stored with the identity matrix subtracted so
	// that the zero value is the identity rotation:
	//  d00 = x00-1, d11 = x11-1, d22 = x22-1
	d00, x01, x02 float64
	x10, d11, x12 float64
	x20, x21, d22 float64
	Origin        r3.Vec
}

// NewFrame returns the frame located at origin whose local axes are
// the world axes rotated by the unit quaternion q.
func NewFrame(origin r3.Vec, q r3.Rotation) Frame {
	x2 := q.Imag + q.Imag
	y2 := q.Jmag + q.Jmag
	z2 := q.Kmag + q.Kmag
	xx := q.Imag * x2
	yy := q.Jmag * y2
	zz := q.Kmag * z2
	xy := q.Imag * y2
	xz := q.Imag * z2
	yz := q.Jmag * z2
	wx := q.Real * x2
	wy := q.Real * y2
	wz := q.Real * z2

	var f Frame
	f.d00 = -(yy + zz)
	f.x10 = xy + wz
	f.x20 = xz - wy

	f.x01 = xy - wz
	f.d11 = -(xx + zz)
	f.x21 = yz + wx

	f.x02 = xz + wy
	f.x12 = yz - wx
	f.d22 = -(xx + yy)
	f.Origin = origin
	return f
}

// ToWorld maps a point in local coordinates to world coordinates.
func (f Frame) ToWorld(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: (f.d00+1)*v.X + f.x01*v.Y + f.x02*v.Z + f.Origin.X,
		Y: f.x10*v.X + (f.d11+1)*v.Y + f.x12*v.Z + f.Origin.Y,
		Z: f.x20*v.X + f.x21*v.Y + (f.d22+1)*v.Z + f.Origin.Z,
	}
}

// ToLocal maps a world point into the frame's local coordinates.
func (f Frame) ToLocal(p r3.Vec) r3.Vec {
	return f.RotateToLocal(r3.Sub(p, f.Origin))
}

// RotateToLocal applies the inverse rotation to a displacement,
// ignoring the origin.
func (f Frame) RotateToLocal(d r3.Vec) r3.Vec {
	return r3.Vec{
		X: (f.d00+1)*d.X + f.x10*d.Y + f.x20*d.Z,
		Y: f.x01*d.X + (f.d11+1)*d.Y + f.x21*d.Z,
		Z: f.x02*d.X + f.x12*d.Y + (f.d22+1)*d.Z,
	}
}

// Axis returns the world direction of local axis i (0, 1 or 2).
func (f Frame) Axis(i int) r3.Vec {
	switch i {
	case 0:
		return r3.Vec{X: f.d00 + 1, Y: f.x10, Z: f.x20}
	case 1:
		return r3.Vec{X: f.x01, Y: f.d11 + 1, Z: f.x21}
	case 2:
		return r3.Vec{X: f.x02, Y: f.x12, Z: f.d22 + 1}
	}
	panic("axis index out of range")
}

// Bounds returns the world bounding box of the local box [-half, half].
func (f Frame) Bounds(half r3.Vec) Box {
	// Extent of a rotated box along a world axis is the sum of the
	// absolute projections of the local half axes.
	ext := r3.Vec{}
	for i, h := range [3]float64{half.X, half.Y, half.Z} {
		ext = r3.Add(ext, r3.Scale(h, AbsElem(f.Axis(i))))
	}
	return Box{Min: r3.Sub(f.Origin, ext), Max: r3.Add(f.Origin, ext)}
}
