package shape

import (
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/internal/d3"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/orient"
	"gonum.org/v1/gonum/spatial/r3"
)

// Body is a grain shape placed in the world: a shape function scaled by
// its semi-axes, rotated by the grain axis orientation and translated to the
// grain centroid. Like a signed distance function, Evaluate is negative
// inside the body.
type Body struct {
	fn    Func
	frame d3.Frame
	semi  r3.Vec
}

// Semi returns the semi-axes (r1, r1*bOverA, r1*cOverA).
func Semi(r1, bOverA, cOverA float64) r3.Vec {
	return r3.Vec{X: r1, Y: r1 * bOverA, Z: r1 * cOverA}
}

// NewBody places fn, whose exponent must already be fitted by Radius, at
// center with local axes rotated by axes.
func NewBody(fn Func, center r3.Vec, axes orient.Euler, semi r3.Vec) Body {
	return Body{
		fn:    fn,
		frame: d3.NewFrame(center, r3.Rotation(orient.EulerToQuat(axes))),
		semi:  semi,
	}
}

// Center returns the body centroid.
func (b Body) Center() r3.Vec { return b.frame.Origin }

// Semi returns the body semi-axes.
func (b Body) Semi() r3.Vec { return b.semi }

// InsideOffset evaluates the shape function at displacement d from the centroid.
func (b Body) InsideOffset(d r3.Vec) float64 {
	l := b.frame.RotateToLocal(d)
	return b.fn.Inside(l.X/b.semi.X, l.Y/b.semi.Y, l.Z/b.semi.Z)
}

// Inside evaluates the shape function at world point p.
func (b Body) Inside(p r3.Vec) float64 {
	return b.InsideOffset(r3.Sub(p, b.frame.Origin))
}

// Evaluate returns -Inside(p).
func (b Body) Evaluate(p r3.Vec) float64 {
	return -b.Inside(p)
}

// Bounds returns a box that completely contains the body.
func (b Body) Bounds() r3.Box {
	return r3.Box(b.frame.Bounds(b.semi))
}

// Scaled returns the body with every semi-axis multiplied by k.
func (b Body) Scaled(k float64) Body {
	b.semi = r3.Scale(k, b.semi)
	return b
}

// MoveTo returns the body translated to center.
func (b Body) MoveTo(center r3.Vec) Body {
	b.frame.Origin = center
	return b
}
