// Package grain defines the grain record and samples candidate grains from
// the statistics of a phase.
package grain

import (
	"math"

	"github.com/BlueQuartzSoftware/DREAM3D-sub042/orient"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/shape"
	"gonum.org/v1/gonum/spatial/r3"
)

// Grain is one grain of a synthetic microstructure. ID 0 is reserved for
// unassigned voxels.
type Grain struct {
	ID    int
	Phase int
	// Volume and Diameter are the volume and equivalent sphere diameter in
	// physical units.
	Volume   float64
	Diameter float64
	SizeBin  int
	// Axis ratios r2/r1 and r3/r1 with r1 >= r2 >= r3.
	BOverA, COverA float64
	// Semi holds the semi-axis lengths r1, r2, r3.
	Semi      r3.Vec
	AxisEuler orient.Euler
	Omega3    float64
	// Neighbors counts the grains within 1, 2 and 3 radii.
	Neighbors [3]int
	Centroid  r3.Vec
	// Orientation is the crystallographic orientation.
	Orientation orient.Euler
	Quat        orient.Quat
	ODFBin      int
	// Voxels is the number of voxels owned after assignment.
	Voxels int
}

// Radius returns the equivalent sphere radius.
func (g *Grain) Radius() float64 { return g.Diameter / 2 }

// AxisLengths returns the normalized semi-axes (1, b/a, c/a).
func (g *Grain) AxisLengths() r3.Vec {
	return r3.Vec{X: 1, Y: g.BOverA, Z: g.COverA}
}

// Body returns the grain's shape of class k placed at its centroid. Every
// call fits a fresh shape function, so bodies never share state.
func (g *Grain) Body(k shape.Kind) shape.Body {
	fn := shape.New(k)
	fn.Init()
	r1 := fn.Radius(g.Volume, g.Omega3, g.BOverA, g.COverA)
	return shape.NewBody(fn, g.Centroid, g.AxisEuler, shape.Semi(r1, g.BOverA, g.COverA))
}

// SphereVolume returns the volume of a sphere of diameter d.
func SphereVolume(d float64) float64 {
	return math.Pi / 6 * d * d * d
}

// SphereDiameter is the inverse of SphereVolume.
func SphereDiameter(v float64) float64 {
	return math.Cbrt(6 * v / math.Pi)
}
