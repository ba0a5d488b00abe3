// Package shape implements the implicit grain shapes: for each shape class
// it solves the characteristic radius of a grain of given volume and tests
// whether a point in the grain's normalized local frame lies inside it.
package shape

import "fmt"

// Kind enumerates the grain shape classes.
type Kind int

const (
	Ellipsoid Kind = iota
	SuperEllipsoid
	CubeOctahedron
	Cylinder
	Unknown
)

func (k Kind) String() string {
	switch k {
	case Ellipsoid:
		return "ellipsoid"
	case SuperEllipsoid:
		return "superellipsoid"
	case CubeOctahedron:
		return "cubeoctahedron"
	case Cylinder:
		return "cylinder"
	}
	return "unknown"
}

// ParseKind parses the names returned by Kind.String.
func ParseKind(s string) (Kind, error) {
	for k := Ellipsoid; k <= Unknown; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return Unknown, fmt.Errorf("unknown shape class %q", s)
}

// Func is the shape function of one shape class. Implementations cache the
// shape exponent fitted by Radius and use it in Inside, so a Func must not
// be shared between goroutines.
type Func interface {
	// Init resets the cached shape exponent.
	Init()
	// Radius returns the largest semi-axis r1 of a grain of the given volume
	// with semi-axes r1, bOverA*r1 and cOverA*r1 and shape factor omega3.
	Radius(volume, omega3, bOverA, cOverA float64) float64
	// Inside evaluates the implicit surface at the normalized local
	// coordinates (x/r1, y/r2, z/r3). Values >= 0 are inside or on the boundary.
	Inside(a1, a2, a3 float64) float64
}

// New returns a fresh shape function for kind k.
func New(k Kind) Func {
	switch k {
	case Ellipsoid:
		return &ellipsoid{}
	case SuperEllipsoid:
		return &superEllipsoid{n: 2}
	case CubeOctahedron:
		return &cubeOctahedron{s: 2}
	case Cylinder:
		return &cylinder{}
	}
	return unknown{}
}
