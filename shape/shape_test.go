package shape

import (
	"math"
	"testing"

	"github.com/BlueQuartzSoftware/DREAM3D-sub042/orient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

var kinds = []Kind{Ellipsoid, SuperEllipsoid, CubeOctahedron, Cylinder, Unknown}

func TestCenterIsInside(t *testing.T) {
	for _, k := range kinds {
		f := New(k)
		f.Init()
		f.Radius(10, 0.8, 0.7, 0.5)
		assert.Greater(t, f.Inside(0, 0, 0), 0.0, k.String())
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range kinds {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("torus")
	assert.Error(t, err)
}

// voxelVolume counts unit-normalized grid points inside f scaled by semi.
func voxelVolume(f Func, semi r3.Vec, h float64) float64 {
	n := 0
	lim := math.Max(semi.X, math.Max(semi.Y, semi.Z))
	for x := -lim + h/2; x < lim; x += h {
		for y := -lim + h/2; y < lim; y += h {
			for z := -lim + h/2; z < lim; z += h {
				if f.Inside(x/semi.X, y/semi.Y, z/semi.Z) >= 0 {
					n++
				}
			}
		}
	}
	return float64(n) * h * h * h
}

func TestRadiusSolvesVolume(t *testing.T) {
	const volume = 1000.0
	for _, k := range []Kind{Ellipsoid, SuperEllipsoid, CubeOctahedron, Cylinder} {
		for _, omega3 := range []float64{1, 0.9, 0.8} {
			f := New(k)
			f.Init()
			r1 := f.Radius(volume, omega3, 0.8, 0.6)
			require.Greater(t, r1, 0.0)
			got := voxelVolume(f, Semi(r1, 0.8, 0.6), 0.25)
			assert.InEpsilon(t, volume, got, 0.03, "%s omega3=%g", k, omega3)
		}
	}
}

func TestSuperEllipsoidTable(t *testing.T) {
	tbl := superEllipsoidTable()
	assert.InDelta(t, 1, tbl.omega[0], 1e-12, "n=2 is a sphere")
	for i := 1; i < tableLen; i++ {
		assert.Less(t, tbl.omega[i], tbl.omega[i-1])
	}
	assert.Equal(t, 2.0, tbl.nearest(1))
	assert.Equal(t, 10.0, tbl.nearest(0))
}

func TestCubeOctahedronTableMonotonic(t *testing.T) {
	tbl := cubeOctahedronTable()
	for i := 1; i < tableLen; i++ {
		assert.LessOrEqual(t, tbl.omega[i], tbl.omega[i-1])
	}
	assert.InDelta(t, 0.924, tbl.omega[0], 0.005, "cuboctahedron")
	assert.InDelta(t, 0.789, tbl.omega[tableLen-1], 0.005, "cube")
}

func TestInitResetsExponent(t *testing.T) {
	f := New(SuperEllipsoid)
	f.Radius(1, 0.75, 1, 1)
	sharp := f.Inside(0.9, 0.9, 0)
	f.Init()
	assert.Less(t, f.Inside(0.9, 0.9, 0), sharp)
	assert.Less(t, f.Inside(0.9, 0.9, 0), 0.0)
}

func TestBody(t *testing.T) {
	f := New(Ellipsoid)
	r1 := f.Radius(4*math.Pi/3*8, 1, 0.5, 0.25)
	assert.InDelta(t, 4, r1, 1e-9)
	center := r3.Vec{X: 10, Y: 10, Z: 10}
	// Long axis rotated onto world y.
	b := NewBody(f, center, orient.Euler{Phi1: math.Pi / 2}, Semi(r1, 0.5, 0.25))
	assert.Greater(t, b.Inside(r3.Vec{X: 10, Y: 13.9, Z: 10}), 0.0)
	assert.Less(t, b.Inside(r3.Vec{X: 13.9, Y: 10, Z: 10}), 0.0)
	assert.Less(t, b.Evaluate(center), 0.0)
	bb := b.Bounds()
	assert.InDelta(t, 6, bb.Min.Y, 1e-9)
	assert.InDelta(t, 14, bb.Max.Y, 1e-9)
	assert.Greater(t, b.Scaled(1.5).Inside(r3.Vec{X: 10, Y: 15, Z: 10}), 0.0)
}
