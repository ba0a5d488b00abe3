// Package voxel rasterizes packed grains into a voxel volume and resolves
// overlaps, gaps and disconnected fragments.
package voxel

import (
	"errors"

	"github.com/BlueQuartzSoftware/DREAM3D-sub042/grain"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/internal/d3"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/orient"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/stats"
	"github.com/soypat/glgl/math/ms3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Special grain ids.
const (
	Unassigned int32 = 0
	// Contested marks a voxel claimed by more than one grain.
	Contested int32 = -1
)

// Volume is a dense voxel grid of grain ids, phase ids and Euler angles.
// Phase ids start at 1; 0 is the phase of unassigned voxels.
type Volume struct {
	dims     d3.Dims
	res      float64
	periodic bool

	IDs    []int32
	Phases []int32
	// Euler holds the Bunge angles (phi1, Phi, phi2) of every voxel in radians.
	Euler []ms3.Vec
	// KAM is the kernel average misorientation of every voxel in degrees.
	KAM []float32
}

var errDims = errors.New("voxel: dimensions and resolution must be positive")

// NewVolume allocates a volume of dims voxels with side length res.
func NewVolume(dims d3.Dims, res float64, periodic bool) (*Volume, error) {
	if dims[0] <= 0 || dims[1] <= 0 || dims[2] <= 0 || !(res > 0) {
		return nil, errDims
	}
	n := dims.Len()
	return &Volume{
		dims:     dims,
		res:      res,
		periodic: periodic,
		IDs:      make([]int32, n),
		Phases:   make([]int32, n),
		Euler:    make([]ms3.Vec, n),
		KAM:      make([]float32, n),
	}, nil
}

// Dims returns the number of voxels along each axis.
func (v *Volume) Dims() d3.Dims { return v.dims }

// Resolution returns the voxel side length.
func (v *Volume) Resolution() float64 { return v.res }

// Periodic reports whether the volume wraps around at its faces.
func (v *Volume) Periodic() bool { return v.periodic }

// Size returns the physical extent of the volume.
func (v *Volume) Size() r3.Vec {
	return r3.Scale(v.res, r3.Vec{X: float64(v.dims[0]), Y: float64(v.dims[1]), Z: float64(v.dims[2])})
}

// Index returns the flat index of voxel i.
func (v *Volume) Index(i d3.Index) int { return v.dims.Flat(i) }

// Coords returns the center of voxel n (flat index).
func (v *Volume) Coords(n int) r3.Vec { return v.dims.Unflat(n).Vec(v.res) }

// Counts returns the number of voxels of every id in [0, maxID]. Negative
// ids are not counted.
func (v *Volume) Counts(maxID int) []int {
	c := make([]int, maxID+1)
	for _, id := range v.IDs {
		if id >= 0 && int(id) <= maxID {
			c[id]++
		}
	}
	return c
}

// GrainAt implements orient.Field.
func (v *Volume) GrainAt(n int) int32 { return v.IDs[n] }

// OrientationAt implements orient.Field.
func (v *Volume) OrientationAt(n int) orient.Quat {
	e := v.Euler[n]
	return orient.EulerToQuat(orient.Euler{Phi1: float64(e.X), Phi: float64(e.Y), Phi2: float64(e.Z)})
}

// paint writes phase and orientation of every voxel from its grain.
// grains[k] must have ID k+1.
func (v *Volume) paint(grains []grain.Grain) {
	for n, id := range v.IDs {
		if id <= 0 || int(id) > len(grains) {
			v.Phases[n] = 0
			v.Euler[n] = ms3.Vec{}
			continue
		}
		g := &grains[id-1]
		v.Phases[n] = int32(g.Phase + 1)
		v.Euler[n] = ms3.Vec{
			X: float32(g.Orientation.Phi1),
			Y: float32(g.Orientation.Phi),
			Z: float32(g.Orientation.Phi2),
		}
	}
}

// updateKAM recomputes KAM with the symmetry group of each voxel's phase.
// Phase ids in Phases index phases from 1.
func (v *Volume) updateKAM(phases []stats.Phase) {
	for n := range v.KAM {
		v.KAM[n] = 0
	}
	for ph := range phases {
		kam := phases[ph].Group().KernelAverageMisorientation(v, v.periodic)
		for n, p := range v.Phases {
			if p == int32(ph+1) {
				v.KAM[n] = kam[n]
			}
		}
	}
}

// MeanKAM returns the mean KAM over assigned voxels.
func (v *Volume) MeanKAM() float64 {
	sum, n := 0.0, 0
	for i, id := range v.IDs {
		if id > 0 {
			sum += float64(v.KAM[i])
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Sink consumes a finished volume and its grain table.
type Sink interface {
	WriteVolume(v *Volume, grains []grain.Grain) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(v *Volume, grains []grain.Grain) error

// WriteVolume calls f.
func (f SinkFunc) WriteVolume(v *Volume, grains []grain.Grain) error { return f(v, grains) }
