package orient

import (
	"math"
	"runtime"
	"sync"

	"github.com/BlueQuartzSoftware/DREAM3D-sub042/internal/d3"
	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/floats"
)

// Field is a voxelized orientation map.
type Field interface {
	Dims() d3.Dims
	// GrainAt returns the grain id of voxel i (flat index). Ids <= 0 are ignored.
	GrainAt(i int) int32
	// OrientationAt returns the orientation of voxel i.
	OrientationAt(i int) Quat
}

// KernelAverageMisorientation returns for every voxel the mean
// disorientation in degrees to its 6-connected neighbors that belong to the
// same grain. Voxels without such neighbors report 0. Work is split over z
// slabs; each output cell is written by exactly one goroutine.
func (g *Group) KernelAverageMisorientation(f Field, periodic bool) []float32 {
	dims := f.Dims()
	out := make([]float32, dims.Len())
	workers := runtime.NumCPU()
	if workers > dims[2] {
		workers = dims[2]
	}
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for z := w; z < dims[2]; z += workers {
				g.kamSlab(f, dims, z, periodic, out)
			}
		}(w)
	}
	wg.Wait()
	return out
}

func (g *Group) kamSlab(f Field, dims d3.Dims, z int, periodic bool, out []float32) {
	const toDeg = 180 / math32.Pi
	for y := 0; y < dims[1]; y++ {
		for x := 0; x < dims[0]; x++ {
			i := d3.Index{x, y, z}
			n := dims.Flat(i)
			id := f.GrainAt(n)
			if id <= 0 {
				continue
			}
			q := f.OrientationAt(n)
			var sum float32
			var count float32
			for _, off := range d3.Faces {
				j := i.Add(off)
				if periodic {
					j = dims.Wrap(j)
				} else if !dims.In(j) {
					continue
				}
				m := dims.Flat(j)
				if f.GrainAt(m) != id {
					continue
				}
				a := float32(g.DisorientationAngle(q, f.OrientationAt(m)))
				if math32.IsNaN(a) {
					continue
				}
				sum += a
				count++
			}
			if count > 0 {
				out[n] = math32.Min(sum/count*toDeg, float32(g.maxAngle))
			}
		}
	}
}

// MisorientationHistogram bins the disorientation angles between the
// orientations of every pair into nbins equal bins over [0, MaxAngle] and
// normalizes the result to unit sum. An empty pair list yields all zeros.
func (g *Group) MisorientationHistogram(q []Quat, pairs [][2]int, nbins int) []float64 {
	hist := make([]float64, nbins)
	if len(pairs) == 0 || nbins == 0 {
		return hist
	}
	width := g.maxAngle / float64(nbins)
	for _, p := range pairs {
		a := g.DisorientationAngle(q[p[0]], q[p[1]]) * 180 / math.Pi
		k := int(a / width)
		if k >= nbins {
			k = nbins - 1
		}
		hist[k]++
	}
	floats.Scale(1/floats.Sum(hist), hist)
	return hist
}
