package pack

import (
	"math"
	"runtime"
	"sync"

	"github.com/BlueQuartzSoftware/DREAM3D-sub042/internal/d3"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/shape"
	"gonum.org/v1/gonum/spatial/r3"
)

// parallelCells is the footprint size above which grid updates are split
// across goroutines.
const parallelCells = 1 << 13

// Grid counts how many grain footprints cover each cell of a coarse grid
// over the domain. Its filling error is the sum over cells of (count-1)²,
// zero when every cell is covered exactly once.
//
// A Grid is owned by one optimizer and is not safe for concurrent use.
type Grid struct {
	dims     d3.Dims
	cell     float64
	periodic bool
	counts   []int32
	err      int64
	workers  int
}

// NewGrid returns an empty grid over a domain of the given size with cells
// twice the voxel resolution.
func NewGrid(size r3.Vec, res float64, periodic bool) *Grid {
	cell := 2 * res
	dims := d3.Dims{
		max(1, int(math.Ceil(size.X/cell))),
		max(1, int(math.Ceil(size.Y/cell))),
		max(1, int(math.Ceil(size.Z/cell))),
	}
	return &Grid{
		dims:     dims,
		cell:     cell,
		periodic: periodic,
		counts:   make([]int32, dims.Len()),
		err:      int64(dims.Len()),
		workers:  runtime.NumCPU(),
	}
}

// Dims returns the number of cells along each axis.
func (g *Grid) Dims() d3.Dims { return g.dims }

// Cell returns the cell side length.
func (g *Grid) Cell() float64 { return g.cell }

// Error returns the current filling error.
func (g *Grid) Error() int64 { return g.err }

// Count returns the coverage of cell n.
func (g *Grid) Count(n int) int32 { return g.counts[n] }

// Footprint appends to dst the cells whose centers lie inside b.
func (g *Grid) Footprint(b shape.Body, dst []int32) []int32 {
	lo, hi := d3.Box(b.Bounds()).Cells(g.cell)
	g.dims.Range(lo, hi, g.periodic, func(i d3.Index, n int) {
		if b.Inside(i.Vec(g.cell)) >= 0 {
			dst = append(dst, int32(n))
		}
	})
	return dst
}

// Add covers the cells of fp once more and returns the change in filling
// error. A cell going from c to c+1 changes the error by 2c-1.
func (g *Grid) Add(fp []int32) int64 {
	d := g.apply(fp, func(n int32) int64 {
		c := g.counts[n]
		g.counts[n]++
		return int64(2*c - 1)
	})
	g.err += d
	return d
}

// Remove undoes Add. A cell going from c to c-1 changes the error by 3-2c.
func (g *Grid) Remove(fp []int32) int64 {
	d := g.apply(fp, func(n int32) int64 {
		c := g.counts[n]
		g.counts[n]--
		return int64(3 - 2*c)
	})
	g.err += d
	return d
}

// apply calls fn on every cell of fp and sums the results. Footprints hold
// distinct cells, so large ones are split over goroutines that each
// reduce their own share.
func (g *Grid) apply(fp []int32, fn func(n int32) int64) int64 {
	workers := g.workers
	if len(fp) < parallelCells || workers < 2 {
		var d int64
		for _, n := range fp {
			d += fn(n)
		}
		return d
	}
	per := (len(fp) + workers - 1) / workers
	var wg sync.WaitGroup
	deltas := make(chan int64, workers)
	for start := 0; start < len(fp); start += per {
		end := min(start+per, len(fp))
		wg.Add(1)
		go func(part []int32) {
			defer wg.Done()
			var d int64
			for _, n := range part {
				d += fn(n)
			}
			deltas <- d
		}(fp[start:end])
	}
	wg.Wait()
	close(deltas)
	var d int64
	for v := range deltas {
		d += v
	}
	return d
}

// recount returns the filling error computed from scratch.
func (g *Grid) recount() int64 {
	var e int64
	for _, c := range g.counts {
		e += int64(c-1) * int64(c-1)
	}
	return e
}
