package voxel

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"runtime"
	"sync"

	"github.com/BlueQuartzSoftware/DREAM3D-sub042/grain"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/internal/d3"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/shape"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/stats"
)

// ErrUnfilled is returned when gap filling cannot reach every voxel. The
// volume is left partially assigned.
var ErrUnfilled = errors.New("voxel: unassigned voxels remain after gap filling")

const (
	// fillStep is the growth of the shape scale per gap filling step.
	fillStep = 0.05
	// defaultFillSteps allows shapes to grow to 51 times their size.
	defaultFillSteps = 1000
)

// Summary describes what an assignment changed.
type Summary struct {
	// Contested is the number of voxels claimed by more than one grain in
	// the first pass.
	Contested int
	// Fragments is the number of disconnected fragments deleted by cleanup.
	Fragments int
	// Removed is the number of input grains without surviving voxels.
	Removed int
	// FillScale is the largest shape scale gap filling had to reach. Every
	// voxel lies inside its grain's body scaled by FillScale.
	FillScale float64
}

// Assigner rasterizes packed grains into a Volume.
type Assigner struct {
	vol    *Volume
	phases []stats.Phase
	log    *log.Logger

	// MaxFillSteps bounds each gap filling pass.
	MaxFillSteps int
	// Workers is the number of goroutines rasterizing footprints.
	Workers int
}

// NewAssigner returns an assigner writing into vol. A nil logger discards
// output.
func NewAssigner(vol *Volume, phases []stats.Phase, logger *log.Logger) *Assigner {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Assigner{
		vol:          vol,
		phases:       phases,
		log:          logger,
		MaxFillSteps: defaultFillSteps,
		Workers:      runtime.NumCPU(),
	}
}

// assignment is the working state of one Assign call.
type assignment struct {
	grains []grain.Grain
	bodies []shape.Body
	// counts[id] is the number of voxels owned by grain id.
	counts []int
	sum    Summary
}

// Assign rasterizes grains in slice order and returns the surviving grains
// renumbered 1..n with their voxel counts. The input slice is not modified.
// On ErrUnfilled the returned grains and volume hold the partial result.
func (a *Assigner) Assign(grains []grain.Grain) ([]grain.Grain, Summary, error) {
	st := &assignment{
		grains: append([]grain.Grain(nil), grains...),
		counts: make([]int, len(grains)+1),
		sum:    Summary{FillScale: 1},
	}
	for i := range a.vol.IDs {
		a.vol.IDs[i] = Unassigned
	}
	for i := range st.grains {
		g := &st.grains[i]
		if g.Phase < 0 || g.Phase >= len(a.phases) {
			return nil, st.sum, fmt.Errorf("voxel: grain %d has unknown phase %d", i+1, g.Phase)
		}
		g.ID = i + 1
		st.bodies = append(st.bodies, g.Body(a.phases[g.Phase].Shape))
	}

	a.firstPass(st)
	a.renumber(st)
	a.log.Printf("voxel: first pass placed %d grains, %d contested voxels", len(st.grains), st.sum.Contested)

	err := a.fill(st)
	if err == nil {
		a.cleanup(st)
		a.renumber(st)
		err = a.fill(st)
		a.renumber(st)
	}
	for i := range st.grains {
		st.grains[i].Voxels = st.counts[i+1]
	}
	a.vol.paint(st.grains)
	a.vol.updateKAM(a.phases)
	a.log.Printf("voxel: %d grains, %d fragments removed, fill scale %.2f, mean KAM %.3g°",
		len(st.grains), st.sum.Fragments, st.sum.FillScale, a.vol.MeanKAM())
	return st.grains, st.sum, err
}

// firstPass commits the footprints of all grains in id order. A voxel
// claimed twice becomes Contested and is taken from its first owner.
// Footprints are computed concurrently.
func (a *Assigner) firstPass(st *assignment) {
	fps := make([][]int32, len(st.bodies))
	workers := a.Workers
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fps[i] = a.footprint(st.bodies[i], nil)
			}
		}()
	}
	for i := range st.bodies {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	ids := a.vol.IDs
	for i, fp := range fps {
		id := int32(i + 1)
		for _, n := range fp {
			switch cur := ids[n]; {
			case cur == Unassigned:
				ids[n] = id
				st.counts[id]++
			case cur > 0:
				st.counts[cur]--
				ids[n] = Contested
				st.sum.Contested++
			}
		}
	}
}

// footprint appends the flat indices of the voxels whose centers lie
// inside b to dst. Every voxel appears at most once.
func (a *Assigner) footprint(b shape.Body, dst []int32) []int32 {
	a.visit(b, func(n int, val float64) {
		if val >= 0 {
			dst = append(dst, int32(n))
		}
	})
	return dst
}

// visit calls fn with the flat index and inside value of every voxel in
// the bounding box of b. Periodic volumes wrap the box around the faces;
// otherwise it is clipped.
func (a *Assigner) visit(b shape.Body, fn func(n int, val float64)) {
	v := a.vol
	lo, hi := d3.Box(b.Bounds()).Cells(v.res)
	v.dims.Range(lo, hi, v.periodic, func(i d3.Index, n int) {
		fn(n, b.Inside(i.Vec(v.res)))
	})
}

// fill grows all grains in steps of fillStep until every voxel has an
// owner. A voxel inside several grown grains goes to the grain with the
// largest inside value.
func (a *Assigner) fill(st *assignment) error {
	ids := a.vol.IDs
	owner := make([]int32, len(ids))
	best := make([]float64, len(ids))
	scale := 1.0
	for step := 0; ; step++ {
		open := 0
		for _, id := range ids {
			if id <= 0 {
				open++
			}
		}
		if open == 0 {
			st.sum.FillScale = math.Max(st.sum.FillScale, scale)
			return nil
		}
		if step >= a.MaxFillSteps || len(st.bodies) == 0 {
			st.sum.FillScale = math.Max(st.sum.FillScale, scale)
			return fmt.Errorf("%w: %d voxels after %d steps", ErrUnfilled, open, step)
		}
		scale += fillStep
		v := a.vol
		for i, b := range st.bodies {
			id := int32(i + 1)
			b = b.Scaled(scale)
			lo, hi := d3.Box(b.Bounds()).Cells(v.res)
			v.dims.Range(lo, hi, v.periodic, func(idx d3.Index, n int) {
				if ids[n] > 0 {
					return
				}
				val := b.Inside(idx.Vec(v.res))
				if val >= 0 && (owner[n] == 0 || val > best[n]) {
					owner[n], best[n] = id, val
				}
			})
		}
		for n, id := range owner {
			if id == 0 {
				continue
			}
			ids[n] = id
			st.counts[id]++
			owner[n] = 0
		}
	}
}

// renumber drops grains without voxels and assigns contiguous ids to the rest.
func (a *Assigner) renumber(st *assignment) {
	remap := make([]int32, len(st.grains)+1)
	kept := st.grains[:0]
	bodies := st.bodies[:0]
	counts := []int{0}
	for i := range st.grains {
		old := i + 1
		if st.counts[old] <= 0 {
			st.sum.Removed++
			continue
		}
		g := st.grains[i]
		g.ID = len(kept) + 1
		remap[old] = int32(g.ID)
		kept = append(kept, g)
		bodies = append(bodies, st.bodies[i])
		counts = append(counts, st.counts[old])
	}
	for n, id := range a.vol.IDs {
		if id > 0 {
			a.vol.IDs[n] = remap[id]
		}
	}
	st.grains, st.bodies, st.counts = kept, bodies, counts
}
