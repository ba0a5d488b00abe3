package pack

import (
	"context"

	"github.com/BlueQuartzSoftware/DREAM3D-sub042/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// placementTrials is the number of random relocations tried per grain
// during initial placement.
const placementTrials = 10

// InitialPlacement puts every grain at the domain center and then tries
// placementTrials random relocations per grain, keeping those that do not
// increase the filling error.
func (o *Optimizer) InitialPlacement(ctx context.Context) error {
	// Rebuild from an empty grid so the stage can be rerun.
	o.grid = NewGrid(o.domain.Size(), o.cfg.Resolution, o.cfg.Periodic)
	o.bodies = o.bodies[:0]
	o.fps = o.fps[:0]
	center := o.domain.Center()
	for i := range o.grains {
		g := &o.grains[i]
		g.Centroid = center
		b := g.Body(o.phases[g.Phase].Shape)
		fp := o.grid.Footprint(b, nil)
		o.grid.Add(fp)
		o.bodies = append(o.bodies, b)
		o.fps = append(o.fps, fp)
	}
	for i := range o.grains {
		if err := checkCtx(ctx); err != nil {
			return err
		}
		for t := 0; t < placementTrials; t++ {
			o.move(i, o.domain.Random(o.rnd))
		}
	}
	o.log.Printf("pack: initial placement filling error %d", o.grid.Error())
	return nil
}

// Refine runs RefineIterationsPerGrain moves per grain. Even moves jump a
// random grain to a random location, odd moves nudge one by at most two
// grid cells per axis. A move is kept if the filling error does not
// increase.
//
// If MaxRefineIterations truncates the stage, Refine finishes the
// truncated run and returns a *StallError; the placement stays usable.
func (o *Optimizer) Refine(ctx context.Context) error {
	n := len(o.grains)
	if n == 0 {
		return nil
	}
	iters := o.cfg.RefineIterationsPerGrain * n
	want := iters
	if m := o.cfg.MaxRefineIterations; m > 0 && iters > m {
		iters = m
	}
	start := o.grid.Error()
	accepted := 0
	reach := 2 * o.grid.Cell()
	for it := 0; it < iters; it++ {
		if err := checkCtx(ctx); err != nil {
			return err
		}
		i := o.rnd.Intn(n)
		var c r3.Vec
		if it%2 == 0 {
			c = o.domain.Random(o.rnd)
		} else {
			off := r3.Vec{
				X: reach * (2*o.rnd.Float64() - 1),
				Y: reach * (2*o.rnd.Float64() - 1),
				Z: reach * (2*o.rnd.Float64() - 1),
			}
			c = o.confine(r3.Add(o.grains[i].Centroid, off))
		}
		if o.move(i, c) {
			accepted++
		}
		if iters >= 10 && (it+1)%(iters/10) == 0 {
			o.log.Printf("pack: refine %d/%d filling error %d", it+1, iters, o.grid.Error())
		}
	}
	o.log.Printf("pack: refine accepted %d of %d moves, filling error %d -> %d", accepted, iters, start, o.grid.Error())
	if iters < want {
		return &StallError{Stage: StageRefine, Iterations: iters, Reached: float64(iters), Target: float64(want), Partial: o.Grains()}
	}
	return nil
}

// confine maps c back into the domain: wrapped if periodic, clamped otherwise.
func (o *Optimizer) confine(c r3.Vec) r3.Vec {
	if o.cfg.Periodic {
		return d3.Wrap(c, o.domain.Size())
	}
	return d3.Clamp(c, o.domain.Min, o.domain.Max)
}

// move relocates grain i to c if that does not increase the filling
// error and reports whether it did.
func (o *Optimizer) move(i int, c r3.Vec) bool {
	before := o.grid.Error()
	o.grid.Remove(o.fps[i])
	b := o.bodies[i].MoveTo(c)
	fp := o.grid.Footprint(b, o.spare[:0])
	o.grid.Add(fp)
	if o.grid.Error() > before {
		o.grid.Remove(fp)
		o.grid.Add(o.fps[i])
		o.spare = fp
		return false
	}
	o.spare = o.fps[i]
	o.fps[i] = fp
	o.bodies[i] = b
	o.grains[i].Centroid = c
	return true
}
