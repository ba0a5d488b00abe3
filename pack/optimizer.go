// Package pack generates grains matching the statistics of a set of phases,
// packs them into a domain by minimizing the overlap of their footprints and
// hands the result to the voxel assigner.
//
// The optimizer runs four stages in order: Generate, InitialPlacement,
// Refine and Finalize. Run executes all of them.
package pack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/BlueQuartzSoftware/DREAM3D-sub042/grain"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/internal/d3"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/shape"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/stats"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/voxel"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
)

// Config configures an Optimizer.
type Config struct {
	// Dims is the number of voxels along each axis of the domain.
	Dims       d3.Dims
	Resolution float64
	Periodic   bool
	Seed       uint64
	// MaxGenerateIterations caps candidate draws. Zero derives a cap from
	// the domain volume.
	MaxGenerateIterations int
	// RefineIterationsPerGrain defaults to 100.
	RefineIterationsPerGrain int
	// MaxRefineIterations truncates the refine stage when positive.
	MaxRefineIterations int
	// Logger receives progress messages. Nil discards them.
	Logger *log.Logger
	// Sink receives the finished volume when set.
	Sink voxel.Sink
}

// ConfigFromDomain converts the domain section of a configuration file.
func ConfigFromDomain(d stats.DomainConfig) Config {
	return Config{
		Dims:                     d3.Dims{d.XDim, d.YDim, d.ZDim},
		Resolution:               d.Resolution,
		Periodic:                 d.Periodic,
		Seed:                     uint64(d.Seed),
		MaxGenerateIterations:    d.MaxGenerateIterations,
		RefineIterationsPerGrain: d.RefineIterationsPerGrain,
		MaxRefineIterations:      d.MaxRefineIterations,
	}
}

// Optimizer packs grains into a domain. It owns its packing grid
// exclusively and is not safe for concurrent use.
type Optimizer struct {
	cfg    Config
	phases []stats.Phase
	rnd    *rand.Rand
	gen    *grain.Generator
	log    *log.Logger
	domain d3.Box

	grid   *Grid
	grains []grain.Grain
	bodies []shape.Body
	// fps[i] is the grid footprint of grains[i] while placed.
	fps   [][]int32
	spare []int32
}

var errDomain = errors.New("pack: domain dimensions and resolution must be positive")

// New returns an optimizer over phases, which must have been prepared with
// stats.Prepare.
func New(phases []stats.Phase, cfg Config) (*Optimizer, error) {
	if cfg.Dims[0] <= 0 || cfg.Dims[1] <= 0 || cfg.Dims[2] <= 0 || !(cfg.Resolution > 0) {
		return nil, errDomain
	}
	if len(phases) == 0 {
		return nil, &stats.ConfigError{Field: "phases", Err: errors.New("no phases")}
	}
	if cfg.RefineIterationsPerGrain <= 0 {
		cfg.RefineIterationsPerGrain = 100
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	rnd := rand.New(rand.NewSource(cfg.Seed))
	size := r3.Scale(cfg.Resolution, r3.Vec{X: float64(cfg.Dims[0]), Y: float64(cfg.Dims[1]), Z: float64(cfg.Dims[2])})
	return &Optimizer{
		cfg:    cfg,
		phases: phases,
		rnd:    rnd,
		gen:    grain.NewGenerator(phases, rnd),
		log:    cfg.Logger,
		domain: d3.Box{Max: size},
		grid:   NewGrid(size, cfg.Resolution, cfg.Periodic),
	}, nil
}

// Grains returns a copy of the current grains.
func (o *Optimizer) Grains() []grain.Grain {
	return append([]grain.Grain(nil), o.grains...)
}

// FillingError returns the filling error of the packing grid.
func (o *Optimizer) FillingError() int64 { return o.grid.Error() }

// Domain returns the physical extent of the domain.
func (o *Optimizer) Domain() r3.Box { return r3.Box(o.domain) }

// Result is the outcome of Run.
type Result struct {
	// Grains are the surviving grains after voxel assignment, numbered
	// 1..n as in Volume.
	Grains []grain.Grain
	Volume *voxel.Volume
	// Assignment summarizes the voxel assignment.
	Assignment voxel.Summary
	// FillingError is the packing grid error after refinement.
	FillingError int64
	// Scores compares the packed grains with the phase targets.
	Scores []PhaseScore
	// Stalls lists stages that hit their iteration caps but still
	// produced a usable state.
	Stalls []*StallError
}

// Run executes Generate, InitialPlacement, Refine and Finalize. On a
// generate stall or cancellation the partial grains are returned in
// Result.Grains along with the error.
func (o *Optimizer) Run(ctx context.Context) (*Result, error) {
	res := &Result{}
	if err := o.Generate(ctx); err != nil {
		res.Grains = o.Grains()
		return res, err
	}
	if err := o.InitialPlacement(ctx); err != nil {
		res.Grains = o.Grains()
		return res, err
	}
	err := o.Refine(ctx)
	var stall *StallError
	switch {
	case errors.As(err, &stall):
		o.log.Printf("pack: %v", err)
		res.Stalls = append(res.Stalls, stall)
	case err != nil:
		res.Grains = o.Grains()
		return res, err
	}
	res.FillingError = o.grid.Error()
	o.CountNeighbors()
	res.Scores = o.Scores()
	for i, s := range res.Scores {
		o.log.Printf("pack: phase %s: size score %.4f, neighbor score %.4f", o.phases[i].Name, s.Size, s.Neighbors)
	}

	vol, grains, sum, err := o.Finalize()
	res.Volume, res.Grains, res.Assignment = vol, grains, sum
	if err != nil {
		return res, err
	}
	if o.cfg.Sink != nil {
		if err := o.cfg.Sink.WriteVolume(vol, grains); err != nil {
			return res, fmt.Errorf("pack: writing volume: %w", err)
		}
	}
	return res, nil
}

// Finalize rasterizes the placed grains into a new volume.
func (o *Optimizer) Finalize() (*voxel.Volume, []grain.Grain, voxel.Summary, error) {
	vol, err := voxel.NewVolume(o.cfg.Dims, o.cfg.Resolution, o.cfg.Periodic)
	if err != nil {
		return nil, nil, voxel.Summary{}, err
	}
	a := voxel.NewAssigner(vol, o.phases, o.log)
	grains, sum, err := a.Assign(o.grains)
	return vol, grains, sum, err
}

// targetVolume is the grain volume to generate. Non-periodic domains need
// extra grains for the parts of edge grains that fall outside: the domain
// is grown by the largest mean grain diameter on every axis.
func (o *Optimizer) targetVolume() float64 {
	size := o.domain.Size()
	if o.cfg.Periodic {
		return size.X * size.Y * size.Z
	}
	d := 0.0
	for i := range o.phases {
		d = math.Max(d, o.phases[i].MeanDiameter())
	}
	return (size.X + d) * (size.Y + d) * (size.Z + d)
}

// checkCtx is called between moves.
func checkCtx(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
