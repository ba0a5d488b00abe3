package pack

import (
	"context"
	"errors"
	"testing"

	"github.com/BlueQuartzSoftware/DREAM3D-sub042/grain"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/internal/d3"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/shape"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/stats"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/voxel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func newOptimizer(t testing.TB, n int, periodic bool, mod func(*Config)) *Optimizer {
	t.Helper()
	phases, err := stats.Prepare(stats.Phases{stats.Equiaxed("primary", 2, 0.2, 5, 40, 2.5)})
	require.NoError(t, err)
	cfg := Config{Dims: d3.Dims{n, n, n}, Resolution: 1, Periodic: periodic, Seed: 1}
	if mod != nil {
		mod(&cfg)
	}
	o, err := New(phases, cfg)
	require.NoError(t, err)
	return o
}

func sphere(center r3.Vec, d float64) grain.Grain {
	return grain.Grain{
		Volume:   grain.SphereVolume(d),
		Diameter: d,
		BOverA:   1,
		COverA:   1,
		Omega3:   1,
		Centroid: center,
	}
}

func TestGridAddRemoveSymmetric(t *testing.T) {
	for _, periodic := range []bool{false, true} {
		size := d3.Elem(128)
		g := NewGrid(size, 1, periodic)
		assert.Equal(t, d3.Dims{64, 64, 64}, g.Dims())
		assert.Equal(t, int64(g.Dims().Len()), g.Error(), "empty cells each contribute one")

		small := sphere(r3.Vec{X: 3, Y: 3, Z: 3}, 12)
		big := sphere(r3.Vec{X: 64, Y: 64, Z: 64}, 60)
		var fps [][]int32
		for _, gr := range []grain.Grain{small, big, small} {
			b := gr.Body(shape.Ellipsoid)
			fp := g.Footprint(b, nil)
			require.NotEmpty(t, fp)
			g.Add(fp)
			assert.Equal(t, g.recount(), g.Error())
			fps = append(fps, fp)
		}
		assert.Greater(t, len(fps[1]), parallelCells, "exercise the parallel path")
		for i := len(fps) - 1; i >= 0; i-- {
			g.Remove(fps[i])
			assert.Equal(t, g.recount(), g.Error())
		}
		assert.Equal(t, int64(g.Dims().Len()), g.Error())
		for n := 0; n < g.Dims().Len(); n++ {
			require.Equal(t, int32(0), g.Count(n))
		}
	}
}

func TestGridDeltas(t *testing.T) {
	g := NewGrid(d3.Elem(4), 1, false)
	fp := []int32{0, 1}
	assert.Equal(t, int64(-2), g.Add(fp), "covering empty cells")
	assert.Equal(t, int64(2), g.Add(fp), "second cover")
	assert.Equal(t, int64(6), g.Add(fp), "third cover")
	assert.Equal(t, int64(-6), g.Remove(fp))
	assert.Equal(t, int64(8), g.Error())
}

func TestBhattacharyya(t *testing.T) {
	target := []float64{0.25, 0.5, 0.25}
	assert.InDelta(t, 1, bhattacharyya([]float64{1, 2, 1}, target), 1e-12)
	assert.InDelta(t, 0, bhattacharyya([]float64{0, 0, 0}, target), 1e-12)
	assert.Less(t, bhattacharyya([]float64{4, 0, 0}, target), 0.6)
}

func TestGenerateReachesTarget(t *testing.T) {
	o := newOptimizer(t, 32, true, nil)
	require.NoError(t, o.Generate(context.Background()))
	grains := o.Grains()
	require.NotEmpty(t, grains)
	vol := 0.0
	for i, g := range grains {
		assert.Equal(t, i+1, g.ID)
		vol += g.Volume
	}
	assert.GreaterOrEqual(t, vol, 32.0*32*32)
	assert.Less(t, vol-grains[len(grains)-1].Volume, 32.0*32*32, "stops at the first grain past the target")

	np := newOptimizer(t, 32, false, nil)
	assert.Greater(t, np.targetVolume(), o.targetVolume(), "open domains are inflated")
}

func TestGenerateStall(t *testing.T) {
	o := newOptimizer(t, 32, true, func(c *Config) { c.MaxGenerateIterations = 5 })
	err := o.Generate(context.Background())
	var stall *StallError
	require.True(t, errors.As(err, &stall))
	assert.True(t, errors.Is(err, ErrStalled))
	assert.Equal(t, StageGenerate, stall.Stage)
	assert.Equal(t, 5, stall.Iterations)
	assert.LessOrEqual(t, len(stall.Partial), 5)
	assert.Contains(t, stall.Error(), "generate")

	res, err := o.Run(context.Background())
	assert.True(t, errors.Is(err, ErrStalled))
	assert.Nil(t, res.Volume)
	assert.Equal(t, len(o.Grains()), len(res.Grains))
}

func TestGenerateCanceled(t *testing.T) {
	o := newOptimizer(t, 32, true, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.True(t, errors.Is(o.Generate(ctx), context.Canceled))
}

// checkGrid verifies that the grid holds exactly the footprints of the
// grains at their centroids.
func checkGrid(t *testing.T, o *Optimizer) {
	t.Helper()
	g := NewGrid(o.domain.Size(), o.cfg.Resolution, o.cfg.Periodic)
	for i := range o.grains {
		gr := o.grains[i]
		g.Add(g.Footprint(gr.Body(o.phases[gr.Phase].Shape), nil))
	}
	assert.Equal(t, g.Error(), o.grid.Error())
	assert.Equal(t, o.grid.recount(), o.grid.Error())
	assert.Equal(t, g.counts, o.grid.counts)
}

func TestPlacementNeverIncreasesError(t *testing.T) {
	for _, periodic := range []bool{false, true} {
		o := newOptimizer(t, 24, periodic, nil)
		ctx := context.Background()
		require.NoError(t, o.Generate(ctx))
		require.NoError(t, o.InitialPlacement(ctx))
		checkGrid(t, o)
		placed := o.FillingError()
		require.NoError(t, o.Refine(ctx))
		checkGrid(t, o)
		assert.LessOrEqual(t, o.FillingError(), placed)
		for _, g := range o.grains {
			assert.True(t, d3.Box(o.Domain()).Contains(g.Centroid), "centroid %v left the domain", g.Centroid)
		}
	}
}

func TestRefineTruncated(t *testing.T) {
	o := newOptimizer(t, 24, false, func(c *Config) { c.MaxRefineIterations = 50 })
	ctx := context.Background()
	require.NoError(t, o.Generate(ctx))
	require.NoError(t, o.InitialPlacement(ctx))
	err := o.Refine(ctx)
	var stall *StallError
	require.True(t, errors.As(err, &stall))
	assert.Equal(t, StageRefine, stall.Stage)
	assert.Equal(t, 50, stall.Iterations)
	checkGrid(t, o)

	ctx, cancel := context.WithCancel(ctx)
	cancel()
	assert.True(t, errors.Is(o.Refine(ctx), context.Canceled))
}

func TestCountNeighbors(t *testing.T) {
	o := newOptimizer(t, 64, false, nil)
	o.grains = []grain.Grain{
		sphere(r3.Vec{X: 10, Y: 32, Z: 32}, 10),
		sphere(r3.Vec{X: 18, Y: 32, Z: 32}, 10),
		sphere(r3.Vec{X: 40, Y: 32, Z: 32}, 10),
	}
	o.CountNeighbors()
	assert.Equal(t, [3]int{0, 1, 1}, o.grains[0].Neighbors)
	assert.Equal(t, [3]int{0, 1, 1}, o.grains[1].Neighbors)
	assert.Equal(t, [3]int{0, 0, 0}, o.grains[2].Neighbors)

	p := newOptimizer(t, 32, true, nil)
	p.grains = []grain.Grain{
		sphere(r3.Vec{X: 2, Y: 16, Z: 16}, 10),
		sphere(r3.Vec{X: 30, Y: 16, Z: 16}, 10),
	}
	p.CountNeighbors()
	assert.Equal(t, [3]int{1, 1, 1}, p.grains[0].Neighbors, "neighbors across the periodic face")
	assert.Equal(t, [3]int{1, 1, 1}, p.grains[1].Neighbors)

	// A small grain inside the reach of a big one counts it, and the big
	// one counts the small one, although the distance exceeds the small
	// grain's own radius.
	u := newOptimizer(t, 64, false, nil)
	u.grains = []grain.Grain{
		sphere(r3.Vec{X: 20, Y: 32, Z: 32}, 4),
		sphere(r3.Vec{X: 28, Y: 32, Z: 32}, 20),
		sphere(r3.Vec{X: 45, Y: 32, Z: 32}, 4),
	}
	u.CountNeighbors()
	assert.Equal(t, [3]int{1, 1, 1}, u.grains[0].Neighbors, "unequal radii use the larger")
	assert.Equal(t, [3]int{1, 2, 2}, u.grains[1].Neighbors)
	assert.Equal(t, [3]int{0, 1, 1}, u.grains[2].Neighbors)
}

func TestScores(t *testing.T) {
	o := newOptimizer(t, 32, true, nil)
	ctx := context.Background()
	require.NoError(t, o.Generate(ctx))
	require.NoError(t, o.InitialPlacement(ctx))
	o.CountNeighbors()
	scores := o.Scores()
	require.Len(t, scores, 1)
	s := scores[0]
	assert.Equal(t, len(o.grains), s.Grains)
	assert.Greater(t, s.Size, 0.9)
	assert.LessOrEqual(t, s.Size, 1+1e-9)
	assert.GreaterOrEqual(t, s.Neighbors, 0.0)
	assert.Len(t, s.SizeHistogram, o.phases[0].NumBins())
	assert.Len(t, s.Misorientation, MisorientationBins)
}

func TestRunEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("packs a 64³ domain")
	}
	var sunk int
	o := newOptimizer(t, 64, false, func(c *Config) {
		c.Sink = voxel.SinkFunc(func(v *voxel.Volume, g []grain.Grain) error {
			sunk = len(g)
			return nil
		})
	})
	res, err := o.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res.Volume)
	require.NotEmpty(t, res.Grains)
	assert.Equal(t, len(res.Grains), sunk)
	assert.Empty(t, res.Stalls)

	vol := res.Volume
	total := 0
	for i, g := range res.Grains {
		assert.Equal(t, i+1, g.ID)
		total += g.Voxels
	}
	assert.Equal(t, vol.Dims().Len(), total, "mass conservation")

	// Every voxel lies in the footprint of its grain, rasterized again
	// from the grain table at the gap filling scale.
	scale := res.Assignment.FillScale + 1e-9
	bodies := make(map[int32]func(r3.Vec) float64)
	for n, id := range vol.IDs {
		require.Greater(t, id, int32(0), "voxel %d unassigned", n)
		inside, ok := bodies[id]
		if !ok {
			g := res.Grains[id-1]
			inside = g.Body(o.phases[g.Phase].Shape).Scaled(scale).Inside
			bodies[id] = inside
		}
		require.GreaterOrEqual(t, inside(vol.Coords(n)), 0.0, "voxel %d outside grain %d", n, id)
		assert.Equal(t, int32(res.Grains[id-1].Phase+1), vol.Phases[n])
	}
}

func BenchmarkGridMove(b *testing.B) {
	o := newOptimizer(b, 64, true, nil)
	ctx := context.Background()
	if err := o.Generate(ctx); err != nil {
		b.Fatal(err)
	}
	if err := o.InitialPlacement(ctx); err != nil {
		b.Fatal(err)
	}
	n := len(o.grains)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		o.move(i%n, o.domain.Random(o.rnd))
	}
}

func BenchmarkCountNeighbors(b *testing.B) {
	o := newOptimizer(b, 64, true, nil)
	if err := o.Generate(context.Background()); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		o.CountNeighbors()
	}
}
