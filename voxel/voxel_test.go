package voxel

import (
	"errors"
	"math"
	"testing"

	"github.com/BlueQuartzSoftware/DREAM3D-sub042/grain"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/internal/d3"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/orient"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/stats"
	"github.com/soypat/glgl/math/ms3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func testPhases(t *testing.T) []stats.Phase {
	t.Helper()
	phases, err := stats.Prepare(stats.Phases{stats.Equiaxed("a", 2, 0.2, 5, 40, 2.5)})
	require.NoError(t, err)
	return phases
}

func sphere(center r3.Vec, d float64) grain.Grain {
	return grain.Grain{
		Volume:      grain.SphereVolume(d),
		Diameter:    d,
		BOverA:      1,
		COverA:      1,
		Omega3:      1,
		Centroid:    center,
		Orientation: orient.Euler{Phi1: 0.1, Phi: 0.2, Phi2: 0.3},
	}
}

func newAssigner(t *testing.T, n int, periodic bool) (*Assigner, *Volume) {
	t.Helper()
	vol, err := NewVolume(d3.Dims{n, n, n}, 1, periodic)
	require.NoError(t, err)
	return NewAssigner(vol, testPhases(t), nil), vol
}

// checkConsistent verifies that every voxel belongs to a grain whose body,
// scaled by the fill scale, contains the voxel center.
func checkConsistent(t *testing.T, a *Assigner, vol *Volume, grains []grain.Grain, sum Summary) {
	t.Helper()
	total := 0
	for _, g := range grains {
		total += g.Voxels
	}
	assert.Equal(t, vol.Dims().Len(), total, "every voxel is owned once")
	for n, id := range vol.IDs {
		require.Greater(t, id, int32(0), "voxel %d unassigned", n)
		require.LessOrEqual(t, int(id), len(grains))
		g := grains[id-1]
		b := g.Body(a.phases[g.Phase].Shape).Scaled(sum.FillScale + 1e-9)
		assert.GreaterOrEqual(t, b.Inside(vol.Coords(n)), 0.0, "voxel %d outside grain %d", n, id)
	}
}

func TestAssignSingleGrainFillsVolume(t *testing.T) {
	a, vol := newAssigner(t, 12, false)
	grains, sum, err := a.Assign([]grain.Grain{sphere(r3.Vec{X: 6, Y: 6, Z: 6}, 8)})
	require.NoError(t, err)
	require.Len(t, grains, 1)
	assert.Equal(t, 1, grains[0].ID)
	assert.Greater(t, sum.FillScale, 1.0)
	checkConsistent(t, a, vol, grains, sum)
	for n := range vol.Phases {
		assert.Equal(t, int32(1), vol.Phases[n])
		assert.InDelta(t, 0.2, vol.Euler[n].Y, 1e-6)
		assert.InDelta(t, 0, vol.KAM[n], 1e-3)
	}
	assert.InDelta(t, 0, vol.MeanKAM(), 1e-3)
}

func TestUpdateKAM(t *testing.T) {
	vol, err := NewVolume(d3.Dims{5, 1, 1}, 1, false)
	require.NoError(t, err)
	step := 10 * math.Pi / 180
	for x := 0; x < 4; x++ {
		vol.IDs[x], vol.Phases[x] = 1, 1
		vol.Euler[x] = ms3.Vec{X: float32(float64(x) * step)}
	}
	vol.KAM[4] = 7
	vol.updateKAM(testPhases(t))
	for x := 0; x < 4; x++ {
		assert.InDelta(t, 10, vol.KAM[x], 1e-2, "voxel %d", x)
	}
	assert.Equal(t, float32(0), vol.KAM[4], "unassigned voxels are reset")
	assert.InDelta(t, 10, vol.MeanKAM(), 1e-2)
}

func TestAssignOverlapAndRenumber(t *testing.T) {
	a, vol := newAssigner(t, 16, false)
	in := []grain.Grain{
		sphere(r3.Vec{X: 5, Y: 8, Z: 8}, 10),
		sphere(r3.Vec{X: 11, Y: 8, Z: 8}, 10),
		// Lies entirely inside the first grain and loses every voxel.
		sphere(r3.Vec{X: 5, Y: 8, Z: 8}, 3),
	}
	grains, sum, err := a.Assign(in)
	require.NoError(t, err)
	assert.Greater(t, sum.Contested, 0)
	assert.Equal(t, 1, sum.Removed)
	require.Len(t, grains, 2)
	assert.Equal(t, 1, grains[0].ID)
	assert.Equal(t, 2, grains[1].ID)
	assert.Equal(t, 0, in[0].ID, "input is not modified")
	checkConsistent(t, a, vol, grains, sum)

	// Contested voxels between the centers are resolved by the larger
	// inside value, so the midplane splits the two grains.
	assert.Equal(t, int32(1), vol.IDs[vol.Index(d3.Index{4, 8, 8})])
	assert.Equal(t, int32(2), vol.IDs[vol.Index(d3.Index{11, 8, 8})])

	counts := vol.Counts(len(grains))
	assert.Equal(t, 0, counts[0])
	assert.Equal(t, grains[0].Voxels, counts[1])
	assert.Equal(t, grains[1].Voxels, counts[2])
}

func TestFootprintWrapsPeriodic(t *testing.T) {
	a, vol := newAssigner(t, 16, true)
	g := sphere(r3.Vec{}, 6)
	fp := a.footprint(g.Body(a.phases[0].Shape), nil)
	seen := map[int32]bool{}
	for _, n := range fp {
		assert.False(t, seen[n], "duplicate voxel %d", n)
		seen[n] = true
	}
	assert.True(t, seen[int32(vol.Index(d3.Index{0, 0, 0}))])
	assert.True(t, seen[int32(vol.Index(d3.Index{15, 15, 15}))])
	assert.False(t, seen[int32(vol.Index(d3.Index{8, 8, 8}))])

	b, _ := newAssigner(t, 16, false)
	clipped := b.footprint(g.Body(a.phases[0].Shape), nil)
	assert.Less(t, len(clipped), len(fp))
}

func TestAssignPeriodic(t *testing.T) {
	a, vol := newAssigner(t, 12, true)
	grains, sum, err := a.Assign([]grain.Grain{
		sphere(r3.Vec{X: 1, Y: 1, Z: 1}, 9),
		sphere(r3.Vec{X: 7, Y: 7, Z: 7}, 9),
	})
	require.NoError(t, err)
	require.Len(t, grains, 2)
	assert.Equal(t, int32(1), vol.IDs[vol.Index(d3.Index{11, 11, 11})], "wraps to the first grain")
	total := 0
	for _, g := range grains {
		total += g.Voxels
	}
	assert.Equal(t, vol.Dims().Len(), total)
	assert.Greater(t, sum.FillScale, 1.0)
}

func TestCleanupRemovesInteriorFragments(t *testing.T) {
	a, vol := newAssigner(t, 10, false)
	st := &assignment{
		grains: []grain.Grain{{ID: 1}, {ID: 2}},
		counts: make([]int, 3),
	}
	for n := range vol.IDs {
		id := int32(1)
		if vol.dims.Unflat(n)[0] >= 5 {
			id = 2
		}
		vol.IDs[n] = id
		st.counts[id]++
	}
	stray := vol.Index(d3.Index{7, 5, 5})
	vol.IDs[stray] = 1
	st.counts[1]++
	st.counts[2]--

	a.cleanup(st)
	assert.Equal(t, 1, st.sum.Fragments)
	assert.Equal(t, Unassigned, vol.IDs[stray])
	assert.Equal(t, 500, st.counts[1], "boundary fragments survive")
	assert.Equal(t, 499, st.counts[2])
}

func TestAssignUnfilled(t *testing.T) {
	a, vol := newAssigner(t, 4, false)
	grains, _, err := a.Assign(nil)
	assert.True(t, errors.Is(err, ErrUnfilled))
	assert.Empty(t, grains)
	assert.Equal(t, 64, vol.Counts(0)[0])
}

func TestVolumeIsOrientationField(t *testing.T) {
	a, vol := newAssigner(t, 12, false)
	_, _, err := a.Assign([]grain.Grain{
		sphere(r3.Vec{X: 3, Y: 6, Z: 6}, 8),
		sphere(r3.Vec{X: 9, Y: 6, Z: 6}, 8),
	})
	require.NoError(t, err)
	var f orient.Field = vol
	kam := orient.Must(orient.Cubic).KernelAverageMisorientation(f, false)
	for n, k := range kam {
		assert.InDelta(t, 0, k, 1e-3, "voxel %d", n)
	}
	var got []int
	sink := SinkFunc(func(v *Volume, g []grain.Grain) error {
		got = append(got, len(g), v.Dims().Len())
		return nil
	})
	require.NoError(t, sink.WriteVolume(vol, make([]grain.Grain, 2)))
	assert.Equal(t, []int{2, 1728}, got)
}

func TestNewVolumeRejectsEmpty(t *testing.T) {
	_, err := NewVolume(d3.Dims{0, 4, 4}, 1, false)
	assert.Error(t, err)
	_, err = NewVolume(d3.Dims{4, 4, 4}, 0, false)
	assert.Error(t, err)
}
