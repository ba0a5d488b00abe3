package voxel

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BlueQuartzSoftware/DREAM3D-sub042/grain"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/internal/d3"
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestVTKRoundTrip(t *testing.T) {
	a, vol := newAssigner(t, 8, false)
	_, _, err := a.Assign([]grain.Grain{
		sphere(r3.Vec{X: 2, Y: 4, Z: 4}, 6),
		sphere(r3.Vec{X: 6, Y: 4, Z: 4}, 6),
	})
	require.NoError(t, err)
	// Include bytes that look like line breaks in the binary sections.
	vol.Euler[0] = ms3.Vec{X: math32.Float32frombits(0x0a0a0a0a), Y: 1, Z: 2}
	vol.IDs[1] = 10
	vol.KAM[2] = 1.5

	var buf bytes.Buffer
	require.NoError(t, WriteVTK(&buf, vol))
	assert.True(t, strings.HasPrefix(buf.String(), "# vtk DataFile Version 2.0\n"))
	assert.Contains(t, buf.String(), "DIMENSIONS 9 9 9\n")

	got, err := ReadVTK(&buf, false)
	require.NoError(t, err)
	assert.Equal(t, vol.Dims(), got.Dims())
	assert.Equal(t, vol.Resolution(), got.Resolution())
	assert.Equal(t, vol.IDs, got.IDs)
	assert.Equal(t, vol.Phases, got.Phases)
	assert.Equal(t, vol.Euler, got.Euler)
	assert.Equal(t, vol.KAM, got.KAM)
}

func TestVTKFile(t *testing.T) {
	vol, err := NewVolume(d3.Dims{3, 2, 1}, 0.5, true)
	require.NoError(t, err)
	for n := range vol.IDs {
		vol.IDs[n] = int32(n + 1)
	}
	path := filepath.Join(t.TempDir(), "v.vtk")
	require.NoError(t, VTKSink{Path: path}.WriteVolume(vol, nil))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	got, err := ReadVTK(f, true)
	require.NoError(t, err)
	assert.Equal(t, vol.IDs, got.IDs)
	assert.Equal(t, 0.5, got.Resolution())
	assert.True(t, got.Periodic())
}

func TestVTKRejects(t *testing.T) {
	_, err := ReadVTK(strings.NewReader("solid stl\n"), false)
	assert.Error(t, err)

	vol, err := NewVolume(d3.Dims{2, 2, 2}, 1, false)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteVTK(&buf, vol))
	_, err = ReadVTK(bytes.NewReader(buf.Bytes()[:buf.Len()-20]), false)
	assert.Error(t, err, "truncated")

	vol.Euler[3].Y = math32.NaN()
	assert.Error(t, WriteVTK(&bytes.Buffer{}, vol))
}

func TestWriteGrainTable(t *testing.T) {
	g := sphere(r3.Vec{X: 1, Y: 2, Z: 3}, 4)
	g.ID, g.Voxels, g.Neighbors = 1, 33, [3]int{0, 5, 12}
	var buf bytes.Buffer
	require.NoError(t, WriteGrainTable(&buf, []grain.Grain{g}))
	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, grainColumns, recs[0])
	row := map[string]string{}
	for i, c := range recs[0] {
		row[c] = recs[1][i]
	}
	assert.Equal(t, "1", row["id"])
	assert.Equal(t, "1", row["phase"])
	assert.Equal(t, "33", row["voxels"])
	assert.Equal(t, "12", row["neighbors3"])
	assert.Equal(t, "3", row["z"])
	assert.Equal(t, "0.2", row["Phi"])
}
