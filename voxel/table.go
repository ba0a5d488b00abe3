package voxel

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/BlueQuartzSoftware/DREAM3D-sub042/grain"
)

var grainColumns = []string{
	"id", "phase", "voxels", "volume", "diameter",
	"r1", "r2", "r3", "b_over_a", "c_over_a", "omega3",
	"axis_phi1", "axis_Phi", "axis_phi2",
	"neighbors1", "neighbors2", "neighbors3",
	"x", "y", "z",
	"phi1", "Phi", "phi2",
}

// WriteGrainTable writes one CSV record per grain with its summary
// statistics. Angles are in radians.
func WriteGrainTable(w io.Writer, grains []grain.Grain) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(grainColumns); err != nil {
		return err
	}
	f := func(x float64) string { return strconv.FormatFloat(x, 'g', 8, 64) }
	rec := make([]string, 0, len(grainColumns))
	for _, g := range grains {
		rec = append(rec[:0],
			strconv.Itoa(g.ID), strconv.Itoa(g.Phase+1), strconv.Itoa(g.Voxels),
			f(g.Volume), f(g.Diameter),
			f(g.Semi.X), f(g.Semi.Y), f(g.Semi.Z), f(g.BOverA), f(g.COverA), f(g.Omega3),
			f(g.AxisEuler.Phi1), f(g.AxisEuler.Phi), f(g.AxisEuler.Phi2),
			strconv.Itoa(g.Neighbors[0]), strconv.Itoa(g.Neighbors[1]), strconv.Itoa(g.Neighbors[2]),
			f(g.Centroid.X), f(g.Centroid.Y), f(g.Centroid.Z),
			f(g.Orientation.Phi1), f(g.Orientation.Phi), f(g.Orientation.Phi2),
		)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
