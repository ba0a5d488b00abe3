// Package report draws diagnostic charts comparing packed grains with the
// statistics they were drawn from.
package report

import (
	"fmt"
	"io"

	"github.com/BlueQuartzSoftware/DREAM3D-sub042/pack"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/stats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Default image size.
const (
	Width  = 6 * vg.Inch
	Height = 4 * vg.Inch
)

// Bars returns a bar chart of sim next to target, one group per label.
// A nil target draws sim alone.
func Bars(title, xlabel string, labels []string, sim, target []float64) (*plot.Plot, error) {
	if len(sim) != len(labels) || (target != nil && len(target) != len(sim)) {
		return nil, fmt.Errorf("report: %d labels for %d simulated and %d target values", len(labels), len(sim), len(target))
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "fraction"

	w := vg.Points(8)
	series := []struct {
		name string
		v    []float64
	}{{"simulated", sim}, {"target", target}}
	for i, s := range series {
		if s.v == nil {
			continue
		}
		b, err := plotter.NewBarChart(plotter.Values(s.v), w)
		if err != nil {
			return nil, err
		}
		b.Color = plotutil.Color(i)
		b.LineStyle.Width = 0
		if target != nil {
			b.Offset = w * vg.Length(2*i-1) / 2
		}
		p.Add(b)
		p.Legend.Add(s.name, b)
	}
	p.Legend.Top = true
	p.NominalX(labels...)
	return p, nil
}

// WritePNG renders p as a PNG image of the default size.
func WritePNG(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(Width, Height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

func sizeLabels(ph *stats.Phase) []string {
	labels := make([]string, ph.NumBins())
	for k := range labels {
		labels[k] = fmt.Sprintf("%.3g", ph.BinCenter(k))
	}
	return labels
}

// SizeHistogram charts the size distribution of a phase.
func SizeHistogram(w io.Writer, ph *stats.Phase, s pack.PhaseScore) error {
	p, err := Bars(fmt.Sprintf("%s size distribution (score %.3f)", ph.Name, s.Size),
		"diameter", sizeLabels(ph), s.SizeHistogram, ph.TargetSizeHistogram())
	if err != nil {
		return err
	}
	return WritePNG(w, p)
}

// NeighborHistogram charts the mean neighbor count per size bin of a phase.
func NeighborHistogram(w io.Writer, ph *stats.Phase, s pack.PhaseScore) error {
	p, err := Bars(fmt.Sprintf("%s neighbors (score %.3f)", ph.Name, s.Neighbors),
		"diameter", sizeLabels(ph), s.NeighborHistogram, ph.TargetNeighborHistogram())
	if err != nil {
		return err
	}
	return WritePNG(w, p)
}

// Misorientation charts the disorientation distribution between
// neighboring grains of a phase.
func Misorientation(w io.Writer, ph *stats.Phase, s pack.PhaseScore) error {
	n := len(s.Misorientation)
	labels := make([]string, n)
	step := ph.Group().MaxAngle() / float64(n)
	for k := range labels {
		if k%4 == 0 {
			labels[k] = fmt.Sprintf("%.0f", float64(k)*step)
		}
	}
	p, err := Bars(ph.Name+" neighbor misorientation", "angle (degrees)", labels, s.Misorientation, nil)
	if err != nil {
		return err
	}
	return WritePNG(w, p)
}
