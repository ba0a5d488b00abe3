package report

import (
	"bytes"
	"testing"

	"github.com/BlueQuartzSoftware/DREAM3D-sub042/pack"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/cmpimg"
)

func testScore(t *testing.T) (*stats.Phase, pack.PhaseScore) {
	t.Helper()
	phases, err := stats.Prepare(stats.Phases{stats.Equiaxed("primary", 2, 0.2, 5, 40, 5)})
	require.NoError(t, err)
	ph := &phases[0]
	n := ph.NumBins()
	s := pack.PhaseScore{
		Size:              0.98,
		SizeHistogram:     ph.TargetSizeHistogram(),
		NeighborHistogram: make([]float64, n),
		Misorientation:    make([]float64, pack.MisorientationBins),
	}
	s.Misorientation[20] = 1
	return ph, s
}

func TestChartsAreDeterministic(t *testing.T) {
	ph, s := testScore(t)
	for name, draw := range map[string]func(*bytes.Buffer) error{
		"size":           func(b *bytes.Buffer) error { return SizeHistogram(b, ph, s) },
		"neighbors":      func(b *bytes.Buffer) error { return NeighborHistogram(b, ph, s) },
		"misorientation": func(b *bytes.Buffer) error { return Misorientation(b, ph, s) },
	} {
		var b1, b2 bytes.Buffer
		require.NoError(t, draw(&b1), name)
		require.NoError(t, draw(&b2), name)
		assert.Equal(t, []byte("\x89PNG"), b1.Bytes()[:4], name)
		equal, err := cmpimg.EqualApprox("png", b1.Bytes(), b2.Bytes(), 0)
		require.NoError(t, err)
		assert.True(t, equal, name)
	}
}

func TestBarsRejectsMismatchedLengths(t *testing.T) {
	_, err := Bars("t", "x", []string{"a", "b"}, []float64{1}, nil)
	assert.Error(t, err)
	_, err = Bars("t", "x", []string{"a"}, []float64{1}, []float64{1, 2})
	assert.Error(t, err)
	p, err := Bars("t", "x", []string{"a"}, []float64{1}, []float64{1})
	require.NoError(t, err)
	assert.Equal(t, "t", p.Title.Text)
}
