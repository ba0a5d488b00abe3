package pack

import (
	"context"
	"errors"
	"math"

	"github.com/BlueQuartzSoftware/DREAM3D-sub042/grain"
	"gonum.org/v1/gonum/floats"
)

// desperation is how much the acceptance threshold drops per rejected
// candidate since the last acceptance.
const desperation = 0.001

// bhattacharyya returns Σ sqrt(p_i q_i) of sim normalized to unit sum and
// target, which must already sum to one.
func bhattacharyya(sim, target []float64) float64 {
	sum := floats.Sum(sim)
	if sum <= 0 {
		return 0
	}
	s := 0.0
	for i := range sim {
		s += math.Sqrt(sim[i] / sum * target[i])
	}
	return s
}

// maxGenerateIterations returns the configured cap or one derived from the
// number of the smallest grains that fit the target volume.
func (o *Optimizer) maxGenerateIterations(target float64) int {
	if o.cfg.MaxGenerateIterations > 0 {
		return o.cfg.MaxGenerateIterations
	}
	minVol := math.Inf(1)
	for i := range o.phases {
		minVol = math.Min(minVol, o.phases[i].MinGrainVolume())
	}
	n := target / minVol
	if !(n < 1e6) {
		n = 1e6
	}
	return 1000 * (int(n) + 1)
}

// Generate draws grains until their total volume reaches the target
// volume. A candidate is accepted if it raises the similarity of its
// phase's size histogram to the target histogram, or if the similarity
// still exceeds 1 - 0.001*rejections since the last acceptance.
//
// Hitting the iteration cap returns a *StallError; the grains drawn so far
// remain available from Grains.
func (o *Optimizer) Generate(ctx context.Context) error {
	o.grains = o.grains[:0]
	target := o.targetVolume()
	maxIter := o.maxGenerateIterations(target)

	sim := make([][]float64, len(o.phases))
	want := make([][]float64, len(o.phases))
	for i := range o.phases {
		sim[i] = make([]float64, o.phases[i].NumBins())
		want[i] = o.phases[i].TargetSizeHistogram()
	}

	var vol float64
	since := 0
	for iter := 0; vol < target; iter++ {
		if iter >= maxIter {
			return &StallError{Stage: StageGenerate, Iterations: iter, Reached: vol, Target: target, Partial: o.Grains()}
		}
		if iter%1024 == 0 {
			if err := checkCtx(ctx); err != nil {
				return err
			}
		}
		ph := o.gen.PickPhase()
		g, err := o.gen.Generate(ph)
		if errors.Is(err, grain.ErrGeometricDegeneracy) {
			continue
		} else if err != nil {
			return err
		}
		h := sim[ph]
		old := bhattacharyya(h, want[ph])
		h[g.SizeBin]++
		score := bhattacharyya(h, want[ph])
		if score > old || score > 1-float64(since)*desperation {
			since = 0
			g.ID = len(o.grains) + 1
			o.grains = append(o.grains, g)
			vol += g.Volume
			continue
		}
		h[g.SizeBin]--
		since++
	}
	o.log.Printf("pack: generated %d grains, volume %.4g of %.4g", len(o.grains), vol, target)
	return nil
}
