// Package stats holds the per-phase statistical targets of a synthetic
// microstructure: size, shape, neighbor and orientation distributions.
package stats

import (
	"errors"
	"fmt"
	"math"

	"github.com/BlueQuartzSoftware/DREAM3D-sub042/orient"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/shape"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// SizeDist is a log-normal distribution of equivalent sphere diameters,
// truncated to [MinDiameter, MaxDiameter] and binned by BinStep.
type SizeDist struct {
	Mu, Sigma   float64 // mean and std of ln(diameter).
	MinDiameter float64
	MaxDiameter float64
	BinStep     float64
}

// BetaParams parameterizes a Beta distribution. The zero value means no
// parameters were fitted for the bin.
type BetaParams struct {
	Alpha, Beta float64
}

// Valid reports whether both shape parameters are positive.
func (b BetaParams) Valid() bool { return b.Alpha > 0 && b.Beta > 0 }

// PowerLaw gives the mean neighbor count of a size bin as
// Alpha*x^K + Beta where x is the bin's diameter over the mean diameter.
type PowerLaw struct {
	Alpha, Beta, K float64
}

// Valid reports whether the power law yields finite values.
func (p PowerLaw) Valid() bool {
	return !(p.Alpha == 0 && p.Beta == 0) &&
		!math.IsNaN(p.Alpha) && !math.IsNaN(p.Beta) && !math.IsNaN(p.K)
}

// Phase holds the statistics of one material phase.
type Phase struct {
	Name     string
	Class    orient.Class
	Fraction float64
	Shape    shape.Kind
	Size     SizeDist
	// Per size bin shape distributions.
	BOverA []BetaParams
	COverA []BetaParams
	Omega3 []BetaParams
	// Per size bin neighbor distributions.
	Neighbors []PowerLaw
	// ODF is the orientation density per bin of the class' ODF grid. A nil
	// ODF is uniform.
	ODF []float64

	group  *orient.Group
	odfCum []float64
}

// NumBins returns the number of size bins.
func (p *Phase) NumBins() int {
	s := p.Size
	return int(math.Floor((s.MaxDiameter-s.MinDiameter)/s.BinStep)) + 1
}

// BinOf returns the size bin of diameter d, clamped to the valid bins.
func (p *Phase) BinOf(d float64) int {
	k := int(math.Floor((d - p.Size.MinDiameter) / p.Size.BinStep))
	if k < 0 {
		return 0
	}
	if n := p.NumBins(); k >= n {
		return n - 1
	}
	return k
}

// BinCenter returns the diameter at the center of size bin k, limited to MaxDiameter.
func (p *Phase) BinCenter(k int) float64 {
	return math.Min(p.Size.MinDiameter+(float64(k)+0.5)*p.Size.BinStep, p.Size.MaxDiameter)
}

// MeanDiameter returns the mean of the untruncated log-normal.
func (p *Phase) MeanDiameter() float64 {
	return math.Exp(p.Size.Mu + p.Size.Sigma*p.Size.Sigma/2)
}

// Group returns the symmetry group of the phase. Valid after Validate.
func (p *Phase) Group() *orient.Group { return p.group }

// ODFCumulative returns the cumulative ODF table ending at 1. Valid after Validate.
func (p *Phase) ODFCumulative() []float64 { return p.odfCum }

// MinGrainVolume is the volume of a sphere of the minimum diameter. Fragments
// smaller than this are not considered grains of the phase.
func (p *Phase) MinGrainVolume() float64 {
	d := p.Size.MinDiameter
	return math.Pi / 6 * d * d * d
}

// TargetSizeHistogram returns the probability mass of the truncated
// log-normal in every size bin.
func (p *Phase) TargetSizeHistogram() []float64 {
	ln := distuv.LogNormal{Mu: p.Size.Mu, Sigma: p.Size.Sigma}
	n := p.NumBins()
	h := make([]float64, n)
	for k := range h {
		lo := p.Size.MinDiameter + float64(k)*p.Size.BinStep
		hi := math.Min(lo+p.Size.BinStep, p.Size.MaxDiameter)
		if k == n-1 {
			hi = p.Size.MaxDiameter
		}
		if hi > lo {
			h[k] = ln.CDF(hi) - ln.CDF(lo)
		}
	}
	normalize(h)
	return h
}

// TargetNeighborHistogram returns the expected mean neighbor count of every
// size bin from the per-bin power laws, normalized to unit sum.
func (p *Phase) TargetNeighborHistogram() []float64 {
	n := p.NumBins()
	h := make([]float64, n)
	mean := p.MeanDiameter()
	for k := range h {
		pl, ok := nearestValid(p.Neighbors, k, PowerLaw.Valid)
		if !ok {
			continue
		}
		h[k] = math.Max(0, pl.Alpha*math.Pow(p.BinCenter(k)/mean, pl.K)+pl.Beta)
	}
	normalize(h)
	return h
}

// ShapeParams returns the b/a, c/a and omega3 Beta parameters of size bin k,
// falling back to the nearest fitted bin. ok is false if no bin has parameters.
func (p *Phase) ShapeParams(k int) (bOverA, cOverA, omega3 BetaParams, ok bool) {
	var okB, okC bool
	bOverA, okB = nearestValid(p.BOverA, k, BetaParams.Valid)
	cOverA, okC = nearestValid(p.COverA, k, BetaParams.Valid)
	omega3, _ = nearestValid(p.Omega3, k, BetaParams.Valid)
	return bOverA, cOverA, omega3, okB && okC
}

// nearestValid returns v[k] if valid, else the closest valid entry,
// preferring the lower adjacent bin on ties.
func nearestValid[T any](v []T, k int, valid func(T) bool) (T, bool) {
	var zero T
	for d := 0; d < len(v)+k+1; d++ {
		for _, i := range [2]int{k - d, k + d} {
			if i >= 0 && i < len(v) && valid(v[i]) {
				return v[i], true
			}
		}
	}
	return zero, false
}

// Validate checks the phase and builds its cumulative ODF table.
func (p *Phase) Validate() error {
	g, err := orient.Lookup(p.Class)
	if err != nil {
		return &ConfigError{Phase: p.Name, Field: "class", Err: err}
	}
	p.group = g
	s := p.Size
	switch {
	case !(p.Fraction > 0):
		return phaseErr(p.Name, "fraction", "must be positive, got %g", p.Fraction)
	case !(s.Sigma > 0):
		return phaseErr(p.Name, "sigma", "must be positive, got %g", s.Sigma)
	case !(s.MinDiameter > 0) || !(s.MaxDiameter > s.MinDiameter):
		return phaseErr(p.Name, "diameter", "need 0 < min < max, got [%g, %g]", s.MinDiameter, s.MaxDiameter)
	case !(s.BinStep > 0):
		return phaseErr(p.Name, "binstep", "must be positive, got %g", s.BinStep)
	case p.Shape < shape.Ellipsoid || p.Shape >= shape.Unknown:
		return phaseErr(p.Name, "shape", "unsupported shape class %s", p.Shape)
	}
	// Most mass of the size distribution must fall inside the truncation
	// window or diameter rejection sampling would stall.
	ln := distuv.LogNormal{Mu: s.Mu, Sigma: s.Sigma}
	if mass := ln.CDF(s.MaxDiameter) - ln.CDF(s.MinDiameter); mass < 1e-3 {
		return phaseErr(p.Name, "mu", "only %.2g of the size distribution lies in [%g, %g]", mass, s.MinDiameter, s.MaxDiameter)
	}
	if _, _, _, ok := p.ShapeParams(0); !ok {
		return phaseErr(p.Name, "shape distribution", "no size bin has valid b/a and c/a parameters")
	}
	if p.Shape != shape.Ellipsoid {
		if _, ok := nearestValid(p.Omega3, 0, BetaParams.Valid); !ok {
			return phaseErr(p.Name, "omega3", "no size bin has valid parameters")
		}
	}
	if _, ok := nearestValid(p.Neighbors, 0, PowerLaw.Valid); !ok {
		return phaseErr(p.Name, "neighbors", "no size bin has a valid power law")
	}
	return p.buildODF()
}

func (p *Phase) buildODF() error {
	n := p.group.NumBins()
	if p.ODF == nil {
		p.ODF = UniformODF(p.group)
	}
	if len(p.ODF) != n {
		return phaseErr(p.Name, "odf", "want %d bins for %s, got %d", n, p.Class, len(p.ODF))
	}
	if floats.HasNaN(p.ODF) || floats.Min(p.ODF) < 0 {
		return phaseErr(p.Name, "odf", "densities must be non-negative")
	}
	sum := floats.Sum(p.ODF)
	if !(sum > 0) {
		return phaseErr(p.Name, "odf", "all densities are zero")
	}
	p.odfCum = make([]float64, n)
	floats.CumSum(p.odfCum, p.ODF)
	floats.Scale(1/sum, p.odfCum)
	p.odfCum[n-1] = 1
	return nil
}

// UniformODF returns a random-texture ODF for the group. Bins are
// weighted by how much of their cell lies in the fundamental zone.
func UniformODF(g *orient.Group) []float64 {
	return g.RandomTexture()
}

func normalize(h []float64) {
	if s := floats.Sum(h); s > 0 {
		floats.Scale(1/s, h)
	}
}

// Source supplies the phase statistics of a microstructure.
type Source interface {
	Phases() []Phase
}

// Phases is a Source backed by a slice.
type Phases []Phase

func (p Phases) Phases() []Phase { return p }

var errFractions = errors.New("phase fractions must sum to a positive value")

// Prepare validates every phase of src and renormalizes the phase fractions
// to sum to 1. The returned phases are copies owned by the caller.
func Prepare(src Source) ([]Phase, error) {
	phases := append([]Phase(nil), src.Phases()...)
	if len(phases) == 0 {
		return nil, &ConfigError{Field: "phases", Err: errors.New("no phases")}
	}
	for i := range phases {
		if phases[i].Name == "" {
			phases[i].Name = fmt.Sprintf("phase%d", i)
		}
		if err := phases[i].Validate(); err != nil {
			return nil, err
		}
	}
	if err := Renormalize(phases); err != nil {
		return nil, err
	}
	return phases, nil
}

// Renormalize scales the phase fractions to sum to 1.
func Renormalize(phases []Phase) error {
	sum := 0.0
	for _, p := range phases {
		if p.Fraction < 0 {
			return &ConfigError{Phase: p.Name, Field: "fraction", Err: errFractions}
		}
		sum += p.Fraction
	}
	if !(sum > 0) || math.IsInf(sum, 0) {
		return &ConfigError{Field: "fraction", Err: errFractions}
	}
	for i := range phases {
		phases[i].Fraction /= sum
	}
	return nil
}
