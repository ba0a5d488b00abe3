package stats

import (
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/orient"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/shape"
)

// Equiaxed returns a randomly textured cubic phase of nearly equiaxed
// ellipsoidal grains with log-normal diameters of the given parameters.
// Size bins are binStep wide.
func Equiaxed(name string, mu, sigma, minDiameter, maxDiameter, binStep float64) Phase {
	p := Phase{
		Name:     name,
		Class:    orient.Cubic,
		Fraction: 1,
		Shape:    shape.Ellipsoid,
		Size: SizeDist{
			Mu:          mu,
			Sigma:       sigma,
			MinDiameter: minDiameter,
			MaxDiameter: maxDiameter,
			BinStep:     binStep,
		},
	}
	n := p.NumBins()
	for i := 0; i < n; i++ {
		p.BOverA = append(p.BOverA, BetaParams{Alpha: 15, Beta: 1.5})
		p.COverA = append(p.COverA, BetaParams{Alpha: 15, Beta: 1.5})
		p.Omega3 = append(p.Omega3, BetaParams{Alpha: 10, Beta: 1.5})
		p.Neighbors = append(p.Neighbors, PowerLaw{Alpha: 14, Beta: 0, K: 1})
	}
	return p
}
