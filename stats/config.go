package stats

import (
	"errors"
	"fmt"
	"sort"

	"github.com/BlueQuartzSoftware/DREAM3D-sub042/orient"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/shape"
	"gonum.org/v1/gonum/floats"
	"gopkg.in/gcfg.v1"
)

// ExampleConfig is a complete configuration for a 64³ domain of equiaxed
// cubic grains.
const ExampleConfig = `[domain]
xdim = 64
ydim = 64
zdim = 64
resolution = 1
periodic = false
seed = 1

[phase "primary"]
class = cubic
shape = ellipsoid
fraction = 1
mu = 2
sigma = 0.2
mindiameter = 5
maxdiameter = 40
binstep = 2.5
boveraalpha = 15
boverabeta = 1.5
coveraalpha = 15
coverabeta = 1.5
omega3alpha = 10
omega3beta = 1.5
neighboralpha = 14
neighborbeta = 0
neighbork = 1
`

// Config is the file representation of a generator run. See ExampleConfig
// for the layout. Per size bin parameters are multi-valued; a single value
// applies to all bins.
type Config struct {
	Domain DomainConfig
	Phase  map[string]*PhaseConfig
}

// DomainConfig describes the voxel domain and optimizer limits.
type DomainConfig struct {
	XDim, YDim, ZDim int
	Resolution       float64
	Periodic         bool
	Seed             int64
	// MaxGenerateIterations caps candidate draws in the generate stage.
	// Zero selects a default derived from the domain volume.
	MaxGenerateIterations int
	// RefineIterationsPerGrain defaults to 100.
	RefineIterationsPerGrain int
	// MaxRefineIterations caps the refine stage. Zero means no cap beyond
	// RefineIterationsPerGrain * grains.
	MaxRefineIterations int
}

// PhaseConfig is the file form of a Phase.
type PhaseConfig struct {
	Class       string
	Shape       string
	Fraction    float64
	Mu, Sigma   float64
	MinDiameter float64
	MaxDiameter float64
	BinStep     float64

	BOverAAlpha, BOverABeta []float64
	COverAAlpha, COverABeta []float64
	Omega3Alpha, Omega3Beta []float64

	NeighborAlpha, NeighborBeta, NeighborK []float64

	// Odf lists a full ODF density table. If empty the ODF is
	// a random texture scaled by TextureBackground plus TextureWeight at every TextureBin.
	Odf               []float64
	TextureBackground float64
	TextureBin        []int
	TextureWeight     []float64
}

// ReadConfig reads a gcfg file.
func ReadConfig(path string) (*Config, error) {
	var c Config
	if err := gcfg.ReadFileInto(&c, path); err != nil {
		return nil, err
	}
	return &c, c.Domain.validate()
}

// ParseConfig parses gcfg text.
func ParseConfig(text string) (*Config, error) {
	var c Config
	if err := gcfg.ReadStringInto(&c, text); err != nil {
		return nil, err
	}
	return &c, c.Domain.validate()
}

func (d *DomainConfig) validate() error {
	if d.XDim <= 0 || d.YDim <= 0 || d.ZDim <= 0 {
		return &ConfigError{Field: "domain", Err: fmt.Errorf("dimensions must be positive, got %dx%dx%d", d.XDim, d.YDim, d.ZDim)}
	}
	if d.Resolution == 0 {
		d.Resolution = 1
	}
	if !(d.Resolution > 0) {
		return &ConfigError{Field: "resolution", Err: fmt.Errorf("must be positive, got %g", d.Resolution)}
	}
	if d.RefineIterationsPerGrain == 0 {
		d.RefineIterationsPerGrain = 100
	}
	return nil
}

// Phases converts the phase sections to phases sorted by name.
func (c *Config) Phases() ([]Phase, error) {
	if len(c.Phase) == 0 {
		return nil, &ConfigError{Field: "phase", Err: errors.New("no phase sections")}
	}
	names := make([]string, 0, len(c.Phase))
	for name := range c.Phase {
		names = append(names, name)
	}
	sort.Strings(names)
	phases := make([]Phase, 0, len(names))
	for _, name := range names {
		p, err := c.Phase[name].phase(name)
		if err != nil {
			return nil, err
		}
		phases = append(phases, p)
	}
	return phases, nil
}

func (pc *PhaseConfig) phase(name string) (Phase, error) {
	class, err := orient.ParseClass(pc.Class)
	if err != nil {
		return Phase{}, &ConfigError{Phase: name, Field: "class", Err: err}
	}
	kind := shape.Ellipsoid
	if pc.Shape != "" {
		kind, err = shape.ParseKind(pc.Shape)
		if err != nil {
			return Phase{}, &ConfigError{Phase: name, Field: "shape", Err: err}
		}
	}
	p := Phase{
		Name:     name,
		Class:    class,
		Fraction: pc.Fraction,
		Shape:    kind,
		Size: SizeDist{
			Mu:          pc.Mu,
			Sigma:       pc.Sigma,
			MinDiameter: pc.MinDiameter,
			MaxDiameter: pc.MaxDiameter,
			BinStep:     pc.BinStep,
		},
	}
	if !(p.Size.BinStep > 0) || !(p.Size.MaxDiameter > p.Size.MinDiameter) {
		// Validate reports the details.
		return p, p.Validate()
	}
	n := p.NumBins()
	if p.BOverA, err = betaBins(name, "boverA", pc.BOverAAlpha, pc.BOverABeta, n); err != nil {
		return p, err
	}
	if p.COverA, err = betaBins(name, "coverA", pc.COverAAlpha, pc.COverABeta, n); err != nil {
		return p, err
	}
	if p.Omega3, err = betaBins(name, "omega3", pc.Omega3Alpha, pc.Omega3Beta, n); err != nil {
		return p, err
	}
	al, be, k := pc.NeighborAlpha, pc.NeighborBeta, pc.NeighborK
	if len(al) != len(be) || len(al) != len(k) {
		return p, phaseErr(name, "neighbors", "alpha, beta and k counts differ: %d, %d, %d", len(al), len(be), len(k))
	}
	for i := 0; i < n && len(al) > 0; i++ {
		var pl PowerLaw
		if j := bin(i, len(al)); j >= 0 {
			pl = PowerLaw{Alpha: al[j], Beta: be[j], K: k[j]}
		}
		p.Neighbors = append(p.Neighbors, pl)
	}
	if p.ODF, err = pc.odf(name, class); err != nil {
		return p, err
	}
	return p, nil
}

// bin maps size bin i onto a parameter list of length n: lists of length 1
// are broadcast and shorter lists leave the remaining bins unfitted (-1).
func bin(i, n int) int {
	if n == 1 {
		return 0
	}
	if i < n {
		return i
	}
	return -1
}

func betaBins(phase, field string, alpha, beta []float64, n int) ([]BetaParams, error) {
	if len(alpha) != len(beta) {
		return nil, phaseErr(phase, field, "alpha and beta counts differ: %d and %d", len(alpha), len(beta))
	}
	if len(alpha) == 0 {
		return nil, nil
	}
	out := make([]BetaParams, n)
	for i := range out {
		if j := bin(i, len(alpha)); j >= 0 {
			out[i] = BetaParams{Alpha: alpha[j], Beta: beta[j]}
		}
	}
	return out, nil
}

func (pc *PhaseConfig) odf(phase string, class orient.Class) ([]float64, error) {
	if len(pc.Odf) > 0 {
		return pc.Odf, nil
	}
	if len(pc.TextureBin) == 0 {
		return nil, nil // uniform.
	}
	if len(pc.TextureBin) != len(pc.TextureWeight) {
		return nil, phaseErr(phase, "texture", "bin and weight counts differ: %d and %d", len(pc.TextureBin), len(pc.TextureWeight))
	}
	g, err := orient.Lookup(class)
	if err != nil {
		return nil, &ConfigError{Phase: phase, Field: "class", Err: err}
	}
	odf := g.RandomTexture()
	floats.Scale(pc.TextureBackground, odf)
	for i, b := range pc.TextureBin {
		if b < 0 || b >= len(odf) {
			return nil, phaseErr(phase, "texturebin", "bin %d out of range [0, %d)", b, len(odf))
		}
		odf[b] += pc.TextureWeight[i]
	}
	return odf, nil
}
