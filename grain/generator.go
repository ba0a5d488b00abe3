package grain

import (
	"errors"
	"math"
	"sort"

	"github.com/BlueQuartzSoftware/DREAM3D-sub042/internal/d3"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/orient"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/shape"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/stats"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrGeometricDegeneracy is returned for candidates with a zero, infinite or
// NaN geometry. The candidate should be discarded and another drawn.
var ErrGeometricDegeneracy = errors.New("grain: degenerate geometry")

// maxDiameterDraws bounds the log-normal redraws for one candidate. Past it
// the last draw is clamped into [min, max].
const maxDiameterDraws = 1000

// Generator samples candidate grains. It is not safe for concurrent use.
type Generator struct {
	phases []stats.Phase
	rnd    *rand.Rand
	shapes []shape.Func
	cum    []float64 // cumulative phase fractions.
}

// NewGenerator returns a generator over phases prepared by stats.Prepare,
// drawing all random numbers from rnd.
func NewGenerator(phases []stats.Phase, rnd *rand.Rand) *Generator {
	g := &Generator{
		phases: phases,
		rnd:    rnd,
	}
	sum := 0.0
	for i := range phases {
		g.shapes = append(g.shapes, shape.New(phases[i].Shape))
		sum += phases[i].Fraction
		g.cum = append(g.cum, sum)
	}
	return g
}

// Phases returns the phases the generator draws from.
func (g *Generator) Phases() []stats.Phase { return g.phases }

// PickPhase draws a phase index weighted by phase fraction.
func (g *Generator) PickPhase() int {
	u := g.rnd.Float64() * g.cum[len(g.cum)-1]
	i := sort.SearchFloat64s(g.cum, u)
	if i >= len(g.cum) {
		i = len(g.cum) - 1
	}
	return i
}

// Generate draws a candidate grain of phase index ph. The returned grain has
// no ID, a zero centroid and zero neighbor counts.
func (g *Generator) Generate(ph int) (Grain, error) {
	p := &g.phases[ph]
	gr := Grain{Phase: ph}

	gr.Diameter = g.diameter(p)
	gr.Volume = SphereVolume(gr.Diameter)
	gr.SizeBin = p.BinOf(gr.Diameter)

	bp, cp, op, _ := p.ShapeParams(gr.SizeBin)
	gr.BOverA = g.beta(bp)
	gr.COverA = g.beta(cp)
	if gr.COverA > gr.BOverA {
		gr.BOverA, gr.COverA = gr.COverA, gr.BOverA
	}
	gr.Omega3 = 1
	if p.Shape != shape.Ellipsoid {
		gr.Omega3 = g.beta(op)
	}
	gr.AxisEuler = g.uniformEuler()

	group := p.Group()
	u := g.rnd.Float64()
	cum := p.ODFCumulative()
	gr.ODFBin = sort.SearchFloat64s(cum, u)
	if gr.ODFBin >= len(cum) {
		gr.ODFBin = len(cum) - 1
	}
	gr.Quat = group.BinToQuat(gr.ODFBin, g.rnd)
	gr.Orientation = orient.QuatToEuler(gr.Quat)

	fn := g.shapes[ph]
	fn.Init()
	r1 := fn.Radius(gr.Volume, gr.Omega3, gr.BOverA, gr.COverA)
	gr.Semi = shape.Semi(r1, gr.BOverA, gr.COverA)
	if !(r1 > 0) || d3.HasNaN(gr.Semi) || d3.LTEZero(gr.Semi) {
		return gr, ErrGeometricDegeneracy
	}
	return gr, nil
}

// diameter draws a log-normal diameter inside [min, max].
func (g *Generator) diameter(p *stats.Phase) float64 {
	ln := distuv.LogNormal{Mu: p.Size.Mu, Sigma: p.Size.Sigma, Src: g.rnd}
	var d float64
	for i := 0; i < maxDiameterDraws; i++ {
		d = ln.Rand()
		if d >= p.Size.MinDiameter && d <= p.Size.MaxDiameter {
			return d
		}
	}
	return math.Max(p.Size.MinDiameter, math.Min(d, p.Size.MaxDiameter))
}

// beta draws from b. Unfitted parameters yield 1, the equiaxed ratio.
func (g *Generator) beta(b stats.BetaParams) float64 {
	if !b.Valid() {
		return 1
	}
	return distuv.Beta{Alpha: b.Alpha, Beta: b.Beta, Src: g.rnd}.Rand()
}

// uniformEuler draws Euler angles of a uniformly random rotation.
func (g *Generator) uniformEuler() orient.Euler {
	return orient.Euler{
		Phi1: 2 * math.Pi * g.rnd.Float64(),
		Phi:  math.Acos(2*g.rnd.Float64() - 1),
		Phi2: 2 * math.Pi * g.rnd.Float64(),
	}
}
