package orient

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
)

// binning discretizes homochoric-like coordinates
//
//	h = axis * cbrt(0.75*(w - sin w))
//
// over the cube [-dim, dim] per axis where dim is the coordinate of a
// rotation by the fundamental-zone half-angle of that axis.
type binning struct {
	dims  [3]int
	halfs [3]float64 // fundamental-zone half-angles, radians.
	dim   [3]float64 // extent of the cube per axis.
	step  [3]float64
}

func (b binning) init() binning {
	for i := range b.dims {
		b.dim[i] = homochoricMag(b.halfs[i])
		b.step[i] = 2 * b.dim[i] / float64(b.dims[i])
	}
	return b
}

// homochoricMag returns cbrt(0.75*(w - sin w)).
func homochoricMag(w float64) float64 {
	return math.Cbrt(0.75 * (w - math.Sin(w)))
}

// homochoricAngle inverts homochoricMag on [0, π]. The cbrt(8.25 h³)
// approximation seeds a bracketed Newton iteration.
func homochoricAngle(h float64) float64 {
	if h <= 0 {
		return 0
	}
	c := 4 * h * h * h / 3 // w - sin(w) = c
	if c >= math.Pi {
		return math.Pi
	}
	lo, hi := 0.0, math.Pi
	w := math.Min(math.Cbrt(8.25*h*h*h), math.Pi)
	for i := 0; i < 100; i++ {
		f := w - math.Sin(w) - c
		if math.Abs(f) < 1e-15 {
			break
		}
		if f > 0 {
			hi = w
		} else {
			lo = w
		}
		df := 1 - math.Cos(w)
		next := w - f/df
		if df == 0 || !(next > lo && next < hi) {
			next = (lo + hi) / 2
		}
		if next == w {
			break
		}
		w = next
	}
	return w
}

// NumBins returns the number of orientation bins of the group's ODF
// (5832 for cubic, 15552 for hexagonal).
func (g *Group) NumBins() int {
	d := g.bins.dims
	return d[0] * d[1] * d[2]
}

// BinDims returns the number of bins along each homochoric axis.
func (g *Group) BinDims() [3]int { return g.bins.dims }

// AxisAngleToBin returns the flat ODF bin index of a rotation by angle
// degrees about axis. Indices outside the grid are clamped to the nearest valid bin.
func (g *Group) AxisAngleToBin(angle float64, axis r3.Vec) int {
	w := angle * math.Pi / 180
	n := r3.Norm(axis)
	if n == 0 || w == 0 {
		axis, n = r3.Vec{Z: 1}, 1
	}
	hm := homochoricMag(w) / n
	h := [3]float64{axis.X * hm, axis.Y * hm, axis.Z * hm}
	b := g.bins
	var idx [3]int
	for i := range idx {
		k := int(math.Floor((h[i] + b.dim[i]) / b.step[i]))
		if k < 0 {
			k = 0
		}
		if k >= b.dims[i] {
			k = b.dims[i] - 1
		}
		idx[i] = k
	}
	return idx[0] + b.dims[0]*idx[1] + b.dims[0]*b.dims[1]*idx[2]
}

// QuatToBin reduces q to the fundamental zone and returns its ODF bin.
func (g *Group) QuatToBin(q Quat) int {
	angle, axis := QuatToAxisAngle(g.ReduceQuat(q))
	return g.AxisAngleToBin(angle*180/math.Pi, axis)
}

// binSampleTries bounds the redraws inside a bin cell that straddles
// the fundamental zone boundary.
const binSampleTries = 1000

// BinToEuler draws an orientation uniformly from the homochoric cell of
// the flat ODF bin and returns its Bunge Euler angles. Draws falling outside
// the fundamental zone are repeated within the same cell.
func (g *Group) BinToEuler(bin int, rnd *rand.Rand) Euler {
	q := g.BinToQuat(bin, rnd)
	if q.Real > 0 {
		return RodriguesToEuler(QuatToRodrigues(q))
	}
	return QuatToEuler(q)
}

// BinToQuat is like BinToEuler but returns the sampled quaternion. If no
// draw lands in the fundamental zone a fixed in-zone point of the cell is
// returned; cells lying wholly outside the zone yield the reduced last draw.
func (g *Group) BinToQuat(bin int, rnd *rand.Rand) Quat {
	if bin < 0 {
		bin = 0
	}
	if n := g.NumBins(); bin >= n {
		bin = n - 1
	}
	idx := g.bins.unflat(bin)
	var q Quat
	for try := 0; try < binSampleTries; try++ {
		q = g.bins.cellPoint(idx, [3]float64{rnd.Float64(), rnd.Float64(), rnd.Float64()})
		if g.InFundamentalZone(q) {
			return q
		}
	}
	t := g.table()
	if t.hasRep[bin] {
		return t.reps[bin]
	}
	return g.ReduceQuat(q)
}

func (b *binning) unflat(bin int) [3]int {
	return [3]int{
		bin % b.dims[0],
		(bin / b.dims[0]) % b.dims[1],
		bin / (b.dims[0] * b.dims[1]),
	}
}

// cellPoint maps the fractional position f in [0,1)³ of cell idx to the
// rotation with those homochoric coordinates.
func (b *binning) cellPoint(idx [3]int, f [3]float64) Quat {
	h := r3.Vec{
		X: b.step[0]*(float64(idx[0])+f[0]) - b.dim[0],
		Y: b.step[1]*(float64(idx[1])+f[1]) - b.dim[1],
		Z: b.step[2]*(float64(idx[2])+f[2]) - b.dim[2],
	}
	hm := r3.Norm(h)
	if hm == 0 {
		return Quat{Real: 1}
	}
	w := homochoricAngle(hm)
	if w >= math.Pi {
		return Quat{Imag: h.X / hm, Jmag: h.Y / hm, Kmag: h.Z / hm}
	}
	// Rodrigues vector with |r| = tan(w/2).
	return RodriguesToQuat(r3.Scale(math.Tan(w/2)/hm, h))
}

// binTable caches per-bin properties of a group's ODF grid.
type binTable struct {
	// weights is the fraction of each cell inside the fundamental zone.
	// The homochoric map preserves volume, so these are the bin
	// probabilities of a random texture.
	weights []float64
	reps    []Quat
	hasRep  []bool
}

// binSubsamples is the per-axis sub-sampling of a cell when estimating
// the fraction of it inside the fundamental zone.
const binSubsamples = 4

func (g *Group) table() *binTable {
	g.tableOnce.Do(func() {
		n := g.NumBins()
		t := &binTable{
			weights: make([]float64, n),
			reps:    make([]Quat, n),
			hasRep:  make([]bool, n),
		}
		const m = binSubsamples
		for bin := 0; bin < n; bin++ {
			idx := g.bins.unflat(bin)
			inside := 0
			for i := 0; i < m*m*m; i++ {
				f := [3]float64{
					(float64(i%m) + 0.5) / m,
					(float64(i/m%m) + 0.5) / m,
					(float64(i/(m*m)) + 0.5) / m,
				}
				q := g.bins.cellPoint(idx, f)
				if !g.InFundamentalZone(q) {
					continue
				}
				if inside == 0 {
					t.reps[bin], t.hasRep[bin] = q, true
				}
				inside++
			}
			t.weights[bin] = float64(inside) / (m * m * m)
		}
		g.tab = t
	})
	return g.tab
}

// RandomTexture returns the ODF density of a random texture: every bin
// weighted by the fraction of its cell inside the fundamental zone.
func (g *Group) RandomTexture() []float64 {
	return append([]float64(nil), g.table().weights...)
}
