package pack

import (
	"math"

	"github.com/BlueQuartzSoftware/DREAM3D-sub042/internal/d3"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/orient"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// site is a grain centroid, or a periodic image of one, in a kd-tree.
type site struct {
	p     r3.Vec
	grain int
}

func (s *site) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(*site)
	switch d {
	case 0:
		return s.p.X - q.p.X
	case 1:
		return s.p.Y - q.p.Y
	case 2:
		return s.p.Z - q.p.Z
	}
	panic("unreachable")
}

func (s *site) Dims() int { return 3 }

// Distance returns the squared euclidean distance.
func (s *site) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(s.p, c.(*site).p))
}

type sites []site

func (s sites) Index(i int) kdtree.Comparable { return &s[i] }
func (s sites) Len() int                      { return len(s) }
func (s sites) Slice(start, end int) kdtree.Interface {
	return s[start:end]
}
func (s sites) Pivot(d kdtree.Dim) int {
	p := sitePlane{dim: d, sites: s}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

type sitePlane struct {
	dim   kdtree.Dim
	sites sites
}

func (p sitePlane) Less(i, j int) bool {
	return p.sites[i].Compare(&p.sites[j], p.dim) < 0
}
func (p sitePlane) Swap(i, j int) { p.sites[i], p.sites[j] = p.sites[j], p.sites[i] }
func (p sitePlane) Len() int      { return len(p.sites) }
func (p sitePlane) Slice(start, end int) kdtree.SortSlicer {
	p.sites = p.sites[start:end]
	return p
}

// neighborRings are the search radii in units of the grain radius.
var neighborRings = [3]float64{1, 2, 3}

// scoreRing is the ring whose counts are compared with the target
// neighbor distributions. Touching equal spheres are two radii apart.
const scoreRing = 1

// neighborTree indexes the grain centroids. Periodic domains add the
// images of centroids within reach of a face.
func (o *Optimizer) neighborTree() *kdtree.Tree {
	pts := make(sites, 0, len(o.grains))
	reach := 0.0
	for i := range o.grains {
		pts = append(pts, site{p: o.grains[i].Centroid, grain: i})
		reach = math.Max(reach, neighborRings[2]*o.grains[i].Radius())
	}
	if o.cfg.Periodic {
		size := o.domain.Size()
		grown := d3.Box{Min: r3.Sub(o.domain.Min, d3.Elem(reach)), Max: r3.Add(o.domain.Max, d3.Elem(reach))}
		for i := range o.grains {
			c := o.grains[i].Centroid
			for _, s := range imageShifts {
				if s == (r3.Vec{}) {
					continue
				}
				p := r3.Add(c, d3.MulElem(s, size))
				if grown.Contains(p) {
					pts = append(pts, site{p: p, grain: i})
				}
			}
		}
	}
	return kdtree.New(pts, false)
}

// imageShifts are the 27 periodic image offsets in units of the domain size.
var imageShifts = func() []r3.Vec {
	var s []r3.Vec
	for z := -1.0; z <= 1; z++ {
		for y := -1.0; y <= 1; y++ {
			for x := -1.0; x <= 1; x++ {
				s = append(s, r3.Vec{X: x, Y: y, Z: z})
			}
		}
	}
	return s
}()

// neighborsOf returns the distance to every other grain within r of grain
// i's centroid, keeping the nearest periodic image.
func (o *Optimizer) neighborsOf(tree *kdtree.Tree, i int, r float64) map[int]float64 {
	k := kdtree.NewDistKeeper(r * r)
	tree.NearestSet(k, &site{p: o.grains[i].Centroid, grain: i})
	out := make(map[int]float64)
	for _, cd := range k.Heap {
		s, ok := cd.Comparable.(*site)
		if !ok || s == nil || s.grain == i {
			continue
		}
		d := math.Sqrt(cd.Dist)
		if old, seen := out[s.grain]; !seen || d < old {
			out[s.grain] = d
		}
	}
	return out
}

// CountNeighbors sets every grain's neighbor counts: the number of other
// grains whose centroids lie within 1, 2 and 3 times the grain's own
// radius or the neighbor's radius, whichever is larger.
func (o *Optimizer) CountNeighbors() {
	if len(o.grains) == 0 {
		return
	}
	tree := o.neighborTree()
	rmax := 0.0
	for i := range o.grains {
		rmax = math.Max(rmax, o.grains[i].Radius())
	}
	for i := range o.grains {
		g := &o.grains[i]
		r := g.Radius()
		g.Neighbors = [3]int{}
		for j, d := range o.neighborsOf(tree, i, neighborRings[2]*rmax) {
			reach := math.Max(r, o.grains[j].Radius())
			for k, ring := range neighborRings {
				if d < ring*reach {
					g.Neighbors[k]++
				}
			}
		}
	}
}

// PhaseScore compares the grains of one phase with its targets. Scores are
// Bhattacharyya coefficients, 1 for identical distributions.
type PhaseScore struct {
	Grains int
	// Size compares the size histogram with the truncated log-normal.
	Size float64
	// Neighbors compares the mean neighbor count per size bin with the
	// power law targets, both normalized to unit sum.
	Neighbors float64
	// SizeHistogram and NeighborHistogram are the normalized simulated
	// histograms; the targets come from the phase.
	SizeHistogram     []float64
	NeighborHistogram []float64
	// Misorientation is the normalized histogram of disorientations
	// between neighboring grains of the phase, in MisorientationBins bins
	// over [0, maximum disorientation].
	Misorientation []float64
}

// MisorientationBins is the number of bins of PhaseScore.Misorientation.
const MisorientationBins = 36

// Scores compares the current grains with the targets of every phase.
// Neighbor counts must be current; see CountNeighbors.
func (o *Optimizer) Scores() []PhaseScore {
	out := make([]PhaseScore, len(o.phases))
	for ph := range o.phases {
		p := &o.phases[ph]
		nb := p.NumBins()
		size := make([]float64, nb)
		nsum := make([]float64, nb)
		for i := range o.grains {
			g := &o.grains[i]
			if g.Phase != ph {
				continue
			}
			out[ph].Grains++
			size[g.SizeBin]++
			nsum[g.SizeBin] += float64(g.Neighbors[scoreRing])
		}
		for k := range nsum {
			if size[k] > 0 {
				nsum[k] /= size[k]
			}
		}
		out[ph].Size = bhattacharyya(size, p.TargetSizeHistogram())
		out[ph].Neighbors = bhattacharyya(nsum, p.TargetNeighborHistogram())
		out[ph].SizeHistogram = normalized(size)
		out[ph].NeighborHistogram = normalized(nsum)
	}
	o.misorientations(out)
	return out
}

// misorientations fills the neighbor disorientation histogram of every
// phase from the pairs of same-phase grains within the score ring.
func (o *Optimizer) misorientations(out []PhaseScore) {
	if len(o.grains) == 0 {
		for ph := range out {
			out[ph].Misorientation = make([]float64, MisorientationBins)
		}
		return
	}
	tree := o.neighborTree()
	pairs := make([][][2]int, len(o.phases))
	seen := make(map[[2]int]bool)
	for i := range o.grains {
		g := &o.grains[i]
		for j := range o.neighborsOf(tree, i, neighborRings[scoreRing]*g.Radius()) {
			if o.grains[j].Phase != g.Phase {
				continue
			}
			key := [2]int{min(i, j), max(i, j)}
			if seen[key] {
				continue
			}
			seen[key] = true
			pairs[g.Phase] = append(pairs[g.Phase], key)
		}
	}
	q := make([]orient.Quat, len(o.grains))
	for i := range o.grains {
		q[i] = o.grains[i].Quat
	}
	for ph := range out {
		out[ph].Misorientation = o.phases[ph].Group().MisorientationHistogram(q, pairs[ph], MisorientationBins)
	}
}

func normalized(h []float64) []float64 {
	out := append([]float64(nil), h...)
	if s := floats.Sum(out); s > 0 {
		floats.Scale(1/s, out)
	}
	return out
}
