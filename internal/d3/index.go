package d3

import "gonum.org/v1/gonum/spatial/r3"

// Index is an integer 3D vector addressing a voxel or grid cell.
type Index [3]int

// Add adds two indices. Return v = a + b.
func (a Index) Add(b Index) Index {
	return Index{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Vec converts the index to the r3.Vec at the center of the cell
// of side length res.
func (a Index) Vec(res float64) r3.Vec {
	return r3.Vec{
		X: (float64(a[0]) + 0.5) * res,
		Y: (float64(a[1]) + 0.5) * res,
		Z: (float64(a[2]) + 0.5) * res,
	}
}

// Dims describes a dense 3D grid stored x-fastest.
type Dims Index

// Len returns the number of cells in the grid.
func (d Dims) Len() int { return d[0] * d[1] * d[2] }

// Flat returns the linear offset of i. i must lie inside the grid.
func (d Dims) Flat(i Index) int {
	return i[0] + d[0]*(i[1]+d[1]*i[2])
}

// Unflat is the inverse of Flat.
func (d Dims) Unflat(n int) Index {
	x := n % d[0]
	n /= d[0]
	return Index{x, n % d[1], n / d[1]}
}

// In reports whether i lies inside the grid.
func (d Dims) In(i Index) bool {
	return i[0] >= 0 && i[1] >= 0 && i[2] >= 0 &&
		i[0] < d[0] && i[1] < d[1] && i[2] < d[2]
}

// Wrap maps i into the grid periodically.
func (d Dims) Wrap(i Index) Index {
	for k := 0; k < 3; k++ {
		i[k] %= d[k]
		if i[k] < 0 {
			i[k] += d[k]
		}
	}
	return i
}

// Range calls fn for every cell of the inclusive range [lo, hi] with the
// cell's unwrapped index and the flat offset of the cell it maps to. A
// periodic grid wraps the range around its faces, visiting each cell at
// most once; otherwise the range is clipped to the grid.
func (d Dims) Range(lo, hi Index, periodic bool, fn func(i Index, n int)) {
	for k := 0; k < 3; k++ {
		if periodic {
			if hi[k]-lo[k] >= d[k] {
				hi[k] = lo[k] + d[k] - 1
			}
			continue
		}
		lo[k] = max(lo[k], 0)
		hi[k] = min(hi[k], d[k]-1)
	}
	for z := lo[2]; z <= hi[2]; z++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for x := lo[0]; x <= hi[0]; x++ {
				i := Index{x, y, z}
				j := i
				if periodic {
					j = d.Wrap(i)
				}
				fn(i, d.Flat(j))
			}
		}
	}
}

// OnBoundary reports whether i touches a face of the grid.
func (d Dims) OnBoundary(i Index) bool {
	return i[0] == 0 || i[1] == 0 || i[2] == 0 ||
		i[0] == d[0]-1 || i[1] == d[1]-1 || i[2] == d[2]-1
}

// Faces are the six 6-connected neighbor offsets.
var Faces = [6]Index{
	{-1, 0, 0}, {1, 0, 0},
	{0, -1, 0}, {0, 1, 0},
	{0, 0, -1}, {0, 0, 1},
}
