package shape

import (
	"math"
	"sync"
)

// tableLen is the number of entries of the omega3 lookup tables.
const tableLen = 41

// sphereOmega normalizes omega3 so that a sphere scores 1.
var sphereOmega = math.Pow(4*math.Pi/3, 5) / math.Pow(4*math.Pi/15, 3)

// Omega3 returns the moment invariant V⁵/det(J) of a body with volume v and
// principal second moments jx, jy, jz, normalized to 1 for a sphere.
func Omega3(v, jx, jy, jz float64) float64 {
	return math.Pow(v, 5) / (jx * jy * jz) / sphereOmega
}

// omegaTable maps a shape parameter to the omega3 of the body it describes.
type omegaTable struct {
	param [tableLen]float64
	omega [tableLen]float64
}

// nearest returns the parameter whose omega3 is closest to omega3.
func (t *omegaTable) nearest(omega3 float64) float64 {
	best := 0
	for i := 1; i < tableLen; i++ {
		if math.Abs(t.omega[i]-omega3) < math.Abs(t.omega[best]-omega3) {
			best = i
		}
	}
	return t.param[best]
}

var (
	superOnce  sync.Once
	superTable omegaTable
	cubeOnce   sync.Once
	cubeTable  omegaTable
)

// superEllipsoidTable relates exponents n in [2, 10] to omega3:
//
//	V = 8 Γ(1+1/n)³ / Γ(1+3/n)
//	J = 8/n³ Γ(3/n) Γ(1/n)² / Γ(1+5/n)
func superEllipsoidTable() *omegaTable {
	superOnce.Do(func() {
		for i := range superTable.param {
			n := 2 + 0.2*float64(i)
			g1 := math.Gamma(1 + 1/n)
			v := 8 * g1 * g1 * g1 / math.Gamma(1+3/n)
			gi := math.Gamma(1 / n)
			j := 8 / (n * n * n) * math.Gamma(3/n) * gi * gi / ((5 / n) * math.Gamma(5/n))
			superTable.param[i] = n
			superTable.omega[i] = Omega3(v, j, j, j)
		}
	})
	return &superTable
}

// cubeOctahedronTable relates s in [2, 3] (cuboctahedron to cube) to omega3.
// Moments are integrated numerically over the positive octant.
func cubeOctahedronTable() *omegaTable {
	cubeOnce.Do(func() {
		const m = 48
		const h = 1.0 / m
		for i := range cubeTable.param {
			s := 2 + 0.025*float64(i)
			var v, j float64
			for ix := 0; ix < m; ix++ {
				x := (float64(ix) + 0.5) * h
				for iy := 0; iy < m; iy++ {
					y := (float64(iy) + 0.5) * h
					for iz := 0; iz < m; iz++ {
						z := (float64(iz) + 0.5) * h
						if x+y+z <= s {
							v++
							j += x * x
						}
					}
				}
			}
			dv := 8 * h * h * h
			v *= dv
			j *= dv
			cubeTable.param[i] = s
			cubeTable.omega[i] = Omega3(v, j, j, j)
		}
	})
	return &cubeTable
}
