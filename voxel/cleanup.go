package voxel

import "github.com/BlueQuartzSoftware/DREAM3D-sub042/internal/d3"

// cleanup finds the 6-connected fragments of every grain and deletes those
// holding fewer voxels than the minimum grain volume of the grain's phase,
// unless they touch a face of a non-periodic volume. Deleted voxels become
// Unassigned.
func (a *Assigner) cleanup(st *assignment) {
	v := a.vol
	ids := v.IDs
	seen := make([]bool, len(ids))
	cell := v.res * v.res * v.res
	var frag, queue []int
	for start, id := range ids {
		if id <= 0 || seen[start] {
			continue
		}
		frag, queue = frag[:0], append(queue[:0], start)
		seen[start] = true
		touches := false
		for len(queue) > 0 {
			n := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			frag = append(frag, n)
			idx := v.dims.Unflat(n)
			if !v.periodic && v.dims.OnBoundary(idx) {
				touches = true
			}
			for _, off := range d3.Faces {
				j := idx.Add(off)
				if v.periodic {
					j = v.dims.Wrap(j)
				} else if !v.dims.In(j) {
					continue
				}
				m := v.dims.Flat(j)
				if !seen[m] && ids[m] == id {
					seen[m] = true
					queue = append(queue, m)
				}
			}
		}
		ph := &a.phases[st.grains[id-1].Phase]
		if touches || float64(len(frag))*cell >= ph.MinGrainVolume() {
			continue
		}
		for _, n := range frag {
			ids[n] = Unassigned
		}
		st.counts[id] -= len(frag)
		st.sum.Fragments++
	}
}
