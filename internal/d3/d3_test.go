package d3

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestFrameRoundTrip(t *testing.T) {
	const tol = 1e-12
	q := r3.NewRotation(1.1, r3.Vec{X: 1, Y: -2, Z: 0.5})
	f := NewFrame(r3.Vec{X: 3, Y: 4, Z: 5}, q)
	for _, p := range []r3.Vec{{}, {X: 1}, {X: -2, Y: 7, Z: 0.25}} {
		got := f.ToWorld(f.ToLocal(p))
		assert.True(t, EqualWithin(got, p, tol), "round trip of %v gave %v", p, got)
	}
}

func TestFrameMatchesRotation(t *testing.T) {
	const tol = 1e-12
	q := r3.NewRotation(math.Pi/3, r3.Vec{X: 0.2, Y: 1, Z: -0.4})
	f := NewFrame(r3.Vec{}, q)
	v := r3.Vec{X: 1, Y: 2, Z: 3}
	want := q.Rotate(v)
	got := f.ToWorld(v)
	assert.True(t, EqualWithin(got, want, tol), "want %v, got %v", want, got)
	assert.Equal(t, v, (Frame{}).ToWorld(v), "zero Frame is the identity")
}

func TestFrameBounds(t *testing.T) {
	f := NewFrame(r3.Vec{X: 10}, r3.NewRotation(math.Pi/2, r3.Vec{Z: 1}))
	bb := f.Bounds(r3.Vec{X: 3, Y: 1, Z: 2})
	want := Box{Min: r3.Vec{X: 9, Y: -3, Z: -2}, Max: r3.Vec{X: 11, Y: 3, Z: 2}}
	assert.True(t, bb.Equals(want, 1e-9), "want %v, got %v", want, bb)
}

func TestDimsFlat(t *testing.T) {
	d := Dims{4, 5, 6}
	for n := 0; n < d.Len(); n++ {
		i := d.Unflat(n)
		require.True(t, d.In(i), "flat %d unflattened to %v", n, i)
		require.Equal(t, n, d.Flat(i))
	}
	assert.Equal(t, Index{3, 0, 1}, d.Wrap(Index{-1, 5, 13}))
}

func TestDimsRange(t *testing.T) {
	d := Dims{4, 4, 4}
	seen := map[int]int{}
	d.Range(Index{-2, -2, -2}, Index{5, 0, 0}, true, func(i Index, n int) {
		seen[n]++
		assert.Equal(t, n, d.Flat(d.Wrap(i)), "index %v", i)
	})
	assert.Len(t, seen, 4*3*3, "periodic range clips to one period")
	for n, c := range seen {
		assert.Equal(t, 1, c, "cell %d", n)
	}
	count := 0
	d.Range(Index{-2, -2, -2}, Index{5, 0, 0}, false, func(i Index, n int) {
		assert.True(t, d.In(i), "clipped range visited %v", i)
		count++
	})
	assert.Equal(t, 4, count)
}
