package dsp

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Tree is the result of temporally constrained agglomerative clustering.
// Only neighbouring clusters are merged, so every cut of the tree is a
// segmentation of the time axis.
type Tree struct {
	n      int
	merged []int // segment start frames in the order they were merged away
}

// Agglomerate clusters the rows of x bottom-up, always merging the pair of
// adjacent clusters with the smallest Ward cost.
func Agglomerate(x mat.Matrix) *Tree {
	n, d := x.Dims()
	if n == 0 {
		return &Tree{}
	}
	type cluster struct {
		start, size int
		sum         []float64
		next        int
	}
	cs := make([]cluster, n)
	for i := range n {
		cs[i] = cluster{start: i, size: 1, sum: mat.Row(nil, i, x), next: i + 1}
	}
	cs[n-1].next = -1

	mean := make([]float64, d)
	other := make([]float64, d)
	ward := func(a, b int) float64 {
		floats.ScaleTo(mean, 1/float64(cs[a].size), cs[a].sum)
		floats.ScaleTo(other, 1/float64(cs[b].size), cs[b].sum)
		dist := floats.Distance(mean, other, 2)
		na, nb := float64(cs[a].size), float64(cs[b].size)
		return na * nb / (na + nb) * dist * dist
	}

	t := &Tree{n: n, merged: make([]int, 0, max(n-1, 0))}
	for range n - 1 {
		best, bestCost := -1, math.Inf(1)
		for a := 0; a != -1; a = cs[a].next {
			b := cs[a].next
			if b == -1 {
				break
			}
			if c := ward(a, b); c < bestCost {
				best, bestCost = a, c
			}
		}
		b := cs[best].next
		floats.Add(cs[best].sum, cs[b].sum)
		cs[best].size += cs[b].size
		cs[best].next = cs[b].next
		t.merged = append(t.merged, cs[b].start)
	}
	return t
}

// Cut returns the start frames (excluding frame 0) of the segmentation into
// k segments, in ascending order.
func (t *Tree) Cut(k int) []int {
	if t.n == 0 {
		return nil
	}
	k = min(max(k, 1), t.n)
	removed := make(map[int]bool, t.n-k)
	for _, s := range t.merged[:t.n-k] {
		removed[s] = true
	}
	starts := make([]int, 0, k-1)
	for i := 1; i < t.n; i++ {
		if !removed[i] {
			starts = append(starts, i)
		}
	}
	return starts
}

// Len returns the number of leaves.
func (t *Tree) Len() int { return t.n }
