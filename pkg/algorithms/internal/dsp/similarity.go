package dsp

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SelfSimilarity returns the N×N similarity between the rows of x,
// 1 - d/max(d) where d is the euclidean distance.
func SelfSimilarity(x mat.Matrix) *mat.SymDense {
	n, _ := x.Dims()
	rows := Rows(x)
	dist := mat.NewSymDense(n, nil)
	var peak float64
	for i := range n {
		for j := i + 1; j < n; j++ {
			d := floats.Distance(rows[i], rows[j], 2)
			dist.SetSym(i, j, d)
			peak = math.Max(peak, d)
		}
	}
	s := mat.NewSymDense(n, nil)
	for i := range n {
		s.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			v := 1.0
			if peak > 0 {
				v = 1 - dist.At(i, j)/peak
			}
			s.SetSym(i, j, v)
		}
	}
	return s
}

// Recurrence returns the binary k-nearest-neighbour recurrence matrix of the
// rows of x. Frames i and j recur when each is among the k nearest
// neighbours of the other; frames closer than width to each other are
// excluded.
func Recurrence(x mat.Matrix, k, width int) *mat.SymDense {
	n, _ := x.Dims()
	rows := Rows(x)
	k = min(max(k, 1), max(n-1, 1))

	near := make([]map[int]bool, n)
	idx := make([]int, 0, n)
	dist := make([]float64, n)
	for i := range n {
		idx = idx[:0]
		for j := range n {
			dist[j] = floats.Distance(rows[i], rows[j], 2)
			if abs(i-j) >= width && i != j {
				idx = append(idx, j)
			}
		}
		sort.SliceStable(idx, func(a, b int) bool { return dist[idx[a]] < dist[idx[b]] })
		near[i] = make(map[int]bool, k)
		for _, j := range idx[:min(k, len(idx))] {
			near[i][j] = true
		}
	}

	r := mat.NewSymDense(n, nil)
	for i := range n {
		for j := range near[i] {
			if j > i && near[j][i] {
				r.SetSym(i, j, 1)
			}
		}
	}
	return r
}

// Lag converts a recurrence matrix to its circular time-lag representation:
// out[i][l] = r[i][(i+l) mod n].
func Lag(r mat.Matrix) *mat.Dense {
	n, _ := r.Dims()
	out := mat.NewDense(n, n, nil)
	for i := range n {
		for l := range n {
			out.Set(i, l, r.At(i, (i+l)%n))
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
