package dsp

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// KMeans clusters the vectors into at most k groups and returns one label
// per vector. Seeds are chosen by farthest-first traversal starting from the
// vector closest to the global mean, so the result is deterministic.
// Labels are renumbered in order of first appearance.
func KMeans(x [][]float64, k, iters int) []int {
	n := len(x)
	if n == 0 {
		return nil
	}
	k = min(max(k, 1), n)
	dim := len(x[0])

	mean := make([]float64, dim)
	for _, v := range x {
		floats.Add(mean, v)
	}
	floats.Scale(1/float64(n), mean)

	centroids := make([][]float64, 0, k)
	first := nearest(x, mean)
	centroids = append(centroids, append([]float64(nil), x[first]...))
	minDist := make([]float64, n)
	for i, v := range x {
		minDist[i] = floats.Distance(v, centroids[0], 2)
	}
	for len(centroids) < k {
		far := floats.MaxIdx(minDist)
		if minDist[far] == 0 {
			break
		}
		c := append([]float64(nil), x[far]...)
		centroids = append(centroids, c)
		for i, v := range x {
			minDist[i] = math.Min(minDist[i], floats.Distance(v, c, 2))
		}
	}

	labels := make([]int, n)
	for range max(iters, 1) {
		changed := false
		for i, v := range x {
			l := nearest(centroids, v)
			if l != labels[i] {
				labels[i] = l
				changed = true
			}
		}
		counts := make([]int, len(centroids))
		sums := make([][]float64, len(centroids))
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, v := range x {
			floats.Add(sums[labels[i]], v)
			counts[labels[i]]++
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			floats.ScaleTo(centroids[c], 1/float64(counts[c]), sums[c])
		}
		if !changed {
			break
		}
	}
	return Relabel(labels)
}

// BIC scores a clustering with the x-means criterion for spherical
// gaussians. Larger is better.
func BIC(x [][]float64, labels []int) float64 {
	n := len(x)
	if n == 0 {
		return math.Inf(-1)
	}
	dim := len(x[0])
	k := 0
	for _, l := range labels {
		k = max(k, l+1)
	}
	centroids := make([][]float64, k)
	counts := make([]int, k)
	for c := range centroids {
		centroids[c] = make([]float64, dim)
	}
	for i, v := range x {
		floats.Add(centroids[labels[i]], v)
		counts[labels[i]]++
	}
	for c := range centroids {
		if counts[c] > 0 {
			floats.Scale(1/float64(counts[c]), centroids[c])
		}
	}

	var sse float64
	for i, v := range x {
		d := floats.Distance(v, centroids[labels[i]], 2)
		sse += d * d
	}
	if n <= k {
		return math.Inf(-1)
	}
	variance := math.Max(sse/float64((n-k)*dim), 1e-12)

	var ll float64
	for _, cn := range counts {
		if cn == 0 {
			continue
		}
		fc := float64(cn)
		ll += fc*math.Log(fc) - fc*math.Log(float64(n)) -
			fc*float64(dim)/2*math.Log(2*math.Pi*variance) -
			float64(dim)*(fc-1)/2
	}
	params := float64(k-1) + float64(k*dim) + 1
	return ll - params/2*math.Log(float64(n))
}

// XMeans runs KMeans for every k in [1, kmax] and returns the labels with the
// best BIC. Ties favour fewer clusters.
func XMeans(x [][]float64, kmax, iters int) []int {
	best := KMeans(x, 1, iters)
	bestScore := BIC(x, best)
	for k := 2; k <= min(kmax, len(x)); k++ {
		labels := KMeans(x, k, iters)
		if score := BIC(x, labels); score > bestScore {
			best, bestScore = labels, score
		}
	}
	return best
}

// Relabel renumbers labels in order of first appearance.
func Relabel(labels []int) []int {
	ids := make(map[int]int)
	out := make([]int, len(labels))
	for i, l := range labels {
		id, ok := ids[l]
		if !ok {
			id = len(ids)
			ids[l] = id
		}
		out[i] = id
	}
	return out
}

// Mode returns the most frequent label, the smallest on ties.
func Mode(labels []int) int {
	counts := make(map[int]int)
	best, bestCount := 0, 0
	for _, l := range labels {
		counts[l]++
	}
	for l, c := range counts {
		if c > bestCount || (c == bestCount && l < best) {
			best, bestCount = l, c
		}
	}
	return best
}

func nearest(points [][]float64, v []float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, p := range points {
		if d := floats.Distance(p, v, 2); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
