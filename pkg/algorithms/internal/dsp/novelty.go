package dsp

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Gaussian returns a symmetric gaussian window of length m with standard
// deviation std.
func Gaussian(m int, std float64) []float64 {
	w := make([]float64, m)
	c := float64(m-1) / 2
	for i := range w {
		d := float64(i) - c
		w[i] = math.Exp(-d * d / (2 * std * std))
	}
	return w
}

// Checkerboard returns the m×m gaussian-tapered checkerboard kernel used to
// detect novelty along the diagonal of a self-similarity matrix.
func Checkerboard(m int) *mat.Dense {
	m = max(m, 2)
	g := Gaussian(m, math.Max(float64(m/3), 1))
	k := mat.NewDense(m, m, nil)
	half := m / 2
	for i := range m {
		for j := range m {
			v := g[i] * g[j]
			if (i < half) != (j < half) {
				v = -v
			}
			k.Set(i, j, v)
		}
	}
	return k
}

// Novelty correlates kernel along the main diagonal of s. Cells outside s
// count as zero. The curve is normalized into [0, 1].
func Novelty(s mat.Matrix, kernel mat.Matrix) []float64 {
	n, _ := s.Dims()
	m, _ := kernel.Dims()
	half := m / 2
	nc := make([]float64, n)
	for i := range n {
		var acc float64
		for a := range m {
			r := i - half + a
			if r < 0 || r >= n {
				continue
			}
			for b := range m {
				c := i - half + b
				if c < 0 || c >= n {
					continue
				}
				acc += s.At(r, c) * kernel.At(a, b)
			}
		}
		nc[i] = acc
	}
	NormalizeCurve(nc)
	return nc
}

// Differences returns the euclidean distance between consecutive rows of x,
// with a leading zero so the curve has one value per row.
func Differences(x mat.Matrix) []float64 {
	rows := Rows(x)
	nc := make([]float64, len(rows))
	for i := 1; i < len(rows); i++ {
		nc[i] = floats.Distance(rows[i], rows[i-1], 2)
	}
	NormalizeCurve(nc)
	return nc
}

// GaussianFilter smooths x with a gaussian of the given sigma, reflecting at
// the edges.
func GaussianFilter(x []float64, sigma float64) []float64 {
	if sigma <= 0 || len(x) == 0 {
		return append([]float64(nil), x...)
	}
	radius := int(4*sigma + 0.5)
	w := Gaussian(2*radius+1, sigma)
	floats.Scale(1/floats.Sum(w), w)
	out := make([]float64, len(x))
	for i := range x {
		var acc float64
		for k, wk := range w {
			acc += wk * x[reflect(i+k-radius, len(x))]
		}
		out[i] = acc
	}
	return out
}

// MedianFilter replaces every value by the median of a centred window of the
// given size, reflecting at the edges.
func MedianFilter(x []float64, size int) []float64 {
	if size <= 1 || len(x) == 0 {
		return append([]float64(nil), x...)
	}
	out := make([]float64, len(x))
	win := make([]float64, size)
	for i := range x {
		for k := range size {
			win[k] = x[reflect(i+k-size/2, len(x))]
		}
		sort.Float64s(win)
		out[i] = stat.Quantile(0.5, stat.Empirical, win, nil)
	}
	return out
}

// MedianFilterRows median-filters every column of x along time.
func MedianFilterRows(x *mat.Dense, size int) *mat.Dense {
	r, c := x.Dims()
	out := mat.NewDense(r, c, nil)
	col := make([]float64, r)
	for j := range c {
		mat.Col(col, j, x)
		out.SetCol(j, MedianFilter(col, size))
	}
	return out
}

// PickPeaks returns the local maxima of nc that exceed an adaptive
// threshold: the median of a window of size l plus offset times the curve
// mean. The curve is smoothed with a gaussian of the given sigma first.
func PickPeaks(nc []float64, l int, sigma, offset float64) []int {
	if len(nc) < 3 {
		return nil
	}
	off := stat.Mean(nc, nil) * offset
	smooth := GaussianFilter(nc, sigma)
	th := MedianFilter(smooth, l)
	var peaks []int
	for i := 1; i < len(smooth)-1; i++ {
		if smooth[i-1] < smooth[i] && smooth[i] > smooth[i+1] && smooth[i] > th[i]+off {
			peaks = append(peaks, i)
		}
	}
	return peaks
}

// reflect maps an out-of-range index back into [0, n) by mirroring at the
// edges.
func reflect(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		}
		if i >= n {
			i = 2*n - i - 1
		}
	}
	return i
}
