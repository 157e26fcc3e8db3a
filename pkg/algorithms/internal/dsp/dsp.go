// Package dsp holds the numeric kernels shared by the built-in algorithms:
// feature normalization, self-similarity, novelty curves, peak picking,
// smoothing filters, clustering and 2D Fourier magnitudes.
//
// All kernels are deterministic. Matrices are gonum types; curves are plain
// float64 slices.
package dsp

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// MinMax scales every column of x into [0, 1] in place. Constant columns
// become 0.
func MinMax(x *mat.Dense) {
	r, c := x.Dims()
	if r == 0 {
		return
	}
	col := make([]float64, r)
	for j := range c {
		mat.Col(col, j, x)
		lo, hi := floats.Min(col), floats.Max(col)
		span := hi - lo
		for i := range r {
			if span == 0 {
				x.Set(i, j, 0)
				continue
			}
			x.Set(i, j, (col[i]-lo)/span)
		}
	}
}

// Standardize shifts every column of x to zero mean and unit variance in
// place. Constant columns become 0.
func Standardize(x *mat.Dense) {
	r, c := x.Dims()
	col := make([]float64, r)
	for j := range c {
		mat.Col(col, j, x)
		mean, std := stat.MeanStdDev(col, nil)
		for i := range r {
			if std == 0 || r < 2 {
				x.Set(i, j, 0)
				continue
			}
			x.Set(i, j, (col[i]-mean)/std)
		}
	}
}

// NormalizeCurve scales x into [0, 1] in place. A constant curve becomes 0.
func NormalizeCurve(x []float64) {
	if len(x) == 0 {
		return
	}
	lo, hi := floats.Min(x), floats.Max(x)
	if hi == lo {
		for i := range x {
			x[i] = 0
		}
		return
	}
	floats.AddConst(-lo, x)
	floats.Scale(1/(hi-lo), x)
}

// Rows copies the rows of x into a slice of vectors.
func Rows(x mat.Matrix) [][]float64 {
	r, _ := x.Dims()
	out := make([][]float64, r)
	for i := range r {
		out[i] = mat.Row(nil, i, x)
	}
	return out
}

// Embed stacks m consecutive frames of x into each row (time-delay
// embedding). Frames before the start repeat the first frame, so the result
// has as many rows as x.
func Embed(x mat.Matrix, m int) *mat.Dense {
	r, c := x.Dims()
	if m < 1 {
		m = 1
	}
	out := mat.NewDense(r, c*m, nil)
	for i := range r {
		for k := range m {
			src := max(i-k, 0)
			for j := range c {
				out.Set(i, k*c+j, x.At(src, j))
			}
		}
	}
	return out
}
