package dsp

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
)

// Resample linearly interpolates the rows of x[lo:hi] onto m evenly spaced
// positions and returns an m×D matrix.
func Resample(x mat.Matrix, lo, hi, m int) *mat.Dense {
	_, d := x.Dims()
	out := mat.NewDense(m, d, nil)
	length := hi - lo
	for i := range m {
		pos := 0.0
		if m > 1 {
			pos = float64(i) * float64(length-1) / float64(m-1)
		}
		a := lo + int(math.Floor(pos))
		b := min(a+1, hi-1)
		frac := pos - math.Floor(pos)
		for j := range d {
			out.Set(i, j, (1-frac)*x.At(a, j)+frac*x.At(b, j))
		}
	}
	return out
}

// FFT2DMagnitude returns the flattened magnitude of the 2D discrete Fourier
// transform of x. The magnitude is invariant to circular shifts along both
// axes, which makes it a key- and offset-invariant segment descriptor.
func FFT2DMagnitude(x mat.Matrix) []float64 {
	r, c := x.Dims()
	grid := make([][]complex128, r)
	for i := range r {
		grid[i] = make([]complex128, c)
		for j := range c {
			grid[i][j] = complex(x.At(i, j), 0)
		}
	}

	rowFFT := fourier.NewCmplxFFT(c)
	for i := range r {
		grid[i] = rowFFT.Coefficients(nil, grid[i])
	}
	colFFT := fourier.NewCmplxFFT(r)
	col := make([]complex128, r)
	for j := range c {
		for i := range r {
			col[i] = grid[i][j]
		}
		coef := colFFT.Coefficients(nil, col)
		for i := range r {
			grid[i][j] = coef[i]
		}
	}

	out := make([]float64, 0, r*c)
	for i := range r {
		for j := range c {
			out = append(out, cmplx.Abs(grid[i][j]))
		}
	}
	return out
}
