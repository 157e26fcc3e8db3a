package dsp

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrEigen is returned when the eigendecomposition does not converge.
var ErrEigen = errors.New("dsp: eigendecomposition failed")

// Laplacian returns the symmetric normalized graph Laplacian
// I - D^-1/2 A D^-1/2 of the affinity matrix a. Isolated nodes keep a unit
// diagonal.
func Laplacian(a mat.Symmetric) *mat.SymDense {
	n := a.SymmetricDim()
	deg := make([]float64, n)
	for i := range n {
		for j := range n {
			deg[i] += a.At(i, j)
		}
	}
	l := mat.NewSymDense(n, nil)
	for i := range n {
		l.SetSym(i, i, 1)
		for j := i; j < n; j++ {
			if deg[i] == 0 || deg[j] == 0 {
				continue
			}
			v := a.At(i, j) / math.Sqrt(deg[i]*deg[j])
			if i == j {
				l.SetSym(i, i, 1-v)
				continue
			}
			l.SetSym(i, j, -v)
		}
	}
	return l
}

// SequenceAffinity returns the affinity linking every frame to its direct
// neighbours, weighted by feature similarity.
func SequenceAffinity(x mat.Matrix) *mat.SymDense {
	n, _ := x.Dims()
	rows := Rows(x)
	dists := make([]float64, 0, n)
	for i := 1; i < n; i++ {
		dists = append(dists, floats.Distance(rows[i], rows[i-1], 2))
	}
	sigma := 1.0
	if len(dists) > 0 {
		if m := floats.Sum(dists) / float64(len(dists)); m > 0 {
			sigma = m
		}
	}
	a := mat.NewSymDense(n, nil)
	for i := 1; i < n; i++ {
		d := dists[i-1]
		a.SetSym(i-1, i, math.Exp(-d*d/(2*sigma*sigma)))
	}
	return a
}

// Balance combines a recurrence affinity and a sequence affinity with the
// weight that gives both the same expected degree, as in Laplacian
// segmentation.
func Balance(rec, seq mat.Symmetric) *mat.SymDense {
	n := rec.SymmetricDim()
	var num, den float64
	for i := range n {
		var dr, ds float64
		for j := range n {
			dr += rec.At(i, j)
			ds += seq.At(i, j)
		}
		num += ds * (ds + dr)
		den += (ds + dr) * (ds + dr)
	}
	mu := 0.5
	if den > 0 {
		mu = num / den
	}
	out := mat.NewSymDense(n, nil)
	for i := range n {
		for j := i; j < n; j++ {
			out.SetSym(i, j, mu*rec.At(i, j)+(1-mu)*seq.At(i, j))
		}
	}
	return out
}

// Eigenvectors returns the eigenvectors of the k smallest eigenvalues of the
// Laplacian l as the columns of an n×k matrix. Each column is scaled to unit
// norm and its sign fixed so that its first nonzero entry is positive.
func Eigenvectors(l mat.Symmetric, k int) (*mat.Dense, error) {
	n := l.SymmetricDim()
	k = min(max(k, 1), n)
	var eig mat.EigenSym
	if !eig.Factorize(l, true) {
		return nil, ErrEigen
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	out := mat.NewDense(n, k, nil)
	col := make([]float64, n)
	for j := range k {
		mat.Col(col, j, &vecs)
		if norm := floats.Norm(col, 2); norm > 0 {
			floats.Scale(1/norm, col)
		}
		for _, v := range col {
			if math.Abs(v) > 1e-12 {
				if v < 0 {
					floats.Scale(-1, col)
				}
				break
			}
		}
		out.SetCol(j, col)
	}
	return out, nil
}

// NormalizeRows scales every row of x to unit euclidean norm in place.
func NormalizeRows(x *mat.Dense) {
	r, c := x.Dims()
	row := make([]float64, c)
	for i := range r {
		mat.Row(row, i, x)
		if norm := floats.Norm(row, 2); norm > 0 {
			floats.Scale(1/norm, row)
			x.SetRow(i, row)
		}
	}
}
