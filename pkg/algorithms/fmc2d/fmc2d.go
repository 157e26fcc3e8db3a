// Package fmc2d labels segments by clustering the 2D Fourier magnitude
// coefficients of their feature patches. The magnitudes do not change under
// circular shifts in time or pitch, so transposed or offset repetitions of a
// section receive the same label.
package fmc2d

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/haivivi/musicseg/pkg/algorithms"
	"github.com/haivivi/musicseg/pkg/algorithms/internal/dsp"
)

// ID is the registry identifier.
const ID = "fmc2d"

// Algorithm is the 2D-FMC labeler.
type Algorithm struct{}

// New returns the 2D-FMC labeler.
func New() *Algorithm { return &Algorithm{} }

func (*Algorithm) Capabilities() algorithms.Capabilities {
	return algorithms.Capabilities{Labels: true, Hierarchical: true}
}

// Defaults returns the maximum number of labels (k), whether the number of
// labels is estimated with x-means (xmeans) and the number of frames every
// segment is resampled to (patch_len).
func (*Algorithm) Defaults() algorithms.Params {
	return algorithms.Params{
		"k":         6,
		"xmeans":    true,
		"patch_len": 16,
	}
}

// LabelSegments labels every level independently.
func (a *Algorithm) LabelSegments(ctx context.Context, cfg algorithms.Config, bounds [][]float64) ([][]int, error) {
	f := cfg.Features()
	if f == nil || f.Len() == 0 || f.Dim() == 0 {
		return nil, fmt.Errorf("fmc2d: no features")
	}
	x := f.Dense()
	dsp.MinMax(x)

	k := cfg.Int("k", 6)
	xmeans := cfg.Bool("xmeans", true)
	patch := max(cfg.Int("patch_len", 16), 1)

	out := make([][]int, len(bounds))
	for i, times := range bounds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		spans := f.Spans(times)
		descs := make([][]float64, len(spans))
		for j, s := range spans {
			descs[j] = descriptor(x, s.Lo, s.Hi, patch)
		}

		var labels []int
		if xmeans {
			labels = dsp.XMeans(descs, k, 50)
		} else {
			labels = dsp.KMeans(descs, k, 50)
		}
		out[i] = dsp.Relabel(labels)
	}
	return out, nil
}

// descriptor returns the log-compressed 2D-FMC of frames [lo, hi) of x.
func descriptor(x *mat.Dense, lo, hi, patch int) []float64 {
	mag := dsp.FFT2DMagnitude(dsp.Resample(x, lo, hi, patch))
	for i, v := range mag {
		mag[i] = math.Log1p(v)
	}
	return mag
}

var _ algorithms.Labeler = (*Algorithm)(nil)
