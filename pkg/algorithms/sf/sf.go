// Package sf detects boundaries from structural features: the time-lag
// representation of a k-nearest-neighbour recurrence matrix, whose abrupt
// changes over time mark section boundaries.
package sf

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/haivivi/musicseg/pkg/algorithms"
	"github.com/haivivi/musicseg/pkg/algorithms/internal/dsp"
)

// ID is the registry identifier.
const ID = "sf"

// Algorithm is the structural-features boundary detector.
type Algorithm struct{}

// New returns the structural-features boundary detector.
func New() *Algorithm { return &Algorithm{} }

func (*Algorithm) Capabilities() algorithms.Capabilities {
	return algorithms.Capabilities{Boundaries: true}
}

// Defaults returns the gaussian smoothing of the structural features
// (M_gaussian), the embedding dimension (m_embedded), the fraction of frames
// used as nearest neighbours (k_nearest), the adaptive peak window
// (Mp_adaptive) and the peak threshold offset (offset_thres).
func (*Algorithm) Defaults() algorithms.Params {
	return algorithms.Params{
		"M_gaussian":   27,
		"m_embedded":   3,
		"k_nearest":    0.04,
		"Mp_adaptive":  28,
		"offset_thres": 0.05,
	}
}

func (a *Algorithm) DetectBoundaries(ctx context.Context, cfg algorithms.Config) ([][]float64, error) {
	f := cfg.Features()
	if f == nil || f.Len() == 0 || f.Dim() == 0 {
		return nil, fmt.Errorf("sf: no features")
	}
	n := f.Len()

	x := f.Dense()
	dsp.Standardize(x)
	x = dsp.Embed(x, cfg.Int("m_embedded", 3))

	k := max(int(math.Ceil(cfg.Float("k_nearest", 0.04)*float64(n))), 1)
	rec := dsp.Recurrence(x, k, 1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lag := dsp.Lag(rec)
	smoothed := smoothTime(lag, float64(cfg.Int("M_gaussian", 27))/6)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	nc := dsp.Differences(smoothed)
	peaks := dsp.PickPeaks(nc, cfg.Int("Mp_adaptive", 28), 1, cfg.Float("offset_thres", 0.05))
	return [][]float64{f.BoundaryTimes(peaks)}, nil
}

// smoothTime applies a gaussian filter along the time axis of every lag
// column.
func smoothTime(lag *mat.Dense, sigma float64) *mat.Dense {
	r, c := lag.Dims()
	out := mat.NewDense(r, c, nil)
	col := make([]float64, r)
	for j := range c {
		mat.Col(col, j, lag)
		out.SetCol(j, dsp.GaussianFilter(col, sigma))
	}
	return out
}

var _ algorithms.BoundaryDetector = (*Algorithm)(nil)
