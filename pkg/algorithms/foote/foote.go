// Package foote detects boundaries with Foote's checkerboard-kernel novelty
// over a self-similarity matrix.
package foote

import (
	"context"
	"fmt"

	"github.com/haivivi/musicseg/pkg/algorithms"
	"github.com/haivivi/musicseg/pkg/algorithms/internal/dsp"
)

// ID is the registry identifier.
const ID = "foote"

// Algorithm is the Foote novelty boundary detector.
type Algorithm struct{}

// New returns the Foote boundary detector.
func New() *Algorithm { return &Algorithm{} }

func (*Algorithm) Capabilities() algorithms.Capabilities {
	return algorithms.Capabilities{Boundaries: true}
}

// Defaults returns the kernel size (M_gaussian), the feature median filter
// width (m_median), the peak-picking window (L_peaks) and the smoothing of
// the novelty curve (sigma).
func (*Algorithm) Defaults() algorithms.Params {
	return algorithms.Params{
		"M_gaussian": 66,
		"m_median":   12,
		"L_peaks":    64,
		"sigma":      4.0,
	}
}

func (a *Algorithm) DetectBoundaries(ctx context.Context, cfg algorithms.Config) ([][]float64, error) {
	f := cfg.Features()
	if f == nil || f.Len() == 0 || f.Dim() == 0 {
		return nil, fmt.Errorf("foote: no features")
	}
	n := f.Len()

	x := dsp.MedianFilterRows(f.Dense(), cfg.Int("m_median", 12))
	dsp.MinMax(x)
	s := dsp.SelfSimilarity(x)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := min(cfg.Int("M_gaussian", 66), max(n/2, 2))
	nc := dsp.Novelty(s, dsp.Checkerboard(m))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	peaks := dsp.PickPeaks(nc, cfg.Int("L_peaks", 64), cfg.Float("sigma", 4), 0.05)
	return [][]float64{f.BoundaryTimes(peaks)}, nil
}

var _ algorithms.BoundaryDetector = (*Algorithm)(nil)
