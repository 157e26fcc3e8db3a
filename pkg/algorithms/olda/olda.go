// Package olda detects boundaries by temporally constrained agglomerative
// clustering of time-delay embedded features. Cutting the clustering tree at
// increasing segment counts yields nested hierarchical levels.
package olda

import (
	"context"
	"fmt"
	"math"

	"github.com/haivivi/musicseg/pkg/algorithms"
	"github.com/haivivi/musicseg/pkg/algorithms/internal/dsp"
	"github.com/haivivi/musicseg/pkg/features"
)

// ID is the registry identifier.
const ID = "olda"

// Algorithm is the agglomerative boundary detector.
type Algorithm struct{}

// New returns the agglomerative boundary detector.
func New() *Algorithm { return &Algorithm{} }

func (*Algorithm) Capabilities() algorithms.Capabilities {
	return algorithms.Capabilities{Boundaries: true, Hierarchical: true}
}

// Defaults:
//   - embed: number of stacked frames per observation
//   - seg_duration: target mean segment duration in seconds for flat output
//   - min_segments, max_segments: bounds on the flat segment count
//   - num_levels: number of hierarchical levels
func (*Algorithm) Defaults() algorithms.Params {
	return algorithms.Params{
		"embed":        2,
		"seg_duration": 20.0,
		"min_segments": 2,
		"max_segments": 32,
		"num_levels":   4,
	}
}

func (a *Algorithm) DetectBoundaries(ctx context.Context, cfg algorithms.Config) ([][]float64, error) {
	f := cfg.Features()
	if f == nil || f.Len() == 0 || f.Dim() == 0 {
		return nil, fmt.Errorf("olda: no features")
	}

	x := f.Dense()
	dsp.Standardize(x)
	tree := dsp.Agglomerate(dsp.Embed(x, cfg.Int("embed", 2)))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k := flatSegments(f, cfg)
	if !cfg.Hier {
		return [][]float64{cut(f, tree, k)}, nil
	}

	var levels [][]float64
	for _, lk := range levelSegments(k, cfg.Int("num_levels", 4), f.Len()) {
		levels = append(levels, cut(f, tree, lk))
	}
	return levels, nil
}

// flatSegments picks the segment count from the track duration.
func flatSegments(f *features.Features, cfg algorithms.Config) int {
	dur := cfg.Float("seg_duration", 20)
	k := 2
	if dur > 0 {
		k = int(math.Round(f.Dur() / dur))
	}
	lo, hi := cfg.Int("min_segments", 2), cfg.Int("max_segments", 32)
	return min(max(k, lo), hi, f.Len())
}

// levelSegments returns the segment counts of each level, coarse to fine,
// ending at the flat count.
func levelSegments(k, levels, n int) []int {
	levels = max(levels, 1)
	counts := make([]int, 0, levels)
	for i := levels - 1; i >= 0; i-- {
		c := max(k>>i, 2)
		if len(counts) > 0 && c <= counts[len(counts)-1] {
			continue
		}
		counts = append(counts, min(c, n))
	}
	return counts
}

func cut(f *features.Features, tree *dsp.Tree, k int) []float64 {
	return f.BoundaryTimes(tree.Cut(k))
}

var _ algorithms.BoundaryDetector = (*Algorithm)(nil)
