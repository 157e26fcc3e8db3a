// Package scluster implements Laplacian structural segmentation: spectral
// clustering of a graph that joins repeated frames (recurrence) with
// neighbouring frames (sequence). Clustering on the first k eigenvectors of
// its Laplacian gives one segmentation per k, so the algorithm detects
// boundaries, labels segments and produces hierarchies in one pass.
package scluster

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/haivivi/musicseg/pkg/algorithms"
	"github.com/haivivi/musicseg/pkg/algorithms/internal/dsp"
	"github.com/haivivi/musicseg/pkg/features"
	"github.com/haivivi/musicseg/pkg/segment"
)

// ID is the registry identifier.
const ID = "scluster"

// Algorithm is the spectral clustering segmenter.
type Algorithm struct{}

// New returns the spectral clustering segmenter.
func New() *Algorithm { return &Algorithm{} }

func (*Algorithm) Capabilities() algorithms.Capabilities {
	return algorithms.Capabilities{Boundaries: true, Labels: true, Hierarchical: true}
}

// Defaults returns the number of hierarchical layers (num_layers), the
// cluster count of flat output (scluster_k), the median filter width applied
// to the eigenvectors (evec_smooth) and the minimum lag of recurrence links
// in frames (rec_width).
func (*Algorithm) Defaults() algorithms.Params {
	return algorithms.Params{
		"num_layers":  10,
		"scluster_k":  5,
		"evec_smooth": 9,
		"rec_width":   1,
	}
}

// Segment returns the level clustered with scluster_k clusters, or in
// hierarchical mode one level per cluster count from 1 to num_layers.
func (a *Algorithm) Segment(ctx context.Context, cfg algorithms.Config) (segment.Segmentation, error) {
	f := cfg.Features()
	if f == nil || f.Len() == 0 || f.Dim() == 0 {
		return segment.Segmentation{}, fmt.Errorf("scluster: no features")
	}
	emb, err := embedding(ctx, f, cfg)
	if err != nil {
		return segment.Segmentation{}, err
	}

	if !cfg.Hier {
		frames := clusterFrames(emb, cfg.Int("scluster_k", 5))
		return segment.Flat(changes(f, frames)), nil
	}

	_, layers := emb.Dims()
	levels := make([]segment.Level, 0, layers)
	for k := 1; k <= layers; k++ {
		if err := ctx.Err(); err != nil {
			return segment.Segmentation{}, err
		}
		times, labels := changes(f, clusterFrames(emb, k))
		levels = append(levels, segment.Level{Times: times, Labels: labels})
	}
	return segment.Hierarchy(levels...), nil
}

func (a *Algorithm) DetectBoundaries(ctx context.Context, cfg algorithms.Config) ([][]float64, error) {
	s, err := a.Segment(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return s.Times(), nil
}

// LabelSegments clusters frames with scluster_k clusters and labels every
// segment with the most frequent frame cluster inside it.
func (a *Algorithm) LabelSegments(ctx context.Context, cfg algorithms.Config, bounds [][]float64) ([][]int, error) {
	f := cfg.Features()
	if f == nil || f.Len() == 0 || f.Dim() == 0 {
		return nil, fmt.Errorf("scluster: no features")
	}
	emb, err := embedding(ctx, f, cfg)
	if err != nil {
		return nil, err
	}
	frames := clusterFrames(emb, cfg.Int("scluster_k", 5))

	out := make([][]int, len(bounds))
	for i, times := range bounds {
		out[i] = dsp.Relabel(spanLabels(f, times, frames))
	}
	return out, nil
}

// embedding returns the smoothed Laplacian eigenvectors, one row per frame
// and one column per layer.
func embedding(ctx context.Context, f *features.Features, cfg algorithms.Config) (*mat.Dense, error) {
	n := f.Len()
	x := f.Dense()
	dsp.Standardize(x)

	knn := 1 + 2*int(math.Ceil(math.Log2(float64(max(n, 2)))))
	rec := dsp.Recurrence(x, knn, cfg.Int("rec_width", 1))
	seq := dsp.SequenceAffinity(x)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vecs, err := dsp.Eigenvectors(dsp.Laplacian(dsp.Balance(rec, seq)), cfg.Int("num_layers", 10))
	if err != nil {
		return nil, fmt.Errorf("scluster: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return dsp.MedianFilterRows(vecs, cfg.Int("evec_smooth", 9)), nil
}

// clusterFrames clusters the frames on the first k eigenvectors.
func clusterFrames(emb *mat.Dense, k int) []int {
	n, layers := emb.Dims()
	k = min(max(k, 1), layers)
	sub := mat.DenseCopyOf(emb.Slice(0, n, 0, k))
	dsp.NormalizeRows(sub)
	return dsp.KMeans(dsp.Rows(sub), k, 50)
}

// changes turns per-frame clusters into boundary times and segment labels.
func changes(f *features.Features, frames []int) ([]float64, []int) {
	var starts []int
	for i := 1; i < len(frames); i++ {
		if frames[i] != frames[i-1] {
			starts = append(starts, i)
		}
	}
	times := f.BoundaryTimes(starts)
	return times, dsp.Relabel(spanLabels(f, times, frames))
}

func spanLabels(f *features.Features, times []float64, frames []int) []int {
	spans := f.Spans(times)
	labels := make([]int, len(spans))
	for i, s := range spans {
		labels[i] = dsp.Mode(frames[s.Lo:s.Hi])
	}
	return labels
}

var (
	_ algorithms.Segmenter        = (*Algorithm)(nil)
	_ algorithms.BoundaryDetector = (*Algorithm)(nil)
	_ algorithms.Labeler          = (*Algorithm)(nil)
)
