package algorithms

import (
	"context"
	"fmt"
)

// Variant returns an algorithm that behaves like base but whose Defaults are
// base's defaults overridden by params. It is used to register hyperparameter
// presets under their own id.
func Variant(base Algorithm, params Params) Algorithm {
	defaults := base.Defaults().Clone()
	for k, v := range params {
		defaults[k] = v
	}
	return &variant{base: base, defaults: defaults}
}

type variant struct {
	base     Algorithm
	defaults Params
}

func (v *variant) Capabilities() Capabilities { return v.base.Capabilities() }

func (v *variant) Defaults() Params { return v.defaults }

func (v *variant) DetectBoundaries(ctx context.Context, cfg Config) ([][]float64, error) {
	det, ok := v.base.(BoundaryDetector)
	if !ok {
		return nil, fmt.Errorf("algorithms: variant base does not detect boundaries")
	}
	return det.DetectBoundaries(ctx, cfg)
}

func (v *variant) LabelSegments(ctx context.Context, cfg Config, bounds [][]float64) ([][]int, error) {
	l, ok := v.base.(Labeler)
	if !ok {
		return nil, fmt.Errorf("algorithms: variant base does not label segments")
	}
	return l.LabelSegments(ctx, cfg, bounds)
}

// AsSegmenter returns the joint segmenter of a, unwrapping variants.
func AsSegmenter(a Algorithm) (Segmenter, bool) {
	if v, ok := a.(*variant); ok {
		return AsSegmenter(v.base)
	}
	s, ok := a.(Segmenter)
	return s, ok
}

var (
	_ BoundaryDetector = (*variant)(nil)
	_ Labeler          = (*variant)(nil)
)
