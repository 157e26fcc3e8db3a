// Package algorithms provides the registry of segmentation algorithms and
// the run configuration they consume.
//
// An algorithm is registered under a short identifier (e.g. "foote",
// "scluster") and declares its [Capabilities]: whether it detects boundaries,
// assigns labels, and supports hierarchical output. Boundary detectors
// implement [BoundaryDetector], labelers implement [Labeler]; an algorithm
// that does both may also implement [Segmenter] to produce boundaries and
// labels in one pass.
//
// # Usage
//
//	algorithms.Handle("foote", foote.New())
//	det, err := algorithms.Boundaries(algorithms.BoundaryAlgorithm("foote"))
//	cfg, err := algorithms.BuildConfig(nil, "pcp", false, false,
//	    algorithms.BoundaryAlgorithm("foote"), algorithms.NoLabels(),
//	    algorithms.Attach(feats))
//	times, err := det.DetectBoundaries(ctx, cfg)
//
// Ground truth boundaries and "no labeling" are not algorithms: they are
// expressed with [GroundTruth] and [NoLabels], and resolving them yields a
// nil implementation without error.
package algorithms

import (
	"context"
	"strings"

	"github.com/haivivi/musicseg/pkg/segment"
)

// Capabilities declares what an algorithm can do.
type Capabilities struct {
	// Boundaries reports that the algorithm implements [BoundaryDetector].
	Boundaries bool `json:"boundaries" yaml:"boundaries"`

	// Labels reports that the algorithm implements [Labeler].
	Labels bool `json:"labels" yaml:"labels"`

	// Hierarchical reports that the algorithm can produce (or label) more
	// than one segmentation level.
	Hierarchical bool `json:"hierarchical" yaml:"hierarchical"`
}

// String returns a compact description such as "boundaries+labels (hier)".
func (c Capabilities) String() string {
	var roles []string
	if c.Boundaries {
		roles = append(roles, "boundaries")
	}
	if c.Labels {
		roles = append(roles, "labels")
	}
	s := strings.Join(roles, "+")
	if s == "" {
		s = "none"
	}
	if c.Hierarchical {
		s += " (hier)"
	}
	return s
}

// Algorithm is implemented by every registered algorithm.
type Algorithm interface {
	// Capabilities returns the roles the algorithm supports.
	Capabilities() Capabilities

	// Defaults returns the default hyperparameters of the algorithm. They
	// are merged into the run configuration by [BuildConfig]. The returned
	// map must not be retained or modified by the caller.
	Defaults() Params
}

// BoundaryDetector finds segment boundaries.
type BoundaryDetector interface {
	Algorithm

	// DetectBoundaries returns the boundary times in seconds of each level.
	// In flat mode (cfg.Hier false) exactly one level must be returned.
	DetectBoundaries(ctx context.Context, cfg Config) ([][]float64, error)
}

// Labeler assigns a label to each segment of given boundaries.
type Labeler interface {
	Algorithm

	// LabelSegments returns one label per segment for each level of
	// bounds. Segments sharing a label are considered repetitions of the
	// same section.
	LabelSegments(ctx context.Context, cfg Config, bounds [][]float64) ([][]int, error)
}

// Segmenter is implemented by algorithms that detect boundaries and labels
// jointly. It is used when the same algorithm is selected for both roles.
type Segmenter interface {
	Algorithm

	// Segment returns boundaries and labels together. Flat results must
	// have one level.
	Segment(ctx context.Context, cfg Config) (segment.Segmentation, error)
}
