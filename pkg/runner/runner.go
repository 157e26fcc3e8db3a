// Package runner executes segmentation algorithms against a feature payload.
//
// A [Runner] resolves the boundary and label sources in an algorithm
// registry, runs them in order and returns the raw segmentation. [Runner.Process]
// additionally normalizes the result so that every level starts at 0, ends
// at the track duration and carries one label per segment.
//
//	r := &runner.Runner{}
//	cfg, _ := algorithms.BuildConfig(nil, "pcp", false, false,
//	    algorithms.BoundaryAlgorithm("sf"), algorithms.LabelAlgorithm("fmc2d"),
//	    algorithms.Attach(feats))
//	seg, err := r.Process(ctx, track,
//	    algorithms.BoundaryAlgorithm("sf"), algorithms.LabelAlgorithm("fmc2d"), cfg)
//
// Ground truth boundaries are read from the [FileContext].
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/haivivi/musicseg/pkg/algorithms"
	"github.com/haivivi/musicseg/pkg/annotations"
	"github.com/haivivi/musicseg/pkg/features"
	"github.com/haivivi/musicseg/pkg/segment"
)

// DefaultMinimumFrames is the feature length at or below which a track is
// returned as a single segment without running any algorithm.
const DefaultMinimumFrames = 10

// FileContext gives access to the reference annotations of the track being
// segmented. dataset.Track and annotations.TrackRef implement it.
type FileContext interface {
	// Name returns the track name.
	Name() string

	// GroundTruth returns the reference of an annotator. It returns an
	// error wrapping annotations.ErrNotFound if there is none.
	GroundTruth(ctx context.Context, annotator int) (*annotations.Reference, error)
}

// Runner runs algorithm pairs. The zero value uses algorithms.DefaultMux,
// slog.Default and DefaultMinimumFrames. A Runner is safe for concurrent use.
type Runner struct {
	// Mux resolves algorithm ids. If nil, algorithms.DefaultMux is used.
	Mux *algorithms.Mux

	// Logger receives run diagnostics. If nil, slog.Default is used.
	Logger *slog.Logger

	// MinimumFrames overrides DefaultMinimumFrames when positive. A
	// negative value disables the short track shortcut.
	MinimumFrames int

	// Annotator selects the reference used for ground truth boundaries.
	Annotator int
}

func (r *Runner) mux() *algorithms.Mux {
	if r.Mux == nil {
		return algorithms.DefaultMux
	}
	return r.Mux
}

func (r *Runner) logger() *slog.Logger {
	l := r.Logger
	if l == nil {
		l = slog.Default()
	}
	return l.With(slog.String("component", "runner"))
}

func (r *Runner) minimumFrames() int {
	switch {
	case r.MinimumFrames > 0:
		return r.MinimumFrames
	case r.MinimumFrames < 0:
		return -1
	default:
		return DefaultMinimumFrames
	}
}

// Process runs b and l like [Runner.Run] and normalizes the result against
// the duration of the attached features. A normalization failure is an
// error wrapping segment.ErrInvariantViolation.
func (r *Runner) Process(ctx context.Context, fc FileContext, b algorithms.BoundarySource, l algorithms.LabelSource, cfg algorithms.Config) (segment.Segmentation, error) {
	raw, err := r.Run(ctx, fc, b, l, cfg)
	if err != nil {
		return segment.Segmentation{}, err
	}
	out, err := segment.Normalize(raw, cfg.Features().Dur(), labelsPresent(b, l))
	if err != nil {
		return segment.Segmentation{}, fmt.Errorf("runner: %s %s/%s: %w", fc.Name(), b, l, err)
	}
	return out, nil
}

// labelsPresent reports whether a run yields labels to validate: a labeler
// was requested, or ground truth labels are passed through.
func labelsPresent(b algorithms.BoundarySource, l algorithms.LabelSource) bool {
	return !l.IsNone() || b.IsGroundTruth()
}

// Run resolves b and l, runs them on the features attached to cfg and
// returns the unnormalized segmentation.
//
// Errors are a *algorithms.ResolutionError for ids that cannot serve the
// request, a *MissingGroundTruthError when ground truth is unavailable and
// a *AlgorithmExecutionError for failures inside an algorithm.
func (r *Runner) Run(ctx context.Context, fc FileContext, b algorithms.BoundarySource, l algorithms.LabelSource, cfg algorithms.Config) (segment.Segmentation, error) {
	f := cfg.Features()
	if f == nil {
		return segment.Segmentation{}, fmt.Errorf("runner: %s: %w", fc.Name(), features.ErrNoFeatures)
	}
	log := r.logger().With(
		slog.String("track", fc.Name()),
		slog.String("boundaries", b.String()),
		slog.String("labels", l.String()),
	)

	if minimum := r.minimumFrames(); f.Len() <= minimum {
		log.Warn("too few frames, returning a single segment", "frames", f.Len(), "minimum", minimum)
		label := 0
		if l.IsNone() {
			label = segment.Unlabeled
		}
		return segment.Flat([]float64{0, f.Dur()}, []int{label}), nil
	}

	if err := ctx.Err(); err != nil {
		return segment.Segmentation{}, err
	}
	log.Debug("resolve", "hier", cfg.Hier)
	det, lab, err := r.resolve(b, l, cfg.Hier)
	if err != nil {
		return segment.Segmentation{}, err
	}

	if det != nil && lab != nil && b.ID() == l.ID() {
		if seg, ok := algorithms.AsSegmenter(det); ok {
			log.Debug("segment jointly")
			return r.joint(ctx, seg, b.ID(), cfg)
		}
	}

	var (
		levels [][]float64
		labels [][]int
	)
	if det == nil {
		ref, err := fc.GroundTruth(ctx, r.Annotator)
		if errors.Is(err, annotations.ErrNotFound) {
			return segment.Segmentation{}, &MissingGroundTruthError{Track: fc.Name(), Annotator: r.Annotator, Err: err}
		}
		if err != nil {
			return segment.Segmentation{}, fmt.Errorf("runner: %s ground truth: %w", fc.Name(), err)
		}
		levels = [][]float64{ref.Times}
		if lab == nil {
			labels = [][]int{ref.IntLabels()}
		}
	} else {
		log.Debug("detect boundaries")
		levels, err = r.detect(ctx, det, b.ID(), cfg)
		if err != nil {
			return segment.Segmentation{}, err
		}
	}

	if lab != nil {
		if err := ctx.Err(); err != nil {
			return segment.Segmentation{}, err
		}
		log.Debug("label segments", "levels", len(levels))
		labels, err = r.label(ctx, lab, l.ID(), cfg.WithHier(false), levels)
		if err != nil {
			return segment.Segmentation{}, err
		}
	}

	return assemble(cfg.Hier, levels, labels), nil
}

func (r *Runner) resolve(b algorithms.BoundarySource, l algorithms.LabelSource, hier bool) (algorithms.BoundaryDetector, algorithms.Labeler, error) {
	m := r.mux()
	det, err := m.Boundaries(b)
	if err != nil {
		return nil, nil, err
	}
	lab, err := m.Labels(l)
	if err != nil {
		return nil, nil, err
	}
	if !hier {
		return det, lab, nil
	}
	if det == nil {
		return nil, nil, &algorithms.ResolutionError{ID: b.String(), Role: algorithms.RoleBoundaries, Reason: algorithms.ErrNoHierarchicalBoundaries}
	}
	if !det.Capabilities().Hierarchical {
		return nil, nil, &algorithms.ResolutionError{ID: b.ID(), Role: algorithms.RoleBoundaries, Reason: algorithms.ErrNotHierarchical}
	}
	if lab != nil && !lab.Capabilities().Hierarchical {
		return nil, nil, &algorithms.ResolutionError{ID: l.ID(), Role: algorithms.RoleLabels, Reason: algorithms.ErrNotHierarchical}
	}
	return det, lab, nil
}

func (r *Runner) joint(ctx context.Context, seg algorithms.Segmenter, id string, cfg algorithms.Config) (segment.Segmentation, error) {
	out, err := call(id, algorithms.RoleSegment, func() (segment.Segmentation, error) {
		return seg.Segment(ctx, cfg)
	})
	if err != nil {
		return segment.Segmentation{}, err
	}
	if err := checkLevels(id, algorithms.RoleSegment, len(out.Levels), cfg.Hier); err != nil {
		return segment.Segmentation{}, err
	}
	out.Hierarchical = cfg.Hier
	return out, nil
}

func (r *Runner) detect(ctx context.Context, det algorithms.BoundaryDetector, id string, cfg algorithms.Config) ([][]float64, error) {
	levels, err := call(id, algorithms.RoleBoundaries, func() ([][]float64, error) {
		return det.DetectBoundaries(ctx, cfg)
	})
	if err != nil {
		return nil, err
	}
	if err := checkLevels(id, algorithms.RoleBoundaries, len(levels), cfg.Hier); err != nil {
		return nil, err
	}
	return levels, nil
}

// label labels every level with more than one segment. Single segment
// levels get label 0 without calling the labeler.
func (r *Runner) label(ctx context.Context, lab algorithms.Labeler, id string, cfg algorithms.Config, levels [][]float64) ([][]int, error) {
	labels := make([][]int, len(levels))
	var (
		pending []int
		bounds  [][]float64
	)
	for i, times := range levels {
		if len(times) == 2 {
			labels[i] = []int{0}
			continue
		}
		pending = append(pending, i)
		bounds = append(bounds, times)
	}
	if len(bounds) == 0 {
		return labels, nil
	}

	out, err := call(id, algorithms.RoleLabels, func() ([][]int, error) {
		return lab.LabelSegments(ctx, cfg, bounds)
	})
	if err != nil {
		return nil, err
	}
	if len(out) != len(bounds) {
		return nil, shapeError(id, algorithms.RoleLabels, "got %d label levels for %d boundary levels", len(out), len(bounds))
	}
	for j, i := range pending {
		labels[i] = out[j]
	}
	return labels, nil
}

func checkLevels(id string, role algorithms.Role, n int, hier bool) error {
	switch {
	case hier && n < 1:
		return shapeError(id, role, "got no levels")
	case !hier && n != 1:
		return shapeError(id, role, "got %d levels in flat mode, want 1", n)
	}
	return nil
}

func assemble(hier bool, levels [][]float64, labels [][]int) segment.Segmentation {
	out := make([]segment.Level, len(levels))
	for i, times := range levels {
		out[i].Times = times
		if labels != nil {
			out[i].Labels = labels[i]
		}
	}
	return segment.Segmentation{Hierarchical: hier, Levels: out}
}

// call runs fn and reports its error or panic as an AlgorithmExecutionError.
func call[T any](id string, role algorithms.Role, fn func() (T, error)) (out T, err error) {
	defer func() {
		if p := recover(); p != nil {
			var zero T
			out = zero
			err = &AlgorithmExecutionError{ID: id, Role: role, Err: fmt.Errorf("%w: %v", ErrPanic, p)}
		}
	}()
	out, err = fn()
	if err != nil {
		return out, &AlgorithmExecutionError{ID: id, Role: role, Err: err}
	}
	return out, nil
}
