package runner

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/haivivi/musicseg/pkg/algorithms"
	"github.com/haivivi/musicseg/pkg/features"
	"github.com/haivivi/musicseg/pkg/segment"
)

// Pair is one boundary and label source combination.
type Pair struct {
	Boundaries algorithms.BoundarySource `json:"boundaries" yaml:"boundaries"`
	Labels     algorithms.LabelSource    `json:"labels" yaml:"labels"`
}

func (p Pair) String() string { return p.Boundaries.String() + "/" + p.Labels.String() }

// BatchOptions configures [Runner.Batch].
type BatchOptions struct {
	// Boundaries lists the boundary sources. If empty, ground truth and
	// every registered boundary algorithm are used.
	Boundaries []algorithms.BoundarySource

	// Labels lists the label sources. If empty, no labeling and every
	// registered labeler are used.
	Labels []algorithms.LabelSource

	Feature    string
	AnnotBeats bool
	Framesync  bool
	Hier       bool

	// Features is attached to every pair's configuration.
	Features *features.Features

	// Params override the merged algorithm defaults of every pair.
	Params algorithms.Params

	// Workers bounds the number of pairs run at once. If <= 0,
	// runtime.GOMAXPROCS(0) is used.
	Workers int
}

// Outcome is the normalized result of one pair.
type Outcome struct {
	RunID   string               `json:"run_id" yaml:"run_id"`
	Pair    Pair                 `json:"pair" yaml:"pair"`
	Result  segment.Segmentation `json:"result" yaml:"result"`
	Elapsed time.Duration        `json:"elapsed" yaml:"elapsed"`
	Err     error                `json:"-" yaml:"-"`
}

// Pairs returns the cross product of opts' sources, boundaries major.
func (r *Runner) Pairs(opts BatchOptions) []Pair {
	bounds := opts.Boundaries
	if len(bounds) == 0 {
		bounds = []algorithms.BoundarySource{algorithms.GroundTruth()}
		for _, id := range r.mux().BoundaryIDs() {
			bounds = append(bounds, algorithms.BoundaryAlgorithm(id))
		}
	}
	labels := opts.Labels
	if len(labels) == 0 {
		labels = []algorithms.LabelSource{algorithms.NoLabels()}
		for _, id := range r.mux().LabelIDs() {
			labels = append(labels, algorithms.LabelAlgorithm(id))
		}
	}
	pairs := make([]Pair, 0, len(bounds)*len(labels))
	for _, b := range bounds {
		for _, l := range labels {
			pairs = append(pairs, Pair{Boundaries: b, Labels: l})
		}
	}
	return pairs
}

// Batch processes every pair of opts with a fresh configuration each. It
// returns one outcome per pair in [Runner.Pairs] order. A failing pair
// records its error in the outcome and does not stop the others; Batch
// itself only fails when ctx is done.
func (r *Runner) Batch(ctx context.Context, fc FileContext, opts BatchOptions) ([]Outcome, error) {
	pairs := r.Pairs(opts)
	outcomes := make([]Outcome, len(pairs))
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	log := r.logger().With(slog.String("track", fc.Name()))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range pairs {
		outcomes[i] = Outcome{RunID: uuid.NewString(), Pair: p}
		g.Go(func() error {
			out := &outcomes[i]
			if err := gctx.Err(); err != nil {
				out.Err = err
				return nil
			}
			start := time.Now()
			out.Result, out.Err = r.processPair(gctx, fc, p, opts)
			out.Elapsed = time.Since(start)
			if out.Err != nil {
				log.Error("pair failed", "run_id", out.RunID, "pair", p.String(), "error", out.Err)
			}
			return nil
		})
	}
	_ = g.Wait() // errors are recorded per outcome
	return outcomes, ctx.Err()
}

func (r *Runner) processPair(ctx context.Context, fc FileContext, p Pair, opts BatchOptions) (segment.Segmentation, error) {
	cfg, err := algorithms.BuildConfig(r.mux(), opts.Feature, opts.AnnotBeats, opts.Framesync, p.Boundaries, p.Labels,
		algorithms.Hierarchical(opts.Hier),
		algorithms.Attach(opts.Features),
		algorithms.Override(opts.Params),
	)
	if err != nil {
		return segment.Segmentation{}, err
	}
	return r.Process(ctx, fc, p.Boundaries, p.Labels, cfg)
}
