package runner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/haivivi/musicseg/pkg/algorithms"
	"github.com/haivivi/musicseg/pkg/features/featurestest"
	"github.com/haivivi/musicseg/pkg/runner"
)

func TestPairs(t *testing.T) {
	m := newBuiltinMux(t)
	r := &runner.Runner{Mux: m}

	pairs := r.Pairs(runner.BatchOptions{})
	if len(pairs) != 5*3 {
		t.Fatalf("Pairs() = %d pairs, want 15", len(pairs))
	}
	var got []string
	for _, p := range pairs[:4] {
		got = append(got, p.String())
	}
	want := []string{"gt/none", "gt/fmc2d", "gt/scluster", "foote/none"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Pairs() order mismatch (-want +got):\n%s", diff)
	}

	pairs = r.Pairs(runner.BatchOptions{
		Boundaries: []algorithms.BoundarySource{algorithms.BoundaryAlgorithm("sf")},
		Labels:     []algorithms.LabelSource{algorithms.NoLabels(), algorithms.LabelAlgorithm("fmc2d")},
	})
	if len(pairs) != 2 || pairs[1].String() != "sf/fmc2d" {
		t.Fatalf("Pairs(explicit) = %v", pairs)
	}
}

func TestBatchCrossProduct(t *testing.T) {
	m := newBuiltinMux(t)
	r := &runner.Runner{Mux: m, Logger: quiet}
	f := featurestest.Long()

	outcomes, err := r.Batch(context.Background(), track(t), runner.BatchOptions{
		Feature:  "pcp",
		Features: f,
		Workers:  3,
	})
	if err != nil {
		t.Fatalf("Batch() error = %v", err)
	}
	pairs := r.Pairs(runner.BatchOptions{})
	if len(outcomes) != len(pairs) {
		t.Fatalf("Batch() = %d outcomes, want %d", len(outcomes), len(pairs))
	}

	seen := make(map[string]bool)
	for i, o := range outcomes {
		if o.Pair != pairs[i] {
			t.Fatalf("outcome %d pair = %s, want %s", i, o.Pair, pairs[i])
		}
		if _, err := uuid.Parse(o.RunID); err != nil || seen[o.RunID] {
			t.Fatalf("outcome %d run id %q invalid or repeated", i, o.RunID)
		}
		seen[o.RunID] = true
		if o.Err != nil {
			t.Fatalf("outcome %s error = %v", o.Pair, o.Err)
		}
		checkLevel(t, o.Result.Levels[0], f.Dur())
	}

	// Batch results equal single runs.
	p := pairs[len(pairs)-1]
	single, err := r.Process(context.Background(), track(t), p.Boundaries, p.Labels, build(t, m, f, p.Boundaries, p.Labels))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(single, outcomes[len(outcomes)-1].Result); diff != "" {
		t.Fatalf("batch result differs from Process (-process +batch):\n%s", diff)
	}
}

func TestBatchIsolatesFailures(t *testing.T) {
	m := newBuiltinMux(t)
	r := &runner.Runner{Mux: m, Logger: quiet}

	outcomes, err := r.Batch(context.Background(), noReferences(), runner.BatchOptions{
		Boundaries: []algorithms.BoundarySource{
			algorithms.GroundTruth(),
			algorithms.BoundaryAlgorithm("nope"),
			algorithms.BoundaryAlgorithm("olda"),
		},
		Labels:   []algorithms.LabelSource{algorithms.LabelAlgorithm("fmc2d")},
		Feature:  "pcp",
		Features: featurestest.Long(),
		Hier:     true,
	})
	if err != nil {
		t.Fatalf("Batch() error = %v", err)
	}
	if !errors.Is(outcomes[0].Err, algorithms.ErrNoHierarchicalBoundaries) {
		t.Errorf("gt outcome error = %v, want ErrNoHierarchicalBoundaries", outcomes[0].Err)
	}
	if !errors.Is(outcomes[1].Err, algorithms.ErrUnknownAlgorithm) {
		t.Errorf("unknown outcome error = %v, want ErrUnknownAlgorithm", outcomes[1].Err)
	}
	if outcomes[2].Err != nil || !outcomes[2].Result.Hierarchical {
		t.Errorf("olda outcome = %v, %v, want hierarchy", outcomes[2].Result, outcomes[2].Err)
	}
}

func TestBatchParamConflict(t *testing.T) {
	m := stubMux(t, map[string]algorithms.Algorithm{
		"det": &conflicting{stubDetector: stubDetector{detect: fixed([]float64{0, 180})}, k: 1},
		"lab": &conflictingLabeler{k: 2},
	})
	r := &runner.Runner{Mux: m, Logger: quiet}

	outcomes, err := r.Batch(context.Background(), noReferences(), runner.BatchOptions{
		Boundaries: []algorithms.BoundarySource{algorithms.BoundaryAlgorithm("det")},
		Labels:     []algorithms.LabelSource{algorithms.NoLabels(), algorithms.LabelAlgorithm("lab")},
		Features:   featurestest.Long(),
	})
	if err != nil {
		t.Fatalf("Batch() error = %v", err)
	}
	if outcomes[0].Err != nil {
		t.Errorf("det/none error = %v", outcomes[0].Err)
	}
	if !errors.Is(outcomes[1].Err, algorithms.ErrParamConflict) {
		t.Errorf("det/lab error = %v, want ErrParamConflict", outcomes[1].Err)
	}
}

func TestBatchCancelled(t *testing.T) {
	m := newBuiltinMux(t)
	r := &runner.Runner{Mux: m, Logger: quiet}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes, err := r.Batch(ctx, track(t), runner.BatchOptions{Features: featurestest.Long(), Workers: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Batch() error = %v, want context.Canceled", err)
	}
	for _, o := range outcomes {
		if !errors.Is(o.Err, context.Canceled) {
			t.Fatalf("outcome %s error = %v, want context.Canceled", o.Pair, o.Err)
		}
	}
}

type conflicting struct {
	stubDetector
	k int
}

func (c *conflicting) Defaults() algorithms.Params { return algorithms.Params{"k": c.k} }

type conflictingLabeler struct {
	stubLabeler
	k int
}

func (c *conflictingLabeler) Defaults() algorithms.Params { return algorithms.Params{"k": c.k} }
