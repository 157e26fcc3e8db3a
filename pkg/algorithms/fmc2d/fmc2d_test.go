package fmc2d

import (
	"context"
	"errors"
	"testing"

	"github.com/haivivi/musicseg/pkg/algorithms"
	"github.com/haivivi/musicseg/pkg/features/featurestest"
)

func config(t *testing.T, p algorithms.Params) algorithms.Config {
	t.Helper()
	m := algorithms.NewMux()
	if err := m.Handle(ID, New()); err != nil {
		t.Fatal(err)
	}
	cfg, err := algorithms.BuildConfig(m, "pcp", false, false,
		algorithms.GroundTruth(), algorithms.LabelAlgorithm(ID),
		algorithms.Attach(featurestest.Blocks("ABAB", 20, 0.5)), algorithms.Override(p))
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestLabelSegmentsRepetition(t *testing.T) {
	for _, xmeans := range []bool{true, false} {
		cfg := config(t, algorithms.Params{"xmeans": xmeans, "k": 2})
		bounds := [][]float64{{0, 20, 40, 60, 80}}
		labels, err := New().LabelSegments(context.Background(), cfg, bounds)
		if err != nil {
			t.Fatalf("LabelSegments() error = %v", err)
		}
		got := labels[0]
		if len(got) != 4 {
			t.Fatalf("LabelSegments() = %v, want 4 labels", got)
		}
		if got[0] != got[2] || got[1] != got[3] || got[0] == got[1] {
			t.Errorf("xmeans=%v: labels = %v, want ABAB", xmeans, got)
		}
	}
}

func TestLabelSegmentsLevels(t *testing.T) {
	cfg := config(t, nil)
	bounds := [][]float64{{0, 80}, {0, 40, 80}, {0, 10, 20, 30, 40, 50, 60, 70, 80}}
	labels, err := New().LabelSegments(context.Background(), cfg, bounds)
	if err != nil {
		t.Fatalf("LabelSegments() error = %v", err)
	}
	for i, l := range labels {
		if len(l) != len(bounds[i])-1 {
			t.Errorf("level %d: %d labels for %d segments", i, len(l), len(bounds[i])-1)
		}
	}
}

func TestLabelSegmentsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().LabelSegments(ctx, config(t, nil), [][]float64{{0, 80}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("LabelSegments() error = %v, want context.Canceled", err)
	}
}
