package olda

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/haivivi/musicseg/pkg/algorithms"
	"github.com/haivivi/musicseg/pkg/features/featurestest"
)

func config(t *testing.T, hier bool) algorithms.Config {
	t.Helper()
	m := algorithms.NewMux()
	if err := m.Handle(ID, New()); err != nil {
		t.Fatal(err)
	}
	cfg, err := algorithms.BuildConfig(m, "pcp", false, false,
		algorithms.BoundaryAlgorithm(ID), algorithms.NoLabels(),
		algorithms.Attach(featurestest.Long()), algorithms.Hierarchical(hier))
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestDetectBoundariesFlat(t *testing.T) {
	cfg := config(t, false)
	levels, err := New().DetectBoundaries(context.Background(), cfg)
	if err != nil {
		t.Fatalf("DetectBoundaries() error = %v", err)
	}
	if len(levels) != 1 {
		t.Fatalf("DetectBoundaries() returned %d levels, want 1", len(levels))
	}
	// 180 s at 20 s per segment.
	if got := len(levels[0]) - 1; got != 9 {
		t.Fatalf("segments = %d, want 9: %v", got, levels[0])
	}
	if levels[0][0] != 0 || levels[0][9] != cfg.Features().Dur() {
		t.Fatalf("times = %v", levels[0])
	}
}

func TestDetectBoundariesHierarchicalNested(t *testing.T) {
	cfg := config(t, true)
	levels, err := New().DetectBoundaries(context.Background(), cfg)
	if err != nil {
		t.Fatalf("DetectBoundaries() error = %v", err)
	}
	if len(levels) != 3 {
		t.Fatalf("DetectBoundaries() returned %d levels, want 3", len(levels))
	}
	for i := 1; i < len(levels); i++ {
		fine := make(map[float64]bool, len(levels[i]))
		for _, b := range levels[i] {
			fine[b] = true
		}
		for _, b := range levels[i-1] {
			if !fine[b] {
				t.Errorf("level %d boundary %v missing from level %d", i-1, b, i)
			}
		}
		if len(levels[i]) <= len(levels[i-1]) {
			t.Errorf("level %d is not finer than level %d", i, i-1)
		}
	}
}

func TestLevelSegments(t *testing.T) {
	tests := []struct {
		k, levels, n int
		want         []int
	}{
		{9, 4, 360, []int{2, 4, 9}},
		{2, 4, 360, []int{2}},
		{32, 1, 360, []int{32}},
		{16, 3, 10, []int{4, 8, 10}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, levelSegments(tt.k, tt.levels, tt.n)); diff != "" {
			t.Errorf("levelSegments(%d, %d, %d) mismatch (-want +got):\n%s", tt.k, tt.levels, tt.n, diff)
		}
	}
}
