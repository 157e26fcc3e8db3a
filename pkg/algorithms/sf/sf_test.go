package sf

import (
	"context"
	"errors"
	"testing"

	"github.com/haivivi/musicseg/pkg/algorithms"
	"github.com/haivivi/musicseg/pkg/features/featurestest"
)

func config(t *testing.T) algorithms.Config {
	t.Helper()
	m := algorithms.NewMux()
	if err := m.Handle(ID, New()); err != nil {
		t.Fatal(err)
	}
	cfg, err := algorithms.BuildConfig(m, "pcp", false, false,
		algorithms.BoundaryAlgorithm(ID), algorithms.NoLabels(),
		algorithms.Attach(featurestest.Long()))
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestDetectBoundaries(t *testing.T) {
	cfg := config(t)
	levels, err := New().DetectBoundaries(context.Background(), cfg)
	if err != nil {
		t.Fatalf("DetectBoundaries() error = %v", err)
	}
	if len(levels) != 1 {
		t.Fatalf("DetectBoundaries() returned %d levels, want 1", len(levels))
	}
	times := levels[0]
	dur := cfg.Features().Dur()
	if times[0] != 0 || times[len(times)-1] != dur {
		t.Fatalf("times span [%v, %v], want [0, %v]", times[0], times[len(times)-1], dur)
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			t.Fatalf("times not increasing at %d: %v", i, times)
		}
	}
}

func TestDeterministic(t *testing.T) {
	cfg := config(t)
	a, err := New().DetectBoundaries(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := New().DetectBoundaries(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(a[0]) != len(b[0]) {
		t.Fatalf("runs differ: %v vs %v", a, b)
	}
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("runs differ: %v vs %v", a, b)
		}
	}
}

func TestDetectBoundariesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().DetectBoundaries(ctx, config(t)); !errors.Is(err, context.Canceled) {
		t.Fatalf("DetectBoundaries() error = %v, want context.Canceled", err)
	}
}
