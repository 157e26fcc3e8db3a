package foote

import (
	"context"
	"errors"
	"math"
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
	if len(times) < 3 {
		t.Fatalf("DetectBoundaries() found no interior boundary: %v", times)
	}
	// Sections last 22.5 s; most changes should have a boundary nearby.
	hits := 0
	for k := 1; k < 8; k++ {
		change := 22.5 * float64(k)
		for _, b := range times {
			if math.Abs(b-change) <= 3 {
				hits++
				break
			}
		}
	}
	if hits < 4 {
		t.Errorf("only %d of 7 section changes detected: %v", hits, times)
	}
}

func TestDetectBoundariesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().DetectBoundaries(ctx, config(t)); !errors.Is(err, context.Canceled) {
		t.Fatalf("DetectBoundaries() error = %v, want context.Canceled", err)
	}
}

func TestDetectBoundariesNoFeatures(t *testing.T) {
	if _, err := New().DetectBoundaries(context.Background(), algorithms.Config{}); err == nil {
		t.Fatal("DetectBoundaries() without features should fail")
	}
}
