package scluster

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/haivivi/musicseg/pkg/algorithms"
	"github.com/haivivi/musicseg/pkg/features/featurestest"
	"github.com/haivivi/musicseg/pkg/segment"
)

func config(t *testing.T, hier bool) algorithms.Config {
	t.Helper()
	m := algorithms.NewMux()
	if err := m.Handle(ID, New()); err != nil {
		t.Fatal(err)
	}
	cfg, err := algorithms.BuildConfig(m, "pcp", false, false,
		algorithms.BoundaryAlgorithm(ID), algorithms.LabelAlgorithm(ID),
		algorithms.Attach(featurestest.Long()), algorithms.Hierarchical(hier))
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func checkLevel(t *testing.T, l segment.Level, dur float64) {
	t.Helper()
	if len(l.Times) < 2 || len(l.Times) != len(l.Labels)+1 {
		t.Fatalf("level has %d times and %d labels", len(l.Times), len(l.Labels))
	}
	if l.Times[0] != 0 || l.Times[len(l.Times)-1] != dur {
		t.Fatalf("level spans [%v, %v], want [0, %v]", l.Times[0], l.Times[len(l.Times)-1], dur)
	}
}

func TestSegmentFlat(t *testing.T) {
	cfg := config(t, false)
	s, err := New().Segment(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if s.Hierarchical || len(s.Levels) != 1 {
		t.Fatalf("Segment() = %v, want one flat level", s)
	}
	checkLevel(t, s.Levels[0], cfg.Features().Dur())
}

func TestSegmentHierarchical(t *testing.T) {
	cfg := config(t, true)
	s, err := New().Segment(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if !s.Hierarchical || len(s.Levels) != 10 {
		t.Fatalf("Segment() = %v, want 10 levels", s)
	}
	for _, l := range s.Levels {
		checkLevel(t, l, cfg.Features().Dur())
	}
	if got := s.Levels[0].Segments(); got != 1 {
		t.Errorf("level 0 has %d segments, want 1", got)
	}
}

func TestLabelSegments(t *testing.T) {
	cfg := config(t, false)
	dur := cfg.Features().Dur()
	bounds := [][]float64{
		{0, 22.5, 45, 67.5, 90, dur},
		{0, dur},
	}
	labels, err := New().LabelSegments(context.Background(), cfg, bounds)
	if err != nil {
		t.Fatalf("LabelSegments() error = %v", err)
	}
	if len(labels) != 2 || len(labels[0]) != 5 || len(labels[1]) != 1 {
		t.Fatalf("LabelSegments() shapes = %v", labels)
	}
	if labels[0][0] != 0 {
		t.Errorf("labels should be numbered from 0: %v", labels[0])
	}
}

func TestDetectBoundariesMatchesSegment(t *testing.T) {
	cfg := config(t, false)
	s, err := New().Segment(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	times, err := New().DetectBoundaries(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(s.Times(), times); diff != "" {
		t.Fatalf("DetectBoundaries() mismatch (-segment +detect):\n%s", diff)
	}
}
