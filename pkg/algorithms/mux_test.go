package algorithms

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/haivivi/musicseg/pkg/segment"
)

type stubBoundaries struct {
	hier     bool
	defaults Params
}

func (s *stubBoundaries) Capabilities() Capabilities {
	return Capabilities{Boundaries: true, Hierarchical: s.hier}
}

func (s *stubBoundaries) Defaults() Params { return s.defaults }

func (s *stubBoundaries) DetectBoundaries(_ context.Context, cfg Config) ([][]float64, error) {
	return [][]float64{{0, cfg.Features().Dur()}}, nil
}

type stubLabeler struct {
	defaults Params
}

func (s *stubLabeler) Capabilities() Capabilities { return Capabilities{Labels: true} }

func (s *stubLabeler) Defaults() Params { return s.defaults }

func (s *stubLabeler) LabelSegments(_ context.Context, _ Config, bounds [][]float64) ([][]int, error) {
	out := make([][]int, len(bounds))
	for i, b := range bounds {
		out[i] = make([]int, len(b)-1)
	}
	return out, nil
}

type stubJoint struct {
	stubBoundaries
	stubLabeler
}

func (s *stubJoint) Capabilities() Capabilities {
	return Capabilities{Boundaries: true, Labels: true, Hierarchical: true}
}

func (s *stubJoint) Defaults() Params { return nil }

func (s *stubJoint) Segment(_ context.Context, cfg Config) (segment.Segmentation, error) {
	return segment.Flat([]float64{0, cfg.Features().Dur()}, []int{0}), nil
}

// liar declares labels without implementing Labeler.
type liar struct{ stubBoundaries }

func (l *liar) Capabilities() Capabilities { return Capabilities{Boundaries: true, Labels: true} }

func newTestMux(t *testing.T) *Mux {
	t.Helper()
	m := NewMux()
	for id, a := range map[string]Algorithm{
		"bounds": &stubBoundaries{defaults: Params{"k": 3}},
		"hier":   &stubBoundaries{hier: true},
		"labels": &stubLabeler{defaults: Params{"k": 3.0, "n": 2}},
		"joint":  &stubJoint{},
	} {
		if err := m.Handle(id, a); err != nil {
			t.Fatalf("Handle(%q) error = %v", id, err)
		}
	}
	return m
}

func TestMuxHandleErrors(t *testing.T) {
	m := newTestMux(t)
	tests := []struct {
		name string
		id   string
		alg  Algorithm
	}{
		{"empty id", "", &stubLabeler{}},
		{"reserved gt", "gt", &stubBoundaries{}},
		{"reserved none", "none", &stubLabeler{}},
		{"nil algorithm", "x", nil},
		{"duplicate", "bounds", &stubBoundaries{}},
		{"undeclared interface", "liar", &liar{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := m.Handle(tt.id, tt.alg); err == nil {
				t.Fatalf("Handle(%q) expected error", tt.id)
			}
		})
	}
}

func TestMuxEnumerate(t *testing.T) {
	m := newTestMux(t)
	if diff := cmp.Diff([]string{"bounds", "hier", "joint"}, m.BoundaryIDs()); diff != "" {
		t.Errorf("BoundaryIDs() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"joint", "labels"}, m.LabelIDs()); diff != "" {
		t.Errorf("LabelIDs() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"bounds", "hier", "joint", "labels"}, m.IDs()); diff != "" {
		t.Errorf("IDs() mismatch (-want +got):\n%s", diff)
	}
}

func TestMuxResolveAll(t *testing.T) {
	m := newTestMux(t)
	for _, id := range m.BoundaryIDs() {
		det, err := m.Boundaries(BoundaryAlgorithm(id))
		if err != nil || det == nil {
			t.Errorf("Boundaries(%q) = %v, %v", id, det, err)
		}
	}
	for _, id := range m.LabelIDs() {
		l, err := m.Labels(LabelAlgorithm(id))
		if err != nil || l == nil {
			t.Errorf("Labels(%q) = %v, %v", id, l, err)
		}
	}
}

func TestMuxSentinels(t *testing.T) {
	m := newTestMux(t)
	det, err := m.Boundaries(GroundTruth())
	if det != nil || err != nil {
		t.Fatalf("Boundaries(gt) = %v, %v, want nil, nil", det, err)
	}
	l, err := m.Labels(NoLabels())
	if l != nil || err != nil {
		t.Fatalf("Labels(none) = %v, %v, want nil, nil", l, err)
	}
}

func TestMuxResolutionErrors(t *testing.T) {
	m := newTestMux(t)
	tests := []struct {
		name    string
		resolve func() error
		reason  error
	}{
		{"unknown boundaries", func() error {
			_, err := m.Boundaries(BoundaryAlgorithm("fake_name_module"))
			return err
		}, ErrUnknownAlgorithm},
		{"label-only as boundaries", func() error {
			_, err := m.Boundaries(BoundaryAlgorithm("labels"))
			return err
		}, ErrWrongRole},
		{"unknown labels", func() error {
			_, err := m.Labels(LabelAlgorithm("fake_name_module"))
			return err
		}, ErrUnknownAlgorithm},
		{"boundary-only as labels", func() error {
			_, err := m.Labels(LabelAlgorithm("bounds"))
			return err
		}, ErrWrongRole},
		{"empty boundary id", func() error {
			_, err := m.Boundaries(BoundarySource{})
			return err
		}, ErrUnknownAlgorithm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.resolve()
			if !errors.Is(err, ErrResolution) {
				t.Fatalf("error = %v, want ErrResolution", err)
			}
			if !errors.Is(err, tt.reason) {
				t.Fatalf("error = %v, want reason %v", err, tt.reason)
			}
			var re *ResolutionError
			if !errors.As(err, &re) {
				t.Fatalf("error = %T, want *ResolutionError", err)
			}
		})
	}
}

func TestMuxGetAndCapabilities(t *testing.T) {
	m := newTestMux(t)
	if _, err := m.Get("nope"); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Fatalf("Get(nope) error = %v, want ErrUnknownAlgorithm", err)
	}
	caps, ok := m.Capabilities("joint")
	if !ok || !caps.Boundaries || !caps.Labels || !caps.Hierarchical {
		t.Fatalf("Capabilities(joint) = %+v, %v", caps, ok)
	}
	if got := caps.String(); got != "boundaries+labels (hier)" {
		t.Fatalf("Capabilities.String() = %q", got)
	}
	if _, ok := m.Capabilities("nope"); ok {
		t.Fatal("Capabilities(nope) should report false")
	}
}

func TestVariant(t *testing.T) {
	m := newTestMux(t)
	base, err := m.Get("joint")
	if err != nil {
		t.Fatal(err)
	}
	v := Variant(base, Params{"k": 9})
	if err := m.Handle("joint-k9", v); err != nil {
		t.Fatalf("Handle(variant) error = %v", err)
	}
	if got := v.Defaults().Int("k", 0); got != 9 {
		t.Fatalf("variant k = %d, want 9", got)
	}
	if _, ok := AsSegmenter(v); !ok {
		t.Fatal("AsSegmenter(variant of joint) should succeed")
	}
	b, _ := m.Get("bounds")
	if _, ok := AsSegmenter(Variant(b, nil)); ok {
		t.Fatal("AsSegmenter(variant of boundary-only) should fail")
	}
	if _, err := m.Labels(LabelAlgorithm("joint-k9")); err != nil {
		t.Fatalf("Labels(joint-k9) error = %v", err)
	}
}

func TestSources(t *testing.T) {
	if !ParseBoundarySource("gt").IsGroundTruth() {
		t.Error(`ParseBoundarySource("gt") should be ground truth`)
	}
	if got := ParseBoundarySource(" foote ").ID(); got != "foote" {
		t.Errorf("ParseBoundarySource().ID() = %q", got)
	}
	for _, s := range []string{"", "none", " none "} {
		if !ParseLabelSource(s).IsNone() {
			t.Errorf("ParseLabelSource(%q) should be none", s)
		}
	}
	if got := NoLabels().String(); got != "none" {
		t.Errorf("NoLabels().String() = %q", got)
	}

	var b BoundarySource
	if err := b.UnmarshalText([]byte("gt")); err != nil || !b.IsGroundTruth() {
		t.Errorf("UnmarshalText(gt) = %v, %v", b, err)
	}
	var l LabelSource
	if err := l.UnmarshalText([]byte("fmc2d")); err != nil || l.ID() != "fmc2d" {
		t.Errorf("UnmarshalText(fmc2d) = %v, %v", l, err)
	}
	text, _ := GroundTruth().MarshalText()
	if string(text) != "gt" {
		t.Errorf("MarshalText(gt) = %q", text)
	}
}
