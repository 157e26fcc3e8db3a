package annotations_test

import (
	"bytes"
	"context"
	"errors"
	"iter"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/haivivi/musicseg/pkg/annotations"
)

const sampleJAMS = `{
  "file_metadata": {"title": "Mindless", "artist": "Sargon", "duration": 60.0},
  "annotations": [
    {"namespace": "beat", "data": [{"time": 0.5, "duration": 0, "value": 1}]},
    {
      "namespace": "segment_open",
      "annotation_metadata": {"annotator": {"name": "first"}},
      "data": [
        {"time": 0.0, "duration": 10.0, "value": "intro"},
        {"time": 10.0, "duration": 20.0, "value": "verse"},
        {"time": 30.0, "duration": 20.0, "value": "chorus"},
        {"time": 50.0, "duration": 10.0, "value": "verse"}
      ]
    },
    {
      "namespace": "segment_open",
      "data": [
        {"time": 0.0, "duration": 30.0, "value": "A"},
        {"time": 30.0, "duration": 30.0, "value": "B"}
      ]
    }
  ]
}`

func TestParseJAMS(t *testing.T) {
	ref, err := annotations.ParseJAMS(strings.NewReader(sampleJAMS), "sargon", 0)
	if err != nil {
		t.Fatalf("ParseJAMS() error = %v", err)
	}
	want := &annotations.Reference{
		Track:    "sargon",
		Times:    []float64{0, 10, 30, 50, 60},
		Labels:   []string{"intro", "verse", "chorus", "verse"},
		Duration: 60,
	}
	if diff := cmp.Diff(want, ref); diff != "" {
		t.Fatalf("ParseJAMS() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 2, 1}, ref.IntLabels()); diff != "" {
		t.Errorf("IntLabels() mismatch (-want +got):\n%s", diff)
	}
	if got := ref.String(); got != "sargon#0[4 segments]" {
		t.Errorf("String() = %q", got)
	}

	second, err := annotations.ParseJAMS(strings.NewReader(sampleJAMS), "sargon", 1)
	if err != nil {
		t.Fatalf("ParseJAMS(annotator 1) error = %v", err)
	}
	if diff := cmp.Diff([]float64{0, 30, 60}, second.Times); diff != "" {
		t.Errorf("annotator 1 times mismatch (-want +got):\n%s", diff)
	}
}

func TestParseJAMSFallbackNamespace(t *testing.T) {
	doc := `{"file_metadata": {"duration": 20}, "annotations": [
		{"namespace": "segment_salami_upper", "data": [
			{"time": 0, "duration": 20, "value": "A"}]}]}`
	ref, err := annotations.ParseJAMS(strings.NewReader(doc), "t", 0)
	if err != nil {
		t.Fatalf("ParseJAMS() error = %v", err)
	}
	if diff := cmp.Diff([]float64{0, 20}, ref.Times); diff != "" {
		t.Errorf("times mismatch (-want +got):\n%s", diff)
	}
}

func TestParseJAMSErrors(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		annotator int
		notFound  bool
	}{
		{"annotator out of range", sampleJAMS, 2, true},
		{"negative annotator", sampleJAMS, -1, true},
		{"no segments", `{"annotations": [{"namespace": "beat", "data": []}]}`, 0, true},
		{"empty segments", `{"annotations": [{"namespace": "segment_open", "data": []}]}`, 0, true},
		{"bad json", `{"annotations": [`, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := annotations.ParseJAMS(strings.NewReader(tt.doc), "t", tt.annotator)
			if err == nil {
				t.Fatal("ParseJAMS() expected error")
			}
			if got := errors.Is(err, annotations.ErrNotFound); got != tt.notFound {
				t.Fatalf("errors.Is(ErrNotFound) = %v, want %v (%v)", got, tt.notFound, err)
			}
		})
	}
}

func TestEncodeJAMSRoundTrip(t *testing.T) {
	refs := []*annotations.Reference{
		{Track: "t", Annotator: 0, Times: []float64{0, 5, 12}, Labels: []string{"a", "b"}, Duration: 12},
		{Track: "t", Annotator: 1, Times: []float64{0, 12}, Labels: []string{"x"}, Duration: 12},
	}
	var buf bytes.Buffer
	if err := annotations.EncodeJAMS(&buf, 12, refs...); err != nil {
		t.Fatalf("EncodeJAMS() error = %v", err)
	}
	for i, want := range refs {
		got, err := annotations.ParseJAMS(bytes.NewReader(buf.Bytes()), "t", i)
		if err != nil {
			t.Fatalf("ParseJAMS(%d) error = %v", i, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("annotator %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestReferenceClone(t *testing.T) {
	r := &annotations.Reference{Track: "t", Times: []float64{0, 1}, Labels: []string{"a"}}
	c := r.Clone()
	c.Times[0] = 9
	c.Labels[0] = "z"
	if r.Times[0] != 0 || r.Labels[0] != "a" {
		t.Fatal("Clone() shares storage")
	}
}

func newBadgerStore(t *testing.T) annotations.Store {
	t.Helper()
	s, err := annotations.NewBadger(annotations.BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func stores(t *testing.T) map[string]annotations.Store {
	return map[string]annotations.Store{
		"memory": annotations.NewMemory(),
		"badger": newBadgerStore(t),
	}
}

func collect(t *testing.T, seq iter.Seq2[*annotations.Reference, error]) []*annotations.Reference {
	t.Helper()
	var out []*annotations.Reference
	for ref, err := range seq {
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		out = append(out, ref)
	}
	return out
}

func TestStoreGetPutDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Get(ctx, "song", 0); !errors.Is(err, annotations.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}

			ref := &annotations.Reference{Track: "song", Times: []float64{0, 3, 9}, Labels: []string{"a", "b"}, Duration: 9}
			if err := s.Put(ctx, ref); err != nil {
				t.Fatalf("Put: %v", err)
			}
			got, err := s.Get(ctx, "song", 0)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if diff := cmp.Diff(ref, got); diff != "" {
				t.Fatalf("Get mismatch (-want +got):\n%s", diff)
			}

			over := ref.Clone()
			over.Labels = []string{"c", "d"}
			if err := s.Put(ctx, over); err != nil {
				t.Fatalf("Put overwrite: %v", err)
			}
			got, _ = s.Get(ctx, "song", 0)
			if diff := cmp.Diff(over.Labels, got.Labels); diff != "" {
				t.Fatalf("Get after overwrite mismatch (-want +got):\n%s", diff)
			}

			if err := s.Delete(ctx, "song", 0); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := s.Get(ctx, "song", 0); !errors.Is(err, annotations.ErrNotFound) {
				t.Fatalf("expected ErrNotFound after delete, got %v", err)
			}
			if err := s.Delete(ctx, "nope", 3); err != nil {
				t.Fatalf("Delete non-existent: %v", err)
			}
		})
	}
}

func TestStoreList(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, r := range []*annotations.Reference{
				{Track: "b", Annotator: 10, Times: []float64{0, 1}, Labels: []string{"x"}},
				{Track: "a", Annotator: 0, Times: []float64{0, 1}, Labels: []string{"x"}},
				{Track: "b", Annotator: 2, Times: []float64{0, 1}, Labels: []string{"x"}},
				{Track: "bc", Annotator: 0, Times: []float64{0, 1}, Labels: []string{"x"}},
			} {
				if err := s.Put(ctx, r); err != nil {
					t.Fatalf("Put: %v", err)
				}
			}

			refs := collect(t, s.List(ctx, "b"))
			var got []int
			for _, r := range refs {
				if r.Track != "b" {
					t.Fatalf("List(b) yielded track %q", r.Track)
				}
				got = append(got, r.Annotator)
			}
			if diff := cmp.Diff([]int{2, 10}, got); diff != "" {
				t.Errorf("List(b) annotators mismatch (-want +got):\n%s", diff)
			}

			if all := collect(t, s.List(ctx, "")); len(all) != 4 {
				t.Errorf("List(all) = %d references, want 4", len(all))
			}
		})
	}
}

func TestStoreRejectsBadKeys(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, r := range []*annotations.Reference{
				{Track: ""},
				{Track: "a:b"},
				{Track: "a", Annotator: -1},
			} {
				if err := s.Put(ctx, r); err == nil {
					t.Errorf("Put(%q, %d) expected error", r.Track, r.Annotator)
				}
			}
		})
	}
}

func TestBadgerTracks(t *testing.T) {
	ctx := context.Background()
	s, err := annotations.NewBadger(annotations.BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	for _, r := range []*annotations.Reference{
		{Track: "b", Annotator: 1, Times: []float64{0, 1}},
		{Track: "a", Annotator: 0, Times: []float64{0, 1}},
		{Track: "b", Annotator: 0, Times: []float64{0, 1}},
	} {
		if err := s.Put(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	tracks, err := s.Tracks(ctx)
	if err != nil {
		t.Fatalf("Tracks: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, tracks); diff != "" {
		t.Errorf("Tracks() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewBadgerRequiresDir(t *testing.T) {
	if _, err := annotations.NewBadger(annotations.BadgerOptions{}); err == nil {
		t.Fatal("NewBadger without Dir should fail")
	}
}

func TestTrackRefAndImport(t *testing.T) {
	ctx := context.Background()
	s := annotations.NewMemory()
	refs := func(yield func(*annotations.Reference, error) bool) {
		for i := range 3 {
			r := &annotations.Reference{Track: "song", Annotator: i, Times: []float64{0, 4}, Labels: []string{"a"}}
			if !yield(r, nil) {
				return
			}
		}
	}
	n, err := annotations.Import(ctx, s, refs)
	if err != nil || n != 3 {
		t.Fatalf("Import() = %d, %v, want 3, nil", n, err)
	}

	tr := annotations.TrackRef{Store: s, Track: "song"}
	if tr.Name() != "song" {
		t.Errorf("Name() = %q", tr.Name())
	}
	ref, err := tr.GroundTruth(ctx, 2)
	if err != nil || ref.Annotator != 2 {
		t.Fatalf("GroundTruth(2) = %v, %v", ref, err)
	}
	if _, err := tr.GroundTruth(ctx, 5); !errors.Is(err, annotations.ErrNotFound) {
		t.Fatalf("GroundTruth(5) error = %v, want ErrNotFound", err)
	}

	failing := func(yield func(*annotations.Reference, error) bool) {
		yield(nil, errors.New("boom"))
	}
	if _, err := annotations.Import(ctx, s, failing); err == nil {
		t.Fatal("Import() should propagate iterator errors")
	}
}
