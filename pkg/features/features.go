// Package features holds the precomputed feature payloads consumed by the
// segmentation algorithms.
//
// A [Features] value is one N×D matrix (N frames, D dimensions) of a single
// feature family at a single synchronization, together with the time of each
// frame and the track duration. A [Bundle] groups every family and
// synchronization computed for one track and is the unit persisted in a
// dataset (msgpack-encoded).
//
// Features values are immutable: constructors copy their input and accessors
// return copies, so a payload attached to a run configuration can be shared
// by concurrent runs.
package features

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Sentinel errors.
var (
	// ErrFeatureNotFound is returned when a bundle does not contain the
	// requested family/synchronization.
	ErrFeatureNotFound = errors.New("features: feature not found")

	// ErrNoFeatures is returned when a run has no feature payload attached.
	ErrNoFeatures = errors.New("features: no features attached")
)

// Sync identifies how feature frames are aligned in time.
type Sync string

const (
	// FrameSync frames are evenly spaced analysis frames.
	FrameSync Sync = "framesync"
	// EstBeatSync frames are aggregated over estimated beats.
	EstBeatSync Sync = "est_beatsync"
	// AnnBeatSync frames are aggregated over annotated beats.
	AnnBeatSync Sync = "ann_beatsync"
)

// Families lists the feature family names known to the pipeline.
var Families = []string{"pcp", "tonnetz", "mfcc", "cqt", "tempogram", "multi"}

// SyncFor returns the synchronization selected by the annot_beats and
// framesync flags. Frame synchronization wins over beat synchronization.
func SyncFor(annotBeats, framesync bool) Sync {
	switch {
	case framesync:
		return FrameSync
	case annotBeats:
		return AnnBeatSync
	default:
		return EstBeatSync
	}
}

// Features is an immutable feature matrix with per-frame times and the
// duration of the track it was computed from.
type Features struct {
	family     string
	sync       Sync
	n, d       int
	data       []float64 // row-major n×d
	frameTimes []float64
	dur        float64
}

// New builds a Features value from rows (one slice per frame) and the time
// of each frame in seconds. All rows must have the same length. The input is
// copied.
func New(family string, sync Sync, rows [][]float64, frameTimes []float64, dur float64) (*Features, error) {
	if len(rows) != len(frameTimes) {
		return nil, fmt.Errorf("features: %d rows but %d frame times", len(rows), len(frameTimes))
	}
	if dur < 0 {
		return nil, fmt.Errorf("features: negative duration %g", dur)
	}
	d := 0
	if len(rows) > 0 {
		d = len(rows[0])
	}
	data := make([]float64, 0, len(rows)*d)
	for i, r := range rows {
		if len(r) != d {
			return nil, fmt.Errorf("features: row %d has %d columns, want %d", i, len(r), d)
		}
		data = append(data, r...)
	}
	return fromData(family, sync, len(rows), d, data, frameTimes, dur)
}

func fromData(family string, sync Sync, n, d int, data, frameTimes []float64, dur float64) (*Features, error) {
	if len(data) != n*d {
		return nil, fmt.Errorf("features: %d values for a %dx%d matrix", len(data), n, d)
	}
	if len(frameTimes) != n {
		return nil, fmt.Errorf("features: %d frame times for %d frames", len(frameTimes), n)
	}
	for i := 1; i < n; i++ {
		if frameTimes[i] < frameTimes[i-1] {
			return nil, fmt.Errorf("features: frame times decrease at %d", i)
		}
	}
	return &Features{
		family:     family,
		sync:       sync,
		n:          n,
		d:          d,
		data:       append([]float64(nil), data...),
		frameTimes: append([]float64(nil), frameTimes...),
		dur:        dur,
	}, nil
}

// Family returns the feature family name (e.g. "pcp").
func (f *Features) Family() string { return f.family }

// Sync returns the frame synchronization.
func (f *Features) Sync() Sync { return f.sync }

// Len returns the number of frames.
func (f *Features) Len() int { return f.n }

// Dim returns the number of feature dimensions.
func (f *Features) Dim() int { return f.d }

// Dur returns the track duration in seconds.
func (f *Features) Dur() float64 { return f.dur }

// At returns the value of dimension j at frame i.
func (f *Features) At(i, j int) float64 { return f.data[i*f.d+j] }

// Row returns a copy of frame i.
func (f *Features) Row(i int) []float64 {
	return append([]float64(nil), f.data[i*f.d:(i+1)*f.d]...)
}

// FrameTime returns the time of frame i in seconds.
func (f *Features) FrameTime(i int) float64 { return f.frameTimes[i] }

// FrameTimes returns a copy of all frame times.
func (f *Features) FrameTimes() []float64 {
	return append([]float64(nil), f.frameTimes...)
}

// Dense returns a copy of the feature matrix. It returns nil when the
// payload has no frames or no dimensions, since gonum matrices cannot be
// empty.
func (f *Features) Dense() *mat.Dense {
	if f.n == 0 || f.d == 0 {
		return nil
	}
	return mat.NewDense(f.n, f.d, append([]float64(nil), f.data...))
}

// String implements fmt.Stringer.
func (f *Features) String() string {
	return fmt.Sprintf("%s/%s[%dx%d dur=%.2fs]", f.family, f.sync, f.n, f.d, f.dur)
}
