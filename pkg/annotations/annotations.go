// Package annotations provides reference (ground truth) segment annotations.
//
// A [Reference] is one annotator's segmentation of a track: boundary times
// that cover the track and one string label per segment. References are read
// from JAMS files (see [ParseJAMS]) or kept in a [Store]: [Memory] for tests
// and [Badger] for a persistent, msgpack-encoded database.
package annotations

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when no reference exists for a track and
	// annotator.
	ErrNotFound = errors.New("annotations: not found")
)

// Reference is a reference segmentation of a track.
type Reference struct {
	// Track is the track name.
	Track string `msgpack:"track" json:"track" yaml:"track"`

	// Annotator is the index of the annotator among the track's references.
	Annotator int `msgpack:"annotator" json:"annotator" yaml:"annotator"`

	// Times are the boundary times in seconds, including the track start and
	// end.
	Times []float64 `msgpack:"times" json:"times" yaml:"times"`

	// Labels has one label per segment.
	Labels []string `msgpack:"labels" json:"labels" yaml:"labels"`

	// Duration is the annotated track duration in seconds, 0 if unknown.
	Duration float64 `msgpack:"duration,omitempty" json:"duration,omitzero" yaml:"duration,omitzero"`
}

// Segments returns the number of segments.
func (r *Reference) Segments() int {
	return max(len(r.Times)-1, 0)
}

// IntLabels maps the string labels to integers in order of first
// appearance: the first label becomes 0, the next distinct one 1, and so on.
func (r *Reference) IntLabels() []int {
	ids := make(map[string]int, len(r.Labels))
	out := make([]int, len(r.Labels))
	for i, l := range r.Labels {
		id, ok := ids[l]
		if !ok {
			id = len(ids)
			ids[l] = id
		}
		out[i] = id
	}
	return out
}

// Clone returns a deep copy of r.
func (r *Reference) Clone() *Reference {
	c := *r
	c.Times = append([]float64(nil), r.Times...)
	c.Labels = append([]string(nil), r.Labels...)
	return &c
}

func (r *Reference) String() string {
	return fmt.Sprintf("%s#%d[%d segments]", r.Track, r.Annotator, r.Segments())
}
