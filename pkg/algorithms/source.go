package algorithms

import "strings"

// GroundTruthID is the identifier that selects reference annotations as the
// boundary source.
const GroundTruthID = "gt"

// NoLabelsID is the textual form of [NoLabels].
const NoLabelsID = "none"

// BoundarySource selects where boundaries come from: reference annotations
// or a registered algorithm.
type BoundarySource struct {
	id          string
	groundTruth bool
}

// GroundTruth selects reference annotations as the boundary source.
func GroundTruth() BoundarySource { return BoundarySource{groundTruth: true} }

// BoundaryAlgorithm selects the registered algorithm id as the boundary
// source. The id is not validated until it is resolved.
func BoundaryAlgorithm(id string) BoundarySource { return BoundarySource{id: id} }

// ParseBoundarySource parses "gt" as [GroundTruth] and anything else as an
// algorithm id.
func ParseBoundarySource(s string) BoundarySource {
	s = strings.TrimSpace(s)
	if s == GroundTruthID {
		return GroundTruth()
	}
	return BoundaryAlgorithm(s)
}

// IsGroundTruth reports whether the source is reference annotations.
func (b BoundarySource) IsGroundTruth() bool { return b.groundTruth }

// ID returns the algorithm id, or "" for ground truth.
func (b BoundarySource) ID() string { return b.id }

func (b BoundarySource) String() string {
	if b.groundTruth {
		return GroundTruthID
	}
	return b.id
}

func (b BoundarySource) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *BoundarySource) UnmarshalText(text []byte) error {
	*b = ParseBoundarySource(string(text))
	return nil
}

// LabelSource selects whether segments are labeled and by which algorithm.
// The zero value is [NoLabels].
type LabelSource struct {
	id string
}

// NoLabels selects no labeling.
func NoLabels() LabelSource { return LabelSource{} }

// LabelAlgorithm selects the registered algorithm id as the labeler. An
// empty id is equivalent to [NoLabels].
func LabelAlgorithm(id string) LabelSource { return LabelSource{id: id} }

// ParseLabelSource parses "" and "none" as [NoLabels] and anything else as an
// algorithm id.
func ParseLabelSource(s string) LabelSource {
	s = strings.TrimSpace(s)
	if s == NoLabelsID {
		return NoLabels()
	}
	return LabelAlgorithm(s)
}

// IsNone reports whether no labeling is requested.
func (l LabelSource) IsNone() bool { return l.id == "" }

// ID returns the algorithm id, or "" for no labeling.
func (l LabelSource) ID() string { return l.id }

func (l LabelSource) String() string {
	if l.id == "" {
		return NoLabelsID
	}
	return l.id
}

func (l LabelSource) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *LabelSource) UnmarshalText(text []byte) error {
	*l = ParseLabelSource(string(text))
	return nil
}
