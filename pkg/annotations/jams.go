package annotations

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// SegmentNamespace is the JAMS namespace of open-vocabulary segment
// annotations. Other "segment_" namespaces are accepted when a file has none.
const SegmentNamespace = "segment_open"

// JAMS is the subset of the JAMS document format used for references.
type JAMS struct {
	FileMetadata JAMSFileMetadata `json:"file_metadata"`
	Annotations  []JAMSAnnotation `json:"annotations"`
}

type JAMSFileMetadata struct {
	Title    string  `json:"title,omitzero"`
	Artist   string  `json:"artist,omitzero"`
	Duration float64 `json:"duration"`
}

type JAMSAnnotation struct {
	Namespace string            `json:"namespace"`
	Metadata  *JAMSAnnotMeta    `json:"annotation_metadata,omitzero"`
	Data      []JAMSObservation `json:"data"`
}

type JAMSAnnotMeta struct {
	Annotator map[string]any `json:"annotator,omitzero"`
}

type JAMSObservation struct {
	Time       float64 `json:"time"`
	Duration   float64 `json:"duration"`
	Value      any     `json:"value"`
	Confidence any     `json:"confidence,omitzero"`
}

// ParseJAMS decodes a JAMS document and returns the segment annotation of
// the given annotator: the annotator-th annotation in the segment_open
// namespace, or in any segment namespace if the document has no segment_open
// annotation. It returns ErrNotFound when there is no such annotation.
func ParseJAMS(r io.Reader, track string, annotator int) (*Reference, error) {
	doc, err := DecodeJAMS(r)
	if err != nil {
		return nil, err
	}
	return doc.Reference(track, annotator)
}

// DecodeJAMS decodes a JAMS document.
func DecodeJAMS(r io.Reader) (*JAMS, error) {
	var doc JAMS
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("annotations: decode jams: %w", err)
	}
	return &doc, nil
}

// Reference extracts the annotator-th segment annotation.
func (doc *JAMS) Reference(track string, annotator int) (*Reference, error) {
	segs := doc.segments(func(ns string) bool { return ns == SegmentNamespace })
	if len(segs) == 0 {
		segs = doc.segments(func(ns string) bool { return strings.HasPrefix(ns, "segment_") })
	}
	if annotator < 0 || annotator >= len(segs) {
		return nil, fmt.Errorf("annotations: %s annotator %d: %w", track, annotator, ErrNotFound)
	}
	ann := segs[annotator]
	if len(ann.Data) == 0 {
		return nil, fmt.Errorf("annotations: %s annotator %d: empty annotation: %w", track, annotator, ErrNotFound)
	}

	ref := &Reference{
		Track:     track,
		Annotator: annotator,
		Times:     make([]float64, 0, len(ann.Data)+1),
		Labels:    make([]string, 0, len(ann.Data)),
		Duration:  doc.FileMetadata.Duration,
	}
	for _, obs := range ann.Data {
		ref.Times = append(ref.Times, obs.Time)
		ref.Labels = append(ref.Labels, fmt.Sprint(obs.Value))
	}
	last := ann.Data[len(ann.Data)-1]
	ref.Times = append(ref.Times, last.Time+last.Duration)
	return ref, nil
}

func (doc *JAMS) segments(match func(string) bool) []JAMSAnnotation {
	var out []JAMSAnnotation
	for _, a := range doc.Annotations {
		if match(a.Namespace) {
			out = append(out, a)
		}
	}
	return out
}

// EncodeJAMS writes refs as a JAMS document, one segment_open annotation per
// reference, in order.
func EncodeJAMS(w io.Writer, duration float64, refs ...*Reference) error {
	doc := JAMS{FileMetadata: JAMSFileMetadata{Duration: duration}}
	for _, ref := range refs {
		ann := JAMSAnnotation{
			Namespace: SegmentNamespace,
			Metadata:  &JAMSAnnotMeta{Annotator: map[string]any{"id": ref.Annotator}},
		}
		for i := range ref.Segments() {
			label := ""
			if i < len(ref.Labels) {
				label = ref.Labels[i]
			}
			ann.Data = append(ann.Data, JAMSObservation{
				Time:     ref.Times[i],
				Duration: ref.Times[i+1] - ref.Times[i],
				Value:    label,
			})
		}
		doc.Annotations = append(doc.Annotations, ann)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
