package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"strings"

	"github.com/haivivi/musicseg/pkg/annotations"
	"github.com/haivivi/musicseg/pkg/features"
)

// Directory names and file extensions of the dataset layout.
const (
	FeaturesDir   = "features"
	ReferencesDir = "references"

	featuresExt   = ".msgpack"
	referencesExt = ".jams"
)

// ErrInvalidTrack is returned for track names that cannot be mapped to a
// file name.
var ErrInvalidTrack = errors.New("dataset: invalid track name")

// Dataset is a collection of tracks stored in a FileStore.
type Dataset struct {
	store FileStore
}

// New returns a Dataset reading from and writing to store.
func New(store FileStore) *Dataset {
	return &Dataset{store: store}
}

// Store returns the underlying FileStore.
func (d *Dataset) Store() FileStore { return d.store }

// Track returns a handle on the named track. It does not touch the store.
func (d *Dataset) Track(name string) *Track {
	return &Track{ds: d, name: name}
}

// Tracks lists the tracks that have a feature bundle, sorted by name.
func (d *Dataset) Tracks(ctx context.Context) ([]string, error) {
	names, err := d.store.List(ctx, FeaturesDir)
	if err != nil {
		return nil, err
	}
	var tracks []string
	for _, n := range names {
		if t, ok := strings.CutSuffix(n, featuresExt); ok && checkTrack(t) == nil {
			tracks = append(tracks, t)
		}
	}
	return tracks, nil
}

// HasReferences reports whether the track has a references file.
func (t *Track) HasReferences(ctx context.Context) (bool, error) {
	path, err := ReferencesPath(t.name)
	if err != nil {
		return false, err
	}
	return t.ds.store.Exists(ctx, path)
}

// PutFeatures writes the feature bundle of a track.
func (d *Dataset) PutFeatures(ctx context.Context, track string, b *features.Bundle) error {
	path, err := FeaturesPath(track)
	if err != nil {
		return err
	}
	return d.write(ctx, path, func(w io.Writer) error { return features.Encode(w, b) })
}

// PutReferences writes the reference annotations of a track as one JAMS
// file, in annotator order.
func (d *Dataset) PutReferences(ctx context.Context, track string, duration float64, refs ...*annotations.Reference) error {
	path, err := ReferencesPath(track)
	if err != nil {
		return err
	}
	return d.write(ctx, path, func(w io.Writer) error { return annotations.EncodeJAMS(w, duration, refs...) })
}

func (d *Dataset) write(ctx context.Context, path string, encode func(io.Writer) error) error {
	w, err := d.store.Write(ctx, path)
	if err != nil {
		return fmt.Errorf("dataset: write %s: %w", path, err)
	}
	if err := encode(w); err != nil {
		abort(w)
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("dataset: write %s: %w", path, err)
	}
	return nil
}

// FeaturesPath returns the store path of a track's feature bundle.
func FeaturesPath(track string) (string, error) {
	if err := checkTrack(track); err != nil {
		return "", err
	}
	return FeaturesDir + "/" + track + featuresExt, nil
}

// ReferencesPath returns the store path of a track's references.
func ReferencesPath(track string) (string, error) {
	if err := checkTrack(track); err != nil {
		return "", err
	}
	return ReferencesDir + "/" + track + referencesExt, nil
}

func checkTrack(track string) error {
	if track == "" || track == "." || track == ".." || strings.ContainsAny(track, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidTrack, track)
	}
	return nil
}

// Track is one track of a dataset. It implements the runner's file context.
type Track struct {
	ds   *Dataset
	name string
}

// Name returns the track name.
func (t *Track) Name() string { return t.name }

// Bundle reads the track's feature bundle.
func (t *Track) Bundle(ctx context.Context) (*features.Bundle, error) {
	path, err := FeaturesPath(t.name)
	if err != nil {
		return nil, err
	}
	r, err := t.ds.store.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s features: %w", t.name, err)
	}
	defer r.Close()
	b, err := features.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", t.name, err)
	}
	if b.Track == "" {
		b.Track = t.name
	}
	return b, nil
}

// Features reads the track's bundle and selects one feature matrix.
func (t *Track) Features(ctx context.Context, feature string, annotBeats, framesync bool) (*features.Features, error) {
	b, err := t.Bundle(ctx)
	if err != nil {
		return nil, err
	}
	return b.Select(feature, annotBeats, framesync)
}

// GroundTruth returns the reference of the given annotator. A track without
// a references file, or without that annotator, yields an error wrapping
// annotations.ErrNotFound.
func (t *Track) GroundTruth(ctx context.Context, annotator int) (*annotations.Reference, error) {
	doc, err := t.jams(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Reference(t.name, annotator)
}

// References iterates over every segment annotation of the track in
// annotator order. A track without references yields nothing.
func (t *Track) References(ctx context.Context) iter.Seq2[*annotations.Reference, error] {
	return func(yield func(*annotations.Reference, error) bool) {
		doc, err := t.jams(ctx)
		if errors.Is(err, annotations.ErrNotFound) {
			return
		}
		if err != nil {
			yield(nil, err)
			return
		}
		for i := 0; ; i++ {
			ref, err := doc.Reference(t.name, i)
			if errors.Is(err, annotations.ErrNotFound) {
				return
			}
			if !yield(ref, err) || err != nil {
				return
			}
		}
	}
}

func (t *Track) jams(ctx context.Context) (*annotations.JAMS, error) {
	path, err := ReferencesPath(t.name)
	if err != nil {
		return nil, err
	}
	r, err := t.ds.store.Read(ctx, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("dataset: %s has no references: %w", t.name, annotations.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: %s references: %w", t.name, err)
	}
	defer r.Close()
	doc, err := annotations.DecodeJAMS(r)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", t.name, err)
	}
	return doc, nil
}
