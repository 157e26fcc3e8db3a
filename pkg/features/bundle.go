package features

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Entry is the serialized form of one feature matrix inside a [Bundle].
type Entry struct {
	Family string    `msgpack:"family" json:"family" yaml:"family"`
	Sync   Sync      `msgpack:"sync" json:"sync" yaml:"sync"`
	Rows   int       `msgpack:"rows" json:"rows" yaml:"rows"`
	Cols   int       `msgpack:"cols" json:"cols" yaml:"cols"`
	Data   []float64 `msgpack:"data" json:"data" yaml:"data"`
	Times  []float64 `msgpack:"times" json:"times" yaml:"times"`
}

// Bundle holds every feature matrix computed for one track.
type Bundle struct {
	Track   string  `msgpack:"track" json:"track" yaml:"track"`
	Dur     float64 `msgpack:"dur" json:"dur" yaml:"dur"`
	Entries []Entry `msgpack:"entries" json:"entries" yaml:"entries"`
}

// Add stores f in the bundle, replacing any entry with the same family and
// synchronization. The bundle duration is taken from f.
func (b *Bundle) Add(f *Features) {
	e := Entry{
		Family: f.family,
		Sync:   f.sync,
		Rows:   f.n,
		Cols:   f.d,
		Data:   append([]float64(nil), f.data...),
		Times:  append([]float64(nil), f.frameTimes...),
	}
	b.Dur = f.dur
	for i := range b.Entries {
		if b.Entries[i].Family == e.Family && b.Entries[i].Sync == e.Sync {
			b.Entries[i] = e
			return
		}
	}
	b.Entries = append(b.Entries, e)
}

// Get returns the features for an exact family and synchronization.
func (b *Bundle) Get(family string, sync Sync) (*Features, error) {
	for _, e := range b.Entries {
		if e.Family != family || e.Sync != sync {
			continue
		}
		f, err := fromData(e.Family, e.Sync, e.Rows, e.Cols, e.Data, e.Times, b.Dur)
		if err != nil {
			return nil, fmt.Errorf("features: %s %s/%s: %w", b.Track, family, sync, err)
		}
		return f, nil
	}
	return nil, fmt.Errorf("features: %s has no %s/%s: %w", b.Track, family, sync, ErrFeatureNotFound)
}

// Select returns the features of a family using the synchronization chosen
// by the annot_beats and framesync flags (see [SyncFor]).
func (b *Bundle) Select(feature string, annotBeats, framesync bool) (*Features, error) {
	return b.Get(feature, SyncFor(annotBeats, framesync))
}

// Encode writes b to w as msgpack.
func Encode(w io.Writer, b *Bundle) error {
	if err := msgpack.NewEncoder(w).Encode(b); err != nil {
		return fmt.Errorf("features: encode %s: %w", b.Track, err)
	}
	return nil
}

// Decode reads a msgpack-encoded bundle from r.
func Decode(r io.Reader) (*Bundle, error) {
	var b Bundle
	if err := msgpack.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("features: decode: %w", err)
	}
	return &b, nil
}
