package annotations

import (
	"context"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Store persists references keyed by track and annotator.
type Store interface {
	// Get returns the reference of a track by an annotator. Returns
	// ErrNotFound if not present.
	Get(ctx context.Context, track string, annotator int) (*Reference, error)

	// Put stores ref under its Track and Annotator, overwriting any
	// existing reference.
	Put(ctx context.Context, ref *Reference) error

	// Delete removes a reference. No error if it does not exist.
	Delete(ctx context.Context, track string, annotator int) error

	// List iterates over the references of a track, or of every track if
	// track is empty, in key order.
	List(ctx context.Context, track string) iter.Seq2[*Reference, error]

	// Close releases any resources held by the store.
	Close() error
}

const (
	keyPrefix = "ref"
	keySep    = ':'
)

// key encodes (track, annotator) as "ref:<track>:<annotator>". The
// annotator is zero-padded so keys sort numerically.
func key(track string, annotator int) ([]byte, error) {
	if track == "" {
		return nil, fmt.Errorf("annotations: empty track name")
	}
	if strings.IndexByte(track, keySep) >= 0 {
		return nil, fmt.Errorf("annotations: track name %q contains %q", track, keySep)
	}
	if annotator < 0 {
		return nil, fmt.Errorf("annotations: negative annotator %d", annotator)
	}
	return fmt.Appendf(nil, "%s%c%s%c%04d", keyPrefix, keySep, track, keySep, annotator), nil
}

// listPrefix returns the key prefix of a track, or of all references.
func listPrefix(track string) []byte {
	if track == "" {
		return []byte(keyPrefix + string(keySep))
	}
	return []byte(keyPrefix + string(keySep) + track + string(keySep))
}

// parseKey is the inverse of key.
func parseKey(k []byte) (string, int, error) {
	parts := strings.Split(string(k), string(keySep))
	if len(parts) != 3 || parts[0] != keyPrefix {
		return "", 0, fmt.Errorf("annotations: malformed key %q", k)
	}
	annotator, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, fmt.Errorf("annotations: malformed key %q: %w", k, err)
	}
	return parts[1], annotator, nil
}

func encode(ref *Reference) ([]byte, error) {
	return msgpack.Marshal(ref)
}

func decode(data []byte) (*Reference, error) {
	var ref Reference
	if err := msgpack.Unmarshal(data, &ref); err != nil {
		return nil, fmt.Errorf("annotations: decode reference: %w", err)
	}
	return &ref, nil
}

// TrackRef exposes the references of one track in a store. It satisfies the
// runner's file context.
type TrackRef struct {
	Store Store
	Track string
}

// Name returns the track name.
func (t TrackRef) Name() string { return t.Track }

// GroundTruth returns the track's reference by annotator.
func (t TrackRef) GroundTruth(ctx context.Context, annotator int) (*Reference, error) {
	return t.Store.Get(ctx, t.Track, annotator)
}

// Import stores every reference yielded by refs and returns how many were
// stored.
func Import(ctx context.Context, s Store, refs iter.Seq2[*Reference, error]) (int, error) {
	n := 0
	for ref, err := range refs {
		if err != nil {
			return n, err
		}
		if err := s.Put(ctx, ref); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
