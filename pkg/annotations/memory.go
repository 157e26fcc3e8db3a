package annotations

import (
	"bytes"
	"context"
	"iter"
	"sort"
	"sync"
)

// Memory is an in-memory Store. It is safe for concurrent use and intended
// primarily for testing.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, track string, annotator int) (*Reference, error) {
	k, err := key(track, annotator)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	v, ok := m.data[string(k)]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(v)
}

func (m *Memory) Put(_ context.Context, ref *Reference) error {
	k, err := key(ref.Track, ref.Annotator)
	if err != nil {
		return err
	}
	v, err := encode(ref)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[string(k)] = v
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, track string, annotator int) error {
	k, err := key(track, annotator)
	if err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.data, string(k))
	m.mu.Unlock()
	return nil
}

func (m *Memory) List(_ context.Context, track string) iter.Seq2[*Reference, error] {
	prefix := listPrefix(track)

	// Snapshot matching entries under read lock.
	m.mu.RLock()
	type entry struct {
		key string
		val []byte
	}
	var matches []entry
	for k, v := range m.data {
		if bytes.HasPrefix([]byte(k), prefix) {
			matches = append(matches, entry{k, v})
		}
	}
	m.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].key < matches[j].key
	})

	return func(yield func(*Reference, error) bool) {
		for _, e := range matches {
			if !yield(decode(e.val)) {
				return
			}
		}
	}
}

func (m *Memory) Close() error {
	return nil
}

var _ Store = (*Memory)(nil)
