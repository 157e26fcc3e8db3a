package algorithms

import (
	"fmt"
	"sort"
	"sync"
)

// DefaultMux is the default algorithm registry. The builtin package
// registers the bundled algorithms into it.
var DefaultMux = NewMux()

// Handle registers an algorithm on the default mux.
func Handle(id string, a Algorithm) error {
	return DefaultMux.Handle(id, a)
}

// Get returns the algorithm registered under id in the default mux.
func Get(id string) (Algorithm, error) {
	return DefaultMux.Get(id)
}

// Boundaries resolves a boundary source on the default mux.
func Boundaries(src BoundarySource) (BoundaryDetector, error) {
	return DefaultMux.Boundaries(src)
}

// Labels resolves a label source on the default mux.
func Labels(src LabelSource) (Labeler, error) {
	return DefaultMux.Labels(src)
}

// BoundaryIDs lists the boundary algorithms of the default mux.
func BoundaryIDs() []string {
	return DefaultMux.BoundaryIDs()
}

// LabelIDs lists the label algorithms of the default mux.
func LabelIDs() []string {
	return DefaultMux.LabelIDs()
}

// Mux is an algorithm registry keyed by identifier. It is safe for
// concurrent use; registration normally happens at startup and resolution
// afterwards.
type Mux struct {
	mu   sync.RWMutex
	algs map[string]Algorithm
}

// NewMux creates an empty registry.
func NewMux() *Mux {
	return &Mux{algs: make(map[string]Algorithm)}
}

// Handle registers an algorithm under id.
// Returns an error if id is empty or reserved, a is nil, the id is already
// registered, or the declared capabilities are not backed by the matching
// interfaces.
func (m *Mux) Handle(id string, a Algorithm) error {
	if id == "" {
		return fmt.Errorf("algorithms: empty id")
	}
	if id == GroundTruthID || id == NoLabelsID {
		return fmt.Errorf("algorithms: id %q is reserved", id)
	}
	if a == nil {
		return fmt.Errorf("algorithms: nil algorithm for %s", id)
	}
	caps := a.Capabilities()
	if !caps.Boundaries && !caps.Labels {
		return fmt.Errorf("algorithms: %s declares no role", id)
	}
	if _, ok := a.(BoundaryDetector); caps.Boundaries && !ok {
		return fmt.Errorf("algorithms: %s declares boundaries but does not implement BoundaryDetector", id)
	}
	if _, ok := a.(Labeler); caps.Labels && !ok {
		return fmt.Errorf("algorithms: %s declares labels but does not implement Labeler", id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, existed := m.algs[id]; existed {
		return fmt.Errorf("algorithms: algorithm already registered for %s", id)
	}
	m.algs[id] = a
	return nil
}

// Get returns the algorithm registered under id.
func (m *Mux) Get(id string) (Algorithm, error) {
	m.mu.RLock()
	a, ok := m.algs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("algorithms: algorithm not found for %s: %w", id, ErrUnknownAlgorithm)
	}
	return a, nil
}

// Capabilities returns the capabilities of the algorithm registered under id.
func (m *Mux) Capabilities(id string) (Capabilities, bool) {
	m.mu.RLock()
	a, ok := m.algs[id]
	m.mu.RUnlock()
	if !ok {
		return Capabilities{}, false
	}
	return a.Capabilities(), true
}

// Defaults returns the default hyperparameters of the algorithm registered
// under id. It reports false for unknown ids.
func (m *Mux) Defaults(id string) (Params, bool) {
	m.mu.RLock()
	a, ok := m.algs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return a.Defaults().Clone(), true
}

// Boundaries resolves src to a boundary detector. Ground truth resolves to
// nil without error.
func (m *Mux) Boundaries(src BoundarySource) (BoundaryDetector, error) {
	if src.IsGroundTruth() {
		return nil, nil
	}
	a, ok := m.lookup(src.ID())
	if !ok {
		return nil, &ResolutionError{ID: src.ID(), Role: RoleBoundaries, Reason: ErrUnknownAlgorithm}
	}
	det, ok := a.(BoundaryDetector)
	if !ok || !a.Capabilities().Boundaries {
		return nil, &ResolutionError{ID: src.ID(), Role: RoleBoundaries, Reason: ErrWrongRole}
	}
	return det, nil
}

// Labels resolves src to a labeler. No labeling resolves to nil without
// error.
func (m *Mux) Labels(src LabelSource) (Labeler, error) {
	if src.IsNone() {
		return nil, nil
	}
	a, ok := m.lookup(src.ID())
	if !ok {
		return nil, &ResolutionError{ID: src.ID(), Role: RoleLabels, Reason: ErrUnknownAlgorithm}
	}
	l, ok := a.(Labeler)
	if !ok || !a.Capabilities().Labels {
		return nil, &ResolutionError{ID: src.ID(), Role: RoleLabels, Reason: ErrWrongRole}
	}
	return l, nil
}

// IDs returns every registered id in sorted order.
func (m *Mux) IDs() []string {
	return m.ids(func(Capabilities) bool { return true })
}

// BoundaryIDs returns the ids of all boundary algorithms in sorted order.
func (m *Mux) BoundaryIDs() []string {
	return m.ids(func(c Capabilities) bool { return c.Boundaries })
}

// LabelIDs returns the ids of all label algorithms in sorted order.
func (m *Mux) LabelIDs() []string {
	return m.ids(func(c Capabilities) bool { return c.Labels })
}

func (m *Mux) lookup(id string) (Algorithm, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.algs[id]
	return a, ok
}

func (m *Mux) ids(keep func(Capabilities) bool) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.algs))
	for id, a := range m.algs {
		if keep(a.Capabilities()) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
