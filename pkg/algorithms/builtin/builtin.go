// Package builtin registers the bundled algorithms. Importing it for side
// effects fills [algorithms.DefaultMux]:
//
//	import _ "github.com/haivivi/musicseg/pkg/algorithms/builtin"
package builtin

import (
	"fmt"

	"github.com/haivivi/musicseg/pkg/algorithms"
	"github.com/haivivi/musicseg/pkg/algorithms/fmc2d"
	"github.com/haivivi/musicseg/pkg/algorithms/foote"
	"github.com/haivivi/musicseg/pkg/algorithms/olda"
	"github.com/haivivi/musicseg/pkg/algorithms/scluster"
	"github.com/haivivi/musicseg/pkg/algorithms/sf"
)

func init() {
	if err := Register(algorithms.DefaultMux); err != nil {
		panic(err)
	}
}

// Register registers every bundled algorithm on m.
func Register(m *algorithms.Mux) error {
	for id, a := range All() {
		if err := m.Handle(id, a); err != nil {
			return fmt.Errorf("builtin: %w", err)
		}
	}
	return nil
}

// All returns a fresh instance of every bundled algorithm keyed by id.
func All() map[string]algorithms.Algorithm {
	return map[string]algorithms.Algorithm{
		foote.ID:    foote.New(),
		sf.ID:       sf.New(),
		olda.ID:     olda.New(),
		scluster.ID: scluster.New(),
		fmc2d.ID:    fmc2d.New(),
	}
}
