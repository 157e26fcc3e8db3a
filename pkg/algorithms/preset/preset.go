// Package preset loads hyperparameter presets from YAML or JSON files and
// registers each one as a named variant of an existing algorithm.
//
// A preset file lists entries:
//
//	presets:
//	  - name: foote-fine
//	    algorithm: foote
//	    params:
//	      M_gaussian: 32
//	      L_peaks: 24
//
// Once loaded, "foote-fine" resolves like any other algorithm id and its
// params replace the base defaults when a run configuration is built.
package preset

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/haivivi/musicseg/pkg/algorithms"
)

// File is the content of a preset file.
type File struct {
	Presets []Entry `json:"presets" yaml:"presets"`
}

// Entry is one preset.
type Entry struct {
	Name      string            `json:"name" yaml:"name"`
	Algorithm string            `json:"algorithm" yaml:"algorithm"`
	Params    algorithms.Params `json:"params,omitzero" yaml:"params,omitzero"`
	Desc      string            `json:"desc,omitzero" yaml:"desc,omitzero"`
}

// LoadFromDir loads preset files from dir recursively and registers their
// entries on m (DefaultMux if nil). Files are visited in lexical order, so a
// preset may build on a preset defined in an earlier file.
// Returns the registered names.
func LoadFromDir(m *algorithms.Mux, dir string) ([]string, error) {
	if m == nil {
		m = algorithms.DefaultMux
	}
	var names []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			return nil
		}
		f, err := ParseFile(path)
		if err != nil {
			return fmt.Errorf("preset: parse %s: %w", path, err)
		}
		fileNames, err := Register(m, f)
		names = append(names, fileNames...)
		if err != nil {
			return fmt.Errorf("preset: register %s: %w", path, err)
		}
		return nil
	})
	return names, err
}

// ParseFile reads a preset file. The format follows the extension.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported extension: %s", ext)
	}
	return &f, nil
}

// Register registers the entries of f on m in order and returns the names
// registered before the first failure.
func Register(m *algorithms.Mux, f *File) ([]string, error) {
	var names []string
	for _, e := range f.Presets {
		if e.Name == "" {
			return names, fmt.Errorf("preset entry missing name")
		}
		if e.Algorithm == "" {
			return names, fmt.Errorf("preset %s: algorithm is required", e.Name)
		}
		base, err := m.Get(e.Algorithm)
		if err != nil {
			return names, fmt.Errorf("preset %s: %w", e.Name, err)
		}
		if err := m.Handle(e.Name, algorithms.Variant(base, e.Params)); err != nil {
			return names, err
		}
		names = append(names, e.Name)
	}
	return names, nil
}
