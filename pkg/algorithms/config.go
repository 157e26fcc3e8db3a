package algorithms

import (
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/spf13/cast"

	"github.com/haivivi/musicseg/pkg/features"
)

// Params holds algorithm hyperparameters. Values usually come from Go
// literals or decoded YAML/JSON, so getters coerce numeric types.
type Params map[string]any

// Clone returns a shallow copy of p. It never returns nil.
func (p Params) Clone() Params {
	c := make(Params, len(p))
	maps.Copy(c, p)
	return c
}

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	return slices.Sorted(maps.Keys(p))
}

// Int returns the value of key as an int, or def if it is missing or not
// numeric.
func (p Params) Int(key string, def int) int {
	v, ok := p[key]
	if !ok {
		return def
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return n
}

// Float returns the value of key as a float64, or def.
func (p Params) Float(key string, def float64) float64 {
	v, ok := p[key]
	if !ok {
		return def
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return def
	}
	return f
}

// Bool returns the value of key as a bool, or def.
func (p Params) Bool(key string, def bool) bool {
	v, ok := p[key]
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

// Text returns the value of key as a string, or def.
func (p Params) Text(key string, def string) string {
	v, ok := p[key]
	if !ok {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return def
	}
	return s
}

// Config is the run configuration handed to algorithms. It is a value:
// copies never share parameter storage, and the With* methods return
// modified copies, so a Config can be passed to concurrent runs safely.
type Config struct {
	// Feature is the feature family name (e.g. "pcp").
	Feature string

	// AnnotBeats selects annotated beats for beat synchronization.
	AnnotBeats bool

	// Framesync selects frame-synchronous features.
	Framesync bool

	// Hier requests hierarchical segmentation.
	Hier bool

	params   Params
	features *features.Features
}

// Features returns the attached feature payload, or nil.
func (c Config) Features() *features.Features { return c.features }

// Params returns a copy of the hyperparameters.
func (c Config) Params() Params { return c.params.Clone() }

// Param returns the raw value of a hyperparameter.
func (c Config) Param(key string) (any, bool) {
	v, ok := c.params[key]
	return v, ok
}

// Int returns hyperparameter key as an int, or def.
func (c Config) Int(key string, def int) int { return c.params.Int(key, def) }

// Float returns hyperparameter key as a float64, or def.
func (c Config) Float(key string, def float64) float64 { return c.params.Float(key, def) }

// Bool returns hyperparameter key as a bool, or def.
func (c Config) Bool(key string, def bool) bool { return c.params.Bool(key, def) }

// Text returns hyperparameter key as a string, or def.
func (c Config) Text(key string, def string) string { return c.params.Text(key, def) }

// WithHier returns a copy of c with Hier set.
func (c Config) WithHier(hier bool) Config {
	c.Hier = hier
	return c
}

// WithFeatures returns a copy of c with f attached.
func (c Config) WithFeatures(f *features.Features) Config {
	c.features = f
	return c
}

// WithParams returns a copy of c whose hyperparameters are overridden by p.
func (c Config) WithParams(p Params) Config {
	merged := c.params.Clone()
	maps.Copy(merged, p)
	c.params = merged
	return c
}

// Map returns c as a flat map using the MSAF configuration key names.
// The attached features are summarized by their description.
func (c Config) Map() map[string]any {
	m := map[string]any{
		"feature":     c.Feature,
		"annot_beats": c.AnnotBeats,
		"framesync":   c.Framesync,
		"hier":        c.Hier,
	}
	for k, v := range c.params {
		m[k] = v
	}
	if c.features != nil {
		m["features"] = c.features.String()
	}
	return m
}

// ConfigOption customizes BuildConfig.
type ConfigOption func(*Config)

// Hierarchical sets the hier flag.
func Hierarchical(hier bool) ConfigOption {
	return func(c *Config) { c.Hier = hier }
}

// Attach attaches a feature payload.
func Attach(f *features.Features) ConfigOption {
	return func(c *Config) { c.features = f }
}

// Override overrides hyperparameters after the algorithm defaults have been
// merged.
func Override(p Params) ConfigOption {
	return func(c *Config) { maps.Copy(c.params, p) }
}

// BuildConfig assembles the run configuration for a boundary and label
// source. The hyperparameter defaults of both algorithms are merged. Unknown
// ids and ids that cannot fill their role contribute nothing and are
// reported later, when the runner resolves them. A nil m uses DefaultMux.
//
// It returns ErrParamConflict if both algorithms define the same
// hyperparameter with different values.
func BuildConfig(m *Mux, feature string, annotBeats, framesync bool, b BoundarySource, l LabelSource, opts ...ConfigOption) (Config, error) {
	if m == nil {
		m = DefaultMux
	}
	cfg := Config{
		Feature:    feature,
		AnnotBeats: annotBeats,
		Framesync:  framesync,
		params:     Params{},
	}

	var bound Params
	if !b.IsGroundTruth() {
		if p, ok := m.roleDefaults(b.ID(), RoleBoundaries); ok {
			bound = p
			maps.Copy(cfg.params, p)
		}
	}
	if !l.IsNone() {
		if p, ok := m.roleDefaults(l.ID(), RoleLabels); ok {
			for _, k := range p.Keys() {
				if bv, shared := bound[k]; shared && !sameValue(bv, p[k]) {
					return Config{}, fmt.Errorf("%w: %q is %v for %s but %v for %s",
						ErrParamConflict, k, bv, b, p[k], l)
				}
			}
			maps.Copy(cfg.params, p)
		}
	}

	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg, nil
}

// roleDefaults returns the defaults of id only if it can serve role.
func (m *Mux) roleDefaults(id string, role Role) (Params, bool) {
	caps, ok := m.Capabilities(id)
	if !ok {
		return nil, false
	}
	if role == RoleBoundaries && !caps.Boundaries || role == RoleLabels && !caps.Labels {
		return nil, false
	}
	return m.Defaults(id)
}

// sameValue compares hyperparameter values, treating numbers of different
// Go types (int from literals, uint64 or float64 from YAML/JSON) as equal
// when their values are.
func sameValue(a, b any) bool {
	fa, errA := cast.ToFloat64E(a)
	fb, errB := cast.ToFloat64E(b)
	if errA == nil && errB == nil && isNumber(a) && isNumber(b) {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}
