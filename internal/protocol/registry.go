package protocol

import (
	"fmt"

	"github.com/okulab/therapy-api/internal/model"
	apperrors "github.com/okulab/therapy-api/pkg/errors"
)

// FieldKind discriminates the supported config field types
type FieldKind string

const (
	KindNumber FieldKind = "number"
	KindEnum   FieldKind = "enum"
	KindBool   FieldKind = "bool"
)

// Field declares one config parameter: its type, bounds and default
type Field struct {
	Name    string
	Kind    FieldKind
	Min     float64
	Max     float64
	Values  []string
	Default interface{}
}

// Definition describes one therapy protocol and validates its config
type Definition struct {
	ID     string
	Name   string
	Fields []Field
}

// Defaults returns a config with every field set to its default value
func (d *Definition) Defaults() model.JSONMap {
	config := make(model.JSONMap, len(d.Fields))
	for _, f := range d.Fields {
		config[f.Name] = f.Default
	}
	return config
}

// Validate checks raw against the declared fields. Omitted fields are
// filled from defaults; unknown fields, out-of-range numbers and invalid
// enum values are rejected with per-field errors.
func (d *Definition) Validate(raw map[string]interface{}) (model.JSONMap, error) {
	var fieldErrs []apperrors.FieldError

	declared := make(map[string]*Field, len(d.Fields))
	for i := range d.Fields {
		declared[d.Fields[i].Name] = &d.Fields[i]
	}

	for name := range raw {
		if _, ok := declared[name]; !ok {
			fieldErrs = append(fieldErrs, apperrors.FieldError{
				Field:   name,
				Message: "unknown config field",
			})
		}
	}

	config := make(model.JSONMap, len(d.Fields))
	for _, f := range d.Fields {
		value, present := raw[f.Name]
		if !present {
			config[f.Name] = f.Default
			continue
		}

		checked, err := f.check(value)
		if err != nil {
			fieldErrs = append(fieldErrs, apperrors.FieldError{
				Field:   f.Name,
				Message: err.Error(),
			})
			continue
		}
		config[f.Name] = checked
	}

	if len(fieldErrs) > 0 {
		return nil, apperrors.Validation(fmt.Sprintf("invalid config for protocol %q", d.ID), fieldErrs...)
	}
	return config, nil
}

func (f *Field) check(value interface{}) (interface{}, error) {
	switch f.Kind {
	case KindNumber:
		num, ok := asNumber(value)
		if !ok {
			return nil, fmt.Errorf("must be a number")
		}
		if num < f.Min || num > f.Max {
			return nil, fmt.Errorf("must be between %v and %v", f.Min, f.Max)
		}
		return num, nil

	case KindEnum:
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("must be a string")
		}
		for _, v := range f.Values {
			if str == v {
				return str, nil
			}
		}
		return nil, fmt.Errorf("must be one of %v", f.Values)

	case KindBool:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("must be a boolean")
		}
		return b, nil
	}
	return nil, fmt.Errorf("unsupported field kind %q", f.Kind)
}

func asNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// CatalogEntry is the read-only view of a protocol exposed to clients
type CatalogEntry struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Defaults model.JSONMap `json:"defaults"`
}

// Registry is the closed, immutable table of known protocols.
// It is built once at startup and safe for concurrent reads.
type Registry struct {
	defs  map[string]*Definition
	order []string
}

// NewRegistry builds the registry with every known protocol
func NewRegistry() *Registry {
	r := &Registry{defs: make(map[string]*Definition)}
	for _, d := range definitions() {
		def := d
		r.defs[def.ID] = &def
		r.order = append(r.order, def.ID)
	}
	return r
}

// Exists reports whether a protocol id is known
func (r *Registry) Exists(id string) bool {
	_, ok := r.defs[id]
	return ok
}

// Get returns the definition for a protocol id
func (r *Registry) Get(id string) (*Definition, error) {
	def, ok := r.defs[id]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("protocol %q", id), nil)
	}
	return def, nil
}

// Validate validates raw config against the protocol's schema,
// filling omitted fields from defaults
func (r *Registry) Validate(id string, raw map[string]interface{}) (model.JSONMap, error) {
	def, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}
	return def.Validate(raw)
}

// Defaults returns the default config for a protocol
func (r *Registry) Defaults(id string) (model.JSONMap, error) {
	def, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return def.Defaults(), nil
}

// Catalog lists every protocol in registration order
func (r *Registry) Catalog() []CatalogEntry {
	entries := make([]CatalogEntry, 0, len(r.order))
	for _, id := range r.order {
		def := r.defs[id]
		entries = append(entries, CatalogEntry{
			ID:       def.ID,
			Name:     def.Name,
			Defaults: def.Defaults(),
		})
	}
	return entries
}
