// Package entities contains the domain entities of driver management.
package entities

import (
	"fmt"
	"maps"

	"github.com/reglet-dev/reglet-driver-sdk/driver/values"
)

// Descriptor is the registry's unit of record for an installed driver.
//
// Invariants:
// - Name is unique within a registry
// - Title falls back to Name
// - Version falls back to values.DefaultVersion
type Descriptor struct {
	Config        map[string]any
	Name          string
	Category      string
	Title         string
	Class         string
	Description   string
	Version       string
	ExtensionName string
	Status        values.Status
}

// NewDescriptor creates a descriptor with defaults applied.
func NewDescriptor(name, class string) *Descriptor {
	d := &Descriptor{
		Name:   name,
		Class:  class,
		Status: values.StatusEnabled,
	}
	d.ApplyDefaults()
	return d
}

// ApplyDefaults fills the title, version and config fields when unset.
func (d *Descriptor) ApplyDefaults() {
	if d.Title == "" {
		d.Title = d.Name
	}
	if d.Version == "" {
		d.Version = values.DefaultVersion
	}
	if d.Config == nil {
		d.Config = map[string]any{}
	}
}

// Validate checks descriptor invariants.
func (d *Descriptor) Validate() error {
	if _, err := values.NewDriverName(d.Name); err != nil {
		return &InvalidDescriptorError{Name: d.Name, Reason: err.Error()}
	}
	if d.Version != "" {
		if _, err := values.ParseVersion(d.Version); err != nil {
			return &InvalidDescriptorError{Name: d.Name, Reason: err.Error()}
		}
	}
	return nil
}

// SatisfiesVersion reports whether the descriptor version matches constraint.
func (d *Descriptor) SatisfiesVersion(constraint string) (bool, error) {
	v, err := values.ParseVersion(d.Version)
	if err != nil {
		return false, fmt.Errorf("driver %q: %w", d.Name, err)
	}
	return v.Satisfies(constraint)
}

// Clone returns a copy that shares no mutable state with d.
func (d *Descriptor) Clone() *Descriptor {
	if d == nil {
		return nil
	}
	out := *d
	out.Config = CloneConfig(d.Config)
	return &out
}

// CloneConfig deep-copies nested maps and slices of a config mapping.
func CloneConfig(config map[string]any) map[string]any {
	if config == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(config))
	for k, v := range config {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneConfig(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case map[string]string:
		return maps.Clone(t)
	default:
		return v
	}
}
