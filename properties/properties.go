// Package properties implements the ordered configuration container handed to drivers.
// Drivers declare their recognised keys and defaults into a Properties value; the
// manager builds one from the stored mapping before lazy initialization.
package properties

import (
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Properties is an ordered mapping of property name to Property.
// The zero value is not usable; construct with New or FromMap.
type Properties struct {
	items *orderedmap.OrderedMap[string, *Property]
}

// New returns an empty container.
func New() *Properties {
	return &Properties{items: orderedmap.New[string, *Property]()}
}

// FromMap builds a container holding the values of m.
// Keys are inserted in sorted order so the result is deterministic.
func FromMap(m map[string]any) *Properties {
	p := New()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		p.Set(k, m[k])
	}
	return p
}

// Property declares a recognised key with its default value.
// Redeclaring an existing key replaces its definition but keeps an explicitly set value.
func (p *Properties) Property(name string, defaultValue any, opts ...Option) *Properties {
	prop := &Property{
		Name:    name,
		Default: defaultValue,
		Type:    inferType(defaultValue),
	}
	for _, opt := range opts {
		opt(prop)
	}

	if old, ok := p.items.Get(name); ok && old.set {
		prop.Value = old.Value
		prop.set = true
	}
	p.items.Set(name, prop)
	return p
}

// Set assigns a value, declaring the key if it is unknown.
func (p *Properties) Set(name string, value any) {
	prop, ok := p.items.Get(name)
	if !ok {
		prop = &Property{Name: name, Type: inferType(value)}
		p.items.Set(name, prop)
	}
	prop.Value = value
	prop.set = true
}

// Get returns the effective value of name: its value if set, else its default.
func (p *Properties) Get(name string) (any, bool) {
	prop, ok := p.items.Get(name)
	if !ok {
		return nil, false
	}
	return prop.Effective(), true
}

// GetOrDefault returns the effective value of name, or fallback when name is unknown.
func (p *Properties) GetOrDefault(name string, fallback any) any {
	if v, ok := p.Get(name); ok && v != nil {
		return v
	}
	return fallback
}

// Lookup returns the property definition for name.
func (p *Properties) Lookup(name string) (*Property, bool) {
	return p.items.Get(name)
}

// Has reports whether name is declared.
func (p *Properties) Has(name string) bool {
	_, ok := p.items.Get(name)
	return ok
}

// Remove deletes name from the container.
func (p *Properties) Remove(name string) {
	p.items.Delete(name)
}

// Len returns the number of declared properties.
func (p *Properties) Len() int {
	return p.items.Len()
}

// Keys returns property names in declaration order.
func (p *Properties) Keys() []string {
	keys := make([]string, 0, p.items.Len())
	for pair := p.items.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Values returns a snapshot of effective values.
// Properties with neither a value nor a default are omitted.
func (p *Properties) Values() map[string]any {
	out := make(map[string]any, p.items.Len())
	for pair := p.items.Oldest(); pair != nil; pair = pair.Next() {
		prop := pair.Value
		if !prop.set && prop.Default == nil {
			continue
		}
		out[pair.Key] = prop.Effective()
	}
	return out
}

// ToMap serializes the container to a plain mapping, as persisted by registry stores.
func (p *Properties) ToMap() map[string]any {
	return p.Values()
}
