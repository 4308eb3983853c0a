// Package memory implements an in-memory driver registry store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/reglet-dev/reglet-driver-sdk/driver/entities"
	"github.com/reglet-dev/reglet-driver-sdk/driver/ports"
	"github.com/reglet-dev/reglet-driver-sdk/driver/values"
)

// Store implements ports.RegistryStore using in-memory storage.
type Store struct {
	drivers map[string]*entities.Descriptor
	mu      sync.RWMutex
}

// StoreOption configures the Store.
type StoreOption func(*Store)

// WithDescriptors seeds the store.
func WithDescriptors(descriptors ...*entities.Descriptor) StoreOption {
	return func(s *Store) {
		for _, d := range descriptors {
			s.drivers[d.Name] = d.Clone()
		}
	}
}

// NewStore creates a new in-memory registry store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		drivers: make(map[string]*entities.Descriptor),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetDriver returns a copy of the descriptor stored under name.
func (s *Store) GetDriver(ctx context.Context, name string) (*entities.Descriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drivers[name]
	if !ok {
		return nil, &entities.DriverNotFoundError{Name: name}
	}
	return d.Clone(), nil
}

// AddDriver inserts or updates a descriptor. A new descriptor keeps its own
// status; updating an existing one keeps the stored status.
func (s *Store) AddDriver(ctx context.Context, name string, descriptor *entities.Descriptor) error {
	d := descriptor.Clone()
	if d == nil {
		d = &entities.Descriptor{}
	}
	d.Name = name
	d.ApplyDefaults()
	if err := d.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.drivers[name]; ok {
		d.Status = existing.Status
	}
	s.drivers[name] = d
	return nil
}

// RemoveDriver deletes a descriptor.
func (s *Store) RemoveDriver(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drivers[name]; !ok {
		return &entities.DriverNotFoundError{Name: name}
	}
	delete(s.drivers, name)
	return nil
}

// HasDriver reports whether name is stored.
func (s *Store) HasDriver(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.drivers[name]
	return ok, nil
}

// GetDriverConfig returns a copy of the stored config.
// An unknown driver yields an empty mapping.
func (s *Store) GetDriverConfig(ctx context.Context, name string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drivers[name]
	if !ok {
		return map[string]any{}, nil
	}
	return entities.CloneConfig(d.Config), nil
}

// SaveConfig replaces the stored config.
func (s *Store) SaveConfig(ctx context.Context, name string, config map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[name]
	if !ok {
		return &entities.DriverNotFoundError{Name: name}
	}
	d.Config = entities.CloneConfig(config)
	return nil
}

// GetDriversList returns matching descriptors sorted by name.
func (s *Store) GetDriversList(ctx context.Context, filter ports.ListFilter) ([]*entities.Descriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entities.Descriptor, 0, len(s.drivers))
	for _, d := range s.drivers {
		if filter.Match(d) {
			out = append(out, d.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SetDriverStatus updates the status of a stored driver.
func (s *Store) SetDriverStatus(ctx context.Context, name string, status values.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[name]
	if !ok {
		return &entities.DriverNotFoundError{Name: name}
	}
	d.Status = status
	return nil
}

var _ ports.RegistryStore = (*Store)(nil)
