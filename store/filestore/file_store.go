// Package filestore provides file-based persistence for the driver registry.
package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/reglet-dev/reglet-driver-sdk/driver/dto"
	"github.com/reglet-dev/reglet-driver-sdk/driver/entities"
	"github.com/reglet-dev/reglet-driver-sdk/driver/ports"
	"github.com/reglet-dev/reglet-driver-sdk/driver/values"
)

// registryFile is the YAML document layout.
type registryFile struct {
	Drivers map[string]*dto.DescriptorDTO `yaml:"drivers"`
	Version int                           `yaml:"registry_version"`
}

const registryVersion = 1

// fileStoreConfig holds configuration for the FileStore.
type fileStoreConfig struct {
	path     string
	dirPerm  os.FileMode
	filePerm os.FileMode
}

func defaultFileStoreConfig() fileStoreConfig {
	home, _ := os.UserHomeDir()
	return fileStoreConfig{
		path:     filepath.Join(home, ".reglet", "drivers.yaml"),
		dirPerm:  0o755,
		filePerm: 0o600,
	}
}

// FileStoreOption configures a FileStore instance.
type FileStoreOption func(*fileStoreConfig)

// WithPath sets the path to the registry file.
func WithPath(path string) FileStoreOption {
	return func(c *fileStoreConfig) {
		if path != "" {
			c.path = path
		}
	}
}

// WithFilePermissions sets the file permissions for the registry file.
func WithFilePermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.filePerm = perm
	}
}

// WithDirPermissions sets the directory permissions for the registry directory.
func WithDirPermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.dirPerm = perm
	}
}

// FileStore implements ports.RegistryStore on top of a single YAML file.
// Every mutation reloads the file, applies the change and writes it back.
type FileStore struct {
	config fileStoreConfig
	mu     sync.Mutex
}

// NewFileStore creates a new FileStore with the given options.
func NewFileStore(opts ...FileStoreOption) *FileStore {
	cfg := defaultFileStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &FileStore{config: cfg}
}

// ConfigPath returns the path to the backing file.
func (s *FileStore) ConfigPath() string {
	return s.config.path
}

// GetDriver returns the descriptor stored under name.
func (s *FileStore) GetDriver(ctx context.Context, name string) (*entities.Descriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, err := s.load()
	if err != nil {
		return nil, err
	}
	d, ok := reg.Drivers[name]
	if !ok {
		return nil, &entities.DriverNotFoundError{Name: name}
	}
	return d.ToEntity(), nil
}

// AddDriver inserts or updates a descriptor. Updating keeps the stored status.
func (s *FileStore) AddDriver(ctx context.Context, name string, descriptor *entities.Descriptor) error {
	d := descriptor.Clone()
	if d == nil {
		d = &entities.Descriptor{}
	}
	d.Name = name
	d.ApplyDefaults()
	if err := d.Validate(); err != nil {
		return err
	}

	return s.update(func(reg *registryFile) error {
		if existing, ok := reg.Drivers[name]; ok && existing.Status != nil {
			d.Status = values.Status(*existing.Status)
		}
		reg.Drivers[name] = dto.FromEntity(d)
		return nil
	})
}

// RemoveDriver deletes a descriptor.
func (s *FileStore) RemoveDriver(ctx context.Context, name string) error {
	return s.update(func(reg *registryFile) error {
		if _, ok := reg.Drivers[name]; !ok {
			return &entities.DriverNotFoundError{Name: name}
		}
		delete(reg.Drivers, name)
		return nil
	})
}

// HasDriver reports whether name is stored.
func (s *FileStore) HasDriver(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, err := s.load()
	if err != nil {
		return false, err
	}
	_, ok := reg.Drivers[name]
	return ok, nil
}

// GetDriverConfig returns the stored config. An unknown driver yields an empty mapping.
func (s *FileStore) GetDriverConfig(ctx context.Context, name string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, err := s.load()
	if err != nil {
		return nil, err
	}
	d, ok := reg.Drivers[name]
	if !ok {
		return map[string]any{}, nil
	}
	return entities.NormalizeConfig(d.Config), nil
}

// SaveConfig replaces the stored config.
func (s *FileStore) SaveConfig(ctx context.Context, name string, config map[string]any) error {
	return s.update(func(reg *registryFile) error {
		d, ok := reg.Drivers[name]
		if !ok {
			return &entities.DriverNotFoundError{Name: name}
		}
		d.Config = entities.CloneConfig(config)
		return nil
	})
}

// GetDriversList returns matching descriptors sorted by name.
func (s *FileStore) GetDriversList(ctx context.Context, filter ports.ListFilter) ([]*entities.Descriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, err := s.load()
	if err != nil {
		return nil, err
	}

	out := make([]*entities.Descriptor, 0, len(reg.Drivers))
	for name, d := range reg.Drivers {
		desc := d.ToEntity()
		desc.Name = name
		if filter.Match(desc) {
			out = append(out, desc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SetDriverStatus updates the status of a stored driver.
func (s *FileStore) SetDriverStatus(ctx context.Context, name string, status values.Status) error {
	return s.update(func(reg *registryFile) error {
		d, ok := reg.Drivers[name]
		if !ok {
			return &entities.DriverNotFoundError{Name: name}
		}
		st := int(status)
		d.Status = &st
		return nil
	})
}

func (s *FileStore) update(fn func(reg *registryFile) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(reg); err != nil {
		return err
	}
	return s.save(reg)
}

func (s *FileStore) load() (*registryFile, error) {
	data, err := os.ReadFile(s.config.path)
	if os.IsNotExist(err) {
		return &registryFile{Version: registryVersion, Drivers: map[string]*dto.DescriptorDTO{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read driver registry: %w", err)
	}

	var reg registryFile
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse driver registry: %w", err)
	}
	if reg.Drivers == nil {
		reg.Drivers = map[string]*dto.DescriptorDTO{}
	}
	for name, d := range reg.Drivers {
		if d == nil {
			delete(reg.Drivers, name)
		}
	}
	return &reg, nil
}

func (s *FileStore) save(reg *registryFile) error {
	reg.Version = registryVersion
	data, err := yaml.Marshal(reg)
	if err != nil {
		return fmt.Errorf("failed to marshal driver registry: %w", err)
	}

	dir := filepath.Dir(s.config.path)
	if err := os.MkdirAll(dir, s.config.dirPerm); err != nil {
		return fmt.Errorf("failed to create driver registry directory: %w", err)
	}

	if err := os.WriteFile(s.config.path, data, s.config.filePerm); err != nil {
		return fmt.Errorf("failed to write driver registry: %w", err)
	}
	return nil
}

var _ ports.RegistryStore = (*FileStore)(nil)
