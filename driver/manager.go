// Package driver orchestrates pluggable driver implementations: it installs their
// descriptors into a registry store, resolves their configuration and instantiates
// them on demand through an object factory.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/reglet-driver-sdk/driver/capability"
	"github.com/reglet-dev/reglet-driver-sdk/driver/entities"
	"github.com/reglet-dev/reglet-driver-sdk/driver/ports"
	"github.com/reglet-dev/reglet-driver-sdk/driver/values"
	"github.com/reglet-dev/reglet-driver-sdk/parser"
	"github.com/reglet-dev/reglet-driver-sdk/properties"
)

// Manager is the entry point the host application uses to work with drivers.
// It holds no driver instances; every Create call produces a fresh one.
type Manager struct {
	store   ports.RegistryStore
	factory ports.ObjectFactory
	logger  *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a driver manager.
// Store and factory are required dependencies.
func NewManager(
	store ports.RegistryStore,
	factory ports.ObjectFactory,
	opts ...ManagerOption,
) *Manager {
	m := &Manager{
		store:   store,
		factory: factory,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// InstallParams are the explicit descriptor fields used by Install when the
// target cannot describe itself.
type InstallParams struct {
	Config      map[string]any
	Class       string
	Category    string
	Title       string
	Description string
	Version     string
	Extension   string
}

// Create instantiates the driver installed under name.
//
// A nil config selects the stored default; any non-nil config, even empty, is used verbatim.
// Objects implementing capability.Driver receive options and configuration and are
// initialized; other objects are returned as constructed.
func (m *Manager) Create(ctx context.Context, name string, options, config map[string]any) (any, error) {
	desc, err := m.store.GetDriver(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create driver %q: %w", name, err)
	}

	if config == nil {
		config = desc.Config
	}
	props := properties.FromMap(config)

	instance, err := m.factory.CreateInstance(desc.Class)
	if err != nil {
		return nil, fmt.Errorf("create driver %q: %w", name, err)
	}

	d, err := capability.As(instance)
	if err != nil {
		m.logger.Debug("driver does not implement capability contract, returning bare instance",
			"driver", name,
			"class", desc.Class)
		return instance, nil
	}

	if options == nil {
		options = map[string]any{}
	}
	d.SetDriverOptions(options)
	d.SetDriverConfig(props.Values())
	if fa, ok := d.(capability.FactoryAware); ok {
		fa.SetObjectFactory(m.factory)
	}
	if err := d.InitDriver(props); err != nil {
		return nil, fmt.Errorf("create driver %q: %w", name, err)
	}

	m.logger.Debug("driver created", "driver", name, "class", desc.Class)
	return d, nil
}

// CreateDriver is Create for callers that require the capability contract.
// A bare instance yields an error matching capability.ErrNotCapable.
func (m *Manager) CreateDriver(ctx context.Context, name string, options, config map[string]any) (capability.Driver, error) {
	instance, err := m.Create(ctx, name, options, config)
	if err != nil {
		return nil, err
	}
	d, err := capability.As(instance)
	if err != nil {
		return nil, fmt.Errorf("create driver %q: %w", name, err)
	}
	return d, nil
}

// Install registers a driver in the store.
//
// nameOrDriver is either a live capability.Driver, a class identifier known to the
// factory, or a plain driver name. When the target can describe itself, its derived
// descriptor is installed and params are ignored; otherwise a descriptor is built
// from the name and params.
func (m *Manager) Install(ctx context.Context, nameOrDriver any, params InstallParams) error {
	desc, err := m.deriveDescriptor(nameOrDriver)
	if err != nil {
		if !errors.Is(err, capability.ErrNotCapable) {
			return fmt.Errorf("install driver: %w", err)
		}

		name, ok := nameOrDriver.(string)
		if !ok {
			return fmt.Errorf("install driver: %w: %T", err, nameOrDriver)
		}
		m.logger.Debug("installing driver from explicit fields", "driver", name)
		desc = descriptorFromParams(name, params)
	}

	return m.InstallDescriptor(ctx, desc)
}

// InstallDescriptor upserts a prepared descriptor.
func (m *Manager) InstallDescriptor(ctx context.Context, desc *entities.Descriptor) error {
	if desc == nil {
		return fmt.Errorf("install driver: %w: nil descriptor", entities.ErrInvalidDescriptor)
	}
	desc.ApplyDefaults()

	if err := m.store.AddDriver(ctx, desc.Name, desc); err != nil {
		m.logger.Warn("driver install failed", "driver", desc.Name, "error", err)
		return fmt.Errorf("install driver %q: %w", desc.Name, err)
	}

	m.logger.Info("driver installed",
		"driver", desc.Name,
		"class", desc.Class,
		"category", desc.Category,
		"version", desc.Version)
	return nil
}

// InstallManifest parses data with p and installs every declared driver.
// Installation stops at the first failure.
func (m *Manager) InstallManifest(ctx context.Context, p parser.DescriptorParser, data []byte) error {
	descs, err := p.Parse(data)
	if err != nil {
		return fmt.Errorf("install manifest: %w", err)
	}
	for _, desc := range descs {
		if err := m.InstallDescriptor(ctx, desc); err != nil {
			return err
		}
	}
	return nil
}

// deriveDescriptor builds a descriptor from a live driver or a class identifier.
// It returns capability.ErrNotCapable when the target cannot describe itself.
func (m *Manager) deriveDescriptor(target any) (*entities.Descriptor, error) {
	if class, ok := target.(string); ok {
		if m.factory == nil || !m.factory.Has(class) {
			return nil, capability.ErrNotCapable
		}
		instance, err := m.factory.CreateInstance(class)
		if err != nil {
			return nil, err
		}
		target = instance
	}

	d, err := capability.As(target)
	if err != nil {
		return nil, err
	}

	props := properties.New()
	d.CreateDriverConfig(props)

	return &entities.Descriptor{
		Name:          d.DriverName(),
		Category:      d.DriverCategory(),
		Title:         d.DriverTitle(),
		Class:         d.DriverClass(),
		Description:   d.DriverDescription(),
		Version:       d.DriverVersion(),
		ExtensionName: d.DriverExtensionName(),
		Config:        props.ToMap(),
		Status:        values.StatusEnabled,
	}, nil
}

func descriptorFromParams(name string, params InstallParams) *entities.Descriptor {
	version := params.Version
	if version == "" {
		version = values.DefaultVersion
	}
	desc := &entities.Descriptor{
		Name:          name,
		Category:      params.Category,
		Title:         params.Title,
		Class:         params.Class,
		Description:   params.Description,
		Version:       version,
		ExtensionName: params.Extension,
		Config:        entities.CloneConfig(params.Config),
		Status:        values.StatusEnabled,
	}
	desc.ApplyDefaults()
	return desc
}

// Uninstall removes the driver from the store.
func (m *Manager) Uninstall(ctx context.Context, name string) error {
	if err := m.store.RemoveDriver(ctx, name); err != nil {
		return fmt.Errorf("uninstall driver %q: %w", name, err)
	}
	m.logger.Info("driver uninstalled", "driver", name)
	return nil
}

// Has reports whether a driver is installed under name.
func (m *Manager) Has(ctx context.Context, name string) (bool, error) {
	return m.store.HasDriver(ctx, name)
}

// HasVersion reports whether name is installed with a version matching constraint.
func (m *Manager) HasVersion(ctx context.Context, name, constraint string) (bool, error) {
	desc, err := m.store.GetDriver(ctx, name)
	if errors.Is(err, entities.ErrDriverNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return desc.SatisfiesVersion(constraint)
}

// GetDriver returns the installed descriptor, or an error matching entities.ErrDriverNotFound.
func (m *Manager) GetDriver(ctx context.Context, name string) (*entities.Descriptor, error) {
	return m.store.GetDriver(ctx, name)
}

// GetList returns installed descriptors matching filter.
func (m *Manager) GetList(ctx context.Context, filter ports.ListFilter) ([]*entities.Descriptor, error) {
	return m.store.GetDriversList(ctx, filter)
}

// Enable switches the driver on.
func (m *Manager) Enable(ctx context.Context, name string) error {
	return m.setStatus(ctx, name, values.StatusEnabled)
}

// Disable switches the driver off.
func (m *Manager) Disable(ctx context.Context, name string) error {
	return m.setStatus(ctx, name, values.StatusDisabled)
}

func (m *Manager) setStatus(ctx context.Context, name string, status values.Status) error {
	if err := m.store.SetDriverStatus(ctx, name, status); err != nil {
		return fmt.Errorf("set driver %q %s: %w", name, status, err)
	}
	m.logger.Info("driver status changed", "driver", name, "status", status.String())
	return nil
}

// SaveConfig persists config as the driver's stored default.
func (m *Manager) SaveConfig(ctx context.Context, name string, config map[string]any) error {
	if err := m.store.SaveConfig(ctx, name, config); err != nil {
		return fmt.Errorf("save config of driver %q: %w", name, err)
	}
	return nil
}

// SaveProperties persists the serialized container as the driver's stored default.
func (m *Manager) SaveProperties(ctx context.Context, name string, props *properties.Properties) error {
	config := map[string]any{}
	if props != nil {
		config = props.ToMap()
	}
	return m.SaveConfig(ctx, name, config)
}

// GetConfig returns the stored configuration wrapped in a fresh container.
func (m *Manager) GetConfig(ctx context.Context, name string) (*properties.Properties, error) {
	config, err := m.store.GetDriverConfig(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load config of driver %q: %w", name, err)
	}
	return properties.FromMap(config), nil
}
