package capability

import (
	"fmt"
	"maps"

	"github.com/reglet-dev/reglet-driver-sdk/driver/ports"
	"github.com/reglet-dev/reglet-driver-sdk/driver/values"
	"github.com/reglet-dev/reglet-driver-sdk/properties"
)

// State is the lifecycle position of a driver object.
type State int

const (
	StateUninitialized State = iota
	StateConfigured
	StateInitialized
)

func (s State) String() string {
	switch s {
	case StateConfigured:
		return "configured"
	case StateInitialized:
		return "initialized"
	default:
		return "uninitialized"
	}
}

// Base implements Driver. Concrete drivers embed *Base (or Base), call Bind
// with themselves, and override CreateDriverConfig and optionally InitDriver.
type Base struct {
	self      any
	instance  any
	factory   ports.ObjectFactory
	config    map[string]any
	options   map[string]any
	name      string
	class     string
	version   string
	title     string
	category  string
	desc      string
	extension string
	state     State
}

// NewBase creates a Base with the given identity.
func NewBase(params Params) *Base {
	b := &Base{}
	b.SetDriverParams(params)
	return b
}

// Bind records the embedding driver. It is returned by Instance before
// initialization and its runtime type is the DriverClass fallback.
func (b *Base) Bind(self any) {
	b.self = self
}

func (b *Base) owner() any {
	if b.self != nil {
		return b.self
	}
	return b
}

// DriverName returns the registry name.
func (b *Base) DriverName() string {
	return b.name
}

// DriverTitle returns the display name, falling back to the driver name.
func (b *Base) DriverTitle() string {
	if b.title == "" {
		return b.name
	}
	return b.title
}

// DriverCategory returns the grouping category.
func (b *Base) DriverCategory() string {
	return b.category
}

// DriverDescription returns the description.
func (b *Base) DriverDescription() string {
	return b.desc
}

// DriverVersion returns the semantic version, "1.0.0" when unset.
func (b *Base) DriverVersion() string {
	if b.version == "" {
		return values.DefaultVersion
	}
	return b.version
}

// DriverClass returns the implementation identifier, falling back to the
// runtime type of the bound driver.
func (b *Base) DriverClass() string {
	if b.class == "" {
		return ClassOf(b.owner())
	}
	return b.class
}

// SetDriverClass sets the implementation identifier.
func (b *Base) SetDriverClass(class string) {
	b.class = class
}

// DriverExtensionName returns the owning extension, if any.
func (b *Base) DriverExtensionName() string {
	return b.extension
}

// SetDriverParams replaces the whole identity.
func (b *Base) SetDriverParams(params Params) {
	b.name = params.Name
	b.category = params.Category
	b.title = params.Title
	b.desc = params.Description
	b.version = params.Version
	if b.version == "" {
		b.version = values.DefaultVersion
	}
	b.extension = params.Extension
	b.class = params.Class
}

// Instance returns the wrapped implementation after InitDriver, else the driver itself.
func (b *Base) Instance() any {
	if b.instance != nil {
		return b.instance
	}
	return b.owner()
}

// SetInstance stores the wrapped implementation. Drivers overriding InitDriver call it.
func (b *Base) SetInstance(instance any) {
	b.instance = instance
	b.state = StateInitialized
}

// State returns the lifecycle state.
func (b *Base) State() State {
	return b.state
}

// SetObjectFactory implements FactoryAware.
func (b *Base) SetObjectFactory(factory ports.ObjectFactory) {
	b.factory = factory
}

// CreateDriverConfig declares no keys.
func (b *Base) CreateDriverConfig(_ *properties.Properties) {}

// InitDriver constructs the implementation named by DriverClass with the
// container's value snapshot as its only argument.
func (b *Base) InitDriver(props *properties.Properties) error {
	if b.factory == nil {
		return ErrNoFactory
	}
	config := map[string]any{}
	if props != nil {
		config = props.Values()
	}

	class := b.DriverClass()
	instance, err := b.factory.CreateInstanceWithConfig(class, config)
	if err != nil {
		return fmt.Errorf("init driver %q: %w", b.name, err)
	}
	b.SetInstance(instance)
	return nil
}

// DriverOption returns a single option, or fallback when it is absent.
func (b *Base) DriverOption(name string, fallback any) any {
	if v, ok := b.options[name]; ok {
		return v
	}
	return fallback
}

// SetDriverOption sets a single option.
func (b *Base) SetDriverOption(name string, value any) {
	if b.options == nil {
		b.options = map[string]any{}
	}
	b.options[name] = value
}

// DriverOptions returns a copy of all options.
func (b *Base) DriverOptions() map[string]any {
	if b.options == nil {
		return map[string]any{}
	}
	return maps.Clone(b.options)
}

// SetDriverOptions replaces all options.
func (b *Base) SetDriverOptions(options map[string]any) {
	b.options = maps.Clone(options)
	b.markConfigured()
}

// DriverConfig returns a copy of the held configuration, empty when none was set.
func (b *Base) DriverConfig() map[string]any {
	if b.config == nil {
		return map[string]any{}
	}
	return maps.Clone(b.config)
}

// SetDriverConfig replaces the held configuration.
func (b *Base) SetDriverConfig(config map[string]any) {
	b.config = maps.Clone(config)
	b.markConfigured()
}

func (b *Base) markConfigured() {
	if b.state == StateUninitialized {
		b.state = StateConfigured
	}
}

// Ensure Base implements the contracts.
var (
	_ Driver       = (*Base)(nil)
	_ FactoryAware = (*Base)(nil)
)
