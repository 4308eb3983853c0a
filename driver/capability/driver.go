// Package capability defines the contract every pluggable driver satisfies to receive
// full lifecycle support from the driver manager, together with Base, a reusable
// implementation concrete drivers embed so they only override identity and config schema.
package capability

import (
	"errors"
	"reflect"

	"github.com/reglet-dev/reglet-driver-sdk/driver/ports"
	"github.com/reglet-dev/reglet-driver-sdk/properties"
)

var (
	// ErrNotCapable is returned when an object does not implement Driver.
	ErrNotCapable = errors.New("object does not implement the driver capability contract")

	// ErrNoFactory is returned by Base.InitDriver when no object factory was provided.
	ErrNoFactory = errors.New("driver has no object factory")
)

// Driver is the capability contract of a pluggable driver.
type Driver interface {
	// Identity
	DriverName() string
	DriverTitle() string
	DriverCategory() string
	DriverDescription() string
	DriverVersion() string
	DriverClass() string
	DriverExtensionName() string
	SetDriverParams(params Params)

	// Instance returns the wrapped implementation once InitDriver has run, else the driver itself.
	Instance() any

	// CreateDriverConfig declares recognised config keys and defaults into props.
	CreateDriverConfig(props *properties.Properties)

	// InitDriver builds the wrapped implementation from the resolved configuration.
	InitDriver(props *properties.Properties) error

	// Options are per-invocation runtime parameters.
	DriverOption(name string, fallback any) any
	SetDriverOption(name string, value any)
	DriverOptions() map[string]any
	SetDriverOptions(options map[string]any)

	// Config is the driver's persisted settings.
	DriverConfig() map[string]any
	SetDriverConfig(config map[string]any)
}

// FactoryAware is implemented by drivers that construct their wrapped
// implementation through an object factory.
type FactoryAware interface {
	SetObjectFactory(factory ports.ObjectFactory)
}

// Params is the bulk identity used by SetDriverParams.
type Params struct {
	Name        string
	Category    string
	Title       string
	Description string
	Version     string
	Extension   string
	Class       string
}

// As returns v as a Driver, or ErrNotCapable.
func As(v any) (Driver, error) {
	if d, ok := v.(Driver); ok && d != nil {
		return d, nil
	}
	return nil, ErrNotCapable
}

// ClassOf returns the runtime type identifier of v, e.g. "*gormdb.Driver".
func ClassOf(v any) string {
	if v == nil {
		return ""
	}
	return reflect.TypeOf(v).String()
}
