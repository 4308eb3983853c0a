// Package factory implements ports.ObjectFactory with a registry of constructors
// keyed by implementation identifier.
package factory

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/reglet-dev/reglet-driver-sdk/driver/capability"
	"github.com/reglet-dev/reglet-driver-sdk/driver/ports"
)

// ErrUnknownClass is returned when no constructor is registered for a class.
var ErrUnknownClass = errors.New("unknown implementation class")

// Constructor produces a new instance with no arguments.
type Constructor func() (any, error)

// ConfigConstructor produces a new instance from a configuration snapshot.
type ConfigConstructor func(config map[string]any) (any, error)

type entry struct {
	plain      Constructor
	configured ConfigConstructor
}

// Factory manages the registration of constructors and the creation of instances.
type Factory struct {
	entries map[string]entry
	mu      sync.RWMutex
}

// New creates an empty factory.
func New() *Factory {
	return &Factory{
		entries: make(map[string]entry),
	}
}

// Register adds a no-argument constructor for class.
func (f *Factory) Register(class string, ctor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := f.entries[class]
	e.plain = ctor
	f.entries[class] = e
}

// RegisterConfigurable adds a constructor taking a configuration snapshot.
// It also serves CreateInstance, receiving an empty configuration.
func (f *Factory) RegisterConfigurable(class string, ctor ConfigConstructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := f.entries[class]
	e.configured = ctor
	f.entries[class] = e
}

// RegisterType registers newFn under the runtime type of the value it returns
// and reports that class identifier.
func (f *Factory) RegisterType(newFn func() any) string {
	class := capability.ClassOf(newFn())
	f.Register(class, func() (any, error) { return newFn(), nil })
	return class
}

// Has reports whether class is registered.
func (f *Factory) Has(class string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.entries[class]
	return ok
}

// Classes returns the registered class identifiers, sorted.
func (f *Factory) Classes() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, 0, len(f.entries))
	for class := range f.entries {
		out = append(out, class)
	}
	sort.Strings(out)
	return out
}

// CreateInstance produces a new instance of class.
func (f *Factory) CreateInstance(class string) (any, error) {
	e, ok := f.lookup(class)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, class)
	}

	var (
		instance any
		err      error
	)
	switch {
	case e.plain != nil:
		instance, err = e.plain()
	default:
		instance, err = e.configured(map[string]any{})
	}
	if err != nil {
		return nil, fmt.Errorf("create instance of %s: %w", class, err)
	}
	if instance == nil {
		return nil, fmt.Errorf("create instance of %s: constructor returned nil", class)
	}
	return instance, nil
}

// CreateInstanceWithConfig produces a new instance of class from config.
// Classes registered only with Register ignore config.
func (f *Factory) CreateInstanceWithConfig(class string, config map[string]any) (any, error) {
	e, ok := f.lookup(class)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, class)
	}
	if e.configured == nil {
		return f.CreateInstance(class)
	}

	if config == nil {
		config = map[string]any{}
	}
	instance, err := e.configured(config)
	if err != nil {
		return nil, fmt.Errorf("create instance of %s: %w", class, err)
	}
	if instance == nil {
		return nil, fmt.Errorf("create instance of %s: constructor returned nil", class)
	}
	return instance, nil
}

func (f *Factory) lookup(class string) (entry, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	e, ok := f.entries[class]
	return e, ok
}

var _ ports.ObjectFactory = (*Factory)(nil)
