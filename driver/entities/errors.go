package entities

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error patterns.
// These allow both errors.Is() checks and errors.As() for detailed information.
var (
	// ErrDriverNotFound is returned when no descriptor exists for a driver name.
	ErrDriverNotFound = errors.New("driver not found")

	// ErrInvalidDescriptor is returned when a descriptor violates its invariants.
	ErrInvalidDescriptor = errors.New("invalid driver descriptor")
)

// DriverNotFoundError indicates a driver name is absent from the registry.
type DriverNotFoundError struct {
	Name string
}

func (e *DriverNotFoundError) Error() string {
	return fmt.Sprintf("driver not found: %s", e.Name)
}

// Is implements error matching for errors.Is() checks.
// This allows: errors.Is(err, entities.ErrDriverNotFound)
func (e *DriverNotFoundError) Is(target error) bool {
	return target == ErrDriverNotFound
}

// InvalidDescriptorError describes why a descriptor was rejected.
type InvalidDescriptorError struct {
	Name   string
	Reason string
}

func (e *InvalidDescriptorError) Error() string {
	return fmt.Sprintf("invalid driver descriptor %q: %s", e.Name, e.Reason)
}

// Is implements error matching for errors.Is() checks.
func (e *InvalidDescriptorError) Is(target error) bool {
	return target == ErrInvalidDescriptor
}
