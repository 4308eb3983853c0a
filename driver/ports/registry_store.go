// Package ports defines the collaborator contracts consumed by the driver manager.
package ports

import (
	"context"

	"github.com/reglet-dev/reglet-driver-sdk/driver/entities"
	"github.com/reglet-dev/reglet-driver-sdk/driver/values"
)

// RegistryStore persists driver descriptors and their configuration, keyed by driver name.
// Implementations own any atomicity guarantees; the manager performs no locking.
type RegistryStore interface {
	// GetDriver returns the descriptor for name or an error matching entities.ErrDriverNotFound.
	GetDriver(ctx context.Context, name string) (*entities.Descriptor, error)

	// AddDriver inserts or updates the descriptor stored under name.
	AddDriver(ctx context.Context, name string, descriptor *entities.Descriptor) error

	// RemoveDriver deletes the descriptor stored under name.
	RemoveDriver(ctx context.Context, name string) error

	// HasDriver reports whether a descriptor exists for name.
	HasDriver(ctx context.Context, name string) (bool, error)

	// GetDriverConfig returns the stored configuration mapping for name.
	GetDriverConfig(ctx context.Context, name string) (map[string]any, error)

	// SaveConfig replaces the stored configuration mapping for name.
	SaveConfig(ctx context.Context, name string, config map[string]any) error

	// GetDriversList returns descriptors matching filter.
	GetDriversList(ctx context.Context, filter ListFilter) ([]*entities.Descriptor, error)

	// SetDriverStatus switches the driver on or off.
	SetDriverStatus(ctx context.Context, name string, status values.Status) error
}

// ListFilter narrows GetDriversList. Zero-value fields do not filter.
type ListFilter struct {
	// Status keeps only descriptors in this status when non-nil.
	Status *values.Status
	// Category keeps only descriptors whose category matches. Glob patterns
	// such as "storage/*" are accepted by the bundled stores.
	Category string
}
