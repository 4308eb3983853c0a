package ports

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/reglet-dev/reglet-driver-sdk/driver/entities"
)

// Match reports whether descriptor passes the filter.
// An invalid category pattern falls back to an exact comparison.
func (f ListFilter) Match(descriptor *entities.Descriptor) bool {
	if descriptor == nil {
		return false
	}
	if f.Status != nil && descriptor.Status != *f.Status {
		return false
	}
	if f.Category == "" || f.Category == descriptor.Category {
		return true
	}
	ok, err := doublestar.Match(f.Category, descriptor.Category)
	if err != nil {
		return false
	}
	return ok
}
