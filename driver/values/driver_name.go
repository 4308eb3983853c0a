// Package values contains validated value objects for the driver domain.
package values

import (
	"fmt"
	"strings"
)

// DriverName represents a validated driver registry key.
type DriverName struct {
	value string
}

// NewDriverName creates a DriverName with strict validation.
// A valid driver name must:
// - Be non-empty
// - contain only alphanumeric characters, underscores, hyphens, and dots
// - NOT contain path separators or parent directory references
// - Be at most 64 characters long
func NewDriverName(name string) (DriverName, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DriverName{}, fmt.Errorf("driver name cannot be empty")
	}

	if len(name) > 64 {
		return DriverName{}, fmt.Errorf("driver name too long (max 64 chars)")
	}

	if strings.ContainsAny(name, `/\`) {
		return DriverName{}, fmt.Errorf("driver name cannot contain path separators")
	}

	// File-backed stores derive paths from names.
	if strings.Contains(name, "..") {
		return DriverName{}, fmt.Errorf("driver name cannot contain parent directory references")
	}

	for _, ch := range name {
		if !isValidDriverChar(ch) {
			return DriverName{}, fmt.Errorf("invalid driver name %q: must contain only alphanumeric characters, underscores, hyphens, and dots", name)
		}
	}

	return DriverName{value: name}, nil
}

func isValidDriverChar(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '_' ||
		r == '-' ||
		r == '.'
}

// String returns the string representation
func (n DriverName) String() string {
	return n.value
}
