package values

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DefaultVersion is assigned to drivers that do not declare a version.
const DefaultVersion = "1.0.0"

// Version is a semantic driver version.
type Version struct {
	v *semver.Version
}

// ParseVersion parses a semantic version string.
// An empty string yields DefaultVersion.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultVersion
	}
	v, err := semver.NewVersion(s)
	if err != nil {
		return Version{}, fmt.Errorf("invalid driver version %q: %w", s, err)
	}
	return Version{v: v}, nil
}

// String returns the version as originally written.
func (v Version) String() string {
	if v.v == nil {
		return DefaultVersion
	}
	return v.v.Original()
}

// Satisfies reports whether the version matches the constraint.
// "latest" and the empty constraint match any version.
func (v Version) Satisfies(constraint string) (bool, error) {
	c, err := parseConstraint(constraint)
	if err != nil {
		return false, err
	}
	if v.v == nil {
		d, _ := semver.NewVersion(DefaultVersion)
		return c.Check(d), nil
	}
	return c.Check(v.v), nil
}

func parseConstraint(constraint string) (*semver.Constraints, error) {
	constraint = strings.TrimSpace(constraint)
	if constraint == "" || constraint == "latest" {
		constraint = ">= 0"
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	return c, nil
}
