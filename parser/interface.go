// Package parser parses driver descriptor manifests.
//
// A manifest holds either a single descriptor or a list under "drivers":
//
//	drivers:
//	  - name: smtp
//	    class: mail.SMTP
//	    config:
//	      port: 25
package parser

import (
	"fmt"

	"github.com/reglet-dev/reglet-driver-sdk/driver/dto"
	"github.com/reglet-dev/reglet-driver-sdk/driver/entities"
)

// DescriptorParser parses raw manifest bytes into descriptors.
type DescriptorParser interface {
	// Parse unmarshals manifest bytes into validated descriptors.
	Parse(data []byte) ([]*entities.Descriptor, error)
}

// manifest is the document shape shared by all parsers.
type manifest struct {
	dto.DescriptorDTO `yaml:",inline"`
	Drivers           []dto.DescriptorDTO `json:"drivers,omitempty" yaml:"drivers,omitempty"`
}

func (m *manifest) descriptors() ([]*entities.Descriptor, error) {
	items := m.Drivers
	if len(items) == 0 && m.Name != "" {
		items = []dto.DescriptorDTO{m.DescriptorDTO}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("manifest declares no drivers")
	}

	out := make([]*entities.Descriptor, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i := range items {
		desc := items[i].ToEntity()
		if err := desc.Validate(); err != nil {
			return nil, fmt.Errorf("driver #%d: %w", i, err)
		}
		if _, dup := seen[desc.Name]; dup {
			return nil, fmt.Errorf("driver %q declared more than once", desc.Name)
		}
		seen[desc.Name] = struct{}{}
		out = append(out, desc)
	}
	return out, nil
}
