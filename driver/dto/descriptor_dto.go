// Package dto contains the serialized forms of driver descriptors.
package dto

import (
	"github.com/reglet-dev/reglet-driver-sdk/driver/entities"
	"github.com/reglet-dev/reglet-driver-sdk/driver/values"
)

// DescriptorDTO is the wire/file shape of a driver descriptor.
type DescriptorDTO struct {
	Config        map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
	Status        *int           `json:"status,omitempty" yaml:"status"`
	Name          string         `json:"name" yaml:"name"`
	Category      string         `json:"category,omitempty" yaml:"category,omitempty"`
	Title         string         `json:"title,omitempty" yaml:"title,omitempty"`
	Class         string         `json:"class" yaml:"class"`
	Description   string         `json:"description,omitempty" yaml:"description,omitempty"`
	Version       string         `json:"version,omitempty" yaml:"version,omitempty"`
	ExtensionName string         `json:"extension_name,omitempty" yaml:"extension_name,omitempty"`
}

// ToEntity converts the DTO to a domain descriptor with defaults applied.
// A missing status yields an enabled driver.
func (d *DescriptorDTO) ToEntity() *entities.Descriptor {
	status := values.StatusEnabled
	if d.Status != nil {
		status = values.Status(*d.Status)
	}

	desc := &entities.Descriptor{
		Name:          d.Name,
		Category:      d.Category,
		Title:         d.Title,
		Class:         d.Class,
		Description:   d.Description,
		Version:       d.Version,
		ExtensionName: d.ExtensionName,
		Config:        entities.NormalizeConfig(d.Config),
		Status:        status,
	}
	desc.ApplyDefaults()
	return desc
}

// FromEntity converts a domain descriptor to its serialized form.
func FromEntity(desc *entities.Descriptor) *DescriptorDTO {
	if desc == nil {
		return nil
	}
	status := int(desc.Status)
	return &DescriptorDTO{
		Name:          desc.Name,
		Category:      desc.Category,
		Title:         desc.Title,
		Class:         desc.Class,
		Description:   desc.Description,
		Version:       desc.Version,
		ExtensionName: desc.ExtensionName,
		Config:        entities.CloneConfig(desc.Config),
		Status:        &status,
	}
}
