package parser

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/reglet-dev/reglet-driver-sdk/driver/entities"
)

// YAMLDescriptorParser implements DescriptorParser for YAML.
type YAMLDescriptorParser struct{}

// NewYAMLDescriptorParser creates a new YAMLDescriptorParser.
func NewYAMLDescriptorParser() DescriptorParser {
	return &YAMLDescriptorParser{}
}

// Parse unmarshals YAML bytes into descriptors.
func (p *YAMLDescriptorParser) Parse(data []byte) ([]*entities.Descriptor, error) {
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest YAML: %w", err)
	}
	return m.descriptors()
}
