package parser

import (
	"encoding/json"
	"fmt"

	"github.com/reglet-dev/reglet-driver-sdk/driver/entities"
)

// JSONDescriptorParser implements DescriptorParser for JSON.
type JSONDescriptorParser struct{}

// NewJSONDescriptorParser creates a new JSONDescriptorParser.
func NewJSONDescriptorParser() DescriptorParser {
	return &JSONDescriptorParser{}
}

// Parse unmarshals JSON bytes into descriptors.
func (p *JSONDescriptorParser) Parse(data []byte) ([]*entities.Descriptor, error) {
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest JSON: %w", err)
	}
	return m.descriptors()
}
