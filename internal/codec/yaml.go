package codec

import (
	"errors"
	"fmt"
	"io"

	"threatforge/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec reads and writes .threatforge.yaml model documents
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Parse decodes a model document. Missing collections are normalized to empty
// ones so the result is ready for the canvas.
func (c *YAMLCodec) Parse(r io.Reader) (*domain.ThreatModel, error) {
	var m domain.ThreatModel
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse YAML: empty document")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	m.Normalize()
	return &m, nil
}

// Encode writes the model as YAML
func (c *YAMLCodec) Encode(m *domain.ThreatModel, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(m); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
