package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"threatforge/internal/domain"
)

// JSONCodec handles layout sidecars and the JSON graph export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// ContentType returns the MIME type of exported documents
func (c *JSONCodec) ContentType() string {
	return "application/json"
}

// graphDocument is the exported view consumed by rendering clients
type graphDocument struct {
	*domain.Graph
	ThreatCounts map[string]int `json:"threat_counts"`
}

// Export writes the visual graph together with the per-node threat badge counts
func (c *JSONCodec) Export(m *domain.ThreatModel, g *domain.Graph, w io.Writer) error {
	if g == nil {
		g = domain.NewGraph()
	}
	return c.encode(graphDocument{Graph: g, ThreatCounts: domain.ThreatCounts(m)}, w)
}

// DecodeLayout parses a layout sidecar
func (c *JSONCodec) DecodeLayout(r io.Reader) (*domain.DiagramLayout, error) {
	var layout domain.DiagramLayout
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&layout); err != nil {
		return nil, fmt.Errorf("failed to parse layout JSON: %w", err)
	}
	if layout.Viewport.Zoom == 0 {
		layout.Viewport.Zoom = 1
	}
	if layout.Nodes == nil {
		layout.Nodes = make([]domain.NodePosition, 0)
	}
	return &layout, nil
}

// EncodeLayout writes a layout sidecar
func (c *JSONCodec) EncodeLayout(layout *domain.DiagramLayout, w io.Writer) error {
	return c.encode(layout, w)
}

func (c *JSONCodec) encode(v any, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
