package codec

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"threatforge/internal/domain"
)

// ErrUnknownFormat is returned when no exporter is registered for a format
var ErrUnknownFormat = errors.New("unknown export format")

// Importer interface for reading threat model documents
type Importer interface {
	Parse(r io.Reader) (*domain.ThreatModel, error)
	Format() string
}

// Exporter interface for rendering a diagram to various formats
type Exporter interface {
	Export(m *domain.ThreatModel, g *domain.Graph, w io.Writer) error
	Format() string
	ContentType() string
}

// Exporters returns every built-in diagram exporter keyed by format
func Exporters() map[string]Exporter {
	out := make(map[string]Exporter)
	for _, e := range []Exporter{NewJSONCodec(), NewMermaidExporter(), NewPNGExporter()} {
		out[e.Format()] = e
	}
	return out
}

// ExporterFor returns the exporter registered for format
func ExporterFor(format string) (Exporter, error) {
	if e, ok := Exporters()[format]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %q (supported: %v)", ErrUnknownFormat, format, Formats())
}

// Formats lists the supported export formats in sorted order
func Formats() []string {
	var names []string
	for name := range Exporters() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
