package codec

import (
	"fmt"
	"io"
	"strings"

	"threatforge/internal/domain"
)

// MermaidExporter renders the model as a Mermaid flowchart. Trust boundaries
// become subgraphs and each element kind gets its DFD shape:
//   - process: ((circle))
//   - data store: [(cylinder)]
//   - external entity: [rectangle]
type MermaidExporter struct{}

// NewMermaidExporter creates a new Mermaid exporter
func NewMermaidExporter() *MermaidExporter {
	return &MermaidExporter{}
}

// Format returns the codec format identifier
func (e *MermaidExporter) Format() string {
	return "mermaid"
}

// ContentType returns the MIME type of exported documents
func (e *MermaidExporter) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Export writes the flowchart. The graph argument is unused; the diagram is
// derived from the model alone.
func (e *MermaidExporter) Export(m *domain.ThreatModel, _ *domain.Graph, w io.Writer) error {
	if _, err := io.WriteString(w, GenerateMermaid(m)); err != nil {
		return fmt.Errorf("failed to write mermaid: %w", err)
	}
	return nil
}

// GenerateMermaid produces Mermaid flowchart syntax for the model
func GenerateMermaid(m *domain.ThreatModel) string {
	var sb strings.Builder
	sb.WriteString("flowchart LR\n")
	if m == nil {
		return sb.String()
	}

	ids := newMermaidIDs()
	grouped := make(map[string][]domain.Element)
	var loose []domain.Element
	for _, el := range m.Elements {
		if b := m.BoundaryOf(el.ID); b != nil {
			grouped[b.ID] = append(grouped[b.ID], el)
			continue
		}
		loose = append(loose, el)
	}

	for _, b := range m.TrustBoundaries {
		sb.WriteString(fmt.Sprintf("    subgraph %s[\"%s\"]\n", ids.get(b.ID), escapeMermaid(b.Name)))
		for _, el := range grouped[b.ID] {
			sb.WriteString("        " + mermaidNode(ids.get(el.ID), el) + "\n")
		}
		sb.WriteString("    end\n")
	}
	for _, el := range loose {
		sb.WriteString("    " + mermaidNode(ids.get(el.ID), el) + "\n")
	}

	for _, f := range m.DataFlows {
		from, to := ids.get(f.From), ids.get(f.To)
		arrow := "-->"
		if f.Authenticated {
			arrow = "==>"
		}
		if label := flowLabel(f); label != "" {
			sb.WriteString(fmt.Sprintf("    %s %s|\"%s\"| %s\n", from, arrow, escapeMermaid(label), to))
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", from, arrow, to))
	}

	return sb.String()
}

func mermaidNode(id string, el domain.Element) string {
	opener, closer := "[", "]"
	switch el.Kind {
	case domain.ElementProcess:
		opener, closer = "((", "))"
	case domain.ElementDataStore:
		opener, closer = "[(", ")]"
	}
	return fmt.Sprintf("%s%s\"%s\"%s", id, opener, escapeMermaid(el.Name), closer)
}

// flowLabel joins the flow name and protocol, whichever are set
func flowLabel(f domain.DataFlow) string {
	switch {
	case f.Name != "" && f.Protocol != "":
		return f.Name + " (" + f.Protocol + ")"
	case f.Name != "":
		return f.Name
	}
	return f.Protocol
}

var mermaidLabelEscaper = strings.NewReplacer(
	"\"", "'",
	"\r\n", "<br/>",
	"\n", "<br/>",
	"\r", "<br/>",
)

func escapeMermaid(s string) string {
	return mermaidLabelEscaper.Replace(s)
}

// mermaidIDs hands out distinct Mermaid node ids for one export. Ids that
// sanitize to the same text get a numeric suffix in order of first use.
type mermaidIDs struct {
	byID  map[string]string
	taken map[string]bool
}

func newMermaidIDs() *mermaidIDs {
	return &mermaidIDs{byID: make(map[string]string), taken: make(map[string]bool)}
}

func (ids *mermaidIDs) get(id string) string {
	if out, ok := ids.byID[id]; ok {
		return out
	}
	base := sanitizeMermaidID(id)
	out := base
	for n := 2; ids.taken[out]; n++ {
		out = fmt.Sprintf("%s_%d", base, n)
	}
	ids.byID[id] = out
	ids.taken[out] = true
	return out
}

// sanitizeMermaidID keeps letters, digits and underscores. "end" closes a
// subgraph in Mermaid and cannot be used as a node id.
func sanitizeMermaidID(id string) string {
	s := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, id)
	if s == "" || strings.EqualFold(s, "end") {
		s += "_"
	}
	return s
}
