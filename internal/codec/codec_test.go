package codec

import (
	"bytes"
	"encoding/json"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threatforge/internal/domain"
)

const sampleYAML = `version: "1.0"
metadata:
  title: Payments
  author: Security Team
  created: "2026-03-01"
  modified: "2026-03-02"
  description: Card payment flow
elements:
  - id: process-1
    type: process
    name: API
    trust_zone: internal
    description: Public API
    technologies: [go, grpc]
  - id: data-store-1
    type: data_store
    name: Ledger
    trust_zone: internal
    description: ""
    stores: [transactions]
    encryption: AES-256
  - id: external-1
    type: external_entity
    name: Customer
    trust_zone: public
    description: ""
data_flows:
  - id: flow-1
    from: external-1
    to: process-1
    protocol: HTTPS
    data: [card number]
    authenticated: true
  - id: flow-2
    name: Persist
    from: process-1
    to: data-store-1
    protocol: SQL
trust_boundaries:
  - id: boundary-1
    name: Internal "Zone"
    contains: [process-1, data-store-1]
threats:
  - id: threat-1a2b3c4d
    title: Spoofing of API
    category: Spoofing
    element: process-1
    severity: high
    description: impersonation
    mitigation:
      status: in_progress
      description: mTLS
diagrams:
  - id: main-dfd
    name: Level 0 DFD
    layout_file: .threatforge/layouts/main-dfd.json
`

func parseSample(t *testing.T) *domain.ThreatModel {
	t.Helper()
	m, err := NewYAMLCodec().Parse(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	return m
}

func sampleGraph() *domain.Graph {
	g := domain.NewGraph()
	g.Nodes = append(g.Nodes,
		domain.NewBoundaryNode(domain.TrustBoundary{ID: "boundary-1", Name: "Internal"}, domain.Point{X: 50, Y: 50}),
		domain.NewElementNode(domain.Element{ID: "process-1", Kind: domain.ElementProcess, Name: "API"}, domain.Point{X: 50, Y: 50}),
		domain.NewElementNode(domain.Element{ID: "data-store-1", Kind: domain.ElementDataStore, Name: "Ledger"}, domain.Point{X: 200, Y: 200}),
		domain.NewElementNode(domain.Element{ID: "external-1", Kind: domain.ElementExternalEntity, Name: "Customer"}, domain.Point{X: 600, Y: 100}),
	)
	g.Nodes[1].SetParent("boundary-1")
	g.Nodes[2].SetParent("boundary-1")
	g.Edges = append(g.Edges,
		domain.NewFlowEdge(domain.DataFlow{ID: "flow-1", From: "external-1", To: "process-1", Protocol: "HTTPS"}),
		domain.NewFlowEdge(domain.DataFlow{ID: "flow-2", From: "process-1", To: "data-store-1", Name: "Persist"}),
		domain.NewFlowEdge(domain.DataFlow{ID: "flow-3", From: "process-1", To: "data-store-1"}),
		domain.NewFlowEdge(domain.DataFlow{ID: "flow-4", From: "process-1", To: "ghost-1"}),
	)
	g.Edges[0].SourceHandle = "left-source"
	g.Edges[0].TargetHandle = "right-target"
	return g
}

func TestYAMLCodec_Parse(t *testing.T) {
	t.Run("decodes the full document", func(t *testing.T) {
		m := parseSample(t)

		assert.Equal(t, "1.0", m.Version)
		assert.Equal(t, "Payments", m.Metadata.Title)
		require.Len(t, m.Elements, 3)
		assert.Equal(t, domain.ElementDataStore, m.Elements[1].Kind)
		assert.Equal(t, []string{"transactions"}, m.Elements[1].Stores)
		assert.Equal(t, "AES-256", m.Elements[1].Encryption)
		assert.True(t, m.DataFlows[0].Authenticated)
		assert.Equal(t, "Persist", m.DataFlows[1].Name)
		assert.Equal(t, []string{"process-1", "data-store-1"}, m.TrustBoundaries[0].Contains)
		require.Len(t, m.Threats, 1)
		require.NotNil(t, m.Threats[0].Mitigation)
		assert.Equal(t, domain.MitigationInProgress, m.Threats[0].Mitigation.Status)
		assert.Equal(t, domain.DefaultDiagramID, m.Diagrams[0].ID)
	})

	t.Run("normalizes missing collections", func(t *testing.T) {
		m := parseSample(t)
		assert.NotNil(t, m.Elements[2].Technologies)
		assert.NotNil(t, m.DataFlows[1].Data)

		m, err := NewYAMLCodec().Parse(strings.NewReader("version: \"1.0\"\n"))
		require.NoError(t, err)
		assert.NotNil(t, m.Elements)
		assert.NotNil(t, m.DataFlows)
		assert.NotNil(t, m.TrustBoundaries)
		assert.NotNil(t, m.Threats)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := NewYAMLCodec().Parse(strings.NewReader("elements: [unclosed"))
		assert.Error(t, err)

		_, err = NewYAMLCodec().Parse(strings.NewReader(""))
		assert.Error(t, err)
	})
}

func TestYAMLCodec_RoundTrip(t *testing.T) {
	c := NewYAMLCodec()
	m := parseSample(t)

	var buf bytes.Buffer
	require.NoError(t, c.Encode(m, &buf))
	assert.Contains(t, buf.String(), "data_flows:")
	assert.Contains(t, buf.String(), "  - id: process-1")

	again, err := c.Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, m, again)
}

func TestJSONCodec_Layout(t *testing.T) {
	c := NewJSONCodec()
	w, h := 400.0, 300.0
	layout := &domain.DiagramLayout{
		DiagramID: domain.DefaultDiagramID,
		Viewport:  domain.Viewport{X: 10, Y: 20, Zoom: 1.25},
		Nodes: []domain.NodePosition{
			{ID: "boundary-1", X: 50, Y: 50, Width: &w, Height: &h},
			{ID: "process-1", X: 100, Y: 100},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, c.EncodeLayout(layout, &buf))
	assert.Contains(t, buf.String(), `"diagram_id": "main-dfd"`)
	assert.NotContains(t, buf.String(), `"width": null`)

	decoded, err := c.DecodeLayout(&buf)
	require.NoError(t, err)
	assert.Equal(t, layout, decoded)

	t.Run("defaults", func(t *testing.T) {
		decoded, err := c.DecodeLayout(strings.NewReader(`{"diagram_id":"main-dfd"}`))
		require.NoError(t, err)
		assert.Equal(t, 1.0, decoded.Viewport.Zoom)
		assert.NotNil(t, decoded.Nodes)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := c.DecodeLayout(strings.NewReader(`{"nodes":`))
		assert.Error(t, err)
	})
}

func TestJSONCodec_Export(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONCodec().Export(parseSample(t), sampleGraph(), &buf))

	var doc struct {
		Nodes []struct {
			ID   string         `json:"id"`
			Type string         `json:"type"`
			Data map[string]any `json:"data"`
		} `json:"nodes"`
		Edges        []map[string]any `json:"edges"`
		Viewport     domain.Viewport  `json:"viewport"`
		ThreatCounts map[string]int   `json:"threat_counts"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	require.Len(t, doc.Nodes, 4)
	assert.Equal(t, "trustBoundary", doc.Nodes[0].Type)
	assert.Equal(t, "Internal", doc.Nodes[0].Data["boundaryName"])
	assert.Equal(t, "API", doc.Nodes[1].Data["label"])
	assert.Len(t, doc.Edges, 4)
	assert.Equal(t, 1.0, doc.Viewport.Zoom)
	assert.Equal(t, map[string]int{"process-1": 1}, doc.ThreatCounts)
}

func TestGenerateMermaid(t *testing.T) {
	out := GenerateMermaid(parseSample(t))

	assert.True(t, strings.HasPrefix(out, "flowchart LR\n"))
	for _, want := range []string{
		`subgraph boundary_1["Internal 'Zone'"]`,
		`process_1(("API"))`,
		`data_store_1[("Ledger")]`,
		`external_1["Customer"]`,
		`external_1 ==>|"HTTPS"| process_1`,
		`process_1 -->|"Persist (SQL)"| data_store_1`,
	} {
		assert.Contains(t, out, want)
	}

	// contained elements are nested inside the subgraph
	start := strings.Index(out, "subgraph")
	end := strings.Index(out, "    end\n")
	require.Greater(t, end, start)
	assert.Contains(t, out[start:end], "process_1")
	assert.NotContains(t, out[start:end], "external_1")

	assert.Equal(t, "flowchart LR\n", GenerateMermaid(nil))
}

func TestGenerateMermaid_IDsAndLabels(t *testing.T) {
	m := domain.NewThreatModel("Edge cases", "", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	m.Elements = []domain.Element{
		{ID: "a-b", Kind: domain.ElementProcess, Name: "First"},
		{ID: "a_b", Kind: domain.ElementProcess, Name: "Second\nline"},
		{ID: "end", Kind: domain.ElementExternalEntity, Name: "User"},
	}
	m.DataFlows = []domain.DataFlow{
		{ID: "flow-1", From: "a-b", To: "a_b", Name: "multi\r\nline"},
		{ID: "flow-2", From: "a_b", To: "end"},
	}

	out := GenerateMermaid(m)
	for _, want := range []string{
		`a_b(("First"))`,
		`a_b_2(("Second<br/>line"))`,
		`end_["User"]`,
		`a_b -->|"multi<br/>line"| a_b_2`,
		`a_b_2 --> end_`,
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Second\n")
}

func TestPNGExporter(t *testing.T) {
	t.Run("renders the graph", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPNGExporter().Export(parseSample(t), sampleGraph(), &buf))

		img, err := png.Decode(&buf)
		require.NoError(t, err)
		// bounds span x 50..740 and y 50..350 plus 40px padding each side
		assert.Equal(t, 770, img.Bounds().Dx())
		assert.Equal(t, 380, img.Bounds().Dy())
	})

	t.Run("empty graph", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPNGExporter().Export(nil, nil, &buf))
		img, err := png.Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, 280, img.Bounds().Dx())
	})

	t.Run("scaled", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&PNGExporter{Scale: 2}).Export(nil, sampleGraph(), &buf))
		img, err := png.Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, 1540, img.Bounds().Dx())
	})

	t.Run("wide diagram is scaled to fit", func(t *testing.T) {
		g := sampleGraph()
		g.Nodes = append(g.Nodes, domain.NewElementNode(
			domain.Element{ID: "process-2", Kind: domain.ElementProcess, Name: "Batch"},
			domain.Point{X: 20000, Y: 100},
		))

		var buf bytes.Buffer
		require.NoError(t, NewPNGExporter().Export(nil, g, &buf))
		img, err := png.Decode(&buf)
		require.NoError(t, err)
		assert.LessOrEqual(t, img.Bounds().Dx(), pngMaxSide)
		assert.Greater(t, img.Bounds().Dx(), pngMaxSide-10)
		assert.Less(t, img.Bounds().Dy(), 380)
	})

	t.Run("far-off node is rejected", func(t *testing.T) {
		g := sampleGraph()
		g.Nodes = append(g.Nodes, domain.NewElementNode(
			domain.Element{ID: "process-2", Kind: domain.ElementProcess, Name: "Lost"},
			domain.Point{X: 1e12, Y: 0},
		))

		var buf bytes.Buffer
		err := NewPNGExporter().Export(nil, g, &buf)
		assert.ErrorIs(t, err, ErrImageTooLarge)
		assert.Zero(t, buf.Len())
	})
}

func TestExporterFor(t *testing.T) {
	assert.Equal(t, []string{"json", "mermaid", "png"}, Formats())

	e, err := ExporterFor("png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", e.ContentType())

	_, err = ExporterFor("svg")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
