package domain

import (
	"slices"
	"time"
)

// ElementKind represents the DFD category of an element
type ElementKind string

const (
	ElementProcess        ElementKind = "process"
	ElementDataStore      ElementKind = "data_store"
	ElementExternalEntity ElementKind = "external_entity"
)

// Valid reports whether k is a known element kind
func (k ElementKind) Valid() bool {
	switch k {
	case ElementProcess, ElementDataStore, ElementExternalEntity:
		return true
	}
	return false
}

// IDPrefix returns the identifier prefix used for new elements of this kind
func (k ElementKind) IDPrefix() string {
	switch k {
	case ElementDataStore:
		return "data-store"
	case ElementExternalEntity:
		return "external"
	default:
		return "process"
	}
}

// DefaultName returns the name given to freshly created elements
func (k ElementKind) DefaultName() string {
	switch k {
	case ElementDataStore:
		return "New Data Store"
	case ElementExternalEntity:
		return "New External Entity"
	default:
		return "New Process"
	}
}

// DateFormat is the layout used for metadata dates
const DateFormat = "2006-01-02"

// Metadata describes the threat model document
type Metadata struct {
	Title       string `yaml:"title" json:"title"`
	Author      string `yaml:"author" json:"author"`
	Created     string `yaml:"created" json:"created"`
	Modified    string `yaml:"modified" json:"modified"`
	Description string `yaml:"description" json:"description"`
}

// Element is a process, data store or external entity
type Element struct {
	ID           string      `yaml:"id" json:"id"`
	Kind         ElementKind `yaml:"type" json:"type"`
	Name         string      `yaml:"name" json:"name"`
	TrustZone    string      `yaml:"trust_zone" json:"trust_zone"`
	Icon         string      `yaml:"icon,omitempty" json:"icon,omitempty"`
	Description  string      `yaml:"description" json:"description"`
	Technologies []string    `yaml:"technologies,omitempty" json:"technologies"`
	Stores       []string    `yaml:"stores,omitempty" json:"stores,omitempty"`
	Encryption   string      `yaml:"encryption,omitempty" json:"encryption,omitempty"`
}

// Clone returns a deep copy of the element
func (e Element) Clone() Element {
	e.Technologies = slices.Clone(e.Technologies)
	e.Stores = slices.Clone(e.Stores)
	return e
}

// DataFlow is a directed data movement between two elements
type DataFlow struct {
	ID            string   `yaml:"id" json:"id"`
	Name          string   `yaml:"name,omitempty" json:"name,omitempty"`
	From          string   `yaml:"from" json:"from"`
	To            string   `yaml:"to" json:"to"`
	Protocol      string   `yaml:"protocol" json:"protocol"`
	Data          []string `yaml:"data" json:"data"`
	Authenticated bool     `yaml:"authenticated" json:"authenticated"`
}

// Clone returns a deep copy of the flow
func (f DataFlow) Clone() DataFlow {
	f.Data = slices.Clone(f.Data)
	return f
}

// TrustBoundary groups element ids into a security zone
type TrustBoundary struct {
	ID       string   `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	Contains []string `yaml:"contains" json:"contains"`
}

// Has reports whether the boundary contains the element id
func (b TrustBoundary) Has(elementID string) bool {
	return slices.Contains(b.Contains, elementID)
}

// Clone returns a deep copy of the boundary
func (b TrustBoundary) Clone() TrustBoundary {
	b.Contains = slices.Clone(b.Contains)
	return b
}

// Diagram references a layout sidecar for one view of the model
type Diagram struct {
	ID         string `yaml:"id" json:"id"`
	Name       string `yaml:"name" json:"name"`
	LayoutFile string `yaml:"layout_file" json:"layout_file"`
}

// ThreatModel is the root document persisted as .threatforge.yaml
type ThreatModel struct {
	Version         string          `yaml:"version" json:"version"`
	Metadata        Metadata        `yaml:"metadata" json:"metadata"`
	Elements        []Element       `yaml:"elements" json:"elements"`
	DataFlows       []DataFlow      `yaml:"data_flows" json:"data_flows"`
	TrustBoundaries []TrustBoundary `yaml:"trust_boundaries" json:"trust_boundaries"`
	Threats         []Threat        `yaml:"threats" json:"threats"`
	Diagrams        []Diagram       `yaml:"diagrams" json:"diagrams"`
}

// DefaultDiagramID is the id of the diagram created with every new model
const DefaultDiagramID = "main-dfd"

// NewThreatModel creates an empty model with a single level-0 diagram
func NewThreatModel(title, author string, now time.Time) *ThreatModel {
	today := now.Format(DateFormat)
	return &ThreatModel{
		Version: "1.0",
		Metadata: Metadata{
			Title:    title,
			Author:   author,
			Created:  today,
			Modified: today,
		},
		Elements:        make([]Element, 0),
		DataFlows:       make([]DataFlow, 0),
		TrustBoundaries: make([]TrustBoundary, 0),
		Threats:         make([]Threat, 0),
		Diagrams: []Diagram{{
			ID:         DefaultDiagramID,
			Name:       "Level 0 DFD",
			LayoutFile: ".threatforge/layouts/" + DefaultDiagramID + ".json",
		}},
	}
}

// Normalize replaces missing collections with empty ones so downstream code can
// range over every field without nil checks
func (m *ThreatModel) Normalize() {
	if m.Elements == nil {
		m.Elements = make([]Element, 0)
	}
	for i := range m.Elements {
		if m.Elements[i].Technologies == nil {
			m.Elements[i].Technologies = make([]string, 0)
		}
	}
	if m.DataFlows == nil {
		m.DataFlows = make([]DataFlow, 0)
	}
	for i := range m.DataFlows {
		if m.DataFlows[i].Data == nil {
			m.DataFlows[i].Data = make([]string, 0)
		}
	}
	if m.TrustBoundaries == nil {
		m.TrustBoundaries = make([]TrustBoundary, 0)
	}
	for i := range m.TrustBoundaries {
		if m.TrustBoundaries[i].Contains == nil {
			m.TrustBoundaries[i].Contains = make([]string, 0)
		}
	}
	if m.Threats == nil {
		m.Threats = make([]Threat, 0)
	}
	if m.Diagrams == nil {
		m.Diagrams = make([]Diagram, 0)
	}
}

// Clone returns a deep copy of the model
func (m *ThreatModel) Clone() *ThreatModel {
	if m == nil {
		return nil
	}
	c := *m
	c.Elements = make([]Element, len(m.Elements))
	for i, e := range m.Elements {
		c.Elements[i] = e.Clone()
	}
	c.DataFlows = make([]DataFlow, len(m.DataFlows))
	for i, f := range m.DataFlows {
		c.DataFlows[i] = f.Clone()
	}
	c.TrustBoundaries = make([]TrustBoundary, len(m.TrustBoundaries))
	for i, b := range m.TrustBoundaries {
		c.TrustBoundaries[i] = b.Clone()
	}
	c.Threats = make([]Threat, len(m.Threats))
	for i, t := range m.Threats {
		c.Threats[i] = t.Clone()
	}
	c.Diagrams = slices.Clone(m.Diagrams)
	return &c
}

// FindElement returns the element with the given id, or nil
func (m *ThreatModel) FindElement(id string) *Element {
	for i := range m.Elements {
		if m.Elements[i].ID == id {
			return &m.Elements[i]
		}
	}
	return nil
}

// FindFlow returns the data flow with the given id, or nil
func (m *ThreatModel) FindFlow(id string) *DataFlow {
	for i := range m.DataFlows {
		if m.DataFlows[i].ID == id {
			return &m.DataFlows[i]
		}
	}
	return nil
}

// FindBoundary returns the trust boundary with the given id, or nil
func (m *ThreatModel) FindBoundary(id string) *TrustBoundary {
	for i := range m.TrustBoundaries {
		if m.TrustBoundaries[i].ID == id {
			return &m.TrustBoundaries[i]
		}
	}
	return nil
}

// BoundaryOf returns the first boundary (in document order) containing the element
func (m *ThreatModel) BoundaryOf(elementID string) *TrustBoundary {
	for i := range m.TrustBoundaries {
		if m.TrustBoundaries[i].Has(elementID) {
			return &m.TrustBoundaries[i]
		}
	}
	return nil
}

// ElementName returns the element's name, falling back to the raw id for dangling references
func (m *ThreatModel) ElementName(id string) string {
	if e := m.FindElement(id); e != nil {
		return e.Name
	}
	return id
}
