package domain

import "slices"

// NodeKind tags a visual node with the renderer component that draws it
type NodeKind string

const (
	NodeProcess        NodeKind = "process"
	NodeDataStore      NodeKind = "dataStore"
	NodeExternalEntity NodeKind = "externalEntity"
	NodeTrustBoundary  NodeKind = "trustBoundary"
)

// NodeKindFor maps an element kind to its node kind
func NodeKindFor(k ElementKind) NodeKind {
	switch k {
	case ElementDataStore:
		return NodeDataStore
	case ElementExternalEntity:
		return NodeExternalEntity
	default:
		return NodeProcess
	}
}

// IsBoundary reports whether the kind is a trust boundary group
func (k NodeKind) IsBoundary() bool {
	return k == NodeTrustBoundary
}

// NodeData is the payload of a visual node. It is a closed variant:
// the only implementations are *ElementData and *BoundaryData.
type NodeData interface {
	nodeData()
	Label() string
}

// ElementData is the payload of an element node
type ElementData struct {
	Name         string      `json:"label"`
	ElementKind  ElementKind `json:"elementType"`
	TrustZone    string      `json:"trustZone"`
	Description  string      `json:"description"`
	Technologies []string    `json:"technologies"`
}

func (*ElementData) nodeData() {}

// Label returns the text drawn on the node
func (d *ElementData) Label() string { return d.Name }

// NewElementData builds a node payload from an element
func NewElementData(e Element) *ElementData {
	tech := slices.Clone(e.Technologies)
	if tech == nil {
		tech = make([]string, 0)
	}
	return &ElementData{
		Name:         e.Name,
		ElementKind:  e.Kind,
		TrustZone:    e.TrustZone,
		Description:  e.Description,
		Technologies: tech,
	}
}

// BoundaryData is the payload of a trust boundary group node
type BoundaryData struct {
	Name string `json:"boundaryName"`
}

func (*BoundaryData) nodeData() {}

// Label returns the boundary name
func (d *BoundaryData) Label() string { return d.Name }

// GraphNode is a positioned node on the canvas
type GraphNode struct {
	ID       string   `json:"id"`
	Kind     NodeKind `json:"type"`
	Position Point    `json:"position"`
	// Size is the explicitly set size (resize gesture, restored layout, boundary default)
	Size *Size `json:"size,omitempty"`
	// Measured is the size reported by the rendering layer
	Measured *Size  `json:"measured,omitempty"`
	ParentID string `json:"parentId,omitempty"`
	// ConstrainToParent keeps the node within its parent's bounds while dragging
	ConstrainToParent bool     `json:"constrainToParent,omitempty"`
	Selected          bool     `json:"selected,omitempty"`
	Data              NodeData `json:"data"`
}

// Clone returns a deep copy of the node
func (n GraphNode) Clone() GraphNode {
	if n.Size != nil {
		s := *n.Size
		n.Size = &s
	}
	if n.Measured != nil {
		s := *n.Measured
		n.Measured = &s
	}
	switch d := n.Data.(type) {
	case *ElementData:
		c := *d
		c.Technologies = slices.Clone(d.Technologies)
		n.Data = &c
	case *BoundaryData:
		c := *d
		n.Data = &c
	}
	return n
}

// IsBoundary reports whether the node is a trust boundary group
func (n GraphNode) IsBoundary() bool {
	return n.Kind.IsBoundary()
}

// SetParent attaches the node to a boundary and constrains it to the parent's bounds
func (n *GraphNode) SetParent(boundaryID string) {
	n.ParentID = boundaryID
	n.ConstrainToParent = boundaryID != ""
}

// NewElementNode creates the visual counterpart of an element
func NewElementNode(e Element, pos Point) GraphNode {
	return GraphNode{
		ID:       e.ID,
		Kind:     NodeKindFor(e.Kind),
		Position: pos,
		Data:     NewElementData(e),
	}
}

// Default boundary size applied when no explicit size is known
const (
	DefaultBoundaryWidth  = 400
	DefaultBoundaryHeight = 300
)

// NewBoundaryNode creates the visual counterpart of a trust boundary
func NewBoundaryNode(b TrustBoundary, pos Point) GraphNode {
	return GraphNode{
		ID:       b.ID,
		Kind:     NodeTrustBoundary,
		Position: pos,
		Size:     &Size{Width: DefaultBoundaryWidth, Height: DefaultBoundaryHeight},
		Data:     &BoundaryData{Name: b.Name},
	}
}
