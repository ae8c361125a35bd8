package domain

import (
	"slices"
	"strings"
)

// HandleSide is the side of a node's perimeter an edge attaches to
type HandleSide string

const (
	SideTop    HandleSide = "top"
	SideBottom HandleSide = "bottom"
	SideLeft   HandleSide = "left"
	SideRight  HandleSide = "right"
)

// HandleRole says whether a handle emits or receives an edge
type HandleRole string

const (
	RoleSource HandleRole = "source"
	RoleTarget HandleRole = "target"
)

// Handle is a named connection point such as "right-source"
type Handle string

// NewHandle creates a handle name from a side and role
func NewHandle(side HandleSide, role HandleRole) Handle {
	return Handle(string(side) + "-" + string(role))
}

// Side returns the perimeter side of the handle
func (h Handle) Side() HandleSide {
	side, _, _ := strings.Cut(string(h), "-")
	return HandleSide(side)
}

// Role returns the source/target role of the handle
func (h Handle) Role() HandleRole {
	_, role, _ := strings.Cut(string(h), "-")
	return HandleRole(role)
}

// Flip swaps the role label and keeps the side
func (h Handle) Flip() Handle {
	switch h.Role() {
	case RoleSource:
		return NewHandle(h.Side(), RoleTarget)
	case RoleTarget:
		return NewHandle(h.Side(), RoleSource)
	}
	return h
}

// EdgeLabel mirrors the data flow fields drawn on an edge
type EdgeLabel struct {
	Name          string   `json:"name,omitempty"`
	Protocol      string   `json:"protocol"`
	Data          []string `json:"data"`
	Authenticated bool     `json:"authenticated"`
}

// NewEdgeLabel builds an edge label from a data flow
func NewEdgeLabel(f DataFlow) EdgeLabel {
	data := slices.Clone(f.Data)
	if data == nil {
		data = make([]string, 0)
	}
	return EdgeLabel{
		Name:          f.Name,
		Protocol:      f.Protocol,
		Data:          data,
		Authenticated: f.Authenticated,
	}
}

// GraphEdge represents a routed data flow on the canvas
type GraphEdge struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	Target       string    `json:"target"`
	SourceHandle Handle    `json:"sourceHandle,omitempty"`
	TargetHandle Handle    `json:"targetHandle,omitempty"`
	Animated     bool      `json:"animated,omitempty"`
	Label        EdgeLabel `json:"data"`
	Selected     bool      `json:"selected,omitempty"`
}

// NewFlowEdge creates the visual counterpart of a data flow with unset handles
func NewFlowEdge(f DataFlow) GraphEdge {
	return GraphEdge{
		ID:       f.ID,
		Source:   f.From,
		Target:   f.To,
		Animated: f.Authenticated,
		Label:    NewEdgeLabel(f),
	}
}

// Clone returns a deep copy of the edge
func (e GraphEdge) Clone() GraphEdge {
	e.Label.Data = slices.Clone(e.Label.Data)
	return e
}

// Touches reports whether the edge starts or ends at the node
func (e GraphEdge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}

// Connects reports whether the edge joins a and b in either direction
func (e GraphEdge) Connects(a, b string) bool {
	return (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a)
}
