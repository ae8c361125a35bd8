package canvas

import (
	"threatforge/internal/domain"
	"threatforge/internal/ident"
)

// Default grid used when neither a restored layout nor a prior position exists
const (
	gridColumns      = 4
	elementOriginX   = 100
	elementOriginY   = 100
	elementColumnGap = 250
	elementRowGap    = 200
	boundaryOriginX  = 50
	boundaryOriginY  = 50
	boundaryGap      = 450
)

// ElementGridSlot returns the default position of the i-th element
func ElementGridSlot(i int) domain.Point {
	return domain.Point{
		X: float64(elementOriginX + (i%gridColumns)*elementColumnGap),
		Y: float64(elementOriginY + (i/gridColumns)*elementRowGap),
	}
}

// BoundaryGridSlot returns the default position of the i-th boundary
func BoundaryGridSlot(i int) domain.Point {
	return domain.Point{X: float64(boundaryOriginX + i*boundaryGap), Y: boundaryOriginY}
}

// Rebuild derives the visual graph from the model.
//
// The allocator is reseeded from the model first. Boundary nodes come before
// element nodes. Each node's position is taken from the restored layout, else from
// the prior graph, else from the default grid. Prior sizes, selection and edge
// handles survive for ids that still exist. Elements are parented to the first
// boundary (in model order) whose contains list names them; a prior position is
// converted when that parent changed. A nil model yields an
// empty graph that keeps the prior viewport.
func Rebuild(m *domain.ThreatModel, prior *domain.Graph, layout *domain.DiagramLayout, alloc *ident.Allocator) *domain.Graph {
	if prior == nil {
		prior = domain.NewGraph()
	}

	g := domain.NewGraph()
	g.Viewport = prior.Viewport
	if layout != nil {
		g.Viewport = layout.Viewport
	}

	if alloc != nil {
		alloc.Reseed(m)
	}
	if m == nil {
		return g
	}

	saved := layout.Index()
	resolve := func(id string, fallback domain.Point) domain.Point {
		if p, ok := saved[id]; ok {
			return p.Point()
		}
		if n := prior.Node(id); n != nil {
			return n.Position
		}
		return fallback
	}

	for i, b := range m.TrustBoundaries {
		node := domain.NewBoundaryNode(b, resolve(b.ID, BoundaryGridSlot(i)))
		carryOver(&node, prior.Node(b.ID), saved)
		g.Nodes = append(g.Nodes, node)
	}

	parents := make(map[string]string)
	for _, b := range m.TrustBoundaries {
		for _, elementID := range b.Contains {
			if _, taken := parents[elementID]; !taken {
				parents[elementID] = b.ID
			}
		}
	}

	for i, e := range m.Elements {
		parent := parents[e.ID]
		pos := resolve(e.ID, ElementGridSlot(i))
		old := prior.Node(e.ID)
		if _, restored := saved[e.ID]; !restored && old != nil && old.ParentID != parent {
			// membership changed, keep the node where it was on screen
			pos = prior.AbsolutePosition(*old)
			if b := g.Node(parent); b != nil {
				pos = pos.Sub(b.Position)
			}
		}

		node := domain.NewElementNode(e, pos)
		carryOver(&node, old, saved)
		if parent != "" {
			node.SetParent(parent)
		}
		g.Nodes = append(g.Nodes, node)
	}

	for _, f := range m.DataFlows {
		edge := domain.NewFlowEdge(f)
		if old := prior.Edge(f.ID); old != nil {
			edge.SourceHandle = old.SourceHandle
			edge.TargetHandle = old.TargetHandle
			edge.Selected = old.Selected
		}
		g.Edges = append(g.Edges, edge)
	}

	return g
}

// carryOver copies on-screen state from the prior node and applies a restored size
func carryOver(node *domain.GraphNode, old *domain.GraphNode, saved map[string]domain.NodePosition) {
	if old != nil {
		if old.Size != nil {
			s := *old.Size
			node.Size = &s
		}
		if old.Measured != nil {
			s := *old.Measured
			node.Measured = &s
		}
		node.Selected = old.Selected
	}
	if p, ok := saved[node.ID]; ok {
		if s, ok := p.Size(); ok {
			node.Size = &s
		}
	}
}
