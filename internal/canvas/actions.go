package canvas

import (
	"fmt"
	"slices"

	"threatforge/internal/domain"
	"threatforge/internal/geometry"
)

// DefaultBoundaryName is used for boundaries dropped from the palette
const DefaultBoundaryName = "New Boundary"

// duplicateOffset is the distance between a node and its duplicate
const duplicateOffset = 50

// AddElement creates an element and its node at pos. A drop inside exactly one
// boundary parents the node to it, stores the position relative to the boundary,
// and appends the element to the boundary's contains list. The new element
// becomes the selection.
func (d *Document) AddElement(kind domain.ElementKind, pos domain.Point) (*domain.Element, *Change, error) {
	if !kind.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", domain.ErrInvalidKind, kind)
	}
	if d.model == nil {
		return nil, nil, domain.ErrNoModel
	}

	id := d.alloc.NextElement(kind)
	element := domain.Element{
		ID:           id,
		Kind:         kind,
		Name:         kind.DefaultName(),
		Technologies: make([]string, 0),
	}
	node := domain.NewElementNode(element, pos)

	c := newChange(OpAddElement)
	if boundary, ok := geometry.BoundaryAt(d.graph, pos); ok {
		node.SetParent(boundary.ID)
		node.Position = pos.Sub(d.graph.AbsolutePosition(boundary))
		if b := d.model.FindBoundary(boundary.ID); b != nil {
			b.Contains = append(b.Contains, id)
			c.BoundariesUpdated = append(c.BoundariesUpdated, b.ID)
		}
	}

	d.graph.Nodes = append(d.graph.Nodes, node)
	d.model.Elements = append(d.model.Elements, element)
	c.NodesAdded = append(c.NodesAdded, id)

	d.selectOnly(id, c)
	d.markDirty(c)
	return &element, c, nil
}

// FlowOption customizes AddDataFlow
type FlowOption func(*flowOptions)

type flowOptions struct {
	sourceHandle domain.Handle
	targetHandle domain.Handle
	name         string
}

// WithHandles uses the given connection points verbatim instead of choosing them
func WithHandles(source, target domain.Handle) FlowOption {
	return func(o *flowOptions) {
		o.sourceHandle = source
		o.targetHandle = target
	}
}

// WithName sets the new flow's name
func WithName(name string) FlowOption {
	return func(o *flowOptions) {
		o.name = name
	}
}

// AddDataFlow creates a data flow and its edge. Self-loops are rejected with
// domain.ErrSelfLoop and a nil flow; parallel flows between the same pair are
// accepted. Without explicit handles the pair is chosen from the node rectangles.
func (d *Document) AddDataFlow(sourceID, targetID string, opts ...FlowOption) (*domain.DataFlow, *Change, error) {
	if sourceID == targetID {
		return nil, nil, domain.ErrSelfLoop
	}
	if d.model == nil {
		return nil, nil, domain.ErrNoModel
	}

	var o flowOptions
	for _, opt := range opts {
		opt(&o)
	}

	flow := domain.DataFlow{
		ID:   d.alloc.NextFlow(),
		Name: o.name,
		From: sourceID,
		To:   targetID,
		Data: make([]string, 0),
	}
	edge := domain.NewFlowEdge(flow)

	if o.sourceHandle != "" || o.targetHandle != "" {
		edge.SourceHandle = o.sourceHandle
		edge.TargetHandle = o.targetHandle
	} else {
		source := d.graph.Node(sourceID)
		target := d.graph.Node(targetID)
		if source != nil && target != nil {
			edge.SourceHandle, edge.TargetHandle = geometry.HandlePair(
				geometry.AbsoluteRect(d.graph, *source),
				geometry.AbsoluteRect(d.graph, *target),
			)
		}
	}

	d.graph.Edges = append(d.graph.Edges, edge)
	d.model.DataFlows = append(d.model.DataFlows, flow)

	c := newChange(OpAddDataFlow)
	c.EdgesAdded = append(c.EdgesAdded, flow.ID)
	d.markDirty(c)
	return &flow, c, nil
}

// AddTrustBoundary creates an empty boundary. Its node is prepended so it draws
// behind every other node.
func (d *Document) AddTrustBoundary(name string, pos domain.Point) (*domain.TrustBoundary, *Change, error) {
	if d.model == nil {
		return nil, nil, domain.ErrNoModel
	}
	if name == "" {
		name = DefaultBoundaryName
	}

	boundary := domain.TrustBoundary{
		ID:       d.alloc.NextBoundary(),
		Name:     name,
		Contains: make([]string, 0),
	}
	node := domain.NewBoundaryNode(boundary, pos)

	d.graph.Nodes = slices.Insert(d.graph.Nodes, 0, node)
	d.model.TrustBoundaries = append(d.model.TrustBoundaries, boundary)

	c := newChange(OpAddBoundary)
	c.NodesAdded = append(c.NodesAdded, boundary.ID)
	d.markDirty(c)
	return &boundary, c, nil
}

// DuplicateElement copies an element under a new id, names it "<name> (copy)" and
// places it 50px right and below the source node. A copy of a contained element
// joins the same boundary. The copy becomes the selection.
func (d *Document) DuplicateElement(id string) (*domain.Element, *Change, error) {
	if d.model == nil {
		return nil, nil, domain.ErrNoModel
	}
	src := d.model.FindElement(id)
	if src == nil {
		return nil, nil, fmt.Errorf("element %s: %w", id, domain.ErrNotFound)
	}

	dup := src.Clone()
	dup.ID = d.alloc.NextElement(src.Kind)
	dup.Name = src.Name + " (copy)"

	c := newChange(OpDuplicate)
	node := domain.NewElementNode(dup, domain.Point{X: duplicateOffset, Y: duplicateOffset})
	if orig := d.graph.Node(id); orig != nil {
		node.Position = orig.Position.Add(duplicateOffset, duplicateOffset)
		if orig.ParentID != "" {
			node.SetParent(orig.ParentID)
			if b := d.model.FindBoundary(orig.ParentID); b != nil {
				b.Contains = append(b.Contains, dup.ID)
				c.BoundariesUpdated = append(c.BoundariesUpdated, b.ID)
			}
		}
	}

	d.graph.Nodes = append(d.graph.Nodes, node)
	d.model.Elements = append(d.model.Elements, dup)
	c.NodesAdded = append(c.NodesAdded, dup.ID)

	d.selectOnly(dup.ID, c)
	d.markDirty(c)
	return &dup, c, nil
}

// ReverseEdge swaps the direction of a data flow. Assigned handles swap ends and
// flip their source/target role so each end stays on the same side of its node.
func (d *Document) ReverseEdge(id string) (*Change, error) {
	if d.model == nil {
		return nil, domain.ErrNoModel
	}
	flow := d.model.FindFlow(id)
	if flow == nil {
		return nil, fmt.Errorf("flow %s: %w", id, domain.ErrNotFound)
	}

	flow.From, flow.To = flow.To, flow.From
	if edge := d.graph.Edge(id); edge != nil {
		edge.Source, edge.Target = edge.Target, edge.Source
		edge.SourceHandle, edge.TargetHandle = edge.TargetHandle.Flip(), edge.SourceHandle.Flip()
	}

	c := newChange(OpReverse)
	c.EdgesUpdated = append(c.EdgesUpdated, id)
	d.markDirty(c)
	return c, nil
}

// UpdateFlowLabel commits the edge label editor: name, protocol and data items are
// written to the flow and mirrored onto its edge
func (d *Document) UpdateFlowLabel(id, name, protocol string, data []string) (*Change, error) {
	if d.model == nil {
		return nil, domain.ErrNoModel
	}
	flow := d.model.FindFlow(id)
	if flow == nil {
		return nil, fmt.Errorf("flow %s: %w", id, domain.ErrNotFound)
	}

	flow.Name = name
	flow.Protocol = protocol
	flow.Data = slices.Clone(data)
	if flow.Data == nil {
		flow.Data = make([]string, 0)
	}
	if edge := d.graph.Edge(id); edge != nil {
		edge.Label = domain.NewEdgeLabel(*flow)
	}

	c := newChange(OpUpdateFlow)
	c.EdgesUpdated = append(c.EdgesUpdated, id)
	d.markDirty(c)
	return c, nil
}
