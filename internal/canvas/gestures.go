package canvas

import (
	"fmt"

	"threatforge/internal/domain"
)

// MoveNode applies a drag end. Positions of parented nodes are boundary-relative.
func (d *Document) MoveNode(id string, pos domain.Point) (*Change, error) {
	n, err := d.node(id)
	if err != nil {
		return nil, err
	}
	if n.Position == pos {
		return nil, nil
	}
	n.Position = pos

	c := newChange(OpMove)
	c.NodesUpdated = append(c.NodesUpdated, id)
	d.markDirty(c)
	return c, nil
}

// ResizeNode applies a resize end by setting the node's explicit size
func (d *Document) ResizeNode(id string, size domain.Size) (*Change, error) {
	n, err := d.node(id)
	if err != nil {
		return nil, err
	}
	if size.Width <= 0 || size.Height <= 0 {
		return nil, fmt.Errorf("resize %s to %gx%g: size must be positive", id, size.Width, size.Height)
	}
	n.Size = &size

	c := newChange(OpResize)
	c.NodesUpdated = append(c.NodesUpdated, id)
	d.markDirty(c)
	return c, nil
}

// MeasureNode records the size reported by the rendering layer. Measurement is
// not a user edit and leaves the dirty flag alone.
func (d *Document) MeasureNode(id string, size domain.Size) (*Change, error) {
	n, err := d.node(id)
	if err != nil {
		return nil, err
	}
	if n.Measured != nil && *n.Measured == size {
		return nil, nil
	}
	n.Measured = &size

	c := newChange(OpMeasure)
	c.NodesUpdated = append(c.NodesUpdated, id)
	c.Dirty = d.dirty
	return c, nil
}

// Select replaces the selection. The property panel follows the selection when
// exactly one element node is selected and clears otherwise. Returns nil when
// the selection did not change.
func (d *Document) Select(nodeIDs, edgeIDs []string) *Change {
	nodes := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		nodes[id] = true
	}
	edges := make(map[string]bool, len(edgeIDs))
	for _, id := range edgeIDs {
		edges[id] = true
	}

	previous := d.selectedElement
	c := newChange(OpSelect)
	for i := range d.graph.Nodes {
		n := &d.graph.Nodes[i]
		if n.Selected != nodes[n.ID] {
			n.Selected = nodes[n.ID]
			c.NodesUpdated = append(c.NodesUpdated, n.ID)
		}
	}
	for i := range d.graph.Edges {
		e := &d.graph.Edges[i]
		if e.Selected != edges[e.ID] {
			e.Selected = edges[e.ID]
			c.EdgesUpdated = append(c.EdgesUpdated, e.ID)
		}
	}

	d.syncSelectedElement()
	if c.Empty() && previous == d.selectedElement {
		return nil
	}
	c.Dirty = d.dirty
	return c
}

// SetViewport records the canvas pan and zoom
func (d *Document) SetViewport(v domain.Viewport) *Change {
	d.graph.Viewport = v
	c := newChange(OpViewport)
	c.Dirty = d.dirty
	return c
}

// selectOnly makes id the only selected node and shows it in the property panel
func (d *Document) selectOnly(id string, c *Change) {
	for i := range d.graph.Nodes {
		n := &d.graph.Nodes[i]
		selected := n.ID == id
		if n.Selected != selected && n.ID != id {
			c.NodesUpdated = append(c.NodesUpdated, n.ID)
		}
		n.Selected = selected
	}
	for i := range d.graph.Edges {
		e := &d.graph.Edges[i]
		if e.Selected {
			e.Selected = false
			c.EdgesUpdated = append(c.EdgesUpdated, e.ID)
		}
	}
	d.selectedElement = id
}

// syncSelectedElement points the property panel at the only selected element
// node, or at nothing when zero or several are selected
func (d *Document) syncSelectedElement() {
	d.selectedElement = ""
	for _, n := range d.graph.Nodes {
		if !n.Selected || n.IsBoundary() {
			continue
		}
		if d.selectedElement != "" {
			d.selectedElement = ""
			return
		}
		d.selectedElement = n.ID
	}
}

func (d *Document) node(id string) (*domain.GraphNode, error) {
	if d.model == nil {
		return nil, domain.ErrNoModel
	}
	n := d.graph.Node(id)
	if n == nil {
		return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	return n, nil
}
