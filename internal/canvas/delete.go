package canvas

import (
	"slices"

	"threatforge/internal/domain"
)

// DeleteSelected removes every selected node and edge plus all edges touching a
// selected node. Removed element ids are stripped from every surviving boundary.
// Children of a removed boundary stay on the canvas, unparented, at their absolute
// position. Returns nil when nothing is selected.
func (d *Document) DeleteSelected() (*Change, error) {
	if d.model == nil {
		return nil, domain.ErrNoModel
	}

	nodes := make(map[string]bool)
	for _, n := range d.graph.Nodes {
		if n.Selected {
			nodes[n.ID] = true
		}
	}
	edges := make(map[string]bool)
	for _, e := range d.graph.Edges {
		if e.Selected || nodes[e.Source] || nodes[e.Target] {
			edges[e.ID] = true
		}
	}
	if len(nodes) == 0 && len(edges) == 0 {
		return nil, nil
	}

	c := newChange(OpDelete)

	// unparent children of removed boundaries before their parent disappears
	for i := range d.graph.Nodes {
		n := &d.graph.Nodes[i]
		if nodes[n.ID] || n.ParentID == "" || !nodes[n.ParentID] {
			continue
		}
		n.Position = d.graph.AbsolutePosition(*n)
		n.SetParent("")
		c.NodesUpdated = append(c.NodesUpdated, n.ID)
	}

	d.graph.Nodes = slices.DeleteFunc(d.graph.Nodes, func(n domain.GraphNode) bool {
		if nodes[n.ID] {
			c.NodesRemoved = append(c.NodesRemoved, n.ID)
			return true
		}
		return false
	})
	d.graph.Edges = slices.DeleteFunc(d.graph.Edges, func(e domain.GraphEdge) bool {
		if edges[e.ID] {
			c.EdgesRemoved = append(c.EdgesRemoved, e.ID)
			return true
		}
		return false
	})

	d.model.Elements = slices.DeleteFunc(d.model.Elements, func(e domain.Element) bool {
		return nodes[e.ID]
	})
	d.model.DataFlows = slices.DeleteFunc(d.model.DataFlows, func(f domain.DataFlow) bool {
		return edges[f.ID]
	})
	d.model.TrustBoundaries = slices.DeleteFunc(d.model.TrustBoundaries, func(b domain.TrustBoundary) bool {
		return nodes[b.ID]
	})
	for i := range d.model.TrustBoundaries {
		b := &d.model.TrustBoundaries[i]
		kept := slices.DeleteFunc(b.Contains, func(id string) bool {
			return nodes[id]
		})
		if len(kept) != len(b.Contains) {
			c.BoundariesUpdated = append(c.BoundariesUpdated, b.ID)
		}
		b.Contains = kept
	}

	if nodes[d.selectedElement] {
		d.selectedElement = ""
	}
	d.markDirty(c)
	return c, nil
}
