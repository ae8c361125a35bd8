package canvas

import "threatforge/internal/domain"

// ResetLayout discards every node position and size and places the nodes on the
// default grid, as when a model is opened without a layout. Edge handles are
// kept, the selection and viewport are not.
func (d *Document) ResetLayout() (*Change, error) {
	if d.model == nil {
		return nil, domain.ErrNoModel
	}
	d.pendingLayout = nil
	prior := &domain.Graph{Edges: d.graph.Edges, Viewport: domain.DefaultViewport()}
	d.graph = Rebuild(d.model, prior, nil, d.alloc)
	d.syncSelectedElement()

	c := newChange(OpResetLayout)
	c.NodesUpdated = d.graph.NodeIDs()
	d.markDirty(c)
	return c, nil
}

// CaptureLayout snapshots node positions, explicit sizes and the viewport into
// the layout record persisted next to the model. Positions are stored as the
// graph holds them, so children of a boundary keep boundary-relative coordinates.
func (d *Document) CaptureLayout(diagramID string) *domain.DiagramLayout {
	if diagramID == "" {
		diagramID = domain.DefaultDiagramID
	}
	layout := &domain.DiagramLayout{
		DiagramID: diagramID,
		Viewport:  d.graph.Viewport,
		Nodes:     make([]domain.NodePosition, 0, len(d.graph.Nodes)),
	}
	for _, n := range d.graph.Nodes {
		p := domain.NewNodePosition(n.ID, n.Position.X, n.Position.Y)
		if n.Size != nil {
			w, h := n.Size.Width, n.Size.Height
			p.Width = &w
			p.Height = &h
		}
		layout.Nodes = append(layout.Nodes, *p)
	}
	return layout
}
