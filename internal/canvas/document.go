package canvas

import (
	"threatforge/internal/domain"
	"threatforge/internal/ident"
)

// Document is the explicit application state shared by the synchronizer and the
// mutator actions: the domain model, the visual graph, the id allocator, and the
// transient editor state (pending layout, dirty flag, selected element).
type Document struct {
	model           *domain.ThreatModel
	graph           *domain.Graph
	alloc           *ident.Allocator
	pendingLayout   *domain.DiagramLayout
	dirty           bool
	selectedElement string
}

// New creates a document with no model open
func New() *Document {
	return &Document{
		graph: domain.NewGraph(),
		alloc: ident.New(),
	}
}

// HasModel reports whether a model is open
func (d *Document) HasModel() bool {
	return d.model != nil
}

// Model returns a deep copy of the open model, or nil
func (d *Document) Model() *domain.ThreatModel {
	return d.model.Clone()
}

// Graph returns a deep copy of the visual graph
func (d *Document) Graph() *domain.Graph {
	return d.graph.Clone()
}

// Dirty reports whether the model has unsaved changes
func (d *Document) Dirty() bool {
	return d.dirty
}

// MarkClean clears the dirty flag after a save
func (d *Document) MarkClean() {
	d.dirty = false
}

// SelectedElement returns the element shown in the property panel, or ""
func (d *Document) SelectedElement() string {
	return d.selectedElement
}

// ThreatCounts returns the number of threats referencing each element or flow id
func (d *Document) ThreatCounts() map[string]int {
	return domain.ThreatCounts(d.model)
}

// StampModified sets the model's modified date. The dirty flag is untouched.
func (d *Document) StampModified(date string) {
	if d.model != nil {
		d.model.Metadata.Modified = date
	}
}

// SetPendingLayout stores a layout to apply on the next Rebuild.
// The layout is consumed exactly once.
func (d *Document) SetPendingLayout(layout *domain.DiagramLayout) {
	d.pendingLayout = layout
}

// SetModel replaces the open model and rebuilds the graph. The model is normalized
// and copied and the dirty flag is reset. Selection carries over for ids that
// still exist.
func (d *Document) SetModel(m *domain.ThreatModel) *Change {
	if m == nil {
		return d.ClearModel()
	}
	d.model = m.Clone()
	d.model.Normalize()
	d.dirty = false
	return d.Rebuild()
}

// ClearModel closes the model and empties the graph
func (d *Document) ClearModel() *Change {
	d.model = nil
	d.dirty = false
	d.selectedElement = ""
	return d.Rebuild()
}

// Rebuild derives the whole graph from the model, consuming any pending layout
func (d *Document) Rebuild() *Change {
	prior := d.graph
	layout := d.pendingLayout
	d.pendingLayout = nil

	d.graph = Rebuild(d.model, prior, layout, d.alloc)
	d.syncSelectedElement()

	c := newChange(OpRebuild)
	c.NodesAdded = d.graph.NodeIDs()
	c.EdgesAdded = d.graph.EdgeIDs()
	for _, id := range prior.NodeIDs() {
		if d.graph.Node(id) == nil {
			c.NodesRemoved = append(c.NodesRemoved, id)
		}
	}
	for _, id := range prior.EdgeIDs() {
		if d.graph.Edge(id) == nil {
			c.EdgesRemoved = append(c.EdgesRemoved, id)
		}
	}
	c.Dirty = d.dirty
	return c
}

// AppendThreats adds accepted threat records to the model. The graph is untouched;
// threat badges are derived from the model on read.
func (d *Document) AppendThreats(threats []domain.Threat) (*Change, error) {
	if d.model == nil {
		return nil, domain.ErrNoModel
	}
	if len(threats) == 0 {
		return nil, nil
	}
	c := newChange(OpAppendThreats)
	for _, t := range threats {
		d.model.Threats = append(d.model.Threats, t.Clone())
		c.ThreatsAdded = append(c.ThreatsAdded, t.ID)
	}
	d.markDirty(c)
	return c, nil
}

func (d *Document) markDirty(c *Change) {
	d.dirty = true
	c.Dirty = true
}
