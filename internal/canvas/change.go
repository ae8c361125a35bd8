package canvas

// Op names the operation that produced a Change
type Op string

const (
	OpRebuild       Op = "rebuild"
	OpAddElement    Op = "add_element"
	OpAddDataFlow   Op = "add_data_flow"
	OpAddBoundary   Op = "add_boundary"
	OpDelete        Op = "delete"
	OpDuplicate     Op = "duplicate"
	OpReverse       Op = "reverse"
	OpUpdateFlow    Op = "update_flow"
	OpMove          Op = "move"
	OpResize        Op = "resize"
	OpMeasure       Op = "measure"
	OpSelect        Op = "select"
	OpViewport      Op = "viewport"
	OpAppendThreats Op = "append_threats"
	OpResetLayout   Op = "reset_layout"
)

// Change describes what a single operation did to the document
type Change struct {
	Op                Op       `json:"op"`
	NodesAdded        []string `json:"nodes_added,omitempty"`
	NodesRemoved      []string `json:"nodes_removed,omitempty"`
	NodesUpdated      []string `json:"nodes_updated,omitempty"`
	EdgesAdded        []string `json:"edges_added,omitempty"`
	EdgesRemoved      []string `json:"edges_removed,omitempty"`
	EdgesUpdated      []string `json:"edges_updated,omitempty"`
	BoundariesUpdated []string `json:"boundaries_updated,omitempty"`
	ThreatsAdded      []string `json:"threats_added,omitempty"`
	// Dirty is true when the operation left unsaved model changes
	Dirty bool `json:"dirty"`
}

func newChange(op Op) *Change {
	return &Change{Op: op}
}

// Empty reports whether the change touched nothing
func (c *Change) Empty() bool {
	return len(c.NodesAdded) == 0 && len(c.NodesRemoved) == 0 && len(c.NodesUpdated) == 0 &&
		len(c.EdgesAdded) == 0 && len(c.EdgesRemoved) == 0 && len(c.EdgesUpdated) == 0 &&
		len(c.BoundariesUpdated) == 0 && len(c.ThreatsAdded) == 0
}
