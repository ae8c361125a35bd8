package domain

// Graph is the derived view consumed by the rendering layer.
// Boundary nodes come first so they draw behind element nodes.
type Graph struct {
	Nodes    []GraphNode `json:"nodes"`
	Edges    []GraphEdge `json:"edges"`
	Viewport Viewport    `json:"viewport"`
}

// NewGraph creates an empty graph with the default viewport
func NewGraph() *Graph {
	return &Graph{
		Nodes:    make([]GraphNode, 0),
		Edges:    make([]GraphEdge, 0),
		Viewport: DefaultViewport(),
	}
}

// Clone returns a deep copy of the graph
func (g *Graph) Clone() *Graph {
	c := &Graph{
		Nodes:    make([]GraphNode, len(g.Nodes)),
		Edges:    make([]GraphEdge, len(g.Edges)),
		Viewport: g.Viewport,
	}
	for i, n := range g.Nodes {
		c.Nodes[i] = n.Clone()
	}
	for i, e := range g.Edges {
		c.Edges[i] = e.Clone()
	}
	return c
}

// Node returns the node with the given id, or nil
func (g *Graph) Node(id string) *GraphNode {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// Edge returns the edge with the given id, or nil
func (g *Graph) Edge(id string) *GraphEdge {
	for i := range g.Edges {
		if g.Edges[i].ID == id {
			return &g.Edges[i]
		}
	}
	return nil
}

// NodeIDs returns the node ids in draw order
func (g *Graph) NodeIDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// EdgeIDs returns the edge ids in order
func (g *Graph) EdgeIDs() []string {
	ids := make([]string, len(g.Edges))
	for i, e := range g.Edges {
		ids[i] = e.ID
	}
	return ids
}

// Boundaries returns the trust boundary nodes in draw order
func (g *Graph) Boundaries() []GraphNode {
	var out []GraphNode
	for _, n := range g.Nodes {
		if n.IsBoundary() {
			out = append(out, n)
		}
	}
	return out
}

// AbsolutePosition resolves a node's position in canvas coordinates, adding the
// parent's position for nodes stored relative to a boundary
func (g *Graph) AbsolutePosition(n GraphNode) Point {
	if n.ParentID == "" {
		return n.Position
	}
	parent := g.Node(n.ParentID)
	if parent == nil {
		return n.Position
	}
	return n.Position.Add(parent.Position.X, parent.Position.Y)
}
