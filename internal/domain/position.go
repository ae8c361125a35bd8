package domain

// Point is a canvas coordinate
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by (dx, dy)
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Sub returns p expressed relative to origin
func (p Point) Sub(origin Point) Point {
	return Point{X: p.X - origin.X, Y: p.Y - origin.Y}
}

// Size is a node's width and height
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Viewport is the canvas pan and zoom state
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// DefaultViewport returns the unpanned, unzoomed viewport
func DefaultViewport() Viewport {
	return Viewport{X: 0, Y: 0, Zoom: 1}
}

// NodePosition represents the saved position and optional size of a node
type NodePosition struct {
	ID     string   `json:"id"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

// NewNodePosition creates a new node position without size
func NewNodePosition(nodeID string, x, y float64) *NodePosition {
	return &NodePosition{
		ID: nodeID,
		X:  x,
		Y:  y,
	}
}

// Point returns the saved position
func (p NodePosition) Point() Point {
	return Point{X: p.X, Y: p.Y}
}

// Size returns the saved size when both dimensions are present
func (p NodePosition) Size() (Size, bool) {
	if p.Width == nil || p.Height == nil {
		return Size{}, false
	}
	return Size{Width: *p.Width, Height: *p.Height}, true
}

// DiagramLayout is the layout sidecar persisted next to the model
type DiagramLayout struct {
	DiagramID string         `json:"diagram_id"`
	Viewport  Viewport       `json:"viewport"`
	Nodes     []NodePosition `json:"nodes"`
}

// Index returns the layout entries keyed by node id
func (l *DiagramLayout) Index() map[string]NodePosition {
	if l == nil {
		return nil
	}
	idx := make(map[string]NodePosition, len(l.Nodes))
	for _, n := range l.Nodes {
		idx[n.ID] = n
	}
	return idx
}
