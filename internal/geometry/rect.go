package geometry

import "threatforge/internal/domain"

// Default node dimensions when width/height are unknown
const (
	DefaultNodeWidth  = 140
	DefaultNodeHeight = 50
)

// Rect is an axis-aligned rectangle in canvas coordinates
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the rectangle's center point
func (r Rect) Center() domain.Point {
	return domain.Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether p lies inside r, edges included
func (r Rect) Contains(p domain.Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Union returns the smallest rectangle covering r and o
func (r Rect) Union(o Rect) Rect {
	minX := min(r.X, o.X)
	minY := min(r.Y, o.Y)
	maxX := max(r.X+r.Width, o.X+o.Width)
	maxY := max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// ResolveSize returns the measured size if known, else the explicit size, else the default
func ResolveSize(n domain.GraphNode) domain.Size {
	switch {
	case n.Measured != nil && n.Measured.Width > 0 && n.Measured.Height > 0:
		return *n.Measured
	case n.Size != nil && n.Size.Width > 0 && n.Size.Height > 0:
		return *n.Size
	default:
		return domain.Size{Width: DefaultNodeWidth, Height: DefaultNodeHeight}
	}
}

// NodeRect builds a rectangle from the node's own (possibly parent-relative) position
func NodeRect(n domain.GraphNode) Rect {
	return rectAt(n.Position, ResolveSize(n))
}

// AbsoluteRect builds a rectangle in canvas coordinates, resolving parent-relative positions
func AbsoluteRect(g *domain.Graph, n domain.GraphNode) Rect {
	return rectAt(g.AbsolutePosition(n), ResolveSize(n))
}

func rectAt(p domain.Point, s domain.Size) Rect {
	return Rect{X: p.X, Y: p.Y, Width: s.Width, Height: s.Height}
}

// BoundaryAt hit-tests p against every boundary node. It returns the boundary only
// when p falls inside exactly one of them.
func BoundaryAt(g *domain.Graph, p domain.Point) (domain.GraphNode, bool) {
	var hit domain.GraphNode
	hits := 0
	for _, n := range g.Nodes {
		if !n.IsBoundary() {
			continue
		}
		if AbsoluteRect(g, n).Contains(p) {
			hit = n
			hits++
		}
	}
	if hits != 1 {
		return domain.GraphNode{}, false
	}
	return hit, true
}

// Bounds returns the rectangle covering every node of the graph, or false when empty
func Bounds(g *domain.Graph) (Rect, bool) {
	if len(g.Nodes) == 0 {
		return Rect{}, false
	}
	bounds := AbsoluteRect(g, g.Nodes[0])
	for _, n := range g.Nodes[1:] {
		bounds = bounds.Union(AbsoluteRect(g, n))
	}
	return bounds, true
}
