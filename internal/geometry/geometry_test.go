package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threatforge/internal/domain"
)

func node(id string, x, y float64) domain.GraphNode {
	return domain.GraphNode{ID: id, Kind: domain.NodeProcess, Position: domain.Point{X: x, Y: y}}
}

func edge(id, source, target string) domain.GraphEdge {
	return domain.GraphEdge{ID: id, Source: source, Target: target}
}

func TestResolveSize(t *testing.T) {
	t.Run("falls back to default size", func(t *testing.T) {
		s := ResolveSize(node("a", 0, 0))
		assert.Equal(t, domain.Size{Width: DefaultNodeWidth, Height: DefaultNodeHeight}, s)
	})

	t.Run("explicit size beats default", func(t *testing.T) {
		n := node("a", 0, 0)
		n.Size = &domain.Size{Width: 400, Height: 300}
		assert.Equal(t, domain.Size{Width: 400, Height: 300}, ResolveSize(n))
	})

	t.Run("measured size beats explicit size", func(t *testing.T) {
		n := node("a", 0, 0)
		n.Size = &domain.Size{Width: 400, Height: 300}
		n.Measured = &domain.Size{Width: 152, Height: 64}
		assert.Equal(t, domain.Size{Width: 152, Height: 64}, ResolveSize(n))
	})

	t.Run("zero measured size is ignored", func(t *testing.T) {
		n := node("a", 0, 0)
		n.Measured = &domain.Size{}
		assert.Equal(t, domain.Size{Width: DefaultNodeWidth, Height: DefaultNodeHeight}, ResolveSize(n))
	})
}

func TestHandlePair(t *testing.T) {
	tests := []struct {
		name       string
		source     Rect
		target     Rect
		wantSource domain.Handle
		wantTarget domain.Handle
	}{
		{
			name:       "target to the right",
			source:     Rect{X: 0, Y: 0, Width: 140, Height: 50},
			target:     Rect{X: 300, Y: 0, Width: 140, Height: 50},
			wantSource: "right-source",
			wantTarget: "left-target",
		},
		{
			name:       "target to the left",
			source:     Rect{X: 300, Y: 0, Width: 140, Height: 50},
			target:     Rect{X: 0, Y: 20, Width: 140, Height: 50},
			wantSource: "left-source",
			wantTarget: "right-target",
		},
		{
			name:       "target below",
			source:     Rect{X: 0, Y: 0, Width: 140, Height: 50},
			target:     Rect{X: 10, Y: 200, Width: 140, Height: 50},
			wantSource: "bottom-source",
			wantTarget: "top-target",
		},
		{
			name:       "target above",
			source:     Rect{X: 0, Y: 200, Width: 140, Height: 50},
			target:     Rect{X: 0, Y: 0, Width: 140, Height: 50},
			wantSource: "top-source",
			wantTarget: "bottom-target",
		},
		{
			name:       "diagonal tie resolves vertically",
			source:     Rect{X: 0, Y: 0, Width: 100, Height: 100},
			target:     Rect{X: 200, Y: 200, Width: 100, Height: 100},
			wantSource: "bottom-source",
			wantTarget: "top-target",
		},
		{
			name:       "coincident centers resolve vertically",
			source:     Rect{X: 0, Y: 0, Width: 100, Height: 100},
			target:     Rect{X: 0, Y: 0, Width: 100, Height: 100},
			wantSource: "top-source",
			wantTarget: "bottom-target",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, tgt := HandlePair(tt.source, tt.target)
			assert.Equal(t, tt.wantSource, src)
			assert.Equal(t, tt.wantTarget, tgt)
		})
	}
}

func TestHandlePairFromNodes(t *testing.T) {
	// process-1 at (0,0) and data_store-1 at (300,0), both 140x50
	a := node("process-1", 0, 0)
	b := node("data_store-1", 300, 0)

	src, tgt := HandlePair(NodeRect(a), NodeRect(b))
	assert.Equal(t, domain.Handle("right-source"), src)
	assert.Equal(t, domain.Handle("left-target"), tgt)
}

func TestAbsoluteRect(t *testing.T) {
	boundary := domain.NewBoundaryNode(domain.TrustBoundary{ID: "boundary-1"}, domain.Point{X: 50, Y: 50})
	child := node("process-1", 20, 30)
	child.SetParent("boundary-1")
	g := &domain.Graph{Nodes: []domain.GraphNode{boundary, child}}

	r := AbsoluteRect(g, child)
	assert.Equal(t, Rect{X: 70, Y: 80, Width: DefaultNodeWidth, Height: DefaultNodeHeight}, r)
}

func TestBoundaryAt(t *testing.T) {
	b1 := domain.NewBoundaryNode(domain.TrustBoundary{ID: "boundary-1"}, domain.Point{X: 0, Y: 0})
	b2 := domain.NewBoundaryNode(domain.TrustBoundary{ID: "boundary-2"}, domain.Point{X: 300, Y: 0})
	g := &domain.Graph{Nodes: []domain.GraphNode{b1, b2, node("process-1", 10, 10)}}

	t.Run("inside a single boundary", func(t *testing.T) {
		hit, ok := BoundaryAt(g, domain.Point{X: 100, Y: 100})
		require.True(t, ok)
		assert.Equal(t, "boundary-1", hit.ID)
	})

	t.Run("inside overlapping boundaries", func(t *testing.T) {
		_, ok := BoundaryAt(g, domain.Point{X: 350, Y: 100})
		assert.False(t, ok)
	})

	t.Run("outside every boundary", func(t *testing.T) {
		_, ok := BoundaryAt(g, domain.Point{X: 1000, Y: 1000})
		assert.False(t, ok)
	})
}

func TestRanks(t *testing.T) {
	t.Run("three parallel edges fan out around zero", func(t *testing.T) {
		edges := []domain.GraphEdge{
			edge("flow-3", "a", "b"),
			edge("flow-1", "a", "b"),
			edge("flow-2", "b", "a"),
			edge("flow-9", "a", "c"),
		}

		ranks := Ranks(edges, "a", "b")
		assert.Equal(t, map[string]float64{"flow-1": -1, "flow-2": 0, "flow-3": 1}, ranks)

		offsets := Offsets(edges, "b", "a")
		assert.Equal(t, map[string]float64{
			"flow-1": -EdgeSpacing,
			"flow-2": 0,
			"flow-3": EdgeSpacing,
		}, offsets)
	})

	t.Run("two parallel edges split evenly", func(t *testing.T) {
		edges := []domain.GraphEdge{edge("flow-1", "a", "b"), edge("flow-2", "a", "b")}
		assert.Equal(t, map[string]float64{"flow-1": -0.5, "flow-2": 0.5}, Ranks(edges, "a", "b"))
	})

	t.Run("no siblings", func(t *testing.T) {
		assert.Empty(t, Ranks(nil, "a", "b"))
	})
}

func TestCurvature(t *testing.T) {
	edges := []domain.GraphEdge{
		edge("flow-1", "a", "b"),
		edge("flow-2", "a", "b"),
		edge("flow-3", "a", "b"),
		edge("flow-4", "c", "d"),
	}

	assert.InDelta(t, BaseCurvature, Curvature(edges, edges[3]), 1e-9)
	assert.InDelta(t, BaseCurvature-CurvatureStep, Curvature(edges, edges[0]), 1e-9)
	assert.InDelta(t, BaseCurvature, Curvature(edges, edges[1]), 1e-9)
	assert.InDelta(t, BaseCurvature+CurvatureStep, Curvature(edges, edges[2]), 1e-9)
}

func TestBounds(t *testing.T) {
	_, ok := Bounds(&domain.Graph{})
	assert.False(t, ok)

	g := &domain.Graph{Nodes: []domain.GraphNode{node("a", 0, 0), node("b", 300, 200)}}
	r, ok := Bounds(g)
	require.True(t, ok)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 440, Height: 250}, r)
}

func TestAnchor(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 140, Height: 50}
	assert.Equal(t, domain.Point{X: 140, Y: 25}, Anchor(r, domain.SideRight))
	assert.Equal(t, domain.Point{X: 0, Y: 25}, Anchor(r, domain.SideLeft))
	assert.Equal(t, domain.Point{X: 70, Y: 0}, Anchor(r, domain.SideTop))
	assert.Equal(t, domain.Point{X: 70, Y: 50}, Anchor(r, domain.SideBottom))
}
