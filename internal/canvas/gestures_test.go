package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threatforge/internal/domain"
)

func TestDeleteSelected(t *testing.T) {
	t.Run("nothing selected is a no-op", func(t *testing.T) {
		d := openDocument(t, fixtureModel())
		c, err := d.DeleteSelected()
		require.NoError(t, err)
		assert.Nil(t, c)
		assert.False(t, d.Dirty())
	})

	t.Run("deleting a node cascades to its edges and memberships", func(t *testing.T) {
		d := openDocument(t, fixtureModel())
		d.Select([]string{"process-1"}, nil)

		c, err := d.DeleteSelected()
		require.NoError(t, err)
		assert.Equal(t, []string{"process-1"}, c.NodesRemoved)
		assert.ElementsMatch(t, []string{"flow-1", "flow-2"}, c.EdgesRemoved)
		assert.Equal(t, []string{"boundary-1"}, c.BoundariesUpdated)

		m := d.Model()
		assert.Nil(t, m.FindElement("process-1"))
		assert.Empty(t, m.DataFlows)
		assert.Equal(t, []string{"data-store-1"}, m.FindBoundary("boundary-1").Contains)

		g := d.Graph()
		assert.Nil(t, g.Node("process-1"))
		assert.Empty(t, g.Edges)
		assert.Empty(t, d.SelectedElement())
		assert.True(t, d.Dirty())
	})

	t.Run("deleting an edge keeps its endpoints", func(t *testing.T) {
		d := openDocument(t, fixtureModel())
		d.Select(nil, []string{"flow-2"})

		c, err := d.DeleteSelected()
		require.NoError(t, err)
		assert.Equal(t, []string{"flow-2"}, c.EdgesRemoved)
		assert.Empty(t, c.NodesRemoved)
		assert.Len(t, d.Model().Elements, 3)
		assert.Equal(t, []string{"flow-1"}, d.Graph().EdgeIDs())
	})

	t.Run("deleting a boundary unparents its children", func(t *testing.T) {
		d := openDocument(t, fixtureModel())
		d.Select([]string{"boundary-1"}, nil)

		c, err := d.DeleteSelected()
		require.NoError(t, err)
		assert.Equal(t, []string{"boundary-1"}, c.NodesRemoved)
		assert.ElementsMatch(t, []string{"process-1", "data-store-1"}, c.NodesUpdated)
		assert.Empty(t, c.EdgesRemoved)

		g := d.Graph()
		assert.Len(t, g.Nodes, 3)
		n := g.Node("process-1")
		assert.Empty(t, n.ParentID)
		assert.False(t, n.ConstrainToParent)
		assert.Equal(t, domain.Point{X: 150, Y: 150}, n.Position)
		assert.Empty(t, d.Model().TrustBoundaries)
		assert.Len(t, d.Model().Elements, 3)
	})

	t.Run("removed ids leave every boundary", func(t *testing.T) {
		m := fixtureModel()
		m.TrustBoundaries = append(m.TrustBoundaries,
			domain.TrustBoundary{ID: "boundary-2", Name: "Audit", Contains: []string{"data-store-1", "external-1"}})
		d := openDocument(t, m)
		d.Select([]string{"data-store-1"}, nil)

		_, err := d.DeleteSelected()
		require.NoError(t, err)
		assert.Equal(t, []string{"process-1"}, d.Model().FindBoundary("boundary-1").Contains)
		assert.Equal(t, []string{"external-1"}, d.Model().FindBoundary("boundary-2").Contains)
	})
}

func TestSelect(t *testing.T) {
	d := openDocument(t, fixtureModel())

	c := d.Select([]string{"process-1"}, nil)
	require.NotNil(t, c)
	assert.Equal(t, []string{"process-1"}, c.NodesUpdated)
	assert.Equal(t, "process-1", d.SelectedElement())
	assert.False(t, c.Dirty)

	assert.Nil(t, d.Select([]string{"process-1"}, nil))

	d.Select([]string{"process-1", "external-1"}, nil)
	assert.Empty(t, d.SelectedElement())

	d.Select([]string{"boundary-1"}, []string{"flow-1"})
	assert.Empty(t, d.SelectedElement())
	assert.True(t, d.Graph().Edge("flow-1").Selected)

	d.Select(nil, nil)
	for _, n := range d.Graph().Nodes {
		assert.False(t, n.Selected, n.ID)
	}
	assert.False(t, d.Dirty())
}

func TestMoveNode(t *testing.T) {
	d := openDocument(t, fixtureModel())

	c, err := d.MoveNode("external-1", domain.Point{X: 800, Y: 90})
	require.NoError(t, err)
	assert.Equal(t, OpMove, c.Op)
	assert.True(t, d.Dirty())
	assert.Equal(t, domain.Point{X: 800, Y: 90}, d.Graph().Node("external-1").Position)

	c, err = d.MoveNode("external-1", domain.Point{X: 800, Y: 90})
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = d.MoveNode("nope", domain.Point{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResizeAndMeasure(t *testing.T) {
	d := openDocument(t, fixtureModel())

	c, err := d.MeasureNode("process-1", domain.Size{Width: 160, Height: 60})
	require.NoError(t, err)
	assert.Equal(t, OpMeasure, c.Op)
	assert.False(t, d.Dirty())

	c, err = d.MeasureNode("process-1", domain.Size{Width: 160, Height: 60})
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = d.ResizeNode("boundary-1", domain.Size{Width: 0, Height: 10})
	assert.Error(t, err)

	_, err = d.ResizeNode("boundary-1", domain.Size{Width: 800, Height: 500})
	require.NoError(t, err)
	assert.True(t, d.Dirty())

	d.Rebuild()
	g := d.Graph()
	assert.Equal(t, &domain.Size{Width: 800, Height: 500}, g.Node("boundary-1").Size)
	assert.Equal(t, &domain.Size{Width: 160, Height: 60}, g.Node("process-1").Measured)
}

func TestCaptureLayout(t *testing.T) {
	d := openDocument(t, fixtureModel())
	d.SetViewport(domain.Viewport{X: 12, Y: -4, Zoom: 0.75})
	_, err := d.MoveNode("process-1", domain.Point{X: 20, Y: 40})
	require.NoError(t, err)

	layout := d.CaptureLayout("")
	assert.Equal(t, domain.DefaultDiagramID, layout.DiagramID)
	assert.Equal(t, domain.Viewport{X: 12, Y: -4, Zoom: 0.75}, layout.Viewport)
	require.Len(t, layout.Nodes, 4)

	idx := layout.Index()
	assert.Equal(t, domain.Point{X: 20, Y: 40}, idx["process-1"].Point())
	_, sized := idx["process-1"].Size()
	assert.False(t, sized)

	size, sized := idx["boundary-1"].Size()
	require.True(t, sized)
	assert.Equal(t, domain.Size{Width: 400, Height: 300}, size)

	t.Run("captured layout restores positions", func(t *testing.T) {
		restored := New()
		restored.SetPendingLayout(layout)
		restored.SetModel(fixtureModel())
		assert.Equal(t, positions(d.Graph()), positions(restored.Graph()))
		assert.Equal(t, d.Graph().Viewport, restored.Graph().Viewport)
	})
}
