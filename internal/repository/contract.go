package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threatforge/internal/domain"
)

// RunLayoutStoreContract runs a suite of tests verifying that a LayoutStore
// implementation honors the interface contract. dir is a writable directory
// used to build model paths.
func RunLayoutStoreContract(t *testing.T, store LayoutStore, dir string) {
	ctx := context.Background()
	modelPath := filepath.Join(dir, "system.threatforge.yaml")
	key := LayoutKey{
		ModelPath:  modelPath,
		DiagramID:  domain.DefaultDiagramID,
		LayoutFile: ".threatforge/layouts/main-dfd.json",
	}

	w, h := 520.0, 360.0
	layout := &domain.DiagramLayout{
		DiagramID: domain.DefaultDiagramID,
		Viewport:  domain.Viewport{X: -35.5, Y: 12, Zoom: 0.8},
		Nodes: []domain.NodePosition{
			{ID: "boundary-1", X: 50, Y: 50, Width: &w, Height: &h},
			{ID: "process-1", X: 20, Y: 30},
			{ID: "external-1", X: 700, Y: 120.25},
		},
	}

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.SaveLayout(ctx, key, layout))

		loaded, err := store.LoadLayout(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, layout, loaded)
	})

	t.Run("Save replaces previous layout", func(t *testing.T) {
		smaller := &domain.DiagramLayout{
			DiagramID: domain.DefaultDiagramID,
			Viewport:  domain.DefaultViewport(),
			Nodes:     []domain.NodePosition{{ID: "process-1", X: 1, Y: 2}},
		}
		require.NoError(t, store.SaveLayout(ctx, key, smaller))

		loaded, err := store.LoadLayout(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, smaller, loaded)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		missing := LayoutKey{ModelPath: filepath.Join(dir, "other.threatforge.yaml"), DiagramID: "missing"}
		_, err := store.LoadLayout(ctx, missing)
		assert.ErrorIs(t, err, domain.ErrLayoutNotFound)
	})

	t.Run("Diagrams are independent", func(t *testing.T) {
		second := LayoutKey{ModelPath: modelPath, DiagramID: "second-dfd", LayoutFile: ".threatforge/layouts/second-dfd.json"}
		other := &domain.DiagramLayout{
			DiagramID: "second-dfd",
			Viewport:  domain.DefaultViewport(),
			Nodes:     []domain.NodePosition{{ID: "process-9", X: 9, Y: 9}},
		}
		require.NoError(t, store.SaveLayout(ctx, second, other))

		loaded, err := store.LoadLayout(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "process-1", loaded.Nodes[0].ID)

		require.NoError(t, store.DeleteLayout(ctx, second))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.SaveLayout(ctx, key, layout))
		require.NoError(t, store.DeleteLayout(ctx, key))

		_, err := store.LoadLayout(ctx, key)
		assert.ErrorIs(t, err, domain.ErrLayoutNotFound, "Load after Delete should return ErrLayoutNotFound")

		assert.NoError(t, store.DeleteLayout(ctx, key), "Delete of a missing layout is not an error")
	})
}
