package repository

import (
	"context"
	"path/filepath"

	"threatforge/internal/domain"
)

// LayoutKey identifies the layout of one diagram of one model file
type LayoutKey struct {
	// ModelPath is the path of the model document the layout belongs to
	ModelPath string
	// DiagramID is the diagram inside the model
	DiagramID string
	// LayoutFile is the sidecar path declared by the diagram, relative to the
	// model's directory. Only file-backed stores use it.
	LayoutFile string
}

// KeyFor builds the layout key of a diagram. An unknown diagram id falls back to
// the conventional sidecar location.
func KeyFor(modelPath string, m *domain.ThreatModel, diagramID string) LayoutKey {
	if diagramID == "" {
		diagramID = domain.DefaultDiagramID
	}
	key := LayoutKey{ModelPath: modelPath, DiagramID: diagramID}
	if m != nil {
		for _, d := range m.Diagrams {
			if d.ID == diagramID {
				key.LayoutFile = d.LayoutFile
				break
			}
		}
	}
	return key
}

// ID returns a stable identifier for the key, usable by non-file stores
func (k LayoutKey) ID() string {
	path := k.ModelPath
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return filepath.ToSlash(path) + "#" + k.DiagramID
}

// LayoutStore persists diagram layouts. Load returns domain.ErrLayoutNotFound
// when nothing was saved for the key.
type LayoutStore interface {
	LoadLayout(ctx context.Context, key LayoutKey) (*domain.DiagramLayout, error)
	SaveLayout(ctx context.Context, key LayoutKey, layout *domain.DiagramLayout) error
	DeleteLayout(ctx context.Context, key LayoutKey) error

	// Close releases resources
	Close() error
}

// LayoutLister is implemented by stores that can enumerate the diagrams with a
// saved layout for a model. The file store does not: sidecars of models sharing a
// directory cannot be told apart.
type LayoutLister interface {
	ListLayouts(ctx context.Context, modelPath string) ([]string, error)
}

// ModelStore reads and writes threat model documents
type ModelStore interface {
	LoadModel(ctx context.Context, path string) (*domain.ThreatModel, error)
	SaveModel(ctx context.Context, path string, m *domain.ThreatModel) error
}
