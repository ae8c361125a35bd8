// Package file stores threat models and their layout sidecars on the local
// filesystem.
package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"threatforge/internal/codec"
	"threatforge/internal/domain"
	"threatforge/internal/repository"
)

// DefaultLayoutDir is where layout sidecars live, relative to the model file
const DefaultLayoutDir = ".threatforge/layouts"

// Store implements repository.ModelStore and repository.LayoutStore
type Store struct {
	yaml *codec.YAMLCodec
	json *codec.JSONCodec
}

// New creates a filesystem store
func New() *Store {
	return &Store{
		yaml: codec.NewYAMLCodec(),
		json: codec.NewJSONCodec(),
	}
}

// LoadModel reads and normalizes a model document
func (s *Store) LoadModel(ctx context.Context, path string) (*domain.ThreatModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model: %w", err)
	}
	defer f.Close()

	m, err := s.yaml.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", path, err)
	}
	return m, nil
}

// SaveModel writes the model document atomically
func (s *Store) SaveModel(ctx context.Context, path string, m *domain.ThreatModel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := s.yaml.Encode(m, &buf); err != nil {
		return err
	}
	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to save model %s: %w", path, err)
	}
	return nil
}

// LayoutPath resolves the sidecar path of a layout key. Relative layout files are
// resolved against the model's directory.
func LayoutPath(key repository.LayoutKey) string {
	layoutFile := key.LayoutFile
	if layoutFile == "" {
		layoutFile = filepath.Join(DefaultLayoutDir, key.DiagramID+".json")
	}
	if filepath.IsAbs(layoutFile) {
		return layoutFile
	}
	return filepath.Join(filepath.Dir(key.ModelPath), filepath.FromSlash(layoutFile))
}

// LoadLayout reads the layout sidecar
func (s *Store) LoadLayout(ctx context.Context, key repository.LayoutKey) (*domain.DiagramLayout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := LayoutPath(key)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrLayoutNotFound
		}
		return nil, fmt.Errorf("failed to open layout: %w", err)
	}
	defer f.Close()

	layout, err := s.json.DecodeLayout(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load layout %s: %w", path, err)
	}
	return layout, nil
}

// SaveLayout writes the layout sidecar, creating its directory as needed
func (s *Store) SaveLayout(ctx context.Context, key repository.LayoutKey, layout *domain.DiagramLayout) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := LayoutPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create layout directory: %w", err)
	}

	var buf bytes.Buffer
	if err := s.json.EncodeLayout(layout, &buf); err != nil {
		return err
	}
	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to save layout %s: %w", path, err)
	}
	return nil
}

// DeleteLayout removes the layout sidecar. A missing sidecar is not an error.
func (s *Store) DeleteLayout(ctx context.Context, key repository.LayoutKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(LayoutPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete layout: %w", err)
	}
	return nil
}

// Close releases resources
func (s *Store) Close() error {
	return nil
}

// writeAtomic writes data to a temp file in the target directory and renames it
// over path so readers never observe a partial document
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
