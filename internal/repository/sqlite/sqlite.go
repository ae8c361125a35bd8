package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"threatforge/internal/domain"
	"threatforge/internal/repository"

	_ "modernc.org/sqlite"
)

// Repository implements repository.LayoutStore using SQLite
type Repository struct {
	db *sql.DB
}

var (
	_ repository.LayoutStore  = (*Repository)(nil)
	_ repository.LayoutLister = (*Repository)(nil)
)

// New creates a new SQLite layout store
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS layouts (
		layout_key TEXT PRIMARY KEY,
		model_path TEXT NOT NULL,
		diagram_id TEXT NOT NULL,
		viewport_x REAL NOT NULL DEFAULT 0,
		viewport_y REAL NOT NULL DEFAULT 0,
		zoom REAL NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS layout_nodes (
		layout_key TEXT NOT NULL,
		node_id TEXT NOT NULL,
		ordinal INTEGER NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		width REAL,
		height REAL,
		PRIMARY KEY (layout_key, node_id),
		FOREIGN KEY (layout_key) REFERENCES layouts(layout_key) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_layouts_model ON layouts(model_path);
	`

	_, err := r.db.Exec(schema)
	return err
}

// LoadLayout reads the layout saved for key
func (r *Repository) LoadLayout(ctx context.Context, key repository.LayoutKey) (*domain.DiagramLayout, error) {
	id := key.ID()
	layout := &domain.DiagramLayout{Nodes: make([]domain.NodePosition, 0)}

	err := r.db.QueryRowContext(ctx, `
		SELECT diagram_id, viewport_x, viewport_y, zoom
		FROM layouts WHERE layout_key = ?
	`, id).Scan(&layout.DiagramID, &layout.Viewport.X, &layout.Viewport.Y, &layout.Viewport.Zoom)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLayoutNotFound
		}
		return nil, fmt.Errorf("failed to query layout: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+nodeColumns+`
		FROM layout_nodes WHERE layout_key = ?
		ORDER BY ordinal
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query layout nodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row nodeRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan layout node: %w", err)
		}
		layout.Nodes = append(layout.Nodes, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating layout nodes: %w", err)
	}

	return layout, nil
}

// SaveLayout replaces the layout saved for key
func (r *Repository) SaveLayout(ctx context.Context, key repository.LayoutKey, layout *domain.DiagramLayout) error {
	id := key.ID()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO layouts (layout_key, model_path, diagram_id, viewport_x, viewport_y, zoom)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(layout_key) DO UPDATE SET
			diagram_id = excluded.diagram_id,
			viewport_x = excluded.viewport_x,
			viewport_y = excluded.viewport_y,
			zoom = excluded.zoom,
			updated_at = CURRENT_TIMESTAMP
	`, id, key.ModelPath, layout.DiagramID, layout.Viewport.X, layout.Viewport.Y, layout.Viewport.Zoom)
	if err != nil {
		return fmt.Errorf("failed to upsert layout: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM layout_nodes WHERE layout_key = ?`, id); err != nil {
		return fmt.Errorf("failed to clear layout nodes: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO layout_nodes (layout_key, ordinal, `+nodeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, n := range layout.Nodes {
		args := append([]any{id, i}, nodeInsertArgs(n)...)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert position for %s: %w", n.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteLayout removes the layout saved for key
func (r *Repository) DeleteLayout(ctx context.Context, key repository.LayoutKey) error {
	id := key.ID()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM layout_nodes WHERE layout_key = ?`, id); err != nil {
		return fmt.Errorf("failed to delete layout nodes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM layouts WHERE layout_key = ?`, id); err != nil {
		return fmt.Errorf("failed to delete layout: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListLayouts returns the diagram ids with a saved layout for a model path
func (r *Repository) ListLayouts(ctx context.Context, modelPath string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT diagram_id FROM layouts WHERE model_path = ? ORDER BY diagram_id
	`, modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to query layouts: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan layout: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close releases the database handle
func (r *Repository) Close() error {
	return r.db.Close()
}
