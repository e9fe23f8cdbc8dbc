// Package bunstore is the default Storage adapter: Bun ORM over
// Postgres, grounded on mbflow's internal/infrastructure/storage
// WorkflowRepository — same RunInTx + smart-merge-by-stable-id pattern,
// narrowed from workflow{nodes, edges} to notebook{cells} (a notebook has
// no persisted edges; the kernel derives them from cell source on load).
package bunstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/carter293/reactive-notebook/internal/storage"
)

// Store implements storage.Adapter against a *bun.DB.
type Store struct {
	db *bun.DB
}

// New returns a Store bound to an already-connected db.
func New(db *bun.DB) *Store {
	return &Store{db: db}
}

var _ storage.Adapter = (*Store)(nil)

// Load reads one notebook and its cells, ordered by Position.
func (s *Store) Load(ctx context.Context, notebookID string) (*storage.Notebook, error) {
	model := new(notebookModel)
	err := s.db.NewSelect().
		Model(model).
		Relation("Cells", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("position ASC")
		}).
		Where("nb.id = ?", notebookID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load notebook %s: %w", notebookID, err)
	}

	cells := make([]storage.StoredCell, 0, len(model.Cells))
	for _, c := range model.Cells {
		cells = append(cells, storage.StoredCell{ID: c.ID, Kind: c.Kind, Source: c.Source})
	}

	return &storage.Notebook{
		ID:                 model.ID,
		Name:               model.Name,
		DatabaseConnection: model.DatabaseConnection,
		Cells:              cells,
	}, nil
}

// Save persists nb atomically: notebook metadata upserted, cells smart-
// merged by ID (preserve row identity, update in place, delete removed),
// ordering preserved via Position.
func (s *Store) Save(ctx context.Context, nb *storage.Notebook) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		model := &notebookModel{
			ID:                 nb.ID,
			Name:               nb.Name,
			DatabaseConnection: nb.DatabaseConnection,
			UpdatedAt:          time.Now(),
		}

		_, err := tx.NewInsert().
			Model(model).
			On("CONFLICT (id) DO UPDATE").
			Set("name = EXCLUDED.name").
			Set("database_connection = EXCLUDED.database_connection").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("upsert notebook: %w", err)
		}

		return syncCells(ctx, tx, nb.ID, nb.Cells)
	})
}

// syncCells mirrors WorkflowRepository.syncNodes: diff existing vs.
// incoming by stable ID, update survivors in place, insert new rows,
// delete dropped ones.
func syncCells(ctx context.Context, tx bun.Tx, notebookID string, cells []storage.StoredCell) error {
	var existing []*cellModel
	if err := tx.NewSelect().Model(&existing).Where("notebook_id = ?", notebookID).Scan(ctx); err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("load existing cells: %w", err)
	}

	existingByID := make(map[string]*cellModel, len(existing))
	for _, c := range existing {
		existingByID[c.ID] = c
	}
	incomingByID := make(map[string]bool, len(cells))

	for i, cell := range cells {
		incomingByID[cell.ID] = true
		row := &cellModel{ID: cell.ID, NotebookID: notebookID, Kind: cell.Kind, Source: cell.Source, Position: i}

		if _, exists := existingByID[cell.ID]; exists {
			if _, err := tx.NewUpdate().Model(row).Column("kind", "source", "position").Where("id = ?", cell.ID).Exec(ctx); err != nil {
				return fmt.Errorf("update cell %s: %w", cell.ID, err)
			}
			continue
		}
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("insert cell %s: %w", cell.ID, err)
		}
	}

	for id := range existingByID {
		if !incomingByID[id] {
			if _, err := tx.NewDelete().Model((*cellModel)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
				return fmt.Errorf("delete cell %s: %w", id, err)
			}
		}
	}

	return nil
}
