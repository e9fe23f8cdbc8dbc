package bunstore

import (
	"time"

	"github.com/uptrace/bun"
)

// notebookModel is the persisted row for one notebook. Two-table layout
// (notebook, notebook_cell) mirrors mbflow's workflow/node split, narrowed
// from a graph-with-edges schema to an ordered cell list — a notebook's
// edges are derived at load time by the kernel's register calls, never
// stored.
type notebookModel struct {
	bun.BaseModel `bun:"table:notebooks,alias:nb"`

	ID                 string    `bun:"id,pk"`
	Name               string    `bun:"name,notnull"`
	DatabaseConnection string    `bun:"database_connection"`
	CreatedAt          time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt          time.Time `bun:"updated_at,notnull,default:current_timestamp"`

	Cells []*cellModel `bun:"rel:has-many,join:id=notebook_id"`
}

// cellModel is one persisted cell row, ordered within its notebook by
// Position.
type cellModel struct {
	bun.BaseModel `bun:"table:notebook_cells,alias:c"`

	ID         string `bun:"id,pk"`
	NotebookID string `bun:"notebook_id,notnull"`
	Kind       string `bun:"kind,notnull"`
	Source     string `bun:"source,notnull"`
	Position   int    `bun:"position,notnull"`
}
