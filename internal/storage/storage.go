// Package storage defines the persistence boundary the orchestrator
// writes through (spec.md §6's storage adapter), independent of any one
// backend. bunstore is the Bun/Postgres implementation the server wires
// by default.
package storage

import "context"

// StoredCell is one persisted cell, ordered within its notebook.
type StoredCell struct {
	ID     string
	Kind   string
	Source string
}

// Notebook is the full persisted state of one notebook.
type Notebook struct {
	ID                 string
	Name               string
	DatabaseConnection string
	Cells              []StoredCell
}

// Adapter is the durable per-notebook read/write boundary. Writes are
// atomic per notebook and preserve cell ordering, per spec.md §6.
type Adapter interface {
	Load(ctx context.Context, notebookID string) (*Notebook, error)
	Save(ctx context.Context, nb *Notebook) error
}
