// Package observer fans notebook events out to every live subscriber of
// a notebook, non-blocking and per-subscriber panic-isolated.
//
// Generalized from mbflow's internal/application/observer package: that
// package's Observer/Manager pair fans workflow-execution events
// (execution.started, node.completed, ...) out to named Observer
// implementations with optional event-type/node-ID filters. A notebook
// subscriber is a live WebSocket connection wanting every event for one
// notebook, so the per-event filter chain (EventTypeFilter, NodeIDFilter,
// CompoundEventFilter) has no role here and is dropped; the
// goroutine-per-observer dispatch with panic recovery is kept as-is.
package observer

import "github.com/carter293/reactive-notebook/pkg/notebook"

// EventType tags the shape of one notebook event, matching spec.md §6's
// subscription adapter.
type EventType string

const (
	EventCellRegistered     EventType = "cell_registered"
	EventCellStatus         EventType = "cell_status"
	EventCellStdout         EventType = "cell_stdout"
	EventCellOutput         EventType = "cell_output"
	EventCellError          EventType = "cell_error"
	EventCellCreated        EventType = "cell_created"
	EventCellDeleted        EventType = "cell_deleted"
	EventDatabaseConfigured EventType = "database_configured"
)

// Event is one notebook-scoped occurrence broadcast to all of that
// notebook's current subscribers.
type Event struct {
	Type       EventType `json:"type"`
	NotebookID string    `json:"notebook_id"`
	CellID     string    `json:"cell_id,omitempty"`

	Status notebook.Status `json:"status,omitempty"`
	Reads  []string        `json:"reads,omitempty"`
	Writes []string        `json:"writes,omitempty"`
	Error  string          `json:"error,omitempty"`

	Stdout string          `json:"stdout,omitempty"`
	Output *notebook.Output `json:"output,omitempty"`

	Kind   notebook.CellKind `json:"kind,omitempty"`
	Source string            `json:"source,omitempty"`
	Index  int               `json:"index,omitempty"`
}
