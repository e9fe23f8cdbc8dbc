// Package orchestrator implements the orchestrator (O): one instance per
// active notebook subscription, owning a kernel subprocess, a
// per-notebook mutual-exclusion region, and the load→mutate→notify flow
// described in spec.md §4.7.
//
// Grounded on mbflow's ExecutionManager.Execute (execution_manager.go):
// load → create/notify-started record → run the engine → update/notify-
// completed record. Generalized from "one workflow run" to "one
// orchestrator instance serving a stream of edit/run/configure requests
// against a long-lived kernel subprocess" and from a single observer
// notify-after-result to a notify-per-cascade-step stream.
package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/carter293/reactive-notebook/internal/kernel"
	"github.com/carter293/reactive-notebook/internal/logger"
	"github.com/carter293/reactive-notebook/internal/observer"
	"github.com/carter293/reactive-notebook/internal/storage"
	"github.com/carter293/reactive-notebook/pkg/notebook"
)

// cellState is the orchestrator's in-memory view of one cell, protected
// by the owning Orchestrator's mu.
type cellState struct {
	kind   notebook.CellKind
	source string
}

// Orchestrator owns one notebook's kernel and in-memory cell list.
// Acquire/release of mu brackets a request's full lifecycle — receive
// through final event dispatched — per spec.md §5.
type Orchestrator struct {
	notebookID string
	store      storage.Adapter
	events     *observer.Manager
	log        *logger.Logger
	reexecFlag string

	mu     sync.Mutex
	kernel *kernel.Process
	name   string
	dbConn string
	order  []string // cell IDs in notebook order
	cells  map[string]*cellState
}

// New returns an Orchestrator for notebookID with no kernel spawned yet;
// Load spawns it.
func New(notebookID string, store storage.Adapter, events *observer.Manager, log *logger.Logger, reexecFlag string) *Orchestrator {
	return &Orchestrator{
		notebookID: notebookID,
		store:      store,
		events:     events,
		log:        log,
		reexecFlag: reexecFlag,
		cells:      make(map[string]*cellState),
	}
}

// Load is called on first subscription: spawn the kernel, read the
// notebook from storage, and register every cell in order so the kernel
// has a complete graph before any run.
func (o *Orchestrator) Load(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	proc, err := kernel.Spawn(o.reexecFlag)
	if err != nil {
		return fmt.Errorf("spawn kernel for notebook %s: %w", o.notebookID, err)
	}
	o.kernel = proc

	nb, err := o.store.Load(ctx, o.notebookID)
	if err != nil {
		return fmt.Errorf("load notebook %s: %w", o.notebookID, err)
	}
	o.name = nb.Name
	o.dbConn = nb.DatabaseConnection

	if o.dbConn != "" {
		if err := o.kernel.Send(kernel.Request{Kind: kernel.ReqConfigureDatabase, ConnectionString: o.dbConn}); err != nil {
			return fmt.Errorf("configure database for notebook %s: %w", o.notebookID, err)
		}
		<-o.kernel.Responses()
	}

	for _, cell := range nb.Cells {
		kind := notebook.CellKind(cell.Kind)
		o.cells[cell.ID] = &cellState{kind: kind, source: cell.Source}
		o.order = append(o.order, cell.ID)

		if err := o.kernel.Send(kernel.Request{Kind: kernel.ReqRegister, CellID: cell.ID, Source: cell.Source, CellKind: kind}); err != nil {
			return fmt.Errorf("register cell %s: %w", cell.ID, err)
		}
		resp := <-o.kernel.Responses()
		o.publishRegisterResult(ctx, resp)
	}

	return nil
}

// Edit updates a cell's source: in-memory, persisted, then registered
// with the kernel. A cycle leaves the cell's previous registration
// intact and does not broadcast cell_updated.
func (o *Orchestrator) Edit(ctx context.Context, cellID string, kind notebook.CellKind, source string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	_, known := o.cells[cellID]
	if !known {
		o.order = append(o.order, cellID)
	}
	o.cells[cellID] = &cellState{kind: kind, source: source}

	if err := o.persistLocked(ctx); err != nil {
		return err
	}

	if !known {
		o.events.Publish(ctx, observer.Event{
			Type:       observer.EventCellCreated,
			NotebookID: o.notebookID,
			CellID:     cellID,
			Kind:       kind,
			Source:     source,
			Index:      len(o.order) - 1,
		})
	}

	if err := o.kernel.Send(kernel.Request{Kind: kernel.ReqRegister, CellID: cellID, Source: source, CellKind: kind}); err != nil {
		return err
	}
	resp := <-o.kernel.Responses()
	o.publishRegisterResult(ctx, resp)
	return nil
}

// Deregister removes a cell from the graph and registry and persists the
// notebook's remaining cell list. The namespace is not pruned, matching
// spec.md §4.5.
func (o *Orchestrator) Deregister(ctx context.Context, cellID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.cells, cellID)
	for i, id := range o.order {
		if id == cellID {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}

	if err := o.persistLocked(ctx); err != nil {
		return err
	}

	if err := o.kernel.Send(kernel.Request{Kind: kernel.ReqDeregister, CellID: cellID}); err != nil {
		return err
	}
	<-o.kernel.Responses()

	o.events.Publish(ctx, observer.Event{Type: observer.EventCellDeleted, NotebookID: o.notebookID, CellID: cellID})
	return nil
}

// Run executes cellID's cascade, streaming each execution_result out to
// subscribers as it arrives; it returns once the is_last result has been
// published.
func (o *Orchestrator) Run(ctx context.Context, cellID string, kind notebook.CellKind, source string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.cells[cellID] = &cellState{kind: kind, source: source}

	if err := o.kernel.Send(kernel.Request{Kind: kernel.ReqExecute, CellID: cellID, Source: source, CellKind: kind}); err != nil {
		return err
	}

	for resp := range o.kernel.Responses() {
		if resp.Kind != kernel.RespExecutionResult || resp.Result == nil {
			continue
		}
		o.publishExecutionResult(ctx, resp.Result)
		if resp.Result.IsLast {
			break
		}
	}
	return nil
}

// ConfigureDatabase rebinds the notebook's SQL connection string.
func (o *Orchestrator) ConfigureDatabase(ctx context.Context, connString string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.dbConn = connString
	if err := o.persistLocked(ctx); err != nil {
		return err
	}

	if err := o.kernel.Send(kernel.Request{Kind: kernel.ReqConfigureDatabase, ConnectionString: connString}); err != nil {
		return err
	}
	resp := <-o.kernel.Responses()

	status := "ok"
	errStr := ""
	if resp.Status == "error" {
		status = "error"
		errStr = resp.Error
	}
	o.events.Publish(ctx, observer.Event{Type: observer.EventDatabaseConfigured, NotebookID: o.notebookID, Status: notebook.Status(status), Error: errStr})
	return nil
}

// ListDependencies returns the cells cellID directly reads a variable
// from, in registration order.
func (o *Orchestrator) ListDependencies(cellID string) ([]string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.graphQuery(kernel.ReqListDependencies, cellID)
}

// ListDependents returns the cells that directly read a variable cellID
// writes, in registration order.
func (o *Orchestrator) ListDependents(cellID string) ([]string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.graphQuery(kernel.ReqListDependents, cellID)
}

// PreviewCascade returns cascade_order(cellID) without executing
// anything, so a caller can show "these N cells will re-run" ahead of a
// confirmed edit.
func (o *Orchestrator) PreviewCascade(cellID string) ([]string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.graphQuery(kernel.ReqPreviewCascade, cellID)
}

// graphQuery round-trips a read-only graph question to the kernel
// subprocess, which is the sole owner of the dependency graph. Callers
// hold o.mu.
func (o *Orchestrator) graphQuery(kind kernel.RequestKind, cellID string) ([]string, error) {
	if err := o.kernel.Send(kernel.Request{Kind: kind, CellID: cellID}); err != nil {
		return nil, err
	}
	resp := <-o.kernel.Responses()
	return resp.CellIDs, nil
}

// Shutdown tears down the kernel subprocess; callers invoke this after
// the last subscriber for this notebook disconnects.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.kernel == nil {
		return nil
	}
	return o.kernel.Shutdown(ctx)
}

func (o *Orchestrator) persistLocked(ctx context.Context) error {
	nb := &storage.Notebook{ID: o.notebookID, Name: o.name, DatabaseConnection: o.dbConn}
	for _, id := range o.order {
		cell := o.cells[id]
		nb.Cells = append(nb.Cells, storage.StoredCell{ID: id, Kind: string(cell.kind), Source: cell.source})
	}
	return o.store.Save(ctx, nb)
}

func (o *Orchestrator) publishRegisterResult(ctx context.Context, resp kernel.Response) {
	status := notebook.StatusIdle
	errStr := ""
	if resp.Status == "error" {
		status = notebook.StatusBlocked
		errStr = resp.Cycle
	}
	o.events.Publish(ctx, observer.Event{
		Type:       observer.EventCellRegistered,
		NotebookID: o.notebookID,
		CellID:     resp.CellID,
		Status:     status,
		Reads:      resp.Reads,
		Writes:     resp.Writes,
		Error:      errStr,
	})
}

func (o *Orchestrator) publishExecutionResult(ctx context.Context, result *notebook.ExecutionResult) {
	o.events.Publish(ctx, observer.Event{Type: observer.EventCellStatus, NotebookID: o.notebookID, CellID: result.CellID, Status: result.Status})

	if result.Stdout != "" {
		o.events.Publish(ctx, observer.Event{Type: observer.EventCellStdout, NotebookID: o.notebookID, CellID: result.CellID, Stdout: result.Stdout})
	}
	for _, output := range result.Outputs {
		out := output
		o.events.Publish(ctx, observer.Event{Type: observer.EventCellOutput, NotebookID: o.notebookID, CellID: result.CellID, Output: &out})
	}
	if result.Status == notebook.StatusError || result.Status == notebook.StatusBlocked {
		o.events.Publish(ctx, observer.Event{Type: observer.EventCellError, NotebookID: o.notebookID, CellID: result.CellID, Error: result.Error})
	}
}
