package kernel

import (
	"context"

	"github.com/carter293/reactive-notebook/pkg/notebook"
	"github.com/carter293/reactive-notebook/pkg/notebook/extractor"
	"github.com/carter293/reactive-notebook/pkg/notebook/graph"
	"github.com/carter293/reactive-notebook/pkg/notebook/pyexec"
	"github.com/carter293/reactive-notebook/pkg/notebook/sqlexec"
)

// registryEntry is what the kernel remembers about a registered cell:
// its current source/kind, needed to detect "edit changed the source"
// on an execute request that omits a register.
type registryEntry struct {
	kind   notebook.CellKind
	source string
}

// Loop is the kernel's single-threaded state machine: {namespace, graph,
// registry}, all owned exclusively by whatever goroutine calls Handle —
// by construction that is one goroutine per kernel process, reading
// requests off the input channel in order.
type Loop struct {
	namespace map[string]any
	graph     *graph.Graph
	registry  map[string]*registryEntry

	py  *pyexec.Executor
	sql *sqlexec.Executor
}

// NewLoop returns an empty kernel state.
func NewLoop() *Loop {
	return &Loop{
		namespace: make(map[string]any),
		graph:     graph.New(),
		registry:  make(map[string]*registryEntry),
		py:        pyexec.New(),
		sql:       sqlexec.New(),
	}
}

// Handle dispatches one request, emitting zero or more responses to emit.
// execute is the only request kind that can emit more than one response.
func (l *Loop) Handle(ctx context.Context, req Request) []Response {
	switch req.Kind {
	case ReqRegister:
		return []Response{l.register(req.CellID, req.Source, req.CellKind)}
	case ReqExecute:
		return l.execute(ctx, req.CellID, req.Source, req.CellKind)
	case ReqDeregister:
		l.graph.RemoveCell(req.CellID)
		delete(l.registry, req.CellID)
		return []Response{{Kind: RespDeregisterResult, CellID: req.CellID}}
	case ReqConfigureDatabase:
		if err := l.sql.Configure(req.ConnectionString); err != nil {
			return []Response{{Kind: RespDatabaseConfigured, Status: "error", Error: err.Error()}}
		}
		return []Response{{Kind: RespDatabaseConfigured, Status: "ok"}}
	case ReqListDependencies:
		return []Response{{Kind: RespGraphQueryResult, CellID: req.CellID, CellIDs: l.graph.DirectDependencies(req.CellID)}}
	case ReqListDependents:
		return []Response{{Kind: RespGraphQueryResult, CellID: req.CellID, CellIDs: l.graph.DirectDependents(req.CellID)}}
	case ReqPreviewCascade:
		return []Response{{Kind: RespGraphQueryResult, CellID: req.CellID, CellIDs: l.graph.CascadeOrder(req.CellID)}}
	default:
		return nil
	}
}

// register implements §4.5's register request: extract, dry-run cycle
// check, and only on success mutate graph + registry.
func (l *Loop) register(cellID, source string, kind notebook.CellKind) Response {
	reads, writes := extractor.Extract(kind, source)

	if hasCycle, path := l.graph.WouldCreateCycle(cellID, reads, writes); hasCycle {
		cycleErr := &notebook.CycleError{Path: path}
		return Response{Kind: RespRegisterResult, CellID: cellID, Status: "error", Cycle: cycleErr.Error()}
	}

	if err := l.graph.UpdateCell(cellID, reads, writes); err != nil {
		return Response{Kind: RespRegisterResult, CellID: cellID, Status: "error", Cycle: err.Error()}
	}
	l.registry[cellID] = &registryEntry{kind: kind, source: source}

	return Response{Kind: RespRegisterResult, CellID: cellID, Status: "ok", Reads: reads, Writes: writes}
}

// execute implements §4.5's execute request and §4.6's cascade
// semantics: an implicit register when the cell is new or its source
// changed, then sequential execution of cascade_order(cellID) with
// blocked-status propagation on upstream error.
func (l *Loop) execute(ctx context.Context, cellID, source string, kind notebook.CellKind) []Response {
	entry, registered := l.registry[cellID]
	if !registered || entry.source != source {
		result := l.register(cellID, source, kind)
		if result.Status == "error" {
			return []Response{{
				Kind:   RespExecutionResult,
				CellID: cellID,
				Result: &notebook.ExecutionResult{CellID: cellID, Status: notebook.StatusError, Error: result.Cycle, IsLast: true},
			}}
		}
	}

	order := l.graph.CascadeOrder(cellID)
	failed := map[string]bool{}

	var responses []Response
	for i, id := range order {
		isLast := i == len(order)-1

		if blockingID, blocked := upstreamFailed(id, order[:i], failed, l.graph); blocked {
			failed[id] = true
			entry := l.registry[id]
			reads, writes := extractor.Extract(entry.kind, entry.source)
			responses = append(responses, Response{
				Kind:   RespExecutionResult,
				CellID: id,
				Result: &notebook.ExecutionResult{
					CellID: id,
					Status: notebook.StatusBlocked,
					Error:  (&notebook.BlockedError{UpstreamCellID: blockingID}).Error(),
					Reads:  reads,
					Writes: writes,
					IsLast: isLast,
				},
			})
			continue
		}

		result := l.runCell(ctx, id)
		if result.Status == notebook.StatusError {
			failed[id] = true
		}
		result.IsLast = isLast
		responses = append(responses, Response{Kind: RespExecutionResult, CellID: id, Result: &result})
	}

	return responses
}

// upstreamFailed reports the first already-processed, transitively-
// depended-on cell of id that previously failed in this cascade, if any.
func upstreamFailed(id string, processed []string, failed map[string]bool, g *graph.Graph) (string, bool) {
	if len(failed) == 0 {
		return "", false
	}
	deps := map[string]bool{}
	var collect func(string)
	collect = func(cur string) {
		for _, p := range g.DirectDependencies(cur) {
			if !deps[p] {
				deps[p] = true
				collect(p)
			}
		}
	}
	collect(id)
	for _, p := range processed {
		if failed[p] && deps[p] {
			return p, true
		}
	}
	return "", false
}

// runCell looks up the registered (source, kind) and invokes the
// matching executor against the shared namespace.
func (l *Loop) runCell(ctx context.Context, cellID string) notebook.ExecutionResult {
	entry := l.registry[cellID]
	reads, writes := extractor.Extract(entry.kind, entry.source)

	var stdout string
	var outputs []notebook.Output
	var errStr string

	switch entry.kind {
	case notebook.KindSQL:
		stdout, outputs, errStr = l.sql.Execute(ctx, entry.source, l.namespace)
	default:
		stdout, outputs, errStr = l.py.Execute(entry.source, l.namespace)
	}

	status := notebook.StatusSuccess
	if errStr != "" {
		status = notebook.StatusError
	}

	return notebook.ExecutionResult{
		CellID:  cellID,
		Status:  status,
		Stdout:  stdout,
		Outputs: outputs,
		Error:   errStr,
		Reads:   reads,
		Writes:  writes,
	}
}
