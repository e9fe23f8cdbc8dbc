// Package kernel implements the kernel process (K): a single-threaded
// loop owning {namespace, graph, registry} for one notebook, isolated
// from the orchestrator host by running as a separate OS process so a
// runaway user cell freezes only its own notebook.
//
// Grounded on the self-reexec idiom mbflow itself does not use (mbflow's
// engine runs in-process) but that the example pack's other infra tools
// rely on for subprocess isolation: the same binary re-invoked with a
// hidden flag, talking newline-delimited JSON over stdin/stdout instead
// of in-process Go channels.
package kernel

import "github.com/carter293/reactive-notebook/pkg/notebook"

// RequestKind tags the shape of one message sent to the kernel.
type RequestKind string

const (
	ReqRegister          RequestKind = "register"
	ReqExecute           RequestKind = "execute"
	ReqDeregister        RequestKind = "deregister"
	ReqConfigureDatabase RequestKind = "configure_database"
	ReqShutdown          RequestKind = "shutdown"
	ReqListDependencies  RequestKind = "list_dependencies"
	ReqListDependents    RequestKind = "list_dependents"
	ReqPreviewCascade    RequestKind = "preview_cascade"
)

// Request is one message on the input channel.
type Request struct {
	Kind             RequestKind      `json:"kind"`
	CellID           string           `json:"cell_id,omitempty"`
	Source           string           `json:"source,omitempty"`
	CellKind         notebook.CellKind `json:"cell_kind,omitempty"`
	ConnectionString string           `json:"connection_string,omitempty"`
}

// ResponseKind tags the shape of one message emitted by the kernel.
type ResponseKind string

const (
	RespRegisterResult     ResponseKind = "register_result"
	RespExecutionResult    ResponseKind = "execution_result"
	RespDeregisterResult   ResponseKind = "deregister_result"
	RespDatabaseConfigured ResponseKind = "database_configured"
	RespGraphQueryResult   ResponseKind = "graph_query_result"
)

// Response is one message on the output channel.
type Response struct {
	Kind   ResponseKind `json:"kind"`
	CellID string       `json:"cell_id,omitempty"`

	// register_result
	Status string   `json:"status,omitempty"` // "ok" | "error"
	Reads  []string `json:"reads,omitempty"`
	Writes []string `json:"writes,omitempty"`
	Cycle  string   `json:"cycle,omitempty"`

	// execution_result
	Result *notebook.ExecutionResult `json:"result,omitempty"`

	// database_configured
	Error string `json:"error,omitempty"`

	// graph_query_result: list_dependencies, list_dependents, preview_cascade
	CellIDs []string `json:"cell_ids,omitempty"`
}
