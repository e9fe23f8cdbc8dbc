package kernel

import (
	"context"
	"testing"

	"github.com/carter293/reactive-notebook/pkg/notebook"
)

func TestLoop_RegisterThenExecute(t *testing.T) {
	t.Parallel()
	l := NewLoop()

	regResp := l.Handle(context.Background(), Request{Kind: ReqRegister, CellID: "a", Source: "x = 1", CellKind: notebook.KindPython})
	if len(regResp) != 1 || regResp[0].Status != "ok" {
		t.Fatalf("expected ok register, got %+v", regResp)
	}

	execResp := l.Handle(context.Background(), Request{Kind: ReqExecute, CellID: "a", Source: "x = 1", CellKind: notebook.KindPython})
	if len(execResp) != 1 {
		t.Fatalf("expected 1 execution_result, got %d", len(execResp))
	}
	if execResp[0].Result.Status != notebook.StatusSuccess {
		t.Errorf("expected success, got %s: %s", execResp[0].Result.Status, execResp[0].Result.Error)
	}
	if !execResp[0].Result.IsLast {
		t.Error("single-cell cascade should be is_last")
	}
}

func TestLoop_RegisterCycleLeavesGraphUntouched(t *testing.T) {
	t.Parallel()
	l := NewLoop()

	l.Handle(context.Background(), Request{Kind: ReqRegister, CellID: "a", Source: "b + 1", CellKind: notebook.KindPython})
	l.Handle(context.Background(), Request{Kind: ReqRegister, CellID: "b", Source: "b = a", CellKind: notebook.KindPython})
	// a reads b (no writer yet), b writes b reading a: once a writes a binding
	// named "a", a cycle a->b->a would form if a also wrote "a".
	resp := l.Handle(context.Background(), Request{Kind: ReqRegister, CellID: "a", Source: "a = b + 1", CellKind: notebook.KindPython})
	if len(resp) != 1 || resp[0].Status != "error" {
		t.Fatalf("expected cycle error, got %+v", resp)
	}
	if resp[0].Cycle == "" {
		t.Error("expected a non-empty cycle description")
	}
	// a's previous registration (reads b, writes nothing) must still hold,
	// so nothing depends on a.
	deps := l.Handle(context.Background(), Request{Kind: ReqListDependents, CellID: "a"})
	if len(deps) != 1 || len(deps[0].CellIDs) != 0 {
		t.Errorf("expected a to keep its previous registration with no dependents, got %+v", deps)
	}
}

func TestLoop_CascadeBlocksDownstreamOnFailure(t *testing.T) {
	t.Parallel()
	l := NewLoop()

	l.Handle(context.Background(), Request{Kind: ReqRegister, CellID: "a", Source: "a = undefined_name", CellKind: notebook.KindPython})
	l.Handle(context.Background(), Request{Kind: ReqRegister, CellID: "b", Source: "b = a + 1", CellKind: notebook.KindPython})

	resp := l.Handle(context.Background(), Request{Kind: ReqExecute, CellID: "a", Source: "a = undefined_name", CellKind: notebook.KindPython})
	if len(resp) != 2 {
		t.Fatalf("expected 2 execution_results, got %d", len(resp))
	}
	if resp[0].Result.Status != notebook.StatusError {
		t.Errorf("expected cell a to error, got %s", resp[0].Result.Status)
	}
	if resp[1].Result.Status != notebook.StatusBlocked {
		t.Errorf("expected cell b to be blocked, got %s", resp[1].Result.Status)
	}
	if !resp[1].Result.IsLast {
		t.Error("last cell in cascade should be is_last")
	}
}

func TestLoop_DeregisterRemovesFromGraph(t *testing.T) {
	t.Parallel()
	l := NewLoop()

	l.Handle(context.Background(), Request{Kind: ReqRegister, CellID: "a", Source: "x = 1", CellKind: notebook.KindPython})
	resp := l.Handle(context.Background(), Request{Kind: ReqDeregister, CellID: "a"})
	if len(resp) != 1 || resp[0].Kind != RespDeregisterResult {
		t.Fatalf("expected deregister_result, got %+v", resp)
	}

	execResp := l.Handle(context.Background(), Request{Kind: ReqExecute, CellID: "a", Source: "x = 2", CellKind: notebook.KindPython})
	if len(execResp) != 1 || execResp[0].Result.Status != notebook.StatusSuccess {
		t.Fatalf("expected a fresh implicit register+execute to succeed, got %+v", execResp)
	}
}

func TestLoop_ConfigureDatabaseWithEmptyDSNReportsOK(t *testing.T) {
	t.Parallel()
	l := NewLoop()

	resp := l.Handle(context.Background(), Request{Kind: ReqConfigureDatabase, ConnectionString: ""})
	if len(resp) != 1 || resp[0].Status != "ok" {
		t.Fatalf("expected ok for clearing the connection string, got %+v", resp)
	}
}
