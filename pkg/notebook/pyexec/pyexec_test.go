package pyexec

import (
	"strings"
	"testing"
)

func TestExecutor_AssignAndTrailingExpression(t *testing.T) {
	t.Parallel()
	e := New()
	ns := map[string]any{}

	stdout, outputs, errStr := e.Execute("x = 1\nx + 1", ns)
	if errStr != "" {
		t.Fatalf("unexpected error: %s", errStr)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if len(outputs) != 1 {
		t.Fatalf("expected 1 output, got %d", len(outputs))
	}
	if outputs[0].MIMEType != "text/plain" {
		t.Errorf("expected text/plain output, got %s", outputs[0].MIMEType)
	}
	if ns["x"] != float64(1) {
		t.Errorf("expected namespace x=1, got %v", ns["x"])
	}
}

func TestExecutor_PrintCapturesStdout(t *testing.T) {
	t.Parallel()
	e := New()
	ns := map[string]any{}

	stdout, _, errStr := e.Execute(`print("hello")`, ns)
	if errStr != "" {
		t.Fatalf("unexpected error: %s", errStr)
	}
	if strings.TrimSpace(stdout) != "hello" {
		t.Errorf("expected stdout %q, got %q", "hello", stdout)
	}
}

func TestExecutor_AugAssignRequiresExistingBinding(t *testing.T) {
	t.Parallel()
	e := New()
	ns := map[string]any{}

	_, _, errStr := e.Execute("x += 1", ns)
	if errStr == "" {
		t.Fatal("expected a NameError for undefined augmented-assignment target")
	}
}

func TestExecutor_AugAssignOnExistingNumber(t *testing.T) {
	t.Parallel()
	e := New()
	ns := map[string]any{"x": float64(1)}

	_, _, errStr := e.Execute("x += 1", ns)
	if errStr != "" {
		t.Fatalf("unexpected error: %s", errStr)
	}
	if ns["x"] != float64(2) {
		t.Errorf("expected x=2, got %v", ns["x"])
	}
}

func TestExecutor_NamespacePersistsAcrossCalls(t *testing.T) {
	t.Parallel()
	e := New()
	ns := map[string]any{}

	if _, _, errStr := e.Execute("x = 5", ns); errStr != "" {
		t.Fatalf("unexpected error: %s", errStr)
	}
	_, outputs, errStr := e.Execute("x", ns)
	if errStr != "" {
		t.Fatalf("unexpected error: %s", errStr)
	}
	if len(outputs) != 1 {
		t.Fatalf("expected 1 output, got %d", len(outputs))
	}
}

func TestExecutor_SyntaxErrorDoesNotMutateNamespace(t *testing.T) {
	t.Parallel()
	e := New()
	ns := map[string]any{"x": float64(1)}

	_, outputs, errStr := e.Execute("    bad indent", ns)
	if errStr == "" {
		t.Fatal("expected a syntax error")
	}
	if outputs != nil {
		t.Errorf("expected no outputs, got %v", outputs)
	}
	if ns["x"] != float64(1) {
		t.Errorf("namespace should be untouched, got %v", ns["x"])
	}
}

func TestExecutor_ExceptionStopsAfterLeadingStatements(t *testing.T) {
	t.Parallel()
	e := New()
	ns := map[string]any{}

	stdout, _, errStr := e.Execute("print(\"before\")\nundefined_name + 1", ns)
	if errStr == "" {
		t.Fatal("expected an error for an undefined name")
	}
	if strings.TrimSpace(stdout) != "before" {
		t.Errorf("expected stdout captured before the failure, got %q", stdout)
	}
}

func TestExecutor_TrailingNoneProducesNoOutput(t *testing.T) {
	t.Parallel()
	e := New()
	ns := map[string]any{}

	_, outputs, errStr := e.Execute("None", ns)
	if errStr != "" {
		t.Fatalf("unexpected error: %s", errStr)
	}
	if outputs != nil {
		t.Errorf("expected no outputs for a None trailing expression, got %v", outputs)
	}
}
