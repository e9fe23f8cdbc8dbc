package notebook

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors, grouped by the component that raises them.

var (
	// Graph errors
	ErrCellNotFound      = errors.New("cell not found")
	ErrCyclicDependency  = errors.New("cyclic dependency")

	// Executor errors
	ErrNoDatabaseConfigured = errors.New("no database configured")
	ErrMissingVariable      = errors.New("variable not defined")

	// Kernel errors
	ErrKernelLost = errors.New("kernel lost")
)

// CycleError carries one example cycle path for user display, per the
// graph's dry-run cycle check.
type CycleError struct {
	Path []string // e.g. ["b", "a", "b"]
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle: %s", strings.Join(e.Path, " → "))
}

func (e *CycleError) Unwrap() error {
	return ErrCyclicDependency
}

// MissingVariableError names the first SQL template variable absent from
// the namespace; no connection is opened when this is returned.
type MissingVariableError struct {
	Name string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("variable %q not defined", e.Name)
}

func (e *MissingVariableError) Unwrap() error {
	return ErrMissingVariable
}

// BlockedError marks a cell skipped because an upstream dependency in the
// same cascade failed.
type BlockedError struct {
	UpstreamCellID string
}

func (e *BlockedError) Error() string {
	return "upstream dependency failed"
}
