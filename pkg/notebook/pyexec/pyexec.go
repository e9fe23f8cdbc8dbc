// Package pyexec implements the python half of the Code Executor (L4):
// compiling and running the statement subset pyparse splits out against a
// namespace shared across cells, using expr-lang/expr as the expression
// engine for right-hand sides and the trailing expression.
//
// Grounded on mbflow's condition_cache.go: the same compiled-program LRU
// shape, generalized from a single boolean condition per edge to one
// expression per statement.
package pyexec

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/carter293/reactive-notebook/pkg/notebook"
	"github.com/carter293/reactive-notebook/pkg/notebook/mimeconv"
	"github.com/carter293/reactive-notebook/pkg/notebook/pyparse"
)

// nullSentinel stands in for Python's None: a trailing expression that
// evaluates to it produces no output, per spec.
type nullSentinel struct{}

// None is the namespace-visible sentinel value.
var None = nullSentinel{}

// Executor runs python cells against a namespace that persists across
// Execute calls, caching compiled expression programs by source text.
type Executor struct {
	cache *programCache
}

// New returns an Executor with a default-sized program cache.
func New() *Executor {
	return &Executor{cache: newProgramCache(256)}
}

// Execute runs source against namespace, mutating it in place, and
// returns the stdout captured, the outputs produced by the trailing
// expression (if any), and a formatted error string (empty on success).
// Namespace mutations from leading statements persist even if a later
// statement fails; the caller (kernel loop) is responsible for marking
// the result erroneous and blocking dependents.
func (e *Executor) Execute(source string, namespace map[string]any) (stdout string, outputs []notebook.Output, errStr string) {
	stmts, err := pyparse.Parse(source)
	if err != nil {
		return "", nil, fmt.Sprintf("SyntaxError: %v", err)
	}

	var out strings.Builder
	env := newEnv(namespace, &out)

	leading := stmts
	var trailing *pyparse.Statement
	if n := len(stmts); n > 0 && stmts[n-1].Kind == pyparse.StmtExpr {
		trailing = &stmts[n-1]
		leading = stmts[:n-1]
	}

	for _, stmt := range leading {
		if err := e.execStatement(stmt, namespace, env); err != nil {
			return out.String(), nil, formatException(err)
		}
	}

	if trailing != nil {
		val, err := e.evalExpr(trailing.Expr, env)
		if err != nil {
			return out.String(), nil, formatException(err)
		}
		if _, isNone := val.(nullSentinel); !isNone && val != nil {
			if o := mimeconv.Convert(val); o != nil {
				outputs = append(outputs, *o)
			}
		}
	}

	return out.String(), outputs, ""
}

// execStatement runs one leading statement against namespace/env.
// Function and class definitions are registered as opaque unrecursed
// names only (matching the extractor's treatment); calling them back out
// of the namespace is not supported by this subset.
func (e *Executor) execStatement(stmt pyparse.Statement, namespace map[string]any, env map[string]any) error {
	switch stmt.Kind {
	case pyparse.StmtAssign:
		val, err := e.evalExpr(stmt.Expr, env)
		if err != nil {
			return err
		}
		assignTargets(stmt.Targets, val, namespace, env)
		return nil

	case pyparse.StmtAugAssign:
		cur, ok := namespace[stmt.Targets[0]]
		if !ok {
			return fmt.Errorf("NameError: name %q is not defined", stmt.Targets[0])
		}
		rhs, err := e.evalExpr(stmt.Expr, env)
		if err != nil {
			return err
		}
		combined, err := applyAugOp(stmt.AugOp, cur, rhs)
		if err != nil {
			return err
		}
		namespace[stmt.Targets[0]] = combined
		env[stmt.Targets[0]] = combined
		return nil

	case pyparse.StmtImport, pyparse.StmtFromImport:
		for _, name := range stmt.Targets {
			namespace[name] = None
			env[name] = None
		}
		return nil

	case pyparse.StmtFuncDef, pyparse.StmtClassDef:
		namespace[stmt.Name] = stmt.Raw
		env[stmt.Name] = stmt.Raw
		return nil

	case pyparse.StmtExpr:
		_, err := e.evalExpr(stmt.Expr, env)
		return err

	default:
		return nil
	}
}

func assignTargets(targets []string, val any, namespace map[string]any, env map[string]any) {
	if len(targets) == 1 {
		namespace[targets[0]] = val
		env[targets[0]] = val
		return
	}
	// Tuple/chained assignment: a slice-like value is unpacked positionally;
	// anything else (chained "a = b = expr") binds the same value to all.
	if tuple, ok := val.([]any); ok && len(tuple) == len(targets) {
		for i, t := range targets {
			namespace[t] = tuple[i]
			env[t] = tuple[i]
		}
		return
	}
	for _, t := range targets {
		namespace[t] = val
		env[t] = val
	}
}

func (e *Executor) evalExpr(source string, env map[string]any) (any, error) {
	program, err := e.cache.compile(source, env)
	if err != nil {
		return nil, fmt.Errorf("NameError: %w", err)
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("RuntimeError: %w", err)
	}
	return result, nil
}

func formatException(err error) string {
	return err.Error()
}

func applyAugOp(op string, cur, rhs any) (any, error) {
	curF, curIsNum := asFloat(cur)
	rhsF, rhsIsNum := asFloat(rhs)
	if op == "+=" {
		if curS, ok := cur.(string); ok {
			if rhsS, ok := rhs.(string); ok {
				return curS + rhsS, nil
			}
		}
	}
	if !curIsNum || !rhsIsNum {
		return nil, fmt.Errorf("TypeError: unsupported operand type for %s", op)
	}
	switch op {
	case "+=":
		return curF + rhsF, nil
	case "-=":
		return curF - rhsF, nil
	case "*=":
		return curF * rhsF, nil
	case "/=":
		return curF / rhsF, nil
	case "//=":
		return float64(int64(curF / rhsF)), nil
	case "%=":
		return float64(int64(curF) % int64(rhsF)), nil
	case "**=":
		result := 1.0
		for i := int64(0); i < int64(rhsF); i++ {
			result *= curF
		}
		return result, nil
	default:
		return nil, fmt.Errorf("TypeError: unsupported operator %s", op)
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
