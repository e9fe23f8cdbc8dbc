// Package extractor computes, from a cell's source text, the set of
// module-level variable reads and writes used to derive dependency edges.
// Extraction never fails: an unparseable cell yields empty reads/writes
// and the syntax error is left to surface at execution time.
package extractor

import "github.com/carter293/reactive-notebook/pkg/notebook/pyparse"

// Python returns the module-level reads and writes for a Python cell, in
// first-occurrence order. A name already written earlier in the same cell
// shadows later references to it (they resolve locally, not to another
// cell) — except for the implicit read an augmented assignment makes of
// its own target.
func Python(source string) (reads, writes []string) {
	stmts, err := pyparse.Parse(source)
	if err != nil {
		return nil, nil
	}

	writesSoFar := map[string]bool{}
	writesSeen := map[string]bool{}
	readsSeen := map[string]bool{}

	addWrite := func(name string) {
		if name == "" {
			return
		}
		writesSoFar[name] = true
		if !writesSeen[name] {
			writesSeen[name] = true
			writes = append(writes, name)
		}
	}
	addRead := func(name string) {
		if name == "" || writesSoFar[name] {
			return
		}
		if !readsSeen[name] {
			readsSeen[name] = true
			reads = append(reads, name)
		}
	}
	addReadForce := func(name string) {
		if name == "" {
			return
		}
		if !readsSeen[name] {
			readsSeen[name] = true
			reads = append(reads, name)
		}
	}

	for _, stmt := range stmts {
		switch stmt.Kind {
		case pyparse.StmtAssign:
			for _, id := range pyparse.Identifiers(stmt.Expr) {
				addRead(id)
			}
			for _, t := range stmt.Targets {
				addWrite(t)
			}
		case pyparse.StmtAugAssign:
			for _, t := range stmt.Targets {
				addReadForce(t)
			}
			for _, id := range pyparse.Identifiers(stmt.Expr) {
				addRead(id)
			}
			for _, t := range stmt.Targets {
				addWrite(t)
			}
		case pyparse.StmtImport, pyparse.StmtFromImport:
			for _, t := range stmt.Targets {
				addWrite(t)
			}
		case pyparse.StmtFuncDef, pyparse.StmtClassDef:
			addWrite(stmt.Name)
		case pyparse.StmtExpr:
			for _, id := range pyparse.Identifiers(stmt.Expr) {
				addRead(id)
			}
		}
	}

	return reads, writes
}
