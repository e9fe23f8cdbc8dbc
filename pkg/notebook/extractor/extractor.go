package extractor

import "github.com/carter293/reactive-notebook/pkg/notebook"

// Extract dispatches to the Python or SQL extractor by the cell's kind.
// A two-variant tagged dispatch is preferred here over an interface with
// one implementation per kind — there are exactly two kinds and they are
// never extended at runtime.
func Extract(kind notebook.CellKind, source string) (reads, writes []string) {
	switch kind {
	case notebook.KindSQL:
		return SQL(source)
	default:
		return Python(source)
	}
}
