package extractor

import "github.com/carter293/reactive-notebook/internal/sqltemplate"

// SQL returns the `{name}` references in a SQL cell as reads, in
// first-occurrence order. SQL cells never write module-level variables.
func SQL(source string) (reads, writes []string) {
	return sqltemplate.Names(source), nil
}
