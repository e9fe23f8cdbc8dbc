// Package sqlexec implements the sql half of the Code Executor (L4):
// `{name}` substitution against the shared namespace followed by
// execution through mbflow's own Postgres stack (uptrace/bun +
// pgdialect + pgdriver), grounded on
// internal/infrastructure/storage's sql.OpenDB(pgdriver.NewConnector)
// + bun.NewDB(sqldb, pgdialect.New()) connection pattern.
package sqlexec

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/carter293/reactive-notebook/internal/sqltemplate"
	"github.com/carter293/reactive-notebook/pkg/notebook"
)

// Executor runs sql cells against a single configured database
// connection. Rebinding the connection string closes the old pool and
// opens and pings the new one at once, inside Configure.
type Executor struct {
	dsn string
	db  *bun.DB
}

// New returns an Executor with no database configured.
func New() *Executor {
	return &Executor{}
}

// Configure rebinds the connection string. An empty dsn clears it,
// putting the executor back into the "no database configured" state.
func (e *Executor) Configure(dsn string) error {
	if e.db != nil {
		_ = e.db.Close()
		e.db = nil
	}
	e.dsn = dsn
	if dsn == "" {
		return nil
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	e.db = bun.NewDB(sqldb, pgdialect.New())
	return e.db.Ping()
}

// Execute runs source against namespace per spec: missing connection and
// missing-variable errors are checked before anything touches the wire.
func (e *Executor) Execute(ctx context.Context, source string, namespace map[string]any) (stdout string, outputs []notebook.Output, errStr string) {
	if e.db == nil {
		return "", nil, "no database configured"
	}

	if name, missing := sqltemplate.MissingName(source, namespace); missing {
		return "", nil, (&notebook.MissingVariableError{Name: name}).Error()
	}

	query := sqltemplate.Substitute(source, namespace)

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return "", nil, err.Error()
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return "", nil, err.Error()
	}

	var resultRows [][]any
	for rows.Next() {
		scanDest := make([]any, len(columns))
		scanPtrs := make([]any, len(columns))
		for i := range scanDest {
			scanPtrs[i] = &scanDest[i]
		}
		if err := rows.Scan(scanPtrs...); err != nil {
			return "", nil, err.Error()
		}
		resultRows = append(resultRows, normalizeRow(scanDest))
	}
	if err := rows.Err(); err != nil {
		return "", nil, err.Error()
	}

	if len(resultRows) == 0 {
		return "0 rows returned", nil, ""
	}

	return "", []notebook.Output{{
		MIMEType: "application/json",
		Data: map[string]any{
			"type":    "table",
			"columns": columns,
			"rows":    resultRows,
		},
	}}, ""
}

// normalizeRow converts driver-native byte slices (pgdriver returns text
// values as []byte for some types) into strings so the table output
// serializes to readable JSON rather than base64.
func normalizeRow(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		if b, ok := v.([]byte); ok {
			out[i] = string(b)
			continue
		}
		out[i] = v
	}
	return out
}
