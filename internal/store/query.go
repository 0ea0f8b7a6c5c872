package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/roach88/sqliteurl/internal/ir"
	"github.com/roach88/sqliteurl/internal/queryir"
	"github.com/roach88/sqliteurl/internal/querysql"
)

// Result is a fully read query result.
type Result struct {
	Columns []string
	Rows    []ir.List
}

// Objects returns each row as an object keyed by column name.
func (r Result) Objects() ir.List {
	out := make(ir.List, len(r.Rows))
	for i, row := range r.Rows {
		obj := make(ir.Object, len(r.Columns))
		for j, col := range r.Columns {
			obj[col] = row[j]
		}
		out[i] = obj
	}
	return out
}

// Digest fingerprints the row values. Column names do not contribute.
func (r Result) Digest() (string, error) {
	rows := make(ir.List, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = row
	}
	return ir.ResultDigest(rows)
}

// Run compiles q and executes it.
func (s *Store) Run(ctx context.Context, q queryir.Query) (Result, error) {
	stmt, params, err := querysql.NewSQLCompiler().Compile(q)
	if err != nil {
		return Result{}, err
	}
	return s.QuerySQL(ctx, stmt, params...)
}

// QuerySQL executes a statement and reads every row.
func (s *Store) QuerySQL(ctx context.Context, query string, args ...any) (Result, error) {
	slog.Debug("query", "sql", query, "args", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Result{}, err
	}
	defer rows.Close()

	return ReadRows(rows)
}

// Exec executes a statement that returns no rows.
func (s *Store) Exec(ctx context.Context, stmt string, args ...any) error {
	slog.Debug("exec", "sql", stmt, "args", len(args))
	_, err := s.db.ExecContext(ctx, stmt, args...)
	return err
}

// ReadRows drains rows into a Result. The caller still closes rows.
func ReadRows(rows *sql.Rows) (Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return Result{}, fmt.Errorf("read columns: %w", err)
	}

	res := Result{Columns: cols, Rows: []ir.List{}}
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return Result{}, fmt.Errorf("scan row %d: %w", len(res.Rows), err)
		}

		row := make(ir.List, len(cols))
		for i, v := range raw {
			val, err := ir.FromSQL(v)
			if err != nil {
				return Result{}, fmt.Errorf("row %d column %s: %w", len(res.Rows), cols[i], err)
			}
			row[i] = val
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return Result{}, err
	}
	return res, nil
}
