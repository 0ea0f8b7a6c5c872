// Package pure installs the URL extension on modernc.org/sqlite, the cgo-free
// SQLite driver.
//
// modernc.org/sqlite registers functions and modules driver-wide, for
// connections opened afterwards, so Register must run before sql.Open. The
// driver installs modules with distinct create and connect callbacks, which
// makes them non-eponymous: each connection needs a temp table instance,
// created by Attach.
//
//	db, err := pure.Open(ctx, ":memory:")
package pure

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hashicorp/go-multierror"
	"modernc.org/sqlite"
	"modernc.org/sqlite/vtab"

	"github.com/roach88/sqliteurl/internal/relation"
	"github.com/roach88/sqliteurl/internal/urlfunc"
)

// DriverName is the database/sql name of the modernc driver.
const DriverName = "sqlite"

var (
	registerOnce sync.Once
	registerErr  error
)

// Register installs the scalar functions and the relation modules on the
// driver. Safe to call more than once; only the first call registers.
func Register() error {
	registerOnce.Do(func() {
		registerErr = register()
	})
	return registerErr
}

func register() error {
	var errs *multierror.Error
	for _, f := range urlfunc.Functions() {
		if err := sqlite.RegisterDeterministicScalarFunction(f.Name, int32(f.NArg), scalar(f)); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("register %s: %w", f.Name, err))
			continue
		}
		slog.Debug("registered function", "name", f.Name, "nargs", f.NArg)
	}

	for _, rel := range relation.All() {
		if err := vtab.RegisterModule(nil, rel.Name, &module{rel: rel}); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("register module %s: %w", rel.Name, err))
			continue
		}
		slog.Debug("registered module", "name", rel.Name)
	}
	return errs.ErrorOrNil()
}

func scalar(f urlfunc.Func) func(*sqlite.FunctionContext, []driver.Value) (driver.Value, error) {
	return func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		return f.Call(values(args))
	}
}

func values(in []driver.Value) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// Execer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Attach creates an instance of every relation in the temp schema of the
// connection behind e. With a pooled *sql.DB only the connection that runs
// the statements is attached; use a single-connection pool or *sql.Conn.
func Attach(ctx context.Context, e Execer) error {
	for _, rel := range relation.All() {
		stmt := fmt.Sprintf("CREATE VIRTUAL TABLE IF NOT EXISTS temp.%s USING %s", rel.Name, rel.Name)
		if _, err := e.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("attach %s: %w", rel.Name, err)
		}
	}
	return nil
}

// Open registers the extension, opens dsn with a single connection and
// attaches the relation to it.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if err := Register(); err != nil {
		return nil, err
	}

	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := Attach(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
