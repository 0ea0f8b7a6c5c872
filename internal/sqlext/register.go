package sqlext

import (
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"github.com/mattn/go-sqlite3"

	"github.com/roach88/sqliteurl/internal/urlfunc"
)

// FuncRegistrar is the part of *sqlite3.SQLiteConn used to install scalar
// functions.
type FuncRegistrar interface {
	RegisterFunc(name string, impl any, pure bool) error
}

// RegisterAll installs every scalar function and, when available, the
// relation modules on conn. Failures are collected rather than stopping
// at the first one.
func RegisterAll(conn *sqlite3.SQLiteConn) error {
	var errs *multierror.Error
	if err := RegisterFunctions(conn); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := registerModules(conn); err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs.ErrorOrNil()
}

// RegisterFunctions installs the scalar function set on conn.
func RegisterFunctions(conn FuncRegistrar) error {
	var errs *multierror.Error
	for _, f := range urlfunc.Functions() {
		if err := conn.RegisterFunc(f.Name, f.Impl, f.Deterministic); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("register %s: %w", f.Name, err))
			continue
		}
		slog.Debug("registered function", "name", f.Name, "nargs", f.NArg)
	}
	return errs.ErrorOrNil()
}
