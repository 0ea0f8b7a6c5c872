//go:build !(sqlite_vtable || vtable)

package sqlext

import (
	"log/slog"

	"github.com/mattn/go-sqlite3"
)

// ModuleAvailable reports whether go-sqlite3 was built with virtual table
// support.
const ModuleAvailable = false

func registerModules(*sqlite3.SQLiteConn) error {
	slog.Debug("virtual table support not compiled in, relations unavailable")
	return nil
}
