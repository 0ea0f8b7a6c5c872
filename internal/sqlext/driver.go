package sqlext

import (
	"database/sql"

	"github.com/mattn/go-sqlite3"
)

// DriverName is the database/sql driver with the extension preinstalled.
const DriverName = "sqlite3_url"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: RegisterAll,
	})
}
