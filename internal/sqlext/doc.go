// Package sqlext installs the URL extension on github.com/mattn/go-sqlite3
// connections.
//
// Importing the package registers the database/sql driver "sqlite3_url",
// whose connect hook runs RegisterAll on every new connection:
//
//	db, err := sql.Open(sqlext.DriverName, ":memory:")
//	...
//	row := db.QueryRow(`SELECT url_host('https://example.com/x')`)
//
// Scalar functions are always installed. The relations (url_query_each,
// lines and lines_read) are virtual table modules and need go-sqlite3 built
// with the sqlite_vtable tag:
//
//	go build -tags sqlite_vtable ./...
//
// Without the tag ModuleAvailable is false and only scalar functions are
// registered. The pure-Go host in sqlext/pure always provides the relations.
package sqlext
