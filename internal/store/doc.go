// Package store opens SQLite databases with the URL extension installed and
// runs queries against them.
//
// Two drivers are supported:
//
//   - sqlite3: github.com/mattn/go-sqlite3 (cgo), functions installed by a
//     connection hook. url_query_each needs the sqlite_vtable build tag.
//   - sqlite: modernc.org/sqlite (pure Go), functions and the relation
//     installed driver-wide.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// The pool holds a single connection. The pure driver attaches
// url_query_each per connection, and a single connection keeps that
// attachment and any temp tables visible to every statement.
//
// Results are converted to ir values so they can be compared, printed and
// fingerprinted independently of the driver that produced them.
package store
