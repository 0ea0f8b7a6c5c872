// Package relation implements the host-independent half of a computed,
// read-only SQLite relation: schema declaration, planner negotiation and the
// cursor state machine.
//
// A Relation declares its output columns followed by hidden input columns,
// which are bound like function arguments. The extension carries three:
// url_query_each(query) yields (ordinal, name, value) per form entry,
// lines(document[, delimiter]) and lines_read(path[, delimiter]) yield one
// line per row. Host bindings translate their virtual-table callbacks into
// calls on this package:
//
//	xConnect    -> Relation.Schema
//	xBestIndex  -> Relation.BestIndex
//	xOpen       -> Relation.Open
//	xFilter     -> Cursor.Filter
//	xNext       -> Cursor.Next
//	xEof        -> Cursor.EOF
//	xColumn     -> Cursor.Column
//	xRowid      -> Cursor.Rowid
//
// # Cursor lifecycle
//
//	Created --Filter--> Filtered --Next...--> Exhausted
//
// Column and Rowid are only defined while Filtered. A later Filter call
// starts a new, independent scan (SQLite re-filters inner cursors of a
// nested-loop join once per outer row); nothing else leaves Exhausted.
//
// Cursors are owned by a single statement and are never shared, so no
// locking is needed.
package relation
