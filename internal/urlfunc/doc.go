// Package urlfunc defines the scalar SQL function set of the extension.
//
// Each function is described once by a Func value that carries two entry
// points over the same implementation: Impl, a typed Go func in the shape
// database/sql drivers built on cgo expect (reflection picks the SQL arity
// from its signature), and Call, a generic entry taking raw host values for
// drivers that register callbacks by argument count.
//
// Host values are coerced to text with SQL semantics: NULL becomes the empty
// string, integers and reals are formatted, blobs are taken as bytes.
package urlfunc
