// Package ir provides the value model shared by query results, scenario
// expectations and golden traces, plus its canonical JSON encoding.
//
// ir imports nothing internal, so every other package can depend on it.
//
// Key design constraints:
//   - Value is sealed: Null, Text, Int, Bool, List and Object only
//   - No floats; REAL results are carried as their shortest decimal text
//   - Object keys serialize in RFC 8785 order (UTF-16 code units)
package ir
