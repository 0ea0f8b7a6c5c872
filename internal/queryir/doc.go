// Package queryir provides an abstract representation of the statements the
// CLI and the scenario harness issue against the URL extension.
//
// Two query shapes cover every use:
//
//	Scan     SELECT <columns> FROM <relation>(<args>) WHERE <filter> ORDER BY rowid
//	Project  SELECT <expr> AS <name>, ...
//
// Expressions are literals and scalar function calls; predicates are
// equality on a relation column and conjunctions of those.
//
// # Sealed interfaces
//
// Query, Expr and Predicate are sealed with marker methods, so backends can
// rely on exhaustive type switches:
//
//	switch q := query.(type) {
//	case Scan:
//	    // relation access
//	case Project:
//	    // scalar evaluation
//	}
//
// # Safety
//
// Identifiers (relation, column, function names) are interpolated into SQL
// and must pass Validate. Literal values are always bound as parameters.
package queryir
