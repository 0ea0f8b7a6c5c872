package queryir

import "github.com/roach88/sqliteurl/internal/ir"

// Query is a complete statement.
type Query interface {
	queryNode()
}

// Expr is a scalar expression.
type Expr interface {
	exprNode()
}

// Predicate filters relation rows.
type Predicate interface {
	predicateNode()
}

// Scan reads rows from a table-valued relation.
//
//	Scan{
//	  Relation: "url_query_each",
//	  Args:     []Expr{Literal{Value: ir.Text("a=1&b=2")}},
//	  Columns:  []string{"ordinal", "name", "value"},
//	  Filter:   Equals{Field: "name", Value: ir.Text("b")},
//	}
//
// compiles to
//
//	SELECT ordinal, name, value FROM url_query_each(?) WHERE name = ? ORDER BY rowid ASC
//
// Rows always come back in rowid order so results are deterministic.
type Scan struct {
	Relation string    // table-valued function name
	Args     []Expr    // bound to hidden columns in declaration order
	Columns  []string  // explicit projection, never *
	Filter   Predicate // nil = all rows
	Limit    int       // 0 = no limit
}

func (Scan) queryNode() {}

// Project evaluates expressions into a single row.
//
//	Project{Columns: []Column{{Name: "host", Expr: Call{Func: "url_host", Args: ...}}}}
//
// compiles to
//
//	SELECT url_host(?) AS host
type Project struct {
	Columns []Column
}

func (Project) queryNode() {}

// Column is a named output expression.
type Column struct {
	Name string
	Expr Expr
}

// Literal is a constant, bound as a statement parameter.
type Literal struct {
	Value ir.Value
}

func (Literal) exprNode() {}

// Call invokes a scalar SQL function.
type Call struct {
	Func string
	Args []Expr
}

func (Call) exprNode() {}

// Lit is shorthand for a text Literal.
func Lit(s string) Literal {
	return Literal{Value: ir.Text(s)}
}

// Equals matches rows whose Field equals Value.
// Comparing with NULL never matches and is reported by Validate.
type Equals struct {
	Field string
	Value ir.Value
}

func (Equals) predicateNode() {}

// And requires every predicate to hold. An empty And is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}
