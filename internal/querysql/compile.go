// Package querysql compiles queryir statements to parameterized SQLite SQL.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/sqliteurl/internal/ir"
	"github.com/roach88/sqliteurl/internal/queryir"
)

// orderKey is appended to every scan. Table-valued relations number their
// rows in production order, so rowid order is output order.
const orderKey = "rowid ASC"

// SQLCompiler compiles queryir statements to SQL.
//
// Every scan carries ORDER BY so results are deterministic. Values are
// always bound as parameters, never interpolated.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a query to SQL and its parameters.
// The query is validated first; identifiers that fail validation are never
// written into SQL.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}
	if err := queryir.Validate(q).Err(); err != nil {
		return "", nil, fmt.Errorf("invalid query: %w", err)
	}

	switch query := q.(type) {
	case queryir.Scan:
		return c.compileScan(query)
	case *queryir.Scan:
		return c.compileScan(*query)
	case queryir.Project:
		return c.compileProject(query)
	case *queryir.Project:
		return c.compileProject(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

// compileScan produces
//
//	SELECT <cols> FROM <relation>(<args>)[ WHERE <filter>] ORDER BY rowid ASC[ LIMIT ?]
func (c *SQLCompiler) compileScan(q queryir.Scan) (string, []any, error) {
	var sb strings.Builder
	var params []any

	args, argParams, err := c.compileArgs(q.Args)
	if err != nil {
		return "", nil, fmt.Errorf("compile %s arguments: %w", q.Relation, err)
	}
	params = append(params, argParams...)

	fmt.Fprintf(&sb, "SELECT %s FROM %s(%s)", strings.Join(q.Columns, ", "), q.Relation, args)

	if q.Filter != nil {
		filterSQL, filterParams, err := c.compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(filterSQL)
		params = append(params, filterParams...)
	}

	sb.WriteString(" ORDER BY ")
	sb.WriteString(orderKey)

	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		params = append(params, int64(q.Limit))
	}

	return sb.String(), params, nil
}

// compileProject produces
//
//	SELECT <expr> AS <name>, ...
func (c *SQLCompiler) compileProject(q queryir.Project) (string, []any, error) {
	parts := make([]string, 0, len(q.Columns))
	var params []any

	for _, col := range q.Columns {
		sql, exprParams, err := c.compileExpr(col.Expr)
		if err != nil {
			return "", nil, fmt.Errorf("compile column %s: %w", col.Name, err)
		}
		parts = append(parts, sql+" AS "+col.Name)
		params = append(params, exprParams...)
	}

	return "SELECT " + strings.Join(parts, ", "), params, nil
}

func (c *SQLCompiler) compileArgs(args []queryir.Expr) (string, []any, error) {
	parts := make([]string, 0, len(args))
	var params []any
	for _, a := range args {
		sql, p, err := c.compileExpr(a)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, p...)
	}
	return strings.Join(parts, ", "), params, nil
}

func (c *SQLCompiler) compileExpr(e queryir.Expr) (string, []any, error) {
	switch expr := e.(type) {
	case queryir.Literal:
		param, err := irValueToParam(expr.Value)
		if err != nil {
			return "", nil, err
		}
		return "?", []any{param}, nil
	case queryir.Call:
		args, params, err := c.compileArgs(expr.Args)
		if err != nil {
			return "", nil, fmt.Errorf("%s: %w", expr.Func, err)
		}
		return expr.Func + "(" + args + ")", params, nil
	default:
		return "", nil, fmt.Errorf("unsupported expression type: %T", e)
	}
}

// compilePredicate compiles a predicate to a WHERE fragment.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	if p == nil {
		return "1 = 1", nil, nil
	}

	switch pred := p.(type) {
	case queryir.Equals:
		return c.compileEquals(pred)
	case *queryir.Equals:
		return c.compileEquals(*pred)
	case queryir.And:
		return c.compileAnd(pred)
	case *queryir.And:
		return c.compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *SQLCompiler) compileEquals(eq queryir.Equals) (string, []any, error) {
	param, err := irValueToParam(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("convert value: %w", err)
	}
	return eq.Field + " = ?", []any{param}, nil
}

func (c *SQLCompiler) compileAnd(and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}

	var sqlParts []string
	var allParams []any
	for _, pred := range and.Predicates {
		sql, params, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		if _, nested := pred.(queryir.And); nested {
			sql = "(" + sql + ")"
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	return strings.Join(sqlParts, " AND "), allParams, nil
}

// irValueToParam converts a value to a driver parameter.
// Lists and objects have no SQL scalar form.
func irValueToParam(v ir.Value) (any, error) {
	switch val := v.(type) {
	case ir.Text:
		return string(val), nil
	case ir.Int:
		return int64(val), nil
	case ir.Bool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	case ir.Null:
		return nil, nil
	case ir.List:
		return nil, fmt.Errorf("list cannot be used as SQL parameter")
	case ir.Object:
		return nil, fmt.Errorf("object cannot be used as SQL parameter")
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}
