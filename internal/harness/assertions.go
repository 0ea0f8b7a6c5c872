package harness

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/roach88/sqliteurl/internal/ir"
	"github.com/roach88/sqliteurl/internal/store"
)

// validIdentifier matches valid SQL identifiers (table/column names).
// Only allows alphanumeric and underscore, must start with letter or underscore.
// This prevents SQL injection via identifier interpolation.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AssertionContext carries what assertions need beyond the trace.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string      // Assertion type for categorization
	Expected string      // Human-readable expected outcome
	Actual   string      // Human-readable actual outcome
	Trace    []StepTrace // Steps involved, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nSteps:\n")
		for _, step := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s -> %s\n", step.Index, step.SQL, describeOutcome(step))
		}
	}

	return buf.String()
}

func describeOutcome(step StepTrace) string {
	if step.Failed() {
		return "error: " + step.Error
	}
	return fmt.Sprintf("%d rows %s", len(step.Rows), formatRows(step.Rows))
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertFinalState:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("final_state assertion requires a store")
				break
			}
			err = assertFinalState(actx.Ctx, actx.Store, a)
		case AssertSameRows:
			err = assertSameRows(result.Trace, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

// assertSameRows checks that every listed step succeeded with identical
// rows. Digests are compared, so column names may differ.
func assertSameRows(trace []StepTrace, assertion Assertion) error {
	involved := make([]StepTrace, 0, len(assertion.Steps))
	for _, n := range assertion.Steps {
		if n < 0 || n >= len(trace) {
			return fmt.Errorf("step %d not in trace", n)
		}
		involved = append(involved, trace[n])
	}

	first := involved[0]
	for _, step := range involved {
		if step.Failed() {
			return &AssertionError{
				Type:     AssertSameRows,
				Expected: fmt.Sprintf("steps %v to succeed", assertion.Steps),
				Actual:   fmt.Sprintf("step %d failed", step.Index),
				Trace:    involved,
			}
		}
		if step.Digest != first.Digest {
			return &AssertionError{
				Type:     AssertSameRows,
				Expected: fmt.Sprintf("steps %v to return identical rows", assertion.Steps),
				Actual:   fmt.Sprintf("step %d differs from step %d", step.Index, first.Index),
				Trace:    involved,
			}
		}
	}
	return nil
}

// assertFinalState checks if a table contains exactly one row matching
// Where, and that the row holds the expected values.
//
// Security: Table and column names are validated against a whitelist pattern
// to prevent SQL injection via identifier interpolation.
func assertFinalState(ctx context.Context, st *store.Store, assertion Assertion) error {
	if assertion.Table == "" {
		return fmt.Errorf("final_state assertion requires table name")
	}

	if !validIdentifier.MatchString(assertion.Table) {
		return fmt.Errorf("invalid table name %q: must match pattern %s", assertion.Table, validIdentifier.String())
	}

	whereSQL, whereArgs, err := buildWhereClause(assertion.Where)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT * FROM %s", assertion.Table)
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}
	query += " LIMIT 2"

	res, err := st.QuerySQL(ctx, query, whereArgs...)
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("query table %s", assertion.Table),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}

	whereDesc := formatWhereClause(assertion.Where)
	switch len(res.Rows) {
	case 0:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("row in %s where %s", assertion.Table, whereDesc),
			Actual:   "row not found",
		}
	case 1:
	default:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("exactly one row in %s where %s", assertion.Table, whereDesc),
			Actual:   "multiple rows matched (assertion is ambiguous)",
		}
	}

	actualRow := res.Objects()[0].(ir.Object)

	keys := make([]string, 0, len(assertion.Expect))
	for k := range assertion.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		actual, exists := actualRow[key]
		if !exists {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   fmt.Sprintf("field %q not present in result columns: %v", key, res.Columns),
			}
		}

		expected, err := ir.FromAny(assertion.Expect[key])
		if err != nil {
			return fmt.Errorf("expect %q: %w", key, err)
		}
		if !ir.Equal(expected, actual) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q = %s", key, ir.Format(expected)),
				Actual:   fmt.Sprintf("field %q = %s", key, ir.Format(actual)),
			}
		}
	}

	return nil
}

// buildWhereClause constructs a parameterized WHERE clause. Keys are sorted
// for determinism; NULL is matched with IS NULL.
func buildWhereClause(where map[string]any) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))

	for _, key := range keys {
		if !validIdentifier.MatchString(key) {
			return "", nil, fmt.Errorf("invalid column name %q in where clause: must match pattern %s", key, validIdentifier.String())
		}
		v, err := ir.FromAny(where[key])
		if err != nil {
			return "", nil, fmt.Errorf("where %q: %w", key, err)
		}
		if _, isNull := v.(ir.Null); isNull {
			clauses = append(clauses, key+" IS NULL")
			continue
		}
		clauses = append(clauses, key+" = ?")
		args = append(args, toSQLValue(v))
	}

	return strings.Join(clauses, " AND "), args, nil
}

// formatWhereClause creates a human-readable description of WHERE conditions.
func formatWhereClause(where map[string]any) string {
	if len(where) == 0 {
		return "(no conditions)"
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

// toSQLValue converts a value to a driver parameter.
func toSQLValue(v ir.Value) any {
	switch val := v.(type) {
	case ir.Text:
		return string(val)
	case ir.Int:
		return int64(val)
	case ir.Bool:
		if val {
			return int64(1)
		}
		return int64(0)
	case ir.Null:
		return nil
	default:
		return ir.Format(val)
	}
}
