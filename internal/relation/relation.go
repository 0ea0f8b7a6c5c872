package relation

import (
	"fmt"
	"strconv"
	"strings"
)

// Column identifies a column of a relation by its declared position:
// outputs first, then hidden inputs.
type Column int

// url_query_each columns.
const (
	ColumnOrdinal Column = iota
	ColumnName
	ColumnValue
	// ColumnQuery is the hidden input column carrying the payload.
	ColumnQuery
)

// Op is a constraint operator as reported by the host planner.
// Only equality can bind an input.
type Op int

const (
	OpOther Op = iota
	OpEQ
)

// Constraint is one predicate the planner offers for pushdown.
type Constraint struct {
	Column Column
	Op     Op
	Usable bool
}

// Plan index numbers passed from BestIndex to Filter. IdxNum is a bit set
// with bit k standing for input k.
const (
	// IdxUnbound means no input constraint was accepted.
	IdxUnbound = 0

	// IdxPayload means the first input is bound.
	IdxPayload = 1
)

const (
	boundCost   = 1.0
	boundRows   = 25
	unboundCost = 1e9
	unboundRows = 1 << 30
)

// Plan is the result of planner negotiation.
type Plan struct {
	// Used has one entry per offered constraint. A true entry means the
	// constraint value is passed to Filter as the next argument and the host
	// need not re-check it.
	Used []bool

	IdxNum int

	// IdxStr lists the input index of each Filter argument, comma separated,
	// in argument order.
	IdxStr string

	EstimatedCost float64
	EstimatedRows int64
}

// Output is a visible column.
type Output struct {
	Name string
	Type string
}

// Input is a hidden column bound like a function argument.
type Input struct {
	Name string

	// Optional inputs fall back to Default when unbound or NULL. A NULL
	// required input yields no rows.
	Optional bool
	Default  string

	// Echo makes the column read back as its bound text. Inputs that do not
	// echo read back as ''.
	Echo bool
}

// Rows produces the output values of generated rows, one row at a time.
type Rows interface {
	// Next returns the next row. ok is false once the rows are exhausted.
	Next() (row []any, ok bool, err error)
	Close() error
}

// Generator expands bound input text into rows. args holds one entry per
// Input, in declaration order, with defaults applied.
type Generator func(args []string) (Rows, error)

// Relation describes one table-valued function.
type Relation struct {
	// Name is the SQL-visible name.
	Name string

	Outputs []Output
	Inputs  []Input

	// RowidBase is the rowid of the first row.
	RowidBase int64

	Generate Generator
}

// All returns every relation of the extension in registration order.
func All() []Relation {
	return []Relation{QueryEach, Lines, LinesRead}
}

// Columns returns the visible column names in declared order.
func (r Relation) Columns() []string {
	names := make([]string, len(r.Outputs))
	for i, o := range r.Outputs {
		names[i] = o.Name
	}
	return names
}

// ColumnName returns the declared name of col.
func (r Relation) ColumnName(col Column) string {
	switch {
	case col < 0:
	case int(col) < len(r.Outputs):
		return r.Outputs[col].Name
	case int(col) < len(r.Outputs)+len(r.Inputs):
		return r.Inputs[int(col)-len(r.Outputs)].Name
	}
	return fmt.Sprintf("column(%d)", int(col))
}

// Schema returns the CREATE TABLE statement declared to the host.
func (r Relation) Schema() string {
	parts := make([]string, 0, len(r.Outputs)+len(r.Inputs))
	for _, o := range r.Outputs {
		if o.Type == "" {
			parts = append(parts, o.Name)
			continue
		}
		parts = append(parts, o.Name+" "+o.Type)
	}
	for _, in := range r.Inputs {
		parts = append(parts, in.Name+" HIDDEN")
	}
	return "CREATE TABLE x(" + strings.Join(parts, ", ") + ")"
}

// inputIndex maps a column to its input index, or -1 for output columns.
func (r Relation) inputIndex(col Column) int {
	k := int(col) - len(r.Outputs)
	if k < 0 || k >= len(r.Inputs) {
		return -1
	}
	return k
}

// BestIndex accepts the first usable equality constraint on each input
// column. Plans that leave a required input unbound are priced high so the
// planner prefers any ordering that binds it first.
func (r Relation) BestIndex(constraints []Constraint) Plan {
	plan := Plan{
		Used:   make([]bool, len(constraints)),
		IdxNum: IdxUnbound,
	}
	var order []string
	for i, c := range constraints {
		k := r.inputIndex(c.Column)
		if k < 0 || !c.Usable || c.Op != OpEQ || plan.IdxNum&(1<<k) != 0 {
			continue
		}
		plan.Used[i] = true
		plan.IdxNum |= 1 << k
		order = append(order, strconv.Itoa(k))
	}
	plan.IdxStr = strings.Join(order, ",")

	plan.EstimatedCost, plan.EstimatedRows = boundCost, boundRows
	for k, in := range r.Inputs {
		if !in.Optional && plan.IdxNum&(1<<k) == 0 {
			plan.EstimatedCost, plan.EstimatedRows = unboundCost, unboundRows
			break
		}
	}
	return plan
}

// argumentOrder decodes the input index of each Filter argument. Without
// an idxStr the arguments follow the bits of idxNum in ascending order.
func (r Relation) argumentOrder(idxNum int, idxStr string) ([]int, error) {
	var order []int
	if idxStr == "" {
		for k := range r.Inputs {
			if idxNum&(1<<k) != 0 {
				order = append(order, k)
			}
		}
		return order, nil
	}
	for _, part := range strings.Split(idxStr, ",") {
		k, err := strconv.Atoi(part)
		if err != nil || k < 0 || k >= len(r.Inputs) {
			return nil, &Error{
				Code:    ErrCodeInvalidArgument,
				Message: fmt.Sprintf("%s: invalid plan %q", r.Name, idxStr),
			}
		}
		order = append(order, k)
	}
	return order, nil
}

// Open returns a cursor in the Created state.
func (r Relation) Open() *Cursor {
	return &Cursor{relation: r}
}

// PayloadText converts a host value bound to an input column.
// ok is false for NULL.
func PayloadText(v any) (text string, ok bool, err error) {
	switch p := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return p, true, nil
	case []byte:
		return string(p), true, nil
	case int64:
		return strconv.FormatInt(p, 10), true, nil
	case int:
		return strconv.Itoa(p), true, nil
	case float64:
		return strconv.FormatFloat(p, 'g', -1, 64), true, nil
	default:
		return "", false, &Error{
			Code:    ErrCodeInvalidArgument,
			Message: fmt.Sprintf("unsupported argument type %T", v),
		}
	}
}
