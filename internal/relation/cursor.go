package relation

import (
	"fmt"
)

type state int

const (
	stateCreated state = iota
	stateFiltered
	stateExhausted
)

func (s state) String() string {
	switch s {
	case stateCreated:
		return "unfiltered"
	case stateFiltered:
		return "positioned"
	case stateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Cursor walks the rows generated for one set of bound inputs.
type Cursor struct {
	relation Relation
	args     []string
	rows     Rows
	row      []any
	pos      int64
	state    state
}

// Filter starts a scan. idxNum and idxStr are the values chosen by
// BestIndex and vals holds the constraint values it marked as used.
func (c *Cursor) Filter(idxNum int, idxStr string, vals []any) error {
	c.release()
	c.state = stateExhausted
	c.pos = 0

	order, err := c.relation.argumentOrder(idxNum, idxStr)
	if err != nil {
		return err
	}
	bound := make(map[int]any, len(order))
	for j, k := range order {
		if j < len(vals) {
			bound[k] = vals[j]
		}
	}

	args := make([]string, len(c.relation.Inputs))
	empty := false
	for k, in := range c.relation.Inputs {
		v, ok := bound[k]
		if !ok && !in.Optional {
			return NewMissingArgumentError(c.relation.Name, in.Name)
		}
		text, notNull, err := PayloadText(v)
		if err != nil {
			return err
		}
		switch {
		case notNull:
			args[k] = text
		case in.Optional:
			args[k] = in.Default
		default:
			empty = true
		}
	}
	c.args = args
	if empty {
		return nil
	}

	rows, err := c.relation.Generate(args)
	if err != nil {
		return err
	}
	c.rows = rows
	return c.advance()
}

// advance fetches the next generated row.
func (c *Cursor) advance() error {
	row, ok, err := c.rows.Next()
	if err != nil || !ok {
		c.release()
		c.state = stateExhausted
		return err
	}
	c.row = row
	c.state = stateFiltered
	return nil
}

// Next advances to the following row.
func (c *Cursor) Next() error {
	if c.state != stateFiltered {
		return newNotPositionedError("Next", c.state)
	}
	c.pos++
	return c.advance()
}

// EOF reports whether no current row exists.
func (c *Cursor) EOF() bool {
	return c.state != stateFiltered
}

// Column returns the value of col for the current row. Output values come
// from the generator; hidden inputs read back as their bound text.
func (c *Cursor) Column(col Column) (any, error) {
	if c.state != stateFiltered {
		return nil, newNotPositionedError("Column", c.state)
	}
	if col >= 0 && int(col) < len(c.row) {
		return c.row[col], nil
	}
	if k := c.relation.inputIndex(col); k >= 0 {
		if !c.relation.Inputs[k].Echo {
			return "", nil
		}
		return c.args[k], nil
	}
	return nil, &Error{
		Code:    ErrCodeInvalidColumn,
		Message: fmt.Sprintf("%s: no column at index %d", c.relation.Name, int(col)),
	}
}

// Rowid returns the current row's number, counted from RowidBase.
func (c *Cursor) Rowid() (int64, error) {
	if c.state != stateFiltered {
		return 0, newNotPositionedError("Rowid", c.state)
	}
	return c.relation.RowidBase + c.pos, nil
}

// Close releases the generated rows.
func (c *Cursor) Close() error {
	err := c.release()
	c.state = stateExhausted
	return err
}

func (c *Cursor) release() error {
	c.row = nil
	if c.rows == nil {
		return nil
	}
	err := c.rows.Close()
	c.rows = nil
	return err
}
