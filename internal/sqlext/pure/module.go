package pure

import (
	"modernc.org/sqlite/vtab"

	"github.com/roach88/sqliteurl/internal/relation"
)

type module struct {
	rel relation.Relation
}

func (m *module) Create(ctx vtab.Context, _ []string) (vtab.Table, error) {
	if err := ctx.Declare(m.rel.Schema()); err != nil {
		return nil, err
	}
	return &table{rel: m.rel}, nil
}

func (m *module) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.Create(ctx, args)
}

type table struct {
	rel relation.Relation
}

func (t *table) BestIndex(info *vtab.IndexInfo) error {
	constraints := make([]relation.Constraint, len(info.Constraints))
	for i, c := range info.Constraints {
		op := relation.OpOther
		if c.Op == vtab.OpEQ {
			op = relation.OpEQ
		}
		constraints[i] = relation.Constraint{
			Column: relation.Column(c.Column),
			Op:     op,
			Usable: c.Usable,
		}
	}

	plan := t.rel.BestIndex(constraints)
	arg := 0
	for i, used := range plan.Used {
		if !used {
			continue
		}
		info.Constraints[i].ArgIndex = arg
		info.Constraints[i].Omit = true
		arg++
	}
	info.IdxNum = int64(plan.IdxNum)
	info.IdxStr = plan.IdxStr
	info.EstimatedCost = plan.EstimatedCost
	info.EstimatedRows = plan.EstimatedRows
	return nil
}

func (t *table) Open() (vtab.Cursor, error) {
	return &cursor{c: t.rel.Open()}, nil
}

func (t *table) Disconnect() error { return nil }
func (t *table) Destroy() error    { return nil }

type cursor struct {
	c *relation.Cursor
}

func (vc *cursor) Filter(idxNum int, idxStr string, vals []vtab.Value) error {
	return vc.c.Filter(idxNum, idxStr, values(vals))
}

func (vc *cursor) Next() error { return vc.c.Next() }
func (vc *cursor) Eof() bool   { return vc.c.EOF() }

func (vc *cursor) Column(col int) (vtab.Value, error) {
	return vc.c.Column(relation.Column(col))
}

func (vc *cursor) Rowid() (int64, error) { return vc.c.Rowid() }
func (vc *cursor) Close() error          { return vc.c.Close() }
