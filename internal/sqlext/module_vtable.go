//go:build sqlite_vtable || vtable

package sqlext

import (
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"github.com/mattn/go-sqlite3"

	"github.com/roach88/sqliteurl/internal/relation"
)

// ModuleAvailable reports whether go-sqlite3 was built with virtual table
// support.
const ModuleAvailable = true

func registerModules(conn *sqlite3.SQLiteConn) error {
	var errs *multierror.Error
	for _, rel := range relation.All() {
		if err := conn.CreateModule(rel.Name, &module{rel: rel}); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("register module %s: %w", rel.Name, err))
			continue
		}
		slog.Debug("registered module", "name", rel.Name)
	}
	return errs.ErrorOrNil()
}

// module is eponymous-only: each relation exists in every schema without a
// CREATE VIRTUAL TABLE statement and cannot be instantiated under another
// name.
type module struct {
	rel relation.Relation
}

func (m *module) EponymousOnlyModule() {}

func (m *module) Create(c *sqlite3.SQLiteConn, args []string) (sqlite3.VTab, error) {
	if err := c.DeclareVTab(m.rel.Schema()); err != nil {
		return nil, err
	}
	return &table{rel: m.rel}, nil
}

func (m *module) Connect(c *sqlite3.SQLiteConn, args []string) (sqlite3.VTab, error) {
	return m.Create(c, args)
}

func (m *module) DestroyModule() {}

type table struct {
	rel relation.Relation
}

func (t *table) BestIndex(cst []sqlite3.InfoConstraint, _ []sqlite3.InfoOrderBy) (*sqlite3.IndexResult, error) {
	constraints := make([]relation.Constraint, len(cst))
	for i, c := range cst {
		op := relation.OpOther
		if c.Op == sqlite3.OpEQ {
			op = relation.OpEQ
		}
		constraints[i] = relation.Constraint{
			Column: relation.Column(c.Column),
			Op:     op,
			Usable: c.Usable,
		}
	}

	plan := t.rel.BestIndex(constraints)
	return &sqlite3.IndexResult{
		Used:          plan.Used,
		IdxNum:        plan.IdxNum,
		IdxStr:        plan.IdxStr,
		EstimatedCost: plan.EstimatedCost,
		EstimatedRows: float64(plan.EstimatedRows),
	}, nil
}

func (t *table) Open() (sqlite3.VTabCursor, error) {
	return &cursor{c: t.rel.Open()}, nil
}

func (t *table) Disconnect() error { return nil }
func (t *table) Destroy() error    { return nil }

type cursor struct {
	c *relation.Cursor
}

func (vc *cursor) Filter(idxNum int, idxStr string, vals []any) error {
	return vc.c.Filter(idxNum, idxStr, vals)
}

func (vc *cursor) Next() error { return vc.c.Next() }
func (vc *cursor) EOF() bool   { return vc.c.EOF() }
func (vc *cursor) Close() error {
	return vc.c.Close()
}

func (vc *cursor) Rowid() (int64, error) { return vc.c.Rowid() }

func (vc *cursor) Column(ctx *sqlite3.SQLiteContext, col int) error {
	v, err := vc.c.Column(relation.Column(col))
	if err != nil {
		return err
	}
	switch val := v.(type) {
	case int64:
		ctx.ResultInt64(val)
	case string:
		ctx.ResultText(val)
	case nil:
		ctx.ResultNull()
	default:
		return fmt.Errorf("unsupported column value %T", v)
	}
	return nil
}
