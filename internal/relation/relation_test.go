package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema(t *testing.T) {
	assert.Equal(t,
		"CREATE TABLE x(ordinal INTEGER, name TEXT, value TEXT, query HIDDEN)",
		QueryEach.Schema())
	assert.Equal(t, []string{"ordinal", "name", "value"}, QueryEach.Columns())
}

func TestBestIndex(t *testing.T) {
	tests := []struct {
		name        string
		constraints []Constraint
		wantUsed    []bool
		wantIdx     int
	}{
		{
			name:     "no constraints",
			wantUsed: []bool{},
			wantIdx:  IdxUnbound,
		},
		{
			name:        "usable equality on payload",
			constraints: []Constraint{{Column: ColumnQuery, Op: OpEQ, Usable: true}},
			wantUsed:    []bool{true},
			wantIdx:     IdxPayload,
		},
		{
			name:        "unusable equality",
			constraints: []Constraint{{Column: ColumnQuery, Op: OpEQ, Usable: false}},
			wantUsed:    []bool{false},
			wantIdx:     IdxUnbound,
		},
		{
			name:        "wrong operator",
			constraints: []Constraint{{Column: ColumnQuery, Op: OpOther, Usable: true}},
			wantUsed:    []bool{false},
			wantIdx:     IdxUnbound,
		},
		{
			name: "output columns ignored",
			constraints: []Constraint{
				{Column: ColumnName, Op: OpEQ, Usable: true},
				{Column: ColumnQuery, Op: OpEQ, Usable: true},
			},
			wantUsed: []bool{false, true},
			wantIdx:  IdxPayload,
		},
		{
			name: "first usable wins",
			constraints: []Constraint{
				{Column: ColumnQuery, Op: OpEQ, Usable: false},
				{Column: ColumnQuery, Op: OpEQ, Usable: true},
				{Column: ColumnQuery, Op: OpEQ, Usable: true},
			},
			wantUsed: []bool{false, true, false},
			wantIdx:  IdxPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := QueryEach.BestIndex(tt.constraints)
			assert.Equal(t, tt.wantUsed, plan.Used)
			assert.Equal(t, tt.wantIdx, plan.IdxNum)
		})
	}
}

func TestBestIndex_BoundIsCheaper(t *testing.T) {
	bound := QueryEach.BestIndex([]Constraint{{Column: ColumnQuery, Op: OpEQ, Usable: true}})
	unbound := QueryEach.BestIndex([]Constraint{{Column: ColumnQuery, Op: OpEQ, Usable: false}})
	assert.Less(t, bound.EstimatedCost, unbound.EstimatedCost)
	assert.Less(t, bound.EstimatedRows, unbound.EstimatedRows)
}

func TestPayloadText(t *testing.T) {
	text, ok, err := PayloadText("a=b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a=b", text)

	text, ok, err = PayloadText([]byte("x=1"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x=1", text)

	text, ok, err = PayloadText(int64(42))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "42", text)

	_, ok, err = PayloadText(nil)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = PayloadText(struct{}{})
	require.Error(t, err)
}

func TestColumnName(t *testing.T) {
	assert.Equal(t, "ordinal", QueryEach.ColumnName(ColumnOrdinal))
	assert.Equal(t, "query", QueryEach.ColumnName(ColumnQuery))
	assert.Equal(t, "delimiter", Lines.ColumnName(2))
	assert.Equal(t, "column(9)", QueryEach.ColumnName(9))
	assert.Equal(t, "column(-1)", QueryEach.ColumnName(-1))
}

func TestLineSchemas(t *testing.T) {
	assert.Equal(t, "CREATE TABLE x(line TEXT, document HIDDEN, delimiter HIDDEN)", Lines.Schema())
	assert.Equal(t, "CREATE TABLE x(line TEXT, path HIDDEN, delimiter HIDDEN)", LinesRead.Schema())
	assert.Equal(t, []string{"line"}, Lines.Columns())
}

func TestAll(t *testing.T) {
	var names []string
	for _, r := range All() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"url_query_each", "lines", "lines_read"}, names)
}

func TestBestIndex_LineInputs(t *testing.T) {
	const (
		document  = Column(1)
		delimiter = Column(2)
	)
	tests := []struct {
		name        string
		constraints []Constraint
		wantUsed    []bool
		wantIdx     int
		wantStr     string
		bound       bool
	}{
		{
			name:        "document only",
			constraints: []Constraint{{Column: document, Op: OpEQ, Usable: true}},
			wantUsed:    []bool{true},
			wantIdx:     1,
			wantStr:     "0",
			bound:       true,
		},
		{
			name: "delimiter offered first",
			constraints: []Constraint{
				{Column: delimiter, Op: OpEQ, Usable: true},
				{Column: document, Op: OpEQ, Usable: true},
			},
			wantUsed: []bool{true, true},
			wantIdx:  3,
			wantStr:  "1,0",
			bound:    true,
		},
		{
			name:        "delimiter without document",
			constraints: []Constraint{{Column: delimiter, Op: OpEQ, Usable: true}},
			wantUsed:    []bool{true},
			wantIdx:     2,
			wantStr:     "1",
			bound:       false,
		},
		{
			name: "second constraint on the same input ignored",
			constraints: []Constraint{
				{Column: document, Op: OpEQ, Usable: true},
				{Column: document, Op: OpEQ, Usable: true},
			},
			wantUsed: []bool{true, false},
			wantIdx:  1,
			wantStr:  "0",
			bound:    true,
		},
		{
			name:        "output column",
			constraints: []Constraint{{Column: 0, Op: OpEQ, Usable: true}},
			wantUsed:    []bool{false},
			wantIdx:     IdxUnbound,
			wantStr:     "",
			bound:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Lines.BestIndex(tt.constraints)
			assert.Equal(t, tt.wantUsed, plan.Used)
			assert.Equal(t, tt.wantIdx, plan.IdxNum)
			assert.Equal(t, tt.wantStr, plan.IdxStr)
			if tt.bound {
				assert.Equal(t, float64(boundCost), plan.EstimatedCost)
			} else {
				assert.Equal(t, float64(unboundCost), plan.EstimatedCost)
			}
		})
	}
}
