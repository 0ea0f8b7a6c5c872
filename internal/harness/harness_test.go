package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqliteurl/internal/ir"
	"github.com/roach88/sqliteurl/internal/store"
)

func intPtr(n int) *int { return &n }

func run(t *testing.T, s *Scenario, d store.Driver) *Result {
	t.Helper()
	result, err := Run(context.Background(), s, d)
	require.NoError(t, err)
	return result
}

func TestRun_Passing(t *testing.T) {
	s := &Scenario{
		Name: "passing",
		Steps: []Step{
			{
				SQL:    "SELECT url_host(?) AS host, url_fragment(?) AS fragment",
				Args:   []any{"https://example.com/path", "https://example.com"},
				Expect: &Expect{Rows: [][]any{{"example.com", ""}}},
			},
			{
				SQL:    "SELECT url_valid(NULL) AS v",
				Expect: &Expect{Rows: [][]any{{false}}, Count: intPtr(1)},
			},
			{SQL: "SELECT 1"},
		},
	}

	for _, d := range store.Drivers {
		t.Run(string(d), func(t *testing.T) {
			result := run(t, s, d)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Equal(t, string(d), result.Driver)
			require.Len(t, result.Trace, 3)

			first := result.Trace[0]
			assert.Equal(t, []string{"host", "fragment"}, first.Columns)
			assert.Equal(t, []ir.List{{ir.Text("example.com"), ir.Text("")}}, first.Rows)
			assert.Equal(t, ir.List{ir.Text("https://example.com/path"), ir.Text("https://example.com")}, first.Args)
			assert.Len(t, first.Digest, 64)
		})
	}
}

func TestRun_RowMismatch(t *testing.T) {
	s := &Scenario{
		Name: "mismatch",
		Steps: []Step{{
			Name:   "host",
			SQL:    "SELECT url_host('https://example.com') AS host",
			Expect: &Expect{Rows: [][]any{{"example.org"}}},
		}},
	}

	result := run(t, s, store.DriverCGO)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "step 0 (host): row 0 column 0: expected example.org, got example.com", result.Errors[0])
}

func TestRun_RowCountMismatch(t *testing.T) {
	s := &Scenario{
		Name: "count",
		Steps: []Step{{
			SQL:    "SELECT 1 UNION ALL SELECT 2",
			Expect: &Expect{Count: intPtr(1), Rows: [][]any{{1}}},
		}},
	}

	result := run(t, s, store.DriverCGO)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "expected 1 rows, got 2")
	assert.Contains(t, result.Errors[1], "expected 1 rows, got 2: [[1], [2]]")
}

func TestRun_ExpectedError(t *testing.T) {
	s := &Scenario{
		Name: "errors",
		Steps: []Step{
			{
				SQL:    "SELECT url('https://example.com', 'port', '8080')",
				Expect: &Expect{Error: "Unknown key: port"},
			},
			{
				SQL:    "SELECT url('https://example.com')",
				Expect: &Expect{Error: "Unknown key"},
			},
			{
				SQL:    "SELECT url('not a url')",
				Expect: &Expect{Error: "Unknown key"},
			},
			{
				SQL: "SELECT url('https://example.com', 'path')",
			},
		},
	}

	for _, d := range store.Drivers {
		t.Run(string(d), func(t *testing.T) {
			result := run(t, s, d)
			assert.False(t, result.Pass)
			require.Len(t, result.Errors, 3)
			assert.Contains(t, result.Errors[0], "step 1: expected error containing \"Unknown key\", got 1 rows")
			assert.Contains(t, result.Errors[1], "step 2: expected error containing \"Unknown key\", got")
			assert.Contains(t, result.Errors[1], "Invalid base URL")
			assert.Contains(t, result.Errors[2], "step 3: unexpected error")

			assert.True(t, result.Trace[0].Failed())
			assert.False(t, result.Trace[1].Failed())
		})
	}
}

func TestRun_SetupFailureAborts(t *testing.T) {
	s := &Scenario{
		Name:  "setup",
		Setup: []string{"CREATE TEMP TABLE t(x)", "INSERT INTO missing VALUES (1)"},
		Steps: []Step{{SQL: "SELECT 1"}},
	}

	_, err := Run(context.Background(), s, store.DriverCGO)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup[1]")
}

func TestRun_InvalidScenario(t *testing.T) {
	_, err := Run(context.Background(), &Scenario{Name: "x"}, store.DriverCGO)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid scenario")
}

func TestRun_ScenarioDriverWins(t *testing.T) {
	s := &Scenario{
		Name:   "pinned",
		Driver: "sqlite",
		Steps:  []Step{{SQL: "SELECT 1"}},
	}
	result := run(t, s, store.DriverCGO)
	assert.Equal(t, string(store.DriverPure), result.Driver)

	s.Driver = ""
	result = run(t, s, "")
	assert.Equal(t, string(store.DriverCGO), result.Driver)
}

func TestRun_Relations(t *testing.T) {
	s := &Scenario{
		Name:      "relations",
		Relations: true,
		Steps: []Step{{
			SQL:    "SELECT name FROM url_query_each('x=1&y=2')",
			Expect: &Expect{Rows: [][]any{{"x"}, {"y"}}},
		}},
	}

	result := run(t, s, store.DriverPure)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.False(t, result.Skipped)

	cgo, err := store.OpenDriver(context.Background(), store.DriverCGO, ":memory:")
	require.NoError(t, err)
	hasRelations := cgo.HasRelations()
	cgo.Close()

	result = run(t, s, store.DriverCGO)
	assert.Equal(t, !hasRelations, result.Skipped)
	assert.True(t, result.Pass)
}

func TestRun_FreshDatabasePerRun(t *testing.T) {
	s := &Scenario{
		Name:  "fresh",
		Setup: []string{"CREATE TABLE t(x)"},
		Steps: []Step{{SQL: "SELECT count(*) FROM t", Expect: &Expect{Rows: [][]any{{0}}}}},
	}
	for range 2 {
		result := run(t, s, store.DriverPure)
		assert.True(t, result.Pass, "errors: %v", result.Errors)
	}
}

func TestRun_ArgumentConversion(t *testing.T) {
	s := &Scenario{
		Name: "args",
		Steps: []Step{{
			SQL:    "SELECT ? AS s, ? AS i, ? AS b, ? AS n",
			Args:   []any{"text", 42, true, nil},
			Expect: &Expect{Rows: [][]any{{"text", 42, 1, nil}}},
		}},
	}

	result := run(t, s, store.DriverCGO)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, ir.List{ir.Text("text"), ir.Int(42), ir.Bool(true), ir.Null{}}, result.Trace[0].Args)
}

func TestRun_BadArgument(t *testing.T) {
	s := &Scenario{
		Name:  "bad-arg",
		Steps: []Step{{SQL: "SELECT ?", Args: []any{1.5}}},
	}
	_, err := Run(context.Background(), s, store.DriverCGO)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are not allowed")
}
