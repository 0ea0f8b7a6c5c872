package harness

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/sqliteurl/internal/ir"
	"github.com/roach88/sqliteurl/internal/store"
)

// Harness executes one scenario against one store.
type Harness struct {
	store  *store.Store
	logger *slog.Logger
}

// Run executes a scenario and returns its result.
//
// The scenario's own driver wins over driver; an empty driver on both sides
// selects the default. Each run gets a fresh in-memory database.
//
// Execution flow:
//  1. Open an in-memory store on the chosen driver
//  2. Run setup statements (any failure aborts with an error)
//  3. Run steps, checking each expectation
//  4. Evaluate assertions
//
// The returned error is reserved for infrastructure failures; failed
// expectations are reported in Result.Errors.
func Run(ctx context.Context, scenario *Scenario, driver store.Driver) (*Result, error) {
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	if scenario.Driver != "" {
		d, err := store.ParseDriver(scenario.Driver)
		if err != nil {
			return nil, err
		}
		driver = d
	} else if driver == "" {
		driver = store.DriverCGO
	}

	st, err := store.OpenDriver(ctx, driver, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		logger: slog.With("scenario", scenario.Name, "driver", driver),
	}

	result := NewResult(string(driver))
	if scenario.Relations && !st.HasRelations() {
		h.logger.Info("scenario skipped: relations unavailable")
		result.Skipped = true
		return result, nil
	}

	if err := h.executeSetup(ctx, scenario.Setup); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	actx := &AssertionContext{Store: st, Ctx: ctx}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

// executeSetup runs setup statements in order.
func (h *Harness) executeSetup(ctx context.Context, setup []string) error {
	for i, stmt := range setup {
		if err := h.store.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		h.logger.Debug("setup statement completed", "index", i)
	}
	return nil
}

// executeSteps runs every step, records its trace and checks expectations.
// A step error is an outcome, not a harness failure: it is traced and
// compared against the expectation like rows are.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		args, err := convertArgs(step.Args)
		if err != nil {
			return fmt.Errorf("%s: %w", step.label(i), err)
		}

		trace := StepTrace{
			Index: i,
			Name:  step.Name,
			SQL:   step.SQL,
			Args:  args,
		}

		res, qerr := h.store.QuerySQL(ctx, step.SQL, sqlArgs(args)...)
		if qerr != nil {
			trace.Error = qerr.Error()
		} else {
			trace.Columns = res.Columns
			trace.Rows = res.Rows
			trace.Digest, err = res.Digest()
			if err != nil {
				return fmt.Errorf("%s: digest: %w", step.label(i), err)
			}
		}
		result.Trace = append(result.Trace, trace)

		for _, msg := range checkExpect(step, i, trace) {
			result.AddError(msg)
		}

		h.logger.Debug("step completed",
			"step", i,
			"rows", len(trace.Rows),
			"error", trace.Error,
		)
	}
	return nil
}

// checkExpect compares a step outcome with its expectation.
func checkExpect(step Step, index int, trace StepTrace) []string {
	label := step.label(index)
	e := step.Expect

	if e != nil && e.Error != "" {
		switch {
		case !trace.Failed():
			return []string{fmt.Sprintf("%s: expected error containing %q, got %d rows", label, e.Error, len(trace.Rows))}
		case !strings.Contains(trace.Error, e.Error):
			return []string{fmt.Sprintf("%s: expected error containing %q, got %q", label, e.Error, trace.Error)}
		}
		return nil
	}

	if trace.Failed() {
		return []string{fmt.Sprintf("%s: unexpected error: %s", label, trace.Error)}
	}
	if e == nil {
		return nil
	}

	var errs []string
	if e.Count != nil && len(trace.Rows) != *e.Count {
		errs = append(errs, fmt.Sprintf("%s: expected %d rows, got %d", label, *e.Count, len(trace.Rows)))
	}
	if e.Rows != nil {
		errs = append(errs, compareRows(label, e.Rows, trace.Rows)...)
	}
	return errs
}

// compareRows reports every mismatch between expected and actual rows.
func compareRows(label string, expected [][]any, actual []ir.List) []string {
	if len(expected) != len(actual) {
		return []string{fmt.Sprintf("%s: expected %d rows, got %d: %s", label, len(expected), len(actual), formatRows(actual))}
	}

	var errs []string
	for r, want := range expected {
		got := actual[r]
		if len(want) != len(got) {
			errs = append(errs, fmt.Sprintf("%s: row %d: expected %d columns, got %d", label, r, len(want), len(got)))
			continue
		}
		for c, w := range want {
			wv, err := ir.FromAny(w)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: row %d column %d: %v", label, r, c, err))
				continue
			}
			if !ir.Equal(wv, got[c]) {
				errs = append(errs, fmt.Sprintf("%s: row %d column %d: expected %s, got %s",
					label, r, c, ir.Format(wv), ir.Format(got[c])))
			}
		}
	}
	return errs
}

func formatRows(rows []ir.List) string {
	parts := make([]string, len(rows))
	for i, row := range rows {
		parts[i] = ir.Format(row)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// convertArgs converts YAML-decoded arguments to values.
func convertArgs(args []any) (ir.List, error) {
	out := make(ir.List, len(args))
	for i, a := range args {
		v, err := ir.FromAny(a)
		if err != nil {
			return nil, fmt.Errorf("args[%d]: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// sqlArgs converts values to driver parameters. Composite values are passed
// as their JSON text.
func sqlArgs(args ir.List) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = toSQLValue(a)
	}
	return out
}
