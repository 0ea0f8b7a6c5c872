package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sqliteurl/internal/harness"
	"github.com/roach88/sqliteurl/internal/ir"
	"github.com/roach88/sqliteurl/internal/store"
)

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <scenario-file>",
		Short: "Print the step trace of one scenario",
		Long: `Run one scenario and print what each step returned: columns, rows and
row digest, or the error text for failing steps.

JSON output is the golden snapshot form, so it can be diffed against
golden files directly.

Examples:
  sqliteurl trace scenarios/query_each.yaml
  sqliteurl trace scenarios/query_each.yaml --driver sqlite --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runTrace(opts *RootOptions, file string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	driver, err := store.ParseDriver(opts.Driver)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid driver", err)
	}

	result, err := harness.Run(cmd.Context(), scenario, driver)
	if err != nil {
		return WrapExitError(ExitCommandError, "execution failed", err)
	}
	if result.Skipped {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("scenario %s needs the table-valued relations, unavailable on driver %s", scenario.Name, result.Driver))
	}

	if formatter.Format == "json" {
		return formatter.Success(harness.Snapshot(scenario.Name, result))
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Scenario: %s (%s)\n", scenario.Name, result.Driver)
	for _, step := range result.Trace {
		fmt.Fprintln(w)
		if step.Name != "" {
			fmt.Fprintf(w, "[%d] %s\n", step.Index, step.Name)
		} else {
			fmt.Fprintf(w, "[%d]\n", step.Index)
		}
		fmt.Fprintf(w, "  sql: %s\n", step.SQL)
		if len(step.Args) > 0 {
			fmt.Fprintf(w, "  args: %s\n", ir.Format(step.Args))
		}
		if step.Failed() {
			fmt.Fprintf(w, "  error: %s\n", step.Error)
			continue
		}
		fmt.Fprintf(w, "  columns: %v\n", step.Columns)
		for _, row := range step.Rows {
			fmt.Fprintf(w, "  %s\n", ir.Format(row))
		}
		fmt.Fprintf(w, "  digest: %s\n", step.Digest)
	}

	for _, e := range result.Errors {
		fmt.Fprintf(w, "\n%s\n", e)
	}
	return nil
}
