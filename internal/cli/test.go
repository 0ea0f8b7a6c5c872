package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sqliteurl/internal/harness"
	"github.com/roach88/sqliteurl/internal/store"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test [paths...]",
		Short: "Run scenario files",
		Long: `Run SQL scenario files (.yaml, .yml or .cue) against a fresh in-memory
database each, checking step expectations, assertions and golden traces.

Paths default to the test.paths config setting. Directories are searched
recursively.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  sqliteurl test ./scenarios
  sqliteurl test ./scenarios --filter "query_*"
  sqliteurl test ./scenarios --update
  sqliteurl test ./scenarios --driver sqlite --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, paths []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if len(paths) == 0 {
		paths = opts.Config.Test.Paths
	}
	filter := opts.Filter
	if !cmd.Flags().Changed("filter") {
		filter = opts.Config.Test.Filter
	}

	driver, err := store.ParseDriver(opts.Driver)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid driver", err)
	}

	files, err := harness.FindScenarios(paths, filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	if len(files) == 0 {
		if formatter.Format == "json" {
			return formatter.Success(&harness.SuiteResult{Scenarios: []harness.ScenarioReport{}})
		}
		fmt.Fprintln(formatter.Writer, "No scenarios found.")
		return nil
	}
	formatter.VerboseLog("Running %d scenario(s) on %s", len(files), driver)

	result, err := harness.RunSuite(cmd.Context(), files, harness.SuiteOptions{
		Driver:       driver,
		UpdateGolden: opts.Update,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "test run aborted", err)
	}

	if formatter.Format == "json" {
		return outputTestJSON(formatter, result)
	}
	return outputTestText(formatter, result)
}

// outputTestJSON outputs the suite result as JSON.
func outputTestJSON(f *OutputFormatter, result *harness.SuiteResult) error {
	if result.Failed > 0 {
		msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
		if err := f.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: ErrCodeTestFailed, Message: msg},
		}); err != nil {
			return err
		}
		// Test failures = exit code 1
		return NewExitError(ExitFailure, msg)
	}
	return f.Success(result)
}

// outputTestText outputs the suite result as text.
func outputTestText(f *OutputFormatter, result *harness.SuiteResult) error {
	w := f.Writer

	for _, s := range result.Scenarios {
		switch {
		case s.Skipped:
			fmt.Fprintf(w, "- %s (skipped: relations unavailable)\n", s.Name)
		case s.Golden == "updated":
			f.Mark(s.Pass, "%s (golden updated)", s.Name)
		default:
			f.Mark(s.Pass, "%s", s.Name)
		}
		for _, e := range s.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d skipped, %d total\n",
		result.Passed, result.Failed, result.Skipped, result.Total)

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	f.Mark(true, "All scenarios passed")
	return nil
}
