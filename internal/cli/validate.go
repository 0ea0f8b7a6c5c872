package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sqliteurl/internal/harness"
)

// FileProblem is one scenario file that failed to load.
type FileProblem struct {
	Path    string `json:"path"`
	Field   string `json:"field,omitempty"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool          `json:"valid"`
	Files  int           `json:"files"`
	Errors []FileProblem `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <paths...>",
		Short: "Check scenario files without running them",
		Long: `Load scenario files and check them against the scenario schema and
consistency rules without opening a database. Faster than test for
development feedback.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	files, err := harness.FindScenarios(paths, "")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}
	formatter.VerboseLog("Found %d scenario file(s)", len(files))

	result := ValidationResult{Valid: true, Files: len(files)}
	for _, file := range files {
		if _, err := harness.LoadScenario(file); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, problemFor(file, err))
		}
	}

	if result.Valid {
		if formatter.Format == "json" {
			return formatter.Success(result)
		}
		formatter.Mark(true, "%d scenario file(s) valid", result.Files)
		return nil
	}

	if formatter.Format == "json" {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: ErrCodeInvalid, Message: fmt.Sprintf("%d invalid scenario file(s)", len(result.Errors))},
		}); err != nil {
			return err
		}
	} else {
		for _, p := range result.Errors {
			formatter.Mark(false, "%s", p.Path)
			fmt.Fprintf(formatter.Writer, "  %s\n", p.Message)
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d invalid scenario file(s)", len(result.Errors)))
}

// problemFor extracts field and line from schema errors.
func problemFor(file string, err error) FileProblem {
	p := FileProblem{Path: file, Message: err.Error()}
	var se *harness.SchemaError
	if errors.As(err, &se) {
		p.Field = se.Field
		if se.Pos.IsValid() {
			p.Line = se.Pos.Line()
		}
	}
	return p
}
