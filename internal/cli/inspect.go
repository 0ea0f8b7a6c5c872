package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/sqliteurl/internal/ir"
	"github.com/roach88/sqliteurl/internal/queryir"
	"github.com/roach88/sqliteurl/internal/urlfunc"
)

// components lists the getter columns of inspect in output order.
var components = []struct {
	Column string
	Func   string
}{
	{"scheme", urlfunc.NameScheme},
	{"user", urlfunc.NameUser},
	{"password", urlfunc.NamePassword},
	{"host", urlfunc.NameHost},
	{"path", urlfunc.NamePath},
	{"query", urlfunc.NameQuery},
	{"fragment", urlfunc.NameFragment},
}

// ValidEntry is one url_valid verdict.
type ValidEntry struct {
	URL   string `json:"url"`
	Valid bool   `json:"valid"`
}

// NewValidCommand creates the valid command.
func NewValidCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "valid <url>...",
		Short: "Check URLs with url_valid()",
		Long: `Check whether each argument parses as an absolute URL.

Exit codes:
  0 - Every URL is valid
  1 - At least one URL is invalid`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValid(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runValid(opts *RootOptions, urls []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, closeStore, err := opts.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	entries := make([]ValidEntry, 0, len(urls))
	invalid := 0
	for _, u := range urls {
		res, err := st.Run(cmd.Context(), queryir.Project{Columns: []queryir.Column{{
			Name: "valid",
			Expr: queryir.Call{Func: urlfunc.NameValid, Args: []queryir.Expr{queryir.Lit(u)}},
		}}})
		if err != nil {
			return reportFailure(formatter, ErrCodeQuery, "url_valid failed", err)
		}
		ok := ir.Equal(res.Rows[0][0], ir.Int(1))
		if !ok {
			invalid++
		}
		entries = append(entries, ValidEntry{URL: u, Valid: ok})
	}

	if formatter.Format == "json" {
		if err := formatter.Success(entries); err != nil {
			return err
		}
	} else {
		for _, e := range entries {
			formatter.Mark(e.Valid, "%s", e.URL)
		}
	}

	if invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d invalid URL(s)", invalid))
	}
	return nil
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <url>",
		Short: "Show every component of a URL",
		Long: `Parse a URL and print each component through the url_* getters.
Absent components print as empty strings.

Example:
  sqliteurl inspect "https://user:pw@example.com/a?b=c#d"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runInspect(opts *RootOptions, u string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cols := make([]queryir.Column, len(components))
	for i, c := range components {
		cols[i] = queryir.Column{
			Name: c.Column,
			Expr: queryir.Call{Func: c.Func, Args: []queryir.Expr{queryir.Lit(u)}},
		}
	}

	st, closeStore, err := opts.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	res, err := st.Run(cmd.Context(), queryir.Project{Columns: cols})
	if err != nil {
		return reportFailure(formatter, ErrCodeInvalid, "inspect failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(res.Objects()[0])
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	for i, col := range res.Columns {
		fmt.Fprintf(tw, "%s\t%s\n", col, ir.Format(res.Rows[0][i]))
	}
	return tw.Flush()
}
