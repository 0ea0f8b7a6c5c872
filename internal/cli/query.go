package cli

import (
	"github.com/spf13/cobra"
)

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <sql> [args...]",
		Short: "Run SQL with the URL functions installed",
		Long: `Run one SQL statement against the database with every url_* function
and the url_query_each table available. Extra arguments bind to ? parameters
as text.

Examples:
  sqliteurl query "SELECT url_host('https://sqlite.org/src')"
  sqliteurl query "SELECT name, value FROM url_query_each(?)" "a=1&b=2"
  sqliteurl --db links.db query "SELECT url_valid(href) FROM links"`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, args[0], args[1:], cmd)
		},
	}

	return cmd
}

func runQuery(opts *RootOptions, sqlText string, params []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, closeStore, err := opts.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	args := make([]any, len(params))
	for i, p := range params {
		args[i] = p
	}

	formatter.VerboseLog("Running on %s (%s)", opts.DB, st.Driver())
	res, err := st.QuerySQL(cmd.Context(), sqlText, args...)
	if err != nil {
		return reportFailure(formatter, ErrCodeQuery, "query failed", err)
	}
	return formatter.Rows(res)
}

// reportFailure outputs err through the formatter and returns an ExitFailure
// so Execute does not print it again.
func reportFailure(f *OutputFormatter, code, message string, err error) error {
	if outErr := f.Error(code, message+": "+err.Error(), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitFailure, message, err)
}
