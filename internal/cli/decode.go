package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sqliteurl/internal/ir"
	"github.com/roach88/sqliteurl/internal/queryir"
	"github.com/roach88/sqliteurl/internal/relation"
)

// DecodeOptions holds flags for the decode command.
type DecodeOptions struct {
	*RootOptions
	Name  string // keep only entries with this name
	Limit int    // stop after this many rows
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DecodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "decode <payload>",
		Short: "Decode a form payload with url_query_each",
		Long: `Decode an application/x-www-form-urlencoded payload into
(ordinal, name, value) rows, in payload order.

The sqlite3 driver provides url_query_each only when built with the
sqlite_vtable tag; use --driver sqlite otherwise.

Examples:
  sqliteurl decode "a=1&b=2&a=3"
  sqliteurl decode "a=1&b=2&a=3" --name a --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "only rows with this name")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum rows (0 for all)")

	return cmd
}

// decodeQuery builds the url_query_each scan for payload.
func decodeQuery(payload, name string, limit int) queryir.Scan {
	q := queryir.Scan{
		Relation: relation.QueryEach.Name,
		Args:     []queryir.Expr{queryir.Lit(payload)},
		Columns:  relation.QueryEach.Columns(),
		Limit:    limit,
	}
	if name != "" {
		q.Filter = queryir.Equals{Field: "name", Value: ir.Text(name)}
	}
	return q
}

func runDecode(opts *DecodeOptions, payload string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if opts.Limit < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --limit %d: must be non-negative", opts.Limit))
	}

	st, closeStore, err := opts.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	if !st.HasRelations() {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("%s is unavailable on driver %s (build with -tags sqlite_vtable or use --driver sqlite)", relation.QueryEach.Name, st.Driver()))
	}

	res, err := st.Run(cmd.Context(), decodeQuery(payload, opts.Name, opts.Limit))
	if err != nil {
		return reportFailure(formatter, ErrCodeQuery, "decode failed", err)
	}
	return formatter.Rows(res)
}
