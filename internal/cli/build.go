package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sqliteurl/internal/ir"
	"github.com/roach88/sqliteurl/internal/queryir"
	"github.com/roach88/sqliteurl/internal/urlbuild"
	"github.com/roach88/sqliteurl/internal/urlfunc"
)

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <base> [key value]...",
		Short: "Build a URL with url()",
		Long: fmt.Sprintf(`Build a URL by applying key/value operations to a base, left to right.
An empty base starts from a "scheme://" placeholder.

Keys: %v

Examples:
  sqliteurl build https://sqlite.org path footprint.html
  sqliteurl build "" scheme https host example.com path /a query b=c`, urlbuild.Keys),
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(rootOpts, args[0], args[1:], cmd)
		},
	}

	return cmd
}

func runBuild(opts *RootOptions, base string, kv []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if _, err := urlbuild.ParseOps(kv); err != nil {
		return WrapExitError(ExitCommandError, "invalid operations", err)
	}

	callArgs := make([]queryir.Expr, 0, len(kv)+1)
	callArgs = append(callArgs, queryir.Lit(base))
	for _, s := range kv {
		callArgs = append(callArgs, queryir.Lit(s))
	}
	q := queryir.Project{Columns: []queryir.Column{{
		Name: "url",
		Expr: queryir.Call{Func: urlfunc.NameURL, Args: callArgs},
	}}}

	st, closeStore, err := opts.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	res, err := st.Run(cmd.Context(), q)
	if err != nil {
		return reportFailure(formatter, ErrCodeInvalid, "build failed", err)
	}
	built := ir.Format(res.Rows[0][0])

	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"url": built})
	}
	return formatter.Success(built)
}
