package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/sqliteurl/internal/ir"
	"github.com/roach88/sqliteurl/internal/queryir"
	"github.com/roach88/sqliteurl/internal/urlfunc"
)

// NewEscapeCommand creates the escape command.
func NewEscapeCommand(rootOpts *RootOptions) *cobra.Command {
	return newCodecCommand(rootOpts, "escape", urlfunc.NameEscape,
		"Percent-encode text with url_escape()",
		"Encode every byte outside [A-Za-z0-9] as %XX with uppercase hex digits.")
}

// NewUnescapeCommand creates the unescape command.
func NewUnescapeCommand(rootOpts *RootOptions) *cobra.Command {
	return newCodecCommand(rootOpts, "unescape", urlfunc.NameUnescape,
		"Decode percent-escapes with url_unescape()",
		"Decode %XX escapes. Malformed escapes pass through; decoded bytes must be valid UTF-8.")
}

func newCodecCommand(rootOpts *RootOptions, use, fn, short, long string) *cobra.Command {
	return &cobra.Command{
		Use:           use + " <text>",
		Short:         short,
		Long:          long,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCodec(rootOpts, fn, args[0], cmd)
		},
	}
}

func runCodec(opts *RootOptions, fn, text string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, closeStore, err := opts.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	res, err := st.Run(cmd.Context(), queryir.Project{Columns: []queryir.Column{{
		Name: "result",
		Expr: queryir.Call{Func: fn, Args: []queryir.Expr{queryir.Lit(text)}},
	}}})
	if err != nil {
		return reportFailure(formatter, ErrCodeInvalid, fn+" failed", err)
	}

	out := ir.Format(res.Rows[0][0])
	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"input": text, "result": out})
	}
	return formatter.Success(out)
}
