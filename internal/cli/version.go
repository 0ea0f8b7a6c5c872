package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/sqliteurl/internal/ir"
	"github.com/roach88/sqliteurl/internal/queryir"
	"github.com/roach88/sqliteurl/internal/urlfunc"
)

// VersionInfo is the JSON payload of the version command.
type VersionInfo struct {
	Version string `json:"version"`
	Debug   string `json:"debug"`
	Driver  string `json:"driver"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print url_version() and url_debug()",
		Long: `Print the extension version and build information as reported by the
loaded extension on the selected driver.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(rootOpts, cmd)
		},
	}
}

func runVersion(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, closeStore, err := opts.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	res, err := st.Run(cmd.Context(), queryir.Project{Columns: []queryir.Column{
		{Name: "version", Expr: queryir.Call{Func: urlfunc.NameVersion}},
		{Name: "debug", Expr: queryir.Call{Func: urlfunc.NameDebug}},
	}})
	if err != nil {
		return reportFailure(formatter, ErrCodeQuery, "version query failed", err)
	}

	info := VersionInfo{
		Version: ir.Format(res.Rows[0][0]),
		Debug:   ir.Format(res.Rows[0][1]),
		Driver:  string(st.Driver()),
	}
	if formatter.Format == "json" {
		return formatter.Success(info)
	}
	return formatter.Success(info.Debug)
}
