package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/roach88/sqliteurl/internal/config"
	"github.com/roach88/sqliteurl/internal/store"
	"github.com/roach88/sqliteurl/internal/urlfunc"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	DB         string
	Driver     string
	ConfigFile string

	// Config is resolved in PersistentPreRunE from flags, environment and
	// the config file.
	Config config.Config

	// TraceID correlates this invocation's JSON output with its logs.
	TraceID string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = config.Formats

// NewRootCommand creates the root command for the sqliteurl CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		SilenceUsage:  true,
		SilenceErrors: true,
		Use:           "sqliteurl",
		Short:         "URL functions for SQLite",
		Long:          "Build, validate, inspect and decode URLs with SQLite's url() function family.",
		Version:       urlfunc.VersionString(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigFile, cmd.Flags())
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			opts.Config = cfg
			opts.Verbose = cfg.Verbose
			opts.Format = cfg.Format
			opts.DB = cfg.DB
			opts.Driver = cfg.Driver
			opts.TraceID = NewTraceID()
			configureLogging(cmd, opts)
			return nil
		},
	}

	def := config.Default()
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", def.Format, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", def.DB, "SQLite database path")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", def.Driver, "SQLite driver (sqlite3|sqlite)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default ./sqliteurl.yaml when present)")

	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewBuildCommand(opts))
	cmd.AddCommand(NewValidCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewDecodeCommand(opts))
	cmd.AddCommand(NewEscapeCommand(opts))
	cmd.AddCommand(NewUnescapeCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))

	return cmd
}

// configureLogging installs a text slog handler on stderr. Verbose lowers
// the level to debug.
func configureLogging(cmd *cobra.Command, opts *RootOptions) {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler).With("trace_id", opts.TraceID))
}

// formatter builds the OutputFormatter for a command.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
		Color:     !color.NoColor && cmd.OutOrStdout() == os.Stdout,
		TraceID:   o.TraceID,
	}
}

// openStore opens the configured database. The returned func closes it.
func (o *RootOptions) openStore(ctx context.Context) (*store.Store, func(), error) {
	driver, err := store.ParseDriver(o.Driver)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "invalid driver", err)
	}

	slog.Debug("opening database", "path", o.DB, "driver", driver)
	st, err := store.OpenDriver(ctx, driver, o.DB)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}, nil
}

// Execute runs the root command and returns the process exit code.
// Failures a command already reported through its formatter are not printed
// again.
func Execute(ctx context.Context) int {
	cmd := NewRootCommand()
	err := cmd.ExecuteContext(ctx)
	var exitErr *ExitError
	if err != nil && !(errors.As(err, &exitErr) && exitErr.Code == ExitFailure) {
		cmd.PrintErrln(color.RedString("Error:"), err)
	}
	return GetExitCode(err)
}
