package main

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"posjournal/internal/cli"
	"posjournal/internal/config"
	applog "posjournal/internal/log"
)

// rootOptions holds global flags and the journal opened for the command.
type rootOptions struct {
	DBPath  string
	Catalog string
	Format  string
	Verbose bool

	cfg *config.Config
	app *cli.App
}

// validFormats defines the allowed output formats.
var validFormats = []string{"text", "json"}

// newRootCommand builds the command tree. The caller closes opts once the
// command has run, even when it failed.
func newRootCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posctl",
		Short: "Operate the POS sales journal from the terminal",
		Long: `posctl records sales and prints reports against the same journal
the posjournal server uses. Configuration comes from the environment
(.env is loaded); --db and --catalog override it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(validFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
			}
			return opts.open(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "SQLite journal file (selects the sqlite backend)")
	cmd.PersistentFlags().StringVar(&opts.Catalog, "catalog", "", "catalog file (.json, .yaml or .yml)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log to stderr")

	cmd.AddCommand(newCatalogCommand(opts))
	cmd.AddCommand(newRecordCommand(opts))
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newReportCommand(opts))
	cmd.AddCommand(newResetCommand(opts))

	return cmd
}

// open loads configuration, applies flag overrides and bootstraps the journal.
func (o *rootOptions) open(cmd *cobra.Command) error {
	cfg := config.Load()
	if o.DBPath != "" {
		cfg.DataBackend = "sqlite"
		cfg.SQLiteDBPath = o.DBPath
	}
	if o.Catalog != "" {
		cfg.CatalogFile = o.Catalog
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelError
	if o.Verbose {
		level = slog.LevelDebug
	}
	// Logs go to stderr so --format json output stays parseable.
	logger := applog.New(applog.Config{
		Level:     level,
		Component: applog.ComponentCLI,
		Format:    cfg.LogFormat,
		Output:    cmd.ErrOrStderr(),
	})
	applog.SetDefault(logger)

	app, err := cli.Bootstrap(cmd.Context(), cfg, logger, true)
	if err != nil {
		return err
	}
	if cfg.DataBackend == "memory" {
		logger.Warn("Using the in-memory backend; changes are lost when posctl exits")
	}

	o.cfg = cfg
	o.app = app
	return nil
}

func (o *rootOptions) close() error {
	if o.app == nil {
		return nil
	}
	err := o.app.Close()
	o.app = nil
	return err
}

func (o *rootOptions) printer(cmd *cobra.Command) *printer {
	return &printer{
		format:   o.Format,
		w:        cmd.OutOrStdout(),
		currency: o.cfg.Currency,
	}
}
