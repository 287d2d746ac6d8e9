// Package commands implements the billingctl administration CLI.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/imrishuroy/go-rental-billing/internal/app"
	"github.com/imrishuroy/go-rental-billing/internal/config"
)

type rootOptions struct {
	dbURL   string
	verbose bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "billingctl",
		Short: "Administer the rental billing database",
		Long: `billingctl manages the rental billing schema and renders invoices
outside the HTTP API.

Settings come from the same environment variables as the API; --db
overrides DATABASE_URL.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.dbURL, "db", "", "Database connection URL (defaults to $DATABASE_URL)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")

	root.AddCommand(
		newMigrateCmd(opts),
		newInvoiceCmd(opts),
		newCustomersCmd(opts),
	)
	return root
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *rootOptions) load() (config.Config, *slog.Logger, error) {
	if o.dbURL != "" {
		if err := os.Setenv("DATABASE_URL", o.dbURL); err != nil {
			return config.Config{}, nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	cfg.LogFormat = "text"
	if o.verbose {
		cfg.LogLevel = slog.LevelDebug
	} else if cfg.LogLevel < slog.LevelWarn {
		cfg.LogLevel = slog.LevelWarn
	}
	return cfg, cfg.NewLogger(os.Stderr), nil
}

func (o *rootOptions) app(ctx context.Context) (*app.App, error) {
	cfg, logger, err := o.load()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, "billingctl", logger)
}
