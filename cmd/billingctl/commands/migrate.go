package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imrishuroy/go-rental-billing/internal/store"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the billing schema",
		Long: `Create the customers, orders and order_items tables and their
indexes. Statements are idempotent, so running migrate twice is safe.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			db, err := store.Open(ctx, cfg.Store())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}
