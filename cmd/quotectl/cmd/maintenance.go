package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/quotedesk/internal/migrations"
	"github.com/Simplici0/quotedesk/internal/seed"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			database, err := opts.openDB(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := migrations.Up(ctx, database, opts.logger); err != nil {
				return err
			}
			version, err := migrations.Version(database)
			if err != nil {
				return err
			}

			opts.logger.Info("migrations applied", zap.Int64("version", version))
			fmt.Fprintf(cmd.OutOrStdout(), "database at version %d\n", version)
			return nil
		},
	}
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var email, password string

	c := &cobra.Command{
		Use:   "seed",
		Short: "Create the admin user, default categories and house agent",
		Long: `Seed is idempotent: rows that already exist are left untouched.
Admin credentials default to ADMIN_EMAIL and ADMIN_PASSWORD.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			database, err := opts.openDB(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := migrations.Up(ctx, database, opts.logger); err != nil {
				return err
			}
			stats, err := seed.Run(ctx, database, seed.Config{AdminEmail: email, AdminPassword: password})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seed complete: %d inserted\n", stats.Inserts)
			return nil
		},
	}

	c.Flags().StringVar(&email, "admin-email", opts.cfg.AdminEmail, "admin user email")
	c.Flags().StringVar(&password, "admin-password", opts.cfg.AdminPassword, "admin user password")
	return c
}
