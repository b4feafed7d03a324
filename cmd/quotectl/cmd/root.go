// Package cmd provides the quotectl commands.
package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/quotedesk/internal/config"
	"github.com/Simplici0/quotedesk/internal/db"
	"github.com/Simplici0/quotedesk/internal/logging"
)

type rootOptions struct {
	cfg     config.Config
	dbPath  string
	verbose bool
	logger  *zap.Logger
}

// NewRootCmd builds the quotectl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{cfg: config.Load()}

	root := &cobra.Command{
		Use:   "quotectl",
		Short: "Price telecom quote line items and manage the quote database",
		Long: `quotectl prices line items with the same engine the quote server uses
and runs database maintenance against the server's SQLite file.

Examples:
  quotectl price --base 200 --install 600 --term "36 months" --markup 10
  quotectl price --base 200 --service-type DIA --catalog --commission 5 --max-commission 15
  quotectl migrate
  quotectl quote show 42`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := opts.cfg.LogLevel
			if opts.verbose {
				level = "debug"
			}
			logger, err := logging.NewWithWriter(logging.Config{Level: level, Format: opts.cfg.LogFormat}, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}
			opts.logger = logger
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.dbPath, "db", opts.cfg.DBPath, "path to the SQLite database")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(newPriceCmd(opts))
	root.AddCommand(newMigrateCmd(opts))
	root.AddCommand(newSeedCmd(opts))
	root.AddCommand(newQuoteCmd(opts))

	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *rootOptions) openDB(ctx context.Context) (*sql.DB, error) {
	o.logger.Debug("opening database", zap.String("path", o.dbPath))
	database, err := db.Open(ctx, o.dbPath)
	if err != nil {
		return nil, err
	}
	return database, nil
}
