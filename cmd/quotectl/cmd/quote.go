package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Simplici0/quotedesk/internal/quoting"
	"github.com/Simplici0/quotedesk/internal/store"
)

func newQuoteCmd(opts *rootOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "quote",
		Short: "Inspect saved quotes",
	}

	c.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print the plain-text summary of a quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid quote id %q", args[0])
			}

			ctx := cmd.Context()
			database, err := opts.openDB(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			svc := quoting.NewService(store.New(database), opts.logger)
			summary, err := svc.Summary(ctx, id)
			if err != nil {
				return fmt.Errorf("load quote %d: %w", id, err)
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), summary)
			return err
		},
	})

	return c
}
