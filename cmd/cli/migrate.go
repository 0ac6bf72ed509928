package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/esg/internal/bootstrap"
	"github.com/turtacn/esg/internal/config"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			noAutoMigrate := func(cfg *config.Config) { cfg.Database.AutoMigrate = false }
			return withContainer(cmd, noAutoMigrate, func(ctx context.Context, c *bootstrap.Container) error {
				if err := c.DB.AutoMigrate(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			})
		},
	}
}
