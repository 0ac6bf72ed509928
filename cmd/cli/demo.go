package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/esg/internal/application/service"
	"github.com/turtacn/esg/internal/bootstrap"
)

func newDemoCommand() *cobra.Command {
	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Seed or clear demo data",
	}

	var fixturePath string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo tenant with sample tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture, err := loadFixture(fixturePath)
			if err != nil {
				return err
			}
			return withContainer(cmd, nil, func(ctx context.Context, c *bootstrap.Container) error {
				result, err := c.Services.Demo.Seed(ctx, fixture)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	seedCmd.Flags().StringVar(&fixturePath, "fixture", "", "YAML fixture to load instead of the built-in demo company")

	clearCmd := &cobra.Command{
		Use:   "clear <tenant-id>",
		Short: "Delete a tenant's tasks and reset it to onboarding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, nil, func(ctx context.Context, c *bootstrap.Container) error {
				resp, err := c.Services.Demo.Clear(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "tenant %s reset, %d tasks deleted\n", resp.TenantID, resp.DeletedTasks)
				return nil
			})
		},
	}

	demoCmd.AddCommand(seedCmd, clearCmd)
	return demoCmd
}

func loadFixture(path string) (*service.DemoFixture, error) {
	if path == "" {
		return service.DefaultDemoFixture()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return service.LoadDemoFixture(raw)
}
