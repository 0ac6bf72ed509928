package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/turtacn/esg/internal/application/dto"
	"github.com/turtacn/esg/internal/bootstrap"
)

func newTenantCommand() *cobra.Command {
	tenantCmd := &cobra.Command{
		Use:   "tenant",
		Short: "Inspect tenants and their scores",
	}

	var page, pageSize int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tenants with their current scores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, nil, func(ctx context.Context, c *bootstrap.Container) error {
				resp, err := c.Services.Tenants.ListTenants(ctx, &dto.ListTenantsRequest{Page: page, PageSize: pageSize})
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tENV\tSOCIAL\tGOV\tOVERALL")
				for _, t := range resp.Tenants {
					fmt.Fprintf(w, "%s\t%s\t%.1f\t%.1f\t%.1f\t%.1f\n", t.ID, t.Name,
						t.Environmental, t.Social, t.Governance, t.Overall)
				}
				fmt.Fprintf(w, "\npage %d of %d (%d tenants)\n", resp.Pagination.Page, resp.Pagination.TotalPages, resp.Pagination.Total)
				return w.Flush()
			})
		},
	}
	listCmd.Flags().IntVar(&page, "page", 1, "page number")
	listCmd.Flags().IntVar(&pageSize, "page-size", 20, "tenants per page")

	recomputeCmd := &cobra.Command{
		Use:   "recompute <tenant-id>",
		Short: "Recompute a tenant's progress and ESG scores",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, nil, func(ctx context.Context, c *bootstrap.Container) error {
				scores, err := c.Services.Tenants.RecomputeScores(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), scores)
			})
		},
	}

	tenantCmd.AddCommand(listCmd, recomputeCmd)
	return tenantCmd
}
