package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/esg/internal/bootstrap"
	"github.com/turtacn/esg/internal/infrastructure/consumers"
	"github.com/turtacn/esg/internal/infrastructure/persistence/postgres"
)

func newAuditCommand() *cobra.Command {
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect and archive audit events",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list <tenant-id>",
		Short: "Show the most recent audit events of a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, nil, func(ctx context.Context, c *bootstrap.Container) error {
				events, err := postgres.NewAuditRepository(c.DB.DB()).FindByTenant(ctx, args[0], limit)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "TIMESTAMP\tEVENT\tRESOURCE\tTRACE")
				for _, e := range events {
					fmt.Fprintf(w, "%s\t%s\t%s/%s\t%s\n", e.Timestamp.Format(time.RFC3339), e.EventType, e.ResourceType, e.ResourceID, e.TraceID)
				}
				return w.Flush()
			})
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 50, "maximum number of events")

	consumeCmd := &cobra.Command{
		Use:   "consume",
		Short: "Archive audit events from Kafka into the database until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, nil, func(ctx context.Context, c *bootstrap.Container) error {
				if len(c.Config.Kafka.Brokers) == 0 {
					return fmt.Errorf("kafka.brokers is not configured")
				}
				ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				archiver := consumers.NewAuditArchiver(c.Config.Kafka, c.Config.Audit.SigningKey,
					postgres.NewAuditRepository(c.DB.DB()), c.Logger)
				defer func() { _ = archiver.Close() }()
				return archiver.Run(ctx)
			})
		},
	}

	auditCmd.AddCommand(listCmd, consumeCmd)
	return auditCmd
}
