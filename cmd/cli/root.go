// Package cli implements the esg-admin command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/esg/internal/bootstrap"
	"github.com/turtacn/esg/internal/config"
	"github.com/turtacn/esg/internal/infrastructure/monitoring"
)

var configDir string

// NewRootCommand builds the esg-admin command tree.
// NewRootCommand 构建 esg-admin 命令树。
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "esg-admin",
		Short: "Admin CLI for the ESG compliance service",
		Long: `esg-admin performs administrative tasks against the ESG database:
schema migration, tenant inspection, score recomputation and demo data.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configDir, "config", "", "directory containing config.yaml")

	root.AddCommand(newMigrateCommand(), newTenantCommand(), newDemoCommand(), newAuditCommand())
	return root
}

// Execute is the main entry point for the CLI application.
// Execute 是 CLI 应用程序的主入口点。
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withContainer loads configuration, builds the service graph, runs fn and
// releases everything afterwards. adjust may tweak the configuration first.
func withContainer(cmd *cobra.Command, adjust func(*config.Config), fn func(ctx context.Context, c *bootstrap.Container) error) error {
	var paths []string
	if configDir != "" {
		paths = append(paths, configDir)
	}
	cfg, err := config.NewLoader(paths...).Load()
	if err != nil {
		return err
	}
	if adjust != nil {
		adjust(cfg)
	}

	// Keep stdout for command output.
	log, err := monitoring.NewZapLogger(&config.LogConfig{Level: "warn", Format: "console", OutputPath: "stderr"})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close(context.Background()) }()

	return monitoring.TraceOperation(ctx, c.Tracing, "cli "+cmd.CommandPath(), func(ctx context.Context) error {
		return fn(ctx, c)
	}, map[string]interface{}{"args": cmd.Flags().Args()})
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
