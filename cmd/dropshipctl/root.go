package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/erp/dropship/internal/infrastructure/bootstrap"
	"github.com/erp/dropship/internal/infrastructure/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "dropshipctl",
	Short: "Operate supplier catalog sync and dropship orders",
	Long: `dropshipctl runs supplier catalog syncs and materialization on demand,
hosts the scheduled sync worker and issues admin API tokens.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cmd.Help(); err != nil {
			fmt.Fprintln(os.Stderr, "Failed to display help:", err)
		}
	},
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize()
}

// openApp loads configuration and wires the services. The returned func
// releases everything and flushes the logger.
func openApp(ctx context.Context) (*bootstrap.App, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, err
	}
	return app, func() {
		if err := app.Close(context.Background()); err != nil {
			log.Error("Failed to release resources", zap.Error(err))
		}
		_ = log.Sync()
	}, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
