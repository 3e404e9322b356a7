package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fashionetl/internal/config"
	"fashionetl/internal/logging"
	"fashionetl/internal/pipeline"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "etl",
	Short:         "Scrape the Fashion Studio catalogue and load it into CSV, Google Sheets and a database",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		_, err := logging.Init(cfg.LogMode, cfg.LogFile)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	RunE: runPipeline,
}

func runPipeline(cmd *cobra.Command, args []string) error {
	runner, err := pipeline.New(cfg, cmd.OutOrStdout(), nil)
	if err != nil {
		return err
	}
	defer runner.Close()

	_, err = runner.Run(cmd.Context())
	return err
}

// go run ./cmd/etl
// go run ./cmd/etl schedule --cron "@every 6h"
func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		zap.S().Error(err)
		os.Exit(1)
	}
}
