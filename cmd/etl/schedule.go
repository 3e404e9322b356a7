package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fashionetl/internal/observability"
	"fashionetl/internal/pipeline"
)

var scheduleSpec string

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the pipeline on a cron schedule and serve /metrics",
	Args:  cobra.NoArgs,
	RunE:  runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleSpec, "cron", "@every 6h", "cron expression or descriptor")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	metrics := observability.New()
	runner, err := pipeline.New(cfg, cmd.OutOrStdout(), metrics)
	if err != nil {
		return err
	}
	defer runner.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := cron.New(cron.WithParser(cronParser))
	// runs never overlap
	_, err = sched.AddJob(scheduleSpec, cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		if _, err := runner.Run(ctx); err != nil {
			zap.S().Errorf("scheduled run failed: %v", err)
		}
	})))
	if err != nil {
		return err
	}

	metrics.Start(cfg.MetricsPort)
	zap.S().Infof("scheduled %q, metrics on :%s/metrics", scheduleSpec, cfg.MetricsPort)
	sched.Start()

	<-ctx.Done()
	<-sched.Stop().Done()
	return nil
}
