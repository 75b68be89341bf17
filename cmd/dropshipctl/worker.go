package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const workerStopTimeout = 30 * time.Second

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the scheduled catalog sync worker",
	Long: `Start the background worker that enqueues hourly, daily and weekly
catalog syncs and runs them on the job queue until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	app, closeApp, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer closeApp()
	log := app.Logger

	jobs, trigger, err := app.NewScheduler()
	if err != nil {
		return err
	}
	if err := jobs.Start(ctx); err != nil {
		return err
	}
	if err := trigger.Start(ctx); err != nil {
		_ = jobs.Stop(context.Background())
		return err
	}
	for frequency, next := range trigger.NextRuns() {
		log.Info("Catalog sync scheduled", zap.String("frequency", string(frequency)), zap.Time("next_run", next))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down worker...")

		stopCtx, cancel := context.WithTimeout(context.Background(), workerStopTimeout)
		defer cancel()
		if err := trigger.Stop(stopCtx); err != nil {
			log.Error("Failed to stop catalog sync trigger", zap.Error(err))
		}
		return jobs.Stop(stopCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Worker stopped with error", zap.Error(err))
		return err
	}
	log.Info("Worker exited")
	return nil
}
