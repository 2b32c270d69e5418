package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the bucket continuously",
	Long: `Run the ingestion pipeline on a timer until interrupted. Each cycle
behaves exactly like a single "reconcile ingest" run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := buildPipeline()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := p.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		logger.Info().Msg("watch stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
