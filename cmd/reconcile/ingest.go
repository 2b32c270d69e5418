package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/resumeforge/reconcile/internal/bucket"
	"github.com/resumeforge/reconcile/internal/extract"
	"github.com/resumeforge/reconcile/internal/pipeline"
	"github.com/resumeforge/reconcile/internal/processed"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one ingestion cycle over the document bucket",
	Long: `Scan the configured bucket once, extract candidate data from every
document not yet processed, and write the results to the database.

Files that fail transiently (service errors, timeouts) are left for the
next run. Unsupported or unreadable documents are marked processed so
they stop being retried.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := buildPipeline()
		if err != nil {
			return err
		}

		stats, err := p.Poll(context.Background())
		if err != nil {
			return err
		}

		printPollStats(stats)
		return nil
	},
}

// buildPipeline wires the bucket, extractor, processed-set and store
// into an ingestion pipeline from the loaded config.
func buildPipeline() (*pipeline.Pipeline, error) {
	var (
		bkt bucket.Store
		err error
	)
	if cfg.Bucket.URL != "" {
		bkt, err = bucket.NewSupabaseStore(cfg.Bucket.URL, cfg.Bucket.Name, os.Getenv("SUPABASE_KEY"))
	} else if cfg.Bucket.Dir != "" {
		bkt, err = bucket.NewDirStore(cfg.Bucket.Dir)
	} else {
		return nil, fmt.Errorf("no bucket configured: set bucket.url or bucket.dir")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket: %w", err)
	}

	extractor, err := extract.NewClient(cfg.extractConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction client: %w", err)
	}

	seen, err := processed.OpenFileStore(cfg.ProcessedLog)
	if err != nil {
		return nil, fmt.Errorf("failed to open processed-files log: %w", err)
	}

	pc, err := cfg.pipelineConfig()
	if err != nil {
		return nil, err
	}
	return pipeline.New(bkt, extractor, store, seen, pc, logger)
}

func printPollStats(stats *pipeline.PollStats) {
	green := color.New(color.FgGreen).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Printf("\n%s Ingestion complete (%s)\n\n", green("✓"), stats.Elapsed.Round(time.Millisecond))
	fmt.Printf("  Listed:            %d\n", stats.Listed)
	fmt.Printf("  Already processed: %s\n", gray(fmt.Sprintf("%d", stats.AlreadyProcessed)))
	fmt.Printf("  Ingested:          %s\n", green(fmt.Sprintf("%d", stats.Processed)))
	if stats.Unsupported > 0 {
		fmt.Printf("  Unsupported:       %d\n", stats.Unsupported)
	}
	if stats.Empty > 0 {
		fmt.Printf("  Empty:             %d\n", stats.Empty)
	}
	if stats.Failed > 0 {
		fmt.Printf("  Failed:            %s\n", red(fmt.Sprintf("%d", stats.Failed)))
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
