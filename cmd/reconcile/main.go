// Command reconcile ingests resume documents into a local database and
// reconciles the duplicate employees, teams and role labels that
// repeated submissions create.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/resumeforge/reconcile/internal/storage"
	"github.com/resumeforge/reconcile/internal/storage/sqlite"
)

var (
	configPath string
	dbPath     string
	verbose    bool

	cfg    *appConfig
	store  storage.Storage
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Resume ingestion and entity reconciliation",
	Long: `Reconcile ingests SF-330 resume documents from an object-storage bucket,
extracts structured candidate data from them, and maintains a local
database of employees, teams, projects and assignments.

Repeated submissions create near-duplicate entities ("Jon Smith" vs
"John Smith", "Acme Eng" vs "Acme Engineering"). The duplicates, preview
and merge commands find and fold those together under review.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if dbPath != "" {
			cfg.Storage.Path = dbPath
		}

		logger = newLogger(verbose)

		store, err = sqlite.New(cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			store.Close()
		}
	},
}

// newLogger builds the CLI logger: human-readable console output, debug
// level behind --verbose.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default .reconcile/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
