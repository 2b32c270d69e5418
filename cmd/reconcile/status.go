package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		stats, err := store.Statistics(ctx)
		if err != nil {
			return err
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		fmt.Printf("\n%s\n\n", cyan("=== Reconcile Database ==="))
		fmt.Printf("  Employees:      %d\n", stats.Employees)
		fmt.Printf("  Teams:          %d\n", stats.Teams)
		fmt.Printf("  Projects:       %d\n", stats.Projects)
		fmt.Printf("  Assignments:    %d\n", stats.Assignments)
		fmt.Printf("  Qualifications: %d\n", stats.Qualifications)
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
