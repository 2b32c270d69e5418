package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var setPrimaryCmd = &cobra.Command{
	Use:   "set-primary <employee-id> <qualification-id>",
	Short: "Mark one qualification as the employee's primary",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := store.SetPrimaryQualification(context.Background(), args[0], args[1]); err != nil {
			return err
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("\n%s Primary qualification updated\n\n", green("✓"))
		return nil
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove projects with no remaining assignments",
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := store.SweepOrphanProjects(context.Background())
		if err != nil {
			return err
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("\n%s Removed %d orphan project(s)\n\n", green("✓"), removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setPrimaryCmd)
	rootCmd.AddCommand(sweepCmd)
}
