package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var deleteEmployeeCmd = &cobra.Command{
	Use:   "delete-employee <id>",
	Short: "Delete an employee and everything that hangs off it",
	Long: `Remove an employee outright. Its assignments and qualifications go
with it, and projects left with no remaining assignments are cleaned up
in the same transaction.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		emp, err := store.GetEmployee(ctx, args[0])
		if err != nil {
			return err
		}
		if err := store.DeleteEmployee(ctx, args[0]); err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("\n%s Deleted %q\n\n", green("✓"), emp.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteEmployeeCmd)
}
