package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:       "list [employees|teams]",
	Short:     "List entities with their relationship counts",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"employees", "teams"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		gray := color.New(color.FgHiBlack).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()

		switch args[0] {
		case "employees":
			employees, err := store.ListEmployees(ctx)
			if err != nil {
				return err
			}
			fmt.Println()
			for _, e := range employees {
				years := ""
				if e.TotalYears != nil {
					years = fmt.Sprintf(", %d yrs", *e.TotalYears)
				}
				fmt.Printf("  %s %s\n", cyan(e.Name), gray(fmt.Sprintf("(%d project(s), %d qualification(s)%s)",
					e.ProjectCount, e.QualificationCount, years)))
				fmt.Printf("    %s\n", gray(e.ID))
			}
			fmt.Println()
		case "teams":
			teams, err := store.ListTeams(ctx)
			if err != nil {
				return err
			}
			fmt.Println()
			for _, t := range teams {
				loc := t.Location
				if loc != "" {
					loc = " - " + loc
				}
				fmt.Printf("  %s%s %s\n", cyan(t.FirmName), loc,
					gray(fmt.Sprintf("(%d employee(s), %d project(s))", t.EmployeeCount, t.ProjectCount)))
				fmt.Printf("    %s\n", gray(t.ID))
			}
			fmt.Println()
		default:
			return fmt.Errorf("unknown kind %q", args[0])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
