package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <employee-id>",
	Short: "Show one employee in full",
	Long: `Display an employee with its qualifications, role labels and project
assignments.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		emp, err := store.GetEmployee(ctx, args[0])
		if err != nil {
			return err
		}
		quals, err := store.ListQualifications(ctx, emp.ID)
		if err != nil {
			return err
		}
		assignments, err := store.ListAssignments(ctx, emp.ID)
		if err != nil {
			return err
		}
		roles, err := store.EmployeeRoles(ctx, emp.ID)
		if err != nil {
			return err
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		fmt.Printf("\n%s %s\n\n", cyan(emp.Name), gray(emp.ID))
		if emp.TotalYears != nil {
			fmt.Printf("  Experience: %d year(s)", *emp.TotalYears)
			if emp.FirmYears != nil {
				fmt.Printf(" (%d with current firm)", *emp.FirmYears)
			}
			fmt.Println()
		}
		if emp.Education != "" {
			fmt.Printf("  Education:  %s\n", emp.Education)
		}
		if len(roles) > 0 {
			fmt.Printf("  Roles:      %s\n", strings.Join(roles, ", "))
		}
		if len(emp.SourceFiles) > 0 {
			fmt.Printf("  Sources:    %s\n", gray(strings.Join(emp.SourceFiles, ", ")))
		}

		if len(quals) > 0 {
			fmt.Printf("\n%s\n", yellow("Qualifications:"))
			for _, q := range quals {
				marker := " "
				if q.IsPrimary {
					marker = "*"
				}
				text := q.Registration
				if text == "" {
					text = q.Other
				}
				fmt.Printf("  %s %s %s\n", marker, text, gray("("+q.SourceFilename+")"))
			}
		}

		if len(assignments) > 0 {
			fmt.Printf("\n%s\n", yellow("Assignments:"))
			for _, a := range assignments {
				if a.ProjectID == nil {
					fmt.Printf("  - %s %s\n", a.Role, gray("(no project)"))
					continue
				}
				proj, err := store.GetProject(ctx, *a.ProjectID)
				if err != nil {
					return err
				}
				fmt.Printf("  - %s %s\n", proj.TitleAndLocation, gray("as "+a.Role))
			}
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
