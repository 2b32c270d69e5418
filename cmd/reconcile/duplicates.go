package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/resumeforge/reconcile/internal/match"
	"github.com/resumeforge/reconcile/internal/reconcile"
)

var (
	duplicatesThreshold float64
	duplicatesEmployee  string
)

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates [employees|teams|roles]",
	Short: "Find merge candidates",
	Long: `Scan the database for entities similar enough to be the same thing.

Employee and team pairs qualify when their name similarity reaches the
threshold, or when they share a project regardless of score. Role scans
are per employee and require --employee.

Example:
  reconcile duplicates employees
  reconcile duplicates teams --threshold 0.8
  reconcile duplicates roles --employee <id>`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"employees", "teams", "roles"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		finder := reconcile.NewFinder(store, match.NewScorer(cfg.matchConfig()), logger)

		if duplicatesThreshold == 0 {
			duplicatesThreshold = cfg.Match.Threshold
		}

		var (
			pairs []reconcile.CandidatePair
			err   error
		)
		switch args[0] {
		case "employees":
			pairs, err = finder.FindDuplicateEmployees(ctx, duplicatesThreshold)
		case "teams":
			pairs, err = finder.FindDuplicateTeams(ctx, duplicatesThreshold)
		case "roles":
			if duplicatesEmployee == "" {
				return fmt.Errorf("role scans need --employee")
			}
			pairs, err = finder.FindDuplicateRoles(ctx, duplicatesEmployee, duplicatesThreshold)
		default:
			return fmt.Errorf("unknown kind %q", args[0])
		}
		if err != nil {
			return err
		}

		printPairs(pairs)
		return nil
	},
}

func printPairs(pairs []reconcile.CandidatePair) {
	gray := color.New(color.FgHiBlack).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	if len(pairs) == 0 {
		fmt.Printf("\n%s\n\n", gray("No merge candidates found"))
		return
	}

	fmt.Printf("\n%s\n\n", yellow(fmt.Sprintf("%d merge candidate(s):", len(pairs))))
	for _, p := range pairs {
		fmt.Printf("  %s  %s / %s\n", cyan(fmt.Sprintf("%.2f", p.Score)), p.PrimaryName, p.SecondaryName)
		fmt.Printf("        %s\n", gray(p.Reason))
		if p.Kind != "role" {
			fmt.Printf("        %s\n", gray(fmt.Sprintf("primary %s  secondary %s", p.PrimaryID, p.SecondaryID)))
		}
	}
	fmt.Println()
}

func init() {
	duplicatesCmd.Flags().Float64Var(&duplicatesThreshold, "threshold", 0, "similarity threshold (default from config)")
	duplicatesCmd.Flags().StringVar(&duplicatesEmployee, "employee", "", "employee id for role scans")
	rootCmd.AddCommand(duplicatesCmd)
}
