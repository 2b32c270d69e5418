package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/resumeforge/reconcile/internal/types"
)

var (
	mergePolicy   string
	mergeEmployee string
)

var mergeCmd = &cobra.Command{
	Use:   "merge [employees|teams] <primary-id> <secondary-id>",
	Short: "Merge the secondary entity into the primary",
	Long: `Fold the secondary entity into the primary in one transaction.
Relationships move to the primary, duplicates are dropped, and the
secondary is deleted. Run "reconcile preview" first to see the impact.

The --policy flag controls conflicting scalar fields:
  primary    keep the primary's values
  secondary  take the secondary's values where set
  richer     keep whichever value carries more information (default)

Role labels merge within a single employee:
  reconcile merge roles --employee <id> "Project Manager" "Proj Manager"`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		green := color.New(color.FgGreen).SprintFunc()

		if args[0] == "roles" {
			if mergeEmployee == "" {
				return fmt.Errorf("role merges need --employee")
			}
			result, err := store.MergeRoles(ctx, mergeEmployee, args[1], args[2])
			if err != nil {
				return err
			}
			logger.Info().Fields(result.Record()).Msg("role merge executed")
			fmt.Printf("\n%s Merged %q into %q (%d assignment(s) updated)\n\n",
				green("✓"), result.SecondaryRole, result.PrimaryRole, result.AssignmentsUpdated)
			return nil
		}

		policy := types.FieldPolicy(mergePolicy)
		var (
			result *types.MergeResult
			err    error
		)
		switch args[0] {
		case "employees":
			result, err = store.MergeEmployees(ctx, args[1], args[2], policy)
		case "teams":
			result, err = store.MergeTeams(ctx, args[1], args[2], policy)
		default:
			return fmt.Errorf("unknown kind %q", args[0])
		}
		if err != nil {
			return err
		}

		logger.Info().Fields(result.Record()).Msg("merge executed")
		fmt.Printf("\n%s Merged %q into %q\n", green("✓"), result.SecondaryName, result.PrimaryName)
		fmt.Printf("  Assignments moved:     %d\n", result.AssignmentsMoved)
		fmt.Printf("  Duplicates removed:    %d\n", result.DuplicateAssignmentsRemoved)
		if result.Kind == types.KindEmployee {
			fmt.Printf("  Qualifications moved:  %d\n", result.QualificationsMoved)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	mergeCmd.Flags().StringVar(&mergePolicy, "policy", string(types.PolicyPreferRicher), "field conflict policy: primary, secondary or richer")
	mergeCmd.Flags().StringVar(&mergeEmployee, "employee", "", "employee id for role merges")
	rootCmd.AddCommand(mergeCmd)
}
