package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/resumeforge/reconcile/internal/types"
)

var previewCmd = &cobra.Command{
	Use:   "preview [employees|teams] <primary-id> <secondary-id>",
	Short: "Preview a merge without executing it",
	Long: `Show what merging the secondary entity into the primary would do:
how many assignments and qualifications move, and how many duplicate
assignments the merge would drop. Nothing is modified.`,
	Args:      cobra.ExactArgs(3),
	ValidArgs: []string{"employees", "teams"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		var (
			impact *types.MergeImpact
			err    error
		)
		switch args[0] {
		case "employees":
			impact, err = store.PreviewEmployeeMerge(ctx, args[1], args[2])
		case "teams":
			impact, err = store.PreviewTeamMerge(ctx, args[1], args[2])
		default:
			return fmt.Errorf("unknown kind %q", args[0])
		}
		if err != nil {
			return err
		}

		logger.Debug().Fields(impact.Record()).Msg("merge preview")
		printImpact(impact)
		return nil
	},
}

func printImpact(impact *types.MergeImpact) {
	cyan := color.New(color.FgCyan).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Printf("\n%s\n\n", yellow(fmt.Sprintf("Merge preview: %s <- %s", impact.PrimaryName, impact.SecondaryName)))
	fmt.Printf("  Assignments:    %d + %d, %d overlapping -> %s after merge\n",
		impact.PrimaryAssignments, impact.SecondaryAssignments,
		impact.OverlappingAssignments, cyan(fmt.Sprintf("%d", impact.AssignmentsAfter)))
	if impact.Kind == types.KindEmployee {
		fmt.Printf("  Qualifications: %d + %d -> %s after merge\n",
			impact.PrimaryQualifications, impact.SecondaryQualifications,
			cyan(fmt.Sprintf("%d", impact.QualificationsAfter)))
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(previewCmd)
}
