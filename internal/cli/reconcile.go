package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pbk-dev/pbk/internal/reconcile"
	"github.com/pbk-dev/pbk/internal/ui"
)

var reconcileFix bool

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile body Resource Hints with front-matter model_hint",
	Long: `Compares each command's body **Resource Hint:** against its
front-matter model_hint. The body is authoritative: with --fix the
front-matter is rewritten to match.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmds, warnings, err := loadPlaybookCommands()
		if err != nil {
			return handleError(ErrPlaybookNotFound, err, "Check the playbook path")
		}

		conflicts := reconcile.FindConflicts(cmds)

		if !reconcileFix {
			if isJSONOutput() {
				outputSuccessWithWarnings(conflicts, warnings, &Meta{Count: len(conflicts)})
				return nil
			}
			if len(conflicts) == 0 {
				fmt.Println(ui.Success("No conflicts found. Metadata is consistent with body Resource Hints."))
				return nil
			}
			fmt.Println(ui.Warningf("Found %d conflicts (body vs metadata):", len(conflicts)))
			fmt.Println()
			for _, c := range conflicts {
				fmt.Printf("  %s\n", ui.CommandName(c.Command))
				fmt.Printf("    Body says: %s\n", c.BodyHint)
				fmt.Printf("    Meta says: %s\n\n", c.MetaHint)
			}
			return nil
		}

		fixed, err := reconcile.Fix(conflicts)
		if err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccessWithWarnings(fixed, warnings, &Meta{Count: len(fixed)})
			return nil
		}
		if len(fixed) == 0 {
			fmt.Println(ui.Success("No conflicts to fix."))
			return nil
		}
		for _, c := range fixed {
			fmt.Printf("  %s %s: %s → %s\n", ui.SymbolSuccess, c.Command, c.MetaHint, c.BodyHint)
		}
		fmt.Printf("\n%s\n", ui.Successf("Fixed %d conflicts.", len(fixed)))
		return nil
	},
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileFix, "fix", false, "Rewrite front-matter to match the body")
	rootCmd.AddCommand(reconcileCmd)
}
