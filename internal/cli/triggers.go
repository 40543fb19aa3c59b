package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pbk-dev/pbk/internal/evolution"
	"github.com/pbk-dev/pbk/internal/ui"
)

var triggersReport bool

var triggersCmd = &cobra.Command{
	Use:   "triggers",
	Short: "Detect evolution triggers",
	Long: `Checks whether an evolution cycle is due: calendar cadence, stale
command reviews, Claude version upgrades in the changelog, and pending
user feedback under todos/.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmds, warnings, err := loadPlaybookCommands()
		if err != nil {
			return handleError(ErrPlaybookNotFound, err, "Check the playbook path")
		}

		now := time.Now()
		detector := evolution.NewDetector(getPlaybookPath(), now)
		triggers := detector.Detect(cmds)

		if triggersReport {
			path := filepath.Join(getPlaybookPath(), evolution.TriggersReportFile)
			if err := evolution.WriteTriggersReport(path, triggers, now); err != nil {
				return handleError(ErrFileWriteError, err, "")
			}
			if !isJSONOutput() {
				fmt.Println(ui.Successf("Trigger report written to %s", path))
			}
		}

		if isJSONOutput() {
			outputSuccessWithWarnings(triggers, warnings, &Meta{Count: len(triggers)})
			return nil
		}

		if len(triggers) == 0 {
			fmt.Println(ui.Success("No evolution triggers detected."))
			return nil
		}

		fmt.Println(ui.Header("Evolution Triggers"))
		for _, t := range triggers {
			symbol := ui.SymbolInfo
			switch t.Severity {
			case "high":
				symbol = ui.SymbolError
			case "medium":
				symbol = ui.SymbolWarning
			}
			fmt.Printf("%s [%s] %s\n", symbol, t.Type, t.Message)
			if t.Recommendation != "" {
				fmt.Printf("  %s\n", ui.Hint(t.Recommendation))
			}
		}
		return nil
	},
}

func init() {
	triggersCmd.Flags().BoolVar(&triggersReport, "report", false, "Also write the markdown trigger report")
	rootCmd.AddCommand(triggersCmd)
}
