package cli

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pbk-dev/pbk/internal/evolution"
	"github.com/pbk-dev/pbk/internal/ui"
)

var (
	evoTrigger     string
	evoCapability  string
	evoRationale   string
	evoPRNumber    int
	evoRevertWhy   string
	evoTimelineOut string
)

var evoCmd = &cobra.Command{
	Use:   "evo",
	Short: "Manage the evolution audit trail",
}

func openAuditLog() (*evolution.Log, error) {
	return evolution.OpenLog(filepath.Join(getPlaybookPath(), evolution.AuditFile))
}

var evoRecordCmd = &cobra.Command{
	Use:   "record CYCLE",
	Short: "Start a new evolution cycle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := openAuditLog()
		if err != nil {
			return handleError(ErrFileReadError, err, "")
		}
		cycle, err := log.RecordCycle(args[0], evoTrigger, evoCapability)
		if err != nil {
			return handleError(ErrFileWriteError, err, "")
		}
		if isJSONOutput() {
			outputSuccess(cycle, nil)
		} else {
			fmt.Println(ui.Successf("Started evolution cycle %s (trigger: %s)", cycle.Cycle, cycle.Trigger))
		}
		return nil
	},
}

var evoChangeCmd = &cobra.Command{
	Use:   "change CYCLE COMMAND FIELD BEFORE AFTER",
	Short: "Record one metadata change in a cycle",
	Args:  cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := openAuditLog()
		if err != nil {
			return handleError(ErrFileReadError, err, "")
		}
		if err := log.RecordChange(args[0], args[1], args[2], args[3], args[4], evoRationale); err != nil {
			return handleError(ErrCycleNotFound, err, "Run 'pbk evo record' first")
		}
		if isJSONOutput() {
			outputSuccess(map[string]string{"cycle": args[0], "command": args[1], "field": args[2]}, nil)
		} else {
			fmt.Println(ui.Successf("Recorded %s.%s: %s → %s", args[1], args[2], args[3], args[4]))
		}
		return nil
	},
}

var evoLinkCmd = &cobra.Command{
	Use:   "link CYCLE SNAPSHOT_ID",
	Short: "Link a cycle to its pre-evolution snapshot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := openAuditLog()
		if err != nil {
			return handleError(ErrFileReadError, err, "")
		}
		if err := log.SetSnapshot(args[0], args[1]); err != nil {
			return handleError(ErrCycleNotFound, err, "")
		}
		if isJSONOutput() {
			outputSuccess(map[string]string{"cycle": args[0], "snapshot_id": args[1]}, nil)
		} else {
			fmt.Println(ui.Successf("Linked %s to snapshot %s", args[0], args[1]))
		}
		return nil
	},
}

var evoCompleteCmd = &cobra.Command{
	Use:   "complete CYCLE",
	Short: "Mark a cycle as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := openAuditLog()
		if err != nil {
			return handleError(ErrFileReadError, err, "")
		}
		if err := log.Complete(args[0], evoPRNumber); err != nil {
			return handleError(ErrCycleNotFound, err, "")
		}
		if isJSONOutput() {
			outputSuccess(map[string]string{"cycle": args[0], "status": evolution.StatusCompleted}, nil)
		} else {
			fmt.Println(ui.Successf("Completed cycle %s", args[0]))
		}
		return nil
	},
}

var evoRevertCmd = &cobra.Command{
	Use:   "revert CYCLE",
	Short: "Mark a cycle as reverted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := openAuditLog()
		if err != nil {
			return handleError(ErrFileReadError, err, "")
		}
		if err := log.Revert(args[0], evoRevertWhy); err != nil {
			return handleError(ErrCycleNotFound, err, "")
		}
		if isJSONOutput() {
			outputSuccess(map[string]string{"cycle": args[0], "status": evolution.StatusReverted}, nil)
		} else {
			fmt.Println(ui.Warningf("Reverted cycle %s: %s", args[0], evoRevertWhy))
		}
		return nil
	},
}

var evoHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show all evolution cycles",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := openAuditLog()
		if err != nil {
			return handleError(ErrFileReadError, err, "")
		}
		cycles := log.Cycles()

		if evoTimelineOut != "" {
			if err := log.ExportTimeline(evoTimelineOut); err != nil {
				return handleError(ErrFileWriteError, err, "")
			}
		}

		if isJSONOutput() {
			outputSuccess(cycles, &Meta{Count: len(cycles)})
			return nil
		}
		if len(cycles) == 0 {
			fmt.Println("No evolution cycles recorded yet.")
			return nil
		}
		table := ui.NewTable(5)
		table.AddRow("CYCLE", "STARTED", "TRIGGER", "CHANGES", "STATUS")
		for _, c := range cycles {
			table.AddRow(c.Cycle, c.StartedAt, c.Trigger, fmt.Sprintf("%d", len(c.Changes)), c.Status)
		}
		fmt.Print(table.String())
		return nil
	},
}

var evoPatternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Analyze change patterns across cycles",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := openAuditLog()
		if err != nil {
			return handleError(ErrFileReadError, err, "")
		}
		patterns := log.AnalyzePatterns()

		if isJSONOutput() {
			outputSuccess(patterns, nil)
			return nil
		}

		fmt.Println(ui.Header("Most Changed Fields"))
		for _, fc := range patterns.FieldChanges {
			fmt.Printf("  %-20s %d\n", fc.Field, fc.Count)
			for _, tr := range patterns.Transitions[fc.Field] {
				fmt.Printf("    %s → %s (%d)\n", tr.Before, tr.After, tr.Count)
			}
		}

		fmt.Println()
		fmt.Println(ui.Header("Cycles by Trigger"))
		triggers := make([]string, 0, len(patterns.Triggers))
		for trigger := range patterns.Triggers {
			triggers = append(triggers, trigger)
		}
		sort.Strings(triggers)
		for _, trigger := range triggers {
			fmt.Printf("  %-20s %d\n", trigger, patterns.Triggers[trigger])
		}
		return nil
	},
}

func init() {
	evoRecordCmd.Flags().StringVar(&evoTrigger, "trigger", "manual", "Cycle trigger (quarterly, version_upgrade, user_feedback, manual)")
	evoRecordCmd.Flags().StringVar(&evoCapability, "capability-changes", "", "Capability changes motivating this cycle")
	evoChangeCmd.Flags().StringVar(&evoRationale, "rationale", "", "Why this change was made")
	evoCompleteCmd.Flags().IntVar(&evoPRNumber, "pr", 0, "Pull request number")
	evoRevertCmd.Flags().StringVar(&evoRevertWhy, "reason", "", "Why the cycle was reverted")
	evoHistoryCmd.Flags().StringVar(&evoTimelineOut, "timeline", "", "Also export the timeline JSON to this path")

	evoCmd.AddCommand(evoRecordCmd, evoChangeCmd, evoLinkCmd, evoCompleteCmd,
		evoRevertCmd, evoHistoryCmd, evoPatternsCmd)
	rootCmd.AddCommand(evoCmd)
}
