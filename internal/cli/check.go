package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pbk-dev/pbk/internal/check"
	"github.com/pbk-dev/pbk/internal/ui"
)

var (
	checkStrict        bool
	checkExpectedCount int
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate command metadata and conventions",
	Long: `Checks every command file for metadata errors (missing fields,
invalid values, broken related_commands) and convention drift (missing
Resource Hint or When to Use sections, stale reviews).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmds, warnings, err := loadPlaybookCommands()
		if err != nil {
			return handleError(ErrPlaybookNotFound, err, "Check the playbook path")
		}

		validator := check.NewValidator(check.Options{
			Now:           time.Now(),
			ExpectedCount: checkExpectedCount,
		})
		issues := validator.ValidateAll(cmds)
		errorCount, warningCount := check.Counts(issues)

		if isJSONOutput() {
			type issueJSON struct {
				Level   string `json:"level"`
				File    string `json:"file"`
				Line    int    `json:"line,omitempty"`
				Message string `json:"message"`
			}
			out := struct {
				Commands int         `json:"commands"`
				Errors   int         `json:"errors"`
				Warnings int         `json:"warnings"`
				Issues   []issueJSON `json:"issues"`
			}{Commands: len(cmds), Errors: errorCount, Warnings: warningCount, Issues: []issueJSON{}}
			for _, issue := range issues {
				out.Issues = append(out.Issues, issueJSON{
					Level:   issue.Level.String(),
					File:    issue.FilePath,
					Line:    issue.Line,
					Message: issue.Message,
				})
			}
			outputSuccessWithWarnings(out, warnings, &Meta{Count: len(issues)})
		} else {
			fmt.Printf("Checking playbook: %s\n\n", getPlaybookPath())
			for _, issue := range issues {
				fmt.Printf("%s: %s - %s\n", issue.Level, issue.FilePath, issue.Message)
			}
			if len(issues) > 0 {
				fmt.Println()
			}
			fmt.Println(ui.ErrorWarningCounts(errorCount, warningCount))
		}

		if errorCount > 0 || (checkStrict && warningCount > 0) {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "Treat warnings as errors")
	checkCmd.Flags().IntVar(&checkExpectedCount, "expected-count", 0, "Fail when the command count differs")
	rootCmd.AddCommand(checkCmd)
}
