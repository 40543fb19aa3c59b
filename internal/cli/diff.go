package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/pbk-dev/pbk/internal/evolution"
	"github.com/pbk-dev/pbk/internal/ui"
)

var diffReport bool

var diffCmd = &cobra.Command{
	Use:   "diff BASE EVOLVED",
	Short: "Compare command metadata between two git refs",
	Long: `Diffs front-matter fields of playbook commands between two commits or
tags, typically a pre-evolution snapshot and the evolved branch. Only
fields that actually changed are reported.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo := openRepo()
		if err := requireGitRepo(ctx, repo); err != nil {
			return handleError(ErrGitUnavailable, err, "Run inside a git repository")
		}

		differ := evolution.NewDiffer(repo)
		changes, err := differ.Compare(ctx, args[0], args[1])
		if err != nil {
			return handleError(ErrGitUnavailable, err, "Check that both refs exist")
		}

		if diffReport {
			path := filepath.Join(getPlaybookPath(), evolution.DiffReportFile)
			if err := evolution.WriteDiffReport(path, changes, time.Now()); err != nil {
				return handleError(ErrFileWriteError, err, "")
			}
			if !isJSONOutput() {
				fmt.Println(ui.Successf("Diff report written to %s", path))
			}
		}

		if isJSONOutput() {
			outputSuccess(changes, &Meta{Count: len(changes)})
			return nil
		}

		if len(changes) == 0 {
			fmt.Println(ui.Success("No metadata changes between refs."))
			return nil
		}

		fmt.Println(ui.Header(fmt.Sprintf("Metadata Changes (%s → %s)", args[0], args[1])))
		fmt.Printf("%d command(s) changed\n\n", len(changes))
		for _, name := range changes.ChangedCommands() {
			diff := changes[name]
			fmt.Println(ui.CommandName(name))
			fields := make([]string, 0, len(diff.Fields))
			for field := range diff.Fields {
				fields = append(fields, field)
			}
			sort.Strings(fields)
			for _, field := range fields {
				change := diff.Fields[field]
				fmt.Printf("  %s: %q → %q\n", field, change.Before, change.After)
			}
		}
		return nil
	},
}

func init() {
	diffCmd.Flags().BoolVar(&diffReport, "report", false, "Also write the markdown diff report")
	rootCmd.AddCommand(diffCmd)
}
