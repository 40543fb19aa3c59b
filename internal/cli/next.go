package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pbk-dev/pbk/internal/advisor"
	"github.com/pbk-dev/pbk/internal/extract"
	"github.com/pbk-dev/pbk/internal/ui"
)

var nextVerbose bool

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Recommend the next playbook command",
	Long: `Inspects the state of the surrounding git repository (branch, staged
and unstaged changes, recent commits) to infer a workflow phase and
recommend which playbook commands to run next.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo := openRepo()
		if err := requireGitRepo(ctx, repo); err != nil {
			return handleError(ErrGitUnavailable, err, "Run inside a git repository")
		}

		// Extracted metadata enriches recommendations with tier and
		// timing info; the advisor works without it.
		var meta *extract.CompleteMetadata
		metaPath := filepath.Join(getPlaybookPath(), extract.MetadataFile)
		if m, err := extract.Load(metaPath); err == nil {
			meta = m
		}

		analysis := advisor.New(repo, meta).Analyze(ctx)

		if isJSONOutput() {
			outputSuccess(analysis, &Meta{Count: len(analysis.Recommendations)})
			return nil
		}

		if nextVerbose && meta == nil {
			fmt.Fprintln(os.Stderr, ui.Hint("No extracted metadata found; run 'pbk extract' for tier and timing info"))
		}

		report := analysis.Markdown()
		display := ui.NewDisplayContext()
		if display.IsTTY {
			if rendered, err := ui.RenderMarkdown(report, display.RenderWidth()); err == nil {
				fmt.Print(rendered)
				return nil
			}
		}
		fmt.Println(report)
		return nil
	},
}

func init() {
	nextCmd.Flags().BoolVarP(&nextVerbose, "verbose", "v", false, "Show extra context about the recommendations")
	rootCmd.AddCommand(nextCmd)
}
