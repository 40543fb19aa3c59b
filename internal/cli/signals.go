package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pbk-dev/pbk/internal/signals"
	"github.com/pbk-dev/pbk/internal/ui"
)

var (
	signalsSince    string
	signalsOutput   string
	signalsSnapshot string
)

var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "Mine git history for playbook usage signals",
	Long: `Parses git history for adoption metrics (which commands are touched),
churn analysis, and pain points (reverts, bug fixes, hotfixes), then
writes JSON reports plus a markdown summary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo := openRepo()
		if err := requireGitRepo(ctx, repo); err != nil {
			return handleError(ErrGitUnavailable, err, "Run inside a git repository")
		}

		since := signalsSince
		if since == "" {
			since = signals.DefaultSince
		}

		spinner := ui.NewSpinner("Analyzing git history...")
		if !isJSONOutput() {
			spinner.Start()
		}
		analyzer := signals.NewAnalyzer(repo)
		result := analyzer.Analyze(ctx, since)
		if !isJSONOutput() {
			spinner.Stop()
		}

		outDir := signalsOutput
		if outDir == "" {
			outDir = filepath.Join(getPlaybookPath(), signals.DefaultOutputDir)
		}
		if err := signals.WriteReports(outDir, result, time.Now()); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if signalsSnapshot != "" {
			snapDir := filepath.Join(filepath.Dir(outDir), signalsSnapshot)
			if err := signals.Snapshot(outDir, snapDir); err != nil {
				return handleError(ErrFileWriteError, err, "")
			}
			if !isJSONOutput() {
				fmt.Println(ui.Successf("Snapshot copied to %s", snapDir))
			}
		}

		if isJSONOutput() {
			outputSuccess(result, &Meta{Count: result.CommitCount})
			return nil
		}

		fmt.Printf("Analyzed %d commits since %q\n", result.CommitCount, since)
		fmt.Printf("Commands touched: %d\n", len(result.Adoption.CommandsByTouchFrequency))
		fmt.Printf("High-churn areas: %d\n", len(result.Churn.HighChurnAreas))
		fmt.Printf("Pain points: %d reverts, %d bug-fix commits\n",
			result.PainPoints.Summary.TotalReverts, result.PainPoints.Summary.TotalBugFixes)
		fmt.Printf("\n%s\n", ui.Successf("Reports written to %s", outDir))
		return nil
	},
}

func init() {
	signalsCmd.Flags().StringVar(&signalsSince, "since", "", "Git log window (default \"1 year ago\")")
	signalsCmd.Flags().StringVarP(&signalsOutput, "output", "o", "", "Report output directory")
	signalsCmd.Flags().StringVar(&signalsSnapshot, "snapshot", "", "Copy JSON reports into a dated sibling directory")
	rootCmd.AddCommand(signalsCmd)
}
