package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/pbk-dev/pbk/internal/analyze"
	"github.com/pbk-dev/pbk/internal/check"
	"github.com/pbk-dev/pbk/internal/ui"
)

var analyzeOutput string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze playbook health",
	Long: `Analyzes metadata coverage, validation issues, and model/category
distributions, prints a report, and saves the analysis JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmds, warnings, err := loadPlaybookCommands()
		if err != nil {
			return handleError(ErrPlaybookNotFound, err, "Check the playbook path")
		}

		var loadErrors []string
		for _, w := range warnings {
			loadErrors = append(loadErrors, w.Message)
		}

		validator := check.NewValidator(check.Options{Now: time.Now()})
		result := analyze.Run(cmds, loadErrors, validator, time.Now())

		outPath := analyzeOutput
		if outPath == "" {
			outPath = filepath.Join(getPlaybookPath(), analyze.AnalysisFile)
		}
		if err := result.Save(outPath); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccessWithWarnings(result, warnings, &Meta{Count: result.TotalCommands})
			return nil
		}

		printAnalysis(result)
		fmt.Printf("\nAnalysis saved to %s\n", ui.FilePath(outPath))
		return nil
	},
}

func printAnalysis(a *analyze.Analysis) {
	fmt.Println(ui.Header("Playbook Evolution Analysis"))
	fmt.Printf("Timestamp: %s\n", a.Timestamp)
	fmt.Printf("Total commands: %d\n", a.TotalCommands)
	fmt.Printf("With metadata: %d (%.1f%%)\n", a.CommandsWithMetadata, a.MetadataCoveragePercent)
	fmt.Printf("Without metadata: %d\n", a.CommandsWithoutMetadata)

	fmt.Printf("\nValidation issues: %d\n", a.ValidationIssues)
	if a.ValidationIssues > 0 {
		files := make([]string, 0, len(a.IssuesByFile))
		for file := range a.IssuesByFile {
			files = append(files, file)
		}
		sort.Strings(files)
		for _, file := range files {
			fmt.Printf("  %s:\n", file)
			for _, msg := range a.IssuesByFile[file] {
				fmt.Printf("    - %s\n", msg)
			}
		}
	}

	fmt.Println("\nModel distribution:")
	printCounts(a.ModelDistribution, a.TotalCommands)
	fmt.Println("\nCategory breakdown:")
	printCounts(a.CategoryBreakdown, a.TotalCommands)

	if len(a.Errors) > 0 {
		fmt.Printf("\n%s\n", ui.Errorf("%d load errors", len(a.Errors)))
		for _, msg := range a.Errors {
			fmt.Printf("  - %s\n", msg)
		}
	}
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Analysis JSON output path")
	rootCmd.AddCommand(analyzeCmd)
}
