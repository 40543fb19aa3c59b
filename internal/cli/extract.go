package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pbk-dev/pbk/internal/extract"
	"github.com/pbk-dev/pbk/internal/ui"
)

var extractOutput string

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract body-derived metadata with confidence scores",
	Long: `Reads every command body and extracts purpose, tiers, next steps,
prerequisites, decision rules and section slugs, each with a confidence
score. Skill files (prompt-style bodies) are skipped. The result is
written to .playbook-metadata.json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmds, warnings, err := loadPlaybookCommands()
		if err != nil {
			return handleError(ErrPlaybookNotFound, err, "Check the playbook path")
		}

		extractor := extract.NewExtractor(time.Now().UTC())
		meta, skipped := extractor.ExtractAll(cmds)

		outPath := extractOutput
		if outPath == "" {
			outPath = filepath.Join(getPlaybookPath(), extract.MetadataFile)
		}
		if err := extract.Save(outPath, meta); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccessWithWarnings(meta, warnings, &Meta{Count: meta.TotalCommands})
			return nil
		}

		report := meta.ExtractionReport
		fmt.Println(ui.Header("Metadata Extraction"))
		fmt.Printf("Commands extracted: %d\n", meta.TotalCommands)
		fmt.Printf("Average confidence: %.1f%%\n", report.AverageConfidence*100)
		fmt.Printf("Errors: %d, warnings: %d\n", len(report.Errors), len(report.Warnings))
		if len(skipped) > 0 {
			fmt.Printf("Skipped skill files: %d\n", len(skipped))
			for _, name := range skipped {
				fmt.Printf("  - %s\n", name)
			}
		}
		for _, e := range report.Errors {
			fmt.Println(ui.Errorf("%s: %s", e.Command, e.Error))
		}
		fmt.Printf("\n%s\n", ui.Successf("Metadata written to %s", outPath))
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Metadata JSON output path")
	rootCmd.AddCommand(extractCmd)
}
