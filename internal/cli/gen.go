package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pbk-dev/pbk/internal/analyze"
	"github.com/pbk-dev/pbk/internal/atomicfile"
	"github.com/pbk-dev/pbk/internal/extract"
	"github.com/pbk-dev/pbk/internal/quickref"
	"github.com/pbk-dev/pbk/internal/ui"
)

var genOutput string

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate playbook artifacts",
}

var genIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Generate the command index markdown",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmds, warnings, err := loadPlaybookCommands()
		if err != nil {
			return handleError(ErrPlaybookNotFound, err, "Check the playbook path")
		}

		content := analyze.CommandIndex(cmds, time.Now())

		outPath := genOutput
		if outPath == "" {
			outPath = filepath.Join(getPlaybookPath(), "command-index.md")
		}
		if err := atomicfile.WriteFile(outPath, []byte(content), 0644); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccessWithWarnings(map[string]string{"path": outPath}, warnings, nil)
		} else {
			fmt.Println(ui.Successf("Command index written to %s", outPath))
		}
		return nil
	},
}

var genQuickrefCmd = &cobra.Command{
	Use:   "quickref",
	Short: "Generate the quick-reference guide",
	Long: `Generates the quick-reference markdown (workflows, command browser,
decision trees) from the extracted metadata JSON. Run 'pbk extract' first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		meta, err := extract.Load(filepath.Join(getPlaybookPath(), extract.MetadataFile))
		if err != nil {
			return handleError(ErrMetadataNotFound, err, "Run 'pbk extract' first")
		}

		content := quickref.NewGenerator(meta, time.Now()).Generate()

		outPath := genOutput
		if outPath == "" {
			outPath = filepath.Join(getPlaybookPath(), quickref.OutputFile)
		}
		if err := atomicfile.WriteFile(outPath, []byte(content), 0644); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]string{"path": outPath}, nil)
		} else {
			fmt.Println(ui.Successf("Quick reference written to %s", outPath))
		}
		return nil
	},
}

func init() {
	genCmd.PersistentFlags().StringVarP(&genOutput, "output", "o", "", "Output path")
	genCmd.AddCommand(genIndexCmd)
	genCmd.AddCommand(genQuickrefCmd)
	rootCmd.AddCommand(genCmd)
}
