package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pbk-dev/pbk/internal/atomicfile"
	"github.com/pbk-dev/pbk/internal/parser"
	"github.com/pbk-dev/pbk/internal/ui"
)

var tagsForce bool

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Manage front-matter tags",
}

var tagsStripCmd = &cobra.Command{
	Use:   "strip",
	Short: "Remove tags from all command front-matter",
	Long: `Removes the tags line from every command's front-matter, resetting
tag curation across the playbook. Files without a tags line are left
untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmds, warnings, err := loadPlaybookCommands()
		if err != nil {
			return handleError(ErrPlaybookNotFound, err, "Check the playbook path")
		}

		if !tagsForce {
			msg := fmt.Sprintf("Strip tags from %s?", ui.Count(len(cmds), "command", "commands"))
			if !promptForConfirm(msg) {
				return handleErrorMsg(ErrConfirmationRequired, "tags strip aborted", "Re-run with --force to skip confirmation")
			}
		}

		stripped := 0
		for _, c := range cmds {
			updated, changed := parser.StripTags(c.Content)
			if !changed {
				continue
			}
			if err := atomicfile.WriteFile(c.Path, []byte(updated), 0o644); err != nil {
				return handleError(ErrFileWriteError, fmt.Errorf("writing %s: %w", c.RelPath, err), "")
			}
			stripped++
			if !isJSONOutput() {
				fmt.Printf("%s %s\n", ui.SymbolSuccess, c.Ref())
			}
		}

		if isJSONOutput() {
			outputSuccessWithWarnings(map[string]int{"stripped": stripped}, warnings, &Meta{Count: stripped})
			return nil
		}

		fmt.Println(ui.Successf("Stripped tags from %s", ui.Count(stripped, "command", "commands")))
		return nil
	},
}

func init() {
	tagsStripCmd.Flags().BoolVar(&tagsForce, "force", false, "Skip confirmation")
	tagsCmd.AddCommand(tagsStripCmd)
	rootCmd.AddCommand(tagsCmd)
}
