package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pbk-dev/pbk/internal/index"
	"github.com/pbk-dev/pbk/internal/ui"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the command index",
	Long: `Rebuilds the SQLite command index under .pbk/index.db from the
current contents of the commands/ tree, including full-text search rows.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmds, warnings, err := loadPlaybookCommands()
		if err != nil {
			return handleError(ErrPlaybookNotFound, err, "Check the playbook path")
		}

		db, err := index.Open(getPlaybookPath())
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer db.Close()

		indexed, err := db.Reindex(cmds)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		if isJSONOutput() {
			outputSuccessWithWarnings(map[string]int{"indexed": indexed}, warnings, &Meta{Count: indexed})
			return nil
		}

		fmt.Println(ui.Successf("Indexed %s", ui.Count(indexed, "command", "commands")))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}
