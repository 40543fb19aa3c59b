package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pbk-dev/pbk/internal/index"
	"github.com/pbk-dev/pbk/internal/parser"
	"github.com/pbk-dev/pbk/internal/ui"
)

// Reviews older than this are counted as stale in the stats report.
const staleReviewAge = 90 * 24 * time.Hour

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show command index statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := index.Open(getPlaybookPath())
		if err != nil {
			return handleError(ErrDatabaseError, err, "Run 'pbk reindex' first")
		}
		defer db.Close()

		cutoff := time.Now().Add(-staleReviewAge).Format(parser.DateLayout)
		stats, err := db.Stats(cutoff)
		if err != nil {
			return handleError(ErrDatabaseError, err, "Run 'pbk reindex' first")
		}

		if isJSONOutput() {
			outputSuccess(stats, &Meta{Count: stats.TotalCommands})
			return nil
		}

		fmt.Println(ui.Header("Playbook Index"))
		fmt.Printf("Commands:        %d\n", stats.TotalCommands)
		fmt.Printf("With examples:   %d\n", stats.WithExamples)
		fmt.Printf("With checklists: %d\n", stats.WithChecklist)
		fmt.Printf("Stale reviews:   %d (older than %s)\n", stats.StaleReviews, cutoff)

		fmt.Printf("\n%s\n", ui.Header("By Category"))
		printCounts(stats.ByCategory, stats.TotalCommands)

		fmt.Printf("\n%s\n", ui.Header("By Model"))
		printCounts(stats.ByModel, stats.TotalCommands)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
