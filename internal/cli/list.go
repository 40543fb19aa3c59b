package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pbk-dev/pbk/internal/index"
	"github.com/pbk-dev/pbk/internal/ui"
)

var (
	listCategory   string
	listModel      string
	listDifficulty string
	listTag        string
	listSearch     string
	listLimit      int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed commands",
	Long: `Lists commands from the SQLite index with optional filters, or runs a
full-text search over names, titles and bodies. Run 'pbk reindex' first
if the index is missing or stale.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := index.Open(getPlaybookPath())
		if err != nil {
			return handleError(ErrDatabaseError, err, "Run 'pbk reindex' first")
		}
		defer db.Close()

		if listSearch != "" {
			return runSearch(db)
		}

		filter := index.ListFilter{
			Category:   listCategory,
			ModelHint:  listModel,
			Difficulty: listDifficulty,
			Tag:        listTag,
		}
		rows, err := db.List(filter)
		if err != nil {
			return handleError(ErrDatabaseError, err, "Run 'pbk reindex' first")
		}

		if isJSONOutput() {
			outputSuccess(rows, &Meta{Count: len(rows)})
			return nil
		}

		if len(rows) == 0 {
			fmt.Println("No commands match.")
			return nil
		}

		table := ui.NewTable(5)
		table.AddRow("COMMAND", "CATEGORY", "MODEL", "DIFFICULTY", "TITLE")
		for _, row := range rows {
			table.AddRow(row.Name, row.Category, row.ModelHint, row.Difficulty, row.Title)
		}
		fmt.Print(table.String())
		fmt.Printf("\n%s\n", ui.Count(len(rows), "command", "commands"))
		return nil
	},
}

func runSearch(db *index.Database) error {
	results, err := db.Search(listSearch, listLimit)
	if err != nil {
		return handleError(ErrDatabaseError, err, "")
	}

	if isJSONOutput() {
		outputSuccess(results, &Meta{Count: len(results)})
		return nil
	}

	if len(results) == 0 {
		fmt.Printf("No commands match %q.\n", listSearch)
		return nil
	}

	for _, res := range results {
		fmt.Printf("%s  %s\n", ui.CommandName(res.Name), res.Title)
	}
	return nil
}

func init() {
	listCmd.Flags().StringVar(&listCategory, "category", "", "Filter by category")
	listCmd.Flags().StringVar(&listModel, "model", "", "Filter by model hint")
	listCmd.Flags().StringVar(&listDifficulty, "difficulty", "", "Filter by difficulty")
	listCmd.Flags().StringVar(&listTag, "tag", "", "Filter by tag")
	listCmd.Flags().StringVar(&listSearch, "search", "", "Full-text search instead of listing")
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "Maximum search results")
	rootCmd.AddCommand(listCmd)
}
