package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/pbk-dev/pbk/internal/analyze"
	"github.com/pbk-dev/pbk/internal/parser"
	"github.com/pbk-dev/pbk/internal/playbook"
	"github.com/pbk-dev/pbk/internal/ui"
)

var (
	parseShowIndex bool
	parseShowStats bool
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse and display command front-matter",
	Long: `Parses the YAML front-matter of every command file and prints a
metadata table. With --index or --stats, prints generated markdown
instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmds, warnings, err := loadPlaybookCommands()
		if err != nil {
			return handleError(ErrPlaybookNotFound, err, "Check the playbook path")
		}

		if isJSONOutput() {
			rows := make([]parser.Metadata, 0, len(cmds))
			for _, c := range cmds {
				if c.HasMetadata() {
					rows = append(rows, c.Frontmatter.Metadata())
				}
			}
			outputSuccessWithWarnings(rows, warnings, &Meta{Count: len(rows)})
			return nil
		}

		if parseShowIndex {
			fmt.Print(analyze.CommandIndex(cmds, time.Now()))
			return nil
		}

		if parseShowStats {
			printParseStats(cmds)
			return nil
		}

		table := ui.NewTable(5)
		table.AddRow("COMMAND", "CATEGORY", "DIFFICULTY", "MODEL", "EXEC")
		for _, c := range cmds {
			if !c.HasMetadata() {
				continue
			}
			meta := c.Frontmatter.Metadata()
			table.AddRow(meta.Name, meta.Category, meta.Difficulty, meta.ModelHint, meta.ExecutionPattern)
		}
		fmt.Print(table.String())
		return nil
	},
}

func printParseStats(cmds []*playbook.Command) {
	models := map[string]int{}
	categories := map[string]int{}
	withMeta := 0
	for _, c := range cmds {
		if !c.HasMetadata() {
			continue
		}
		withMeta++
		meta := c.Frontmatter.Metadata()
		models[orUnknown(meta.ModelHint)]++
		categories[orUnknown(meta.Category)]++
	}

	fmt.Println(ui.Header("Playbook Metadata"))
	fmt.Printf("Commands: %d (%d with metadata)\n\n", len(cmds), withMeta)

	fmt.Println(ui.Header("Model Distribution"))
	printCounts(models, len(cmds))
	fmt.Println()

	fmt.Println(ui.Header("Category Breakdown"))
	printCounts(categories, len(cmds))
}

func printCounts(counts map[string]int, total int) {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		pct := 0.0
		if total > 0 {
			pct = float64(counts[key]) / float64(total) * 100
		}
		fmt.Printf("  %-15s %3d (%5.1f%%)\n", key, counts[key], pct)
	}
}

func orUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

func init() {
	parseCmd.Flags().BoolVar(&parseShowIndex, "index", false, "Print generated command index markdown")
	parseCmd.Flags().BoolVar(&parseShowStats, "stats", false, "Print model and category distribution")
	rootCmd.AddCommand(parseCmd)
}
