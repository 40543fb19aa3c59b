package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pbk-dev/pbk/internal/evolution"
	"github.com/pbk-dev/pbk/internal/quickref"
	"github.com/pbk-dev/pbk/internal/signals"
	"github.com/pbk-dev/pbk/internal/ui"
)

// knownReports maps report names to their path relative to the playbook root.
var knownReports = map[string]string{
	"signals":  signals.DefaultOutputDir + "/signals-summary.md",
	"triggers": evolution.TriggersReportFile,
	"diff":     evolution.DiffReportFile,
	"index":    "command-index.md",
	"quickref": quickref.OutputFile,
}

var reportCmd = &cobra.Command{
	Use:   "report [NAME]",
	Short: "Render a generated report in the terminal",
	Long: `Renders one of the generated markdown reports with terminal styling.
Without an argument, lists the reports that currently exist.

Known reports: signals, triggers, diff, index, quickref.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return listReports()
		}

		rel, ok := knownReports[args[0]]
		if !ok {
			return handleErrorMsg(ErrInvalidValue,
				fmt.Sprintf("unknown report: %s", args[0]),
				"One of: signals, triggers, diff, index, quickref")
		}

		path := filepath.Join(getPlaybookPath(), rel)
		data, err := os.ReadFile(path)
		if err != nil {
			return handleError(ErrFileNotFound,
				fmt.Errorf("report not generated: %s", rel),
				reportHint(args[0]))
		}

		if isJSONOutput() {
			outputSuccess(map[string]string{"report": args[0], "path": path, "content": string(data)}, nil)
			return nil
		}

		display := ui.NewDisplayContext()
		if display.IsTTY {
			if rendered, err := ui.RenderMarkdown(string(data), display.RenderWidth()); err == nil {
				fmt.Print(rendered)
				return nil
			}
		}
		fmt.Println(string(data))
		return nil
	},
}

func listReports() error {
	type reportEntry struct {
		Name   string `json:"name"`
		Path   string `json:"path"`
		Exists bool   `json:"exists"`
	}

	names := make([]string, 0, len(knownReports))
	for name := range knownReports {
		names = append(names, name)
	}
	sort.Strings(names)

	var entries []reportEntry
	for _, name := range names {
		path := filepath.Join(getPlaybookPath(), knownReports[name])
		_, err := os.Stat(path)
		entries = append(entries, reportEntry{Name: name, Path: path, Exists: err == nil})
	}

	if isJSONOutput() {
		outputSuccess(entries, &Meta{Count: len(entries)})
		return nil
	}

	fmt.Println(ui.Header("Reports"))
	for _, entry := range entries {
		symbol := ui.SymbolSuccess
		if !entry.Exists {
			symbol = "•"
		}
		fmt.Printf("%s %-10s %s\n", symbol, entry.Name, ui.FilePath(knownReports[entry.Name]))
	}
	return nil
}

func reportHint(name string) string {
	switch name {
	case "signals":
		return "Run 'pbk signals' first"
	case "triggers":
		return "Run 'pbk triggers --report' first"
	case "diff":
		return "Run 'pbk diff BASE EVOLVED --report' first"
	case "index":
		return "Run 'pbk gen index' first"
	default:
		return "Run 'pbk gen quickref' first"
	}
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
