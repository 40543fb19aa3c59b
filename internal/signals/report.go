package signals

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pbk-dev/pbk/internal/atomicfile"
)

// DefaultOutputDir is where analysis outputs land, relative to the
// playbook root.
const DefaultOutputDir = "todos/git-signals/latest"

// reportFiles are the JSON outputs of one analysis run.
var reportFiles = []string{
	"adoption-metrics.json",
	"churn-analysis.json",
	"pain-points-report.json",
}

// WriteReports writes the three JSON reports plus the markdown summary
// into dir, creating it as needed.
func WriteReports(dir string, result *Result, now time.Time) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for name, payload := range map[string]interface{}{
		"adoption-metrics.json":   result.Adoption,
		"churn-analysis.json":     result.Churn,
		"pain-points-report.json": result.PainPoints,
	} {
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", name, err)
		}
		if err := atomicfile.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	summary := SummaryMarkdown(result, now)
	if err := atomicfile.WriteFile(filepath.Join(dir, "signals-summary.md"), []byte(summary), 0644); err != nil {
		return fmt.Errorf("failed to write signals-summary.md: %w", err)
	}

	return nil
}

// Snapshot copies the JSON reports from the latest dir into a dated
// sibling directory. Missing source files are skipped.
func Snapshot(latestDir, snapshotDir string) error {
	if err := os.MkdirAll(snapshotDir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	for _, name := range reportFiles {
		data, err := os.ReadFile(filepath.Join(latestDir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		if err := atomicfile.WriteFile(filepath.Join(snapshotDir, name), data, 0644); err != nil {
			return err
		}
	}

	return nil
}

// SummaryMarkdown renders the human-readable signal summary.
func SummaryMarkdown(result *Result, now time.Time) string {
	var b strings.Builder

	b.WriteString("# Git Signals Summary\n\n")
	fmt.Fprintf(&b, "**Generated:** %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(&b, "**Time period:** Since %s\n", result.Since)
	fmt.Fprintf(&b, "**Commits analyzed:** %d\n\n", result.CommitCount)

	b.WriteString("## Adoption Metrics\n\n")
	if len(result.Adoption.CommandsByTouchFrequency) > 0 {
		b.WriteString("**Most active commands:**\n")
		for _, item := range headCommands(result.Adoption.CommandsByTouchFrequency, 5) {
			fmt.Fprintf(&b, "- `%s`: %d touches\n", item.Command, item.Touches)
		}
	}
	if len(result.Adoption.LeastActiveCommands) > 0 {
		b.WriteString("\n**Least active commands (candidates for review):**\n")
		for _, item := range headCommands(result.Adoption.LeastActiveCommands, 5) {
			fmt.Fprintf(&b, "- `%s`: %d touches\n", item.Command, item.Touches)
		}
	}

	b.WriteString("\n## High-Churn Areas\n\n")
	if len(result.Churn.HighChurnAreas) > 0 {
		b.WriteString("**Files with most changes:**\n")
		areas := result.Churn.HighChurnAreas
		if len(areas) > 5 {
			areas = areas[:5]
		}
		for _, item := range areas {
			fmt.Fprintf(&b, "- `%s`: %d lines across %d commits\n",
				item.File, item.LineChanges, item.Commits)
		}
	}

	b.WriteString("\n## Pain Point Signals\n\n")
	fmt.Fprintf(&b, "- Reverts: %d\n", result.PainPoints.Summary.TotalReverts)
	fmt.Fprintf(&b, "- Bug fixes: %d\n", result.PainPoints.Summary.TotalBugFixes)
	fmt.Fprintf(&b, "- Hotfixes: %d\n", result.PainPoints.Summary.TotalHotfixes)

	if len(result.PainPoints.PainScoreByFile) > 0 {
		b.WriteString("\n**Top pain areas (most fixed):**\n")
		scores := result.PainPoints.PainScoreByFile
		if len(scores) > 5 {
			scores = scores[:5]
		}
		for _, item := range scores {
			fmt.Fprintf(&b, "- `%s`: pain score %d\n", item.File, item.PainScore)
		}
	}

	b.WriteString("\n---\n\nSee JSON files for detailed data.\n")
	return b.String()
}

func headCommands(list []CommandTouches, n int) []CommandTouches {
	if len(list) > n {
		return list[:n]
	}
	return list
}
