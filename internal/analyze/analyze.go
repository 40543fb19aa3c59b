// Package analyze summarizes playbook health: metadata coverage,
// validation issues, and model/category distributions.
package analyze

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pbk-dev/pbk/internal/atomicfile"
	"github.com/pbk-dev/pbk/internal/check"
	"github.com/pbk-dev/pbk/internal/parser"
	"github.com/pbk-dev/pbk/internal/playbook"
)

// AnalysisFile is the default JSON output path, relative to the
// playbook root.
const AnalysisFile = "todos/evolution-analysis.json"

// CategoryOrder is the preferred category ordering for generated indexes.
var CategoryOrder = []string{
	"core", "planning", "development", "deployment", "reviews",
	"repo", "people", "templates", "utilities",
}

// Analysis is the playbook health summary.
type Analysis struct {
	Timestamp               string              `json:"timestamp"`
	TotalCommands           int                 `json:"total_commands"`
	CommandsWithMetadata    int                 `json:"commands_with_metadata"`
	CommandsWithoutMetadata int                 `json:"commands_without_metadata"`
	MetadataCoveragePercent float64             `json:"metadata_coverage_percent"`
	ValidationIssues        int                 `json:"validation_issues"`
	IssuesByFile            map[string][]string `json:"issues_by_file"`
	ModelDistribution       map[string]int      `json:"model_distribution"`
	CategoryBreakdown       map[string]int      `json:"category_breakdown"`
	Errors                  []string            `json:"errors"`
	Warnings                []string            `json:"warnings"`
}

// Run validates the commands and aggregates the health summary.
// loadErrors carries per-file failures from command discovery.
func Run(cmds []*playbook.Command, loadErrors []string, validator *check.Validator, now time.Time) *Analysis {
	a := &Analysis{
		Timestamp:         now.Format(time.RFC3339),
		TotalCommands:     len(cmds),
		IssuesByFile:      map[string][]string{},
		ModelDistribution: map[string]int{},
		CategoryBreakdown: map[string]int{},
		Errors:            append([]string{}, loadErrors...),
		Warnings:          []string{},
	}

	for _, cmd := range cmds {
		if !cmd.HasMetadata() {
			continue
		}
		a.CommandsWithMetadata++

		model := cmd.Frontmatter.String("model_hint")
		if model == "" {
			model = "unknown"
		}
		a.ModelDistribution[model]++

		category := cmd.Frontmatter.String("category")
		if category == "" {
			category = "unknown"
		}
		a.CategoryBreakdown[category]++
	}
	a.CommandsWithoutMetadata = a.TotalCommands - a.CommandsWithMetadata
	if a.TotalCommands > 0 {
		a.MetadataCoveragePercent = float64(a.CommandsWithMetadata) / float64(a.TotalCommands) * 100
	}

	issues := validator.ValidateAll(cmds)
	a.ValidationIssues = len(issues)
	for _, issue := range issues {
		a.IssuesByFile[issue.FilePath] = append(a.IssuesByFile[issue.FilePath], issue.Message)
		if issue.Level == check.LevelWarning {
			a.Warnings = append(a.Warnings, issue.FilePath+": "+issue.Message)
		}
	}

	return a
}

// Save writes the analysis JSON to path.
func (a *Analysis) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(path, data, 0644)
}

// CommandIndex renders the per-category command index markdown.
func CommandIndex(cmds []*playbook.Command, now time.Time) string {
	var b strings.Builder
	b.WriteString("# Command Index\n\n")
	fmt.Fprintf(&b, "Auto-generated from command metadata. Last updated: %s\n\n",
		now.Format(parser.DateLayout))

	byCategory := map[string][]*playbook.Command{}
	for _, cmd := range cmds {
		if !cmd.HasMetadata() {
			continue
		}
		category := cmd.Frontmatter.String("category")
		if category == "" {
			category = "unknown"
		}
		byCategory[category] = append(byCategory[category], cmd)
	}

	for _, category := range CategoryOrder {
		group, ok := byCategory[category]
		if !ok {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].Name < group[j].Name })

		fmt.Fprintf(&b, "## %s\n\n", titleWord(category))
		for _, cmd := range group {
			name := cmd.Frontmatter.String("name")
			if name == "" {
				name = cmd.Name
			}
			summary := cmd.Frontmatter.String("summary")
			if summary == "" {
				summary = parser.ExtractPurpose(cmd.Body)
			}
			difficulty := cmd.Frontmatter.String("difficulty")

			fmt.Fprintf(&b, "- **[`%s`](%s)** ", name, name)
			if difficulty != "" {
				fmt.Fprintf(&b, "_%s_ ", difficulty)
			}
			fmt.Fprintf(&b, "— %s\n", summary)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func titleWord(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
