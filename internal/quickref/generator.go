// Package quickref renders the auto-generated quick reference document
// from extracted command metadata.
package quickref

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pbk-dev/pbk/internal/extract"
)

// OutputFile is the default output path relative to the playbook root.
const OutputFile = ".playbook-quick-ref.md"

// tierMinutes estimates working time per size tier.
var tierMinutes = map[string]int{"XS": 5, "S": 10, "M": 25, "L": 45}

// workflowDefs are the known multi-command sequences. A workflow renders
// only when its required commands all exist in the playbook.
var workflowDefs = []struct {
	name     string
	commands []string
	// required prefix length; the rest are optional extras
	required int
}{
	{"Daily Development", []string{"pb-start", "pb-cycle", "pb-testing", "pb-commit", "pb-pr"}, 5},
	{"Code Review", []string{"pb-review-code", "pb-review-tests", "pb-security"}, 2},
	{"Architecture Planning", []string{"pb-plan", "pb-adr", "pb-patterns"}, 3},
}

// Generator renders one quick reference document.
type Generator struct {
	meta *extract.CompleteMetadata
	now  time.Time
}

// NewGenerator creates a generator over loaded metadata.
func NewGenerator(meta *extract.CompleteMetadata, now time.Time) *Generator {
	if now.IsZero() {
		now = time.Now()
	}
	return &Generator{meta: meta, now: now}
}

// Generate renders the full document.
func (g *Generator) Generate() string {
	sections := []string{
		g.header(),
		g.workflows(),
		g.commandBrowser(),
		g.decisionTrees(),
		g.footer(),
	}
	return strings.Join(sections, "\n\n")
}

func (g *Generator) header() string {
	avg := g.meta.ExtractionReport.AverageConfidence
	return strings.Join([]string{
		"# Playbook Quick Reference",
		"",
		"> **Auto-generated from command metadata**",
		fmt.Sprintf("> Generated: %s", g.now.Format("2006-01-02 15:04")),
		fmt.Sprintf("> Extraction confidence: %.0f%% average", avg*100),
		"> This file updates automatically when commands change. Do not edit manually.",
		"",
		"---",
		"",
		"This quick reference shows the most common workflows and decision trees",
		"automatically derived from how commands relate to each other.",
	}, "\n")
}

func (g *Generator) workflows() string {
	lines := []string{"## Quick Workflows", "", "Auto-generated from command relationships."}

	for _, def := range workflowDefs {
		present := true
		for _, cmd := range def.commands[:def.required] {
			if _, ok := g.meta.Commands[cmd]; !ok {
				present = false
				break
			}
		}
		if !present {
			continue
		}
		lines = append(lines, g.formatWorkflow(def.name, def.commands))
	}

	return strings.Join(lines, "\n")
}

func (g *Generator) formatWorkflow(name string, commands []string) string {
	lines := []string{fmt.Sprintf("### %s Workflow", name)}

	if timing := g.estimateWorkflowTime(commands); timing != "" {
		lines = append(lines, fmt.Sprintf("**Timeline**: %s", timing))
	}

	refs := make([]string, len(commands))
	for i, cmd := range commands {
		refs[i] = "/" + cmd
	}
	lines = append(lines, "", fmt.Sprintf("Based on: %s", strings.Join(refs, " → ")), "")

	idx := 0
	for _, cmd := range commands {
		meta, ok := g.meta.Commands[cmd]
		if !ok {
			continue
		}
		idx++
		title := meta.Title
		if title == "" {
			title = cmd
		}
		lines = append(lines,
			fmt.Sprintf("%d. **`/%s`** — %s (%s)", idx, cmd, title, tierTimeString(meta.Tier)),
			fmt.Sprintf("   - %s", truncate(meta.Purpose, 100)))
	}

	return strings.Join(lines, "\n")
}

func (g *Generator) estimateWorkflowTime(commands []string) string {
	total := 0
	for _, cmd := range commands {
		meta, ok := g.meta.Commands[cmd]
		if !ok {
			continue
		}
		total += tierTimeMinutes(meta.Tier)
	}

	switch {
	case total < 30:
		return fmt.Sprintf("%d-%d minutes", total, total+10)
	case total < 120:
		return fmt.Sprintf("%d-%d hours", total/60, (total+30)/60)
	default:
		return fmt.Sprintf("%d+ hours", total/60)
	}
}

func (g *Generator) commandBrowser() string {
	lines := []string{
		"## Command Browser by Category",
		"",
		"All commands organized by category with quick reference info.",
	}

	categories := make([]string, 0, len(g.meta.Categories))
	for category := range g.meta.Categories {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		commands := g.meta.Categories[category].Commands
		if len(commands) == 0 {
			continue
		}

		lines = append(lines,
			fmt.Sprintf("### %s (%d commands)", titleWord(category), len(commands)),
			"",
			"| Command | Purpose | Tier | Frequency |",
			"|---------|---------|------|-----------|")

		sorted := append([]string(nil), commands...)
		sort.Strings(sorted)
		for _, name := range sorted {
			meta, ok := g.meta.Commands[name]
			if !ok {
				continue
			}
			freq := meta.Frequency
			if freq == "" {
				freq = "as-needed"
			}
			lines = append(lines, fmt.Sprintf("| `/%s` | %s... | %s | %s |",
				name, truncate(meta.Purpose, 50), formatTier(meta.Tier), freq))
		}

		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

func (g *Generator) decisionTrees() string {
	return strings.Join([]string{
		"## Decision Tree: Choose the Right Command",
		"",
		"Auto-derived from command metadata and relationships.",
		"### Are you starting development work?",
		"",
		"→ Use this workflow:",
		"",
		"1. `/pb-start` — Create feature branch",
		"2. `/pb-cycle` — Iterate on changes (repeat 3-5 times)",
		"3. `/pb-testing` — Verify test coverage",
		"4. `/pb-commit` — Create atomic commits",
		"5. `/pb-pr` — Create pull request",
		"",
		"### Do you need to review code?",
		"",
		"**Quick review (10-15 minutes)?**",
		"→ `/pb-review-code` only",
		"",
		"**Comprehensive review (30+ minutes)?**",
		"→ Use all:",
		"- `/pb-review-code` — Logic and patterns",
		"- `/pb-review-tests` — Test coverage",
		"- `/pb-security` — Security implications",
		"- `/pb-performance` — Performance impact (if applicable)",
		"",
		"### Planning a new feature or major change?",
		"",
		"→ Use this sequence:",
		"",
		"1. `/pb-plan` — Define scope and requirements",
		"2. `/pb-adr` — Document design decisions",
		"3. `/pb-patterns` — Review relevant patterns",
		"4. `/pb-security` — Plan security review",
	}, "\n")
}

func (g *Generator) footer() string {
	return strings.Join([]string{
		"---",
		"",
		"## How to Use This Guide",
		"",
		"1. **Find your situation** in the decision tree above",
		"2. **Follow the workflow** step-by-step",
		"3. **Refer to each command** for detailed guidance",
		"4. **Iterate** as needed (most work is iterative)",
		"",
		"## Need More Help?",
		"",
		"- See `docs/command-index.md` for complete command reference",
		"- Run `pbk next` for context-aware recommendations",
		"",
		"*This quick reference was auto-generated from playbook command metadata.*",
		fmt.Sprintf("*Last updated: %s*", g.now.Format("2006-01-02 15:04:05")),
	}, "\n")
}

func normalizeTier(tier []string) string {
	if len(tier) == 0 {
		return "M"
	}
	return tier[0]
}

func tierTimeMinutes(tier []string) int {
	if minutes, ok := tierMinutes[normalizeTier(tier)]; ok {
		return minutes
	}
	return 15
}

func tierTimeString(tier []string) string {
	minutes := tierTimeMinutes(tier)
	if minutes < 30 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%dh", minutes/60)
}

func formatTier(tier []string) string {
	if len(tier) == 0 {
		return "—"
	}
	return strings.Join(tier, "/")
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
