package quickref

import (
	"strings"
	"testing"
	"time"

	"github.com/pbk-dev/pbk/internal/extract"
)

func devMetadata() *extract.CompleteMetadata {
	mk := func(name, category, title, purpose string, tier []string, freq string) *extract.CommandMetadata {
		return &extract.CommandMetadata{
			Command: name, Category: category, Title: title,
			Purpose: purpose, Tier: tier, Frequency: freq,
		}
	}

	commands := map[string]*extract.CommandMetadata{
		"pb-start":   mk("pb-start", "development", "Start Feature", "Kick off a feature branch.", []string{"S"}, "start-of-feature"),
		"pb-cycle":   mk("pb-cycle", "development", "Iterate", "Run one development iteration.", []string{"M"}, "per-iteration"),
		"pb-testing": mk("pb-testing", "development", "Verify Tests", "Check test coverage.", []string{"S"}, "per-iteration"),
		"pb-commit":  mk("pb-commit", "development", "Commit", "Create atomic commits.", []string{"XS"}, "daily"),
		"pb-pr":      mk("pb-pr", "development", "Pull Request", "Open a pull request.", []string{"S"}, "per-pr"),
		"pb-help":    mk("pb-help", "core", "Help", "Explain the playbook.", nil, "as-needed"),
	}

	categories := map[string]*extract.CategoryGroup{
		"development": {Count: 5, Commands: []string{"pb-start", "pb-cycle", "pb-testing", "pb-commit", "pb-pr"}},
		"core":        {Count: 1, Commands: []string{"pb-help"}},
	}

	return &extract.CompleteMetadata{
		Commands:   commands,
		Categories: categories,
		ExtractionReport: extract.ExtractionReport{
			AverageConfidence: 0.87,
		},
	}
}

func TestGenerate(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
	doc := NewGenerator(devMetadata(), now).Generate()

	t.Run("header carries confidence", func(t *testing.T) {
		if !strings.Contains(doc, "Extraction confidence: 87% average") {
			t.Error("confidence line missing")
		}
		if !strings.Contains(doc, "Generated: 2026-08-29 10:30") {
			t.Error("generated timestamp missing")
		}
	})

	t.Run("detects development workflow", func(t *testing.T) {
		if !strings.Contains(doc, "### Daily Development Workflow") {
			t.Error("development workflow not detected")
		}
		if !strings.Contains(doc, "/pb-start → /pb-cycle → /pb-testing → /pb-commit → /pb-pr") {
			t.Error("workflow sequence missing")
		}
		// S+M+S+XS+S = 10+25+10+5+10 = 60 minutes → hours range.
		if !strings.Contains(doc, "**Timeline**: 1-1 hours") {
			t.Errorf("timeline missing or wrong")
		}
	})

	t.Run("skips absent workflows", func(t *testing.T) {
		if strings.Contains(doc, "Code Review Workflow") {
			t.Error("review workflow rendered without its commands")
		}
	})

	t.Run("command browser tables", func(t *testing.T) {
		if !strings.Contains(doc, "### Development (5 commands)") {
			t.Error("development category heading missing")
		}
		if !strings.Contains(doc, "| `/pb-commit` | Create atomic commits.... | XS | daily |") {
			t.Error("pb-commit row missing")
		}
		if !strings.Contains(doc, "| `/pb-help` | Explain the playbook.... | — | as-needed |") {
			t.Error("tierless pb-help row missing")
		}
	})

	t.Run("decision trees and footer", func(t *testing.T) {
		if !strings.Contains(doc, "## Decision Tree: Choose the Right Command") {
			t.Error("decision tree section missing")
		}
		if !strings.Contains(doc, "*Last updated: 2026-08-29 10:30:00*") {
			t.Error("footer timestamp missing")
		}
	})
}

func TestGenerateEmptyMetadata(t *testing.T) {
	meta := &extract.CompleteMetadata{
		Commands:   map[string]*extract.CommandMetadata{},
		Categories: map[string]*extract.CategoryGroup{},
	}
	doc := NewGenerator(meta, time.Now()).Generate()

	if !strings.Contains(doc, "# Playbook Quick Reference") {
		t.Error("header missing")
	}
	if strings.Contains(doc, "Workflow\n") && strings.Contains(doc, "### Daily") {
		t.Error("workflows rendered for empty playbook")
	}
}
