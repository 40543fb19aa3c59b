package extract

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/pbk-dev/pbk/internal/playbook"
	"github.com/pbk-dev/pbk/internal/testutil"
)

const richCommand = `---
name: "pb-start"
---
# **Start Feature**

Kick off a new feature with branch setup and planning.

## When to Use

At the start of feature work. Use when: you have an approved plan.

## Steps

- [ ] Create the branch
- [ ] Run setup

` + "```bash\ngit switch -c feature\n```" + `

## Tier Guidance

Tier: [S, M]

## Next Steps

1. Run /pb-cycle
2. Then /pb-testing

## Prerequisites

- /pb-plan approved

## Related Commands

- ` + "`/pb-cycle`" + `
`

func loadCmds(t *testing.T, pb *testutil.TestPlaybook) []*playbook.Command {
	t.Helper()
	cmds, failed, err := playbook.CollectCommands(pb.Path)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(failed) != 0 {
		t.Fatalf("load failures: %v", failed)
	}
	return cmds
}

func TestExtractCommand(t *testing.T) {
	pb := testutil.NewTestPlaybook(t).
		WithCommand("development", "pb-start", richCommand).
		Build()
	cmds := loadCmds(t, pb)

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	meta := NewExtractor(now).ExtractCommand(cmds[0])

	if meta.Title != "Start Feature" {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.Purpose == "" {
		t.Error("expected purpose")
	}
	if len(meta.Tier) != 2 || meta.Tier[0] != "S" || meta.Tier[1] != "M" {
		t.Errorf("Tier = %v", meta.Tier)
	}
	if len(meta.NextSteps) != 2 || meta.NextSteps[0] != "/pb-cycle" || meta.NextSteps[1] != "/pb-testing" {
		t.Errorf("NextSteps = %v", meta.NextSteps)
	}
	if len(meta.Prerequisites) != 1 || meta.Prerequisites[0] != "/pb-plan" {
		t.Errorf("Prerequisites = %v", meta.Prerequisites)
	}
	if !meta.HasExamples {
		t.Error("expected has_examples")
	}
	if !meta.HasChecklist {
		t.Error("expected has_checklist")
	}
	if meta.DecisionContext == nil {
		t.Error("expected use_when decision context")
	}
	if meta.ExtractionMetadata.SourceFile != filepath.Join("commands", "development", "pb-start.md") {
		t.Errorf("SourceFile = %q", meta.ExtractionMetadata.SourceFile)
	}

	scores := meta.ConfidenceScores
	if scores["tier"] != 0.95 {
		t.Errorf("tier confidence = %v, want 0.95 for explicit marker", scores["tier"])
	}
	if scores["next_steps"] != 0.90 {
		t.Errorf("next_steps confidence = %v, want 0.90", scores["next_steps"])
	}
	if scores["frequency"] != 0.85 {
		t.Errorf("frequency confidence = %v, want 0.85", scores["frequency"])
	}
	if meta.AverageConfidence <= 0 || meta.AverageConfidence > 1 {
		t.Errorf("AverageConfidence = %v", meta.AverageConfidence)
	}
}

func TestAverageConfidenceExcludesMissingOptionals(t *testing.T) {
	scores := map[string]float64{
		"command":          1.0,
		"title":            1.0,
		"next_steps":       0.0,
		"prerequisites":    0.0,
		"decision_context": 0.0,
	}
	got := averageConfidence(scores)
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("got %v, want 1.0", got)
	}

	// Non-optional zero scores still drag the average down.
	scores["purpose"] = 0.0
	got = averageConfidence(scores)
	if math.Abs(got-2.0/3.0) > 1e-9 {
		t.Errorf("got %v, want 2/3", got)
	}
}

func TestExtractAll(t *testing.T) {
	pb := testutil.NewTestPlaybook(t).
		WithCommand("development", "pb-start", richCommand).
		WithCommand("core", "pb-skill", "You are a review assistant.\n\nDo the review.\n").
		WithCommand("core", "pb-thin", "# Thin Command\n\nDoes one thing. See /pb-missing.\n").
		Build()

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	complete, skipped := NewExtractor(now).ExtractAll(loadCmds(t, pb))

	if len(skipped) != 1 || skipped[0] != "pb-skill" {
		t.Errorf("skipped = %v, want [pb-skill]", skipped)
	}
	if complete.TotalCommands != 2 {
		t.Errorf("TotalCommands = %d, want 2", complete.TotalCommands)
	}

	dev := complete.Categories["development"]
	if dev == nil || dev.Count != 1 || dev.Commands[0] != "pb-start" {
		t.Errorf("development category = %+v", dev)
	}

	// /pb-missing is referenced but not a real command.
	foundWarning := false
	for _, w := range complete.ExtractionReport.Warnings {
		if w.Command == "pb-thin" && w.Field == "related_commands" {
			foundWarning = true
		}
	}
	if !foundWarning {
		t.Errorf("missing-reference warning not recorded: %+v", complete.ExtractionReport.Warnings)
	}

	if complete.ExtractionReport.AverageConfidence <= 0 {
		t.Error("expected positive average confidence")
	}
}

func TestExtractAllReportOrderIsStable(t *testing.T) {
	pb := testutil.NewTestPlaybook(t).
		WithCommand("core", "pb-zeta", "# Zeta\n\nDoes a thing. See /pb-ghost.\n").
		WithCommand("core", "pb-alpha", "# Alpha\n\nDoes a thing. See /pb-ghost.\n").
		WithCommand("core", "pb-mid", "# Mid\n\nDoes a thing. See /pb-ghost.\n").
		Build()

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	complete, _ := NewExtractor(now).ExtractAll(loadCmds(t, pb))

	var order []string
	for _, w := range complete.ExtractionReport.Warnings {
		if w.Field == "related_commands" {
			order = append(order, w.Command)
		}
	}
	want := []string{"pb-alpha", "pb-mid", "pb-zeta"}
	if len(order) != len(want) {
		t.Fatalf("warnings for %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("warning order = %v, want %v", order, want)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	pb := testutil.NewTestPlaybook(t).
		WithCommand("development", "pb-start", richCommand).
		Build()

	complete, _ := NewExtractor(time.Now().UTC()).ExtractAll(loadCmds(t, pb))

	path := filepath.Join(t.TempDir(), MetadataFile)
	if err := Save(path, complete); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.TotalCommands != complete.TotalCommands {
		t.Errorf("TotalCommands = %d, want %d", loaded.TotalCommands, complete.TotalCommands)
	}
	if _, ok := loaded.Commands["pb-start"]; !ok {
		t.Error("pb-start missing after round trip")
	}
}
