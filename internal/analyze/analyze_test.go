package analyze

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pbk-dev/pbk/internal/check"
	"github.com/pbk-dev/pbk/internal/playbook"
	"github.com/pbk-dev/pbk/internal/testutil"
)

func analysisNow() time.Time {
	return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func buildPlaybook(t *testing.T) []*playbook.Command {
	t.Helper()
	pb := testutil.NewTestPlaybook(t).
		WithCommand("development", "pb-review", testutil.MinimalCommand("pb-review", "development")).
		WithCommand("planning", "pb-architecture", testutil.MinimalCommand("pb-architecture", "planning")).
		WithCommand("utilities", "pb-bare", "# Bare\n\nNo front-matter here.\n").
		Build()

	cmds, _, err := playbook.CollectCommands(pb.Path)
	if err != nil {
		t.Fatal(err)
	}
	return cmds
}

func TestRun(t *testing.T) {
	cmds := buildPlaybook(t)
	validator := check.NewValidator(check.Options{Now: analysisNow()})

	a := Run(cmds, nil, validator, analysisNow())

	if a.TotalCommands != 3 {
		t.Errorf("TotalCommands = %d, want 3", a.TotalCommands)
	}
	if a.CommandsWithMetadata != 2 || a.CommandsWithoutMetadata != 1 {
		t.Errorf("metadata counts = %d/%d, want 2/1", a.CommandsWithMetadata, a.CommandsWithoutMetadata)
	}
	if got := a.MetadataCoveragePercent; got < 66.6 || got > 66.7 {
		t.Errorf("MetadataCoveragePercent = %v", got)
	}
	if a.CategoryBreakdown["development"] != 1 || a.CategoryBreakdown["planning"] != 1 {
		t.Errorf("CategoryBreakdown = %v", a.CategoryBreakdown)
	}
	// Bare file has no front-matter at all, so it reports validation errors.
	if a.ValidationIssues == 0 {
		t.Error("ValidationIssues = 0, want missing-metadata issues for pb-bare")
	}
	if len(a.IssuesByFile) == 0 {
		t.Error("IssuesByFile is empty")
	}
}

func TestSave(t *testing.T) {
	cmds := buildPlaybook(t)
	validator := check.NewValidator(check.Options{Now: analysisNow()})
	a := Run(cmds, nil, validator, analysisNow())

	path := filepath.Join(t.TempDir(), AnalysisFile)
	if err := a.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var loaded Analysis
	if err := json.Unmarshal([]byte(readFile(t, path)), &loaded); err != nil {
		t.Fatalf("unmarshal saved analysis: %v", err)
	}
	if loaded.TotalCommands != a.TotalCommands {
		t.Errorf("TotalCommands after reload = %d, want %d", loaded.TotalCommands, a.TotalCommands)
	}
}

func TestCommandIndex(t *testing.T) {
	cmds := buildPlaybook(t)

	got := CommandIndex(cmds, analysisNow())

	if !strings.Contains(got, "# Command Index") {
		t.Error("missing header")
	}
	if !strings.Contains(got, "Last updated: 2026-08-29") {
		t.Error("missing date stamp")
	}

	// Planning comes before Development in the category order.
	planning := strings.Index(got, "## Planning")
	development := strings.Index(got, "## Development")
	if planning < 0 || development < 0 || planning > development {
		t.Errorf("category order wrong: planning@%d development@%d", planning, development)
	}

	if !strings.Contains(got, "[`pb-review`](pb-review)") {
		t.Error("missing pb-review entry")
	}
	if strings.Contains(got, "pb-bare") {
		t.Error("command without metadata listed in index")
	}
}
