package reconcile

import (
	"strings"
	"testing"

	"github.com/pbk-dev/pbk/internal/playbook"
	"github.com/pbk-dev/pbk/internal/testutil"
)

func conflictedPlaybook(t *testing.T) *testutil.TestPlaybook {
	t.Helper()
	return testutil.NewTestPlaybook(t).
		WithCommand("development", "pb-review", testutil.CommandFile(map[string]string{
			"name":       "pb-review",
			"model_hint": "opus",
		}, "# Code Review\n\n**Resource Hint:** sonnet — fast enough for diffs\n")).
		WithCommand("development", "pb-plan", testutil.CommandFile(map[string]string{
			"name":       "pb-plan",
			"model_hint": "opus",
		}, "# Planning\n\n**Resource Hint:** opus — deep reasoning\n")).
		WithCommand("development", "pb-nohint", testutil.CommandFile(map[string]string{
			"name":       "pb-nohint",
			"model_hint": "haiku",
		}, "# No Hint\n\nBody without a resource hint.\n")).
		Build()
}

func TestFindConflicts(t *testing.T) {
	pb := conflictedPlaybook(t)
	cmds, _, err := playbook.CollectCommands(pb.Path)
	if err != nil {
		t.Fatal(err)
	}

	conflicts := FindConflicts(cmds)
	if len(conflicts) != 1 {
		t.Fatalf("len(conflicts) = %d, want 1", len(conflicts))
	}

	c := conflicts[0]
	if c.Command != "pb-review" {
		t.Errorf("Command = %q, want pb-review", c.Command)
	}
	if c.BodyHint != "sonnet" || c.MetaHint != "opus" {
		t.Errorf("hints = %s/%s, want sonnet/opus", c.BodyHint, c.MetaHint)
	}
}

func TestFixRewritesModelHint(t *testing.T) {
	pb := conflictedPlaybook(t)
	cmds, _, err := playbook.CollectCommands(pb.Path)
	if err != nil {
		t.Fatal(err)
	}

	fixed, err := Fix(FindConflicts(cmds))
	if err != nil {
		t.Fatalf("Fix() error = %v", err)
	}
	if len(fixed) != 1 {
		t.Fatalf("len(fixed) = %d, want 1", len(fixed))
	}

	content := pb.ReadFile("commands/development/pb-review.md")
	if !strings.Contains(content, `model_hint: "sonnet"`) {
		t.Errorf("front-matter not rewritten:\n%s", content)
	}
	if !strings.Contains(content, "**Resource Hint:** sonnet") {
		t.Error("body modified by fix")
	}

	// Re-scan: no conflicts remain.
	cmds, _, err = playbook.CollectCommands(pb.Path)
	if err != nil {
		t.Fatal(err)
	}
	if remaining := FindConflicts(cmds); len(remaining) != 0 {
		t.Errorf("conflicts after fix = %+v", remaining)
	}
}
