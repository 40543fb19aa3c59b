package check

import (
	"strings"
	"testing"
	"time"

	"github.com/pbk-dev/pbk/internal/playbook"
	"github.com/pbk-dev/pbk/internal/testutil"
)

func loadCommands(t *testing.T, pb *testutil.TestPlaybook) []*playbook.Command {
	t.Helper()
	cmds, failed, err := playbook.CollectCommands(pb.Path)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(failed) != 0 {
		t.Fatalf("unexpected load failures: %v", failed)
	}
	return cmds
}

func errorMessages(issues []Issue) []string {
	var out []string
	for _, i := range issues {
		if i.Level == LevelError {
			out = append(out, i.Message)
		}
	}
	return out
}

func hasIssueContaining(issues []Issue, level IssueLevel, substr string) bool {
	for _, i := range issues {
		if i.Level == level && strings.Contains(i.Message, substr) {
			return true
		}
	}
	return false
}

func TestValidateCommand(t *testing.T) {
	now := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	v := NewValidator(Options{Now: now})

	t.Run("valid command has no issues", func(t *testing.T) {
		pb := testutil.NewTestPlaybook(t).
			WithCommand("development", "pb-commit", testutil.MinimalCommand("pb-commit", "development")).
			Build()

		issues := v.ValidateAll(loadCommands(t, pb))
		if len(issues) != 0 {
			t.Errorf("got issues: %v", issues)
		}
	})

	t.Run("missing front-matter", func(t *testing.T) {
		pb := testutil.NewTestPlaybook(t).
			WithCommand("core", "pb-bare", "# Bare\n\n## When to Use\n\n**Resource Hint:** sonnet\n").
			Build()

		issues := v.ValidateAll(loadCommands(t, pb))
		if !hasIssueContaining(issues, LevelError, "no YAML front-matter") {
			t.Errorf("missing front-matter not reported: %v", errorMessages(issues))
		}
	})

	t.Run("missing required fields", func(t *testing.T) {
		content := "---\nname: \"pb-x\"\n---\n# X\n\n**Resource Hint:** sonnet\n\n## When to Use\n\nNow.\n"
		pb := testutil.NewTestPlaybook(t).
			WithCommand("core", "pb-x", content).
			Build()

		issues := v.ValidateAll(loadCommands(t, pb))
		for _, field := range []string{"title", "category", "difficulty", "model_hint"} {
			if !hasIssueContaining(issues, LevelError, "\""+field+"\"") {
				t.Errorf("missing field %q not reported", field)
			}
		}
	})

	t.Run("name filename mismatch", func(t *testing.T) {
		pb := testutil.NewTestPlaybook(t).
			WithCommand("core", "pb-actual", testutil.MinimalCommand("pb-other", "core")).
			Build()

		issues := v.ValidateAll(loadCommands(t, pb))
		if !hasIssueContaining(issues, LevelError, "does not match filename stem") {
			t.Errorf("mismatch not reported: %v", errorMessages(issues))
		}
	})

	t.Run("invalid enum values", func(t *testing.T) {
		content := testutil.CommandFile(map[string]string{
			"name": "pb-x", "title": "X", "category": "bogus",
			"difficulty": "wizard", "model_hint": "gpt4",
			"execution_pattern": "stepwise",
			"related_commands":  "[]", "tags": "[]",
			"last_reviewed": "2026-08-01",
		}, "# X\n\n**Resource Hint:** sonnet\n\n## When to Use\n\nNow.\n")
		pb := testutil.NewTestPlaybook(t).WithCommand("core", "pb-x", content).Build()

		issues := v.ValidateAll(loadCommands(t, pb))
		if !hasIssueContaining(issues, LevelError, "invalid category") {
			t.Error("invalid category not reported")
		}
		if !hasIssueContaining(issues, LevelError, "invalid difficulty") {
			t.Error("invalid difficulty not reported")
		}
		if !hasIssueContaining(issues, LevelError, "invalid model_hint") {
			t.Error("invalid model_hint not reported")
		}
	})

	t.Run("related command limits and self-reference", func(t *testing.T) {
		content := testutil.CommandFile(map[string]string{
			"name": "pb-x", "title": "X", "category": "core",
			"difficulty": "beginner", "model_hint": "sonnet",
			"execution_pattern": "stepwise",
			"related_commands":  `["/pb-a", "/pb-b", "/pb-c", "/pb-d", "/pb-e", "/pb-x"]`,
			"tags":              "[]",
			"last_reviewed":     "2026-08-01",
		}, "# X\n\n**Resource Hint:** sonnet\n\n## When to Use\n\nNow.\n")
		pb := testutil.NewTestPlaybook(t).WithCommand("core", "pb-x", content).Build()

		issues := v.ValidateAll(loadCommands(t, pb))
		if !hasIssueContaining(issues, LevelError, "max 5") {
			t.Error("related limit not reported")
		}
		if !hasIssueContaining(issues, LevelError, "includes self") {
			t.Error("self-reference not reported")
		}
	})

	t.Run("hub command carries a higher limit", func(t *testing.T) {
		content := testutil.CommandFile(map[string]string{
			"name": "pb-patterns", "title": "Patterns", "category": "core",
			"difficulty": "beginner", "model_hint": "sonnet",
			"execution_pattern": "stepwise",
			"related_commands":  `["/pb-a", "/pb-b", "/pb-c", "/pb-d", "/pb-e", "/pb-f", "/pb-g"]`,
			"tags":              "[]",
			"last_reviewed":     "2026-08-01",
		}, "# Patterns\n\n**Resource Hint:** sonnet\n\n## When to Use\n\nNow.\n")
		pb := testutil.NewTestPlaybook(t).WithCommand("core", "pb-patterns", content).Build()

		issues := v.ValidateAll(loadCommands(t, pb))
		if hasIssueContaining(issues, LevelError, "max") {
			t.Errorf("hub command over-limited: %v", errorMessages(issues))
		}
	})

	t.Run("stale review warns", func(t *testing.T) {
		content := testutil.CommandFile(map[string]string{
			"name": "pb-x", "title": "X", "category": "core",
			"difficulty": "beginner", "model_hint": "sonnet",
			"execution_pattern": "stepwise",
			"related_commands":  "[]", "tags": "[]",
			"last_reviewed": "2026-01-01",
		}, "# X\n\n**Resource Hint:** sonnet\n\n## When to Use\n\nNow.\n\n## Related Commands\n\n- `/pb-y`\n")
		pb := testutil.NewTestPlaybook(t).WithCommand("core", "pb-x", content).Build()

		issues := v.ValidateAll(loadCommands(t, pb))
		if !hasIssueContaining(issues, LevelWarning, "days old") {
			t.Error("stale review not warned")
		}
		errs, warns := Counts(issues)
		if errs != 0 || warns != 1 {
			t.Errorf("counts = (%d, %d), want (0, 1)", errs, warns)
		}
	})

	t.Run("bad date format errors", func(t *testing.T) {
		content := testutil.CommandFile(map[string]string{
			"name": "pb-x", "title": "X", "category": "core",
			"difficulty": "beginner", "model_hint": "sonnet",
			"execution_pattern": "stepwise",
			"related_commands":  "[]", "tags": "[]",
			"last_reviewed": "01/08/2026",
		}, "# X\n\n**Resource Hint:** sonnet\n\n## When to Use\n\nNow.\n")
		pb := testutil.NewTestPlaybook(t).WithCommand("core", "pb-x", content).Build()

		issues := v.ValidateAll(loadCommands(t, pb))
		if !hasIssueContaining(issues, LevelError, "YYYY-MM-DD") {
			t.Error("bad date format not reported")
		}
	})

	t.Run("missing conventions", func(t *testing.T) {
		content := testutil.CommandFile(map[string]string{
			"name": "pb-x", "title": "X", "category": "core",
			"difficulty": "beginner", "model_hint": "sonnet",
			"execution_pattern": "stepwise",
			"related_commands":  "[]", "tags": "[]",
			"last_reviewed": "2026-08-01",
		}, "# X\n\nJust a body.\n")
		pb := testutil.NewTestPlaybook(t).WithCommand("core", "pb-x", content).Build()

		issues := v.ValidateAll(loadCommands(t, pb))
		if !hasIssueContaining(issues, LevelError, "Resource Hint") {
			t.Error("missing Resource Hint not reported")
		}
		if !hasIssueContaining(issues, LevelError, "When to Use") {
			t.Error("missing When to Use not reported")
		}
	})
	t.Run("body related commands over limit", func(t *testing.T) {
		body := "# X\n\n**Resource Hint:** sonnet\n\n## When to Use\n\nNow.\n\n## Related Commands\n\n" +
			"- `/pb-a`\n- `/pb-b`\n- `/pb-c`\n- `/pb-d`\n- `/pb-e`\n- `/pb-f`\n"
		content := testutil.CommandFile(map[string]string{
			"name": "pb-x", "title": "X", "category": "core",
			"difficulty": "beginner", "model_hint": "sonnet",
			"execution_pattern": "stepwise",
			"related_commands":  "[]", "tags": "[]",
			"last_reviewed": "2026-08-01",
		}, body)
		pb := testutil.NewTestPlaybook(t).WithCommand("core", "pb-x", content).Build()

		issues := v.ValidateAll(loadCommands(t, pb))
		if !hasIssueContaining(issues, LevelError, "6 Related Commands in body exceeds limit of 5") {
			t.Errorf("body section over limit not reported: %v", errorMessages(issues))
		}
	})

	t.Run("hub body related commands limit is 10", func(t *testing.T) {
		body := "# Patterns\n\n**Resource Hint:** sonnet\n\n## When to Use\n\nNow.\n\n## Related Commands\n\n" +
			"- `/pb-a`\n- `/pb-b`\n- `/pb-c`\n- `/pb-d`\n- `/pb-e`\n- `/pb-f`\n- `/pb-g`\n"
		content := testutil.CommandFile(map[string]string{
			"name": "pb-patterns", "title": "Patterns", "category": "core",
			"difficulty": "beginner", "model_hint": "sonnet",
			"execution_pattern": "stepwise",
			"related_commands":  "[]", "tags": "[]",
			"last_reviewed": "2026-08-01",
		}, body)
		pb := testutil.NewTestPlaybook(t).WithCommand("core", "pb-patterns", content).Build()

		issues := v.ValidateAll(loadCommands(t, pb))
		if hasIssueContaining(issues, LevelError, "exceeds limit") {
			t.Errorf("hub body section over-limited: %v", errorMessages(issues))
		}
	})

	t.Run("missing body related commands section warns", func(t *testing.T) {
		content := testutil.CommandFile(map[string]string{
			"name": "pb-x", "title": "X", "category": "core",
			"difficulty": "beginner", "model_hint": "sonnet",
			"execution_pattern": "stepwise",
			"related_commands":  "[]", "tags": "[]",
			"last_reviewed": "2026-08-01",
		}, "# X\n\n**Resource Hint:** sonnet\n\n## When to Use\n\nNow.\n")
		pb := testutil.NewTestPlaybook(t).WithCommand("core", "pb-x", content).Build()

		issues := v.ValidateAll(loadCommands(t, pb))
		if !hasIssueContaining(issues, LevelWarning, "no standard Related Commands section") {
			t.Errorf("missing body section not warned: %v", issues)
		}
	})

	t.Run("resource hint accepts any casing and position", func(t *testing.T) {
		for _, hint := range []string{
			"**Resource Hint:** Sonnet",
			"**Resource Hint:** use opus for deep reviews",
		} {
			body := "# X\n\n" + hint + "\n\n## When to Use\n\nNow.\n\n## Related Commands\n\n- `/pb-y`\n"
			content := testutil.CommandFile(map[string]string{
				"name": "pb-x", "title": "X", "category": "core",
				"difficulty": "beginner", "model_hint": "sonnet",
				"execution_pattern": "stepwise",
				"related_commands":  "[]", "tags": "[]",
				"last_reviewed": "2026-08-01",
			}, body)
			pb := testutil.NewTestPlaybook(t).WithCommand("core", "pb-x", content).Build()

			issues := v.ValidateAll(loadCommands(t, pb))
			if hasIssueContaining(issues, LevelError, "Resource Hint") {
				t.Errorf("hint %q rejected: %v", hint, errorMessages(issues))
			}
		}
	})

	t.Run("resource hint without model errors", func(t *testing.T) {
		body := "# X\n\n**Resource Hint:** the big one\n\n## When to Use\n\nNow.\n\n## Related Commands\n\n- `/pb-y`\n"
		content := testutil.CommandFile(map[string]string{
			"name": "pb-x", "title": "X", "category": "core",
			"difficulty": "beginner", "model_hint": "sonnet",
			"execution_pattern": "stepwise",
			"related_commands":  "[]", "tags": "[]",
			"last_reviewed": "2026-08-01",
		}, body)
		pb := testutil.NewTestPlaybook(t).WithCommand("core", "pb-x", content).Build()

		issues := v.ValidateAll(loadCommands(t, pb))
		if !hasIssueContaining(issues, LevelError, "Resource Hint missing model") {
			t.Errorf("model-less hint not reported: %v", errorMessages(issues))
		}
	})
}

func TestExpectedCount(t *testing.T) {
	pb := testutil.NewTestPlaybook(t).
		WithCommand("core", "pb-a", testutil.MinimalCommand("pb-a", "core")).
		Build()

	v := NewValidator(Options{
		Now:           time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
		ExpectedCount: 3,
	})
	issues := v.ValidateAll(loadCommands(t, pb))
	if !hasIssueContaining(issues, LevelError, "expected 3 commands, found 1") {
		t.Errorf("count mismatch not reported: %v", errorMessages(issues))
	}
}
