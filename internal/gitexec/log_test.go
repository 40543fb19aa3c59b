package gitexec

import (
	"context"
	"errors"
	"testing"
)

const sampleLog = `a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2
Alice Smith
alice@example.com
2026-08-20
Fix broken pb-commit workflow
Longer explanation of the fix.
Second body line.
---END---
ffffffffffffffffffffffffffffffffffffffff
Bob Jones
bob@example.com
2026-08-19
Add pb-start command
---END---
`

func TestParseCommits(t *testing.T) {
	t.Run("parses structured log format", func(t *testing.T) {
		commits := ParseCommits(sampleLog)
		if len(commits) != 2 {
			t.Fatalf("got %d commits, want 2", len(commits))
		}

		first := commits[0]
		if first.Author != "Alice Smith" {
			t.Errorf("Author = %q", first.Author)
		}
		if first.Date != "2026-08-20" {
			t.Errorf("Date = %q", first.Date)
		}
		if first.Subject != "Fix broken pb-commit workflow" {
			t.Errorf("Subject = %q", first.Subject)
		}
		if first.Body != "Longer explanation of the fix.\nSecond body line." {
			t.Errorf("Body = %q", first.Body)
		}

		if commits[1].Body != "" {
			t.Errorf("second commit body = %q, want empty", commits[1].Body)
		}
	})

	t.Run("empty output yields no commits", func(t *testing.T) {
		if got := ParseCommits(""); got != nil {
			t.Errorf("got %v, want nil", got)
		}
	})

	t.Run("skips garbled leading lines", func(t *testing.T) {
		raw := "warning: something\n" + sampleLog
		commits := ParseCommits(raw)
		if len(commits) != 2 {
			t.Errorf("got %d commits, want 2", len(commits))
		}
	})
}

func TestParseNumstat(t *testing.T) {
	raw := "10\t2\tcommands/development/pb-commit.md\n" +
		"-\t-\tassets/logo.png\n" +
		"garbage line\n" +
		"5\t0\tcommands/core/pb-help.md\n"

	changes := ParseNumstat(raw)
	if len(changes) != 3 {
		t.Fatalf("got %d changes, want 3", len(changes))
	}
	if changes[0].Added != 10 || changes[0].Deleted != 2 {
		t.Errorf("first change = %+v", changes[0])
	}
	if changes[1].Added != -1 || changes[1].Deleted != -1 {
		t.Errorf("binary change = %+v", changes[1])
	}
}

func TestRepoDegradesGracefully(t *testing.T) {
	restore := stubGit(func(args ...string) (string, error) {
		return "", errors.New("fatal: not a git repository")
	})
	defer restore()

	r := NewRepo(t.TempDir())
	ctx := context.Background()

	if commits := r.Log(ctx, "90 days ago"); commits != nil {
		t.Errorf("Log returned %v, want nil", commits)
	}
	if files := r.TouchedFiles(ctx, "90 days ago"); files != nil {
		t.Errorf("TouchedFiles returned %v, want nil", files)
	}
	if head := r.Head(ctx); head != "" {
		t.Errorf("Head returned %q, want empty", head)
	}
	if r.IsRepo(ctx) {
		t.Error("IsRepo returned true")
	}
}

func TestRepoParsesStubbedOutput(t *testing.T) {
	restore := stubGitOutputs(map[string]string{
		"log --name-only": "commands/core/pb-help.md\n\ncommands/core/pb-help.md\nREADME.md\n",
		"status --porcelain": " M commands/core/pb-help.md\n",
		"rev-parse --abbrev-ref HEAD": "main\n",
		"tag -l": "evolution-2026-07-01\nevolution-2026-08-01\n",
	})
	defer restore()

	r := NewRepo(t.TempDir())
	ctx := context.Background()

	files := r.TouchedFiles(ctx, "90 days ago")
	if len(files) != 3 {
		t.Errorf("got %d files, want 3", len(files))
	}

	clean, err := r.IsClean(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clean {
		t.Error("expected dirty work tree")
	}

	if got := r.Branch(ctx); got != "main" {
		t.Errorf("Branch = %q, want main", got)
	}

	tags := r.ListTags(ctx, "evolution-*")
	if len(tags) != 2 {
		t.Errorf("got %d tags, want 2", len(tags))
	}
}
