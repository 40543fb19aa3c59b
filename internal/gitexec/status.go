package gitexec

import (
	"context"
	"strconv"
	"strings"
)

// UnstagedFiles returns the paths from git status --porcelain. Rename
// entries report the destination path.
func (r *Repo) UnstagedFiles(ctx context.Context) []string {
	out := r.RunQuiet(ctx, "status", "--porcelain")
	var files []string
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		path := strings.TrimSpace(line[3:])
		if idx := strings.Index(path, " -> "); idx >= 0 {
			path = path[idx+4:]
		}
		files = append(files, path)
	}
	return files
}

// StagedFiles returns the paths staged for commit.
func (r *Repo) StagedFiles(ctx context.Context) []string {
	return splitLines(r.RunQuiet(ctx, "diff", "--cached", "--name-only"))
}

// DiffFiles returns the paths with unstaged modifications.
func (r *Repo) DiffFiles(ctx context.Context) []string {
	return splitLines(r.RunQuiet(ctx, "diff", "--name-only"))
}

// RecentSubjects returns up to n recent commit subjects in oneline form.
func (r *Repo) RecentSubjects(ctx context.Context, n int) []string {
	return splitLines(r.RunQuiet(ctx, "log", "--oneline", "-"+strconv.Itoa(n)))
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
