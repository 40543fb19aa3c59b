package gitexec

import (
	"context"
	"strings"
)

// CreateTag creates an annotated tag at HEAD.
func (r *Repo) CreateTag(ctx context.Context, name, message string) error {
	_, err := r.Run(ctx, "tag", "-a", name, "-m", message)
	return err
}

// DeleteTag removes a tag.
func (r *Repo) DeleteTag(ctx context.Context, name string) error {
	_, err := r.Run(ctx, "tag", "-d", name)
	return err
}

// ListTags returns tags matching a glob pattern, sorted by git's default
// ordering.
func (r *Repo) ListTags(ctx context.Context, pattern string) []string {
	out := r.RunQuiet(ctx, "tag", "-l", pattern)
	var tags []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			tags = append(tags, line)
		}
	}
	return tags
}

// TagCommit resolves a tag to its commit hash.
func (r *Repo) TagCommit(ctx context.Context, name string) (string, error) {
	out, err := r.Run(ctx, "rev-list", "-n", "1", name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ResetHard resets the work tree to the given ref.
func (r *Repo) ResetHard(ctx context.Context, ref string) error {
	_, err := r.Run(ctx, "reset", "--hard", ref)
	return err
}

// EmptyCommit records a commit with no changes, used as a rollback marker.
func (r *Repo) EmptyCommit(ctx context.Context, message string) error {
	_, err := r.Run(ctx, "commit", "--allow-empty", "-m", message)
	return err
}
