// Package gitexec runs git against a playbook repository and parses the
// output formats the analysis commands depend on.
package gitexec

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single git invocation.
const DefaultTimeout = 10 * time.Second

// runGit is a function hook for executing git commands.
// In production it shells out via exec.CommandContext; tests swap it for
// a canned-output stub.
var runGit = defaultRunGit

func defaultRunGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
	}
	return stdout.Bytes(), nil
}

// Repo runs git commands inside one repository.
type Repo struct {
	Dir     string
	Timeout time.Duration
}

// NewRepo returns a Repo with the default timeout.
func NewRepo(dir string) *Repo {
	return &Repo{Dir: dir, Timeout: DefaultTimeout}
}

// Run executes a git command and returns its stdout.
func (r *Repo) Run(ctx context.Context, args ...string) (string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := runGit(ctx, r.Dir, args...)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// RunQuiet executes a git command and degrades to an empty string on any
// failure. Analysis callers prefer empty result sets over hard errors.
func (r *Repo) RunQuiet(ctx context.Context, args ...string) string {
	out, err := r.Run(ctx, args...)
	if err != nil {
		return ""
	}
	return out
}

// IsRepo reports whether the directory is inside a git work tree.
func (r *Repo) IsRepo(ctx context.Context) bool {
	out, err := r.Run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// Head returns the current HEAD commit hash, or "" outside a repository.
func (r *Repo) Head(ctx context.Context) string {
	return strings.TrimSpace(r.RunQuiet(ctx, "rev-parse", "HEAD"))
}

// Branch returns the current branch name, or "" outside a repository.
func (r *Repo) Branch(ctx context.Context) string {
	return strings.TrimSpace(r.RunQuiet(ctx, "rev-parse", "--abbrev-ref", "HEAD"))
}

// IsClean reports whether the work tree has no uncommitted changes.
func (r *Repo) IsClean(ctx context.Context) (bool, error) {
	out, err := r.Run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "", nil
}
