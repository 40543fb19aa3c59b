package gitexec

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// commitDelimiter separates commits in the structured log format. Subjects
// and bodies can carry any byte except a line equal to the delimiter.
const commitDelimiter = "---END---"

// commitLogFormat yields hash, author, email, date, subject on their own
// lines followed by the body and the delimiter.
const commitLogFormat = "%H%n%an%n%ae%n%ad%n%s%n" + commitDelimiter

var hashPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

// Commit is one parsed git log entry.
type Commit struct {
	Hash    string `json:"hash"`
	Author  string `json:"author"`
	Email   string `json:"email"`
	Date    string `json:"date"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// FileChange is one numstat line: lines added and deleted per file.
// Binary files report -1 for both counts.
type FileChange struct {
	Path    string
	Added   int
	Deleted int
}

// Log returns all commits since the given date (YYYY-MM-DD or a git
// relative date like "90 days ago"). Failures degrade to nil.
func (r *Repo) Log(ctx context.Context, since string) []Commit {
	out := r.RunQuiet(ctx, "log", "--format="+commitLogFormat, "--date=short", "--since="+since)
	return ParseCommits(out)
}

// TouchedFiles returns every file path touched by commits since the given
// date, in occurrence order with repeats (callers count frequency).
func (r *Repo) TouchedFiles(ctx context.Context, since string) []string {
	out := r.RunQuiet(ctx, "log", "--name-only", "--pretty=", "--since="+since)
	var files []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files
}

// Numstat returns per-file line change counts since the given date.
func (r *Repo) Numstat(ctx context.Context, since string) []FileChange {
	out := r.RunQuiet(ctx, "log", "--numstat", "--pretty=", "--since="+since)
	return ParseNumstat(out)
}

// CommitFiles returns the files touched by one commit.
func (r *Repo) CommitFiles(ctx context.Context, hash string) []string {
	out := r.RunQuiet(ctx, "show", "--name-only", "--pretty=", hash)
	var files []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files
}

// FileAt returns the content of a file at a given commit.
func (r *Repo) FileAt(ctx context.Context, commit, path string) (string, error) {
	return r.Run(ctx, "show", commit+":"+path)
}

// ChangedBetween returns the files that differ between two commits.
func (r *Repo) ChangedBetween(ctx context.Context, base, target string) ([]string, error) {
	out, err := r.Run(ctx, "diff", "--name-only", base+"..."+target)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// ParseCommits parses the structured commit log format. Garbled leading
// lines before the first hash are skipped.
func ParseCommits(raw string) []Commit {
	var commits []Commit
	var current *Commit
	fieldIdx := 0

	flush := func() {
		if current != nil && current.Hash != "" {
			commits = append(commits, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if hashPattern.MatchString(line) {
			flush()
			current = &Commit{Hash: line}
			fieldIdx = 0
			continue
		}
		if current == nil {
			continue
		}
		if line == commitDelimiter {
			flush()
			continue
		}

		switch fieldIdx {
		case 0:
			current.Author = line
		case 1:
			current.Email = line
		case 2:
			current.Date = line
		case 3:
			current.Subject = line
		default:
			if current.Body == "" {
				current.Body = line
			} else {
				current.Body += "\n" + line
			}
		}
		fieldIdx++
	}
	flush()

	return commits
}

// ParseNumstat parses `git log --numstat` output (added<TAB>deleted<TAB>path).
// Lines that do not fit the shape are skipped; binary markers ("-") become -1.
func ParseNumstat(raw string) []FileChange {
	var changes []FileChange
	for _, line := range strings.Split(raw, "\n") {
		parts := strings.Split(strings.TrimSpace(line), "\t")
		if len(parts) != 3 || parts[2] == "" {
			continue
		}

		added, okA := parseCount(parts[0])
		deleted, okD := parseCount(parts[1])
		if !okA || !okD {
			continue
		}

		changes = append(changes, FileChange{Path: parts[2], Added: added, Deleted: deleted})
	}
	return changes
}

func parseCount(s string) (int, bool) {
	if s == "-" {
		return -1, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
