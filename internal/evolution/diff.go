package evolution

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pbk-dev/pbk/internal/atomicfile"
	"github.com/pbk-dev/pbk/internal/parser"
	"github.com/pbk-dev/pbk/internal/playbook"
)

// DiffReportFile is the default markdown diff report path, relative to
// the playbook root.
const DiffReportFile = "todos/evolution-diff-report.md"

// DiffGit is the subset of git operations the differ needs.
type DiffGit interface {
	FileAt(ctx context.Context, commit, path string) (string, error)
	ChangedBetween(ctx context.Context, base, target string) ([]string, error)
}

// FieldChange is one front-matter field rewritten between two commits.
type FieldChange struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// CommandDiff is the set of field changes for one command file.
type CommandDiff struct {
	FilePath string                 `json:"filepath"`
	Fields   map[string]FieldChange `json:"fields"`
}

// DiffResult maps command name to its field-level changes between a base
// and evolved commit.
type DiffResult map[string]CommandDiff

// Differ computes front-matter diffs across git history.
type Differ struct {
	git DiffGit
}

// NewDiffer creates a differ over the given git source.
func NewDiffer(git DiffGit) *Differ {
	return &Differ{git: git}
}

// Compare returns the field-level front-matter changes for every command
// file that differs between base and evolved. Files missing front-matter
// on either side are skipped.
func (d *Differ) Compare(ctx context.Context, base, evolved string) (DiffResult, error) {
	files, err := d.git.ChangedBetween(ctx, base, evolved)
	if err != nil {
		return nil, fmt.Errorf("diff %s...%s: %w", base, evolved, err)
	}

	changes := DiffResult{}
	for _, path := range files {
		if !strings.HasPrefix(path, playbook.CommandsDir+"/") {
			continue
		}

		baseMeta := d.metadataAt(ctx, base, path)
		evolvedMeta := d.metadataAt(ctx, evolved, path)
		if baseMeta == nil || evolvedMeta == nil {
			continue
		}

		fields := map[string]FieldChange{}
		for key := range union(baseMeta, evolvedMeta) {
			before, after := baseMeta[key], evolvedMeta[key]
			if before != after {
				fields[key] = FieldChange{Before: before, After: after}
			}
		}
		if len(fields) == 0 {
			continue
		}

		name := evolvedMeta["name"]
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(path), ".md")
		}
		changes[name] = CommandDiff{FilePath: path, Fields: fields}
	}

	return changes, nil
}

func (d *Differ) metadataAt(ctx context.Context, commit, path string) map[string]string {
	content, err := d.git.FileAt(ctx, commit, path)
	if err != nil {
		return nil
	}
	fm, err := parser.ParseFrontmatter(content)
	if err != nil || fm == nil {
		return nil
	}

	meta := map[string]string{}
	for key := range fm.Fields {
		if fm.IsList(key) {
			meta[key] = strings.Join(fm.StringList(key), ", ")
		} else {
			meta[key] = fm.String(key)
		}
	}
	return meta
}

func union(a, b map[string]string) map[string]struct{} {
	keys := map[string]struct{}{}
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	return keys
}

// ChangedCommands returns the sorted names of commands in the result.
func (r DiffResult) ChangedCommands() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByField regroups the result as field → "command: before → after" rows,
// sorted within each field.
func (r DiffResult) ByField() map[string][]string {
	grouped := map[string][]string{}
	for name, diff := range r {
		for field, change := range diff.Fields {
			grouped[field] = append(grouped[field],
				fmt.Sprintf("**%s**: `%s` → `%s`", name, change.Before, change.After))
		}
	}
	for field := range grouped {
		sort.Strings(grouped[field])
	}
	return grouped
}

// WriteDiffReport renders the markdown diff report to path.
func WriteDiffReport(path string, changes DiffResult, now time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("# Evolution Diff Report\n\n")
	fmt.Fprintf(&b, "**Generated:** %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(&b, "**Total Changes:** %d\n\n", len(changes))

	grouped := changes.ByField()
	fields := make([]string, 0, len(grouped))
	for field := range grouped {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	b.WriteString("## Changes by Field\n\n")
	for _, field := range fields {
		rows := grouped[field]
		fmt.Fprintf(&b, "### %s (%d changes)\n\n", field, len(rows))
		for _, row := range rows {
			fmt.Fprintf(&b, "- %s\n", row)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Detailed Changes\n\n")
	for _, name := range changes.ChangedCommands() {
		diff := changes[name]
		fmt.Fprintf(&b, "### %s\n\n", name)

		keys := make([]string, 0, len(diff.Fields))
		for key := range diff.Fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			change := diff.Fields[key]
			fmt.Fprintf(&b, "**%s:**\n", key)
			fmt.Fprintf(&b, "- Before: `%s`\n", change.Before)
			fmt.Fprintf(&b, "- After: `%s`\n\n", change.After)
		}
	}

	return atomicfile.WriteFile(path, []byte(b.String()), 0644)
}
