// Package reconcile detects and repairs drift between a command's body
// Resource Hint and its front-matter model_hint. The body is authoritative.
package reconcile

import (
	"fmt"
	"os"
	"sort"

	"github.com/pbk-dev/pbk/internal/atomicfile"
	"github.com/pbk-dev/pbk/internal/parser"
	"github.com/pbk-dev/pbk/internal/playbook"
)

// Conflict is one command whose body and front-matter disagree on the
// model hint.
type Conflict struct {
	Command  string `json:"command"`
	Path     string `json:"-"`
	RelPath  string `json:"file"`
	BodyHint string `json:"body_hint"`
	MetaHint string `json:"meta_hint"`
}

// FindConflicts returns the commands where both hints are present and
// differ, sorted by command name.
func FindConflicts(cmds []*playbook.Command) []Conflict {
	var conflicts []Conflict
	for _, cmd := range cmds {
		bodyHint := parser.ExtractResourceHint(cmd.Body)
		if bodyHint == "" || cmd.Frontmatter == nil {
			continue
		}
		metaHint := cmd.Frontmatter.String("model_hint")
		if metaHint == "" || bodyHint == metaHint {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Command:  cmd.Name,
			Path:     cmd.Path,
			RelPath:  cmd.RelPath,
			BodyHint: bodyHint,
			MetaHint: metaHint,
		})
	}

	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].Command < conflicts[j].Command
	})
	return conflicts
}

// Fix rewrites each conflicting file's front-matter model_hint to match
// the body. Returns the conflicts actually fixed.
func Fix(conflicts []Conflict) ([]Conflict, error) {
	var fixed []Conflict
	for _, c := range conflicts {
		data, err := os.ReadFile(c.Path)
		if err != nil {
			return fixed, fmt.Errorf("read %s: %w", c.RelPath, err)
		}

		updated, changed := parser.SetModelHint(string(data), c.BodyHint)
		if !changed {
			continue
		}
		if err := atomicfile.WriteFile(c.Path, []byte(updated), 0644); err != nil {
			return fixed, fmt.Errorf("write %s: %w", c.RelPath, err)
		}
		fixed = append(fixed, c)
	}
	return fixed, nil
}
