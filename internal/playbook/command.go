// Package playbook discovers and loads command files from a playbook
// directory tree.
package playbook

import (
	"strings"

	"github.com/pbk-dev/pbk/internal/parser"
)

// CommandsDir is the directory under the playbook root holding command
// files, organized into one subdirectory per category.
const CommandsDir = "commands"

// CommandPrefix is the filename prefix all command files carry.
const CommandPrefix = "pb-"

// Command is a single loaded command file.
type Command struct {
	// Name is the file stem, e.g. "pb-commit".
	Name string

	// Category is the parent directory name under commands/.
	Category string

	// Path is the absolute path to the file.
	Path string

	// RelPath is the path relative to the playbook root.
	RelPath string

	// Frontmatter is nil when the file has no front-matter block.
	Frontmatter *parser.Frontmatter

	// Body is the content below the front-matter block, or the whole
	// file when no front-matter exists.
	Body string

	// Content is the full file content.
	Content string
}

// HasMetadata reports whether the file carries a front-matter block.
func (c *Command) HasMetadata() bool {
	return c.Frontmatter != nil
}

// Ref returns the slash-reference form of the command, e.g. "/pb-commit".
func (c *Command) Ref() string {
	return "/" + c.Name
}

// BodyStartLine returns the 1-indexed line where the body begins.
func (c *Command) BodyStartLine() int {
	if c.Frontmatter == nil {
		return 1
	}
	return c.Frontmatter.EndLine + 1
}

// splitBody returns the content below a closed front-matter block.
func splitBody(content string, fm *parser.Frontmatter) string {
	if fm == nil {
		return content
	}
	lines := strings.Split(content, "\n")
	if fm.EndLine >= len(lines) {
		return ""
	}
	return strings.Join(lines[fm.EndLine:], "\n")
}
