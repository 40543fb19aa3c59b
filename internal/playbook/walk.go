package playbook

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pbk-dev/pbk/internal/parser"
)

// WalkResult is the outcome of loading a single command file. Error is set
// when the file could not be read or its front-matter is malformed; the walk
// continues past failed files so one bad file never hides the rest.
type WalkResult struct {
	Path    string
	RelPath string
	Command *Command
	Error   error
}

// WalkCommands walks all pb-*.md files under <root>/commands and calls the
// handler for each. Hidden directories and the .pbk state directory are
// skipped.
func WalkCommands(root string, handler func(result WalkResult) error) error {
	commandsPath := filepath.Join(root, CommandsDir)
	if _, err := os.Stat(commandsPath); err != nil {
		return fmt.Errorf("no %s directory under %s", CommandsDir, root)
	}

	return filepath.WalkDir(commandsPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			relPath, _ := filepath.Rel(root, path)
			return handler(WalkResult{Path: path, RelPath: relPath, Error: err})
		}

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		if !strings.HasPrefix(name, CommandPrefix) || !strings.HasSuffix(name, ".md") {
			return nil
		}

		relPath, _ := filepath.Rel(root, path)

		content, err := os.ReadFile(path)
		if err != nil {
			return handler(WalkResult{Path: path, RelPath: relPath, Error: err})
		}

		cmd, err := loadCommand(path, relPath, string(content))
		if err != nil {
			return handler(WalkResult{Path: path, RelPath: relPath, Error: err})
		}

		return handler(WalkResult{Path: path, RelPath: relPath, Command: cmd})
	})
}

// CollectCommands walks the playbook and returns commands sorted by walk
// order, plus any files that failed to load.
func CollectCommands(root string) ([]*Command, []WalkResult, error) {
	var cmds []*Command
	var failed []WalkResult

	err := WalkCommands(root, func(result WalkResult) error {
		if result.Error != nil {
			failed = append(failed, result)
		} else {
			cmds = append(cmds, result.Command)
		}
		return nil
	})

	return cmds, failed, err
}

// LoadCommand reads and parses a single command file.
func LoadCommand(root, path string) (*Command, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	relPath, _ := filepath.Rel(root, path)
	return loadCommand(path, relPath, string(content))
}

func loadCommand(path, relPath, content string) (*Command, error) {
	fm, err := parser.ParseFrontmatter(content)
	if err != nil {
		return nil, err
	}

	return &Command{
		Name:        strings.TrimSuffix(filepath.Base(path), ".md"),
		Category:    filepath.Base(filepath.Dir(path)),
		Path:        path,
		RelPath:     relPath,
		Frontmatter: fm,
		Body:        splitBody(content, fm),
		Content:     content,
	}, nil
}
