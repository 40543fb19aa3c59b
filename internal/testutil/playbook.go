// Package testutil provides reusable test utilities for playbook tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestPlaybook represents a temporary playbook directory for testing.
type TestPlaybook struct {
	Path  string
	t     *testing.T
	files map[string]string
}

// NewTestPlaybook creates a new test playbook builder.
// Call Build() to create the actual directory.
func NewTestPlaybook(t *testing.T) *TestPlaybook {
	t.Helper()
	return &TestPlaybook{
		t:     t,
		files: make(map[string]string),
	}
}

// WithFile adds a file to the playbook.
// The path is relative to the playbook root.
func (p *TestPlaybook) WithFile(path, content string) *TestPlaybook {
	p.files[path] = content
	return p
}

// WithCommand adds a command file under commands/<category>/<name>.md.
func (p *TestPlaybook) WithCommand(category, name, content string) *TestPlaybook {
	p.files[filepath.Join("commands", category, name+".md")] = content
	return p
}

// Build creates the playbook directory and all configured files.
func (p *TestPlaybook) Build() *TestPlaybook {
	p.t.Helper()

	p.Path = p.t.TempDir()

	for path, content := range p.files {
		p.WriteFile(path, content)
	}

	return p
}

// WriteFile writes a file to the playbook, creating directories as needed.
func (p *TestPlaybook) WriteFile(relPath, content string) {
	p.t.Helper()
	fullPath := filepath.Join(p.Path, relPath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		p.t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		p.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}
}

// ReadFile reads a file from the playbook.
func (p *TestPlaybook) ReadFile(relPath string) string {
	p.t.Helper()
	fullPath := filepath.Join(p.Path, relPath)
	content, err := os.ReadFile(fullPath)
	if err != nil {
		p.t.Fatalf("failed to read file %s: %v", fullPath, err)
	}
	return string(content)
}

// FileExists checks if a file exists in the playbook.
func (p *TestPlaybook) FileExists(relPath string) bool {
	p.t.Helper()
	_, err := os.Stat(filepath.Join(p.Path, relPath))
	return err == nil
}

// AssertFileExists fails the test if the file does not exist.
func (p *TestPlaybook) AssertFileExists(relPath string) {
	p.t.Helper()
	if !p.FileExists(relPath) {
		p.t.Errorf("expected file to exist: %s", relPath)
	}
}

// AssertFileContains fails the test if the file does not contain the substring.
func (p *TestPlaybook) AssertFileContains(relPath, substr string) {
	p.t.Helper()
	content := p.ReadFile(relPath)
	if !strings.Contains(content, substr) {
		p.t.Errorf("expected file %s to contain %q, got:\n%s", relPath, substr, content)
	}
}

// CommandFile builds a command file with well-formed front-matter followed
// by the given body. Keys appear in a stable order.
func CommandFile(fields map[string]string, body string) string {
	var b strings.Builder
	b.WriteString("---\n")
	for _, key := range []string{
		"name", "title", "category", "difficulty", "model_hint",
		"execution_pattern", "related_commands", "tags",
		"last_reviewed", "last_evolved", "version",
	} {
		value, ok := fields[key]
		if !ok {
			continue
		}
		if key == "related_commands" || key == "tags" {
			fmt.Fprintf(&b, "%s: %s\n", key, value)
		} else {
			fmt.Fprintf(&b, "%s: %q\n", key, value)
		}
	}
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.String()
}

// MinimalCommand returns a command file that passes validation for the
// given name and category.
func MinimalCommand(name, category string) string {
	return CommandFile(map[string]string{
		"name":              name,
		"title":             titleCase(strings.TrimPrefix(name, "pb-")),
		"category":          category,
		"difficulty":        "beginner",
		"model_hint":        "sonnet",
		"execution_pattern": "stepwise",
		"related_commands":  "[]",
		"tags":              "[]",
		"last_reviewed":     "2026-08-01",
	}, "# "+name+"\n\n**Resource Hint:** sonnet\n\n## When to Use\n\nAs needed.\n\n## Related Commands\n\n- `/pb-patterns`\n")
}

func titleCase(stem string) string {
	words := strings.Split(stem, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
