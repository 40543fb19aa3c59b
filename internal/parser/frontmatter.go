// Package parser handles parsing playbook command markdown files.
package parser

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the date format used in front-matter fields.
const DateLayout = "2006-01-02"

// Frontmatter represents parsed YAML front-matter data.
type Frontmatter struct {
	// Fields are the raw decoded key-value pairs.
	Fields map[string]interface{}

	// Raw is the raw front-matter content between the delimiters.
	Raw string

	// EndLine is the line where front-matter ends (1-indexed).
	EndLine int
}

// Metadata is the typed view of the front-matter schema carried by
// playbook command files. All fields are optional at parse time;
// validation reports what is missing or invalid.
type Metadata struct {
	Name             string   `json:"name,omitempty"`
	Title            string   `json:"title,omitempty"`
	Category         string   `json:"category,omitempty"`
	Difficulty       string   `json:"difficulty,omitempty"`
	ModelHint        string   `json:"model_hint,omitempty"`
	ExecutionPattern string   `json:"execution_pattern,omitempty"`
	RelatedCommands  []string `json:"related_commands,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	LastReviewed     string   `json:"last_reviewed,omitempty"`
	LastEvolved      string   `json:"last_evolved,omitempty"`
	Version          string   `json:"version,omitempty"`
	VersionNotes     string   `json:"version_notes,omitempty"`
	BreakingChanges  string   `json:"breaking_changes,omitempty"`
}

// FrontmatterBounds returns the opening and closing front-matter line indices.
// It only detects front-matter when the first line is '---'.
// If front-matter is present but unclosed, endLine is -1.
func FrontmatterBounds(lines []string) (startLine int, endLine int, ok bool) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return 0, -1, false
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return 0, i, true
		}
	}

	return 0, -1, true
}

// ParseFrontmatter parses YAML front-matter from markdown content.
// Returns nil if no front-matter is found (including unclosed delimiters).
func ParseFrontmatter(content string) (*Frontmatter, error) {
	lines := strings.Split(content, "\n")

	_, endLine, ok := FrontmatterBounds(lines)
	if !ok {
		return nil, nil
	}
	if endLine == -1 {
		return nil, nil // No closing ---
	}

	raw := strings.Join(lines[1:endLine], "\n")

	var yamlData map[string]interface{}
	if err := yaml.Unmarshal([]byte(raw), &yamlData); err != nil {
		return nil, fmt.Errorf("failed to parse front-matter as YAML: %w", err)
	}

	// YAML decodes an empty document (or comments/whitespace only) into a nil
	// map. Still "front-matter present" because it affects body line offsets.
	if yamlData == nil {
		yamlData = map[string]interface{}{}
	}

	return &Frontmatter{
		Fields:  yamlData,
		Raw:     raw,
		EndLine: endLine + 1, // +1 for 1-indexed lines
	}, nil
}

// Has reports whether a field key is present in the front-matter.
func (f *Frontmatter) Has(key string) bool {
	_, ok := f.Fields[key]
	return ok
}

// String returns a front-matter field coerced to a string.
// Dates become YYYY-MM-DD; missing and non-scalar fields become "".
func (f *Frontmatter) String(key string) string {
	return stringValue(f.Fields[key])
}

// StringList returns a front-matter field coerced to a string slice.
// A scalar value yields a one-element slice; missing fields yield nil.
func (f *Frontmatter) StringList(key string) []string {
	value, ok := f.Fields[key]
	if !ok || value == nil {
		return nil
	}

	if items, ok := value.([]interface{}); ok {
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, stringValue(item))
		}
		return out
	}

	return []string{stringValue(value)}
}

// IsList reports whether a field decoded as a YAML sequence.
func (f *Frontmatter) IsList(key string) bool {
	_, ok := f.Fields[key].([]interface{})
	return ok
}

// Metadata returns the typed view of the front-matter.
func (f *Frontmatter) Metadata() Metadata {
	return Metadata{
		Name:             f.String("name"),
		Title:            f.String("title"),
		Category:         f.String("category"),
		Difficulty:       f.String("difficulty"),
		ModelHint:        f.String("model_hint"),
		ExecutionPattern: f.String("execution_pattern"),
		RelatedCommands:  f.StringList("related_commands"),
		Tags:             f.StringList("tags"),
		LastReviewed:     f.String("last_reviewed"),
		LastEvolved:      f.String("last_evolved"),
		Version:          f.String("version"),
		VersionNotes:     f.String("version_notes"),
		BreakingChanges:  f.String("breaking_changes"),
	}
}

func stringValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return strings.TrimSuffix(fmt.Sprintf("%g", v), ".0")
	case bool:
		return fmt.Sprintf("%t", v)
	case time.Time:
		// yaml.v3 resolves unquoted dates to time.Time.
		return v.Format(DateLayout)
	default:
		return ""
	}
}
