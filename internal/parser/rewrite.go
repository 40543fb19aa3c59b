package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// Targeted front-matter rewrites. These operate on raw file content and only
// touch the matched line, preserving everything else byte-for-byte.

var (
	modelHintLine = regexp.MustCompile(`(?m)^model_hint:\s*"[^"]*"\s*$`)
	tagsLine      = regexp.MustCompile(`(?m)^tags:\s*\[[^\]]*\]\s*\n`)
)

// SetModelHint rewrites the model_hint field inside the front-matter block.
// Returns the updated content and whether a rewrite happened.
func SetModelHint(content, newHint string) (string, bool) {
	raw, rest, ok := splitFrontmatter(content)
	if !ok {
		return content, false
	}

	if !modelHintLine.MatchString(raw) {
		return content, false
	}

	updated := modelHintLine.ReplaceAllString(raw, fmt.Sprintf("model_hint: %q", newHint))
	return "---\n" + updated + "\n---\n" + rest, updated != raw
}

// StripTags removes the tags line from the front-matter block.
// Returns the updated content and whether a tags line was removed.
func StripTags(content string) (string, bool) {
	raw, rest, ok := splitFrontmatter(content)
	if !ok {
		return content, false
	}

	updated := tagsLine.ReplaceAllString(raw+"\n", "")
	updated = strings.TrimSuffix(updated, "\n")
	if updated == raw {
		return content, false
	}
	return "---\n" + updated + "\n---\n" + rest, true
}

// splitFrontmatter splits content into the raw front-matter block and the
// remaining body. ok is false when no closed front-matter block exists.
func splitFrontmatter(content string) (raw, rest string, ok bool) {
	lines := strings.Split(content, "\n")
	_, endLine, found := FrontmatterBounds(lines)
	if !found || endLine == -1 {
		return "", "", false
	}

	raw = strings.Join(lines[1:endLine], "\n")
	rest = strings.Join(lines[endLine+1:], "\n")
	return raw, rest, true
}
