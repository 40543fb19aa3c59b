// Package slugs provides canonical slugification helpers used across pbk.
//
// Section slugs (from markdown headings) use a conservative ASCII-ish
// transformation so they stay stable across command revisions. Path slugs
// (for file/command name matching) are built on gosimple/slug.
package slugs

import (
	"strings"
	"unicode"

	goslug "github.com/gosimple/slug"
)

// SectionSlug converts a heading text to a URL-friendly slug.
// "When to Use" -> "when-to-use".
func SectionSlug(text string) string {
	var result strings.Builder
	prevDash := false

	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			result.WriteRune(r)
			prevDash = false
		case r == ' ' || r == '-' || r == '_' || r == ':':
			if !prevDash && result.Len() > 0 {
				result.WriteRune('-')
				prevDash = true
			}
		}
	}

	return strings.TrimSuffix(result.String(), "-")
}

// CommandSlug converts a string to a URL-safe slug appropriate for command names.
func CommandSlug(s string) string {
	s = strings.TrimSuffix(s, ".md")
	slugged := goslug.Make(s)
	if slugged == "" {
		slugged = strings.ToLower(strings.ReplaceAll(s, " ", "-"))
	}
	return slugged
}
