package parser

import (
	"regexp"
	"sort"
	"strings"
)

// Body conventions shared by all playbook command files. These helpers feed
// both convention checking and zero-entry metadata extraction.

var (
	resourceHintPattern = regexp.MustCompile(`\*\*Resource Hint:\*\*\s+(sonnet|opus|haiku)`)
	commandRefPattern   = regexp.MustCompile(`/pb-[\w-]+`)
	titlePattern        = regexp.MustCompile(`(?m)^#\s+([^#\n]+)`)
	decisionPattern     = regexp.MustCompile(`(?i)([^→\n]+?)\s*→\s*(?:use\s+)?(/pb-[\w-]+)`)
	tierMarkerPattern   = regexp.MustCompile(`[Tt]ier:\s*\[?\s*(XS|S|M|L)(?:\s*,\s*(XS|S|M|L))*\s*\]?`)
	tierRowPattern      = regexp.MustCompile(`\|\s*\*\*(XS|S|M|L)\*\*\s*\|`)
	skillOpeners        = []*regexp.Regexp{
		regexp.MustCompile(`^You are\s`),
		regexp.MustCompile(`^You will\s`),
		regexp.MustCompile(`^Lets\s`),
		regexp.MustCompile(`^You should\s`),
	}
)

// whenToUseVariants are the recognized "When to Use" heading forms
// (lowercase substring match against the whole content).
var whenToUseVariants = []string{
	"## when to use",
	"## when to read",
	"## when to write",
	"## when to deprecate",
	"## when to optimize",
	"## when to create",
	"### when to use",
	"**when to use",
}

// ExtractResourceHint extracts the model from the body's Resource Hint line,
// e.g. "**Resource Hint:** sonnet — quick mechanical edits".
// Returns "" when absent.
func ExtractResourceHint(content string) string {
	match := resourceHintPattern.FindStringSubmatch(content)
	if match == nil {
		return ""
	}
	return match[1]
}

// HasWhenToUse reports whether the body carries a recognized
// "When to Use" heading variant.
func HasWhenToUse(content string) bool {
	lower := strings.ToLower(content)
	for _, variant := range whenToUseVariants {
		if strings.Contains(lower, variant) {
			return true
		}
	}
	return false
}

// ExtractTitle extracts the title from the first h1 heading, with
// emphasis markers stripped.
func ExtractTitle(content string) string {
	match := titlePattern.FindStringSubmatch(content)
	if match == nil {
		return ""
	}
	title := strings.TrimSpace(match[1])
	title = strings.ReplaceAll(title, "**", "")
	title = strings.ReplaceAll(title, "__", "")
	return title
}

// ExtractPurpose extracts the first prose paragraph after the h1 heading.
func ExtractPurpose(content string) string {
	parts := regexp.MustCompile(`\n---\n|\n\n`).Split(content, 3)
	if len(parts) < 2 {
		return ""
	}

	text := strings.TrimSpace(parts[1])
	if text == "" || strings.HasPrefix(text, "#") {
		return ""
	}
	return strings.SplitN(text, "\n", 2)[0]
}

// ExtractCommandRefs returns all /pb-* references in the content,
// deduplicated and sorted.
func ExtractCommandRefs(content string) []string {
	matches := commandRefPattern.FindAllString(content, -1)
	if matches == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		if _, ok := seen[m]; !ok {
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}

// ExtractSectionRefs returns /pb-* references from the named section,
// deduplicated but in document order (sequence matters for workflows).
// sectionNames are alternative headings, e.g. "Next Steps", "Workflow".
func ExtractSectionRefs(content string, sectionNames ...string) []string {
	section := sectionText(content, sectionNames...)
	if section == "" {
		return nil
	}

	matches := commandRefPattern.FindAllString(section, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		if _, ok := seen[m]; !ok {
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}

// frequencyPatterns map frequency values to their detection patterns,
// checked in order against the "When to Use" section.
var frequencyPatterns = []struct {
	frequency string
	pattern   *regexp.Regexp
}{
	{"daily", regexp.MustCompile(`\bdaily\b|\beveryday\b`)},
	{"weekly", regexp.MustCompile(`\bweekly\b|\bweek\b`)},
	{"start-of-feature", regexp.MustCompile(`\bstart of feature\b|\bstart of\b.*\bfeature\b|\bbeginning of feature\b`)},
	{"per-iteration", regexp.MustCompile(`\bper iteration\b|\beach iteration\b|\bevery iteration\b`)},
	{"per-pr", regexp.MustCompile(`\bper pr\b|\bbefore.*\bpr\b|\beach.*\bpr\b`)},
	{"pre-release", regexp.MustCompile(`\brelease\b|\bpre-release\b|\bdeployment\b`)},
	{"on-incident", regexp.MustCompile(`\bincident\b|\bhotfix\b|\bemergency\b`)},
	{"one-time", regexp.MustCompile(`\bone-time\b|\binitial setup\b|\bfirst time\b`)},
}

// ExtractFrequency derives usage frequency from the "When to Use" section.
// Falls back to "as-needed".
func ExtractFrequency(content string) string {
	section := strings.ToLower(sectionText(content, "When to Use"))
	if section == "" {
		return "as-needed"
	}

	for _, fp := range frequencyPatterns {
		if fp.pattern.MatchString(section) {
			return fp.frequency
		}
	}
	return "as-needed"
}

// ExtractTiers extracts size tiers (XS/S/M/L) from explicit markers, tier
// table rows, or complexity keywords. Returns tiers in size order, or nil.
func ExtractTiers(content string) []string {
	tiers := make(map[string]struct{})

	for _, match := range tierMarkerPattern.FindAllStringSubmatch(content, -1) {
		for _, group := range match[1:] {
			if group != "" {
				tiers[group] = struct{}{}
			}
		}
	}

	for _, match := range tierRowPattern.FindAllStringSubmatch(content, -1) {
		tiers[match[1]] = struct{}{}
	}

	if regexp.MustCompile(`(?i)\b(simple|straightforward|trivial|minimal)\b`).MatchString(content) {
		tiers["XS"] = struct{}{}
	}
	if regexp.MustCompile(`(?i)\b(medium|moderate|standard)\b`).MatchString(content) {
		tiers["M"] = struct{}{}
	}
	if regexp.MustCompile(`(?i)\b(large|complex|substantial|significant)\b`).MatchString(content) {
		tiers["L"] = struct{}{}
	}

	if len(tiers) == 0 {
		return nil
	}

	order := []string{"XS", "S", "M", "L"}
	var out []string
	for _, t := range order {
		if _, ok := tiers[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// DecisionRule is a "condition → command" routing rule found in a body.
type DecisionRule struct {
	Condition string `json:"condition"`
	Command   string `json:"command"`
}

// ExtractDecisionRules extracts "condition → /pb-x" routing rules.
func ExtractDecisionRules(content string) []DecisionRule {
	var rules []DecisionRule
	for _, match := range decisionPattern.FindAllStringSubmatch(content, -1) {
		rules = append(rules, DecisionRule{
			Condition: strings.TrimSpace(match[1]),
			Command:   match[2],
		})
	}
	return rules
}

// IsSkillFile reports whether content is a skill file (an AI prompt template
// rather than a user command), detected by its opening line.
func IsSkillFile(content string) bool {
	firstLine := strings.TrimSpace(strings.SplitN(content, "\n", 2)[0])
	for _, opener := range skillOpeners {
		if opener.MatchString(firstLine) {
			return true
		}
	}
	return false
}

// sectionText returns the text of the first matching "## <name>" section,
// up to the next heading or end of content.
func sectionText(content string, sectionNames ...string) string {
	for _, name := range sectionNames {
		pattern := regexp.MustCompile(`(?is)##\s+` + regexp.QuoteMeta(name) + `\s*\n(.*?)(?:##|\z)`)
		if match := pattern.FindStringSubmatch(content); match != nil {
			return match[1]
		}
	}
	return ""
}
