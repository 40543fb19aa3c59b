// Package check handles playbook-wide validation: front-matter schema
// checks and body convention checks.
package check

import (
	"fmt"
	"strings"
	"time"

	"github.com/pbk-dev/pbk/internal/parser"
	"github.com/pbk-dev/pbk/internal/playbook"
)

// Issue represents a validation issue.
type Issue struct {
	Level    IssueLevel
	FilePath string
	Line     int
	Message  string
}

// IssueLevel indicates the severity of an issue.
type IssueLevel int

const (
	LevelError IssueLevel = iota
	LevelWarning
)

func (l IssueLevel) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarning:
		return "WARN"
	default:
		return "UNKNOWN"
	}
}

// RequiredFields must all be present in a command's front-matter.
var RequiredFields = []string{
	"name", "title", "category", "difficulty", "model_hint",
	"execution_pattern", "related_commands", "tags", "last_reviewed",
}

// ValidCategories are the category subdirectories a command may declare.
var ValidCategories = map[string]struct{}{
	"core": {}, "planning": {}, "development": {}, "deployment": {},
	"reviews": {}, "repo": {}, "people": {}, "templates": {}, "utilities": {},
}

// ValidDifficulties are the accepted difficulty values.
var ValidDifficulties = map[string]struct{}{
	"beginner": {}, "intermediate": {}, "advanced": {}, "expert": {},
}

// ValidModels are the accepted model_hint / Resource Hint values.
var ValidModels = map[string]struct{}{
	"haiku": {}, "sonnet": {}, "opus": {},
}

// HubCommands are allowed to exceed the normal related_commands limit.
var HubCommands = map[string]struct{}{
	"pb-patterns": {},
}

const (
	// RelatedLimit caps related_commands for normal commands.
	RelatedLimit = 5

	// HubRelatedLimit caps related_commands for hub commands.
	HubRelatedLimit = 10

	// TagsLimit caps the tags list.
	TagsLimit = 5

	// StaleReviewDays is the age past which last_reviewed draws a warning.
	StaleReviewDays = 90
)

// Options configure a validation run.
type Options struct {
	// Now anchors staleness checks; zero means time.Now().
	Now time.Time

	// ExpectedCount, when positive, asserts the total number of command
	// files in the playbook.
	ExpectedCount int
}

// Validator validates command files against the metadata schema and
// body conventions.
type Validator struct {
	opts Options
}

// NewValidator creates a validator.
func NewValidator(opts Options) *Validator {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	return &Validator{opts: opts}
}

// ValidateAll runs per-command validation plus playbook-level checks.
func (v *Validator) ValidateAll(cmds []*playbook.Command) []Issue {
	var issues []Issue

	if v.opts.ExpectedCount > 0 && len(cmds) != v.opts.ExpectedCount {
		issues = append(issues, Issue{
			Level: LevelError,
			Message: fmt.Sprintf("expected %d commands, found %d",
				v.opts.ExpectedCount, len(cmds)),
		})
	}

	for _, cmd := range cmds {
		issues = append(issues, v.ValidateCommand(cmd)...)
	}

	return issues
}

// ValidateCommand checks one command's front-matter and body conventions.
func (v *Validator) ValidateCommand(cmd *playbook.Command) []Issue {
	var issues []Issue

	issues = append(issues, v.validateMetadata(cmd)...)
	issues = append(issues, v.validateConventions(cmd)...)

	return issues
}

func (v *Validator) validateMetadata(cmd *playbook.Command) []Issue {
	var issues []Issue

	addError := func(line int, format string, args ...interface{}) {
		issues = append(issues, Issue{
			Level:    LevelError,
			FilePath: cmd.RelPath,
			Line:     line,
			Message:  fmt.Sprintf(format, args...),
		})
	}
	addWarning := func(format string, args ...interface{}) {
		issues = append(issues, Issue{
			Level:    LevelWarning,
			FilePath: cmd.RelPath,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	fm := cmd.Frontmatter
	if fm == nil {
		addError(1, "no YAML front-matter")
		return issues
	}

	for _, field := range RequiredFields {
		if !fm.Has(field) {
			addError(1, "missing required field %q", field)
		}
	}

	if fm.Has("name") && fm.String("name") != cmd.Name {
		addError(1, "name %q does not match filename stem %q", fm.String("name"), cmd.Name)
	}

	if fm.Has("category") {
		if _, ok := ValidCategories[fm.String("category")]; !ok {
			addError(1, "invalid category %q", fm.String("category"))
		}
	}

	if fm.Has("difficulty") {
		if _, ok := ValidDifficulties[fm.String("difficulty")]; !ok {
			addError(1, "invalid difficulty %q", fm.String("difficulty"))
		}
	}

	if fm.Has("model_hint") {
		if _, ok := ValidModels[fm.String("model_hint")]; !ok {
			addError(1, "invalid model_hint %q (use haiku/sonnet/opus)", fm.String("model_hint"))
		}
	}

	if fm.Has("related_commands") {
		if !fm.IsList("related_commands") {
			addError(1, "related_commands must be a list")
		} else {
			related := fm.StringList("related_commands")
			limit := RelatedLimit
			if _, hub := HubCommands[cmd.Name]; hub {
				limit = HubRelatedLimit
			}
			if len(related) > limit {
				addError(1, "related_commands has %d items (max %d)", len(related), limit)
			}
			for _, r := range related {
				if r == cmd.Name || r == "/"+cmd.Name {
					addError(1, "related_commands includes self")
					break
				}
			}
		}
	}

	if fm.Has("tags") {
		if !fm.IsList("tags") {
			addError(1, "tags must be a list")
		} else if tags := fm.StringList("tags"); len(tags) > TagsLimit {
			addError(1, "tags has %d items (max %d)", len(tags), TagsLimit)
		}
	}

	if fm.Has("last_reviewed") && fm.String("last_reviewed") != "" {
		reviewed, err := time.Parse(parser.DateLayout, fm.String("last_reviewed"))
		if err != nil {
			addError(1, "invalid last_reviewed date format (use YYYY-MM-DD)")
		} else if daysOld := int(v.opts.Now.Sub(reviewed).Hours() / 24); daysOld > StaleReviewDays {
			addWarning("last_reviewed is %d days old", daysOld)
		}
	}

	return issues
}

func (v *Validator) validateConventions(cmd *playbook.Command) []Issue {
	var issues []Issue
	addError := func(format string, args ...interface{}) {
		issues = append(issues, Issue{
			Level:    LevelError,
			FilePath: cmd.RelPath,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	// The hint line accepts any casing and the model anywhere in the line;
	// only reconcile needs the strict leading-model form.
	switch hintLine := resourceHintLine(cmd.Content); {
	case hintLine == "":
		addError("missing **Resource Hint:** line")
	case lineModel(hintLine) == "":
		addError("Resource Hint missing model (opus/sonnet/haiku): %s", strings.TrimSpace(hintLine))
	}

	if !parser.HasWhenToUse(cmd.Content) {
		addError("missing When to Use section")
	}

	if count := relatedCommandsInBody(cmd.Content); count == 0 {
		issues = append(issues, Issue{
			Level:    LevelWarning,
			FilePath: cmd.RelPath,
			Message:  "no standard Related Commands section found",
		})
	} else {
		limit := RelatedLimit
		if _, hub := HubCommands[cmd.Name]; hub {
			limit = HubRelatedLimit
		}
		if count > limit {
			addError("%d Related Commands in body exceeds limit of %d", count, limit)
		}
	}

	return issues
}

// resourceHintLine returns the first body line carrying a Resource Hint
// marker, or "".
func resourceHintLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if strings.Contains(line, "**Resource Hint:**") {
			return line
		}
	}
	return ""
}

// lineModel returns the first valid model mentioned anywhere in the line,
// case-insensitively.
func lineModel(line string) string {
	lower := strings.ToLower(line)
	for _, model := range []string{"haiku", "sonnet", "opus"} {
		if strings.Contains(lower, model) {
			return model
		}
	}
	return ""
}

// relatedCommandsInBody counts the /pb- bullets inside the body's
// "## Related Commands" section.
func relatedCommandsInBody(content string) int {
	inSection := false
	count := 0
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "## Related Commands") {
			inSection = true
			continue
		}
		if !inSection {
			continue
		}
		if strings.HasPrefix(line, "## ") || strings.HasPrefix(line, "---") {
			break
		}
		if strings.HasPrefix(strings.TrimSpace(line), "- `/pb-") {
			count++
		}
	}
	return count
}

// Counts returns the number of errors and warnings in a set of issues.
func Counts(issues []Issue) (errors, warnings int) {
	for _, issue := range issues {
		switch issue.Level {
		case LevelError:
			errors++
		case LevelWarning:
			warnings++
		}
	}
	return errors, warnings
}
