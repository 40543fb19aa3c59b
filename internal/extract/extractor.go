// Package extract derives command metadata from markdown bodies with zero
// manual entry, scoring each field by extraction confidence.
package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pbk-dev/pbk/internal/parser"
	"github.com/pbk-dev/pbk/internal/playbook"
	"github.com/pbk-dev/pbk/internal/slugs"
)

// ExtractorVersion tags the extraction_metadata block in outputs.
const ExtractorVersion = "1.0"

// MetadataFile is the default output path relative to the playbook root.
const MetadataFile = ".playbook-metadata.json"

// Confidence values per field. Optional fields that extract nothing score
// zero and drop out of the average.
const (
	confidencePurpose       = 0.95
	confidenceTierExplicit  = 0.95
	confidenceTierTable     = 0.85
	confidenceTierKeyword   = 0.75
	confidenceRelated       = 0.95
	confidenceNextExplicit  = 0.90
	confidenceNextImplicit  = 0.80
	confidencePrereqs       = 0.85
	confidenceFreqDetected  = 0.85
	confidenceFreqDefaulted = 0.60
	confidenceDecision      = 0.70
)

// optionalFields drop out of the confidence average when they score zero:
// a missing optional field is not a bad extraction.
var optionalFields = map[string]struct{}{
	"next_steps":       {},
	"prerequisites":    {},
	"decision_context": {},
}

var useWhenPattern = regexp.MustCompile(`(?i)use\s+(?:when|if):\s*([^\n]+)`)

// ExtractionMetadata records provenance for one extracted command.
type ExtractionMetadata struct {
	SourceFile       string `json:"source_file"`
	ExtractionDate   string `json:"extraction_date"`
	ExtractorVersion string `json:"extractor_version"`
}

// CommandMetadata is everything derived from one command body.
type CommandMetadata struct {
	Command            string             `json:"command"`
	Category           string             `json:"category"`
	Title              string             `json:"title,omitempty"`
	Purpose            string             `json:"purpose,omitempty"`
	Tier               []string           `json:"tier,omitempty"`
	RelatedCommands    []string           `json:"related_commands"`
	NextSteps          []string           `json:"next_steps,omitempty"`
	Prerequisites      []string           `json:"prerequisites,omitempty"`
	Frequency          string             `json:"frequency"`
	DecisionContext    map[string]string  `json:"decision_context,omitempty"`
	Sections           []string           `json:"sections"`
	HasExamples        bool               `json:"has_examples"`
	HasChecklist       bool               `json:"has_checklist"`
	ExtractionMetadata ExtractionMetadata `json:"extraction_metadata"`
	ConfidenceScores   map[string]float64 `json:"confidence_scores"`
	AverageConfidence  float64            `json:"average_confidence"`
}

// IssueRecord is one warning or error from extraction or validation.
type IssueRecord struct {
	Command  string `json:"command,omitempty"`
	File     string `json:"file,omitempty"`
	Field    string `json:"field,omitempty"`
	Issue    string `json:"issue,omitempty"`
	Error    string `json:"error,omitempty"`
	Severity string `json:"severity"`
}

// CategoryGroup groups commands under one category.
type CategoryGroup struct {
	Count    int      `json:"count"`
	Commands []string `json:"commands"`
}

// ExtractionReport summarizes one extraction run.
type ExtractionReport struct {
	TotalCommands     int           `json:"total_commands"`
	ExtractionSuccess int           `json:"extraction_success"`
	AverageConfidence float64       `json:"average_confidence"`
	Warnings          []IssueRecord `json:"warnings"`
	Errors            []IssueRecord `json:"errors"`
}

// CompleteMetadata is the full .playbook-metadata.json structure.
type CompleteMetadata struct {
	MetadataVersion  string                      `json:"metadata_version"`
	ExtractionDate   string                      `json:"extraction_date"`
	TotalCommands    int                         `json:"total_commands"`
	Commands         map[string]*CommandMetadata `json:"commands"`
	Categories       map[string]*CategoryGroup   `json:"categories"`
	ExtractionReport ExtractionReport            `json:"extraction_report"`
}

// Extractor runs body-derived metadata extraction over a playbook.
type Extractor struct {
	now      time.Time
	warnings []IssueRecord
	errors   []IssueRecord
}

// NewExtractor creates an extractor; now anchors extraction timestamps.
func NewExtractor(now time.Time) *Extractor {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return &Extractor{now: now}
}

// SkippedSkillFiles returns the names of skill files excluded from the
// last ExtractAll run.
func (e *Extractor) skillFilter(cmds []*playbook.Command) (kept []*playbook.Command, skipped []string) {
	for _, cmd := range cmds {
		if parser.IsSkillFile(cmd.Content) {
			skipped = append(skipped, cmd.Name)
			continue
		}
		kept = append(kept, cmd)
	}
	sort.Strings(skipped)
	return kept, skipped
}

// ExtractAll extracts metadata from every command, validates the results,
// and assembles the complete structure. Skill files (AI prompt templates)
// are excluded; their names are returned for reporting.
func (e *Extractor) ExtractAll(cmds []*playbook.Command) (*CompleteMetadata, []string) {
	cmds, skipped := e.skillFilter(cmds)

	valid := make(map[string]struct{}, len(cmds))
	for _, cmd := range cmds {
		valid[cmd.Name] = struct{}{}
	}

	commands := make(map[string]*CommandMetadata, len(cmds))
	for _, cmd := range cmds {
		commands[cmd.Name] = e.ExtractCommand(cmd)
	}

	// Sorted walk keeps the report's warning and error order stable.
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		e.validate(name, commands[name], valid)
	}

	return e.assemble(commands), skipped
}

// ExtractCommand derives metadata for a single command. Extraction reads
// the body below any front-matter so the two never contaminate each other.
func (e *Extractor) ExtractCommand(cmd *playbook.Command) *CommandMetadata {
	content := cmd.Body

	meta := &CommandMetadata{
		Command:         cmd.Name,
		Category:        cmd.Category,
		Title:           parser.ExtractTitle(content),
		Purpose:         parser.ExtractPurpose(content),
		Tier:            parser.ExtractTiers(content),
		RelatedCommands: parser.ExtractCommandRefs(content),
		NextSteps:       parser.ExtractSectionRefs(content, "Next Steps", "Then", "Workflow", "After"),
		Prerequisites:   parser.ExtractSectionRefs(content, "Prerequisites", "Before", "Pre-Start"),
		Frequency:       parser.ExtractFrequency(content),
		DecisionContext: extractDecisionContext(content),
		Sections:        extractSectionSlugs(content),
		HasExamples:     parser.HasCodeFence(content),
		HasChecklist:    parser.HasChecklist(content),
		ExtractionMetadata: ExtractionMetadata{
			SourceFile:       cmd.RelPath,
			ExtractionDate:   e.now.Format(time.RFC3339),
			ExtractorVersion: ExtractorVersion,
		},
	}
	if meta.RelatedCommands == nil {
		meta.RelatedCommands = []string{}
	}
	if meta.Sections == nil {
		meta.Sections = []string{}
	}

	meta.ConfidenceScores = confidenceScores(meta, content)
	meta.AverageConfidence = averageConfidence(meta.ConfidenceScores)

	return meta
}

func extractDecisionContext(content string) map[string]string {
	context := map[string]string{}

	for _, rule := range parser.ExtractDecisionRules(content) {
		context[rule.Condition] = rule.Command
	}

	// "Use when:" conditionals inside the When to Use section.
	if section := whenToUseSection(content); section != "" {
		for _, match := range useWhenPattern.FindAllStringSubmatch(section, -1) {
			key := "use_when_" + strconv.Itoa(len(context))
			context[key] = strings.TrimSpace(match[1])
		}
	}

	if len(context) == 0 {
		return nil
	}
	return context
}

var whenToUsePattern = regexp.MustCompile(`(?is)##\s+When to Use\s*\n(.*?)(?:##|\z)`)

func whenToUseSection(content string) string {
	if match := whenToUsePattern.FindStringSubmatch(content); match != nil {
		return match[1]
	}
	return ""
}

func extractSectionSlugs(content string) []string {
	var out []string
	for _, h := range parser.ExtractHeadings(content, 1) {
		if h.Level == 2 {
			out = append(out, slugs.SectionSlug(h.Text))
		}
	}
	return out
}

func confidenceScores(meta *CommandMetadata, content string) map[string]float64 {
	scores := map[string]float64{}

	scores["command"] = boolScore(meta.Command != "", 1.0)
	scores["title"] = boolScore(meta.Title != "", 1.0)
	scores["category"] = boolScore(meta.Category != "", 1.0)
	scores["purpose"] = boolScore(meta.Purpose != "", confidencePurpose)

	switch {
	case len(meta.Tier) == 0:
		scores["tier"] = 0.0
	case strings.Contains(content, "Tier:"):
		scores["tier"] = confidenceTierExplicit
	case strings.Contains(content, "##"):
		scores["tier"] = confidenceTierTable
	default:
		scores["tier"] = confidenceTierKeyword
	}

	scores["related_commands"] = boolScore(len(meta.RelatedCommands) > 0, confidenceRelated)

	switch {
	case len(meta.NextSteps) == 0:
		scores["next_steps"] = 0.0
	case strings.Contains(content, "Next Steps"):
		scores["next_steps"] = confidenceNextExplicit
	default:
		scores["next_steps"] = confidenceNextImplicit
	}

	scores["prerequisites"] = boolScore(len(meta.Prerequisites) > 0, confidencePrereqs)

	if meta.Frequency != "as-needed" {
		scores["frequency"] = confidenceFreqDetected
	} else {
		scores["frequency"] = confidenceFreqDefaulted
	}

	scores["decision_context"] = boolScore(len(meta.DecisionContext) > 0, confidenceDecision)

	scores["sections"] = boolScore(len(meta.Sections) > 0, 1.0)
	scores["has_examples"] = 1.0
	scores["has_checklist"] = 1.0

	return scores
}

func averageConfidence(scores map[string]float64) float64 {
	var sum float64
	var n int
	for field, score := range scores {
		if _, optional := optionalFields[field]; optional && score == 0 {
			continue
		}
		sum += score
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func (e *Extractor) validate(command string, meta *CommandMetadata, valid map[string]struct{}) {
	for _, field := range []struct {
		name  string
		empty bool
	}{
		{"command", meta.Command == ""},
		{"title", meta.Title == ""},
		{"category", meta.Category == ""},
		{"purpose", meta.Purpose == ""},
	} {
		if field.empty {
			e.errors = append(e.errors, IssueRecord{
				Command: command, Field: field.name,
				Issue: "Required field missing", Severity: "error",
			})
		}
	}

	checkRefs := func(field string, refs []string, allowSelf bool) {
		for _, ref := range refs {
			name := strings.TrimPrefix(ref, "/")
			if _, ok := valid[name]; ok {
				continue
			}
			if allowSelf && name == command {
				continue
			}
			e.warnings = append(e.warnings, IssueRecord{
				Command: command, Field: field,
				Issue:    "Referenced command " + ref + " not found",
				Severity: "warning",
			})
		}
	}
	checkRefs("related_commands", meta.RelatedCommands, true)
	checkRefs("next_steps", meta.NextSteps, false)

	for field, score := range meta.ConfidenceScores {
		switch {
		case (field == "command" || field == "title" || field == "category") && score < 1.0:
			e.errors = append(e.errors, IssueRecord{
				Command: command, Field: field,
				Issue:    "Critical field has low confidence",
				Severity: "error",
			})
		case score > 0 && score < 0.70:
			e.warnings = append(e.warnings, IssueRecord{
				Command: command, Field: field,
				Issue:    "Low confidence score",
				Severity: "warning",
			})
		}
	}
}

func (e *Extractor) assemble(commands map[string]*CommandMetadata) *CompleteMetadata {
	categories := map[string]*CategoryGroup{}
	var confidenceSum float64
	success := 0

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		meta := commands[name]
		group := categories[meta.Category]
		if group == nil {
			group = &CategoryGroup{}
			categories[meta.Category] = group
		}
		group.Count++
		group.Commands = append(group.Commands, name)

		confidenceSum += meta.AverageConfidence
		if meta.Command != "" {
			success++
		}
	}

	avg := 0.0
	if len(commands) > 0 {
		avg = round4(confidenceSum / float64(len(commands)))
	}

	warnings := e.warnings
	if warnings == nil {
		warnings = []IssueRecord{}
	}
	errors := e.errors
	if errors == nil {
		errors = []IssueRecord{}
	}

	return &CompleteMetadata{
		MetadataVersion: "1.0",
		ExtractionDate:  e.now.Format(time.RFC3339),
		TotalCommands:   len(commands),
		Commands:        commands,
		Categories:      categories,
		ExtractionReport: ExtractionReport{
			TotalCommands:     len(commands),
			ExtractionSuccess: success,
			AverageConfidence: avg,
			Warnings:          warnings,
			Errors:            errors,
		},
	}
}

func boolScore(present bool, score float64) float64 {
	if present {
		return score
	}
	return 0.0
}

func round4(f float64) float64 {
	return float64(int64(f*10000+0.5)) / 10000
}
