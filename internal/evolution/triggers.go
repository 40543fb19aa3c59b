package evolution

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pbk-dev/pbk/internal/atomicfile"
	"github.com/pbk-dev/pbk/internal/parser"
	"github.com/pbk-dev/pbk/internal/playbook"
)

// TriggersReportFile is the markdown report path, relative to the
// playbook root.
const TriggersReportFile = "todos/evolution-triggers.md"

// Trigger detection thresholds.
const (
	// CalendarThresholdDays is the evolution cadence.
	CalendarThresholdDays = 90

	// StalenessThresholdDays is the last_reviewed age that marks a
	// command stale for trigger purposes.
	StalenessThresholdDays = 180

	// StalenessRatio is the stale-command fraction that fires the
	// staleness trigger.
	StalenessRatio = 0.25
)

var claudeVersionPattern = regexp.MustCompile(`Claude (\d+\.\d+)`)

// StaleCommand is one command with an expired last_reviewed date.
type StaleCommand struct {
	Command      string `json:"command"`
	LastReviewed string `json:"last_reviewed"`
	DaysStale    int    `json:"days_stale"`
}

// Trigger is one detected evolution signal. This is reporting only; acting
// on a trigger always needs human approval.
type Trigger struct {
	Type           string         `json:"type"`
	Severity       string         `json:"severity"`
	Message        string         `json:"message"`
	Recommendation string         `json:"recommendation,omitempty"`
	DaysSinceLast  int            `json:"days_since_last,omitempty"`
	StaleCount     int            `json:"stale_count,omitempty"`
	TotalCommands  int            `json:"total_commands,omitempty"`
	NewVersion     string         `json:"new_version,omitempty"`
	FeedbackItems  int            `json:"feedback_items,omitempty"`
	StaleCommands  []StaleCommand `json:"stale_commands,omitempty"`
}

// Detector runs all trigger checks against one playbook root.
type Detector struct {
	root string
	now  time.Time
}

// NewDetector creates a detector; now anchors all age math.
func NewDetector(root string, now time.Time) *Detector {
	if now.IsZero() {
		now = time.Now()
	}
	return &Detector{root: root, now: now}
}

// Detect runs every check and returns the fired triggers.
func (d *Detector) Detect(cmds []*playbook.Command) []Trigger {
	var triggers []Trigger

	if t := d.checkCalendar(); t != nil {
		triggers = append(triggers, *t)
	}
	if t := d.checkStaleness(cmds); t != nil {
		triggers = append(triggers, *t)
	}
	if t := d.checkVersionUpgrade(); t != nil {
		triggers = append(triggers, *t)
	}
	if t := d.checkFeedback(); t != nil {
		triggers = append(triggers, *t)
	}

	return triggers
}

// checkCalendar fires when the last evolution cycle is older than the
// cadence threshold.
func (d *Detector) checkCalendar() *Trigger {
	log, err := OpenLog(filepath.Join(d.root, AuditFile))
	if err != nil || len(log.Cycles()) == 0 {
		return &Trigger{
			Type:     "first_evolution",
			Severity: "info",
			Message:  "No evolution cycles recorded yet. This is the first!",
		}
	}

	cycles := log.Cycles()
	last := cycles[len(cycles)-1]
	started, err := time.Parse(time.RFC3339, last.StartedAt)
	if err != nil {
		return nil
	}

	days := int(d.now.Sub(started).Hours() / 24)
	if days < CalendarThresholdDays {
		return nil
	}

	return &Trigger{
		Type:          "calendar_trigger",
		Severity:      "high",
		DaysSinceLast: days,
		Message: fmt.Sprintf("It's been %d days since last evolution (threshold: %d days)",
			days, CalendarThresholdDays),
		Recommendation: fmt.Sprintf("Schedule evolution now (last was %s)", last.Cycle),
	}
}

// checkStaleness fires when more than a quarter of commands have
// last_reviewed dates older than the staleness threshold.
func (d *Detector) checkStaleness(cmds []*playbook.Command) *Trigger {
	cutoff := d.now.AddDate(0, 0, -StalenessThresholdDays)

	var stale []StaleCommand
	for _, cmd := range cmds {
		if cmd.Frontmatter == nil {
			continue
		}
		reviewed := cmd.Frontmatter.String("last_reviewed")
		if reviewed == "" {
			continue
		}
		date, err := time.Parse(parser.DateLayout, reviewed)
		if err != nil {
			continue
		}
		if !date.After(cutoff) {
			stale = append(stale, StaleCommand{
				Command:      cmd.Name,
				LastReviewed: reviewed,
				DaysStale:    int(d.now.Sub(date).Hours() / 24),
			})
		}
	}

	if len(cmds) == 0 || float64(len(stale)) <= float64(len(cmds))*StalenessRatio {
		return nil
	}

	sample := stale
	if len(sample) > 10 {
		sample = sample[:10]
	}

	return &Trigger{
		Type:          "staleness_trigger",
		Severity:      "medium",
		StaleCount:    len(stale),
		TotalCommands: len(cmds),
		Message: fmt.Sprintf("%d commands have stale reviews (>%d days old)",
			len(stale), StalenessThresholdDays),
		Recommendation: fmt.Sprintf("Evolution cycle would update %d commands", len(stale)),
		StaleCommands:  sample,
	}
}

// checkVersionUpgrade fires when CHANGELOG.md shows a Claude version bump
// between its two most recent mentions.
func (d *Detector) checkVersionUpgrade() *Trigger {
	content, err := os.ReadFile(filepath.Join(d.root, "CHANGELOG.md"))
	if err != nil {
		return nil
	}

	matches := claudeVersionPattern.FindAllStringSubmatch(string(content), -1)
	if len(matches) < 2 {
		return nil
	}

	latest := matches[0][1]
	if latest == matches[1][1] {
		return nil
	}

	return &Trigger{
		Type:           "version_upgrade",
		Severity:       "high",
		NewVersion:     latest,
		Message:        fmt.Sprintf("Claude version upgraded to %s", latest),
		Recommendation: "Run evolution to optimize for new capabilities",
	}
}

// checkFeedback fires when non-empty feedback files sit under todos/.
func (d *Detector) checkFeedback() *Trigger {
	matches, err := filepath.Glob(filepath.Join(d.root, "todos", "*feedback*"))
	if err != nil || len(matches) == 0 {
		return nil
	}

	count := 0
	for _, path := range matches {
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() && info.Size() > 0 {
			count++
		}
	}
	if count == 0 {
		return nil
	}

	return &Trigger{
		Type:           "user_feedback",
		Severity:       "medium",
		FeedbackItems:  count,
		Message:        fmt.Sprintf("Found %d items of user feedback", count),
		Recommendation: "Review feedback in evolution cycle",
	}
}

// WriteTriggersReport renders the markdown trigger report to path.
func WriteTriggersReport(path string, triggers []Trigger, now time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("# Evolution Triggers Report\n\n")
	fmt.Fprintf(&b, "**Generated:** %s\n\n", now.Format(time.RFC3339))

	if len(triggers) == 0 {
		b.WriteString("No evolution triggers detected.\n")
		return atomicfile.WriteFile(path, []byte(b.String()), 0644)
	}

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "Found %d trigger(s) for evolution:\n\n", len(triggers))

	for _, t := range triggers {
		fmt.Fprintf(&b, "### %s (%s)\n\n%s\n\n", t.Type, t.Severity, t.Message)
		if t.Recommendation != "" {
			fmt.Fprintf(&b, "**Recommendation:** %s\n\n", t.Recommendation)
		}
		if len(t.StaleCommands) > 0 {
			b.WriteString("**Stale commands (sample):**\n\n")
			for _, cmd := range t.StaleCommands {
				fmt.Fprintf(&b, "- `%s`: last reviewed %d days ago\n", cmd.Command, cmd.DaysStale)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("## Recommendation\n\n")
	b.WriteString("Consider scheduling an evolution cycle to address these triggers.\n\n")
	b.WriteString("Run: `pbk snapshot create \"Before evolution\"` first.\n")

	return atomicfile.WriteFile(path, []byte(b.String()), 0644)
}
