package evolution

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pbk-dev/pbk/internal/playbook"
	"github.com/pbk-dev/pbk/internal/testutil"
)

func triggerByType(triggers []Trigger, typ string) *Trigger {
	for i := range triggers {
		if triggers[i].Type == typ {
			return &triggers[i]
		}
	}
	return nil
}

func TestDetectFirstEvolution(t *testing.T) {
	pb := testutil.NewTestPlaybook(t).Build()
	d := NewDetector(pb.Path, fixedNow())

	triggers := d.Detect(nil)
	first := triggerByType(triggers, "first_evolution")
	if first == nil {
		t.Fatalf("no first_evolution trigger in %+v", triggers)
	}
	if first.Severity != "info" {
		t.Errorf("Severity = %q, want info", first.Severity)
	}
}

func TestDetectCalendarTrigger(t *testing.T) {
	pb := testutil.NewTestPlaybook(t).Build()

	log, err := OpenLog(filepath.Join(pb.Path, AuditFile))
	if err != nil {
		t.Fatal(err)
	}
	log.now = func() time.Time { return fixedNow().AddDate(0, 0, -120) }
	if _, err := log.RecordCycle("2026-Q1", "calendar", ""); err != nil {
		t.Fatal(err)
	}

	d := NewDetector(pb.Path, fixedNow())
	trigger := triggerByType(d.Detect(nil), "calendar_trigger")
	if trigger == nil {
		t.Fatal("calendar_trigger not fired after 120 days")
	}
	if trigger.DaysSinceLast != 120 {
		t.Errorf("DaysSinceLast = %d, want 120", trigger.DaysSinceLast)
	}
	if trigger.Severity != "high" {
		t.Errorf("Severity = %q, want high", trigger.Severity)
	}
}

func TestDetectCalendarRecentCycleQuiet(t *testing.T) {
	pb := testutil.NewTestPlaybook(t).Build()

	log, err := OpenLog(filepath.Join(pb.Path, AuditFile))
	if err != nil {
		t.Fatal(err)
	}
	log.now = func() time.Time { return fixedNow().AddDate(0, 0, -30) }
	if _, err := log.RecordCycle("2026-Q3", "calendar", ""); err != nil {
		t.Fatal(err)
	}

	d := NewDetector(pb.Path, fixedNow())
	if trigger := triggerByType(d.Detect(nil), "calendar_trigger"); trigger != nil {
		t.Errorf("calendar_trigger fired after only 30 days: %+v", trigger)
	}
}

func TestDetectStalenessTrigger(t *testing.T) {
	now := fixedNow()
	stale := now.AddDate(0, 0, -StalenessThresholdDays-30).Format("2006-01-02")
	fresh := now.AddDate(0, 0, -10).Format("2006-01-02")

	pb := testutil.NewTestPlaybook(t)
	for i := 0; i < 3; i++ {
		name := fmt.Sprintf("pb-old-%d", i)
		pb.WithCommand("development", name, testutil.CommandFile(map[string]string{
			"name":          name,
			"last_reviewed": stale,
		}, "# Old"))
	}
	pb.WithCommand("development", "pb-fresh", testutil.CommandFile(map[string]string{
		"name":          "pb-fresh",
		"last_reviewed": fresh,
	}, "# Fresh"))
	pb.Build()

	cmds, _, err := playbook.CollectCommands(pb.Path)
	if err != nil {
		t.Fatal(err)
	}

	d := NewDetector(pb.Path, now)
	trigger := triggerByType(d.Detect(cmds), "staleness_trigger")
	if trigger == nil {
		t.Fatal("staleness_trigger not fired with 3 of 4 commands stale")
	}
	if trigger.StaleCount != 3 || trigger.TotalCommands != 4 {
		t.Errorf("StaleCount/TotalCommands = %d/%d, want 3/4", trigger.StaleCount, trigger.TotalCommands)
	}
	if len(trigger.StaleCommands) != 3 {
		t.Errorf("len(StaleCommands) = %d, want 3", len(trigger.StaleCommands))
	}
}

func TestDetectVersionUpgrade(t *testing.T) {
	t.Run("version bump fires", func(t *testing.T) {
		pb := testutil.NewTestPlaybook(t).
			WithFile("CHANGELOG.md", "# Changelog\n\n## Claude 5.0 support\n\nPreviously Claude 4.5.\n").
			Build()

		d := NewDetector(pb.Path, fixedNow())
		trigger := triggerByType(d.Detect(nil), "version_upgrade")
		if trigger == nil {
			t.Fatal("version_upgrade not fired")
		}
		if trigger.NewVersion != "5.0" {
			t.Errorf("NewVersion = %q, want 5.0", trigger.NewVersion)
		}
	})

	t.Run("same version quiet", func(t *testing.T) {
		pb := testutil.NewTestPlaybook(t).
			WithFile("CHANGELOG.md", "Claude 4.5 then Claude 4.5 again.\n").
			Build()

		d := NewDetector(pb.Path, fixedNow())
		if trigger := triggerByType(d.Detect(nil), "version_upgrade"); trigger != nil {
			t.Errorf("version_upgrade fired without a bump: %+v", trigger)
		}
	})
}

func TestDetectUserFeedback(t *testing.T) {
	pb := testutil.NewTestPlaybook(t).
		WithFile("todos/user-feedback-aug.md", "pb-review is too slow\n").
		WithFile("todos/feedback-empty.md", "").
		Build()

	d := NewDetector(pb.Path, fixedNow())
	trigger := triggerByType(d.Detect(nil), "user_feedback")
	if trigger == nil {
		t.Fatal("user_feedback not fired")
	}
	if trigger.FeedbackItems != 1 {
		t.Errorf("FeedbackItems = %d, want 1 (empty file excluded)", trigger.FeedbackItems)
	}
}

func TestWriteTriggersReport(t *testing.T) {
	pb := testutil.NewTestPlaybook(t).Build()
	path := filepath.Join(pb.Path, TriggersReportFile)

	triggers := []Trigger{
		{
			Type:           "calendar_trigger",
			Severity:       "high",
			Message:        "It's been 120 days since last evolution (threshold: 90 days)",
			Recommendation: "Schedule evolution now (last was 2026-Q1)",
		},
		{
			Type:       "staleness_trigger",
			Severity:   "medium",
			Message:    "5 commands have stale reviews (>180 days old)",
			StaleCount: 5,
			StaleCommands: []StaleCommand{
				{Command: "pb-old", LastReviewed: "2025-01-01", DaysStale: 605},
			},
		},
	}

	if err := WriteTriggersReport(path, triggers, fixedNow()); err != nil {
		t.Fatalf("WriteTriggersReport() error = %v", err)
	}

	content := pb.ReadFile(TriggersReportFile)
	for _, want := range []string{
		"# Evolution Triggers Report",
		"## Summary",
		"### calendar_trigger (high)",
		"**Recommendation:** Schedule evolution now",
		"`pb-old`: last reviewed 605 days ago",
		"## Recommendation",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestWriteTriggersReportEmpty(t *testing.T) {
	pb := testutil.NewTestPlaybook(t).Build()
	path := filepath.Join(pb.Path, TriggersReportFile)

	if err := WriteTriggersReport(path, nil, fixedNow()); err != nil {
		t.Fatalf("WriteTriggersReport() error = %v", err)
	}
	if !strings.Contains(pb.ReadFile(TriggersReportFile), "No evolution triggers detected") {
		t.Error("empty report missing no-triggers message")
	}
}
