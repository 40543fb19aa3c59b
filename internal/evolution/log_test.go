package evolution

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
}

func openTestLog(t *testing.T) *Log {
	t.Helper()
	log, err := OpenLog(filepath.Join(t.TempDir(), AuditFile))
	if err != nil {
		t.Fatalf("OpenLog() error = %v", err)
	}
	log.now = fixedNow
	return log
}

func TestLogRecordCycle(t *testing.T) {
	log := openTestLog(t)

	cycle, err := log.RecordCycle("2026-Q3", "calendar", "Claude 5.0 released")
	if err != nil {
		t.Fatalf("RecordCycle() error = %v", err)
	}
	if cycle.Status != StatusInProgress {
		t.Errorf("Status = %q, want %q", cycle.Status, StatusInProgress)
	}
	if cycle.StartedAt == "" {
		t.Error("StartedAt is empty")
	}
}

func TestLogRecordChange(t *testing.T) {
	log := openTestLog(t)

	if err := log.RecordChange("2026-Q3", "pb-review", "model_hint", "opus", "sonnet", "faster"); err == nil {
		t.Fatal("RecordChange() without cycle succeeded, want error")
	}

	if _, err := log.RecordCycle("2026-Q3", "calendar", ""); err != nil {
		t.Fatalf("RecordCycle() error = %v", err)
	}
	if err := log.RecordChange("2026-Q3", "pb-review", "model_hint", "opus", "sonnet", "faster"); err != nil {
		t.Fatalf("RecordChange() error = %v", err)
	}

	cycles := log.Cycles()
	if got := len(cycles[0].Changes); got != 1 {
		t.Fatalf("len(Changes) = %d, want 1", got)
	}
	change := cycles[0].Changes[0]
	if change.Command != "pb-review" || change.Field != "model_hint" {
		t.Errorf("Change = %+v", change)
	}
}

func TestLogCompleteAndRevert(t *testing.T) {
	log := openTestLog(t)
	if _, err := log.RecordCycle("2026-Q3", "calendar", ""); err != nil {
		t.Fatalf("RecordCycle() error = %v", err)
	}

	if err := log.Complete("2026-Q3", 42); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	cycle := log.Cycles()[0]
	if cycle.Status != StatusCompleted {
		t.Errorf("Status = %q, want %q", cycle.Status, StatusCompleted)
	}
	if cycle.PRNumber != 42 {
		t.Errorf("PRNumber = %d, want 42", cycle.PRNumber)
	}

	if err := log.Revert("2026-Q3", "regression in review flow"); err != nil {
		t.Fatalf("Revert() error = %v", err)
	}
	cycle = log.Cycles()[0]
	if cycle.Status != StatusReverted {
		t.Errorf("Status = %q, want %q", cycle.Status, StatusReverted)
	}
	if cycle.RevertReason != "regression in review flow" {
		t.Errorf("RevertReason = %q", cycle.RevertReason)
	}
}

func TestLogPersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), AuditFile)
	log, err := OpenLog(path)
	if err != nil {
		t.Fatalf("OpenLog() error = %v", err)
	}
	log.now = fixedNow
	if _, err := log.RecordCycle("2026-Q3", "staleness", ""); err != nil {
		t.Fatalf("RecordCycle() error = %v", err)
	}

	reopened, err := OpenLog(path)
	if err != nil {
		t.Fatalf("reopen OpenLog() error = %v", err)
	}
	if got := len(reopened.Cycles()); got != 1 {
		t.Fatalf("len(Cycles) after reopen = %d, want 1", got)
	}
	if reopened.Cycles()[0].Trigger != "staleness" {
		t.Errorf("Trigger = %q, want staleness", reopened.Cycles()[0].Trigger)
	}
}

func TestAnalyzePatterns(t *testing.T) {
	log := openTestLog(t)
	if _, err := log.RecordCycle("2026-Q2", "calendar", ""); err != nil {
		t.Fatal(err)
	}
	log.RecordChange("2026-Q2", "pb-review", "model_hint", "opus", "sonnet", "")
	log.RecordChange("2026-Q2", "pb-plan", "model_hint", "opus", "sonnet", "")
	log.RecordChange("2026-Q2", "pb-plan", "difficulty", "advanced", "intermediate", "")
	log.Complete("2026-Q2", 1)

	patterns := log.AnalyzePatterns()
	if len(patterns.FieldChanges) == 0 || patterns.FieldChanges[0].Field != "model_hint" {
		t.Fatalf("FieldChanges = %+v, want model_hint first", patterns.FieldChanges)
	}
	if patterns.FieldChanges[0].Count != 2 {
		t.Errorf("model_hint count = %d, want 2", patterns.FieldChanges[0].Count)
	}
	if patterns.Triggers["calendar"] != 1 {
		t.Errorf("Triggers[calendar] = %d, want 1", patterns.Triggers["calendar"])
	}
}

func TestExportTimeline(t *testing.T) {
	dir := t.TempDir()
	log, err := OpenLog(filepath.Join(dir, AuditFile))
	if err != nil {
		t.Fatal(err)
	}
	log.now = fixedNow
	if _, err := log.RecordCycle("2026-Q3", "calendar", ""); err != nil {
		t.Fatal(err)
	}
	log.RecordChange("2026-Q3", "pb-review", "model_hint", "opus", "sonnet", "")

	path := filepath.Join(dir, TimelineFile)
	if err := log.ExportTimeline(path); err != nil {
		t.Fatalf("ExportTimeline() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read timeline: %v", err)
	}
	var entries []TimelineEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("unmarshal timeline: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Changes != 1 {
		t.Errorf("Changes = %d, want 1", entries[0].Changes)
	}
}
