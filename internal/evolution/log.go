// Package evolution manages the quarterly evolution ritual: the audit
// trail, git-tag snapshots, trigger detection, and metadata diffs.
package evolution

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pbk-dev/pbk/internal/atomicfile"
)

// AuditFile is the audit trail path relative to the playbook root.
const AuditFile = "todos/evolution-audit.json"

// TimelineFile is the default export path for the timeline.
const TimelineFile = "todos/evolution-timeline.json"

// Cycle statuses.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusReverted   = "reverted"
)

// Change is one recorded metadata change inside a cycle.
type Change struct {
	Command    string `json:"command"`
	Field      string `json:"field"`
	Before     string `json:"before"`
	After      string `json:"after"`
	Rationale  string `json:"rationale"`
	RecordedAt string `json:"recorded_at"`
}

// Cycle is one evolution cycle in the audit trail.
type Cycle struct {
	Cycle             string   `json:"cycle"`
	StartedAt         string   `json:"started_at"`
	Trigger           string   `json:"trigger"`
	CapabilityChanges string   `json:"capability_changes"`
	Changes           []Change `json:"changes"`
	Status            string   `json:"status"`
	SnapshotID        string   `json:"snapshot_id,omitempty"`
	PRNumber          int      `json:"pr_number,omitempty"`
	CompletedAt       string   `json:"completed_at,omitempty"`
	RevertedAt        string   `json:"reverted_at,omitempty"`
	RevertReason      string   `json:"revert_reason,omitempty"`
}

// auditLog is the on-disk structure of evolution-audit.json.
type auditLog struct {
	Cycles  []*Cycle `json:"cycles"`
	Version string   `json:"version"`
}

// Log is the structured evolution audit trail.
type Log struct {
	path string
	data auditLog
	now  func() time.Time
}

// OpenLog loads (or initializes) the audit trail at path.
func OpenLog(path string) (*Log, error) {
	l := &Log{
		path: path,
		data: auditLog{Cycles: []*Cycle{}, Version: "1.0"},
		now:  time.Now,
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &l.data); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if l.data.Cycles == nil {
		l.data.Cycles = []*Cycle{}
	}
	if l.data.Version == "" {
		l.data.Version = "1.0"
	}
	return l, nil
}

func (l *Log) save() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(l.data, "", "  ")
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(l.path, data, 0644)
}

// Cycles returns all recorded cycles, oldest first.
func (l *Log) Cycles() []*Cycle {
	return l.data.Cycles
}

// findCycle returns the named cycle, or nil.
func (l *Log) findCycle(name string) *Cycle {
	for _, c := range l.data.Cycles {
		if c.Cycle == name {
			return c
		}
	}
	return nil
}

// RecordCycle starts a new evolution cycle. trigger is one of quarterly,
// version_upgrade, user_feedback, manual.
func (l *Log) RecordCycle(name, trigger, capabilityChanges string) (*Cycle, error) {
	cycle := &Cycle{
		Cycle:             name,
		StartedAt:         l.now().Format(time.RFC3339),
		Trigger:           trigger,
		CapabilityChanges: capabilityChanges,
		Changes:           []Change{},
		Status:            StatusInProgress,
	}
	l.data.Cycles = append(l.data.Cycles, cycle)
	return cycle, l.save()
}

// RecordChange appends a change to the named in-progress cycle.
func (l *Log) RecordChange(cycleName, command, field, before, after, rationale string) error {
	var target *Cycle
	for _, c := range l.data.Cycles {
		if c.Cycle == cycleName && c.Status == StatusInProgress {
			target = c
			break
		}
	}
	if target == nil {
		return fmt.Errorf("no active cycle: %s", cycleName)
	}

	target.Changes = append(target.Changes, Change{
		Command:    command,
		Field:      field,
		Before:     before,
		After:      after,
		Rationale:  rationale,
		RecordedAt: l.now().Format(time.RFC3339),
	})
	return l.save()
}

// SetSnapshot links a cycle to a snapshot id.
func (l *Log) SetSnapshot(cycleName, snapshotID string) error {
	cycle := l.findCycle(cycleName)
	if cycle == nil {
		return fmt.Errorf("cycle not found: %s", cycleName)
	}
	cycle.SnapshotID = snapshotID
	return l.save()
}

// Complete marks a cycle as completed, optionally linking a PR number.
func (l *Log) Complete(cycleName string, prNumber int) error {
	cycle := l.findCycle(cycleName)
	if cycle == nil {
		return fmt.Errorf("cycle not found: %s", cycleName)
	}
	cycle.Status = StatusCompleted
	cycle.CompletedAt = l.now().Format(time.RFC3339)
	if prNumber > 0 {
		cycle.PRNumber = prNumber
	}
	return l.save()
}

// Revert marks a cycle as reverted with a reason.
func (l *Log) Revert(cycleName, reason string) error {
	cycle := l.findCycle(cycleName)
	if cycle == nil {
		return fmt.Errorf("cycle not found: %s", cycleName)
	}
	cycle.Status = StatusReverted
	cycle.RevertedAt = l.now().Format(time.RFC3339)
	cycle.RevertReason = reason
	return l.save()
}

// FieldCount ranks one field by how many times it changed.
type FieldCount struct {
	Field string
	Count int
}

// Transition is one before→after pair with its occurrence count.
type Transition struct {
	Before string
	After  string
	Count  int
}

// Patterns aggregates the audit trail for pattern analysis.
type Patterns struct {
	// FieldChanges ranks fields by change count, descending.
	FieldChanges []FieldCount

	// Transitions maps each field to its most common before→after pairs.
	Transitions map[string][]Transition

	// Triggers counts cycles per trigger type.
	Triggers map[string]int
}

// AnalyzePatterns aggregates change patterns across all cycles.
func (l *Log) AnalyzePatterns() *Patterns {
	fieldChanges := map[string]int{}
	transitions := map[string]map[[2]string]int{}
	triggers := map[string]int{}

	for _, cycle := range l.data.Cycles {
		triggers[cycle.Trigger]++
		for _, change := range cycle.Changes {
			fieldChanges[change.Field]++
			if transitions[change.Field] == nil {
				transitions[change.Field] = map[[2]string]int{}
			}
			transitions[change.Field][[2]string{change.Before, change.After}]++
		}
	}

	p := &Patterns{
		Transitions: map[string][]Transition{},
		Triggers:    triggers,
	}

	for field, count := range fieldChanges {
		p.FieldChanges = append(p.FieldChanges, FieldCount{Field: field, Count: count})
	}
	sort.Slice(p.FieldChanges, func(i, j int) bool {
		if p.FieldChanges[i].Count != p.FieldChanges[j].Count {
			return p.FieldChanges[i].Count > p.FieldChanges[j].Count
		}
		return p.FieldChanges[i].Field < p.FieldChanges[j].Field
	})

	for field, pairs := range transitions {
		var list []Transition
		for pair, count := range pairs {
			list = append(list, Transition{Before: pair[0], After: pair[1], Count: count})
		}
		sort.Slice(list, func(i, j int) bool {
			if list[i].Count != list[j].Count {
				return list[i].Count > list[j].Count
			}
			return list[i].Before < list[j].Before
		})
		if len(list) > 3 {
			list = list[:3]
		}
		p.Transitions[field] = list
	}

	return p
}

// TimelineEntry is one cycle in the exported timeline.
type TimelineEntry struct {
	Cycle   string `json:"cycle"`
	Date    string `json:"date"`
	Changes int    `json:"changes"`
	Status  string `json:"status"`
}

// ExportTimeline writes the per-cycle timeline to path.
func (l *Log) ExportTimeline(path string) error {
	timeline := make([]TimelineEntry, 0, len(l.data.Cycles))
	for _, cycle := range l.data.Cycles {
		timeline = append(timeline, TimelineEntry{
			Cycle:   cycle.Cycle,
			Date:    cycle.StartedAt,
			Changes: len(cycle.Changes),
			Status:  cycle.Status,
		})
	}

	data, err := json.MarshalIndent(timeline, "", "  ")
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(path, data, 0644)
}
