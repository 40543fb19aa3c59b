package evolution

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pbk-dev/pbk/internal/atomicfile"
)

// SnapshotsDir holds snapshot metadata, relative to the playbook root.
const SnapshotsDir = "todos/evolution-snapshots"

// SnapshotsFile is the sidecar metadata file inside SnapshotsDir.
const SnapshotsFile = "snapshots.json"

// Snapshot statuses.
const (
	SnapshotActive = "active"
	SnapshotUsed   = "used"
)

// SnapshotGit is the git surface snapshots need. *gitexec.Repo satisfies it.
type SnapshotGit interface {
	Head(ctx context.Context) string
	Branch(ctx context.Context) string
	IsClean(ctx context.Context) (bool, error)
	CreateTag(ctx context.Context, name, message string) error
	DeleteTag(ctx context.Context, name string) error
	ResetHard(ctx context.Context, ref string) error
	EmptyCommit(ctx context.Context, message string) error
}

// SnapshotMeta is the sidecar record for one git-tag snapshot.
type SnapshotMeta struct {
	CreatedAt string `json:"created_at"`
	Message   string `json:"message"`
	Commit    string `json:"commit"`
	Branch    string `json:"branch"`
	Status    string `json:"status"`
}

// Snapshots manages evolution snapshots: an annotated git tag per snapshot
// plus a JSON sidecar with metadata.
type Snapshots struct {
	dir  string
	git  SnapshotGit
	data map[string]*SnapshotMeta
	now  func() time.Time
}

// OpenSnapshots loads the snapshot store under dir.
func OpenSnapshots(dir string, git SnapshotGit) (*Snapshots, error) {
	s := &Snapshots{
		dir:  dir,
		git:  git,
		data: map[string]*SnapshotMeta{},
		now:  time.Now,
	}

	raw, err := os.ReadFile(filepath.Join(dir, SnapshotsFile))
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", SnapshotsFile, err)
	}
	if s.data == nil {
		s.data = map[string]*SnapshotMeta{}
	}
	return s, nil
}

func (s *Snapshots) save() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(filepath.Join(s.dir, SnapshotsFile), data, 0644)
}

// Get returns metadata for one snapshot id.
func (s *Snapshots) Get(id string) (*SnapshotMeta, bool) {
	meta, ok := s.data[id]
	return meta, ok
}

// List returns snapshot ids newest-first (ids embed the creation time).
func (s *Snapshots) List() []string {
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids
}

// Create tags HEAD as a new snapshot and records its metadata.
// Returns the snapshot id.
func (s *Snapshots) Create(ctx context.Context, message string) (string, error) {
	commit := s.git.Head(ctx)
	if commit == "" {
		return "", fmt.Errorf("not in a git repository")
	}

	id := "evolution-" + s.now().Format("20060102-150405")
	if err := s.git.CreateTag(ctx, id, "Evolution snapshot: "+message); err != nil {
		return "", fmt.Errorf("failed to create snapshot tag: %w", err)
	}

	s.data[id] = &SnapshotMeta{
		CreatedAt: s.now().Format(time.RFC3339),
		Message:   message,
		Commit:    commit,
		Branch:    s.git.Branch(ctx),
		Status:    SnapshotActive,
	}
	return id, s.save()
}

// Rollback resets the work tree to the snapshot's commit and records a
// rollback marker commit. The work tree must be clean; confirmation is
// the caller's responsibility.
func (s *Snapshots) Rollback(ctx context.Context, id string) error {
	meta, ok := s.data[id]
	if !ok {
		return fmt.Errorf("snapshot not found: %s", id)
	}

	clean, err := s.git.IsClean(ctx)
	if err != nil {
		return err
	}
	if !clean {
		return fmt.Errorf("working tree is dirty, commit or stash changes first")
	}

	if err := s.git.ResetHard(ctx, meta.Commit); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	marker := fmt.Sprintf("rollback: restored from snapshot %s\n\nOriginal message: %s", id, meta.Message)
	if err := s.git.EmptyCommit(ctx, marker); err != nil {
		return fmt.Errorf("failed to create rollback commit: %w", err)
	}

	meta.Status = SnapshotUsed
	return s.save()
}

// Cleanup deletes all but the N most recent snapshots, removing their git
// tags. Returns the deleted ids.
func (s *Snapshots) Cleanup(ctx context.Context, keep int) ([]string, error) {
	if len(s.data) <= keep {
		return nil, nil
	}

	type entry struct {
		id   string
		meta *SnapshotMeta
	}
	entries := make([]entry, 0, len(s.data))
	for id, meta := range s.data {
		entries = append(entries, entry{id, meta})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].meta.CreatedAt > entries[j].meta.CreatedAt
	})

	var deleted []string
	for _, e := range entries[keep:] {
		if err := s.git.DeleteTag(ctx, e.id); err != nil {
			return deleted, fmt.Errorf("failed to delete tag %s: %w", e.id, err)
		}
		delete(s.data, e.id)
		deleted = append(deleted, e.id)
	}

	return deleted, s.save()
}
