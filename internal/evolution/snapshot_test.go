package evolution

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

// fakeSnapshotGit records git operations without touching a real repo.
type fakeSnapshotGit struct {
	head    string
	branch  string
	clean   bool
	tags    map[string]string
	resets  []string
	commits []string
	tagErr  error
}

func newFakeSnapshotGit() *fakeSnapshotGit {
	return &fakeSnapshotGit{
		head:   "abc123def456abc123def456abc123def456abcd",
		branch: "main",
		clean:  true,
		tags:   map[string]string{},
	}
}

func (f *fakeSnapshotGit) Head(ctx context.Context) string   { return f.head }
func (f *fakeSnapshotGit) Branch(ctx context.Context) string { return f.branch }

func (f *fakeSnapshotGit) IsClean(ctx context.Context) (bool, error) { return f.clean, nil }

func (f *fakeSnapshotGit) CreateTag(ctx context.Context, name, message string) error {
	if f.tagErr != nil {
		return f.tagErr
	}
	f.tags[name] = message
	return nil
}

func (f *fakeSnapshotGit) DeleteTag(ctx context.Context, name string) error {
	delete(f.tags, name)
	return nil
}

func (f *fakeSnapshotGit) ResetHard(ctx context.Context, ref string) error {
	f.resets = append(f.resets, ref)
	return nil
}

func (f *fakeSnapshotGit) EmptyCommit(ctx context.Context, message string) error {
	f.commits = append(f.commits, message)
	return nil
}

func openTestSnapshots(t *testing.T, git SnapshotGit) *Snapshots {
	t.Helper()
	s, err := OpenSnapshots(t.TempDir(), git)
	if err != nil {
		t.Fatalf("OpenSnapshots() error = %v", err)
	}
	return s
}

func TestSnapshotCreate(t *testing.T) {
	git := newFakeSnapshotGit()
	s := openTestSnapshots(t, git)
	s.now = fixedNow

	id, err := s.Create(context.Background(), "Before Q3 evolution")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if want := "evolution-20260829-120000"; id != want {
		t.Errorf("id = %q, want %q", id, want)
	}
	if msg := git.tags[id]; msg != "Evolution snapshot: Before Q3 evolution" {
		t.Errorf("tag message = %q", msg)
	}

	meta, ok := s.Get(id)
	if !ok {
		t.Fatal("Get() not found after Create()")
	}
	if meta.Commit != git.head || meta.Branch != "main" || meta.Status != SnapshotActive {
		t.Errorf("meta = %+v", meta)
	}
}

func TestSnapshotCreateOutsideRepo(t *testing.T) {
	git := newFakeSnapshotGit()
	git.head = ""
	s := openTestSnapshots(t, git)

	if _, err := s.Create(context.Background(), "nope"); err == nil {
		t.Fatal("Create() outside repo succeeded, want error")
	}
}

func TestSnapshotRollback(t *testing.T) {
	git := newFakeSnapshotGit()
	s := openTestSnapshots(t, git)
	s.now = fixedNow

	id, err := s.Create(context.Background(), "baseline")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("dirty tree refuses", func(t *testing.T) {
		git.clean = false
		err := s.Rollback(context.Background(), id)
		if err == nil || !strings.Contains(err.Error(), "dirty") {
			t.Fatalf("Rollback() error = %v, want dirty-tree error", err)
		}
	})

	t.Run("clean tree resets and marks used", func(t *testing.T) {
		git.clean = true
		if err := s.Rollback(context.Background(), id); err != nil {
			t.Fatalf("Rollback() error = %v", err)
		}
		if len(git.resets) != 1 || git.resets[0] != git.head {
			t.Errorf("resets = %v", git.resets)
		}
		if len(git.commits) != 1 || !strings.Contains(git.commits[0], id) {
			t.Errorf("marker commits = %v", git.commits)
		}
		meta, _ := s.Get(id)
		if meta.Status != SnapshotUsed {
			t.Errorf("Status = %q, want %q", meta.Status, SnapshotUsed)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		if err := s.Rollback(context.Background(), "evolution-19990101-000000"); err == nil {
			t.Error("Rollback() with unknown id succeeded, want error")
		}
	})
}

func TestSnapshotCleanup(t *testing.T) {
	git := newFakeSnapshotGit()
	s := openTestSnapshots(t, git)

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		stamp := base.Add(time.Duration(i) * time.Hour)
		s.now = func() time.Time { return stamp }
		if _, err := s.Create(context.Background(), fmt.Sprintf("snap %d", i)); err != nil {
			t.Fatal(err)
		}
	}

	deleted, err := s.Cleanup(context.Background(), 2)
	if err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if len(deleted) != 3 {
		t.Fatalf("len(deleted) = %d, want 3", len(deleted))
	}
	if got := len(s.List()); got != 2 {
		t.Errorf("remaining snapshots = %d, want 2", got)
	}
	for _, id := range deleted {
		if _, ok := git.tags[id]; ok {
			t.Errorf("tag %s still exists after Cleanup()", id)
		}
	}
	// The two newest survive.
	for _, id := range s.List() {
		if !strings.HasSuffix(id, "120000") && !strings.HasSuffix(id, "130000") {
			t.Errorf("unexpected survivor %s", id)
		}
	}
}
