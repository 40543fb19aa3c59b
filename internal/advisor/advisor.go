// Package advisor recommends the next playbook commands to run based on
// the current git state and the extracted command metadata.
package advisor

import (
	"context"
	"sort"
	"strings"

	"github.com/pbk-dev/pbk/internal/extract"
)

// Workflow phases derived from git state.
const (
	PhaseStart    = "START"
	PhaseDevelop  = "DEVELOP"
	PhaseFinalize = "FINALIZE"
	PhaseRelease  = "RELEASE"
)

// recentCommitWindow caps how far back commit counting looks.
const recentCommitWindow = 10

// GitSource is the git surface the advisor needs. *gitexec.Repo
// satisfies it.
type GitSource interface {
	Branch(ctx context.Context) string
	UnstagedFiles(ctx context.Context) []string
	StagedFiles(ctx context.Context) []string
	DiffFiles(ctx context.Context) []string
	RecentSubjects(ctx context.Context, n int) []string
}

// GitState is a snapshot of the working tree used for phase detection.
type GitState struct {
	Branch          string   `json:"branch"`
	ChangedFiles    []string `json:"changed_files"`
	UnstagedChanges bool     `json:"unstaged_changes"`
	StagedChanges   bool     `json:"staged_changes"`
	CommitCount     int      `json:"commit_count"`
	RecentCommits   []string `json:"recent_commits"`
	DiffFiles       []string `json:"diff_files"`
}

// Recommendation is one suggested command with its reasoning.
type Recommendation struct {
	Command    string  `json:"command"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
	Priority   int     `json:"priority"`
	Title      string  `json:"title,omitempty"`
	Time       string  `json:"time"`
}

// Analysis is the full advisor output.
type Analysis struct {
	GitState        GitState            `json:"git_state"`
	Phase           string              `json:"phase"`
	FileTypes       map[string][]string `json:"file_types"`
	Recommendations []Recommendation    `json:"recommendations"`
}

// Advisor generates ranked next-step recommendations.
type Advisor struct {
	git  GitSource
	meta *extract.CompleteMetadata
}

// New creates an advisor over the given git source and extracted metadata.
func New(git GitSource, meta *extract.CompleteMetadata) *Advisor {
	return &Advisor{git: git, meta: meta}
}

// Analyze inspects the git state, detects the workflow phase, and returns
// ranked recommendations.
func (a *Advisor) Analyze(ctx context.Context) *Analysis {
	state := a.collectGitState(ctx)
	phase := DetectPhase(state)
	fileTypes := ClassifyFiles(state.ChangedFiles)

	recs := a.recommend(phase, fileTypes)
	a.rank(recs)

	return &Analysis{
		GitState:        state,
		Phase:           phase,
		FileTypes:       fileTypes,
		Recommendations: recs,
	}
}

func (a *Advisor) collectGitState(ctx context.Context) GitState {
	branch := a.git.Branch(ctx)
	if branch == "" {
		branch = "main"
	}

	unstaged := a.git.UnstagedFiles(ctx)
	staged := a.git.StagedFiles(ctx)

	seen := map[string]struct{}{}
	var changed []string
	for _, path := range append(append([]string{}, unstaged...), staged...) {
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		changed = append(changed, path)
	}
	sort.Strings(changed)

	commits := a.git.RecentSubjects(ctx, recentCommitWindow)
	recent := commits
	if len(recent) > 5 {
		recent = recent[:5]
	}

	return GitState{
		Branch:          branch,
		ChangedFiles:    changed,
		UnstagedChanges: len(unstaged) > 0,
		StagedChanges:   len(staged) > 0,
		CommitCount:     len(commits),
		RecentCommits:   recent,
		DiffFiles:       a.git.DiffFiles(ctx),
	}
}

// DetectPhase maps a git state to a workflow phase.
func DetectPhase(state GitState) string {
	if state.Branch == "main" || state.Branch == "master" {
		return PhaseRelease
	}
	if state.CommitCount == 0 && !state.UnstagedChanges && !state.StagedChanges {
		return PhaseStart
	}
	if state.CommitCount > 0 && state.CommitCount < 5 &&
		(state.UnstagedChanges || state.StagedChanges || len(state.ChangedFiles) > 0) {
		return PhaseDevelop
	}
	if state.CommitCount >= 5 ||
		(!state.UnstagedChanges && !state.StagedChanges && state.CommitCount > 0) {
		return PhaseFinalize
	}
	return PhaseDevelop
}

var sourceExtensions = []string{".py", ".ts", ".tsx", ".js", ".jsx", ".go", ".rs"}

var configFiles = []string{
	"Dockerfile", "docker-compose.yml", "package.json",
	"pyproject.toml", "setup.py", "go.mod",
}

// ClassifyFiles groups changed paths into tests, docs, source, config and
// ci buckets. Empty buckets are dropped.
func ClassifyFiles(paths []string) map[string][]string {
	result := map[string][]string{}
	add := func(kind, path string) { result[kind] = append(result[kind], path) }

	for _, path := range paths {
		lower := strings.ToLower(path)
		switch {
		case strings.Contains(lower, "test") || strings.Contains(lower, "spec"):
			add("tests", path)
		case strings.Contains(lower, "docs/") || strings.Contains(lower, ".md"):
			add("docs", path)
		case strings.Contains(lower, ".github/workflows"):
			add("ci", path)
		case hasAnySuffix(path, sourceExtensions):
			add("source", path)
		case hasAnySuffix(path, configFiles):
			add("config", path)
		}
	}
	return result
}

func hasAnySuffix(path string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(path, s) {
			return true
		}
	}
	return false
}

func (a *Advisor) recommend(phase string, fileTypes map[string][]string) []Recommendation {
	var recs []Recommendation
	add := func(command, reason string, confidence float64) {
		recs = append(recs, Recommendation{Command: command, Reason: reason, Confidence: confidence})
	}

	switch phase {
	case PhaseStart:
		add("pb-start", "Beginning feature work on new branch", 0.95)
	case PhaseDevelop:
		add("pb-cycle", "Iterate on changes, get peer feedback", 0.90)
		add("pb-testing", "Verify test coverage matches code changes", 0.85)
	case PhaseFinalize:
		add("pb-commit", "Organize work into logical commits", 0.90)
		add("pb-pr", "Create pull request for integration", 0.90)
	case PhaseRelease:
		add("pb-release", "Prepare for production release", 0.90)
		add("pb-deployment", "Plan deployment strategy", 0.80)
	}

	if len(fileTypes["tests"]) > 0 {
		add("pb-testing", "Test files changed, verify coverage", 0.88)
	}
	if len(fileTypes["docs"]) > 0 {
		add("pb-documentation", "Documentation changed, ensure clarity", 0.75)
	}
	if len(fileTypes["ci"]) > 0 {
		add("pb-deployment", "CI/CD workflow modified", 0.70)
	}

	// Keep the highest-confidence entry per command.
	best := map[string]Recommendation{}
	var order []string
	for _, rec := range recs {
		existing, ok := best[rec.Command]
		if !ok {
			order = append(order, rec.Command)
		}
		if !ok || rec.Confidence > existing.Confidence {
			best[rec.Command] = rec
		}
	}

	deduped := make([]Recommendation, 0, len(order))
	for _, cmd := range order {
		deduped = append(deduped, best[cmd])
	}
	return deduped
}

// rank assigns tier-based priority from the metadata and sorts by
// priority then confidence, both descending.
func (a *Advisor) rank(recs []Recommendation) {
	tierPriority := map[string]int{"XS": 5, "S": 4, "M": 3, "L": 2}

	for i := range recs {
		recs[i].Priority = 3
		recs[i].Time = "varies"

		meta := a.lookup(recs[i].Command)
		if meta == nil {
			continue
		}
		recs[i].Title = meta.Title
		tier := firstTier(meta.Tier)
		if p, ok := tierPriority[tier]; ok {
			recs[i].Priority = p
		}
		if t := tierTime(tier); t != "" {
			recs[i].Time = t
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Priority != recs[j].Priority {
			return recs[i].Priority > recs[j].Priority
		}
		return recs[i].Confidence > recs[j].Confidence
	})
}

func (a *Advisor) lookup(command string) *extract.CommandMetadata {
	if a.meta == nil {
		return nil
	}
	return a.meta.Commands[command]
}

func firstTier(tiers []string) string {
	if len(tiers) == 0 {
		return "M"
	}
	return tiers[0]
}

func tierTime(tier string) string {
	times := map[string]string{"XS": "5 min", "S": "10 min", "M": "25 min", "L": "45 min"}
	return times[tier]
}
