// Package signals mines git history for adoption, churn, and pain-point
// signals that feed evolution planning.
package signals

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/pbk-dev/pbk/internal/gitexec"
)

// DefaultSince is the history window when none is given.
const DefaultSince = "1 year ago"

// commandPathPattern matches command files: commands/<category>/pb-<name>.md
var commandPathPattern = regexp.MustCompile(`^commands/[^/]+/(pb-[^/]+)`)

// GitSource is the slice of gitexec.Repo the analyzer reads from.
// Tests supply a canned implementation.
type GitSource interface {
	Log(ctx context.Context, since string) []gitexec.Commit
	TouchedFiles(ctx context.Context, since string) []string
	Numstat(ctx context.Context, since string) []gitexec.FileChange
	CommitFiles(ctx context.Context, hash string) []string
}

// CommandTouches is one entry of the touch-frequency rankings.
type CommandTouches struct {
	Command string `json:"command"`
	Touches int    `json:"touches"`
}

// FileChanges is one entry of the file change-frequency ranking.
type FileChanges struct {
	File    string `json:"file"`
	Changes int    `json:"changes"`
}

// AdoptionMetrics ranks commands and files by how often they are touched.
type AdoptionMetrics struct {
	CommandsByTouchFrequency []CommandTouches `json:"commands_by_touch_frequency"`
	FilesByChangeFrequency   []FileChanges    `json:"files_by_change_frequency"`
	AuthorsPerCommand        map[string]int   `json:"authors_per_command"`
	LeastActiveCommands      []CommandTouches `json:"least_active_commands"`
}

// FileCommits is one entry of the commit-frequency ranking.
type FileCommits struct {
	File    string `json:"file"`
	Commits int    `json:"commits"`
}

// FileLineChanges is one entry of the line-change ranking.
type FileLineChanges struct {
	File        string `json:"file"`
	LineChanges int    `json:"line_changes"`
}

// HighChurnArea combines line changes and commit count for one file.
type HighChurnArea struct {
	File               string `json:"file"`
	LineChanges        int    `json:"line_changes"`
	Commits            int    `json:"commits"`
	AvgChangePerCommit int    `json:"avg_change_per_commit"`
}

// ChurnAnalysis ranks files by change volume.
type ChurnAnalysis struct {
	FilesByCommitFrequency []FileCommits     `json:"files_by_commit_frequency"`
	FilesByLineChanges     []FileLineChanges `json:"files_by_line_changes"`
	HighChurnAreas         []HighChurnArea   `json:"high_churn_areas"`
}

// PainCommit is one revert/fix/hotfix commit reference.
type PainCommit struct {
	Hash    string `json:"hash"`
	Subject string `json:"subject"`
	Date    string `json:"date"`
	Author  string `json:"author,omitempty"`
}

// FilePainScore counts fix-adjacent touches of one file.
type FilePainScore struct {
	File      string `json:"file"`
	PainScore int    `json:"pain_score"`
}

// PainSummary totals the pain signal categories.
type PainSummary struct {
	TotalReverts  int `json:"total_reverts"`
	TotalBugFixes int `json:"total_bug_fixes"`
	TotalHotfixes int `json:"total_hotfixes"`
}

// PainPoints collects revert/fix/hotfix heuristics from commit subjects.
type PainPoints struct {
	RevertedCommits []PainCommit    `json:"reverted_commits"`
	BugFixPatterns  []PainCommit    `json:"bug_fix_patterns"`
	HotfixPatterns  []PainCommit    `json:"hotfix_patterns"`
	PainScoreByFile []FilePainScore `json:"pain_score_by_file"`
	Summary         PainSummary     `json:"summary"`
}

// Result is the full output of one analysis run.
type Result struct {
	Since       string
	CommitCount int
	Adoption    AdoptionMetrics
	Churn       ChurnAnalysis
	PainPoints  PainPoints
}

// Analyzer mines one repository's history.
type Analyzer struct {
	git GitSource
}

// NewAnalyzer creates an analyzer over a git source.
func NewAnalyzer(git GitSource) *Analyzer {
	return &Analyzer{git: git}
}

// Analyze runs the full pipeline: commits, adoption, churn, pain points.
// Git failures degrade to empty sections.
func (a *Analyzer) Analyze(ctx context.Context, since string) *Result {
	if since == "" {
		since = DefaultSince
	}

	commits := a.git.Log(ctx, since)

	// One `git show` per commit; cached because adoption and pain points
	// both walk the commit list.
	commitFiles := make(map[string][]string, len(commits))
	for _, c := range commits {
		commitFiles[c.Hash] = a.git.CommitFiles(ctx, c.Hash)
	}

	return &Result{
		Since:       since,
		CommitCount: len(commits),
		Adoption:    a.adoption(ctx, since, commits, commitFiles),
		Churn:       a.churn(ctx, since),
		PainPoints:  painPoints(commits, commitFiles),
	}
}

func (a *Analyzer) adoption(ctx context.Context, since string, commits []gitexec.Commit, commitFiles map[string][]string) AdoptionMetrics {
	metrics := AdoptionMetrics{
		CommandsByTouchFrequency: []CommandTouches{},
		FilesByChangeFrequency:   []FileChanges{},
		AuthorsPerCommand:        map[string]int{},
		LeastActiveCommands:      []CommandTouches{},
	}

	fileCounts := map[string]int{}
	for _, f := range a.git.TouchedFiles(ctx, since) {
		if strings.HasPrefix(f, "commands/") {
			fileCounts[f]++
		}
	}

	commandCounts := map[string]int{}
	for file, count := range fileCounts {
		if cmd, ok := commandFromPath(file); ok {
			commandCounts[cmd] += count
		}
	}

	authors := map[string]map[string]struct{}{}
	for _, c := range commits {
		for _, file := range commitFiles[c.Hash] {
			cmd, ok := commandFromPath(file)
			if !ok {
				continue
			}
			if authors[cmd] == nil {
				authors[cmd] = map[string]struct{}{}
			}
			authors[cmd][c.Author] = struct{}{}
		}
	}
	for cmd, set := range authors {
		metrics.AuthorsPerCommand[cmd] = len(set)
	}

	byTouches := rankCommands(commandCounts, true)
	metrics.CommandsByTouchFrequency = capCommands(byTouches, 20)
	metrics.LeastActiveCommands = capCommands(rankCommands(commandCounts, false), 10)

	byChanges := make([]FileChanges, 0, len(fileCounts))
	for file, count := range fileCounts {
		byChanges = append(byChanges, FileChanges{File: file, Changes: count})
	}
	sort.Slice(byChanges, func(i, j int) bool {
		if byChanges[i].Changes != byChanges[j].Changes {
			return byChanges[i].Changes > byChanges[j].Changes
		}
		return byChanges[i].File < byChanges[j].File
	})
	if len(byChanges) > 20 {
		byChanges = byChanges[:20]
	}
	metrics.FilesByChangeFrequency = byChanges

	return metrics
}

func (a *Analyzer) churn(ctx context.Context, since string) ChurnAnalysis {
	analysis := ChurnAnalysis{
		FilesByCommitFrequency: []FileCommits{},
		FilesByLineChanges:     []FileLineChanges{},
		HighChurnAreas:         []HighChurnArea{},
	}

	fileCommits := map[string]int{}
	fileChanges := map[string]int{}
	for _, ch := range a.git.Numstat(ctx, since) {
		added, deleted := ch.Added, ch.Deleted
		if added < 0 {
			added = 0
		}
		if deleted < 0 {
			deleted = 0
		}
		if added == 0 && deleted == 0 {
			continue
		}
		fileCommits[ch.Path]++
		fileChanges[ch.Path] += added + deleted
	}

	byCommits := make([]FileCommits, 0, len(fileCommits))
	for file, count := range fileCommits {
		byCommits = append(byCommits, FileCommits{File: file, Commits: count})
	}
	sort.Slice(byCommits, func(i, j int) bool {
		if byCommits[i].Commits != byCommits[j].Commits {
			return byCommits[i].Commits > byCommits[j].Commits
		}
		return byCommits[i].File < byCommits[j].File
	})
	if len(byCommits) > 20 {
		byCommits = byCommits[:20]
	}
	analysis.FilesByCommitFrequency = byCommits

	byLines := make([]FileLineChanges, 0, len(fileChanges))
	for file, count := range fileChanges {
		byLines = append(byLines, FileLineChanges{File: file, LineChanges: count})
	}
	sort.Slice(byLines, func(i, j int) bool {
		if byLines[i].LineChanges != byLines[j].LineChanges {
			return byLines[i].LineChanges > byLines[j].LineChanges
		}
		return byLines[i].File < byLines[j].File
	})
	if len(byLines) > 20 {
		byLines = byLines[:20]
	}
	analysis.FilesByLineChanges = byLines

	for _, entry := range byLines {
		commits := fileCommits[entry.File]
		avg := 0
		if commits > 0 {
			avg = entry.LineChanges / commits
		}
		analysis.HighChurnAreas = append(analysis.HighChurnAreas, HighChurnArea{
			File:               entry.File,
			LineChanges:        entry.LineChanges,
			Commits:            commits,
			AvgChangePerCommit: avg,
		})
	}

	return analysis
}

var (
	bugFixMarkers = []string{"fix:", "bug:", "fix bug", "bugfix"}
	hotfixMarkers = []string{"hotfix", "urgent", "critical", "p0:", "p1:"}
	painMarkers   = []string{"fix:", "revert", "bug:", "hotfix"}
)

func painPoints(commits []gitexec.Commit, commitFiles map[string][]string) PainPoints {
	points := PainPoints{
		RevertedCommits: []PainCommit{},
		BugFixPatterns:  []PainCommit{},
		HotfixPatterns:  []PainCommit{},
		PainScoreByFile: []FilePainScore{},
	}

	painByFile := map[string]int{}
	for _, c := range commits {
		subject := strings.ToLower(c.Subject)

		if strings.Contains(subject, "revert") {
			points.RevertedCommits = append(points.RevertedCommits, PainCommit{
				Hash: c.Hash, Subject: c.Subject, Date: c.Date, Author: c.Author,
			})
		}
		if containsAny(subject, bugFixMarkers) {
			points.BugFixPatterns = append(points.BugFixPatterns, PainCommit{
				Hash: c.Hash, Subject: c.Subject, Date: c.Date,
			})
		}
		if containsAny(subject, hotfixMarkers) {
			points.HotfixPatterns = append(points.HotfixPatterns, PainCommit{
				Hash: c.Hash, Subject: c.Subject, Date: c.Date,
			})
		}

		if containsAny(subject, painMarkers) {
			for _, file := range commitFiles[c.Hash] {
				painByFile[file]++
			}
		}
	}

	points.Summary = PainSummary{
		TotalReverts:  len(points.RevertedCommits),
		TotalBugFixes: len(points.BugFixPatterns),
		TotalHotfixes: len(points.HotfixPatterns),
	}

	points.RevertedCommits = lastN(points.RevertedCommits, 10)
	points.BugFixPatterns = lastN(points.BugFixPatterns, 10)
	points.HotfixPatterns = lastN(points.HotfixPatterns, 10)

	scores := make([]FilePainScore, 0, len(painByFile))
	for file, score := range painByFile {
		scores = append(scores, FilePainScore{File: file, PainScore: score})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].PainScore != scores[j].PainScore {
			return scores[i].PainScore > scores[j].PainScore
		}
		return scores[i].File < scores[j].File
	})
	if len(scores) > 15 {
		scores = scores[:15]
	}
	points.PainScoreByFile = scores

	return points
}

func commandFromPath(path string) (string, bool) {
	match := commandPathPattern.FindStringSubmatch(path)
	if match == nil {
		return "", false
	}
	return strings.TrimSuffix(match[1], ".md"), true
}

func rankCommands(counts map[string]int, descending bool) []CommandTouches {
	out := make([]CommandTouches, 0, len(counts))
	for cmd, count := range counts {
		out = append(out, CommandTouches{Command: cmd, Touches: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Touches != out[j].Touches {
			if descending {
				return out[i].Touches > out[j].Touches
			}
			return out[i].Touches < out[j].Touches
		}
		return out[i].Command < out[j].Command
	})
	return out
}

func capCommands(list []CommandTouches, n int) []CommandTouches {
	if len(list) > n {
		return list[:n]
	}
	return list
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func lastN(list []PainCommit, n int) []PainCommit {
	if len(list) > n {
		return list[len(list)-n:]
	}
	return list
}
