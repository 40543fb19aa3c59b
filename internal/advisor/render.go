package advisor

import (
	"fmt"
	"sort"
	"strings"
)

const rule = "──────────────────────────────────────────────────"

// Markdown renders the analysis as the advisory report shown by the CLI.
func (a *Analysis) Markdown() string {
	var b strings.Builder

	b.WriteString("# Current Work State\n")
	b.WriteString(rule + "\n\n")
	fmt.Fprintf(&b, "**Branch**: `%s`\n", a.GitState.Branch)
	fmt.Fprintf(&b, "**Phase**: %s\n", a.Phase)

	if n := len(a.GitState.ChangedFiles); n > 0 {
		kinds := make([]string, 0, len(a.FileTypes))
		for kind := range a.FileTypes {
			kinds = append(kinds, kind+"/")
		}
		sort.Strings(kinds)
		fmt.Fprintf(&b, "**Changes**: %d files changed (%s)\n", n, strings.Join(kinds, ", "))
	} else {
		b.WriteString("**Changes**: None (clean working directory)\n")
	}
	fmt.Fprintf(&b, "**Commits**: %d recent commits\n\n", a.GitState.CommitCount)

	b.WriteString("# Recommended Next Steps\n")
	b.WriteString(rule + "\n\n")

	if len(a.Recommendations) == 0 {
		b.WriteString("No specific recommendations at this time.\n")
		b.WriteString("Status looks good for current phase!\n")
	} else {
		for i, rec := range a.Recommendations {
			title := rec.Title
			if title == "" {
				title = rec.Command
			}
			fmt.Fprintf(&b, "%d. **`/%s`** — %s\n", i+1, rec.Command, title)
			fmt.Fprintf(&b, "   - %s\n", rec.Reason)
			fmt.Fprintf(&b, "   - Confidence: %.0f%% | Time: %s\n\n", rec.Confidence*100, rec.Time)
		}
	}

	if len(a.Recommendations) > 0 {
		if reasons := a.whyLines(); len(reasons) > 0 {
			b.WriteString("# Why These Commands?\n")
			b.WriteString(rule + "\n\n")
			for _, line := range reasons {
				b.WriteString("• " + line + "\n")
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("# Tips\n")
	b.WriteString(rule + "\n\n")
	b.WriteString("- Run `pbk next --verbose` for detailed analysis\n")
	b.WriteString("- Each command should take 5-60 minutes\n")
	b.WriteString("- Return here after each step for updated recommendations\n")

	return b.String()
}

func (a *Analysis) whyLines() []string {
	var lines []string
	if len(a.FileTypes["tests"]) > 0 && len(a.FileTypes["source"]) > 0 {
		lines = append(lines, "Both source and test files changed → Need full development cycle")
	}
	if a.GitState.CommitCount >= 5 {
		lines = append(lines, "Multiple commits → Time to organize and prepare for integration")
	}
	if a.Phase == PhaseFinalize && !a.GitState.UnstagedChanges {
		lines = append(lines, "All changes committed → Ready to create PR")
	}
	if len(a.FileTypes["docs"]) > 0 {
		lines = append(lines, "Documentation updated → Ensure clarity and completeness")
	}
	if len(a.FileTypes["ci"]) > 0 {
		lines = append(lines, "CI/CD modified → Review deployment impacts")
	}
	return lines
}
