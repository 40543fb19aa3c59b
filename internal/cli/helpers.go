package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pbk-dev/pbk/internal/gitexec"
	"github.com/pbk-dev/pbk/internal/playbook"
	"github.com/pbk-dev/pbk/internal/ui"
)

// loadPlaybookCommands loads every command file under the resolved root.
// Per-file failures become warnings; only a missing commands/ directory
// is fatal.
func loadPlaybookCommands() ([]*playbook.Command, []Warning, error) {
	cmds, failures, err := playbook.CollectCommands(getPlaybookPath())
	if err != nil {
		return nil, nil, err
	}

	var warnings []Warning
	for _, f := range failures {
		warnings = append(warnings, Warning{
			Code:    WarnFileSkipped,
			Message: f.Error.Error(),
			File:    f.RelPath,
		})
		if !isJSONOutput() {
			fmt.Fprintln(os.Stderr, ui.Warningf("skipping %s: %v", f.RelPath, f.Error))
		}
	}
	return cmds, warnings, nil
}

// openRepo returns a git handle for the playbook root. The flag wins
// over the config timeout.
func openRepo() *gitexec.Repo {
	repo := gitexec.NewRepo(getPlaybookPath())
	secs := getConfig().GitTimeoutSeconds
	if gitTimeoutFlag > 0 {
		secs = gitTimeoutFlag
	}
	if secs > 0 {
		repo.Timeout = time.Duration(secs) * time.Second
	}
	return repo
}

// requireGitRepo returns an error when the playbook root is not inside a
// git work tree.
func requireGitRepo(ctx context.Context, repo *gitexec.Repo) error {
	if !repo.IsRepo(ctx) {
		return fmt.Errorf("not a git repository: %s", getPlaybookPath())
	}
	return nil
}
