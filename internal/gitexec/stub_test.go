package gitexec

import (
	"context"
	"fmt"
	"strings"
)

// stubGit swaps the exec hook for a canned-output function and returns a
// restore func for defer.
func stubGit(fn func(args ...string) (string, error)) func() {
	prev := runGit
	runGit = func(ctx context.Context, dir string, args ...string) ([]byte, error) {
		out, err := fn(args...)
		return []byte(out), err
	}
	return func() { runGit = prev }
}

// stubGitOutputs maps a joined argument prefix to canned stdout.
// Unmatched invocations fail.
func stubGitOutputs(outputs map[string]string) func() {
	return stubGit(func(args ...string) (string, error) {
		joined := strings.Join(args, " ")
		for prefix, out := range outputs {
			if strings.HasPrefix(joined, prefix) {
				return out, nil
			}
		}
		return "", fmt.Errorf("unexpected git invocation: %s", joined)
	})
}
