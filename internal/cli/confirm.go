package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/pbk-dev/pbk/internal/ui"
)

// promptForConfirm gates the destructive curation operations (snapshot
// rollback, tags strip). Prompting needs a real terminal on both ends;
// JSON mode and pipelines never block on input, the caller aborts with a
// --force hint instead.
func promptForConfirm(message string) bool {
	if isJSONOutput() {
		return false
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) || !isatty.IsTerminal(os.Stdin.Fd()) {
		return false
	}

	if message == "" {
		message = "Proceed?"
	}
	fmt.Printf("%s %s ", message, ui.Hint("[y/N]"))

	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	switch strings.TrimSpace(strings.ToLower(line)) {
	case "y", "yes":
		return true
	}
	return false
}
