package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbk-dev/pbk/internal/check"
	"github.com/pbk-dev/pbk/internal/config"
	"github.com/pbk-dev/pbk/internal/playbook"
	"github.com/pbk-dev/pbk/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Initialize a new playbook",
	Long: `Creates a new playbook root at the specified path.

Creates:
  - commands/<category>/  (one directory per category)
  - todos/                (reports and feedback)
  - .gitignore            (ignores derived files)
  - a default global config if none exists`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		fmt.Printf("Initializing playbook at: %s\n", path)

		if err := scaffoldPlaybook(path); err != nil {
			return err
		}

		gitignoreStatus, err := ensureGitignore(path)
		if err != nil {
			return err
		}

		configPath, err := config.CreateDefault()
		if err != nil {
			return fmt.Errorf("failed to create config: %w", err)
		}

		fmt.Printf("%s Created %s/ with %d categories\n", ui.SymbolSuccess, playbook.CommandsDir, len(check.ValidCategories))
		fmt.Printf("%s Created todos/\n", ui.SymbolSuccess)
		switch gitignoreStatus {
		case "created":
			fmt.Printf("%s Created .gitignore\n", ui.SymbolSuccess)
		case "updated":
			fmt.Printf("%s Updated .gitignore\n", ui.SymbolSuccess)
		default:
			fmt.Println("• .gitignore already has pbk entries")
		}
		fmt.Printf("%s Config at %s\n", ui.SymbolSuccess, configPath)

		fmt.Printf("\nPlaybook initialized. Add commands under %s/<category>/%s<name>.md\n",
			playbook.CommandsDir, playbook.CommandPrefix)
		fmt.Println(ui.Hint(fmt.Sprintf("Register it with a [playbooks] entry in %s", configPath)))
		return nil
	},
}

// scaffoldPlaybook creates the commands/<category> tree and todos/ under root.
func scaffoldPlaybook(root string) error {
	categories := make([]string, 0, len(check.ValidCategories))
	for category := range check.ValidCategories {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		dir := filepath.Join(root, playbook.CommandsDir, category)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.MkdirAll(filepath.Join(root, "todos"), 0755); err != nil {
		return fmt.Errorf("failed to create todos directory: %w", err)
	}
	return nil
}

// ensureGitignore makes sure derived files are ignored in the new root.
func ensureGitignore(root string) (string, error) {
	path := filepath.Join(root, ".gitignore")
	entries := []string{".pbk/", ".playbook-metadata.json", ".playbook-quick-ref.md"}

	existing := ""
	if data, err := os.ReadFile(path); err == nil {
		existing = string(data)
	}

	var missing []string
	for _, entry := range entries {
		if !strings.Contains(existing, entry) {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		if existing != "" {
			return "unchanged", nil
		}
	}

	status := "created"
	var content string
	if existing == "" {
		content = `# pbk derived files

# Index database (rebuilt with 'pbk reindex')
.pbk/

# Generated metadata
.playbook-metadata.json
.playbook-quick-ref.md
`
	} else {
		status = "updated"
		addition := "\n# pbk\n"
		for _, entry := range missing {
			addition += entry + "\n"
		}
		content = strings.TrimRight(existing, "\n") + "\n" + addition
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write .gitignore: %w", err)
	}
	return status, nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
