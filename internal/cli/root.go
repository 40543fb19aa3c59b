// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pbk-dev/pbk/internal/config"
	"github.com/pbk-dev/pbk/internal/playbook"
	"github.com/pbk-dev/pbk/internal/ui"
)

var (
	// Global flags
	playbookName     string // Named playbook from config
	playbookPathFlag string // Explicit path
	configPath       string
	gitTimeoutFlag   int // Seconds; overrides config when set

	// Resolved values
	resolvedPlaybookPath string
	cfg                  *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pbk",
	Short: "pbk - Playbook command curation and evolution",
	Long: `pbk manages a playbook: a repository of markdown command files with
YAML front-matter, validated conventions, git-signal analysis, and a
structured evolution ritual.

Plain-text markdown files stay the source of truth; pbk keeps their
metadata honest and tells you what to run next.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip playbook resolution for commands that don't need one
		switch cmd.Name() {
		case "init", "completion", "help", "version":
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = loadGlobalConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg == nil {
			cfg = &config.Config{}
		}
		ui.ConfigureTheme(cfg.UI.Accent)

		// Resolve playbook root: explicit path > named playbook > default > cwd
		switch {
		case playbookPathFlag != "":
			resolvedPlaybookPath = playbookPathFlag
		case playbookName != "":
			resolvedPlaybookPath, err = cfg.GetPlaybookPath(playbookName)
			if err != nil {
				return fmt.Errorf("playbook '%s' not found\n\nAdd it to %s under [playbooks]", playbookName, config.DefaultPath())
			}
		default:
			resolvedPlaybookPath, err = cfg.GetDefaultPlaybookPath()
			if err != nil {
				cwd, cwdErr := os.Getwd()
				if cwdErr == nil && hasCommandsDir(cwd) {
					resolvedPlaybookPath = cwd
					break
				}
				return fmt.Errorf(`no playbook specified

Either:
  1. Use --playbook <name> (from config)
  2. Use --path /path/to/playbook
  3. Set default_playbook in %s
  4. Run pbk from a directory containing commands/`, config.DefaultPath())
			}
		}

		if _, err := os.Stat(resolvedPlaybookPath); os.IsNotExist(err) {
			return fmt.Errorf("playbook not found: %s\n\nRun 'pbk init %s' to create it", resolvedPlaybookPath, resolvedPlaybookPath)
		}

		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&playbookName, "playbook", "p", "", "Named playbook from config")
	rootCmd.PersistentFlags().StringVar(&playbookPathFlag, "path", "", "Explicit path to playbook root")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
	rootCmd.PersistentFlags().IntVar(&gitTimeoutFlag, "git-timeout", 0, "Git subprocess timeout in seconds (overrides config)")
}

// getPlaybookPath returns the resolved playbook root.
func getPlaybookPath() string {
	return resolvedPlaybookPath
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	if cfg == nil {
		return &config.Config{}
	}
	return cfg
}

func loadGlobalConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

func hasCommandsDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, playbook.CommandsDir))
	return err == nil && info.IsDir()
}
