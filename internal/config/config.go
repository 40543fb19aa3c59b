// Package config handles global pbk configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the global pbk configuration.
type Config struct {
	// DefaultPlaybook is the name of the default playbook (from Playbooks map).
	DefaultPlaybook string `toml:"default_playbook"`

	// Playbooks is a map of playbook names to root directories.
	Playbooks map[string]string `toml:"playbooks"`

	// GitTimeoutSeconds bounds every git subprocess invocation.
	// Zero means the built-in default (10 seconds).
	GitTimeoutSeconds int `toml:"git_timeout_seconds"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an optional accent color for CLI output and markdown rendering.
	// Supported values are ANSI color codes ("0" to "255") or hex colors ("#RRGGBB").
	Accent string `toml:"accent"`
}

// GetPlaybookPath returns the root directory for a named playbook.
// If name is empty, returns the default playbook path.
func (c *Config) GetPlaybookPath(name string) (string, error) {
	if name == "" {
		name = c.DefaultPlaybook
	}

	if c.Playbooks != nil {
		if path, ok := c.Playbooks[name]; ok {
			return path, nil
		}
	}

	if name == "" {
		return "", fmt.Errorf("no default playbook configured")
	}

	return "", fmt.Errorf("playbook '%s' not found in config", name)
}

// GetDefaultPlaybookPath returns the default playbook root.
func (c *Config) GetDefaultPlaybookPath() (string, error) {
	return c.GetPlaybookPath("")
}

// ListPlaybooks returns all configured playbooks with their paths.
func (c *Config) ListPlaybooks() map[string]string {
	result := make(map[string]string, len(c.Playbooks))
	for name, path := range c.Playbooks {
		result[name] = path
	}
	return result
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &Config{}, nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &config, nil
}

// DefaultPath returns the default config file path.
// Checks ~/.config/pbk/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "pbk", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "pbk", "config.toml")
	}

	// Last resort fallback
	return filepath.Join(".", "config.toml")
}

// CreateDefault creates a default config file if it doesn't exist.
func CreateDefault() (string, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil // Already exists
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	defaultConfig := `# pbk configuration

# Default playbook name (must exist in [playbooks] below)
# default_playbook = "main"

# Named playbook roots
# [playbooks]
# main = "/path/to/your/playbook"

# Timeout for git subprocess calls, in seconds.
# git_timeout_seconds = 10

# Optional UI accent color for headers/command names in terminal output.
# Supports ANSI color codes (0-255) or hex (#RRGGBB).
# [ui]
# accent = "39"
`

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return configPath, nil
}
