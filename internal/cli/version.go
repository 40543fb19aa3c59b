package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbk-dev/pbk/internal/buildinfo"
)

type versionInfo struct {
	Version    string `json:"version"`
	Commit     string `json:"commit,omitempty"`
	CommitTime string `json:"commit_time,omitempty"`
	Modified   bool   `json:"modified"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show pbk version and build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentVersionInfo()

		if isJSONOutput() {
			outputSuccess(info, nil)
			return nil
		}

		fmt.Printf("pbk %s\n", info.Version)
		if info.Commit != "" {
			fmt.Printf("commit: %s", info.Commit)
			if info.Modified {
				fmt.Print(" (modified)")
			}
			fmt.Println()
		}
		if info.CommitTime != "" {
			fmt.Printf("built: %s\n", info.CommitTime)
		}
		fmt.Printf("go: %s (%s)\n", info.GoVersion, info.Platform)
		return nil
	},
}

// currentVersionInfo merges release ldflags (see internal/buildinfo) with
// the VCS stamps Go embeds in module-aware builds. ldflags win for the
// version, VCS stamps fill in the rest.
func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:   "devel",
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			info.Version = v
		}
		if bi.GoVersion != "" {
			info.GoVersion = bi.GoVersion
		}
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				info.Commit = setting.Value
			case "vcs.time":
				info.CommitTime = setting.Value
			case "vcs.modified":
				info.Modified = strings.EqualFold(setting.Value, "true")
			}
		}
	}

	if buildinfo.Version != "" {
		info.Version = buildinfo.Version
	}
	if info.Commit == "" {
		info.Commit = buildinfo.Commit
	}
	if info.CommitTime == "" {
		info.CommitTime = buildinfo.Date
	}
	return info
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
