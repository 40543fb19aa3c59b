package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pbk-dev/pbk/internal/evolution"
	"github.com/pbk-dev/pbk/internal/ui"
)

var (
	snapshotForce bool
	snapshotKeep  int
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage evolution snapshots",
	Long: `Snapshots tag the current commit so an evolution cycle can be rolled
back wholesale. Each snapshot is an annotated git tag plus sidecar
metadata under todos/evolution-snapshots/.`,
}

func openSnapshotStore() (*evolution.Snapshots, error) {
	dir := filepath.Join(getPlaybookPath(), evolution.SnapshotsDir)
	return evolution.OpenSnapshots(dir, openRepo())
}

var snapshotCreateCmd = &cobra.Command{
	Use:   "create MESSAGE",
	Short: "Snapshot the current commit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSnapshotStore()
		if err != nil {
			return handleError(ErrFileReadError, err, "")
		}
		id, err := store.Create(cmd.Context(), args[0])
		if err != nil {
			return handleError(ErrGitUnavailable, err, "Run inside a git repository")
		}
		if isJSONOutput() {
			outputSuccess(map[string]string{"id": id}, nil)
		} else {
			fmt.Println(ui.Successf("Created snapshot %s", id))
		}
		return nil
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSnapshotStore()
		if err != nil {
			return handleError(ErrFileReadError, err, "")
		}

		ids := store.List()
		if isJSONOutput() {
			type entry struct {
				ID string `json:"id"`
				*evolution.SnapshotMeta
			}
			out := make([]entry, 0, len(ids))
			for _, id := range ids {
				meta, _ := store.Get(id)
				out = append(out, entry{ID: id, SnapshotMeta: meta})
			}
			outputSuccess(out, &Meta{Count: len(out)})
			return nil
		}

		if len(ids) == 0 {
			fmt.Println("No snapshots.")
			return nil
		}
		table := ui.NewTable(4)
		table.AddRow("ID", "CREATED", "STATUS", "MESSAGE")
		for _, id := range ids {
			meta, _ := store.Get(id)
			table.AddRow(id, meta.CreatedAt, meta.Status, meta.Message)
		}
		fmt.Print(table.String())
		return nil
	},
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSnapshotStore()
		if err != nil {
			return handleError(ErrFileReadError, err, "")
		}
		meta, ok := store.Get(args[0])
		if !ok {
			return handleErrorMsg(ErrSnapshotNotFound,
				fmt.Sprintf("snapshot not found: %s", args[0]), "Run 'pbk snapshot list'")
		}
		if isJSONOutput() {
			outputSuccess(meta, nil)
			return nil
		}
		fmt.Printf("%s\n", ui.Header(args[0]))
		fmt.Printf("Created: %s\n", meta.CreatedAt)
		fmt.Printf("Commit:  %s\n", meta.Commit)
		fmt.Printf("Branch:  %s\n", meta.Branch)
		fmt.Printf("Status:  %s\n", meta.Status)
		fmt.Printf("Message: %s\n", meta.Message)
		return nil
	},
}

var snapshotRollbackCmd = &cobra.Command{
	Use:   "rollback ID",
	Short: "Hard-reset the work tree to a snapshot",
	Long: `Resets the work tree to the snapshot's commit and records an empty
marker commit. The work tree must be clean. Destructive: requires
confirmation or --force.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSnapshotStore()
		if err != nil {
			return handleError(ErrFileReadError, err, "")
		}

		if !snapshotForce {
			if !promptForConfirm(fmt.Sprintf("Hard-reset to snapshot %s?", args[0])) {
				return handleErrorMsg(ErrConfirmationRequired,
					"rollback aborted", "Re-run with --force to skip confirmation")
			}
		}

		if err := store.Rollback(cmd.Context(), args[0]); err != nil {
			return handleError(ErrGitDirtyTree, err, "Commit or stash changes first")
		}
		if isJSONOutput() {
			outputSuccess(map[string]string{"id": args[0], "status": evolution.SnapshotUsed}, nil)
		} else {
			fmt.Println(ui.Successf("Rolled back to snapshot %s", args[0]))
		}
		return nil
	},
}

var snapshotCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete old snapshots and their tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSnapshotStore()
		if err != nil {
			return handleError(ErrFileReadError, err, "")
		}
		deleted, err := store.Cleanup(cmd.Context(), snapshotKeep)
		if err != nil {
			return handleError(ErrGitUnavailable, err, "")
		}
		if isJSONOutput() {
			outputSuccess(deleted, &Meta{Count: len(deleted)})
			return nil
		}
		if len(deleted) == 0 {
			fmt.Println("Nothing to clean up.")
			return nil
		}
		for _, id := range deleted {
			fmt.Printf("  %s %s\n", ui.SymbolSuccess, id)
		}
		fmt.Println(ui.Successf("Deleted %d snapshots.", len(deleted)))
		return nil
	},
}

func init() {
	snapshotRollbackCmd.Flags().BoolVar(&snapshotForce, "force", false, "Skip confirmation")
	snapshotCleanupCmd.Flags().IntVar(&snapshotKeep, "keep", 5, "How many recent snapshots to keep")

	snapshotCmd.AddCommand(snapshotCreateCmd, snapshotListCmd, snapshotShowCmd,
		snapshotRollbackCmd, snapshotCleanupCmd)
	rootCmd.AddCommand(snapshotCmd)
}
