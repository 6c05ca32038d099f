package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dl-alexandre/gdm/internal/config"
	"github.com/dl-alexandre/gdm/internal/history"
	"github.com/dl-alexandre/gdm/internal/mirror"
	"github.com/dl-alexandre/gdm/internal/types"
	"github.com/dl-alexandre/gdm/internal/utils"
	"github.com/spf13/cobra"
)

var targetCmd = &cobra.Command{
	Use:   "target",
	Short: "Manage saved mirror targets",
	Long:  "Commands for saving, listing, and running named mirror targets",
}

var targetAddCmd = &cobra.Command{
	Use:   "add <name> <local-path> <remote-folder>",
	Short: "Save a mirror target",
	Args:  cobra.ExactArgs(3),
	RunE:  runTargetAdd,
}

var targetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved mirror targets",
	RunE:  runTargetList,
}

var targetRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a saved mirror target and its run history",
	Args:  cobra.ExactArgs(1),
	RunE:  runTargetRemove,
}

var targetRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run a saved mirror target",
	Args:  cobra.ExactArgs(1),
	RunE:  runTargetRun,
}

var (
	targetAddRecursive bool
	targetHistoryLimit int
)

var targetHistoryCmd = &cobra.Command{
	Use:   "history <name>",
	Short: "Show past runs of a saved mirror target",
	Args:  cobra.ExactArgs(1),
	RunE:  runTargetHistory,
}

func init() {
	rootCmd.AddCommand(targetCmd)

	targetCmd.AddCommand(targetAddCmd)
	targetCmd.AddCommand(targetListCmd)
	targetCmd.AddCommand(targetRemoveCmd)
	targetCmd.AddCommand(targetRunCmd)
	targetCmd.AddCommand(targetHistoryCmd)

	targetAddCmd.Flags().BoolVarP(&targetAddRecursive, "recursive", "r", true, "Descend into subdirectories")
	targetHistoryCmd.Flags().IntVar(&targetHistoryLimit, "limit", 20, "Maximum number of runs to show")
}

func openHistoryDB() (*history.DB, error) {
	historyPath, err := config.GetHistoryPath()
	if err != nil {
		return nil, err
	}
	return history.Open(historyPath)
}

func runTargetAdd(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)
	ctx := cmd.Context()

	localRoot, err := filepath.Abs(args[1])
	if err != nil {
		return out.WriteError("target.add", utils.NewCLIError(utils.ErrCodeInvalidPath, err.Error()).Build())
	}

	client, err := getClient(ctx, flags)
	if err != nil {
		return writeCommandError(out, "target.add", err)
	}

	remoteRootID, err := resolveRemoteFolder(ctx, client, flags, args[2])
	if err != nil {
		return writeCommandError(out, "target.add", err)
	}

	db, err := openHistoryDB()
	if err != nil {
		return writeCommandError(out, "target.add", err)
	}
	defer db.Close()

	target := &history.Target{
		ID:           args[0],
		LocalRoot:    localRoot,
		RemoteRootID: remoteRootID,
		Recursive:    targetAddRecursive,
	}
	if err := db.SaveTarget(target); err != nil {
		return writeCommandError(out, "target.add", err)
	}

	return out.WriteSuccess("target.add", target)
}

// targetList renders saved targets as a table
type targetList []*history.Target

func (l targetList) Headers() []string {
	return []string{"Name", "Local Root", "Remote Folder", "Recursive", "Created"}
}

func (l targetList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, t := range l {
		rows = append(rows, []string{
			t.ID,
			truncate(t.LocalRoot, 40),
			truncate(t.RemoteRootID, 20),
			fmt.Sprintf("%t", t.Recursive),
			t.CreatedAt.Format(time.RFC3339),
		})
	}
	return rows
}

func (l targetList) EmptyMessage() string {
	return "No saved targets. Use 'gdm target add' to create one."
}

func runTargetList(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	db, err := openHistoryDB()
	if err != nil {
		return writeCommandError(out, "target.list", err)
	}
	defer db.Close()

	targets, err := db.ListTargets()
	if err != nil {
		return writeCommandError(out, "target.list", err)
	}

	if flags.OutputFormat == types.OutputFormatTable {
		return out.renderTable(targetList(targets))
	}
	return out.WriteSuccess("target.list", targets)
}

func runTargetRemove(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	db, err := openHistoryDB()
	if err != nil {
		return writeCommandError(out, "target.remove", err)
	}
	defer db.Close()

	if err := db.DeleteTarget(args[0]); err != nil {
		return out.WriteError("target.remove", utils.NewCLIError(utils.ErrCodeFileNotFound, err.Error()).Build())
	}

	return out.WriteSuccess("target.remove", map[string]string{"removed": args[0]})
}

func runTargetRun(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)
	ctx := cmd.Context()

	db, err := openHistoryDB()
	if err != nil {
		return writeCommandError(out, "target.run", err)
	}

	target, err := db.GetTarget(args[0])
	db.Close()
	if err != nil {
		return out.WriteError("target.run", utils.NewCLIError(utils.ErrCodeFileNotFound, err.Error()).Build())
	}

	client, err := getClient(ctx, flags)
	if err != nil {
		return writeCommandError(out, "target.run", err)
	}

	start := time.Now()
	report, result, err := executeMirror(ctx, out, mirror.NewDriveStore(client), mirror.Options{
		LocalRoot:    target.LocalRoot,
		RemoteRootID: target.RemoteRootID,
		Recursive:    target.Recursive,
		DryRun:       flags.DryRun,
		Profile:      flags.Profile,
		DriveID:      flags.DriveID,
	})
	if err != nil {
		return writeCommandError(out, "target.run", err)
	}

	if !flags.DryRun {
		recordRun(out, target.ID, start, time.Since(start), report)
	}

	if err := out.WriteSuccess("target.run", result); err != nil {
		return err
	}
	if report.HasErrors() {
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeMirrorPartialFailure,
			fmt.Sprintf("%d entries failed", len(report.Errors))).
			Build())
	}
	return nil
}

// runList renders past runs as a table
type runList []*history.Run

func (l runList) Headers() []string {
	return []string{"Started", "Duration", "Created", "Updated", "Skipped", "Errors"}
}

func (l runList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, r := range l {
		rows = append(rows, []string{
			r.StartedAt.Format(time.RFC3339),
			r.Duration.String(),
			fmt.Sprintf("%d", r.Created),
			fmt.Sprintf("%d", r.Updated),
			fmt.Sprintf("%d", r.Skipped),
			fmt.Sprintf("%d", r.ErrorCount),
		})
	}
	return rows
}

func (l runList) EmptyMessage() string {
	return "No recorded runs for this target."
}

func runTargetHistory(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	db, err := openHistoryDB()
	if err != nil {
		return writeCommandError(out, "target.history", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(args[0], targetHistoryLimit)
	if err != nil {
		return writeCommandError(out, "target.history", err)
	}

	if flags.OutputFormat == types.OutputFormatTable {
		return out.renderTable(runList(runs))
	}
	return out.WriteSuccess("target.history", runs)
}
