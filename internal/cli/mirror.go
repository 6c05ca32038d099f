package cli

import (
	"context"
	"errors"
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

var mirrorRecursive bool

var mirrorCmd = &cobra.Command{
	Use:   "mirror <local-path> <remote-folder>",
	Short: "Mirror a local directory into a Drive folder",
	Long: `Mirror a local directory tree into a Google Drive folder.

The remote folder may be given as a folder ID or as a path starting
with '/' (resolved from the Drive root). Folders are created as
needed, new files are uploaded, and files whose local copy is newer
are rewritten. Nothing is ever deleted remotely.`,
	Args: cobra.ExactArgs(2),
	RunE: runMirror,
}

func init() {
	rootCmd.AddCommand(mirrorCmd)
	mirrorCmd.Flags().BoolVarP(&mirrorRecursive, "recursive", "r", true, "Descend into subdirectories")
}

// mirrorResult is the command output envelope payload
type mirrorResult struct {
	LocalRoot    string         `json:"localRoot"`
	RemoteRootID string         `json:"remoteRootId"`
	Recursive    bool           `json:"recursive"`
	DryRun       bool           `json:"dryRun"`
	DurationMs   int64          `json:"durationMs"`
	Report       *mirror.Report `json:"report"`
}

func (r *mirrorResult) AsTableRenderer() types.TableRenderer {
	return &mirrorResultTable{result: r}
}

type mirrorResultTable struct {
	result *mirrorResult
}

func (t *mirrorResultTable) Headers() []string {
	return []string{"Created", "Updated", "Skipped", "Errors", "Duration"}
}

func (t *mirrorResultTable) Rows() [][]string {
	r := t.result
	return [][]string{{
		fmt.Sprintf("%d", r.Report.Created),
		fmt.Sprintf("%d", r.Report.Updated),
		fmt.Sprintf("%d", r.Report.Skipped),
		fmt.Sprintf("%d", len(r.Report.Errors)),
		(time.Duration(r.DurationMs) * time.Millisecond).String(),
	}}
}

func (t *mirrorResultTable) EmptyMessage() string {
	return "Nothing to mirror"
}

func runMirror(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)
	ctx := cmd.Context()

	localRoot, err := filepath.Abs(args[0])
	if err != nil {
		return out.WriteError("mirror", utils.NewCLIError(utils.ErrCodeInvalidPath, err.Error()).Build())
	}

	client, err := getClient(ctx, flags)
	if err != nil {
		return writeCommandError(out, "mirror", err)
	}

	remoteRootID, err := resolveRemoteFolder(ctx, client, flags, args[1])
	if err != nil {
		return writeCommandError(out, "mirror", err)
	}

	report, result, err := executeMirror(ctx, out, mirror.NewDriveStore(client), mirror.Options{
		LocalRoot:    localRoot,
		RemoteRootID: remoteRootID,
		Recursive:    mirrorRecursive,
		DryRun:       flags.DryRun,
		Profile:      flags.Profile,
		DriveID:      flags.DriveID,
	})
	if err != nil {
		return writeCommandError(out, "mirror", err)
	}

	if err := out.WriteSuccess("mirror", result); err != nil {
		return err
	}
	if report.HasErrors() {
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeMirrorPartialFailure,
			fmt.Sprintf("%d entries failed", len(report.Errors))).
			Build())
	}
	return nil
}

// executeMirror runs the engine and assembles the result payload
func executeMirror(ctx context.Context, out *OutputWriter, store mirror.Store, opts mirror.Options) (*mirror.Report, *mirrorResult, error) {
	opts.Progress = func(processed, total int, name string) {
		out.Verbose("[%d/%d] %s", processed, total, name)
	}

	engine := mirror.NewEngine(store, GetLogger())

	start := time.Now()
	report, err := engine.Sync(ctx, opts)
	duration := time.Since(start)
	if err != nil {
		return nil, nil, err
	}

	for _, entryErr := range report.Errors {
		out.Log("error: %s: %s", entryErr.RelativePath, entryErr.Message)
	}

	return report, &mirrorResult{
		LocalRoot:    opts.LocalRoot,
		RemoteRootID: opts.RemoteRootID,
		Recursive:    opts.Recursive,
		DryRun:       opts.DryRun,
		DurationMs:   duration.Milliseconds(),
		Report:       report,
	}, nil
}

// recordRun appends a run summary to the history database, best effort
func recordRun(out *OutputWriter, targetID string, startedAt time.Time, duration time.Duration, report *mirror.Report) {
	historyPath, err := config.GetHistoryPath()
	if err != nil {
		out.AddWarning("HISTORY_UNAVAILABLE", err.Error(), "warning")
		return
	}

	db, err := history.Open(historyPath)
	if err != nil {
		out.AddWarning("HISTORY_UNAVAILABLE", err.Error(), "warning")
		return
	}
	defer db.Close()

	run := &history.Run{
		TargetID:   targetID,
		StartedAt:  startedAt,
		Duration:   duration,
		Created:    report.Created,
		Updated:    report.Updated,
		Skipped:    report.Skipped,
		ErrorCount: len(report.Errors),
	}
	if err := db.RecordRun(run); err != nil {
		out.AddWarning("HISTORY_WRITE_FAILED", err.Error(), "warning")
	}
}

// writeCommandError emits an error envelope, preserving structured errors
func writeCommandError(out *OutputWriter, command string, err error) error {
	if appErr, ok := err.(*utils.AppError); ok {
		return out.WriteError(command, appErr.CLIError)
	}
	if errors.Is(err, context.Canceled) {
		return out.WriteError(command, utils.NewCLIError(utils.ErrCodeCancelled, "operation cancelled").Build())
	}
	return out.WriteError(command, utils.NewCLIError(utils.ErrCodeUnknown, err.Error()).Build())
}
