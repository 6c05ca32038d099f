package mirror

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/dl-alexandre/gdm/internal/api"
	"github.com/dl-alexandre/gdm/internal/logging"
	"github.com/dl-alexandre/gdm/internal/types"
	"github.com/dl-alexandre/gdm/internal/utils"
)

// ProgressFunc is invoked after each handled entry. totalKnownSoFar
// grows as directories are read; the callback is observational only.
type ProgressFunc func(processed int, totalKnownSoFar int, name string)

// Options configures a single mirror run
type Options struct {
	LocalRoot    string
	RemoteRootID string
	Recursive    bool
	DryRun       bool
	Profile      string
	DriveID      string
	Progress     ProgressFunc
}

// Engine mirrors a local directory tree into a remote folder. It is
// strictly additive: it creates folders, uploads new files, and rewrites
// stale ones, and it never deletes anything remotely. Each run re-lists
// the remote tree from scratch; nothing is cached between runs.
type Engine struct {
	store  Store
	logger logging.Logger
}

// NewEngine creates a mirror engine over the given store
func NewEngine(store Store, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Engine{store: store, logger: logger}
}

// walker holds the mutable state of one run
type walker struct {
	engine    *Engine
	opts      Options
	report    *Report
	visited   map[string]bool
	processed int
	total     int
}

// Sync walks the local tree rooted at opts.LocalRoot and mirrors it
// under opts.RemoteRootID. A non-directory root is the only fatal
// error; everything else is recorded per entry and the walk continues.
// Context cancellation aborts the walk and is returned alongside the
// partial report.
func (e *Engine) Sync(ctx context.Context, opts Options) (*Report, error) {
	info, err := os.Stat(opts.LocalRoot)
	if err != nil {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidPath,
			fmt.Sprintf("local root '%s': %v", opts.LocalRoot, err)).
			Build())
	}
	if !info.IsDir() {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidPath,
			fmt.Sprintf("local root '%s' is not a directory", opts.LocalRoot)).
			Build())
	}

	e.logger.Info("Mirror run starting",
		logging.F("localRoot", opts.LocalRoot),
		logging.F("remoteRootId", opts.RemoteRootID),
		logging.F("recursive", opts.Recursive),
		logging.F("dryRun", opts.DryRun),
	)

	w := &walker{
		engine:  e,
		opts:    opts,
		report:  newReport(),
		visited: make(map[string]bool),
	}

	err = w.walkDir(ctx, opts.LocalRoot, ".", opts.RemoteRootID, true)

	e.logger.Info("Mirror run finished",
		logging.F("created", w.report.Created),
		logging.F("updated", w.report.Updated),
		logging.F("skipped", w.report.Skipped),
		logging.F("errors", len(w.report.Errors)),
	)

	return w.report, err
}

// ResolveFolder returns the ID of the child folder named name under
// parentID, creating it when absent. Creation counts toward the
// report's created counter. The check is a fresh listing each time;
// concurrent creators can still race and produce duplicate names.
func (e *Engine) ResolveFolder(ctx context.Context, reqCtx *types.RequestContext, parentID string, name string, report *Report) (string, error) {
	listing, err := e.listDirectory(ctx, reqCtx, parentID)
	if err != nil {
		return "", err
	}
	return e.resolveInListing(ctx, reqCtx, listing, parentID, name, report)
}

// resolveInListing is ResolveFolder against an already-fetched listing
func (e *Engine) resolveInListing(ctx context.Context, reqCtx *types.RequestContext, listing *Listing, parentID string, name string, report *Report) (string, error) {
	if existing, ok := listing.Folders[name]; ok {
		return existing.ID, nil
	}

	created, err := e.store.CreateFolder(ctx, reqCtx, name, parentID)
	if err != nil {
		return "", err
	}

	report.Created++
	e.logger.Debug("Folder created",
		logging.F("name", name),
		logging.F("id", created.ID),
		logging.F("parentId", parentID),
	)
	return created.ID, nil
}

// walkDir mirrors one local directory into its remote counterpart.
// remoteKnown is false for folders this run just created (or, under
// dry run, would create); their remote side is empty and not listed.
// The returned error is non-nil only on context cancellation.
func (w *walker) walkDir(ctx context.Context, absDir string, relDir string, remoteParentID string, remoteKnown bool) error {
	canonical, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		w.report.addError(relDir, err)
		return nil
	}
	if w.visited[canonical] {
		w.engine.logger.Warn("Directory already visited, skipping",
			logging.F("path", relDir),
			logging.F("canonical", canonical),
		)
		return nil
	}
	w.visited[canonical] = true

	listing := newListing()
	if remoteKnown {
		reqCtx := w.newRequestContext(types.RequestTypeListOrSearch)
		fetched, err := w.engine.listDirectory(ctx, reqCtx, remoteParentID)
		if err != nil {
			w.report.addError(relDir, err)
			return nil
		}
		listing = fetched
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		w.report.addError(relDir, err)
		return nil
	}

	work := make([]os.DirEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Type()&os.ModeSymlink != 0 {
			w.engine.logger.Debug("Skipping symlink", logging.F("path", joinRel(relDir, entry.Name())))
			continue
		}
		if entry.IsDir() && !w.opts.Recursive {
			continue
		}
		work = append(work, entry)
	}
	w.total += len(work)

	for _, entry := range work {
		if err := ctx.Err(); err != nil {
			return err
		}

		rel := joinRel(relDir, entry.Name())
		absPath := filepath.Join(absDir, entry.Name())

		if entry.IsDir() {
			if err := w.handleDir(ctx, listing, absPath, rel, entry.Name(), remoteParentID); err != nil {
				return err
			}
		} else {
			w.handleFile(ctx, listing, absPath, rel, entry, remoteParentID)
		}

		w.processed++
		if w.opts.Progress != nil {
			w.opts.Progress(w.processed, w.total, entry.Name())
		}
	}

	return nil
}

// handleDir resolves or creates the remote folder and recurses into it.
// Returns an error only on context cancellation.
func (w *walker) handleDir(ctx context.Context, listing *Listing, absPath string, rel string, name string, remoteParentID string) error {
	if existing, ok := listing.Folders[name]; ok {
		return w.walkDir(ctx, absPath, rel, existing.ID, true)
	}

	if w.opts.DryRun {
		w.report.Created++
		return w.walkDir(ctx, absPath, rel, "", false)
	}

	reqCtx := w.newRequestContext(types.RequestTypeMutation)
	created, err := w.engine.store.CreateFolder(ctx, reqCtx, name, remoteParentID)
	if err != nil {
		w.report.addError(rel, err)
		return nil
	}
	w.report.Created++
	w.engine.logger.Debug("Folder created",
		logging.F("path", rel),
		logging.F("id", created.ID),
	)

	// Just created, so the remote side is empty. No listing needed.
	return w.walkDir(ctx, absPath, rel, created.ID, false)
}

// handleFile classifies one local file and performs the resulting action
func (w *walker) handleFile(ctx context.Context, listing *Listing, absPath string, rel string, entry os.DirEntry, remoteParentID string) {
	info, err := entry.Info()
	if err != nil {
		w.report.addError(rel, err)
		return
	}

	remote := listing.Files[entry.Name()]
	act := classify(info.ModTime(), remote)

	w.engine.logger.Debug("Entry classified",
		logging.F("path", rel),
		logging.F("action", act.String()),
	)

	if w.opts.DryRun {
		switch act {
		case actionCreate:
			w.report.Created++
		case actionUpdate:
			w.report.Updated++
		case actionSkip:
			w.report.Skipped++
		}
		return
	}

	switch act {
	case actionCreate:
		reqCtx := w.newRequestContext(types.RequestTypeMutation)
		if _, err := w.engine.store.Upload(ctx, reqCtx, absPath, entry.Name(), remoteParentID); err != nil {
			w.report.addError(rel, err)
			return
		}
		w.report.Created++
	case actionUpdate:
		reqCtx := w.newRequestContext(types.RequestTypeMutation)
		if _, err := w.engine.store.UpdateContent(ctx, reqCtx, remote.ID, absPath); err != nil {
			w.report.addError(rel, err)
			return
		}
		w.report.Updated++
	case actionSkip:
		w.report.Skipped++
	}
}

func (w *walker) newRequestContext(requestType types.RequestType) *types.RequestContext {
	return api.NewRequestContext(w.opts.Profile, w.opts.DriveID, requestType)
}

func joinRel(dir string, name string) string {
	if dir == "." {
		return name
	}
	return path.Join(dir, name)
}
