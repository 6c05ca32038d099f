package mirror

import (
	"context"

	"github.com/dl-alexandre/gdm/internal/api"
	"github.com/dl-alexandre/gdm/internal/files"
	"github.com/dl-alexandre/gdm/internal/folders"
	"github.com/dl-alexandre/gdm/internal/types"
)

// Store is the remote side of a mirror run. The engine only ever lists
// children, creates folders, and uploads or rewrites file content; it
// never deletes anything remotely.
type Store interface {
	// ListChildren returns every non-trashed direct child of folderID.
	ListChildren(ctx context.Context, reqCtx *types.RequestContext, folderID string) ([]*types.DriveFile, error)

	// CreateFolder creates a folder named name under parentID.
	CreateFolder(ctx context.Context, reqCtx *types.RequestContext, name string, parentID string) (*types.DriveFile, error)

	// Upload creates a new file under parentID from localPath.
	Upload(ctx context.Context, reqCtx *types.RequestContext, localPath string, name string, parentID string) (*types.DriveFile, error)

	// UpdateContent replaces the content of fileID from localPath.
	UpdateContent(ctx context.Context, reqCtx *types.RequestContext, fileID string, localPath string) (*types.DriveFile, error)
}

// driveStore adapts the file and folder managers to the Store interface
type driveStore struct {
	files   *files.Manager
	folders *folders.Manager
}

// NewDriveStore builds a Store backed by the Drive API
func NewDriveStore(client *api.Client) Store {
	return &driveStore{
		files:   files.NewManager(client),
		folders: folders.NewManager(client),
	}
}

func (s *driveStore) ListChildren(ctx context.Context, reqCtx *types.RequestContext, folderID string) ([]*types.DriveFile, error) {
	return s.folders.ListAll(ctx, reqCtx, folderID)
}

func (s *driveStore) CreateFolder(ctx context.Context, reqCtx *types.RequestContext, name string, parentID string) (*types.DriveFile, error) {
	return s.folders.Create(ctx, reqCtx, name, parentID)
}

func (s *driveStore) Upload(ctx context.Context, reqCtx *types.RequestContext, localPath string, name string, parentID string) (*types.DriveFile, error) {
	return s.files.Upload(ctx, reqCtx, localPath, name, parentID)
}

func (s *driveStore) UpdateContent(ctx context.Context, reqCtx *types.RequestContext, fileID string, localPath string) (*types.DriveFile, error) {
	return s.files.UpdateContent(ctx, reqCtx, fileID, localPath)
}
