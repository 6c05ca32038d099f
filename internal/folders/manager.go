package folders

import (
	"context"
	"fmt"

	"github.com/dl-alexandre/gdm/internal/api"
	"github.com/dl-alexandre/gdm/internal/types"
	"github.com/dl-alexandre/gdm/internal/utils"
	"google.golang.org/api/drive/v3"
)

const listFields = "nextPageToken, files(id, name, mimeType, size, modifiedTime, md5Checksum, parents, trashed)"

// Manager handles folder operations
type Manager struct {
	client *api.Client
}

// NewManager creates a new folder manager
func NewManager(client *api.Client) *Manager {
	return &Manager{client: client}
}

// Create creates a folder under the given parent
func (m *Manager) Create(ctx context.Context, reqCtx *types.RequestContext, name string, parentID string) (*types.DriveFile, error) {
	metadata := &drive.File{
		Name:     name,
		MimeType: utils.MimeTypeFolder,
	}
	if parentID != "" {
		metadata.Parents = []string{parentID}
	}

	created, err := api.ExecuteWithRetry(ctx, m.client, reqCtx, func() (*drive.File, error) {
		call := m.client.Service().Files.Create(metadata).
			Fields("id, name, mimeType, createdTime, modifiedTime, parents").
			SupportsAllDrives(true).
			Context(ctx)
		return call.Do()
	})
	if err != nil {
		return nil, err
	}

	return convertDriveFile(created), nil
}

// clampPageSize keeps page sizes inside the range the Drive API accepts
func clampPageSize(size int64) int64 {
	if size <= 0 {
		return utils.DefaultPageSize
	}
	if size > utils.MaxPageSize {
		return utils.MaxPageSize
	}
	return size
}

// List returns one page of non-trashed children of a folder
func (m *Manager) List(ctx context.Context, reqCtx *types.RequestContext, parentID string, pageSize int64, pageToken string) (*types.FileListResult, error) {
	query := fmt.Sprintf("'%s' in parents and trashed = false", parentID)

	result, err := api.ExecuteWithRetry(ctx, m.client, reqCtx, func() (*drive.FileList, error) {
		call := m.client.Service().Files.List().
			Q(query).
			Fields(listFields).
			PageSize(clampPageSize(pageSize)).
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		if reqCtx.DriveID != "" {
			call = call.DriveId(reqCtx.DriveID).Corpora("drive")
		}
		return call.Do()
	})
	if err != nil {
		return nil, err
	}

	files := make([]*types.DriveFile, 0, len(result.Files))
	for _, f := range result.Files {
		files = append(files, convertDriveFile(f))
	}

	return &types.FileListResult{
		Files:         files,
		NextPageToken: result.NextPageToken,
	}, nil
}

// ListAll returns every non-trashed child of a folder, following pagination
func (m *Manager) ListAll(ctx context.Context, reqCtx *types.RequestContext, parentID string) ([]*types.DriveFile, error) {
	var all []*types.DriveFile
	pageToken := ""

	for {
		page, err := m.List(ctx, reqCtx, parentID, utils.DefaultPageSize, pageToken)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Files...)
		if page.NextPageToken == "" {
			return all, nil
		}
		pageToken = page.NextPageToken
	}
}

// Get retrieves folder metadata by ID
func (m *Manager) Get(ctx context.Context, reqCtx *types.RequestContext, folderID string) (*types.DriveFile, error) {
	file, err := api.ExecuteWithRetry(ctx, m.client, reqCtx, func() (*drive.File, error) {
		call := m.client.Service().Files.Get(folderID).
			Fields("id, name, mimeType, modifiedTime, parents, trashed").
			SupportsAllDrives(true).
			Context(ctx)
		return call.Do()
	})
	if err != nil {
		return nil, err
	}

	if file.MimeType != utils.MimeTypeFolder {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
			fmt.Sprintf("'%s' is not a folder", folderID)).
			WithContext("mimeType", file.MimeType).
			Build())
	}

	return convertDriveFile(file), nil
}

// convertDriveFile converts a Drive API file to our internal type
func convertDriveFile(f *drive.File) *types.DriveFile {
	return &types.DriveFile{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		Size:         f.Size,
		MD5Checksum:  f.Md5Checksum,
		CreatedTime:  f.CreatedTime,
		ModifiedTime: f.ModifiedTime,
		Parents:      f.Parents,
		Trashed:      f.Trashed,
	}
}
