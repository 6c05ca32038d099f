package files

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dl-alexandre/gdm/internal/api"
	"github.com/dl-alexandre/gdm/internal/types"
	"github.com/dl-alexandre/gdm/internal/utils"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

const uploadFields = "id, name, mimeType, size, md5Checksum, createdTime, modifiedTime, parents"

// uploadType selects the upload protocol based on file size
type uploadType string

const (
	uploadTypeMultipart uploadType = "multipart"
	uploadTypeResumable uploadType = "resumable"
)

// Manager handles file operations
type Manager struct {
	client *api.Client
}

// NewManager creates a new file manager
func NewManager(client *api.Client) *Manager {
	return &Manager{client: client}
}

// selectUploadType picks the upload protocol for a file of the given size
func selectUploadType(size int64) uploadType {
	if size <= utils.UploadSimpleMaxBytes {
		return uploadTypeMultipart
	}
	return uploadTypeResumable
}

// Upload creates a new file under the given parent from a local path
func (m *Manager) Upload(ctx context.Context, reqCtx *types.RequestContext, localPath string, name string, parentID string) (*types.DriveFile, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat local file: %w", err)
	}

	if name == "" {
		name = filepath.Base(localPath)
	}

	metadata := &drive.File{Name: name}
	if parentID != "" {
		metadata.Parents = []string{parentID}
	}

	mode := selectUploadType(info.Size())

	created, err := api.ExecuteWithRetry(ctx, m.client, reqCtx, func() (*drive.File, error) {
		if _, err := file.Seek(0, 0); err != nil {
			return nil, fmt.Errorf("failed to rewind local file: %w", err)
		}
		call := m.client.Service().Files.Create(metadata).
			Fields(uploadFields).
			SupportsAllDrives(true).
			Context(ctx)
		if mode == uploadTypeResumable {
			call = call.Media(file, googleapi.ChunkSize(utils.UploadChunkSize))
		} else {
			call = call.Media(file)
		}
		return call.Do()
	})
	if err != nil {
		return nil, err
	}

	return convertDriveFile(created), nil
}

// UpdateContent replaces the content of an existing file from a local path
func (m *Manager) UpdateContent(ctx context.Context, reqCtx *types.RequestContext, fileID string, localPath string) (*types.DriveFile, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat local file: %w", err)
	}

	mode := selectUploadType(info.Size())

	updated, err := api.ExecuteWithRetry(ctx, m.client, reqCtx, func() (*drive.File, error) {
		if _, err := file.Seek(0, 0); err != nil {
			return nil, fmt.Errorf("failed to rewind local file: %w", err)
		}
		call := m.client.Service().Files.Update(fileID, &drive.File{}).
			Fields(uploadFields).
			SupportsAllDrives(true).
			Context(ctx)
		if mode == uploadTypeResumable {
			call = call.Media(file, googleapi.ChunkSize(utils.UploadChunkSize))
		} else {
			call = call.Media(file)
		}
		return call.Do()
	})
	if err != nil {
		return nil, err
	}

	return convertDriveFile(updated), nil
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
