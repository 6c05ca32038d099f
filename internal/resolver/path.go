package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/dl-alexandre/gdm/internal/api"
	"github.com/dl-alexandre/gdm/internal/types"
	"github.com/dl-alexandre/gdm/internal/utils"
	"google.golang.org/api/drive/v3"
)

// PathResolver resolves slash-separated folder paths to Drive folder IDs.
// Anything not starting with '/' is treated as a raw folder ID.
type PathResolver struct {
	client *api.Client
}

// NewPathResolver creates a path resolver
func NewPathResolver(client *api.Client) *PathResolver {
	return &PathResolver{client: client}
}

// Resolve turns a path like "/backups/photos" into a folder ID.
// "/" resolves to the root alias.
func (r *PathResolver) Resolve(ctx context.Context, reqCtx *types.RequestContext, path string) (string, error) {
	if !strings.HasPrefix(path, "/") {
		return path, nil
	}

	currentID := "root"
	if reqCtx.DriveID != "" {
		currentID = reqCtx.DriveID
	}

	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return currentID, nil
	}

	for _, segment := range strings.Split(trimmed, "/") {
		id, err := r.lookupChildFolder(ctx, reqCtx, currentID, segment, path)
		if err != nil {
			return "", err
		}
		currentID = id
	}

	return currentID, nil
}

// lookupChildFolder finds exactly one non-trashed folder named segment under parentID
func (r *PathResolver) lookupChildFolder(ctx context.Context, reqCtx *types.RequestContext, parentID string, segment string, fullPath string) (string, error) {
	query := fmt.Sprintf("name = '%s' and '%s' in parents and mimeType = '%s' and trashed = false",
		escapeQueryValue(segment), parentID, utils.MimeTypeFolder)

	result, err := api.ExecuteWithRetry(ctx, r.client, reqCtx, func() (*drive.FileList, error) {
		call := r.client.Service().Files.List().
			Q(query).
			Fields("files(id, name)").
			PageSize(2).
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			Context(ctx)
		if reqCtx.DriveID != "" {
			call = call.DriveId(reqCtx.DriveID).Corpora("drive")
		}
		return call.Do()
	})
	if err != nil {
		return "", err
	}

	switch len(result.Files) {
	case 0:
		return "", utils.NewAppError(utils.NewCLIError(utils.ErrCodeFileNotFound,
			fmt.Sprintf("folder '%s' not found in path '%s'", segment, fullPath)).
			WithContext("parentId", parentID).
			Build())
	case 1:
		return result.Files[0].Id, nil
	default:
		return "", utils.NewAppError(utils.NewCLIError(utils.ErrCodeAmbiguousPath,
			fmt.Sprintf("multiple folders named '%s' in path '%s'", segment, fullPath)).
			WithContext("parentId", parentID).
			WithContext("suggestedAction", "use the folder ID directly").
			Build())
	}
}

// escapeQueryValue escapes single quotes and backslashes for Drive query strings
func escapeQueryValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `'`, `\'`)
}
