package mirror

import (
	"context"

	"github.com/dl-alexandre/gdm/internal/types"
	"github.com/dl-alexandre/gdm/internal/utils"
)

// Listing is one folder's children split by kind and keyed by exact name.
// Names collide last-wins; Drive allows duplicate names but a mirror
// target managed by this tool will not produce them.
type Listing struct {
	Folders map[string]*types.DriveFile
	Files   map[string]*types.DriveFile
}

func newListing() *Listing {
	return &Listing{
		Folders: make(map[string]*types.DriveFile),
		Files:   make(map[string]*types.DriveFile),
	}
}

func buildListing(children []*types.DriveFile) *Listing {
	listing := newListing()
	for _, child := range children {
		if child.Trashed {
			continue
		}
		if child.MimeType == utils.MimeTypeFolder {
			listing.Folders[child.Name] = child
		} else {
			listing.Files[child.Name] = child
		}
	}
	return listing
}

// listDirectory fetches one complete snapshot of a remote folder
func (e *Engine) listDirectory(ctx context.Context, reqCtx *types.RequestContext, folderID string) (*Listing, error) {
	children, err := e.store.ListChildren(ctx, reqCtx, folderID)
	if err != nil {
		return nil, err
	}
	return buildListing(children), nil
}
