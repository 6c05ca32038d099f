package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dl-alexandre/gdm/internal/api"
	"github.com/dl-alexandre/gdm/internal/types"
	"github.com/dl-alexandre/gdm/internal/utils"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// newMetadataClient builds an API client backed by a server that answers
// Files.Get with canned metadata keyed by file ID.
func newMetadataClient(t *testing.T, files map[string]*drive.File) *api.Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		id := parts[len(parts)-1]
		f, ok := files[id]
		if !ok {
			http.Error(w, `{"error":{"code":404,"message":"File not found"}}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(f)
	}))
	t.Cleanup(srv.Close)

	service, err := drive.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL))
	if err != nil {
		t.Fatalf("drive.NewService() error = %v", err)
	}

	return api.NewClient(service, 0, 1, nil)
}

func TestResolveRemoteFolderValidatesRawID(t *testing.T) {
	client := newMetadataClient(t, map[string]*drive.File{
		"folder-1": {Id: "folder-1", Name: "docs", MimeType: utils.MimeTypeFolder},
		"file-1":   {Id: "file-1", Name: "notes.txt", MimeType: "text/plain"},
	})
	flags := types.GlobalFlags{Profile: "default"}

	t.Run("folder ID accepted", func(t *testing.T) {
		id, err := resolveRemoteFolder(context.Background(), client, flags, "folder-1")
		if err != nil {
			t.Fatalf("resolveRemoteFolder() error = %v", err)
		}
		if id != "folder-1" {
			t.Errorf("id = %q, want folder-1", id)
		}
	})

	t.Run("file ID rejected", func(t *testing.T) {
		_, err := resolveRemoteFolder(context.Background(), client, flags, "file-1")
		appErr, ok := err.(*utils.AppError)
		if !ok {
			t.Fatalf("error = %v, want *utils.AppError", err)
		}
		if appErr.CLIError.Code != utils.ErrCodeInvalidArgument {
			t.Errorf("Code = %q, want %q", appErr.CLIError.Code, utils.ErrCodeInvalidArgument)
		}
	})

	t.Run("unknown ID rejected", func(t *testing.T) {
		_, err := resolveRemoteFolder(context.Background(), client, flags, "missing")
		appErr, ok := err.(*utils.AppError)
		if !ok {
			t.Fatalf("error = %v, want *utils.AppError", err)
		}
		if appErr.CLIError.Code != utils.ErrCodeFileNotFound {
			t.Errorf("Code = %q, want %q", appErr.CLIError.Code, utils.ErrCodeFileNotFound)
		}
	})
}

func TestWriteCommandErrorMapsCancellation(t *testing.T) {
	out := NewOutputWriter(types.OutputFormatJSON, true, false)

	err := writeCommandError(out, "mirror", context.Canceled)
	appErr, ok := err.(*utils.AppError)
	if !ok {
		t.Fatalf("error = %v, want *utils.AppError", err)
	}
	if appErr.CLIError.Code != utils.ErrCodeCancelled {
		t.Errorf("Code = %q, want %q", appErr.CLIError.Code, utils.ErrCodeCancelled)
	}
}
