package cli

import (
	"context"
	"strings"

	"github.com/dl-alexandre/gdm/internal/api"
	"github.com/dl-alexandre/gdm/internal/auth"
	"github.com/dl-alexandre/gdm/internal/config"
	"github.com/dl-alexandre/gdm/internal/folders"
	"github.com/dl-alexandre/gdm/internal/resolver"
	"github.com/dl-alexandre/gdm/internal/types"
	"github.com/dl-alexandre/gdm/internal/utils"
	"golang.org/x/oauth2"
)

// getAuthManager builds the auth manager from config and storage
func getAuthManager(cfg *config.Config) (*auth.Manager, error) {
	configDir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}

	storage, err := auth.NewStorage(configDir)
	if err != nil {
		return nil, err
	}

	// An OAuth config is only needed for login and token refresh
	var oauthCfg *oauth2.Config
	if cfg.ClientSecretPath != "" {
		oauthCfg, err = auth.LoadOAuthConfig(cfg.ClientSecretPath, utils.ScopesMirror)
		if err != nil {
			return nil, err
		}
	}

	return auth.NewManager(storage, oauthCfg, GetLogger()), nil
}

// getClient builds an authenticated API client for the current profile
func getClient(ctx context.Context, flags types.GlobalFlags) (*api.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	manager, err := getAuthManager(cfg)
	if err != nil {
		return nil, err
	}

	service, err := manager.GetDriveService(ctx, flags.Profile)
	if err != nil {
		return nil, err
	}

	return api.NewClient(service, cfg.MaxRetries, cfg.RetryBaseDelay, GetLogger()), nil
}

// resolveRemoteFolder turns a folder path or raw ID into a validated folder ID
func resolveRemoteFolder(ctx context.Context, client *api.Client, flags types.GlobalFlags, folder string) (string, error) {
	if strings.HasPrefix(folder, "/") {
		pathResolver := resolver.NewPathResolver(client)
		reqCtx := api.NewRequestContext(flags.Profile, flags.DriveID, types.RequestTypeListOrSearch)
		return pathResolver.Resolve(ctx, reqCtx, folder)
	}

	// Raw IDs are verified up front so a file ID fails here instead of
	// partway through the walk.
	reqCtx := api.NewRequestContext(flags.Profile, flags.DriveID, types.RequestTypeGet)
	f, err := folders.NewManager(client).Get(ctx, reqCtx, folder)
	if err != nil {
		return "", err
	}
	return f.ID, nil
}
