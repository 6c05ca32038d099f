package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dl-alexandre/gdm/internal/logging"
	"github.com/dl-alexandre/gdm/internal/types"
	"github.com/dl-alexandre/gdm/internal/utils"
	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// refreshBuffer is how long before expiry a token is treated as stale
const refreshBuffer = 5 * time.Minute

// Manager handles credential lifecycle for profiles
type Manager struct {
	storage StorageBackend
	config  *oauth2.Config
	logger  logging.Logger
}

// NewManager creates an auth manager over the given storage backend
func NewManager(storage StorageBackend, config *oauth2.Config, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Manager{
		storage: storage,
		config:  config,
		logger:  logger,
	}
}

func credentialKey(profile string) string {
	return "profile-" + profile
}

// SaveCredentials persists credentials for a profile
func (m *Manager) SaveCredentials(profile string, creds *types.Credentials) error {
	stored := types.StoredCredentials{
		Profile:             profile,
		AccessToken:         creds.AccessToken,
		RefreshToken:        creds.RefreshToken,
		ExpiryDate:          creds.ExpiryDate.UTC().Format(time.RFC3339),
		Scopes:              creds.Scopes,
		Type:                creds.Type,
		ServiceAccountEmail: creds.ServiceAccountEmail,
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to serialize credentials: %w", err)
	}

	if err := m.storage.Store(credentialKey(profile), data); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	m.logger.Debug("Credentials saved",
		logging.F("profile", profile),
		logging.F("backend", m.storage.Name()),
	)
	return nil
}

// LoadCredentials retrieves credentials for a profile
func (m *Manager) LoadCredentials(profile string) (*types.Credentials, error) {
	data, err := m.storage.Retrieve(credentialKey(profile))
	if err != nil {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeAuthRequired,
			fmt.Sprintf("no credentials found for profile '%s'", profile)).
			WithContext("suggestedAction", "run 'gdm auth login' to authenticate").
			Build())
	}

	var stored types.StoredCredentials
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse stored credentials: %w", err)
	}

	expiry, err := time.Parse(time.RFC3339, stored.ExpiryDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credential expiry: %w", err)
	}

	return &types.Credentials{
		AccessToken:         stored.AccessToken,
		RefreshToken:        stored.RefreshToken,
		ExpiryDate:          expiry,
		Scopes:              stored.Scopes,
		Type:                stored.Type,
		ServiceAccountEmail: stored.ServiceAccountEmail,
	}, nil
}

// DeleteCredentials removes stored credentials for a profile
func (m *Manager) DeleteCredentials(profile string) error {
	if err := m.storage.Delete(credentialKey(profile)); err != nil {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	m.logger.Info("Credentials deleted", logging.F("profile", profile))
	return nil
}

// NeedsRefresh reports whether the credentials expire within the buffer
func (m *Manager) NeedsRefresh(creds *types.Credentials) bool {
	return time.Now().Add(refreshBuffer).After(creds.ExpiryDate)
}

// RefreshCredentials exchanges the refresh token for a fresh access token
func (m *Manager) RefreshCredentials(ctx context.Context, profile string, creds *types.Credentials) (*types.Credentials, error) {
	if creds.RefreshToken == "" {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeAuthExpired,
			"credentials expired and no refresh token is available").
			WithContext("suggestedAction", "run 'gdm auth login' to re-authenticate").
			Build())
	}
	if m.config == nil {
		return nil, fmt.Errorf("oauth config required to refresh credentials")
	}

	source := m.config.TokenSource(ctx, &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		Expiry:       creds.ExpiryDate,
	})

	token, err := source.Token()
	if err != nil {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeAuthExpired,
			fmt.Sprintf("token refresh failed: %v", err)).
			WithContext("suggestedAction", "run 'gdm auth login' to re-authenticate").
			Build())
	}

	refreshed := &types.Credentials{
		AccessToken:         token.AccessToken,
		RefreshToken:        token.RefreshToken,
		ExpiryDate:          token.Expiry,
		Scopes:              creds.Scopes,
		Type:                creds.Type,
		ServiceAccountEmail: creds.ServiceAccountEmail,
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = creds.RefreshToken
	}

	if err := m.SaveCredentials(profile, refreshed); err != nil {
		return nil, err
	}

	m.logger.Debug("Credentials refreshed", logging.F("profile", profile))
	return refreshed, nil
}

// GetValidCredentials loads credentials and refreshes them when stale
func (m *Manager) GetValidCredentials(ctx context.Context, profile string) (*types.Credentials, error) {
	creds, err := m.LoadCredentials(profile)
	if err != nil {
		return nil, err
	}

	if m.NeedsRefresh(creds) {
		return m.RefreshCredentials(ctx, profile, creds)
	}

	return creds, nil
}

// GetHTTPClient builds an authenticated HTTP client for the profile
func (m *Manager) GetHTTPClient(ctx context.Context, profile string) (*http.Client, error) {
	creds, err := m.GetValidCredentials(ctx, profile)
	if err != nil {
		return nil, err
	}

	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		Expiry:       creds.ExpiryDate,
	}

	if m.config != nil {
		return m.config.Client(ctx, token), nil
	}
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(token)), nil
}

// GetDriveService builds an authenticated Drive service for the profile
func (m *Manager) GetDriveService(ctx context.Context, profile string) (*drive.Service, error) {
	client, err := m.GetHTTPClient(ctx, profile)
	if err != nil {
		return nil, err
	}

	service, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	return service, nil
}
