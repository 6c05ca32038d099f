package auth

import (
	"context"
	"fmt"
	"os"

	"github.com/dl-alexandre/gdm/internal/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// LoadOAuthConfig reads a client secret JSON file and builds an OAuth config
func LoadOAuthConfig(clientSecretPath string, scopes []string) (*oauth2.Config, error) {
	data, err := os.ReadFile(clientSecretPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read client secret file: %w", err)
	}

	config, err := google.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client secret file: %w", err)
	}

	return config, nil
}

// AuthURL returns the consent URL for the installed-app flow
func AuthURL(config *oauth2.Config) string {
	return config.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeCode trades an authorization code for a token
func ExchangeCode(ctx context.Context, config *oauth2.Config, code string) (*oauth2.Token, error) {
	token, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token, nil
}

// LoadServiceAccount builds a token source from a service account key file
func LoadServiceAccount(ctx context.Context, keyPath string) (oauth2.TokenSource, error) {
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account key: %w", err)
	}

	config, err := google.JWTConfigFromJSON(data, utils.ScopesMirror...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account key: %w", err)
	}

	return config.TokenSource(ctx), nil
}
