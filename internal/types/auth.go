package types

import "time"

// AuthType identifies how credentials were obtained
type AuthType string

const (
	AuthTypeOAuth          AuthType = "oauth"
	AuthTypeServiceAccount AuthType = "service_account"
)

// Credentials holds live tokens for a profile
type Credentials struct {
	AccessToken         string
	RefreshToken        string
	ExpiryDate          time.Time
	Scopes              []string
	Type                AuthType
	ServiceAccountEmail string
}

// StoredCredentials is the serialized form kept in the storage backend
type StoredCredentials struct {
	Profile             string   `json:"profile"`
	AccessToken         string   `json:"accessToken"`
	RefreshToken        string   `json:"refreshToken,omitempty"`
	ExpiryDate          string   `json:"expiryDate"`
	Scopes              []string `json:"scopes"`
	Type                AuthType `json:"type"`
	ServiceAccountEmail string   `json:"serviceAccountEmail,omitempty"`
}
