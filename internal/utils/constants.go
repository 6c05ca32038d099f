package utils

// Upload thresholds (binary units)
const (
	UploadSimpleMaxBytes = 5 * 1024 * 1024 // 5 MiB
	UploadChunkSize      = 8 * 1024 * 1024 // 8 MiB
)

// OAuth scopes
const (
	ScopeFull = "https://www.googleapis.com/auth/drive"
)

// ScopesMirror is the scope set requested at login; mirroring needs
// full read/write access to the target tree.
var ScopesMirror = []string{
	ScopeFull,
}

// Listing configuration
const (
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

// Retry configuration
const (
	DefaultMaxRetries   = 3
	DefaultRetryDelayMs = 1000
	MaxRetryDelayMs     = 32000
)

// Schema version
const SchemaVersion = "1.0"

// Drive MIME types
const (
	MimeTypeFolder = "application/vnd.google-apps.folder"
)
