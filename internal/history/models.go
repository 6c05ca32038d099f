package history

import "time"

// Target is a saved mirror configuration
type Target struct {
	ID           string
	LocalRoot    string
	RemoteRootID string
	Recursive    bool
	CreatedAt    time.Time
}

// Run records the outcome of one mirror run against a target
type Run struct {
	ID         int64
	TargetID   string
	StartedAt  time.Time
	Duration   time.Duration
	Created    int
	Updated    int
	Skipped    int
	ErrorCount int
}
