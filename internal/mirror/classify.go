package mirror

import (
	"time"

	"github.com/dl-alexandre/gdm/internal/types"
)

type action int

const (
	actionCreate action = iota
	actionUpdate
	actionSkip
)

func (a action) String() string {
	switch a {
	case actionCreate:
		return "create"
	case actionUpdate:
		return "update"
	default:
		return "skip"
	}
}

// classify decides what to do with a local file given its remote
// counterpart. No remote counterpart means create. An unparsable remote
// timestamp means update, so a broken timestamp can never cause a file
// to be silently left stale. Otherwise the local mtime must be strictly
// after the remote one for an update; equal or older means skip.
func classify(localMTime time.Time, remote *types.DriveFile) action {
	if remote == nil {
		return actionCreate
	}

	remoteMTime, err := time.Parse(time.RFC3339, remote.ModifiedTime)
	if err != nil {
		return actionUpdate
	}

	if localMTime.UTC().After(remoteMTime.UTC()) {
		return actionUpdate
	}
	return actionSkip
}
