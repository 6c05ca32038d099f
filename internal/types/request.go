package types

// RequestType classifies API requests for logging and shaping
type RequestType string

const (
	RequestTypeListOrSearch RequestType = "list_or_search"
	RequestTypeGet          RequestType = "get"
	RequestTypeMutation     RequestType = "mutation"
)

// RequestContext carries per-request metadata through API calls
type RequestContext struct {
	Profile           string
	DriveID           string
	InvolvedFileIDs   []string
	InvolvedParentIDs []string
	RequestType       RequestType
	TraceID           string
}
