package mirror

// EntryError records a single entry that failed during a run
type EntryError struct {
	RelativePath string `json:"relativePath"`
	Message      string `json:"message"`
}

// Report summarizes a mirror run. Counters only ever reflect work that
// was actually attempted; failed entries land in Errors instead.
type Report struct {
	Created int          `json:"created"`
	Updated int          `json:"updated"`
	Skipped int          `json:"skipped"`
	Errors  []EntryError `json:"errors"`
}

func newReport() *Report {
	return &Report{Errors: []EntryError{}}
}

func (r *Report) addError(relativePath string, err error) {
	r.Errors = append(r.Errors, EntryError{
		RelativePath: relativePath,
		Message:      err.Error(),
	})
}

// Processed returns the number of entries that were acted on successfully
func (r *Report) Processed() int {
	return r.Created + r.Updated + r.Skipped
}

// HasErrors reports whether any entry failed
func (r *Report) HasErrors() bool {
	return len(r.Errors) > 0
}
