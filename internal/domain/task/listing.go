package task

const (
	TypeListing      = "ListingTask"
	TypeListingRetry = "ListingRetryTask"
)

// ListingTask asks a worker to drain one listing resource into storage
type ListingTask struct {
	Resource string            `json:"resource"`
	Params   map[string]string `json:"params,omitempty"`
}

func (t *ListingTask) TaskType() string {
	return TypeListing
}

func (t *ListingTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}

// ListingRetryTask re-runs a listing that failed part way; the worker resumes
// from the last checkpointed page.
type ListingRetryTask struct {
	Resource string            `json:"resource"`
	Params   map[string]string `json:"params,omitempty"`
	Attempt  int               `json:"attempt"` // Number of failed runs so far
	Error    string            `json:"error"`   // Error message from the last failure
}

func (t *ListingRetryTask) TaskType() string {
	return TypeListingRetry
}

func (t *ListingRetryTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
