package domain

import "fmt"

// RemoteError is a non-2xx answer from the storefront backend.
type RemoteError struct {
	StatusCode int
	Message    string // server supplied, may be empty
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}
