package api

import "fmt"

// Error is the single normalized shape every backend failure is reduced to.
// Status 0 means the request never reached the server, so callers can tell
// "server said no" apart from "server unreachable".
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("network error: %s", e.Message)
	}
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// IsTransport reports a network-level failure that never reached the server.
func (e *Error) IsTransport() bool {
	return e.Status == 0
}

// IsAuth reports the sole authoritative "session invalid" signal.
func (e *Error) IsAuth() bool {
	return e.Status == 401
}

// IsNotFound reports a missing-resource failure.
func (e *Error) IsNotFound() bool {
	return e.Status == 404
}

// IsValidation reports a client-input failure other than auth or not-found.
func (e *Error) IsValidation() bool {
	return e.Status >= 400 && e.Status < 500 && !e.IsAuth() && !e.IsNotFound()
}

// GenericMessage is used when the backend response carries no message field.
const GenericMessage = "Something went wrong. Please try again."
