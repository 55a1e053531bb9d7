package api

import "fmt"

// HTTPError is a well-formed non-2xx response from the platform API. It is
// terminal: the request reached the server and was rejected, so it is never
// retried. Message carries the server's own error text when the body held
// the standard envelope.
type HTTPError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("api: request failed with status %d", e.Status)
}

// NetworkError is a transport-level failure that survived the full retry
// budget. Err is the last attempt's underlying error.
type NetworkError struct {
	Attempts int
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("api: request failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
