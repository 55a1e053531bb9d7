package model

// ErrorResponse is the error envelope the platform API returns on non-2xx
// responses. Message is optional; callers fall back to a generic message
// when it is empty.
type ErrorResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Text returns the best available human-readable error message.
func (e ErrorResponse) Text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}
