// Package dto defines HTTP request and response payloads.
package dto

// FieldError describes a single invalid request field.
type FieldError struct {
	Field         string `json:"field"`
	Message       string `json:"message"`
	RejectedValue string `json:"rejectedValue"`
}

// ErrorResponse is the error body returned by every failing endpoint.
type ErrorResponse struct {
	Timestamp string       `json:"timestamp"`
	Status    int          `json:"status"`
	Error     string       `json:"error"`
	Message   string       `json:"message,omitempty"`
	Path      string       `json:"path"`
	Errors    []FieldError `json:"errors,omitempty"`
}
