// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/partnerhub/partnerhub/internal/handler/dto"
)

// NotFound handles 404 responses for unmatched routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "resource not found")
}

// MethodNotAllowed handles 405 responses.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// The status line is already on the wire, nothing left to do.
		_ = err
	}
}

// writeError writes the standard error body without field details.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      r.URL.Path,
	})
}

// writeValidationError writes a 400 with one entry per invalid field.
func writeValidationError(w http.ResponseWriter, r *http.Request, fieldErrors []dto.FieldError) {
	writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    http.StatusBadRequest,
		Error:     http.StatusText(http.StatusBadRequest),
		Message:   "validation failed",
		Path:      r.URL.Path,
		Errors:    fieldErrors,
	})
}
