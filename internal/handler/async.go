package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/partnerhub/partnerhub/internal/cache"
	"github.com/partnerhub/partnerhub/internal/handler/dto"
	"github.com/partnerhub/partnerhub/internal/signup"
)

// SignupPublisher enqueues user-creation requests for async processing.
type SignupPublisher interface {
	Publish(ctx context.Context, msg signup.Message) (string, error)
}

// SignupStatusStore tracks the lifecycle of async creation requests.
type SignupStatusStore interface {
	SetPending(ctx context.Context, requestID string) error
	SetFailed(ctx context.Context, requestID string) error
	Get(ctx context.Context, requestID string) (cache.SignupStatus, error)
}

// AsyncHandler handles the asynchronous user-creation endpoints.
type AsyncHandler struct {
	publisher SignupPublisher
	statuses  SignupStatusStore
	logger    *slog.Logger
}

// NewAsyncHandler creates a new AsyncHandler.
func NewAsyncHandler(publisher SignupPublisher, statuses SignupStatusStore, logger *slog.Logger) *AsyncHandler {
	return &AsyncHandler{
		publisher: publisher,
		statuses:  statuses,
		logger:    logger,
	}
}

// AsyncCreateResponse acknowledges an accepted async creation request.
type AsyncCreateResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
}

// AsyncStatusResponse reports the current state of an async request.
type AsyncStatusResponse struct {
	Status string `json:"status"`
}

// Create handles POST /api/users/async. The request is validated
// synchronously, then enqueued; the caller polls Status with the
// returned request ID.
func (h *AsyncHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		writeValidationError(w, r, fieldErrors)
		return
	}

	requestID := signup.NewRequestID()

	// PENDING goes in before the publish so a poll arriving between the
	// two never sees an unknown request ID.
	if err := h.statuses.SetPending(r.Context(), requestID); err != nil {
		h.logger.Error("status_write_failed", "request_id", requestID, "error", err)
		writeError(w, r, http.StatusInternalServerError, "an internal error occurred")
		return
	}

	if _, err := h.publisher.Publish(r.Context(), signup.Message{
		RequestID: requestID,
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
	}); err != nil {
		h.logger.Error("signup_publish_failed", "request_id", requestID, "error", err)
		if ferr := h.statuses.SetFailed(r.Context(), requestID); ferr != nil {
			h.logger.Error("status_write_failed", "request_id", requestID, "error", ferr)
		}
		writeError(w, r, http.StatusInternalServerError, "an internal error occurred")
		return
	}

	h.logger.Info("signup_accepted", "request_id", requestID)

	writeJSON(w, http.StatusAccepted, AsyncCreateResponse{
		Status:    string(cache.SignupPending),
		RequestID: requestID,
	})
}

// Status handles GET /api/users/async/status/{requestId}.
func (h *AsyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestId")
	if requestID == "" {
		writeError(w, r, http.StatusBadRequest, "request id is required")
		return
	}

	status, err := h.statuses.Get(r.Context(), requestID)
	if err != nil {
		if errors.Is(err, cache.ErrStatusNotFound) {
			writeError(w, r, http.StatusNotFound, "unknown or expired request id")
			return
		}
		h.logger.Error("status_read_failed", "request_id", requestID, "error", err)
		writeError(w, r, http.StatusInternalServerError, "an internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, AsyncStatusResponse{Status: string(status)})
}
