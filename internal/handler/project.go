package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/partnerhub/partnerhub/internal/handler/dto"
	"github.com/partnerhub/partnerhub/internal/model"
	"github.com/partnerhub/partnerhub/internal/service"
)

// ProjectService is the subset of the project service the handler depends on.
type ProjectService interface {
	Add(ctx context.Context, ownerID int64, input service.AddProjectInput) (*model.ExternalProject, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*model.ExternalProject, error)
	Update(ctx context.Context, ownerID int64, projectID, name string) (*model.ExternalProject, error)
}

// ProjectHandler handles HTTP requests for external project operations.
type ProjectHandler struct {
	svc    ProjectService
	logger *slog.Logger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(svc ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		svc:    svc,
		logger: logger,
	}
}

// Add handles POST /api/users/{id}/projects.
func (h *ProjectHandler) Add(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req dto.AddProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		writeValidationError(w, r, fieldErrors)
		return
	}

	project, err := h.svc.Add(r.Context(), ownerID, service.AddProjectInput{
		ID:   req.ID,
		Name: req.Name,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("project_added", "project_id", project.ID, "owner_id", ownerID)

	writeJSON(w, http.StatusCreated, dto.ToProjectResponse(project))
}

// List handles GET /api/users/{id}/projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerID(w, r)
	if !ok {
		return
	}

	projects, err := h.svc.ListByOwner(r.Context(), ownerID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProjectListResponse(projects))
}

// Update handles PUT /api/users/{id}/projects/{projectId}.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerID(w, r)
	if !ok {
		return
	}

	projectID := chi.URLParam(r, "projectId")
	if projectID == "" {
		writeError(w, r, http.StatusBadRequest, "project id is required")
		return
	}

	var req dto.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		writeValidationError(w, r, fieldErrors)
		return
	}

	project, err := h.svc.Update(r.Context(), ownerID, projectID, req.Name)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("project_updated", "project_id", project.ID, "owner_id", ownerID)

	writeJSON(w, http.StatusOK, dto.ToProjectResponse(project))
}

// ownerID parses the {id} route parameter, writing a 400 on failure.
func ownerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

// handleServiceError maps service errors to HTTP responses.
func (h *ProjectHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, r, http.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrProjectNotFound):
		writeError(w, r, http.StatusNotFound, "project not found")
	case errors.Is(err, service.ErrProjectExists):
		writeError(w, r, http.StatusConflict, "project has already been registered")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, r, http.StatusInternalServerError, "an internal error occurred")
	}
}
