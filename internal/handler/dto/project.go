package dto

import (
	"time"

	"github.com/partnerhub/partnerhub/internal/model"
)

// maxProjectIDLength mirrors the storage schema.
const maxProjectIDLength = 200

// AddProjectRequest is the payload to register an external project.
type AddProjectRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Validate returns one entry per invalid field, empty when valid.
func (r AddProjectRequest) Validate() []FieldError {
	var errs []FieldError

	if r.ID == "" {
		errs = append(errs, FieldError{Field: "id", Message: "project ID must not be blank"})
	} else if len(r.ID) > maxProjectIDLength {
		errs = append(errs, FieldError{Field: "id", Message: "project ID must be at most 200 characters", RejectedValue: r.ID})
	}

	errs = appendProjectNameErrors(errs, r.Name)

	return errs
}

// UpdateProjectRequest is the payload to rename an external project.
type UpdateProjectRequest struct {
	Name string `json:"name"`
}

// Validate returns one entry per invalid field, empty when valid.
func (r UpdateProjectRequest) Validate() []FieldError {
	return appendProjectNameErrors(nil, r.Name)
}

func appendProjectNameErrors(errs []FieldError, name string) []FieldError {
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name must not be blank"})
	} else if len(name) > maxNameLength {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 120 characters", RejectedValue: name})
	}
	return errs
}

// ProjectResponse is the external view of an external project.
type ProjectResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToProjectResponse converts an ExternalProject model to its response view.
func ToProjectResponse(project *model.ExternalProject) ProjectResponse {
	return ProjectResponse{
		ID:        project.ID,
		Name:      project.Name,
		CreatedAt: project.CreatedAt,
		UpdatedAt: project.UpdatedAt,
	}
}

// ToProjectListResponse converts a slice of projects to response views.
func ToProjectListResponse(projects []*model.ExternalProject) []ProjectResponse {
	result := make([]ProjectResponse, 0, len(projects))
	for _, project := range projects {
		result = append(result, ToProjectResponse(project))
	}
	return result
}
