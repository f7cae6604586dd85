package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/partnerhub/partnerhub/internal/metrics"
	"github.com/partnerhub/partnerhub/internal/model"
	"github.com/partnerhub/partnerhub/internal/repository"
)

// Project service errors.
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrProjectExists   = errors.New("project already exists")
)

// ProjectStore defines the persistence operations the project service
// needs. *repository.Repository satisfies it.
type ProjectStore interface {
	CreateProject(ctx context.Context, project *model.ExternalProject) error
	GetProjectByID(ctx context.Context, id string) (*model.ExternalProject, error)
	ListProjectsByOwner(ctx context.Context, ownerID int64) ([]*model.ExternalProject, error)
	UpdateProjectName(ctx context.Context, project *model.ExternalProject) error
}

// ProjectService enforces ownership and uniqueness for external projects.
type ProjectService struct {
	store   ProjectStore
	users   *UserService
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewProjectService creates a new ProjectService.
func NewProjectService(store ProjectStore, users *UserService, logger *slog.Logger, recorder metrics.Recorder) *ProjectService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ProjectService{
		store:   store,
		users:   users,
		logger:  logger.With("component", "service.project"),
		metrics: recorder,
	}
}

// AddProjectInput defines input for registering an external project.
type AddProjectInput struct {
	ID   string
	Name string
}

// Add registers an external project under the given owner. Returns
// ErrUserNotFound when the owner does not exist and ErrProjectExists
// when the project id is already taken. Project ids are globally
// unique (they are the primary key), so an id held by a different
// owner is the same conflict as re-registering your own.
func (s *ProjectService) Add(ctx context.Context, ownerID int64, input AddProjectInput) (*model.ExternalProject, error) {
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		return nil, err
	}

	existing, err := s.store.GetProjectByID(ctx, input.ID)
	if err != nil && !errors.Is(err, repository.ErrProjectNotFound) {
		return nil, err
	}
	if existing != nil {
		s.logger.Warn("project id already taken",
			"project_id", input.ID,
			"owner_id", ownerID,
			"same_owner", existing.OwnerID == ownerID,
		)
		return nil, ErrProjectExists
	}

	now := time.Now().UTC()
	project := &model.ExternalProject{
		ID:        input.ID,
		OwnerID:   ownerID,
		Name:      input.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateProject(ctx, project); err != nil {
		if errors.Is(err, repository.ErrProjectExists) {
			return nil, ErrProjectExists
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info("project created", "project_id", project.ID, "owner_id", ownerID)
	s.metrics.IncProjectCreated()

	return project, nil
}

// ListByOwner returns all projects owned by the given user, empty if
// none. Owner existence is deliberately not validated here; callers
// that need it validate through the user service first.
func (s *ProjectService) ListByOwner(ctx context.Context, ownerID int64) ([]*model.ExternalProject, error) {
	return s.store.ListProjectsByOwner(ctx, ownerID)
}

// Update renames a project. Returns ErrUserNotFound when the caller's
// user id is unknown, and ErrProjectNotFound when the project does not
// exist or belongs to someone else: the two cases are indistinguishable
// so the existence of other users' projects never leaks.
func (s *ProjectService) Update(ctx context.Context, ownerID int64, projectID, name string) (*model.ExternalProject, error) {
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		return nil, err
	}

	project, err := s.store.GetProjectByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	if project.OwnerID != ownerID {
		s.logger.Warn("project not owned by caller", "project_id", projectID, "owner_id", ownerID)
		return nil, ErrProjectNotFound
	}

	project.Name = name
	project.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateProjectName(ctx, project); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	s.logger.Info("project updated", "project_id", projectID, "owner_id", ownerID)

	return project, nil
}
