package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/partnerhub/partnerhub/internal/model"
)

// Common errors for external project repository operations.
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrProjectExists   = errors.New("project already exists")
)

// CreateProject inserts a new external project.
// The primary key on id is the authoritative conflict signal.
func (r *Repository) CreateProject(ctx context.Context, project *model.ExternalProject) error {
	query := `
		INSERT INTO external_projects (id, owner_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		project.ID,
		project.OwnerID,
		project.Name,
		project.CreatedAt,
		project.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrProjectExists
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// GetProjectByID retrieves an external project by its ID.
func (r *Repository) GetProjectByID(ctx context.Context, id string) (*model.ExternalProject, error) {
	query := `
		SELECT id, owner_id, name, created_at, updated_at
		FROM external_projects
		WHERE id = $1
	`

	project, err := scanProject(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project by ID: %w", err)
	}

	return project, nil
}

// ListProjectsByOwner retrieves all projects owned by the given user,
// ordered by creation time. Unknown owners yield an empty slice.
func (r *Repository) ListProjectsByOwner(ctx context.Context, ownerID int64) ([]*model.ExternalProject, error) {
	query := `
		SELECT id, owner_id, name, created_at, updated_at
		FROM external_projects
		WHERE owner_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*model.ExternalProject, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

// UpdateProjectName persists a new name and updated_at for an existing
// project. The owner filter means a mismatched owner reads as not found.
func (r *Repository) UpdateProjectName(ctx context.Context, project *model.ExternalProject) error {
	query := `
		UPDATE external_projects
		SET name = $3, updated_at = $4
		WHERE id = $1 AND owner_id = $2
	`

	result, err := r.pool.Exec(ctx, query,
		project.ID,
		project.OwnerID,
		project.Name,
		project.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrProjectNotFound
	}

	return nil
}

// scanProject scans a single row into an ExternalProject model.
func scanProject(row pgx.Row) (*model.ExternalProject, error) {
	var project model.ExternalProject
	err := row.Scan(
		&project.ID,
		&project.OwnerID,
		&project.Name,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &project, nil
}
