// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/partnerhub/partnerhub/internal/auth"
	"github.com/partnerhub/partnerhub/internal/metrics"
	"github.com/partnerhub/partnerhub/internal/model"
	"github.com/partnerhub/partnerhub/internal/repository"
)

// User service errors.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email has already been registered")
)

// UserStore defines the persistence operations the user service needs.
// *repository.Repository satisfies it.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id int64) error
}

// UserService enforces user lifecycle invariants around the store.
type UserService struct {
	store   UserStore
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, logger *slog.Logger, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		store:   store,
		logger:  logger.With("component", "service.user"),
		metrics: recorder,
	}
}

// CreateUserInput defines input for creating a user.
type CreateUserInput struct {
	Email    string
	Password string
	Name     string
}

// Create registers a new user. The plaintext password is hashed before
// it reaches the store. Returns ErrEmailTaken if the email is in use.
// The pre-check gives a clean error on the common path; the unique
// index on email is the real arbiter under concurrent registration.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*model.User, error) {
	existing, err := s.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Warn("email already registered", "email", input.Email)
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		Email:        input.Email,
		PasswordHash: hash,
		Name:         input.Name,
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created", "user_id", user.ID)
	s.metrics.IncUserCreated()

	return user, nil
}

// GetByID returns the user or ErrUserNotFound.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetByEmail returns the user with the given email, or nil if no such
// user exists. Absence is not an error here: callers use this to check
// whether an email is taken, not to assert existence.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// List returns all users in insertion order.
func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	return s.store.ListUsers(ctx)
}

// UpdateUserInput defines input for updating a user's profile.
type UpdateUserInput struct {
	Email string
	Name  string
}

// Update changes a user's email and name. Returns ErrUserNotFound for
// an unknown id, and ErrEmailTaken only when the new email belongs to
// a different user: keeping your own email is never a conflict, so
// ownership is compared by id rather than by string equality alone.
func (s *UserService) Update(ctx context.Context, id int64, input UpdateUserInput) (*model.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.Email != input.Email {
		other, err := s.GetByEmail(ctx, input.Email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			s.logger.Warn("email already registered to another user", "email", input.Email)
			return nil, ErrEmailTaken
		}
	}

	user.Email = input.Email
	user.Name = input.Name
	user.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("user updated", "user_id", user.ID)

	return user, nil
}

// Delete removes a user permanently. Returns ErrUserNotFound for an
// unknown id; deletion never silently no-ops.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("user deleted", "user_id", id)

	return nil
}

// EnsureAdmin seeds the administrator account if its email is free.
// Idempotent; run once from the composition root at startup.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password, name string) error {
	existing, err := s.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check admin account: %w", err)
	}
	if existing != nil {
		return nil
	}

	_, err = s.Create(ctx, CreateUserInput{Email: email, Password: password, Name: name})
	if err != nil {
		// A concurrent instance may have seeded it first.
		if errors.Is(err, ErrEmailTaken) {
			return nil
		}
		return fmt.Errorf("seed admin account: %w", err)
	}

	s.logger.Info("admin account seeded", "email", email)

	return nil
}
