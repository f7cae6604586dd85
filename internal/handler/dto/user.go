package dto

import (
	"fmt"
	"regexp"
	"time"

	"github.com/partnerhub/partnerhub/internal/model"
)

// Field limits mirroring the storage schema.
const (
	minPasswordLength = 8
	maxPasswordLength = 64
	maxEmailLength    = 200
	maxNameLength     = 120
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// CreateUserRequest is the payload to register a new user.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// Validate returns one entry per invalid field, empty when valid.
func (r CreateUserRequest) Validate() []FieldError {
	var errs []FieldError
	errs = appendEmailErrors(errs, r.Email)

	if r.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password must not be blank"})
	} else if len(r.Password) < minPasswordLength || len(r.Password) > maxPasswordLength {
		errs = append(errs, FieldError{
			Field:         "password",
			Message:       fmt.Sprintf("password must be between %d and %d characters", minPasswordLength, maxPasswordLength),
			RejectedValue: "[redacted]",
		})
	}

	if len(r.Name) > maxNameLength {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 120 characters", RejectedValue: r.Name})
	}

	return errs
}

// UpdateUserRequest is the payload to update a user's profile.
type UpdateUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Validate returns one entry per invalid field, empty when valid.
func (r UpdateUserRequest) Validate() []FieldError {
	var errs []FieldError
	errs = appendEmailErrors(errs, r.Email)

	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name must not be blank"})
	} else if len(r.Name) > maxNameLength {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 120 characters", RejectedValue: r.Name})
	}

	return errs
}

func appendEmailErrors(errs []FieldError, email string) []FieldError {
	switch {
	case email == "":
		errs = append(errs, FieldError{Field: "email", Message: "email must not be blank"})
	case len(email) > maxEmailLength:
		errs = append(errs, FieldError{Field: "email", Message: "email must be at most 200 characters", RejectedValue: email})
	case !emailRegex.MatchString(email):
		errs = append(errs, FieldError{Field: "email", Message: "email must be valid", RejectedValue: email})
	}
	return errs
}

// UserResponse is the external view of a user. It never carries the
// password hash.
type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToUserResponse converts a User model to its response view.
func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ToUserListResponse converts a slice of User models to response views.
func ToUserListResponse(users []*model.User) []UserResponse {
	result := make([]UserResponse, 0, len(users))
	for _, user := range users {
		result = append(result, ToUserResponse(user))
	}
	return result
}
