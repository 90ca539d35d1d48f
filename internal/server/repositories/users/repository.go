// Package users declares the server-side repository contract for user
// accounts and their role assignments.
package users

import (
	"context"

	"github.com/estately/estately/internal/server/models"
)

// Repository defines persistence operations for users. Implementations
// should return common.ErrorNotFound for lookup misses.
type Repository interface {
	// Create inserts a new user and returns it with the generated id.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByID looks up a user by its id.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByPhone looks up a user by its phone number (the login handle).
	GetByPhone(ctx context.Context, phone string) (*models.User, error)

	// UpdateProfile updates full name, email, and profile picture URL.
	UpdateProfile(ctx context.Context, user *models.User) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id string, passwordHash []byte) error

	// GetRoles returns the role names assigned to the user, sorted.
	GetRoles(ctx context.Context, userID string) ([]string, error)

	// AddRole assigns a role to the user. Re-adding an existing role is a no-op.
	AddRole(ctx context.Context, userID string, role string) error
}
