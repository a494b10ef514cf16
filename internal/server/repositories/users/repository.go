// Package users persists account records.
package users

import (
	"context"

	"github.com/finsight-app/finsight/internal/server/models"
)

type Repository interface {
	// Create stores a new user. Returns common.ErrorAlreadyExists if the
	// username is taken.
	Create(ctx context.Context, user *models.User) error

	// GetByUsername returns the user or common.ErrorNotFound.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Update rewrites an existing user record (last-login refresh).
	Update(ctx context.Context, user *models.User) error
}
