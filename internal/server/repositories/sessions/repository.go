// Package sessions persists live login sessions.
package sessions

import (
	"context"
	"time"

	"github.com/finsight-app/finsight/internal/server/models"
)

type Repository interface {
	// Create stores a new session record.
	Create(ctx context.Context, session *models.Session) error

	// Get returns the session or common.ErrorNotFound.
	Get(ctx context.Context, id string) (*models.Session, error)

	// Delete removes the session if present; deleting an absent session
	// is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes every session whose expiry is strictly before
	// now and reports how many were removed. Used by operator tooling;
	// the service itself only evicts lazily.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
