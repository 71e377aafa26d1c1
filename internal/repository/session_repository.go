package repository

import (
	"context"
	"time"

	"clipscribe/internal/domain/entity"
)

// SessionRepository provides access to server-side login sessions.
type SessionRepository interface {
	// Create inserts a new session row.
	Create(ctx context.Context, session *entity.Session) error
	// Get retrieves a session by ID. Returns (nil, nil) if not found.
	Get(ctx context.Context, id string) (*entity.Session, error)
	// Revoke marks a session as revoked at the given instant.
	// Revoking an already revoked or unknown session is not an error.
	Revoke(ctx context.Context, id string, at time.Time) error
	// DeleteExpired removes sessions that expired or were revoked before the cutoff.
	// Returns the number of rows removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
