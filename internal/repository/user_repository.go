package repository

import (
	"context"

	"clipscribe/internal/domain/entity"
)

// UserRepository provides access to persisted user accounts.
type UserRepository interface {
	// Create inserts a new user and fills in the generated ID and CreatedAt.
	// Returns an error if the username or email is already taken.
	Create(ctx context.Context, user *entity.User) error
	// GetByUsername retrieves a user by username. Returns (nil, nil) if not found.
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	// Get retrieves a user by ID. Returns (nil, nil) if not found.
	Get(ctx context.Context, id int64) (*entity.User, error)
}
