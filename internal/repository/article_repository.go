// Package repository defines the persistence interfaces consumed by the use case layer.
// Implementations live under internal/infra/adapter/persistence.
package repository

import (
	"context"

	"clipscribe/internal/domain/entity"
)

// ArticleRepository provides access to persisted articles.
// Articles are write-once: there is deliberately no Update method.
type ArticleRepository interface {
	// Create inserts a new article and fills in the generated ID and CreatedAt.
	Create(ctx context.Context, article *entity.Article) error
	// Get retrieves an article by ID. Returns (nil, nil) if the article does not exist.
	Get(ctx context.Context, id int64) (*entity.Article, error)
	// ListByUser retrieves all articles owned by the given user,
	// newest first.
	ListByUser(ctx context.Context, userID int64) ([]*entity.Article, error)
	// Delete removes an article. Administrative use only; not exposed over HTTP.
	Delete(ctx context.Context, id int64) error
}
