// Package article provides article retrieval use cases with per-user
// ownership enforcement.
package article

import (
	"context"
	"errors"
	"fmt"

	"clipscribe/internal/domain/entity"
	"clipscribe/internal/repository"
)

var (
	// ErrArticleNotFound indicates no article exists with the given ID.
	// It matches entity.ErrNotFound so callers can classify it generically.
	ErrArticleNotFound = fmt.Errorf("article not found: %w", entity.ErrNotFound)

	// ErrArticleForbidden indicates the article exists but belongs to a
	// different user.
	ErrArticleForbidden = errors.New("article belongs to another user")
)

// Service provides article retrieval use cases. Every read is scoped to
// the requesting user; articles never leak across owners.
type Service struct {
	Repo repository.ArticleRepository
}

// ListForUser retrieves all articles owned by userID, newest first.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]*entity.Article, error) {
	articles, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list articles for user %d: %w", userID, err)
	}
	return articles, nil
}

// GetOwned retrieves the article with the given ID if it is owned by
// userID. A foreign owner yields ErrArticleForbidden so the handler can
// decide how to mask the article's existence.
func (s *Service) GetOwned(ctx context.Context, id, userID int64) (*entity.Article, error) {
	art, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get article %d: %w", id, err)
	}
	if art == nil {
		return nil, ErrArticleNotFound
	}
	if art.UserID != userID {
		return nil, ErrArticleForbidden
	}
	return art, nil
}
