// Package postgres provides PostgreSQL implementations of the repository interfaces.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"clipscribe/internal/domain/entity"
	"clipscribe/internal/repository"
)

type ArticleRepo struct {
	db *sql.DB
}

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{db: db}
}

func (repo *ArticleRepo) Create(ctx context.Context, article *entity.Article) error {
	const query = `
INSERT INTO articles
       (user_id, source_title, source_link, content)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at`
	err := repo.db.QueryRowContext(ctx, query,
		article.UserID, article.SourceTitle, article.SourceLink, article.Content,
	).Scan(&article.ID, &article.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	const query = `
SELECT id, user_id, source_title, source_link, content, created_at
FROM articles
WHERE id = $1
LIMIT 1`
	var article entity.Article
	err := repo.db.QueryRowContext(ctx, query, id).
		Scan(&article.ID, &article.UserID, &article.SourceTitle,
			&article.SourceLink, &article.Content, &article.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &article, nil
}

func (repo *ArticleRepo) ListByUser(ctx context.Context, userID int64) ([]*entity.Article, error) {
	const query = `
SELECT id, user_id, source_title, source_link, content, created_at
FROM articles
WHERE user_id = $1
ORDER BY created_at DESC`
	rows, err := repo.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, 20)
	for rows.Next() {
		var article entity.Article
		if err := rows.Scan(&article.ID, &article.UserID, &article.SourceTitle,
			&article.SourceLink, &article.Content, &article.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListByUser: Scan: %w", err)
		}
		articles = append(articles, &article)
	}
	return articles, rows.Err()
}

func (repo *ArticleRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM articles WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}
