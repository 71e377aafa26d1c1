package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"clipscribe/internal/domain/entity"
	"clipscribe/internal/repository"
)

type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) repository.SessionRepository {
	return &SessionRepo{db: db}
}

func (repo *SessionRepo) Create(ctx context.Context, session *entity.Session) error {
	const query = `
INSERT INTO sessions
       (id, user_id, created_at, expires_at)
VALUES ($1, $2, $3, $4)`
	_, err := repo.db.ExecContext(ctx, query,
		session.ID, session.UserID, session.CreatedAt, session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *SessionRepo) Get(ctx context.Context, id string) (*entity.Session, error) {
	const query = `
SELECT id, user_id, created_at, expires_at, revoked_at
FROM sessions
WHERE id = $1
LIMIT 1`
	var session entity.Session
	var revokedAt sql.NullTime
	err := repo.db.QueryRowContext(ctx, query, id).
		Scan(&session.ID, &session.UserID, &session.CreatedAt, &session.ExpiresAt, &revokedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	if revokedAt.Valid {
		session.RevokedAt = &revokedAt.Time
	}
	return &session, nil
}

func (repo *SessionRepo) Revoke(ctx context.Context, id string, at time.Time) error {
	const query = `
UPDATE sessions SET revoked_at = $1
WHERE id = $2 AND revoked_at IS NULL`
	if _, err := repo.db.ExecContext(ctx, query, at, id); err != nil {
		return fmt.Errorf("Revoke: %w", err)
	}
	return nil
}

func (repo *SessionRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `
DELETE FROM sessions
WHERE expires_at < $1 OR revoked_at < $1`
	res, err := repo.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("DeleteExpired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteExpired: RowsAffected: %w", err)
	}
	return n, nil
}
