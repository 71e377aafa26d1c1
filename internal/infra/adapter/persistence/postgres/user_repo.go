package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"clipscribe/internal/domain/entity"
	"clipscribe/internal/repository"
)

// ErrDuplicateUsername indicates the username is already taken.
var ErrDuplicateUsername = errors.New("username already exists")

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) repository.UserRepository {
	return &UserRepo{db: db}
}

func (repo *UserRepo) Create(ctx context.Context, user *entity.User) error {
	const query = `
INSERT INTO users
       (username, email, password_hash)
VALUES ($1, $2, $3)
RETURNING id, created_at`
	err := repo.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	const query = `
SELECT id, username, email, password_hash, created_at
FROM users
WHERE username = $1
LIMIT 1`
	var user entity.User
	err := repo.db.QueryRowContext(ctx, query, username).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByUsername: %w", err)
	}
	return &user, nil
}

func (repo *UserRepo) Get(ctx context.Context, id int64) (*entity.User, error) {
	const query = `
SELECT id, username, email, password_hash, created_at
FROM users
WHERE id = $1
LIMIT 1`
	var user entity.User
	err := repo.db.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &user, nil
}
