package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"clipscribe/internal/domain/entity"
	pg "clipscribe/internal/infra/adapter/persistence/postgres"
)

func TestSessionRepo_CreateAndGet(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(24 * time.Hour)
	const id = "2d9a2c9e-7c43-4f6b-9a1e-0b1f6f9a2c9e"

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sessions")).
		WithArgs(id, int64(7), now, exp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "created_at", "expires_at", "revoked_at",
		}).AddRow(id, int64(7), now, exp, nil))

	repo := pg.NewSessionRepo(db)
	session := &entity.Session{ID: id, UserID: 7, CreatedAt: now, ExpiresAt: exp}
	if err := repo.Create(context.Background(), session); err != nil {
		t.Fatalf("Create err=%v", err)
	}

	got, err := repo.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if got == nil || got.UserID != 7 {
		t.Fatalf("Get = %+v, want user 7", got)
	}
	if got.RevokedAt != nil {
		t.Errorf("RevokedAt = %v, want nil", got.RevokedAt)
	}
}

func TestSessionRepo_Get_Revoked(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	const id = "2d9a2c9e-7c43-4f6b-9a1e-0b1f6f9a2c9e"

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "created_at", "expires_at", "revoked_at",
		}).AddRow(id, int64(7), now.Add(-time.Hour), now.Add(time.Hour), now))

	repo := pg.NewSessionRepo(db)
	got, err := repo.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if got.RevokedAt == nil {
		t.Fatal("RevokedAt = nil, want set")
	}
	if got.Active(now) {
		t.Error("Active() = true for revoked session")
	}
}

func TestSessionRepo_DeleteExpired(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	cutoff := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	repo := pg.NewSessionRepo(db)
	n, err := repo.DeleteExpired(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("DeleteExpired err=%v", err)
	}
	if n != 3 {
		t.Errorf("DeleteExpired = %d, want 3", n)
	}
}
