// Package auth provides signup, login, logout, and session resolution
// use cases.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"clipscribe/internal/domain/entity"
	"clipscribe/internal/pkg/config"
	"clipscribe/internal/repository"
)

var (
	// ErrPasswordMismatch indicates the signup password and confirmation
	// do not match.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrInvalidCredentials indicates a failed login. The message is
	// deliberately generic: it never reveals whether the username exists.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountCreation indicates signup failed for any underlying
	// reason (duplicate username, storage failure) without
	// differentiation.
	ErrAccountCreation = errors.New("could not create account")

	// ErrSessionInvalid indicates the presented session is unknown,
	// expired, or revoked.
	ErrSessionInvalid = errors.New("session invalid")
)

// Service provides authentication use cases backed by the user and
// session repositories.
type Service struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	cfg      config.AuthConfig
	now      func() time.Time
}

// NewService creates an authentication service.
func NewService(users repository.UserRepository, sessions repository.SessionRepository, cfg config.AuthConfig) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Signup creates a new user account and logs it in. Password mismatch
// is the only signup failure reported specifically; everything else
// collapses into ErrAccountCreation.
func (s *Service) Signup(ctx context.Context, username, email, password, confirmPassword string) (*entity.Session, error) {
	if password != confirmPassword {
		return nil, ErrPasswordMismatch
	}

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("Signup: %w: username, email and password are required", ErrAccountCreation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("Signup: %w: password must be at least 8 characters", ErrAccountCreation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("Signup: hash password: %w", err)
	}

	user := &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		slog.WarnContext(ctx, "account creation failed",
			slog.String("username", username),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("Signup: %w", ErrAccountCreation)
	}

	return s.issueSession(ctx, user.ID)
}

// Login verifies the credentials and establishes a session. Unknown
// usernames and wrong passwords return the same generic error.
func (s *Service) Login(ctx context.Context, username, password string) (*entity.Session, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("Login: %w", err)
	}
	if user == nil {
		// Burn a comparison so unknown usernames take as long as wrong
		// passwords.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"), []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueSession(ctx, user.ID)
}

// Logout revokes the session. Revoking an unknown session is a no-op.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Revoke(ctx, sessionID, s.now()); err != nil {
		return fmt.Errorf("Logout: %w", err)
	}
	return nil
}

// Resolve maps a session ID to its owning user. Expired, revoked, and
// unknown sessions all return ErrSessionInvalid.
func (s *Service) Resolve(ctx context.Context, sessionID string) (*entity.User, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("Resolve: %w", err)
	}
	if session == nil || !session.Active(s.now()) {
		return nil, ErrSessionInvalid
	}

	user, err := s.users.Get(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("Resolve: %w", err)
	}
	if user == nil {
		return nil, ErrSessionInvalid
	}
	return user, nil
}

// PurgeExpired removes sessions that expired or were revoked before
// now. Run periodically, not per request.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("PurgeExpired: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "purged expired sessions", slog.Int64("count", n))
	}
	return n, nil
}

func (s *Service) issueSession(ctx context.Context, userID int64) (*entity.Session, error) {
	now := s.now()
	session := &entity.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	return session, nil
}
