package entity

import "time"

// Session represents a server-side login session. The browser holds a signed
// cookie carrying the session ID; the row here is the source of truth, so
// logout can revoke a session before its natural expiry.
type Session struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// Active reports whether the session is usable at the given instant.
func (s *Session) Active(now time.Time) bool {
	if s.RevokedAt != nil {
		return false
	}
	return now.Before(s.ExpiresAt)
}
