package entity

import "time"

// User represents an account that can submit videos and own generated articles.
// PasswordHash holds a bcrypt hash; the plaintext password never leaves the
// auth use case layer.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
