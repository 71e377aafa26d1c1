// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Article, User and Session, along with
// their validation rules and domain-specific errors.
package entity

import "time"

// Article represents a generated blog article in the system.
// Each article is produced from a single source video and belongs to exactly
// one user. Articles are immutable once created; there is no update operation.
type Article struct {
	ID          int64
	UserID      int64
	SourceTitle string
	SourceLink  string
	Content     string
	CreatedAt   time.Time
}
