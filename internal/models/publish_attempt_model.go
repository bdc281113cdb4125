package models

import (
	"time"

	"github.com/google/uuid"
)

// PublishAttempt records one publisher pass over a single post.
type PublishAttempt struct {
	ID           int64     `db:"id" json:"id"`
	PostID       uuid.UUID `db:"post_id" json:"post_id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	Succeeded    bool      `db:"succeeded" json:"succeeded"`
	ErrorMessage string    `db:"error_message" json:"error_message"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
