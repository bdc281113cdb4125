package models

import (
	"time"

	"github.com/google/uuid"
)

// UserContext is a per-user singleton block of text fed to the LLM.
// Two kinds exist: the post context (system prompt for content
// generation) and the wiki context (knowledge base for DM replies).
type UserContext struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
