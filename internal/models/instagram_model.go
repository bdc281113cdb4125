package models

import (
	"time"

	"github.com/google/uuid"
)

// InstagramAccount holds one set of Graph API credentials per user.
// AccessToken is stored encrypted at rest.
type InstagramAccount struct {
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	InstagramID int64     `db:"instagram_id" json:"instagram_id"`
	AccessToken string    `db:"access_token" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
