package models

import (
	"time"
)

// Account represents a chat participant with a karma score.
// Exactly one account exists per (external user, chat) pair.
type Account struct {
	ID             int64     `db:"id"`
	ExternalUserID int64     `db:"external_user_id"`
	ChatID         int64     `db:"chat_id"`
	Username       string    `db:"username"`
	Score          int64     `db:"score"`
	IsManager      bool      `db:"is_manager"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
