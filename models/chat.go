package models

import (
	"time"
)

// MultiPointPolicy controls who may award more than one point at a time
type MultiPointPolicy string

const (
	// PolicyAnyone allows every participant to award multi-point deltas
	PolicyAnyone MultiPointPolicy = "anyone"
	// PolicyManagersOnly restricts multi-point deltas to managers and chat administrators
	PolicyManagersOnly MultiPointPolicy = "managers_only"
)

// Valid reports whether the policy is a known value
func (p MultiPointPolicy) Valid() bool {
	return p == PolicyAnyone || p == PolicyManagersOnly
}

// Chat represents one group conversation the bot participates in
type Chat struct {
	ChatID    int64            `db:"chat_id"`
	Name      string           `db:"chat_name"`
	Policy    MultiPointPolicy `db:"multi_point_policy"`
	LastReset *time.Time       `db:"last_reset"`
	CreatedAt time.Time        `db:"created_at"`
	UpdatedAt time.Time        `db:"updated_at"`
}
