package models

import (
	"time"
)

// LedgerEntry is an immutable record of one score change.
// Entries are append-only; resets partition history via Chat.LastReset
// instead of deleting rows.
type LedgerEntry struct {
	ID        int64     `db:"id"`
	AccountID int64     `db:"account_id"`
	Delta     int64     `db:"delta"`
	Note      string    `db:"note"`
	ActorName string    `db:"actor_name"`
	CreatedAt time.Time `db:"created_at"`
}

// AccountHistory is a read-only projection of an account's ledger.
// Recent holds entries after the chat's last reset; Older holds the
// pre-reset entries and is empty when no reset has happened.
type AccountHistory struct {
	Account *Account
	Recent  []*LedgerEntry
	Older   []*LedgerEntry
}
