package testutil

import (
	"context"
	"testing"
	"time"

	"karma/database"
	"karma/models"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// CreateTestChat inserts a chat with the default policy and returns it
func CreateTestChat(t *testing.T, db *database.DB, chatID int64, name string) *models.Chat {
	ctx := context.Background()

	query := `
		INSERT INTO chats (chat_id, chat_name, multi_point_policy)
		VALUES ($1, $2, $3)
		RETURNING chat_id, chat_name, multi_point_policy, last_reset, created_at, updated_at
	`
	var chat models.Chat
	err := db.QueryRow(ctx, query, chatID, name, models.PolicyAnyone).Scan(
		&chat.ChatID,
		&chat.Name,
		&chat.Policy,
		&chat.LastReset,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	)
	require.NoError(t, err)
	return &chat
}

// CreateTestAccount inserts an account with score zero and returns it
func CreateTestAccount(t *testing.T, db *database.DB, chatID, externalUserID int64, username string) *models.Account {
	ctx := context.Background()

	query := `
		INSERT INTO accounts (external_user_id, chat_id, username)
		VALUES ($1, $2, $3)
		RETURNING id, external_user_id, chat_id, username, score, is_manager, created_at, updated_at
	`
	var account models.Account
	err := db.QueryRow(ctx, query, externalUserID, chatID, username).Scan(
		&account.ID,
		&account.ExternalUserID,
		&account.ChatID,
		&account.Username,
		&account.Score,
		&account.IsManager,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	require.NoError(t, err)
	return &account
}

// SeedScoredAccount inserts an account with a non-zero score and the
// ledger entry backing it, atomically
func SeedScoredAccount(t *testing.T, db *database.DB, chatID, externalUserID int64, username string, score int64) *models.Account {
	ctx := context.Background()

	account := &models.Account{
		ExternalUserID: externalUserID,
		ChatID:         chatID,
		Username:       username,
		Score:          score,
	}
	err := db.WithTransaction(ctx, func(tx pgx.Tx) error {
		insertAccount := `
			INSERT INTO accounts (external_user_id, chat_id, username, score)
			VALUES ($1, $2, $3, $4)
			RETURNING id, is_manager, created_at, updated_at
		`
		if err := tx.QueryRow(ctx, insertAccount, externalUserID, chatID, username, score).Scan(
			&account.ID,
			&account.IsManager,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return err
		}
		insertEntry := `
			INSERT INTO ledger_entries (account_id, delta, note, actor_name)
			VALUES ($1, $2, $3, $4)
		`
		_, err := tx.Exec(ctx, insertEntry, account.ID, score, "seed", "seeder")
		return err
	})
	require.NoError(t, err)
	return account
}

// CreateTestLedgerEntry inserts a ledger entry with an explicit timestamp
func CreateTestLedgerEntry(t *testing.T, db *database.DB, accountID, delta int64, note, actorName string, createdAt time.Time) *models.LedgerEntry {
	ctx := context.Background()

	query := `
		INSERT INTO ledger_entries (account_id, delta, note, actor_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	entry := &models.LedgerEntry{
		AccountID: accountID,
		Delta:     delta,
		Note:      note,
		ActorName: actorName,
		CreatedAt: createdAt,
	}
	err := db.QueryRow(ctx, query, accountID, delta, note, actorName, createdAt).Scan(&entry.ID)
	require.NoError(t, err)
	return entry
}
