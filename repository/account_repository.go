package repository

import (
	"context"
	"fmt"

	"karma/database"
	"karma/models"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, external_user_id, chat_id, username, score, is_manager, created_at, updated_at`

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q Queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository bound to a transaction
func newAccountRepositoryWithTx(tx Queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.ExternalUserID,
		&account.ChatID,
		&account.Username,
		&account.Score,
		&account.IsManager,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByID retrieves an account by its primary key
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}
	return account, nil
}

// GetByExternalID retrieves an account by chat and platform user id
func (r *AccountRepository) GetByExternalID(ctx context.Context, chatID, externalUserID int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE chat_id = $1 AND external_user_id = $2`

	account, err := scanAccount(r.q.QueryRow(ctx, query, chatID, externalUserID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account for user %d in chat %d: %w", externalUserID, chatID, err)
	}
	return account, nil
}

// GetByUsername retrieves an account by chat and display name
func (r *AccountRepository) GetByUsername(ctx context.Context, chatID int64, username string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE chat_id = $1 AND username = $2`

	account, err := scanAccount(r.q.QueryRow(ctx, query, chatID, username))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %q in chat %d: %w", username, chatID, err)
	}
	return account, nil
}

// Create creates a new account with score zero
func (r *AccountRepository) Create(ctx context.Context, chatID, externalUserID int64, username string) (*models.Account, error) {
	query := `
		INSERT INTO accounts (external_user_id, chat_id, username)
		VALUES ($1, $2, $3)
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, externalUserID, chatID, username))
	if err != nil {
		return nil, fmt.Errorf("failed to create account for user %d in chat %d: %w", externalUserID, chatID, err)
	}
	return account, nil
}

// AddScore atomically adds delta to an account's score and returns the new
// score. The row-level lock taken by the UPDATE serializes concurrent
// deltas on the same account.
func (r *AccountRepository) AddScore(ctx context.Context, chatID, accountID, delta int64) (int64, error) {
	query := `
		UPDATE accounts
		SET score = score + $1, updated_at = NOW()
		WHERE id = $2 AND chat_id = $3
		RETURNING score
	`

	var newScore int64
	err := r.q.QueryRow(ctx, query, delta, accountID, chatID).Scan(&newScore)
	if err == pgx.ErrNoRows {
		return 0, fmt.Errorf("account %d not found in chat %d", accountID, chatID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to add score for account %d: %w", accountID, err)
	}
	return newScore, nil
}

// SetManager flips the manager flag for an account
func (r *AccountRepository) SetManager(ctx context.Context, chatID, externalUserID int64, isManager bool) error {
	query := `
		UPDATE accounts
		SET is_manager = $1, updated_at = NOW()
		WHERE chat_id = $2 AND external_user_id = $3
	`

	result, err := r.q.Exec(ctx, query, isManager, chatID, externalUserID)
	if err != nil {
		return fmt.Errorf("failed to set manager flag for user %d in chat %d: %w", externalUserID, chatID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account for user %d not found in chat %d", externalUserID, chatID)
	}
	return nil
}

// ListByChat returns all accounts in a chat ordered by display name
func (r *AccountRepository) ListByChat(ctx context.Context, chatID int64) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE chat_id = $1 ORDER BY username`

	return r.queryAccounts(ctx, query, chatID)
}

// TopByScore returns up to limit accounts ordered by score descending
func (r *AccountRepository) TopByScore(ctx context.Context, chatID int64, limit int) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE chat_id = $1 ORDER BY score DESC, username LIMIT $2`

	return r.queryAccounts(ctx, query, chatID, limit)
}

// ResetScores zeroes every score in a chat
func (r *AccountRepository) ResetScores(ctx context.Context, chatID int64) error {
	query := `UPDATE accounts SET score = 0, updated_at = NOW() WHERE chat_id = $1`

	if _, err := r.q.Exec(ctx, query, chatID); err != nil {
		return fmt.Errorf("failed to reset scores in chat %d: %w", chatID, err)
	}
	return nil
}

func (r *AccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]*models.Account, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}
