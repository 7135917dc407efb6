package repository

import (
	"context"
	"fmt"
	"time"

	"karma/database"
	"karma/models"
)

const ledgerColumns = `id, account_id, delta, note, actor_name, created_at`

// LedgerRepository implements the LedgerRepository interface.
// The ledger is append-only: entries are never updated or deleted.
type LedgerRepository struct {
	q Queryable
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{q: db.Pool}
}

// newLedgerRepositoryWithTx creates a new ledger repository bound to a transaction
func newLedgerRepositoryWithTx(tx Queryable) *LedgerRepository {
	return &LedgerRepository{q: tx}
}

// Record appends a ledger entry
func (r *LedgerRepository) Record(ctx context.Context, entry *models.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (account_id, delta, note, actor_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.AccountID,
		entry.Delta,
		entry.Note,
		entry.ActorName,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record ledger entry for account %d: %w", entry.AccountID, err)
	}
	return nil
}

// GetByAccount returns all entries for an account, newest first
func (r *LedgerRepository) GetByAccount(ctx context.Context, accountID int64) ([]*models.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.queryEntries(ctx, query, accountID)
}

// GetByAccountSince returns entries created strictly after since, newest first
func (r *LedgerRepository) GetByAccountSince(ctx context.Context, accountID int64, since time.Time) ([]*models.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE account_id = $1 AND created_at > $2
		ORDER BY created_at DESC, id DESC
	`
	return r.queryEntries(ctx, query, accountID, since)
}

// GetByAccountUntil returns entries created at or before until, newest first
func (r *LedgerRepository) GetByAccountUntil(ctx context.Context, accountID int64, until time.Time) ([]*models.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE account_id = $1 AND created_at <= $2
		ORDER BY created_at DESC, id DESC
	`
	return r.queryEntries(ctx, query, accountID, until)
}

func (r *LedgerRepository) queryEntries(ctx context.Context, query string, args ...any) ([]*models.LedgerEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		var entry models.LedgerEntry
		err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.Delta,
			&entry.Note,
			&entry.ActorName,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}
	return entries, nil
}
