package repository

import (
	"context"
	"fmt"
	"time"

	"karma/database"
	"karma/models"

	"github.com/jackc/pgx/v5"
)

const chatColumns = `chat_id, chat_name, multi_point_policy, last_reset, created_at, updated_at`

// ChatRepository implements the ChatRepository interface
type ChatRepository struct {
	q Queryable
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *database.DB) *ChatRepository {
	return &ChatRepository{q: db.Pool}
}

// newChatRepositoryWithTx creates a new chat repository bound to a transaction
func newChatRepositoryWithTx(tx Queryable) *ChatRepository {
	return &ChatRepository{q: tx}
}

func scanChat(row pgx.Row) (*models.Chat, error) {
	var chat models.Chat
	err := row.Scan(
		&chat.ChatID,
		&chat.Name,
		&chat.Policy,
		&chat.LastReset,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// Get retrieves a chat, returning nil when unknown
func (r *ChatRepository) Get(ctx context.Context, chatID int64) (*models.Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM chats WHERE chat_id = $1`

	chat, err := scanChat(r.q.QueryRow(ctx, query, chatID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat %d: %w", chatID, err)
	}
	return chat, nil
}

// GetOrCreate retrieves a chat or creates it with the default policy
func (r *ChatRepository) GetOrCreate(ctx context.Context, chatID int64, name string) (*models.Chat, error) {
	chat, err := r.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat != nil {
		return chat, nil
	}

	query := `
		INSERT INTO chats (chat_id, chat_name, multi_point_policy)
		VALUES ($1, $2, $3)
		ON CONFLICT (chat_id) DO UPDATE SET chat_name = EXCLUDED.chat_name
		RETURNING ` + chatColumns

	chat, err = scanChat(r.q.QueryRow(ctx, query, chatID, name, models.PolicyAnyone))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat %d: %w", chatID, err)
	}
	return chat, nil
}

// UpdatePolicy changes who may award multi-point deltas
func (r *ChatRepository) UpdatePolicy(ctx context.Context, chatID int64, policy models.MultiPointPolicy) error {
	query := `UPDATE chats SET multi_point_policy = $1, updated_at = NOW() WHERE chat_id = $2`

	result, err := r.q.Exec(ctx, query, policy, chatID)
	if err != nil {
		return fmt.Errorf("failed to update policy for chat %d: %w", chatID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("chat %d not found", chatID)
	}
	return nil
}

// MarkReset stamps the chat's last reset time
func (r *ChatRepository) MarkReset(ctx context.Context, chatID int64, at time.Time) error {
	query := `UPDATE chats SET last_reset = $1, updated_at = NOW() WHERE chat_id = $2`

	result, err := r.q.Exec(ctx, query, at, chatID)
	if err != nil {
		return fmt.Errorf("failed to mark reset for chat %d: %w", chatID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("chat %d not found", chatID)
	}
	return nil
}
