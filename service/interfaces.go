package service

import (
	"context"
	"time"

	"karma/events"
	"karma/models"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// GetByID retrieves an account by its primary key
	GetByID(ctx context.Context, id int64) (*models.Account, error)

	// GetByExternalID retrieves an account by chat and platform user id
	GetByExternalID(ctx context.Context, chatID, externalUserID int64) (*models.Account, error)

	// GetByUsername retrieves an account by chat and display name
	GetByUsername(ctx context.Context, chatID int64, username string) (*models.Account, error)

	// Create creates a new account with score zero
	Create(ctx context.Context, chatID, externalUserID int64, username string) (*models.Account, error)

	// AddScore atomically adds delta to an account's score and returns the
	// new score. Fails without mutation when the account does not exist in
	// the given chat.
	AddScore(ctx context.Context, chatID, accountID, delta int64) (int64, error)

	// SetManager flips the manager flag for an account
	SetManager(ctx context.Context, chatID, externalUserID int64, isManager bool) error

	// ListByChat returns all accounts in a chat ordered by display name
	ListByChat(ctx context.Context, chatID int64) ([]*models.Account, error)

	// TopByScore returns up to limit accounts ordered by score descending
	TopByScore(ctx context.Context, chatID int64, limit int) ([]*models.Account, error)

	// ResetScores zeroes every score in a chat
	ResetScores(ctx context.Context, chatID int64) error
}

// ChatRepository defines the interface for chat data access
type ChatRepository interface {
	// Get retrieves a chat, returning nil when unknown
	Get(ctx context.Context, chatID int64) (*models.Chat, error)

	// GetOrCreate retrieves a chat or creates it with the default policy
	GetOrCreate(ctx context.Context, chatID int64, name string) (*models.Chat, error)

	// UpdatePolicy changes who may award multi-point deltas
	UpdatePolicy(ctx context.Context, chatID int64, policy models.MultiPointPolicy) error

	// MarkReset stamps the chat's last reset time
	MarkReset(ctx context.Context, chatID int64, at time.Time) error
}

// LedgerRepository defines the interface for the append-only score history
type LedgerRepository interface {
	// Record appends a ledger entry
	Record(ctx context.Context, entry *models.LedgerEntry) error

	// GetByAccount returns all entries for an account, newest first
	GetByAccount(ctx context.Context, accountID int64) ([]*models.LedgerEntry, error)

	// GetByAccountSince returns entries created strictly after since, newest first
	GetByAccountSince(ctx context.Context, accountID int64, since time.Time) ([]*models.LedgerEntry, error)

	// GetByAccountUntil returns entries created at or before until, newest first
	GetByAccountUntil(ctx context.Context, accountID int64, until time.Time) ([]*models.LedgerEntry, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// ChatAdminChecker reports platform-level chat administrator status.
// Implemented by the transport layer; the engine never talks to the
// chat platform directly.
type ChatAdminChecker interface {
	IsChatAdministrator(ctx context.Context, chatID, externalUserID int64) (bool, error)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	ChatRepository() ChatRepository
	LedgerRepository() LedgerRepository

	// EventBus returns the transactional publisher; events are delivered
	// only after a successful commit
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// AccountService defines the interface for account operations
type AccountService interface {
	// GetOrCreateAccount retrieves an account or creates it on first sight
	GetOrCreateAccount(ctx context.Context, chatID, externalUserID int64, username string) (*models.Account, error)

	// GetAccount retrieves an account by primary key
	GetAccount(ctx context.Context, id int64) (*models.Account, error)

	// ListAccounts returns all accounts in a chat
	ListAccounts(ctx context.Context, chatID int64) ([]*models.Account, error)

	// SetManager flips the manager flag and refreshes the cached value
	SetManager(ctx context.Context, chatID, externalUserID int64, isManager bool) error
}

// ChatService defines the interface for chat-level operations
type ChatService interface {
	// GetOrCreateChat retrieves a chat or creates it when the bot joins
	GetOrCreateChat(ctx context.Context, chatID int64, name string) (*models.Chat, error)

	// SetMultiPointPolicy updates the policy and refreshes the cached value
	SetMultiPointPolicy(ctx context.Context, chatID int64, policy models.MultiPointPolicy) error

	// ResetScores zeroes all scores in a chat and stamps the reset time;
	// history is kept and partitioned at the stamp
	ResetScores(ctx context.Context, chatID int64) error

	// Ranking returns the chat's top accounts by score
	Ranking(ctx context.Context, chatID int64, limit int) ([]*models.Account, error)
}

// LedgerService defines the interface for score mutations and history reads
type LedgerService interface {
	// Apply commits one delta: score update plus ledger entry, both or
	// neither. Returns the recorded entry and the account's new score.
	Apply(ctx context.Context, chatID, accountID, delta int64, note, actorName string) (*models.LedgerEntry, int64, error)

	// RecentHistory returns entries since the chat's last reset
	RecentHistory(ctx context.Context, chatID, accountID int64) (*models.AccountHistory, error)

	// FullHistory returns all entries, split at the chat's last reset
	FullHistory(ctx context.Context, chatID, accountID int64) (*models.AccountHistory, error)
}

// PermissionGate decides whether an actor may apply a delta in a chat
type PermissionGate interface {
	MayApply(ctx context.Context, chatID, actorExternalID, delta int64) (bool, error)
}

// MentionResolver resolves mention names to accounts, cache-backed
type MentionResolver interface {
	Resolve(ctx context.Context, chatID int64, name string) (*models.Account, error)
}

// EngineService is the transaction engine's entry point for the transport layer
type EngineService interface {
	// Process applies parsed intents on behalf of an actor
	Process(ctx context.Context, chatID, actorExternalID int64, actorName string, intents []models.Intent) (*models.ProcessResult, error)

	// ProcessReply handles reply-mode scoring: the delta comes from the
	// leading token of text and the target is the replied-to author
	ProcessReply(ctx context.Context, chatID, actorExternalID int64, actorName string, targetExternalID int64, targetName, text string) (*models.ProcessResult, error)
}
