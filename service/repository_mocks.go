package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"karma/events"
	"karma/models"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByExternalID(ctx context.Context, chatID, externalUserID int64) (*models.Account, error) {
	args := m.Called(ctx, chatID, externalUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, chatID int64, username string) (*models.Account, error) {
	args := m.Called(ctx, chatID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, chatID, externalUserID int64, username string) (*models.Account, error) {
	args := m.Called(ctx, chatID, externalUserID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) AddScore(ctx context.Context, chatID, accountID, delta int64) (int64, error) {
	args := m.Called(ctx, chatID, accountID, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) SetManager(ctx context.Context, chatID, externalUserID int64, isManager bool) error {
	args := m.Called(ctx, chatID, externalUserID, isManager)
	return args.Error(0)
}

func (m *MockAccountRepository) ListByChat(ctx context.Context, chatID int64) ([]*models.Account, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *MockAccountRepository) TopByScore(ctx context.Context, chatID int64, limit int) ([]*models.Account, error) {
	args := m.Called(ctx, chatID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *MockAccountRepository) ResetScores(ctx context.Context, chatID int64) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

// MockChatRepository is a mock implementation of ChatRepository
type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) Get(ctx context.Context, chatID int64) (*models.Chat, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *MockChatRepository) GetOrCreate(ctx context.Context, chatID int64, name string) (*models.Chat, error) {
	args := m.Called(ctx, chatID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *MockChatRepository) UpdatePolicy(ctx context.Context, chatID int64, policy models.MultiPointPolicy) error {
	args := m.Called(ctx, chatID, policy)
	return args.Error(0)
}

func (m *MockChatRepository) MarkReset(ctx context.Context, chatID int64, at time.Time) error {
	args := m.Called(ctx, chatID, at)
	return args.Error(0)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Record(ctx context.Context, entry *models.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByAccount(ctx context.Context, accountID int64) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) GetByAccountSince(ctx context.Context, accountID int64, since time.Time) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, accountID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) GetByAccountUntil(ctx context.Context, accountID int64, until time.Time) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, accountID, until)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockChatAdminChecker is a mock implementation of ChatAdminChecker
type MockChatAdminChecker struct {
	mock.Mock
}

func (m *MockChatAdminChecker) IsChatAdministrator(ctx context.Context, chatID, externalUserID int64) (bool, error) {
	args := m.Called(ctx, chatID, externalUserID)
	return args.Bool(0), args.Error(1)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories
// are plain fields so tests can install the repository mocks they need.
type MockUnitOfWork struct {
	mock.Mock
	accountRepo AccountRepository
	chatRepo    ChatRepository
	ledgerRepo  LedgerRepository
	eventBus    EventPublisher
}

// SetRepositories installs the repositories returned by the getters
func (m *MockUnitOfWork) SetRepositories(accounts AccountRepository, chats ChatRepository, ledger LedgerRepository, bus EventPublisher) {
	m.accountRepo = accounts
	m.chatRepo = chats
	m.ledgerRepo = ledger
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) ChatRepository() ChatRepository {
	return m.chatRepo
}

func (m *MockUnitOfWork) LedgerRepository() LedgerRepository {
	return m.ledgerRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		return noopPublisher{}
	}
	return m.eventBus
}

type noopPublisher struct{}

func (noopPublisher) Publish(events.Event) {}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockMentionResolver is a mock implementation of MentionResolver
type MockMentionResolver struct {
	mock.Mock
}

func (m *MockMentionResolver) Resolve(ctx context.Context, chatID int64, name string) (*models.Account, error) {
	args := m.Called(ctx, chatID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

// MockPermissionGate is a mock implementation of PermissionGate
type MockPermissionGate struct {
	mock.Mock
}

func (m *MockPermissionGate) MayApply(ctx context.Context, chatID, actorExternalID, delta int64) (bool, error) {
	args := m.Called(ctx, chatID, actorExternalID, delta)
	return args.Bool(0), args.Error(1)
}

// MockLedgerService is a mock implementation of LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Apply(ctx context.Context, chatID, accountID, delta int64, note, actorName string) (*models.LedgerEntry, int64, error) {
	args := m.Called(ctx, chatID, accountID, delta, note, actorName)
	var entry *models.LedgerEntry
	if args.Get(0) != nil {
		entry = args.Get(0).(*models.LedgerEntry)
	}
	return entry, args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerService) RecentHistory(ctx context.Context, chatID, accountID int64) (*models.AccountHistory, error) {
	args := m.Called(ctx, chatID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AccountHistory), args.Error(1)
}

func (m *MockLedgerService) FullHistory(ctx context.Context, chatID, accountID int64) (*models.AccountHistory, error) {
	args := m.Called(ctx, chatID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AccountHistory), args.Error(1)
}

// MockAccountService is a mock implementation of AccountService
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetOrCreateAccount(ctx context.Context, chatID, externalUserID int64, username string) (*models.Account, error) {
	args := m.Called(ctx, chatID, externalUserID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountService) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, chatID int64) ([]*models.Account, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *MockAccountService) SetManager(ctx context.Context, chatID, externalUserID int64, isManager bool) error {
	args := m.Called(ctx, chatID, externalUserID, isManager)
	return args.Error(0)
}
