package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"karma/cache"
	"karma/models"
)

type gateFixture struct {
	uowFactory  *MockUnitOfWorkFactory
	uow         *MockUnitOfWork
	accountRepo *MockAccountRepository
	chatRepo    *MockChatRepository
	admin       *MockChatAdminChecker
	cache       *cache.Cache[string, any]
	gate        PermissionGate
}

func newGateFixture() *gateFixture {
	f := &gateFixture{
		uowFactory:  new(MockUnitOfWorkFactory),
		uow:         new(MockUnitOfWork),
		accountRepo: new(MockAccountRepository),
		chatRepo:    new(MockChatRepository),
		admin:       new(MockChatAdminChecker),
		cache:       cache.New[string, any](16, time.Hour),
	}
	f.uow.SetRepositories(f.accountRepo, f.chatRepo, nil, nil)
	f.uowFactory.On("Create").Return(f.uow).Maybe()
	f.uow.On("Begin", mock.Anything).Return(nil).Maybe()
	f.uow.On("Commit").Return(nil).Maybe()
	f.uow.On("Rollback").Return(nil).Maybe()
	f.gate = NewPermissionGate(f.uowFactory, f.cache, f.admin)
	return f
}

func TestGate_UnitDeltaAlwaysAllowed(t *testing.T) {
	f := newGateFixture()
	ctx := context.Background()

	for _, delta := range []int64{1, -1} {
		allowed, err := f.gate.MayApply(ctx, 1, 100, delta)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	f.uowFactory.AssertNotCalled(t, "Create")
	f.admin.AssertNotCalled(t, "IsChatAdministrator", mock.Anything, mock.Anything, mock.Anything)
}

func TestGate_AnyonePolicyAllowsMultiPoint(t *testing.T) {
	f := newGateFixture()
	ctx := context.Background()

	f.chatRepo.On("Get", ctx, int64(1)).
		Return(&models.Chat{ChatID: 1, Policy: models.PolicyAnyone}, nil)

	allowed, err := f.gate.MayApply(ctx, 1, 100, 10)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestGate_ManagersOnlyDeniesRegularActor(t *testing.T) {
	f := newGateFixture()
	ctx := context.Background()

	f.chatRepo.On("Get", ctx, int64(1)).
		Return(&models.Chat{ChatID: 1, Policy: models.PolicyManagersOnly}, nil)
	f.accountRepo.On("GetByExternalID", ctx, int64(1), int64(100)).
		Return(&models.Account{ID: 3, ChatID: 1, ExternalUserID: 100, IsManager: false}, nil)
	f.admin.On("IsChatAdministrator", ctx, int64(1), int64(100)).Return(false, nil)

	allowed, err := f.gate.MayApply(ctx, 1, 100, 5)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestGate_ManagersOnlyAllowsManager(t *testing.T) {
	f := newGateFixture()
	ctx := context.Background()

	f.chatRepo.On("Get", ctx, int64(1)).
		Return(&models.Chat{ChatID: 1, Policy: models.PolicyManagersOnly}, nil)
	f.accountRepo.On("GetByExternalID", ctx, int64(1), int64(100)).
		Return(&models.Account{ID: 3, ChatID: 1, ExternalUserID: 100, IsManager: true}, nil)

	allowed, err := f.gate.MayApply(ctx, 1, 100, 5)
	require.NoError(t, err)
	assert.True(t, allowed)
	f.admin.AssertNotCalled(t, "IsChatAdministrator", mock.Anything, mock.Anything, mock.Anything)
}

func TestGate_ManagersOnlyAllowsChatAdministrator(t *testing.T) {
	f := newGateFixture()
	ctx := context.Background()

	f.chatRepo.On("Get", ctx, int64(1)).
		Return(&models.Chat{ChatID: 1, Policy: models.PolicyManagersOnly}, nil)
	f.accountRepo.On("GetByExternalID", ctx, int64(1), int64(100)).
		Return(&models.Account{ID: 3, ChatID: 1, ExternalUserID: 100, IsManager: false}, nil)
	f.admin.On("IsChatAdministrator", ctx, int64(1), int64(100)).Return(true, nil)

	allowed, err := f.gate.MayApply(ctx, 1, 100, 5)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestGate_PolicyLookupIsCached(t *testing.T) {
	f := newGateFixture()
	ctx := context.Background()

	f.chatRepo.On("Get", ctx, int64(1)).
		Return(&models.Chat{ChatID: 1, Policy: models.PolicyAnyone}, nil).Once()

	for i := 0; i < 3; i++ {
		allowed, err := f.gate.MayApply(ctx, 1, 100, 5)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	f.chatRepo.AssertExpectations(t)
}

func TestGate_UnknownChatDefaultsToAnyone(t *testing.T) {
	f := newGateFixture()
	ctx := context.Background()

	f.chatRepo.On("Get", ctx, int64(99)).Return(nil, nil)

	allowed, err := f.gate.MayApply(ctx, 99, 100, 5)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestGate_UnknownActorIsNotCached(t *testing.T) {
	f := newGateFixture()
	ctx := context.Background()

	f.chatRepo.On("Get", ctx, int64(1)).
		Return(&models.Chat{ChatID: 1, Policy: models.PolicyManagersOnly}, nil)
	f.accountRepo.On("GetByExternalID", ctx, int64(1), int64(100)).Return(nil, nil).Once()
	f.accountRepo.On("GetByExternalID", ctx, int64(1), int64(100)).
		Return(&models.Account{ID: 3, ChatID: 1, ExternalUserID: 100, IsManager: true}, nil).Once()
	f.admin.On("IsChatAdministrator", ctx, int64(1), int64(100)).Return(false, nil)

	allowed, err := f.gate.MayApply(ctx, 1, 100, 5)
	require.NoError(t, err)
	assert.False(t, allowed)

	// the actor appears between calls; a cached miss would hide them
	allowed, err = f.gate.MayApply(ctx, 1, 100, 5)
	require.NoError(t, err)
	assert.True(t, allowed)
}
