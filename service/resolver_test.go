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

type resolverFixture struct {
	uowFactory  *MockUnitOfWorkFactory
	uow         *MockUnitOfWork
	accountRepo *MockAccountRepository
	cache       *cache.Cache[string, any]
	resolver    MentionResolver
}

func newResolverFixture() *resolverFixture {
	f := &resolverFixture{
		uowFactory:  new(MockUnitOfWorkFactory),
		uow:         new(MockUnitOfWork),
		accountRepo: new(MockAccountRepository),
		cache:       cache.New[string, any](16, time.Hour),
	}
	f.uow.SetRepositories(f.accountRepo, nil, nil, nil)
	f.uowFactory.On("Create").Return(f.uow).Maybe()
	f.uow.On("Begin", mock.Anything).Return(nil).Maybe()
	f.uow.On("Commit").Return(nil).Maybe()
	f.uow.On("Rollback").Return(nil).Maybe()
	f.resolver = NewMentionResolver(f.uowFactory, f.cache)
	return f
}

func TestResolver_LooksUpByName(t *testing.T) {
	f := newResolverFixture()
	ctx := context.Background()

	account := &models.Account{ID: 7, ChatID: 1, Username: "alice"}
	f.accountRepo.On("GetByUsername", ctx, int64(1), "alice").Return(account, nil)

	found, err := f.resolver.Resolve(ctx, 1, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(7), found.ID)
}

func TestResolver_SecondLookupUsesCachedID(t *testing.T) {
	f := newResolverFixture()
	ctx := context.Background()

	account := &models.Account{ID: 7, ChatID: 1, Username: "alice"}
	f.accountRepo.On("GetByUsername", ctx, int64(1), "alice").Return(account, nil).Once()
	f.accountRepo.On("GetByID", ctx, int64(7)).Return(account, nil).Once()

	_, err := f.resolver.Resolve(ctx, 1, "alice")
	require.NoError(t, err)
	found, err := f.resolver.Resolve(ctx, 1, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(7), found.ID)

	f.accountRepo.AssertExpectations(t)
}

func TestResolver_MissingNameNotCached(t *testing.T) {
	f := newResolverFixture()
	ctx := context.Background()

	f.accountRepo.On("GetByUsername", ctx, int64(1), "newcomer").Return(nil, nil).Once()
	account := &models.Account{ID: 9, ChatID: 1, Username: "newcomer"}
	f.accountRepo.On("GetByUsername", ctx, int64(1), "newcomer").Return(account, nil).Once()

	found, err := f.resolver.Resolve(ctx, 1, "newcomer")
	require.NoError(t, err)
	assert.Nil(t, found)

	// the account appears between lookups and must be found right away
	found, err = f.resolver.Resolve(ctx, 1, "newcomer")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, int64(9), found.ID)
}

func TestResolver_StaleCachedIDFallsBackToName(t *testing.T) {
	f := newResolverFixture()
	ctx := context.Background()

	f.cache.Set(accountKey(1, "alice"), int64(7))
	f.accountRepo.On("GetByID", ctx, int64(7)).Return(nil, nil)
	account := &models.Account{ID: 8, ChatID: 1, Username: "alice"}
	f.accountRepo.On("GetByUsername", ctx, int64(1), "alice").Return(account, nil)

	found, err := f.resolver.Resolve(ctx, 1, "alice")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, int64(8), found.ID)
}
