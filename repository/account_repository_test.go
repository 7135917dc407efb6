package repository

import (
	"context"
	"testing"

	"karma/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	testutil.CreateTestChat(t, testDB.DB, 100, "test chat")

	t.Run("unknown account returns nil", func(t *testing.T) {
		account, err := repo.GetByUsername(ctx, 100, "nobody")
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("create and fetch by every key", func(t *testing.T) {
		created, err := repo.Create(ctx, 100, 555, "alice")
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, int64(0), created.Score)
		assert.False(t, created.IsManager)

		byID, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, byID)
		assert.Equal(t, "alice", byID.Username)

		byExternal, err := repo.GetByExternalID(ctx, 100, 555)
		require.NoError(t, err)
		require.NotNil(t, byExternal)
		assert.Equal(t, created.ID, byExternal.ID)

		byName, err := repo.GetByUsername(ctx, 100, "alice")
		require.NoError(t, err)
		require.NotNil(t, byName)
		assert.Equal(t, created.ID, byName.ID)
	})

	t.Run("duplicate user in same chat is rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, 100, 555, "alice-again")
		assert.Error(t, err)
	})

	t.Run("same user in another chat gets its own account", func(t *testing.T) {
		testutil.CreateTestChat(t, testDB.DB, 200, "other chat")
		other, err := repo.Create(ctx, 200, 555, "alice")
		require.NoError(t, err)
		assert.NotZero(t, other.ID)
	})
}

func TestAccountRepository_AddScore(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	testutil.CreateTestChat(t, testDB.DB, 100, "test chat")
	account := testutil.CreateTestAccount(t, testDB.DB, 100, 555, "alice")

	t.Run("positive and negative deltas", func(t *testing.T) {
		score, err := repo.AddScore(ctx, 100, account.ID, 5)
		require.NoError(t, err)
		assert.Equal(t, int64(5), score)

		score, err = repo.AddScore(ctx, 100, account.ID, -2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), score)
	})

	t.Run("unknown account fails without mutation", func(t *testing.T) {
		_, err := repo.AddScore(ctx, 100, 999999, 1)
		assert.Error(t, err)
	})

	t.Run("wrong chat scope fails", func(t *testing.T) {
		_, err := repo.AddScore(ctx, 200, account.ID, 1)
		assert.Error(t, err)
	})
}

func TestAccountRepository_SetManager(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	testutil.CreateTestChat(t, testDB.DB, 100, "test chat")
	testutil.CreateTestAccount(t, testDB.DB, 100, 555, "alice")

	require.NoError(t, repo.SetManager(ctx, 100, 555, true))

	account, err := repo.GetByExternalID(ctx, 100, 555)
	require.NoError(t, err)
	assert.True(t, account.IsManager)

	require.NoError(t, repo.SetManager(ctx, 100, 555, false))
	account, err = repo.GetByExternalID(ctx, 100, 555)
	require.NoError(t, err)
	assert.False(t, account.IsManager)

	assert.Error(t, repo.SetManager(ctx, 100, 777, true))
}

func TestAccountRepository_TopByScoreAndReset(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	testutil.CreateTestChat(t, testDB.DB, 100, "test chat")
	testutil.SeedScoredAccount(t, testDB.DB, 100, 1, "alice", 10)
	testutil.SeedScoredAccount(t, testDB.DB, 100, 2, "bob", 30)
	testutil.SeedScoredAccount(t, testDB.DB, 100, 3, "carol", 20)

	top, err := repo.TopByScore(ctx, 100, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "bob", top[0].Username)
	assert.Equal(t, "carol", top[1].Username)

	require.NoError(t, repo.ResetScores(ctx, 100))

	accounts, err := repo.ListByChat(ctx, 100)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	for _, account := range accounts {
		assert.Equal(t, int64(0), account.Score)
	}
}
