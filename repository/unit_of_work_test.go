package repository

import (
	"context"
	"sync"
	"testing"

	"karma/events"
	"karma/models"
	"karma/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitAppliesBoth(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	testutil.CreateTestChat(t, testDB.DB, 100, "test chat")
	account := testutil.CreateTestAccount(t, testDB.DB, 100, 555, "alice")

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	newScore, err := uow.AccountRepository().AddScore(ctx, 100, account.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), newScore)

	require.NoError(t, uow.LedgerRepository().Record(ctx, &models.LedgerEntry{
		AccountID: account.ID,
		Delta:     4,
		Note:      "release day",
		ActorName: "bob",
	}))
	require.NoError(t, uow.Commit())

	got, err := NewAccountRepository(testDB.DB).GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Score)

	entries, err := NewLedgerRepository(testDB.DB).GetByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUnitOfWork_RollbackAppliesNeither(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	testutil.CreateTestChat(t, testDB.DB, 100, "test chat")
	account := testutil.CreateTestAccount(t, testDB.DB, 100, 555, "alice")

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	_, err := uow.AccountRepository().AddScore(ctx, 100, account.ID, 4)
	require.NoError(t, err)
	require.NoError(t, uow.LedgerRepository().Record(ctx, &models.LedgerEntry{
		AccountID: account.ID,
		Delta:     4,
		ActorName: "bob",
	}))
	require.NoError(t, uow.Rollback())

	got, err := NewAccountRepository(testDB.DB).GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Score)

	entries, err := NewLedgerRepository(testDB.DB).GetByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// Concurrent one-point applies on the same account must all land: the
// score ends up raised by exactly N with exactly N ledger rows.
func TestUnitOfWork_ConcurrentAppliesSerialize(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	testutil.CreateTestChat(t, testDB.DB, 100, "test chat")
	account := testutil.CreateTestAccount(t, testDB.DB, 100, 555, "alice")

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())

	const workers = 20
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			uow := factory.Create()
			if err := uow.Begin(ctx); err != nil {
				errs[n] = err
				return
			}
			defer uow.Rollback()

			if _, err := uow.AccountRepository().AddScore(ctx, 100, account.ID, 1); err != nil {
				errs[n] = err
				return
			}
			if err := uow.LedgerRepository().Record(ctx, &models.LedgerEntry{
				AccountID: account.ID,
				Delta:     1,
				ActorName: "bob",
			}); err != nil {
				errs[n] = err
				return
			}
			errs[n] = uow.Commit()
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "worker %d", i)
	}

	got, err := NewAccountRepository(testDB.DB).GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(workers), got.Score)

	entries, err := NewLedgerRepository(testDB.DB).GetByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Len(t, entries, workers)
}
