package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"karma/models"
)

type pendingFixture struct {
	accounts *MockAccountService
	gate     *MockPermissionGate
	ledger   *MockLedgerService
	clock    *fakeClock
	pending  *PendingActions
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newPendingFixture(t *testing.T) *pendingFixture {
	f := &pendingFixture{
		accounts: new(MockAccountService),
		gate:     new(MockPermissionGate),
		ledger:   new(MockLedgerService),
		clock:    &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
	f.pending = NewPendingActions(f.accounts, f.gate, f.ledger, nil, 10*time.Minute)
	f.pending.now = f.clock.Now
	return f
}

func TestPending_SelectThenComplete(t *testing.T) {
	f := newPendingFixture(t)
	ctx := context.Background()

	target := &models.Account{ID: 7, ExternalUserID: 200, ChatID: 1, Username: "alice"}
	f.accounts.On("GetAccount", ctx, int64(7)).Return(target, nil)
	f.gate.On("MayApply", ctx, int64(1), int64(100), int64(4)).Return(true, nil)
	f.ledger.On("Apply", ctx, int64(1), int64(7), int64(4), "for the review", "bob").
		Return(&models.LedgerEntry{}, int64(9), nil)

	require.NoError(t, f.pending.Select(ctx, 1, 100, "bob", 7))
	assert.True(t, f.pending.Pending(1, 100))

	change, err := f.pending.CompleteWithMessage(ctx, 1, 100, "bob", "+4 for the review")
	require.NoError(t, err)
	assert.Equal(t, "alice", change.TargetName)
	assert.Equal(t, int64(4), change.Delta)
	assert.Equal(t, int64(9), change.NewScore)

	assert.False(t, f.pending.Pending(1, 100))
}

func TestPending_SelectSelfRejected(t *testing.T) {
	f := newPendingFixture(t)
	ctx := context.Background()

	self := &models.Account{ID: 7, ExternalUserID: 100, ChatID: 1, Username: "bob"}
	f.accounts.On("GetAccount", ctx, int64(7)).Return(self, nil)

	err := f.pending.Select(ctx, 1, 100, "bob", 7)
	assert.ErrorIs(t, err, ErrSelfTarget)
	assert.False(t, f.pending.Pending(1, 100))
}

func TestPending_CompleteWithoutSelection(t *testing.T) {
	f := newPendingFixture(t)

	_, err := f.pending.CompleteWithMessage(context.Background(), 1, 100, "bob", "+2")
	assert.ErrorIs(t, err, ErrNoPendingAction)
}

func TestPending_BadAmountKeepsSelection(t *testing.T) {
	f := newPendingFixture(t)
	ctx := context.Background()

	target := &models.Account{ID: 7, ExternalUserID: 200, ChatID: 1, Username: "alice"}
	f.accounts.On("GetAccount", ctx, int64(7)).Return(target, nil)
	f.gate.On("MayApply", ctx, int64(1), int64(100), int64(2)).Return(true, nil)
	f.ledger.On("Apply", ctx, int64(1), int64(7), int64(2), "", "bob").
		Return(&models.LedgerEntry{}, int64(2), nil)

	require.NoError(t, f.pending.Select(ctx, 1, 100, "bob", 7))

	_, err := f.pending.CompleteWithMessage(ctx, 1, 100, "bob", "soon")
	assert.ErrorIs(t, err, ErrAmountRetry)

	// zero is not a usable amount either
	_, err = f.pending.CompleteWithMessage(ctx, 1, 100, "bob", "0")
	assert.ErrorIs(t, err, ErrAmountRetry)

	change, err := f.pending.CompleteWithMessage(ctx, 1, 100, "bob", "+2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), change.Delta)
}

func TestPending_NewSelectionOverwrites(t *testing.T) {
	f := newPendingFixture(t)
	ctx := context.Background()

	alice := &models.Account{ID: 7, ExternalUserID: 200, ChatID: 1, Username: "alice"}
	carol := &models.Account{ID: 8, ExternalUserID: 300, ChatID: 1, Username: "carol"}
	f.accounts.On("GetAccount", ctx, int64(7)).Return(alice, nil)
	f.accounts.On("GetAccount", ctx, int64(8)).Return(carol, nil)
	f.gate.On("MayApply", ctx, int64(1), int64(100), int64(1)).Return(true, nil)
	f.ledger.On("Apply", ctx, int64(1), int64(8), int64(1), "", "bob").
		Return(&models.LedgerEntry{}, int64(1), nil)

	require.NoError(t, f.pending.Select(ctx, 1, 100, "bob", 7))
	require.NoError(t, f.pending.Select(ctx, 1, 100, "bob", 8))

	change, err := f.pending.CompleteWithMessage(ctx, 1, 100, "bob", "+1")
	require.NoError(t, err)
	assert.Equal(t, "carol", change.TargetName)
	f.ledger.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, int64(7), mock.Anything, mock.Anything, mock.Anything)
}

func TestPending_SelectionExpires(t *testing.T) {
	f := newPendingFixture(t)
	ctx := context.Background()

	target := &models.Account{ID: 7, ExternalUserID: 200, ChatID: 1, Username: "alice"}
	f.accounts.On("GetAccount", ctx, int64(7)).Return(target, nil)

	require.NoError(t, f.pending.Select(ctx, 1, 100, "bob", 7))
	f.clock.Advance(11 * time.Minute)

	assert.False(t, f.pending.Pending(1, 100))
	_, err := f.pending.CompleteWithMessage(ctx, 1, 100, "bob", "+2")
	assert.ErrorIs(t, err, ErrNoPendingAction)
}

func TestPending_DeniedAmountConsumesSelection(t *testing.T) {
	f := newPendingFixture(t)
	ctx := context.Background()

	target := &models.Account{ID: 7, ExternalUserID: 200, ChatID: 1, Username: "alice"}
	f.accounts.On("GetAccount", ctx, int64(7)).Return(target, nil)
	f.gate.On("MayApply", ctx, int64(1), int64(100), int64(50)).Return(false, nil)

	require.NoError(t, f.pending.Select(ctx, 1, 100, "bob", 7))

	_, err := f.pending.CompleteWithMessage(ctx, 1, 100, "bob", "+50")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// a valid amount ends the flow even when denied
	assert.False(t, f.pending.Pending(1, 100))
	f.ledger.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPending_ActorsAreIndependent(t *testing.T) {
	f := newPendingFixture(t)
	ctx := context.Background()

	target := &models.Account{ID: 7, ExternalUserID: 200, ChatID: 1, Username: "alice"}
	other := &models.Account{ID: 9, ExternalUserID: 200, ChatID: 2, Username: "alice"}
	f.accounts.On("GetAccount", ctx, int64(7)).Return(target, nil)
	f.accounts.On("GetAccount", ctx, int64(9)).Return(other, nil)

	require.NoError(t, f.pending.Select(ctx, 1, 100, "bob", 7))
	require.NoError(t, f.pending.Select(ctx, 2, 100, "bob", 9))

	assert.True(t, f.pending.Pending(1, 100))
	assert.True(t, f.pending.Pending(2, 100))
	assert.False(t, f.pending.Pending(1, 300))
}
