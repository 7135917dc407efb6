package service

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"karma/models"
	"karma/parser"
)

// DefaultPendingTimeout is how long a target selection stays armed
// before it lapses back to idle.
const DefaultPendingTimeout = 10 * time.Minute

type pendingKey struct {
	chatID  int64
	actorID int64
}

type pendingEntry struct {
	targetAccountID int64
	createdAt       time.Time
}

// PendingActions tracks per-actor two-step score changes: the actor
// picks a target first and supplies the amount in a follow-up message.
// Each (chat, actor) pair holds at most one armed selection; a new
// selection overwrites the previous one. Expiry is lazy, checked on
// the next touch.
type PendingActions struct {
	mu      sync.Mutex
	entries map[pendingKey]*pendingEntry

	accounts   AccountService
	gate       PermissionGate
	ledger     LedgerService
	selfExempt map[string]struct{}
	timeout    time.Duration

	now func() time.Time
}

// NewPendingActions creates the pending-action state machine
func NewPendingActions(accounts AccountService, gate PermissionGate, ledger LedgerService, selfExempt []string, timeout time.Duration) *PendingActions {
	if timeout <= 0 {
		timeout = DefaultPendingTimeout
	}
	exempt := make(map[string]struct{}, len(selfExempt))
	for _, name := range selfExempt {
		exempt[name] = struct{}{}
	}
	return &PendingActions{
		entries:    make(map[pendingKey]*pendingEntry),
		accounts:   accounts,
		gate:       gate,
		ledger:     ledger,
		selfExempt: exempt,
		timeout:    timeout,
		now:        time.Now,
	}
}

// Select arms a pending action for the actor, overwriting any earlier
// selection. Selecting yourself is rejected up front and leaves the
// actor idle.
func (p *PendingActions) Select(ctx context.Context, chatID, actorExternalID int64, actorName string, targetAccountID int64) error {
	account, err := p.accounts.GetAccount(ctx, targetAccountID)
	if err != nil {
		return err
	}
	if account == nil || account.ChatID != chatID {
		return &TargetNotFoundError{Name: "selected target"}
	}

	if account.ExternalUserID == actorExternalID {
		if _, exempt := p.selfExempt[actorName]; !exempt {
			return ErrSelfTarget
		}
	}

	p.mu.Lock()
	p.entries[pendingKey{chatID, actorExternalID}] = &pendingEntry{
		targetAccountID: targetAccountID,
		createdAt:       p.now(),
	}
	p.mu.Unlock()

	log.WithFields(log.Fields{
		"chatID":   chatID,
		"actorID":  actorExternalID,
		"targetID": targetAccountID,
	}).Debug("Armed pending score change")
	return nil
}

// Pending reports whether the actor has an armed, unexpired selection
func (p *PendingActions) Pending(chatID, actorExternalID int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.take(pendingKey{chatID, actorExternalID}, false) != nil
}

// CompleteWithMessage finishes a pending action using the actor's next
// message. The leading token must carry the amount; a message that
// does not parse, or parses to zero, returns ErrAmountRetry and keeps
// the selection armed. A usable amount consumes the selection whether
// or not the change is ultimately applied.
func (p *PendingActions) CompleteWithMessage(ctx context.Context, chatID, actorExternalID int64, actorName, text string) (*models.AppliedChange, error) {
	key := pendingKey{chatID, actorExternalID}

	p.mu.Lock()
	entry := p.take(key, false)
	p.mu.Unlock()
	if entry == nil {
		return nil, ErrNoPendingAction
	}

	delta, note, ok := parser.ParseLeading(text)
	if !ok || delta == 0 {
		return nil, ErrAmountRetry
	}

	p.mu.Lock()
	entry = p.take(key, true)
	p.mu.Unlock()
	if entry == nil {
		return nil, ErrNoPendingAction
	}

	allowed, err := p.gate.MayApply(ctx, chatID, actorExternalID, delta)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrPermissionDenied
	}

	account, err := p.accounts.GetAccount(ctx, entry.targetAccountID)
	if err != nil {
		return nil, err
	}
	if account == nil || account.ChatID != chatID {
		return nil, &TargetNotFoundError{Name: "selected target"}
	}

	_, newScore, err := p.ledger.Apply(ctx, chatID, account.ID, delta, note, actorName)
	if err != nil {
		return nil, err
	}
	return &models.AppliedChange{
		TargetName: account.Username,
		Delta:      delta,
		NewScore:   newScore,
	}, nil
}

// take returns the live entry for key, dropping it when expired.
// When consume is set the entry is removed either way.
// Callers must hold p.mu.
func (p *PendingActions) take(key pendingKey, consume bool) *pendingEntry {
	entry, ok := p.entries[key]
	if !ok {
		return nil
	}
	if p.now().Sub(entry.createdAt) > p.timeout {
		delete(p.entries, key)
		return nil
	}
	if consume {
		delete(p.entries, key)
	}
	return entry
}
