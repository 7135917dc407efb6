package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"karma/events"
	"karma/models"
)

type ledgerService struct {
	uowFactory UnitOfWorkFactory
}

// NewLedgerService creates the service that owns score mutations and
// history reads
func NewLedgerService(uowFactory UnitOfWorkFactory) LedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
	}
}

func (s *ledgerService) Apply(ctx context.Context, chatID, accountID, delta int64, note, actorName string) (*models.LedgerEntry, int64, error) {
	if delta == 0 {
		return nil, 0, fmt.Errorf("delta must be non-zero")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get account %d: %w", accountID, err)
	}
	if account == nil || account.ChatID != chatID {
		return nil, 0, fmt.Errorf("account %d not found in chat %d", accountID, chatID)
	}

	newScore, err := uow.AccountRepository().AddScore(ctx, chatID, accountID, delta)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to add score: %w", err)
	}

	entry := &models.LedgerEntry{
		AccountID: accountID,
		Delta:     delta,
		Note:      note,
		ActorName: actorName,
	}
	if err := uow.LedgerRepository().Record(ctx, entry); err != nil {
		return nil, 0, fmt.Errorf("failed to record ledger entry: %w", err)
	}

	uow.EventBus().Publish(events.ScoreChangedEvent{
		ChatID:    chatID,
		AccountID: accountID,
		Username:  account.Username,
		Delta:     delta,
		NewScore:  newScore,
		ActorName: actorName,
	})

	if err := uow.Commit(); err != nil {
		return nil, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"chatID":    chatID,
		"accountID": accountID,
		"delta":     delta,
		"newScore":  newScore,
		"actor":     actorName,
	}).Info("Applied score change")

	return entry, newScore, nil
}

func (s *ledgerService) RecentHistory(ctx context.Context, chatID, accountID int64) (*models.AccountHistory, error) {
	return s.history(ctx, chatID, accountID, false)
}

func (s *ledgerService) FullHistory(ctx context.Context, chatID, accountID int64) (*models.AccountHistory, error) {
	return s.history(ctx, chatID, accountID, true)
}

func (s *ledgerService) history(ctx context.Context, chatID, accountID int64, full bool) (*models.AccountHistory, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	chat, err := uow.ChatRepository().Get(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat %d: %w", chatID, err)
	}
	if chat == nil {
		return nil, fmt.Errorf("chat %d not found", chatID)
	}

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", accountID, err)
	}
	if account == nil || account.ChatID != chatID {
		return nil, fmt.Errorf("account %d not found in chat %d", accountID, chatID)
	}

	history := &models.AccountHistory{Account: account}
	if chat.LastReset != nil {
		history.Recent, err = uow.LedgerRepository().GetByAccountSince(ctx, accountID, *chat.LastReset)
		if err != nil {
			return nil, fmt.Errorf("failed to get recent history: %w", err)
		}
		if full {
			history.Older, err = uow.LedgerRepository().GetByAccountUntil(ctx, accountID, *chat.LastReset)
			if err != nil {
				return nil, fmt.Errorf("failed to get older history: %w", err)
			}
		}
	} else {
		history.Recent, err = uow.LedgerRepository().GetByAccount(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("failed to get history: %w", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return history, nil
}
