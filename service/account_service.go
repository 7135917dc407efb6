package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"karma/cache"
	"karma/events"
	"karma/models"
)

type accountService struct {
	uowFactory UnitOfWorkFactory
	cache      *cache.Cache[string, any]
}

// NewAccountService creates the service for account lifecycle operations
func NewAccountService(uowFactory UnitOfWorkFactory, c *cache.Cache[string, any]) AccountService {
	return &accountService{
		uowFactory: uowFactory,
		cache:      c,
	}
}

func (s *accountService) GetOrCreateAccount(ctx context.Context, chatID, externalUserID int64, username string) (*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByExternalID(ctx, chatID, externalUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account for user %d: %w", externalUserID, err)
	}

	if account == nil {
		account, err = uow.AccountRepository().Create(ctx, chatID, externalUserID, username)
		if err != nil {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
		uow.EventBus().Publish(events.AccountCreatedEvent{
			ChatID:         chatID,
			AccountID:      account.ID,
			ExternalUserID: externalUserID,
			Username:       account.Username,
		})
		log.WithFields(log.Fields{
			"chatID":   chatID,
			"userID":   externalUserID,
			"username": username,
		}).Info("Created account")
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.cache.Set(accountKey(chatID, account.Username), account.ID)
	return account, nil
}

func (s *accountService) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, chatID int64) ([]*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	accounts, err := uow.AccountRepository().ListByChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return accounts, nil
}

func (s *accountService) SetManager(ctx context.Context, chatID, externalUserID int64, isManager bool) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.AccountRepository().SetManager(ctx, chatID, externalUserID, isManager); err != nil {
		return fmt.Errorf("failed to set manager flag: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	// refresh so the gate sees the change without waiting for expiry
	s.cache.Set(managerKey(chatID, externalUserID), isManager)

	log.WithFields(log.Fields{
		"chatID":    chatID,
		"userID":    externalUserID,
		"isManager": isManager,
	}).Info("Updated manager flag")
	return nil
}
