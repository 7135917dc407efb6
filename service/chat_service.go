package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"karma/cache"
	"karma/events"
	"karma/models"
)

type chatService struct {
	uowFactory UnitOfWorkFactory
	cache      *cache.Cache[string, any]
}

// NewChatService creates the service for chat-level settings and resets
func NewChatService(uowFactory UnitOfWorkFactory, c *cache.Cache[string, any]) ChatService {
	return &chatService{
		uowFactory: uowFactory,
		cache:      c,
	}
}

func (s *chatService) GetOrCreateChat(ctx context.Context, chatID int64, name string) (*models.Chat, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	chat, err := uow.ChatRepository().GetOrCreate(ctx, chatID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create chat %d: %w", chatID, err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.cache.Set(policyKey(chatID), chat.Policy)
	return chat, nil
}

func (s *chatService) SetMultiPointPolicy(ctx context.Context, chatID int64, policy models.MultiPointPolicy) error {
	if !policy.Valid() {
		return fmt.Errorf("invalid multi-point policy %q", policy)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.ChatRepository().UpdatePolicy(ctx, chatID, policy); err != nil {
		return fmt.Errorf("failed to update policy: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.cache.Set(policyKey(chatID), policy)

	log.WithFields(log.Fields{
		"chatID": chatID,
		"policy": policy,
	}).Info("Updated multi-point policy")
	return nil
}

func (s *chatService) ResetScores(ctx context.Context, chatID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.AccountRepository().ResetScores(ctx, chatID); err != nil {
		return fmt.Errorf("failed to reset scores: %w", err)
	}

	resetAt := time.Now().UTC()
	if err := uow.ChatRepository().MarkReset(ctx, chatID, resetAt); err != nil {
		return fmt.Errorf("failed to mark reset: %w", err)
	}

	uow.EventBus().Publish(events.ScoresResetEvent{
		ChatID:  chatID,
		ResetAt: resetAt,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("chatID", chatID).Info("Reset all scores")
	return nil
}

func (s *chatService) Ranking(ctx context.Context, chatID int64, limit int) ([]*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	accounts, err := uow.AccountRepository().TopByScore(ctx, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ranking: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return accounts, nil
}
