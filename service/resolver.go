package service

import (
	"context"
	"fmt"

	"karma/cache"
	"karma/models"
)

type mentionResolver struct {
	uowFactory UnitOfWorkFactory
	cache      *cache.Cache[string, any]
}

// NewMentionResolver creates a resolver that maps mention names to
// accounts, caching successful lookups. Missing names are never cached
// so a newly created account is visible immediately.
func NewMentionResolver(uowFactory UnitOfWorkFactory, c *cache.Cache[string, any]) MentionResolver {
	return &mentionResolver{
		uowFactory: uowFactory,
		cache:      c,
	}
}

func (r *mentionResolver) Resolve(ctx context.Context, chatID int64, username string) (*models.Account, error) {
	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	var account *models.Account

	if cached, ok := r.cache.Get(accountKey(chatID, username)); ok {
		if accountID, ok := cached.(int64); ok {
			found, err := uow.AccountRepository().GetByID(ctx, accountID)
			if err != nil {
				return nil, fmt.Errorf("failed to get account %d: %w", accountID, err)
			}
			if found != nil && found.ChatID == chatID {
				account = found
			}
		}
	}

	if account == nil {
		found, err := uow.AccountRepository().GetByUsername(ctx, chatID, username)
		if err != nil {
			return nil, fmt.Errorf("failed to get account %q: %w", username, err)
		}
		account = found
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if account != nil {
		r.cache.Set(accountKey(chatID, username), account.ID)
	}
	return account, nil
}
