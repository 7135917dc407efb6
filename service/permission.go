package service

import (
	"context"
	"fmt"

	"karma/cache"
	"karma/models"
)

type permissionGate struct {
	uowFactory   UnitOfWorkFactory
	cache        *cache.Cache[string, any]
	adminChecker ChatAdminChecker
}

// NewPermissionGate creates the gate that decides whether an actor may
// apply a given delta in a chat. Policy and manager lookups go through
// the shared cache; chat administrator checks always hit the transport.
func NewPermissionGate(uowFactory UnitOfWorkFactory, c *cache.Cache[string, any], adminChecker ChatAdminChecker) PermissionGate {
	return &permissionGate{
		uowFactory:   uowFactory,
		cache:        c,
		adminChecker: adminChecker,
	}
}

func (g *permissionGate) MayApply(ctx context.Context, chatID, actorExternalID, delta int64) (bool, error) {
	// single-point changes are open to everyone regardless of policy
	if delta >= -1 && delta <= 1 {
		return true, nil
	}

	policy, err := g.chatPolicy(ctx, chatID)
	if err != nil {
		return false, err
	}
	if policy == models.PolicyAnyone {
		return true, nil
	}

	isManager, err := g.isManager(ctx, chatID, actorExternalID)
	if err != nil {
		return false, err
	}
	if isManager {
		return true, nil
	}

	isAdmin, err := g.adminChecker.IsChatAdministrator(ctx, chatID, actorExternalID)
	if err != nil {
		return false, fmt.Errorf("failed to check chat administrator: %w", err)
	}
	return isAdmin, nil
}

func (g *permissionGate) chatPolicy(ctx context.Context, chatID int64) (models.MultiPointPolicy, error) {
	if cached, ok := g.cache.Get(policyKey(chatID)); ok {
		if policy, ok := cached.(models.MultiPointPolicy); ok {
			return policy, nil
		}
	}

	uow := g.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	chat, err := uow.ChatRepository().Get(ctx, chatID)
	if err != nil {
		return "", fmt.Errorf("failed to get chat %d: %w", chatID, err)
	}
	if err := uow.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	if chat == nil {
		return models.PolicyAnyone, nil
	}
	g.cache.Set(policyKey(chatID), chat.Policy)
	return chat.Policy, nil
}

func (g *permissionGate) isManager(ctx context.Context, chatID, externalUserID int64) (bool, error) {
	if cached, ok := g.cache.Get(managerKey(chatID, externalUserID)); ok {
		if isManager, ok := cached.(bool); ok {
			return isManager, nil
		}
	}

	uow := g.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByExternalID(ctx, chatID, externalUserID)
	if err != nil {
		return false, fmt.Errorf("failed to get account for user %d: %w", externalUserID, err)
	}
	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if account == nil {
		return false, nil
	}
	g.cache.Set(managerKey(chatID, externalUserID), account.IsManager)
	return account.IsManager, nil
}
