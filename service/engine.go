package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	"karma/models"
	"karma/parser"
)

type engineService struct {
	resolver   MentionResolver
	gate       PermissionGate
	ledger     LedgerService
	accounts   AccountService
	selfExempt map[string]struct{}
}

// NewEngineService creates the engine that turns parsed intents into
// committed score changes. Actor names in selfExempt may score
// themselves; everyone else gets the self-target guard.
func NewEngineService(resolver MentionResolver, gate PermissionGate, ledger LedgerService, accounts AccountService, selfExempt []string) EngineService {
	exempt := make(map[string]struct{}, len(selfExempt))
	for _, name := range selfExempt {
		exempt[name] = struct{}{}
	}
	return &engineService{
		resolver:   resolver,
		gate:       gate,
		ledger:     ledger,
		accounts:   accounts,
		selfExempt: exempt,
	}
}

func (s *engineService) Process(ctx context.Context, chatID, actorExternalID int64, actorName string, intents []models.Intent) (*models.ProcessResult, error) {
	result := &models.ProcessResult{}
	seen := make(map[string]struct{})

	for _, intent := range intents {
		if _, dup := seen[intent.TargetName]; dup {
			continue
		}
		seen[intent.TargetName] = struct{}{}

		account, err := s.resolver.Resolve(ctx, chatID, intent.TargetName)
		if err != nil {
			log.WithFields(log.Fields{
				"chatID": chatID,
				"target": intent.TargetName,
				"error":  err,
			}).Error("Failed to resolve mention")
			result.Failed = append(result.Failed, intent.TargetName)
			continue
		}
		if account == nil {
			result.NotFound = append(result.NotFound, intent.TargetName)
			continue
		}

		if account.ExternalUserID == actorExternalID && !s.isSelfExempt(actorName) {
			name := intent.TargetName
			result.SelfTarget = &name
			continue
		}

		change, err := s.applyIntent(ctx, chatID, actorExternalID, actorName, account, intent.Delta, intent.Note)
		if err != nil {
			if err == ErrPermissionDenied {
				result.PermissionDenied = true
				continue
			}
			log.WithFields(log.Fields{
				"chatID": chatID,
				"target": intent.TargetName,
				"error":  err,
			}).Error("Failed to apply score change")
			result.Failed = append(result.Failed, intent.TargetName)
			continue
		}
		result.Applied = append(result.Applied, *change)
	}

	return result, nil
}

func (s *engineService) ProcessReply(ctx context.Context, chatID, actorExternalID int64, actorName string, targetExternalID int64, targetName, text string) (*models.ProcessResult, error) {
	result := &models.ProcessResult{}

	delta, note, ok := parser.ParseLeading(text)
	if !ok || delta == 0 {
		// not a scoring attempt, nothing to do
		return result, nil
	}

	if targetExternalID == actorExternalID && !s.isSelfExempt(actorName) {
		name := targetName
		result.SelfTarget = &name
		return result, nil
	}

	account, err := s.accounts.GetOrCreateAccount(ctx, chatID, targetExternalID, targetName)
	if err != nil {
		result.Failed = append(result.Failed, targetName)
		return result, err
	}

	change, err := s.applyIntent(ctx, chatID, actorExternalID, actorName, account, delta, note)
	if err != nil {
		if err == ErrPermissionDenied {
			result.PermissionDenied = true
			return result, nil
		}
		result.Failed = append(result.Failed, targetName)
		return result, err
	}
	result.Applied = append(result.Applied, *change)
	return result, nil
}

func (s *engineService) applyIntent(ctx context.Context, chatID, actorExternalID int64, actorName string, target *models.Account, delta int64, note string) (*models.AppliedChange, error) {
	allowed, err := s.gate.MayApply(ctx, chatID, actorExternalID, delta)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrPermissionDenied
	}

	_, newScore, err := s.ledger.Apply(ctx, chatID, target.ID, delta, note, actorName)
	if err != nil {
		return nil, err
	}
	return &models.AppliedChange{
		TargetName: target.Username,
		Delta:      delta,
		NewScore:   newScore,
	}, nil
}

func (s *engineService) isSelfExempt(actorName string) bool {
	_, ok := s.selfExempt[actorName]
	return ok
}
