package usecases

import (
	"context"

	"github.com/girder-hq/girder/internal/domain/subscription"
	"github.com/girder-hq/girder/internal/domain/subscription/valueobjects"
	"github.com/girder-hq/girder/internal/shared/errors"
	"github.com/girder-hq/girder/internal/shared/id"
	"github.com/girder-hq/girder/internal/shared/logger"
)

// GetOrCreateSubscriptionUseCase returns an actor's subscription record,
// creating a free-tier one on first contact. It backs the entitlement
// layer's SubscriptionProvider.
type GetOrCreateSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	historyRepo      subscription.HistoryRepository
	logger           logger.Interface
}

func NewGetOrCreateSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	historyRepo subscription.HistoryRepository,
	logger logger.Interface,
) *GetOrCreateSubscriptionUseCase {
	return &GetOrCreateSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		historyRepo:      historyRepo,
		logger:           logger,
	}
}

// EnsureForActor implements the entitlement layer's SubscriptionProvider.
func (uc *GetOrCreateSubscriptionUseCase) EnsureForActor(ctx context.Context, actorID uint) (*subscription.Subscription, error) {
	return uc.Execute(ctx, actorID)
}

func (uc *GetOrCreateSubscriptionUseCase) Execute(ctx context.Context, actorID uint) (*subscription.Subscription, error) {
	if actorID == 0 {
		return nil, errors.NewValidationError("actor id is required")
	}

	sub, err := uc.subscriptionRepo.GetByActorID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if sub != nil {
		return sub, nil
	}

	sid := id.MustGenerateWithPrefix(id.PrefixSubscription, 16)
	sub, err = subscription.NewSubscription(actorID, sid, valueobjects.TierFree, nil)
	if err != nil {
		return nil, err
	}

	if err := uc.subscriptionRepo.Create(ctx, sub); err != nil {
		// Another request created the record concurrently. The existing
		// row wins.
		if errors.IsDuplicateError(err) {
			return uc.subscriptionRepo.GetByActorID(ctx, actorID)
		}
		return nil, err
	}

	history, err := subscription.NewHistory(
		actorID,
		valueobjects.TierFree,
		valueobjects.TierFree,
		"initial free subscription",
		valueobjects.ChangedBySystem,
	)
	if err == nil {
		if herr := uc.historyRepo.Create(ctx, history); herr != nil {
			uc.logger.Warnw("failed to record subscription creation history",
				"actor_id", actorID, "error", herr)
		}
	}

	uc.logger.Infow("created free subscription", "actor_id", actorID, "sid", sub.SID())
	return sub, nil
}
