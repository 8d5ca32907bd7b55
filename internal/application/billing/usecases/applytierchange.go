package usecases

import (
	"context"

	"github.com/girder-hq/girder/internal/domain/subscription"
	"github.com/girder-hq/girder/internal/domain/subscription/valueobjects"
	"github.com/girder-hq/girder/internal/shared/errors"
	"github.com/girder-hq/girder/internal/shared/logger"
)

// ApplyTierChangeCommand moves an actor's subscription to a different tier.
type ApplyTierChangeCommand struct {
	ActorID   uint
	NewTier   valueobjects.Tier
	Reason    string
	ChangedBy valueobjects.ChangedBy
}

// ApplyTierChangeUseCase performs an admin or support initiated tier change
// on the local record. Provider-driven tier changes arrive through the
// billing event synchronizer instead.
type ApplyTierChangeUseCase struct {
	subscriptionRepo subscription.Repository
	historyRepo      subscription.HistoryRepository
	logger           logger.Interface
}

func NewApplyTierChangeUseCase(
	subscriptionRepo subscription.Repository,
	historyRepo subscription.HistoryRepository,
	logger logger.Interface,
) *ApplyTierChangeUseCase {
	return &ApplyTierChangeUseCase{
		subscriptionRepo: subscriptionRepo,
		historyRepo:      historyRepo,
		logger:           logger,
	}
}

func (uc *ApplyTierChangeUseCase) Execute(ctx context.Context, cmd ApplyTierChangeCommand) (*subscription.Subscription, error) {
	if cmd.ActorID == 0 {
		return nil, errors.NewValidationError("actor id is required")
	}
	if !cmd.NewTier.IsValid() {
		return nil, errors.NewValidationError("invalid tier: " + cmd.NewTier.String())
	}
	if !cmd.ChangedBy.IsValid() {
		return nil, errors.NewValidationError("invalid changed_by value")
	}

	sub, err := uc.subscriptionRepo.GetByActorID(ctx, cmd.ActorID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, errors.NewNotFoundError("subscription not found")
	}

	oldTier := sub.Tier()
	changed, err := sub.ChangeTier(cmd.NewTier)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if !changed {
		return sub, nil
	}

	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	reason := cmd.Reason
	if reason == "" {
		reason = "tier changed"
	}
	history, herr := subscription.NewHistory(cmd.ActorID, oldTier, cmd.NewTier, reason, cmd.ChangedBy)
	if herr == nil {
		if cerr := uc.historyRepo.Create(ctx, history); cerr != nil {
			uc.logger.Warnw("failed to record tier change history",
				"actor_id", cmd.ActorID, "error", cerr)
		}
	}

	uc.logger.Infow("changed subscription tier",
		"actor_id", cmd.ActorID,
		"old_tier", oldTier.String(),
		"new_tier", cmd.NewTier.String(),
		"changed_by", cmd.ChangedBy.String())
	return sub, nil
}
