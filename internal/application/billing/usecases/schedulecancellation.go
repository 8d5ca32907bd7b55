package usecases

import (
	"context"

	"github.com/girder-hq/girder/internal/domain/subscription"
	"github.com/girder-hq/girder/internal/domain/subscription/valueobjects"
	"github.com/girder-hq/girder/internal/shared/errors"
	"github.com/girder-hq/girder/internal/shared/logger"
)

// ScheduleCancellationCommand requests a cancellation for an actor's
// subscription, either immediately or at the end of the current billing
// period.
type ScheduleCancellationCommand struct {
	ActorID     uint
	AtPeriodEnd bool
	Reason      string
	ChangedBy   valueobjects.ChangedBy
}

// ScheduleCancellationUseCase handles actor and admin initiated
// cancellations. Immediate cancellation transitions the record right away;
// a period-end cancellation only flags it and leaves the transition to the
// reconciliation sweep.
type ScheduleCancellationUseCase struct {
	subscriptionRepo subscription.Repository
	historyRepo      subscription.HistoryRepository
	logger           logger.Interface
}

func NewScheduleCancellationUseCase(
	subscriptionRepo subscription.Repository,
	historyRepo subscription.HistoryRepository,
	logger logger.Interface,
) *ScheduleCancellationUseCase {
	return &ScheduleCancellationUseCase{
		subscriptionRepo: subscriptionRepo,
		historyRepo:      historyRepo,
		logger:           logger,
	}
}

func (uc *ScheduleCancellationUseCase) Execute(ctx context.Context, cmd ScheduleCancellationCommand) error {
	if cmd.ActorID == 0 {
		return errors.NewValidationError("actor id is required")
	}
	if !cmd.ChangedBy.IsValid() {
		return errors.NewValidationError("invalid changed_by value")
	}

	sub, err := uc.subscriptionRepo.GetByActorID(ctx, cmd.ActorID)
	if err != nil {
		return err
	}
	if sub == nil {
		return errors.NewNotFoundError("subscription not found")
	}

	reason := cmd.Reason
	if reason == "" {
		reason = "cancellation requested"
	}

	if cmd.AtPeriodEnd {
		if err := sub.ScheduleCancellation(); err != nil {
			return errors.NewValidationError(err.Error())
		}
		if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
			return err
		}
		uc.logger.Infow("scheduled cancellation at period end",
			"actor_id", cmd.ActorID, "period_end", sub.CurrentPeriodEnd())
		return nil
	}

	canceled, err := sub.Cancel()
	if err != nil {
		return err
	}
	if !canceled {
		return nil
	}
	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		return err
	}

	history, herr := subscription.NewHistory(cmd.ActorID, sub.Tier(), sub.Tier(), reason, cmd.ChangedBy)
	if herr == nil {
		if cerr := uc.historyRepo.Create(ctx, history); cerr != nil {
			uc.logger.Warnw("failed to record cancellation history",
				"actor_id", cmd.ActorID, "error", cerr)
		}
	}

	uc.logger.Infow("canceled subscription", "actor_id", cmd.ActorID, "changed_by", cmd.ChangedBy.String())
	return nil
}
