package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/girder-hq/girder/internal/domain/notification"
	"github.com/girder-hq/girder/internal/domain/subscription"
	"github.com/girder-hq/girder/internal/domain/subscription/valueobjects"
	"github.com/girder-hq/girder/internal/shared/biztime"
	"github.com/girder-hq/girder/internal/shared/id"
	"github.com/girder-hq/girder/internal/shared/logger"
)

// ReconcileSubscriptionsUseCase is the periodic sweep backstopping the
// event-driven synchronizer: it resolves due scheduled cancellations and
// sends trial expiry warnings. Every pass is idempotent, so overlapping or
// repeated runs do no extra work.
type ReconcileSubscriptionsUseCase struct {
	subscriptionRepo subscription.Repository
	historyRepo      subscription.HistoryRepository
	notificationRepo notification.Repository
	warningWindow    time.Duration
	logger           logger.Interface
}

func NewReconcileSubscriptionsUseCase(
	subscriptionRepo subscription.Repository,
	historyRepo subscription.HistoryRepository,
	notificationRepo notification.Repository,
	warningWindow time.Duration,
	logger logger.Interface,
) *ReconcileSubscriptionsUseCase {
	return &ReconcileSubscriptionsUseCase{
		subscriptionRepo: subscriptionRepo,
		historyRepo:      historyRepo,
		notificationRepo: notificationRepo,
		warningWindow:    warningWindow,
		logger:           logger,
	}
}

// Execute runs one reconciliation pass and returns the number of records it
// touched.
func (uc *ReconcileSubscriptionsUseCase) Execute(ctx context.Context) (int, error) {
	now := biztime.NowUTC()
	touched := 0

	n, err := uc.resolveScheduledCancellations(ctx, now)
	touched += n
	if err != nil {
		return touched, err
	}

	n, err = uc.sendTrialWarnings(ctx, now)
	touched += n
	if err != nil {
		return touched, err
	}

	uc.logger.Infow("reconciliation pass complete", "touched", touched)
	return touched, nil
}

func (uc *ReconcileSubscriptionsUseCase) resolveScheduledCancellations(ctx context.Context, now time.Time) (int, error) {
	due, err := uc.subscriptionRepo.ListDueScheduledCancellations(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list due cancellations: %w", err)
	}

	resolved := 0
	for _, sub := range due {
		canceled, err := sub.ResolveScheduledCancellation(now)
		if err != nil {
			uc.logger.Errorw("failed to resolve scheduled cancellation",
				"actor_id", sub.ActorID(), "error", err)
			continue
		}
		if !canceled {
			continue
		}
		if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
			uc.logger.Errorw("failed to persist resolved cancellation",
				"actor_id", sub.ActorID(), "error", err)
			continue
		}
		resolved++

		history, herr := subscription.NewHistory(
			sub.ActorID(), sub.Tier(), sub.Tier(),
			"scheduled cancellation resolved at period end",
			valueobjects.ChangedBySystem,
		)
		if herr == nil {
			if cerr := uc.historyRepo.Create(ctx, history); cerr != nil {
				uc.logger.Warnw("failed to record cancellation history",
					"actor_id", sub.ActorID(), "error", cerr)
			}
		}
		uc.notify(ctx, sub.ActorID(), notification.TypeSubscriptionCanceled,
			"Subscription canceled",
			"Your subscription was canceled at the end of the billing period, as requested.",
			map[string]any{"tier": sub.Tier().String()})
	}

	if resolved > 0 {
		uc.logger.Infow("resolved scheduled cancellations", "count", resolved)
	}
	return resolved, nil
}

func (uc *ReconcileSubscriptionsUseCase) sendTrialWarnings(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(uc.warningWindow)
	trialing, err := uc.subscriptionRepo.ListTrialingEndingBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list expiring trials: %w", err)
	}

	warned := 0
	for _, sub := range trialing {
		if !sub.TrialEndingWithin(now, uc.warningWindow) {
			continue
		}
		// Claim the warning before sending it, like the synchronizer claims
		// event ids: a failed Update must not leave the next sweep
		// re-notifying.
		sub.MarkTrialWarningSent(now)
		if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
			uc.logger.Errorw("failed to persist trial warning marker",
				"actor_id", sub.ActorID(), "error", err)
			continue
		}

		daysLeft := biztime.DaysUntil(now, *sub.TrialEndsAt())
		uc.notify(ctx, sub.ActorID(), notification.TypeTrialEnding,
			"Trial ending soon",
			fmt.Sprintf("Your trial ends in %d day(s). Add a payment method to keep full access.", daysLeft),
			map[string]any{"days_left": daysLeft, "trial_ends_at": sub.TrialEndsAt()})

		warned++
	}

	if warned > 0 {
		uc.logger.Infow("sent trial expiry warnings", "count", warned)
	}
	return warned, nil
}

func (uc *ReconcileSubscriptionsUseCase) notify(ctx context.Context, actorID uint, notificationType notification.Type, title, message string, data map[string]any) {
	sid := id.MustGenerateWithPrefix(id.PrefixNotification, 12)
	n, err := notification.NewNotification(actorID, sid, notificationType, title, message, data)
	if err != nil {
		uc.logger.Warnw("failed to build notification", "actor_id", actorID, "error", err)
		return
	}
	if err := uc.notificationRepo.Create(ctx, n); err != nil {
		uc.logger.Warnw("failed to create notification",
			"actor_id", actorID, "type", notificationType.String(), "error", err)
	}
}
