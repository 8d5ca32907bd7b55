package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/girder-hq/girder/internal/domain/billing"
	"github.com/girder-hq/girder/internal/domain/notification"
	"github.com/girder-hq/girder/internal/domain/subscription"
	"github.com/girder-hq/girder/internal/domain/subscription/valueobjects"
	"github.com/girder-hq/girder/internal/shared/id"
	"github.com/girder-hq/girder/internal/shared/logger"
)

// HandleBillingEventUseCase is the billing event synchronizer: it folds
// webhook events from the external billing provider onto the local
// subscription records. Events are deduplicated by id before any side
// effect; malformed events are logged and dropped.
type HandleBillingEventUseCase struct {
	subscriptionRepo subscription.Repository
	historyRepo      subscription.HistoryRepository
	notificationRepo notification.Repository
	processedEvents  ProcessedEventStore
	logger           logger.Interface
}

func NewHandleBillingEventUseCase(
	subscriptionRepo subscription.Repository,
	historyRepo subscription.HistoryRepository,
	notificationRepo notification.Repository,
	processedEvents ProcessedEventStore,
	logger logger.Interface,
) *HandleBillingEventUseCase {
	return &HandleBillingEventUseCase{
		subscriptionRepo: subscriptionRepo,
		historyRepo:      historyRepo,
		notificationRepo: notificationRepo,
		processedEvents:  processedEvents,
		logger:           logger,
	}
}

// Execute applies a single billing event. Returning nil acknowledges the
// delivery; only transient infrastructure failures return an error so the
// provider retries.
func (uc *HandleBillingEventUseCase) Execute(ctx context.Context, event *billing.Event) error {
	if event == nil {
		return nil
	}
	if err := event.Validate(); err != nil {
		uc.logger.Warnw("dropping malformed billing event",
			"event_id", event.ID, "event_type", event.Type.String(), "error", err)
		return nil
	}
	if !event.Type.IsKnown() {
		uc.logger.Debugw("ignoring unknown billing event type",
			"event_id", event.ID, "event_type", event.Type.String())
		return nil
	}

	fresh, err := uc.processedEvents.MarkProcessed(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("failed to check event dedupe store: %w", err)
	}
	if !fresh {
		uc.logger.Infow("skipping duplicate billing event", "event_id", event.ID)
		return nil
	}

	if err := uc.apply(ctx, event); err != nil {
		if relErr := uc.processedEvents.Release(ctx, event.ID); relErr != nil {
			uc.logger.Warnw("failed to release event id after apply failure",
				"event_id", event.ID, "error", relErr)
		}
		return err
	}
	return nil
}

func (uc *HandleBillingEventUseCase) apply(ctx context.Context, event *billing.Event) error {
	switch event.Type {
	case billing.EventSubscriptionCreated, billing.EventSubscriptionUpdated:
		return uc.applySubscriptionChange(ctx, event)
	case billing.EventSubscriptionDeleted:
		return uc.applySubscriptionDeleted(ctx, event)
	case billing.EventPaymentSucceeded:
		return uc.applyPaymentSucceeded(ctx, event)
	case billing.EventPaymentFailed:
		return uc.applyPaymentFailed(ctx, event)
	default:
		return nil
	}
}

// findSubscription resolves the local record an event refers to, preferring
// the actor id embedded by the checkout flow over the external reference.
// Returns nil, nil when no record matches.
func (uc *HandleBillingEventUseCase) findSubscription(ctx context.Context, event *billing.Event) (*subscription.Subscription, error) {
	if event.ActorID != 0 {
		return uc.subscriptionRepo.GetByActorID(ctx, event.ActorID)
	}
	return uc.subscriptionRepo.GetByExternalSubscriptionID(ctx, event.ExternalSubscriptionID)
}

func (uc *HandleBillingEventUseCase) applySubscriptionChange(ctx context.Context, event *billing.Event) error {
	sub, err := uc.findSubscription(ctx, event)
	if err != nil {
		return err
	}
	if sub == nil {
		if event.ActorID == 0 {
			uc.logger.Warnw("dropping subscription event with no local record and no actor reference",
				"event_id", event.ID, "external_subscription_id", event.ExternalSubscriptionID)
			return nil
		}
		tier := valueobjects.TierFree
		if mapped, ok := billing.MapExternalTier(event.Tier); ok {
			tier = mapped
		}
		sid := id.MustGenerateWithPrefix(id.PrefixSubscription, 16)
		sub, err = subscription.NewSubscription(event.ActorID, sid, tier, event.TrialEndsAt)
		if err != nil {
			return err
		}
		uc.applyExternalRefs(sub, event)
		if err := sub.UpdatePeriod(event.PeriodStart, event.PeriodEnd); err != nil {
			uc.logger.Warnw("ignoring invalid billing period",
				"event_id", event.ID, "actor_id", event.ActorID, "error", err)
		}
		if status, ok := billing.MapExternalStatus(event.Status); ok {
			if _, serr := sub.SyncExternalState(status); serr != nil {
				uc.logger.Warnw("could not apply external status on new record",
					"event_id", event.ID, "status", event.Status, "error", serr)
			}
		}
		sub.SetCancelAtPeriodEnd(event.CancelAtPeriodEnd)
		if err := uc.subscriptionRepo.Create(ctx, sub); err != nil {
			return err
		}
		uc.recordHistory(ctx, sub.ActorID(), sub.Tier(), sub.Tier(),
			"subscription created by billing provider", event.ID)
		uc.logger.Infow("created subscription from billing event",
			"event_id", event.ID, "actor_id", sub.ActorID(), "tier", sub.Tier().String())
		return nil
	}

	oldTier := sub.Tier()
	changed := uc.applyExternalRefs(sub, event)

	if status, ok := billing.MapExternalStatus(event.Status); ok {
		statusChanged, serr := sub.SyncExternalState(status)
		if serr != nil {
			uc.logger.Warnw("could not apply external status",
				"event_id", event.ID, "actor_id", sub.ActorID(),
				"status", event.Status, "error", serr)
		}
		changed = changed || statusChanged
	} else if event.Status != "" {
		uc.logger.Warnw("unknown external subscription status",
			"event_id", event.ID, "status", event.Status)
	}

	if event.PeriodStart != nil || event.PeriodEnd != nil {
		if err := sub.UpdatePeriod(event.PeriodStart, event.PeriodEnd); err != nil {
			uc.logger.Warnw("ignoring invalid billing period",
				"event_id", event.ID, "actor_id", sub.ActorID(), "error", err)
		} else {
			changed = true
		}
	}

	if sub.SetCancelAtPeriodEnd(event.CancelAtPeriodEnd) {
		changed = true
	}

	if !equalTimePtr(sub.TrialEndsAt(), event.TrialEndsAt) {
		sub.SetTrialEnd(event.TrialEndsAt)
		changed = true
	}

	tierChanged := false
	if mapped, ok := billing.MapExternalTier(event.Tier); ok {
		tierChanged, err = sub.ChangeTier(mapped)
		if err != nil {
			uc.logger.Warnw("could not apply external tier",
				"event_id", event.ID, "actor_id", sub.ActorID(),
				"tier", event.Tier, "error", err)
		}
		changed = changed || tierChanged
	} else if event.Tier != "" {
		uc.logger.Warnw("unknown external plan identifier",
			"event_id", event.ID, "tier", event.Tier)
	}

	if !changed {
		return nil
	}
	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		return err
	}
	if tierChanged {
		uc.recordHistory(ctx, sub.ActorID(), oldTier, sub.Tier(),
			"tier changed by billing provider", event.ID)
	}
	uc.logger.Infow("synchronized subscription from billing event",
		"event_id", event.ID, "actor_id", sub.ActorID(),
		"status", sub.Status().String(), "tier", sub.Tier().String())
	return nil
}

func (uc *HandleBillingEventUseCase) applySubscriptionDeleted(ctx context.Context, event *billing.Event) error {
	sub, err := uc.findSubscription(ctx, event)
	if err != nil {
		return err
	}
	if sub == nil {
		uc.logger.Warnw("deletion event for unknown subscription",
			"event_id", event.ID, "external_subscription_id", event.ExternalSubscriptionID)
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
	uc.recordHistory(ctx, sub.ActorID(), sub.Tier(), sub.Tier(),
		"subscription canceled by billing provider", event.ID)
	uc.notify(ctx, sub.ActorID(), notification.TypeSubscriptionCanceled,
		"Subscription canceled",
		"Your subscription has been canceled. Paid features are no longer available.",
		map[string]any{"tier": sub.Tier().String()})
	uc.logger.Infow("canceled subscription from billing event",
		"event_id", event.ID, "actor_id", sub.ActorID())
	return nil
}

func (uc *HandleBillingEventUseCase) applyPaymentSucceeded(ctx context.Context, event *billing.Event) error {
	sub, err := uc.findSubscription(ctx, event)
	if err != nil {
		return err
	}
	if sub == nil {
		uc.logger.Warnw("payment event for unknown subscription",
			"event_id", event.ID, "external_subscription_id", event.ExternalSubscriptionID)
		return nil
	}

	recovered, err := sub.RecoverFromPastDue()
	if err != nil {
		return err
	}
	if sub.Status() == valueobjects.StatusTrialing {
		if _, aerr := sub.Activate(); aerr != nil {
			uc.logger.Warnw("could not activate subscription on payment",
				"event_id", event.ID, "actor_id", sub.ActorID(), "error", aerr)
		}
	}
	sub.ResetUsage()
	if event.PeriodStart != nil || event.PeriodEnd != nil {
		if perr := sub.UpdatePeriod(event.PeriodStart, event.PeriodEnd); perr != nil {
			uc.logger.Warnw("ignoring invalid billing period",
				"event_id", event.ID, "actor_id", sub.ActorID(), "error", perr)
		}
	}
	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		return err
	}
	if recovered {
		uc.recordHistory(ctx, sub.ActorID(), sub.Tier(), sub.Tier(),
			"payment recovered, subscription reactivated", event.ID)
	}
	uc.logger.Infow("applied successful payment",
		"event_id", event.ID, "actor_id", sub.ActorID(), "recovered", recovered)
	return nil
}

func (uc *HandleBillingEventUseCase) applyPaymentFailed(ctx context.Context, event *billing.Event) error {
	sub, err := uc.findSubscription(ctx, event)
	if err != nil {
		return err
	}
	if sub == nil {
		uc.logger.Warnw("payment event for unknown subscription",
			"event_id", event.ID, "external_subscription_id", event.ExternalSubscriptionID)
		return nil
	}

	changed, err := sub.MarkPastDue()
	if err != nil {
		uc.logger.Warnw("could not mark subscription past due",
			"event_id", event.ID, "actor_id", sub.ActorID(),
			"status", sub.Status().String(), "error", err)
		return nil
	}
	if !changed {
		return nil
	}
	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		return err
	}
	uc.recordHistory(ctx, sub.ActorID(), sub.Tier(), sub.Tier(),
		"payment failed, subscription past due", event.ID)
	uc.notify(ctx, sub.ActorID(), notification.TypePaymentFailed,
		"Payment failed",
		"We could not process your latest payment. Please update your payment method to keep your subscription active.",
		map[string]any{"invoice_id": event.InvoiceID})
	uc.logger.Infow("marked subscription past due",
		"event_id", event.ID, "actor_id", sub.ActorID())
	return nil
}

func (uc *HandleBillingEventUseCase) applyExternalRefs(sub *subscription.Subscription, event *billing.Event) bool {
	var customerID, subscriptionID *string
	if event.ExternalCustomerID != "" {
		customerID = &event.ExternalCustomerID
	} else {
		customerID = sub.ExternalCustomerID()
	}
	if event.ExternalSubscriptionID != "" {
		subscriptionID = &event.ExternalSubscriptionID
	} else {
		subscriptionID = sub.ExternalSubscriptionID()
	}
	return sub.SetExternalRefs(customerID, subscriptionID)
}

// recordHistory appends an audit entry tagged with the originating event id.
// History write failures are logged, not propagated: the lifecycle change
// already committed.
func (uc *HandleBillingEventUseCase) recordHistory(ctx context.Context, actorID uint, oldTier, newTier valueobjects.Tier, reason, eventID string) {
	history, err := subscription.NewHistory(actorID, oldTier, newTier, reason, valueobjects.ChangedBySystem)
	if err != nil {
		uc.logger.Warnw("failed to build history entry", "actor_id", actorID, "error", err)
		return
	}
	if eventID != "" {
		if err := history.SetExternalEventID(eventID); err != nil {
			uc.logger.Warnw("failed to tag history entry", "actor_id", actorID, "error", err)
		}
	}
	if err := uc.historyRepo.Create(ctx, history); err != nil {
		uc.logger.Warnw("failed to record subscription history",
			"actor_id", actorID, "reason", reason, "error", err)
	}
}

func (uc *HandleBillingEventUseCase) notify(ctx context.Context, actorID uint, notificationType notification.Type, title, message string, data map[string]any) {
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

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
