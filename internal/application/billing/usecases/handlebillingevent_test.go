package usecases

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/girder-hq/girder/internal/domain/billing"
	"github.com/girder-hq/girder/internal/domain/notification"
	"github.com/girder-hq/girder/internal/domain/subscription"
	vo "github.com/girder-hq/girder/internal/domain/subscription/valueobjects"
)

func reconstructTestSubscription(t *testing.T, actorID uint, tier vo.Tier, status vo.Status) *subscription.Subscription {
	t.Helper()
	now := time.Now().UTC()
	sub, err := subscription.ReconstructSubscription(
		1, "sub_test", actorID, tier,
		nil, nil,
		status,
		nil, nil,
		false,
		nil, nil,
		0, tier.APIRequestLimit(),
		1,
		now, now,
	)
	assert.NoError(t, err)
	return sub
}

func newSynchronizer(subs *mockSubscriptionRepository, history *mockHistoryRepository, notifications *mockNotificationRepository, processed *mockProcessedEventStore) *HandleBillingEventUseCase {
	return NewHandleBillingEventUseCase(subs, history, notifications, processed, &mockLogger{})
}

func TestHandleBillingEvent_PaymentFailedMarksPastDueAndNotifiesOnce(t *testing.T) {
	subs := new(mockSubscriptionRepository)
	history := new(mockHistoryRepository)
	notifications := new(mockNotificationRepository)
	processed := new(mockProcessedEventStore)

	sub := reconstructTestSubscription(t, 42, vo.TierPro, vo.StatusActive)
	processed.On("MarkProcessed", mock.Anything, "evt_1").Return(true, nil)
	subs.On("GetByActorID", mock.Anything, uint(42)).Return(sub, nil)
	subs.On("Update", mock.Anything, sub).Return(nil)
	history.On("Create", mock.Anything, mock.Anything).Return(nil)
	notifications.On("Create", mock.Anything, mock.MatchedBy(func(n *notification.Notification) bool {
		return n.Type() == notification.TypePaymentFailed && n.ActorID() == 42
	})).Return(nil)

	uc := newSynchronizer(subs, history, notifications, processed)
	err := uc.Execute(context.Background(), &billing.Event{
		ID:        "evt_1",
		Type:      billing.EventPaymentFailed,
		ActorID:   42,
		InvoiceID: "inv_9",
	})

	assert.NoError(t, err)
	assert.Equal(t, vo.StatusPastDue, sub.Status())
	notifications.AssertNumberOfCalls(t, "Create", 1)
	history.AssertNumberOfCalls(t, "Create", 1)
}

func TestHandleBillingEvent_PaymentFailedAlreadyPastDueIsNoOp(t *testing.T) {
	subs := new(mockSubscriptionRepository)
	history := new(mockHistoryRepository)
	notifications := new(mockNotificationRepository)
	processed := new(mockProcessedEventStore)

	sub := reconstructTestSubscription(t, 42, vo.TierPro, vo.StatusPastDue)
	processed.On("MarkProcessed", mock.Anything, "evt_2").Return(true, nil)
	subs.On("GetByActorID", mock.Anything, uint(42)).Return(sub, nil)

	uc := newSynchronizer(subs, history, notifications, processed)
	err := uc.Execute(context.Background(), &billing.Event{
		ID:      "evt_2",
		Type:    billing.EventPaymentFailed,
		ActorID: 42,
	})

	assert.NoError(t, err)
	subs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	notifications.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	history.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestHandleBillingEvent_DuplicateEventSkipsAllSideEffects(t *testing.T) {
	subs := new(mockSubscriptionRepository)
	history := new(mockHistoryRepository)
	notifications := new(mockNotificationRepository)
	processed := new(mockProcessedEventStore)

	processed.On("MarkProcessed", mock.Anything, "evt_dup").Return(false, nil)

	uc := newSynchronizer(subs, history, notifications, processed)
	err := uc.Execute(context.Background(), &billing.Event{
		ID:      "evt_dup",
		Type:    billing.EventPaymentFailed,
		ActorID: 42,
	})

	assert.NoError(t, err)
	subs.AssertNotCalled(t, "GetByActorID", mock.Anything, mock.Anything)
	history.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	notifications.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestHandleBillingEvent_MalformedEventDroppedWithoutError(t *testing.T) {
	subs := new(mockSubscriptionRepository)
	history := new(mockHistoryRepository)
	notifications := new(mockNotificationRepository)
	processed := new(mockProcessedEventStore)

	uc := newSynchronizer(subs, history, notifications, processed)
	err := uc.Execute(context.Background(), &billing.Event{
		Type:    billing.EventPaymentFailed,
		ActorID: 42,
	})

	assert.NoError(t, err)
	processed.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything)
	subs.AssertNotCalled(t, "GetByActorID", mock.Anything, mock.Anything)
}

func TestHandleBillingEvent_UnknownEventTypeIgnored(t *testing.T) {
	subs := new(mockSubscriptionRepository)
	history := new(mockHistoryRepository)
	notifications := new(mockNotificationRepository)
	processed := new(mockProcessedEventStore)

	uc := newSynchronizer(subs, history, notifications, processed)
	err := uc.Execute(context.Background(), &billing.Event{
		ID:      "evt_3",
		Type:    "customer.updated",
		ActorID: 42,
	})

	assert.NoError(t, err)
	processed.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything)
}

func TestHandleBillingEvent_DedupeStoreFailureReturnsError(t *testing.T) {
	subs := new(mockSubscriptionRepository)
	history := new(mockHistoryRepository)
	notifications := new(mockNotificationRepository)
	processed := new(mockProcessedEventStore)

	processed.On("MarkProcessed", mock.Anything, "evt_4").Return(false, fmt.Errorf("redis down"))

	uc := newSynchronizer(subs, history, notifications, processed)
	err := uc.Execute(context.Background(), &billing.Event{
		ID:      "evt_4",
		Type:    billing.EventPaymentFailed,
		ActorID: 42,
	})

	assert.Error(t, err)
}

func TestHandleBillingEvent_ApplyFailureReleasesEventID(t *testing.T) {
	subs := new(mockSubscriptionRepository)
	history := new(mockHistoryRepository)
	notifications := new(mockNotificationRepository)
	processed := new(mockProcessedEventStore)

	processed.On("MarkProcessed", mock.Anything, "evt_5").Return(true, nil)
	processed.On("Release", mock.Anything, "evt_5").Return(nil)
	subs.On("GetByActorID", mock.Anything, uint(42)).Return(nil, fmt.Errorf("db down"))

	uc := newSynchronizer(subs, history, notifications, processed)
	err := uc.Execute(context.Background(), &billing.Event{
		ID:      "evt_5",
		Type:    billing.EventPaymentFailed,
		ActorID: 42,
	})

	assert.Error(t, err)
	processed.AssertCalled(t, "Release", mock.Anything, "evt_5")
}

func TestHandleBillingEvent_SubscriptionDeletedCancelsAndNotifies(t *testing.T) {
	subs := new(mockSubscriptionRepository)
	history := new(mockHistoryRepository)
	notifications := new(mockNotificationRepository)
	processed := new(mockProcessedEventStore)

	sub := reconstructTestSubscription(t, 7, vo.TierStarter, vo.StatusActive)
	processed.On("MarkProcessed", mock.Anything, "evt_6").Return(true, nil)
	subs.On("GetByExternalSubscriptionID", mock.Anything, "ext_sub_1").Return(sub, nil)
	subs.On("Update", mock.Anything, sub).Return(nil)
	history.On("Create", mock.Anything, mock.Anything).Return(nil)
	notifications.On("Create", mock.Anything, mock.MatchedBy(func(n *notification.Notification) bool {
		return n.Type() == notification.TypeSubscriptionCanceled
	})).Return(nil)

	uc := newSynchronizer(subs, history, notifications, processed)
	err := uc.Execute(context.Background(), &billing.Event{
		ID:                     "evt_6",
		Type:                   billing.EventSubscriptionDeleted,
		ExternalSubscriptionID: "ext_sub_1",
	})

	assert.NoError(t, err)
	assert.Equal(t, vo.StatusCanceled, sub.Status())
	notifications.AssertNumberOfCalls(t, "Create", 1)
}

func TestHandleBillingEvent_PaymentSucceededRecoversAndResetsUsage(t *testing.T) {
	subs := new(mockSubscriptionRepository)
	history := new(mockHistoryRepository)
	notifications := new(mockNotificationRepository)
	processed := new(mockProcessedEventStore)

	now := time.Now().UTC()
	sub, err := subscription.ReconstructSubscription(
		1, "sub_test", 9, vo.TierPro,
		nil, nil,
		vo.StatusPastDue,
		nil, nil,
		false,
		nil, nil,
		5000, vo.TierPro.APIRequestLimit(),
		3,
		now, now,
	)
	assert.NoError(t, err)

	processed.On("MarkProcessed", mock.Anything, "evt_7").Return(true, nil)
	subs.On("GetByActorID", mock.Anything, uint(9)).Return(sub, nil)
	subs.On("Update", mock.Anything, sub).Return(nil)
	history.On("Create", mock.Anything, mock.Anything).Return(nil)

	uc := newSynchronizer(subs, history, notifications, processed)
	err = uc.Execute(context.Background(), &billing.Event{
		ID:      "evt_7",
		Type:    billing.EventPaymentSucceeded,
		ActorID: 9,
	})

	assert.NoError(t, err)
	assert.Equal(t, vo.StatusActive, sub.Status())
	assert.Equal(t, 0, sub.APIRequestsUsed())
}

func TestHandleBillingEvent_SubscriptionUpdatedAppliesTierAndStatus(t *testing.T) {
	subs := new(mockSubscriptionRepository)
	history := new(mockHistoryRepository)
	notifications := new(mockNotificationRepository)
	processed := new(mockProcessedEventStore)

	sub := reconstructTestSubscription(t, 11, vo.TierStarter, vo.StatusActive)
	periodStart := time.Now().UTC()
	periodEnd := periodStart.Add(30 * 24 * time.Hour)

	processed.On("MarkProcessed", mock.Anything, "evt_8").Return(true, nil)
	subs.On("GetByActorID", mock.Anything, uint(11)).Return(sub, nil)
	subs.On("Update", mock.Anything, sub).Return(nil)
	history.On("Create", mock.Anything, mock.MatchedBy(func(h *subscription.History) bool {
		return h.IsTierChange() && h.NewTier() == vo.TierPro && h.ExternalEventID() != nil
	})).Return(nil)

	uc := newSynchronizer(subs, history, notifications, processed)
	err := uc.Execute(context.Background(), &billing.Event{
		ID:                     "evt_8",
		Type:                   billing.EventSubscriptionUpdated,
		ActorID:                11,
		ExternalCustomerID:     "cus_1",
		ExternalSubscriptionID: "ext_sub_2",
		Status:                 "active",
		Tier:                   "pro",
		PeriodStart:            &periodStart,
		PeriodEnd:              &periodEnd,
	})

	assert.NoError(t, err)
	assert.Equal(t, vo.TierPro, sub.Tier())
	assert.Equal(t, vo.TierPro.APIRequestLimit(), sub.APIRequestsLimit())
	assert.NotNil(t, sub.ExternalSubscriptionID())
	assert.Equal(t, "ext_sub_2", *sub.ExternalSubscriptionID())
	history.AssertNumberOfCalls(t, "Create", 1)
}

func TestHandleBillingEvent_FlagOnlyUpdateIsPersisted(t *testing.T) {
	subs := new(mockSubscriptionRepository)
	history := new(mockHistoryRepository)
	notifications := new(mockNotificationRepository)
	processed := new(mockProcessedEventStore)

	// Same status and tier, no period or trial fields: the only payload
	// difference is the cancel-at-period-end flag.
	sub := reconstructTestSubscription(t, 42, vo.TierPro, vo.StatusActive)
	processed.On("MarkProcessed", mock.Anything, "evt_flag").Return(true, nil)
	subs.On("GetByActorID", mock.Anything, uint(42)).Return(sub, nil)
	subs.On("Update", mock.Anything, sub).Return(nil)

	uc := newSynchronizer(subs, history, notifications, processed)
	err := uc.Execute(context.Background(), &billing.Event{
		ID:                "evt_flag",
		Type:              billing.EventSubscriptionUpdated,
		ActorID:           42,
		Status:            "active",
		Tier:              "pro",
		CancelAtPeriodEnd: true,
	})

	assert.NoError(t, err)
	assert.True(t, sub.CancelAtPeriodEnd())
	subs.AssertNumberOfCalls(t, "Update", 1)
	history.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestHandleBillingEvent_NewExternalRefsAloneArePersisted(t *testing.T) {
	subs := new(mockSubscriptionRepository)
	history := new(mockHistoryRepository)
	notifications := new(mockNotificationRepository)
	processed := new(mockProcessedEventStore)

	sub := reconstructTestSubscription(t, 42, vo.TierPro, vo.StatusActive)
	processed.On("MarkProcessed", mock.Anything, "evt_refs").Return(true, nil)
	subs.On("GetByActorID", mock.Anything, uint(42)).Return(sub, nil)
	subs.On("Update", mock.Anything, sub).Return(nil)

	uc := newSynchronizer(subs, history, notifications, processed)
	err := uc.Execute(context.Background(), &billing.Event{
		ID:                     "evt_refs",
		Type:                   billing.EventSubscriptionUpdated,
		ActorID:                42,
		ExternalCustomerID:     "cus_7",
		ExternalSubscriptionID: "ext_sub_7",
		Status:                 "active",
		Tier:                   "pro",
	})

	assert.NoError(t, err)
	assert.NotNil(t, sub.ExternalCustomerID())
	assert.Equal(t, "cus_7", *sub.ExternalCustomerID())
	subs.AssertNumberOfCalls(t, "Update", 1)
}

func TestHandleBillingEvent_IdenticalUpdateSkipsWrite(t *testing.T) {
	subs := new(mockSubscriptionRepository)
	history := new(mockHistoryRepository)
	notifications := new(mockNotificationRepository)
	processed := new(mockProcessedEventStore)

	sub := reconstructTestSubscription(t, 42, vo.TierPro, vo.StatusActive)
	processed.On("MarkProcessed", mock.Anything, "evt_same").Return(true, nil)
	subs.On("GetByActorID", mock.Anything, uint(42)).Return(sub, nil)

	uc := newSynchronizer(subs, history, notifications, processed)
	err := uc.Execute(context.Background(), &billing.Event{
		ID:      "evt_same",
		Type:    billing.EventSubscriptionUpdated,
		ActorID: 42,
		Status:  "active",
		Tier:    "pro",
	})

	assert.NoError(t, err)
	subs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestHandleBillingEvent_SubscriptionCreatedForNewActor(t *testing.T) {
	subs := new(mockSubscriptionRepository)
	history := new(mockHistoryRepository)
	notifications := new(mockNotificationRepository)
	processed := new(mockProcessedEventStore)

	trialEnd := time.Now().UTC().Add(14 * 24 * time.Hour)

	processed.On("MarkProcessed", mock.Anything, "evt_9").Return(true, nil)
	subs.On("GetByActorID", mock.Anything, uint(13)).Return(nil, nil)
	subs.On("Create", mock.Anything, mock.MatchedBy(func(s *subscription.Subscription) bool {
		return s.ActorID() == 13 && s.Tier() == vo.TierStarter && s.Status() == vo.StatusTrialing
	})).Return(nil)
	history.On("Create", mock.Anything, mock.Anything).Return(nil)

	uc := newSynchronizer(subs, history, notifications, processed)
	err := uc.Execute(context.Background(), &billing.Event{
		ID:                     "evt_9",
		Type:                   billing.EventSubscriptionCreated,
		ActorID:                13,
		ExternalSubscriptionID: "ext_sub_3",
		Status:                 "trialing",
		Tier:                   "starter",
		TrialEndsAt:            &trialEnd,
	})

	assert.NoError(t, err)
	subs.AssertNumberOfCalls(t, "Create", 1)
}
