package usecases

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/girder-hq/girder/internal/domain/subscription"
	vo "github.com/girder-hq/girder/internal/domain/subscription/valueobjects"
	"github.com/girder-hq/girder/internal/shared/errors"
)

func TestGetOrCreateSubscription_ReturnsExistingRecord(t *testing.T) {
	subs := new(mockSubscriptionRepository)
	history := new(mockHistoryRepository)

	existing := reconstructTestSubscription(t, 42, vo.TierPro, vo.StatusActive)
	subs.On("GetByActorID", mock.Anything, uint(42)).Return(existing, nil)

	uc := NewGetOrCreateSubscriptionUseCase(subs, history, &mockLogger{})
	got, err := uc.Execute(context.Background(), 42)

	assert.NoError(t, err)
	assert.Same(t, existing, got)
	subs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetOrCreateSubscription_CreatesFreeTierOnFirstContact(t *testing.T) {
	subs := new(mockSubscriptionRepository)
	history := new(mockHistoryRepository)

	subs.On("GetByActorID", mock.Anything, uint(42)).Return(nil, nil)
	subs.On("Create", mock.Anything, mock.MatchedBy(func(s *subscription.Subscription) bool {
		return s.ActorID() == 42 && s.Tier() == vo.TierFree && s.Status() == vo.StatusActive
	})).Return(nil)
	history.On("Create", mock.Anything, mock.Anything).Return(nil)

	uc := NewGetOrCreateSubscriptionUseCase(subs, history, &mockLogger{})
	got, err := uc.Execute(context.Background(), 42)

	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, vo.TierFree, got.Tier())
	assert.Equal(t, vo.TierFree.APIRequestLimit(), got.APIRequestsLimit())
	subs.AssertNumberOfCalls(t, "Create", 1)
}

func TestGetOrCreateSubscription_ConcurrentCreateFallsBackToExisting(t *testing.T) {
	subs := new(mockSubscriptionRepository)
	history := new(mockHistoryRepository)

	winner := reconstructTestSubscription(t, 42, vo.TierFree, vo.StatusActive)
	subs.On("GetByActorID", mock.Anything, uint(42)).Return(nil, nil).Once()
	subs.On("Create", mock.Anything, mock.Anything).
		Return(fmt.Errorf("Error 1062 (23000): Duplicate entry '42' for key 'subscriptions.uk_actor_id'"))
	subs.On("GetByActorID", mock.Anything, uint(42)).Return(winner, nil).Once()

	uc := NewGetOrCreateSubscriptionUseCase(subs, history, &mockLogger{})
	got, err := uc.Execute(context.Background(), 42)

	assert.NoError(t, err)
	assert.Same(t, winner, got)
}

func TestGetOrCreateSubscription_RequiresActorID(t *testing.T) {
	uc := NewGetOrCreateSubscriptionUseCase(new(mockSubscriptionRepository), new(mockHistoryRepository), &mockLogger{})
	got, err := uc.Execute(context.Background(), 0)

	assert.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, errors.IsValidationError(err))
}

func TestGetOrCreateSubscription_FreshRecordHasZeroUsage(t *testing.T) {
	subs := new(mockSubscriptionRepository)
	history := new(mockHistoryRepository)

	subs.On("GetByActorID", mock.Anything, uint(5)).Return(nil, nil)
	subs.On("Create", mock.Anything, mock.Anything).Return(nil)
	history.On("Create", mock.Anything, mock.Anything).Return(nil)

	uc := NewGetOrCreateSubscriptionUseCase(subs, history, &mockLogger{})
	got, err := uc.Execute(context.Background(), 5)

	assert.NoError(t, err)
	assert.Equal(t, 0, got.APIRequestsUsed())
	assert.Nil(t, got.TrialEndsAt())
	assert.WithinDuration(t, time.Now().UTC(), got.CreatedAt(), 5*time.Second)
}
