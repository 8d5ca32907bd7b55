package usecases

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/girder-hq/girder/internal/domain/notification"
	"github.com/girder-hq/girder/internal/domain/subscription"
	"github.com/girder-hq/girder/internal/shared/logger"
)

type mockLogger struct {
	mock.Mock
}

func (m *mockLogger) Debug(msg string, args ...any)      {}
func (m *mockLogger) Info(msg string, args ...any)       {}
func (m *mockLogger) Warn(msg string, args ...any)       {}
func (m *mockLogger) Error(msg string, args ...any)      {}
func (m *mockLogger) With(args ...any) logger.Interface  { return m }
func (m *mockLogger) Named(name string) logger.Interface { return m }

func (m *mockLogger) Debugw(msg string, keysAndValues ...interface{}) {}
func (m *mockLogger) Infow(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Warnw(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Errorw(msg string, keysAndValues ...interface{}) {}

type mockSubscriptionRepository struct {
	mock.Mock
}

func (m *mockSubscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockSubscriptionRepository) GetByActorID(ctx context.Context, actorID uint) (*subscription.Subscription, error) {
	args := m.Called(ctx, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepository) GetByExternalSubscriptionID(ctx context.Context, externalID string) (*subscription.Subscription, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockSubscriptionRepository) ListDueScheduledCancellations(ctx context.Context, now time.Time) ([]*subscription.Subscription, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*subscription.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepository) ListTrialingEndingBefore(ctx context.Context, cutoff time.Time) ([]*subscription.Subscription, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*subscription.Subscription), args.Error(1)
}

type mockHistoryRepository struct {
	mock.Mock
}

func (m *mockHistoryRepository) Create(ctx context.Context, entry *subscription.History) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockHistoryRepository) ListByActorID(ctx context.Context, actorID uint, limit, offset int) ([]*subscription.History, int64, error) {
	args := m.Called(ctx, actorID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*subscription.History), args.Get(1).(int64), args.Error(2)
}

func (m *mockHistoryRepository) CountByActorID(ctx context.Context, actorID uint) (int64, error) {
	args := m.Called(ctx, actorID)
	return args.Get(0).(int64), args.Error(1)
}

type mockNotificationRepository struct {
	mock.Mock
}

func (m *mockNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *mockNotificationRepository) ListByActorID(ctx context.Context, actorID uint, limit, offset int) ([]*notification.Notification, int64, error) {
	args := m.Called(ctx, actorID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*notification.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *mockNotificationRepository) CountUnread(ctx context.Context, actorID uint) (int64, error) {
	args := m.Called(ctx, actorID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationRepository) MarkAsRead(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockProcessedEventStore struct {
	mock.Mock
}

func (m *mockProcessedEventStore) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *mockProcessedEventStore) Release(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}
