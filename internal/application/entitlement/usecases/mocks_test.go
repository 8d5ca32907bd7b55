package usecases

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/girder-hq/girder/internal/domain/subscription"
	"github.com/girder-hq/girder/internal/domain/usage"
	"github.com/girder-hq/girder/internal/shared/logger"
)

type mockLogger struct {
	mock.Mock
}

func (m *mockLogger) Debug(msg string, args ...any)  {}
func (m *mockLogger) Info(msg string, args ...any)   {}
func (m *mockLogger) Warn(msg string, args ...any)   {}
func (m *mockLogger) Error(msg string, args ...any)  {}
func (m *mockLogger) With(args ...any) logger.Interface  { return m }
func (m *mockLogger) Named(name string) logger.Interface { return m }

func (m *mockLogger) Debugw(msg string, keysAndValues ...interface{}) {}
func (m *mockLogger) Infow(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Warnw(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Errorw(msg string, keysAndValues ...interface{}) {}

type mockUsageRepository struct {
	mock.Mock
}

func (m *mockUsageRepository) SnapshotForActor(ctx context.Context, actorID uint) (*usage.Snapshot, error) {
	args := m.Called(ctx, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usage.Snapshot), args.Error(1)
}

type mockSubscriptionProvider struct {
	mock.Mock
}

func (m *mockSubscriptionProvider) EnsureForActor(ctx context.Context, actorID uint) (*subscription.Subscription, error) {
	args := m.Called(ctx, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}
