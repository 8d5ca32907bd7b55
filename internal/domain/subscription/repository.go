package subscription

import (
	"context"
	"time"
)

// Repository persists subscription records. Implementations must return
// (nil, nil) when a record does not exist so callers can create lazily.
type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	GetByActorID(ctx context.Context, actorID uint) (*Subscription, error)
	GetByExternalSubscriptionID(ctx context.Context, externalID string) (*Subscription, error)
	// Update persists the aggregate using optimistic locking on its version.
	Update(ctx context.Context, sub *Subscription) error
	// ListDueScheduledCancellations returns records flagged cancel-at-period-end
	// whose period end is at or before now.
	ListDueScheduledCancellations(ctx context.Context, now time.Time) ([]*Subscription, error)
	// ListTrialingEndingBefore returns trialing records whose trial ends at or
	// before the cutoff and are not yet warned.
	ListTrialingEndingBefore(ctx context.Context, cutoff time.Time) ([]*Subscription, error)
}

// HistoryRepository persists the append-only audit trail.
type HistoryRepository interface {
	Create(ctx context.Context, entry *History) error
	ListByActorID(ctx context.Context, actorID uint, limit, offset int) ([]*History, int64, error)
	CountByActorID(ctx context.Context, actorID uint) (int64, error)
}
