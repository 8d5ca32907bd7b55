package notification

import "context"

// Repository persists governance notifications.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByActorID(ctx context.Context, actorID uint, limit, offset int) ([]*Notification, int64, error)
	CountUnread(ctx context.Context, actorID uint) (int64, error)
	MarkAsRead(ctx context.Context, id uint) error
}
