// Package notification holds the per-actor notifications the governance
// core emits as side effects of billing lifecycle transitions.
package notification

import (
	"fmt"
	"time"
)

// Type classifies a governance notification.
type Type string

const (
	TypePaymentFailed        Type = "payment_failed"
	TypeSubscriptionCanceled Type = "subscription_canceled"
	TypeTrialEnding          Type = "trial_ending"
)

// IsValid checks if the notification type is known.
func (t Type) IsValid() bool {
	switch t {
	case TypePaymentFailed, TypeSubscriptionCanceled, TypeTrialEnding:
		return true
	default:
		return false
	}
}

func (t Type) String() string {
	return string(t)
}

const (
	maxTitleLength   = 200
	maxMessageLength = 2000
)

// Notification is a per-actor message created by the billing event
// synchronizer or the reconciliation sweep. Reading and dismissing happen in
// the actor-facing surface.
type Notification struct {
	id               uint
	sid              string
	actorID          uint
	notificationType Type
	title            string
	message          string
	data             map[string]any
	readAt           *time.Time
	createdAt        time.Time
}

// NewNotification creates a notification for an actor.
func NewNotification(actorID uint, sid string, notificationType Type, title, message string, data map[string]any) (*Notification, error) {
	if actorID == 0 {
		return nil, fmt.Errorf("actor ID is required")
	}
	if !notificationType.IsValid() {
		return nil, fmt.Errorf("invalid notification type: %s", notificationType)
	}
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if len(title) > maxTitleLength {
		return nil, fmt.Errorf("title exceeds maximum length of %d characters", maxTitleLength)
	}
	if message == "" {
		return nil, fmt.Errorf("message is required")
	}
	if len(message) > maxMessageLength {
		return nil, fmt.Errorf("message exceeds maximum length of %d characters", maxMessageLength)
	}
	if data == nil {
		data = make(map[string]any)
	}

	return &Notification{
		sid:              sid,
		actorID:          actorID,
		notificationType: notificationType,
		title:            title,
		message:          message,
		data:             data,
		createdAt:        time.Now().UTC(),
	}, nil
}

// ReconstructNotification reconstructs a notification from persistence.
func ReconstructNotification(
	id uint,
	sid string,
	actorID uint,
	notificationType Type,
	title, message string,
	data map[string]any,
	readAt *time.Time,
	createdAt time.Time,
) (*Notification, error) {
	if id == 0 {
		return nil, fmt.Errorf("notification ID cannot be zero")
	}
	if actorID == 0 {
		return nil, fmt.Errorf("actor ID is required")
	}
	if !notificationType.IsValid() {
		return nil, fmt.Errorf("invalid notification type: %s", notificationType)
	}
	if data == nil {
		data = make(map[string]any)
	}

	return &Notification{
		id:               id,
		sid:              sid,
		actorID:          actorID,
		notificationType: notificationType,
		title:            title,
		message:          message,
		data:             data,
		readAt:           readAt,
		createdAt:        createdAt,
	}, nil
}

func (n *Notification) ID() uint           { return n.id }
func (n *Notification) SID() string        { return n.sid }
func (n *Notification) ActorID() uint      { return n.actorID }
func (n *Notification) Type() Type         { return n.notificationType }
func (n *Notification) Title() string      { return n.title }
func (n *Notification) Message() string    { return n.message }
func (n *Notification) ReadAt() *time.Time { return n.readAt }
func (n *Notification) CreatedAt() time.Time { return n.createdAt }

// Data returns a copy of the structured payload.
func (n *Notification) Data() map[string]any {
	data := make(map[string]any, len(n.data))
	for k, v := range n.data {
		data[k] = v
	}
	return data
}

// SetID sets the notification ID (only for persistence layer use)
func (n *Notification) SetID(id uint) error {
	if n.id != 0 {
		return fmt.Errorf("notification ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("notification ID cannot be zero")
	}
	n.id = id
	return nil
}

// IsRead reports whether the actor has seen the notification.
func (n *Notification) IsRead() bool {
	return n.readAt != nil
}

// MarkRead records when the actor read the notification. Idempotent.
func (n *Notification) MarkRead(at time.Time) {
	if n.readAt != nil {
		return
	}
	n.readAt = &at
}
