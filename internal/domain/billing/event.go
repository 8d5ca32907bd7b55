// Package billing models the webhook events delivered by the external
// billing provider. Events arrive at-least-once; consumers deduplicate by
// event ID before applying side effects.
package billing

import (
	"fmt"
	"time"

	vo "github.com/girder-hq/girder/internal/domain/subscription/valueobjects"
)

// EventType identifies the kind of billing event.
type EventType string

const (
	EventSubscriptionCreated EventType = "subscription.created"
	EventSubscriptionUpdated EventType = "subscription.updated"
	EventSubscriptionDeleted EventType = "subscription.deleted"
	EventPaymentSucceeded    EventType = "invoice.payment_succeeded"
	EventPaymentFailed       EventType = "invoice.payment_failed"
)

// IsKnown reports whether the event type is one the synchronizer handles.
// Unknown types are deliberately a no-op, not an error, so processor-side
// additions do not break delivery.
func (t EventType) IsKnown() bool {
	switch t {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted,
		EventPaymentSucceeded, EventPaymentFailed:
		return true
	default:
		return false
	}
}

func (t EventType) String() string {
	return string(t)
}

// Event is a parsed billing webhook event.
type Event struct {
	ID                     string
	Type                   EventType
	ActorID                uint
	ExternalCustomerID     string
	ExternalSubscriptionID string
	// Status is the provider's subscription status vocabulary; map it with
	// MapExternalStatus before touching the local record.
	Status            string
	Tier              string
	PeriodStart       *time.Time
	PeriodEnd         *time.Time
	CancelAtPeriodEnd bool
	TrialEndsAt       *time.Time
	InvoiceID         string
	OccurredAt        time.Time
}

// Validate checks the minimal shape every event must carry. Events failing
// this check are malformed: logged and dropped, never retried.
func (e *Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("event ID is required")
	}
	if e.Type == "" {
		return fmt.Errorf("event type is required")
	}
	if e.ActorID == 0 && e.ExternalSubscriptionID == "" {
		return fmt.Errorf("event must reference an actor or an external subscription")
	}
	return nil
}

// MapExternalStatus folds the provider's status vocabulary onto the five
// internal lifecycle states. Unknown values map to the zero Status and
// false.
func MapExternalStatus(external string) (vo.Status, bool) {
	switch external {
	case "trialing", "incomplete":
		return vo.StatusTrialing, true
	case "active":
		return vo.StatusActive, true
	case "past_due":
		return vo.StatusPastDue, true
	case "unpaid":
		return vo.StatusUnpaid, true
	case "canceled", "cancelled", "incomplete_expired":
		return vo.StatusCanceled, true
	default:
		return "", false
	}
}

// MapExternalTier folds the provider's plan identifier onto a tier. Unknown
// plans map to the zero Tier and false.
func MapExternalTier(external string) (vo.Tier, bool) {
	tier := vo.Tier(external)
	if tier.IsValid() {
		return tier, true
	}
	return "", false
}
