// Package usecases provides application-level use cases for the billing
// lifecycle: event synchronization, tier changes, cancellation scheduling
// and the periodic reconciliation sweep.
package usecases

import "context"

// ProcessedEventStore remembers which external billing event ids have been
// applied, so at-least-once webhook delivery cannot double-apply side
// effects.
type ProcessedEventStore interface {
	// MarkProcessed records the event id. Returns false if the id was
	// already recorded, in which case the caller must skip the event.
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
	// Release forgets an event id after a failed apply, so the provider's
	// retry is not silently swallowed.
	Release(ctx context.Context, eventID string) error
}
