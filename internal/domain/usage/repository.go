package usage

import "context"

// Repository reads consumption counters from the persistence layer.
// Implementations are read-only and must return a zero snapshot, not an
// error, for actors with no recorded usage.
type Repository interface {
	// SnapshotForActor counts today's sandbox runs (business-day boundary)
	// and the actor's apps/workflows in active status.
	SnapshotForActor(ctx context.Context, actorID uint) (*Snapshot, error)
}
