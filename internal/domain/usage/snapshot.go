// Package usage defines the consumption counters the quota enforcer reads.
// A snapshot is derived on read from the persistence layer and never stored
// as its own entity; the daily window resets implicitly at the business-day
// boundary and "active" resources are filtered by status.
package usage

import "fmt"

// Snapshot holds an actor's current consumption counters.
type Snapshot struct {
	SandboxRunsToday int
	ActiveApps       int
	ActiveWorkflows  int
}

// NewSnapshot builds a snapshot, rejecting negative counts.
func NewSnapshot(sandboxRunsToday, activeApps, activeWorkflows int) (*Snapshot, error) {
	if sandboxRunsToday < 0 {
		return nil, fmt.Errorf("sandbox runs count cannot be negative: %d", sandboxRunsToday)
	}
	if activeApps < 0 {
		return nil, fmt.Errorf("active apps count cannot be negative: %d", activeApps)
	}
	if activeWorkflows < 0 {
		return nil, fmt.Errorf("active workflows count cannot be negative: %d", activeWorkflows)
	}
	return &Snapshot{
		SandboxRunsToday: sandboxRunsToday,
		ActiveApps:       activeApps,
		ActiveWorkflows:  activeWorkflows,
	}, nil
}

// Zero returns an empty snapshot, used when an actor has no recorded usage.
func Zero() *Snapshot {
	return &Snapshot{}
}
