package subscription

import (
	"errors"
	"time"

	vo "github.com/girder-hq/girder/internal/domain/subscription/valueobjects"
)

var (
	// ErrHistoryImmutable signals an attempted mutation of an audit entry.
	ErrHistoryImmutable = errors.New("history record is immutable")
)

// History is a write-once audit entry recording a tier or lifecycle change.
// Entries are never mutated or deleted after creation.
type History struct {
	id              uint
	actorID         uint
	oldTier         vo.Tier
	newTier         vo.Tier
	reason          string
	changedBy       vo.ChangedBy
	externalEventID *string
	createdAt       time.Time
}

// NewHistory creates an audit entry for a subscription change.
func NewHistory(actorID uint, oldTier, newTier vo.Tier, reason string, changedBy vo.ChangedBy) (*History, error) {
	if actorID == 0 {
		return nil, errors.New("actor ID cannot be zero")
	}
	if !oldTier.IsValid() {
		return nil, errors.New("invalid old tier")
	}
	if !newTier.IsValid() {
		return nil, errors.New("invalid new tier")
	}
	if reason == "" {
		return nil, errors.New("reason is required")
	}
	if !changedBy.IsValid() {
		return nil, errors.New("invalid changed_by value")
	}

	return &History{
		actorID:   actorID,
		oldTier:   oldTier,
		newTier:   newTier,
		reason:    reason,
		changedBy: changedBy,
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstructHistory reconstructs an audit entry from persistence.
func ReconstructHistory(
	id uint,
	actorID uint,
	oldTier, newTier vo.Tier,
	reason string,
	changedBy vo.ChangedBy,
	externalEventID *string,
	createdAt time.Time,
) (*History, error) {
	if id == 0 {
		return nil, errors.New("history ID cannot be zero")
	}
	if actorID == 0 {
		return nil, errors.New("actor ID cannot be zero")
	}
	if !changedBy.IsValid() {
		return nil, errors.New("invalid changed_by value")
	}

	return &History{
		id:              id,
		actorID:         actorID,
		oldTier:         oldTier,
		newTier:         newTier,
		reason:          reason,
		changedBy:       changedBy,
		externalEventID: externalEventID,
		createdAt:       createdAt,
	}, nil
}

// SetExternalEventID links the entry to the billing event that caused it.
// Allowed only before the entry is persisted.
func (h *History) SetExternalEventID(eventID string) error {
	if h.id != 0 {
		return ErrHistoryImmutable
	}
	h.externalEventID = &eventID
	return nil
}

func (h *History) ID() uint                  { return h.id }
func (h *History) ActorID() uint             { return h.actorID }
func (h *History) OldTier() vo.Tier          { return h.oldTier }
func (h *History) NewTier() vo.Tier          { return h.newTier }
func (h *History) Reason() string            { return h.reason }
func (h *History) ChangedBy() vo.ChangedBy   { return h.changedBy }
func (h *History) ExternalEventID() *string  { return h.externalEventID }
func (h *History) CreatedAt() time.Time      { return h.createdAt }

// IsTierChange reports whether the entry records an actual tier move.
func (h *History) IsTierChange() bool {
	return h.oldTier != h.newTier
}
