// Package subscription holds the billing lifecycle aggregate of the
// governance core: one record per actor, mutated only through the billing
// event synchronizer and the reconciliation sweep.
package subscription

import (
	"fmt"
	"time"

	vo "github.com/girder-hq/girder/internal/domain/subscription/valueobjects"
)

// Subscription is the per-actor billing record aggregate root. Records are
// created lazily on the first entitlement check (free tier) and never
// hard-deleted; canceled is terminal and a reopened subscription is a fresh
// record.
type Subscription struct {
	id                     uint
	sid                    string
	actorID                uint
	tier                   vo.Tier
	externalCustomerID     *string
	externalSubscriptionID *string
	status                 vo.Status
	currentPeriodStart     *time.Time
	currentPeriodEnd       *time.Time
	cancelAtPeriodEnd      bool
	trialEndsAt            *time.Time
	trialWarningNotifiedAt *time.Time
	apiRequestsUsed        int
	apiRequestsLimit       int
	version                int
	// loadedVersion is the version the record carried when it was read from
	// persistence; the repository compares against it when writing.
	loadedVersion int
	createdAt     time.Time
	updatedAt     time.Time
}

// NewSubscription creates a fresh subscription record for an actor on the
// given tier. Free-tier records start active; paid records with a trial end
// start trialing.
func NewSubscription(actorID uint, sid string, tier vo.Tier, trialEndsAt *time.Time) (*Subscription, error) {
	if actorID == 0 {
		return nil, fmt.Errorf("actor ID is required")
	}
	if sid == "" {
		return nil, fmt.Errorf("subscription SID is required")
	}
	if !tier.IsValid() {
		return nil, fmt.Errorf("invalid tier: %s", tier)
	}

	status := vo.StatusActive
	if trialEndsAt != nil {
		status = vo.StatusTrialing
	}

	now := time.Now().UTC()
	return &Subscription{
		sid:              sid,
		actorID:          actorID,
		tier:             tier,
		status:           status,
		trialEndsAt:      trialEndsAt,
		apiRequestsUsed:  0,
		apiRequestsLimit: tier.APIRequestLimit(),
		version:          1,
		loadedVersion:    1,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// ReconstructSubscription reconstructs a subscription from persistence.
func ReconstructSubscription(
	id uint,
	sid string,
	actorID uint,
	tier vo.Tier,
	externalCustomerID, externalSubscriptionID *string,
	status vo.Status,
	currentPeriodStart, currentPeriodEnd *time.Time,
	cancelAtPeriodEnd bool,
	trialEndsAt, trialWarningNotifiedAt *time.Time,
	apiRequestsUsed, apiRequestsLimit int,
	version int,
	createdAt, updatedAt time.Time,
) (*Subscription, error) {
	if id == 0 {
		return nil, fmt.Errorf("subscription ID cannot be zero")
	}
	if actorID == 0 {
		return nil, fmt.Errorf("actor ID is required")
	}
	if !tier.IsValid() {
		return nil, fmt.Errorf("invalid tier: %s", tier)
	}
	if !vo.ValidStatuses[status] {
		return nil, fmt.Errorf("invalid subscription status: %s", status)
	}
	if apiRequestsUsed < 0 {
		return nil, fmt.Errorf("api requests used cannot be negative")
	}

	return &Subscription{
		id:                     id,
		sid:                    sid,
		actorID:                actorID,
		tier:                   tier,
		externalCustomerID:     externalCustomerID,
		externalSubscriptionID: externalSubscriptionID,
		status:                 status,
		currentPeriodStart:     currentPeriodStart,
		currentPeriodEnd:       currentPeriodEnd,
		cancelAtPeriodEnd:      cancelAtPeriodEnd,
		trialEndsAt:            trialEndsAt,
		trialWarningNotifiedAt: trialWarningNotifiedAt,
		apiRequestsUsed:        apiRequestsUsed,
		apiRequestsLimit:       apiRequestsLimit,
		version:                version,
		loadedVersion:          version,
		createdAt:              createdAt,
		updatedAt:              updatedAt,
	}, nil
}

func (s *Subscription) ID() uint                         { return s.id }
func (s *Subscription) SID() string                      { return s.sid }
func (s *Subscription) ActorID() uint                    { return s.actorID }
func (s *Subscription) Tier() vo.Tier                    { return s.tier }
func (s *Subscription) ExternalCustomerID() *string      { return s.externalCustomerID }
func (s *Subscription) ExternalSubscriptionID() *string  { return s.externalSubscriptionID }
func (s *Subscription) Status() vo.Status                { return s.status }
func (s *Subscription) CurrentPeriodStart() *time.Time   { return s.currentPeriodStart }
func (s *Subscription) CurrentPeriodEnd() *time.Time     { return s.currentPeriodEnd }
func (s *Subscription) CancelAtPeriodEnd() bool          { return s.cancelAtPeriodEnd }
func (s *Subscription) TrialEndsAt() *time.Time          { return s.trialEndsAt }
func (s *Subscription) TrialWarningNotifiedAt() *time.Time { return s.trialWarningNotifiedAt }
func (s *Subscription) APIRequestsUsed() int             { return s.apiRequestsUsed }
func (s *Subscription) APIRequestsLimit() int            { return s.apiRequestsLimit }
func (s *Subscription) Version() int                     { return s.version }
func (s *Subscription) LoadedVersion() int               { return s.loadedVersion }
func (s *Subscription) CreatedAt() time.Time             { return s.createdAt }
func (s *Subscription) UpdatedAt() time.Time             { return s.updatedAt }

// SetID sets the subscription ID (only for persistence layer use)
func (s *Subscription) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("subscription ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("subscription ID cannot be zero")
	}
	s.id = id
	return nil
}

func (s *Subscription) touch() {
	s.updatedAt = time.Now().UTC()
	s.version++
}

// Activate transitions trialing to active on first successful payment or
// trial conversion. Idempotent: already active is a no-op.
func (s *Subscription) Activate() (bool, error) {
	if s.status == vo.StatusActive {
		return false, nil
	}
	if !s.status.CanTransitionTo(vo.StatusActive) {
		return false, fmt.Errorf("cannot activate subscription with status %s", s.status)
	}
	s.status = vo.StatusActive
	s.touch()
	return true, nil
}

// MarkPastDue transitions active to past_due on a payment failure.
// A scheduled cancellation only survives while the record is in good
// standing, so the flag is cleared here.
func (s *Subscription) MarkPastDue() (bool, error) {
	if s.status == vo.StatusPastDue {
		return false, nil
	}
	if !s.status.CanTransitionTo(vo.StatusPastDue) {
		return false, fmt.Errorf("cannot mark subscription past due with status %s", s.status)
	}
	s.status = vo.StatusPastDue
	s.cancelAtPeriodEnd = false
	s.touch()
	return true, nil
}

// RecoverFromPastDue transitions past_due back to active when a later
// payment succeeds within the same billing cycle.
func (s *Subscription) RecoverFromPastDue() (bool, error) {
	if s.status != vo.StatusPastDue {
		return false, nil
	}
	s.status = vo.StatusActive
	s.touch()
	return true, nil
}

// MarkUnpaid transitions past_due to unpaid after the external processor's
// retry policy is exhausted.
func (s *Subscription) MarkUnpaid() (bool, error) {
	if s.status == vo.StatusUnpaid {
		return false, nil
	}
	if !s.status.CanTransitionTo(vo.StatusUnpaid) {
		return false, fmt.Errorf("cannot mark subscription unpaid with status %s", s.status)
	}
	s.status = vo.StatusUnpaid
	s.cancelAtPeriodEnd = false
	s.touch()
	return true, nil
}

// Cancel transitions any non-canceled status to canceled and clears the
// scheduled cancellation flag. Idempotent: already canceled is a no-op.
func (s *Subscription) Cancel() (bool, error) {
	if s.status == vo.StatusCanceled {
		return false, nil
	}
	s.status = vo.StatusCanceled
	s.cancelAtPeriodEnd = false
	s.touch()
	return true, nil
}

// ScheduleCancellation flags the record for cancellation at the current
// period end; status is left untouched and resolved later by the
// reconciliation sweep.
func (s *Subscription) ScheduleCancellation() error {
	if s.status != vo.StatusActive && s.status != vo.StatusTrialing {
		return fmt.Errorf("cannot schedule cancellation with status %s", s.status)
	}
	if s.cancelAtPeriodEnd {
		return nil
	}
	s.cancelAtPeriodEnd = true
	s.touch()
	return nil
}

// ClearScheduledCancellation removes a pending scheduled cancellation.
func (s *Subscription) ClearScheduledCancellation() {
	if !s.cancelAtPeriodEnd {
		return
	}
	s.cancelAtPeriodEnd = false
	s.touch()
}

// ResolveScheduledCancellation cancels the record if a scheduled
// cancellation is due at now. Returns true when a transition happened, so a
// second reconciliation pass over the same record is a no-op.
func (s *Subscription) ResolveScheduledCancellation(now time.Time) (bool, error) {
	if !s.cancelAtPeriodEnd {
		return false, nil
	}
	if s.currentPeriodEnd == nil || s.currentPeriodEnd.After(now) {
		return false, nil
	}
	return s.Cancel()
}

// ChangeTier updates the tier and the derived API request limit in place.
// Usage is left untouched; it only resets on a usage-reset billing event.
func (s *Subscription) ChangeTier(newTier vo.Tier) (bool, error) {
	if !newTier.IsValid() {
		return false, fmt.Errorf("invalid tier: %s", newTier)
	}
	if s.status.IsTerminal() {
		return false, fmt.Errorf("cannot change tier of a canceled subscription")
	}
	if newTier == s.tier {
		return false, nil
	}
	s.tier = newTier
	s.apiRequestsLimit = newTier.APIRequestLimit()
	s.touch()
	return true, nil
}

// SyncExternalState applies an externally reported status. The billing
// provider is the source of truth for lifecycle state, so this bypasses the
// local transition table except for the terminal guard. Returns true when
// the status actually changed.
func (s *Subscription) SyncExternalState(target vo.Status) (bool, error) {
	if !vo.ValidStatuses[target] {
		return false, fmt.Errorf("invalid subscription status: %s", target)
	}
	if s.status == target {
		return false, nil
	}
	if s.status.IsTerminal() {
		return false, fmt.Errorf("cannot transition canceled subscription to %s", target)
	}
	s.status = target
	if !target.CanUseService() {
		s.cancelAtPeriodEnd = false
	}
	s.touch()
	return true, nil
}

// UpdatePeriod writes the current billing period boundaries.
func (s *Subscription) UpdatePeriod(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return fmt.Errorf("period end must be after period start")
	}
	s.currentPeriodStart = start
	s.currentPeriodEnd = end
	s.touch()
	return nil
}

// SetCancelAtPeriodEnd mirrors the flag reported by the billing provider.
// Reports whether the flag actually changed.
func (s *Subscription) SetCancelAtPeriodEnd(flag bool) bool {
	if s.cancelAtPeriodEnd == flag {
		return false
	}
	if flag && !s.status.CanUseService() {
		return false
	}
	s.cancelAtPeriodEnd = flag
	s.touch()
	return true
}

// SetExternalRefs records the billing provider identifiers. Reports whether
// either reference changed.
func (s *Subscription) SetExternalRefs(customerID, subscriptionID *string) bool {
	if equalStringPtr(s.externalCustomerID, customerID) &&
		equalStringPtr(s.externalSubscriptionID, subscriptionID) {
		return false
	}
	s.externalCustomerID = customerID
	s.externalSubscriptionID = subscriptionID
	s.touch()
	return true
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// SetTrialEnd writes the trial expiry reported by the billing provider and
// re-arms the trial warning.
func (s *Subscription) SetTrialEnd(trialEndsAt *time.Time) {
	s.trialEndsAt = trialEndsAt
	s.trialWarningNotifiedAt = nil
	s.touch()
}

// ResetUsage zeroes the API request counter for a fresh billing period.
func (s *Subscription) ResetUsage() {
	if s.apiRequestsUsed == 0 {
		return
	}
	s.apiRequestsUsed = 0
	s.touch()
}

// TrialEndingWithin reports whether a trial warning is due: the record is
// trialing, the trial ends inside the window but is still in the future, and
// no warning was sent yet.
func (s *Subscription) TrialEndingWithin(now time.Time, window time.Duration) bool {
	if s.status != vo.StatusTrialing || s.trialEndsAt == nil {
		return false
	}
	if s.trialWarningNotifiedAt != nil {
		return false
	}
	if !s.trialEndsAt.After(now) {
		return false
	}
	return !s.trialEndsAt.After(now.Add(window))
}

// MarkTrialWarningSent records that the trial_ending notification went out,
// so subsequent sweeps do not re-notify.
func (s *Subscription) MarkTrialWarningSent(at time.Time) {
	s.trialWarningNotifiedAt = &at
	s.touch()
}

// RemainingAPIRequests returns the remaining allowance, or UnlimitedRequests
// for an unlimited tier.
func (s *Subscription) RemainingAPIRequests() int {
	if s.apiRequestsLimit < 0 {
		return vo.UnlimitedRequests
	}
	remaining := s.apiRequestsLimit - s.apiRequestsUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Validate performs domain-level validation.
func (s *Subscription) Validate() error {
	if s.actorID == 0 {
		return fmt.Errorf("actor ID is required")
	}
	if !s.tier.IsValid() {
		return fmt.Errorf("invalid tier: %s", s.tier)
	}
	if !vo.ValidStatuses[s.status] {
		return fmt.Errorf("invalid status: %s", s.status)
	}
	if s.apiRequestsUsed < 0 {
		return fmt.Errorf("api requests used cannot be negative")
	}
	if s.cancelAtPeriodEnd && !s.status.CanUseService() {
		return fmt.Errorf("cancel at period end requires active or trialing status, got %s", s.status)
	}
	if s.currentPeriodStart != nil && s.currentPeriodEnd != nil && s.currentPeriodEnd.Before(*s.currentPeriodStart) {
		return fmt.Errorf("current period end must be after current period start")
	}
	return nil
}
