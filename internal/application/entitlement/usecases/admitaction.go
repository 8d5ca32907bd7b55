// Package usecases provides application-level use cases for entitlement
// checks: quota admission, capability lookup and the entitlement view.
package usecases

import (
	"context"
	"fmt"

	"github.com/girder-hq/girder/internal/domain/capability"
	"github.com/girder-hq/girder/internal/domain/subscription"
	"github.com/girder-hq/girder/internal/domain/usage"
	apperrors "github.com/girder-hq/girder/internal/shared/errors"
	"github.com/girder-hq/girder/internal/shared/logger"
)

// DenialReason classifies why an action was not admitted.
type DenialReason string

const (
	DenialRoleRestricted DenialReason = "role_restricted"
	DenialQuotaExceeded  DenialReason = "quota_exceeded"
)

// Denial describes a policy denial. Used and Limit are only meaningful for
// quota denials and are included for client display.
type Denial struct {
	Reason  DenialReason `json:"reason"`
	Message string       `json:"message"`
	Used    int          `json:"used,omitempty"`
	Limit   int          `json:"limit,omitempty"`
}

// AdmitResult is the outcome of an admission check. A nil Denial means the
// action is admitted.
type AdmitResult struct {
	Allowed bool    `json:"allowed"`
	Denial  *Denial `json:"denial,omitempty"`
}

// AdmitActionCommand carries the inputs of an admission check.
type AdmitActionCommand struct {
	ActorID uint
	Role    capability.Role
	Action  capability.Action
}

// SubscriptionProvider lazily materializes the billing record for an actor.
// The first entitlement check for an unseen actor creates a free-tier record.
type SubscriptionProvider interface {
	EnsureForActor(ctx context.Context, actorID uint) (*subscription.Subscription, error)
}

// AdmitActionUseCase decides whether a metered action may proceed. The check
// is advisory-then-commit: admission never increments a counter, the counter
// only grows when the caller durably records the action. Two concurrent
// checks for the same actor can therefore both pass with one unit of quota
// left; quotas are best-effort ceilings, not hard allocations.
type AdmitActionUseCase struct {
	usageRepo     usage.Repository
	subscriptions SubscriptionProvider
	logger        logger.Interface
}

// NewAdmitActionUseCase creates a new AdmitActionUseCase.
func NewAdmitActionUseCase(
	usageRepo usage.Repository,
	subscriptions SubscriptionProvider,
	logger logger.Interface,
) *AdmitActionUseCase {
	return &AdmitActionUseCase{
		usageRepo:     usageRepo,
		subscriptions: subscriptions,
		logger:        logger,
	}
}

// Execute runs the admission check. A policy denial comes back inside
// AdmitResult; an upstream failure comes back as an error and must not be
// read as either admitted or denied.
func (uc *AdmitActionUseCase) Execute(ctx context.Context, cmd AdmitActionCommand) (*AdmitResult, error) {
	if cmd.ActorID == 0 {
		return nil, apperrors.NewValidationError("actor id is required")
	}
	if !cmd.Action.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown action: %s", cmd.Action))
	}

	policy := capability.Resolve(cmd.Role)

	if cmd.Action.RequiresSandbox() && !policy.CanAccessSandbox {
		return uc.deny(cmd, &Denial{
			Reason:  DenialRoleRestricted,
			Message: fmt.Sprintf("role %s has no sandbox access", cmd.Role),
		}), nil
	}

	if cmd.Action == capability.ActionPublishModule {
		if !policy.CanPublishModules {
			return uc.deny(cmd, &Denial{
				Reason:  DenialRoleRestricted,
				Message: fmt.Sprintf("role %s cannot publish modules", cmd.Role),
			}), nil
		}
		// Publishing is capability-gated only, not quota-bounded.
		return &AdmitResult{Allowed: true}, nil
	}

	// First entitlement contact for an actor creates its free-tier record.
	if _, err := uc.subscriptions.EnsureForActor(ctx, cmd.ActorID); err != nil {
		uc.logger.Errorw("failed to ensure subscription record",
			"actor_id", cmd.ActorID,
			"error", err,
		)
		return nil, apperrors.NewUnavailableError("subscription store unavailable", err.Error())
	}

	snapshot, err := uc.usageRepo.SnapshotForActor(ctx, cmd.ActorID)
	if err != nil {
		uc.logger.Errorw("failed to read usage snapshot",
			"actor_id", cmd.ActorID,
			"error", err,
		)
		return nil, apperrors.NewUnavailableError("usage store unavailable", err.Error())
	}

	used, limit := quotaFor(cmd.Action, policy, snapshot)
	if capability.IsUnlimited(limit) {
		return &AdmitResult{Allowed: true}, nil
	}
	if used >= limit {
		return uc.deny(cmd, &Denial{
			Reason:  DenialQuotaExceeded,
			Message: fmt.Sprintf("quota exceeded for %s", cmd.Action),
			Used:    used,
			Limit:   limit,
		}), nil
	}

	return &AdmitResult{Allowed: true}, nil
}

func (uc *AdmitActionUseCase) deny(cmd AdmitActionCommand, denial *Denial) *AdmitResult {
	uc.logger.Infow("action denied",
		"actor_id", cmd.ActorID,
		"role", cmd.Role,
		"action", cmd.Action,
		"reason", denial.Reason,
	)
	return &AdmitResult{Allowed: false, Denial: denial}
}

// quotaFor selects the policy ceiling and snapshot counter for an action.
func quotaFor(action capability.Action, policy capability.Policy, snapshot *usage.Snapshot) (used, limit int) {
	switch action {
	case capability.ActionSandboxRun:
		return snapshot.SandboxRunsToday, policy.MaxSandboxRunsPerDay
	case capability.ActionActivateWorkflow:
		return snapshot.ActiveWorkflows, policy.MaxActiveWorkflows
	default:
		return 0, capability.Unlimited
	}
}
