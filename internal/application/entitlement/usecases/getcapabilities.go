package usecases

import (
	"context"

	"github.com/girder-hq/girder/internal/domain/capability"
	"github.com/girder-hq/girder/internal/domain/usage"
	apperrors "github.com/girder-hq/girder/internal/shared/errors"
	"github.com/girder-hq/girder/internal/shared/logger"
)

// CapabilitiesResult bundles the actor's role policy with current usage.
type CapabilitiesResult struct {
	Role   capability.Role   `json:"role"`
	Policy capability.Policy `json:"policy"`
	Usage  *usage.Snapshot   `json:"usage"`
}

// GetCapabilitiesUseCase resolves the static policy for a role and pairs it
// with the actor's live consumption counters.
type GetCapabilitiesUseCase struct {
	usageRepo     usage.Repository
	subscriptions SubscriptionProvider
	logger        logger.Interface
}

// NewGetCapabilitiesUseCase creates a new GetCapabilitiesUseCase.
func NewGetCapabilitiesUseCase(
	usageRepo usage.Repository,
	subscriptions SubscriptionProvider,
	logger logger.Interface,
) *GetCapabilitiesUseCase {
	return &GetCapabilitiesUseCase{
		usageRepo:     usageRepo,
		subscriptions: subscriptions,
		logger:        logger,
	}
}

// Execute returns the capability view for an actor.
func (uc *GetCapabilitiesUseCase) Execute(ctx context.Context, actorID uint, role capability.Role) (*CapabilitiesResult, error) {
	if actorID == 0 {
		return nil, apperrors.NewValidationError("actor id is required")
	}

	if _, err := uc.subscriptions.EnsureForActor(ctx, actorID); err != nil {
		uc.logger.Errorw("failed to ensure subscription record", "actor_id", actorID, "error", err)
		return nil, apperrors.NewUnavailableError("subscription store unavailable", err.Error())
	}

	snapshot, err := uc.usageRepo.SnapshotForActor(ctx, actorID)
	if err != nil {
		uc.logger.Errorw("failed to read usage snapshot", "actor_id", actorID, "error", err)
		return nil, apperrors.NewUnavailableError("usage store unavailable", err.Error())
	}

	return &CapabilitiesResult{
		Role:   role,
		Policy: capability.Resolve(role),
		Usage:  snapshot,
	}, nil
}
