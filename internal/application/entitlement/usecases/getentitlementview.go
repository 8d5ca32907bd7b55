package usecases

import (
	"context"

	"github.com/girder-hq/girder/internal/domain/capability"
	"github.com/girder-hq/girder/internal/domain/usage"
	apperrors "github.com/girder-hq/girder/internal/shared/errors"
	"github.com/girder-hq/girder/internal/shared/logger"
)

// GetEntitlementViewUseCase assembles the four presenter inputs and projects
// them into an EntitlementView. All state lives in the inputs; the view
// itself is recomputed on every request.
type GetEntitlementViewUseCase struct {
	usageRepo     usage.Repository
	subscriptions SubscriptionProvider
	logger        logger.Interface
}

// NewGetEntitlementViewUseCase creates a new GetEntitlementViewUseCase.
func NewGetEntitlementViewUseCase(
	usageRepo usage.Repository,
	subscriptions SubscriptionProvider,
	logger logger.Interface,
) *GetEntitlementViewUseCase {
	return &GetEntitlementViewUseCase{
		usageRepo:     usageRepo,
		subscriptions: subscriptions,
		logger:        logger,
	}
}

// Execute returns the entitlement view for an actor.
func (uc *GetEntitlementViewUseCase) Execute(ctx context.Context, actorID uint, role capability.Role) (*EntitlementView, error) {
	if actorID == 0 {
		return nil, apperrors.NewValidationError("actor id is required")
	}

	sub, err := uc.subscriptions.EnsureForActor(ctx, actorID)
	if err != nil {
		uc.logger.Errorw("failed to ensure subscription record", "actor_id", actorID, "error", err)
		return nil, apperrors.NewUnavailableError("subscription store unavailable", err.Error())
	}

	snapshot, err := uc.usageRepo.SnapshotForActor(ctx, actorID)
	if err != nil {
		uc.logger.Errorw("failed to read usage snapshot", "actor_id", actorID, "error", err)
		return nil, apperrors.NewUnavailableError("usage store unavailable", err.Error())
	}

	return Present(role, capability.Resolve(role), snapshot, sub), nil
}
