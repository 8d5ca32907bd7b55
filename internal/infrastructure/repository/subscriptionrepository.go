package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/girder-hq/girder/internal/domain/subscription"
	"github.com/girder-hq/girder/internal/domain/subscription/valueobjects"
	"github.com/girder-hq/girder/internal/infrastructure/persistence/mappers"
	"github.com/girder-hq/girder/internal/infrastructure/persistence/models"
	"github.com/girder-hq/girder/internal/shared/logger"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.SubscriptionMapper
	logger logger.Interface
}

func NewSubscriptionRepository(
	db *gorm.DB,
	logger logger.Interface,
) subscription.Repository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mappers.NewSubscriptionMapper(),
		logger: logger,
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, subscriptionEntity *subscription.Subscription) error {
	model, err := r.mapper.ToModel(subscriptionEntity)
	if err != nil {
		r.logger.Errorw("failed to map subscription entity to model", "error", err)
		return fmt.Errorf("failed to map subscription entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create subscription in database", "error", err)
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	if err := subscriptionEntity.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set subscription ID", "error", err)
		return fmt.Errorf("failed to set subscription ID: %w", err)
	}

	r.logger.Infow("subscription created", "id", model.ID, "actor_id", model.ActorID, "tier", model.Tier)
	return nil
}

func (r *SubscriptionRepositoryImpl) GetByActorID(ctx context.Context, actorID uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel

	if err := r.db.WithContext(ctx).Where("actor_id = ?", actorID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription by actor ID", "actor_id", actorID, "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	entity, err := r.mapper.ToEntity(&model)
	if err != nil {
		r.logger.Errorw("failed to map subscription model to entity", "actor_id", actorID, "error", err)
		return nil, fmt.Errorf("failed to map subscription: %w", err)
	}

	return entity, nil
}

func (r *SubscriptionRepositoryImpl) GetByExternalSubscriptionID(ctx context.Context, externalID string) (*subscription.Subscription, error) {
	if externalID == "" {
		return nil, nil
	}

	var model models.SubscriptionModel
	if err := r.db.WithContext(ctx).Where("external_subscription_id = ?", externalID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription by external ID", "external_subscription_id", externalID, "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	entity, err := r.mapper.ToEntity(&model)
	if err != nil {
		r.logger.Errorw("failed to map subscription model to entity", "external_subscription_id", externalID, "error", err)
		return nil, fmt.Errorf("failed to map subscription: %w", err)
	}

	return entity, nil
}

// Update persists the aggregate with optimistic locking: the row is only
// written when its stored version matches the version the aggregate was
// loaded with.
func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, subscriptionEntity *subscription.Subscription) error {
	model, err := r.mapper.ToModel(subscriptionEntity)
	if err != nil {
		r.logger.Errorw("failed to map subscription entity to model", "error", err)
		return fmt.Errorf("failed to map subscription entity: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&models.SubscriptionModel{}).
		Where("id = ? AND version = ?", model.ID, subscriptionEntity.LoadedVersion()).
		Updates(map[string]any{
			"tier":                      model.Tier,
			"external_customer_id":      model.ExternalCustomerID,
			"external_subscription_id":  model.ExternalSubscriptionID,
			"status":                    model.Status,
			"current_period_start":      model.CurrentPeriodStart,
			"current_period_end":        model.CurrentPeriodEnd,
			"cancel_at_period_end":      model.CancelAtPeriodEnd,
			"trial_ends_at":             model.TrialEndsAt,
			"trial_warning_notified_at": model.TrialWarningNotifiedAt,
			"api_requests_used":         model.APIRequestsUsed,
			"api_requests_limit":        model.APIRequestsLimit,
			"version":                   model.Version,
			"updated_at":                model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update subscription", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("subscription %d was modified concurrently", model.ID)
	}

	return nil
}

func (r *SubscriptionRepositoryImpl) ListDueScheduledCancellations(ctx context.Context, now time.Time) ([]*subscription.Subscription, error) {
	var subscriptionModels []*models.SubscriptionModel

	if err := r.db.WithContext(ctx).
		Where("cancel_at_period_end = ? AND current_period_end IS NOT NULL AND current_period_end <= ?", true, now).
		Where("status IN ?", []string{valueobjects.StatusActive.String(), valueobjects.StatusTrialing.String()}).
		Find(&subscriptionModels).Error; err != nil {
		r.logger.Errorw("failed to list due scheduled cancellations", "error", err)
		return nil, fmt.Errorf("failed to list due scheduled cancellations: %w", err)
	}

	return r.mapper.ToEntities(subscriptionModels)
}

func (r *SubscriptionRepositoryImpl) ListTrialingEndingBefore(ctx context.Context, cutoff time.Time) ([]*subscription.Subscription, error) {
	var subscriptionModels []*models.SubscriptionModel

	if err := r.db.WithContext(ctx).
		Where("status = ? AND trial_ends_at IS NOT NULL AND trial_ends_at <= ? AND trial_warning_notified_at IS NULL",
			valueobjects.StatusTrialing.String(), cutoff).
		Find(&subscriptionModels).Error; err != nil {
		r.logger.Errorw("failed to list expiring trials", "error", err)
		return nil, fmt.Errorf("failed to list expiring trials: %w", err)
	}

	return r.mapper.ToEntities(subscriptionModels)
}
