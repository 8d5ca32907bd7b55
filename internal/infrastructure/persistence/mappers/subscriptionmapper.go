package mappers

import (
	"fmt"

	"github.com/girder-hq/girder/internal/domain/subscription"
	vo "github.com/girder-hq/girder/internal/domain/subscription/valueobjects"
	"github.com/girder-hq/girder/internal/infrastructure/persistence/models"
)

type SubscriptionMapper interface {
	ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error)
	ToModel(entity *subscription.Subscription) (*models.SubscriptionModel, error)
	ToEntities(models []*models.SubscriptionModel) ([]*subscription.Subscription, error)
}

type SubscriptionMapperImpl struct{}

func NewSubscriptionMapper() SubscriptionMapper {
	return &SubscriptionMapperImpl{}
}

func (m *SubscriptionMapperImpl) ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	if model == nil {
		return nil, nil
	}

	status := vo.Status(model.Status)
	if !vo.ValidStatuses[status] {
		return nil, fmt.Errorf("invalid subscription status: %s", model.Status)
	}
	tier := vo.Tier(model.Tier)
	if !tier.IsValid() {
		return nil, fmt.Errorf("invalid subscription tier: %s", model.Tier)
	}

	entity, err := subscription.ReconstructSubscription(
		model.ID,
		model.SID,
		model.ActorID,
		tier,
		model.ExternalCustomerID,
		model.ExternalSubscriptionID,
		status,
		model.CurrentPeriodStart,
		model.CurrentPeriodEnd,
		model.CancelAtPeriodEnd,
		model.TrialEndsAt,
		model.TrialWarningNotifiedAt,
		model.APIRequestsUsed,
		model.APIRequestsLimit,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct subscription entity: %w", err)
	}

	return entity, nil
}

func (m *SubscriptionMapperImpl) ToModel(entity *subscription.Subscription) (*models.SubscriptionModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.SubscriptionModel{
		ID:                     entity.ID(),
		SID:                    entity.SID(),
		ActorID:                entity.ActorID(),
		Tier:                   entity.Tier().String(),
		ExternalCustomerID:     entity.ExternalCustomerID(),
		ExternalSubscriptionID: entity.ExternalSubscriptionID(),
		Status:                 entity.Status().String(),
		CurrentPeriodStart:     entity.CurrentPeriodStart(),
		CurrentPeriodEnd:       entity.CurrentPeriodEnd(),
		CancelAtPeriodEnd:      entity.CancelAtPeriodEnd(),
		TrialEndsAt:            entity.TrialEndsAt(),
		TrialWarningNotifiedAt: entity.TrialWarningNotifiedAt(),
		APIRequestsUsed:        entity.APIRequestsUsed(),
		APIRequestsLimit:       entity.APIRequestsLimit(),
		Version:                entity.Version(),
		CreatedAt:              entity.CreatedAt(),
		UpdatedAt:              entity.UpdatedAt(),
	}, nil
}

func (m *SubscriptionMapperImpl) ToEntities(subscriptionModels []*models.SubscriptionModel) ([]*subscription.Subscription, error) {
	entities := make([]*subscription.Subscription, 0, len(subscriptionModels))
	for _, model := range subscriptionModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
