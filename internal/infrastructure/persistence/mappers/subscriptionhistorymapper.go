package mappers

import (
	"fmt"

	"github.com/girder-hq/girder/internal/domain/subscription"
	vo "github.com/girder-hq/girder/internal/domain/subscription/valueobjects"
	"github.com/girder-hq/girder/internal/infrastructure/persistence/models"
)

type SubscriptionHistoryMapper interface {
	ToEntity(model *models.SubscriptionHistoryModel) (*subscription.History, error)
	ToModel(entity *subscription.History) (*models.SubscriptionHistoryModel, error)
	ToEntities(models []*models.SubscriptionHistoryModel) ([]*subscription.History, error)
}

type SubscriptionHistoryMapperImpl struct{}

func NewSubscriptionHistoryMapper() SubscriptionHistoryMapper {
	return &SubscriptionHistoryMapperImpl{}
}

func (m *SubscriptionHistoryMapperImpl) ToEntity(model *models.SubscriptionHistoryModel) (*subscription.History, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := subscription.ReconstructHistory(
		model.ID,
		model.ActorID,
		vo.Tier(model.OldTier),
		vo.Tier(model.NewTier),
		model.Reason,
		vo.ChangedBy(model.ChangedBy),
		model.ExternalEventID,
		model.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct history entity: %w", err)
	}

	return entity, nil
}

func (m *SubscriptionHistoryMapperImpl) ToModel(entity *subscription.History) (*models.SubscriptionHistoryModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.SubscriptionHistoryModel{
		ID:              entity.ID(),
		ActorID:         entity.ActorID(),
		OldTier:         entity.OldTier().String(),
		NewTier:         entity.NewTier().String(),
		Reason:          entity.Reason(),
		ChangedBy:       entity.ChangedBy().String(),
		ExternalEventID: entity.ExternalEventID(),
		CreatedAt:       entity.CreatedAt(),
	}, nil
}

func (m *SubscriptionHistoryMapperImpl) ToEntities(historyModels []*models.SubscriptionHistoryModel) ([]*subscription.History, error) {
	entities := make([]*subscription.History, 0, len(historyModels))
	for _, model := range historyModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
