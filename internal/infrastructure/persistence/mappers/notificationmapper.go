package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/girder-hq/girder/internal/domain/notification"
	"github.com/girder-hq/girder/internal/infrastructure/persistence/models"
)

type NotificationMapper interface {
	ToEntity(model *models.NotificationModel) (*notification.Notification, error)
	ToModel(entity *notification.Notification) (*models.NotificationModel, error)
	ToEntities(models []*models.NotificationModel) ([]*notification.Notification, error)
}

type NotificationMapperImpl struct{}

func NewNotificationMapper() NotificationMapper {
	return &NotificationMapperImpl{}
}

func (m *NotificationMapperImpl) ToEntity(model *models.NotificationModel) (*notification.Notification, error) {
	if model == nil {
		return nil, nil
	}

	var data map[string]any
	if model.Data != nil {
		if err := json.Unmarshal(model.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notification data: %w", err)
		}
	}

	entity, err := notification.ReconstructNotification(
		model.ID,
		model.SID,
		model.ActorID,
		notification.Type(model.Type),
		model.Title,
		model.Message,
		data,
		model.ReadAt,
		model.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct notification entity: %w", err)
	}

	return entity, nil
}

func (m *NotificationMapperImpl) ToModel(entity *notification.Notification) (*models.NotificationModel, error) {
	if entity == nil {
		return nil, nil
	}

	var dataJSON datatypes.JSON
	if data := entity.Data(); len(data) > 0 {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal notification data: %w", err)
		}
		dataJSON = raw
	}

	return &models.NotificationModel{
		ID:        entity.ID(),
		SID:       entity.SID(),
		ActorID:   entity.ActorID(),
		Type:      entity.Type().String(),
		Title:     entity.Title(),
		Message:   entity.Message(),
		Data:      dataJSON,
		ReadAt:    entity.ReadAt(),
		CreatedAt: entity.CreatedAt(),
	}, nil
}

func (m *NotificationMapperImpl) ToEntities(notificationModels []*models.NotificationModel) ([]*notification.Notification, error) {
	entities := make([]*notification.Notification, 0, len(notificationModels))
	for _, model := range notificationModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
