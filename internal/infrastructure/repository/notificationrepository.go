package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/girder-hq/girder/internal/domain/notification"
	"github.com/girder-hq/girder/internal/infrastructure/persistence/mappers"
	"github.com/girder-hq/girder/internal/infrastructure/persistence/models"
	"github.com/girder-hq/girder/internal/shared/biztime"
	"github.com/girder-hq/girder/internal/shared/logger"
)

type NotificationRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.NotificationMapper
	logger logger.Interface
}

func NewNotificationRepository(
	db *gorm.DB,
	logger logger.Interface,
) notification.Repository {
	return &NotificationRepositoryImpl{
		db:     db,
		mapper: mappers.NewNotificationMapper(),
		logger: logger,
	}
}

func (r *NotificationRepositoryImpl) Create(ctx context.Context, n *notification.Notification) error {
	model, err := r.mapper.ToModel(n)
	if err != nil {
		r.logger.Errorw("failed to map notification entity to model", "error", err)
		return fmt.Errorf("failed to map notification entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create notification", "error", err)
		return fmt.Errorf("failed to create notification: %w", err)
	}

	if err := n.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set notification ID: %w", err)
	}

	return nil
}

func (r *NotificationRepositoryImpl) ListByActorID(ctx context.Context, actorID uint, limit, offset int) ([]*notification.Notification, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("actor_id = ?", actorID).
		Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count notifications", "actor_id", actorID, "error", err)
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	var notificationModels []*models.NotificationModel
	if err := r.db.WithContext(ctx).
		Where("actor_id = ?", actorID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notificationModels).Error; err != nil {
		r.logger.Errorw("failed to list notifications", "actor_id", actorID, "error", err)
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	entities, err := r.mapper.ToEntities(notificationModels)
	if err != nil {
		r.logger.Errorw("failed to map notification models to entities", "actor_id", actorID, "error", err)
		return nil, 0, fmt.Errorf("failed to map notifications: %w", err)
	}

	return entities, total, nil
}

func (r *NotificationRepositoryImpl) CountUnread(ctx context.Context, actorID uint) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("actor_id = ? AND read_at IS NULL", actorID).
		Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count unread notifications", "actor_id", actorID, "error", err)
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return total, nil
}

func (r *NotificationRepositoryImpl) MarkAsRead(ctx context.Context, id uint) error {
	now := biztime.NowUTC()
	result := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", now)
	if result.Error != nil {
		r.logger.Errorw("failed to mark notification read", "id", id, "error", result.Error)
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	return nil
}
