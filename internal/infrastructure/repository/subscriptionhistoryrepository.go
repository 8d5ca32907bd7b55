package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/girder-hq/girder/internal/domain/subscription"
	"github.com/girder-hq/girder/internal/infrastructure/persistence/mappers"
	"github.com/girder-hq/girder/internal/infrastructure/persistence/models"
	"github.com/girder-hq/girder/internal/shared/logger"
)

type SubscriptionHistoryRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.SubscriptionHistoryMapper
	logger logger.Interface
}

func NewSubscriptionHistoryRepository(
	db *gorm.DB,
	logger logger.Interface,
) subscription.HistoryRepository {
	return &SubscriptionHistoryRepositoryImpl{
		db:     db,
		mapper: mappers.NewSubscriptionHistoryMapper(),
		logger: logger,
	}
}

func (r *SubscriptionHistoryRepositoryImpl) Create(ctx context.Context, entry *subscription.History) error {
	model, err := r.mapper.ToModel(entry)
	if err != nil {
		r.logger.Errorw("failed to map history entity to model", "error", err)
		return fmt.Errorf("failed to map history entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create history entry", "error", err)
		return fmt.Errorf("failed to create history entry: %w", err)
	}

	return nil
}

func (r *SubscriptionHistoryRepositoryImpl) ListByActorID(ctx context.Context, actorID uint, limit, offset int) ([]*subscription.History, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.SubscriptionHistoryModel{}).
		Where("actor_id = ?", actorID).
		Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count history entries", "actor_id", actorID, "error", err)
		return nil, 0, fmt.Errorf("failed to count history entries: %w", err)
	}

	var historyModels []*models.SubscriptionHistoryModel
	if err := r.db.WithContext(ctx).
		Where("actor_id = ?", actorID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&historyModels).Error; err != nil {
		r.logger.Errorw("failed to list history entries", "actor_id", actorID, "error", err)
		return nil, 0, fmt.Errorf("failed to list history entries: %w", err)
	}

	entities, err := r.mapper.ToEntities(historyModels)
	if err != nil {
		r.logger.Errorw("failed to map history models to entities", "actor_id", actorID, "error", err)
		return nil, 0, fmt.Errorf("failed to map history entries: %w", err)
	}

	return entities, total, nil
}

func (r *SubscriptionHistoryRepositoryImpl) CountByActorID(ctx context.Context, actorID uint) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.SubscriptionHistoryModel{}).
		Where("actor_id = ?", actorID).
		Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count history entries", "actor_id", actorID, "error", err)
		return 0, fmt.Errorf("failed to count history entries: %w", err)
	}
	return total, nil
}
