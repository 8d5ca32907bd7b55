package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/girder-hq/girder/internal/domain/usage"
	"github.com/girder-hq/girder/internal/infrastructure/persistence/models"
	"github.com/girder-hq/girder/internal/shared/biztime"
	"github.com/girder-hq/girder/internal/shared/logger"
)

// UsageRepositoryImpl computes usage snapshots directly from the operational
// tables. Counters are never stored; every snapshot is recomputed so drift
// cannot accumulate.
type UsageRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewUsageRepository(db *gorm.DB, logger logger.Interface) usage.Repository {
	return &UsageRepositoryImpl{db: db, logger: logger}
}

func (r *UsageRepositoryImpl) SnapshotForActor(ctx context.Context, actorID uint) (*usage.Snapshot, error) {
	now := biztime.NowUTC()
	dayStart := biztime.StartOfDayUTC(now)

	var sandboxRuns int64
	if err := r.db.WithContext(ctx).
		Model(&models.SandboxRunModel{}).
		Where("actor_id = ? AND created_at >= ?", actorID, dayStart).
		Count(&sandboxRuns).Error; err != nil {
		r.logger.Errorw("failed to count sandbox runs", "actor_id", actorID, "error", err)
		return nil, fmt.Errorf("failed to count sandbox runs: %w", err)
	}

	var activeApps int64
	if err := r.db.WithContext(ctx).
		Model(&models.AppModel{}).
		Where("actor_id = ? AND active = ?", actorID, true).
		Count(&activeApps).Error; err != nil {
		r.logger.Errorw("failed to count active apps", "actor_id", actorID, "error", err)
		return nil, fmt.Errorf("failed to count active apps: %w", err)
	}

	var activeWorkflows int64
	if err := r.db.WithContext(ctx).
		Model(&models.WorkflowModel{}).
		Where("actor_id = ? AND active = ?", actorID, true).
		Count(&activeWorkflows).Error; err != nil {
		r.logger.Errorw("failed to count active workflows", "actor_id", actorID, "error", err)
		return nil, fmt.Errorf("failed to count active workflows: %w", err)
	}

	return usage.NewSnapshot(int(sandboxRuns), int(activeApps), int(activeWorkflows))
}
