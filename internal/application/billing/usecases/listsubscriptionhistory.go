package usecases

import (
	"context"

	"github.com/girder-hq/girder/internal/domain/subscription"
	"github.com/girder-hq/girder/internal/shared/errors"
)

// ListSubscriptionHistoryCommand pages through an actor's audit trail.
type ListSubscriptionHistoryCommand struct {
	ActorID  uint
	Page     int
	PageSize int
}

// ListSubscriptionHistoryResult carries one page of audit entries.
type ListSubscriptionHistoryResult struct {
	Entries []*subscription.History
	Total   int64
}

// ListSubscriptionHistoryUseCase returns an actor's subscription audit
// trail, newest first.
type ListSubscriptionHistoryUseCase struct {
	historyRepo subscription.HistoryRepository
}

func NewListSubscriptionHistoryUseCase(historyRepo subscription.HistoryRepository) *ListSubscriptionHistoryUseCase {
	return &ListSubscriptionHistoryUseCase{historyRepo: historyRepo}
}

func (uc *ListSubscriptionHistoryUseCase) Execute(ctx context.Context, cmd ListSubscriptionHistoryCommand) (*ListSubscriptionHistoryResult, error) {
	if cmd.ActorID == 0 {
		return nil, errors.NewValidationError("actor id is required")
	}
	page := cmd.Page
	if page < 1 {
		page = 1
	}
	pageSize := cmd.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	entries, total, err := uc.historyRepo.ListByActorID(ctx, cmd.ActorID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	return &ListSubscriptionHistoryResult{Entries: entries, Total: total}, nil
}
