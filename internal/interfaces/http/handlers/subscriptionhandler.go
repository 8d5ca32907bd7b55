package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	billingUC "github.com/girder-hq/girder/internal/application/billing/usecases"
	"github.com/girder-hq/girder/internal/domain/capability"
	"github.com/girder-hq/girder/internal/domain/subscription"
	"github.com/girder-hq/girder/internal/domain/subscription/valueobjects"
	"github.com/girder-hq/girder/internal/interfaces/http/middleware"
	"github.com/girder-hq/girder/internal/shared/errors"
	"github.com/girder-hq/girder/internal/shared/logger"
	"github.com/girder-hq/girder/internal/shared/utils"
)

type SubscriptionHandler struct {
	getOrCreate    *billingUC.GetOrCreateSubscriptionUseCase
	scheduleCancel *billingUC.ScheduleCancellationUseCase
	changeTier     *billingUC.ApplyTierChangeUseCase
	listHistory    *billingUC.ListSubscriptionHistoryUseCase
	logger         logger.Interface
}

func NewSubscriptionHandler(
	getOrCreate *billingUC.GetOrCreateSubscriptionUseCase,
	scheduleCancel *billingUC.ScheduleCancellationUseCase,
	changeTier *billingUC.ApplyTierChangeUseCase,
	listHistory *billingUC.ListSubscriptionHistoryUseCase,
	logger logger.Interface,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		getOrCreate:    getOrCreate,
		scheduleCancel: scheduleCancel,
		changeTier:     changeTier,
		listHistory:    listHistory,
		logger:         logger,
	}
}

type subscriptionResponse struct {
	SID               string     `json:"sid"`
	Tier              string     `json:"tier"`
	Status            string     `json:"status"`
	CancelAtPeriodEnd bool       `json:"cancel_at_period_end"`
	PeriodStart       *time.Time `json:"current_period_start,omitempty"`
	PeriodEnd         *time.Time `json:"current_period_end,omitempty"`
	TrialEndsAt       *time.Time `json:"trial_ends_at,omitempty"`
	APIRequestsUsed   int        `json:"api_requests_used"`
	APIRequestsLimit  int        `json:"api_requests_limit"`
}

func toSubscriptionResponse(sub *subscription.Subscription) subscriptionResponse {
	return subscriptionResponse{
		SID:               sub.SID(),
		Tier:              sub.Tier().String(),
		Status:            sub.Status().String(),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd(),
		PeriodStart:       sub.CurrentPeriodStart(),
		PeriodEnd:         sub.CurrentPeriodEnd(),
		TrialEndsAt:       sub.TrialEndsAt(),
		APIRequestsUsed:   sub.APIRequestsUsed(),
		APIRequestsLimit:  sub.APIRequestsLimit(),
	}
}

// GetSubscription returns the actor's subscription record, creating the
// free-tier record on first contact.
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	actorID, _, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("missing actor identity"))
		return
	}

	sub, err := h.getOrCreate.Execute(c.Request.Context(), actorID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", toSubscriptionResponse(sub))
}

type cancelRequest struct {
	AtPeriodEnd bool   `json:"at_period_end"`
	Reason      string `json:"reason"`
}

// CancelSubscription cancels the actor's subscription, immediately or at
// period end.
func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	actorID, _, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("missing actor identity"))
		return
	}

	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("invalid request body"))
		return
	}

	err := h.scheduleCancel.Execute(c.Request.Context(), billingUC.ScheduleCancellationCommand{
		ActorID:     actorID,
		AtPeriodEnd: req.AtPeriodEnd,
		Reason:      req.Reason,
		ChangedBy:   valueobjects.ChangedByActor,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

type changeTierRequest struct {
	Tier   string `json:"tier" binding:"required"`
	Reason string `json:"reason"`
}

// ChangeTier applies an admin-initiated tier change.
func (h *SubscriptionHandler) ChangeTier(c *gin.Context) {
	_, role, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("missing actor identity"))
		return
	}

	if role != capability.RolePlatformAdmin {
		utils.ErrorResponseWithError(c, errors.NewForbiddenError("tier changes require platform admin"))
		return
	}

	var req changeTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("invalid request body"))
		return
	}

	targetActorID, err := utils.ParseUintParam(c, "actor_id")
	if err != nil {
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("invalid actor id"))
		return
	}

	sub, err := h.changeTier.Execute(c.Request.Context(), billingUC.ApplyTierChangeCommand{
		ActorID:   targetActorID,
		NewTier:   valueobjects.Tier(req.Tier),
		Reason:    req.Reason,
		ChangedBy: valueobjects.ChangedByAdmin,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", toSubscriptionResponse(sub))
}

type historyEntryResponse struct {
	OldTier         string    `json:"old_tier"`
	NewTier         string    `json:"new_tier"`
	Reason          string    `json:"reason"`
	ChangedBy       string    `json:"changed_by"`
	ExternalEventID *string   `json:"external_event_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ListHistory returns the actor's subscription audit trail, newest first.
func (h *SubscriptionHandler) ListHistory(c *gin.Context) {
	actorID, _, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("missing actor identity"))
		return
	}

	page := utils.QueryInt(c, "page", 1)
	pageSize := utils.QueryInt(c, "page_size", 20)

	result, err := h.listHistory.Execute(c.Request.Context(), billingUC.ListSubscriptionHistoryCommand{
		ActorID:  actorID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	entries := make([]historyEntryResponse, 0, len(result.Entries))
	for _, e := range result.Entries {
		entries = append(entries, historyEntryResponse{
			OldTier:         e.OldTier().String(),
			NewTier:         e.NewTier().String(),
			Reason:          e.Reason(),
			ChangedBy:       e.ChangedBy().String(),
			ExternalEventID: e.ExternalEventID(),
			CreatedAt:       e.CreatedAt(),
		})
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"entries": entries, "total": result.Total})
}
