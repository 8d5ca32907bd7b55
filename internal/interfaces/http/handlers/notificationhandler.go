package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/girder-hq/girder/internal/domain/notification"
	"github.com/girder-hq/girder/internal/interfaces/http/middleware"
	"github.com/girder-hq/girder/internal/shared/errors"
	"github.com/girder-hq/girder/internal/shared/logger"
	"github.com/girder-hq/girder/internal/shared/utils"
)

type NotificationHandler struct {
	notificationRepo notification.Repository
	logger           logger.Interface
}

func NewNotificationHandler(notificationRepo notification.Repository, logger logger.Interface) *NotificationHandler {
	return &NotificationHandler{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

type notificationResponse struct {
	SID       string         `json:"sid"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"created_at"`
}

// ListNotifications returns the actor's notifications, newest first.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	actorID, _, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("missing actor identity"))
		return
	}

	page := utils.QueryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := utils.QueryInt(c, "page_size", 20)
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	notifications, total, err := h.notificationRepo.ListByActorID(
		c.Request.Context(), actorID, pageSize, (page-1)*pageSize)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	items := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, notificationResponse{
			SID:       n.SID(),
			Type:      string(n.Type()),
			Title:     n.Title(),
			Message:   n.Message(),
			Data:      n.Data(),
			Read:      n.IsRead(),
			CreatedAt: n.CreatedAt(),
		})
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"notifications": items, "total": total})
}

// GetUnreadCount returns the number of unread notifications.
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	actorID, _, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("missing actor identity"))
		return
	}

	count, err := h.notificationRepo.CountUnread(c.Request.Context(), actorID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"unread": count})
}

// MarkRead marks one notification as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	_, _, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("missing actor identity"))
		return
	}

	id, err := utils.ParseUintParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("invalid notification id"))
		return
	}

	if err := h.notificationRepo.MarkAsRead(c.Request.Context(), id); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}
