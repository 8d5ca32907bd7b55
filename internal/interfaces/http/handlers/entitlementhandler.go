// Package handlers implements the gin HTTP handlers of the governance core.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	entitlementUC "github.com/girder-hq/girder/internal/application/entitlement/usecases"
	"github.com/girder-hq/girder/internal/domain/capability"
	"github.com/girder-hq/girder/internal/infrastructure/metrics"
	"github.com/girder-hq/girder/internal/interfaces/http/middleware"
	"github.com/girder-hq/girder/internal/shared/errors"
	"github.com/girder-hq/girder/internal/shared/logger"
	"github.com/girder-hq/girder/internal/shared/utils"
)

type EntitlementHandler struct {
	getCapabilities    *entitlementUC.GetCapabilitiesUseCase
	getEntitlementView *entitlementUC.GetEntitlementViewUseCase
	admitAction        *entitlementUC.AdmitActionUseCase
	logger             logger.Interface
}

func NewEntitlementHandler(
	getCapabilities *entitlementUC.GetCapabilitiesUseCase,
	getEntitlementView *entitlementUC.GetEntitlementViewUseCase,
	admitAction *entitlementUC.AdmitActionUseCase,
	logger logger.Interface,
) *EntitlementHandler {
	return &EntitlementHandler{
		getCapabilities:    getCapabilities,
		getEntitlementView: getEntitlementView,
		admitAction:        admitAction,
		logger:             logger,
	}
}

// GetCapabilities returns the actor's resolved capability policy together
// with the live usage snapshot.
func (h *EntitlementHandler) GetCapabilities(c *gin.Context) {
	actorID, role, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("missing actor identity"))
		return
	}

	result, err := h.getCapabilities.Execute(c.Request.Context(), actorID, role)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// GetEntitlementView returns the UI-facing entitlement projection.
func (h *EntitlementHandler) GetEntitlementView(c *gin.Context) {
	actorID, role, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("missing actor identity"))
		return
	}

	view, err := h.getEntitlementView.Execute(c.Request.Context(), actorID, role)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", view)
}

type admitActionRequest struct {
	Action string `json:"action" binding:"required"`
}

// AdmitAction runs the advisory admission check for a governed action.
func (h *EntitlementHandler) AdmitAction(c *gin.Context) {
	actorID, role, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("missing actor identity"))
		return
	}

	var req admitActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid admit request body", "error", err)
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.admitAction.Execute(c.Request.Context(), entitlementUC.AdmitActionCommand{
		ActorID: actorID,
		Role:    role,
		Action:  capability.Action(req.Action),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	outcome := "admitted"
	if !result.Allowed {
		outcome = string(result.Denial.Reason)
	}
	metrics.Get().RecordAdmission(req.Action, outcome)

	utils.SuccessResponse(c, http.StatusOK, "", result)
}
