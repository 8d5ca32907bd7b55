package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	billingUC "github.com/girder-hq/girder/internal/application/billing/usecases"
	billingInfra "github.com/girder-hq/girder/internal/infrastructure/billing"
	"github.com/girder-hq/girder/internal/infrastructure/metrics"
	"github.com/girder-hq/girder/internal/shared/constants"
	"github.com/girder-hq/girder/internal/shared/logger"
	"github.com/girder-hq/girder/internal/shared/utils"
)

// maxWebhookBodyBytes bounds webhook payload reads.
const maxWebhookBodyBytes = 1 << 20

type BillingWebhookHandler struct {
	gateway     *billingInfra.WebhookGateway
	handleEvent *billingUC.HandleBillingEventUseCase
	logger      logger.Interface
}

func NewBillingWebhookHandler(
	gateway *billingInfra.WebhookGateway,
	handleEvent *billingUC.HandleBillingEventUseCase,
	logger logger.Interface,
) *BillingWebhookHandler {
	return &BillingWebhookHandler{
		gateway:     gateway,
		handleEvent: handleEvent,
		logger:      logger,
	}
}

// HandleWebhook receives billing provider events. A 2xx acknowledges the
// delivery; 5xx makes the provider retry. Signature failures are 400 so a
// misconfigured sender does not retry forever.
func (h *BillingWebhookHandler) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Warnw("failed to read webhook body", "error", err)
		c.Status(http.StatusBadRequest)
		return
	}

	signature := c.GetHeader(constants.HeaderWebhookSignature)
	if err := h.gateway.VerifySignature(payload, signature); err != nil {
		h.logger.Warnw("rejected webhook with bad signature", "error", err)
		c.Status(http.StatusBadRequest)
		return
	}

	event, err := h.gateway.ParseEvent(payload)
	if err != nil {
		// Malformed but authenticated payloads are acknowledged and dropped;
		// retrying cannot fix them.
		h.logger.Warnw("dropping undecodable webhook payload", "error", err)
		metrics.Get().RecordBillingEvent("unknown", "malformed")
		c.Status(http.StatusOK)
		return
	}

	if err := h.handleEvent.Execute(c.Request.Context(), event); err != nil {
		h.logger.Errorw("failed to process billing event", "event_id", event.ID, "error", err)
		metrics.Get().RecordBillingEvent(event.Type.String(), "error")
		utils.ErrorResponseWithError(c, err)
		return
	}

	metrics.Get().RecordBillingEvent(event.Type.String(), "processed")
	c.Status(http.StatusOK)
}
