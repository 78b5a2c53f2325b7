package handler

import (
	"io"
	"net/http"

	"order-settlement/internal/adapter/http/middleware"
	"order-settlement/internal/core/ports"
	"order-settlement/pkg/apperror"
	"order-settlement/pkg/response"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives gateway webhook deliveries. The route is
// unauthenticated; the HMAC signature over the raw body is the auth.
type WebhookHandler struct {
	settlementSvc ports.SettlementService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(settlementSvc ports.SettlementService) *WebhookHandler {
	return &WebhookHandler{settlementSvc: settlementSvc}
}

// Receive handles POST /api/v1/webhooks/gateway. A 200 tells the gateway
// to stop redelivering, so anything already handled (including duplicates
// and noops) answers 200; only verification failures and transient errors
// do not.
func (h *WebhookHandler) Receive(c *gin.Context) {
	signature := c.GetHeader(middleware.HeaderSignature)
	eventID := c.GetHeader(middleware.HeaderEventID)
	if signature == "" {
		response.Error(c, apperror.ErrInvalidSignature())
		return
	}

	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.ErrValidation("cannot read request body"))
		return
	}

	if err := h.settlementSvc.HandleWebhook(c.Request.Context(), rawBody, signature, eventID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusOK)
}
