package handler

import (
	"order-settlement/internal/core/ports"
	"order-settlement/pkg/apperror"
	"order-settlement/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler handles the settlement-facing order endpoints.
type OrderHandler struct {
	settlementSvc ports.SettlementService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(settlementSvc ports.SettlementService) *OrderHandler {
	return &OrderHandler{settlementSvc: settlementSvc}
}

// Cancel handles POST /api/v1/orders/:id/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	customerID, ok := customerFromContext(c)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrValidation("order id must be a UUID"))
		return
	}

	order, err := h.settlementSvc.CancelOrder(c.Request.Context(), orderID, customerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toOrderResponse(order))
}
