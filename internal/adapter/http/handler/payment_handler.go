package handler

import (
	"strconv"
	"time"

	"order-settlement/internal/adapter/http/dto"
	"order-settlement/internal/adapter/http/middleware"
	"order-settlement/internal/core/domain"
	"order-settlement/internal/core/ports"
	"order-settlement/pkg/apperror"
	"order-settlement/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles payment endpoints.
type PaymentHandler struct {
	settlementSvc ports.SettlementService
	historySvc    ports.HistoryService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(settlementSvc ports.SettlementService, historySvc ports.HistoryService) *PaymentHandler {
	return &PaymentHandler{settlementSvc: settlementSvc, historySvc: historySvc}
}

// Initiate handles POST /api/v1/payments.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	customerID, ok := customerFromContext(c)
	if !ok {
		return
	}

	var req dto.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrValidation(err.Error()))
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		response.Error(c, apperror.ErrValidation("order_id must be a UUID"))
		return
	}

	intent, err := h.settlementSvc.Initiate(c.Request.Context(), ports.InitiateRequest{
		OrderID:    orderID,
		CustomerID: customerID,
		Method:     domain.PaymentMethod(req.Method),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, intent)
}

// Verify handles POST /api/v1/payments/:id/verify.
func (h *PaymentHandler) Verify(c *gin.Context) {
	customerID, ok := customerFromContext(c)
	if !ok {
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrValidation("payment id must be a UUID"))
		return
	}

	var req dto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrValidation(err.Error()))
		return
	}

	result, err := h.settlementSvc.VerifyClientCallback(c.Request.Context(), ports.VerifyRequest{
		PaymentID:        paymentID,
		CustomerID:       customerID,
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		Signature:        req.Signature,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toSettlementResponse(result))
}

// Refund handles POST /api/v1/payments/:id/refund.
func (h *PaymentHandler) Refund(c *gin.Context) {
	customerID, ok := customerFromContext(c)
	if !ok {
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrValidation("payment id must be a UUID"))
		return
	}

	var req dto.RefundPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrValidation(err.Error()))
		return
	}

	payment, err := h.settlementSvc.RequestRefund(c.Request.Context(), ports.RefundRequest{
		PaymentID:  paymentID,
		CustomerID: customerID,
		Amount:     req.Amount,
		Reason:     req.Reason,
		Actor:      "customer",
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toPaymentResponse(payment))
}

// Get handles GET /api/v1/payments/:id.
func (h *PaymentHandler) Get(c *gin.Context) {
	customerID, ok := customerFromContext(c)
	if !ok {
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrValidation("payment id must be a UUID"))
		return
	}

	detail, err := h.historySvc.GetPayment(c.Request.Context(), paymentID, customerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toPaymentDetailResponse(detail))
}

// List handles GET /api/v1/payments.
func (h *PaymentHandler) List(c *gin.Context) {
	customerID, ok := customerFromContext(c)
	if !ok {
		return
	}

	params := ports.PaymentListParams{CustomerID: customerID}
	if s := c.Query("status"); s != "" {
		status := domain.PaymentStatus(s)
		params.Status = &status
	}
	if m := c.Query("method"); m != "" {
		method := domain.PaymentMethod(m)
		if !method.Valid() {
			response.Error(c, apperror.ErrValidation("unknown payment method"))
			return
		}
		params.Method = &method
	}
	params.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	params.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	payments, total, err := h.historySvc.ListPayments(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		items = append(items, toPaymentResponse(&payments[i]))
	}

	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = 20
	}
	totalPages := int((total + int64(params.PageSize) - 1) / int64(params.PageSize))

	response.OK(c, dto.PaymentListResponse{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	})
}

func customerFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.CtxCustomerID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return uuid.Nil, false
	}
	return id, true
}

func toPaymentResponse(p *domain.Payment) dto.PaymentResponse {
	resp := dto.PaymentResponse{
		ID:               p.ID.String(),
		OrderID:          p.OrderID.String(),
		Reference:        p.Reference,
		GatewayOrderID:   p.GatewayOrderID,
		GatewayPaymentID: p.GatewayPaymentID,
		Amount:           p.Amount,
		Currency:         p.Currency,
		Method:           string(p.Method),
		Status:           string(p.Status),
		CreatedAt:        p.CreatedAt.Format(time.RFC3339),
	}
	if p.FailureReason != nil {
		resp.FailureReason = &dto.FailureReason{
			Code:    p.FailureReason.Code,
			Message: p.FailureReason.Message,
		}
	}
	if p.Refund != nil {
		r := &dto.RefundResponse{
			Amount:      p.Refund.Amount,
			Reason:      p.Refund.Reason,
			Status:      string(p.Refund.Status),
			RequestedAt: p.Refund.RequestedAt.Format(time.RFC3339),
		}
		if p.Refund.ProcessedAt != nil {
			s := p.Refund.ProcessedAt.Format(time.RFC3339)
			r.ProcessedAt = &s
		}
		resp.Refund = r
	}
	return resp
}

func toOrderResponse(o *domain.Order) *dto.OrderResponse {
	if o == nil {
		return nil
	}
	return &dto.OrderResponse{
		ID:            o.ID.String(),
		Number:        o.Number,
		TotalAmount:   o.TotalAmount,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
	}
}

func toSettlementResponse(r *ports.SettlementResult) dto.SettlementResponse {
	return dto.SettlementResponse{
		Payment: toPaymentResponse(r.Payment),
		Order:   toOrderResponse(r.Order),
	}
}

func toPaymentDetailResponse(d *ports.PaymentDetail) dto.PaymentDetailResponse {
	timeline := make([]dto.TimelineEntryResponse, 0, len(d.Timeline))
	for _, e := range d.Timeline {
		timeline = append(timeline, dto.TimelineEntryResponse{
			Status:    string(e.Status),
			Note:      e.Note,
			Actor:     e.Actor,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		})
	}
	return dto.PaymentDetailResponse{
		Payment:  toPaymentResponse(&d.Payment),
		Timeline: timeline,
	}
}
