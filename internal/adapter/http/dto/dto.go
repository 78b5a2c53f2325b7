package dto

// InitiatePaymentRequest is the request body for starting a payment attempt.
type InitiatePaymentRequest struct {
	OrderID string `json:"order_id" binding:"required,uuid"`
	Method  string `json:"method" binding:"required,oneof=card upi netbanking wallet cod"`
}

// VerifyPaymentRequest is the client-submitted callback payload after a
// redirect-based gateway flow.
type VerifyPaymentRequest struct {
	GatewayOrderID   string `json:"gateway_order_id" binding:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
	Signature        string `json:"signature" binding:"required"`
}

// RefundPaymentRequest is the request body for requesting a refund.
// Amount is in minor units; omitted means full refund.
type RefundPaymentRequest struct {
	Amount *int64 `json:"amount,omitempty" binding:"omitempty,gt=0"`
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// PaymentResponse is the wire shape of a payment.
type PaymentResponse struct {
	ID               string          `json:"id"`
	OrderID          string          `json:"order_id"`
	Reference        string          `json:"reference"`
	GatewayOrderID   *string         `json:"gateway_order_id,omitempty"`
	GatewayPaymentID *string         `json:"gateway_payment_id,omitempty"`
	Amount           int64           `json:"amount"`
	Currency         string          `json:"currency"`
	Method           string          `json:"method"`
	Status           string          `json:"status"`
	FailureReason    *FailureReason  `json:"failure_reason,omitempty"`
	Refund           *RefundResponse `json:"refund,omitempty"`
	CreatedAt        string          `json:"created_at"`
}

// FailureReason carries the gateway's failure detail.
type FailureReason struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RefundResponse is the wire shape of a payment's refund sub-record.
type RefundResponse struct {
	Amount      int64   `json:"amount"`
	Reason      string  `json:"reason"`
	Status      string  `json:"status"`
	ProcessedAt *string `json:"processed_at,omitempty"`
	RequestedAt string  `json:"requested_at"`
}

// TimelineEntryResponse is one row of a payment's status history.
type TimelineEntryResponse struct {
	Status    string `json:"status"`
	Note      string `json:"note,omitempty"`
	Actor     string `json:"actor"`
	CreatedAt string `json:"created_at"`
}

// PaymentDetailResponse pairs a payment with its ordered timeline.
type PaymentDetailResponse struct {
	Payment  PaymentResponse         `json:"payment"`
	Timeline []TimelineEntryResponse `json:"timeline"`
}

// PaymentListResponse wraps a paginated payment list.
type PaymentListResponse struct {
	Items      []PaymentResponse `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// OrderResponse is the wire shape of an order's settlement-relevant state.
type OrderResponse struct {
	ID            string `json:"id"`
	Number        string `json:"number"`
	TotalAmount   int64  `json:"total_amount"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}

// SettlementResponse pairs the payment and order after a settlement step.
type SettlementResponse struct {
	Payment PaymentResponse `json:"payment"`
	Order   *OrderResponse  `json:"order,omitempty"`
}
