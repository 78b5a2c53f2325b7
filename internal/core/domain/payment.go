package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is the instrument chosen at checkout.
type PaymentMethod string

const (
	MethodCard           PaymentMethod = "card"
	MethodUPI            PaymentMethod = "upi"
	MethodNetBanking     PaymentMethod = "netbanking"
	MethodWallet         PaymentMethod = "wallet"
	MethodCashOnDelivery PaymentMethod = "cod"
)

// RequiresGateway reports whether this method needs a gateway round trip.
// Cash-on-delivery settles locally on order confirmation.
func (m PaymentMethod) RequiresGateway() bool {
	return m != MethodCashOnDelivery
}

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCard, MethodUPI, MethodNetBanking, MethodWallet, MethodCashOnDelivery:
		return true
	}
	return false
}

// PaymentStatus represents the lifecycle state of a payment attempt.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// paymentTransitions is the only legal transition table for generic
// transitions. completed -> refunded is deliberately absent: the refund
// lane (attach + finalize) is the single path into refunded.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:    {PaymentStatusProcessing, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled},
	PaymentStatusProcessing: {PaymentStatusCompleted, PaymentStatusFailed},
}

// CanTransition reports whether from -> to is a legal generic transition.
func CanTransition(from, to PaymentStatus) bool {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// RefundStatus represents the state of a refund sub-record.
type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "pending"
	RefundStatusProcessed RefundStatus = "processed"
)

// Refund is the single compensating sub-record a completed payment may gain.
type Refund struct {
	Amount          int64        `json:"amount"`
	Reason          string       `json:"reason"`
	Status          RefundStatus `json:"status"`
	GatewayRefundID *string      `json:"gateway_refund_id,omitempty"`
	ProcessedAt     *time.Time   `json:"processed_at,omitempty"`
	ProcessedBy     string       `json:"processed_by"`
	RequestedAt     time.Time    `json:"requested_at"`
}

// FailureReason is the structured cause of a failed payment.
type FailureReason struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Payment represents one settlement attempt for an order.
type Payment struct {
	ID               uuid.UUID      `json:"id"`
	OrderID          uuid.UUID      `json:"order_id"`
	CustomerID       uuid.UUID      `json:"customer_id"`
	Reference        string         `json:"reference"` // Self-generated, used as gateway receipt/dedup key
	GatewayOrderID   *string        `json:"gateway_order_id,omitempty"`
	GatewayPaymentID *string        `json:"gateway_payment_id,omitempty"`
	Amount           int64          `json:"amount"` // Immutable after creation; equals order total at initiation
	Currency         string         `json:"currency"`
	Method           PaymentMethod  `json:"method"`
	Status           PaymentStatus  `json:"status"`
	Gateway          string         `json:"gateway"`
	FailureReason    *FailureReason `json:"failure_reason,omitempty"`
	Refund           *Refund        `json:"refund,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// NewPaymentReference generates the human-readable reference used for
// idempotent retries against the gateway.
func NewPaymentReference() string {
	return fmt.Sprintf("PAY-%d-%s", time.Now().UTC().UnixMilli(), uuid.NewString()[:8])
}

// IsTerminal returns true if the payment is in a final state. A completed
// payment is terminal for generic transitions but may still gain a refund.
func (p *Payment) IsTerminal() bool {
	switch p.Status {
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusRefunded:
		return true
	}
	return false
}

// IsRefundable returns true if this payment can gain a refund sub-record.
func (p *Payment) IsRefundable() bool {
	return p.Status == PaymentStatusCompleted && p.Refund == nil
}

// TimelineEntry is one row of a payment's append-only status log.
// Entries are stored in their own table and read back ordered by timestamp.
type TimelineEntry struct {
	ID        uuid.UUID     `json:"id"`
	PaymentID uuid.UUID     `json:"payment_id"`
	Status    PaymentStatus `json:"status"`
	Note      string        `json:"note,omitempty"`
	Actor     string        `json:"actor"` // "customer", "gateway", "system", or an admin id
	CreatedAt time.Time     `json:"created_at"`
}
