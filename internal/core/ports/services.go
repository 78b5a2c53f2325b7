package ports

import (
	"context"
	"time"

	"order-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SignatureVerifier handles HMAC-SHA256 signing and verification over raw
// payload bytes. Verification is side-effect-free and constant-time.
type SignatureVerifier interface {
	Sign(secret string, payload []byte) string
	Verify(secret string, payload []byte, signature string) bool
}

// --- Gateway Client Port ---

// CreateIntentRequest holds input for creating a gateway payment intent.
// ReceiptRef doubles as the gateway-side dedup key, making retries safe.
type CreateIntentRequest struct {
	Amount     int64
	Currency   string
	ReceiptRef string
	Notes      map[string]string
}

// GatewayIntent is the gateway-side reservation returned at creation.
type GatewayIntent struct {
	IntentID string
	Amount   int64
	Currency string
}

// GatewayPayment is the gateway's authoritative view of a payment,
// fetched to corroborate client- or webhook-reported state.
type GatewayPayment struct {
	PaymentID        string
	IntentID         string
	Amount           int64
	Currency         string
	Status           string // gateway vocabulary: created, authorized, captured, failed
	Method           string
	ErrorCode        string
	ErrorDescription string
}

// Captured reports whether the gateway holds the money.
func (p *GatewayPayment) Captured() bool {
	return p.Status == "captured"
}

// GatewayRefund is the gateway-side refund record.
type GatewayRefund struct {
	RefundID string
	Amount   int64
	Status   string
}

// GatewayClient is the only component performing outbound gateway calls.
// All calls carry a bounded timeout and perform no retries of their own;
// retry policy belongs to the caller.
type GatewayClient interface {
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*GatewayIntent, error)
	FetchPayment(ctx context.Context, gatewayPaymentID string) (*GatewayPayment, error)
	CreateRefund(ctx context.Context, gatewayPaymentID string, amount int64, notes map[string]string) (*GatewayRefund, error)
}

// --- Ledger & Coordinator Ports ---

// PaymentLedger owns the Payment state machine. All methods run inside the
// caller's database transaction; cross-entity decisions stay with the
// settlement service.
type PaymentLedger interface {
	// Create records a new pending payment. The reference is generated by
	// the caller before any gateway round trip so it can double as the
	// gateway receipt/dedup key; gatewayOrderID is nil for local methods.
	// Fails with AmountMismatch when amount differs from the order total,
	// and PaymentInFlight when a non-terminal payment already exists.
	Create(ctx context.Context, tx pgx.Tx, order *domain.Order, amount int64, method domain.PaymentMethod, reference string, gatewayOrderID *string) (*domain.Payment, error)
	// Transition applies a CAS status move and appends one timeline entry.
	// An illegal target fails InvalidTransition; a lost CAS race returns
	// applied=false with no error, meaning the event was already settled.
	Transition(ctx context.Context, tx pgx.Tx, payment *domain.Payment, to domain.PaymentStatus, note, actor string) (applied bool, err error)
	// AttachRefund creates the pending refund sub-record. Fails with
	// NotCompleted, AlreadyRefunded or RefundExceedsAmount.
	AttachRefund(ctx context.Context, tx pgx.Tx, payment *domain.Payment, amount int64, reason, actor string) error
	// RecordGatewayRefund stores the gateway refund id on the pending
	// sub-record once the gateway accepts the refund.
	RecordGatewayRefund(ctx context.Context, tx pgx.Tx, payment *domain.Payment, gatewayRefundID string) error
	// ClearRefund removes the pending sub-record after the gateway
	// definitively rejected the refund, reopening the refund lane.
	ClearRefund(ctx context.Context, tx pgx.Tx, payment *domain.Payment, reason string) error
	// FinalizeRefund flips the payment to refunded and the sub-record to
	// processed. applied=false means the event had already been settled.
	FinalizeRefund(ctx context.Context, tx pgx.Tx, payment *domain.Payment, gatewayRefundID, actor string) (applied bool, err error)
}

// OrderCoordinator owns the Order state machine and reacts to ledger
// transitions. Methods are idempotent where the contract says so.
type OrderCoordinator interface {
	// OnPaymentCompleted marks the order paid, and confirmed when it was
	// still pending. Calling it again is a no-op.
	OnPaymentCompleted(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	// OnPaymentFailed marks the payment axis failed and leaves fulfilment
	// untouched so the customer can retry with a fresh payment.
	OnPaymentFailed(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	// OnRefunded moves the order to refunded; fails RefundNotAllowed
	// unless the order was confirmed or delivered.
	OnRefunded(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	// Cancel fails CancelNotAllowed unless the order is pending or confirmed.
	Cancel(ctx context.Context, tx pgx.Tx, order *domain.Order) error
}

// --- Settlement Orchestration Port ---

// InitiateRequest holds validated input for starting a payment attempt.
type InitiateRequest struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	Method     domain.PaymentMethod
}

// PaymentIntentView is what initiate returns to the caller. It never
// carries gateway secrets.
type PaymentIntentView struct {
	PaymentID      uuid.UUID `json:"payment_id"`
	Reference      string    `json:"reference"`
	GatewayOrderID *string   `json:"gateway_order_id,omitempty"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	Method         string    `json:"method"`
	Status         string    `json:"status"`
}

// VerifyRequest holds the client-submitted verification payload delivered
// after a redirect-based flow.
type VerifyRequest struct {
	PaymentID        uuid.UUID
	CustomerID       uuid.UUID
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

// SettlementResult pairs the payment and order after a settlement step.
type SettlementResult struct {
	Payment *domain.Payment `json:"payment"`
	Order   *domain.Order   `json:"order"`
}

// RefundRequest holds validated input for requesting a refund.
type RefundRequest struct {
	PaymentID  uuid.UUID
	CustomerID uuid.UUID
	Amount     *int64 // nil = full refund
	Reason     string
	Actor      string
}

// SettlementService is the orchestration facade over gateway, ledger and
// coordinator. It is the only writer of cross-entity consistency.
type SettlementService interface {
	Initiate(ctx context.Context, req InitiateRequest) (*PaymentIntentView, error)
	VerifyClientCallback(ctx context.Context, req VerifyRequest) (*SettlementResult, error)
	// HandleWebhook verifies the body signature, deduplicates by event id
	// and dispatches to the registered handler. Redelivery of a seen event
	// id succeeds without side effects.
	HandleWebhook(ctx context.Context, rawBody []byte, signature, eventID string) error
	RequestRefund(ctx context.Context, req RefundRequest) (*domain.Payment, error)
	CancelOrder(ctx context.Context, orderID, customerID uuid.UUID) (*domain.Order, error)
}

// --- History / Reporting Port ---

// PaymentDetail is a payment with its ordered timeline.
type PaymentDetail struct {
	Payment  domain.Payment         `json:"payment"`
	Timeline []domain.TimelineEntry `json:"timeline"`
}

// HistoryService serves the customer-facing payment history.
type HistoryService interface {
	GetPayment(ctx context.Context, paymentID, customerID uuid.UUID) (*PaymentDetail, error)
	ListPayments(ctx context.Context, params PaymentListParams) ([]domain.Payment, int64, error)
}

// --- Auth Port ---

// TokenClaims holds the parsed JWT claims of an authenticated customer.
type TokenClaims struct {
	CustomerID uuid.UUID
}

// TokenVerifier validates bearer tokens issued by the auth subsystem.
// This engine never issues tokens.
type TokenVerifier interface {
	Validate(tokenString string) (*TokenClaims, error)
}

// --- Webhook Fast Path ---

// EventSeenCache is the Redis fast path for webhook dedup. Only a positive
// answer is trusted; the database insert remains the authority for
// "not seen yet".
type EventSeenCache interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	MarkSeen(ctx context.Context, eventID string, ttl time.Duration) error
}
