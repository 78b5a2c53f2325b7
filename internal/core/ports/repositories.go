package ports

import (
	"context"

	"order-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderRepository defines persistence operations for orders. The checkout
// subsystem owns order creation; this engine only loads orders and writes
// the status / payment-status pair through conditional updates.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// LockForUpdate takes the order's row lock for the duration of tx.
	// Payment creation takes it first, so two concurrent initiations for
	// the same order serialize instead of both passing the active-payment
	// check. Fails when the order does not exist.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	// UpdateStatuses writes both state axes in a single statement so they
	// can never be observed torn. Returns false when the order's current
	// status no longer matches expected (another writer advanced it).
	UpdateStatuses(ctx context.Context, tx pgx.Tx, id uuid.UUID, expected domain.OrderStatus, status domain.OrderStatus, payStatus domain.OrderPaymentStatus) (bool, error)
	// UpdatePaymentStatus writes only the payment axis, unconditionally.
	UpdatePaymentStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, payStatus domain.OrderPaymentStatus) error
}

// PaymentRepository defines persistence operations for payments.
// Methods accepting pgx.Tx run inside the settlement transaction.
// Status writes are compare-and-swap: they apply only when the row's
// current status matches the expected one, and report whether they did.
type PaymentRepository interface {
	Create(ctx context.Context, tx pgx.Tx, payment *domain.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.Payment, error)
	GetByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*domain.Payment, error)
	// GetActiveByOrderID returns the order's non-terminal payment, or nil.
	// At most one exists at any time.
	GetActiveByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error)
	// UpdateStatusCAS moves id from `from` to `to` only if the current
	// status still equals `from`. Returns false on a lost race.
	UpdateStatusCAS(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to domain.PaymentStatus, failure *domain.FailureReason) (bool, error)
	SetGatewayPaymentID(ctx context.Context, tx pgx.Tx, id uuid.UUID, gatewayPaymentID string) error
	// AttachRefund writes the refund sub-record only when the payment is
	// completed and carries no refund yet. Returns false otherwise.
	AttachRefund(ctx context.Context, tx pgx.Tx, id uuid.UUID, refund *domain.Refund) (bool, error)
	// SetRefundGatewayID records the gateway-side refund id after createRefund.
	SetRefundGatewayID(ctx context.Context, tx pgx.Tx, id uuid.UUID, gatewayRefundID string) error
	// ClearRefund removes a pending refund sub-record so the caller can retry.
	ClearRefund(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	// FinalizeRefundCAS flips completed -> refunded and the refund
	// sub-record pending -> processed atomically. Returns false if the
	// payment is not in that exact shape (duplicate or out-of-order event).
	FinalizeRefundCAS(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)
	List(ctx context.Context, params PaymentListParams) ([]domain.Payment, int64, error)
}

// PaymentListParams holds filter + pagination for listing payments.
type PaymentListParams struct {
	CustomerID uuid.UUID
	Status     *domain.PaymentStatus
	Method     *domain.PaymentMethod
	Page       int
	PageSize   int
}

// TimelineRepository persists the append-only per-payment status log.
type TimelineRepository interface {
	Append(ctx context.Context, tx pgx.Tx, entry *domain.TimelineEntry) error
	ListByPaymentID(ctx context.Context, paymentID uuid.UUID) ([]domain.TimelineEntry, error)
}

// IdempotencyRepository persists first-seen webhook event ids.
type IdempotencyRepository interface {
	// Insert records the event id if absent, in the caller's transaction.
	// Returns false when the id was already recorded: the delivery is a
	// duplicate and must not reapply side effects.
	Insert(ctx context.Context, tx pgx.Tx, event *domain.WebhookEvent) (bool, error)
	Get(ctx context.Context, eventID string) (*domain.WebhookEvent, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
