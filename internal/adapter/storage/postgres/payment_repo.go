package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"order-settlement/internal/core/domain"
	"order-settlement/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const paymentColumns = `id, order_id, customer_id, reference, gateway_order_id, gateway_payment_id,
	amount, currency, method, status, gateway, failure_code, failure_message,
	refund_amount, refund_reason, refund_status, refund_gateway_id,
	refund_processed_at, refund_processed_by, refund_requested_at,
	created_at, updated_at`

// PaymentRepo implements ports.PaymentRepository. The refund sub-record
// lives in nullable columns on the payment row, which lets the refund-lane
// writes be single conditional statements.
type PaymentRepo struct {
	pool Pool
}

// NewPaymentRepo creates a new PaymentRepo.
func NewPaymentRepo(pool Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

// Create inserts a new payment within a database transaction.
func (r *PaymentRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Payment) error {
	query := `INSERT INTO payments (id, order_id, customer_id, reference, gateway_order_id, gateway_payment_id,
		amount, currency, method, status, gateway, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := tx.Exec(ctx, query,
		p.ID, p.OrderID, p.CustomerID, p.Reference, p.GatewayOrderID, p.GatewayPaymentID,
		p.Amount, p.Currency, p.Method, p.Status, p.Gateway, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID fetches a payment by UUID. Returns nil when not found.
func (r *PaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE id = $1`, paymentColumns)
	return r.scanPayment(r.pool.QueryRow(ctx, query, id))
}

// GetByGatewayOrderID fetches a payment by its gateway intent id.
func (r *PaymentRepo) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE gateway_order_id = $1`, paymentColumns)
	return r.scanPayment(r.pool.QueryRow(ctx, query, gatewayOrderID))
}

// GetByGatewayPaymentID fetches a payment by the gateway-side payment id.
func (r *PaymentRepo) GetByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*domain.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE gateway_payment_id = $1`, paymentColumns)
	return r.scanPayment(r.pool.QueryRow(ctx, query, gatewayPaymentID))
}

// GetActiveByOrderID returns the order's non-terminal payment, or nil.
func (r *PaymentRepo) GetActiveByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments
		WHERE order_id = $1 AND status IN ('pending', 'processing')
		ORDER BY created_at DESC LIMIT 1`, paymentColumns)
	return r.scanPayment(r.pool.QueryRow(ctx, query, orderID))
}

// UpdateStatusCAS moves the payment from `from` to `to` only when the row
// still carries `from`. The returned bool reports whether the write landed.
func (r *PaymentRepo) UpdateStatusCAS(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to domain.PaymentStatus, failure *domain.FailureReason) (bool, error) {
	var failureCode, failureMessage *string
	if failure != nil {
		failureCode = &failure.Code
		failureMessage = &failure.Message
	}

	query := `UPDATE payments SET status = $1, failure_code = $2, failure_message = $3, updated_at = now()
		WHERE id = $4 AND status = $5`

	tag, err := tx.Exec(ctx, query, to, failureCode, failureMessage, id, from)
	if err != nil {
		return false, fmt.Errorf("cas payment status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// SetGatewayPaymentID stores the gateway-side payment id.
func (r *PaymentRepo) SetGatewayPaymentID(ctx context.Context, tx pgx.Tx, id uuid.UUID, gatewayPaymentID string) error {
	query := `UPDATE payments SET gateway_payment_id = $1, updated_at = now() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, gatewayPaymentID, id)
	if err != nil {
		return fmt.Errorf("set gateway payment id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment not found: %s", id)
	}
	return nil
}

// AttachRefund writes the pending refund sub-record only when the payment
// is completed and carries no refund yet.
func (r *PaymentRepo) AttachRefund(ctx context.Context, tx pgx.Tx, id uuid.UUID, refund *domain.Refund) (bool, error) {
	query := `UPDATE payments SET refund_amount = $1, refund_reason = $2, refund_status = $3,
		refund_processed_by = $4, refund_requested_at = $5, updated_at = now()
		WHERE id = $6 AND status = 'completed' AND refund_status IS NULL`

	tag, err := tx.Exec(ctx, query,
		refund.Amount, refund.Reason, refund.Status, refund.ProcessedBy, refund.RequestedAt, id,
	)
	if err != nil {
		return false, fmt.Errorf("attach refund: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// SetRefundGatewayID records the gateway-side refund id.
func (r *PaymentRepo) SetRefundGatewayID(ctx context.Context, tx pgx.Tx, id uuid.UUID, gatewayRefundID string) error {
	query := `UPDATE payments SET refund_gateway_id = $1, updated_at = now()
		WHERE id = $2 AND refund_status IS NOT NULL`

	tag, err := tx.Exec(ctx, query, gatewayRefundID, id)
	if err != nil {
		return fmt.Errorf("set refund gateway id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment has no refund: %s", id)
	}
	return nil
}

// ClearRefund removes a pending refund sub-record.
func (r *PaymentRepo) ClearRefund(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `UPDATE payments SET refund_amount = NULL, refund_reason = NULL, refund_status = NULL,
		refund_gateway_id = NULL, refund_processed_at = NULL, refund_processed_by = NULL,
		refund_requested_at = NULL, updated_at = now()
		WHERE id = $1 AND refund_status = 'pending'`

	if _, err := tx.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("clear refund: %w", err)
	}
	return nil
}

// FinalizeRefundCAS flips completed -> refunded and the sub-record
// pending -> processed in one statement. Returns false when the payment is
// not in that exact shape.
func (r *PaymentRepo) FinalizeRefundCAS(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	query := `UPDATE payments SET status = 'refunded', refund_status = 'processed',
		refund_processed_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'completed' AND refund_status = 'pending'`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("finalize refund: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// List fetches payments with filtering and pagination.
func (r *PaymentRepo) List(ctx context.Context, params ports.PaymentListParams) ([]domain.Payment, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("customer_id = $%d", argIdx))
	args = append(args, params.CustomerID)
	argIdx++

	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.Method != nil {
		conditions = append(conditions, fmt.Sprintf("method = $%d", argIdx))
		args = append(args, *params.Method)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM payments %s", where)
	var total int64
	err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	// Fetch page
	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM payments %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		paymentColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPaymentRow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan payment row: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate payment rows: %w", err)
	}
	return payments, total, nil
}

func (r *PaymentRepo) scanPayment(row pgx.Row) (*domain.Payment, error) {
	p, err := scanPaymentRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	return p, nil
}

func scanPaymentRow(row pgx.Row) (*domain.Payment, error) {
	var (
		p                 domain.Payment
		failureCode       *string
		failureMessage    *string
		refundAmount      *int64
		refundReason      *string
		refundStatus      *string
		refundGatewayID   *string
		refundProcessedAt *time.Time
		refundProcessedBy *string
		refundRequestedAt *time.Time
	)
	err := row.Scan(
		&p.ID, &p.OrderID, &p.CustomerID, &p.Reference, &p.GatewayOrderID, &p.GatewayPaymentID,
		&p.Amount, &p.Currency, &p.Method, &p.Status, &p.Gateway, &failureCode, &failureMessage,
		&refundAmount, &refundReason, &refundStatus, &refundGatewayID,
		&refundProcessedAt, &refundProcessedBy, &refundRequestedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if failureCode != nil {
		p.FailureReason = &domain.FailureReason{Code: *failureCode}
		if failureMessage != nil {
			p.FailureReason.Message = *failureMessage
		}
	}
	if refundStatus != nil {
		refund := &domain.Refund{
			Status:          domain.RefundStatus(*refundStatus),
			GatewayRefundID: refundGatewayID,
			ProcessedAt:     refundProcessedAt,
		}
		if refundAmount != nil {
			refund.Amount = *refundAmount
		}
		if refundReason != nil {
			refund.Reason = *refundReason
		}
		if refundProcessedBy != nil {
			refund.ProcessedBy = *refundProcessedBy
		}
		if refundRequestedAt != nil {
			refund.RequestedAt = *refundRequestedAt
		}
		p.Refund = refund
	}
	return &p, nil
}
