package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"order-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderRepo implements ports.OrderRepository. Line items and address
// snapshots are stored as JSONB; the settlement engine never queries
// inside them.
type OrderRepo struct {
	pool Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(pool Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

// Create inserts a new order.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}
	shipping, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshal shipping address: %w", err)
	}
	billing, err := json.Marshal(o.BillingAddress)
	if err != nil {
		return fmt.Errorf("marshal billing address: %w", err)
	}

	query := `INSERT INTO orders (id, number, customer_id, items, total_amount, status, payment_status,
		shipping_address, billing_address, placed_at, expected_delivery_at, delivered_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = r.pool.Exec(ctx, query,
		o.ID, o.Number, o.CustomerID, items, o.TotalAmount, o.Status, o.PaymentStatus,
		shipping, billing, o.PlacedAt, o.ExpectedDeliveryAt, o.DeliveredAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// LockForUpdate locks the order row inside tx. Held until the transaction
// ends, it serializes payment creation per order: a second initiation
// blocks here until the first commits, and its active-payment re-check
// then sees the committed row.
func (r *OrderRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `SELECT 1 FROM orders WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return fmt.Errorf("lock order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lock order %s: not found", id)
	}
	return nil
}

// GetByID fetches an order by UUID. Returns nil when not found.
func (r *OrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT id, number, customer_id, items, total_amount, status, payment_status,
		shipping_address, billing_address, placed_at, expected_delivery_at, delivered_at, updated_at
		FROM orders WHERE id = $1`

	return r.scanOrder(r.pool.QueryRow(ctx, query, id))
}

// UpdateStatuses writes both state axes in one conditional statement.
// Returns false when the current status no longer matches expected.
func (r *OrderRepo) UpdateStatuses(ctx context.Context, tx pgx.Tx, id uuid.UUID, expected, status domain.OrderStatus, payStatus domain.OrderPaymentStatus) (bool, error) {
	query := `UPDATE orders SET status = $1, payment_status = $2, updated_at = now()
		WHERE id = $3 AND status = $4`

	tag, err := tx.Exec(ctx, query, status, payStatus, id, expected)
	if err != nil {
		return false, fmt.Errorf("update order statuses: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// UpdatePaymentStatus writes only the payment axis.
func (r *OrderRepo) UpdatePaymentStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, payStatus domain.OrderPaymentStatus) error {
	query := `UPDATE orders SET payment_status = $1, updated_at = now() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, payStatus, id)
	if err != nil {
		return fmt.Errorf("update order payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order not found: %s", id)
	}
	return nil
}

func (r *OrderRepo) scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o        domain.Order
		items    []byte
		shipping []byte
		billing  []byte
	)
	err := row.Scan(
		&o.ID, &o.Number, &o.CustomerID, &items, &o.TotalAmount, &o.Status, &o.PaymentStatus,
		&shipping, &billing, &o.PlacedAt, &o.ExpectedDeliveryAt, &o.DeliveredAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(shipping, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("unmarshal shipping address: %w", err)
	}
	if err := json.Unmarshal(billing, &o.BillingAddress); err != nil {
		return nil, fmt.Errorf("unmarshal billing address: %w", err)
	}
	return &o, nil
}
