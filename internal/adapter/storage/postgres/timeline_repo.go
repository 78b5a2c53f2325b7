package postgres

import (
	"context"
	"fmt"

	"order-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TimelineRepo implements ports.TimelineRepository over the append-only
// payment_timeline table.
type TimelineRepo struct {
	pool Pool
}

// NewTimelineRepo creates a new TimelineRepo.
func NewTimelineRepo(pool Pool) *TimelineRepo {
	return &TimelineRepo{pool: pool}
}

// Append inserts one timeline entry within a database transaction.
func (r *TimelineRepo) Append(ctx context.Context, tx pgx.Tx, e *domain.TimelineEntry) error {
	query := `INSERT INTO payment_timeline (id, payment_id, status, note, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query, e.ID, e.PaymentID, e.Status, e.Note, e.Actor, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert timeline entry: %w", err)
	}
	return nil
}

// ListByPaymentID fetches a payment's timeline, oldest first.
func (r *TimelineRepo) ListByPaymentID(ctx context.Context, paymentID uuid.UUID) ([]domain.TimelineEntry, error) {
	query := `SELECT id, payment_id, status, note, actor, created_at
		FROM payment_timeline WHERE payment_id = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, paymentID)
	if err != nil {
		return nil, fmt.Errorf("list timeline: %w", err)
	}
	defer rows.Close()

	var entries []domain.TimelineEntry
	for rows.Next() {
		var e domain.TimelineEntry
		if err := rows.Scan(&e.ID, &e.PaymentID, &e.Status, &e.Note, &e.Actor, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan timeline entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timeline rows: %w", err)
	}
	return entries, nil
}
