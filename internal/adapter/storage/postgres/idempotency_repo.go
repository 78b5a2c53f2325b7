package postgres

import (
	"context"
	"errors"
	"fmt"

	"order-settlement/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// IdempotencyRepo implements ports.IdempotencyRepository over the
// webhook_events table. The primary key on event_id is what makes webhook
// processing exactly-once: the insert and the handler's writes commit
// together or not at all.
type IdempotencyRepo struct {
	pool Pool
}

// NewIdempotencyRepo creates a new IdempotencyRepo.
func NewIdempotencyRepo(pool Pool) *IdempotencyRepo {
	return &IdempotencyRepo{pool: pool}
}

// Insert records the event id if absent. Returns false on conflict.
func (r *IdempotencyRepo) Insert(ctx context.Context, tx pgx.Tx, e *domain.WebhookEvent) (bool, error) {
	query := `INSERT INTO webhook_events (event_id, event_type, outcome, first_seen_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id) DO NOTHING`

	tag, err := tx.Exec(ctx, query, e.EventID, e.EventType, e.Outcome, e.FirstSeenAt)
	if err != nil {
		return false, fmt.Errorf("insert webhook event: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Get fetches an event record by id. Returns nil when not seen.
func (r *IdempotencyRepo) Get(ctx context.Context, eventID string) (*domain.WebhookEvent, error) {
	query := `SELECT event_id, event_type, outcome, first_seen_at
		FROM webhook_events WHERE event_id = $1`

	var e domain.WebhookEvent
	err := r.pool.QueryRow(ctx, query, eventID).Scan(&e.EventID, &e.EventType, &e.Outcome, &e.FirstSeenAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get webhook event: %w", err)
	}
	return &e, nil
}
