package postgres

import (
	"context"
	"testing"
	"time"

	"order-settlement/internal/core/domain"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWebhookEvent() *domain.WebhookEvent {
	return &domain.WebhookEvent{
		EventID:     "evt_Hk7Ba2Lw91XcQm",
		EventType:   domain.EventPaymentCaptured,
		Outcome:     domain.EventOutcomeApplied,
		FirstSeenAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestIdempotencyRepo_Insert_FirstSeen(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo(mock)
	e := newTestWebhookEvent()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO webhook_events").
		WithArgs(e.EventID, e.EventType, e.Outcome, e.FirstSeenAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	inserted, err := repo.Insert(context.Background(), dbTx, e)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A concurrent redelivery that committed first leaves the conflict target
// in place; the insert touches zero rows.
func TestIdempotencyRepo_Insert_Conflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo(mock)
	e := newTestWebhookEvent()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO webhook_events").
		WithArgs(e.EventID, e.EventType, e.Outcome, e.FirstSeenAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	inserted, err := repo.Insert(context.Background(), dbTx, e)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRepo_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo(mock)
	e := newTestWebhookEvent()

	mock.ExpectQuery("SELECT .+ FROM webhook_events WHERE event_id").
		WithArgs(e.EventID).
		WillReturnRows(pgxmock.NewRows([]string{"event_id", "event_type", "outcome", "first_seen_at"}).
			AddRow(e.EventID, e.EventType, e.Outcome, e.FirstSeenAt))

	result, err := repo.Get(context.Background(), e.EventID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, domain.EventOutcomeApplied, result.Outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRepo_Get_NotSeen(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM webhook_events WHERE event_id").
		WithArgs("evt_unknown").
		WillReturnRows(pgxmock.NewRows([]string{"event_id", "event_type", "outcome", "first_seen_at"}))

	result, err := repo.Get(context.Background(), "evt_unknown")
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}
