package postgres

import (
	"context"
	"testing"
	"time"

	"order-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimelineRepo_Append(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTimelineRepo(mock)
	entry := &domain.TimelineEntry{
		ID:        uuid.New(),
		PaymentID: uuid.New(),
		Status:    domain.PaymentStatusCompleted,
		Note:      "gateway webhook: payment captured",
		Actor:     "gateway",
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payment_timeline").
		WithArgs(entry.ID, entry.PaymentID, entry.Status, entry.Note, entry.Actor, entry.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Append(context.Background(), dbTx, entry)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimelineRepo_ListByPaymentID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTimelineRepo(mock)
	paymentID := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	rows := pgxmock.NewRows([]string{"id", "payment_id", "status", "note", "actor", "created_at"}).
		AddRow(uuid.New(), paymentID, domain.PaymentStatusPending, "payment created", "system", now.Add(-time.Minute)).
		AddRow(uuid.New(), paymentID, domain.PaymentStatusCompleted, "gateway webhook: payment captured", "gateway", now)

	mock.ExpectQuery("SELECT .+ FROM payment_timeline WHERE payment_id").
		WithArgs(paymentID).
		WillReturnRows(rows)

	entries, err := repo.ListByPaymentID(context.Background(), paymentID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.PaymentStatusPending, entries[0].Status)
	assert.Equal(t, domain.PaymentStatusCompleted, entries[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimelineRepo_ListByPaymentID_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTimelineRepo(mock)
	paymentID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM payment_timeline WHERE payment_id").
		WithArgs(paymentID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "payment_id", "status", "note", "actor", "created_at"}))

	entries, err := repo.ListByPaymentID(context.Background(), paymentID)
	assert.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}
